package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/h32109/stock-service/internal/app/di"
	"github.com/h32109/stock-service/internal/app/router"
	"github.com/h32109/stock-service/internal/config"
	"github.com/h32109/stock-service/internal/feature/stocks/engine"
	stockhandler "github.com/h32109/stock-service/internal/feature/stocks/transport/handler"
	"github.com/h32109/stock-service/internal/feature/stocks/usecase"
	"github.com/h32109/stock-service/internal/platform/cache"
	infradb "github.com/h32109/stock-service/internal/platform/db"
	"github.com/h32109/stock-service/internal/platform/logger"
	infraredis "github.com/h32109/stock-service/internal/platform/redis"
	"github.com/h32109/stock-service/internal/platform/snapshotstore"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env はローカル開発用。存在しなくてもよい
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	lg, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "stock-service")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, lg *zap.Logger) error {
	// db（カタログの取得元が db の場合のみ）
	var gdb *gorm.DB
	if cfg.Catalog.Source == config.SourceDB {
		var err error
		if gdb, err = infradb.OpenDB(cfg.DB, lg); err != nil {
			return err
		}
	}

	// Redis（任意。接続できない場合はキャッシュと更新通知なしで起動）
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis, lg); err != nil {
			lg.Warn("Redis unavailable. Running without cache and refresh signals.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					lg.Error("failed to close Redis client", zap.Error(err))
				}
			}()
		}
	}

	provider, err := di.NewCatalogProvider(cfg.Catalog, gdb, lg)
	if err != nil {
		return err
	}

	searchEngine, err := di.NewSearchEngine(cfg.Search)
	if err != nil {
		return err
	}
	defer searchEngine.Release()

	// Usecase
	holder := engine.NewHolder()
	stockUC := usecase.NewStockUsecase(holder, searchEngine.Matcher, searchEngine.Ranker)

	// Redisキャッシュでラップ
	cachedUC := cache.NewCachingStockService(rdb, cfg.Search.CacheTTL, stockUC, "", lg)

	refreshOpts := []usecase.RefreshOption{
		usecase.WithRefreshLogger(lg),
		usecase.WithSwapHook(func(ctx context.Context, previous, current *engine.Snapshot) {
			if previous == nil {
				return
			}
			n, err := cachedUC.InvalidateSnapshot(ctx, previous.Version)
			if err != nil {
				lg.Warn("failed to invalidate search cache", zap.String("version", previous.Version), zap.Error(err))
				return
			}
			lg.Info("search cache invalidated", zap.String("version", previous.Version), zap.Int("keys", n))
		}),
	}
	if cfg.SnapshotDir != "" {
		store, err := snapshotstore.Open(cfg.SnapshotDir, lg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		refreshOpts = append(refreshOpts, usecase.WithSnapshotStore(store))
	}
	refreshUC := usecase.NewRefreshUsecase(provider, holder, refreshOpts...)

	// 初回ロードに失敗しても起動し、/readyz は 503 を返す
	if err := refreshUC.Bootstrap(ctx); err != nil {
		lg.Error("initial catalog load failed", zap.Error(err))
	}
	go refreshUC.RunPeriodic(ctx, cfg.Catalog.RefreshInterval)

	if rdb != nil {
		refreshSignal := infraredis.NewRefreshSignal(rdb, cfg.Redis.RefreshChannel, lg)
		go func() {
			err := refreshSignal.Listen(ctx, func(ctx context.Context, reason string) {
				if _, err := refreshUC.Refresh(ctx); err != nil {
					lg.Error("signalled catalog refresh failed", zap.String("reason", reason), zap.Error(err))
				}
			})
			if err != nil {
				lg.Error("refresh signal listener stopped", zap.Error(err))
			}
		}()
	}

	// Handler
	stockH := stockhandler.NewStockHandler(cachedUC, lg)

	// ルータ生成
	r := router.NewRouter(stockH, func() (string, int) {
		snap := holder.Load()
		if snap == nil {
			return "", 0
		}
		return snap.Version, snap.Index.Len()
	}, router.Options{Logger: lg, CORSAllowedOrigins: cfg.HTTP.CORSAllowedOrigins})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
