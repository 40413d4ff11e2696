package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/h32109/stock-service/internal/api"
	"github.com/h32109/stock-service/internal/app/di"
	"github.com/h32109/stock-service/internal/config"
	"github.com/h32109/stock-service/internal/feature/stocks/adapters"
	"github.com/h32109/stock-service/internal/feature/stocks/adapters/excel"
	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
	"github.com/h32109/stock-service/internal/feature/stocks/engine"
	"github.com/h32109/stock-service/internal/feature/stocks/transport/http/dto"
	"github.com/h32109/stock-service/internal/feature/stocks/usecase"
	infradb "github.com/h32109/stock-service/internal/platform/db"
	"github.com/h32109/stock-service/internal/platform/logger"
	infraredis "github.com/h32109/stock-service/internal/platform/redis"
	"github.com/h32109/stock-service/internal/platform/snapshotstore"
	"github.com/h32109/stock-service/internal/shared/hangul"
)

const (
	sourceSnapshot = "snapshot"
	loggerKey      = "logger"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "stockctl",
		Usage: "Manage the stock catalog and run offline searches",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Validate a catalog workbook and upsert it into the database",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "xlsx",
						Aliases:  []string{"f"},
						Usage:    "Path to the catalog workbook",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "migrate",
						Usage: "Create or update the catalog tables before importing",
					},
					&cli.BoolFlag{
						Name:  "publish",
						Usage: "Publish a refresh signal after a successful import",
					},
				},
			},
			{
				Name:   "export",
				Usage:  "Write the catalog of a source to a workbook",
				Action: exportCommand,
				Flags: append(sourceFlags(),
					&cli.StringFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "Destination workbook path",
						Required: true,
					},
				),
			},
			{
				Name:   "refresh",
				Usage:  "Ask running servers to rebuild their search snapshot",
				Action: refreshCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "reason",
						Usage: "Free text attached to the signal",
						Value: "manual",
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Run a search against a catalog source and print the JSON page",
				Action: searchCommand,
				Flags: append(sourceFlags(),
					&cli.StringFlag{
						Name:     "q",
						Usage:    "Search query",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page number",
						Value: usecase.DefaultPage,
					},
					&cli.IntFlag{
						Name:  "size",
						Usage: "Page size",
						Value: usecase.DefaultPageSize,
					},
				),
			},
		},
	}
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "source",
			Usage: "Catalog source (db, xlsx, http, snapshot)",
			Value: config.SourceDB,
		},
		&cli.StringFlag{
			Name:  "xlsx",
			Usage: "Workbook path for --source xlsx",
		},
		&cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Snapshot directory for --source snapshot (defaults to SNAPSHOT_DIR)",
		},
	}
}

func setupLogger(c *cli.Context) error {
	lg, err := logger.NewLogger(c.String("log-level"), "console", "stockctl")
	if err != nil {
		return err
	}
	c.App.Metadata = map[string]any{loggerKey: lg}
	return nil
}

func loggerFrom(c *cli.Context) *zap.Logger {
	if lg, ok := c.App.Metadata[loggerKey].(*zap.Logger); ok {
		return lg
	}
	return zap.NewNop()
}

func importCommand(c *cli.Context) error {
	ctx := c.Context
	lg := loggerFrom(c)
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	catalog, err := excel.NewCatalogWorkbook(c.String("xlsx")).LoadCatalog(ctx)
	if err != nil {
		return err
	}
	// 取り込む前に階層とコードを検証する
	snap, err := engine.BuildSnapshot(catalog, "import", time.Now())
	if err != nil {
		return err
	}

	cfg.DB.RunMigrations = cfg.DB.RunMigrations || c.Bool("migrate")
	gdb, err := infradb.OpenDB(cfg.DB, lg)
	if err != nil {
		return err
	}
	if err := adapters.NewCatalogRepository(gdb).SaveCatalog(ctx, catalog); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "imported %d securities, %d classification nodes\n", snap.Index.Len(), snap.Hierarchy.Len())
	for _, d := range snap.DanglingThemes {
		fmt.Fprintf(c.App.ErrWriter, "warning: unknown node in theme association %s\n", d)
	}

	if c.Bool("publish") {
		return publish(ctx, c, cfg.Redis, "import")
	}
	return nil
}

func exportCommand(c *cli.Context) error {
	lg := loggerFrom(c)
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	catalog, _, err := loadCatalog(c.Context, c, cfg, lg)
	if err != nil {
		return err
	}
	if err := excel.WriteCatalog(c.String("out"), catalog); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "exported %d securities to %s\n", len(catalog.Securities), c.String("out"))
	return nil
}

func refreshCommand(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return publish(c.Context, c, cfg.Redis, c.String("reason"))
}

func searchCommand(c *cli.Context) error {
	ctx := c.Context
	lg := loggerFrom(c)
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	catalog, version, err := loadCatalog(ctx, c, cfg, lg)
	if err != nil {
		return err
	}
	snap, err := engine.BuildSnapshot(catalog, version, time.Now())
	if err != nil {
		return err
	}
	holder := engine.NewHolder()
	holder.Swap(snap)

	searchEngine, err := di.NewSearchEngine(cfg.Search)
	if err != nil {
		return err
	}
	defer searchEngine.Release()

	q := c.String("q")
	switch {
	case hangul.IsStockCode(q):
		fmt.Fprintf(c.App.ErrWriter, "query %q looks like a stock code\n", q)
	case hangul.IsInitialQuery(q):
		fmt.Fprintf(c.App.ErrWriter, "query %q is an initial-consonant query\n", q)
	}

	page, err := usecase.NewStockUsecase(holder, searchEngine.Matcher, searchEngine.Ranker).
		Search(ctx, q, c.Int("page"), c.Int("size"))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(api.DataResponse[dto.SearchData]{Data: dto.NewSearchData(page)})
}

// loadCatalog reads the catalog from --source and returns it with a version label.
func loadCatalog(ctx context.Context, c *cli.Context, cfg config.Config, lg *zap.Logger) (entity.Catalog, string, error) {
	source := c.String("source")
	if source == sourceSnapshot {
		dir := c.String("snapshot-dir")
		if dir == "" {
			dir = cfg.SnapshotDir
		}
		if dir == "" {
			return entity.Catalog{}, "", errors.New("--snapshot-dir or SNAPSHOT_DIR is required for --source snapshot")
		}
		store, err := snapshotstore.Open(dir, lg)
		if err != nil {
			return entity.Catalog{}, "", err
		}
		defer func() { _ = store.Close() }()
		version, catalog, err := store.Load(ctx)
		return catalog, version, err
	}

	cfg.Catalog.Source = source
	if p := c.String("xlsx"); p != "" {
		cfg.Catalog.XLSXPath = p
	}
	if source == config.SourceXLSX && cfg.Catalog.XLSXPath == "" {
		return entity.Catalog{}, "", errors.New("--xlsx is required for --source xlsx")
	}

	var gdb *gorm.DB
	if source == config.SourceDB {
		var err error
		if gdb, err = infradb.OpenDB(cfg.DB, lg); err != nil {
			return entity.Catalog{}, "", err
		}
	}
	provider, err := di.NewCatalogProvider(cfg.Catalog, gdb, lg)
	if err != nil {
		return entity.Catalog{}, "", err
	}
	catalog, err := provider.LoadCatalog(ctx)
	return catalog, source, err
}

func publish(ctx context.Context, c *cli.Context, cfg infraredis.Config, reason string) error {
	if !cfg.Enabled() {
		return errors.New("REDIS_HOST is required to publish a refresh signal")
	}
	rdb, err := infraredis.NewRedisClient(ctx, cfg, loggerFrom(c))
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	n, err := infraredis.NewRefreshSignal(rdb, cfg.RefreshChannel, loggerFrom(c)).Publish(ctx, reason)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "refresh signal delivered to %d listeners\n", n)
	return nil
}
