// Package router はアプリケーションのHTTPルーティングを構築します。
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	stockhandler "github.com/h32109/stock-service/internal/feature/stocks/transport/handler"
	"github.com/h32109/stock-service/internal/platform/http/handler"
	"github.com/h32109/stock-service/internal/platform/http/middleware"
)

// Options はルーターの横断的な設定です。
type Options struct {
	Logger             *zap.Logger
	CORSAllowedOrigins []string // 空の場合 CORS ミドルウェアは無効
}

// NewRouter はミドルウェアとエンドポイントを登録した gin.Engine を返します。
func NewRouter(stocks *stockhandler.StockHandler, readiness handler.SnapshotInfo, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.AccessLog(logger), gin.Recovery())

	// ブラウザから直接呼ばれる場合のみ有効化
	if len(opts.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  opts.CORSAllowedOrigins,
			AllowMethods:  []string{"GET", "HEAD", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", middleware.HeaderRequestID},
			ExposeHeaders: []string{middleware.HeaderRequestID},
			MaxAge:        12 * time.Hour,
		}))
	}

	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.OPTIONS("/healthz", handler.Health)
	// スナップショットのロード完了確認用
	r.GET("/readyz", handler.Readiness(readiness))

	// 銘柄検索・詳細
	r.GET("/stocks", stocks.Search)
	r.GET("/stocks/:stock_id", stocks.Detail)

	return r
}
