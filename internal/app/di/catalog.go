// Package di provides dependency injection factories for creating application components.
package di

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/h32109/stock-service/internal/config"
	"github.com/h32109/stock-service/internal/feature/stocks/adapters"
	"github.com/h32109/stock-service/internal/feature/stocks/adapters/excel"
	"github.com/h32109/stock-service/internal/feature/stocks/usecase"
	"github.com/h32109/stock-service/internal/platform/externalapi/catalogapi"
	infrahttp "github.com/h32109/stock-service/internal/platform/http"
	"github.com/h32109/stock-service/internal/shared/ratelimiter"
)

// NewCatalogProvider returns the CatalogProvider selected by CATALOG_SOURCE.
// The db source requires an open connection; the others ignore db.
func NewCatalogProvider(cfg config.CatalogConfig, db *gorm.DB, logger *zap.Logger) (usecase.CatalogProvider, error) {
	switch cfg.Source {
	case config.SourceDB:
		if db == nil {
			return nil, errors.New("catalog source db requires a database connection")
		}
		return adapters.NewCatalogRepository(db), nil
	case config.SourceXLSX:
		return excel.NewCatalogWorkbook(cfg.XLSXPath), nil
	case config.SourceHTTP:
		return NewRemoteCatalog(cfg.API, logger), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}

// NewRemoteCatalog creates a fully configured RemoteCatalog with HTTP client and rate limiter.
func NewRemoteCatalog(cfg catalogapi.Config, logger *zap.Logger) *catalogapi.RemoteCatalog {
	httpClient := infrahttp.NewHTTPClient(infrahttp.ClientConfig{Timeout: cfg.Timeout})
	limiter := ratelimiter.NewRateLimiter(cfg.RateLimit, time.Second, logger)
	return catalogapi.NewRemoteCatalog(cfg, httpClient, limiter, logger)
}
