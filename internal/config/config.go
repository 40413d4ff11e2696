// Package config は環境変数からアプリケーション設定を読み込みます。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
	"github.com/h32109/stock-service/internal/feature/stocks/engine"
	"github.com/h32109/stock-service/internal/platform/db"
	"github.com/h32109/stock-service/internal/platform/externalapi/catalogapi"
	"github.com/h32109/stock-service/internal/platform/redis"
)

// カタログの取得元
const (
	SourceDB   = "db"
	SourceXLSX = "xlsx"
	SourceHTTP = "http"
)

// HTTPConfig は API サーバーの設定です。
type HTTPConfig struct {
	Addr               string
	CORSAllowedOrigins []string // 空の場合 CORS ミドルウェアは無効
}

// SearchConfig は検索エンジンの設定です。
type SearchConfig struct {
	CacheTTL          time.Duration // 0 の場合は次の午前8時（韓国時間）まで
	Workers           int           // マッチ戦略を並列実行する ants プールのサイズ。0 は逐次実行
	KindPriority      []entity.MatchKind
	LegacyIndustryTag bool
}

// CatalogConfig はカタログの取得元の設定です。
type CatalogConfig struct {
	Source          string
	XLSXPath        string
	API             catalogapi.Config
	RefreshInterval time.Duration // 0 の場合は定期更新しない
}

// LogConfig はロガーの設定です。
type LogConfig struct {
	Level  string
	Format string
}

// Config はアプリケーション全体の設定です。
type Config struct {
	HTTP        HTTPConfig
	DB          db.Config
	Redis       redis.Config
	Search      SearchConfig
	Catalog     CatalogConfig
	SnapshotDir string // 空の場合スナップショットを永続化しない
	Log         LogConfig
}

// Load は環境変数から設定を読み込み、検証します。
// 不正な値はすべてまとめて返します。
func Load() (Config, error) {
	var errs []error
	e := &envReader{errs: &errs}

	cfg := Config{
		HTTP: HTTPConfig{
			Addr:               e.getStr("HTTP_ADDR", ":8080"),
			CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		DB: db.LoadConfigFromEnv(),
		Redis: redis.Config{
			Host:           os.Getenv("REDIS_HOST"),
			Port:           e.getStr("REDIS_PORT", "6379"),
			Password:       os.Getenv("REDIS_PASSWORD"),
			RefreshChannel: e.getStr("REDIS_REFRESH_CHANNEL", redis.DefaultRefreshChannel),
		},
		Search: SearchConfig{
			CacheTTL:          e.getDuration("SEARCH_CACHE_TTL", 0),
			Workers:           e.getInt("SEARCH_WORKERS", 4),
			LegacyIndustryTag: e.getBool("SEARCH_LEGACY_INDUSTRY_TAG", false),
		},
		Catalog: CatalogConfig{
			Source:   e.getStr("CATALOG_SOURCE", SourceDB),
			XLSXPath: os.Getenv("CATALOG_XLSX_PATH"),
			API: catalogapi.Config{
				BaseURL:    os.Getenv("CATALOG_HTTP_BASE_URL"),
				APIKey:     os.Getenv("CATALOG_HTTP_API_KEY"),
				PageSize:   e.getInt("CATALOG_HTTP_PAGE_SIZE", 500),
				RateLimit:  e.getInt("CATALOG_HTTP_RPS", 0),
				RetryCount: e.getInt("CATALOG_HTTP_RETRIES", 2),
				Timeout:    e.getDuration("CATALOG_HTTP_TIMEOUT", 10*time.Second),
			},
			RefreshInterval: e.getDuration("CATALOG_REFRESH_INTERVAL", 0),
		},
		SnapshotDir: os.Getenv("SNAPSHOT_DIR"),
		Log: LogConfig{
			Level:  e.getStr("LOG_LEVEL", "info"),
			Format: e.getStr("LOG_FORMAT", "json"),
		},
	}

	priority, err := engine.ParsePriority(os.Getenv("SEARCH_KIND_PRIORITY"))
	if err != nil {
		errs = append(errs, fmt.Errorf("SEARCH_KIND_PRIORITY: %w", err))
	}
	cfg.Search.KindPriority = priority

	if cfg.Search.Workers < 0 {
		errs = append(errs, fmt.Errorf("SEARCH_WORKERS: must be >= 0, got %d", cfg.Search.Workers))
	}
	switch cfg.Catalog.Source {
	case SourceDB:
	case SourceXLSX:
		if cfg.Catalog.XLSXPath == "" {
			errs = append(errs, errors.New("CATALOG_XLSX_PATH is required when CATALOG_SOURCE=xlsx"))
		}
	case SourceHTTP:
		if cfg.Catalog.API.BaseURL == "" {
			errs = append(errs, errors.New("CATALOG_HTTP_BASE_URL is required when CATALOG_SOURCE=http"))
		}
	default:
		errs = append(errs, fmt.Errorf("CATALOG_SOURCE: unknown source %q", cfg.Catalog.Source))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envReader は型付きで環境変数を読み、変換エラーを蓄積します。
type envReader struct {
	errs *[]error
}

func (e *envReader) getStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *envReader) getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (e *envReader) getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func (e *envReader) getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	if d < 0 {
		*e.errs = append(*e.errs, fmt.Errorf("%s: must not be negative", key))
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
