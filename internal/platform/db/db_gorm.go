// Package db はカタログストア用の gorm 接続を提供します。
package db

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/h32109/stock-service/internal/feature/stocks/adapters"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	retryInterval  = 3 * time.Second
	connectTimeout = 60 * time.Second
)

// Config はデータベース接続設定です。
type Config struct {
	Driver        string // "postgres"（デフォルト）または "sqlite"
	User          string
	Password      string
	Name          string
	Host          string
	Port          string
	SSLMode       string
	InstanceName  string // Cloud SQL のインスタンス接続名。設定時は Unix ソケットを使用
	SQLitePath    string
	RunMigrations bool
}

// Opener は DSN から gorm.DB を開く関数です。テストで差し替えます。
type Opener func(dsn string) (*gorm.DB, error)

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	cfg := Config{
		Driver:        os.Getenv("DB_DRIVER"),
		User:          os.Getenv("DB_USER"),
		Password:      os.Getenv("DB_PASSWORD"),
		Name:          os.Getenv("DB_NAME"),
		Host:          os.Getenv("DB_HOST"),
		Port:          os.Getenv("DB_PORT"),
		SSLMode:       os.Getenv("DB_SSLMODE"),
		InstanceName:  os.Getenv("INSTANCE_CONNECTION_NAME"),
		SQLitePath:    os.Getenv("DB_SQLITE_PATH"),
		RunMigrations: os.Getenv("RUN_MIGRATIONS") == "true",
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverPostgres
	}
	return cfg
}

// BuildDSN は postgres 用の key=value 形式の DSN を生成します。
// InstanceName が設定されている場合は Host/Port より優先されます。
func BuildDSN(cfg Config) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	if cfg.InstanceName != "" {
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=%s TimeZone=Asia/Seoul",
			cfg.InstanceName, cfg.User, cfg.Password, cfg.Name, sslmode)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=Asia/Seoul",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, sslmode)
}

// ConnectWithRetry は timeout に達するまで retryInterval 間隔で接続を試みます。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	return connectWithRetry(dsn, timeout, open, zap.NewNop())
}

func connectWithRetry(dsn string, timeout time.Duration, open Opener, logger *zap.Logger) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if permanent(err) {
			return nil, fmt.Errorf("db connect failed: %w", err)
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		logger.Warn("db connect failed, retrying", zap.Error(err))
		time.Sleep(min(retryInterval, remaining))
	}
}

// permanent は再試行しても解決しない postgres エラーかどうかを判定します。
// 28000/28P01: 認証失敗, 3D000: データベースが存在しない
func permanent(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "28000", "28P01", "3D000":
		return true
	}
	return false
}

// OpenDB は設定に従って接続し、RunMigrations が有効ならカタログのテーブルを作成します。
func OpenDB(cfg Config, logger *zap.Logger) (*gorm.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("DB_SQLITE_PATH is required for the sqlite driver")
		}
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
	case DriverPostgres, "":
		db, err = connectWithRetry(BuildDSN(cfg), connectTimeout, func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), gcfg)
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		logger.Info("catalog tables migrated")
	}
	return db, nil
}

// Migrate はカタログのテーブルを作成・更新します。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(adapters.Models()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
