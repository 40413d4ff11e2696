// Package redis は Redis クライアントの生成と、スナップショット更新通知の pub/sub を提供します。
package redis

import (
	"context"
	"net"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config は Redis 接続設定です。Host が空の場合 Redis は使用しません。
type Config struct {
	Host           string
	Port           string
	Password       string
	RefreshChannel string
}

// Enabled reports whether a redis host is configured.
func (c Config) Enabled() bool { return c.Host != "" }

// Addr returns host:port.
func (c Config) Addr() string { return net.JoinHostPort(c.Host, c.Port) }

// NewRedisClient は Redis クライアントを生成し、接続確認を行います。
func NewRedisClient(ctx context.Context, cfg Config, logger *zap.Logger) (*redis.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       0,
	})

	// 接続確認
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("Redis connection failed", zap.String("address", cfg.Addr()), zap.Error(err))
		_ = rdb.Close()
		return nil, err
	}

	logger.Info("Redis connection successful", zap.String("address", cfg.Addr()))
	return rdb, nil
}
