package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultRefreshChannel はスナップショット再構築を通知するチャンネル名です。
const DefaultRefreshChannel = "stocks:refresh"

// RefreshSignal は複数のサーバーインスタンスにカタログ更新を通知します。
type RefreshSignal struct {
	rdb     *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRefreshSignal は channel が空の場合 DefaultRefreshChannel を使用します。
func NewRefreshSignal(rdb *redis.Client, channel string, logger *zap.Logger) *RefreshSignal {
	if channel == "" {
		channel = DefaultRefreshChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshSignal{rdb: rdb, channel: channel, logger: logger}
}

// Channel returns the pub/sub channel name.
func (s *RefreshSignal) Channel() string { return s.channel }

// Publish sends reason to every listener and returns how many received it.
func (s *RefreshSignal) Publish(ctx context.Context, reason string) (int64, error) {
	n, err := s.rdb.Publish(ctx, s.channel, reason).Result()
	if err != nil {
		return 0, fmt.Errorf("publish refresh signal: %w", err)
	}
	return n, nil
}

// Listen は ctx がキャンセルされるまでブロックし、受信ごとに handler を呼び出します。
// 購読が確立する前のエラーのみ返します。
func (s *RefreshSignal) Listen(ctx context.Context, handler func(ctx context.Context, reason string)) error {
	sub := s.rdb.Subscribe(ctx, s.channel)
	defer func() { _ = sub.Close() }()

	// 購読確認を待つ
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.channel, err)
	}
	s.logger.Info("listening for refresh signals", zap.String("channel", s.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			s.logger.Info("refresh signal received", zap.String("reason", msg.Payload))
			handler(ctx, msg.Payload)
		}
	}
}
