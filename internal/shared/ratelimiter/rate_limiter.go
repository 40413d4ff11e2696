package ratelimiter

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// RateLimiterInterface は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	WaitIfNeeded()
}

// RateLimiterは、API呼び出しなどの操作の頻度を制限します。
type RateLimiter struct {
	limit     int           // interval あたりの上限
	interval  time.Duration // どの単位でリセットするか
	logger    *zap.Logger
	sleep     func(time.Duration)
	now       func() time.Time
	mu        sync.Mutex
	count     int
	lastReset time.Time
}

// NewRateLimiterは新しいRateLimiterのインスタンスを生成します。
// limit が 0 以下の場合は待機しません。
func NewRateLimiter(limit int, interval time.Duration, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		logger:    logger,
		sleep:     time.Sleep,
		now:       time.Now,
		lastReset: time.Now(),
	}
}

// WaitIfNeededはレートリミットの上限に達しているかを確認し、必要であれば待機します。
func (rl *RateLimiter) WaitIfNeeded() {
	if rl.limit <= 0 {
		return
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	// interval を過ぎたらカウントリセット
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}

	rl.count++
	if rl.count > rl.limit {
		wait := rl.interval - now.Sub(rl.lastReset)
		if wait > 0 {
			rl.logger.Debug("rate limit reached, sleeping",
				zap.Int("limit", rl.limit),
				zap.Duration("sleep", wait),
			)
			rl.sleep(wait)
		}
		// リセット
		rl.count = 1
		rl.lastReset = rl.now()
	}
}
