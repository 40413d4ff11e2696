// Package cache provides caching decorators for the stock search service.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
	"github.com/h32109/stock-service/internal/feature/stocks/usecase"
)

const defaultNamespace = "stocks:search"

// CachingStockService decorates a StockService with Redis caching of search pages.
// Keys embed the snapshot version, so a swap makes old entries unreachable.
type CachingStockService struct {
	inner     usecase.StockService
	rdb       *redis.Client
	ttl       func() time.Duration
	namespace string
	logger    *zap.Logger
}

var _ usecase.StockService = (*CachingStockService)(nil)

// NewCachingStockService decorates inner with Redis caching.
// If ttl is 0, entries live until the next pre-open (08:00 KST). If namespace
// is empty, it uses "stocks:search".
func NewCachingStockService(rdb *redis.Client, ttl time.Duration, inner usecase.StockService, namespace string, logger *zap.Logger) *CachingStockService {
	ttlFn := TimeUntilNextPreOpen
	if ttl > 0 {
		ttlFn = func() time.Duration { return ttl }
	}
	if namespace == "" {
		namespace = defaultNamespace
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachingStockService{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttlFn,
		namespace: namespace,
		logger:    logger,
	}
}

// Search returns the cached page for the current snapshot or computes and stores it.
// Only successful pages are cached.
func (c *CachingStockService) Search(ctx context.Context, q string, page, size int) (entity.SearchPage, error) {
	version := c.inner.SnapshotVersion()
	// Bypass cache if Redis is not configured or nothing is loaded yet
	if c.rdb == nil || version == "" {
		return c.inner.Search(ctx, q, page, size)
	}

	key := c.cacheKey(version, q, page, size)

	// 1) Check cache
	b, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil && len(b) > 0:
		var out entity.SearchPage
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	case err != nil && err != redis.Nil:
		c.logger.Warn("search cache get failed", zap.String("key", key), zap.Error(err))
	}

	// 2) Fallback to the engine
	out, err := c.inner.Search(ctx, q, page, size)
	if err != nil {
		return entity.SearchPage{}, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl()).Err(); err != nil {
			c.logger.Warn("search cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

// Detail is not cached; the in-memory projection is cheaper than a round trip.
func (c *CachingStockService) Detail(ctx context.Context, code string) (entity.StockDetail, error) {
	return c.inner.Detail(ctx, code)
}

// SnapshotVersion delegates to the inner service.
func (c *CachingStockService) SnapshotVersion() string {
	return c.inner.SnapshotVersion()
}

// InvalidateSnapshot deletes every cached page of the given snapshot version
// and returns the number of keys removed.
func (c *CachingStockService) InvalidateSnapshot(ctx context.Context, version string) (int, error) {
	if c.rdb == nil || version == "" {
		return 0, nil
	}
	return c.deleteByPattern(ctx, c.versionPrefix(version)+"*")
}

// cacheKey generates a cache key for a specific query.
// The query is escaped so that distinct queries never share a key.
func (c *CachingStockService) cacheKey(version, q string, page, size int) string {
	return fmt.Sprintf("%s%s:%d:%d", c.versionPrefix(version), url.QueryEscape(q), page, size)
}

func (c *CachingStockService) versionPrefix(version string) string {
	return fmt.Sprintf("%s:v%s:", c.namespace, url.QueryEscape(version))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingStockService) deleteByPattern(ctx context.Context, pattern string) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := c.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += int(n)
		}
		cursor = cur
		if cursor == 0 {
			return deleted, nil
		}
	}
}
