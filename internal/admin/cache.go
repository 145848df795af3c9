package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/pharmacy-backend/pkg/redis"
)

const statsCacheName = "storefront-stats"

type statsSource interface {
	Stats(ctx context.Context) (*Stats, error)
}

// CachedStats serves the public storefront counters from Redis, falling
// back to the database on a miss or a cache failure.
type CachedStats struct {
	source statsSource
	cache  pkgredis.JSONCache
	ttl    time.Duration
	logg   *logger.Logger
}

func NewCachedStats(source statsSource, cache pkgredis.JSONCache, ttl time.Duration, logg *logger.Logger) (*CachedStats, error) {
	switch {
	case source == nil:
		return nil, fmt.Errorf("stats source required")
	case cache == nil:
		return nil, fmt.Errorf("stats cache required")
	case ttl <= 0:
		return nil, fmt.Errorf("stats cache ttl must be positive")
	}
	return &CachedStats{source: source, cache: cache, ttl: ttl, logg: logg}, nil
}

func (c *CachedStats) Stats(ctx context.Context) (*Stats, error) {
	key := c.cache.CacheKey(statsCacheName)

	var cached Stats
	hit, err := c.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		c.warn(ctx, "admin.stats.cache_read_failed", err)
	}
	if hit {
		return &cached, nil
	}

	stats, err := c.source.Stats(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetJSON(ctx, key, stats, c.ttl); err != nil {
		c.warn(ctx, "admin.stats.cache_write_failed", err)
	}
	return stats, nil
}

func (c *CachedStats) warn(ctx context.Context, msg string, err error) {
	if c.logg == nil {
		return
	}
	c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), msg)
}
