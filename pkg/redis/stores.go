package redis

import (
	"context"
	"time"
)

// IdempotencyStore backs the checkout idempotency middleware.
type IdempotencyStore interface {
	Get(context.Context, string) (string, error)
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	Set(context.Context, string, any, time.Duration) error
	IdempotencyKey(scope, id string) string
	Del(context.Context, ...string) error
}

// RateLimiter is the fixed-window surface used by auth throttling.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// EventDeduper claims provider event ids so retries are processed once.
type EventDeduper interface {
	WebhookEventKey(provider, eventID string) string
	ClaimOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Del(context.Context, ...string) error
}

// JSONCache stores small read models such as storefront counters.
type JSONCache interface {
	CacheKey(name string) string
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}
