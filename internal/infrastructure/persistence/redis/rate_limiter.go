package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per identifier in fixed windows. Counters are
// shared by every replica pointing at the same Redis. INCR and EXPIRE go out
// in one MULTI block so a counted key always carries a TTL.
type RateLimiter struct {
	cache  *Cache
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter allows limit requests per window for each identifier.
func NewRateLimiter(cache *Cache, limit int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{cache: cache, limit: int64(limit), window: window, now: time.Now}
}

// Allow increments the identifier's counter and reports whether it is still
// within the limit.
func (l *RateLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	slot := l.now().UnixNano() / int64(l.window)
	key := l.cache.RateLimitKey(identifier, slot)

	var incr *redis.IntCmd
	err := l.cache.do(ctx, func(ctx context.Context) error {
		_, err := l.cache.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, l.window)
			return nil
		})
		if err != nil {
			return fmt.Errorf("rate limit incr: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= l.limit, nil
}
