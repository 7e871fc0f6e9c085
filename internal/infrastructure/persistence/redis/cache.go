// Package redis holds the shared-state components backed by Redis:
//
//   - Cache: connection handle with key helpers
//   - TokenStore: revoked access tokens, kept until they expire
//   - RateLimiter: fixed-window request counters shared by all replicas
//
// Discipline and user records are never cached here.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campus-hub/course-registry/pkg/circuitbreaker"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Redis connection configuration.
type Config struct {
	// Addr is "host:port".
	Addr string

	// Password is the Redis authentication password (empty if no auth).
	Password string

	// DB is the Redis database number (0-15).
	DB int

	// KeyPrefix namespaces every key written by this service.
	KeyPrefix string

	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		KeyPrefix:    "registry:",
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrCacheConnection is returned when Redis connection fails.
	ErrCacheConnection = errors.New("cache: connection failed")

	// ErrCacheKeyEmpty is returned when an empty key is provided.
	ErrCacheKeyEmpty = errors.New("cache: key cannot be empty")
)

// ══════════════════════════════════════════════════════════════════════════════
// KEY PREFIXES
// ══════════════════════════════════════════════════════════════════════════════

const (
	// PrefixRevoked is the prefix for revoked token ids.
	PrefixRevoked = "revoked:"

	// PrefixRateLimit is the prefix for rate limiting keys.
	PrefixRateLimit = "ratelimit:"
)

// ══════════════════════════════════════════════════════════════════════════════
// CACHE CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Cache owns the Redis client.
type Cache struct {
	client  redis.Cmdable
	closer  func() error
	prefix  string
	breaker *circuitbreaker.CircuitBreaker
}

// NewCache connects and pings the server.
func NewCache(ctx context.Context, cfg Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}

	return &Cache{client: client, closer: client.Close, prefix: cfg.KeyPrefix}, nil
}

// NewCacheFromClient wraps an existing client, e.g. a cluster or ring client.
func NewCacheFromClient(client redis.Cmdable, prefix string) *Cache {
	return &Cache{client: client, closer: func() error { return nil }, prefix: prefix}
}

// Client returns the underlying command interface.
func (c *Cache) Client() redis.Cmdable {
	return c.client
}

// UseBreaker routes token and rate-limit commands through cb, so a Redis
// outage fails fast instead of stalling every request on timeouts.
func (c *Cache) UseBreaker(cb *circuitbreaker.CircuitBreaker) {
	c.breaker = cb
}

// do runs fn through the breaker when one is set.
func (c *Cache) do(ctx context.Context, fn func(context.Context) error) error {
	if c.breaker == nil {
		return fn(ctx)
	}
	err := c.breaker.Execute(ctx, fn)
	if circuitbreaker.IsRejected(err) {
		return fmt.Errorf("%w: %w", ErrCacheConnection, err)
	}
	return err
}

// Close closes the connection pool.
func (c *Cache) Close() error {
	return c.closer()
}

// Ping checks the server.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// KEY HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// RevokedKey returns the key marking tokenID as revoked.
func (c *Cache) RevokedKey(tokenID string) string {
	return c.prefix + PrefixRevoked + tokenID
}

// RateLimitKey returns the counter key of identifier in the given window.
func (c *Cache) RateLimitKey(identifier string, window int64) string {
	return fmt.Sprintf("%s%s%s:%d", c.prefix, PrefixRateLimit, identifier, window)
}
