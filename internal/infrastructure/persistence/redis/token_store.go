package redis

import (
	"context"
	"fmt"
	"time"
)

// TokenStore records revoked token ids with a TTL matching the token's
// remaining lifetime, so entries disappear once the token would be rejected
// as expired anyway.
type TokenStore struct {
	cache *Cache
	now   func() time.Time
}

// NewTokenStore creates a store over cache.
func NewTokenStore(cache *Cache) *TokenStore {
	return &TokenStore{cache: cache, now: time.Now}
}

// Revoke marks tokenID revoked until the given instant.
func (s *TokenStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if tokenID == "" {
		return ErrCacheKeyEmpty
	}

	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	return s.cache.do(ctx, func(ctx context.Context) error {
		if err := s.cache.client.Set(ctx, s.cache.RevokedKey(tokenID), "1", ttl).Err(); err != nil {
			return fmt.Errorf("revoke token: %w", err)
		}
		return nil
	})
}

// IsRevoked reports whether tokenID has been revoked.
func (s *TokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, ErrCacheKeyEmpty
	}

	var n int64
	err := s.cache.do(ctx, func(ctx context.Context) error {
		var err error
		if n, err = s.cache.client.Exists(ctx, s.cache.RevokedKey(tokenID)).Result(); err != nil {
			return fmt.Errorf("check revoked token: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
