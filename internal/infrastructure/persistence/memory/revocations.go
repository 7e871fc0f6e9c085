package memory

import (
	"context"
	"sync"
	"time"
)

// RevocationStore keeps revoked token ids in a map. Expired entries are
// dropped lazily on lookup.
type RevocationStore struct {
	mu    sync.Mutex
	until map[string]time.Time
	now   func() time.Time
}

// NewRevocationStore creates an empty store.
func NewRevocationStore() *RevocationStore {
	return &RevocationStore{until: make(map[string]time.Time), now: time.Now}
}

// Revoke marks tokenID revoked until the given instant.
func (s *RevocationStore) Revoke(_ context.Context, tokenID string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.until[tokenID] = until
	return nil
}

// IsRevoked reports whether tokenID is still revoked.
func (s *RevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.until[tokenID]
	if !ok {
		return false, nil
	}
	if s.now().After(until) {
		delete(s.until, tokenID)
		return false, nil
	}
	return true, nil
}
