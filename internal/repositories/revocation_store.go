package repositories

import (
	"context"
	"sync"
	"time"
)

// RevocationStore tracks token ids (jti) invalidated before their natural
// expiry. Revoke must be idempotent; every backend keeps the token expiry so
// entries can be dropped once the token could no longer validate anyway.
//
// Revoke reports added=true only for the single call that first inserted the
// jti, which lets callers use it as an atomic single-use claim.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) (added bool, err error)
	IsRevoked(ctx context.Context, jti string) (bool, error)
	CleanupExpired(ctx context.Context) error
}

// MemoryRevocationStore keeps the blocklist in process memory.
//
// State is lost on restart: a token revoked before a restart validates
// again afterwards until it expires. Use the postgres or redis backend
// when that matters.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

var _ RevocationStore = (*MemoryRevocationStore)(nil)

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *MemoryRevocationStore) WithClock(now func() time.Time) *MemoryRevocationStore {
	s.now = now
	return s
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, jti string, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.entries[jti]
	if ok && !prev.After(s.now()) {
		// stale entry left for the cleanup job; the jti is free again
		ok = false
	}
	if !ok || expiresAt.After(prev) {
		s.entries[jti] = expiresAt
	}
	return !ok, nil
}

// IsRevoked drops the entry it finds when the token has already expired.
func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	exp, ok := s.entries[jti]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if exp.After(s.now()) {
		return true, nil
	}

	s.mu.Lock()
	if cur, still := s.entries[jti]; still && !cur.After(s.now()) {
		delete(s.entries, jti)
	}
	s.mu.Unlock()
	return false, nil
}

func (s *MemoryRevocationStore) CleanupExpired(_ context.Context) error {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for jti, exp := range s.entries {
		if !exp.After(now) {
			delete(s.entries, jti)
		}
	}
	return nil
}

// Len reports the number of tracked ids.
func (s *MemoryRevocationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
