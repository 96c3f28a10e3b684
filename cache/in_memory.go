package cache

import (
	"context"
	"sync"
	"time"
)

// entry pairs an answer with its expiry deadline.
type entry struct {
	answer    CachedAnswer
	expiresAt time.Time
}

// InMemoryStore keeps entries in a map guarded by a RWMutex. Expired entries
// are dropped lazily on read and swept opportunistically on write. Suitable
// for single-process deployments and tests; use RedisStore to share a cache
// across replicas.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get implements Store.
func (s *InMemoryStore) Get(_ context.Context, fingerprint string) (CachedAnswer, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[fingerprint]
	s.mu.RUnlock()
	if !ok {
		return CachedAnswer{}, false, nil
	}
	if s.now().After(e.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if cur, ok := s.entries[fingerprint]; ok && s.now().After(cur.expiresAt) {
			delete(s.entries, fingerprint)
		}
		s.mu.Unlock()
		return CachedAnswer{}, false, nil
	}
	return e.answer, true, nil
}

// Set implements Store.
func (s *InMemoryStore) Set(_ context.Context, fingerprint string, answer CachedAnswer, ttl time.Duration) error {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.entries[fingerprint] = entry{answer: answer, expiresAt: now.Add(ttl)}
	return nil
}

// Len reports the number of stored entries, expired or not.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
