package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/juricore/juricore/core"
)

// InMemoryFactStore is a process-local FactStore keeping facts in nested
// maps (userID -> factID -> fact). Concurrency is protected by RWMutex.
// Suitable for tests and demos; use SQLiteFactStore for durability.
type InMemoryFactStore struct {
	mu    sync.RWMutex
	facts map[string]map[string]core.MemoryFact
}

// NewInMemoryFactStore creates an empty in-memory fact store.
func NewInMemoryFactStore() *InMemoryFactStore {
	return &InMemoryFactStore{facts: make(map[string]map[string]core.MemoryFact)}
}

// GetFacts implements core.FactStore. Facts are returned ordered by creation
// time so prompt rendering is deterministic.
func (s *InMemoryFactStore) GetFacts(_ context.Context, userID string) ([]core.MemoryFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userFacts, ok := s.facts[userID]
	if !ok {
		return []core.MemoryFact{}, nil
	}
	out := make([]core.MemoryFact, 0, len(userFacts))
	for _, fact := range userFacts {
		out = append(out, fact)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// UpsertFacts implements core.FactStore.
func (s *InMemoryFactStore) UpsertFacts(_ context.Context, userID string, facts []core.MemoryFact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.facts[userID]; !ok {
		s.facts[userID] = make(map[string]core.MemoryFact)
	}
	for _, fact := range facts {
		if existing, ok := s.facts[userID][fact.ID]; ok {
			fact.CreatedAt = existing.CreatedAt
		}
		s.facts[userID][fact.ID] = fact
	}
	return nil
}

var _ core.FactStore = (*InMemoryFactStore)(nil)
