package session

import (
	"sync"

	"github.com/juricore/juricore/core"
)

// InMemoryStore is a volatile ConversationStore implementation keeping
// per-conversation turn slices in a process local map. It is safe for
// concurrent access and best suited for tests or ephemeral demo servers.
// Returned histories are copies to prevent external mutation of internal
// state.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string][]core.Turn
}

// NewInMemoryStore constructs an empty in-memory conversation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{conversations: make(map[string][]core.Turn)}
}

// Append adds a turn to a conversation, creating it lazily.
func (s *InMemoryStore) Append(conversationID string, turn core.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[conversationID] = append(s.conversations[conversationID], turn)
	return nil
}

// History returns a copy of the conversation's turns in append order. An
// unknown conversation yields an empty history, not an error.
func (s *InMemoryStore) History(conversationID string) ([]core.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.conversations[conversationID]
	out := make([]core.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

var _ core.ConversationStore = (*InMemoryStore)(nil)
