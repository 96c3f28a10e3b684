package session

import (
	"sync"
	"testing"
	"time"

	"github.com/juricore/juricore/core"
)

// Interface compliance (compile-time assertion)
var _ core.ConversationStore = (*InMemoryStore)(nil)

func TestInMemoryStore_AppendAndHistory(t *testing.T) {
	store := NewInMemoryStore()

	history, err := store.History("c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %#v", history)
	}

	turns := []core.Turn{
		{Role: "user", Content: "first", Timestamp: time.Now()},
		{Role: "assistant", Content: "second", Timestamp: time.Now()},
		{Role: "user", Content: "third", Timestamp: time.Now()},
	}
	for _, turn := range turns {
		if err := store.Append("c1", turn); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	history, _ = store.History("c1")
	if len(history) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(history))
	}
	for i, turn := range history {
		if turn.Content != turns[i].Content {
			t.Fatalf("turn %d out of order: %#v", i, turn)
		}
	}

	// Conversations are isolated.
	other, _ := store.History("c2")
	if len(other) != 0 {
		t.Fatalf("expected empty history for other conversation, got %#v", other)
	}
}

func TestInMemoryStore_HistoryIsACopy(t *testing.T) {
	store := NewInMemoryStore()
	_ = store.Append("c1", core.Turn{Role: "user", Content: "original"})

	history, _ := store.History("c1")
	history[0].Content = "mutated"

	fresh, _ := store.History("c1")
	if fresh[0].Content != "original" {
		t.Fatalf("expected copy isolation, got %q", fresh[0].Content)
	}
}

func TestInMemoryStore_ConcurrentAppends(t *testing.T) {
	store := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Append("c1", core.Turn{Role: "user", Content: "x"})
			_, _ = store.History("c1")
		}()
	}
	wg.Wait()

	history, _ := store.History("c1")
	if len(history) != 20 {
		t.Fatalf("expected 20 turns, got %d", len(history))
	}
}
