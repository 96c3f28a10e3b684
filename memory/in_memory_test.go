package memory

import (
	"context"
	"testing"
	"time"

	"github.com/juricore/juricore/core"
)

// Interface compliance (compile-time assertion)
var _ core.FactStore = (*InMemoryFactStore)(nil)

func TestInMemoryFactStore_GetAndUpsert(t *testing.T) {
	store := NewInMemoryFactStore()
	ctx := context.Background()

	facts, err := store.GetFacts(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(facts) != 0 {
		t.Fatalf("expected no facts, got %#v", facts)
	}

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	err = store.UpsertFacts(ctx, "u1", []core.MemoryFact{
		{ID: "f2", Content: "second", CreatedAt: base.Add(time.Minute)},
		{ID: "f1", Content: "first", CreatedAt: base},
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	facts, _ = store.GetFacts(ctx, "u1")
	if len(facts) != 2 {
		t.Fatalf("expected 2 facts, got %d", len(facts))
	}
	// Ordered by creation time.
	if facts[0].ID != "f1" || facts[1].ID != "f2" {
		t.Fatalf("unexpected order: %s, %s", facts[0].ID, facts[1].ID)
	}

	// Users are isolated.
	other, _ := store.GetFacts(ctx, "u2")
	if len(other) != 0 {
		t.Fatalf("expected no facts for other user, got %#v", other)
	}
}

func TestInMemoryFactStore_UpsertPreservesCreatedAt(t *testing.T) {
	store := NewInMemoryFactStore()
	ctx := context.Background()

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	_ = store.UpsertFacts(ctx, "u1", []core.MemoryFact{
		{ID: "f1", Content: "original", CreatedAt: created, UpdatedAt: created},
	})

	later := created.Add(time.Hour)
	_ = store.UpsertFacts(ctx, "u1", []core.MemoryFact{
		{ID: "f1", Content: "revised", CreatedAt: later, UpdatedAt: later},
	})

	facts, _ := store.GetFacts(ctx, "u1")
	if len(facts) != 1 {
		t.Fatalf("expected 1 fact, got %d", len(facts))
	}
	if facts[0].Content != "revised" {
		t.Fatalf("expected updated content, got %q", facts[0].Content)
	}
	if !facts[0].CreatedAt.Equal(created) {
		t.Fatalf("expected original created_at preserved, got %v", facts[0].CreatedAt)
	}
	if !facts[0].UpdatedAt.Equal(later) {
		t.Fatalf("expected updated_at advanced, got %v", facts[0].UpdatedAt)
	}
}
