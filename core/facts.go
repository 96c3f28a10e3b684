package core

import (
	"context"
	"time"
)

// MemoryFact is a single durable piece of conversational memory owned by the
// memory orchestrator. Facts are keyed by user and upserted by ID; they are
// never deleted through this core.
type MemoryFact struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Kind      string    `json:"kind,omitempty"` // e.g. "preference", "case_detail", "episodic"
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FactStore defines persistence for per-user conversational memory facts.
// Implementations can back this with any durable store; errors are surfaced
// to the memory orchestrator which treats them as non-fatal for the query.
type FactStore interface {
	// GetFacts returns all facts for the user ordered by creation time.
	// An unknown user yields an empty slice, not an error.
	GetFacts(ctx context.Context, userID string) ([]MemoryFact, error)

	// UpsertFacts inserts new facts and updates existing ones by ID.
	UpsertFacts(ctx context.Context, userID string, facts []MemoryFact) error
}
