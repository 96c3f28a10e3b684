package testutil

import (
	"time"

	"github.com/juricore/juricore/core"
)

// HistoryBuilder provides a fluent helper for constructing conversation
// histories in tests. Example:
//
//	history := NewHistoryBuilder().User("hi").Assistant("hello").Build()
//
// Turn timestamps advance by one second per appended turn so ordering
// assertions stay deterministic.
type HistoryBuilder struct {
	turns []core.Turn
	clock time.Time
}

// NewHistoryBuilder creates a builder with a fixed starting timestamp.
func NewHistoryBuilder() *HistoryBuilder {
	return &HistoryBuilder{clock: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

// User appends a user turn (chainable).
func (b *HistoryBuilder) User(content string) *HistoryBuilder {
	return b.turn("user", content)
}

// Assistant appends an assistant turn (chainable).
func (b *HistoryBuilder) Assistant(content string) *HistoryBuilder {
	return b.turn("assistant", content)
}

// Turn appends a turn with an arbitrary role, including malformed roles that
// exercise tolerance paths (chainable).
func (b *HistoryBuilder) Turn(role, content string) *HistoryBuilder {
	return b.turn(role, content)
}

// Exchanges appends n user/assistant pairs with numbered contents (chainable).
func (b *HistoryBuilder) Exchanges(n int) *HistoryBuilder {
	for i := 0; i < n; i++ {
		b.User("question").Assistant("answer")
	}
	return b
}

// Build returns the accumulated turns.
func (b *HistoryBuilder) Build() []core.Turn {
	return append([]core.Turn{}, b.turns...)
}

func (b *HistoryBuilder) turn(role, content string) *HistoryBuilder {
	b.turns = append(b.turns, core.Turn{Role: role, Content: content, Timestamp: b.clock})
	b.clock = b.clock.Add(time.Second)
	return b
}
