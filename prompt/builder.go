package prompt

import (
	"fmt"
	"strings"

	"github.com/juricore/juricore/core"
)

// ReasoningContext is the assembled prompt material for one backend call.
// Sections are pre-rendered strings; empty sections are omitted from the
// final prompt.
type ReasoningContext struct {
	Mode            Mode
	DocumentSection string
	MemorySection   string
	HistorySection  string
}

// Render concatenates the non-empty sections in stable order.
func (rc ReasoningContext) Render() string {
	var parts []string
	if rc.DocumentSection != "" {
		parts = append(parts, rc.DocumentSection)
	}
	if rc.MemorySection != "" {
		parts = append(parts, rc.MemorySection)
	}
	if rc.HistorySection != "" {
		parts = append(parts, rc.HistorySection)
	}
	return strings.Join(parts, "\n\n")
}

// Builder assembles a ReasoningContext from retrieval results, memory facts
// and conversation history. Implementations must be deterministic for
// identical inputs.
type Builder interface {
	Build(documents []core.Document, useFullDocs bool, facts []core.MemoryFact, history []core.Turn) ReasoningContext
}

// BuilderOptions configures a DefaultBuilder.
type BuilderOptions struct {
	// MaxDocumentChars clips each document's full text.
	MaxDocumentChars int
	// MaxExcerptChars clips each document excerpt.
	MaxExcerptChars int
	// HistoryTurns is how many trailing turns are kept.
	HistoryTurns int
	// MaxTurnChars clips each history turn's content.
	MaxTurnChars int
	// TruncationMarker is appended to every clipped string.
	TruncationMarker string
}

// DefaultBuilder renders sections with fixed truncation rules. It holds no
// mutable state; identical inputs produce identical output.
type DefaultBuilder struct {
	opts BuilderOptions
}

// NewBuilder creates a DefaultBuilder.
func NewBuilder(optFns ...func(o *BuilderOptions)) *DefaultBuilder {
	opts := BuilderOptions{
		MaxDocumentChars: 1500,
		MaxExcerptChars:  300,
		HistoryTurns:     10,
		MaxTurnChars:     500,
		TruncationMarker: "…",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &DefaultBuilder{opts: opts}
}

// Build implements Builder.
func (b *DefaultBuilder) Build(
	documents []core.Document,
	useFullDocs bool,
	facts []core.MemoryFact,
	history []core.Turn,
) ReasoningContext {
	return ReasoningContext{
		DocumentSection: b.buildDocuments(documents, useFullDocs),
		MemorySection:   b.buildMemory(facts),
		HistorySection:  b.buildHistory(history),
	}
}

func (b *DefaultBuilder) buildDocuments(documents []core.Document, useFullDocs bool) string {
	if len(documents) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Relevant documents:\n")
	for i, doc := range documents {
		title := doc.Title
		if title == "" {
			title = doc.ID
		}
		var body string
		if useFullDocs {
			body = b.truncate(doc.Text, b.opts.MaxDocumentChars)
		} else {
			excerpt := doc.Excerpt
			if excerpt == "" {
				excerpt = doc.Text
			}
			body = b.truncate(excerpt, b.opts.MaxExcerptChars)
		}
		fmt.Fprintf(&sb, "[%d] %s\n%s\n", i+1, title, body)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *DefaultBuilder) buildMemory(facts []core.MemoryFact) string {
	var lines []string
	for _, fact := range facts {
		if fact.Content == "" {
			continue
		}
		lines = append(lines, "- "+fact.Content)
	}
	if len(lines) == 0 {
		return ""
	}
	return "Known about this user:\n" + strings.Join(lines, "\n")
}

func (b *DefaultBuilder) buildHistory(history []core.Turn) string {
	if len(history) == 0 {
		return ""
	}
	if len(history) > b.opts.HistoryTurns {
		history = history[len(history)-b.opts.HistoryTurns:]
	}
	var sb strings.Builder
	sb.WriteString("Conversation so far:\n")
	for _, turn := range history {
		// Tolerate malformed turns: a missing role classifies as assistant,
		// missing content renders as empty.
		label := "Assistant said"
		if turn.IsUser() {
			label = "You said"
		}
		content := b.truncate(turn.Content, b.opts.MaxTurnChars)
		fmt.Fprintf(&sb, "%s: %s\n", label, content)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// truncate clips s to max runes and appends the marker. Rune-based so the
// marker never lands inside a multi-byte character.
func (b *DefaultBuilder) truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + b.opts.TruncationMarker
}
