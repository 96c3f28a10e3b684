package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/juricore/juricore/core"
	"github.com/juricore/juricore/internal/testutil"
)

var _ Builder = (*DefaultBuilder)(nil)

func TestBuilder_EmptyInputsProduceEmptySections(t *testing.T) {
	b := NewBuilder()
	rc := b.Build(nil, true, nil, nil)
	assert.Empty(t, rc.DocumentSection)
	assert.Empty(t, rc.MemorySection)
	assert.Empty(t, rc.HistorySection)
	assert.Empty(t, rc.Render())
}

func TestBuilder_DocumentTruncation(t *testing.T) {
	b := NewBuilder()
	long := strings.Repeat("x", 2000)
	docs := []core.Document{{ID: "d1", Title: "Long doc", Text: long}}

	rc := b.Build(docs, true, nil, nil)
	assert.Contains(t, rc.DocumentSection, "[1] Long doc")
	assert.Contains(t, rc.DocumentSection, strings.Repeat("x", 1500)+"…")
	assert.NotContains(t, rc.DocumentSection, strings.Repeat("x", 1501))

	// Excerpt mode clips harder and falls back to Text when no excerpt set.
	rc = b.Build(docs, false, nil, nil)
	assert.Contains(t, rc.DocumentSection, strings.Repeat("x", 300)+"…")
	assert.NotContains(t, rc.DocumentSection, strings.Repeat("x", 301))
}

func TestBuilder_ShortDocumentNotMarked(t *testing.T) {
	b := NewBuilder()
	docs := []core.Document{{ID: "d1", Text: "short text"}}
	rc := b.Build(docs, true, nil, nil)
	assert.NotContains(t, rc.DocumentSection, "…")
	// Untitled documents fall back to their ID.
	assert.Contains(t, rc.DocumentSection, "[1] d1")
}

func TestBuilder_TruncationIsRuneSafe(t *testing.T) {
	b := NewBuilder(func(o *BuilderOptions) { o.MaxDocumentChars = 5 })
	docs := []core.Document{{ID: "d1", Text: "äöüßéñ und mehr"}}
	rc := b.Build(docs, true, nil, nil)
	assert.Contains(t, rc.DocumentSection, "äöüßé…")
}

func TestBuilder_HistoryWindowAndTurnClipping(t *testing.T) {
	b := NewBuilder()
	history := testutil.NewHistoryBuilder().
		User("oldest question").
		Assistant("oldest answer").
		Exchanges(5).
		User(strings.Repeat("y", 600)).
		Build()

	rc := b.Build(nil, true, nil, history)
	// 13 turns total, only the last 10 survive.
	assert.NotContains(t, rc.HistorySection, "oldest question")
	assert.Equal(t, 10, strings.Count(rc.HistorySection, "said:"))
	assert.Contains(t, rc.HistorySection, strings.Repeat("y", 500)+"…")
	assert.NotContains(t, rc.HistorySection, strings.Repeat("y", 501))
}

func TestBuilder_HistoryRoleLabels(t *testing.T) {
	b := NewBuilder()
	history := testutil.NewHistoryBuilder().
		User("a question").
		Assistant("an answer").
		Turn("", "role went missing").
		Build()

	rc := b.Build(nil, true, nil, history)
	assert.Contains(t, rc.HistorySection, "You said: a question")
	assert.Contains(t, rc.HistorySection, "Assistant said: an answer")
	// Malformed turns classify as assistant instead of failing.
	assert.Contains(t, rc.HistorySection, "Assistant said: role went missing")
}

func TestBuilder_MemorySection(t *testing.T) {
	b := NewBuilder()
	facts := []core.MemoryFact{
		{ID: "f1", Content: "Works at a mid-size firm"},
		{ID: "f2", Content: ""},
		{ID: "f3", Content: "Prefers German sources"},
	}
	rc := b.Build(nil, true, facts, nil)
	assert.Contains(t, rc.MemorySection, "Known about this user:")
	assert.Contains(t, rc.MemorySection, "- Works at a mid-size firm")
	assert.Contains(t, rc.MemorySection, "- Prefers German sources")
	assert.Equal(t, 2, strings.Count(rc.MemorySection, "- "))
}

func TestBuilder_Deterministic(t *testing.T) {
	b := NewBuilder()
	docs := []core.Document{
		{ID: "d1", Title: "First", Text: "alpha"},
		{ID: "d2", Title: "Second", Text: "beta"},
	}
	facts := []core.MemoryFact{{ID: "f1", Content: "a fact"}}
	history := testutil.NewHistoryBuilder().User("q").Assistant("a").Build()

	first := b.Build(docs, true, facts, history).Render()
	second := b.Build(docs, true, facts, history).Render()
	assert.Equal(t, first, second)
}

func TestRender_SectionOrder(t *testing.T) {
	rc := ReasoningContext{
		DocumentSection: "DOCS",
		MemorySection:   "MEMORY",
		HistorySection:  "HISTORY",
	}
	assert.Equal(t, "DOCS\n\nMEMORY\n\nHISTORY", rc.Render())

	rc.MemorySection = ""
	assert.Equal(t, "DOCS\n\nHISTORY", rc.Render())
}

func TestSystemInstructions(t *testing.T) {
	out := SystemInstructions([]ToolSpec{
		{Name: "search_documents", Description: "Search the corpus.", Parameters: map[string]any{"type": "object"}},
	})
	assert.Contains(t, out, "legal research assistant")
	assert.Contains(t, out, "search_documents")
	assert.Contains(t, out, `"is_final"`)

	// No tools still yields the protocol.
	bare := SystemInstructions(nil)
	assert.NotContains(t, bare, "Available tools")
	assert.Contains(t, bare, `"final_answer"`)
}

func TestModeInstruction(t *testing.T) {
	assert.Empty(t, ModeInstruction(ModeDefault))
	assert.Contains(t, ModeInstruction(ModeLegalBrief), "legal brief")
	assert.Contains(t, ModeInstruction(ModeProcedureGuide), "step-by-step")
	assert.NotEmpty(t, ModeInstruction(ModeOther))
}
