package core

import (
	"context"
	"sync"

	"github.com/juricore/juricore/logging"
)

// ToolContext provides a constrained, auditable surface for tool
// implementations invoked by the reasoning loop. It carries the query under
// resolution, a conversation history snapshot, and accumulates retrieval
// scope refinements (team, entities) without mutating shared loop state until
// the loop applies them.
type ToolContext struct {
	ctx            context.Context
	query          Query
	functionCallID string
	history        []Turn
	retriever      Retriever

	mu    sync.Mutex
	scope SearchScope

	*loggerAdapter
}

// NewToolContext constructs a tool context bound to one function call within
// one query resolution. The scope argument seeds the accumulated refinements.
func NewToolContext(
	ctx context.Context,
	query Query,
	functionCallID string,
	history []Turn,
	retriever Retriever,
	scope SearchScope,
	logger logging.Logger,
) *ToolContext {
	return &ToolContext{
		ctx:            ctx,
		query:          query,
		functionCallID: functionCallID,
		history:        history,
		retriever:      retriever,
		scope:          scope,
		loggerAdapter:  newLoggerAdapter(logger),
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// Query returns the query under resolution.
func (tc *ToolContext) Query() Query { return tc.query }

// FunctionCallID returns the function call ID associated with the invocation.
func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// History returns the conversation history snapshot taken at loop start.
func (tc *ToolContext) History() []Turn { return tc.history }

// Retriever returns the retrieval collaborator, or nil when not configured.
func (tc *ToolContext) Retriever() Retriever { return tc.retriever }

// Logger returns the logger associated with the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.loggerAdapter.Logger() }

// SetTeam stages a team identifier refinement for subsequent retrievals.
func (tc *ToolContext) SetTeam(teamID string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.scope.TeamID = teamID
}

// AddEntities stages extracted entities, de-duplicated, for subsequent
// retrievals.
func (tc *ToolContext) AddEntities(entities ...string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	seen := make(map[string]struct{}, len(tc.scope.Entities))
	for _, e := range tc.scope.Entities {
		seen[e] = struct{}{}
	}
	for _, e := range entities {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		tc.scope.Entities = append(tc.scope.Entities, e)
	}
}

// Scope returns a snapshot of the accumulated retrieval scope.
func (tc *ToolContext) Scope() SearchScope {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	s := tc.scope
	s.Entities = append([]string(nil), tc.scope.Entities...)
	return s
}
