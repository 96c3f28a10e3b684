package engine

import (
	"context"

	"github.com/juricore/juricore/core"
)

// HookType defines the pipeline lifecycle points where hooks can run.
//
// Hooks let deployments inject cross-cutting logic (auditing, rate limiting,
// request mutation) without modifying the pipeline itself. They execute
// synchronously; an error from a pre-stage hook terminates the query.
type HookType string

const (
	// HookBeforeRoute runs before router classification. Use for request
	// auditing or tenant-level rate limiting.
	HookBeforeRoute HookType = "before_route"

	// HookAfterRoute runs after classification with the decision available.
	// Use for decision auditing or custom short-circuit handling.
	HookAfterRoute HookType = "after_route"

	// HookBeforeLoop runs after a cache miss, before the reasoning loop.
	HookBeforeLoop HookType = "before_loop"

	// HookAfterAnswer runs once a final answer exists, before it is emitted.
	HookAfterAnswer HookType = "after_answer"

	// HookOnError runs when the pipeline aborts with a fatal error.
	HookOnError HookType = "on_error"
)

// HookContext carries the information available at a hook's lifecycle point.
// Fields beyond Query are populated only where they exist: Decision from
// after_route onward, Answer at after_answer, Err at on_error.
type HookContext struct {
	Query    core.Query
	Decision string
	Answer   string
	Err      error
	Metadata map[string]interface{}
}

// Hook is a pipeline lifecycle extension point.
//
// Implementations should be fast (they run synchronously on the query path),
// safe (no panics) and stateless between invocations. An error from a hook
// before the answer stage terminates the query; errors from after_answer and
// on_error hooks are logged and ignored.
type Hook interface {
	// Type returns the lifecycle point this hook handles.
	Type() HookType

	// Execute performs the hook logic.
	Execute(ctx context.Context, hookCtx *HookContext) error
}

// FunctionHook wraps a function as a Hook implementation.
type FunctionHook struct {
	hookType HookType
	fn       func(ctx context.Context, hookCtx *HookContext) error
}

// NewFunctionHook creates a function-based hook for the given lifecycle point.
func NewFunctionHook(
	hookType HookType,
	fn func(ctx context.Context, hookCtx *HookContext) error,
) *FunctionHook {
	return &FunctionHook{hookType: hookType, fn: fn}
}

// Type returns the lifecycle point this hook handles.
func (h *FunctionHook) Type() HookType { return h.hookType }

// Execute calls the wrapped function.
func (h *FunctionHook) Execute(ctx context.Context, hookCtx *HookContext) error {
	return h.fn(ctx, hookCtx)
}

// hookSet stores hooks by type in registration order. Registration happens
// at construction time; execution is read-only and safe for concurrent use.
type hookSet struct {
	hooks map[HookType][]Hook
}

func newHookSet(hooks []Hook) *hookSet {
	set := &hookSet{hooks: make(map[HookType][]Hook)}
	for _, h := range hooks {
		set.hooks[h.Type()] = append(set.hooks[h.Type()], h)
	}
	return set
}

// run executes all hooks of the given type in registration order, stopping
// at the first error.
func (s *hookSet) run(ctx context.Context, hookType HookType, hookCtx *HookContext) error {
	for _, h := range s.hooks[hookType] {
		if err := h.Execute(ctx, hookCtx); err != nil {
			return err
		}
	}
	return nil
}
