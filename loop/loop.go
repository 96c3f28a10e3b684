// Package loop implements the bounded ReAct engine: think, act via a tool,
// observe, repeat until a final answer or a bound is hit. Tool failures are
// observations, not exceptions; the stream's error budget decides when
// repeated failures become fatal.
package loop

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/juricore/juricore/core"
	"github.com/juricore/juricore/gateway"
	"github.com/juricore/juricore/internal/util"
	"github.com/juricore/juricore/lang"
	"github.com/juricore/juricore/logging"
	"github.com/juricore/juricore/metrics"
	"github.com/juricore/juricore/model"
	"github.com/juricore/juricore/prompt"
	"github.com/juricore/juricore/stream"
	"github.com/juricore/juricore/tool"
)

// decision is the backend's JSON reply in the reasoning protocol.
type decision struct {
	Thought string `json:"thought"`
	Action  *struct {
		Tool  string         `json:"tool"`
		Input map[string]any `json:"input"`
	} `json:"action"`
	IsFinal     bool   `json:"is_final"`
	FinalAnswer string `json:"final_answer"`
}

// Outcome is the loop's result for one query.
type Outcome struct {
	Answer     string
	Mode       prompt.Mode
	Violations []gateway.Violation
	Iterations int
}

// IterationLimitError reports that the loop hit its iteration bound without
// reaching a final answer.
type IterationLimitError struct {
	Max int
}

func (e *IterationLimitError) Error() string {
	return fmt.Sprintf("no final answer after %d iterations", e.Max)
}

// ErrorCode implements the error code contract for stream error events.
func (e *IterationLimitError) ErrorCode() string { return "MAX_ITERATIONS" }

// ToolErrorLimitError reports too many consecutive tool failures.
type ToolErrorLimitError struct {
	Tool string
	Max  int
}

func (e *ToolErrorLimitError) Error() string {
	return fmt.Sprintf("%d consecutive tool failures, last in %s", e.Max, e.Tool)
}

// ErrorCode implements the error code contract for stream error events.
func (e *ToolErrorLimitError) ErrorCode() string { return "TOOL_ERROR_LIMIT" }

// Engine drives the ReAct loop.
type Engine struct {
	gw        *gateway.Gateway
	builder   prompt.Builder
	retriever core.Retriever
	tools     map[string]tool.Tool
	toolOrder []string

	maxIterations        int
	maxConsecutiveErrors int
	toolTimeout          time.Duration
	logger               logging.Logger
}

// Options configures an Engine.
type Options struct {
	// MaxIterations bounds think/act/observe rounds.
	MaxIterations int
	// MaxConsecutiveToolErrors aborts after this many tool failures in a row.
	MaxConsecutiveToolErrors int
	// ToolTimeout bounds each tool execution.
	ToolTimeout time.Duration
	// Builder assembles the reasoning context; defaults to prompt.NewBuilder().
	Builder prompt.Builder
	Logger  logging.Logger
}

// NewEngine creates a loop engine. Tools are invoked by name from backend
// decisions; registration order fixes their listing order in the prompt.
func NewEngine(gw *gateway.Gateway, retriever core.Retriever, tools []tool.Tool, optFns ...func(o *Options)) *Engine {
	opts := Options{
		MaxIterations:            8,
		MaxConsecutiveToolErrors: 3,
		ToolTimeout:              30 * time.Second,
		Builder:                  prompt.NewBuilder(),
		Logger:                   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	byName := make(map[string]tool.Tool, len(tools))
	order := make([]string, 0, len(tools))
	for _, t := range tools {
		byName[t.Name()] = t
		order = append(order, t.Name())
	}

	return &Engine{
		gw:                   gw,
		builder:              opts.Builder,
		retriever:            retriever,
		tools:                byName,
		toolOrder:            order,
		maxIterations:        opts.MaxIterations,
		maxConsecutiveErrors: opts.MaxConsecutiveToolErrors,
		toolTimeout:          opts.ToolTimeout,
		logger:               opts.Logger,
	}
}

// Run resolves one query. Events are emitted through em; the returned error
// is the fatal cause when no answer could be produced. Run never emits the
// terminal answer or fatal event itself; the caller owns stream termination.
func (e *Engine) Run(
	ctx context.Context,
	q core.Query,
	history []core.Turn,
	facts []core.MemoryFact,
	em *stream.Emitter,
) (*Outcome, error) {
	mode := prompt.DetectMode(q.Text)
	wrapped := lang.WrapWithLanguageInstruction(q.Text, q.Locale)

	scope := core.SearchScope{UserID: q.UserID, Limit: 5}
	toolCtx := core.NewToolContext(ctx, q, core.NewID(), history, e.retriever, scope, e.logger)

	em.Phase("reasoning")

	// Recall gate: conversation questions answer from history, not the
	// corpus. A gate failure falls back to the standard path.
	var observations []string
	if lang.IsConversationRecallQuery(q.Text, history) {
		if obs, ok := e.recallGate(toolCtx, em); ok {
			observations = append(observations, obs)
		}
	}

	// Opportunistic scope refinement. Failures here are tolerated silently;
	// these tools only sharpen retrieval, they never gate it.
	e.refineScope(toolCtx)

	rc := e.builder.Build(nil, false, facts, history)
	rc.Mode = mode

	system := prompt.SystemInstructions(e.toolSpecs())
	if instr := prompt.ModeInstruction(mode); instr != "" {
		system += "\n\n" + instr
	}

	userText := wrapped
	if rendered := rc.Render(); rendered != "" {
		userText = rendered + "\n\n" + wrapped
	}
	messages := []model.Message{{Role: model.RoleUser, Text: userText}}
	for _, obs := range observations {
		messages = append(messages, model.Message{Role: model.RoleUser, Text: obs})
	}

	consecutiveErrors := 0
	for iteration := 1; iteration <= e.maxIterations; iteration++ {
		result, err := e.gw.ReasonRaw(ctx, system, mode, messages)
		if err != nil {
			metrics.LoopIterations.Observe(float64(iteration))
			return nil, err
		}

		var d decision
		if err := util.ExtractJSON(result.Answer, &d); err != nil {
			// Malformed decision: nudge the backend back onto the protocol
			// and burn the iteration.
			if !em.Error(fmt.Errorf("unparseable reasoning step: %w", err)) {
				metrics.LoopIterations.Observe(float64(iteration))
				return nil, err
			}
			messages = append(messages,
				model.Message{Role: model.RoleAssistant, Text: result.Answer},
				model.Message{Role: model.RoleUser, Text: "Your reply was not a valid protocol JSON object. Reply with exactly one JSON object as instructed."},
			)
			continue
		}

		if d.Thought != "" {
			em.Thinking(d.Thought)
		}

		if d.IsFinal {
			em.Emit(core.NewReasoningStepEvent(q.ID, iteration, d.Thought, ""))
			metrics.LoopIterations.Observe(float64(iteration))
			return &Outcome{
				Answer:     d.FinalAnswer,
				Mode:       mode,
				Violations: e.gw.ValidateAnswer(d.FinalAnswer),
				Iterations: iteration,
			}, nil
		}

		if d.Action == nil || d.Action.Tool == "" {
			if !em.Error(fmt.Errorf("reasoning step has neither action nor final answer")) {
				metrics.LoopIterations.Observe(float64(iteration))
				return nil, fmt.Errorf("reasoning step has neither action nor final answer")
			}
			messages = append(messages,
				model.Message{Role: model.RoleAssistant, Text: result.Answer},
				model.Message{Role: model.RoleUser, Text: "Provide an action or a final answer."},
			)
			continue
		}

		em.Emit(core.NewReasoningStepEvent(q.ID, iteration, d.Thought, d.Action.Tool))
		observation, toolErr := e.execute(toolCtx, d.Action.Tool, d.Action.Input, em)
		if toolErr != nil {
			consecutiveErrors++
			metrics.ToolErrors.WithLabelValues(d.Action.Tool).Inc()
			if consecutiveErrors >= e.maxConsecutiveErrors {
				metrics.LoopIterations.Observe(float64(iteration))
				return nil, &ToolErrorLimitError{Tool: d.Action.Tool, Max: consecutiveErrors}
			}
			if !em.Error(toolErr) {
				metrics.LoopIterations.Observe(float64(iteration))
				return nil, toolErr
			}
			observation = fmt.Sprintf("Tool %s failed: %v. Try a different approach.", d.Action.Tool, toolErr)
		} else {
			consecutiveErrors = 0
		}

		em.Observation(d.Action.Tool, observation)
		messages = append(messages,
			model.Message{Role: model.RoleAssistant, Text: result.Answer},
			model.Message{Role: model.RoleUser, Text: "Observation: " + observation},
		)
	}

	metrics.LoopIterations.Observe(float64(e.maxIterations))
	return nil, &IterationLimitError{Max: e.maxIterations}
}

// recallGate runs the recall tool directly. ok=false means the gate failed
// and the caller must fall back to standard retrieval.
func (e *Engine) recallGate(toolCtx *core.ToolContext, em *stream.Emitter) (string, bool) {
	recallTool, ok := e.tools[tool.RecallToolName]
	if !ok {
		return "", false
	}

	em.Status("Checking earlier conversation")
	result, err := recallTool.Call(toolCtx, map[string]any{})
	if err != nil {
		e.logger.Debug("loop.recall_gate.fallback", "error", err.Error())
		return "", false
	}

	observation := e.renderResult(result)
	em.Observation(tool.RecallToolName, observation)
	return "Observation from conversation history: " + observation, true
}

// refineScope runs entity extraction and team detection once up front so the
// first retrieval already carries the narrowed scope.
func (e *Engine) refineScope(toolCtx *core.ToolContext) {
	for _, name := range []string{tool.EntityExtractionToolName, tool.TeamQueryToolName} {
		t, ok := e.tools[name]
		if !ok {
			continue
		}
		if _, err := t.Call(toolCtx, map[string]any{}); err != nil {
			e.logger.Debug("loop.refine_scope.skipped", "tool", name, "error", err.Error())
		}
	}
}

// execute runs one tool call with timeout, panic recovery and start/end
// events.
func (e *Engine) execute(
	toolCtx *core.ToolContext,
	name string,
	args map[string]any,
	em *stream.Emitter,
) (observation string, err error) {
	t, ok := e.tools[name]
	if !ok {
		return "", tool.NewToolError(name, "unknown tool", "UNKNOWN_TOOL")
	}
	if args == nil {
		args = map[string]any{}
	}

	em.ToolCall(name, args)
	em.Emit(core.NewToolStartEvent(toolCtx.Query().ID, name))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = tool.NewToolError(name, fmt.Sprintf("panic: %v", r), "EXECUTION_ERROR")
			em.Emit(core.NewToolEndEvent(toolCtx.Query().ID, name, time.Since(start), false))
		}
	}()

	ctx, cancel := context.WithTimeout(toolCtx.Context(), e.toolTimeout)
	defer cancel()

	type callResult struct {
		value any
		err   error
	}
	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callResult{err: tool.NewToolError(name, fmt.Sprintf("panic: %v", r), "EXECUTION_ERROR")}
			}
		}()
		value, callErr := t.Call(toolCtx, args)
		done <- callResult{value: value, err: callErr}
	}()

	var result callResult
	select {
	case result = <-done:
	case <-ctx.Done():
		result = callResult{err: tool.NewToolError(name, "tool timed out", "TIMEOUT")}
	}

	elapsed := time.Since(start)
	em.Emit(core.NewToolEndEvent(toolCtx.Query().ID, name, elapsed, result.err == nil))

	if result.err != nil {
		return "", result.err
	}
	return e.renderResult(result.value), nil
}

func (e *Engine) toolSpecs() []prompt.ToolSpec {
	specs := make([]prompt.ToolSpec, 0, len(e.toolOrder))
	for _, name := range e.toolOrder {
		t := e.tools[name]
		specs = append(specs, prompt.ToolSpec{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return specs
}

// renderResult turns a tool's return value into observation text. Retrieved
// documents render through the context builder so its evidence bounds apply
// to observations too; a raw dump would put unbounded document text in front
// of the backend.
func (e *Engine) renderResult(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []core.Document:
		if len(v) == 0 {
			return "No documents found."
		}
		return e.builder.Build(v, true, nil, nil).DocumentSection
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
