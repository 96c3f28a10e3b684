package core

import (
	"time"

	"github.com/google/uuid"
)

// EventKind enumerates the closed set of stream event types. Consumers must
// treat unknown kinds as a protocol error.
type EventKind string

const (
	// EventStatus carries a human-readable progress or result message.
	EventStatus EventKind = "status"
	// EventThinking carries an intermediate reasoning fragment.
	EventThinking EventKind = "thinking"
	// EventToolCall announces that the loop decided to invoke a tool.
	EventToolCall EventKind = "tool_call"
	// EventToolStart marks the beginning of a tool execution.
	EventToolStart EventKind = "tool_start"
	// EventToolEnd marks the completion of a tool execution.
	EventToolEnd EventKind = "tool_end"
	// EventObservation carries a tool result captured as a loop observation.
	EventObservation EventKind = "observation"
	// EventPhase marks a pipeline stage transition (routing, cache, loop, ...).
	EventPhase EventKind = "phase"
	// EventReasoningStep summarizes one completed think/act/observe iteration.
	EventReasoningStep EventKind = "reasoning_step"
	// EventError reports a recoverable or fatal failure.
	EventError EventKind = "error"
)

// StreamEvent is the primary unit of communication between the pipeline and
// external clients. After emission it must be treated as immutable.
//
// Events for one query are produced and observed in strict causal order; the
// Seq field is assigned by the emitter and is strictly monotonic within a
// query. No event follows an error event marked fatal.
type StreamEvent struct {
	ID        string         `json:"id"`
	QueryID   string         `json:"query_id"`
	Type      EventKind      `json:"type"`
	Seq       uint64         `json:"seq"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
	Fatal     bool           `json:"fatal,omitempty"`
}

// NewID generates a new unique identifier for events and queries.
func NewID() string { return uuid.NewString() }

// NewStreamEvent creates a bare event of the given kind bound to a query.
// Prefer the kind-specific constructors below.
func NewStreamEvent(queryID string, kind EventKind) StreamEvent {
	return StreamEvent{
		ID:        NewID(),
		QueryID:   queryID,
		Type:      kind,
		Timestamp: time.Now().UTC(),
	}
}

// NewStatusEvent constructs a status event with a free-form message.
func NewStatusEvent(queryID, message string) StreamEvent {
	ev := NewStreamEvent(queryID, EventStatus)
	ev.Data = map[string]any{"message": message}
	return ev
}

// NewAnswerEvent constructs the terminal status event carrying the final
// answer text. Completion of a stream is only valid after one of these (or an
// early-exit templated response) has been emitted.
func NewAnswerEvent(queryID, answer string) StreamEvent {
	ev := NewStreamEvent(queryID, EventStatus)
	ev.Data = map[string]any{"stage": "answer", "answer": answer}
	return ev
}

// NewThinkingEvent constructs a thinking event with a reasoning fragment.
func NewThinkingEvent(queryID, thought string) StreamEvent {
	ev := NewStreamEvent(queryID, EventThinking)
	ev.Data = map[string]any{"thought": thought}
	return ev
}

// NewToolCallEvent announces a decided tool invocation with its arguments.
func NewToolCallEvent(queryID, tool string, args map[string]any) StreamEvent {
	ev := NewStreamEvent(queryID, EventToolCall)
	ev.Data = map[string]any{"tool": tool, "args": args}
	return ev
}

// NewToolStartEvent marks the start of a tool execution.
func NewToolStartEvent(queryID, tool string) StreamEvent {
	ev := NewStreamEvent(queryID, EventToolStart)
	ev.Data = map[string]any{"tool": tool}
	return ev
}

// NewToolEndEvent records the completion of a tool execution.
func NewToolEndEvent(queryID, tool string, elapsed time.Duration, success bool) StreamEvent {
	ev := NewStreamEvent(queryID, EventToolEnd)
	ev.Data = map[string]any{"tool": tool, "duration_ms": elapsed.Milliseconds(), "success": success}
	return ev
}

// NewObservationEvent captures a tool result (or tool failure text) as an
// observation feeding the next reasoning step.
func NewObservationEvent(queryID, tool, observation string) StreamEvent {
	ev := NewStreamEvent(queryID, EventObservation)
	ev.Data = map[string]any{"tool": tool, "observation": observation}
	return ev
}

// NewPhaseEvent marks a pipeline stage transition.
func NewPhaseEvent(queryID, phase string) StreamEvent {
	ev := NewStreamEvent(queryID, EventPhase)
	ev.Data = map[string]any{"phase": phase}
	return ev
}

// NewReasoningStepEvent summarizes one completed loop iteration.
func NewReasoningStepEvent(queryID string, iteration int, thought, action string) StreamEvent {
	ev := NewStreamEvent(queryID, EventReasoningStep)
	ev.Data = map[string]any{"iteration": iteration, "thought": thought}
	if action != "" {
		ev.Data["action"] = action
	}
	return ev
}

// ErrorCoder is implemented by component errors that carry a stable machine
// readable code (tool errors, backend errors, lock timeouts). The error event
// constructor uses it to normalize arbitrary failures.
type ErrorCoder interface {
	ErrorCode() string
}

// NewErrorEvent normalizes an arbitrary internal failure into the error event
// shape. Errors implementing ErrorCoder contribute their code; everything
// else is tagged INTERNAL_ERROR. Fatal errors terminate the stream.
func NewErrorEvent(queryID string, err error, fatal bool) StreamEvent {
	ev := NewStreamEvent(queryID, EventError)
	code := "INTERNAL_ERROR"
	if ec, ok := err.(ErrorCoder); ok {
		code = ec.ErrorCode()
	}
	ev.Data = map[string]any{"code": code, "message": err.Error()}
	ev.Fatal = fatal
	return ev
}

// IsFatalError reports whether the event is an error event that terminates
// the stream.
func (e StreamEvent) IsFatalError() bool { return e.Type == EventError && e.Fatal }
