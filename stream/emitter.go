// Package stream implements the event emitter that carries a query's
// progress to the caller: strict causal ordering via monotonic sequence
// numbers, a recoverable error budget, and a state machine guaranteeing that
// nothing follows a fatal error.
package stream

import (
	"context"
	"fmt"
	"sync"

	"github.com/juricore/juricore/core"
	"github.com/juricore/juricore/logging"
	"github.com/juricore/juricore/metrics"
)

// State is the lifecycle position of an emitter.
type State int

const (
	// StateIdle means no event has been emitted yet.
	StateIdle State = iota
	// StateEmitting means the stream is live.
	StateEmitting
	// StateCompleted means a final answer (or early-exit response) was
	// emitted and the stream closed cleanly.
	StateCompleted
	// StateAborted means a fatal error terminated the stream.
	StateAborted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEmitting:
		return "emitting"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// MaxErrorsError is the fatal error emitted when the running error counter
// reaches the configured maximum even though no single error was fatal.
type MaxErrorsError struct {
	Max int
}

func (e *MaxErrorsError) Error() string {
	return fmt.Sprintf("error budget exhausted after %d recoverable errors", e.Max)
}

// ErrorCode implements the error code contract for stream error events.
func (e *MaxErrorsError) ErrorCode() string { return "MAX_ERRORS_EXCEEDED" }

// Emitter produces the ordered event stream for one query. All methods are
// safe for concurrent use; sequence numbers are assigned under the lock so
// observed order equals emission order.
type Emitter struct {
	ctx       context.Context
	queryID   string
	events    chan core.StreamEvent
	maxErrors int
	logger    logging.Logger

	mu        sync.Mutex
	state     State
	seq       uint64
	errorsHit int
}

// Options configures an Emitter.
type Options struct {
	// BufferSize is the event channel capacity.
	BufferSize int
	// MaxErrors is the recoverable error budget; the error that exceeds it
	// turns fatal. Zero means every error is fatal.
	MaxErrors int
	Logger    logging.Logger
}

// NewEmitter creates an emitter bound to a query. The context bounds the
// stream's life: emission to a slow consumer aborts when it is cancelled.
func NewEmitter(ctx context.Context, queryID string, optFns ...func(o *Options)) *Emitter {
	opts := Options{BufferSize: 64, MaxErrors: 3, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Emitter{
		ctx:       ctx,
		queryID:   queryID,
		events:    make(chan core.StreamEvent, opts.BufferSize),
		maxErrors: opts.MaxErrors,
		logger:    opts.Logger,
	}
}

// Events returns the receive side of the stream. It is closed exactly once,
// on completion or abort.
func (e *Emitter) Events() <-chan core.StreamEvent { return e.events }

// QueryID returns the query this emitter serves.
func (e *Emitter) QueryID() string { return e.queryID }

// State returns the current lifecycle state.
func (e *Emitter) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Errors returns the running recoverable error count.
func (e *Emitter) Errors() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errorsHit
}

// Emit assigns the next sequence number and sends the event. Events offered
// after completion or abort are dropped; the stream never reopens.
func (e *Emitter) Emit(ev core.StreamEvent) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.emitLocked(ev)
}

func (e *Emitter) emitLocked(ev core.StreamEvent) bool {
	switch e.state {
	case StateCompleted, StateAborted:
		e.logger.Debug("stream.emit.dropped", "query_id", e.queryID, "type", string(ev.Type), "state", e.state.String())
		return false
	case StateIdle:
		e.state = StateEmitting
	}

	e.seq++
	ev.Seq = e.seq

	select {
	case e.events <- ev:
		return true
	case <-e.ctx.Done():
		// Consumer gone; abort without trying to emit further.
		e.state = StateAborted
		close(e.events)
		return false
	}
}

// Status emits a status event.
func (e *Emitter) Status(message string) bool {
	return e.Emit(core.NewStatusEvent(e.queryID, message))
}

// Phase emits a pipeline stage transition.
func (e *Emitter) Phase(phase string) bool {
	return e.Emit(core.NewPhaseEvent(e.queryID, phase))
}

// Thinking emits a reasoning fragment.
func (e *Emitter) Thinking(thought string) bool {
	return e.Emit(core.NewThinkingEvent(e.queryID, thought))
}

// ToolCall emits a decided tool invocation.
func (e *Emitter) ToolCall(tool string, args map[string]any) bool {
	return e.Emit(core.NewToolCallEvent(e.queryID, tool, args))
}

// Observation emits a tool result observation.
func (e *Emitter) Observation(tool, observation string) bool {
	return e.Emit(core.NewObservationEvent(e.queryID, tool, observation))
}

// Error emits a recoverable error event and counts it toward the budget.
// When the budget is exhausted the emitted event is fatal instead and the
// stream aborts; the return value reports whether the stream is still live.
func (e *Emitter) Error(err error) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateCompleted || e.state == StateAborted {
		return false
	}

	e.errorsHit++
	if e.errorsHit >= e.maxErrors {
		budget := &MaxErrorsError{Max: e.maxErrors}
		e.logger.Warn("stream.error.budget_exhausted", "query_id", e.queryID, "errors", e.errorsHit, "cause", err.Error())
		e.fatalLocked(budget)
		return false
	}

	e.logger.Debug("stream.error.recoverable", "query_id", e.queryID, "errors", e.errorsHit, "error", err.Error())
	// The emit itself can abort the stream (consumer gone); report that.
	return e.emitLocked(core.NewErrorEvent(e.queryID, err, false))
}

// Fatal emits a fatal error event, aborts the stream and closes the channel.
func (e *Emitter) Fatal(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateCompleted || e.state == StateAborted {
		return
	}
	e.fatalLocked(err)
}

func (e *Emitter) fatalLocked(err error) {
	if e.emitLocked(core.NewErrorEvent(e.queryID, err, true)) {
		e.state = StateAborted
		close(e.events)
	}
	metrics.FatalAborts.Inc()
	e.logger.Error("stream.aborted", "query_id", e.queryID, "error", err.Error())
}

// Complete emits the terminal answer event, marks the stream completed and
// closes the channel.
func (e *Emitter) Complete(answer string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateCompleted || e.state == StateAborted {
		return
	}
	if e.emitLocked(core.NewAnswerEvent(e.queryID, answer)) {
		e.state = StateCompleted
		close(e.events)
	}
}
