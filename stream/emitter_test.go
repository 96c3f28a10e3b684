package stream

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juricore/juricore/core"
	"github.com/juricore/juricore/internal/testutil"
)

func newTestEmitter(optFns ...func(o *Options)) *Emitter {
	return NewEmitter(context.Background(), "q1", optFns...)
}

func TestEmitter_SequenceIsStrictlyIncreasing(t *testing.T) {
	em := newTestEmitter()
	em.Phase("routing")
	em.Thinking("step one")
	em.Observation("search_documents", "found two documents")
	em.Complete("done")

	events := testutil.Drain(em.Events())
	require.Len(t, events, 4)
	assert.True(t, testutil.SeqStrictlyIncreasing(events))
	assert.Equal(t, uint64(1), events[0].Seq)
	assert.Equal(t, uint64(4), events[3].Seq)
	for _, ev := range events {
		assert.Equal(t, "q1", ev.QueryID)
	}
}

func TestEmitter_StateMachine(t *testing.T) {
	em := newTestEmitter()
	assert.Equal(t, StateIdle, em.State())

	em.Status("working")
	assert.Equal(t, StateEmitting, em.State())

	em.Complete("answer")
	assert.Equal(t, StateCompleted, em.State())

	// Terminal states are sticky.
	assert.False(t, em.Emit(core.NewStatusEvent("q1", "late")))
	em.Fatal(errors.New("too late"))
	assert.Equal(t, StateCompleted, em.State())

	events := testutil.Drain(em.Events())
	assert.Equal(t, "answer", testutil.FinalAnswer(events))
}

func TestEmitter_CompleteClosesChannelOnce(t *testing.T) {
	em := newTestEmitter()
	em.Complete("first")
	em.Complete("second") // must not panic on a closed channel

	events := testutil.Drain(em.Events())
	require.Len(t, events, 1)
	assert.Equal(t, "first", testutil.FinalAnswer(events))
}

func TestEmitter_NothingFollowsFatal(t *testing.T) {
	em := newTestEmitter()
	em.Phase("loop")
	em.Fatal(errors.New("backend unreachable"))
	assert.Equal(t, StateAborted, em.State())

	assert.False(t, em.Thinking("ghost"))
	assert.False(t, em.Error(errors.New("another")))
	em.Complete("ghost answer")

	events := testutil.Drain(em.Events())
	require.Len(t, events, 2)
	last := events[len(events)-1]
	assert.True(t, last.IsFatalError())
	assert.Equal(t, "INTERNAL_ERROR", last.Data["code"])
	assert.Empty(t, testutil.FinalAnswer(events))
}

func TestEmitter_ErrorBudget(t *testing.T) {
	em := newTestEmitter(func(o *Options) { o.MaxErrors = 3 })

	// Two recoverable errors stay within budget.
	assert.True(t, em.Error(errors.New("tool failed 1")))
	assert.True(t, em.Error(errors.New("tool failed 2")))
	assert.Equal(t, StateEmitting, em.State())
	assert.Equal(t, 2, em.Errors())

	// The third exhausts the budget and turns fatal.
	assert.False(t, em.Error(errors.New("tool failed 3")))
	assert.Equal(t, StateAborted, em.State())

	events := testutil.Drain(em.Events())
	require.Len(t, events, 3)
	assert.False(t, events[0].Fatal)
	assert.False(t, events[1].Fatal)
	assert.True(t, events[2].IsFatalError())
	assert.Equal(t, "MAX_ERRORS_EXCEEDED", events[2].Data["code"])
}

func TestEmitter_ZeroBudgetMakesFirstErrorFatal(t *testing.T) {
	em := newTestEmitter(func(o *Options) { o.MaxErrors = 0 })
	assert.False(t, em.Error(errors.New("only error")))
	assert.Equal(t, StateAborted, em.State())

	events := testutil.Drain(em.Events())
	require.Len(t, events, 1)
	assert.True(t, events[0].IsFatalError())
}

func TestEmitter_ErrorCodePropagation(t *testing.T) {
	em := newTestEmitter()
	em.Error(&MaxErrorsError{Max: 3})
	em.Complete("ok")

	events := testutil.Drain(em.Events())
	require.Len(t, events, 2)
	assert.Equal(t, "MAX_ERRORS_EXCEEDED", events[0].Data["code"])
	assert.False(t, events[0].Fatal)
}

func TestEmitter_ContextCancellationAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	em := NewEmitter(ctx, "q1", func(o *Options) { o.BufferSize = 1 })

	em.Status("fills the buffer")
	cancel()

	// Buffer full and consumer gone: the emit aborts the stream instead of
	// blocking forever.
	ok := em.Status("would block")
	assert.False(t, ok)
	assert.Equal(t, StateAborted, em.State())

	events := testutil.Drain(em.Events())
	assert.Len(t, events, 1)
}

func TestEmitter_ErrorReportsDeadStreamOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	em := NewEmitter(ctx, "q1", func(o *Options) {
		o.BufferSize = 1
		o.MaxErrors = 5
	})

	em.Status("fills the buffer")
	cancel()

	// The error is within budget, but the emit itself aborts the stream
	// (buffer full, consumer gone); Error must not report a live stream.
	ok := em.Error(errors.New("tool failed"))
	assert.False(t, ok)
	assert.Equal(t, StateAborted, em.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "emitting", StateEmitting.String())
	assert.Equal(t, "completed", StateCompleted.String())
	assert.Equal(t, "aborted", StateAborted.String())
	assert.Equal(t, "unknown", State(42).String())
}
