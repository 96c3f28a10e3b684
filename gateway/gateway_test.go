package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juricore/juricore/model"
	"github.com/juricore/juricore/prompt"
)

// recordingModel captures the request and replies with a fixed text.
type recordingModel struct {
	lastReq model.Request
	text    string
	err     error
}

func (m *recordingModel) Generate(_ context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	m.lastReq = req
	respCh := make(chan model.Response, 1)
	errCh := make(chan error, 1)
	if m.err != nil {
		errCh <- m.err
	} else {
		respCh <- model.Response{Text: m.text, FinishReason: "stop", Usage: &model.TokenUsage{TotalTokens: 7}}
	}
	close(respCh)
	close(errCh)
	return respCh, errCh
}

func (m *recordingModel) Info() model.Info { return model.Info{Name: "recorder", Provider: "mock"} }

func TestGateway_Reason(t *testing.T) {
	backend := &recordingModel{text: "The notice period is three months."}
	gw := New(backend)

	rc := prompt.ReasoningContext{
		Mode:            prompt.ModeDefault,
		DocumentSection: "Relevant documents:\n[1] Lease\nthree months notice",
	}
	result, err := gw.Reason(context.Background(), rc, "What is the notice period?")
	require.NoError(t, err)
	assert.Equal(t, "The notice period is three months.", result.Answer)
	assert.Equal(t, prompt.ModeDefault, result.UsedMode)
	assert.Greater(t, result.Elapsed.Nanoseconds(), int64(0))

	// Context renders ahead of the query in the user message.
	require.Len(t, backend.lastReq.Messages, 1)
	assert.Contains(t, backend.lastReq.Messages[0].Text, "Relevant documents:")
	assert.Contains(t, backend.lastReq.Messages[0].Text, "What is the notice period?")
	assert.Contains(t, backend.lastReq.System, "legal research assistant")
}

func TestGateway_ModeSelectsGenerationParams(t *testing.T) {
	backend := &recordingModel{text: "ok"}
	gw := New(backend)

	_, err := gw.Reason(context.Background(), prompt.ReasoningContext{Mode: prompt.ModeDefault}, "q")
	require.NoError(t, err)
	assert.InDelta(t, 0.7, backend.lastReq.Config.Temperature, 1e-9)
	assert.Equal(t, int64(2048), backend.lastReq.Config.MaxTokens)

	_, err = gw.Reason(context.Background(), prompt.ReasoningContext{Mode: prompt.ModeLegalBrief}, "q")
	require.NoError(t, err)
	assert.InDelta(t, 0.2, backend.lastReq.Config.Temperature, 1e-9)
	assert.Equal(t, int64(4096), backend.lastReq.Config.MaxTokens)
	assert.Contains(t, backend.lastReq.System, "legal brief")

	_, err = gw.Reason(context.Background(), prompt.ReasoningContext{Mode: prompt.ModeProcedureGuide}, "q")
	require.NoError(t, err)
	assert.InDelta(t, 0.2, backend.lastReq.Config.Temperature, 1e-9)
}

func TestGateway_BackendErrorCarriesElapsed(t *testing.T) {
	backend := &recordingModel{err: errors.New("rate limited")}
	gw := New(backend)

	_, err := gw.Reason(context.Background(), prompt.ReasoningContext{}, "q")
	require.Error(t, err)
	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Contains(t, backendErr.Detail, "rate limited")
	assert.GreaterOrEqual(t, backendErr.Elapsed.Nanoseconds(), int64(0))
	assert.Equal(t, "BACKEND_ERROR", backendErr.ErrorCode())
	assert.ErrorIs(t, err, backend.err)
}

func TestGateway_ValidatorViolationsAttachedNotBlocking(t *testing.T) {
	backend := &recordingModel{text: `{"is_final": true}`}
	gw := New(backend, func(o *Options) {
		o.Validator = NewRuleValidator()
	})

	result, err := gw.Reason(context.Background(), prompt.ReasoningContext{}, "q")
	require.NoError(t, err)
	assert.Equal(t, `{"is_final": true}`, result.Answer)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, "no_protocol_leak", result.Violations[0].Rule)
}

func TestGateway_NilValidator(t *testing.T) {
	gw := New(&recordingModel{text: "fine"})
	assert.Nil(t, gw.ValidateAnswer(""))
}

func TestGateway_ReasonRawSkipsValidation(t *testing.T) {
	backend := &recordingModel{text: `{"thought": "t", "is_final": false}`}
	gw := New(backend, func(o *Options) {
		o.Validator = NewRuleValidator()
	})

	result, err := gw.ReasonRaw(context.Background(), "system", prompt.ModeDefault, []model.Message{
		{Role: model.RoleUser, Text: "q"},
	})
	require.NoError(t, err)
	// Protocol JSON would trip the validator; raw calls never run it.
	assert.Empty(t, result.Violations)
	assert.Equal(t, "system", backend.lastReq.System)
}

// stalledModel produces nothing and ignores cancellation entirely.
type stalledModel struct{}

func (stalledModel) Generate(context.Context, model.Request) (<-chan model.Response, <-chan error) {
	return make(chan model.Response), make(chan error)
}

func (stalledModel) Info() model.Info { return model.Info{Name: "stalled", Provider: "mock"} }

func TestGateway_TimeoutBoundsStalledBackend(t *testing.T) {
	gw := New(stalledModel{}, func(o *Options) {
		o.Timeout = 20 * time.Millisecond
	})

	start := time.Now()
	_, err := gw.Reason(context.Background(), prompt.ReasoningContext{}, "q")
	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	// The deadline, not the caller's context, cut the call short.
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.GreaterOrEqual(t, backendErr.Elapsed, 20*time.Millisecond)
}

func TestGateway_MockModelErrPath(t *testing.T) {
	backend := model.NewMockModel("mock")
	backend.Err = errors.New("backend down")
	gw := New(backend)

	_, err := gw.ReasonRaw(context.Background(), "s", prompt.ModeDefault, []model.Message{
		{Role: model.RoleUser, Text: "q"},
	})
	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
}

func TestRuleValidator(t *testing.T) {
	v := NewRuleValidator()

	assert.Len(t, v.Validate("   "), 1)
	assert.Equal(t, "non_empty", v.Validate("")[0].Rule)

	assert.Empty(t, v.Validate("A clean, grounded answer."))

	leak := v.Validate(`prefix {"thought": "x", "is_final": true}`)
	require.Len(t, leak, 1)
	assert.Equal(t, "no_protocol_leak", leak[0].Rule)

	// Disclaimer rule only fires when enabled.
	advice := "You must file the appeal within 30 days."
	assert.Empty(t, v.Validate(advice))

	strict := &RuleValidator{RequireDisclaimer: true}
	flagged := strict.Validate(advice)
	require.Len(t, flagged, 1)
	assert.Equal(t, "advice_disclaimer", flagged[0].Rule)
	assert.Empty(t, strict.Validate(advice+" This is not legal advice."))
}
