// Package gateway is the single entry point to the reasoning backend. It
// selects generation parameters by answer mode, runs the optional response
// validator, and normalizes backend failures into structured errors that
// always carry elapsed time.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/juricore/juricore/logging"
	"github.com/juricore/juricore/metrics"
	"github.com/juricore/juricore/model"
	"github.com/juricore/juricore/prompt"
)

// Result is a successful backend round trip.
type Result struct {
	Answer     string
	UsedMode   prompt.Mode
	Violations []Violation
	Elapsed    time.Duration
}

// BackendError wraps a backend failure with the elapsed time so callers can
// decide to retry, degrade or surface it.
type BackendError struct {
	Detail  string
	Elapsed time.Duration
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("reasoning backend failed after %s: %s", e.Elapsed, e.Detail)
}

func (e *BackendError) Unwrap() error { return e.Err }

// ErrorCode implements the error code contract for stream error events.
func (e *BackendError) ErrorCode() string { return "BACKEND_ERROR" }

// Generation parameters per answer mode. Strict modes get lower variance and
// more room for structured output.
var (
	defaultParams = model.GenerationConfig{Temperature: 0.7, MaxTokens: 2048}
	strictParams  = model.GenerationConfig{Temperature: 0.2, MaxTokens: 4096}
)

// Gateway drives one backend call per Reason invocation.
type Gateway struct {
	backend   model.Model
	validator Validator
	timeout   time.Duration
	logger    logging.Logger
}

// Options configures a Gateway.
type Options struct {
	// Validator checks raw answers; nil is a valid configuration and skips
	// validation entirely.
	Validator Validator
	// Timeout bounds one backend call end to end. Zero means no deadline
	// beyond the caller's context.
	Timeout time.Duration
	Logger  logging.Logger
}

// New creates a Gateway over a backend.
func New(backend model.Model, optFns ...func(o *Options)) *Gateway {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gateway{backend: backend, validator: opts.Validator, timeout: opts.Timeout, logger: opts.Logger}
}

// Reason sends the context and query to the backend and returns the answer.
// Extra messages (prior reasoning steps, observations) are appended after the
// context message. Elapsed time is recorded on both success and failure.
func (g *Gateway) Reason(
	ctx context.Context,
	rc prompt.ReasoningContext,
	query string,
	extra ...model.Message,
) (*Result, error) {
	config := defaultParams
	if rc.Mode.Strict() {
		config = strictParams
	}

	system := prompt.SystemInstructions(nil)
	if instr := prompt.ModeInstruction(rc.Mode); instr != "" {
		system += "\n\n" + instr
	}

	messages := make([]model.Message, 0, len(extra)+1)
	userText := query
	if rendered := rc.Render(); rendered != "" {
		userText = rendered + "\n\n" + query
	}
	messages = append(messages, model.Message{Role: model.RoleUser, Text: userText})
	messages = append(messages, extra...)

	req := model.Request{
		System:   system,
		Messages: messages,
		Config:   config,
	}

	start := time.Now()
	answer, usage, err := g.collect(ctx, req)
	elapsed := time.Since(start)
	metrics.BackendLatency.Observe(elapsed.Seconds())

	tokens := 0
	if usage != nil {
		tokens = usage.TotalTokens
	}
	g.logBackendCall(tokens, elapsed, err)

	if err != nil {
		metrics.BackendErrors.Inc()
		return nil, &BackendError{Detail: err.Error(), Elapsed: elapsed, Err: err}
	}

	result := &Result{
		Answer:   answer,
		UsedMode: rc.Mode,
		Elapsed:  elapsed,
	}

	result.Violations = g.ValidateAnswer(answer)

	return result, nil
}

// ReasonRaw sends prebuilt messages with an explicit system prompt. The
// reasoning loop uses this to drive the decision protocol with its own
// message sequence. Responses are protocol JSON, not final answers, so the
// validator is not applied here; use ValidateAnswer on the extracted answer.
func (g *Gateway) ReasonRaw(
	ctx context.Context,
	system string,
	mode prompt.Mode,
	messages []model.Message,
) (*Result, error) {
	config := defaultParams
	if mode.Strict() {
		config = strictParams
	}

	req := model.Request{System: system, Messages: messages, Config: config}

	start := time.Now()
	answer, usage, err := g.collect(ctx, req)
	elapsed := time.Since(start)
	metrics.BackendLatency.Observe(elapsed.Seconds())

	tokens := 0
	if usage != nil {
		tokens = usage.TotalTokens
	}
	g.logBackendCall(tokens, elapsed, err)

	if err != nil {
		metrics.BackendErrors.Inc()
		return nil, &BackendError{Detail: err.Error(), Elapsed: elapsed, Err: err}
	}

	return &Result{Answer: answer, UsedMode: mode, Elapsed: elapsed}, nil
}

// ValidateAnswer runs the configured validator on a final answer. A nil
// validator yields no violations; violations are logged, never blocking.
func (g *Gateway) ValidateAnswer(answer string) []Violation {
	if g.validator == nil {
		return nil
	}
	violations := g.validator.Validate(answer)
	for _, v := range violations {
		g.logger.Warn("gateway.validation.violation", "rule", v.Rule, "detail", v.Detail)
	}
	return violations
}

// collect drains the backend's channels into the final answer text. The
// gateway's own deadline applies here, so a stalled backend cannot hold the
// stream open past the configured bound even if it ignores cancellation.
func (g *Gateway) collect(ctx context.Context, req model.Request) (string, *model.TokenUsage, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	respCh, errCh := g.backend.Generate(ctx, req)

	var final strings.Builder
	var usage *model.TokenUsage
	var genErr error
	sawFinal := false

	for respCh != nil || errCh != nil {
		select {
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if resp.Partial {
				continue
			}
			final.WriteString(resp.Text)
			sawFinal = true
			if resp.Usage != nil {
				usage = resp.Usage
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			genErr = err
		case <-ctx.Done():
			return "", usage, ctx.Err()
		}
	}
	if genErr != nil {
		return "", usage, genErr
	}
	if !sawFinal {
		return "", usage, fmt.Errorf("backend produced no final response")
	}
	return final.String(), usage, nil
}

func (g *Gateway) logBackendCall(tokens int, elapsed time.Duration, err error) {
	if pl, ok := g.logger.(*logging.PipelineLogger); ok {
		pl.LogBackendCall(g.backend.Info().Name, tokens, elapsed, err == nil, err)
		return
	}
	if err != nil {
		g.logger.Error("gateway.backend.failed", "model", g.backend.Info().Name, "elapsed", elapsed.String(), "error", err.Error())
	} else {
		g.logger.Debug("gateway.backend.ok", "model", g.backend.Info().Name, "elapsed", elapsed.String(), "tokens", tokens)
	}
}
