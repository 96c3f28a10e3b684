// Package model defines the reasoning backend abstraction and a deterministic
// mock implementation for tests and examples. Provider adapters live in the
// anthropic and openai subpackages.
package model

import (
	"context"
	"fmt"
	"sync"
)

// Role identifies the author of a message.
type Role string

const (
	// RoleUser marks a message authored by the end user.
	RoleUser Role = "user"
	// RoleAssistant marks a message authored by the model.
	RoleAssistant Role = "assistant"
)

// Message is one turn of the prompt sent to a backend.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// GenerationConfig carries per-request sampling parameters. Zero values mean
// "use the adapter's default".
type GenerationConfig struct {
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int64   `json:"max_tokens,omitempty"`
}

// Request captures the normalized backend input produced by the gateway.
type Request struct {
	System   string           `json:"system,omitempty"`
	Messages []Message        `json:"messages"`
	Config   GenerationConfig `json:"config"`
	Stream   bool             `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a backend.
type Response struct {
	Text         string      `json:"text"`
	Partial      bool        `json:"partial"`
	FinishReason string      `json:"finish_reason,omitempty"` // "stop", "length", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a backend implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface the reasoning gateway needs to drive
// generation. Implementations close both channels when done; at most one
// error is sent.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the backend implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Responses are keyed on the last message's text; a scripted queue can be
// used instead for multi-step exchanges. Safe for concurrent Generate calls.
type MockModel struct {
	info Info

	mu        sync.Mutex
	responses map[string]string
	script    []string
	calls     int

	// Err, when set, is returned instead of any response.
	Err error
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Script queues completions returned in order regardless of input. Scripted
// responses take precedence over keyed ones.
func (m *MockModel) Script(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, responses...)
}

// Calls reports how many Generate invocations the mock has served.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Generate implements Model; emits optional streaming char chunks then the
// final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		m.mu.Lock()
		m.calls++
		genErr := m.Err
		m.mu.Unlock()

		if genErr != nil {
			errCh <- genErr
			return
		}
		if len(req.Messages) == 0 {
			errCh <- fmt.Errorf("no messages provided")
			return
		}

		m.mu.Lock()
		var full string
		if len(m.script) > 0 {
			full = m.script[0]
			m.script = m.script[1:]
		} else {
			input := req.Messages[len(req.Messages)-1].Text
			full = m.responses[input]
			if full == "" {
				full = fmt.Sprintf("Mock response to: %s", input)
			}
		}
		m.mu.Unlock()
		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Text: string(r), Partial: true}:
				}
			}
		}
		respCh <- Response{Text: full, Partial: false, FinishReason: "stop"}
	}()
	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
