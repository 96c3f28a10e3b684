// Package juricore provides a high-level façade over the query pipeline
// (router, cache, reasoning loop, gateway, memory orchestrator and event
// streaming) enabling rapid construction of document-grounded legal
// assistants. Most applications interact with this package by:
//  1. Creating a JuriCore via New() with a reasoning backend and a retriever
//  2. Handling queries asynchronously (Handle) or synchronously (HandleSync)
//
// The façade delegates orchestration to engine.Engine while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply durable stores, a
// Redis-backed cache and a structured logger.
package juricore

import (
	"context"

	"github.com/juricore/juricore/cache"
	"github.com/juricore/juricore/config"
	"github.com/juricore/juricore/core"
	"github.com/juricore/juricore/engine"
	"github.com/juricore/juricore/gateway"
	"github.com/juricore/juricore/logging"
	"github.com/juricore/juricore/loop"
	"github.com/juricore/juricore/memory"
	"github.com/juricore/juricore/model"
	"github.com/juricore/juricore/prompt"
	"github.com/juricore/juricore/router"
	"github.com/juricore/juricore/session"
	"github.com/juricore/juricore/tool"
)

// Options configures a JuriCore instance.
type Options struct {
	// Config carries the operational bounds (iteration limits, timeouts,
	// truncation sizes). Defaults to config.Default().
	Config *config.Config

	// Retriever is the document search collaborator. Nil disables the
	// retrieval tool; answers then rest on memory and history alone.
	Retriever core.Retriever

	// TeamResolver maps users to teams for team-scoped retrieval. Optional.
	TeamResolver tool.TeamResolver

	// Router overrides the default rule-based triage.
	Router router.Router

	// Validator checks final answers; nil skips validation.
	Validator gateway.Validator

	// Stores (defaults to in-memory implementations if not provided)
	CacheStore        cache.Store
	FactStore         core.FactStore
	ConversationStore core.ConversationStore

	// Hooks are pipeline lifecycle extension points.
	Hooks []engine.Hook

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// JuriCore is the high-level façade aggregating the underlying engine and
// its collaborators.
type JuriCore struct {
	opts   Options
	engine *engine.Engine
}

// New creates a JuriCore instance around a reasoning backend. Any unset
// store is initialized with an in-memory implementation.
func New(backend model.Model, optFns ...func(o *Options)) *JuriCore {
	opts := Options{
		Config:            config.Default(),
		Router:            router.NewRuleRouter(),
		Validator:         gateway.NewRuleValidator(),
		CacheStore:        cache.NewInMemoryStore(),
		FactStore:         memory.NewInMemoryFactStore(),
		ConversationStore: session.NewInMemoryStore(),
		Logger:            logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}

	gw := gateway.New(backend, func(o *gateway.Options) {
		o.Validator = opts.Validator
		o.Timeout = opts.Config.BackendTimeout
		o.Logger = opts.Logger
	})

	tools := []tool.Tool{
		tool.NewRetrievalTool(),
		tool.NewEntityExtractionTool(),
		tool.NewTeamQueryTool(opts.TeamResolver),
		tool.NewRecallTool(),
	}

	builder := prompt.NewBuilder(func(b *prompt.BuilderOptions) {
		b.HistoryTurns = opts.Config.HistoryTurns
		b.MaxDocumentChars = opts.Config.MaxDocumentChars
		b.MaxExcerptChars = opts.Config.MaxExcerptChars
		b.MaxTurnChars = opts.Config.MaxTurnChars
		b.TruncationMarker = opts.Config.TruncationMarker
	})

	loopEngine := loop.NewEngine(gw, opts.Retriever, tools, func(o *loop.Options) {
		o.MaxIterations = opts.Config.MaxIterations
		o.MaxConsecutiveToolErrors = opts.Config.MaxConsecutiveToolErrors
		o.ToolTimeout = opts.Config.ToolTimeout
		o.Builder = builder
		o.Logger = opts.Logger
	})

	answerCache := cache.New(opts.CacheStore, func(o *cache.Options) {
		o.TTL = opts.Config.CacheTTL
		o.Logger = opts.Logger
	})

	orchestrator := memory.NewOrchestrator(opts.FactStore, func(o *memory.Options) {
		o.LockTimeout = opts.Config.LockTimeout
		o.Logger = opts.Logger
	})

	eng := engine.New(opts.Router, answerCache, loopEngine, orchestrator, opts.ConversationStore,
		func(o *engine.Options) {
			o.Config = opts.Config
			o.Hooks = opts.Hooks
			o.Logger = opts.Logger
		})

	return &JuriCore{opts: opts, engine: eng}
}

// Handle starts an asynchronous query resolution returning the query ID plus
// event and error channels.
func (j *JuriCore) Handle(ctx context.Context, q core.Query) (string, <-chan core.StreamEvent, <-chan error, error) {
	return j.engine.Handle(ctx, q)
}

// HandleSync is a synchronous helper that drains the async channels,
// accumulates events and returns the final answer.
func (j *JuriCore) HandleSync(ctx context.Context, q core.Query) (string, []core.StreamEvent, error) {
	queryID, eventsCh, errorsCh, err := j.engine.Handle(ctx, q)
	if err != nil {
		return "", nil, err
	}

	// The events channel closes on completion and abort alike; the error
	// channel is buffered and closed by the engine, so draining events
	// first then reading the error cannot block.
	var events []core.StreamEvent
	for event := range eventsCh {
		events = append(events, event)
	}
	if err, ok := <-errorsCh; ok && err != nil {
		return queryID, events, err
	}
	return queryID, events, nil
}

// Stop cancels an in-flight query by ID.
func (j *JuriCore) Stop(queryID string) error { return j.engine.Stop(queryID) }

// Answer extracts the final answer text from a completed event slice.
func Answer(events []core.StreamEvent) string {
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if ev.Type != core.EventStatus {
			continue
		}
		if stage, _ := ev.Data["stage"].(string); stage == "answer" {
			answer, _ := ev.Data["answer"].(string)
			return answer
		}
	}
	return ""
}
