package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/juricore/juricore/cache"
	"github.com/juricore/juricore/config"
	"github.com/juricore/juricore/core"
	"github.com/juricore/juricore/logging"
	"github.com/juricore/juricore/loop"
	"github.com/juricore/juricore/memory"
	"github.com/juricore/juricore/metrics"
	"github.com/juricore/juricore/prompt"
	"github.com/juricore/juricore/router"
	"github.com/juricore/juricore/stream"
)

// Engine is the pipeline orchestrator. One Handle call resolves one query:
// router triage, cache lookup, reasoning loop, write-back, conversation
// persistence and the asynchronous memory save. Queries from different
// users/sessions proceed fully in parallel; shared mutable state is limited
// to the cache and the memory orchestrator's per-user locks.
type Engine struct {
	router        router.Router
	answerCache   *cache.Cache
	loopEngine    *loop.Engine
	orchestrator  *memory.Orchestrator
	conversations core.ConversationStore
	hooks         *hookSet
	cfg           *config.Config
	logger        logging.Logger

	// Active query tracking for Stop.
	mu     sync.Mutex
	active map[string]context.CancelFunc
}

// Options configures an Engine.
type Options struct {
	// Config carries the operational bounds; defaults to config.Default().
	Config *config.Config
	// Hooks are pipeline lifecycle extension points.
	Hooks  []Hook
	Logger logging.Logger
}

// New wires an Engine from its collaborators.
func New(
	rt router.Router,
	answerCache *cache.Cache,
	loopEngine *loop.Engine,
	orchestrator *memory.Orchestrator,
	conversations core.ConversationStore,
	optFns ...func(o *Options),
) *Engine {
	opts := Options{
		Config: config.Default(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Engine{
		router:        rt,
		answerCache:   answerCache,
		loopEngine:    loopEngine,
		orchestrator:  orchestrator,
		conversations: conversations,
		hooks:         newHookSet(opts.Hooks),
		cfg:           opts.Config,
		logger:        opts.Logger,
		active:        make(map[string]context.CancelFunc),
	}
}

// Handle starts resolving a query and returns its event stream. The events
// channel closes when the stream completes or aborts; the error channel
// (buffered, capacity one) receives the fatal cause if the query could not
// be answered.
func (e *Engine) Handle(ctx context.Context, q core.Query) (string, <-chan core.StreamEvent, <-chan error, error) {
	if q.UserID == "" {
		return "", nil, nil, fmt.Errorf("query has no user id")
	}
	if q.ID == "" {
		q.ID = core.NewID()
	}

	queryCtx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	e.active[q.ID] = cancel
	e.mu.Unlock()

	em := stream.NewEmitter(queryCtx, q.ID, func(o *stream.Options) {
		o.BufferSize = e.cfg.EventBufferSize
		o.MaxErrors = e.cfg.MaxErrors
		o.Logger = e.logger
	})
	errCh := make(chan error, 1)

	metrics.ActiveQueries.Inc()
	go func() {
		defer func() {
			close(errCh)
			cancel()
			e.mu.Lock()
			delete(e.active, q.ID)
			e.mu.Unlock()
			metrics.ActiveQueries.Dec()
		}()
		e.resolve(queryCtx, q, em, errCh)
	}()

	return q.ID, em.Events(), errCh, nil
}

// Stop cancels an in-flight query by ID.
func (e *Engine) Stop(queryID string) error {
	e.mu.Lock()
	cancel, ok := e.active[queryID]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("query %s not found", queryID)
	}
	cancel()
	return nil
}

// resolve runs the full pipeline for one query on its own goroutine.
func (e *Engine) resolve(ctx context.Context, q core.Query, em *stream.Emitter, errCh chan<- error) {
	logger := e.queryLogger(q)
	hookCtx := &HookContext{Query: q, Metadata: map[string]interface{}{}}

	fail := func(err error) {
		_ = e.hooks.run(ctx, HookOnError, &HookContext{Query: q, Err: err})
		em.Fatal(err)
		errCh <- err
	}

	if err := e.hooks.run(ctx, HookBeforeRoute, hookCtx); err != nil {
		fail(fmt.Errorf("before_route hook rejected query: %w", err))
		return
	}

	// Stage 1: triage. Non-proceed decisions answer from a template and
	// never touch retrieval or the backend.
	em.Phase("routing")
	decision := e.router.Classify(q)
	metrics.RouterDecisions.WithLabelValues(string(decision)).Inc()
	logger.Debug("engine.route", "decision", string(decision))

	hookCtx.Decision = string(decision)
	if err := e.hooks.run(ctx, HookAfterRoute, hookCtx); err != nil {
		fail(fmt.Errorf("after_route hook rejected query: %w", err))
		return
	}

	e.appendTurn(q.ConversationID, core.Turn{Role: "user", Content: q.Text, Timestamp: time.Now()}, logger)

	if decision.ShortCircuits() {
		response := router.CannedResponse(decision, q)
		e.appendTurn(q.ConversationID, core.Turn{Role: "assistant", Content: response, Timestamp: time.Now()}, logger)
		em.Complete(response)
		return
	}

	// Stage 2: cache. The fingerprint covers scope and mode so a hit is
	// answer-equivalent to a fresh resolution.
	mode := prompt.DetectMode(q.Text)
	fingerprint := cache.Fingerprint(q, mode.String())

	em.Phase("cache")
	if e.answerCache != nil && e.cfg.CacheEnabled {
		if cached, ok := e.answerCache.Lookup(ctx, fingerprint); ok {
			logger.Debug("engine.cache.hit")
			e.finish(ctx, q, mode, cached.Answer, em, logger)
			return
		}
	}

	if err := e.hooks.run(ctx, HookBeforeLoop, hookCtx); err != nil {
		fail(fmt.Errorf("before_loop hook rejected query: %w", err))
		return
	}

	// Stage 3: the reasoning loop, at most once per fingerprint across
	// concurrent callers. Only the executing call streams loop events;
	// followers receive the shared answer.
	loader := func() (cache.CachedAnswer, error) {
		outcome, err := e.runLoop(ctx, q, em)
		if err != nil {
			return cache.CachedAnswer{}, err
		}
		return cache.CachedAnswer{
			Answer:   outcome.Answer,
			Mode:     outcome.Mode.String(),
			StoredAt: time.Now(),
		}, nil
	}

	var answer cache.CachedAnswer
	var err error
	if e.answerCache != nil && e.cfg.CacheEnabled {
		answer, _, err = e.answerCache.Resolve(ctx, fingerprint, loader)
	} else {
		answer, err = loader()
	}
	if err != nil {
		logger.Error("engine.resolve.failed", "error", err.Error())
		fail(err)
		return
	}

	hookCtx.Answer = answer.Answer
	if err := e.hooks.run(ctx, HookAfterAnswer, hookCtx); err != nil {
		logger.Warn("engine.hook.after_answer.failed", "error", err.Error())
	}

	e.finish(ctx, q, mode, answer.Answer, em, logger)
}

// runLoop gathers history and memory facts and executes the ReAct loop.
func (e *Engine) runLoop(ctx context.Context, q core.Query, em *stream.Emitter) (*loop.Outcome, error) {
	var history []core.Turn
	if e.conversations != nil && q.ConversationID != "" {
		turns, err := e.conversations.History(q.ConversationID)
		if err != nil {
			// Degraded context, not a failed query.
			e.logger.Warn("engine.history.unavailable", "error", err.Error())
		} else {
			history = turns
		}
	}

	var facts []core.MemoryFact
	if e.orchestrator != nil {
		stored, err := e.orchestrator.Facts(ctx, q.UserID)
		if err != nil {
			e.logger.Warn("engine.memory.read_failed", "error", err.Error())
		} else {
			facts = stored
		}
	}

	return e.loopEngine.Run(ctx, q, history, facts, em)
}

// finish persists the assistant turn, completes the stream and kicks off the
// asynchronous memory save. The save deliberately outlives the caller's
// context: a client disconnecting right after the answer must not lose the
// memory write.
func (e *Engine) finish(
	ctx context.Context,
	q core.Query,
	mode prompt.Mode,
	answer string,
	em *stream.Emitter,
	logger logging.Logger,
) {
	e.appendTurn(q.ConversationID, core.Turn{Role: "assistant", Content: answer, Timestamp: time.Now()}, logger)
	em.Complete(answer)

	if e.orchestrator == nil {
		return
	}
	facts := deriveFacts(q, mode)
	if len(facts) == 0 {
		return
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.SaveTimeout)
	go func() {
		defer cancel()
		if err := e.orchestrator.Save(saveCtx, q.UserID, facts); err != nil {
			// Non-fatal by contract; the answer already went out.
			logger.Warn("engine.memory.save_failed", "error", err.Error())
		}
	}()
}

// deriveFacts produces the episodic memory written after a resolved query.
func deriveFacts(q core.Query, mode prompt.Mode) []core.MemoryFact {
	// Rune-based cut: a byte slice could split a multi-byte character and
	// store invalid UTF-8.
	text := q.Text
	if runes := []rune(text); len(runes) > 200 {
		text = string(runes[:200])
	}
	fact := core.MemoryFact{
		ID:      cache.Fingerprint(q, mode.String()),
		Content: "Asked about: " + text,
		Kind:    "episodic",
	}
	return []core.MemoryFact{fact}
}

func (e *Engine) appendTurn(conversationID string, turn core.Turn, logger logging.Logger) {
	if e.conversations == nil || conversationID == "" {
		return
	}
	if err := e.conversations.Append(conversationID, turn); err != nil {
		logger.Warn("engine.conversation.append_failed", "error", err.Error())
	}
}

func (e *Engine) queryLogger(q core.Query) logging.Logger {
	if pl, ok := e.logger.(*logging.PipelineLogger); ok {
		return pl.WithConversation(q.UserID, q.ConversationID)
	}
	return e.logger
}

var _ core.Pipeline = (*Engine)(nil)
