package memory

import (
	"context"
	"sync"
	"time"

	"github.com/juricore/juricore/core"
	"github.com/juricore/juricore/logging"
	"github.com/juricore/juricore/metrics"
)

// StoreFactory lazily opens the underlying FactStore. The orchestrator calls
// it on the first save so a misconfigured store surfaces as a structured
// error on that call instead of crashing process startup.
type StoreFactory func() (core.FactStore, error)

// Orchestrator serializes memory writes per user. At most one Save body runs
// per user at a time; a second concurrent caller waits up to the configured
// timeout and then fails fast with a LockTimeoutError.
type Orchestrator struct {
	factory StoreFactory
	timeout time.Duration
	logger  logging.Logger

	initOnce sync.Once
	store    core.FactStore
	initErr  error

	mu    sync.Mutex
	locks map[string]chan struct{}
}

// Options configures an Orchestrator.
type Options struct {
	// LockTimeout bounds how long a save waits for the user's lock.
	LockTimeout time.Duration
	Logger      logging.Logger
}

// NewOrchestrator creates an orchestrator over an already opened store.
func NewOrchestrator(store core.FactStore, optFns ...func(o *Options)) *Orchestrator {
	return NewLazyOrchestrator(func() (core.FactStore, error) { return store, nil }, optFns...)
}

// NewLazyOrchestrator defers opening the store until the first save.
func NewLazyOrchestrator(factory StoreFactory, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{LockTimeout: 2 * time.Second, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Orchestrator{
		factory: factory,
		timeout: opts.LockTimeout,
		logger:  opts.Logger,
		locks:   make(map[string]chan struct{}),
	}
}

// userLock returns the capacity-1 semaphore channel for the user, creating
// it on first use.
func (o *Orchestrator) userLock(userID string) chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.locks[userID]
	if !ok {
		lock = make(chan struct{}, 1)
		o.locks[userID] = lock
	}
	return lock
}

// acquire takes the user's lock, waiting at most the configured timeout.
func (o *Orchestrator) acquire(ctx context.Context, userID string) error {
	lock := o.userLock(userID)
	start := time.Now()

	select {
	case lock <- struct{}{}:
		waited := time.Since(start)
		if waited > time.Millisecond {
			metrics.LockWaits.Inc()
		}
		metrics.LockWaitDuration.Observe(waited.Seconds())
		o.logLockWait(userID, waited, false)
		return nil
	default:
	}

	// Contended path: wait with a deadline.
	metrics.LockWaits.Inc()
	timer := time.NewTimer(o.timeout)
	defer timer.Stop()

	select {
	case lock <- struct{}{}:
		waited := time.Since(start)
		metrics.LockWaitDuration.Observe(waited.Seconds())
		o.logLockWait(userID, waited, false)
		return nil
	case <-timer.C:
		metrics.LockTimeouts.Inc()
		o.logLockWait(userID, time.Since(start), true)
		return &LockTimeoutError{UserID: userID, Timeout: o.timeout}
	case <-ctx.Done():
		o.logLockWait(userID, time.Since(start), true)
		return ctx.Err()
	}
}

func (o *Orchestrator) release(userID string) {
	<-o.userLock(userID)
}

func (o *Orchestrator) logLockWait(userID string, waited time.Duration, timedOut bool) {
	if pl, ok := o.logger.(*logging.PipelineLogger); ok {
		pl.LogLockWait(userID, waited, timedOut)
		return
	}
	if timedOut {
		o.logger.Warn("memory.lock.timeout", "user_id", userID, "waited", waited.String())
	}
}

// Save upserts the user's facts under the per-user lock. Persistence
// failures return a *StoreError; lock contention past the timeout returns a
// *LockTimeoutError. Both are non-fatal by contract; callers log and meter
// them without failing the query.
func (o *Orchestrator) Save(ctx context.Context, userID string, facts []core.MemoryFact) error {
	if len(facts) == 0 {
		return nil
	}

	o.initOnce.Do(func() {
		o.store, o.initErr = o.factory()
	})
	if o.initErr != nil {
		metrics.MemorySaves.WithLabelValues("init_error").Inc()
		return &StoreError{UserID: userID, Op: "open", Err: o.initErr}
	}

	if err := o.acquire(ctx, userID); err != nil {
		metrics.MemorySaves.WithLabelValues("lock_timeout").Inc()
		return err
	}
	defer o.release(userID)

	now := time.Now()
	for i := range facts {
		if facts[i].CreatedAt.IsZero() {
			facts[i].CreatedAt = now
		}
		facts[i].UpdatedAt = now
	}

	if err := o.store.UpsertFacts(ctx, userID, facts); err != nil {
		metrics.MemorySaves.WithLabelValues("store_error").Inc()
		o.logger.Error("memory.save.failed", "user_id", userID, "error", err.Error())
		return &StoreError{UserID: userID, Op: "upsert", Err: err}
	}

	metrics.MemorySaves.WithLabelValues("ok").Inc()
	o.logger.Debug("memory.save.ok", "user_id", userID, "facts", len(facts))
	return nil
}

// Facts returns the user's stored facts. Read path shares the store but not
// the lock; reads tolerate concurrent writes.
func (o *Orchestrator) Facts(ctx context.Context, userID string) ([]core.MemoryFact, error) {
	o.initOnce.Do(func() {
		o.store, o.initErr = o.factory()
	})
	if o.initErr != nil {
		return nil, &StoreError{UserID: userID, Op: "open", Err: o.initErr}
	}
	facts, err := o.store.GetFacts(ctx, userID)
	if err != nil {
		return nil, &StoreError{UserID: userID, Op: "get", Err: err}
	}
	return facts, nil
}
