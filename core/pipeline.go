package core

import "context"

// Pipeline defines the orchestration contract for resolving a query into an
// ordered event stream.
//
// Semantics & Guarantees:
//   - Event Ordering: events emitted within a single query are delivered in
//     the order produced, with strictly increasing Seq values.
//   - Channel Lifecycle: the returned events channel is closed after the
//     query completes (final answer, early exit, fatal abort, or
//     cancellation). The error channel carries at most one terminal error
//     then closes (buffered size 1).
//   - Cancellation: context cancellation or explicit Stop(queryID) halts
//     further event emission and releases held resources; an in-flight memory
//     save that already acquired its lock runs to completion or its own
//     timeout.
type Pipeline interface {
	// Handle starts asynchronous resolution of the query. It returns:
	//   queryID  - stable identifier for cancellation / tracking
	//   eventsCh - ordered stream of events (closed on completion)
	//   errorsCh - terminal error channel (size 1, closed after send/none)
	// The immediate error return covers startup failures only.
	Handle(ctx context.Context, query Query) (string, <-chan StreamEvent, <-chan error, error)

	// Stop requests cooperative termination of an in-flight query. Stopping
	// an unknown or already finished query returns an error describing the
	// condition.
	Stop(queryID string) error
}
