// Package engine wires the pipeline together: router triage, cache lookup,
// the reasoning loop, answer validation, conversation persistence and the
// asynchronous memory save, all surfaced to the caller as an ordered stream
// of events per query.
package engine
