// Package core provides the foundational domain types, interfaces and execution
// contexts used by juricore. It defines the core abstractions for:
//
//   - Queries (immutable user requests with locale and attachments)
//   - Stream events (typed, sequence-numbered progress/result records)
//   - Conversation turns and their store
//   - Memory facts and their store
//   - Retrieved documents and the retrieval collaborator interface
//   - QueryContext / ToolContext (scoped execution & tool sandboxing)
//
// The package intentionally keeps implementation concerns (persistence, pipeline
// orchestration, concrete tools) out of scope, exposing small interfaces to
// enable custom backends and extensions.
package core
