// Package memory implements the conversation memory orchestrator: per-user
// locked fact writes with a bounded acquisition timeout, plus the FactStore
// backends (in-memory for tests, SQLite for durable single-node deployments).
//
// A memory save failure is never allowed to fail the query that triggered it;
// the orchestrator logs and meters failures and reports them as structured,
// non-fatal errors.
package memory
