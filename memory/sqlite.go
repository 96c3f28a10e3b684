package memory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/juricore/juricore/core"
)

// SQLiteFactStore implements core.FactStore on a local SQLite database. WAL
// mode keeps concurrent reads cheap while the orchestrator's per-user lock
// already serializes writes per user.
type SQLiteFactStore struct {
	db *sql.DB
}

// NewSQLiteFactStore opens or creates a SQLite database at the given path
// and applies the schema.
func NewSQLiteFactStore(dbPath string) (*SQLiteFactStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteFactStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewSQLiteFactStoreFromDB wraps an existing database handle. The caller is
// responsible for the handle's lifecycle; used by tests with sqlmock.
func NewSQLiteFactStoreFromDB(db *sql.DB) *SQLiteFactStore {
	return &SQLiteFactStore{db: db}
}

func (s *SQLiteFactStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memory_facts (
		user_id    TEXT NOT NULL,
		id         TEXT NOT NULL,
		content    TEXT NOT NULL,
		kind       TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (user_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_memory_facts_user_created ON memory_facts(user_id, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// GetFacts implements core.FactStore.
func (s *SQLiteFactStore) GetFacts(ctx context.Context, userID string) ([]core.MemoryFact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, kind, created_at, updated_at
		 FROM memory_facts WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query facts: %w", err)
	}
	defer rows.Close()

	facts := []core.MemoryFact{}
	for rows.Next() {
		var fact core.MemoryFact
		var createdAt, updatedAt string
		if err := rows.Scan(&fact.ID, &fact.Content, &fact.Kind, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		fact.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		fact.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		facts = append(facts, fact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate facts: %w", err)
	}
	return facts, nil
}

// UpsertFacts implements core.FactStore. Existing facts keep their original
// created_at; content, kind and updated_at are replaced.
func (s *SQLiteFactStore) UpsertFacts(ctx context.Context, userID string, facts []core.MemoryFact) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO memory_facts (user_id, id, content, kind, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, id) DO UPDATE SET
		   content = excluded.content,
		   kind = excluded.kind,
		   updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, fact := range facts {
		_, err := stmt.ExecContext(ctx,
			userID, fact.ID, fact.Content, fact.Kind,
			fact.CreatedAt.Format(time.RFC3339Nano),
			fact.UpdatedAt.Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("upsert fact %s: %w", fact.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteFactStore) Close() error { return s.db.Close() }

var _ core.FactStore = (*SQLiteFactStore)(nil)
