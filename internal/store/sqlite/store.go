// Package sqlite implements the vector store on an embedded SQLite database.
// SQLite is single-writer: concurrent writes surface SQLITE_BUSY / "database
// is locked", so every operation runs under the jittered busy-retry policy.
// Networked backends do not need this wrapper and must not apply it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/wardesk/faqdex/internal/domain"
	"github.com/wardesk/faqdex/internal/retry"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id          TEXT PRIMARY KEY,
	category    TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL DEFAULT '',
	answer_body TEXT NOT NULL DEFAULT '',
	keywords    TEXT NOT NULL DEFAULT '',
	image_refs  TEXT NOT NULL DEFAULT 'none',
	source_url  TEXT NOT NULL DEFAULT '',
	embed_text  TEXT NOT NULL DEFAULT '',
	vector      BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_category ON documents(category);
`

// Config holds settings for the embedded store.
type Config struct {
	// Path is the database file location. Parent directories are created.
	Path string
	// MaxAttempts and BaseDelay shape the busy-retry policy.
	// Zero values fall back to the calibrated defaults.
	MaxAttempts int
	BaseDelay   time.Duration
}

// Store implements domain.VectorStore backed by a single SQLite file.
type Store struct {
	db     *sql.DB
	policy retry.Policy
}

var _ domain.VectorStore = (*Store)(nil)

// NewStore opens (creating if needed) the database at cfg.Path.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: create data directory: %w", err)
	}

	// WAL keeps readers unblocked while a writer holds the lock.
	db, err := sql.Open("sqlite", cfg.Path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	policy := retry.DefaultPolicy(isBusy, func(last error) error {
		return fmt.Errorf("%w: %v", domain.ErrStoreBusy, last)
	})
	if cfg.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.BaseDelay > 0 {
		policy.BaseDelay = cfg.BaseDelay
	}

	return &Store{db: db, policy: policy}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// isBusy reports whether err is SQLite lock contention.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "locked") || strings.Contains(msg, "busy")
}

// withRetry runs op under the busy-retry policy.
func withRetry[T any](ctx context.Context, s *Store, op func() (T, error)) (T, error) {
	return retry.Do(ctx, s.policy, op)
}
