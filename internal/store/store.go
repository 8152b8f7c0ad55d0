package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultBusyTimeout is how long a connection waits on a locked database
// before reporting lock contention.
const DefaultBusyTimeout = 30 * time.Second

// Schema is the DDL bundle for a single table.
// Create and Index must use IF NOT EXISTS so they can run on every open.
type Schema struct {
	Name   string
	Create string
	Index  string
}

// Store provides durable storage for one cache file.
// Uses SQLite with WAL mode so other processes can read while we write.
type Store struct {
	db          *sql.DB
	path        string
	busyTimeout time.Duration
	schemas     []Schema
}

// Option configures Open.
type Option func(*Store)

// WithBusyTimeout overrides DefaultBusyTimeout.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// WithSchemas registers tables that are bootstrapped on every open.
func WithSchemas(schemas ...Schema) Option {
	return func(s *Store) {
		s.schemas = append(s.schemas, schemas...)
	}
}

// Open creates or opens a SQLite database at the given path.
// Parent directories are created when missing.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - busy timeout for lock contention (30s unless overridden)
//   - Foreign key enforcement
//
// Every registered schema is bootstrapped, so Open is safe to call repeatedly.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{path: path, busyTimeout: DefaultBusyTimeout}
	for _, opt := range opts {
		opt(s)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, and pragmas are
	// per-connection, so keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	s.db = db

	if err := s.applyPragmas(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	ctx := context.Background()
	for _, schema := range s.schemas {
		if err := s.Bootstrap(ctx, schema); err != nil {
			db.Close()
			return nil, err
		}
	}

	return s, nil
}

// Close closes the database connection. Calling it more than once is safe.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the file the store was opened on.
func (s *Store) Path() string {
	return s.path
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Bootstrap creates a table and its optional index if they don't exist.
func (s *Store) Bootstrap(ctx context.Context, schema Schema) error {
	if _, err := s.db.ExecContext(ctx, schema.Create); err != nil {
		return fmt.Errorf("bootstrap %s: %w", schema.Name, err)
	}
	if schema.Index != "" {
		if _, err := s.db.ExecContext(ctx, schema.Index); err != nil {
			return fmt.Errorf("bootstrap %s index: %w", schema.Name, err)
		}
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func (s *Store) applyPragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", s.busyTimeout.Milliseconds()),
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
