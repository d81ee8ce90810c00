package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Memory is the in-memory database path. An in-memory log lives exactly as
// long as the Store that owns it, which is the default lifecycle: traces are
// a debugging aid for the current process, not durable data.
const Memory = ":memory:"

// Store is the append-only record log.
type Store struct {
	db *sql.DB
}

// Open creates or opens the record log at the given path.
// Pass Memory (or an empty path) for an in-memory log.
//
// The database is configured with:
//   - WAL mode (ignored for in-memory databases)
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - a single connection, since SQLite allows one writer and an in-memory
//     database is per-connection
//
// This function is idempotent for file paths - safe to call multiple times.
func Open(path string) (*Store, error) {
	if path == "" {
		path = Memory
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One connection: single writer, and the in-memory database would
	// otherwise be a different database per pooled connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
// For an in-memory log this discards every record.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Clear empties the record log. State-table clearing is the tracker's job;
// the store only owns the log side.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	// Reset the seq counter so a cleared log is indistinguishable from a
	// fresh one.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = 'records'`); err != nil {
		return fmt.Errorf("reset seq: %w", err)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}
