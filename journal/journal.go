// Package journal persists convergence history to SQLite for audit and
// tracing. It implements form.HistorySink: every commit and merge the
// engine appends to its bounded in-memory history is also written here,
// surviving eviction.
//
// The journal is write-only from the engine's point of view. It is never
// read back to restore field state; restoring state across restarts is
// explicitly out of scope for the engine.
package journal

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Journal is an append-only SQLite log of commits and merges.
// Safe for use as a form.HistorySink: writes happen on the engine's run
// loop goroutine, reads may come from anywhere (WAL mode).
type Journal struct {
	db *sql.DB
}

// Open creates or opens a journal database at the given path.
// Applies required pragmas and the schema automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call on an existing journal.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}
