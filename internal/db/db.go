// Package db provides the sqlite-backed decision log and terminal
// session store.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the sqlite connection.
type DB struct {
	*sql.DB
	path string
}

// Open opens (creating if needed) the database at path and runs migrations.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{DB: conn, path: path}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// Path returns the filesystem path of the database.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id             TEXT PRIMARY KEY,
		actor          TEXT NOT NULL,
		program        TEXT NOT NULL DEFAULT '',
		project_path   TEXT NOT NULL,
		assistant_mode INTEGER NOT NULL DEFAULT 0,
		started_at     TEXT NOT NULL,
		last_active_at TEXT NOT NULL,
		ended_at       TEXT
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_active
		ON sessions(actor, project_path) WHERE ended_at IS NULL;

	CREATE TABLE IF NOT EXISTS decisions (
		id         TEXT PRIMARY KEY,
		session_id TEXT,
		kind       TEXT NOT NULL,
		input      TEXT NOT NULL,
		decision   TEXT NOT NULL,
		rule       TEXT NOT NULL DEFAULT '',
		reason     TEXT NOT NULL DEFAULT '',
		context    TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_decisions_created_at ON decisions(created_at);
	CREATE INDEX IF NOT EXISTS idx_decisions_session ON decisions(session_id);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}
