package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps sql.DB with the run history queries
type DB struct {
	*sql.DB
}

// New opens (or creates) the history database at path
func New(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("database open failed: %w", err)
	}
	// foreign_keys is per connection
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	return &DB{db}, nil
}

// InitSchema creates all necessary tables
func (db *DB) InitSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS runs (
        id TEXT PRIMARY KEY,
        started_at DATETIME NOT NULL,
        finished_at DATETIME NOT NULL,
        host TEXT NOT NULL,
        range_start TEXT NOT NULL,
        range_end TEXT NOT NULL,
        packet_size INTEGER NOT NULL,
        interval_ms INTEGER NOT NULL,
        packet_count INTEGER NOT NULL,
        target_count INTEGER NOT NULL,
        status TEXT NOT NULL,
        stage TEXT NOT NULL DEFAULT '',
        error TEXT NOT NULL DEFAULT ''
    );

    CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

    CREATE TABLE IF NOT EXISTS target_stats (
        run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
        captured_at DATETIME NOT NULL,
        target TEXT NOT NULL,
        transmitted INTEGER NOT NULL,
        received INTEGER NOT NULL,
        loss_percent INTEGER NOT NULL,
        min_ms REAL NOT NULL,
        avg_ms REAL NOT NULL,
        max_ms REAL NOT NULL,
        PRIMARY KEY (run_id, target)
    );

    CREATE INDEX IF NOT EXISTS idx_target_stats_target_time ON target_stats(target, captured_at);
    CREATE INDEX IF NOT EXISTS idx_target_stats_time ON target_stats(captured_at);
    `

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}

	return nil
}
