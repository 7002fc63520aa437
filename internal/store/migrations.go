package store

import (
	"database/sql"
	"fmt"
)

// migrations are applied in order. The schema version is tracked via
// PRAGMA user_version; each entry bumps it by one.
var migrations = []string{
	`CREATE TABLE runs (
		id            TEXT PRIMARY KEY,
		product_url   TEXT NOT NULL,
		status        TEXT NOT NULL,
		product_title TEXT NOT NULL DEFAULT '',
		keywords      TEXT NOT NULL DEFAULT '[]',
		subreddits    TEXT NOT NULL DEFAULT '[]',
		videos        TEXT NOT NULL DEFAULT '[]',
		report        TEXT NOT NULL DEFAULT '',
		scripts       TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		started_at    TEXT NOT NULL DEFAULT (datetime('now')),
		finished_at   TEXT
	);
	CREATE INDEX idx_runs_started_at ON runs(started_at);`,
}

func migrate(conn *sql.DB) error {
	var version int
	if err := conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for i := version; i < len(migrations); i++ {
		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("starting migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("bumping schema version to %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", i+1, err)
		}
	}
	return nil
}
