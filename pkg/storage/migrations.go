package storage

import (
	"database/sql"
	"fmt"
)

var migrations = []string{
	// Migration 1: Initial schema
	`CREATE TABLE IF NOT EXISTS actions (
		id          TEXT PRIMARY KEY,
		action_type TEXT NOT NULL,
		cost        REAL,
		timestamp   DATETIME NOT NULL,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_actions_type ON actions(action_type);
	CREATE INDEX IF NOT EXISTS idx_actions_timestamp ON actions(timestamp);

	CREATE TABLE IF NOT EXISTS settings_history (
		id             TEXT PRIMARY KEY,
		call_cost      REAL,
		sms_cost       REAL,
		warning_level  REAL,
		critical_level REAL,
		changed_at     DATETIME NOT NULL
	);`,

	// Migration 2: Reset markers
	`CREATE TABLE IF NOT EXISTS resets (
		id       TEXT PRIMARY KEY,
		reason   TEXT NOT NULL DEFAULT 'manual',
		reset_at DATETIME NOT NULL
	);`,
}

// runMigrations applies pending schema migrations.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create migration table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("check migration version: %w", err)
	}

	for i := currentVersion; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("run migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", i+1, err)
		}
	}

	return nil
}
