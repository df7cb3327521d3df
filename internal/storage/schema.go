package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// initSchema creates all necessary tables and indexes.
// Note: WAL mode is configured in db.go.
func initSchema(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS transcript_turns (
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		text TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (session_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_transcript_turns_created_at ON transcript_turns(created_at);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create transcript_turns table: %w", err)
	}

	return nil
}
