package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	domerrors "github.com/edufuture/edubot/internal/errors"
	"github.com/edufuture/edubot/internal/memory"
)

// ArchivedTurn is a single persisted conversation turn
type ArchivedTurn struct {
	SessionID string    `json:"session_id"`
	Seq       int       `json:"seq"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// AppendTurn persists a conversation turn at the end of a session transcript
func (db *DB) AppendTurn(ctx context.Context, sessionID string, turn memory.Turn) error {
	query := `
		INSERT INTO transcript_turns (session_id, seq, role, text, created_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM transcript_turns WHERE session_id = ?), ?, ?, ?)
	`
	start := time.Now()
	_, err := db.conn.ExecContext(ctx, query, sessionID, sessionID, string(turn.Role), turn.Text, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to append transcript turn: %w", err)
	}

	// Warn on slow writes (>100ms)
	if duration := time.Since(start); duration > 100*time.Millisecond {
		slog.WarnContext(ctx, "slow database operation",
			"operation", "AppendTurn",
			"duration_ms", duration.Milliseconds(),
			"session_id", sessionID)
	}
	return nil
}

// AppendExchange persists a user message and the bot reply as two consecutive turns
func (db *DB) AppendExchange(ctx context.Context, sessionID, userText, botText string) error {
	if err := db.AppendTurn(ctx, sessionID, memory.Turn{Role: memory.RoleUser, Text: userText}); err != nil {
		return err
	}
	return db.AppendTurn(ctx, sessionID, memory.Turn{Role: memory.RoleAssistant, Text: botText})
}

// Transcript returns all archived turns for a session in insertion order.
// Returns ErrSessionNotFound when the session has no archived turns.
func (db *DB) Transcript(ctx context.Context, sessionID string) ([]ArchivedTurn, error) {
	query := `
		SELECT session_id, seq, role, text, created_at
		FROM transcript_turns
		WHERE session_id = ?
		ORDER BY seq ASC
	`
	rows, err := db.conn.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcript: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var turns []ArchivedTurn
	for rows.Next() {
		var t ArchivedTurn
		var createdAt int64
		if err := rows.Scan(&t.SessionID, &t.Seq, &t.Role, &t.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transcript turn: %w", err)
		}
		t.CreatedAt = time.Unix(createdAt, 0).UTC()
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transcript rows: %w", err)
	}

	if len(turns) == 0 {
		return nil, domerrors.ErrSessionNotFound
	}
	return turns, nil
}

// CountTurns returns the number of archived turns for a session
func (db *DB) CountTurns(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transcript_turns WHERE session_id = ?`, sessionID,
	).Scan(&count)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to count transcript turns: %w", err)
	}
	return count, nil
}

// PruneBefore deletes archived turns created before the cutoff time.
// Returns the number of deleted turns.
func (db *DB) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM transcript_turns WHERE created_at < ?`, cutoff.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune transcript turns: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read pruned row count: %w", err)
	}
	return n, nil
}
