package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// ExportTranscript writes the session transcript to w as gzip-compressed JSON.
// The payload is a JSON array of ArchivedTurn objects in insertion order.
func (db *DB) ExportTranscript(ctx context.Context, sessionID string, w io.Writer) error {
	turns, err := db.Transcript(ctx, sessionID)
	if err != nil {
		return err
	}

	gz, err := gzip.NewWriterLevel(w, gzip.BestSpeed)
	if err != nil {
		return fmt.Errorf("failed to create gzip writer: %w", err)
	}

	enc := json.NewEncoder(gz)
	if err := enc.Encode(turns); err != nil {
		_ = gz.Close()
		return fmt.Errorf("failed to encode transcript: %w", err)
	}

	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finalize gzip stream: %w", err)
	}
	return nil
}
