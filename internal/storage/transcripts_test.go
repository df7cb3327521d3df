package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	domerrors "github.com/edufuture/edubot/internal/errors"
	"github.com/edufuture/edubot/internal/memory"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewTestDB()
	if err != nil {
		t.Fatalf("NewTestDB() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestAppendTurnAndTranscript(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	turns := []memory.Turn{
		{Role: memory.RoleUser, Text: "сколько стоит курс Python?"},
		{Role: memory.RoleAssistant, Text: "Python Programming: 15000 руб."},
		{Role: memory.RoleUser, Text: "а сколько он длится?"},
	}
	for _, turn := range turns {
		if err := db.AppendTurn(ctx, "session-1", turn); err != nil {
			t.Fatalf("AppendTurn() error = %v", err)
		}
	}

	got, err := db.Transcript(ctx, "session-1")
	if err != nil {
		t.Fatalf("Transcript() error = %v", err)
	}
	if len(got) != len(turns) {
		t.Fatalf("Transcript() returned %d turns, want %d", len(got), len(turns))
	}
	for i, turn := range turns {
		if got[i].Seq != i+1 {
			t.Errorf("turn %d: Seq = %d, want %d", i, got[i].Seq, i+1)
		}
		if got[i].Role != string(turn.Role) {
			t.Errorf("turn %d: Role = %q, want %q", i, got[i].Role, turn.Role)
		}
		if got[i].Text != turn.Text {
			t.Errorf("turn %d: Text = %q, want %q", i, got[i].Text, turn.Text)
		}
	}
}

func TestTranscriptSessionIsolation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.AppendExchange(ctx, "session-a", "привет", "Здравствуйте!"); err != nil {
		t.Fatalf("AppendExchange() error = %v", err)
	}
	if err := db.AppendExchange(ctx, "session-b", "какие курсы есть?", "Доступные курсы: ..."); err != nil {
		t.Fatalf("AppendExchange() error = %v", err)
	}

	turns, err := db.Transcript(ctx, "session-a")
	if err != nil {
		t.Fatalf("Transcript() error = %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("Transcript(session-a) returned %d turns, want 2", len(turns))
	}
	if turns[0].Text != "привет" {
		t.Errorf("first turn Text = %q, want %q", turns[0].Text, "привет")
	}
}

func TestTranscriptUnknownSession(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Transcript(context.Background(), "missing")
	if !errors.Is(err, domerrors.ErrSessionNotFound) {
		t.Errorf("Transcript() error = %v, want ErrSessionNotFound", err)
	}
}

func TestCountTurns(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	count, err := db.CountTurns(ctx, "session-1")
	if err != nil {
		t.Fatalf("CountTurns() error = %v", err)
	}
	if count != 0 {
		t.Errorf("CountTurns() = %d on empty session, want 0", count)
	}

	if err := db.AppendExchange(ctx, "session-1", "вопрос", "ответ"); err != nil {
		t.Fatalf("AppendExchange() error = %v", err)
	}

	count, err = db.CountTurns(ctx, "session-1")
	if err != nil {
		t.Fatalf("CountTurns() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountTurns() = %d, want 2", count)
	}
}

func TestPruneBefore(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.AppendExchange(ctx, "session-1", "старый вопрос", "старый ответ"); err != nil {
		t.Fatalf("AppendExchange() error = %v", err)
	}

	pruned, err := db.PruneBefore(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("PruneBefore() error = %v", err)
	}
	if pruned != 2 {
		t.Errorf("PruneBefore() = %d, want 2", pruned)
	}

	if _, err := db.Transcript(ctx, "session-1"); !errors.Is(err, domerrors.ErrSessionNotFound) {
		t.Errorf("Transcript() after prune error = %v, want ErrSessionNotFound", err)
	}
}

func TestExportTranscript(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.AppendExchange(ctx, "session-1", "как войти в систему", "Перейдите на сайт и введите свои учетные данные."); err != nil {
		t.Fatalf("AppendExchange() error = %v", err)
	}

	var buf bytes.Buffer
	if err := db.ExportTranscript(ctx, "session-1", &buf); err != nil {
		t.Fatalf("ExportTranscript() error = %v", err)
	}

	gz, err := gzip.NewReader(&buf)
	if err != nil {
		t.Fatalf("gzip.NewReader() error = %v", err)
	}
	defer func() { _ = gz.Close() }()

	var turns []ArchivedTurn
	if err := json.NewDecoder(gz).Decode(&turns); err != nil {
		t.Fatalf("decode exported transcript: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("exported %d turns, want 2", len(turns))
	}
	if turns[0].Role != string(memory.RoleUser) || turns[1].Role != string(memory.RoleAssistant) {
		t.Errorf("exported roles = %q, %q, want user then assistant", turns[0].Role, turns[1].Role)
	}
}

func TestExportTranscriptUnknownSession(t *testing.T) {
	db := newTestDB(t)

	var buf bytes.Buffer
	err := db.ExportTranscript(context.Background(), "missing", &buf)
	if !errors.Is(err, domerrors.ErrSessionNotFound) {
		t.Errorf("ExportTranscript() error = %v, want ErrSessionNotFound", err)
	}
	if buf.Len() != 0 {
		t.Errorf("ExportTranscript() wrote %d bytes on error, want 0", buf.Len())
	}
}
