// Package faq implements the FAQ lookup table: a fixed set of canonical
// question/answer pairs matched by substring against user messages.
package faq

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"

	domerrors "github.com/edufuture/edubot/internal/errors"
)

// CSV header columns for the FAQ source.
const (
	columnQuestion = "question"
	columnAnswer   = "answer"
)

// Entry is a single canonical question/answer pair. Immutable once loaded.
type Entry struct {
	Question string
	Answer   string
}

// Repository answers lookups against the loaded FAQ table.
// Read-only after Load: safe to share across concurrent sessions.
type Repository struct {
	entries []Entry
	// foldedQuestions caches the case-folded form of each question,
	// index-aligned with entries.
	foldedQuestions []string
}

// Load reads the FAQ table from a CSV file with question,answer columns.
// Any row with an empty question or missing answer is a load-time error;
// the repository is never returned partially loaded.
func Load(path string) (*Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domerrors.NewLoadError(path, 0, err)
	}
	defer func() { _ = f.Close() }()

	repo, err := load(f)
	if err != nil {
		var loadErr *domerrors.LoadError
		if errors.As(err, &loadErr) {
			loadErr.Source = path
			return nil, loadErr
		}
		return nil, domerrors.NewLoadError(path, 0, err)
	}
	return repo, nil
}

func load(r io.Reader) (*Repository, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // row-level validation below gives better errors

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	questionIdx, answerIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case columnQuestion:
			questionIdx = i
		case columnAnswer:
			answerIdx = i
		}
	}
	if questionIdx < 0 || answerIdx < 0 {
		return nil, fmt.Errorf("header must contain %q and %q columns, got %v",
			columnQuestion, columnAnswer, header)
	}

	fold := cases.Fold()
	repo := &Repository{}
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, domerrors.NewLoadError("", row, err)
		}
		if answerIdx >= len(record) || questionIdx >= len(record) {
			return nil, domerrors.NewLoadError("", row, errors.New("missing answer column"))
		}
		question := strings.TrimSpace(record[questionIdx])
		answer := strings.TrimSpace(record[answerIdx])
		// An empty question would trivially match every message.
		if question == "" {
			return nil, domerrors.NewLoadError("", row, errors.New("empty question"))
		}
		if answer == "" {
			return nil, domerrors.NewLoadError("", row, errors.New("empty answer"))
		}
		repo.entries = append(repo.entries, Entry{Question: question, Answer: answer})
		repo.foldedQuestions = append(repo.foldedQuestions, fold.String(question))
	}

	return repo, nil
}

// FindAnswer returns the answer of the first entry, in load order, whose
// question is a case-insensitive substring of the message. The second
// return value is false when no entry matches (a normal miss, not an error).
func (r *Repository) FindAnswer(message string) (string, bool) {
	folded := cases.Fold().String(message)
	for i, question := range r.foldedQuestions {
		if strings.Contains(folded, question) {
			return r.entries[i].Answer, true
		}
	}
	return "", false
}

// Len returns the number of loaded entries.
func (r *Repository) Len() int {
	return len(r.entries)
}
