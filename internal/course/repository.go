// Package course implements the course-catalog lookup module: a fixed table
// of course records with name-based search and keyword-driven classification
// of course questions.
package course

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	domerrors "github.com/edufuture/edubot/internal/errors"
)

// CSV header columns for the course source.
const (
	columnName        = "Название"
	columnDescription = "Описание"
	columnPrice       = "Цена"
	columnDuration    = "Длительность"
)

// Unit suffixes for numeric fields. Values are rendered as-is, no conversion.
const (
	priceUnit    = "руб."
	durationUnit = "ч."
)

// Record is a single catalog row describing one offered course.
// Immutable once loaded.
type Record struct {
	Name        string
	Description string
	Price       float64
	Duration    float64
}

// Field selects which part of a course record a lookup renders.
type Field string

// Lookup fields.
const (
	FieldFull        Field = "full"
	FieldDescription Field = "description"
	FieldPrice       Field = "price"
	FieldDuration    Field = "duration"
)

// Repository answers lookups against the loaded course catalog.
// Read-only after Load: safe to share across concurrent sessions.
type Repository struct {
	records []Record
	// foldedNames caches the case-folded form of each course name,
	// index-aligned with records. Names are search keys; duplicates are
	// allowed and resolved first-match-wins in load order.
	foldedNames []string
}

// Load reads the course catalog from a CSV file with
// Название,Описание,Цена,Длительность columns. Malformed rows are
// load-time errors; the repository is never returned partially loaded.
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

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.TrimSpace(col)] = i
	}
	for _, col := range []string{columnName, columnDescription, columnPrice, columnDuration} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("header is missing column %q, got %v", col, header)
		}
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

		name := strings.TrimSpace(record[idx[columnName]])
		if name == "" {
			return nil, domerrors.NewLoadError("", row, errors.New("empty course name"))
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(record[idx[columnPrice]]), 64)
		if err != nil {
			return nil, domerrors.NewLoadError("", row, fmt.Errorf("invalid price: %w", err))
		}
		duration, err := strconv.ParseFloat(strings.TrimSpace(record[idx[columnDuration]]), 64)
		if err != nil {
			return nil, domerrors.NewLoadError("", row, fmt.Errorf("invalid duration: %w", err))
		}

		repo.records = append(repo.records, Record{
			Name:        name,
			Description: strings.TrimSpace(record[idx[columnDescription]]),
			Price:       price,
			Duration:    duration,
		})
		repo.foldedNames = append(repo.foldedNames, fold.String(name))
	}

	return repo, nil
}

// ListCourses returns every course name in load order.
func (r *Repository) ListCourses() []string {
	names := make([]string, len(r.records))
	for i, rec := range r.records {
		names[i] = rec.Name
	}
	return names
}

// FormatCourseList renders the catalog as a numbered list for display.
func (r *Repository) FormatCourseList() string {
	var b strings.Builder
	b.WriteString("Доступные курсы:")
	for i, rec := range r.records {
		fmt.Fprintf(&b, "\n%d. %s", i+1, rec.Name)
	}
	return b.String()
}

// GetCourseInfo searches the catalog by case-insensitive substring of the
// course name and renders the requested field. Zero matches produce a
// not-found message (a normal negative outcome, never an error). When
// several names match, the first in load order is rendered with a note
// that other candidates exist.
func (r *Repository) GetCourseInfo(query string, field Field) string {
	folded := cases.Fold().String(query)

	var found *Record
	matches := 0
	for i := range r.records {
		if strings.Contains(r.foldedNames[i], folded) {
			if found == nil {
				found = &r.records[i]
			}
			matches++
		}
	}

	if found == nil {
		return fmt.Sprintf("Курс по запросу «%s» не найден. Напишите «какие курсы есть», чтобы увидеть весь список.", query)
	}

	var b strings.Builder
	if matches > 1 {
		b.WriteString("Найдено несколько подходящих курсов, показываю первый.\n\n")
	}
	b.WriteString(renderField(found, field))
	return b.String()
}

func renderField(rec *Record, field Field) string {
	switch field {
	case FieldDescription:
		return fmt.Sprintf("Курс «%s»: %s", rec.Name, rec.Description)
	case FieldPrice:
		return fmt.Sprintf("Курс «%s» стоит %s %s", rec.Name, formatNumber(rec.Price), priceUnit)
	case FieldDuration:
		return fmt.Sprintf("Курс «%s» длится %s %s", rec.Name, formatNumber(rec.Duration), durationUnit)
	default:
		return fmt.Sprintf("Курс: %s\nОписание: %s\nЦена: %s %s\nДлительность: %s %s",
			rec.Name, rec.Description,
			formatNumber(rec.Price), priceUnit,
			formatNumber(rec.Duration), durationUnit)
	}
}

// formatNumber renders a numeric field exactly as loaded: no trailing
// zeros, no unit conversion.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Records returns the loaded catalog in load order.
// The returned slice must not be modified.
func (r *Repository) Records() []Record {
	return r.records
}

// Len returns the number of loaded courses.
func (r *Repository) Len() int {
	return len(r.records)
}
