// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrContextCanceled indicates context was canceled.
	ErrContextCanceled = errors.New("context canceled")

	// ErrSessionNotFound indicates an unknown conversation session ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrCompletionDisabled indicates no completion provider is configured.
	ErrCompletionDisabled = errors.New("completion provider not configured")
)

// LoadError represents malformed or missing FAQ/course source data.
// It is fatal at startup: the application must not serve with a
// partially loaded table.
type LoadError struct {
	Source string // source file path
	Row    int    // 1-based row number, 0 if not row-specific
	Err    error
}

func (e *LoadError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("load error (source=%s, row=%d): %v", e.Source, e.Row, e.Err)
	}
	return fmt.Sprintf("load error (source=%s): %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError creates a new load error.
func NewLoadError(source string, row int, err error) *LoadError {
	return &LoadError{
		Source: source,
		Row:    row,
		Err:    err,
	}
}

// CompletionError represents a failed call to the external completion
// service (auth, network, quota). It is surfaced to callers unconverted
// so presentation layers can report it distinctly from a normal reply.
type CompletionError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *CompletionError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("completion error (provider=%s, status=%d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("completion error (provider=%s): %v", e.Provider, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// NewCompletionError creates a new completion error.
func NewCompletionError(provider string, statusCode int, err error) *CompletionError {
	return &CompletionError{
		Provider:   provider,
		StatusCode: statusCode,
		Err:        err,
	}
}
