package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestLoadError(t *testing.T) {
	tests := []struct {
		name string
		err  *LoadError
		want string
	}{
		{
			name: "with row",
			err:  NewLoadError("data/faq.csv", 3, errors.New("empty question")),
			want: "load error (source=data/faq.csv, row=3): empty question",
		},
		{
			name: "without row",
			err:  NewLoadError("data/courses.csv", 0, errors.New("missing header")),
			want: "load error (source=data/courses.csv): missing header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadError_Unwrap(t *testing.T) {
	cause := errors.New("bad value")
	err := NewLoadError("data/courses.csv", 2, cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var loadErr *LoadError
	wrapped := fmt.Errorf("startup failed: %w", err)
	if !errors.As(wrapped, &loadErr) {
		t.Error("errors.As should find *LoadError through wrapping")
	}
	if loadErr.Row != 2 {
		t.Errorf("Row = %d, want 2", loadErr.Row)
	}
}

func TestCompletionError(t *testing.T) {
	cause := errors.New("connection refused")

	t.Run("with status", func(t *testing.T) {
		err := NewCompletionError("openai", 429, cause)
		want := "completion error (provider=openai, status=429): connection refused"
		if got := err.Error(); got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	})

	t.Run("without status", func(t *testing.T) {
		err := NewCompletionError("gemini", 0, cause)
		want := "completion error (provider=gemini): connection refused"
		if got := err.Error(); got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	})

	t.Run("unwrap", func(t *testing.T) {
		err := NewCompletionError("openai", 500, cause)
		if !errors.Is(err, cause) {
			t.Error("errors.Is should find the wrapped cause")
		}
	})
}

func TestGetUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, ""},
		{
			"wrapped error",
			Wrap("router", "complete", errors.New("boom"), "Не удалось получить ответ."),
			"Не удалось получить ответ.",
		},
		{"plain error", errors.New("plain"), "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetUserMessage(tt.err); got != tt.want {
				t.Errorf("GetUserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrap_NilError(t *testing.T) {
	if Wrap("faq", "load", nil, "message") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}
