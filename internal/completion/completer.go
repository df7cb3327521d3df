// Package completion integrates the external text-generation services used
// as the router's last-resort stage. The router sends the running
// conversation and receives a single assistant reply; everything else
// (prompting strategy, retries, provider choice) is configuration.
//
// Providers:
//   - OpenAI-compatible APIs via github.com/openai/openai-go (custom base
//     URL supported for Groq-style endpoints)
//   - Gemini via google.golang.org/genai
package completion

import (
	"context"

	"github.com/edufuture/edubot/internal/memory"
)

// Completer is the external completion collaborator: it receives the
// ordered conversation turns and returns one assistant reply. A failed
// call returns a *errors.CompletionError; no partial answer is produced.
type Completer interface {
	// Complete generates an assistant reply for the given conversation.
	Complete(ctx context.Context, turns []memory.Turn) (string, error)
	// Provider returns the provider name for logs and metrics.
	Provider() string
	// Close releases any resources held by the client.
	Close() error
}

// Default models per provider.
const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.5-flash"
)
