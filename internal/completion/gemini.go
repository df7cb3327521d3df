package completion

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	domerrors "github.com/edufuture/edubot/internal/errors"
	"github.com/edufuture/edubot/internal/logger"
	"github.com/edufuture/edubot/internal/memory"
)

// geminiCompleter generates replies through the Gemini API.
// It implements the Completer interface.
type geminiCompleter struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

// NewGemini creates a Gemini-backed completer. model is optional and
// defaults to DefaultGeminiModel.
func NewGemini(ctx context.Context, apiKey, model string, log *logger.Logger) (Completer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, domerrors.NewCompletionError("gemini", 0, err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &geminiCompleter{
		client: client,
		model:  model,
		log:    log.WithModule("completion"),
	}, nil
}

// Complete sends the full conversation and returns the assistant reply.
// System turns are lifted into the system instruction; user and assistant
// turns map to the user/model roles.
func (c *geminiCompleter) Complete(ctx context.Context, turns []memory.Turn) (string, error) {
	var config *genai.GenerateContentConfig
	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case memory.RoleSystem:
			config = &genai.GenerateContentConfig{
				SystemInstruction: genai.NewContentFromText(turn.Text, genai.RoleUser),
			}
		case memory.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(turn.Text, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(turn.Text, genai.RoleUser))
		}
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	duration := time.Since(start)

	if err != nil {
		c.log.WithError(err).
			WithField("model", c.model).
			WithField("duration_ms", duration.Milliseconds()).
			Warn("generate content failed")
		return "", domerrors.NewCompletionError(c.Provider(), 0, err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", domerrors.NewCompletionError(c.Provider(), 0, errors.New("empty completion response"))
	}

	var reply strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			reply.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(reply.String())
	if text == "" {
		return "", domerrors.NewCompletionError(c.Provider(), 0, errors.New("empty completion response"))
	}

	if resp.UsageMetadata != nil {
		c.log.Debug("generate content finished",
			"model", c.model,
			"input_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
			"duration_ms", duration.Milliseconds())
	}

	return text, nil
}

// Provider returns the provider name.
func (c *geminiCompleter) Provider() string {
	return "gemini"
}

// Close releases resources. The genai client does not require cleanup.
func (c *geminiCompleter) Close() error {
	return nil
}
