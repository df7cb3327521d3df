package completion

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	domerrors "github.com/edufuture/edubot/internal/errors"
	"github.com/edufuture/edubot/internal/logger"
	"github.com/edufuture/edubot/internal/memory"
)

// openaiCompleter generates replies through an OpenAI-compatible chat
// completion API. It implements the Completer interface.
type openaiCompleter struct {
	client openai.Client
	model  string
	log    *logger.Logger
}

// NewOpenAI creates a completer for an OpenAI-compatible endpoint.
// baseURL is optional; an empty value uses the official API. model is
// optional and defaults to DefaultOpenAIModel.
func NewOpenAI(apiKey, baseURL, model string, log *logger.Logger) Completer {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &openaiCompleter{
		client: openai.NewClient(opts...),
		model:  model,
		log:    log.WithModule("completion"),
	}
}

// Complete sends the full conversation and returns the assistant reply.
func (c *openaiCompleter) Complete(ctx context.Context, turns []memory.Turn) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case memory.RoleSystem:
			messages = append(messages, openai.SystemMessage(turn.Text))
		case memory.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Text))
		default:
			messages = append(messages, openai.UserMessage(turn.Text))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		status := 0
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		c.log.WithError(err).
			WithField("model", c.model).
			WithField("duration_ms", duration.Milliseconds()).
			Warn("chat completion failed")
		return "", domerrors.NewCompletionError(c.Provider(), status, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", domerrors.NewCompletionError(c.Provider(), 0, errors.New("empty completion response"))
	}

	if resp.Usage.TotalTokens > 0 {
		c.log.Debug("chat completion finished",
			"model", c.model,
			"input_tokens", resp.Usage.PromptTokens,
			"output_tokens", resp.Usage.CompletionTokens,
			"duration_ms", duration.Milliseconds())
	}

	return resp.Choices[0].Message.Content, nil
}

// Provider returns the provider name.
func (c *openaiCompleter) Provider() string {
	return "openai"
}

// Close releases resources. The openai client does not require cleanup.
func (c *openaiCompleter) Close() error {
	return nil
}
