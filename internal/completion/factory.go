package completion

import (
	"context"

	"github.com/edufuture/edubot/internal/config"
	domerrors "github.com/edufuture/edubot/internal/errors"
	"github.com/edufuture/edubot/internal/logger"
)

// New builds the configured Completer, wrapped with the retry decorator
// when cfg.CompletionRetries > 0. Returns ErrCompletionDisabled when the
// selected provider has no API key.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (Completer, error) {
	if !cfg.HasCompletionProvider() {
		return nil, domerrors.ErrCompletionDisabled
	}

	var (
		completer Completer
		err       error
	)
	switch cfg.CompletionProvider {
	case config.ProviderGemini:
		completer, err = NewGemini(ctx, cfg.GeminiAPIKey, cfg.CompletionModel, log)
		if err != nil {
			return nil, err
		}
	default:
		completer = NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.CompletionModel, log)
	}

	if cfg.CompletionRetries > 0 {
		completer = WithRetry(completer, RetryConfig{
			MaxAttempts: cfg.CompletionRetries + 1,
		}, log)
	}

	return completer, nil
}
