// Retry decorator around a Completer. The router itself never retries;
// callers opt into this wrapper through configuration.
package completion

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"
	"time"

	"github.com/edufuture/edubot/internal/logger"
	"github.com/edufuture/edubot/internal/memory"
)

// RetryConfig defines retry behavior for completion calls.
// Uses Full Jitter exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	MaxAttempts int
	// InitialDelay is the base delay before first retry.
	InitialDelay time.Duration
	// MaxDelay is the maximum delay between retries.
	MaxDelay time.Duration
}

// Retry defaults.
const (
	DefaultInitialRetryDelay = 500 * time.Millisecond
	DefaultMaxRetryDelay     = 3 * time.Second
)

type retryCompleter struct {
	inner Completer
	cfg   RetryConfig
	log   *logger.Logger
}

// WithRetry wraps a Completer with retry-on-transient-error behavior.
// cfg.MaxAttempts < 2 returns the inner completer unchanged.
func WithRetry(inner Completer, cfg RetryConfig, log *logger.Logger) Completer {
	if cfg.MaxAttempts < 2 {
		return inner
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultInitialRetryDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxRetryDelay
	}
	return &retryCompleter{
		inner: inner,
		cfg:   cfg,
		log:   log.WithModule("completion"),
	}
}

func (r *retryCompleter) Complete(ctx context.Context, turns []memory.Turn) (string, error) {
	var lastErr error

	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		reply, err := r.inner.Complete(ctx, turns)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		if IsPermanent(err) {
			return "", err
		}
		if attempt == r.cfg.MaxAttempts-1 {
			break
		}

		delay := calculateBackoff(attempt+1, r.cfg.InitialDelay, r.cfg.MaxDelay)
		r.log.WithError(err).
			WithField("attempt", attempt+1).
			WithField("delay_ms", delay.Milliseconds()).
			Warn("completion attempt failed, retrying")

		if err := sleep(ctx, delay); err != nil {
			return "", err
		}
	}

	return "", lastErr
}

func (r *retryCompleter) Provider() string {
	return r.inner.Provider()
}

func (r *retryCompleter) Close() error {
	return r.inner.Close()
}

// calculateBackoff returns the delay before the next retry attempt using
// the Full Jitter algorithm: random(0, min(maxDelay, initial * 2^attempt)).
func calculateBackoff(attempt int, initial, maxDelay time.Duration) time.Duration {
	if attempt <= 0 {
		return 0
	}

	exp := math.Pow(2, float64(attempt-1))
	delay := time.Duration(float64(initial) * exp)
	if delay > maxDelay {
		delay = maxDelay
	}
	if delay <= 0 {
		return 0
	}

	// crypto/rand for uniform jitter without bias
	jitter, err := rand.Int(rand.Reader, big.NewInt(int64(delay)))
	if err != nil {
		return delay / 2
	}
	return time.Duration(jitter.Int64())
}

// sleep waits for d, respecting context cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
