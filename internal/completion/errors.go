// Error classification for the retry decorator: transient failures are
// worth another attempt, permanent ones are not.
package completion

import (
	"context"
	"errors"
	"net/http"
	"strings"

	domerrors "github.com/edufuture/edubot/internal/errors"
)

// IsPermanent reports whether the error is a permanent failure that
// retrying cannot fix (bad request, auth, not found). Unknown errors are
// treated as transient, the conservative choice for network-facing calls.
func IsPermanent(err error) bool {
	if err == nil {
		return true
	}

	if errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var completionErr *domerrors.CompletionError
	if errors.As(err, &completionErr) && completionErr.StatusCode > 0 {
		return permanentStatusCode(completionErr.StatusCode)
	}

	errStr := strings.ToLower(err.Error())

	// Transient patterns first: rate limiting and server-side trouble.
	if containsAny(errStr, "rate limit", "too many requests", "resource_exhausted",
		"429", "500", "502", "503", "504", "unavailable", "overloaded",
		"timeout", "deadline", "connection") {
		return false
	}

	if containsAny(errStr, "400", "invalid", "bad request", "malformed") {
		return true
	}
	if containsAny(errStr, "401", "unauthorized", "unauthenticated", "invalid api key") {
		return true
	}
	if containsAny(errStr, "403", "forbidden", "permission denied") {
		return true
	}
	if containsAny(errStr, "404", "not found") {
		return true
	}

	return false
}

func permanentStatusCode(statusCode int) bool {
	switch {
	case statusCode == http.StatusTooManyRequests,
		statusCode == http.StatusRequestTimeout,
		statusCode == http.StatusConflict:
		return false
	case statusCode >= 500:
		return false
	case statusCode >= 400:
		return true
	default:
		return false
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
