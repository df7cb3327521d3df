// Package context provides type-safe context value management for the application.
// It uses private key types to prevent context key collisions.
package context

import (
	"context"
)

type contextKey string

const (
	sessionIDKey contextKey = "context.sessionID"
	requestIDKey contextKey = "context.requestID"
)

// WithSessionID adds a conversation session ID to the context.
// Used for log correlation across the router and the transcript archive.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// GetSessionID retrieves the session ID from the context.
// Returns the session ID if found, empty string otherwise.
func GetSessionID(ctx context.Context) string {
	if v := ctx.Value(sessionIDKey); v != nil {
		if sessionID, ok := v.(string); ok && sessionID != "" {
			return sessionID
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context for tracing.
// Request ID is generated per HTTP request for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID and true if found, empty string and false otherwise.
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	return requestID, ok
}

// PreserveTracing creates a detached context that keeps tracing values but
// drops the parent's cancellation and deadlines. Use for work that must
// outlive the HTTP request, like archiving a transcript after the reply
// was already sent.
func PreserveTracing(ctx context.Context) context.Context {
	newCtx := context.Background()

	if sessionID := GetSessionID(ctx); sessionID != "" {
		newCtx = WithSessionID(newCtx, sessionID)
	}
	if requestID, ok := GetRequestID(ctx); ok && requestID != "" {
		newCtx = WithRequestID(newCtx, requestID)
	}

	return newCtx
}
