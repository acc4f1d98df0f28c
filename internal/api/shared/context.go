// Package shared holds the request context keys and response helpers used by
// the API handlers and middleware.
package shared

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is the type of request context keys set by the API middleware.
type ContextKey string

const (
	// UserIDContextKey carries the authenticated user's uuid.UUID.
	UserIDContextKey ContextKey = "userID"

	// TraceIDKey carries the request's trace ID.
	TraceIDKey ContextKey = "traceID"
)

// SetTraceID adds a fresh trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, newTraceID())
}

// GetTraceID retrieves the trace ID from the context, or "" when unset.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// WithUserID returns a copy of ctx carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}

// UserIDFromContext returns the authenticated user ID. ok is false when the
// request was not authenticated.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// newTraceID returns 32 hex characters.
func newTraceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
