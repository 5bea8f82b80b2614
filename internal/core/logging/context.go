package logging

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	listModeKey  contextKey = "list_mode"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithListMode adds the active list mode (seeded, tag, query) to the context.
func WithListMode(ctx context.Context, mode string) context.Context {
	return context.WithValue(ctx, listModeKey, mode)
}

// GetRequestID retrieves the request ID from the context.
// Returns empty string if not present.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetListMode retrieves the list mode from the context.
// Returns empty string if not present.
func GetListMode(ctx context.Context) string {
	if mode, ok := ctx.Value(listModeKey).(string); ok {
		return mode
	}
	return ""
}
