package context

import (
	"context"
)

const contextKeyTraceID = contextKey("traceID")

// TraceIDFromContext returns the trace ID of ctx. An empty ID counts as absent.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(contextKeyTraceID).(string)

	return traceID, ok && traceID != ""
}

// WithTraceID returns a context carrying traceID. The ID is forwarded to the
// API as X-Request-ID and attached to every log record.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, contextKeyTraceID, traceID)
}

// EnsureTraceID returns ctx and its trace ID, attaching one from newID when
// ctx has none. All API calls of one shell request or CLI command then share
// an ID.
func EnsureTraceID(ctx context.Context, newID func() string) (context.Context, string) {
	if traceID, ok := TraceIDFromContext(ctx); ok {
		return ctx, traceID
	}

	traceID := newID()

	return WithTraceID(ctx, traceID), traceID
}
