package http

import (
	"net/http"

	"github.com/google/uuid"

	context_ "github.com/mkrupp/disastermap/internal/infra/context"
	"github.com/mkrupp/disastermap/internal/util/encoding"
)

// TraceIDHeader carries the trace ID between the shell, the CLI and the API.
const TraceIDHeader = "X-Request-ID"

// TracingMiddleware adds request tracing.
// It uses the X-Request-ID header if present, otherwise generates a new trace ID.
// The trace ID is added to the request context and echoed in the response.
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceIDHeader)
		if traceID == "" {
			traceID = NewTraceID()
		}

		w.Header().Set(TraceIDHeader, traceID)

		next.ServeHTTP(w, r.WithContext(context_.WithTraceID(r.Context(), traceID)))
	})
}

// NewTraceID returns a time ordered UUIDv7 in lowercase Crockford base32,
// or an empty string if no random bytes are available.
func NewTraceID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return ""
	}

	return encoding.EncodeCrockfordB32LC(id[:])
}
