package context

import (
	"context"

	"github.com/mkrupp/disastermap/internal/domain"
)

const contextKeySession = contextKey("session")

// SessionFromContext returns the session snapshot a request was admitted with.
func SessionFromContext(ctx context.Context) (domain.Session, bool) {
	session, ok := ctx.Value(contextKeySession).(domain.Session)

	return session, ok
}

// WithSession stores the session snapshot the route guard admitted the
// request with, so handlers render against the same state.
func WithSession(ctx context.Context, session domain.Session) context.Context {
	return context.WithValue(ctx, contextKeySession, session)
}
