package http

import (
	"log/slog"
	"net/http"

	"github.com/mkrupp/disastermap/internal/domain"
	context_ "github.com/mkrupp/disastermap/internal/infra/context"
	"github.com/mkrupp/disastermap/internal/infra/logging"
	"github.com/mkrupp/disastermap/internal/infra/metrics"
	"github.com/mkrupp/disastermap/internal/router"
)

// SessionSource yields the current session.
type SessionSource interface {
	Snapshot() domain.Session
}

// PendingBody is the answer for requests arriving while the session is
// still being restored.
type PendingBody struct {
	State   router.State `json:"state"`
	Message string       `json:"message"`
}

// GuardingMiddleware applies the guard of route to every request. It is
// meant for actions, not pages: a pending session answers 202 with
// Retry-After, a missing session 401 and a wrong role 403, each with a
// JSON body naming where a client should go. Admitted requests carry the
// session snapshot in their context.
func GuardingMiddleware(
	next http.Handler,
	route router.Route,
	sessions SessionSource,
	log logging.Logger,
	m *metrics.Metrics,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := sessions.Snapshot()
		decision := router.Evaluate(session, route)
		m.GuardDecision(route.Name, decision.State.String())

		log := log.With(slog.Group("http", "method", r.Method, "uri", r.RequestURI),
			slog.Group("guard", "route", route.Name, "state", decision.State.String()))

		switch decision.State {
		case router.StatePending:
			log.DebugContext(r.Context(), "request held back")
			w.Header().Set("Retry-After", "1")
			WriteJSON(w, http.StatusAccepted, PendingBody{State: decision.State, Message: "Loading..."})
		case router.StateDenied:
			log.InfoContext(r.Context(), "request denied")
			w.Header().Set("Location", decision.Redirect)
			WriteError(w, http.StatusUnauthorized, domain.LoginRequiredMessage)
		case router.StateWrongRole:
			log.InfoContext(r.Context(), "request denied for role", "role", session.Role())
			w.Header().Set("Location", decision.Redirect)
			WriteError(w, http.StatusForbidden, "You do not have permission to do this.")
		case router.StateAdmitted:
			next.ServeHTTP(w, r.WithContext(context_.WithSession(r.Context(), session)))
		}
	})
}
