// Package shellsvc serves the pages of the disaster map as JSON view models
// and applies the route guard to every navigation.
package shellsvc

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mkrupp/disastermap/internal/domain"
	"github.com/mkrupp/disastermap/internal/infra/logging"
	"github.com/mkrupp/disastermap/internal/infra/metrics"
	http_ "github.com/mkrupp/disastermap/internal/infra/transport/http"
	"github.com/mkrupp/disastermap/internal/router"
	"github.com/mkrupp/disastermap/internal/svc/authsvc"
	"github.com/mkrupp/disastermap/internal/svc/disastersvc"
)

const routeDisasterEdit = "disaster-edit"

// HTTPTransportConfig holds configuration for the shell.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig

	// RecentCount is the number of disasters the dashboard lists.
	RecentCount int `env:"RECENT_COUNT" default:"5"`
}

// HTTPTransport is the local shell of one user:
// - the session endpoints of authsvc under /session
// - GET on every page of the route table, answered by guard state
// - POST /disasters/new, /disasters/{id}/edit and /disasters/{id}/delete
// - GET /navigation and POST /navigation/back for the history
// - GET /metrics.
type HTTPTransport struct {
	cfg       HTTPTransportConfig
	auth      *authsvc.AuthService
	disasters *disastersvc.DisasterService
	nav       *router.Navigator
	table     *router.Table
	metrics   *metrics.Metrics
	log       logging.Logger
	router    *mux.Router

	verifyMu sync.Mutex
	verified map[string]domain.Result
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates the shell. gatherer backs GET /metrics and may be nil.
func NewHTTPTransport(
	cfg HTTPTransportConfig,
	auth *authsvc.AuthService,
	disasters *disastersvc.DisasterService,
	nav *router.Navigator,
	table *router.Table,
	gatherer prometheus.Gatherer,
	m *metrics.Metrics,
) (*HTTPTransport, error) {
	editRoute, ok := findRoute(table, routeDisasterEdit)
	if !ok {
		return nil, fmt.Errorf("%w: %s", router.ErrUnknownRoute, routeDisasterEdit)
	}

	newRoute, ok := findRoute(table, "disaster-new")
	if !ok {
		return nil, fmt.Errorf("%w: %s", router.ErrUnknownRoute, "disaster-new")
	}

	//nolint:exhaustruct
	ht := &HTTPTransport{
		cfg:       cfg,
		auth:      auth,
		disasters: disasters,
		nav:       nav,
		table:     table,
		metrics:   m,
		log:       logging.GetLogger("svc.shellsvc.http_transport"),
		verified:  make(map[string]domain.Result),
	}

	ht.router = ht.routes(gatherer, newRoute, editRoute)

	return ht, nil
}

func (ht *HTTPTransport) routes(gatherer prometheus.Gatherer, newRoute, editRoute router.Route) *mux.Router {
	r := mux.NewRouter()

	authsvc.NewHTTPTransport(ht.auth).Mount(r)

	if gatherer != nil {
		r.Handle("/metrics", metrics.Handler(gatherer)).Methods(http.MethodGet)
	}

	r.HandleFunc("/navigation", ht.HandleNavigation).Methods(http.MethodGet)
	r.HandleFunc("/navigation/back", ht.HandleBack).Methods(http.MethodPost)

	guard := func(h http.HandlerFunc, route router.Route) http.Handler {
		return http_.GuardingMiddleware(h, route, ht.auth.Session, ht.log, ht.metrics)
	}

	// Deleting needs the same roles as editing.
	r.Handle("/disasters/new", guard(ht.HandleCreate, newRoute)).Methods(http.MethodPost)
	r.Handle("/disasters/{id}/edit", guard(ht.HandleUpdate, editRoute)).Methods(http.MethodPost)
	r.Handle("/disasters/{id}/delete", guard(ht.HandleDelete, editRoute)).Methods(http.MethodPost)

	for _, route := range ht.table.Routes() {
		r.HandleFunc(route.Pattern, ht.HandlePage).Methods(http.MethodGet)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http_.WriteError(w, http.StatusNotFound, "Page not found")
	})

	return r
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.router.ServeHTTP(w, r)
}

// HandlePage navigates to the requested path. A guard redirect answers 303
// to where the navigator landed, a pending session 202, and an admitted
// navigation the view model of the page.
func (ht *HTTPTransport) HandlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := ht.log.With(slog.Group("http", "method", r.Method, "uri", r.RequestURI))

	loc, err := ht.nav.Navigate(ctx, r.URL.Path)
	if err != nil {
		if errors.Is(err, router.ErrUnknownRoute) {
			http_.WriteError(w, http.StatusNotFound, "Page not found")

			return
		}

		log.ErrorContext(ctx, "navigation failed", "error", err)
		http_.WriteError(w, http.StatusInternalServerError, "Navigation failed")

		return
	}

	switch {
	case loc.Decision.State == router.StatePending:
		w.Header().Set("Retry-After", "1")
		http_.WriteJSON(w, http.StatusAccepted, PendingView{
			State:   loc.Decision.State,
			Path:    loc.Path,
			Message: "Loading...",
		})
	case loc.From != "":
		log.DebugContext(ctx, "page redirected", "to", loc.Path, "state", loc.Decision.State.String())
		http.Redirect(w, r, loc.Path, http.StatusSeeOther)
	default:
		ht.render(w, r, loc)
	}
}

func (ht *HTTPTransport) render(w http.ResponseWriter, r *http.Request, loc router.Location) {
	ctx := r.Context()
	session := ht.auth.Session.Snapshot()

	data, res := ht.page(ctx, loc, r.URL.Query(), session)

	// A 401 expires the session. Guarded pages are left by the navigator
	// itself; public pages are left for the login page.
	if !res.Success && errors.Is(res.Err, domain.ErrUnauthorized) {
		ht.leaveForLogin(w, r, loc)

		return
	}

	view := PageView{
		Route:    loc.Route,
		Path:     loc.Path,
		From:     loc.From,
		Session:  ht.auth.Session.Snapshot(),
		Decision: loc.Decision,
		Data:     data,
	}

	if !res.Success {
		view.Error = res.Message
	}

	http_.WriteJSON(w, http_.StatusForResult(res), view)
}

func (ht *HTTPTransport) leaveForLogin(w http.ResponseWriter, r *http.Request, loc router.Location) {
	ctx := r.Context()

	target := router.LoginPath
	if cur, ok := ht.nav.Current(); ok && cur.Path != loc.Path {
		target = cur.Path
	} else if next, err := ht.nav.Navigate(ctx, router.LoginPath); err == nil {
		target = next.Path
	} else {
		ht.log.WarnContext(ctx, "navigation to login failed", "error", err)
	}

	ht.log.InfoContext(ctx, "session rejected by the api", "path", loc.Path, "to", target)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// NavigationView is the answer of the navigation endpoints.
type NavigationView struct {
	Current *router.Location `json:"current,omitempty"`
	History []string         `json:"history"`
}

// HandleNavigation answers with the current location and the history.
func (ht *HTTPTransport) HandleNavigation(w http.ResponseWriter, _ *http.Request) {
	http_.WriteJSON(w, http.StatusOK, ht.navigation())
}

// HandleBack goes back one history entry.
func (ht *HTTPTransport) HandleBack(w http.ResponseWriter, r *http.Request) {
	if _, ok := ht.nav.Back(r.Context()); !ok {
		http_.WriteError(w, http.StatusConflict, "Nothing to go back to")

		return
	}

	http_.WriteJSON(w, http.StatusOK, ht.navigation())
}

func (ht *HTTPTransport) navigation() NavigationView {
	view := NavigationView{History: ht.nav.History()} //nolint:exhaustruct

	if cur, ok := ht.nav.Current(); ok {
		view.Current = &cur
	}

	return view
}

func findRoute(table *router.Table, name string) (router.Route, bool) {
	for _, route := range table.Routes() {
		if route.Name == name {
			return route, true
		}
	}

	return router.Route{}, false //nolint:exhaustruct
}
