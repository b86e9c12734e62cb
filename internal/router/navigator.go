package router

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mkrupp/disastermap/internal/domain"
	"github.com/mkrupp/disastermap/internal/infra/logging"
	"github.com/mkrupp/disastermap/internal/infra/metrics"
)

// ErrRedirectLoop is returned when guard redirects do not settle.
var ErrRedirectLoop = errors.New("redirect loop")

const maxRedirects = 4

// SessionSource is the part of the session store the navigator follows.
type SessionSource interface {
	Snapshot() domain.Session
	Subscribe(fn func(domain.Session)) (unsubscribe func())
}

// Location is a resolved history entry.
type Location struct {
	Path     string   `json:"path"`
	Route    string   `json:"route"`
	Params   Params   `json:"params,omitempty"`
	Decision Decision `json:"decision"`
	// From is the path originally asked for when the guard redirected.
	From string `json:"from,omitempty"`
}

// Navigator keeps the navigation history of one user and re-applies the
// guard to the current location whenever the session changes, so that a
// logout on a guarded page immediately leaves it.
type Navigator struct {
	table    *Table
	sessions SessionSource
	metrics  *metrics.Metrics
	log      logging.Logger

	mu          sync.Mutex
	history     []Location
	listeners   map[int]func(Location)
	nextID      int
	unsubscribe func()
}

// NewNavigator creates a Navigator over table following sessions.
func NewNavigator(table *Table, sessions SessionSource, m *metrics.Metrics) *Navigator {
	//nolint:exhaustruct
	nav := &Navigator{
		table:     table,
		sessions:  sessions,
		metrics:   m,
		log:       logging.GetLogger("router.navigator"),
		listeners: make(map[int]func(Location)),
	}

	nav.unsubscribe = sessions.Subscribe(nav.sessionChanged)

	return nav
}

// Close stops following the session.
func (n *Navigator) Close() {
	n.mu.Lock()
	unsubscribe := n.unsubscribe
	n.unsubscribe = nil
	n.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Navigate resolves path against the current session and pushes the result.
// A guard redirect lands on the redirect target instead, so the guarded
// path never enters the history. Navigating to the current path does not
// push a duplicate entry.
func (n *Navigator) Navigate(ctx context.Context, path string) (loc Location, err error) {
	defer func() {
		if err != nil {
			n.log.WarnContext(ctx, "navigation failed", "path", path, "error", err)
		}
	}()

	loc, err = n.resolve(path, n.sessions.Snapshot())
	if err != nil {
		return Location{}, err
	}

	n.mu.Lock()
	if top := len(n.history) - 1; top >= 0 && n.history[top].Path == loc.Path {
		n.history[top] = loc
	} else {
		n.history = append(n.history, loc)
	}
	n.mu.Unlock()

	n.log.DebugContext(ctx, "navigated", "path", loc.Path, "state", loc.Decision.State.String(), "from", loc.From)
	n.notify(loc)

	return loc, nil
}

// Current returns the current location, if any navigation happened.
func (n *Navigator) Current() (Location, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.history) == 0 {
		return Location{}, false
	}

	return n.history[len(n.history)-1], true
}

// History returns the paths of the history, oldest first.
func (n *Navigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	paths := make([]string, len(n.history))
	for i, loc := range n.history {
		paths[i] = loc.Path
	}

	return paths
}

// Back pops the current entry and re-applies the guard to the one below.
// It reports false when there is nothing to go back to.
func (n *Navigator) Back(ctx context.Context) (Location, bool) {
	n.mu.Lock()
	if len(n.history) < 2 { //nolint:mnd
		n.mu.Unlock()

		return Location{}, false
	}

	n.history = n.history[:len(n.history)-1]
	n.mu.Unlock()

	loc, changed := n.reevaluate(n.sessions.Snapshot())
	if !changed {
		n.notify(loc)
	}

	n.log.DebugContext(ctx, "navigated back", "path", loc.Path)

	return loc, true
}

// OnChange registers fn to be called with every new current location.
// Listeners run outside the navigator lock and must not block.
func (n *Navigator) OnChange(fn func(Location)) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.listeners[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()

		delete(n.listeners, id)
	}
}

func (n *Navigator) sessionChanged(session domain.Session) {
	n.reevaluate(session)
}

// reevaluate applies the guard to the current entry, replacing it when the
// guard redirects. It reports whether listeners were notified.
func (n *Navigator) reevaluate(session domain.Session) (Location, bool) {
	current, ok := n.Current()
	if !ok {
		return Location{}, false
	}

	path := current.Path

	loc, err := n.resolve(path, session)
	if err != nil {
		n.log.Warn("re-evaluation failed", "path", path, "error", err)

		return current, false
	}

	if loc.From == "" {
		loc.From = current.From
	}

	n.mu.Lock()
	if top := len(n.history) - 1; top >= 0 && n.history[top].Path == current.Path {
		n.history[top] = loc
	}
	n.mu.Unlock()

	if loc.Path == current.Path && loc.Decision == current.Decision {
		return loc, false
	}

	n.notify(loc)

	return loc, true
}

func (n *Navigator) resolve(path string, session domain.Session) (Location, error) {
	from := ""

	for range maxRedirects + 1 {
		route, params, err := n.table.Match(path)
		if err != nil {
			return Location{}, fmt.Errorf("match: %w", err)
		}

		decision := Evaluate(session, route)
		n.metrics.GuardDecision(route.Name, decision.State.String())

		if decision.Redirect == "" {
			return Location{
				Path:     route.Path(params),
				Route:    route.Name,
				Params:   params,
				Decision: decision,
				From:     from,
			}, nil
		}

		if from == "" {
			from = path
		}

		path = decision.Redirect
	}

	return Location{}, fmt.Errorf("%w: %s", ErrRedirectLoop, from)
}

func (n *Navigator) notify(loc Location) {
	n.mu.Lock()
	listeners := make([]func(Location), 0, len(n.listeners))

	for _, fn := range n.listeners {
		listeners = append(listeners, fn)
	}
	n.mu.Unlock()

	for _, fn := range listeners {
		fn(loc)
	}
}
