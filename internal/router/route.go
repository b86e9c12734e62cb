// Package router decides whether a navigation to a client route is admitted,
// and keeps a navigation history that follows the session.
package router

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mkrupp/disastermap/internal/domain"
)

// ErrUnknownRoute is returned when a path matches no route of the table.
var ErrUnknownRoute = errors.New("unknown route")

const (
	// HomePath is where authenticated users with the wrong role are sent.
	HomePath = "/"
	// LoginPath is where anonymous users are sent.
	LoginPath = "/login"
)

// Route is one client route. Public routes are reachable by everyone;
// guarded routes require a session, and a role from Roles when it is non-empty.
type Route struct {
	Name    string
	Pattern string
	Public  bool
	Roles   domain.RoleSet

	segments []string
}

// Params are the values captured by {name} segments.
type Params map[string]string

// Table is an immutable set of routes.
type Table struct {
	routes []Route
}

// NewTable builds a table. Patterns must start with a slash and be unique.
func NewTable(routes ...Route) (*Table, error) {
	seen := make(map[string]struct{}, len(routes))
	table := &Table{routes: make([]Route, 0, len(routes))}

	for _, route := range routes {
		if !strings.HasPrefix(route.Pattern, "/") {
			return nil, fmt.Errorf("route %q: pattern must start with /", route.Name)
		}

		if _, ok := seen[route.Pattern]; ok {
			return nil, fmt.Errorf("route %q: duplicate pattern %s", route.Name, route.Pattern)
		}

		seen[route.Pattern] = struct{}{}

		route.Roles = append(domain.RoleSet(nil), route.Roles...)
		route.segments = split(route.Pattern)
		table.routes = append(table.routes, route)
	}

	return table, nil
}

// MustTable is NewTable for static tables; it panics on error.
func MustTable(routes ...Route) *Table {
	table, err := NewTable(routes...)
	if err != nil {
		panic(err)
	}

	return table
}

// Routes returns the routes in declaration order.
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// Match finds the route for path. Literal segments take precedence over
// parameters, so /disasters/new never matches /disasters/{id}.
func (t *Table) Match(path string) (Route, Params, error) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	segments := split(path)

	var (
		best       Route
		bestParams Params
		bestScore  = -1
	)

	for _, route := range t.routes {
		params, score, ok := match(route.segments, segments)
		if ok && score > bestScore {
			best, bestParams, bestScore = route, params, score
		}
	}

	if bestScore < 0 {
		return Route{}, nil, fmt.Errorf("%w: %s", ErrUnknownRoute, path)
	}

	return best, bestParams, nil
}

// Path expands the pattern of the route with params.
func (r Route) Path(params Params) string {
	if len(r.segments) == 0 {
		return "/"
	}

	parts := make([]string, len(r.segments))

	for i, seg := range r.segments {
		if name, ok := paramName(seg); ok {
			parts[i] = params[name]
		} else {
			parts[i] = seg
		}
	}

	return "/" + strings.Join(parts, "/")
}

func match(pattern, segments []string) (Params, int, bool) {
	if len(pattern) != len(segments) {
		return nil, 0, false
	}

	var (
		params Params
		score  int
	)

	for i, seg := range pattern {
		name, isParam := paramName(seg)

		switch {
		case isParam && segments[i] != "":
			if params == nil {
				params = make(Params)
			}

			params[name] = segments[i]
		case seg == segments[i]:
			score++
		default:
			return nil, 0, false
		}
	}

	return params, score, true
}

func paramName(segment string) (string, bool) {
	if len(segment) > 2 && segment[0] == '{' && segment[len(segment)-1] == '}' {
		return segment[1 : len(segment)-1], true
	}

	return "", false
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}

	return strings.Split(path, "/")
}

// DefaultRoutes is the route table of the disaster map.
//
//nolint:funlen
func DefaultRoutes() *Table {
	editors := domain.RoleSet{domain.RoleAdmin, domain.RoleReporter}

	return MustTable(
		Route{Name: "home", Pattern: "/", Public: true},
		Route{Name: "map", Pattern: "/map", Public: true},
		Route{Name: "login", Pattern: "/login", Public: true},
		Route{Name: "register", Pattern: "/register", Public: true},
		Route{Name: "verify-email", Pattern: "/verify-email/{code}", Public: true},
		Route{Name: "reset-password", Pattern: "/reset-password", Public: true},
		Route{Name: "disasters", Pattern: "/disasters", Public: true},
		Route{Name: "disaster", Pattern: "/disasters/{id}", Public: true},
		Route{Name: "dashboard", Pattern: "/dashboard"},
		Route{Name: "reports", Pattern: "/reports"},
		Route{Name: "account", Pattern: "/account"},
		Route{Name: "disaster-new", Pattern: "/disasters/new", Roles: editors},
		Route{Name: "disaster-edit", Pattern: "/disasters/{id}/edit", Roles: editors},
		Route{Name: "devices", Pattern: "/devices", Roles: domain.RoleSet{domain.RoleAdmin}},
	)
}
