package router

import "github.com/mkrupp/disastermap/internal/domain"

// State is the outcome of a guard evaluation.
type State int

const (
	// StatePending means the session is still being restored; render a placeholder.
	StatePending State = iota
	// StateDenied means nobody is logged in; go to the login page.
	StateDenied
	// StateWrongRole means the user is logged in but lacks the required role; go home.
	StateWrongRole
	// StateAdmitted means the route may be rendered.
	StateAdmitted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateDenied:
		return "denied"
	case StateWrongRole:
		return "wrong_role"
	case StateAdmitted:
		return "admitted"
	default:
		return "unknown"
	}
}

// Decision tells the caller what to do with a navigation. Redirect is empty
// unless the navigation must go elsewhere; Replace asks for the current
// history entry to be replaced instead of pushing a new one.
type Decision struct {
	State    State  `json:"state"`
	Redirect string `json:"redirect,omitempty"`
	Replace  bool   `json:"replace,omitempty"`
}

// Decide is the guard for a route requiring a session and, if required is
// non-empty, one of its roles.
func Decide(isLoading, isAuthenticated bool, role domain.Role, required domain.RoleSet) Decision {
	switch {
	case isLoading:
		return Decision{State: StatePending}
	case !isAuthenticated:
		return Decision{State: StateDenied, Redirect: LoginPath, Replace: true}
	case len(required) > 0 && !required.Contains(role):
		return Decision{State: StateWrongRole, Redirect: HomePath, Replace: true}
	default:
		return Decision{State: StateAdmitted}
	}
}

// Evaluate applies the guard of route to session. Public routes are always
// admitted, even while the session is loading.
func Evaluate(session domain.Session, route Route) Decision {
	if route.Public {
		return Decision{State: StateAdmitted}
	}

	return Decide(session.IsLoading, session.IsAuthenticated, session.Role(), route.Roles)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
