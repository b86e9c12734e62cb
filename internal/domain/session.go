package domain

// Session is a point-in-time view of who is logged in.
//
// IsAuthenticated is true if and only if User is non-nil; snapshots are only
// produced by the session store, which maintains that invariant.
type Session struct {
	User            *UserProfile `json:"user"            yaml:"user"`
	IsAuthenticated bool         `json:"isAuthenticated" yaml:"isAuthenticated"`
	IsLoading       bool         `json:"isLoading"       yaml:"isLoading"`
}

// NewSession builds a snapshot for user, deriving IsAuthenticated.
// The profile is copied so the snapshot does not alias store state.
func NewSession(user *UserProfile, loading bool) Session {
	if user != nil {
		u := *user
		user = &u
	}

	return Session{
		User:            user,
		IsAuthenticated: user != nil,
		IsLoading:       loading,
	}
}

// Role returns the role of the logged in user, or RoleViewer when nobody is.
func (s Session) Role() Role {
	if s.User == nil {
		return RoleViewer
	}

	return s.User.Role
}
