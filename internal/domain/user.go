package domain

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrInvalidCredentials is returned when the email/password combination is rejected.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Role is the closed set of roles a user profile can carry.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleReporter Role = "reporter"
	// RoleViewer is assigned to every profile whose role is missing or unknown.
	RoleViewer Role = "viewer"
)

// ParseRole maps an arbitrary role string onto the closed Role set.
// Unknown and empty values become RoleViewer.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleReporter:
		return RoleReporter
	default:
		return RoleViewer
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string

	if string(data) != "null" {
		if err := json.Unmarshal(data, &s); err != nil {
			return err //nolint:wrapcheck
		}
	}

	*r = ParseRole(s)

	return nil
}

// RoleSet is a set of roles a route or operation requires. An empty set
// places no role requirement.
type RoleSet []Role

// Contains reports whether role is a member of the set.
func (rs RoleSet) Contains(role Role) bool {
	for _, r := range rs {
		if r == role {
			return true
		}
	}

	return false
}

// UserProfile is the identity of the logged in user as reported by the API.
type UserProfile struct {
	ID    ID     `json:"id"    yaml:"id"`
	Name  string `json:"name"  yaml:"name"`
	Email string `json:"email" yaml:"email"`
	Role  Role   `json:"role"  yaml:"role"`
}

// UnmarshalJSON implements json.Unmarshaler. A profile without a role key
// is a viewer.
func (u *UserProfile) UnmarshalJSON(data []byte) error {
	type profile UserProfile

	var p profile
	if err := json.Unmarshal(data, &p); err != nil {
		return err //nolint:wrapcheck
	}

	p.Role = ParseRole(string(p.Role))
	*u = UserProfile(p)

	return nil
}

// IsAdmin reports whether the profile carries the admin role.
func (u *UserProfile) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsReporter reports whether the profile carries the reporter role.
func (u *UserProfile) IsReporter() bool {
	return u != nil && u.Role == RoleReporter
}
