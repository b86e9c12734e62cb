package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/mkrupp/disastermap/internal/domain"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want domain.Role
	}{
		{"admin", domain.RoleAdmin},
		{" Reporter ", domain.RoleReporter},
		{"viewer", domain.RoleViewer},
		{"", domain.RoleViewer},
		{"superuser", domain.RoleViewer},
	}

	for _, tt := range tests {
		if got := domain.ParseRole(tt.in); got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUserProfile_Unmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		id       domain.ID
		role     domain.Role
		admin    bool
		reporter bool
	}{
		{name: "numeric id", body: `{"id": 42, "role": "admin"}`, id: "42", role: domain.RoleAdmin, admin: true},
		{name: "string id", body: `{"id": "u-7", "role": "reporter"}`, id: "u-7", role: domain.RoleReporter, reporter: true},
		{name: "missing role", body: `{"id": 1}`, id: "1", role: domain.RoleViewer},
		{name: "null role", body: `{"id": 1, "role": null}`, id: "1", role: domain.RoleViewer},
		{name: "unknown role", body: `{"id": 1, "role": "owner"}`, id: "1", role: domain.RoleViewer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var user domain.UserProfile
			if err := json.Unmarshal([]byte(tt.body), &user); err != nil {
				t.Fatal(err)
			}

			if user.ID != tt.id || user.Role != tt.role {
				t.Errorf("got id %q role %q, want %q %q", user.ID, user.Role, tt.id, tt.role)
			}

			if user.IsAdmin() != tt.admin || user.IsReporter() != tt.reporter {
				t.Errorf("IsAdmin/IsReporter = %v/%v", user.IsAdmin(), user.IsReporter())
			}
		})
	}
}

func TestUserProfile_NilSafe(t *testing.T) {
	t.Parallel()

	var user *domain.UserProfile

	if user.IsAdmin() || user.IsReporter() {
		t.Error("nil profile carries a role")
	}
}

func TestRoleSet_Contains(t *testing.T) {
	t.Parallel()

	editors := domain.RoleSet{domain.RoleAdmin, domain.RoleReporter}

	if !editors.Contains(domain.RoleReporter) {
		t.Error("editors should contain reporter")
	}

	if editors.Contains(domain.RoleViewer) {
		t.Error("editors should not contain viewer")
	}

	if (domain.RoleSet{}).Contains(domain.RoleAdmin) {
		t.Error("empty set should contain nothing")
	}
}

func TestNewSession(t *testing.T) {
	t.Parallel()

	user := &domain.UserProfile{ID: "1", Role: domain.RoleAdmin}
	session := domain.NewSession(user, false)

	if !session.IsAuthenticated || session.Role() != domain.RoleAdmin {
		t.Errorf("session = %+v", session)
	}

	user.Role = domain.RoleViewer

	if session.User.Role != domain.RoleAdmin {
		t.Error("session aliases the profile it was built from")
	}

	anon := domain.NewSession(nil, true)
	if anon.IsAuthenticated || !anon.IsLoading || anon.Role() != domain.RoleViewer {
		t.Errorf("anonymous session = %+v", anon)
	}
}
