package shellsvc

import (
	"github.com/mkrupp/disastermap/internal/domain"
	"github.com/mkrupp/disastermap/internal/router"
	"github.com/mkrupp/disastermap/internal/svc/disastersvc"
)

// PageView is the answer to every admitted page navigation.
type PageView struct {
	Route    string          `json:"route"`
	Path     string          `json:"path"`
	From     string          `json:"from,omitempty"`
	Session  domain.Session  `json:"session"`
	Decision router.Decision `json:"decision"`
	Data     any             `json:"data,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// PendingView is the placeholder answered while the session is restored.
type PendingView struct {
	State   router.State `json:"state"`
	Path    string       `json:"path"`
	Message string       `json:"message"`
}

// Link points at another page.
type Link struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// HomeView lists the pages reachable with the current session.
type HomeView struct {
	Title string `json:"title"`
	Links []Link `json:"links"`
}

// Marker is one disaster on the map.
type Marker struct {
	ID        domain.ID       `json:"id"`
	Title     string          `json:"title"`
	Type      string          `json:"type"`
	Severity  domain.Severity `json:"severity"`
	Status    domain.Status   `json:"status"`
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
}

// MapView is the public disaster map.
type MapView struct {
	Markers []Marker `json:"markers"`
}

// ListView is the disaster listing.
type ListView struct {
	Query     disastersvc.Query       `json:"query"`
	Disasters []domain.DisasterRecord `json:"disasters"`
	Total     int                     `json:"total"`
	CanEdit   bool                    `json:"canEdit"`
}

// DetailView is one disaster.
type DetailView struct {
	Disaster domain.DisasterRecord `json:"disaster"`
	CanEdit  bool                  `json:"canEdit"`
	Back     Link                  `json:"back"`
}

// NotFoundView replaces a detail page whose disaster does not exist.
type NotFoundView struct {
	Message string `json:"message"`
	Back    Link   `json:"back"`
}

// DashboardView is the signed-in overview.
type DashboardView struct {
	Summary disastersvc.Summary     `json:"summary"`
	Recent  []domain.DisasterRecord `json:"recent"`
}

// ReportsView aggregates every disaster for the charts of the reports page.
type ReportsView struct {
	Summary disastersvc.Summary `json:"summary"`
}

// AccountView shows the logged in profile.
type AccountView struct {
	User       *domain.UserProfile `json:"user"`
	IsAdmin    bool                `json:"isAdmin"`
	IsReporter bool                `json:"isReporter"`
}

// FormView describes a form a client has to fill in and where to send it.
type FormView struct {
	Action string               `json:"action"`
	Fields []string             `json:"fields"`
	Values *domain.DisasterInput `json:"values,omitempty"`
	// Options lists the allowed values of enumerated fields.
	Options map[string][]string `json:"options,omitempty"`
	Rules   []string            `json:"rules,omitempty"`
}

// VerifyView is the outcome of following an email verification link.
type VerifyView struct {
	domain.Result

	Next Link `json:"next"`
}

// DevicesView lists the registered field devices.
type DevicesView struct {
	Devices []string `json:"devices"`
}

//nolint:gochecknoglobals
var (
	backToList = Link{Label: "Back to disasters", Path: "/disasters"}

	disasterFields = []string{
		"title", "type", "status", "severity", "location_name", "latitude", "longitude",
		"description", "casualties", "damage_estimate", "resources_needed",
		"negative_effects", "potential_solutions", "image",
	}

	passwordRules = []string{
		"At least 8 characters",
		"An uppercase letter",
		"A lowercase letter",
		"A number",
		`A special character (!@#$%^&*(),.?":{}|<>)`,
	}
)

func disasterOptions() map[string][]string {
	statuses := make([]string, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		statuses = append(statuses, string(s))
	}

	severities := make([]string, 0, len(domain.Severities))
	for _, s := range domain.Severities {
		severities = append(severities, string(s))
	}

	return map[string][]string{"status": statuses, "severity": severities}
}

func markers(records []domain.DisasterRecord) []Marker {
	out := make([]Marker, 0, len(records))
	for _, rec := range records {
		out = append(out, Marker{
			ID:        rec.ID,
			Title:     rec.Title,
			Type:      rec.Type,
			Severity:  rec.Severity,
			Status:    rec.Status,
			Latitude:  rec.Latitude,
			Longitude: rec.Longitude,
		})
	}

	return out
}

// homeLinks lists the pages the session may open, in table order.
func homeLinks(table *router.Table, session domain.Session) []Link {
	labels := map[string]string{
		"map":          "Live map",
		"disasters":    "Disasters",
		"login":        "Log in",
		"register":     "Register",
		"dashboard":    "Dashboard",
		"reports":      "Reports",
		"account":      "Account",
		"disaster-new": "Report a disaster",
		"devices":      "Devices",
	}

	var links []Link

	for _, route := range table.Routes() {
		label, ok := labels[route.Name]
		if !ok {
			continue
		}

		if session.IsAuthenticated && (route.Name == "login" || route.Name == "register") {
			continue
		}

		if router.Evaluate(session, route).State != router.StateAdmitted {
			continue
		}

		links = append(links, Link{Label: label, Path: route.Pattern})
	}

	return links
}
