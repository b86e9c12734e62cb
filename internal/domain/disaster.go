package domain

import (
	"strings"
)

// Status is the lifecycle state of a disaster report.
type Status string

const (
	StatusReported Status = "reported"
	StatusVerified Status = "verified"
	StatusOngoing  Status = "ongoing"
	StatusResolved Status = "resolved"
)

// Statuses lists every known status in lifecycle order.
//
//nolint:gochecknoglobals
var Statuses = []Status{StatusReported, StatusVerified, StatusOngoing, StatusResolved}

// Severity grades the impact of a disaster.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists every known severity from least to most severe.
//
//nolint:gochecknoglobals
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Rank orders severities; unknown values rank below SeverityLow.
func (s Severity) Rank() int {
	for i, sev := range Severities {
		if strings.EqualFold(string(s), string(sev)) {
			return i + 1
		}
	}

	return 0
}

// DisasterRecord is a disaster report as served by the API. This layer never
// stores records; it only displays and edits them through the API.
type DisasterRecord struct {
	ID                 ID       `json:"id"                            yaml:"id"`
	Title              string   `json:"title"                         yaml:"title"`
	Type               string   `json:"type"                          yaml:"type"`
	Status             Status   `json:"status"                        yaml:"status"`
	Severity           Severity `json:"severity"                      yaml:"severity"`
	LocationName       string   `json:"location_name"                 yaml:"locationName"`
	Latitude           float64  `json:"latitude"                      yaml:"latitude"`
	Longitude          float64  `json:"longitude"                     yaml:"longitude"`
	Description        string   `json:"description"                   yaml:"description,omitempty"`
	Casualties         int      `json:"casualties"                    yaml:"casualties"`
	DamageEstimate     float64  `json:"damage_estimate"               yaml:"damageEstimate"`
	ImageURL           string   `json:"image_url,omitempty"           yaml:"imageUrl,omitempty"`
	ResourcesNeeded    string   `json:"resources_needed,omitempty"    yaml:"resourcesNeeded,omitempty"`
	NegativeEffects    string   `json:"negative_effects,omitempty"    yaml:"negativeEffects,omitempty"`
	PotentialSolutions string   `json:"potential_solutions,omitempty" yaml:"potentialSolutions,omitempty"`
	ReporterID         ID       `json:"reporter_id,omitempty"         yaml:"reporterId,omitempty"`
	CreatedAt          string   `json:"created_at,omitempty"          yaml:"createdAt,omitempty"`
	UpdatedAt          string   `json:"updated_at,omitempty"          yaml:"updatedAt,omitempty"`
}

// DisasterInput is the editable part of a disaster report, sent on create
// and update. Optional numbers are pointers so that zero stays expressible.
type DisasterInput struct {
	Title              string   `json:"title"`
	Type               string   `json:"type"`
	Status             Status   `json:"status,omitempty"`
	Severity           Severity `json:"severity,omitempty"`
	LocationName       string   `json:"location_name,omitempty"`
	Latitude           *float64 `json:"latitude,omitempty"`
	Longitude          *float64 `json:"longitude,omitempty"`
	Description        string   `json:"description,omitempty"`
	Casualties         *int     `json:"casualties,omitempty"`
	DamageEstimate     *float64 `json:"damage_estimate,omitempty"`
	ImageURL           string   `json:"image_url,omitempty"`
	ResourcesNeeded    string   `json:"resources_needed,omitempty"`
	NegativeEffects    string   `json:"negative_effects,omitempty"`
	PotentialSolutions string   `json:"potential_solutions,omitempty"`
}

// InputFromRecord copies the editable fields of rec, as the edit form does
// when it is pre-filled.
func InputFromRecord(rec DisasterRecord) DisasterInput {
	lat, lon := rec.Latitude, rec.Longitude
	casualties, damage := rec.Casualties, rec.DamageEstimate

	return DisasterInput{
		Title:              rec.Title,
		Type:               rec.Type,
		Status:             rec.Status,
		Severity:           rec.Severity,
		LocationName:       rec.LocationName,
		Latitude:           &lat,
		Longitude:          &lon,
		Description:        rec.Description,
		Casualties:         &casualties,
		DamageEstimate:     &damage,
		ImageURL:           rec.ImageURL,
		ResourcesNeeded:    rec.ResourcesNeeded,
		NegativeEffects:    rec.NegativeEffects,
		PotentialSolutions: rec.PotentialSolutions,
	}
}

// Validate checks the input before it is sent. The returned error is an
// *InputError naming the first offending field.
//
//nolint:cyclop
func (in DisasterInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return NewInputError("title", "is required")
	case strings.TrimSpace(in.Type) == "":
		return NewInputError("type", "is required")
	case in.Status != "" && !knownStatus(in.Status):
		return NewInputError("status", "must be one of reported, verified, ongoing, resolved")
	case in.Severity != "" && in.Severity.Rank() == 0:
		return NewInputError("severity", "must be one of low, medium, high, critical")
	case in.Latitude != nil && (*in.Latitude < -90 || *in.Latitude > 90):
		return NewInputError("latitude", "must be between -90 and 90")
	case in.Longitude != nil && (*in.Longitude < -180 || *in.Longitude > 180):
		return NewInputError("longitude", "must be between -180 and 180")
	case in.Casualties != nil && *in.Casualties < 0:
		return NewInputError("casualties", "must not be negative")
	case in.DamageEstimate != nil && *in.DamageEstimate < 0:
		return NewInputError("damage_estimate", "must not be negative")
	}

	return nil
}

func knownStatus(s Status) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}

	return false
}
