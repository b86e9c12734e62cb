package domain_test

import (
	"errors"
	"testing"

	"github.com/mkrupp/disastermap/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestDisasterInput_Validate(t *testing.T) {
	t.Parallel()

	valid := func() domain.DisasterInput {
		return domain.DisasterInput{
			Title:     "River flood",
			Type:      "flood",
			Status:    domain.StatusOngoing,
			Severity:  domain.SeverityHigh,
			Latitude:  ptr(45.5),
			Longitude: ptr(-73.6),
		}
	}

	tests := []struct {
		name   string
		modify func(*domain.DisasterInput)
		field  string
	}{
		{name: "valid", modify: func(*domain.DisasterInput) {}},
		{name: "zero numbers", modify: func(in *domain.DisasterInput) {
			in.Latitude, in.Longitude, in.Casualties, in.DamageEstimate = ptr(0.0), ptr(0.0), ptr(0), ptr(0.0)
		}},
		{name: "blank title", modify: func(in *domain.DisasterInput) { in.Title = "  " }, field: "title"},
		{name: "missing type", modify: func(in *domain.DisasterInput) { in.Type = "" }, field: "type"},
		{name: "unknown status", modify: func(in *domain.DisasterInput) { in.Status = "closed" }, field: "status"},
		{name: "unknown severity", modify: func(in *domain.DisasterInput) { in.Severity = "extreme" }, field: "severity"},
		{name: "latitude", modify: func(in *domain.DisasterInput) { in.Latitude = ptr(90.5) }, field: "latitude"},
		{name: "longitude", modify: func(in *domain.DisasterInput) { in.Longitude = ptr(-181.0) }, field: "longitude"},
		{name: "casualties", modify: func(in *domain.DisasterInput) { in.Casualties = ptr(-1) }, field: "casualties"},
		{name: "damage", modify: func(in *domain.DisasterInput) { in.DamageEstimate = ptr(-0.5) }, field: "damage_estimate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := valid()
			tt.modify(&in)

			err := in.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}

				return
			}

			var inErr *domain.InputError
			if !errors.As(err, &inErr) || inErr.Field != tt.field {
				t.Fatalf("Validate() = %v, want an input error on %s", err, tt.field)
			}

			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Error("error does not match ErrInvalidInput")
			}
		})
	}
}

func TestSeverity_Rank(t *testing.T) {
	t.Parallel()

	if !(domain.SeverityLow.Rank() < domain.SeverityMedium.Rank() &&
		domain.SeverityMedium.Rank() < domain.SeverityHigh.Rank() &&
		domain.SeverityHigh.Rank() < domain.SeverityCritical.Rank()) {
		t.Error("severities are not ordered low < medium < high < critical")
	}

	if domain.Severity("HIGH").Rank() != domain.SeverityHigh.Rank() {
		t.Error("rank should ignore case")
	}

	if domain.Severity("unknown").Rank() != 0 {
		t.Error("unknown severity should rank 0")
	}
}

func TestInputFromRecord(t *testing.T) {
	t.Parallel()

	rec := domain.DisasterRecord{ID: "3", Title: "Quake", Type: "earthquake", Latitude: 0, Casualties: 0}
	in := domain.InputFromRecord(rec)

	if in.Title != "Quake" || in.Latitude == nil || *in.Latitude != 0 || in.Casualties == nil {
		t.Errorf("input = %+v", in)
	}
}
