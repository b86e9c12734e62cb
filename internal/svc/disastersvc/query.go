package disastersvc

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mkrupp/disastermap/internal/domain"
)

// SortKey names a column the disaster list can be ordered by.
type SortKey string

const (
	SortNone       SortKey = ""
	SortTitle      SortKey = "title"
	SortSeverity   SortKey = "severity"
	SortCreated    SortKey = "created"
	SortCasualties SortKey = "casualties"
)

// ParseSortKey validates a sort key given by a user.
func ParseSortKey(s string) (SortKey, error) {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(s))); key {
	case SortNone, SortTitle, SortSeverity, SortCreated, SortCasualties:
		return key, nil
	default:
		return SortNone, domain.NewInputError("sort", fmt.Sprintf("must be one of title, severity, created, casualties, got %q", s))
	}
}

// Query filters and orders a listed slice of disasters on the client.
// Zero fields do not filter.
type Query struct {
	// Search matches title, type, location name and description, ignoring case.
	Search     string          `json:"search,omitempty"`
	Type       string          `json:"type,omitempty"`
	Status     domain.Status   `json:"status,omitempty"`
	Severity   domain.Severity `json:"severity,omitempty"`
	SortBy     SortKey         `json:"sortBy,omitempty"`
	Descending bool            `json:"descending,omitempty"`
}

// Apply returns the matching records in the requested order. The input is
// not modified; ties keep the order of the API.
func (q Query) Apply(records []domain.DisasterRecord) []domain.DisasterRecord {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]domain.DisasterRecord, 0, len(records))

	for _, rec := range records {
		if q.matches(rec, search) {
			out = append(out, rec)
		}
	}

	less := q.less()
	if less == nil {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		if q.Descending {
			return less(out[j], out[i])
		}

		return less(out[i], out[j])
	})

	return out
}

func (q Query) matches(rec domain.DisasterRecord, search string) bool {
	switch {
	case q.Type != "" && !strings.EqualFold(rec.Type, q.Type):
		return false
	case q.Status != "" && !strings.EqualFold(string(rec.Status), string(q.Status)):
		return false
	case q.Severity != "" && !strings.EqualFold(string(rec.Severity), string(q.Severity)):
		return false
	case search == "":
		return true
	}

	for _, field := range []string{rec.Title, rec.Type, rec.LocationName, rec.Description} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}

	return false
}

func (q Query) less() func(a, b domain.DisasterRecord) bool {
	switch q.SortBy {
	case SortTitle:
		return func(a, b domain.DisasterRecord) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	case SortSeverity:
		return func(a, b domain.DisasterRecord) bool {
			return a.Severity.Rank() < b.Severity.Rank()
		}
	case SortCreated:
		return func(a, b domain.DisasterRecord) bool {
			ta, _ := ParseTimestamp(a.CreatedAt)
			tb, _ := ParseTimestamp(b.CreatedAt)

			return ta.Before(tb)
		}
	case SortCasualties:
		return func(a, b domain.DisasterRecord) bool {
			return a.Casualties < b.Casualties
		}
	case SortNone:
	}

	return nil
}

//nolint:gochecknoglobals
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	time.RFC1123,
	"2006-01-02",
}

// ParseTimestamp reads the timestamp formats the API is known to send.
// Unparseable values yield the zero time and false.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
