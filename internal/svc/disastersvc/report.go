package disastersvc

import (
	"sort"
	"strings"

	"github.com/mkrupp/disastermap/internal/domain"
)

// Count is one bar of a report chart.
type Count struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// Summary aggregates a list of disasters for the dashboard and the reports page.
type Summary struct {
	Total          int     `json:"total"          yaml:"total"`
	Active         int     `json:"active"         yaml:"active"`
	Casualties     int     `json:"casualties"     yaml:"casualties"`
	DamageEstimate float64 `json:"damageEstimate" yaml:"damageEstimate"`
	ByType         []Count `json:"byType"         yaml:"byType"`
	BySeverity     []Count `json:"bySeverity"     yaml:"bySeverity"`
	ByStatus       []Count `json:"byStatus"       yaml:"byStatus"`
	// ByMonth is keyed "YYYY-MM", oldest first; undated records are left out.
	ByMonth []Count `json:"byMonth" yaml:"byMonth"`
}

// Summarize builds the Summary of records.
func Summarize(records []domain.DisasterRecord) Summary {
	var (
		summary  = Summary{Total: len(records)}
		types    = map[string]int{}
		severity = map[domain.Severity]int{}
		status   = map[domain.Status]int{}
		months   = map[string]int{}
	)

	for _, rec := range records {
		if rec.Status != domain.StatusResolved {
			summary.Active++
		}

		summary.Casualties += rec.Casualties
		summary.DamageEstimate += rec.DamageEstimate

		typ := strings.ToLower(strings.TrimSpace(rec.Type))
		if typ == "" {
			typ = "unknown"
		}

		types[typ]++
		severity[domain.Severity(strings.ToLower(string(rec.Severity)))]++
		status[domain.Status(strings.ToLower(string(rec.Status)))]++

		if t, ok := ParseTimestamp(rec.CreatedAt); ok {
			months[t.Format("2006-01")]++
		}
	}

	summary.ByType = sortedCounts(types)
	summary.ByMonth = sortedCounts(months)

	for _, sev := range domain.Severities {
		summary.BySeverity = append(summary.BySeverity, Count{Label: string(sev), Count: severity[sev]})
	}

	for _, st := range domain.Statuses {
		summary.ByStatus = append(summary.ByStatus, Count{Label: string(st), Count: status[st]})
	}

	return summary
}

func sortedCounts(m map[string]int) []Count {
	counts := make([]Count, 0, len(m))
	for label, n := range m {
		counts = append(counts, Count{Label: label, Count: n})
	}

	sort.Slice(counts, func(i, j int) bool { return counts[i].Label < counts[j].Label })

	return counts
}
