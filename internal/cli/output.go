package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/mkrupp/disastermap/internal/domain"
	"github.com/mkrupp/disastermap/internal/router"
	"github.com/mkrupp/disastermap/internal/svc/disastersvc"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

//nolint:gochecknoglobals
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	keyStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	severityColors = map[domain.Severity]lipgloss.Color{
		domain.SeverityLow:      lipgloss.Color("10"),
		domain.SeverityMedium:   lipgloss.Color("11"),
		domain.SeverityHigh:     lipgloss.Color("214"),
		domain.SeverityCritical: lipgloss.Color("9"),
	}
)

func checkFormat(format string) error {
	switch format {
	case FormatTable, FormatJSON, FormatYAML:
		return nil
	default:
		return domain.NewInputError("output", fmt.Sprintf("must be table, json or yaml, got %q", format))
	}
}

// render writes v in format; table renders the human readable form.
func render(w io.Writer, format string, v any, table func() string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2) //nolint:mnd

		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	default:
		if _, err := fmt.Fprintln(w, table()); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}

	return nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("241"))).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		})
}

// keyValues renders pairs as two aligned columns.
func keyValues(pairs ...[2]string) string {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p[0]))
	}

	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		lines = append(lines, keyStyle.Width(width+1).Render(p[0])+" "+p[1])
	}

	return strings.Join(lines, "\n")
}

func disasterTable(records []domain.DisasterRecord, total int) string {
	t := newTable("ID", "Title", "Type", "Status", "Severity", "Casualties", "Damage", "Reported")

	for _, rec := range records {
		t.Row(
			rec.ID.String(),
			rec.Title,
			rec.Type,
			string(rec.Status),
			severityLabel(rec.Severity),
			humanize.Comma(int64(rec.Casualties)),
			money(rec.DamageEstimate),
			ago(rec.CreatedAt),
		)
	}

	footer := fmt.Sprintf("%d of %d disasters", len(records), total)

	return t.Render() + "\n" + footer
}

func disasterDetail(rec domain.DisasterRecord) string {
	return keyValues(
		[2]string{"ID", rec.ID.String()},
		[2]string{"Title", rec.Title},
		[2]string{"Type", rec.Type},
		[2]string{"Status", string(rec.Status)},
		[2]string{"Severity", severityLabel(rec.Severity)},
		[2]string{"Location", location(rec)},
		[2]string{"Casualties", humanize.Comma(int64(rec.Casualties))},
		[2]string{"Damage", money(rec.DamageEstimate)},
		[2]string{"Description", rec.Description},
		[2]string{"Resources", rec.ResourcesNeeded},
		[2]string{"Effects", rec.NegativeEffects},
		[2]string{"Solutions", rec.PotentialSolutions},
		[2]string{"Image", rec.ImageURL},
		[2]string{"Reported", ago(rec.CreatedAt)},
		[2]string{"Updated", ago(rec.UpdatedAt)},
	)
}

func summaryTable(s disastersvc.Summary) string {
	var b strings.Builder

	b.WriteString(keyValues(
		[2]string{"Total", humanize.Comma(int64(s.Total))},
		[2]string{"Active", humanize.Comma(int64(s.Active))},
		[2]string{"Casualties", humanize.Comma(int64(s.Casualties))},
		[2]string{"Damage", money(s.DamageEstimate)},
	))

	for _, group := range []struct {
		title  string
		counts []disastersvc.Count
	}{
		{"By type", s.ByType},
		{"By severity", s.BySeverity},
		{"By status", s.ByStatus},
		{"By month", s.ByMonth},
	} {
		if len(group.counts) == 0 {
			continue
		}

		t := newTable(group.title, "Count")
		for _, c := range group.counts {
			t.Row(c.Label, strconv.Itoa(c.Count))
		}

		b.WriteString("\n" + t.Render())
	}

	return b.String()
}

func sessionTable(session domain.Session) string {
	if session.User == nil {
		return keyValues([2]string{"Status", "not logged in"})
	}

	return keyValues(
		[2]string{"Status", "logged in"},
		[2]string{"ID", session.User.ID.String()},
		[2]string{"Name", session.User.Name},
		[2]string{"Email", session.User.Email},
		[2]string{"Role", string(session.User.Role)},
	)
}

func locationTable(loc router.Location) string {
	pairs := [][2]string{
		{"Path", loc.Path},
		{"Route", loc.Route},
		{"State", loc.Decision.State.String()},
	}

	if loc.From != "" {
		pairs = append(pairs, [2]string{"Redirected from", loc.From})
	}

	return keyValues(pairs...)
}

func severityLabel(s domain.Severity) string {
	color, ok := severityColors[domain.Severity(strings.ToLower(string(s)))]
	if !ok {
		return string(s)
	}

	return lipgloss.NewStyle().Foreground(color).Render(string(s))
}

func money(v float64) string {
	if v == 0 {
		return "-"
	}

	return "$" + humanize.CommafWithDigits(v, 0)
}

func ago(ts string) string {
	t, ok := disastersvc.ParseTimestamp(ts)
	if !ok {
		return ts
	}

	return humanize.Time(t)
}

func location(rec domain.DisasterRecord) string {
	coords := strconv.FormatFloat(rec.Latitude, 'f', 4, 64) + ", " + strconv.FormatFloat(rec.Longitude, 'f', 4, 64)
	if rec.LocationName == "" {
		return coords
	}

	return rec.LocationName + " (" + coords + ")"
}

func warnings(w io.Writer, msgs []string) {
	for _, msg := range msgs {
		fmt.Fprintln(w, warnStyle.Render("! "+msg))
	}
}
