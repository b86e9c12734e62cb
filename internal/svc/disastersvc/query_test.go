package disastersvc_test

import (
	"testing"

	"github.com/mkrupp/disastermap/internal/domain"
	"github.com/mkrupp/disastermap/internal/svc/disastersvc"
)

func records() []domain.DisasterRecord {
	return []domain.DisasterRecord{
		{ID: "1", Title: "Spring flood", Type: "flood", Status: domain.StatusOngoing, Severity: domain.SeverityMedium,
			LocationName: "Winnipeg", Casualties: 2, CreatedAt: "2024-04-02T10:00:00Z"},
		{ID: "2", Title: "Alpine avalanche", Type: "avalanche", Status: domain.StatusResolved, Severity: domain.SeverityCritical,
			LocationName: "Zermatt", Casualties: 9, CreatedAt: "Mon, 01 Jan 2024 08:00:00 GMT"},
		{ID: "3", Title: "Coastal storm", Type: "storm", Status: domain.StatusReported, Severity: domain.SeverityLow,
			LocationName: "Halifax", Description: "Flooding along the harbour", Casualties: 0, CreatedAt: "2024-03-15 12:30:00"},
	}
}

func ids(recs []domain.DisasterRecord) string {
	s := ""
	for _, r := range recs {
		s += r.ID.String()
	}

	return s
}

func TestQuery_Apply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query disastersvc.Query
		want  string
	}{
		{name: "zero query keeps order", query: disastersvc.Query{}, want: "123"},
		{name: "search title and description", query: disastersvc.Query{Search: "flood"}, want: "13"},
		{name: "search location ignores case", query: disastersvc.Query{Search: "zERMATT"}, want: "2"},
		{name: "filter type", query: disastersvc.Query{Type: "Storm"}, want: "3"},
		{name: "filter status", query: disastersvc.Query{Status: domain.StatusResolved}, want: "2"},
		{name: "filter severity", query: disastersvc.Query{Severity: domain.SeverityMedium}, want: "1"},
		{name: "sort severity", query: disastersvc.Query{SortBy: disastersvc.SortSeverity}, want: "312"},
		{name: "sort severity desc", query: disastersvc.Query{SortBy: disastersvc.SortSeverity, Descending: true}, want: "213"},
		{name: "sort title", query: disastersvc.Query{SortBy: disastersvc.SortTitle}, want: "231"},
		{name: "sort created", query: disastersvc.Query{SortBy: disastersvc.SortCreated}, want: "231"},
		{name: "sort casualties desc", query: disastersvc.Query{SortBy: disastersvc.SortCasualties, Descending: true}, want: "213"},
		{name: "no match", query: disastersvc.Query{Search: "volcano"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := records()
			if got := ids(tt.query.Apply(in)); got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}

			if ids(in) != "123" {
				t.Error("Apply() modified its input")
			}
		})
	}
}

func TestParseSortKey(t *testing.T) {
	t.Parallel()

	if key, err := disastersvc.ParseSortKey(" Severity "); err != nil || key != disastersvc.SortSeverity {
		t.Errorf("ParseSortKey() = %q, %v", key, err)
	}

	if _, err := disastersvc.ParseSortKey("colour"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	summary := disastersvc.Summarize(records())

	if summary.Total != 3 || summary.Active != 2 || summary.Casualties != 11 {
		t.Errorf("summary = %+v", summary)
	}

	if len(summary.BySeverity) != len(domain.Severities) || summary.BySeverity[3].Count != 1 {
		t.Errorf("bySeverity = %+v", summary.BySeverity)
	}

	wantMonths := []disastersvc.Count{{Label: "2024-01", Count: 1}, {Label: "2024-03", Count: 1}, {Label: "2024-04", Count: 1}}
	if len(summary.ByMonth) != len(wantMonths) {
		t.Fatalf("byMonth = %+v", summary.ByMonth)
	}

	for i, want := range wantMonths {
		if summary.ByMonth[i] != want {
			t.Errorf("byMonth[%d] = %+v, want %+v", i, summary.ByMonth[i], want)
		}
	}
}
