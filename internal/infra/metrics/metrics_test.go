package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mkrupp/disastermap/internal/infra/metrics"
)

func TestMetrics_ObserveAPIRequest(t *testing.T) {
	t.Parallel()

	m := metrics.NewMetrics(prometheus.NewRegistry())

	m.ObserveAPIRequest("auth.login", http.MethodPost, http.StatusUnauthorized, 10*time.Millisecond)
	m.ObserveAPIRequest("auth.login", http.MethodPost, 0, time.Millisecond)

	if got := testutil.ToFloat64(m.APIRequests.WithLabelValues("auth.login", http.MethodPost, "401")); got != 1 {
		t.Errorf("api_requests_total{status=401} = %v, want 1", got)
	}

	if got := testutil.ToFloat64(m.APIRequests.WithLabelValues("auth.login", http.MethodPost, "error")); got != 1 {
		t.Errorf("api_requests_total{status=error} = %v, want 1", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *metrics.Metrics

	m.ObserveAPIRequest("auth.profile", http.MethodGet, http.StatusOK, time.Second)
	m.SessionEvent("restored")
	m.GuardDecision("disaster.new", "admitted")
	m.ShellRequest(http.MethodGet, http.StatusOK)
}

func TestHandler(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry)
	m.SessionEvent("cleared")

	rec := httptest.NewRecorder()
	metrics.Handler(registry).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	if !strings.Contains(rec.Body.String(), `disastermap_session_events_total{event="cleared"} 1`) {
		t.Errorf("body does not contain the session counter:\n%s", rec.Body.String())
	}
}
