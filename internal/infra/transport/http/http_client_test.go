package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mkrupp/disastermap/internal/domain"
	context_ "github.com/mkrupp/disastermap/internal/infra/context"
	"github.com/mkrupp/disastermap/internal/infra/metrics"
	http_ "github.com/mkrupp/disastermap/internal/infra/transport/http"
)

type staticTokens struct {
	token domain.AuthToken
	err   error
}

func (s staticTokens) GetToken(context.Context) (domain.AuthToken, bool, error) {
	return s.token, s.token != "", s.err
}

func newClient(t *testing.T, h http.HandlerFunc, tokens http_.TokenSource) (*http_.APIClient, *metrics.Metrics) {
	t.Helper()

	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	m := metrics.NewMetrics(prometheus.NewRegistry())

	return http_.NewAPIClient(http_.APIClientConfig{BaseURL: server.URL + "/"}, server.Client(), tokens, m), m
}

func TestAPIClient_Do(t *testing.T) {
	t.Parallel()

	var gotAuth, gotTrace, gotType string

	client, m := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTrace = r.Header.Get(http_.TraceIDHeader)
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"echo": ` + string(body) + `}`))
	}, staticTokens{token: "tok"})

	ctx := context_.WithTraceID(context.Background(), "trace-1")

	var out struct {
		Echo struct {
			Name string `json:"name"`
		} `json:"echo"`
	}

	err := client.Do(ctx, http_.Request{
		Method:   http.MethodPost,
		Path:     "/echo",
		Endpoint: "echo",
		JSON:     map[string]string{"name": "ada"},
		Auth:     http_.AuthRequired,
	}, &out)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	if out.Echo.Name != "ada" {
		t.Errorf("decoded = %+v", out)
	}

	if gotAuth != "Bearer tok" || gotTrace != "trace-1" || gotType != "application/json" {
		t.Errorf("headers = %q %q %q", gotAuth, gotTrace, gotType)
	}

	if got := testutil.ToFloat64(m.APIRequests.WithLabelValues("echo", http.MethodPost, "200")); got != 1 {
		t.Errorf("api_requests_total = %v, want 1", got)
	}
}

func TestAPIClient_GeneratesTraceID(t *testing.T) {
	t.Parallel()

	var gotTrace string

	client, _ := newClient(t, func(_ http.ResponseWriter, r *http.Request) {
		gotTrace = r.Header.Get(http_.TraceIDHeader)
	}, nil)

	if err := client.Do(context.Background(), http_.Request{Method: http.MethodGet, Path: "/"}, nil); err != nil {
		t.Fatal(err)
	}

	if len(gotTrace) != 26 {
		t.Errorf("trace id = %q, want 26 crockford characters", gotTrace)
	}
}

func TestAPIClient_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{name: "unauthorized", status: 401, body: `{"message":"Invalid credentials"}`, wantErr: domain.ErrUnauthorized, wantMsg: "Invalid credentials"},
		{name: "not found", status: 404, body: `{}`, wantErr: domain.ErrNotFound},
		{name: "rejected with error field", status: 400, body: `{"error":"bad code"}`, wantErr: domain.ErrRequestRejected, wantMsg: "bad code"},
		{name: "server failure with html", status: 502, body: `<html>`, wantErr: domain.ErrServerFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, _ := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, nil)

			err := client.Do(context.Background(), http_.Request{Method: http.MethodGet, Path: "/x"}, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}

			var apiErr *domain.APIError
			if !errors.As(err, &apiErr) || apiErr.Status != tt.status || apiErr.Message != tt.wantMsg {
				t.Errorf("api error = %+v", apiErr)
			}
		})
	}
}

func TestAPIClient_UndecodableBody(t *testing.T) {
	t.Parallel()

	client, _ := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}, nil)

	var out map[string]any

	err := client.Do(context.Background(), http_.Request{Method: http.MethodGet, Path: "/x"}, &out)
	if !errors.Is(err, domain.ErrServerFailure) {
		t.Errorf("error = %v, want ErrServerFailure", err)
	}
}

func TestAPIClient_NetworkFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	m := metrics.NewMetrics(prometheus.NewRegistry())
	client := http_.NewAPIClient(http_.APIClientConfig{BaseURL: server.URL}, nil, nil, m)

	err := client.Do(context.Background(), http_.Request{Method: http.MethodGet, Path: "/x", Endpoint: "x"}, nil)
	if !errors.Is(err, domain.ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}

	if got := testutil.ToFloat64(m.APIRequests.WithLabelValues("x", http.MethodGet, "error")); got != 1 {
		t.Errorf("api_requests_total{status=error} = %v, want 1", got)
	}
}

func TestAPIClient_AuthModes(t *testing.T) {
	t.Parallel()

	var (
		requests atomic.Int32
		expired  atomic.Int32
	)

	handler := func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}

	// no stored token: required auth fails locally
	client, _ := newClient(t, handler, staticTokens{})
	client.OnUnauthorized(func(context.Context) { expired.Add(1) })

	err := client.Do(context.Background(), http_.Request{Method: http.MethodGet, Path: "/x", Auth: http_.AuthRequired}, nil)
	if !errors.Is(err, domain.ErrNoAuthToken) || !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrNoAuthToken", err)
	}

	if requests.Load() != 0 {
		t.Error("request sent without token")
	}

	// explicit token: a 401 does not expire the stored session
	client, _ = newClient(t, handler, staticTokens{token: "stored"})
	client.OnUnauthorized(func(context.Context) { expired.Add(1) })

	_ = client.Do(context.Background(), http_.Request{Method: http.MethodGet, Path: "/x", Auth: http_.AuthToken, Token: "other"}, nil)

	if expired.Load() != 0 {
		t.Error("explicit token 401 expired the session")
	}

	// stored token: a 401 expires
	_ = client.Do(context.Background(), http_.Request{Method: http.MethodGet, Path: "/x", Auth: http_.AuthStored}, nil)

	if expired.Load() != 1 {
		t.Errorf("expired %d times, want 1", expired.Load())
	}

	// no credentials: nothing to expire
	_ = client.Do(context.Background(), http_.Request{Method: http.MethodGet, Path: "/x", Auth: http_.AuthNone}, nil)

	if expired.Load() != 1 {
		t.Errorf("expired %d times, want 1", expired.Load())
	}

	if tok, ok := client.StoredToken(context.Background()); !ok || tok != "stored" {
		t.Errorf("StoredToken() = %q, %v", tok, ok)
	}
}

func TestAPIClient_TokenReadFailure(t *testing.T) {
	t.Parallel()

	client, _ := newClient(t, func(http.ResponseWriter, *http.Request) {}, staticTokens{err: domain.ErrTokenStoreUnavailable})

	err := client.Do(context.Background(), http_.Request{Method: http.MethodGet, Path: "/x", Auth: http_.AuthStored}, nil)
	if !errors.Is(err, domain.ErrTokenStoreUnavailable) {
		t.Errorf("error = %v", err)
	}
}
