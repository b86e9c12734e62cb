package disastersvc_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/mkrupp/disastermap/internal/domain"
	http_ "github.com/mkrupp/disastermap/internal/infra/transport/http"
	"github.com/mkrupp/disastermap/internal/svc/authsvc"
	"github.com/mkrupp/disastermap/internal/svc/authsvc/authclient"
	"github.com/mkrupp/disastermap/internal/svc/disastersvc"
	"github.com/mkrupp/disastermap/internal/svc/disastersvc/disasterclient"
	"github.com/mkrupp/disastermap/internal/svc/imagesvc"
	"github.com/mkrupp/disastermap/internal/svc/session"
)

// mockTokenRepository implements token.Repository for testing.
type mockTokenRepository struct {
	token domain.AuthToken
	m     sync.Mutex
}

func (m *mockTokenRepository) GetToken(_ context.Context) (domain.AuthToken, bool, error) {
	m.m.Lock()
	defer m.m.Unlock()

	return m.token, m.token != "", nil
}

func (m *mockTokenRepository) StoreToken(_ context.Context, token domain.AuthToken) error {
	m.m.Lock()
	defer m.m.Unlock()

	m.token = token

	return nil
}

func (m *mockTokenRepository) ClearToken(_ context.Context) error {
	return m.StoreToken(context.Background(), "")
}

func (m *mockTokenRepository) Close() error { return nil }

type recorded struct {
	method        string
	path          string
	authorization string
	contentType   string
	body          []byte
}

type fixture struct {
	mu       sync.Mutex
	requests []recorded
	handler  http.HandlerFunc

	tokens *mockTokenRepository
	store  *session.Store
	svc    *disastersvc.DisasterService
}

func setup(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()

	f := &fixture{handler: handler, tokens: &mockTokenRepository{}}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		f.mu.Lock()
		f.requests = append(f.requests, recorded{
			method:        r.Method,
			path:          r.URL.Path,
			authorization: r.Header.Get("Authorization"),
			contentType:   r.Header.Get("Content-Type"),
			body:          body,
		})
		f.mu.Unlock()

		r.Body = io.NopCloser(bytes.NewReader(body))
		f.handler(w, r)
	}))
	t.Cleanup(server.Close)

	api := http_.NewAPIClient(http_.APIClientConfig{BaseURL: server.URL}, server.Client(), f.tokens, nil)
	auth := authclient.NewHTTPClient(api)
	f.store = session.NewStore(f.tokens, auth, nil)
	api.OnUnauthorized(authsvc.NewAuthService(auth, f.tokens, f.store, nil).Expire)

	images, err := imagesvc.NewImageService(imagesvc.ImageConfig{MaxEdge: 100, Interpolator: "bilinear", MaxBytes: 1 << 20})
	if err != nil {
		t.Fatal(err)
	}

	f.svc = disastersvc.NewDisasterService(disasterclient.NewHTTPClient(api), images)

	return f
}

func (f *fixture) login(t *testing.T) {
	t.Helper()

	f.store.Restore(context.Background())

	if err := f.tokens.StoreToken(context.Background(), "abc"); err != nil {
		t.Fatal(err)
	}

	f.store.SetSession(&domain.UserProfile{ID: "1", Role: domain.RoleReporter})
}

func (f *fixture) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.requests[len(f.requests)-1]
}

func (f *fixture) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.requests)
}

func reply(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func ptr[T any](v T) *T { return &v }

func validInput() domain.DisasterInput {
	return domain.DisasterInput{
		Title:     "River flood",
		Type:      "flood",
		Status:    domain.StatusReported,
		Severity:  domain.SeverityHigh,
		Latitude:  ptr(45.5),
		Longitude: ptr(-73.6),
	}
}

func TestDisasterService_List(t *testing.T) {
	t.Parallel()

	f := setup(t, func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, `[
			{"id": 1, "title": "Flood", "type": "flood", "severity": "high", "location_name": "Montreal"},
			{"id": "2", "title": "Wildfire", "type": "fire", "severity": "critical", "location_name": "Kelowna"}
		]`)
	})

	res := f.svc.List(context.Background(), disastersvc.Query{SortBy: disastersvc.SortSeverity, Descending: true})
	if !res.Success || res.Total != 2 || len(res.Disasters) != 2 {
		t.Fatalf("List() = %+v", res)
	}

	if res.Disasters[0].ID != "2" || res.Disasters[1].ID != "1" {
		t.Errorf("order = %v, %v", res.Disasters[0].ID, res.Disasters[1].ID)
	}

	if got := f.last().authorization; got != "" {
		t.Errorf("anonymous list sent Authorization %q", got)
	}
}

func TestDisasterService_ListEnvelopeWithToken(t *testing.T) {
	t.Parallel()

	f := setup(t, func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, `{"disasters": [{"id": 3, "title": "Quake", "type": "earthquake"}]}`)
	})
	f.login(t)

	res := f.svc.List(context.Background(), disastersvc.Query{Search: "QUAKE"})
	if !res.Success || len(res.Disasters) != 1 {
		t.Fatalf("List() = %+v", res)
	}

	if got := f.last().authorization; got != "Bearer abc" {
		t.Errorf("Authorization = %q, want Bearer abc", got)
	}
}

func TestDisasterService_GetNotFound(t *testing.T) {
	t.Parallel()

	f := setup(t, func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusNotFound, `{}`)
	})

	res := f.svc.Get(context.Background(), "999")
	if res.Success || !errors.Is(res.Err, domain.ErrNotFound) || res.Message != "Disaster not found" {
		t.Errorf("Get() = %+v, want not found", res)
	}
}

func TestDisasterService_UnauthorizedExpiresSession(t *testing.T) {
	t.Parallel()

	f := setup(t, func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusUnauthorized, `{"message": "Token expired"}`)
	})
	f.login(t)

	res := f.svc.Get(context.Background(), "42")
	if res.Success || !errors.Is(res.Err, domain.ErrUnauthorized) {
		t.Fatalf("Get() = %+v, want unauthorized", res)
	}

	if got := f.last().path; got != "/api/disasters/42" {
		t.Errorf("path = %q", got)
	}

	if f.tokens.token != "" {
		t.Error("token kept after 401")
	}

	if snap := f.store.Snapshot(); snap.IsAuthenticated {
		t.Errorf("session = %+v after 401", snap)
	}
}

func TestDisasterService_CreateJSON(t *testing.T) {
	t.Parallel()

	f := setup(t, func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusCreated, `{"message": "Disaster created", "disaster": {"id": 10, "title": "River flood"}}`)
	})
	f.login(t)

	res := f.svc.Create(context.Background(), validInput(), nil)
	if !res.Success || res.Disaster == nil || res.Disaster.ID != "10" || res.Message != "Disaster created" {
		t.Fatalf("Create() = %+v", res)
	}

	req := f.last()
	if req.method != http.MethodPost || req.contentType != "application/json" || req.authorization != "Bearer abc" {
		t.Errorf("request = %s %s %q", req.method, req.contentType, req.authorization)
	}

	var sent map[string]any
	if err := json.Unmarshal(req.body, &sent); err != nil {
		t.Fatal(err)
	}

	if sent["title"] != "River flood" || sent["latitude"] != 45.5 {
		t.Errorf("body = %v", sent)
	}
}

func TestDisasterService_CreateMultipart(t *testing.T) {
	t.Parallel()

	f := setup(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			reply(w, http.StatusBadRequest, `{"message": "not multipart"}`)

			return
		}

		file, header, err := r.FormFile("image")
		if err != nil || header.Header.Get("Content-Type") != "image/png" {
			reply(w, http.StatusBadRequest, `{"message": "no image"}`)

			return
		}
		defer file.Close()

		if r.FormValue("title") != "River flood" || r.FormValue("longitude") != "-73.6" {
			reply(w, http.StatusBadRequest, `{"message": "missing fields"}`)

			return
		}

		reply(w, http.StatusCreated, `{"message": "ok"}`)
	})
	f.login(t)

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 300, 150))); err != nil {
		t.Fatal(err)
	}

	res := f.svc.Create(context.Background(), validInput(), &disastersvc.Upload{Name: "flood.png", Data: buf.Bytes()})
	if !res.Success {
		t.Fatalf("Create() = %+v", res)
	}

	if len(res.Warnings) != 1 {
		t.Errorf("warnings = %v, want the landscape warning", res.Warnings)
	}

	if !strings.HasPrefix(f.last().contentType, "multipart/form-data") {
		t.Errorf("content type = %q", f.last().contentType)
	}
}

func TestDisasterService_CreateRejectedLocally(t *testing.T) {
	t.Parallel()

	f := setup(t, func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusCreated, `{}`)
	})
	f.login(t)

	bad := validInput()
	bad.Latitude = ptr(120.0)

	tests := []struct {
		name   string
		input  domain.DisasterInput
		upload *disastersvc.Upload
	}{
		{name: "latitude out of range", input: bad},
		{name: "missing title", input: domain.DisasterInput{Type: "flood"}},
		{name: "gif upload", input: validInput(), upload: &disastersvc.Upload{Name: "x.gif", Data: []byte("GIF89a")}},
	}

	for _, tt := range tests {
		res := f.svc.Create(context.Background(), tt.input, tt.upload)
		if res.Success || !errors.Is(res.Err, domain.ErrInvalidInput) {
			t.Errorf("%s: Create() = %+v, want invalid input", tt.name, res)
		}
	}

	if f.count() != 0 {
		t.Errorf("%d requests sent, want none", f.count())
	}
}

func TestDisasterService_MutationsRequireToken(t *testing.T) {
	t.Parallel()

	f := setup(t, func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, `{}`)
	})

	if res := f.svc.Delete(context.Background(), "1"); res.Success || !errors.Is(res.Err, domain.ErrNoAuthToken) {
		t.Errorf("Delete() = %+v, want no token failure", res)
	}

	if res := f.svc.Update(context.Background(), "1", validInput()); res.Message != domain.LoginRequiredMessage {
		t.Errorf("Update() message = %q", res.Message)
	}

	if f.count() != 0 {
		t.Errorf("%d requests sent, want none", f.count())
	}
}

func TestDisasterService_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	f := setup(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			reply(w, http.StatusOK, `{"message": "Disaster updated successfully"}`)
		case http.MethodDelete:
			reply(w, http.StatusBadRequest, `{"message": "Cannot delete a verified disaster"}`)
		}
	})
	f.login(t)

	if res := f.svc.Update(context.Background(), "7", validInput()); !res.Success || res.Message != "Disaster updated successfully" {
		t.Errorf("Update() = %+v", res)
	}

	if got := f.last(); got.method != http.MethodPut || got.path != "/api/disasters/7" {
		t.Errorf("update request = %s %s", got.method, got.path)
	}

	res := f.svc.Delete(context.Background(), "7")
	if res.Success || res.Message != "Cannot delete a verified disaster" || !errors.Is(res.Err, domain.ErrRequestRejected) {
		t.Errorf("Delete() = %+v", res)
	}

	if !f.store.Snapshot().IsAuthenticated {
		t.Error("a validation failure must not affect the session")
	}
}
