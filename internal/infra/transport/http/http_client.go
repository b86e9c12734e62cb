package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mkrupp/disastermap/internal/domain"
	context_ "github.com/mkrupp/disastermap/internal/infra/context"
	"github.com/mkrupp/disastermap/internal/infra/logging"
	"github.com/mkrupp/disastermap/internal/infra/metrics"
)

const (
	AuthorizationHeader = "Authorization"
	contentTypeJSON     = "application/json"
)

// AuthMode selects how a request is authenticated.
type AuthMode int

const (
	// AuthNone sends no credentials.
	AuthNone AuthMode = iota
	// AuthToken sends Request.Token. A 401 does not expire the session.
	AuthToken
	// AuthStored sends the stored token when there is one.
	AuthStored
	// AuthRequired sends the stored token and fails without a network call
	// when there is none.
	AuthRequired
)

// APIClientConfig holds configuration for the REST API client.
type APIClientConfig struct {
	// BaseURL is the root of the REST API, without trailing slash
	BaseURL string        `env:"BASE_URL" default:"http://127.0.0.1:5000"`
	Timeout time.Duration `env:"TIMEOUT"  default:"10s"`
}

// TokenSource yields the persisted bearer token.
type TokenSource interface {
	GetToken(ctx context.Context) (domain.AuthToken, bool, error)
}

// Request describes one call to the REST API.
type Request struct {
	Method string
	// Path is appended to the base URL; it must already be escaped.
	Path string
	// Endpoint labels the request in logs and metrics, e.g. "disasters.get".
	Endpoint string
	// JSON is encoded as the request body when Body is nil.
	JSON        any
	Body        io.Reader
	ContentType string
	Auth        AuthMode
	Token       domain.AuthToken
}

// APIClient performs JSON requests against the REST API. It attaches the
// bearer token, propagates the trace ID and maps answers onto domain errors.
type APIClient struct {
	httpClient *http.Client
	tokens     TokenSource
	metrics    *metrics.Metrics
	log        logging.Logger
	cfg        APIClientConfig

	mu             sync.RWMutex
	onUnauthorized func(ctx context.Context)
}

// NewAPIClient creates a new APIClient with the given configuration.
// If httpClient is nil, a client with the configured timeout is used.
func NewAPIClient(
	cfg APIClientConfig,
	httpClient *http.Client,
	tokens TokenSource,
	m *metrics.Metrics,
) *APIClient {
	if httpClient == nil {
		//nolint:exhaustruct
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	//nolint:exhaustruct
	return &APIClient{
		httpClient: httpClient,
		tokens:     tokens,
		metrics:    m,
		log:        logging.GetLogger("infra.transport.http.client"),
		cfg:        cfg,
	}
}

// OnUnauthorized registers fn to be called when a request sent with the
// stored token is answered with 401.
func (c *APIClient) OnUnauthorized(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onUnauthorized = fn
}

// Do sends req and decodes a 2xx JSON answer into out, which may be nil.
//
// Errors are joined with domain.ErrNetwork when no answer arrived,
// returned as *domain.APIError for non-2xx answers, and joined with
// domain.ErrServerFailure when the answer cannot be decoded.
//
//nolint:cyclop,funlen
func (c *APIClient) Do(ctx context.Context, req Request, out any) (err error) {
	var (
		status int
		start  = time.Now()
	)

	defer func() {
		c.metrics.ObserveAPIRequest(req.Endpoint, req.Method, status, time.Since(start))

		if err != nil {
			c.log.DebugContext(ctx, "api request failed",
				"endpoint", req.Endpoint, "method", req.Method, "status", status, "error", err)
		}
	}()

	token, err := c.token(ctx, req)
	if err != nil {
		return err
	}

	body, contentType := req.Body, req.ContentType
	if body == nil && req.JSON != nil {
		payload, err := json.Marshal(req.JSON)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}

		body, contentType = bytes.NewReader(payload), contentTypeJSON
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.cfg.BaseURL+req.Path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	httpReq.Header.Set("Accept", contentTypeJSON)

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if token != "" {
		httpReq.Header.Set(AuthorizationHeader, "Bearer "+string(token))
	}

	_, traceID := context_.EnsureTraceID(ctx, NewTraceID)
	httpReq.Header.Set(TraceIDHeader, traceID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return errors.Join(domain.ErrNetwork, fmt.Errorf("%s %s: %w", req.Method, req.Path, err))
	}
	defer resp.Body.Close()

	status = resp.StatusCode

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Join(domain.ErrNetwork, fmt.Errorf("read body: %w", err))
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		apiErr := &domain.APIError{Status: status, Message: errorMessage(data)}

		if status == http.StatusUnauthorized && token != "" && req.Auth != AuthToken {
			c.expire(ctx)
		}

		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errors.Join(domain.ErrServerFailure, fmt.Errorf("decode %s: %w", req.Endpoint, err))
	}

	return nil
}

func (c *APIClient) token(ctx context.Context, req Request) (domain.AuthToken, error) {
	switch req.Auth {
	case AuthNone:
		return "", nil
	case AuthToken:
		return req.Token, nil
	case AuthStored, AuthRequired:
	}

	var (
		token domain.AuthToken
		ok    bool
	)

	if c.tokens != nil {
		var err error

		token, ok, err = c.tokens.GetToken(ctx)
		if err != nil {
			return "", fmt.Errorf("get token: %w", err)
		}
	}

	if !ok && req.Auth == AuthRequired {
		return "", errors.Join(domain.ErrUnauthorized, domain.ErrNoAuthToken)
	}

	return token, nil
}

// StoredToken returns the persisted token, if there is one readable.
func (c *APIClient) StoredToken(ctx context.Context) (domain.AuthToken, bool) {
	tok, err := c.token(ctx, Request{Auth: AuthStored}) //nolint:exhaustruct
	if err != nil || tok == "" {
		return "", false
	}

	return tok, true
}

func (c *APIClient) expire(ctx context.Context) {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()

	if fn != nil {
		c.log.InfoContext(ctx, "stored token rejected")
		fn(ctx)
	}
}

// PathEscape escapes a single path segment.
func PathEscape(segment string) string {
	return url.PathEscape(segment)
}

// errorMessage extracts the human readable message of an error answer.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}

	if body.Message != "" {
		return body.Message
	}

	return body.Error
}
