package authclient

import (
	"context"
	"net/http"

	"github.com/mkrupp/disastermap/internal/domain"
	http_ "github.com/mkrupp/disastermap/internal/infra/transport/http"
)

// HTTPClient implements AuthClient on top of the shared API client.
type HTTPClient struct {
	api *http_.APIClient
}

var _ AuthClient = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTPClient sending its requests through api.
func NewHTTPClient(api *http_.APIClient) *HTTPClient {
	return &HTTPClient{api: api}
}

// Login implements AuthClient.Login.
func (c *HTTPClient) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	var resp domain.LoginResponse

	err := c.api.Do(ctx, http_.Request{
		Method:   http.MethodPost,
		Path:     "/auth/login",
		Endpoint: "auth.login",
		JSON:     req,
		Auth:     http_.AuthNone,
	}, &resp)

	return resp, err //nolint:wrapcheck
}

// Profile implements AuthClient.Profile. A 401 on an explicit token does
// not expire the stored session.
func (c *HTTPClient) Profile(ctx context.Context, token domain.AuthToken) (*domain.UserProfile, error) {
	auth := http_.AuthStored
	if token != "" {
		auth = http_.AuthToken
	}

	var user domain.UserProfile

	err := c.api.Do(ctx, http_.Request{
		Method:   http.MethodGet,
		Path:     "/auth/profile",
		Endpoint: "auth.profile",
		Auth:     auth,
		Token:    token,
	}, &user)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &user, nil
}

// Logout implements AuthClient.Logout.
func (c *HTTPClient) Logout(ctx context.Context) (string, error) {
	return c.message(ctx, http_.Request{
		Method:   http.MethodPost,
		Path:     "/auth/logout",
		Endpoint: "auth.logout",
		Auth:     http_.AuthToken,
		Token:    c.storedToken(ctx),
	})
}

// Register implements AuthClient.Register.
func (c *HTTPClient) Register(ctx context.Context, req domain.RegisterRequest) (string, error) {
	return c.message(ctx, http_.Request{
		Method:   http.MethodPost,
		Path:     "/auth/register",
		Endpoint: "auth.register",
		JSON:     req,
		Auth:     http_.AuthNone,
	})
}

// VerifyEmail implements AuthClient.VerifyEmail.
func (c *HTTPClient) VerifyEmail(ctx context.Context, code string) (string, error) {
	return c.message(ctx, http_.Request{
		Method:   http.MethodGet,
		Path:     "/auth/verify-email/" + http_.PathEscape(code),
		Endpoint: "auth.verify_email",
		Auth:     http_.AuthNone,
	})
}

// ResetPassword implements AuthClient.ResetPassword.
func (c *HTTPClient) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) (string, error) {
	return c.message(ctx, http_.Request{
		Method:   http.MethodPost,
		Path:     "/api/reset-password",
		Endpoint: "auth.reset_password",
		JSON:     req,
		Auth:     http_.AuthNone,
	})
}

func (c *HTTPClient) message(ctx context.Context, req http_.Request) (string, error) {
	var resp domain.MessageResponse

	if err := c.api.Do(ctx, req, &resp); err != nil {
		return "", err //nolint:wrapcheck
	}

	return resp.Message, nil
}

// storedToken reads the token for logout. Logout is sent with an explicit
// token so that a 401 does not recurse into the expiry hook.
func (c *HTTPClient) storedToken(ctx context.Context) domain.AuthToken {
	tok, _ := c.api.StoredToken(ctx)

	return tok
}
