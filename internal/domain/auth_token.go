package domain

import "errors"

var (
	// ErrNoAuthToken is returned when an authenticated call is attempted without a stored token.
	ErrNoAuthToken = errors.New("no auth token")
	// ErrUnauthorized is returned when the API rejects the credentials of a call (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTokenStoreUnavailable is returned when the token file cannot be opened or written.
	ErrTokenStoreUnavailable = errors.New("token store unavailable")
)

// AuthToken is the opaque bearer credential issued by the API on login.
type AuthToken string

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body returned by POST /auth/login.
// Token is empty for cookie based deployments; User is optional.
type LoginResponse struct {
	Token   AuthToken    `json:"token,omitempty"`
	User    *UserProfile `json:"user,omitempty"`
	Message string       `json:"message,omitempty"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetPasswordRequest is the body of POST /api/reset-password.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// MessageResponse is the generic {message} body most endpoints answer with.
type MessageResponse struct {
	Message string `json:"message"`
}
