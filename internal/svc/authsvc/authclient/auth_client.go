package authclient

import (
	"context"

	"github.com/mkrupp/disastermap/internal/domain"
)

// AuthClient defines the authentication endpoints of the REST API.
type AuthClient interface {
	// Login exchanges credentials for a token and, on some deployments, the profile.
	Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)

	// Profile returns the profile of token. An empty token sends the stored
	// one, if any.
	Profile(ctx context.Context, token domain.AuthToken) (*domain.UserProfile, error)

	// Logout ends the server side session of the stored token.
	Logout(ctx context.Context) (string, error)

	// Register creates an unverified account.
	Register(ctx context.Context, req domain.RegisterRequest) (string, error)

	// VerifyEmail confirms an account with the one-time code sent by mail.
	VerifyEmail(ctx context.Context, code string) (string, error)

	// ResetPassword sets a new password with a reset code.
	ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) (string, error)
}
