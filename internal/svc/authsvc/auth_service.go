package authsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkrupp/disastermap/internal/domain"
	"github.com/mkrupp/disastermap/internal/infra/logging"
	"github.com/mkrupp/disastermap/internal/infra/metrics"
	"github.com/mkrupp/disastermap/internal/repo/token"
	"github.com/mkrupp/disastermap/internal/svc/authsvc/authclient"
	"github.com/mkrupp/disastermap/internal/svc/session"
)

const (
	msgRegisterFailed = "Failed to register"
	msgLoginFailed    = "Failed to login"
	msgProfileFailed  = "Failed to fetch profile after login."
	msgVerifyFailed   = "Failed to verify email"
	msgResetFailed    = "Failed to reset password"
	msgSaveFailed     = "Unable to save the session."
)

// AuthService performs the authentication actions and keeps the session
// store and the persisted token consistent with their outcome. None of its
// operations return errors; failures are reported in the domain.Result.
type AuthService struct {
	Client  authclient.AuthClient
	Tokens  token.Repository
	Session *session.Store
	Metrics *metrics.Metrics
	Log     logging.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	client authclient.AuthClient,
	tokens token.Repository,
	store *session.Store,
	m *metrics.Metrics,
) *AuthService {
	return &AuthService{
		Client:  client,
		Tokens:  tokens,
		Session: store,
		Metrics: m,
		Log:     logging.GetLogger("svc.authsvc.auth_service"),
	}
}

// Register creates an account. It does not log the user in; the account
// must be verified by mail first.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (res domain.Result) {
	log := s.Log.With(logging.Group("user", "email", email))

	var err error

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "register failed", "error", err)
		} else {
			log.InfoContext(ctx, "registered")
		}
	}()

	req := domain.RegisterRequest{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
	}

	switch {
	case req.Name == "":
		err = domain.NewInputError("name", "is required")
	case req.Email == "":
		err = domain.NewInputError("email", "is required")
	case req.Password == "":
		err = domain.NewInputError("password", "is required")
	}

	if err != nil {
		return domain.Failed(err, msgRegisterFailed)
	}

	msg, err := s.Client.Register(ctx, req)
	if err != nil {
		err = fmt.Errorf("register: %w", err)

		return domain.Failed(err, msgRegisterFailed)
	}

	return domain.Succeeded(msg)
}

// Login exchanges the credentials for a token, loads the profile and only
// then persists the token and sets the session. Any failure leaves both
// untouched.
//
//nolint:funlen
func (s *AuthService) Login(ctx context.Context, email, password string) (res domain.Result) {
	log := s.Log.With(logging.Group("user", "email", email))

	var err error

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "login failed", "error", err)
			s.Metrics.SessionEvent("login_failed")
		} else {
			log.InfoContext(ctx, "logged in")
		}
	}()

	req := domain.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if req.Email == "" || req.Password == "" {
		err = errors.Join(domain.ErrInvalidCredentials, domain.NewInputError("email and password", "are required"))

		return domain.Failed(err, msgLoginFailed)
	}

	resp, err := s.Client.Login(ctx, req)
	if err != nil {
		err = fmt.Errorf("login: %w", err)

		return domain.Failed(err, msgLoginFailed)
	}

	tok := resp.Token
	if tok == "" {
		if tok, _, err = s.Tokens.GetToken(ctx); err != nil {
			err = fmt.Errorf("get token: %w", err)

			return domain.Failed(err, msgLoginFailed)
		}
	}

	user, err := s.Client.Profile(ctx, tok)
	if err == nil && user == nil {
		err = domain.ErrServerFailure
	}

	if err != nil {
		err = fmt.Errorf("fetch profile: %w", err)

		msg := msgProfileFailed
		if errors.Is(err, domain.ErrNetwork) {
			msg = domain.NetworkFailureMessage
		}

		return domain.Result{Success: false, Message: msg, Err: err}
	}

	if resp.Token != "" {
		if err = s.Tokens.StoreToken(ctx, resp.Token); err != nil {
			err = fmt.Errorf("store token: %w", err)

			return domain.Result{Success: false, Message: msgSaveFailed, Err: err}
		}
	}

	s.Session.SetSession(user)

	return domain.Succeeded(resp.Message)
}

// Logout tells the server, then clears the token and the session whatever
// the server said. It is safe to call without a session.
func (s *AuthService) Logout(ctx context.Context) domain.Result {
	msg, err := s.Client.Logout(ctx)
	if err != nil {
		s.Log.WarnContext(ctx, "logout request failed", "error", err)

		msg = ""
	}

	s.forget(ctx)
	s.Log.InfoContext(ctx, "logged out")

	if msg == "" {
		msg = "Logged out"
	}

	return domain.Succeeded(msg)
}

// Expire drops the session after the API rejected the stored token.
func (s *AuthService) Expire(ctx context.Context) {
	s.Log.InfoContext(ctx, "session expired")
	s.Metrics.SessionEvent("expired")
	s.forget(ctx)
}

func (s *AuthService) forget(ctx context.Context) {
	if err := s.Tokens.ClearToken(ctx); err != nil {
		s.Log.ErrorContext(ctx, "clear token failed", "error", err)
	}

	s.Session.ClearSession()
}

// VerifyEmail confirms an account. It does not log the user in.
func (s *AuthService) VerifyEmail(ctx context.Context, code string) (res domain.Result) {
	var err error

	defer func() {
		if err != nil {
			s.Log.WarnContext(ctx, "verify email failed", "error", err)
		}
	}()

	code = strings.TrimSpace(code)
	if code == "" {
		err = domain.NewInputError("code", "is required")

		return domain.Failed(err, msgVerifyFailed)
	}

	msg, err := s.Client.VerifyEmail(ctx, code)
	if err != nil {
		err = fmt.Errorf("verify email: %w", err)

		return domain.Failed(err, msgVerifyFailed)
	}

	return domain.Succeeded(msg)
}

// ResetPassword sets a new password with the code sent by mail. The
// password policy and the confirmation are checked before anything is sent.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, password, confirm string) (res domain.Result) {
	log := s.Log.With(logging.Group("user", "email", email))

	var err error

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "reset password failed", "error", err)
		}
	}()

	req := domain.ResetPasswordRequest{
		Email:       strings.TrimSpace(email),
		Code:        strings.TrimSpace(code),
		NewPassword: password,
	}

	switch {
	case req.Email == "":
		err = domain.NewInputError("email", "is required")
	case req.Code == "":
		err = domain.NewInputError("code", "is required")
	case !domain.CheckPassword(password).Valid():
		err = domain.NewInputError("password", "does not meet the password requirements")
	case password != confirm:
		err = domain.NewInputError("password", "and confirmation do not match")
	}

	if err != nil {
		return domain.Failed(err, msgResetFailed)
	}

	msg, err := s.Client.ResetPassword(ctx, req)
	if err != nil {
		err = fmt.Errorf("reset password: %w", err)

		return domain.Failed(err, msgResetFailed)
	}

	return domain.Succeeded(msg)
}

// IsAdmin reports whether the logged in user is an admin.
func (s *AuthService) IsAdmin() bool {
	return s.Session.User().IsAdmin()
}

// IsReporter reports whether the logged in user is a reporter.
func (s *AuthService) IsReporter() bool {
	return s.Session.User().IsReporter()
}
