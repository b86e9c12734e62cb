package authsvc

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mkrupp/disastermap/internal/domain"
	"github.com/mkrupp/disastermap/internal/infra/logging"
	http_ "github.com/mkrupp/disastermap/internal/infra/transport/http"
)

// HTTPTransport serves the session endpoints of the shell:
// - GET /session: the current session
// - POST /session/login: log in with {email, password}
// - POST /session/logout: log out
// - POST /session/register: register with {name, email, password}
// - POST /session/verify-email/{code}: verify an account
// - POST /session/reset-password: reset with {email, code, password, confirmPassword}.
type HTTPTransport struct {
	authSvc *AuthService
	log     logging.Logger
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport for authSvc.
func NewHTTPTransport(authSvc *AuthService) *HTTPTransport {
	return &HTTPTransport{
		authSvc: authSvc,
		log:     logging.GetLogger("svc.authsvc.http_transport"),
	}
}

// SessionView is the answer of GET /session.
type SessionView struct {
	domain.Session

	IsAdmin    bool `json:"isAdmin"`
	IsReporter bool `json:"isReporter"`
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetInput struct {
	Email           string `json:"email"`
	Code            string `json:"code"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Mount registers the session routes on router.
func (ht *HTTPTransport) Mount(router *mux.Router) {
	router.HandleFunc("/session", ht.HandleSession).Methods(http.MethodGet)
	router.HandleFunc("/session/login", ht.HandleLogin).Methods(http.MethodPost)
	router.HandleFunc("/session/logout", ht.HandleLogout).Methods(http.MethodPost)
	router.HandleFunc("/session/register", ht.HandleRegister).Methods(http.MethodPost)
	router.HandleFunc("/session/verify-email/{code}", ht.HandleVerifyEmail).Methods(http.MethodPost)
	router.HandleFunc("/session/reset-password", ht.HandleResetPassword).Methods(http.MethodPost)
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router := mux.NewRouter()
	ht.Mount(router)
	router.ServeHTTP(w, r)
}

// HandleSession answers with the current session.
func (ht *HTTPTransport) HandleSession(w http.ResponseWriter, _ *http.Request) {
	http_.WriteJSON(w, http.StatusOK, SessionView{
		Session:    ht.authSvc.Session.Snapshot(),
		IsAdmin:    ht.authSvc.IsAdmin(),
		IsReporter: ht.authSvc.IsReporter(),
	})
}

// HandleLogin logs in.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput

	ht.run(w, r, "login", &in, func(ctx context.Context) domain.Result {
		return ht.authSvc.Login(ctx, in.Email, in.Password)
	})
}

// HandleLogout logs out.
func (ht *HTTPTransport) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ht.run(w, r, "logout", nil, ht.authSvc.Logout)
}

// HandleRegister registers an account.
func (ht *HTTPTransport) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerInput

	ht.run(w, r, "register", &in, func(ctx context.Context) domain.Result {
		return ht.authSvc.Register(ctx, in.Name, in.Email, in.Password)
	})
}

// HandleVerifyEmail verifies an account with the code in the path.
func (ht *HTTPTransport) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	ht.run(w, r, "verify email", nil, func(ctx context.Context) domain.Result {
		return ht.authSvc.VerifyEmail(ctx, code)
	})
}

// HandleResetPassword resets a password.
func (ht *HTTPTransport) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var in resetInput

	ht.run(w, r, "reset password", &in, func(ctx context.Context) domain.Result {
		return ht.authSvc.ResetPassword(ctx, in.Email, in.Code, in.Password, in.ConfirmPassword)
	})
}

// run decodes the body into in, when given, and answers with the result of op.
func (ht *HTTPTransport) run(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	in any,
	op func(ctx context.Context) domain.Result,
) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	if in != nil {
		if err := http_.ReadInput(r, in); err != nil {
			log.WarnContext(r.Context(), action+" input rejected", "error", err)
			http_.WriteResult(w, domain.Failed(err, "Invalid request body"))

			return
		}
	}

	res := op(r.Context())
	log.DebugContext(r.Context(), action+" handled", "success", res.Success)
	http_.WriteResult(w, res)
}
