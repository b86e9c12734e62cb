// Package app wires the session store, the route guard and the API services
// of one user together.
package app

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mkrupp/disastermap/internal/infra/logging"
	"github.com/mkrupp/disastermap/internal/infra/metrics"
	http_ "github.com/mkrupp/disastermap/internal/infra/transport/http"
	"github.com/mkrupp/disastermap/internal/repo/token"
	"github.com/mkrupp/disastermap/internal/router"
	"github.com/mkrupp/disastermap/internal/svc/authsvc"
	"github.com/mkrupp/disastermap/internal/svc/authsvc/authclient"
	"github.com/mkrupp/disastermap/internal/svc/disastersvc"
	"github.com/mkrupp/disastermap/internal/svc/disastersvc/disasterclient"
	"github.com/mkrupp/disastermap/internal/svc/imagesvc"
	"github.com/mkrupp/disastermap/internal/svc/session"
)

// Config holds the configuration shared by the executables.
type Config struct {
	API   http_.APIClientConfig             `envPrefix:"API_"`
	Token token.SQLiteTokenRepositoryConfig `envPrefix:"TOKEN_"`
	Image imagesvc.ImageConfig              `envPrefix:"IMAGE_"`
}

// App is the client core of one user. There is exactly one session store
// per App, shared by every service and the navigator.
type App struct {
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Tokens    token.Repository
	API       *http_.APIClient
	Session   *session.Store
	Auth      *authsvc.AuthService
	Disasters *disastersvc.DisasterService
	Routes    *router.Table
	Navigator *router.Navigator
}

// New wires an App. The session is not restored yet; callers decide whether
// to wait for Session.Restore or to run it in the background.
func New(cfg Config, tokens token.RepositoryFactory) (*App, error) {
	log := logging.GetLogger("app")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), //nolint:exhaustruct
	)

	m := metrics.NewMetrics(registry)

	repo, err := tokens()
	if err != nil {
		return nil, fmt.Errorf("token repository: %w", err)
	}

	images, err := imagesvc.NewImageService(cfg.Image)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("image service: %w", err), repo.Close())
	}

	api := http_.NewAPIClient(cfg.API, nil, repo, m)
	auth := authclient.NewHTTPClient(api)
	store := session.NewStore(repo, auth, m)
	authSvc := authsvc.NewAuthService(auth, repo, store, m)

	// Any 401 on a request sent with the stored token logs the user out.
	api.OnUnauthorized(authSvc.Expire)

	routes := router.DefaultRoutes()

	log.Debug("app wired", "api", cfg.API.BaseURL, "routes", len(routes.Routes()))

	return &App{
		Registry:  registry,
		Metrics:   m,
		Tokens:    repo,
		API:       api,
		Session:   store,
		Auth:      authSvc,
		Disasters: disastersvc.NewDisasterService(disasterclient.NewHTTPClient(api), images),
		Routes:    routes,
		Navigator: router.NewNavigator(routes, store, m),
	}, nil
}

// Close stops the navigator and closes the token repository.
func (a *App) Close() error {
	a.Navigator.Close()

	if err := a.Tokens.Close(); err != nil {
		return fmt.Errorf("close token repository: %w", err)
	}

	return nil
}
