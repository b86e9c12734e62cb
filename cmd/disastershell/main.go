package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mkrupp/disastermap/internal/app"
	"github.com/mkrupp/disastermap/internal/infra/config"
	"github.com/mkrupp/disastermap/internal/infra/logging"
	"github.com/mkrupp/disastermap/internal/infra/transport/http"
	"github.com/mkrupp/disastermap/internal/repo/token"
	"github.com/mkrupp/disastermap/internal/svc/shellsvc"
)

const (
	appName = "demo"
	svcName = "disastershell"
)

type Config struct {
	config.EnvConfig

	Log  logging.LoggerConfig         `envPrefix:"LOG_"`
	App  app.Config                   `envPrefix:""`
	HTTP shellsvc.HTTPTransportConfig `envPrefix:"HTTP_"`
}

func main() {
	var (
		cfg Config

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(os.Getenv("DOTENV"), ".env"); err != nil {
		panic(err)
	}

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	defer func() {
		log := logging.GetLogger("cmd.disastershell")

		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
			panic(err)
		}

		log.InfoContext(ctx, "shutdown")
	}()

	a, err := app.New(cfg.App, token.SQLiteTokenRepositoryFactory(cfg.App.Token))
	if err != nil {
		return fmt.Errorf("new app: %w", err)
	}

	defer func() {
		err = errors.Join(err, a.Close())
	}()

	// Restore in the background; guarded pages answer "pending" meanwhile.
	go a.Session.Restore(ctx)

	httpTransport, err := shellsvc.NewHTTPTransport(
		cfg.HTTP,
		a.Auth,
		a.Disasters,
		a.Navigator,
		a.Routes,
		a.Registry,
		a.Metrics,
	)
	if err != nil {
		return fmt.Errorf("new http transport: %w", err)
	}

	if err := http.ListenAndServe(ctx, httpTransport, cfg.HTTP.HTTPTransportConfig, a.Metrics); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
