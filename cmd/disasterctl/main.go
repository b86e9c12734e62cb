package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mkrupp/disastermap/internal/app"
	"github.com/mkrupp/disastermap/internal/cli"
	"github.com/mkrupp/disastermap/internal/infra/config"
	"github.com/mkrupp/disastermap/internal/infra/logging"
	"github.com/mkrupp/disastermap/internal/repo/token"
)

const (
	appName = "demo"
	svcName = "disasterctl"
)

type Config struct {
	config.EnvConfig

	Log logging.LoggerConfig `envPrefix:"LOG_"`
	App app.Config           `envPrefix:""`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := cli.Execute(ctx, cli.Options{ //nolint:exhaustruct
		NewApp: newApp,
	})

	stop()
	os.Exit(code)
}

// newApp reads the configuration once the env file is loaded.
func newApp(ctx context.Context) (*app.App, error) {
	var (
		cfg Config

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Log output would interleave with tables; warnings and up unless configured.
	if !levelConfigured(configPrefix) {
		cfg.Log.Level = "warn"
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	a, err := app.New(cfg.App, token.SQLiteTokenRepositoryFactory(cfg.App.Token))
	if err != nil {
		return nil, fmt.Errorf("new app: %w", err)
	}

	return a, nil
}

func levelConfigured(configPrefix string) bool {
	for _, name := range []string{configPrefix + "_LOG_LEVEL", strings.ToUpper(appName) + "_LOG_LEVEL", "LOG_LEVEL"} {
		if _, ok := os.LookupEnv(name); ok {
			return true
		}
	}

	return false
}
