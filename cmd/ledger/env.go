package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Black-And-White-Club/team-ledger/app"
	"github.com/Black-And-White-Club/team-ledger/config"
	"github.com/Black-And-White-Club/team-ledger/pkg/observability"
	"github.com/urfave/cli/v2"
)

const serviceName = "team-ledger"

// version is set with -ldflags "-X main.version=...".
var version = "dev"

// environment holds what every command needs: configuration, observability and,
// once opened, the application.
type environment struct {
	cfg *config.Config
	obs *observability.Observability
	app *app.App
}

func (e *environment) setup(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	obs, err := observability.Init(c.Context, observability.Config{
		ServiceName: serviceName,
		Environment: cfg.Observability.Environment,
		Version:     version,
		Log: observability.LogConfig{
			Level:      cfg.Logging.Level,
			Dir:        cfg.Logging.Dir,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
			Stdout:     c.App.ErrWriter,
		},
		OTLPEndpoint: cfg.Observability.OTLPEndpoint,
		OTLPInsecure: cfg.Observability.OTLPInsecure,
		SampleRate:   cfg.Observability.TraceSampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	e.cfg, e.obs = cfg, obs
	return nil
}

// open returns the application, creating it on first use.
func (e *environment) open(ctx context.Context) (*app.App, error) {
	if e.app != nil {
		return e.app, nil
	}
	a, err := app.NewApp(ctx, e.cfg, e.obs)
	if err != nil {
		return nil, err
	}
	e.app = a
	return a, nil
}

// commandApp opens the application with the analytics module ready for
// one-shot use.
func (e *environment) commandApp(ctx context.Context) (*app.App, error) {
	a, err := e.open(ctx)
	if err != nil {
		return nil, err
	}
	if a.Analytics == nil {
		if err := a.InitCommandModules(ctx); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (e *environment) teardown(c *cli.Context) error {
	var errs []error
	if e.app != nil {
		errs = append(errs, e.app.Close())
	}
	if e.obs != nil {
		errs = append(errs, e.obs.Shutdown(context.Background()))
	}
	return errors.Join(errs...)
}
