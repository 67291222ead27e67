package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/Black-And-White-Club/team-ledger/app/eventbus"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics"
	"github.com/Black-And-White-Club/team-ledger/config"
	"github.com/Black-And-White-Club/team-ledger/internal/db/bundb"
	"github.com/Black-And-White-Club/team-ledger/pkg/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// App owns the process-wide resources: store, bus, routers and modules.
type App struct {
	Config    *config.Config
	Obs       *observability.Observability
	DB        *bun.DB
	EventBus  eventbus.EventBus
	Router    *message.Router
	Analytics *analytics.Module

	httpServer    *http.Server
	metricsServer *http.Server
}

// NewApp opens the record store and prepares the artifact directory.
func NewApp(ctx context.Context, cfg *config.Config, obs *observability.Observability) (*App, error) {
	if err := os.MkdirAll(cfg.Reports.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", cfg.Reports.OutputDir, err)
	}

	db, err := bundb.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	obs.Logger.InfoContext(ctx, "Database ready",
		slog.String("driver", cfg.Database.Driver),
		slog.String("output_dir", cfg.Reports.OutputDir),
	)
	return &App{Config: cfg, Obs: obs, DB: db}, nil
}

func (app *App) settings() analytics.Settings {
	return analytics.Settings{
		OutputDir:       app.Config.Reports.OutputDir,
		AnalysisTool:    app.Config.Reports.AnalysisTool,
		AnalysisTimeout: app.Config.Reports.AnalysisTimeout,
		RatePerSecond:   app.Config.HTTP.RatePerSecond,
		RateBurst:       app.Config.HTTP.RateBurst,
	}
}

// InitCommandModules builds the analytics module for one-shot CLI use: no bus,
// no event handlers.
func (app *App) InitCommandModules(ctx context.Context) error {
	module, err := analytics.NewAnalyticsModule(ctx, app.Obs, app.settings(), nil, nil, nil, app.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize analytics module: %w", err)
	}
	app.Analytics = module
	return nil
}

// Close releases everything Start or NewApp acquired.
func (app *App) Close() error {
	var errs []error
	if app.Analytics != nil {
		if err := app.Analytics.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close event bus: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
