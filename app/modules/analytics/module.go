package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	analyticsservice "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/application"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/bridge"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/export"
	analyticshandlers "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/handlers"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/render"
	analyticsrouter "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/router"
	rosterdb "github.com/Black-And-White-Club/team-ledger/app/modules/roster/infrastructure/repositories"
	"github.com/Black-And-White-Club/team-ledger/pkg/observability"
	analyticsmetrics "github.com/Black-And-White-Club/team-ledger/pkg/observability/metrics/analytics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Settings carries the module's slice of the application config.
type Settings struct {
	OutputDir       string
	AnalysisTool    string
	AnalysisTimeout time.Duration
	RatePerSecond   float64
	RateBurst       int
}

// Module represents the analytics module.
type Module struct {
	AnalyticsService analyticsservice.Service
	AnalyticsRouter  *analyticsrouter.AnalyticsRouter
	handlers         analyticshandlers.Handlers
	cancelFunc       context.CancelFunc
	observability    *observability.Observability
}

// NewAnalyticsModule creates and initializes a new analytics module. router
// may be nil for one-shot CLI use, in which case no event handlers are registered.
func NewAnalyticsModule(
	ctx context.Context,
	obs *observability.Observability,
	settings Settings,
	subscriber message.Subscriber,
	publisher message.Publisher,
	router *message.Router,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Logger.With(slog.String("module", "analytics"))
	tracer := obs.Tracer

	logger.InfoContext(ctx, "analytics.NewAnalyticsModule initializing")

	// 1. Initialize Repository
	repo := rosterdb.NewRepository(db)

	// 2. Initialize Metrics
	var metrics analyticsmetrics.AnalyticsMetrics = analyticsmetrics.NewNoop()
	if obs.Registry != nil {
		m, err := analyticsmetrics.NewPrometheus(obs.Registry)
		if err != nil {
			return nil, fmt.Errorf("failed to register analytics metrics: %w", err)
		}
		metrics = m
	}

	// 3. Initialize report infrastructure
	analyzer := bridge.New(settings.AnalysisTool, settings.OutputDir, logger)
	renderer := render.NewRenderer(settings.OutputDir, logger)
	exporter := export.NewExporter(settings.OutputDir, logger)

	// 4. Initialize Service
	service := analyticsservice.NewAnalyticsService(
		repo, analyzer, renderer, exporter, logger, metrics, tracer, db,
		analyticsservice.Options{AnalysisTimeout: settings.AnalysisTimeout},
	)

	// 5. Initialize Handlers
	handlers := analyticshandlers.NewAnalyticsHandlers(service, logger, tracer)

	module := &Module{
		AnalyticsService: service,
		handlers:         handlers,
		observability:    obs,
	}
	if router == nil {
		return module, nil
	}

	// 6. Initialize Router
	analyticsRouter := analyticsrouter.NewAnalyticsRouter(
		logger,
		router,
		subscriber,
		publisher,
		tracer,
		settings.RatePerSecond,
		settings.RateBurst,
	)

	// 7. Configure the router with handlers
	if err := analyticsRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure analytics router: %w", err)
	}
	module.AnalyticsRouter = analyticsRouter

	return module, nil
}

// RegisterHTTP mounts the report API on mux.
func (m *Module) RegisterHTTP(mux chi.Router) {
	if m.AnalyticsRouter != nil {
		m.AnalyticsRouter.RegisterHTTP(mux, m.handlers)
	}
}

// Run blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting analytics module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Analytics module goroutine stopped")
}

// Close shuts down the analytics module.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping analytics module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.AnalyticsRouter != nil {
		if err := m.AnalyticsRouter.Close(); err != nil {
			logger.Error("Error closing AnalyticsRouter from module", "error", err)
			return fmt.Errorf("error closing AnalyticsRouter: %w", err)
		}
	}

	logger.Info("Analytics module stopped")
	return nil
}
