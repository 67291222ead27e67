package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/team-ledger/app/eventbus"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// Start wires the event bus, the Watermill router and the HTTP API, then runs
// until ctx is cancelled or one of them fails.
func (app *App) Start(ctx context.Context) error {
	logger := app.Obs.Logger

	bus, err := eventbus.NewEventBus(ctx, eventbus.Config{
		NATSURL:     app.Config.NATS.URL,
		QueueGroup:  app.Config.NATS.QueueGroup,
		AuditStream: app.Config.NATS.AuditStream,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize event bus: %w", err)
	}
	app.EventBus = bus

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: shutdownTimeout}, watermill.NewSlogLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create message router: %w", err)
	}
	router.AddMiddleware(middleware.Recoverer)
	app.Router = router

	module, err := analytics.NewAnalyticsModule(ctx, app.Obs, app.settings(), bus, bus, router, app.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize analytics module: %w", err)
	}
	app.Analytics = module

	app.httpServer = &http.Server{
		Addr:              app.Config.HTTP.Addr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if addr := app.Config.Observability.MetricsAddress; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(app.Obs.Registry, promhttp.HandlerOpts{}))
		app.metricsServer = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := router.Run(gctx); err != nil {
			return fmt.Errorf("message router: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		module.Run(gctx, nil)
		return nil
	})
	for _, srv := range app.servers() {
		g.Go(func() error {
			logger.InfoContext(gctx, "HTTP server listening", slog.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return app.shutdown()
	})

	logger.InfoContext(ctx, "Ledger started", slog.String("event_bus", bus.Backend()))
	return g.Wait()
}

// Handler is the HTTP API: health, the report routes and, without a dedicated
// metrics listener, /metrics.
func (app *App) Handler() http.Handler {
	mux := chi.NewRouter()
	mux.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Recoverer)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := app.DB.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	if app.Config.Observability.MetricsAddress == "" {
		mux.Handle("/metrics", promhttp.HandlerFor(app.Obs.Registry, promhttp.HandlerOpts{}))
	}
	if app.Analytics != nil {
		app.Analytics.RegisterHTTP(mux)
	}
	return mux
}

func (app *App) servers() []*http.Server {
	out := []*http.Server{app.httpServer}
	if app.metricsServer != nil {
		out = append(out, app.metricsServer)
	}
	return out
}

func (app *App) shutdown() error {
	logger := app.Obs.Logger
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	for _, srv := range app.servers() {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
		}
	}
	if err := app.Router.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close message router: %w", err))
	}
	return errors.Join(errs...)
}
