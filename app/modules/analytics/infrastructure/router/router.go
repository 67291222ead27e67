package analyticsrouter

import (
	"context"
	"log/slog"

	analyticshandlers "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/handlers"
	analyticsevents "github.com/Black-And-White-Club/team-ledger/pkg/events/analytics"
	"github.com/Black-And-White-Club/team-ledger/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// AnalyticsRouter registers the analytics handlers on the event router and
// the HTTP mux.
type AnalyticsRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
	limiter    *analyticshandlers.IPRateLimiter
}

// NewAnalyticsRouter creates a new AnalyticsRouter. HTTP callers get reqPerSec
// requests per second per IP with the given burst.
func NewAnalyticsRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
	reqPerSec float64,
	burst int,
) *AnalyticsRouter {
	return &AnalyticsRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
		limiter:    analyticshandlers.NewIPRateLimiter(rate.Limit(reqPerSec), burst),
	}
}

// Configure sets up the event router with handlers.
func (r *AnalyticsRouter) Configure(_ context.Context, handlers analyticshandlers.Handlers) error {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	r.logger.Info("Registering analytics module handlers",
		slog.String("report_subject", analyticsevents.ReportRequestedV1),
		slog.String("export_subject", analyticsevents.ExportRequestedV1),
	)

	registerHandler(deps, analyticsevents.ReportRequestedV1, handlers.HandleReportRequested)
	registerHandler(deps, analyticsevents.ExportRequestedV1, handlers.HandleExportRequested)

	r.logger.Info("Analytics module handlers registered successfully")
	return nil
}

// RegisterHTTP mounts the report API on mux.
func (r *AnalyticsRouter) RegisterHTTP(mux chi.Router, handlers analyticshandlers.Handlers) {
	mux.Route("/api", func(api chi.Router) {
		api.Use(analyticshandlers.RateLimitMiddleware(r.limiter))

		api.Get("/reports/members", handlers.HandleHTTPMemberStatistics)
		api.Get("/reports/matches/stats", handlers.HandleHTTPMatchStatistics)
		api.Get("/reports/participations", handlers.HandleHTTPParticipations)
		api.Post("/reports/{kind}", handlers.HandleHTTPGenerateReport)
		api.Post("/exports", handlers.HandleHTTPExport)
		api.Delete("/members/{memberID}", handlers.HandleHTTPDeleteMember)
	})
}

type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
}

// registerHandler is a generic function for type-safe Watermill handler registration.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "analytics." + topic

	deps.router.AddNoPublisherHandler(
		handlerName,
		topic,
		deps.subscriber,
		handlerwrapper.WrapTyped[T](
			handlerName,
			deps.logger,
			deps.tracer,
			deps.publisher,
			handler,
		),
	)
}

// Close shuts down the event router.
func (r *AnalyticsRouter) Close() error {
	return r.router.Close()
}
