// Package observability builds the process-wide logger, tracer and metrics registry.
package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config describes where logs and traces go.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	Log LogConfig

	// OTLPEndpoint empty disables trace export.
	OTLPEndpoint string
	OTLPInsecure bool
	SampleRate   float64
}

// Observability bundles the handles every module receives.
type Observability struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Registry *prometheus.Registry

	shutdown []func(context.Context) error
}

// Init builds the logger, tracer provider and a metrics registry carrying the
// Go runtime and process collectors.
func Init(ctx context.Context, cfg Config) (*Observability, error) {
	logger, closeLog, err := NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	logger = logger.With(
		slog.String("service", cfg.ServiceName),
		slog.String("env", cfg.Environment),
	)

	obs := &Observability{Logger: logger, Registry: prometheus.NewRegistry()}
	if closeLog != nil {
		obs.shutdown = append(obs.shutdown, func(context.Context) error { return closeLog() })
	}

	if err := obs.Registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}
	if err := obs.Registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("register process collector: %w", err)
	}

	if cfg.OTLPEndpoint == "" {
		obs.Tracer = noop.NewTracerProvider().Tracer(cfg.ServiceName)
		return obs, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.OTLPInsecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("service.version", cfg.Version),
			attribute.String("deployment.environment", cfg.Environment),
		)),
	)
	otel.SetTracerProvider(tp)
	obs.Tracer = tp.Tracer(cfg.ServiceName)
	obs.shutdown = append(obs.shutdown, tp.Shutdown)

	logger.InfoContext(ctx, "Trace export enabled", slog.String("endpoint", cfg.OTLPEndpoint))
	return obs, nil
}

// Shutdown flushes traces and closes log files. Shutdown hooks run in reverse
// registration order.
func (o *Observability) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(o.shutdown) - 1; i >= 0; i-- {
		if err := o.shutdown[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
