// Package analyticsmetrics records report and export activity.
package analyticsmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AnalyticsMetrics is implemented by the Prometheus recorder and the no-op.
type AnalyticsMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)
	RecordBridgeOutcome(ctx context.Context, outcome string)
	RecordArtifact(ctx context.Context, kind string)
	RecordNoData(ctx context.Context, report string)
}

// Option configures the Prometheus recorder.
type Option func(*options)

type options struct {
	namespace string
	subsystem string
	buckets   []float64
}

// WithNamespace sets the metric namespace.
func WithNamespace(ns string) Option {
	return func(o *options) {
		if ns != "" {
			o.namespace = ns
		}
	}
}

// WithSubsystem sets the metric subsystem.
func WithSubsystem(sub string) Option {
	return func(o *options) {
		if sub != "" {
			o.subsystem = sub
		}
	}
}

// WithHistogramBuckets overrides the duration buckets.
func WithHistogramBuckets(b []float64) Option {
	return func(o *options) {
		if len(b) > 0 {
			o.buckets = b
		}
	}
}

type prometheusMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	durations *prometheus.HistogramVec
	bridge    *prometheus.CounterVec
	artifacts *prometheus.CounterVec
	noData    *prometheus.CounterVec
}

// NewPrometheus registers the analytics collectors on reg.
func NewPrometheus(reg prometheus.Registerer, opts ...Option) (AnalyticsMetrics, error) {
	o := options{namespace: "ledger", subsystem: "analytics", buckets: prometheus.DefBuckets}
	for _, opt := range opts {
		opt(&o)
	}

	m := &prometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace, Subsystem: o.subsystem,
			Name: "operation_attempts_total", Help: "Service operations started.",
		}, []string{"operation", "service"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace, Subsystem: o.subsystem,
			Name: "operation_success_total", Help: "Service operations that completed.",
		}, []string{"operation", "service"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace, Subsystem: o.subsystem,
			Name: "operation_failures_total", Help: "Service operations that returned an error.",
		}, []string{"operation", "service"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: o.namespace, Subsystem: o.subsystem,
			Name: "operation_duration_seconds", Help: "Service operation latency.",
			Buckets: o.buckets,
		}, []string{"operation", "service"}),
		bridge: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace, Subsystem: o.subsystem,
			Name: "bridge_runs_total", Help: "External analysis runs by outcome.",
		}, []string{"outcome"}),
		artifacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace, Subsystem: o.subsystem,
			Name: "artifacts_written_total", Help: "Report and export files written.",
		}, []string{"kind"}),
		noData: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace, Subsystem: o.subsystem,
			Name: "no_data_total", Help: "Reports requested with nothing to render.",
		}, []string{"report"}),
	}

	for _, c := range []prometheus.Collector{m.attempts, m.successes, m.failures, m.durations, m.bridge, m.artifacts, m.noData} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.durations.WithLabelValues(operation, service).Observe(d.Seconds())
}

func (m *prometheusMetrics) RecordBridgeOutcome(_ context.Context, outcome string) {
	m.bridge.WithLabelValues(outcome).Inc()
}

func (m *prometheusMetrics) RecordArtifact(_ context.Context, kind string) {
	m.artifacts.WithLabelValues(kind).Inc()
}

func (m *prometheusMetrics) RecordNoData(_ context.Context, report string) {
	m.noData.WithLabelValues(report).Inc()
}

type noop struct{}

// NewNoop returns a recorder that discards everything.
func NewNoop() AnalyticsMetrics { return noop{} }

func (noop) RecordOperationAttempt(context.Context, string, string)                 {}
func (noop) RecordOperationSuccess(context.Context, string, string)                 {}
func (noop) RecordOperationFailure(context.Context, string, string)                 {}
func (noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (noop) RecordBridgeOutcome(context.Context, string)                            {}
func (noop) RecordArtifact(context.Context, string)                                 {}
func (noop) RecordNoData(context.Context, string)                                   {}
