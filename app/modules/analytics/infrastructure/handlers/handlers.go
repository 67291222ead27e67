package analyticshandlers

import (
	"context"
	"errors"
	"log/slog"

	analyticsservice "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/application"
	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
	analyticsevents "github.com/Black-And-White-Club/team-ledger/pkg/events/analytics"
	"github.com/Black-And-White-Club/team-ledger/pkg/observability/attr"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// AnalyticsHandlers implements the Handlers interface.
type AnalyticsHandlers struct {
	service  analyticsservice.Service
	logger   *slog.Logger
	tracer   trace.Tracer
	newRunID func() string
}

// NewAnalyticsHandlers creates a new AnalyticsHandlers instance.
func NewAnalyticsHandlers(
	service analyticsservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) *AnalyticsHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsHandlers{
		service:  service,
		logger:   logger,
		tracer:   tracer,
		newRunID: func() string { return uuid.NewString() },
	}
}

// runContext tags ctx with the run ID, minting one when the request has none.
func (h *AnalyticsHandlers) runContext(ctx context.Context, runID string) (context.Context, string) {
	if runID == "" {
		runID = attr.CorrelationID(ctx)
	}
	if runID == "" {
		runID = h.newRunID()
	}
	return attr.WithCorrelationID(ctx, runID), runID
}

// Report is the outcome of one report run, shared by the event and HTTP paths.
type Report struct {
	RunID    string
	Kind     string
	Payload  any
	Complete analyticsevents.ReportCompletedPayloadV1
}

// generate runs the named report. ErrNoData is folded into a completed run.
func (h *AnalyticsHandlers) generate(ctx context.Context, runID, kind, format string) (*Report, error) {
	rep := &Report{
		RunID:    runID,
		Kind:     kind,
		Complete: analyticsevents.ReportCompletedPayloadV1{RunID: runID, Report: kind},
	}

	switch kind {
	case analyticsevents.ReportMembers:
		stats, err := h.service.GetMemberStatistics(ctx)
		if err != nil {
			return nil, err
		}
		rep.Payload = memberStatsDTOs(stats)
		rep.Complete.Rows = len(stats)

	case analyticsevents.ReportPerformance:
		pr, err := h.service.GeneratePerformanceReport(ctx)
		if err != nil {
			return nil, err
		}
		rep.Payload = performanceDTO(pr)
		rep.Complete.Rows = len(pr.Statistics)
		rep.Complete.AnalysisOutcome = string(pr.Analysis.Outcome)
		rep.Complete.Summary = pr.Analysis.Summary
		rep.Complete.Artifacts = pr.Analysis.Artifacts
		if pr.Analysis.Err != nil {
			rep.Complete.Warnings = append(rep.Complete.Warnings, pr.Analysis.Err.Error())
		}

	case analyticsevents.ReportMatches:
		mr, err := h.service.GenerateMatchCharts(ctx)
		if errors.Is(err, analyticsdomain.ErrNoData) {
			rep.Complete.NoData = true
			return rep, nil
		}
		if err != nil {
			return nil, err
		}
		rep.Payload = matchStatsDTOs(mr.Statistics)
		rep.Complete.Rows = len(mr.Statistics)
		rep.Complete.Artifacts = []string{mr.Chart.Path}

	case analyticsevents.ReportSchedule:
		sr, err := h.service.GenerateScheduleReport(ctx)
		if errors.Is(err, analyticsdomain.ErrNoData) {
			rep.Complete.NoData = true
			return rep, nil
		}
		if err != nil {
			return nil, err
		}
		rep.Payload = scheduleDTO(sr)
		rep.Complete.Rows = len(sr.Lines)
		rep.Complete.Artifacts = []string{sr.Image.Path, sr.Workbook.Path}

	case analyticsevents.ReportExport:
		res, err := h.service.ExportTables(ctx, format)
		if res == nil || (len(res.Artifacts) == 0 && err != nil) {
			return nil, err
		}
		for _, a := range res.Artifacts {
			rep.Complete.Artifacts = append(rep.Complete.Artifacts, a.Path)
			rep.Complete.Rows += a.Rows
		}
		if err != nil {
			rep.Complete.Warnings = append(rep.Complete.Warnings, err.Error())
		}
		rep.Payload = exportDTO(res, err)

	default:
		return nil, &UnknownReportError{Kind: kind}
	}
	return rep, nil
}

// UnknownReportError is returned for a report kind the service does not offer.
type UnknownReportError struct {
	Kind string
}

func (e *UnknownReportError) Error() string {
	return "unknown report kind " + `"` + e.Kind + `"`
}
