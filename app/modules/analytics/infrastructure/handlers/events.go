package analyticshandlers

import (
	"context"

	analyticsevents "github.com/Black-And-White-Club/team-ledger/pkg/events/analytics"
	"github.com/Black-And-White-Club/team-ledger/pkg/handlerwrapper"
	"github.com/Black-And-White-Club/team-ledger/pkg/observability/attr"
)

// HandleReportRequested runs the requested report and publishes its outcome.
// Report failures become ReportFailedV1 events rather than redeliveries.
func (h *AnalyticsHandlers) HandleReportRequested(
	ctx context.Context,
	payload *analyticsevents.ReportRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	ctx, runID := h.runContext(ctx, payload.RunID)
	h.logger.InfoContext(ctx, "Report requested",
		attr.ExtractCorrelationID(ctx),
		attr.String("report", payload.Report),
	)
	return h.publishOutcome(ctx, runID, payload.Report, "")
}

// HandleExportRequested exports the base tables in the requested format.
func (h *AnalyticsHandlers) HandleExportRequested(
	ctx context.Context,
	payload *analyticsevents.ExportRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	ctx, runID := h.runContext(ctx, payload.RunID)
	h.logger.InfoContext(ctx, "Export requested",
		attr.ExtractCorrelationID(ctx),
		attr.String("format", payload.Format),
	)
	return h.publishOutcome(ctx, runID, analyticsevents.ReportExport, payload.Format)
}

func (h *AnalyticsHandlers) publishOutcome(ctx context.Context, runID, kind, format string) ([]handlerwrapper.Result, error) {
	meta := map[string]string{handlerwrapper.CorrelationIDKey: runID}

	rep, err := h.generate(ctx, runID, kind, format)
	if err != nil {
		h.logger.WarnContext(ctx, "Report failed",
			attr.ExtractCorrelationID(ctx),
			attr.String("report", kind),
			attr.Error(err),
		)
		return []handlerwrapper.Result{{
			Topic:    analyticsevents.ReportFailedV1,
			Payload:  analyticsevents.ReportFailedPayloadV1{RunID: runID, Report: kind, Reason: err.Error()},
			Metadata: meta,
		}}, nil
	}

	return []handlerwrapper.Result{{
		Topic:    analyticsevents.ReportCompletedV1,
		Payload:  rep.Complete,
		Metadata: meta,
	}}, nil
}
