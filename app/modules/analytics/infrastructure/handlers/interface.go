package analyticshandlers

import (
	"context"
	"net/http"

	analyticsevents "github.com/Black-And-White-Club/team-ledger/pkg/events/analytics"
	"github.com/Black-And-White-Club/team-ledger/pkg/handlerwrapper"
)

// Handlers serves report requests arriving over the event bus and HTTP.
type Handlers interface {
	HandleReportRequested(ctx context.Context, payload *analyticsevents.ReportRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleExportRequested(ctx context.Context, payload *analyticsevents.ExportRequestedPayloadV1) ([]handlerwrapper.Result, error)

	HandleHTTPMemberStatistics(w http.ResponseWriter, r *http.Request)
	HandleHTTPMatchStatistics(w http.ResponseWriter, r *http.Request)
	HandleHTTPParticipations(w http.ResponseWriter, r *http.Request)
	HandleHTTPGenerateReport(w http.ResponseWriter, r *http.Request)
	HandleHTTPExport(w http.ResponseWriter, r *http.Request)
	HandleHTTPDeleteMember(w http.ResponseWriter, r *http.Request)
}
