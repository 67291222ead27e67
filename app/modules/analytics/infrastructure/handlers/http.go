package analyticshandlers

import (
	"errors"
	"net/http"
	"strconv"

	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
	rosterdb "github.com/Black-And-White-Club/team-ledger/app/modules/roster/infrastructure/repositories"
	analyticsevents "github.com/Black-And-White-Club/team-ledger/pkg/events/analytics"
	"github.com/Black-And-White-Club/team-ledger/pkg/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

type errorBody struct {
	Error string `json:"error"`
}

type runBody struct {
	RunID  string `json:"run_id"`
	Report string `json:"report"`
	Status string `json:"status"`
	Result any    `json:"result,omitempty"`
	// Complete carries the same summary an event subscriber would receive.
	Complete analyticsevents.ReportCompletedPayloadV1 `json:"summary"`
}

const (
	statusComplete = "complete"
	statusNoData   = "no_data"
)

func (h *AnalyticsHandlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to encode response", attr.Error(err))
	}
}

func (h *AnalyticsHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var unknown *UnknownReportError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &unknown), errors.Is(err, analyticsdomain.ErrUnsupportedFormat):
		status = http.StatusBadRequest
	case errors.Is(err, rosterdb.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Request failed",
			attr.ExtractCorrelationID(r.Context()),
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
	}
	h.writeJSON(w, r, status, errorBody{Error: err.Error()})
}

// HandleHTTPMemberStatistics serves GET /api/reports/members.
func (h *AnalyticsHandlers) HandleHTTPMemberStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetMemberStatistics(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, memberStatsDTOs(stats))
}

// HandleHTTPMatchStatistics serves GET /api/reports/matches/stats.
func (h *AnalyticsHandlers) HandleHTTPMatchStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetMatchStatistics(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, matchStatsDTOs(stats))
}

// HandleHTTPParticipations serves GET /api/reports/participations.
func (h *AnalyticsHandlers) HandleHTTPParticipations(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ListParticipationDetails(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, participationDTOs(rows))
}

// HandleHTTPGenerateReport serves POST /api/reports/{kind}.
func (h *AnalyticsHandlers) HandleHTTPGenerateReport(w http.ResponseWriter, r *http.Request) {
	h.serveRun(w, r, chi.URLParam(r, "kind"), "")
}

// HandleHTTPExport serves POST /api/exports?format=csv|xlsx.
func (h *AnalyticsHandlers) HandleHTTPExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	h.serveRun(w, r, analyticsevents.ReportExport, format)
}

func (h *AnalyticsHandlers) serveRun(w http.ResponseWriter, r *http.Request, kind, format string) {
	ctx, runID := h.runContext(r.Context(), r.Header.Get("X-Run-ID"))
	r = r.WithContext(ctx)

	rep, err := h.generate(ctx, runID, kind, format)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	body := runBody{RunID: runID, Report: kind, Status: statusComplete, Result: rep.Payload, Complete: rep.Complete}
	if rep.Complete.NoData {
		body.Status = statusNoData
	}
	h.writeJSON(w, r, http.StatusOK, body)
}

// HandleHTTPDeleteMember serves DELETE /api/members/{memberID}.
func (h *AnalyticsHandlers) HandleHTTPDeleteMember(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "memberID"), 10, 64)
	if err != nil {
		h.writeJSON(w, r, http.StatusBadRequest, errorBody{Error: "invalid member id"})
		return
	}
	if err := h.service.DeleteMember(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
