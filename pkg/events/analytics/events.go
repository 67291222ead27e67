// Package analyticsevents defines the report request and result events.
package analyticsevents

// Topics
const (
	ReportRequestedV1 = "analytics.report.requested.v1"
	ExportRequestedV1 = "analytics.export.requested.v1"
	ReportCompletedV1 = "analytics.report.completed.v1"
	ReportFailedV1    = "analytics.report.failed.v1"
)

// Report kinds accepted by ReportRequestedV1.
const (
	ReportMembers     = "members"
	ReportPerformance = "performance"
	ReportMatches     = "matches"
	ReportSchedule    = "schedule"
	ReportExport      = "export"
)

// ReportRequestedPayloadV1 asks for one report to be generated.
type ReportRequestedPayloadV1 struct {
	RunID  string `json:"run_id"`
	Report string `json:"report"`
}

// ExportRequestedPayloadV1 asks for the base tables to be exported.
type ExportRequestedPayloadV1 struct {
	RunID  string `json:"run_id"`
	Format string `json:"format"`
}

// ReportCompletedPayloadV1 reports the artifacts of a finished run. NoData is
// set when there was nothing to render.
type ReportCompletedPayloadV1 struct {
	RunID           string   `json:"run_id"`
	Report          string   `json:"report"`
	Rows            int      `json:"rows"`
	Artifacts       []string `json:"artifacts,omitempty"`
	AnalysisOutcome string   `json:"analysis_outcome,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
	NoData          bool     `json:"no_data,omitempty"`
}

// ReportFailedPayloadV1 reports a run that could not complete.
type ReportFailedPayloadV1 struct {
	RunID  string `json:"run_id"`
	Report string `json:"report"`
	Reason string `json:"reason"`
}
