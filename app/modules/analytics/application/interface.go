package analyticsservice

import (
	"context"

	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/bridge"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/export"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/render"
)

// Service is the analytics and reporting API used by the CLI, HTTP and event
// handlers. Report methods return analyticsdomain.ErrNoData when there is
// nothing to render.
type Service interface {
	GetMemberStatistics(ctx context.Context) ([]analyticsdomain.MemberStatistics, error)
	GetMatchStatistics(ctx context.Context) ([]analyticsdomain.MatchStatistics, error)
	ListParticipationDetails(ctx context.Context) ([]analyticsdomain.ParticipationDetail, error)

	// GeneratePerformanceReport computes member statistics and hands them to the
	// external analysis tool. The statistics are returned whatever the tool does.
	GeneratePerformanceReport(ctx context.Context) (*PerformanceReport, error)
	GenerateMatchCharts(ctx context.Context) (*MatchReport, error)
	GenerateScheduleReport(ctx context.Context) (*ScheduleReport, error)

	// ExportTables writes every base table. A non-nil report may accompany a
	// joined error listing the tables that failed.
	ExportTables(ctx context.Context, format string) (*export.Result, error)

	DeleteMember(ctx context.Context, memberID int64) error
}

// ReportRenderer draws chart and schedule artifacts.
type ReportRenderer interface {
	MatchChartBundle(ctx context.Context, stats []analyticsdomain.MatchStatistics) (render.Artifact, error)
	MatchStatsTable(stats []analyticsdomain.MatchStatistics) string
	ScheduleReport(ctx context.Context, rows []analyticsdomain.ScheduleRow) (render.ScheduleRender, error)
}

// TableExporter serializes the base tables.
type TableExporter interface {
	ExportAll(ctx context.Context, src export.TableSource, format string) (export.Result, error)
}

// PerformanceReport is the member statistics table plus the analysis outcome.
type PerformanceReport struct {
	Statistics []analyticsdomain.MemberStatistics
	Table      string
	Analysis   bridge.Result
}

// MatchReport is per-match statistics with the chart bundle.
type MatchReport struct {
	Statistics []analyticsdomain.MatchStatistics
	Table      string
	Chart      render.Artifact
}

// ScheduleReport is the rendered schedule with its text table.
type ScheduleReport struct {
	render.ScheduleRender
	Table string
}
