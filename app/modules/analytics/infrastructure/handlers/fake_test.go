package analyticshandlers

import (
	"context"

	analyticsservice "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/application"
	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/export"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	trace []string

	GetMemberStatisticsFunc       func(ctx context.Context) ([]analyticsdomain.MemberStatistics, error)
	GetMatchStatisticsFunc        func(ctx context.Context) ([]analyticsdomain.MatchStatistics, error)
	ListParticipationDetailsFunc  func(ctx context.Context) ([]analyticsdomain.ParticipationDetail, error)
	GeneratePerformanceReportFunc func(ctx context.Context) (*analyticsservice.PerformanceReport, error)
	GenerateMatchChartsFunc       func(ctx context.Context) (*analyticsservice.MatchReport, error)
	GenerateScheduleReportFunc    func(ctx context.Context) (*analyticsservice.ScheduleReport, error)
	ExportTablesFunc              func(ctx context.Context, format string) (*export.Result, error)
	DeleteMemberFunc              func(ctx context.Context, memberID int64) error
}

func (f *FakeService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeService) GetMemberStatistics(ctx context.Context) ([]analyticsdomain.MemberStatistics, error) {
	f.record("GetMemberStatistics")
	if f.GetMemberStatisticsFunc != nil {
		return f.GetMemberStatisticsFunc(ctx)
	}
	return nil, nil
}

func (f *FakeService) GetMatchStatistics(ctx context.Context) ([]analyticsdomain.MatchStatistics, error) {
	f.record("GetMatchStatistics")
	if f.GetMatchStatisticsFunc != nil {
		return f.GetMatchStatisticsFunc(ctx)
	}
	return nil, nil
}

func (f *FakeService) ListParticipationDetails(ctx context.Context) ([]analyticsdomain.ParticipationDetail, error) {
	f.record("ListParticipationDetails")
	if f.ListParticipationDetailsFunc != nil {
		return f.ListParticipationDetailsFunc(ctx)
	}
	return nil, nil
}

func (f *FakeService) GeneratePerformanceReport(ctx context.Context) (*analyticsservice.PerformanceReport, error) {
	f.record("GeneratePerformanceReport")
	if f.GeneratePerformanceReportFunc != nil {
		return f.GeneratePerformanceReportFunc(ctx)
	}
	return &analyticsservice.PerformanceReport{}, nil
}

func (f *FakeService) GenerateMatchCharts(ctx context.Context) (*analyticsservice.MatchReport, error) {
	f.record("GenerateMatchCharts")
	if f.GenerateMatchChartsFunc != nil {
		return f.GenerateMatchChartsFunc(ctx)
	}
	return nil, analyticsdomain.ErrNoData
}

func (f *FakeService) GenerateScheduleReport(ctx context.Context) (*analyticsservice.ScheduleReport, error) {
	f.record("GenerateScheduleReport")
	if f.GenerateScheduleReportFunc != nil {
		return f.GenerateScheduleReportFunc(ctx)
	}
	return nil, analyticsdomain.ErrNoData
}

func (f *FakeService) ExportTables(ctx context.Context, format string) (*export.Result, error) {
	f.record("ExportTables")
	if f.ExportTablesFunc != nil {
		return f.ExportTablesFunc(ctx, format)
	}
	return &export.Result{Format: export.FormatCSV}, nil
}

func (f *FakeService) DeleteMember(ctx context.Context, memberID int64) error {
	f.record("DeleteMember")
	if f.DeleteMemberFunc != nil {
		return f.DeleteMemberFunc(ctx, memberID)
	}
	return nil
}

var _ analyticsservice.Service = (*FakeService)(nil)
