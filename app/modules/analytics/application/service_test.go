package analyticsservice

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/bridge"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/export"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/render"
	rosterdb "github.com/Black-And-White-Club/team-ledger/app/modules/roster/infrastructure/repositories"
	analyticsmetrics "github.com/Black-And-White-Club/team-ledger/pkg/observability/metrics/analytics"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

func ptr[T any](v T) *T { return &v }

func newTestService(t *testing.T, repo *FakeRosterRepo, analyzer bridge.Analyzer, opts Options) *AnalyticsService {
	t.Helper()
	dir := t.TempDir()
	renderer := render.NewRenderer(dir, slog.Default())
	renderer.Dates.Now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	return NewAnalyticsService(
		repo,
		analyzer,
		renderer,
		export.NewExporter(dir, slog.Default()),
		slog.Default(),
		analyticsmetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		nil,
		opts,
	)
}

// seedRoster: Alice played a win and a loss, Bob never played.
func seedRoster(f *FakeRosterRepo) {
	f.ListMembersFunc = func(context.Context, bun.IDB) ([]analyticsdomain.Member, error) {
		return []analyticsdomain.Member{
			{ID: 1, Name: "Alice", Position: "Forward", ExperienceLevel: analyticsdomain.ExperienceAdvanced},
			{ID: 2, Name: "Bob", Position: "Keeper", ExperienceLevel: analyticsdomain.ExperienceNovice},
		}, nil
	}
	f.ListMatchesFunc = func(context.Context, bun.IDB) ([]analyticsdomain.Match, error) {
		return []analyticsdomain.Match{
			{ID: 10, Date: "2024-05-01", Opponent: "Rovers", Result: analyticsdomain.OutcomeWin, Score: "2-1"},
			{ID: 11, Date: "2024-05-08", Opponent: "United", Result: analyticsdomain.OutcomeLoss, Score: "0-1"},
		}, nil
	}
	f.ListParticipationsFunc = func(context.Context, bun.IDB) ([]analyticsdomain.Participation, error) {
		return []analyticsdomain.Participation{
			{ID: 100, MemberID: 1, MatchID: 10, Role: "Starter", PerformanceScore: 8},
			{ID: 101, MemberID: 1, MatchID: 11, Role: "Starter", PerformanceScore: 6},
		}, nil
	}
}

func TestGetMemberStatistics(t *testing.T) {
	tests := []struct {
		name      string
		setupRepo func(*FakeRosterRepo)
		want      []analyticsdomain.MemberStatistics
		wantErr   bool
	}{
		{
			name:      "win and loss plus idle member",
			setupRepo: seedRoster,
			want: []analyticsdomain.MemberStatistics{
				{ID: 1, Name: "Alice", Position: "Forward", ExperienceLevel: analyticsdomain.ExperienceAdvanced, MatchesPlayed: 2, AvgPerformance: ptr(7.0), Wins: 1},
				{ID: 2, Name: "Bob", Position: "Keeper", ExperienceLevel: analyticsdomain.ExperienceNovice},
			},
		},
		{
			name: "repository error",
			setupRepo: func(f *FakeRosterRepo) {
				f.ListMatchesFunc = func(context.Context, bun.IDB) ([]analyticsdomain.Match, error) {
					return nil, errors.New("database connection failed")
				}
			},
			wantErr: true,
		},
		{
			name: "panic is recovered",
			setupRepo: func(f *FakeRosterRepo) {
				f.ListMembersFunc = func(context.Context, bun.IDB) ([]analyticsdomain.Member, error) {
					panic("boom")
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := NewFakeRosterRepo()
			tt.setupRepo(fakeRepo)
			svc := newTestService(t, fakeRepo, &FakeAnalyzer{}, Options{})

			got, err := svc.GetMemberStatistics(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("GetMemberStatistics() mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, []string{"ListMembers", "ListMatches", "ListParticipations"}, fakeRepo.Trace())
		})
	}
}

func TestGeneratePerformanceReport(t *testing.T) {
	tests := []struct {
		name        string
		analyzer    *FakeAnalyzer
		opts        Options
		wantOutcome bridge.Outcome
	}{
		{
			name: "tool unavailable still returns statistics",
			analyzer: &FakeAnalyzer{AnalyzeFunc: func(context.Context, []analyticsdomain.MemberStatistics) bridge.Result {
				return bridge.Result{Outcome: bridge.OutcomeSkipped, Summary: bridge.SkippedMessage, Err: bridge.ErrToolUnavailable}
			}},
			wantOutcome: bridge.OutcomeSkipped,
		},
		{
			name: "tool failure still returns statistics",
			analyzer: &FakeAnalyzer{AnalyzeFunc: func(context.Context, []analyticsdomain.MemberStatistics) bridge.Result {
				return bridge.Result{Outcome: bridge.OutcomeFailed, ExitCode: 1, Diagnostics: "error in library(ggplot2)", Err: errors.New("exit 1")}
			}},
			wantOutcome: bridge.OutcomeFailed,
		},
		{
			name: "timeout is applied to the analysis context",
			analyzer: &FakeAnalyzer{AnalyzeFunc: func(ctx context.Context, _ []analyticsdomain.MemberStatistics) bridge.Result {
				if _, ok := ctx.Deadline(); !ok {
					return bridge.Result{Outcome: bridge.OutcomeFailed, Err: errors.New("no deadline")}
				}
				return bridge.Result{Outcome: bridge.OutcomeSucceeded}
			}},
			opts:        Options{AnalysisTimeout: time.Minute},
			wantOutcome: bridge.OutcomeSucceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := NewFakeRosterRepo()
			seedRoster(fakeRepo)
			svc := newTestService(t, fakeRepo, tt.analyzer, tt.opts)

			report, err := svc.GeneratePerformanceReport(context.Background())

			require.NoError(t, err)
			require.Len(t, report.Statistics, 2)
			assert.Equal(t, 1, report.Statistics[0].Wins)
			assert.Contains(t, report.Table, "Alice")
			assert.Equal(t, tt.wantOutcome, report.Analysis.Outcome)
			assert.Equal(t, 1, tt.analyzer.calls)
		})
	}
}

func TestGenerateMatchCharts(t *testing.T) {
	t.Run("no matches", func(t *testing.T) {
		svc := newTestService(t, NewFakeRosterRepo(), &FakeAnalyzer{}, Options{})

		report, err := svc.GenerateMatchCharts(context.Background())

		assert.Nil(t, report)
		assert.ErrorIs(t, err, analyticsdomain.ErrNoData)
	})

	t.Run("renders chart bundle", func(t *testing.T) {
		fakeRepo := NewFakeRosterRepo()
		seedRoster(fakeRepo)
		svc := newTestService(t, fakeRepo, &FakeAnalyzer{}, Options{})

		report, err := svc.GenerateMatchCharts(context.Background())

		require.NoError(t, err)
		require.Len(t, report.Statistics, 2)
		assert.Equal(t, 1, report.Statistics[0].ParticipantCount)
		assert.Equal(t, render.MatchChartFile, report.Chart.Name)
		_, statErr := os.Stat(report.Chart.Path)
		assert.NoError(t, statErr)
	})
}

func TestGenerateScheduleReport(t *testing.T) {
	t.Run("no entries", func(t *testing.T) {
		svc := newTestService(t, NewFakeRosterRepo(), &FakeAnalyzer{}, Options{})

		_, err := svc.GenerateScheduleReport(context.Background())

		assert.ErrorIs(t, err, analyticsdomain.ErrNoData)
	})

	t.Run("unassigned placeholder", func(t *testing.T) {
		fakeRepo := NewFakeRosterRepo()
		fakeRepo.ListScheduleRowsFunc = func(context.Context, bun.IDB) ([]analyticsdomain.ScheduleRow, error) {
			return []analyticsdomain.ScheduleRow{
				{Date: "2024-05-02", TimeSlot: "09:00", Activity: "Kit wash"},
				{Date: "2024-05-03", TimeSlot: "18:00", Activity: "Training", AssignedMember: ptr("Alice")},
			}, nil
		}
		svc := newTestService(t, fakeRepo, &FakeAnalyzer{}, Options{})

		report, err := svc.GenerateScheduleReport(context.Background())

		require.NoError(t, err)
		require.Len(t, report.Lines, 2)
		assert.Equal(t, "unassigned", report.Lines[0].Assignee)
		assert.Equal(t, "Alice", report.Lines[1].Assignee)
		assert.Contains(t, report.Table, "unassigned")
	})
}

func TestExportTables(t *testing.T) {
	tests := []struct {
		name          string
		format        string
		setupRepo     func(*FakeRosterRepo)
		wantArtifacts int
		wantErrIs     error
		wantTableErr  string
	}{
		{
			name:          "csv",
			format:        "csv",
			setupRepo:     seedRoster,
			wantArtifacts: 4,
		},
		{
			name:          "excel alias",
			format:        "excel",
			setupRepo:     seedRoster,
			wantArtifacts: 4,
		},
		{
			name:      "unsupported format",
			format:    "pdf",
			setupRepo: seedRoster,
			wantErrIs: analyticsdomain.ErrUnsupportedFormat,
		},
		{
			name:   "one table fails",
			format: "csv",
			setupRepo: func(f *FakeRosterRepo) {
				seedRoster(f)
				f.ListScheduleEntriesFunc = func(context.Context, bun.IDB) ([]analyticsdomain.ScheduleEntry, error) {
					return nil, errors.New("relation \"schedule\" does not exist")
				}
			},
			wantArtifacts: 3,
			wantTableErr:  analyticsdomain.TableSchedule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := NewFakeRosterRepo()
			tt.setupRepo(fakeRepo)
			svc := newTestService(t, fakeRepo, &FakeAnalyzer{}, Options{})

			res, err := svc.ExportTables(context.Background(), tt.format)

			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				assert.Nil(t, res)
				return
			}
			if tt.wantTableErr != "" {
				var tableErr *export.TableExportError
				require.ErrorAs(t, err, &tableErr)
				assert.Equal(t, tt.wantTableErr, tableErr.Table)
			} else {
				require.NoError(t, err)
			}
			require.NotNil(t, res)
			assert.Len(t, res.Artifacts, tt.wantArtifacts)
		})
	}
}

func TestListParticipationDetails(t *testing.T) {
	fakeRepo := NewFakeRosterRepo()
	fakeRepo.ListParticipationDetailsFunc = func(context.Context, bun.IDB) ([]analyticsdomain.ParticipationDetail, error) {
		return []analyticsdomain.ParticipationDetail{{ID: 1, MemberName: "Alice", MatchInfo: "Rovers (2024-05-01)", Role: "Starter", PerformanceScore: 8}}, nil
	}
	svc := newTestService(t, fakeRepo, &FakeAnalyzer{}, Options{})

	got, err := svc.ListParticipationDetails(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Rovers (2024-05-01)", got[0].MatchInfo)
}

func TestDeleteMember(t *testing.T) {
	tests := []struct {
		name      string
		deleteErr error
		wantErrIs error
		wantErr   bool
	}{
		{name: "deleted"},
		{name: "not found", deleteErr: rosterdb.ErrNotFound, wantErrIs: rosterdb.ErrNotFound, wantErr: true},
		{name: "database error", deleteErr: errors.New("deadlock detected"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := NewFakeRosterRepo()
			fakeRepo.DeleteMemberFunc = func(context.Context, bun.IDB, int64) error { return tt.deleteErr }
			svc := newTestService(t, fakeRepo, &FakeAnalyzer{}, Options{})

			err := svc.DeleteMember(context.Background(), 1)

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
			}
		})
	}
}
