package analyticsservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/bridge"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/export"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/render"
	rosterdb "github.com/Black-And-White-Club/team-ledger/app/modules/roster/infrastructure/repositories"
	"github.com/Black-And-White-Club/team-ledger/pkg/observability/attr"
	analyticsmetrics "github.com/Black-And-White-Club/team-ledger/pkg/observability/metrics/analytics"
	"github.com/Black-And-White-Club/team-ledger/pkg/results"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "AnalyticsService"

// Options tunes the service.
type Options struct {
	// AnalysisTimeout bounds the external analysis run. Zero means no bound
	// beyond the caller's context.
	AnalysisTimeout time.Duration
}

// AnalyticsService implements the Service interface.
type AnalyticsService struct {
	repo     rosterdb.Repository
	analyzer bridge.Analyzer
	renderer ReportRenderer
	exporter TableExporter
	logger   *slog.Logger
	metrics  analyticsmetrics.AnalyticsMetrics
	tracer   trace.Tracer
	db       *bun.DB
	opts     Options
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(
	repo rosterdb.Repository,
	analyzer bridge.Analyzer,
	renderer ReportRenderer,
	exporter TableExporter,
	logger *slog.Logger,
	metrics analyticsmetrics.AnalyticsMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts Options,
) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{
		repo:     repo,
		analyzer: analyzer,
		renderer: renderer,
		exporter: exporter,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		db:       db,
		opts:     opts,
	}
}

// GetMemberStatistics computes per-member statistics from the current tables.
func (s *AnalyticsService) GetMemberStatistics(ctx context.Context) ([]analyticsdomain.MemberStatistics, error) {
	result, err := withTelemetry(s, ctx, "GetMemberStatistics", "members", func(ctx context.Context) (results.OperationResult[[]analyticsdomain.MemberStatistics, error], error) {
		return runInTx(s, ctx, s.memberStatisticsLogic)
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

func (s *AnalyticsService) memberStatisticsLogic(ctx context.Context, db bun.IDB) (results.OperationResult[[]analyticsdomain.MemberStatistics, error], error) {
	snap, err := s.loadSnapshot(ctx, db)
	if err != nil {
		return results.OperationResult[[]analyticsdomain.MemberStatistics, error]{}, err
	}
	return results.SuccessResult[[]analyticsdomain.MemberStatistics, error](analyticsdomain.ComputeMemberStatistics(snap)), nil
}

// GetMatchStatistics computes per-match statistics from the current tables.
func (s *AnalyticsService) GetMatchStatistics(ctx context.Context) ([]analyticsdomain.MatchStatistics, error) {
	result, err := withTelemetry(s, ctx, "GetMatchStatistics", "matches", func(ctx context.Context) (results.OperationResult[[]analyticsdomain.MatchStatistics, error], error) {
		return runInTx(s, ctx, s.matchStatisticsLogic)
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

func (s *AnalyticsService) matchStatisticsLogic(ctx context.Context, db bun.IDB) (results.OperationResult[[]analyticsdomain.MatchStatistics, error], error) {
	snap, err := s.loadSnapshot(ctx, db)
	if err != nil {
		return results.OperationResult[[]analyticsdomain.MatchStatistics, error]{}, err
	}
	return results.SuccessResult[[]analyticsdomain.MatchStatistics, error](analyticsdomain.ComputeMatchStatistics(snap)), nil
}

// ListParticipationDetails returns participation rows labelled with member and match.
func (s *AnalyticsService) ListParticipationDetails(ctx context.Context) ([]analyticsdomain.ParticipationDetail, error) {
	listTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[[]analyticsdomain.ParticipationDetail, error], error) {
		rows, err := s.repo.ListParticipationDetails(ctx, db)
		if err != nil {
			return results.OperationResult[[]analyticsdomain.ParticipationDetail, error]{}, fmt.Errorf("failed to list participations: %w", err)
		}
		return results.SuccessResult[[]analyticsdomain.ParticipationDetail, error](rows), nil
	}

	result, err := withTelemetry(s, ctx, "ListParticipationDetails", "match_participation", func(ctx context.Context) (results.OperationResult[[]analyticsdomain.ParticipationDetail, error], error) {
		return runInTx(s, ctx, listTx)
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

// GeneratePerformanceReport computes member statistics, then runs the external
// analysis outside the read transaction.
func (s *AnalyticsService) GeneratePerformanceReport(ctx context.Context) (*PerformanceReport, error) {
	result, err := withTelemetry(s, ctx, "GeneratePerformanceReport", "members", func(ctx context.Context) (results.OperationResult[*PerformanceReport, error], error) {
		statsResult, err := runInTx(s, ctx, s.memberStatisticsLogic)
		if err != nil {
			return results.OperationResult[*PerformanceReport, error]{}, err
		}
		stats := *statsResult.Success

		report := &PerformanceReport{
			Statistics: stats,
			Table:      render.MemberStatsTable(stats),
		}
		if s.analyzer != nil {
			report.Analysis = s.runAnalysis(ctx, stats)
		}
		return results.SuccessResult[*PerformanceReport, error](report), nil
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

func (s *AnalyticsService) runAnalysis(ctx context.Context, stats []analyticsdomain.MemberStatistics) bridge.Result {
	if s.opts.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.AnalysisTimeout)
		defer cancel()
	}
	res := s.analyzer.Analyze(ctx, stats)
	if s.metrics != nil {
		s.metrics.RecordBridgeOutcome(ctx, string(res.Outcome))
		for range res.Artifacts {
			s.metrics.RecordArtifact(ctx, "analysis")
		}
	}
	if res.Outcome == bridge.OutcomeFailed {
		s.logger.WarnContext(ctx, "Performance analysis degraded",
			attr.ExtractCorrelationID(ctx),
			attr.String("outcome", string(res.Outcome)),
			attr.Error(res.Err),
		)
	}
	return res
}

// GenerateMatchCharts renders the match statistics chart bundle.
func (s *AnalyticsService) GenerateMatchCharts(ctx context.Context) (*MatchReport, error) {
	result, err := withTelemetry(s, ctx, "GenerateMatchCharts", "matches", func(ctx context.Context) (results.OperationResult[*MatchReport, error], error) {
		statsResult, err := runInTx(s, ctx, s.matchStatisticsLogic)
		if err != nil {
			return results.OperationResult[*MatchReport, error]{}, err
		}
		stats := *statsResult.Success
		if len(stats) == 0 {
			s.recordNoData(ctx, "matches")
			return results.FailureResult[*MatchReport, error](analyticsdomain.ErrNoData), nil
		}

		chart, err := s.renderer.MatchChartBundle(ctx, stats)
		if err != nil {
			return results.OperationResult[*MatchReport, error]{}, fmt.Errorf("failed to render match charts: %w", err)
		}
		s.recordArtifact(ctx, "chart")
		return results.SuccessResult[*MatchReport, error](&MatchReport{
			Statistics: stats,
			Table:      s.renderer.MatchStatsTable(stats),
			Chart:      chart,
		}), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// GenerateScheduleReport renders the schedule table, timeline and workbook.
func (s *AnalyticsService) GenerateScheduleReport(ctx context.Context) (*ScheduleReport, error) {
	scheduleTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[[]analyticsdomain.ScheduleRow, error], error) {
		rows, err := s.repo.ListScheduleRows(ctx, db)
		if err != nil {
			return results.OperationResult[[]analyticsdomain.ScheduleRow, error]{}, fmt.Errorf("failed to list schedule: %w", err)
		}
		return results.SuccessResult[[]analyticsdomain.ScheduleRow, error](rows), nil
	}

	result, err := withTelemetry(s, ctx, "GenerateScheduleReport", "schedule", func(ctx context.Context) (results.OperationResult[*ScheduleReport, error], error) {
		rowsResult, err := runInTx(s, ctx, scheduleTx)
		if err != nil {
			return results.OperationResult[*ScheduleReport, error]{}, err
		}
		rows := *rowsResult.Success
		if len(rows) == 0 {
			s.recordNoData(ctx, "schedule")
			return results.FailureResult[*ScheduleReport, error](analyticsdomain.ErrNoData), nil
		}

		rendered, err := s.renderer.ScheduleReport(ctx, rows)
		if err != nil {
			return results.OperationResult[*ScheduleReport, error]{}, fmt.Errorf("failed to render schedule: %w", err)
		}
		s.recordArtifact(ctx, "chart")
		s.recordArtifact(ctx, "workbook")
		return results.SuccessResult[*ScheduleReport, error](&ScheduleReport{
			ScheduleRender: rendered,
			Table:          render.ScheduleTableText(rendered.Lines),
		}), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// exportOutcome carries a partial export through the result type; Err lists
// the tables that failed.
type exportOutcome struct {
	Result export.Result
	Err    error
}

// ExportTables writes the four base tables in the given format.
func (s *AnalyticsService) ExportTables(ctx context.Context, format string) (*export.Result, error) {
	result, err := withTelemetry(s, ctx, "ExportTables", format, func(ctx context.Context) (results.OperationResult[*exportOutcome, error], error) {
		if _, err := export.ParseFormat(format); err != nil {
			return results.FailureResult[*exportOutcome, error](err), nil
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*exportOutcome, error], error) {
			res, exportErr := s.exporter.ExportAll(ctx, s.tableSource(db), format)
			for range res.Artifacts {
				s.recordArtifact(ctx, "export")
			}
			return results.SuccessResult[*exportOutcome, error](&exportOutcome{Result: res, Err: exportErr}), nil
		})
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	out := *result.Success
	if out.Err != nil {
		s.logger.WarnContext(ctx, "Export completed with failures",
			attr.ExtractCorrelationID(ctx),
			attr.Int("written", len(out.Result.Artifacts)),
			attr.Error(out.Err),
		)
	}
	return &out.Result, out.Err
}

// tableSource reads base tables through the given handle.
func (s *AnalyticsService) tableSource(db bun.IDB) export.TableSource {
	return export.TableSourceFunc(func(ctx context.Context, name string) (analyticsdomain.Table, error) {
		switch name {
		case analyticsdomain.TableMembers:
			rows, err := s.repo.ListMembers(ctx, db)
			return analyticsdomain.MembersTable(rows), err
		case analyticsdomain.TableMatches:
			rows, err := s.repo.ListMatches(ctx, db)
			return analyticsdomain.MatchesTable(rows), err
		case analyticsdomain.TableParticipations:
			rows, err := s.repo.ListParticipations(ctx, db)
			return analyticsdomain.ParticipationsTable(rows), err
		case analyticsdomain.TableSchedule:
			rows, err := s.repo.ListScheduleEntries(ctx, db)
			return analyticsdomain.ScheduleTable(rows), err
		}
		return analyticsdomain.Table{}, fmt.Errorf("unknown table %q", name)
	})
}

// DeleteMember removes a member together with their participations and
// schedule assignments.
func (s *AnalyticsService) DeleteMember(ctx context.Context, memberID int64) error {
	deleteTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		if err := s.repo.DeleteMember(ctx, db, memberID); err != nil {
			if errors.Is(err, rosterdb.ErrNotFound) {
				return results.FailureResult[bool, error](err), nil
			}
			return results.OperationResult[bool, error]{}, fmt.Errorf("failed to delete member: %w", err)
		}
		return results.SuccessResult[bool, error](true), nil
	}

	result, err := withTelemetry(s, ctx, "DeleteMember", strconv.FormatInt(memberID, 10), func(ctx context.Context) (results.OperationResult[bool, error], error) {
		return runInWriteTx(s, ctx, deleteTx)
	})
	if err != nil {
		return err
	}
	if result.IsFailure() {
		return *result.Failure
	}
	return nil
}

func (s *AnalyticsService) loadSnapshot(ctx context.Context, db bun.IDB) (analyticsdomain.Snapshot, error) {
	members, err := s.repo.ListMembers(ctx, db)
	if err != nil {
		return analyticsdomain.Snapshot{}, fmt.Errorf("failed to list members: %w", err)
	}
	matches, err := s.repo.ListMatches(ctx, db)
	if err != nil {
		return analyticsdomain.Snapshot{}, fmt.Errorf("failed to list matches: %w", err)
	}
	parts, err := s.repo.ListParticipations(ctx, db)
	if err != nil {
		return analyticsdomain.Snapshot{}, fmt.Errorf("failed to list participations: %w", err)
	}
	return analyticsdomain.Snapshot{Members: members, Matches: matches, Participations: parts}, nil
}

func (s *AnalyticsService) recordNoData(ctx context.Context, report string) {
	if s.metrics != nil {
		s.metrics.RecordNoData(ctx, report)
	}
}

func (s *AnalyticsService) recordArtifact(ctx context.Context, kind string) {
	if s.metrics != nil {
		s.metrics.RecordArtifact(ctx, kind)
	}
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *AnalyticsService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}

	return result, nil
}

// runInTx runs a read-only operation against one consistent snapshot. Postgres
// gets a READ ONLY transaction; other dialects a plain one.
func runInTx[S any, F any](
	s *AnalyticsService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}
	opts := &sql.TxOptions{}
	if s.db.Dialect().Name() == dialect.PG {
		opts.ReadOnly = true
	}
	return execTx(s, ctx, opts, fn)
}

// runInWriteTx runs a mutating operation in a read-write transaction.
func runInWriteTx[S any, F any](
	s *AnalyticsService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return execTx(s, ctx, &sql.TxOptions{}, fn)
}

func execTx[S any, F any](
	s *AnalyticsService,
	ctx context.Context,
	opts *sql.TxOptions,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}

var _ Service = (*AnalyticsService)(nil)
