package analyticsservice

import (
	"context"

	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/bridge"
	rosterdb "github.com/Black-And-White-Club/team-ledger/app/modules/roster/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Roster Repo
// ------------------------

type FakeRosterRepo struct {
	trace []string

	ListMembersFunc              func(ctx context.Context, db bun.IDB) ([]analyticsdomain.Member, error)
	ListMatchesFunc              func(ctx context.Context, db bun.IDB) ([]analyticsdomain.Match, error)
	ListParticipationsFunc       func(ctx context.Context, db bun.IDB) ([]analyticsdomain.Participation, error)
	ListScheduleEntriesFunc      func(ctx context.Context, db bun.IDB) ([]analyticsdomain.ScheduleEntry, error)
	ListParticipationDetailsFunc func(ctx context.Context, db bun.IDB) ([]analyticsdomain.ParticipationDetail, error)
	ListScheduleRowsFunc         func(ctx context.Context, db bun.IDB) ([]analyticsdomain.ScheduleRow, error)
	DeleteMemberFunc             func(ctx context.Context, db bun.IDB, memberID int64) error
}

func NewFakeRosterRepo() *FakeRosterRepo {
	return &FakeRosterRepo{
		trace: []string{},
	}
}

func (f *FakeRosterRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRosterRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// --- Repository Interface Implementation ---

func (f *FakeRosterRepo) ListMembers(ctx context.Context, db bun.IDB) ([]analyticsdomain.Member, error) {
	f.record("ListMembers")
	if f.ListMembersFunc != nil {
		return f.ListMembersFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeRosterRepo) ListMatches(ctx context.Context, db bun.IDB) ([]analyticsdomain.Match, error) {
	f.record("ListMatches")
	if f.ListMatchesFunc != nil {
		return f.ListMatchesFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeRosterRepo) ListParticipations(ctx context.Context, db bun.IDB) ([]analyticsdomain.Participation, error) {
	f.record("ListParticipations")
	if f.ListParticipationsFunc != nil {
		return f.ListParticipationsFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeRosterRepo) ListScheduleEntries(ctx context.Context, db bun.IDB) ([]analyticsdomain.ScheduleEntry, error) {
	f.record("ListScheduleEntries")
	if f.ListScheduleEntriesFunc != nil {
		return f.ListScheduleEntriesFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeRosterRepo) ListParticipationDetails(ctx context.Context, db bun.IDB) ([]analyticsdomain.ParticipationDetail, error) {
	f.record("ListParticipationDetails")
	if f.ListParticipationDetailsFunc != nil {
		return f.ListParticipationDetailsFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeRosterRepo) ListScheduleRows(ctx context.Context, db bun.IDB) ([]analyticsdomain.ScheduleRow, error) {
	f.record("ListScheduleRows")
	if f.ListScheduleRowsFunc != nil {
		return f.ListScheduleRowsFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeRosterRepo) InsertMember(ctx context.Context, db bun.IDB, m *rosterdb.Member) error {
	f.record("InsertMember")
	return nil
}

func (f *FakeRosterRepo) InsertMatch(ctx context.Context, db bun.IDB, m *rosterdb.Match) error {
	f.record("InsertMatch")
	return nil
}

func (f *FakeRosterRepo) InsertParticipation(ctx context.Context, db bun.IDB, p *rosterdb.Participation) error {
	f.record("InsertParticipation")
	return nil
}

func (f *FakeRosterRepo) InsertScheduleEntry(ctx context.Context, db bun.IDB, s *rosterdb.ScheduleEntry) error {
	f.record("InsertScheduleEntry")
	return nil
}

func (f *FakeRosterRepo) DeleteMember(ctx context.Context, db bun.IDB, memberID int64) error {
	f.record("DeleteMember")
	if f.DeleteMemberFunc != nil {
		return f.DeleteMemberFunc(ctx, db, memberID)
	}
	return nil
}

var _ rosterdb.Repository = (*FakeRosterRepo)(nil)

// ------------------------
// Fake Analyzer
// ------------------------

type FakeAnalyzer struct {
	AnalyzeFunc func(ctx context.Context, stats []analyticsdomain.MemberStatistics) bridge.Result
	calls       int
}

func (f *FakeAnalyzer) Analyze(ctx context.Context, stats []analyticsdomain.MemberStatistics) bridge.Result {
	f.calls++
	if f.AnalyzeFunc != nil {
		return f.AnalyzeFunc(ctx, stats)
	}
	return bridge.Result{Outcome: bridge.OutcomeSucceeded}
}

var _ bridge.Analyzer = (*FakeAnalyzer)(nil)
