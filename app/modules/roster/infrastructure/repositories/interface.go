package rosterdb

import (
	"context"

	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
	"github.com/uptrace/bun"
)

// Repository is the record store adapter over the four roster tables.
// Every list method returns rows ordered by identity.
//
// Error semantics:
//   - ErrNotFound: DeleteMember matched no member
//   - Other errors: infrastructure failures, wrapped with the method name
type Repository interface {
	ListMembers(ctx context.Context, db bun.IDB) ([]analyticsdomain.Member, error)
	ListMatches(ctx context.Context, db bun.IDB) ([]analyticsdomain.Match, error)
	ListParticipations(ctx context.Context, db bun.IDB) ([]analyticsdomain.Participation, error)
	ListScheduleEntries(ctx context.Context, db bun.IDB) ([]analyticsdomain.ScheduleEntry, error)

	// ListParticipationDetails joins participation rows with member names and
	// "opponent (date)" match labels. Dangling references produce empty labels.
	ListParticipationDetails(ctx context.Context, db bun.IDB) ([]analyticsdomain.ParticipationDetail, error)

	// ListScheduleRows joins schedule entries with the assigned member's name,
	// ordered by date text then identity.
	ListScheduleRows(ctx context.Context, db bun.IDB) ([]analyticsdomain.ScheduleRow, error)

	InsertMember(ctx context.Context, db bun.IDB, m *Member) error
	InsertMatch(ctx context.Context, db bun.IDB, m *Match) error
	InsertParticipation(ctx context.Context, db bun.IDB, p *Participation) error
	InsertScheduleEntry(ctx context.Context, db bun.IDB, s *ScheduleEntry) error

	// DeleteMember removes a member with their participation rows and the schedule
	// entries assigned to them. Run it inside a transaction.
	DeleteMember(ctx context.Context, db bun.IDB, memberID int64) error
}
