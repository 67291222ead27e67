package rosterdb

import (
	"context"
	"fmt"

	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new roster repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// ListMembers returns every member ordered by ID.
func (r *Impl) ListMembers(ctx context.Context, db bun.IDB) ([]analyticsdomain.Member, error) {
	db = r.resolveDB(db)
	var rows []Member
	if err := db.NewSelect().Model(&rows).OrderExpr("m.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListMembers: %w", err)
	}
	out := make([]analyticsdomain.Member, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

// ListMatches returns every match ordered by ID.
func (r *Impl) ListMatches(ctx context.Context, db bun.IDB) ([]analyticsdomain.Match, error) {
	db = r.resolveDB(db)
	var rows []Match
	if err := db.NewSelect().Model(&rows).OrderExpr("ma.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListMatches: %w", err)
	}
	out := make([]analyticsdomain.Match, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

// ListParticipations returns every participation row ordered by ID.
func (r *Impl) ListParticipations(ctx context.Context, db bun.IDB) ([]analyticsdomain.Participation, error) {
	db = r.resolveDB(db)
	var rows []Participation
	if err := db.NewSelect().Model(&rows).OrderExpr("mp.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListParticipations: %w", err)
	}
	out := make([]analyticsdomain.Participation, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

// ListScheduleEntries returns every schedule entry ordered by ID.
func (r *Impl) ListScheduleEntries(ctx context.Context, db bun.IDB) ([]analyticsdomain.ScheduleEntry, error) {
	db = r.resolveDB(db)
	var rows []ScheduleEntry
	if err := db.NewSelect().Model(&rows).OrderExpr("s.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListScheduleEntries: %w", err)
	}
	out := make([]analyticsdomain.ScheduleEntry, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

// ListParticipationDetails returns participation rows with member and match labels.
func (r *Impl) ListParticipationDetails(ctx context.Context, db bun.IDB) ([]analyticsdomain.ParticipationDetail, error) {
	db = r.resolveDB(db)
	var rows []participationDetailRow
	err := db.NewSelect().
		TableExpr("match_participation AS mp").
		ColumnExpr("mp.id").
		ColumnExpr("COALESCE(m.name, '') AS member_name").
		ColumnExpr("COALESCE(ma.opponent || ' (' || ma.date || ')', '') AS match_info").
		ColumnExpr("mp.role").
		ColumnExpr("mp.performance_score").
		Join("LEFT JOIN members AS m ON m.id = mp.member_id").
		Join("LEFT JOIN matches AS ma ON ma.id = mp.match_id").
		OrderExpr("mp.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("ListParticipationDetails: %w", err)
	}
	out := make([]analyticsdomain.ParticipationDetail, 0, len(rows))
	for _, row := range rows {
		out = append(out, analyticsdomain.ParticipationDetail{
			ID:               row.ID,
			MemberName:       row.MemberName,
			MatchInfo:        row.MatchInfo,
			Role:             row.Role,
			PerformanceScore: row.PerformanceScore,
		})
	}
	return out, nil
}

// ListScheduleRows returns schedule entries with the assigned member's name.
func (r *Impl) ListScheduleRows(ctx context.Context, db bun.IDB) ([]analyticsdomain.ScheduleRow, error) {
	db = r.resolveDB(db)
	var rows []scheduleRow
	err := db.NewSelect().
		TableExpr("schedule AS s").
		ColumnExpr("s.date, s.time_slot, s.activity").
		ColumnExpr("m.name AS assigned_member").
		Join("LEFT JOIN members AS m ON m.id = s.assigned_member_id").
		OrderExpr("s.date ASC, s.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("ListScheduleRows: %w", err)
	}
	out := make([]analyticsdomain.ScheduleRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, analyticsdomain.ScheduleRow{
			Date:           row.Date,
			TimeSlot:       row.TimeSlot,
			Activity:       row.Activity,
			AssignedMember: row.AssignedMember,
		})
	}
	return out, nil
}

func (r *Impl) InsertMember(ctx context.Context, db bun.IDB, m *Member) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(m).Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("InsertMember: %w", err)
	}
	return nil
}

func (r *Impl) InsertMatch(ctx context.Context, db bun.IDB, m *Match) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(m).Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("InsertMatch: %w", err)
	}
	return nil
}

func (r *Impl) InsertParticipation(ctx context.Context, db bun.IDB, p *Participation) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(p).Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("InsertParticipation: %w", err)
	}
	return nil
}

func (r *Impl) InsertScheduleEntry(ctx context.Context, db bun.IDB, s *ScheduleEntry) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(s).Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("InsertScheduleEntry: %w", err)
	}
	return nil
}

// DeleteMember removes the member, their participations and their schedule entries.
func (r *Impl) DeleteMember(ctx context.Context, db bun.IDB, memberID int64) error {
	db = r.resolveDB(db)
	if _, err := db.NewDelete().
		Model((*Participation)(nil)).
		Where("member_id = ?", memberID).
		Exec(ctx); err != nil {
		return fmt.Errorf("DeleteMember participations: %w", err)
	}
	if _, err := db.NewDelete().
		Model((*ScheduleEntry)(nil)).
		Where("assigned_member_id = ?", memberID).
		Exec(ctx); err != nil {
		return fmt.Errorf("DeleteMember schedule: %w", err)
	}
	res, err := db.NewDelete().
		Model((*Member)(nil)).
		Where("id = ?", memberID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("DeleteMember: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
