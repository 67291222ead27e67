package rosterdb

import (
	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
	"github.com/uptrace/bun"
)

// Member is a roster row. Dates are stored as entered; normalization happens at
// report time.
type Member struct {
	bun.BaseModel   `bun:"table:members,alias:m"`
	ID              int64  `bun:"id,pk,autoincrement"`
	Name            string `bun:"name,notnull"`
	Position        string `bun:"position"`
	JoinDate        string `bun:"join_date"`
	ExperienceLevel string `bun:"experience_level"`
}

// Match is a fixture row. Result is NULL until recorded.
type Match struct {
	bun.BaseModel `bun:"table:matches,alias:ma"`
	ID            int64  `bun:"id,pk,autoincrement"`
	Date          string `bun:"date,notnull"`
	Opponent      string `bun:"opponent,notnull"`
	Tournament    string `bun:"tournament"`
	Result        string `bun:"result,nullzero"`
	Score         string `bun:"score"`
}

// Participation records one member playing one match.
type Participation struct {
	bun.BaseModel    `bun:"table:match_participation,alias:mp"`
	ID               int64   `bun:"id,pk,autoincrement"`
	MemberID         int64   `bun:"member_id"`
	MatchID          int64   `bun:"match_id"`
	Role             string  `bun:"role"`
	PerformanceScore float64 `bun:"performance_score"`
}

// ScheduleEntry is a duty slot; AssignedMemberID is NULL when unassigned.
type ScheduleEntry struct {
	bun.BaseModel    `bun:"table:schedule,alias:s"`
	ID               int64  `bun:"id,pk,autoincrement"`
	Date             string `bun:"date,notnull"`
	TimeSlot         string `bun:"time_slot"`
	Activity         string `bun:"activity"`
	AssignedMemberID *int64 `bun:"assigned_member_id"`
}

// participationDetailRow is the scan target for the participation listing join.
type participationDetailRow struct {
	ID               int64   `bun:"id"`
	MemberName       string  `bun:"member_name"`
	MatchInfo        string  `bun:"match_info"`
	Role             string  `bun:"role"`
	PerformanceScore float64 `bun:"performance_score"`
}

// scheduleRow is the scan target for the schedule join.
type scheduleRow struct {
	Date           string  `bun:"date"`
	TimeSlot       string  `bun:"time_slot"`
	Activity       string  `bun:"activity"`
	AssignedMember *string `bun:"assigned_member"`
}

func (m *Member) ToDomain() analyticsdomain.Member {
	return analyticsdomain.Member{
		ID:              m.ID,
		Name:            m.Name,
		Position:        m.Position,
		JoinDate:        m.JoinDate,
		ExperienceLevel: analyticsdomain.ExperienceLevel(m.ExperienceLevel),
	}
}

func (m *Match) ToDomain() analyticsdomain.Match {
	return analyticsdomain.Match{
		ID:         m.ID,
		Date:       m.Date,
		Opponent:   m.Opponent,
		Tournament: m.Tournament,
		Result:     analyticsdomain.Outcome(m.Result),
		Score:      m.Score,
	}
}

func (p *Participation) ToDomain() analyticsdomain.Participation {
	return analyticsdomain.Participation{
		ID:               p.ID,
		MemberID:         p.MemberID,
		MatchID:          p.MatchID,
		Role:             p.Role,
		PerformanceScore: p.PerformanceScore,
	}
}

func (s *ScheduleEntry) ToDomain() analyticsdomain.ScheduleEntry {
	return analyticsdomain.ScheduleEntry{
		ID:               s.ID,
		Date:             s.Date,
		TimeSlot:         s.TimeSlot,
		Activity:         s.Activity,
		AssignedMemberID: s.AssignedMemberID,
	}
}
