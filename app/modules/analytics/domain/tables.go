package analyticsdomain

// Base table names, used to name export artifacts.
const (
	TableMembers        = "members"
	TableMatches        = "matches"
	TableParticipations = "match_participation"
	TableSchedule       = "schedule"
)

// BaseTables lists the exportable base tables in export order.
var BaseTables = []string{TableMembers, TableMatches, TableParticipations, TableSchedule}

// Table is a fixed-schema tabular view of one entity table. Cell values are
// string, int64, float64 or nil.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// MembersTable renders members with the store's column names.
func MembersTable(members []Member) Table {
	t := Table{Name: TableMembers, Columns: []string{"id", "name", "position", "join_date", "experience_level"}}
	for _, m := range members {
		t.Rows = append(t.Rows, []any{m.ID, m.Name, m.Position, m.JoinDate, string(m.ExperienceLevel)})
	}
	return t
}

// MatchesTable renders matches with the store's column names.
func MatchesTable(matches []Match) Table {
	t := Table{Name: TableMatches, Columns: []string{"id", "date", "opponent", "tournament", "result", "score"}}
	for _, m := range matches {
		t.Rows = append(t.Rows, []any{m.ID, m.Date, m.Opponent, m.Tournament, string(m.Result), m.Score})
	}
	return t
}

// ParticipationsTable renders participation rows with the store's column names.
func ParticipationsTable(rows []Participation) Table {
	t := Table{Name: TableParticipations, Columns: []string{"id", "member_id", "match_id", "role", "performance_score"}}
	for _, p := range rows {
		t.Rows = append(t.Rows, []any{p.ID, p.MemberID, p.MatchID, p.Role, p.PerformanceScore})
	}
	return t
}

// ScheduleTable renders schedule entries; an unassigned entry has a nil cell.
func ScheduleTable(entries []ScheduleEntry) Table {
	t := Table{Name: TableSchedule, Columns: []string{"id", "date", "time_slot", "activity", "assigned_member_id"}}
	for _, e := range entries {
		var assigned any
		if e.AssignedMemberID != nil {
			assigned = *e.AssignedMemberID
		}
		t.Rows = append(t.Rows, []any{e.ID, e.Date, e.TimeSlot, e.Activity, assigned})
	}
	return t
}
