package analyticsdomain

import "strings"

// Outcome is the result of a match from the team's point of view.
type Outcome string

const (
	OutcomeWin  Outcome = "Win"
	OutcomeLoss Outcome = "Loss"
	OutcomeDraw Outcome = "Draw"
)

// Outcomes lists the valid outcomes in display order.
var Outcomes = []Outcome{OutcomeWin, OutcomeLoss, OutcomeDraw}

// Valid reports whether o is one of Win, Loss or Draw.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeWin, OutcomeLoss, OutcomeDraw:
		return true
	}
	return false
}

// ExperienceLevel is a member's experience tier.
type ExperienceLevel string

const (
	ExperienceNovice       ExperienceLevel = "novice"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

// Rank orders tiers: novice < intermediate < advanced. Unknown tiers rank 0.
func (e ExperienceLevel) Rank() int {
	switch ExperienceLevel(strings.ToLower(strings.TrimSpace(string(e)))) {
	case ExperienceNovice:
		return 1
	case ExperienceIntermediate:
		return 2
	case ExperienceAdvanced:
		return 3
	}
	return 0
}

// Member is a roster entry.
type Member struct {
	ID              int64
	Name            string
	Position        string
	JoinDate        string
	ExperienceLevel ExperienceLevel
}

// Match is a single fixture. Result may be empty when the outcome was never recorded.
type Match struct {
	ID         int64
	Date       string
	Opponent   string
	Tournament string
	Result     Outcome
	Score      string
}

// Participation is one member's role and score in one match.
// Either reference may dangle; the aggregator tolerates that.
type Participation struct {
	ID               int64
	MemberID         int64
	MatchID          int64
	Role             string
	PerformanceScore float64
}

// ScheduleEntry is a duty slot. AssignedMemberID nil means unassigned.
type ScheduleEntry struct {
	ID               int64
	Date             string
	TimeSlot         string
	Activity         string
	AssignedMemberID *int64
}

// ParticipationDetail is a participation row joined with display labels.
type ParticipationDetail struct {
	ID               int64
	MemberName       string
	MatchInfo        string
	Role             string
	PerformanceScore float64
}

// ScheduleRow is a schedule entry joined with the assigned member's name.
// AssignedMember is nil when the entry is unassigned or the member no longer exists.
type ScheduleRow struct {
	Date           string
	TimeSlot       string
	Activity       string
	AssignedMember *string
}

// Snapshot is a point-in-time read of the base tables.
type Snapshot struct {
	Members        []Member
	Matches        []Match
	Participations []Participation
}

// MemberStatistics is derived per member. AvgPerformance is nil when the member
// has no participation rows.
type MemberStatistics struct {
	ID              int64
	Name            string
	Position        string
	ExperienceLevel ExperienceLevel
	MatchesPlayed   int
	AvgPerformance  *float64
	Wins            int
}

// MatchStatistics is derived per match. AvgPerformance is nil when nobody played.
type MatchStatistics struct {
	ID               int64
	Date             string
	Opponent         string
	Tournament       string
	Result           Outcome
	Score            string
	ParticipantCount int
	AvgPerformance   *float64
}
