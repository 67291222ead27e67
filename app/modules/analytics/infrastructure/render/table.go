package render

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
)

func formatAvg(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

// MemberStatsTable renders per-member statistics as an aligned text table. An
// undefined average prints as "-".
func MemberStatsTable(stats []analyticsdomain.MemberStatistics) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tName\tPosition\tExperience\tPlayed\tAvg\tWins")
	for _, s := range stats {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%d\n",
			s.ID, s.Name, s.Position, s.ExperienceLevel, s.MatchesPlayed, formatAvg(s.AvgPerformance), s.Wins)
	}
	_ = tw.Flush()
	return sb.String()
}

// MatchStatsTable renders per-match statistics, most recent date first.
func (r *Renderer) MatchStatsTable(stats []analyticsdomain.MatchStatistics) string {
	type row struct {
		s analyticsdomain.MatchStatistics
		d analyticsdomain.NormalizedDate
	}
	rows := make([]row, len(stats))
	for i, s := range stats {
		rows[i] = row{s: s, d: r.dates().Normalize(s.Date)}
	}
	slices.SortStableFunc(rows, func(a, b row) int {
		switch {
		case a.d.OK && b.d.OK:
			return b.d.Time.Compare(a.d.Time)
		default:
			return a.d.Compare(b.d)
		}
	})

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tOpponent\tTournament\tResult\tScore\tPlayers\tAvg")
	for _, x := range rows {
		result := string(x.s.Result)
		if result == "" {
			result = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			x.d.Key(), x.s.Opponent, x.s.Tournament, result, x.s.Score, x.s.ParticipantCount, formatAvg(x.s.AvgPerformance))
	}
	_ = tw.Flush()
	return sb.String()
}

// ScheduleTableText renders schedule lines as an aligned text table.
func ScheduleTableText(lines []ScheduleLine) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tTime slot\tActivity\tAssigned")
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.Date, l.TimeSlot, l.Activity, l.Assignee)
	}
	_ = tw.Flush()
	return sb.String()
}

// ParticipationTable renders the joined participation listing.
func ParticipationTable(rows []analyticsdomain.ParticipationDetail) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMember\tMatch\tRole\tScore")
	for _, p := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			p.ID, p.MemberName, p.MatchInfo, p.Role, strconv.FormatFloat(p.PerformanceScore, 'f', -1, 64))
	}
	_ = tw.Flush()
	return sb.String()
}
