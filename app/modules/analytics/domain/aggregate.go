package analyticsdomain

// ComputeMemberStatistics left-joins participations onto members and the linked
// matches, returning one row per member in input order.
func ComputeMemberStatistics(s Snapshot) []MemberStatistics {
	outcomes := make(map[int64]Outcome, len(s.Matches))
	for _, m := range s.Matches {
		outcomes[m.ID] = m.Result
	}

	groups := make(map[int64]*accumulator, len(s.Members))
	for _, p := range s.Participations {
		acc, ok := groups[p.MemberID]
		if !ok {
			acc = &accumulator{}
			groups[p.MemberID] = acc
		}
		acc.add(p.PerformanceScore)
		// A dangling match reference yields the zero Outcome, which is not a win.
		if outcomes[p.MatchID] == OutcomeWin {
			acc.wins++
		}
	}

	stats := make([]MemberStatistics, 0, len(s.Members))
	for _, m := range s.Members {
		row := MemberStatistics{
			ID:              m.ID,
			Name:            m.Name,
			Position:        m.Position,
			ExperienceLevel: m.ExperienceLevel,
		}
		if acc, ok := groups[m.ID]; ok {
			row.MatchesPlayed = acc.count
			row.AvgPerformance = acc.mean()
			row.Wins = acc.wins
		}
		stats = append(stats, row)
	}
	return stats
}

// ComputeMatchStatistics left-joins participations onto matches, returning one row
// per match in input order.
func ComputeMatchStatistics(s Snapshot) []MatchStatistics {
	groups := make(map[int64]*accumulator, len(s.Matches))
	for _, p := range s.Participations {
		acc, ok := groups[p.MatchID]
		if !ok {
			acc = &accumulator{}
			groups[p.MatchID] = acc
		}
		acc.add(p.PerformanceScore)
	}

	stats := make([]MatchStatistics, 0, len(s.Matches))
	for _, m := range s.Matches {
		row := MatchStatistics{
			ID:         m.ID,
			Date:       m.Date,
			Opponent:   m.Opponent,
			Tournament: m.Tournament,
			Result:     m.Result,
			Score:      m.Score,
		}
		if acc, ok := groups[m.ID]; ok {
			row.ParticipantCount = acc.count
			row.AvgPerformance = acc.mean()
		}
		stats = append(stats, row)
	}
	return stats
}

type accumulator struct {
	count int
	sum   float64
	wins  int
}

func (a *accumulator) add(score float64) {
	a.count++
	a.sum += score
}

// mean is nil over zero rows.
func (a *accumulator) mean() *float64 {
	if a.count == 0 {
		return nil
	}
	v := a.sum / float64(a.count)
	return &v
}
