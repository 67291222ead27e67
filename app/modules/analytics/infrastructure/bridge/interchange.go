package bridge

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
)

// InterchangeHeader is the column order the analysis script reads. Changing it
// breaks existing scripts.
var InterchangeHeader = []string{
	"id", "name", "position", "experience_level", "matches_played", "avg_performance", "wins",
}

// InterchangeRecord is one row of the interchange file.
type InterchangeRecord struct {
	ID              int64
	Name            string
	Position        string
	ExperienceLevel string
	MatchesPlayed   int
	AvgPerformance  *float64
	Wins            int
}

// NewInterchangeRecord maps member statistics onto the interchange row.
func NewInterchangeRecord(s analyticsdomain.MemberStatistics) InterchangeRecord {
	return InterchangeRecord{
		ID:              s.ID,
		Name:            s.Name,
		Position:        s.Position,
		ExperienceLevel: string(s.ExperienceLevel),
		MatchesPlayed:   s.MatchesPlayed,
		AvgPerformance:  s.AvgPerformance,
		Wins:            s.Wins,
	}
}

// Fields renders the record in header order. An undefined average is an empty cell.
func (r InterchangeRecord) Fields() []string {
	avg := ""
	if r.AvgPerformance != nil {
		avg = strconv.FormatFloat(*r.AvgPerformance, 'f', -1, 64)
	}
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.Name,
		r.Position,
		r.ExperienceLevel,
		strconv.Itoa(r.MatchesPlayed),
		avg,
		strconv.Itoa(r.Wins),
	}
}

// WriteInterchange writes the header and one record per member.
func WriteInterchange(w io.Writer, stats []analyticsdomain.MemberStatistics) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(InterchangeHeader); err != nil {
		return err
	}
	for _, s := range stats {
		if err := cw.Write(NewInterchangeRecord(s).Fields()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeInterchangeFile(path string, stats []analyticsdomain.MemberStatistics) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create interchange file: %w", err)
	}
	if err := WriteInterchange(f, stats); err != nil {
		_ = f.Close()
		return fmt.Errorf("write interchange file: %w", err)
	}
	return f.Close()
}
