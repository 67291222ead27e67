// Package rosterseed generates and loads a demo roster.
package rosterseed

import (
	"context"
	"fmt"
	"math"
	"time"

	rosterdb "github.com/Black-And-White-Club/team-ledger/app/modules/roster/infrastructure/repositories"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/uptrace/bun"
)

var (
	positions   = []string{"Forward", "Midfielder", "Defender", "Keeper"}
	levels      = []string{"novice", "intermediate", "advanced"}
	results     = []string{"Win", "Loss", "Draw"}
	tournaments = []string{"League", "Cup", "Friendly"}
	roles       = []string{"Starter", "Substitute"}
	slots       = []string{"09:00", "14:00", "18:00"}
	activities  = []string{"Training", "Kit wash", "Video review", "Fitness"}
)

// Options sizes the generated dataset.
type Options struct {
	Members      int
	Matches      int
	ScheduleDays int
	Seed         int64
	Start        time.Time
}

// DefaultOptions is a small club with a season's worth of fixtures.
func DefaultOptions() Options {
	return Options{
		Members:      12,
		Matches:      10,
		ScheduleDays: 7,
		Seed:         1,
		Start:        time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC),
	}
}

// Appearance links dataset members and matches by index.
type Appearance struct {
	Member, Match int
	Role          string
	Score         float64
}

// Duty is a schedule slot. Member is -1 when the slot is unassigned.
type Duty struct {
	Entry  rosterdb.ScheduleEntry
	Member int
}

// Dataset is a generated roster before IDs are assigned.
type Dataset struct {
	Members     []rosterdb.Member
	Matches     []rosterdb.Match
	Appearances []Appearance
	Duties      []Duty
}

// Generate builds a deterministic dataset for opts.Seed. The last match is left
// without a recorded result and a quarter of the duties are unassigned.
func Generate(opts Options) Dataset {
	faker := gofakeit.New(uint64(opts.Seed))
	var ds Dataset

	for range opts.Members {
		ds.Members = append(ds.Members, rosterdb.Member{
			Name:            faker.Name(),
			Position:        faker.RandomString(positions),
			JoinDate:        opts.Start.AddDate(0, -faker.Number(1, 36), 0).Format(time.DateOnly),
			ExperienceLevel: faker.RandomString(levels),
		})
	}

	for i := range opts.Matches {
		m := rosterdb.Match{
			Date:       opts.Start.AddDate(0, 0, 7*i).Format(time.DateOnly),
			Opponent:   faker.City() + " FC",
			Tournament: faker.RandomString(tournaments),
		}
		if i < opts.Matches-1 {
			m.Result = faker.RandomString(results)
			m.Score = fmt.Sprintf("%d-%d", faker.Number(0, 4), faker.Number(0, 4))
		}
		ds.Matches = append(ds.Matches, m)
	}

	if opts.Members > 0 {
		for match := range ds.Matches {
			order := make([]int, opts.Members)
			for i := range order {
				order[i] = i
			}
			faker.ShuffleAnySlice(order)
			lineup := order[:faker.Number(min(2, opts.Members), min(8, opts.Members))]
			for _, member := range lineup {
				ds.Appearances = append(ds.Appearances, Appearance{
					Member: member,
					Match:  match,
					Role:   faker.RandomString(roles),
					Score:  math.Round(faker.Float64Range(4, 10)*10) / 10,
				})
			}
		}
	}

	for day := range opts.ScheduleDays {
		date := opts.Start.AddDate(0, 0, day).Format(time.DateOnly)
		for _, slot := range slots {
			if !faker.Bool() {
				continue
			}
			d := Duty{
				Entry:  rosterdb.ScheduleEntry{Date: date, TimeSlot: slot, Activity: faker.RandomString(activities)},
				Member: -1,
			}
			if opts.Members > 0 && faker.Number(0, 3) > 0 {
				d.Member = faker.Number(0, opts.Members-1)
			}
			ds.Duties = append(ds.Duties, d)
		}
	}
	return ds
}

// Counts reports how many rows Load inserted.
type Counts struct {
	Members, Matches, Participations, Schedule int
}

// Load inserts ds in a single transaction, resolving indexes to the assigned IDs.
func Load(ctx context.Context, db *bun.DB, repo rosterdb.Repository, ds Dataset) (Counts, error) {
	var c Counts
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		members := make([]rosterdb.Member, len(ds.Members))
		copy(members, ds.Members)
		for i := range members {
			if err := repo.InsertMember(ctx, tx, &members[i]); err != nil {
				return err
			}
		}
		matches := make([]rosterdb.Match, len(ds.Matches))
		copy(matches, ds.Matches)
		for i := range matches {
			if err := repo.InsertMatch(ctx, tx, &matches[i]); err != nil {
				return err
			}
		}
		for _, a := range ds.Appearances {
			p := rosterdb.Participation{
				MemberID:         members[a.Member].ID,
				MatchID:          matches[a.Match].ID,
				Role:             a.Role,
				PerformanceScore: a.Score,
			}
			if err := repo.InsertParticipation(ctx, tx, &p); err != nil {
				return err
			}
		}
		for _, d := range ds.Duties {
			entry := d.Entry
			if d.Member >= 0 {
				id := members[d.Member].ID
				entry.AssignedMemberID = &id
			}
			if err := repo.InsertScheduleEntry(ctx, tx, &entry); err != nil {
				return err
			}
		}
		c = Counts{
			Members:        len(members),
			Matches:        len(matches),
			Participations: len(ds.Appearances),
			Schedule:       len(ds.Duties),
		}
		return nil
	})
	if err != nil {
		return Counts{}, fmt.Errorf("failed to load seed data: %w", err)
	}
	return c, nil
}
