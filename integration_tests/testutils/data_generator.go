package testutils

import (
	"context"
	"fmt"
	"time"

	rosterdb "github.com/Black-And-White-Club/team-ledger/app/modules/roster/infrastructure/repositories"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/uptrace/bun"
)

// TestDataGenerator creates roster rows for integration tests.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a generator; without a seed the clock is used.
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	s := time.Now().UnixNano()
	if len(seed) > 0 {
		s = seed[0]
	}
	return &TestDataGenerator{faker: gofakeit.New(uint64(s)), seed: s}
}

// Seed returns the generator seed, for reproducing a failure.
func (g *TestDataGenerator) Seed() int64 { return g.seed }

// Member returns an unsaved member.
func (g *TestDataGenerator) Member() *rosterdb.Member {
	return &rosterdb.Member{
		Name:            g.faker.Name(),
		Position:        g.faker.RandomString([]string{"Forward", "Midfielder", "Defender", "Keeper"}),
		JoinDate:        g.faker.DateRange(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).Format(time.DateOnly),
		ExperienceLevel: g.faker.RandomString([]string{"novice", "intermediate", "advanced"}),
	}
}

// Match returns an unsaved match on date with the given result ("" for none).
func (g *TestDataGenerator) Match(date, result string) *rosterdb.Match {
	m := &rosterdb.Match{
		Date:       date,
		Opponent:   g.faker.City() + " FC",
		Tournament: g.faker.RandomString([]string{"League", "Cup"}),
		Result:     result,
	}
	if result != "" {
		m.Score = fmt.Sprintf("%d-%d", g.faker.Number(0, 5), g.faker.Number(0, 5))
	}
	return m
}

// InsertMembers saves n generated members.
func (g *TestDataGenerator) InsertMembers(ctx context.Context, t TB, db bun.IDB, repo rosterdb.Repository, n int) []*rosterdb.Member {
	t.Helper()
	out := make([]*rosterdb.Member, 0, n)
	for range n {
		m := g.Member()
		if err := repo.InsertMember(ctx, db, m); err != nil {
			t.Fatalf("insert member: %v", err)
		}
		out = append(out, m)
	}
	return out
}

// TB is the subset of testing.TB the helpers need.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}
