package rosterdb

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, model := range []any{(*Member)(nil), (*Match)(nil), (*Participation)(nil), (*ScheduleEntry)(nil)} {
		_, err := db.NewDropTable().Model(model).IfExists().Exec(ctx)
		require.NoError(t, err)
		_, err = db.NewCreateTable().Model(model).Exec(ctx)
		require.NoError(t, err)
	}
	return db
}

type seeded struct {
	alice, bob *Member
	m1, m2     *Match
}

func seed(t *testing.T, repo Repository) seeded {
	t.Helper()
	ctx := context.Background()
	s := seeded{
		alice: &Member{Name: "Alice", Position: "Forward", JoinDate: "2023-01-10", ExperienceLevel: "advanced"},
		bob:   &Member{Name: "Bob", Position: "Keeper", JoinDate: "2023-02-01", ExperienceLevel: "novice"},
		m1:    &Match{Date: "2024-05-01", Opponent: "Rovers", Tournament: "League", Result: "Win", Score: "2-1"},
		m2:    &Match{Date: "2024-05-08", Opponent: "United", Tournament: "Cup"},
	}
	require.NoError(t, repo.InsertMember(ctx, nil, s.alice))
	require.NoError(t, repo.InsertMember(ctx, nil, s.bob))
	require.NoError(t, repo.InsertMatch(ctx, nil, s.m1))
	require.NoError(t, repo.InsertMatch(ctx, nil, s.m2))
	require.NoError(t, repo.InsertParticipation(ctx, nil, &Participation{MemberID: s.alice.ID, MatchID: s.m1.ID, Role: "Starter", PerformanceScore: 8}))
	require.NoError(t, repo.InsertParticipation(ctx, nil, &Participation{MemberID: s.bob.ID, MatchID: s.m1.ID, Role: "Sub", PerformanceScore: 6}))
	require.NoError(t, repo.InsertParticipation(ctx, nil, &Participation{MemberID: s.alice.ID, MatchID: s.m2.ID, Role: "Starter", PerformanceScore: 7}))
	require.NoError(t, repo.InsertScheduleEntry(ctx, nil, &ScheduleEntry{Date: "2024-05-03", TimeSlot: "18:00", Activity: "Training", AssignedMemberID: &s.alice.ID}))
	require.NoError(t, repo.InsertScheduleEntry(ctx, nil, &ScheduleEntry{Date: "2024-05-02", TimeSlot: "09:00", Activity: "Kit wash"}))
	return s
}

func TestImpl_ListAll(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	s := seed(t, repo)
	ctx := context.Background()

	members, err := repo.ListMembers(ctx, nil)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Alice", members[0].Name)
	assert.Equal(t, analyticsdomain.ExperienceLevel("advanced"), members[0].ExperienceLevel)

	matches, err := repo.ListMatches(ctx, db)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, analyticsdomain.OutcomeWin, matches[0].Result)
	assert.Equal(t, analyticsdomain.Outcome(""), matches[1].Result, "unrecorded result reads back empty")

	parts, err := repo.ListParticipations(ctx, nil)
	require.NoError(t, err)
	require.Len(t, parts, 3)
	assert.Equal(t, s.alice.ID, parts[0].MemberID)
	assert.InDelta(t, 8.0, parts[0].PerformanceScore, 1e-9)

	entries, err := repo.ListScheduleEntries(ctx, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].AssignedMemberID)
	assert.Nil(t, entries[1].AssignedMemberID)
}

func TestImpl_ListParticipationDetails(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	seed(t, repo)
	ctx := context.Background()

	// dangling member reference
	require.NoError(t, repo.InsertParticipation(ctx, nil, &Participation{MemberID: 999, MatchID: 1, Role: "Guest", PerformanceScore: 5}))

	details, err := repo.ListParticipationDetails(ctx, nil)
	require.NoError(t, err)
	require.Len(t, details, 4)
	assert.Equal(t, "Alice", details[0].MemberName)
	assert.Equal(t, "Rovers (2024-05-01)", details[0].MatchInfo)
	assert.Equal(t, "United (2024-05-08)", details[2].MatchInfo)
	assert.Equal(t, "", details[3].MemberName)
	assert.Equal(t, "Guest", details[3].Role)
}

func TestImpl_ListScheduleRows(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	seed(t, repo)

	rows, err := repo.ListScheduleRows(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-05-02", rows[0].Date)
	assert.Nil(t, rows[0].AssignedMember)
	require.NotNil(t, rows[1].AssignedMember)
	assert.Equal(t, "Alice", *rows[1].AssignedMember)
}

func TestImpl_DeleteMember(t *testing.T) {
	tests := []struct {
		name     string
		memberID func(s seeded) int64
		wantErr  error
		check    func(t *testing.T, repo Repository)
	}{
		{
			name:     "cascades to participations and schedule",
			memberID: func(s seeded) int64 { return s.alice.ID },
			check: func(t *testing.T, repo Repository) {
				ctx := context.Background()
				members, err := repo.ListMembers(ctx, nil)
				require.NoError(t, err)
				assert.Len(t, members, 1)
				parts, err := repo.ListParticipations(ctx, nil)
				require.NoError(t, err)
				assert.Len(t, parts, 1)
				entries, err := repo.ListScheduleEntries(ctx, nil)
				require.NoError(t, err)
				assert.Len(t, entries, 1)
				assert.Nil(t, entries[0].AssignedMemberID)
			},
		},
		{
			name:     "unknown member",
			memberID: func(seeded) int64 { return 424242 },
			wantErr:  ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			repo := NewRepository(db)
			s := seed(t, repo)

			err := db.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
				return repo.DeleteMember(ctx, tx, tt.memberID(s))
			})
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, repo)
			}
		})
	}
}
