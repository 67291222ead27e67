package rostermigrations

import (
	"context"
	"fmt"

	rosterdb "github.com/Black-And-White-Club/team-ledger/app/modules/roster/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating roster tables...")
		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			models := []any{
				(*rosterdb.Member)(nil),
				(*rosterdb.Match)(nil),
				(*rosterdb.Participation)(nil),
				(*rosterdb.ScheduleEntry)(nil),
			}
			for _, model := range models {
				if _, err := tx.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
					return fmt.Errorf("failed to create table for %T: %w", model, err)
				}
			}
			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_match_participation_member_id ON match_participation(member_id)`,
				`CREATE INDEX IF NOT EXISTS idx_match_participation_match_id ON match_participation(match_id)`,
				`CREATE INDEX IF NOT EXISTS idx_schedule_date ON schedule(date)`,
			}
			for _, stmt := range indexes {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("failed to create index: %w", err)
				}
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping roster tables...")
		for _, table := range []string{"schedule", "match_participation", "matches", "members"} {
			if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
				return fmt.Errorf("failed to drop %s: %w", table, err)
			}
		}
		return nil
	})
}
