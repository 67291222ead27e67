package main

import (
	"fmt"
	"strings"

	rostermigrations "github.com/Black-And-White-Club/team-ledger/app/modules/roster/infrastructure/repositories/migrations"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func newMigrateCommand(env *environment) *cli.Command {
	migrator := func(c *cli.Context) (*migrate.Migrator, error) {
		a, err := env.open(c.Context)
		if err != nil {
			return nil, err
		}
		return migrate.NewMigrator(a.DB, rostermigrations.Migrations), nil
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					m, err := migrator(c)
					if err != nil {
						return err
					}
					return m.Init(c.Context)
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: func(c *cli.Context) error {
					m, err := migrator(c)
					if err != nil {
						return err
					}
					if err := m.Init(c.Context); err != nil {
						return err
					}
					if err := m.Lock(c.Context); err != nil {
						return err
					}
					defer m.Unlock(c.Context) //nolint:errcheck

					group, err := m.Migrate(c.Context)
					if err != nil {
						return err
					}
					if group.IsZero() {
						fmt.Fprintln(c.App.Writer, "there are no new migrations to run (database is up to date)")
						return nil
					}
					fmt.Fprintf(c.App.Writer, "migrated to %s\n", group)
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: func(c *cli.Context) error {
					m, err := migrator(c)
					if err != nil {
						return err
					}
					if err := m.Lock(c.Context); err != nil {
						return err
					}
					defer m.Unlock(c.Context) //nolint:errcheck

					group, err := m.Rollback(c.Context)
					if err != nil {
						return err
					}
					if group.IsZero() {
						fmt.Fprintln(c.App.Writer, "there are no groups to roll back")
						return nil
					}
					fmt.Fprintf(c.App.Writer, "rolled back %s\n", group)
					return nil
				},
			},
			{
				Name:      "create_go",
				Usage:     "create Go migration",
				ArgsUsage: "<name words...>",
				Action: func(c *cli.Context) error {
					m, err := migrator(c)
					if err != nil {
						return err
					}
					name := strings.Join(c.Args().Slice(), "_")
					mf, err := m.CreateGoMigration(c.Context, name)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "created migration %s (%s)\n", mf.Name, mf.Path)
					return nil
				},
			},
			{
				Name:      "create_sql",
				Usage:     "create up and down SQL migrations",
				ArgsUsage: "<name words...>",
				Action: func(c *cli.Context) error {
					m, err := migrator(c)
					if err != nil {
						return err
					}
					name := strings.Join(c.Args().Slice(), "_")
					files, err := m.CreateSQLMigrations(c.Context, name)
					if err != nil {
						return err
					}
					for _, mf := range files {
						fmt.Fprintf(c.App.Writer, "created migration %s (%s)\n", mf.Name, mf.Path)
					}
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					m, err := migrator(c)
					if err != nil {
						return err
					}
					ms, err := m.MigrationsWithStatus(c.Context)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "migrations: %s\n", ms)
					fmt.Fprintf(c.App.Writer, "unapplied migrations: %s\n", ms.Unapplied())
					fmt.Fprintf(c.App.Writer, "last migration group: %s\n", ms.LastGroup())
					return nil
				},
			},
		},
	}
}
