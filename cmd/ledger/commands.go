package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/Black-And-White-Club/team-ledger/app"
	analyticsservice "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/application"
	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/bridge"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/render"
	rosterdb "github.com/Black-And-White-Club/team-ledger/app/modules/roster/infrastructure/repositories"
	rosterseed "github.com/Black-And-White-Club/team-ledger/app/modules/roster/seed"
	"github.com/urfave/cli/v2"
)

const noDataMessage = "no data"

func newSeedCommand(env *environment) *cli.Command {
	defaults := rosterseed.DefaultOptions()
	return &cli.Command{
		Name:  "seed",
		Usage: "load a generated demo roster",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "members", Value: defaults.Members},
			&cli.IntFlag{Name: "matches", Value: defaults.Matches},
			&cli.IntFlag{Name: "days", Value: defaults.ScheduleDays, Usage: "schedule days to fill"},
			&cli.Int64Flag{Name: "seed", Value: defaults.Seed, Usage: "generator seed"},
		},
		Action: func(c *cli.Context) error {
			a, err := env.open(c.Context)
			if err != nil {
				return err
			}
			opts := defaults
			opts.Members = c.Int("members")
			opts.Matches = c.Int("matches")
			opts.ScheduleDays = c.Int("days")
			opts.Seed = c.Int64("seed")

			counts, err := rosterseed.Load(c.Context, a.DB, rosterdb.NewRepository(a.DB), rosterseed.Generate(opts))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "seeded %d members, %d matches, %d participations, %d schedule entries\n",
				counts.Members, counts.Matches, counts.Participations, counts.Schedule)
			return nil
		},
	}
}

func newReportCommand(env *environment) *cli.Command {
	run := func(fn func(c *cli.Context, svc analyticsservice.Service) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			a, err := env.commandApp(c.Context)
			if err != nil {
				return err
			}
			err = fn(c, a.Analytics.AnalyticsService)
			if errors.Is(err, analyticsdomain.ErrNoData) {
				fmt.Fprintln(c.App.Writer, noDataMessage)
				return nil
			}
			return err
		}
	}

	return &cli.Command{
		Name:  "report",
		Usage: "generate reports",
		Subcommands: []*cli.Command{
			{
				Name:  "members",
				Usage: "per-member statistics",
				Action: run(func(c *cli.Context, svc analyticsservice.Service) error {
					stats, err := svc.GetMemberStatistics(c.Context)
					if err != nil {
						return err
					}
					fmt.Fprint(c.App.Writer, render.MemberStatsTable(stats))
					return nil
				}),
			},
			{
				Name:  "participations",
				Usage: "participation rows with member and match labels",
				Action: run(func(c *cli.Context, svc analyticsservice.Service) error {
					rows, err := svc.ListParticipationDetails(c.Context)
					if err != nil {
						return err
					}
					fmt.Fprint(c.App.Writer, render.ParticipationTable(rows))
					return nil
				}),
			},
			{
				Name:  "performance",
				Usage: "member statistics plus the external analysis",
				Action: run(func(c *cli.Context, svc analyticsservice.Service) error {
					pr, err := svc.GeneratePerformanceReport(c.Context)
					if err != nil {
						return err
					}
					fmt.Fprint(c.App.Writer, pr.Table)
					printAnalysis(c.App.Writer, pr.Analysis)
					return nil
				}),
			},
			{
				Name:  "matches",
				Usage: "per-match statistics and the chart bundle",
				Action: run(func(c *cli.Context, svc analyticsservice.Service) error {
					mr, err := svc.GenerateMatchCharts(c.Context)
					if err != nil {
						return err
					}
					fmt.Fprint(c.App.Writer, mr.Table)
					fmt.Fprintf(c.App.Writer, "chart: %s\n", mr.Chart.Path)
					return nil
				}),
			},
			{
				Name:  "schedule",
				Usage: "schedule table, timeline and pivot workbook",
				Action: run(func(c *cli.Context, svc analyticsservice.Service) error {
					sr, err := svc.GenerateScheduleReport(c.Context)
					if err != nil {
						return err
					}
					fmt.Fprint(c.App.Writer, sr.Table)
					fmt.Fprintf(c.App.Writer, "timeline: %s\nworkbook: %s\n", sr.Image.Path, sr.Workbook.Path)
					return nil
				}),
			},
		},
	}
}

func printAnalysis(w io.Writer, res bridge.Result) {
	fmt.Fprintf(w, "analysis: %s\n", res.Outcome)
	switch res.Outcome {
	case bridge.OutcomeSucceeded:
		fmt.Fprint(w, res.Summary)
		for _, p := range res.Artifacts {
			fmt.Fprintf(w, "artifact: %s\n", p)
		}
	case bridge.OutcomeSkipped:
		fmt.Fprintln(w, res.Summary)
	case bridge.OutcomeFailed:
		if res.Err != nil {
			fmt.Fprintf(w, "error: %v\n", res.Err)
		}
		if res.Diagnostics != "" {
			fmt.Fprint(w, res.Diagnostics)
		}
	}
}

func newExportCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "export the base tables",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "csv", Usage: "csv or xlsx"},
		},
		Action: func(c *cli.Context) error {
			a, err := env.commandApp(c.Context)
			if err != nil {
				return err
			}
			res, err := a.Analytics.AnalyticsService.ExportTables(c.Context, c.String("format"))
			if res != nil {
				for _, art := range res.Artifacts {
					fmt.Fprintf(c.App.Writer, "%s: %d rows -> %s\n", art.Table, art.Rows, art.Path)
				}
			}
			return err
		},
	}
}

func newMembersCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "members",
		Usage: "roster maintenance",
		Subcommands: []*cli.Command{
			{
				Name:      "delete",
				Usage:     "delete a member with their participations and schedule assignments",
				ArgsUsage: "<member id>",
				Action: func(c *cli.Context) error {
					id, err := strconv.ParseInt(c.Args().First(), 10, 64)
					if err != nil {
						return fmt.Errorf("invalid member id %q", c.Args().First())
					}
					a, err := env.commandApp(c.Context)
					if err != nil {
						return err
					}
					if err := a.Analytics.AnalyticsService.DeleteMember(c.Context, id); err != nil {
						if errors.Is(err, rosterdb.ErrNotFound) {
							return fmt.Errorf("member %d not found", id)
						}
						return err
					}
					fmt.Fprintf(c.App.Writer, "deleted member %d\n", id)
					return nil
				},
			},
		},
	}
}

func newServeCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API and event handlers",
		Action: func(c *cli.Context) error {
			ctx, stop := app.SignalContext(c.Context)
			defer stop()

			a, err := env.open(ctx)
			if err != nil {
				return err
			}
			return a.Start(ctx)
		},
	}
}
