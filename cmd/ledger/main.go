package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCLI() *cli.App {
	env := &environment{}
	return &cli.App{
		Name:  "ledger",
		Usage: "team roster analytics and reporting",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"LEDGER_CONFIG"},
			},
		},
		Before: env.setup,
		After:  env.teardown,
		Commands: []*cli.Command{
			newMigrateCommand(env),
			newSeedCommand(env),
			newReportCommand(env),
			newExportCommand(env),
			newMembersCommand(env),
			newServeCommand(env),
		},
	}
}
