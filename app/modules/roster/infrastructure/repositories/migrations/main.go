package rostermigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the roster table migrations.
var Migrations = migrate.NewMigrations()

func init() {
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
