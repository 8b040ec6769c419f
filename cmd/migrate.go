package cmd

import (
	"fmt"
	"notefeed/db"

	"github.com/urfave/cli/v2"
)

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:        "migrate",
		Usage:       "Run database migrations",
		Description: `Runs database migrations on the configured database. Will create the database if it does not exist.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Usage:   "SQLite database file",
				EnvVars: []string{"NOTEFEED_DATABASE"},
				Value:   "notefeed.db",
			},
		},
		Action: func(ctx *cli.Context) error {
			fmt.Printf("Database configured: %s\n", ctx.String("database"))
			return db.Migrate(ctx.String("database"))
		},
	}
}

func rollbackCmd() *cli.Command {
	return &cli.Command{
		Name:        "rollback",
		Usage:       "Rollback database migration",
		Description: `Rolls back the last database migration`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Usage:   "SQLite database file",
				EnvVars: []string{"NOTEFEED_DATABASE"},
				Value:   "notefeed.db",
			},
		},
		Action: func(ctx *cli.Context) error {
			fmt.Printf("Database configured: %s\n", ctx.String("database"))
			return db.Rollback(ctx.String("database"))
		},
	}
}
