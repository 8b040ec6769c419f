package cmd

import (
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "notefeed",
		Usage: "Syndication feeds for note timelines",
		Description: `Renders a user's public note history into a syndication
		feed for consumption by feed readers.

		Notefeed reads notes, files and profiles from an SQLite database,
		resolves renote/reply threads, renders note markup to HTML and
		serves the assembled feed over HTTP.

		Flags can generally be set via environment variables, e.g.:

		--database => NOTEFEED_DATABASE=notefeed.db
		--port => NOTEFEED_PORT=3000
		`,
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
			rollbackCmd(),
			renderCmd(),
			seedCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}
