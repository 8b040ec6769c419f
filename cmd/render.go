package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"notefeed/config"
	"notefeed/db"
	"notefeed/feed"
)

func renderCmd() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Render a user's feed to the command line",
		ArgsUsage: "<username>",
		Description: `Renders the feed for the given local user and prints it to
stdout as a single JSON document. Use a tool like jq to process the output.

Prints all log messages to stderr.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Usage:   "SQLite database file",
				EnvVars: []string{"NOTEFEED_DATABASE"},
				Value:   "notefeed.db",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				EnvVars: []string{"NOTEFEED_CONFIG"},
				Value:   "config/notefeed.toml",
			},
		},
		Action: func(ctx *cli.Context) error {
			username := ctx.Args().First()
			if username == "" {
				return errors.New("please specify a username")
			}

			// Keep stdout clean for the JSON document
			log.SetOutput(os.Stderr)

			cfg, err := config.LoadConfig(ctx.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			reader, err := db.NewReader(ctx.String("database"))
			if err != nil {
				return err
			}
			defer reader.Close()

			user, err := reader.UserByUsername(ctx.Context, username)
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("no such user: %s", username)
			}

			builder := feed.NewBuilder(cfg, reader, reader, reader)
			userFeed, err := builder.BuildFeed(ctx.Context, user)
			if err != nil {
				return err
			}

			feedJson, err := json.MarshalIndent(userFeed, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(feedJson))

			return nil
		},
	}
}
