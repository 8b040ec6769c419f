package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"notefeed/config"
	"notefeed/db"
	"notefeed/feed"
	"notefeed/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve user feeds over HTTP",
		Description: `Starts the notefeed HTTP server.

Serves the assembled feed for each local user at /@username/feed.json.
Reads notes, drive files and profiles from the configured SQLite database.`,
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
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on",
				EnvVars: []string{"NOTEFEED_PORT"},
				Value:   3000,
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := config.LoadConfig(ctx.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			reader, err := db.NewReader(ctx.String("database"))
			if err != nil {
				return err
			}
			defer reader.Close()

			builder := feed.NewBuilder(cfg, reader, reader, reader)

			app := server.Server(&server.ServerConfig{
				Reader:  reader,
				Builder: builder,
			})

			// Graceful shutdown
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)
			var wg sync.WaitGroup
			wg.Add(1)

			go func() {
				<-c
				fmt.Println("Gracefully shutting down...")
				app.ShutdownWithTimeout(60 * time.Second)
				wg.Done()
			}()

			go func() {
				log.WithFields(log.Fields{
					"port": ctx.Int("port"),
				}).Info("Starting server")
				if err := app.Listen(fmt.Sprintf(":%d", ctx.Int("port"))); err != nil {
					log.Panic(err)
				}
			}()

			wg.Wait()

			fmt.Println("Done!")
			return nil
		},
	}
}
