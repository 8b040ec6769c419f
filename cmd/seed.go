package cmd

import (
	"fmt"
	"time"

	"github.com/cqroot/prompt"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"notefeed/aid"
	"notefeed/db"
	"notefeed/models"
)

func seedCmd() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Insert demo data for local development",
		Description: `Creates a local user with a profile, a drive file and a small
note thread (an original note, a reply and a renote) so the server has
something to render. Run migrate first.`,
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
			username, err := prompt.New().Ask("Username:").Input("alice")
			if err != nil {
				return err
			}

			name, err := prompt.New().Ask("Display name:").Input("Alice")
			if err != nil {
				return err
			}

			writer, err := db.NewWriter(ctx.String("database"))
			if err != nil {
				return err
			}
			defer writer.Close()

			now := time.Now()
			userId := aid.New(now.Add(-72 * time.Hour))

			err = writer.CreateUser(ctx.Context, models.User{
				Id:             userId,
				Username:       username,
				Name:           name,
				NotesCount:     3,
				FollowingCount: 12,
				FollowersCount: 34,
			}, models.Profile{
				UserId:              userId,
				Description:         "Just trying things out",
				FollowingVisibility: "public",
				FollowersVisibility: "public",
			})
			if err != nil {
				return err
			}

			file := models.DriveFile{
				Id:        aid.New(now.Add(-3 * time.Hour)),
				Type:      "image/png",
				Name:      "sunset.png",
				AccessKey: uuid.New().String(),
			}
			if err := writer.CreateFile(ctx.Context, file); err != nil {
				return err
			}

			original := models.Note{
				Id:         aid.New(now.Add(-2 * time.Hour)),
				UserId:     userId,
				Text:       "Hello **world**! First note from @" + username,
				Visibility: models.VisibilityPublic,
				FileIds:    []string{file.Id},
			}
			if err := writer.CreateNote(ctx.Context, original); err != nil {
				return err
			}

			reply := models.Note{
				Id:         aid.New(now.Add(-1 * time.Hour)),
				UserId:     userId,
				Text:       "Replying to myself, as one does",
				Visibility: models.VisibilityHome,
				ReplyId:    original.Id,
			}
			if err := writer.CreateNote(ctx.Context, reply); err != nil {
				return err
			}

			renote := models.Note{
				Id:         aid.New(now),
				UserId:     userId,
				Visibility: models.VisibilityPublic,
				RenoteId:   original.Id,
			}
			if err := writer.CreateNote(ctx.Context, renote); err != nil {
				return err
			}

			fmt.Printf("Seeded user @%s with 3 notes\n", username)
			return nil
		},
	}
}
