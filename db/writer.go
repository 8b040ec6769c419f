package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"notefeed/models"
)

// Writer inserts feed source data. Only the seeder uses it; the feed
// engine itself never writes.
type Writer struct {
	db *sql.DB
}

func NewWriter(database string) (*Writer, error) {
	db, err := connection(database, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Writer{db: db}, nil
}

func (writer *Writer) Close() error {
	return writer.db.Close()
}

func (writer *Writer) CreateUser(ctx context.Context, user models.User, profile models.Profile) error {
	log.WithFields(log.Fields{
		"user": user.Username,
	}).Info("Creating user")

	_, err := writer.db.ExecContext(ctx, `
		INSERT INTO users (id, username, name, host, avatar_url, notes_count, following_count, followers_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Id, user.Username, user.Name, user.Host, user.AvatarUrl,
		user.NotesCount, user.FollowingCount, user.FollowersCount,
	)
	if err != nil {
		return fmt.Errorf("insert error: %w", err)
	}

	_, err = writer.db.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, description, following_visibility, followers_visibility)
		VALUES (?, ?, ?, ?)`,
		user.Id, profile.Description, profile.FollowingVisibility, profile.FollowersVisibility,
	)
	if err != nil {
		return fmt.Errorf("insert error: %w", err)
	}

	return nil
}

func (writer *Writer) CreateNote(ctx context.Context, note models.Note) error {
	mentions, err := json.Marshal(note.Mentions)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	_, err = writer.db.ExecContext(ctx, `
		INSERT INTO notes (id, user_id, text, cw, visibility, renote_id, reply_id, mentioned_remote_users)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		note.Id, note.UserId, note.Text, note.CW, string(note.Visibility),
		note.RenoteId, note.ReplyId, string(mentions),
	)
	if err != nil {
		return fmt.Errorf("insert error: %w", err)
	}

	for position, fileId := range note.FileIds {
		_, err = writer.db.ExecContext(ctx, `
			INSERT INTO note_files (note_id, file_id, position) VALUES (?, ?, ?)`,
			note.Id, fileId, position,
		)
		if err != nil {
			return fmt.Errorf("insert error: %w", err)
		}
	}

	return nil
}

// CreateFile inserts a drive file, minting a fresh access key when the
// file has none. The key, not the id, addresses the file publicly.
func (writer *Writer) CreateFile(ctx context.Context, file models.DriveFile) error {
	if file.AccessKey == "" {
		file.AccessKey = uuid.New().String()
	}

	_, err := writer.db.ExecContext(ctx, `
		INSERT INTO drive_files (id, type, name, access_key) VALUES (?, ?, ?, ?)`,
		file.Id, file.Type, file.Name, file.AccessKey,
	)
	if err != nil {
		return fmt.Errorf("insert error: %w", err)
	}

	return nil
}
