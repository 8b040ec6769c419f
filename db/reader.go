package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	"github.com/samber/lo"

	"notefeed/models"
)

// Visibilities eligible for syndication. Applied on every note lookup,
// including ancestor fetches, not just the root query.
var syndicatedVisibilities = []interface{}{
	string(models.VisibilityPublic),
	string(models.VisibilityHome),
}

// Reader provides read-only access to the feed source data.
type Reader struct {
	db *sql.DB
}

func NewReader(database string) (*Reader, error) {
	db, err := connection(database, true)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Reader{db: db}, nil
}

func (reader *Reader) Close() error {
	return reader.db.Close()
}

// NoteById returns the note with the given id if it is syndicated, or
// nil when it does not exist or has a restricted visibility.
func (reader *Reader) NoteById(ctx context.Context, id string) (*models.Note, error) {
	sb := noteSelect()
	sb.Where(sb.Equal("id", id))
	sb.Where(sb.In("visibility", syndicatedVisibilities...))

	query, args := sb.BuildWithFlavor(sqlbuilder.SQLite)
	notes, err := reader.scanNotes(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, nil
	}
	return &notes[0], nil
}

// RecentNotesByAuthor returns up to limit syndicated notes by the given
// user, newest first. Id order is creation order by construction.
func (reader *Reader) RecentNotesByAuthor(ctx context.Context, userId string, limit int) ([]models.Note, error) {
	sb := noteSelect()
	sb.Where(sb.Equal("user_id", userId))
	sb.Where(sb.In("visibility", syndicatedVisibilities...))
	sb.OrderBy("id").Desc()
	sb.Limit(limit)

	query, args := sb.BuildWithFlavor(sqlbuilder.SQLite)
	return reader.scanNotes(ctx, query, args)
}

// FilesByIds returns drive files in request order. Missing ids are
// omitted, not errors; a deleted file just disappears from the feed.
func (reader *Reader) FilesByIds(ctx context.Context, ids []string) ([]models.DriveFile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "type", "name", "access_key").From("drive_files")
	sb.Where(sb.In("id", lo.ToAnySlice(ids)...))

	query, args := sb.BuildWithFlavor(sqlbuilder.SQLite)
	rows, err := reader.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	byId := make(map[string]models.DriveFile, len(ids))
	for rows.Next() {
		var file models.DriveFile
		if err := rows.Scan(&file.Id, &file.Type, &file.Name, &file.AccessKey); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		byId[file.Id] = file
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	var files []models.DriveFile
	for _, id := range ids {
		if file, ok := byId[id]; ok {
			files = append(files, file)
		}
	}
	return files, nil
}

// UserById returns the user with the given id, or nil when unknown.
func (reader *Reader) UserById(ctx context.Context, id string) (*models.User, error) {
	sb := userSelect()
	sb.Where(sb.Equal("id", id))
	return reader.scanUser(ctx, sb)
}

// UserByUsername returns the local user with the given username, or nil
// when unknown. Remote users have no feed on this instance.
func (reader *Reader) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	sb := userSelect()
	sb.Where(sb.Equal("username", username))
	sb.Where(sb.Equal("host", ""))
	return reader.scanUser(ctx, sb)
}

// ProfileByUserId returns the profile for the given user, or nil when
// unknown.
func (reader *Reader) ProfileByUserId(ctx context.Context, userId string) (*models.Profile, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("user_id", "description", "following_visibility", "followers_visibility")
	sb.From("user_profiles")
	sb.Where(sb.Equal("user_id", userId))

	query, args := sb.BuildWithFlavor(sqlbuilder.SQLite)
	var profile models.Profile
	err := reader.db.QueryRowContext(ctx, query, args...).Scan(
		&profile.UserId, &profile.Description,
		&profile.FollowingVisibility, &profile.FollowersVisibility)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return &profile, nil
}

func noteSelect() *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "user_id", "text", "cw", "visibility", "renote_id", "reply_id", "mentioned_remote_users")
	sb.From("notes")
	return sb
}

func userSelect() *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "username", "name", "host", "avatar_url", "notes_count", "following_count", "followers_count")
	sb.From("users")
	return sb
}

func (reader *Reader) scanUser(ctx context.Context, sb *sqlbuilder.SelectBuilder) (*models.User, error) {
	query, args := sb.BuildWithFlavor(sqlbuilder.SQLite)

	var user models.User
	err := reader.db.QueryRowContext(ctx, query, args...).Scan(
		&user.Id, &user.Username, &user.Name, &user.Host, &user.AvatarUrl,
		&user.NotesCount, &user.FollowingCount, &user.FollowersCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return &user, nil
}

func (reader *Reader) scanNotes(ctx context.Context, query string, args []interface{}) ([]models.Note, error) {
	rows, err := reader.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var note models.Note
		var mentions string
		if err := rows.Scan(&note.Id, &note.UserId, &note.Text, &note.CW,
			&note.Visibility, &note.RenoteId, &note.ReplyId, &mentions); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		// Mention tables are small JSON documents; a malformed one only
		// costs mention links, not the note.
		_ = json.Unmarshal([]byte(mentions), &note.Mentions)
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i := range notes {
		fileIds, err := reader.noteFileIds(ctx, notes[i].Id)
		if err != nil {
			return nil, err
		}
		notes[i].FileIds = fileIds
	}

	return notes, nil
}

func (reader *Reader) noteFileIds(ctx context.Context, noteId string) ([]string, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("file_id").From("note_files")
	sb.Where(sb.Equal("note_id", noteId))
	sb.OrderBy("position").Asc()

	query, args := sb.BuildWithFlavor(sqlbuilder.SQLite)
	rows, err := reader.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
