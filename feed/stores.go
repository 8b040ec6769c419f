package feed

import (
	"context"

	"notefeed/models"
)

// NoteStore provides read access to notes. All lookups apply the
// syndication visibility filter (public and home only); callers can not
// reach followers-only or direct notes through this interface.
type NoteStore interface {
	// NoteById returns the note with the given id, or nil when the note
	// does not exist or is not syndicated.
	NoteById(ctx context.Context, id string) (*models.Note, error)

	// RecentNotesByAuthor returns up to limit syndicated notes by the
	// given user, newest first by id.
	RecentNotesByAuthor(ctx context.Context, userId string, limit int) ([]models.Note, error)
}

// FileStore resolves attached file ids to drive files.
type FileStore interface {
	// FilesByIds returns the files for the given ids in request order.
	// Ids that no longer resolve are silently omitted.
	FilesByIds(ctx context.Context, ids []string) ([]models.DriveFile, error)
}

// UserStore provides read access to users and their profiles.
type UserStore interface {
	// UserById returns the user with the given id, or nil when unknown.
	UserById(ctx context.Context, id string) (*models.User, error)

	// ProfileByUserId returns the profile for the given user, or nil
	// when unknown.
	ProfileByUserId(ctx context.Context, userId string) (*models.Profile, error)
}
