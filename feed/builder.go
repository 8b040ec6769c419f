// Package feed renders a user's note history into a syndication feed
// value: thread resolution, markup rendering, media embedding and item
// assembly. Wire encoding of the result is left to the caller.
package feed

import (
	"fmt"
	"net/url"

	"notefeed/config"
	"notefeed/mfm"
	"notefeed/models"
)

// Builder assembles feeds from the backing stores. It holds no mutable
// state and is safe for concurrent use; every build works on its own
// fetched snapshot.
type Builder struct {
	cfg    *config.TomlConfig
	notes  NoteStore
	files  FileStore
	users  UserStore
	markup *mfm.Renderer
}

func NewBuilder(cfg *config.TomlConfig, notes NoteStore, files FileStore, users UserStore) *Builder {
	return &Builder{
		cfg:    cfg,
		notes:  notes,
		files:  files,
		users:  users,
		markup: &mfm.Renderer{Url: cfg.Url, Host: cfg.Host},
	}
}

// publicUrl derives the address a drive file is served from. Files are
// addressed by access key, never by id.
func (b *Builder) publicUrl(file models.DriveFile) string {
	return fmt.Sprintf("%s/files/%s/%s", b.cfg.MediaUrl, file.AccessKey, url.PathEscape(file.Name))
}

// IdenticonUrl is the fallback avatar for users without one, keyed by the
// user's account name so it stays stable across builds.
func IdenticonUrl(baseUrl string, user *models.User) string {
	acct := user.Username
	if user.Host != "" {
		acct += "@" + user.Host
	}
	return baseUrl + "/identicon/" + acct
}
