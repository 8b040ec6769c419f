package feed

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"notefeed/aid"
	"notefeed/models"
)

// BuildFeed renders the given user's recent notes into a feed. A missing
// profile is fatal: no feed can be produced without an author. Individual
// items degrade instead (broken ancestors, missing files) so one bad note
// cannot take the whole feed down.
func (b *Builder) BuildFeed(ctx context.Context, user *models.User) (*models.Feed, error) {
	name := user.Name
	if name == "" {
		name = user.Username
	}
	author := models.FeedAuthor{
		Name: name,
		Link: b.cfg.Url + "/@" + user.Username,
	}

	profile, err := b.users.ProfileByUserId(ctx, user.Id)
	if err != nil {
		return nil, fmt.Errorf("error loading profile: %w", err)
	}
	if profile == nil {
		return nil, fmt.Errorf("no profile for user %s", user.Id)
	}

	notes, err := b.notes.RecentNotesByAuthor(ctx, user.Id, b.cfg.Feed.MaxItems)
	if err != nil {
		return nil, fmt.Errorf("error loading notes: %w", err)
	}

	log.WithFields(log.Fields{
		"user":  user.Username,
		"notes": len(notes),
	}).Info("Building feed")

	feed := &models.Feed{
		Id:          author.Link,
		Title:       fmt.Sprintf("%s (@%s@%s)", name, user.Username, b.cfg.Host),
		Description: b.feedDescription(user, profile),
		Link:        author.Link,
		Image:       lo.Ternary(user.AvatarUrl != "", user.AvatarUrl, IdenticonUrl(b.cfg.Url, user)),
		Author:      author,
	}
	if len(notes) > 0 {
		updated := aid.SafeParse(notes[0].Id)
		feed.Updated = &updated
	}

	// Each ancestor chain is sequential, but chains of different items are
	// independent. Render them on a bounded pool and keep the fetch order
	// by writing into the item slot, not by completion.
	items := make([]models.FeedItem, len(notes))
	sem := make(chan struct{}, b.cfg.Feed.Concurrency)
	var wg sync.WaitGroup
	for i := range notes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			items[i] = b.buildItem(ctx, &notes[i], name)
		}(i)
	}
	wg.Wait()

	feed.Items = items
	return feed, nil
}

// buildItem renders one note plus its ancestor fragments into a feed
// item. Ancestor fragments follow the note's own content, each preceded
// by a horizontal rule.
func (b *Builder) buildItem(ctx context.Context, note *models.Note, authorName string) models.FeedItem {
	var content strings.Builder
	content.WriteString(b.renderNote(ctx, note, true))
	for _, fragment := range b.resolveThread(ctx, note) {
		content.WriteString("<hr>")
		content.WriteString(fragment)
	}

	return models.FeedItem{
		Title:   b.itemTitle(ctx, note, authorName),
		Link:    b.cfg.Url + "/notes/" + note.Id,
		Date:    aid.SafeParse(note.Id),
		Summary: note.CW,
		Content: content.String(),
	}
}

// feedDescription summarizes the account. Follow counts are masked when
// the profile keeps them private.
func (b *Builder) feedDescription(user *models.User, profile *models.Profile) string {
	following := lo.Ternary(profile.FollowingVisibility == "public",
		strconv.FormatInt(user.FollowingCount, 10), "?")
	followers := lo.Ternary(profile.FollowersVisibility == "public",
		strconv.FormatInt(user.FollowersCount, 10), "?")

	description := fmt.Sprintf("%d Notes, %s Following, %s Followers",
		user.NotesCount, following, followers)
	if profile.Description != "" {
		description += " · " + profile.Description
	}
	return description
}
