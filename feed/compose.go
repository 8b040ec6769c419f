package feed

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"notefeed/mfm"
	"notefeed/models"
)

// relationWord names how a note relates to its ancestor, renote taking
// precedence over reply.
func relationWord(note *models.Note) string {
	switch {
	case note.RenoteId != "":
		return "renotes"
	case note.ReplyId != "":
		return "replies"
	default:
		return "says"
	}
}

// renderNote composes one note into an HTML fragment. Root notes (the
// feed item itself) skip the attribution prefix and get a trailing marker
// span for downstream styling; ancestor fragments get the prefix and no
// marker.
func (b *Builder) renderNote(ctx context.Context, note *models.Note, isRoot bool) string {
	var out strings.Builder

	if !isRoot {
		out.WriteString(b.attribution(ctx, note))
	}

	fileEle := b.renderFiles(ctx, note)

	if note.CW != "" {
		out.WriteString(html.EscapeString(note.CW) + "<br>")
	}
	if note.Text != "" {
		out.WriteString(b.markup.ToHtml(mfm.Parse(note.Text), note.Mentions))
	}
	out.WriteString(fileEle)

	if isRoot {
		noteClass := "new_note"
		if note.RenoteId != "" {
			noteClass = "renote_note"
		} else if note.ReplyId != "" {
			noteClass = "reply_note"
		}
		imgClass := lo.Ternary(strings.Contains(fileEle, "img src"), "with_img", "without_img")
		out.WriteString(fmt.Sprintf(` <span class="%s %s"></span>`, noteClass, imgClass))
	}

	return out.String()
}

// attribution renders the "who did what" line that precedes ancestor
// fragments. A missing author is a recoverable skip: one broken ancestor
// must not fail the whole build, so the fragment just loses its prefix.
func (b *Builder) attribution(ctx context.Context, note *models.Note) string {
	author, err := b.users.UserById(ctx, note.UserId)
	if err != nil || author == nil {
		if err != nil {
			log.WithFields(log.Fields{
				"note": note.Id,
				"user": note.UserId,
			}).Warn("Could not load ancestor author, omitting attribution")
		}
		return ""
	}

	name := author.Name
	if name == "" {
		name = author.Username
	}
	host := author.Host
	if host == "" {
		host = b.cfg.Host
	}

	return fmt.Sprintf("%s(@%s@%s) %s: <br>",
		html.EscapeString(name), author.Username, host, relationWord(note))
}

// renderFiles embeds all attached files in file-list order. Fetch errors
// degrade to no embeds; missing ids are already omitted by the store.
func (b *Builder) renderFiles(ctx context.Context, note *models.Note) string {
	if len(note.FileIds) == 0 {
		return ""
	}

	files, err := b.files.FilesByIds(ctx, note.FileIds)
	if err != nil {
		log.WithFields(log.Fields{
			"note":  note.Id,
			"error": err,
		}).Warn("Could not load note files, skipping embeds")
		return ""
	}

	embeds := lo.Map(files, func(file models.DriveFile, _ int) string {
		return Embed(file, b.publicUrl(file))
	})
	return strings.Join(embeds, "")
}

// itemTitle builds the feed item title: the relation to the ancestor,
// the author, and a short summary of the effective note. For a plain
// renote with no added commentary the summary comes from the renoted note.
func (b *Builder) itemTitle(ctx context.Context, note *models.Note, authorName string) string {
	var title string
	switch {
	case note.RenoteId != "":
		title = fmt.Sprintf("Boost by %s", authorName)
	case note.ReplyId != "":
		title = fmt.Sprintf("Reply by %s", authorName)
	default:
		title = fmt.Sprintf("Post by %s", authorName)
	}

	effective := note
	if isPlainRenote(note) {
		renoted, err := b.notes.NoteById(ctx, note.RenoteId)
		if err == nil && renoted != nil {
			effective = renoted
		}
	}

	if summary := Summarize(effective, b.cfg.Feed.SummaryLength); summary != "" {
		title += ": " + summary
	}

	return title
}

// isPlainRenote reports whether a note renotes another without adding
// text, a content warning or files (i.e. is not a quote).
func isPlainRenote(note *models.Note) bool {
	return note.RenoteId != "" && note.Text == "" && note.CW == "" && len(note.FileIds) == 0
}
