package feed

import (
	"context"

	log "github.com/sirupsen/logrus"

	"notefeed/models"
)

// resolveThread walks the renote/reply ancestry of a note and renders
// each reachable ancestor, nearest first. The walk ends at the first
// missing or non-syndicated ancestor, at the first already-visited id
// (ancestry data is untrusted and may cycle), or when the depth bound is
// exhausted, whichever comes first. A broken chain is not an error.
func (b *Builder) resolveThread(ctx context.Context, start *models.Note) []string {
	next := ancestorId(start)
	depth := b.cfg.Feed.MaxDepth
	visited := map[string]struct{}{start.Id: {}}

	var fragments []string
	for depth > 0 && next != "" {
		if _, seen := visited[next]; seen {
			log.WithFields(log.Fields{
				"note": start.Id,
				"seen": next,
			}).Warn("Ancestry cycle detected, ending thread")
			break
		}
		visited[next] = struct{}{}

		note, err := b.notes.NoteById(ctx, next)
		if err != nil {
			log.WithFields(log.Fields{
				"note":  next,
				"error": err,
			}).Warn("Could not load ancestor note, ending thread")
			break
		}
		if note == nil {
			break
		}

		fragments = append(fragments, b.renderNote(ctx, note, false))
		next = ancestorId(note)
		depth--
	}

	return fragments
}

// ancestorId picks the causal ancestor of a note, renote before reply.
func ancestorId(note *models.Note) string {
	if note.RenoteId != "" {
		return note.RenoteId
	}
	return note.ReplyId
}
