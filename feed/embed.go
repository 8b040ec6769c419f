package feed

import (
	"fmt"
	"html"
	"strings"

	"notefeed/models"
)

// MediaKind partitions MIME types into the embeddings the feed body
// supports. The kind is decided once by prefix so the rendering switch
// stays exhaustive.
type MediaKind int

const (
	MediaImage MediaKind = iota
	MediaAudio
	MediaVideo
	MediaOther
)

// KindOf classifies a MIME type string by its top-level prefix.
func KindOf(mimeType string) MediaKind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return MediaImage
	case strings.HasPrefix(mimeType, "audio/"):
		return MediaAudio
	case strings.HasPrefix(mimeType, "video/"):
		return MediaVideo
	default:
		return MediaOther
	}
}

// Embed renders one attached file as an HTML fragment. Images, audio and
// video embed inline; anything else becomes a download link labeled with
// the file name. The fragment starts with a line break so consecutive
// embeds stack below the note text.
func Embed(file models.DriveFile, publicUrl string) string {
	url := html.EscapeString(publicUrl)

	switch KindOf(file.Type) {
	case MediaImage:
		return fmt.Sprintf(` <br><img src="%s">`, url)
	case MediaAudio:
		return fmt.Sprintf(` <br><audio controls src="%s" type="%s">`, url, html.EscapeString(file.Type))
	case MediaVideo:
		return fmt.Sprintf(` <br><video controls src="%s" type="%s">`, url, html.EscapeString(file.Type))
	default:
		name := html.EscapeString(file.Name)
		return fmt.Sprintf(` <br><a href="%s" download="%s">%s</a>`, url, name, name)
	}
}
