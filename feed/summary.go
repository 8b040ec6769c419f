package feed

import (
	"fmt"
	"strings"

	"notefeed/mfm"
	"notefeed/models"
)

// Summarize derives a short plain-text preview of a note for use in
// titles. The content warning takes precedence over the body, markup is
// stripped rather than escaped, and the result is bounded to maxRunes
// runes.
func Summarize(note *models.Note, maxRunes int) string {
	var text string
	if note.CW != "" {
		text = note.CW
	} else {
		text = mfm.ToPlainText(mfm.Parse(note.Text))
	}

	text = strings.Join(strings.Fields(text), " ")
	text = truncate(text, maxRunes)

	if n := len(note.FileIds); n > 0 {
		text = strings.TrimSpace(fmt.Sprintf("%s (%d files)", text, n))
	}

	return text
}

func truncate(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes]) + "..."
}
