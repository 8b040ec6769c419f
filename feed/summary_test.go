package feed_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"notefeed/feed"
	"notefeed/models"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		note     models.Note
		maxRunes int
		expected string
	}{
		{
			name:     "plain text",
			note:     models.Note{Text: "hello"},
			maxRunes: 100,
			expected: "hello",
		},
		{
			name:     "content warning wins over body",
			note:     models.Note{Text: "spoilers inside", CW: "episode 3"},
			maxRunes: 100,
			expected: "episode 3",
		},
		{
			name:     "markup syntax is stripped",
			note:     models.Note{Text: "so **bold** of you, @bob"},
			maxRunes: 100,
			expected: "so bold of you, @bob",
		},
		{
			name:     "whitespace collapses",
			note:     models.Note{Text: "first\n\nsecond   third"},
			maxRunes: 100,
			expected: "first second third",
		},
		{
			name:     "file count annotation",
			note:     models.Note{Text: "look", FileIds: []string{"f1", "f2"}},
			maxRunes: 100,
			expected: "look (2 files)",
		},
		{
			name:     "files only",
			note:     models.Note{FileIds: []string{"f1"}},
			maxRunes: 100,
			expected: "(1 files)",
		},
		{
			name:     "empty note",
			note:     models.Note{},
			maxRunes: 100,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, feed.Summarize(&tt.note, tt.maxRunes))
		})
	}
}

func TestSummarizeBound(t *testing.T) {
	note := models.Note{Text: strings.Repeat("a", 500)}

	summary := feed.Summarize(&note, 100)

	assert.Equal(t, strings.Repeat("a", 100)+"...", summary)
	assert.LessOrEqual(t, len([]rune(summary)), 103)
}

func TestSummarizeBoundIsRuneBased(t *testing.T) {
	note := models.Note{Text: strings.Repeat("æ", 10)}

	assert.Equal(t, strings.Repeat("æ", 5)+"...", feed.Summarize(&note, 5))
}
