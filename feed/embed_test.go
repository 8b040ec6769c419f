package feed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"notefeed/feed"
	"notefeed/models"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		expected feed.MediaKind
	}{
		{
			name:     "png image",
			mimeType: "image/png",
			expected: feed.MediaImage,
		},
		{
			name:     "mp3 audio",
			mimeType: "audio/mpeg",
			expected: feed.MediaAudio,
		},
		{
			name:     "mp4 video",
			mimeType: "video/mp4",
			expected: feed.MediaVideo,
		},
		{
			name:     "pdf is other",
			mimeType: "application/pdf",
			expected: feed.MediaOther,
		},
		{
			name:     "empty type is other",
			mimeType: "",
			expected: feed.MediaOther,
		},
		{
			name:     "image without slash suffix is other",
			mimeType: "image",
			expected: feed.MediaOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, feed.KindOf(tt.mimeType))
		})
	}
}

func TestEmbed(t *testing.T) {
	url := "https://media.example.com/files/key/photo.png"

	tests := []struct {
		name     string
		file     models.DriveFile
		expected string
	}{
		{
			name:     "image",
			file:     models.DriveFile{Type: "image/png", Name: "photo.png"},
			expected: ` <br><img src="https://media.example.com/files/key/photo.png">`,
		},
		{
			name:     "audio",
			file:     models.DriveFile{Type: "audio/mpeg", Name: "song.mp3"},
			expected: ` <br><audio controls src="https://media.example.com/files/key/photo.png" type="audio/mpeg">`,
		},
		{
			name:     "video",
			file:     models.DriveFile{Type: "video/mp4", Name: "clip.mp4"},
			expected: ` <br><video controls src="https://media.example.com/files/key/photo.png" type="video/mp4">`,
		},
		{
			name:     "other becomes a download link",
			file:     models.DriveFile{Type: "application/pdf", Name: "paper.pdf"},
			expected: ` <br><a href="https://media.example.com/files/key/photo.png" download="paper.pdf">paper.pdf</a>`,
		},
		{
			name:     "file name is escaped",
			file:     models.DriveFile{Type: "application/zip", Name: `a<b>.zip`},
			expected: ` <br><a href="https://media.example.com/files/key/photo.png" download="a&lt;b&gt;.zip">a&lt;b&gt;.zip</a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, feed.Embed(tt.file, url))
		})
	}
}
