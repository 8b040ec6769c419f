package models

import "time"

// Visibility is the access scope of a note. Only public and home notes
// are eligible for syndication.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityHome      Visibility = "home"
	VisibilityFollowers Visibility = "followers"
	VisibilitySpecified Visibility = "specified"
)

// Syndicated reports whether notes with this visibility may appear in a
// feed, either as items or as ancestor fragments.
func (v Visibility) Syndicated() bool {
	return v == VisibilityPublic || v == VisibilityHome
}

// MentionedUser resolves an in-text mention token to a remote identity.
// Local mentions resolve by username alone and are not listed here.
type MentionedUser struct {
	URI      string `json:"uri"`
	URL      string `json:"url,omitempty"`
	Username string `json:"username"`
	Host     string `json:"host"`
}

// Note model with the fields the feed engine reads
type Note struct {
	Id         string          `json:"id"`
	UserId     string          `json:"userId"`
	Text       string          `json:"text,omitempty"`
	CW         string          `json:"cw,omitempty"`
	Visibility Visibility      `json:"visibility"`
	RenoteId   string          `json:"renoteId,omitempty"`
	ReplyId    string          `json:"replyId,omitempty"`
	FileIds    []string        `json:"fileIds,omitempty"`
	Mentions   []MentionedUser `json:"mentionedRemoteUsers,omitempty"`
}

// DriveFile is an attached media file. The public URL is derived from the
// access key, never from the id.
type DriveFile struct {
	Id        string `json:"id"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	AccessKey string `json:"accessKey"`
}

type User struct {
	Id             string `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name,omitempty"`
	Host           string `json:"host,omitempty"`
	AvatarUrl      string `json:"avatarUrl,omitempty"`
	NotesCount     int64  `json:"notesCount"`
	FollowingCount int64  `json:"followingCount"`
	FollowersCount int64  `json:"followersCount"`
}

// Profile holds the per-user settings the feed description depends on.
type Profile struct {
	UserId              string `json:"userId"`
	Description         string `json:"description,omitempty"`
	FollowingVisibility string `json:"followingVisibility"`
	FollowersVisibility string `json:"followersVisibility"`
}

// FeedItem is one rendered note. Summary carries the content warning
// separately from the body so serializers can map it to their own field.
type FeedItem struct {
	Title   string    `json:"title"`
	Link    string    `json:"link"`
	Date    time.Time `json:"date"`
	Summary string    `json:"summary,omitempty"`
	Content string    `json:"content,omitempty"`
}

// FeedAuthor describes the feed owner.
type FeedAuthor struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// Feed is the assembled syndication document for one author, newest item
// first. Wire framing (Atom/RSS/JSON Feed) is a serializer concern.
type Feed struct {
	Id          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Link        string     `json:"link"`
	Image       string     `json:"image,omitempty"`
	Updated     *time.Time `json:"updated,omitempty"`
	Author      FeedAuthor `json:"author"`
	Items       []FeedItem `json:"items"`
}
