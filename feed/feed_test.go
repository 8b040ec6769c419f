package feed_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notefeed/aid"
	"notefeed/config"
	"notefeed/feed"
	"notefeed/models"
)

// fakeStore is an in-memory implementation of the engine's store
// interfaces. Lookups apply the same syndication filter the real reader
// does, and note fetches are recorded so traversal behavior is
// observable.
type fakeStore struct {
	mu       sync.Mutex
	notes    map[string]models.Note
	users    map[string]models.User
	profiles map[string]models.Profile
	files    map[string]models.DriveFile

	noteFetches []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		notes:    make(map[string]models.Note),
		users:    make(map[string]models.User),
		profiles: make(map[string]models.Profile),
		files:    make(map[string]models.DriveFile),
	}
}

func (s *fakeStore) NoteById(ctx context.Context, id string) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.noteFetches = append(s.noteFetches, id)

	note, ok := s.notes[id]
	if !ok || !note.Visibility.Syndicated() {
		return nil, nil
	}
	return &note, nil
}

func (s *fakeStore) RecentNotesByAuthor(ctx context.Context, userId string, limit int) ([]models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var notes []models.Note
	for _, note := range s.notes {
		if note.UserId == userId && note.Visibility.Syndicated() {
			notes = append(notes, note)
		}
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].Id > notes[j].Id })
	if len(notes) > limit {
		notes = notes[:limit]
	}
	return notes, nil
}

func (s *fakeStore) FilesByIds(ctx context.Context, ids []string) ([]models.DriveFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var files []models.DriveFile
	for _, id := range ids {
		if file, ok := s.files[id]; ok {
			files = append(files, file)
		}
	}
	return files, nil
}

func (s *fakeStore) UserById(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *fakeStore) ProfileByUserId(ctx context.Context, userId string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[userId]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

func (s *fakeStore) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.noteFetches)
}

func (s *fakeStore) addNote(note models.Note) models.Note {
	s.notes[note.Id] = note
	return note
}

func testConfig() *config.TomlConfig {
	cfg := &config.TomlConfig{
		Url:  "https://notes.example.com",
		Host: "notes.example.com",
	}
	cfg.ApplyDefaults()
	return cfg
}

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

var idCache = make(map[int]string)

// idAt returns a note id minted n minutes after the fixture base time,
// memoized so repeated calls reference the same note. Id order matches
// the intended creation order.
func idAt(n int) string {
	if id, ok := idCache[n]; ok {
		return id
	}
	id := aid.New(baseTime.Add(time.Duration(n) * time.Minute))
	idCache[n] = id
	return id
}

func newFixture() (*fakeStore, *feed.Builder) {
	store := newFakeStore()
	store.users["u1"] = models.User{
		Id:             "u1",
		Username:       "alice",
		Name:           "Alice",
		NotesCount:     3,
		FollowingCount: 12,
		FollowersCount: 34,
	}
	store.profiles["u1"] = models.Profile{
		UserId:              "u1",
		FollowingVisibility: "public",
		FollowersVisibility: "public",
	}

	builder := feed.NewBuilder(testConfig(), store, store, store)
	return store, builder
}

func buildFor(t *testing.T, store *fakeStore, builder *feed.Builder, userId string) *models.Feed {
	t.Helper()
	user, err := store.UserById(context.Background(), userId)
	require.NoError(t, err)
	require.NotNil(t, user)

	result, err := builder.BuildFeed(context.Background(), user)
	require.NoError(t, err)
	return result
}

func TestBuildFeedEndToEnd(t *testing.T) {
	store, builder := newFixture()
	p1 := store.addNote(models.Note{
		Id:         idAt(0),
		UserId:     "u1",
		Text:       "hello",
		Visibility: models.VisibilityPublic,
	})
	p2 := store.addNote(models.Note{
		Id:         idAt(1),
		UserId:     "u1",
		Visibility: models.VisibilityPublic,
		RenoteId:   p1.Id,
	})

	result := buildFor(t, store, builder, "u1")

	require.Len(t, result.Items, 2)

	boost := result.Items[0]
	assert.Equal(t, "Boost by Alice: hello", boost.Title)
	assert.Equal(t, "https://notes.example.com/notes/"+p2.Id, boost.Link)
	assert.Contains(t, boost.Content, `<span class="renote_note without_img"></span>`)
	assert.Contains(t, boost.Content, "<hr>Alice(@alice@notes.example.com) says: <br>hello")

	post := result.Items[1]
	assert.Equal(t, "Post by Alice: hello", post.Title)
	assert.Equal(t, "https://notes.example.com/notes/"+p1.Id, post.Link)
	assert.Equal(t, `hello <span class="new_note without_img"></span>`, post.Content)
	assert.Equal(t, aid.SafeParse(p1.Id), post.Date)
}

func TestBuildFeedMetadata(t *testing.T) {
	store, builder := newFixture()
	profile := store.profiles["u1"]
	profile.Description = "gardening and compilers"
	profile.FollowersVisibility = "followers"
	store.profiles["u1"] = profile

	newest := store.addNote(models.Note{
		Id:         idAt(5),
		UserId:     "u1",
		Text:       "latest",
		Visibility: models.VisibilityHome,
	})

	result := buildFor(t, store, builder, "u1")

	assert.Equal(t, "https://notes.example.com/@alice", result.Id)
	assert.Equal(t, "https://notes.example.com/@alice", result.Author.Link)
	assert.Equal(t, "Alice", result.Author.Name)
	assert.Equal(t, "Alice (@alice@notes.example.com)", result.Title)
	assert.Equal(t, "3 Notes, 12 Following, ? Followers · gardening and compilers", result.Description)
	assert.Equal(t, "https://notes.example.com/identicon/alice", result.Image)
	require.NotNil(t, result.Updated)
	assert.Equal(t, aid.SafeParse(newest.Id), *result.Updated)
}

func TestBuildFeedEmptyHistory(t *testing.T) {
	store, builder := newFixture()

	result := buildFor(t, store, builder, "u1")

	assert.Empty(t, result.Items)
	assert.Nil(t, result.Updated)
}

func TestBuildFeedMissingProfileIsFatal(t *testing.T) {
	store, builder := newFixture()
	delete(store.profiles, "u1")

	user, err := store.UserById(context.Background(), "u1")
	require.NoError(t, err)

	_, err = builder.BuildFeed(context.Background(), user)
	assert.Error(t, err)
}

func TestThreadDepthBound(t *testing.T) {
	store, builder := newFixture()

	// Reply chain longer than the depth bound: root -> a15 -> ... -> a1
	previous := ""
	for i := 1; i <= 15; i++ {
		store.addNote(models.Note{
			Id:         idAt(i),
			UserId:     "u1",
			Text:       "ancestor",
			Visibility: models.VisibilityPublic,
			ReplyId:    previous,
		})
		previous = idAt(i)
	}
	store.addNote(models.Note{
		Id:         idAt(16),
		UserId:     "u1",
		Text:       "root",
		Visibility: models.VisibilityPublic,
		ReplyId:    previous,
	})

	result := buildFor(t, store, builder, "u1")

	root := result.Items[0]
	assert.Equal(t, "root", strings.SplitN(root.Content, " ", 2)[0])
	assert.Equal(t, 10, strings.Count(root.Content, "<hr>"))
}

func TestThreadShortChainNearestFirst(t *testing.T) {
	store, builder := newFixture()

	grandparent := store.addNote(models.Note{
		Id:         idAt(1),
		UserId:     "u1",
		Text:       "grandparent",
		Visibility: models.VisibilityPublic,
	})
	parent := store.addNote(models.Note{
		Id:         idAt(2),
		UserId:     "u1",
		Text:       "parent",
		Visibility: models.VisibilityPublic,
		ReplyId:    grandparent.Id,
	})
	store.addNote(models.Note{
		Id:         idAt(3),
		UserId:     "u1",
		Text:       "leaf",
		Visibility: models.VisibilityPublic,
		ReplyId:    parent.Id,
	})

	result := buildFor(t, store, builder, "u1")

	leaf := result.Items[0]
	assert.Equal(t, 2, strings.Count(leaf.Content, "<hr>"))
	assert.Less(t, strings.Index(leaf.Content, "parent"), strings.Index(leaf.Content, "grandparent"))
}

func TestThreadCycleStops(t *testing.T) {
	store, builder := newFixture()

	// a and b reply to each other; only the immediate ancestor renders.
	store.addNote(models.Note{
		Id:         idAt(1),
		UserId:     "u1",
		Text:       "a",
		Visibility: models.VisibilityPublic,
		ReplyId:    idAt(2),
	})
	store.addNote(models.Note{
		Id:         idAt(2),
		UserId:     "u1",
		Text:       "b",
		Visibility: models.VisibilityPublic,
		ReplyId:    idAt(1),
	})

	result := buildFor(t, store, builder, "u1")

	require.Len(t, result.Items, 2)
	for _, item := range result.Items {
		assert.Equal(t, 1, strings.Count(item.Content, "<hr>"))
	}
}

func TestThreadBrokenAncestorStopsSilently(t *testing.T) {
	store, builder := newFixture()

	store.addNote(models.Note{
		Id:         idAt(1),
		UserId:     "u1",
		Text:       "orphan",
		Visibility: models.VisibilityPublic,
		ReplyId:    "zzzzzzzzzz",
	})

	result := buildFor(t, store, builder, "u1")

	require.Len(t, result.Items, 1)
	assert.NotContains(t, result.Items[0].Content, "<hr>")
	assert.Equal(t, "Reply by Alice: orphan", result.Items[0].Title)
}

func TestVisibilityFiltering(t *testing.T) {
	store, builder := newFixture()

	hidden := store.addNote(models.Note{
		Id:         idAt(1),
		UserId:     "u1",
		Text:       "followers only",
		Visibility: models.VisibilityFollowers,
	})
	store.addNote(models.Note{
		Id:         idAt(2),
		UserId:     "u1",
		Text:       "direct",
		Visibility: models.VisibilitySpecified,
	})
	store.addNote(models.Note{
		Id:         idAt(3),
		UserId:     "u1",
		Text:       "reply to hidden",
		Visibility: models.VisibilityPublic,
		ReplyId:    hidden.Id,
	})

	result := buildFor(t, store, builder, "u1")

	require.Len(t, result.Items, 1)
	assert.NotContains(t, result.Items[0].Content, "followers only")
	assert.NotContains(t, result.Items[0].Content, "<hr>")
}

func TestRenoteTakesPrecedenceOverReply(t *testing.T) {
	store, builder := newFixture()

	renoted := store.addNote(models.Note{
		Id:         idAt(1),
		UserId:     "u1",
		Text:       "renoted",
		Visibility: models.VisibilityPublic,
	})
	replied := store.addNote(models.Note{
		Id:         idAt(2),
		UserId:     "u1",
		Text:       "replied",
		Visibility: models.VisibilityPublic,
	})
	both := store.addNote(models.Note{
		Id:         idAt(3),
		UserId:     "u1",
		Text:       "both",
		Visibility: models.VisibilityPublic,
		RenoteId:   renoted.Id,
		ReplyId:    replied.Id,
	})
	store.addNote(models.Note{
		Id:         idAt(4),
		UserId:     "u1",
		Text:       "leaf",
		Visibility: models.VisibilityPublic,
		ReplyId:    both.Id,
	})

	result := buildFor(t, store, builder, "u1")

	leaf := result.Items[0]
	// The ancestor fragment for "both" must say renotes, never replies.
	assert.Contains(t, leaf.Content, "renotes: <br>both")
	assert.NotContains(t, leaf.Content, "replies: <br>both")
	// Traversal follows the renote pointer, not the reply pointer.
	assert.Contains(t, leaf.Content, "says: <br>renoted")
	assert.NotContains(t, leaf.Content, "replied")

	bothItem := result.Items[1]
	assert.True(t, strings.HasPrefix(bothItem.Title, "Boost by Alice"), bothItem.Title)
	assert.Contains(t, bothItem.Content, `<span class="renote_note without_img"></span>`)
}

func TestAncestorAuthorMissingSkipsAttribution(t *testing.T) {
	store, builder := newFixture()

	parent := store.addNote(models.Note{
		Id:         idAt(1),
		UserId:     "ghost",
		Text:       "from a deleted account",
		Visibility: models.VisibilityPublic,
	})
	store.addNote(models.Note{
		Id:         idAt(2),
		UserId:     "u1",
		Text:       "reply",
		Visibility: models.VisibilityPublic,
		ReplyId:    parent.Id,
	})

	result := buildFor(t, store, builder, "u1")

	reply := result.Items[0]
	assert.Contains(t, reply.Content, "<hr>from a deleted account")
	assert.NotContains(t, reply.Content, "says:")
}

func TestFileEmbedsInItem(t *testing.T) {
	store, builder := newFixture()
	store.files["f1"] = models.DriveFile{Id: "f1", Type: "image/png", Name: "photo.png", AccessKey: "key-1"}
	store.files["f2"] = models.DriveFile{Id: "f2", Type: "application/pdf", Name: "paper.pdf", AccessKey: "key-2"}

	store.addNote(models.Note{
		Id:         idAt(1),
		UserId:     "u1",
		Text:       "attachments",
		Visibility: models.VisibilityPublic,
		FileIds:    []string{"f1", "f2", "gone"},
	})

	result := buildFor(t, store, builder, "u1")

	content := result.Items[0].Content
	assert.Contains(t, content, `<img src="https://notes.example.com/files/key-1/photo.png">`)
	assert.Contains(t, content, `download="paper.pdf"`)
	assert.Contains(t, content, `<span class="new_note with_img"></span>`)
	// The embed for the image precedes the download link, matching
	// file-list order.
	assert.Less(t, strings.Index(content, "img src"), strings.Index(content, "download"))
}

func TestContentWarningBecomesSummary(t *testing.T) {
	store, builder := newFixture()

	store.addNote(models.Note{
		Id:         idAt(1),
		UserId:     "u1",
		Text:       "the ending was wild",
		CW:         "season finale",
		Visibility: models.VisibilityPublic,
	})

	result := buildFor(t, store, builder, "u1")

	item := result.Items[0]
	assert.Equal(t, "season finale", item.Summary)
	assert.True(t, strings.HasPrefix(item.Content, "season finale<br>"), item.Content)
	assert.Equal(t, "Post by Alice: season finale", item.Title)
}

func TestBuildFeedIsIdempotent(t *testing.T) {
	store, builder := newFixture()

	p1 := store.addNote(models.Note{
		Id:         idAt(1),
		UserId:     "u1",
		Text:       "hello",
		Visibility: models.VisibilityPublic,
	})
	store.addNote(models.Note{
		Id:         idAt(2),
		UserId:     "u1",
		Text:       "again",
		Visibility: models.VisibilityPublic,
		ReplyId:    p1.Id,
	})

	first := buildFor(t, store, builder, "u1")
	second := buildFor(t, store, builder, "u1")

	assert.Equal(t, first, second)
}

func TestItemOrderIsNewestFirst(t *testing.T) {
	store, builder := newFixture()

	for i := 1; i <= 8; i++ {
		store.addNote(models.Note{
			Id:         idAt(i),
			UserId:     "u1",
			Text:       "note",
			Visibility: models.VisibilityPublic,
		})
	}

	result := buildFor(t, store, builder, "u1")

	require.Len(t, result.Items, 8)
	for i := 1; i < len(result.Items); i++ {
		assert.True(t, result.Items[i-1].Link > result.Items[i].Link,
			"items must stay newest first regardless of render completion order")
	}
}

func TestDepthBoundLimitsFetches(t *testing.T) {
	store, builder := newFixture()

	store.addNote(models.Note{
		Id:         idAt(1),
		UserId:     "u1",
		Text:       "lonely",
		Visibility: models.VisibilityPublic,
	})

	before := store.fetchCount()
	buildFor(t, store, builder, "u1")

	// An original note with no ancestry needs no per-note fetches at all.
	assert.Equal(t, before, store.fetchCount())
}
