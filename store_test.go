package folio

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/folio/kv"
)

// flakySlot wraps an in-memory slot and can be told to fail reads or writes.
type flakySlot struct {
	*kv.Memory
	mu      sync.Mutex
	failGet error
	failSet error
	gets    int
	sets    int
}

func newFlakySlot() *flakySlot {
	return &flakySlot{Memory: kv.NewMemory()}
}

func (f *flakySlot) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.gets++
	err := f.failGet
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Memory.Get(ctx, key)
}

func (f *flakySlot) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.sets++
	err := f.failSet
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Memory.Set(ctx, key, value)
}

func (f *flakySlot) stored(t *testing.T) []Post {
	t.Helper()
	raw, err := f.Memory.Get(context.Background(), DefaultStoreKey)
	require.NoError(t, err)
	var posts []Post
	require.NoError(t, json.Unmarshal(raw, &posts))
	return posts
}

func setupTestStore(t *testing.T) (*PostStore, *flakySlot) {
	t.Helper()
	slot := newFlakySlot()
	return NewPostStore(slot), slot
}

func samplePost() Post {
	return Post{
		ID:      "x",
		Title:   "T",
		Summary: "S",
		Content: "C",
		Tags:    []string{"a", "b"},
		Date:    "2024-02-01",
	}
}

func ids(posts []Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestSeedFallbackOnEmptySlot(t *testing.T) {
	s, slot := setupTestStore(t)
	ctx := context.Background()

	first := s.List(ctx)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(first))

	second := s.List(ctx)
	assert.Equal(t, first, second)

	// The seed is persisted immediately so the slot and cache agree.
	assert.Equal(t, ids(first), ids(slot.stored(t)))
	assert.Equal(t, 1, slot.gets, "slot should be read once per store lifetime")
	assert.Equal(t, 1, slot.sets)
}

func TestLoadsPersistedPosts(t *testing.T) {
	slot := newFlakySlot()
	raw := `[{"id":"p1","title":"One","summary":"s","content":"c","tags":["go"],"date":"2024-03-01","extra":"ignored"}]`
	require.NoError(t, slot.Memory.Set(context.Background(), DefaultStoreKey, []byte(raw)))

	s := NewPostStore(slot)
	posts := s.List(context.Background())
	require.Len(t, posts, 1)
	assert.Equal(t, "One", posts[0].Title)
	assert.Equal(t, []string{"go"}, posts[0].Tags)
	assert.Zero(t, slot.sets, "existing data must not be re-seeded")
}

func TestEmptyPersistedListIsNotReseeded(t *testing.T) {
	slot := newFlakySlot()
	require.NoError(t, slot.Memory.Set(context.Background(), DefaultStoreKey, []byte(`[]`)))

	s := NewPostStore(slot)
	assert.Empty(t, s.List(context.Background()))
}

func TestSeedFallbackOnCorruptData(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"invalid json", `{not json`},
		{"object instead of array", `{"id":"1"}`},
		{"null", `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := newFlakySlot()
			require.NoError(t, slot.Memory.Set(context.Background(), DefaultStoreKey, []byte(tt.raw)))

			s := NewPostStore(slot)
			assert.Len(t, s.List(context.Background()), 5)
			assert.Len(t, slot.stored(t), 5, "corrupt slot should be overwritten by the seed")
		})
	}
}

func TestSeedFallbackWhenSlotUnavailable(t *testing.T) {
	slot := newFlakySlot()
	slot.failGet = errors.New("medium unavailable")
	slot.failSet = errors.New("medium unavailable")

	s := NewPostStore(slot)
	posts := s.List(context.Background())
	assert.Len(t, posts, 5)

	_, ok := s.Get(context.Background(), "3")
	assert.True(t, ok)
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	p := samplePost()

	require.NoError(t, s.Create(ctx, p))

	got, ok := s.Get(ctx, "x")
	require.True(t, ok)
	assert.Equal(t, p, got)
}

func TestCreateAppendsExactlyOnce(t *testing.T) {
	s, slot := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, samplePost()))

	count := 0
	for _, p := range s.List(ctx) {
		if p.ID == "x" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "x"}, ids(s.List(ctx)))
	assert.Equal(t, ids(s.List(ctx)), ids(slot.stored(t)))
}

func TestCreateRejectsDuplicateID(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, samplePost()))
	err := s.Create(ctx, samplePost())
	require.ErrorIs(t, err, ErrDuplicateID)

	seen := map[string]bool{}
	for _, p := range s.List(ctx) {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Post)
	}{
		{"missing id", func(p *Post) { p.ID = " " }},
		{"missing title", func(p *Post) { p.Title = "" }},
		{"empty tag", func(p *Post) { p.Tags = []string{"ok", ""} }},
		{"bad date", func(p *Post) { p.Date = "01/02/2024" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, slot := setupTestStore(t)
			p := samplePost()
			tt.mutate(&p)
			err := s.Create(context.Background(), p)
			require.ErrorIs(t, err, ErrInvalidPost)
			assert.Zero(t, slot.sets)
		})
	}
}

func TestCreateNilTagsStoredAsEmpty(t *testing.T) {
	s, _ := setupTestStore(t)
	p := samplePost()
	p.Tags = nil
	require.NoError(t, s.Create(context.Background(), p))

	got, ok := s.Get(context.Background(), "x")
	require.True(t, ok)
	assert.NotNil(t, got.Tags)
	assert.Empty(t, got.Tags)
}

func TestUpdateMergesProvidedFields(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, samplePost()))

	title := "T2"
	require.NoError(t, s.Update(ctx, "x", PostPatch{Title: &title}))

	got, ok := s.Get(ctx, "x")
	require.True(t, ok)
	assert.Equal(t, "T2", got.Title)
	assert.Equal(t, []string{"a", "b"}, got.Tags)
	assert.Equal(t, "S", got.Summary)
	assert.Equal(t, "C", got.Content)
	assert.Equal(t, "2024-02-01", got.Date)
	assert.Equal(t, "x", got.ID)
}

func TestUpdateAllFields(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, samplePost()))

	title, summary, content, date := "T3", "S3", "C3", "2024-05-05"
	patch := PostPatch{Title: &title, Summary: &summary, Content: &content, Tags: []string{}, Date: &date}
	require.NoError(t, s.Update(ctx, "x", patch))

	got, _ := s.Get(ctx, "x")
	assert.Equal(t, Post{ID: "x", Title: "T3", Summary: "S3", Content: "C3", Tags: []string{}, Date: "2024-05-05"}, got)
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	s, slot := setupTestStore(t)
	ctx := context.Background()
	before := s.List(ctx)
	sets := slot.sets

	title := "nope"
	require.NoError(t, s.Update(ctx, "missing", PostPatch{Title: &title}))
	assert.Equal(t, before, s.List(ctx))
	assert.Equal(t, sets, slot.sets)
}

func TestUpdateRejectsInvalidMerge(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, samplePost()))

	empty := ""
	err := s.Update(ctx, "x", PostPatch{Title: &empty})
	require.ErrorIs(t, err, ErrInvalidPost)

	got, _ := s.Get(ctx, "x")
	assert.Equal(t, "T", got.Title)
}

func TestDeleteRemovesPost(t *testing.T) {
	s, slot := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, samplePost()))
	before := len(s.List(ctx))

	require.NoError(t, s.Delete(ctx, "x"))

	_, ok := s.Get(ctx, "x")
	assert.False(t, ok)
	assert.Len(t, s.List(ctx), before-1)
	assert.NotContains(t, ids(slot.stored(t)), "x")
}

func TestDeleteMissingIsNoop(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	before := s.List(ctx)

	require.NoError(t, s.Delete(ctx, "missing"))
	assert.Equal(t, before, s.List(ctx))
}

func TestWriteFailureReturnsPersistenceError(t *testing.T) {
	s, slot := setupTestStore(t)
	ctx := context.Background()
	before := s.List(ctx)

	quota := errors.New("quota exceeded")
	slot.failSet = quota

	title := "changed"
	for name, op := range map[string]func() error{
		"create": func() error { return s.Create(ctx, samplePost()) },
		"update": func() error { return s.Update(ctx, "1", PostPatch{Title: &title}) },
		"delete": func() error { return s.Delete(ctx, "1") },
	} {
		t.Run(name, func(t *testing.T) {
			err := op()
			var perr *PersistenceError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, name, perr.Op)
			assert.Equal(t, DefaultStoreKey, perr.Key)
			assert.ErrorIs(t, err, quota)

			// Cache and persisted copy still agree with the pre-failure state.
			assert.Equal(t, before, s.List(ctx))
			assert.Equal(t, ids(before), ids(slot.stored(t)))
		})
	}
}

func TestReadsReturnCopies(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	list := s.List(ctx)
	list[0].Title = "mutated"
	list[0].Tags[0] = "mutated"

	got, ok := s.Get(ctx, list[0].ID)
	require.True(t, ok)
	assert.NotEqual(t, "mutated", got.Title)
	assert.NotEqual(t, "mutated", got.Tags[0])

	got.Tags[0] = "mutated again"
	again, _ := s.Get(ctx, got.ID)
	assert.NotEqual(t, "mutated again", again.Tags[0])
}

func TestCreateCopiesInput(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	p := samplePost()
	require.NoError(t, s.Create(ctx, p))

	p.Tags[0] = "mutated"
	got, _ := s.Get(ctx, "x")
	assert.Equal(t, []string{"a", "b"}, got.Tags)
}

func TestResetRestoresSeed(t *testing.T) {
	s, slot := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, samplePost()))
	require.NoError(t, s.Delete(ctx, "1"))

	require.NoError(t, s.Reset(ctx))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(s.List(ctx)))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(slot.stored(t)))
}

func TestCustomKeyAndSeed(t *testing.T) {
	slot := newFlakySlot()
	seed := []Post{{ID: "only", Title: "Only", Tags: []string{}, Date: "2024-01-01"}}
	s := NewPostStore(slot, WithKey("custom"), WithSeed(seed))

	assert.Equal(t, []string{"only"}, ids(s.List(context.Background())))
	_, err := slot.Memory.Get(context.Background(), "custom")
	assert.NoError(t, err)
	_, err = slot.Memory.Get(context.Background(), DefaultStoreKey)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestFreshStoresAreIndependent(t *testing.T) {
	a, _ := setupTestStore(t)
	b, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, a.Create(ctx, samplePost()))
	_, ok := b.Get(ctx, "x")
	assert.False(t, ok)
}

func TestConcurrentCreatesKeepIDsUnique(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := samplePost()
			p.ID = string(rune('a' + i))
			assert.NoError(t, s.Create(ctx, p))
		}(i)
	}
	wg.Wait()

	posts := s.List(ctx)
	assert.Len(t, posts, 25)
	seen := map[string]bool{}
	for _, p := range posts {
		assert.False(t, seen[p.ID])
		seen[p.ID] = true
	}
}

func TestCanceledLoadKeepsPersistedPosts(t *testing.T) {
	slot := newFlakySlot()
	existing := samplePost()
	existing.ID = "real"
	raw, err := json.Marshal([]Post{existing})
	require.NoError(t, err)
	require.NoError(t, slot.Memory.Set(context.Background(), DefaultStoreKey, raw))

	s := NewPostStore(slot)
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, ids(SeedPosts()), ids(s.List(canceled)), "seed is served for the interrupted read")
	_, ok := s.Get(canceled, "real")
	assert.False(t, ok)
	assert.Zero(t, slot.sets, "an interrupted load must not persist the seed")

	fresh := samplePost()
	fresh.ID = "new"
	require.ErrorIs(t, s.Create(canceled, fresh), context.Canceled)

	ctx := context.Background()
	require.NoError(t, s.Create(ctx, fresh))
	assert.Equal(t, []string{"real", "new"}, ids(slot.stored(t)))
	assert.Equal(t, []string{"real", "new"}, ids(s.List(ctx)))
}

func TestDeadlineDuringLoadRetries(t *testing.T) {
	slot := newFlakySlot()
	slot.failGet = context.DeadlineExceeded
	s := NewPostStore(slot)
	assert.Len(t, s.List(context.Background()), 5)
	assert.Zero(t, slot.sets)

	slot.mu.Lock()
	slot.failGet = nil
	slot.mu.Unlock()
	require.NoError(t, slot.Memory.Set(context.Background(), DefaultStoreKey, []byte(`[]`)))
	assert.Empty(t, s.List(context.Background()))
}

func TestUpdateKeepsLegacyFieldsEditable(t *testing.T) {
	slot := newFlakySlot()
	raw := `[{"id":"old","title":"Old","summary":"","content":"c","tags":[],"date":"2023-04-05T10:00:00Z"}]`
	require.NoError(t, slot.Memory.Set(context.Background(), DefaultStoreKey, []byte(raw)))
	s := NewPostStore(slot)
	ctx := context.Background()

	title := "Renamed"
	require.NoError(t, s.Update(ctx, "old", PostPatch{Title: &title}))
	got, _ := s.Get(ctx, "old")
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "2023-04-05T10:00:00Z", got.Date)

	bad := "05/04/2023"
	require.ErrorIs(t, s.Update(ctx, "old", PostPatch{Date: &bad}), ErrInvalidPost)
	require.ErrorIs(t, s.Update(ctx, "old", PostPatch{Tags: []string{"ok", " "}}), ErrInvalidPost)
}
