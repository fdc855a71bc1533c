package folio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/eringen/folio/kv"
)

// DefaultStoreKey is the slot name that holds the JSON-encoded post list.
const DefaultStoreKey = "blogPosts"

// PostStore owns the canonical list of posts. The list is persisted as a
// single JSON array under one key of a kv.Store and mirrored in memory.
//
// The slot is loaded lazily on the first call of any operation. If it is
// absent, unreadable or malformed, the store falls back to the seed posts
// and persists them right away.
type PostStore struct {
	mu     sync.RWMutex
	slot   kv.Store
	key    string
	seed   []Post
	log    zerolog.Logger
	posts  []Post
	loaded bool
}

// StoreOption configures a PostStore.
type StoreOption func(*PostStore)

// WithKey sets the slot name (default "blogPosts").
func WithKey(key string) StoreOption {
	return func(s *PostStore) {
		if key != "" {
			s.key = key
		}
	}
}

// WithSeed replaces the built-in seed posts.
func WithSeed(posts []Post) StoreOption {
	return func(s *PostStore) {
		s.seed = clonePosts(posts)
	}
}

// WithLogger sets the logger used for read-path degradation and write failures.
func WithLogger(l zerolog.Logger) StoreOption {
	return func(s *PostStore) {
		s.log = l
	}
}

// NewPostStore creates an uninitialized store backed by slot.
func NewPostStore(slot kv.Store, opts ...StoreOption) *PostStore {
	s := &PostStore{
		slot: slot,
		key:  DefaultStoreKey,
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.seed == nil {
		s.seed = SeedPosts()
	}
	return s
}

// Key returns the slot name the store persists into.
func (s *PostStore) Key() string { return s.key }

// ensureLoaded performs the one-time uninitialized -> initialized transition.
// It tries a read lock first and only takes the write lock when loading. A
// load cut short by ctx returns the context error and leaves the store
// uninitialized so the next call retries.
func (s *PostStore) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *PostStore) loadLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	posts, err := s.read(ctx)
	if err == nil {
		s.posts = posts
		s.loaded = true
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.log.Debug().Err(err).Str("key", s.key).Msg("load interrupted, will retry")
		if ctxErr != nil {
			return ctxErr
		}
		return err
	}

	s.loaded = true
	if errors.Is(err, kv.ErrNotFound) {
		s.log.Info().Str("key", s.key).Msg("no stored posts, seeding")
	} else {
		s.log.Warn().Err(err).Str("key", s.key).Msg("stored posts unavailable, falling back to seed")
	}
	s.posts = clonePosts(s.seed)
	if err := s.write(ctx, s.posts); err != nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("failed to persist seed posts")
	}
	return nil
}

func (s *PostStore) read(ctx context.Context) ([]Post, error) {
	raw, err := s.slot.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	var posts []Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	if posts == nil {
		// JSON null is not an array.
		return nil, fmt.Errorf("decode %s: not an array", s.key)
	}
	for i := range posts {
		if posts[i].Tags == nil {
			posts[i].Tags = []string{}
		}
	}
	return posts, nil
}

func (s *PostStore) write(ctx context.Context, posts []Post) error {
	raw, err := json.Marshal(posts)
	if err != nil {
		return err
	}
	return s.slot.Set(ctx, s.key, raw)
}

// commitLocked persists next and, only on success, makes it the cached list.
func (s *PostStore) commitLocked(ctx context.Context, op string, next []Post) error {
	if err := s.write(ctx, next); err != nil {
		s.log.Error().Err(err).Str("op", op).Str("key", s.key).Msg("failed to persist posts")
		return &PersistenceError{Op: op, Key: s.key, Err: err}
	}
	s.posts = next
	return nil
}

func (s *PostStore) indexLocked(id string) int {
	for i, p := range s.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// List returns copies of all posts in stored order. It never fails: when ctx
// ends before the first load completes, the seed posts are returned for this
// call only.
func (s *PostStore) List(ctx context.Context) []Post {
	if err := s.ensureLoaded(ctx); err != nil {
		return clonePosts(s.seed)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePosts(s.posts)
}

// Get returns a copy of the post with the given id. ok is false when no such
// post exists.
func (s *PostStore) Get(ctx context.Context, id string) (post Post, ok bool) {
	if err := s.ensureLoaded(ctx); err != nil {
		for _, p := range s.seed {
			if p.ID == id {
				return p.clone(), true
			}
		}
		return Post{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.posts[i].clone(), true
	}
	return Post{}, false
}

// Create appends p to the collection. The caller assigns the id.
func (s *PostStore) Create(ctx context.Context, p Post) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(p.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
	}
	next := make([]Post, 0, len(s.posts)+1)
	next = append(next, s.posts...)
	p = p.clone()
	if p.Tags == nil {
		p.Tags = []string{}
	}
	next = append(next, p)
	return s.commitLocked(ctx, "create", next)
}

// Update merges patch into the post with the given id. The id itself is never
// changed. Only the supplied fields are validated. Updating an unknown id is
// a no-op.
func (s *PostStore) Update(ctx context.Context, id string, patch PostPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return nil
	}
	merged := patch.apply(s.posts[i].clone())
	merged.ID = s.posts[i].ID
	next := make([]Post, len(s.posts))
	copy(next, s.posts)
	next[i] = merged
	return s.commitLocked(ctx, "update", next)
}

// Delete removes the post with the given id. Deleting an absent id is a no-op.
func (s *PostStore) Delete(ctx context.Context, id string) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return nil
	}
	next := make([]Post, 0, len(s.posts)-1)
	next = append(next, s.posts[:i]...)
	next = append(next, s.posts[i+1:]...)
	return s.commitLocked(ctx, "delete", next)
}

// Reset overwrites the slot with the seed posts.
func (s *PostStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.commitLocked(ctx, "reset", clonePosts(s.seed)); err != nil {
		return err
	}
	s.loaded = true
	return nil
}

func clonePosts(posts []Post) []Post {
	out := make([]Post, len(posts))
	for i, p := range posts {
		out[i] = p.clone()
	}
	return out
}

// SeedPosts returns a fresh copy of the built-in seed posts.
func SeedPosts() []Post {
	raw, err := EmbeddedAssets.ReadFile("embedded/seed_posts.json")
	if err != nil {
		panic(fmt.Sprintf("folio: embedded seed missing: %v", err))
	}
	var posts []Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		panic(fmt.Sprintf("folio: embedded seed malformed: %v", err))
	}
	return posts
}
