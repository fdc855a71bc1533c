package folio

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/eringen/folio/markdown"
)

const (
	maxCommentLength = 2000
	maxAuthorLength  = 80
)

// ErrInvalidComment is returned when a comment is missing its author or
// text, or is too long.
var ErrInvalidComment = errors.New("invalid comment")

// CommentStore keeps reader comments in memory, grouped by post id. Comments
// do not survive a restart.
type CommentStore struct {
	mu       sync.RWMutex
	comments map[string][]Comment
	now      func() time.Time
}

// NewCommentStore returns an empty CommentStore.
func NewCommentStore() *CommentStore {
	return &CommentStore{
		comments: make(map[string][]Comment),
		now:      time.Now,
	}
}

// Add sanitizes and appends a comment to postID. Markup is stripped from
// both fields before the emptiness check.
func (s *CommentStore) Add(postID, author, text string) (Comment, error) {
	author = plainText(author)
	text = plainText(text)
	switch {
	case author == "":
		return Comment{}, fmt.Errorf("%w: name is required", ErrInvalidComment)
	case text == "":
		return Comment{}, fmt.Errorf("%w: comment is required", ErrInvalidComment)
	case utf8.RuneCountInString(author) > maxAuthorLength:
		return Comment{}, fmt.Errorf("%w: name is longer than %d characters", ErrInvalidComment, maxAuthorLength)
	case utf8.RuneCountInString(text) > maxCommentLength:
		return Comment{}, fmt.Errorf("%w: comment is longer than %d characters", ErrInvalidComment, maxCommentLength)
	}

	c := Comment{
		PostID:    postID,
		Author:    author,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	s.mu.Lock()
	s.comments[postID] = append(s.comments[postID], c)
	s.mu.Unlock()
	return c, nil
}

// List returns the comments on postID, oldest first.
func (s *CommentStore) List(postID string) []Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Comment(nil), s.comments[postID]...)
}

// Drop removes every comment on postID.
func (s *CommentStore) Drop(postID string) {
	s.mu.Lock()
	delete(s.comments, postID)
	s.mu.Unlock()
}

// plainText strips markup and leaves unescaped text for the templates to
// escape on output.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(markdown.Sanitize(s)))
}
