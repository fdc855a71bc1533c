package folio

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the publish date format stored on every post.
const DateLayout = "2006-01-02"

// Post is the core content type persisted by the PostStore and rendered by
// templates. Its JSON encoding is the persisted slot format.
type Post struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	Date    string   `json:"date"`
}

// Link returns the public path of the post.
func (p Post) Link() string {
	return "/blog/" + PathEscape(p.ID) + "/"
}

// clone returns a copy that shares no mutable state with p.
func (p Post) clone() Post {
	if p.Tags != nil {
		tags := make([]string, len(p.Tags))
		copy(tags, p.Tags)
		p.Tags = tags
	}
	return p
}

// Validate reports whether p can be stored.
func (p Post) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidPost)
	}
	if err := validateTitle(p.Title); err != nil {
		return err
	}
	if err := validateTags(p.Tags); err != nil {
		return err
	}
	return validateDate(p.Date)
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidPost)
	}
	return nil
}

func validateTags(tags []string) error {
	for i, t := range tags {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("%w: tag %d is empty", ErrInvalidPost, i)
		}
	}
	return nil
}

func validateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidPost, date)
	}
	return nil
}

// PostPatch is a sparse update applied by PostStore.Update. A nil field is
// left untouched. For Tags, nil means "not provided" while a non-nil empty
// slice clears the tags. A patch cannot carry an id.
type PostPatch struct {
	Title   *string  `json:"title,omitempty"`
	Summary *string  `json:"summary,omitempty"`
	Content *string  `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Date    *string  `json:"date,omitempty"`
}

// Validate checks only the fields the patch supplies, so a stored post with
// a legacy value in an untouched field stays editable.
func (u PostPatch) Validate() error {
	if u.Title != nil {
		if err := validateTitle(*u.Title); err != nil {
			return err
		}
	}
	if err := validateTags(u.Tags); err != nil {
		return err
	}
	if u.Date != nil {
		return validateDate(*u.Date)
	}
	return nil
}

// apply merges the patch into p and returns the result.
func (u PostPatch) apply(p Post) Post {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Summary != nil {
		p.Summary = *u.Summary
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.Tags != nil {
		p.Tags = append([]string{}, u.Tags...)
	}
	if u.Date != nil {
		p.Date = *u.Date
	}
	return p
}

// Comment is a reader comment attached to a post.
type Comment struct {
	PostID    string
	Author    string
	Text      string
	CreatedAt time.Time
}

// Initials returns up to two upper-case letters of the author name, used as
// the avatar fallback.
func (c Comment) Initials() string {
	r := []rune(strings.TrimSpace(c.Author))
	if len(r) > 2 {
		r = r[:2]
	}
	return strings.ToUpper(string(r))
}

// Sentinel validation errors returned by the PostStore.
var (
	ErrInvalidPost = errors.New("invalid post")
	ErrDuplicateID = errors.New("post id already exists")
)
