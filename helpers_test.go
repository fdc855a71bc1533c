package folio

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	assert.Equal(t, "https://example.com", BuildURL("https://example.com"))
	assert.Equal(t, "https://example.com/blog/a%20b/", BuildURL("https://example.com", "blog", "a b"))
	assert.Equal(t, "https://example.com/sub/blog/x/", BuildURL("https://example.com/sub/", "blog", "x"))
}

func TestParseTagList(t *testing.T) {
	assert.Equal(t, []string{"go", "web dev"}, ParseTagList(" go, ,web dev ,"))
	assert.Equal(t, []string{}, ParseTagList(""))
	assert.Equal(t, "a, b", JoinTags([]string{"a", "b"}))
}

func TestSortByDateDesc(t *testing.T) {
	posts := []Post{
		{ID: "old", Date: "2023-01-01"},
		{ID: "a", Date: "2024-01-01"},
		{ID: "b", Date: "2024-01-01"},
	}
	assert.Equal(t, []string{"a", "b", "old"}, ids(SortByDateDesc(posts)))
	assert.Equal(t, "old", posts[0].ID, "input is not reordered")
}

func TestFilterByTag(t *testing.T) {
	posts := testPosts()
	assert.Equal(t, []string{"go"}, ids(FilterByTag(posts, "GO")))
	assert.Equal(t, []string{"go", "rust"}, ids(FilterByTag(posts, " lang ")))
	assert.Len(t, FilterByTag(posts, ""), 3)
	assert.Empty(t, FilterByTag(posts, "none"))
}

func TestListTags(t *testing.T) {
	assert.Equal(t, []string{"go", "lang", "web"}, ListTags(testPosts()))
	assert.Empty(t, ListTags(nil))
}

func TestSplitFeatured(t *testing.T) {
	featured, rest, ok := SplitFeatured(testPosts())
	require.True(t, ok)
	assert.Equal(t, "go", featured.ID)
	assert.Equal(t, []string{"rust", "css"}, ids(rest))

	_, _, ok = SplitFeatured(nil)
	assert.False(t, ok)
}

func TestFilterRelatedPosts(t *testing.T) {
	posts := []Post{
		{ID: "cur", Tags: []string{"Go"}},
		{ID: "1", Tags: []string{"go"}},
		{ID: "2", Tags: []string{"rust"}},
		{ID: "3", Tags: []string{"GO", "web"}},
		{ID: "4", Tags: []string{"go"}},
		{ID: "5", Tags: []string{"go"}},
	}
	related := FilterRelatedPosts(posts[0], posts)
	assert.Equal(t, []string{"1", "3", "4"}, ids(related))
	assert.Empty(t, FilterRelatedPosts(Post{ID: "x"}, posts))
}

func TestJsonLD(t *testing.T) {
	cfg := SiteConfig{Name: "Blog", URL: "https://example.com", Author: "Ann"}

	var site map[string]any
	require.NoError(t, json.Unmarshal([]byte(WebsiteJsonLD(cfg)), &site))
	assert.Equal(t, "WebSite", site["@type"])
	assert.Equal(t, "https://example.com", site["url"])

	var posting map[string]any
	post := Post{ID: "p1", Title: "Hello", Summary: "S", Date: "2024-01-02", Tags: []string{"a", "b"}}
	require.NoError(t, json.Unmarshal([]byte(BlogPostingJsonLD(post, cfg)), &posting))
	assert.Equal(t, "BlogPosting", posting["@type"])
	assert.Equal(t, "https://example.com/blog/p1/", posting["url"])
	assert.Equal(t, "a, b", posting["keywords"])
	assert.Equal(t, "Blog", posting["publisher"].(map[string]any)["name"])
}
