package views

// Site carries site-wide settings and the visitor's session state into every
// page. Handlers fill it so nothing is hardcoded in the templates.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
	LoggedIn    bool
	CSRFToken   string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// PostView is a post prepared for display.
type PostView struct {
	ID      string
	Title   string
	Summary string
	Date    string
	Tags    []string
	Link    string
	Content string        // raw source, for edit forms
	HTML    string // rendered and sanitized body, written unescaped
}

// CommentView is a reader comment prepared for display.
type CommentView struct {
	Author   string
	Initials string
	Text     string
	Posted   string
}

type HomePage struct {
	Site      Site
	Meta      PageMeta
	JSONLD    string // JSON-LD document, written unescaped
	Featured  *PostView
	Posts     []PostView
	Tags      []string
	ActiveTag string
}

type PostPage struct {
	Site     Site
	Meta     PageMeta
	JSONLD   string
	Post     PostView
	Related  []PostView
	Comments CommentsPartial
}

// CommentsPartial is the comment widget. It is rendered inside PostPage and
// on its own after a comment is posted.
type CommentsPartial struct {
	PostID    string
	Comments  []CommentView
	Error     string
	CSRFToken string
}

// AuthPage backs the login and registration forms.
type AuthPage struct {
	Site     Site
	Meta     PageMeta
	Username string
	Error    string
}

type AdminPage struct {
	Site    Site
	Meta    PageMeta
	Posts   []PostView
	Message string
	Form    AdminForm
}

// AdminForm is the create/edit form. An empty ID means a new post.
type AdminForm struct {
	ID        string
	Title     string
	Summary   string
	Content   string
	Tags      string
	Date      string
	AIEnabled bool
	CSRFToken string
}

// ErrorPage backs the not-found and server-error pages.
type ErrorPage struct {
	Site Site
	Meta PageMeta
}
