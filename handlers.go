package folio

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/eringen/folio/ai"
	"github.com/eringen/folio/views"
)

const commentTimeLayout = "15:04 - 2006-01-02"

// site returns the per-request site settings shared by every page.
func (a *App) site(c echo.Context) views.Site {
	return views.Site{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
		LoggedIn:    IsLoggedIn(c),
		CSRFToken:   CsrfToken(c),
	}
}

func (a *App) postView(p Post) views.PostView {
	return views.PostView{
		ID:      p.ID,
		Title:   p.Title,
		Summary: p.Summary,
		Date:    p.Date,
		Tags:    p.Tags,
		Link:    p.Link(),
		Content: p.Content,
	}
}

func (a *App) postViews(posts []Post) []views.PostView {
	out := make([]views.PostView, len(posts))
	for i, p := range posts {
		out[i] = a.postView(p)
	}
	return out
}

func (a *App) handleHome(c echo.Context) error {
	tag := normalizeTag(c.QueryParam("tag"))
	posts := a.Store.List(c.Request().Context())

	page := views.HomePage{
		Site:      a.site(c),
		Meta:      views.PageMeta{URL: BuildURL(a.Config.URL), OGType: "website"},
		JSONLD:    WebsiteJsonLD(a.Config),
		Tags:      ListTags(posts),
		ActiveTag: tag,
	}
	if featured, rest, ok := SplitFeatured(FilterByTag(posts, tag)); ok {
		fv := a.postView(featured)
		page.Featured = &fv
		page.Posts = a.postViews(rest)
	}
	if c.QueryParam("partial") == "blog" {
		return Render(c, a.Views.BlogSection(page))
	}
	return Render(c, a.Views.Home(page))
}

func (a *App) handlePost(c echo.Context) error {
	post, ok := a.Store.Get(c.Request().Context(), c.Param("id"))
	if !ok {
		return a.renderNotFound(c)
	}
	return a.renderPost(c, http.StatusOK, post, "")
}

func (a *App) renderPost(c echo.Context, code int, post Post, commentErr string) error {
	posts := SortByDateDesc(a.Store.List(c.Request().Context()))
	pv := a.postView(post)
	pv.HTML = string(a.Renders.HTML(post))

	page := views.PostPage{
		Site: a.site(c),
		Meta: views.PageMeta{
			Title:       post.Title,
			Description: post.Summary,
			URL:         BuildURL(a.Config.URL, "blog", post.ID),
			OGType:      "article",
		},
		JSONLD:   BlogPostingJsonLD(post, a.Config),
		Post:     pv,
		Related:  a.postViews(FilterRelatedPosts(post, posts)),
		Comments: a.commentsPartial(c, post.ID, commentErr),
	}
	return RenderStatus(c, code, a.Views.Post(page))
}

func (a *App) commentsPartial(c echo.Context, postID, errMsg string) views.CommentsPartial {
	comments := a.Comments.List(postID)
	out := make([]views.CommentView, len(comments))
	for i, cm := range comments {
		out[i] = views.CommentView{
			Author:   cm.Author,
			Initials: cm.Initials(),
			Text:     cm.Text,
			Posted:   cm.CreatedAt.Format(commentTimeLayout),
		}
	}
	return views.CommentsPartial{
		PostID:    postID,
		Comments:  out,
		Error:     errMsg,
		CSRFToken: CsrfToken(c),
	}
}

func (a *App) handleComment(c echo.Context) error {
	ctx := c.Request().Context()
	post, ok := a.Store.Get(ctx, c.Param("id"))
	if !ok {
		return a.renderNotFound(c)
	}
	if !a.commentLimiter.Allow(c.RealIP()) {
		return a.renderPost(c, http.StatusTooManyRequests, post, "Too many comments. Try again later.")
	}
	if _, err := a.Comments.Add(post.ID, c.FormValue("name"), c.FormValue("text")); err != nil {
		if errors.Is(err, ErrInvalidComment) {
			msg := strings.TrimPrefix(err.Error(), ErrInvalidComment.Error()+": ")
			return a.renderPost(c, http.StatusBadRequest, post, msg)
		}
		return err
	}
	zerolog.Ctx(ctx).Debug().Str("post", post.ID).Msg("comment added")
	if c.QueryParam("partial") == "comments" {
		return Render(c, a.Views.Comments(a.commentsPartial(c, post.ID, "")))
	}
	return c.Redirect(http.StatusSeeOther, post.Link()+"#comments")
}

func (a *App) handleSitemap(c echo.Context) error {
	return a.renderSitemap(c, SortByDateDesc(a.Store.List(c.Request().Context())))
}

func (a *App) handleFeed(c echo.Context) error {
	return a.renderRSS(c, SortByDateDesc(a.Store.List(c.Request().Context())))
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nDisallow: /admin/\nDisallow: /api/\nSitemap: " + strings.TrimSuffix(a.Config.URL, "/") + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func (a *App) renderNotFound(c echo.Context) error {
	if wantsJSON(c) {
		return c.JSON(http.StatusNotFound, errorBody{Error: "not_found", Message: "post not found"})
	}
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(views.ErrorPage{Site: a.site(c)}))
}

// errorBody is the JSON error shape of the API and AI endpoints.
type errorBody struct {
	Error   string `json:"error"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

func wantsJSON(c echo.Context) bool {
	path := c.Request().URL.Path
	return strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/admin/ai/")
}

// classifyError maps domain errors to an HTTP status and JSON body.
func classifyError(err error) (int, errorBody) {
	var (
		perr *PersistenceError
		gerr *ai.GenerationError
		herr *echo.HTTPError
	)
	switch {
	case errors.As(err, &perr):
		return http.StatusServiceUnavailable, errorBody{Error: "persistence_error", Message: "posts could not be saved, try again later"}
	case errors.As(err, &gerr):
		return http.StatusBadGateway, errorBody{Error: "generation_failed", Reason: gerr.Reason, Message: gerr.Error()}
	case errors.Is(err, ErrInvalidPost), errors.Is(err, ErrInvalidComment):
		return http.StatusBadRequest, errorBody{Error: "invalid_request", Message: err.Error()}
	case errors.Is(err, ErrDuplicateID):
		return http.StatusConflict, errorBody{Error: "conflict", Message: err.Error()}
	case errors.As(err, &herr):
		msg, ok := herr.Message.(string)
		if !ok {
			msg = http.StatusText(herr.Code)
		}
		return herr.Code, errorBody{Error: strings.ToLower(strings.ReplaceAll(http.StatusText(herr.Code), " ", "_")), Message: msg}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal_error", Message: http.StatusText(http.StatusInternalServerError)}
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, body := classifyError(err)
	if code >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Int("status", code).Msg("request failed")
	}

	if wantsJSON(c) {
		_ = c.JSON(code, body)
		return
	}
	switch {
	case code == http.StatusNotFound:
		_ = RenderStatus(c, code, a.Views.NotFound(views.ErrorPage{Site: a.site(c)}))
	case code >= http.StatusInternalServerError:
		_ = RenderStatus(c, code, a.Views.ServerError(views.ErrorPage{Site: a.site(c)}))
	default:
		_ = c.String(code, body.Message)
	}
}
