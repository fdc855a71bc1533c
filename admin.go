package folio

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/eringen/folio/markdown"
	"github.com/eringen/folio/views"
)

func (a *App) newForm(c echo.Context) views.AdminForm {
	return views.AdminForm{AIEnabled: a.AI.enabled(), CSRFToken: CsrfToken(c)}
}

func (a *App) editForm(c echo.Context, p Post) views.AdminForm {
	f := a.newForm(c)
	f.ID = p.ID
	f.Title = p.Title
	f.Summary = p.Summary
	f.Content = p.Content
	f.Tags = JoinTags(p.Tags)
	f.Date = p.Date
	return f
}

func (a *App) handleAdmin(c echo.Context) error {
	return a.renderAdminDashboard(c, http.StatusOK, c.QueryParam("msg"), a.newForm(c))
}

func (a *App) handleAdminPost(c echo.Context) error {
	post, ok := a.Store.Get(c.Request().Context(), c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	form := a.editForm(c, post)
	if c.QueryParam("partial") == "form" {
		return Render(c, a.Views.AdminFormPartial(form))
	}
	return a.renderAdminDashboard(c, http.StatusOK, "", form)
}

// handleAdminSave creates a post when the form has no id and updates the
// existing post otherwise. New posts get a UUID and today's date; updates
// keep their date unless one is submitted.
func (a *App) handleAdminSave(c echo.Context) error {
	ctx := c.Request().Context()
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	id := strings.TrimSpace(c.FormValue("id"))
	title := strings.TrimSpace(c.FormValue("title"))
	summary := strings.TrimSpace(c.FormValue("summary"))
	content := c.FormValue("content")
	tags := ParseTagList(c.FormValue("tags"))

	var (
		err  error
		post Post
		msg  string
	)
	if id == "" {
		post = Post{
			ID:      a.newID(),
			Title:   title,
			Summary: summary,
			Content: content,
			Tags:    tags,
			Date:    a.now().Format(DateLayout),
		}
		err = a.Store.Create(ctx, post)
		msg = "Post created."
	} else {
		existing, ok := a.Store.Get(ctx, id)
		if !ok {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		patch := PostPatch{Title: &title, Summary: &summary, Content: &content, Tags: tags}
		if date := strings.TrimSpace(c.FormValue("date")); date != "" {
			patch.Date = &date
		}
		post = patch.apply(existing)
		err = a.Store.Update(ctx, id, patch)
		msg = "Post updated."
	}

	if err != nil {
		if errors.Is(err, ErrInvalidPost) || errors.Is(err, ErrDuplicateID) {
			form := a.editForm(c, post)
			if id == "" {
				form.ID = ""
			}
			return a.renderAdminDashboard(c, http.StatusBadRequest, err.Error(), form)
		}
		return err
	}
	a.Renders.Invalidate(post.ID)
	zerolog.Ctx(ctx).Info().Str("post", post.ID).Msg(msg)
	return a.renderAdminDashboard(c, http.StatusOK, msg, a.newForm(c))
}

func (a *App) handleAdminDelete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	if err := a.Store.Delete(ctx, id); err != nil {
		return err
	}
	a.Renders.Invalidate(id)
	a.Comments.Drop(id)
	zerolog.Ctx(ctx).Info().Str("post", id).Msg("post deleted")
	return a.renderAdminDashboard(c, http.StatusOK, "Post deleted.", a.newForm(c))
}

// handleAdminPreview renders the editor's Markdown the way the post page will.
func handleAdminPreview(c echo.Context) error {
	return c.HTML(http.StatusOK, string(markdown.Render([]byte(c.FormValue("content")))))
}

func (a *App) renderAdminDashboard(c echo.Context, code int, msg string, form views.AdminForm) error {
	posts := SortByDateDesc(a.Store.List(c.Request().Context()))
	return RenderStatus(c, code, a.Views.AdminDashboard(views.AdminPage{
		Site:    a.site(c),
		Meta:    views.PageMeta{Title: "Admin"},
		Posts:   a.postViews(posts),
		Message: msg,
		Form:    form,
	}))
}
