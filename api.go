package folio

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func (a *App) handleAPIList(c echo.Context) error {
	return c.JSON(http.StatusOK, a.Store.List(c.Request().Context()))
}

func (a *App) handleAPIGet(c echo.Context) error {
	post, ok := a.Store.Get(c.Request().Context(), c.Param("id"))
	if !ok {
		return a.renderNotFound(c)
	}
	return c.JSON(http.StatusOK, post)
}

// handleAPICreate stores the posted post. A missing id is generated and a
// missing date defaults to today.
func (a *App) handleAPICreate(c echo.Context) error {
	var post Post
	if err := c.Bind(&post); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	if strings.TrimSpace(post.ID) == "" {
		post.ID = a.newID()
	}
	if post.Date == "" {
		post.Date = a.now().Format(DateLayout)
	}
	if err := a.Store.Create(c.Request().Context(), post); err != nil {
		return err
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	return c.JSON(http.StatusCreated, post)
}

// handleAPIUpdate applies a sparse update. Fields absent from the body are
// left unchanged; an id in the body is ignored.
func (a *App) handleAPIUpdate(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	if _, ok := a.Store.Get(ctx, id); !ok {
		return a.renderNotFound(c)
	}
	var patch PostPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	if err := a.Store.Update(ctx, id, patch); err != nil {
		return err
	}
	a.Renders.Invalidate(id)
	post, _ := a.Store.Get(ctx, id)
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleAPIDelete(c echo.Context) error {
	id := c.Param("id")
	if err := a.Store.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	a.Renders.Invalidate(id)
	a.Comments.Drop(id)
	return c.NoContent(http.StatusNoContent)
}
