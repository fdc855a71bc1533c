package folio

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/ai"
)

var errAIDisabled = errorBody{Error: "ai_disabled", Message: "AI helpers are not configured"}

func (a *App) handleSuggestTags(c echo.Context) error {
	if a.AI.Tags == nil {
		return c.JSON(http.StatusServiceUnavailable, errAIDisabled)
	}
	var in ai.SuggestTagsInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	out, err := a.AI.Tags.SuggestTags(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (a *App) handleGenerateImage(c echo.Context) error {
	if a.AI.Images == nil {
		return c.JSON(http.StatusServiceUnavailable, errAIDisabled)
	}
	var in ai.GenerateImageInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	out, err := a.AI.Images.GenerateImage(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
