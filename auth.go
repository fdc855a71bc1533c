package folio

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/views"
)

const minPasswordLength = 6

func (a *App) authPage(c echo.Context, title string) views.AuthPage {
	return views.AuthPage{Site: a.site(c), Meta: views.PageMeta{Title: title}}
}

func (a *App) handleLoginPage(c echo.Context) error {
	if IsLoggedIn(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, a.Views.Login(a.authPage(c, "Log in")))
}

// handleLogin compares the submitted credentials with the configured admin
// account. Only failed attempts count against the rate limit.
func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	user := strings.TrimSpace(c.FormValue("username"))
	pass := c.FormValue("password")

	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.Config.AdminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1
	if userOK && passOK {
		if err := setLoginSession(c, user); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	a.loginLimiter.Record(ip)
	page := a.authPage(c, "Log in")
	page.Username = user
	page.Error = "Invalid username or password."
	return RenderStatus(c, http.StatusUnauthorized, a.Views.Login(page))
}

func (a *App) handleRegisterPage(c echo.Context) error {
	if IsLoggedIn(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, a.Views.Register(a.authPage(c, "Register")))
}

// handleRegister validates the form and logs the visitor in. No account is
// stored; registration only sets the session flag.
func (a *App) handleRegister(c echo.Context) error {
	if !a.loginLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many attempts. Try again later.")
	}
	user := strings.TrimSpace(c.FormValue("username"))
	pass := c.FormValue("password")
	confirm := c.FormValue("confirm")

	page := a.authPage(c, "Register")
	page.Username = user
	switch {
	case user == "":
		page.Error = "Username is required."
	case len(pass) < minPasswordLength:
		page.Error = "Password too short."
	case pass != confirm:
		page.Error = "Passwords do not match."
	}
	if page.Error != "" {
		return RenderStatus(c, http.StatusBadRequest, a.Views.Register(page))
	}

	if err := setLoginSession(c, user); err != nil {
		return err
	}
	a.Log.Info().Str("username", user).Msg("registered")
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func handleLogout(c echo.Context) error {
	if err := clearLoginSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}
