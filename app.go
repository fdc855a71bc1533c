// Package folio is a small blog CMS built with Go, Echo and templ.
// It serves a public reader with comments, an admin dashboard with AI
// helpers for tags and images, a JSON API, RSS and a sitemap.
//
// Posts live in a PostStore: one JSON array kept under a single key of a
// kv.Store and mirrored in memory. Templates are supplied through ViewFuncs;
// the views package provides defaults.
package folio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/eringen/folio/ai"
	"github.com/eringen/folio/kv"
	"github.com/eringen/folio/markdown"
	"github.com/eringen/folio/views"
)

// ViewFuncs holds the components the App renders. Any of them can be
// replaced with a custom templ component through WithViews.
type ViewFuncs struct {
	Home             func(views.HomePage) templ.Component
	BlogSection      func(views.HomePage) templ.Component
	Post             func(views.PostPage) templ.Component
	Comments         func(views.CommentsPartial) templ.Component
	Login            func(views.AuthPage) templ.Component
	Register         func(views.AuthPage) templ.Component
	AdminDashboard   func(views.AdminPage) templ.Component
	AdminFormPartial func(views.AdminForm) templ.Component
	NotFound         func(views.ErrorPage) templ.Component
	ServerError      func(views.ErrorPage) templ.Component
}

// DefaultViews returns the built-in templates.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:             views.Home,
		BlogSection:      views.BlogSection,
		Post:             views.Post,
		Comments:         views.Comments,
		Login:            views.Login,
		Register:         views.Register,
		AdminDashboard:   views.Admin,
		AdminFormPartial: views.AdminFormPartial,
		NotFound:         views.NotFound,
		ServerError:      views.ServerError,
	}
}

// TagSuggester is implemented by *ai.Tagger.
type TagSuggester interface {
	SuggestTags(ctx context.Context, in ai.SuggestTagsInput) (ai.SuggestTagsOutput, error)
}

// ImageGenerator is implemented by *ai.Imager.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, in ai.GenerateImageInput) (ai.GenerateImageOutput, error)
}

// AIHelpers groups the editor's generative helpers. A nil helper disables
// its endpoint.
type AIHelpers struct {
	Tags   TagSuggester
	Images ImageGenerator
}

func (h AIHelpers) enabled() bool {
	return h.Tags != nil || h.Images != nil
}

// App is the central folio application. It wires together the post store,
// comments, render cache, AI helpers, handlers, middleware and templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *PostStore
	Comments *CommentStore
	Renders  *RenderCache
	AI       AIHelpers
	Views    ViewFuncs
	Log      zerolog.Logger

	slot           kv.Store
	loginLimiter   *RateLimiter
	commentLimiter *RateLimiter
	customRoutes   []func(*App)
	staticDir      string
	newID          func() string
	now            func() time.Time
	initialized    bool
}

// New creates a folio App with the given configuration.
func New(cfg SiteConfig, log zerolog.Logger, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     DefaultViews(),
		Log:       log,
		staticDir: "public",
		newID:     uuid.NewString,
		now:       time.Now,
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init opens the store and AI helpers when they were not supplied, then
// installs middleware and routes. Start calls it; tests call it directly and
// drive a.Echo with httptest.
func (a *App) Init(ctx context.Context) error {
	if a.initialized {
		return nil
	}
	if err := a.Config.validateServe(); err != nil {
		return err
	}

	if a.Store == nil {
		store, slot, err := OpenStore(ctx, a.Config, a.Log)
		if err != nil {
			return fmt.Errorf("folio: init store: %w", err)
		}
		a.Store, a.slot = store, slot
	}
	// Load or seed the slot before serving.
	a.Store.List(ctx)
	if !a.AI.enabled() && a.Config.GeminiAPIKey != "" {
		helpers, err := NewAIHelpers(ctx, a.Config, a.Log)
		if err != nil {
			return fmt.Errorf("folio: init ai: %w", err)
		}
		a.AI = helpers
	}

	a.Comments = NewCommentStore()
	a.Renders = NewRenderCache(a.Config.RenderCacheTTL)
	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.commentLimiter = NewRateLimiter(10, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

// Start initializes the app and serves until the server is shut down.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}
	a.Log.Info().Str("addr", a.Config.Addr).Str("backend", a.Config.StoreBackend).Bool("ai", a.AI.enabled()).Msg("folio listening")
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

// NewAIHelpers builds the Gemini-backed helpers from cfg.
func NewAIHelpers(ctx context.Context, cfg SiteConfig, log zerolog.Logger) (AIHelpers, error) {
	gen, err := ai.NewGemini(ctx, ai.GeminiConfig{
		APIKey:     cfg.GeminiAPIKey,
		TextModel:  cfg.TagModel,
		ImageModel: cfg.ImageModel,
	})
	if err != nil {
		return AIHelpers{}, err
	}
	aiLog := log.With().Str("component", "ai").Logger()
	return AIHelpers{
		Tags:   ai.NewTagger(gen, aiLog),
		Images: ai.NewImager(gen, aiLog, ai.WithMaxWidth(cfg.ImageMaxWidth)),
	}, nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Framework assets are served from the binary; everything else under
	// /public comes from the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.StripPrefix("/public/", http.FileServer(http.FS(embeddedFS)))
	e.GET("/public/folio.css", echo.WrapHandler(embeddedHandler))
	e.GET("/public/admin.js", echo.WrapHandler(embeddedHandler))
	e.GET("/public/chroma.css", handleChromaCSS)
	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/", a.handleHome)
	e.GET("/blog/:id/", a.handlePost)
	e.POST("/blog/:id/comments/", a.handleComment)

	// Auth
	e.GET("/login/", a.handleLoginPage)
	e.POST("/login/", a.handleLogin)
	e.GET("/register/", a.handleRegisterPage)
	e.POST("/register/", a.handleRegister)
	e.POST("/logout/", handleLogout)

	// Admin
	admin := e.Group("/admin", requireLogin)
	admin.GET("/", a.handleAdmin)
	admin.GET("/post/:id/", a.handleAdminPost)
	admin.POST("/save/", a.handleAdminSave)
	admin.POST("/delete/:id/", a.handleAdminDelete)
	admin.POST("/preview/", handleAdminPreview)

	aiGroup := e.Group("/admin/ai", requireLoginJSON)
	aiGroup.POST("/tags/", a.handleSuggestTags)
	aiGroup.POST("/image/", a.handleGenerateImage)

	// JSON API
	api := e.Group("/api/posts")
	api.GET("/", a.handleAPIList)
	api.GET("/:id/", a.handleAPIGet)
	api.POST("/", a.handleAPICreate, requireLoginJSON)
	api.PATCH("/:id/", a.handleAPIUpdate, requireLoginJSON)
	api.DELETE("/:id/", a.handleAPIDelete, requireLoginJSON)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.commentLimiter != nil {
		a.commentLimiter.Stop()
	}
	if a.slot != nil {
		return a.slot.Close()
	}
	return nil
}

func handleChromaCSS(c echo.Context) error {
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", []byte(markdown.StyleCSS(markdown.DefaultStyle)))
}
