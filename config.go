package folio

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string `mapstructure:"SITE_NAME"`        // Site name (default "Folio")
	URL         string `mapstructure:"SITE_URL"`         // Canonical URL (default "http://localhost:3000")
	Description string `mapstructure:"SITE_DESCRIPTION"` // Site description for RSS and meta tags
	Author      string `mapstructure:"SITE_AUTHOR"`      // Author name for JSON-LD

	Addr        string `mapstructure:"ADDR"`        // Listen address (default ":3000")
	Environment string `mapstructure:"ENVIRONMENT"` // "development" switches to console logs
	LogLevel    string `mapstructure:"LOG_LEVEL"`   // debug, info, warn, error

	StoreBackend  string `mapstructure:"STORE_BACKEND"`  // memory, sqlite, s3, postgres (default sqlite)
	StoreKey      string `mapstructure:"STORE_KEY"`      // Slot name (default "blogPosts")
	StoreCompress bool   `mapstructure:"STORE_COMPRESS"` // zstd-compress the slot at rest
	DatabasePath  string `mapstructure:"DATABASE_PATH"`  // SQLite path (default "data/folio.db")
	DatabaseURL   string `mapstructure:"DATABASE_URL"`   // PostgreSQL URL for the postgres backend

	S3Bucket          string `mapstructure:"S3_BUCKET"`
	S3Prefix          string `mapstructure:"S3_PREFIX"`
	S3Endpoint        string `mapstructure:"S3_ENDPOINT"`
	S3Region          string `mapstructure:"S3_REGION"`
	S3AccessKeyID     string `mapstructure:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `mapstructure:"S3_SECRET_ACCESS_KEY"`

	AdminUsername string `mapstructure:"ADMIN_USERNAME"` // default "admin"
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"` // Required: admin login password
	SessionSecret string `mapstructure:"SESSION_SECRET"` // Required: session encryption secret
	CookieSecure  bool   `mapstructure:"COOKIE_SECURE"`  // Set true for HTTPS

	GeminiAPIKey  string `mapstructure:"GEMINI_API_KEY"`  // Enables the AI helpers
	TagModel      string `mapstructure:"TAG_MODEL"`       // default "gemini-2.0-flash"
	ImageModel    string `mapstructure:"IMAGE_MODEL"`     // default "gemini-2.0-flash-exp"
	ImageMaxWidth int    `mapstructure:"IMAGE_MAX_WIDTH"` // 0 keeps generated images as returned

	RenderCacheTTL time.Duration `mapstructure:"RENDER_CACHE_TTL"` // Rendered content TTL (default 5m)
}

var configKeys = []string{
	"SITE_NAME", "SITE_URL", "SITE_DESCRIPTION", "SITE_AUTHOR",
	"ADDR", "ENVIRONMENT", "LOG_LEVEL",
	"STORE_BACKEND", "STORE_KEY", "STORE_COMPRESS", "DATABASE_PATH", "DATABASE_URL",
	"S3_BUCKET", "S3_PREFIX", "S3_ENDPOINT", "S3_REGION", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY",
	"ADMIN_USERNAME", "ADMIN_PASSWORD", "SESSION_SECRET", "COOKIE_SECURE",
	"GEMINI_API_KEY", "TAG_MODEL", "IMAGE_MODEL", "IMAGE_MAX_WIDTH",
	"RENDER_CACHE_TTL",
}

// LoadConfig reads a .env file when present and then the process environment
// into a SiteConfig with defaults applied.
func LoadConfig() (SiteConfig, error) {
	// A missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	v := viper.New()
	for _, key := range configKeys {
		v.SetDefault(key, "")
	}
	v.SetDefault("STORE_COMPRESS", false)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("IMAGE_MAX_WIDTH", 0)
	v.SetDefault("RENDER_CACHE_TTL", "0s")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("unmarshal configuration: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Folio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.StoreBackend == "" {
		c.StoreBackend = "sqlite"
	}
	if c.StoreKey == "" {
		c.StoreKey = DefaultStoreKey
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/folio.db"
	}
	if c.AdminUsername == "" {
		c.AdminUsername = "admin"
	}
	if c.TagModel == "" {
		c.TagModel = "gemini-2.0-flash"
	}
	if c.ImageModel == "" {
		c.ImageModel = "gemini-2.0-flash-exp"
	}
	if c.RenderCacheTTL == 0 {
		c.RenderCacheTTL = 5 * time.Minute
	}
}

// validateServe checks the settings that serving requires.
func (c SiteConfig) validateServe() error {
	if c.AdminPassword == "" {
		return errors.New("folio: ADMIN_PASSWORD is required")
	}
	if c.SessionSecret == "" {
		return errors.New("folio: SESSION_SECRET is required")
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithViews replaces the default templates.
func WithViews(views ViewFuncs) Option {
	return func(a *App) {
		a.Views = views
	}
}

// WithStore uses an already constructed PostStore instead of opening one
// from the configured backend.
func WithStore(store *PostStore) Option {
	return func(a *App) {
		a.Store = store
	}
}

// WithAI sets the AI helpers. Without it the helpers are built from
// GEMINI_API_KEY when that is set.
func WithAI(helpers AIHelpers) Option {
	return func(a *App) {
		a.AI = helpers
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
