// Command folio serves the blog and manages its stored posts.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eringen/folio"
	"github.com/eringen/folio/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "A small blog CMS",
	Long: `folio serves a blog with an admin dashboard, comments and AI helpers
for tags and images.

Configuration comes from the environment or a .env file in the working
directory. See SITE_*, STORE_*, ADMIN_*, SESSION_SECRET and GEMINI_API_KEY.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the folio version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "folio %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration and builds the logger every command uses.
func setup() (folio.SiteConfig, zerolog.Logger, error) {
	cfg, err := folio.LoadConfig()
	if err != nil {
		return folio.SiteConfig{}, zerolog.Nop(), err
	}
	return cfg, logger.New(cfg.LogLevel, cfg.Environment), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
