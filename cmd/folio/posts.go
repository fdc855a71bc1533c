package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/eringen/folio"
)

var (
	idStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	titleStyle = lipgloss.NewStyle().Bold(true)
	metaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	tagStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Inspect and manage stored posts",
	Long: `Work with the post list held in the configured store backend.

The list is read through the same store the server uses, so an empty or
unreadable slot is seeded on first access.`,
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store *folio.PostStore) error {
			printPosts(cmd.OutOrStdout(), folio.SortByDateDesc(store.List(cmd.Context())))
			return nil
		})
	},
}

var postsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the stored posts as a JSON array",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store *folio.PostStore) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(store.List(cmd.Context()))
		})
	},
}

var postsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace the stored posts with the seed posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store *folio.PostStore) error {
			if err := store.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset %q to %d seed posts\n", store.Key(), len(store.List(cmd.Context())))
			return nil
		})
	},
}

func init() {
	postsCmd.AddCommand(postsListCmd, postsExportCmd, postsResetCmd)
	rootCmd.AddCommand(postsCmd)
}

func withStore(cmd *cobra.Command, fn func(*folio.PostStore) error) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	store, slot, err := folio.OpenStore(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer slot.Close()
	return fn(store)
}

func printPosts(w io.Writer, posts []folio.Post) {
	if len(posts) == 0 {
		fmt.Fprintln(w, metaStyle.Render("no posts"))
		return
	}
	for _, p := range posts {
		fmt.Fprintf(w, "%s  %s  %s\n", idStyle.Render(p.ID), metaStyle.Render(p.Date), titleStyle.Render(p.Title))
		if len(p.Tags) > 0 {
			fmt.Fprintf(w, "    %s\n", tagStyle.Render(strings.Join(p.Tags, ", ")))
		}
	}
}
