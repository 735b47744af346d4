package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/anistark/crunchythread/internal/app"
	"github.com/spf13/cobra"
)

type appOpener func(verbose bool) (*app.App, error)

type cli struct {
	open    appOpener
	verbose bool
	timeout time.Duration
}

func newRootCommand(open appOpener) *cobra.Command {
	c := &cli{open: open}

	root := &cobra.Command{
		Use:   "threadctl",
		Short: "Find the discussion thread for an anime episode",
		Long: `threadctl detects which show and episode a watch page is playing and
finds the best discussion thread for it.

Example usage:
  threadctl detect https://www.crunchyroll.com/watch/G4VUQ1ZKW/solo-leveling
  threadctl search --title "Jujutsu Kaisen" --episode 23
  threadctl communities "Frieren"
  threadctl sync-mappings`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 30*time.Second, "overall command timeout")

	root.AddCommand(c.detectCommand(), c.searchCommand(), c.communitiesCommand(), c.syncCommand())
	return root
}

func (c *cli) detectCommand() *cobra.Command {
	var htmlFile string

	cmd := &cobra.Command{
		Use:   "detect <url>",
		Short: "Print the show and episode a page is playing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			html := ""
			if htmlFile != "" {
				content, err := readHTML(cmd.InOrStdin(), htmlFile)
				if err != nil {
					return err
				}
				html = content
			}

			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				signal, err := a.Detector.Detect(ctx, args[0], html)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"payload": signal})
			})
		},
	}
	cmd.Flags().StringVar(&htmlFile, "html", "", "read the page from this file (- for stdin) instead of fetching it")
	return cmd
}

func (c *cli) searchCommand() *cobra.Command {
	var (
		title   string
		episode int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Print the best discussion thread for a show",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(title) == "" {
				return fmt.Errorf("--title is required")
			}

			var episodePtr *int
			if episode > 0 {
				episodePtr = &episode
			}

			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				best := a.Finder.Best(ctx, title, episodePtr)
				if best == nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "no discussion found")
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"thread": best})
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "show title")
	cmd.Flags().IntVar(&episode, "episode", 0, "episode number (0 = any)")
	return cmd
}

func (c *cli) communitiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "communities <title>",
		Short: "Print the communities searched for a show",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				communities, err := a.Lookup.CommunitiesFor(ctx, title)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"title": title, "communities": communities})
			})
		},
	}
}

func (c *cli) syncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-mappings",
		Short: "Load mapping files into the store once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				result, err := a.MappingSync.RunOnce(ctx)
				if writeErr := writeJSON(cmd.OutOrStdout(), result); writeErr != nil {
					return writeErr
				}
				return err
			})
		},
	}
}

func (c *cli) withApp(cmd *cobra.Command, run func(ctx context.Context, a *app.App) error) error {
	a, err := c.open(c.verbose)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return run(ctx, a)
}

func readHTML(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(content), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read html file: %w", err)
	}
	return string(content), nil
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
