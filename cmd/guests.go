package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"invite-media/infrastructure/uploadclient"

	"github.com/spf13/cobra"
)

// GuestSearcher looks up guest names (allows mocking in tests)
type GuestSearcher interface {
	SearchGuests(ctx context.Context, query string) ([]string, error)
}

var guestsCmd = &cobra.Command{
	Use:   "guests",
	Short: "Look up the guest list",
}

var guestsSearchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Find guests whose name contains QUERY",
	Long: `Find guests whose name contains QUERY, ignoring case.

Example:
  invite-media guests search smith`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGuestsSearch,
}

func init() {
	rootCmd.AddCommand(guestsCmd)
	guestsCmd.AddCommand(guestsSearchCmd)
}

func runGuestsSearch(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	client := uploadclient.New(
		cfg.Service.Endpoint,
		uploadclient.WithAPIKey(cfg.Service.APIKey),
		uploadclient.WithBearerToken(cfg.Service.BearerToken),
	)
	return RunGuestsSearchWithDependencies(cmd.Context(), client, strings.Join(args, " "), os.Stdout)
}

// RunGuestsSearchWithDependencies prints the matching names (for testing)
func RunGuestsSearchWithDependencies(ctx context.Context, searcher GuestSearcher, query string, output io.Writer) error {
	names, err := searcher.SearchGuests(ctx, strings.TrimSpace(query))
	if err != nil {
		return fmt.Errorf("guest search failed: %w", err)
	}

	if len(names) == 0 {
		fmt.Fprintf(output, "No guests match %q.\n", query)
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(output, name)
	}
	return nil
}
