package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"invite-media/domain/upload"
	"invite-media/infrastructure/uploadclient"

	"github.com/spf13/cobra"
)

// GalleryLister lists the published media (allows mocking in tests)
type GalleryLister interface {
	Gallery(ctx context.Context) ([]uploadclient.GalleryItem, error)
}

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "List the photos and videos in the shared gallery",
	Args:  cobra.NoArgs,
	RunE:  runGallery,
}

func init() {
	rootCmd.AddCommand(galleryCmd)
}

func runGallery(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	client := uploadclient.New(
		cfg.Service.Endpoint,
		uploadclient.WithAPIKey(cfg.Service.APIKey),
		uploadclient.WithBearerToken(cfg.Service.BearerToken),
	)
	return RunGalleryWithDependencies(cmd.Context(), client, os.Stdout)
}

// RunGalleryWithDependencies prints the gallery as a table (for testing)
func RunGalleryWithDependencies(ctx context.Context, lister GalleryLister, output io.Writer) error {
	items, err := lister.Gallery(ctx)
	if err != nil {
		return fmt.Errorf("failed to list gallery: %w", err)
	}

	if len(items) == 0 {
		fmt.Fprintln(output, "The gallery is empty.")
		return nil
	}

	w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tSIZE\tADDED")
	for _, item := range items {
		added := "-"
		if !item.CreatedTime.IsZero() {
			added = item.CreatedTime.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", item.Name, item.MimeType, upload.FormatSize(item.Size), added)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(output, "\n%d item(s)\n", len(items))
	return nil
}
