package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	appupload "invite-media/application/upload"
	"invite-media/domain/upload"
	"invite-media/infrastructure/filesystem"
	"invite-media/infrastructure/imaging"
	"invite-media/infrastructure/logging"
	"invite-media/infrastructure/uploadclient"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	uploadFolderID   string
	uploadNoCompress bool
	uploadBatchSize  int
)

var uploadCmd = &cobra.Command{
	Use:   "upload PATH...",
	Short: "Upload photos and videos to the shared folder",
	Long: `Upload photos and videos through the media service.

Each path may be a file or a directory; directories contribute the files
directly inside them. Files that are not an accepted image or video type,
or that are too large, are skipped and reported. Large photos are shrunk
before they are sent unless --no-compress is given.

Files are sent a few at a time. One failed file never stops the others.

Example:
  invite-media upload ~/Pictures/party
  invite-media upload --no-compress IMG_0001.jpg IMG_0002.heic clip.mp4`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().StringVar(&uploadFolderID, "folder", "", "Destination folder ID (defaults to config, then the service's folder)")
	uploadCmd.Flags().BoolVar(&uploadNoCompress, "no-compress", false, "Send photos exactly as they are")
	uploadCmd.Flags().IntVar(&uploadBatchSize, "batch-size", 0, "How many files to send at once (defaults to config)")
}

// UploadOptions carries the scheduling settings for one run
type UploadOptions struct {
	BatchSize          int
	Timeout            time.Duration
	CompressionWorkers int
	Logger             zerolog.Logger
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	checker := filesystem.NewChecker()
	paths, err := checker.Expand(args)
	if err != nil {
		return err
	}

	payloads := make([]upload.Payload, 0, len(paths))
	for _, p := range paths {
		payload, err := checker.Payload(p)
		if err != nil {
			return err
		}
		payloads = append(payloads, payload)
	}

	client := uploadclient.New(
		cfg.Service.Endpoint,
		uploadclient.WithAPIKey(cfg.Service.APIKey),
		uploadclient.WithBearerToken(cfg.Service.BearerToken),
	)

	// --folder wins over the config file, which wins over GET /config
	var folders appupload.FolderSource = client
	switch {
	case uploadFolderID != "":
		folders = appupload.StaticFolder(uploadFolderID)
	case cfg.Upload.FolderID != "":
		folders = appupload.StaticFolder(cfg.Upload.FolderID)
	}

	var encoder upload.Encoder
	if !uploadNoCompress {
		encoder = imaging.NewEncoder()
	}

	log, err := logging.New(os.Stderr, "warn", "console")
	if err != nil {
		return err
	}

	batchSize := cfg.Upload.BatchSize
	if uploadBatchSize > 0 {
		batchSize = uploadBatchSize
	}

	return RunUploadWithDependencies(
		cmd.Context(),
		client,
		folders,
		encoder,
		payloads,
		UploadOptions{
			BatchSize:          batchSize,
			Timeout:            cfg.Upload.Timeout,
			CompressionWorkers: cfg.Upload.CompressionWorkers,
			Logger:             log,
		},
		os.Stdout,
	)
}

// RunUploadWithDependencies runs the upload command with injected dependencies (for testing).
// A nil encoder disables compression.
func RunUploadWithDependencies(
	ctx context.Context,
	transport upload.Transport,
	folders appupload.FolderSource,
	encoder upload.Encoder,
	payloads []upload.Payload,
	opts UploadOptions,
	output io.Writer,
) error {
	schedOpts := []appupload.SchedulerOption{
		appupload.WithBatchSize(opts.BatchSize),
		appupload.WithTimeout(opts.Timeout),
	}
	if encoder != nil {
		compressor := appupload.NewCompressor(
			encoder,
			appupload.WithWorkers(opts.CompressionWorkers),
			appupload.WithLogger(opts.Logger),
		)
		schedOpts = append(schedOpts, appupload.WithCompressor(compressor))
	}

	service := appupload.NewService(transport, folders, output, schedOpts...)

	admitted, _ := service.Admit(payloads...)
	if len(admitted) == 0 {
		return fmt.Errorf("no files to upload")
	}

	fmt.Fprintf(output, "Uploading %d file(s)...\n", len(admitted))

	summary, err := service.Upload(ctx)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	fmt.Fprintln(output)
	fmt.Fprintf(output, "Upload complete: %s\n", summary)

	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed to upload", summary.Failed)
	}
	return nil
}
