package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	appguest "invite-media/application/guest"
	"invite-media/application/ingest"
	"invite-media/domain/storage"
	"invite-media/infrastructure/config"
	"invite-media/infrastructure/drive"
	"invite-media/infrastructure/googleauth"
	"invite-media/infrastructure/httpapi"
	"invite-media/infrastructure/logging"
	"invite-media/infrastructure/sheets"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	googledrive "google.golang.org/api/drive/v3"
	googlesheets "google.golang.org/api/sheets/v4"
)

var serveEnvFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the media service",
	Long: `Run the HTTP service behind the invitation site.

The service accepts guest uploads and stores them in the shared Drive
folder, answers guest name lookups, records RSVPs in the guest sheet and
lists the gallery. Settings come from environment variables, optionally
loaded from a .env file. The service account is read from
GOOGLE_SERVICE_ACCOUNT_EMAIL and GOOGLE_PRIVATE_KEY, or from the JSON key named by
GOOGLE_APPLICATION_CREDENTIALS, on every request.

Example:
  PORT=8080 UPLOAD_FOLDER_ID=... API_KEY=... invite-media serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveEnvFile, "env-file", ".env", "Optional file with environment variables")
}

func runServe(cmd *cobra.Command, args []string) error {
	config.LoadEnvFiles(serveEnvFile)

	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}

	log, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := buildServer(ctx, cfg, log)
	if err != nil {
		return err
	}

	log.Info().
		Str("addr", cfg.Addr()).
		Str("environment", cfg.Environment).
		Bool("api_key_required", cfg.APIKey != "").
		Bool("token_cache", cfg.TokenCache).
		Msg("starting media service")

	return server.Run(ctx)
}

// buildServer wires the Google adapters into the HTTP layer
func buildServer(ctx context.Context, cfg *config.ServerConfig, log zerolog.Logger) (*httpapi.Server, error) {
	brokerOpts := []googleauth.BrokerOption{googleauth.WithLogger(log)}
	if cfg.TokenURL != "" {
		brokerOpts = append(brokerOpts, googleauth.WithTokenURL(cfg.TokenURL))
	}
	if cfg.TokenCache {
		brokerOpts = append(brokerOpts, googleauth.WithTokenCache(cfg.TokenCacheMargin))
	}
	broker := googleauth.NewBroker(googleauth.EnvSource{}, brokerOpts...)

	var uploaderOpts []drive.UploaderOption
	if cfg.DriveUploadURL != "" {
		uploaderOpts = append(uploaderOpts, drive.WithUploadURL(cfg.DriveUploadURL))
	}
	ingestService := ingest.NewService(
		broker,
		drive.NewUploader(uploaderOpts...),
		googledrive.DriveScope,
		ingest.WithLogger(log),
	)

	var guests httpapi.GuestService
	if cfg.GuestSheetID != "" {
		sheetsClient, err := sheets.NewClient(
			ctx,
			cfg.GuestSheetID,
			broker.TokenSource(ctx, googlesheets.SpreadsheetsScope),
			sheets.WithRanges(cfg.GuestRange, cfg.RSVPRange),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets client: %w", err)
		}
		guests = appguest.NewService(sheetsClient)
	} else {
		log.Warn().Msg("GUEST_SHEET_ID not set, guest lookup and RSVP are disabled")
	}

	var gallery storage.Gallery
	if cfg.GalleryFolderID != "" {
		driveClient, err := drive.NewClient(ctx, broker.TokenSource(ctx, googledrive.DriveReadonlyScope))
		if err != nil {
			return nil, fmt.Errorf("failed to create drive client: %w", err)
		}
		gallery = driveClient
	}

	settings := httpapi.Settings{
		Addr:            cfg.Addr(),
		APIKey:          cfg.APIKey,
		AppConfig:       cfg.AppConfig(),
		MaxBodyBytes:    cfg.MaxBodyBytes,
		ShutdownTimeout: cfg.ShutdownTimeout,
		ReleaseMode:     cfg.IsProduction(),
	}
	return httpapi.New(settings, log, ingestService, guests, gallery), nil
}
