package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"invite-media/domain/guest"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// ServerConfig holds the environment driven configuration for the media service.
// Service-account secrets are not part of it: they are read on every request.
type ServerConfig struct {
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES" envDefault:"525336576"`

	// Caller authentication
	APIKey string `env:"API_KEY"`

	// Token exchange
	TokenURL         string        `env:"GOOGLE_TOKEN_URL"`
	TokenCache       bool          `env:"TOKEN_CACHE_ENABLED" envDefault:"false"`
	TokenCacheMargin time.Duration `env:"TOKEN_CACHE_MARGIN" envDefault:"60s"`

	// Storage
	DriveUploadURL string `env:"DRIVE_UPLOAD_URL"`

	// Public application configuration
	GuestSheetID    string `env:"GUEST_SHEET_ID"`
	UploadFolderID  string `env:"UPLOAD_FOLDER_ID"`
	GalleryFolderID string `env:"GALLERY_FOLDER_ID"`
	GuestRange      string `env:"GUEST_RANGE"`
	RSVPRange       string `env:"RSVP_RANGE"`
}

// LoadServer parses environment variables into ServerConfig
func LoadServer() (*ServerConfig, error) {
	cfg := &ServerConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.GuestSheetID = strings.TrimSpace(cfg.GuestSheetID)
	cfg.UploadFolderID = strings.TrimSpace(cfg.UploadFolderID)
	cfg.GalleryFolderID = strings.TrimSpace(cfg.GalleryFolderID)
	if cfg.GalleryFolderID == "" {
		cfg.GalleryFolderID = cfg.UploadFolderID
	}
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.HTTPPort)
	}
	return cfg, nil
}

// Addr returns the HTTP listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsProduction reports whether the service runs in production mode
func (c *ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// AppConfig returns the configuration served at GET /config
func (c *ServerConfig) AppConfig() guest.AppConfig {
	return guest.AppConfig{
		GuestSheetID:    c.GuestSheetID,
		UploadFolderID:  c.UploadFolderID,
		GalleryFolderID: c.GalleryFolderID,
	}
}

// LoadEnvFiles loads .env files when present. Existing variables win.
func LoadEnvFiles(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
