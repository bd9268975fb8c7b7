// Package httpapi serves the media service's HTTP entry points.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"invite-media/application/ingest"
	"invite-media/domain/guest"
	"invite-media/domain/storage"
	"invite-media/domain/upload"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Uploader stores one uploaded file
type Uploader interface {
	Upload(ctx context.Context, folderID string, p upload.Payload) (ingest.Result, error)
}

// GuestService looks up guests and records responses
type GuestService interface {
	Search(ctx context.Context, query string) ([]string, error)
	SaveRSVP(ctx context.Context, rsvp guest.RSVP) error
}

// Settings configures the HTTP layer
type Settings struct {
	Addr            string
	APIKey          string
	AppConfig       guest.AppConfig
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
	ReleaseMode     bool
}

// Server wraps the gin engine with graceful shutdown helpers
type Server struct {
	settings Settings
	engine   *gin.Engine
	log      zerolog.Logger
}

// New constructs the server with its middleware and routes. Any of the
// services may be nil, in which case their routes are not registered.
func New(settings Settings, log zerolog.Logger, uploader Uploader, guests GuestService, gallery storage.Gallery) *Server {
	if settings.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if settings.MaxBodyBytes <= 0 {
		settings.MaxBodyBytes = upload.MaxVideoBytes + upload.MiB
	}
	if settings.ShutdownTimeout <= 0 {
		settings.ShutdownTimeout = 10 * time.Second
	}

	log = log.With().Str("component", "http").Logger()
	if settings.APIKey == "" {
		ev := log.Info()
		if settings.ReleaseMode {
			ev = log.Warn()
		}
		ev.Msg("API_KEY is not set, requests are not authenticated")
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(log), requestMetrics(), cors())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := &handlers{settings: settings, log: log, uploader: uploader, guests: guests, gallery: gallery}
	api := engine.Group("/", requireAPIKey(settings.APIKey))
	api.GET("/config", h.config)
	if uploader != nil {
		api.POST("/upload", h.upload)
	}
	if guests != nil {
		api.POST("/guests/search", h.searchGuests)
		api.POST("/rsvp", h.saveRSVP)
	}
	if gallery != nil {
		api.GET("/gallery", h.listGallery)
	}

	return &Server{settings: settings, engine: engine, log: log}
}

// Handler exposes the engine, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the HTTP listener and handles graceful shutdown via context cancellation
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.settings.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.settings.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.settings.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
