package ingest

import (
	"context"
	"strings"

	"invite-media/domain/credential"
	"invite-media/domain/failure"
	"invite-media/domain/storage"
	"invite-media/domain/upload"

	"github.com/rs/zerolog"
)

// Result describes a stored upload
type Result struct {
	Object storage.ObjectInfo
	Kind   upload.Kind
}

// Service is the server-side upload use case: it mints a scoped access
// token for each request and writes the payload into the target folder.
type Service struct {
	tokens credential.TokenProvider
	writer storage.ObjectWriter
	scope  string
	log    zerolog.Logger
}

// ServiceOption is a functional option for configuring Service
type ServiceOption func(*Service)

// WithLogger sets the service logger
func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// NewService creates the ingest service. scope is the OAuth scope requested
// for every write.
func NewService(tokens credential.TokenProvider, writer storage.ObjectWriter, scope string, opts ...ServiceOption) *Service {
	s := &Service{
		tokens: tokens,
		writer: writer,
		scope:  scope,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "ingest").Logger()
	return s
}

// Upload stores p in folderID. The payload is checked against the same
// admission rules the client applies before any credential is touched.
func (s *Service) Upload(ctx context.Context, folderID string, p upload.Payload) (Result, error) {
	if strings.TrimSpace(folderID) == "" || p == nil {
		return Result{}, failure.New(failure.CodeInvalidInput, "Missing file or folderId")
	}

	kind, err := upload.Check(p.Name(), p.MimeType(), p.Size())
	if err != nil {
		return Result{}, err
	}

	token, err := s.tokens.Token(ctx, s.scope)
	if err != nil {
		fe := failure.From(err)
		s.log.Error().Str("code", string(fe.Code)).Int("status", fe.Status).Msg("unable to obtain storage access token")
		return Result{Kind: kind}, fe
	}

	obj, err := s.writer.Create(ctx, token, storage.ObjectMetadata{FolderID: folderID, Name: p.Name()}, p)
	if err != nil {
		fe := failure.From(err)
		s.log.Error().
			Str("code", string(fe.Code)).
			Int("status", fe.Status).
			Str("file", p.Name()).
			Msg("storage write failed")
		return Result{Kind: kind}, fe
	}

	if obj.Name == "" {
		obj.Name = p.Name()
	}
	s.log.Info().
		Str("file", obj.Name).
		Str("kind", string(kind)).
		Int64("bytes", p.Size()).
		Msg("upload stored")
	return Result{Object: obj, Kind: kind}, nil
}
