package drive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"invite-media/domain/failure"
	"invite-media/domain/storage"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// mediaFields are the file fields the gallery needs
const mediaFields = "id, name, mimeType, size, createdTime, thumbnailLink, webContentLink"

// DriveService defines the interface for Google Drive API operations
// This allows mocking the Google Drive API in tests
type DriveService interface {
	ListFiles(ctx context.Context, query string, fields string, orderBy string) ([]*drive.File, error)
}

// GoogleDriveService is the production implementation using the Google Drive API
type GoogleDriveService struct {
	service *drive.Service
}

// ListFiles lists files matching the query
func (s *GoogleDriveService) ListFiles(ctx context.Context, query string, fields string, orderBy string) ([]*drive.File, error) {
	var files []*drive.File
	err := s.service.Files.List().
		Q(query).
		Fields(googleapi.Field("nextPageToken, files(" + fields + ")")).
		OrderBy(orderBy).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Pages(ctx, func(r *drive.FileList) error {
			files = append(files, r.Files...)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Client implements storage.Gallery using Google Drive API
type Client struct {
	driveService DriveService
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithDriveService sets a custom drive service (for testing)
func WithDriveService(svc DriveService) ClientOption {
	return func(c *Client) {
		c.driveService = svc
	}
}

// NewClient creates a new Google Drive client authorized by ts.
// If no options are provided, it initializes a real Google Drive service
func NewClient(ctx context.Context, ts oauth2.TokenSource, opts ...ClientOption) (*Client, error) {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	if c.driveService == nil {
		srv, err := drive.NewService(ctx, option.WithTokenSource(ts))
		if err != nil {
			return nil, fmt.Errorf("unable to create drive service: %w", err)
		}
		c.driveService = &GoogleDriveService{service: srv}
	}

	return c, nil
}

// ListMedia implements storage.Gallery. Newest files come first.
func (c *Client) ListMedia(ctx context.Context, folderID string) ([]storage.ObjectInfo, error) {
	if strings.TrimSpace(folderID) == "" {
		return nil, failure.New(failure.CodeConfiguration, "gallery folder is not configured")
	}

	query := fmt.Sprintf("'%s' in parents and trashed = false and (mimeType contains 'image/' or mimeType contains 'video/')",
		strings.ReplaceAll(folderID, "'", `\'`))
	files, err := c.driveService.ListFiles(ctx, query, mediaFields, "createdTime desc")
	if err != nil {
		return nil, classify("failed to list files", err)
	}

	result := make([]storage.ObjectInfo, 0, len(files))
	for _, f := range files {
		result = append(result, storage.ObjectInfo{
			ID:           f.Id,
			Name:         f.Name,
			MimeType:     f.MimeType,
			Size:         f.Size,
			CreatedTime:  parseTime(f.CreatedTime),
			ThumbnailURL: f.ThumbnailLink,
			ContentURL:   f.WebContentLink,
		})
	}
	return result, nil
}

// classify turns a Drive API error into a storage failure
func classify(msg string, err error) *failure.Error {
	fe := failure.Wrap(failure.CodeStorage, msg, err)
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return fe.WithStatus(gerr.Code)
	}
	return fe
}

// parseTime parses a Google Drive timestamp string
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Ensure Client implements storage.Gallery
var _ storage.Gallery = (*Client)(nil)
