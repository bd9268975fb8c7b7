package storage

import (
	"context"
	"strings"
	"time"

	"invite-media/domain/credential"
	"invite-media/domain/upload"
)

// ObjectMetadata describes where a new object goes
type ObjectMetadata struct {
	FolderID string
	Name     string
}

// ObjectInfo describes a stored object
type ObjectInfo struct {
	ID           string
	Name         string
	MimeType     string
	Size         int64
	CreatedTime  time.Time
	ThumbnailURL string
	ContentURL   string
}

// IsImage reports whether the object is an image
func (o ObjectInfo) IsImage() bool {
	return strings.HasPrefix(o.MimeType, "image/")
}

// IsVideo reports whether the object is a video
func (o ObjectInfo) IsVideo() bool {
	return strings.HasPrefix(o.MimeType, "video/")
}

// ObjectWriter creates objects in the storage API
type ObjectWriter interface {
	Create(ctx context.Context, token credential.AccessToken, meta ObjectMetadata, payload upload.Payload) (ObjectInfo, error)
}

// Gallery lists the media stored in a folder
type Gallery interface {
	ListMedia(ctx context.Context, folderID string) ([]ObjectInfo, error)
}
