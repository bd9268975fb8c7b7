package guest

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNameRequired is returned when an RSVP carries no guest name
	ErrNameRequired = errors.New("guest name is required")

	// ErrNegativeGuestCount is returned when an RSVP counts fewer than zero guests
	ErrNegativeGuestCount = errors.New("guest count cannot be negative")
)

// Directory is the spreadsheet-backed guest list
type Directory interface {
	// Names returns every guest name on the list
	Names(ctx context.Context) ([]string, error)

	// AppendRSVP records a response
	AppendRSVP(ctx context.Context, rsvp RSVP) error
}

// RSVP is a guest's response to the invitation
type RSVP struct {
	Name        string
	Attending   bool
	GuestCount  int
	Message     string
	SubmittedAt time.Time
}

// Validate checks that the response can be recorded
func (r RSVP) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrNameRequired
	}
	if r.GuestCount < 0 {
		return ErrNegativeGuestCount
	}
	return nil
}

// AppConfig is the public configuration served to the site
type AppConfig struct {
	GuestSheetID    string `json:"guestSheetId"`
	UploadFolderID  string `json:"uploadFolderId"`
	GalleryFolderID string `json:"galleryFolderId"`
}
