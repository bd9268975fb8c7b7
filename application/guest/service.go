package guest

import (
	"context"
	"strings"
	"time"

	"invite-media/domain/failure"
	"invite-media/domain/guest"
)

const (
	// MinQueryLength is the shortest query that is searched
	MinQueryLength = 2

	// MaxResults caps the names returned by a search
	MaxResults = 10
)

// Service handles guest lookup and RSVP responses
type Service struct {
	directory guest.Directory
	now       func() time.Time
}

// NewService creates a new guest service
func NewService(directory guest.Directory) *Service {
	return &Service{directory: directory, now: time.Now}
}

// Search returns up to MaxResults guest names containing query, ignoring case.
// Queries shorter than MinQueryLength return no names without reading the list.
func (s *Service) Search(ctx context.Context, query string) ([]string, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(q)) < MinQueryLength {
		return []string{}, nil
	}

	names, err := s.directory.Names(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]string, 0, MaxResults)
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), q) {
			matches = append(matches, name)
			if len(matches) == MaxResults {
				break
			}
		}
	}
	return matches, nil
}

// SaveRSVP validates and records a response
func (s *Service) SaveRSVP(ctx context.Context, rsvp guest.RSVP) error {
	rsvp.Name = strings.TrimSpace(rsvp.Name)
	rsvp.Message = strings.TrimSpace(rsvp.Message)
	if err := rsvp.Validate(); err != nil {
		return failure.Wrap(failure.CodeInvalidInput, err.Error(), err)
	}
	if rsvp.SubmittedAt.IsZero() {
		rsvp.SubmittedAt = s.now()
	}
	return s.directory.AppendRSVP(ctx, rsvp)
}
