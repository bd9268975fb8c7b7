package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"invite-media/domain/failure"
	"invite-media/domain/guest"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	// DefaultGuestRange holds one guest name per row in column A
	DefaultGuestRange = "A:A"

	// DefaultRSVPRange is where responses are appended
	DefaultRSVPRange = "RSVP!A:E"
)

// SheetsService defines the Sheets API operations the guest list needs
// This allows mocking the Sheets API in tests
type SheetsService interface {
	GetValues(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error)
	AppendValues(ctx context.Context, spreadsheetID, appendRange string, rows [][]interface{}) error
}

// GoogleSheetsService is the production implementation using the Sheets API
type GoogleSheetsService struct {
	service *sheets.Service
}

// GetValues reads a range
func (s *GoogleSheetsService) GetValues(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	resp, err := s.service.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// AppendValues appends rows after the last row of a range
func (s *GoogleSheetsService) AppendValues(ctx context.Context, spreadsheetID, appendRange string, rows [][]interface{}) error {
	_, err := s.service.Spreadsheets.Values.Append(spreadsheetID, appendRange, &sheets.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// Client implements guest.Directory on a spreadsheet
type Client struct {
	sheetsService SheetsService
	spreadsheetID string
	guestRange    string
	rsvpRange     string
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithSheetsService sets a custom sheets service (for testing)
func WithSheetsService(svc SheetsService) ClientOption {
	return func(c *Client) {
		c.sheetsService = svc
	}
}

// WithRanges overrides the guest and RSVP ranges
func WithRanges(guestRange, rsvpRange string) ClientOption {
	return func(c *Client) {
		if guestRange != "" {
			c.guestRange = guestRange
		}
		if rsvpRange != "" {
			c.rsvpRange = rsvpRange
		}
	}
}

// NewClient creates a guest list backed by spreadsheetID, authorized by ts
func NewClient(ctx context.Context, spreadsheetID string, ts oauth2.TokenSource, opts ...ClientOption) (*Client, error) {
	c := &Client{
		spreadsheetID: spreadsheetID,
		guestRange:    DefaultGuestRange,
		rsvpRange:     DefaultRSVPRange,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.sheetsService == nil {
		srv, err := sheets.NewService(ctx, option.WithTokenSource(ts))
		if err != nil {
			return nil, fmt.Errorf("unable to create sheets service: %w", err)
		}
		c.sheetsService = &GoogleSheetsService{service: srv}
	}

	return c, nil
}

// Names implements guest.Directory
func (c *Client) Names(ctx context.Context) ([]string, error) {
	if c.spreadsheetID == "" {
		return nil, failure.New(failure.CodeConfiguration, "guest sheet is not configured")
	}

	rows, err := c.sheetsService.GetValues(ctx, c.spreadsheetID, c.guestRange)
	if err != nil {
		return nil, classify("failed to read guest list", err)
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(fmt.Sprint(row[0]))
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// AppendRSVP implements guest.Directory
func (c *Client) AppendRSVP(ctx context.Context, rsvp guest.RSVP) error {
	if c.spreadsheetID == "" {
		return failure.New(failure.CodeConfiguration, "guest sheet is not configured")
	}

	attending := "no"
	if rsvp.Attending {
		attending = "yes"
	}
	row := []interface{}{
		rsvp.SubmittedAt.UTC().Format(time.RFC3339),
		literal(rsvp.Name),
		attending,
		rsvp.GuestCount,
		literal(rsvp.Message),
	}

	if err := c.sheetsService.AppendValues(ctx, c.spreadsheetID, c.rsvpRange, [][]interface{}{row}); err != nil {
		return classify("failed to save rsvp", err)
	}
	return nil
}

// literal keeps guest text from being parsed as a formula. Rows are appended
// USER_ENTERED, where a leading apostrophe forces plain text and is not shown.
func literal(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

func classify(msg string, err error) *failure.Error {
	fe := failure.Wrap(failure.CodeStorage, msg, err)
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return fe.WithStatus(gerr.Code)
	}
	return fe
}

// Ensure Client implements guest.Directory
var _ guest.Directory = (*Client)(nil)
