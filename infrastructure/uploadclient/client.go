// Package uploadclient talks to the media service's HTTP entry points from
// the client side and normalizes every response into a failure.Error.
package uploadclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"invite-media/domain/failure"
	"invite-media/domain/guest"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds non-upload requests
const DefaultTimeout = 30 * time.Second

// Client calls the media service
type Client struct {
	endpoint    string
	apiKey      string
	bearerToken string
	httpClient  *http.Client
	http        *resty.Client
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithAPIKey sets the key sent in the apikey header
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithBearerToken sets the Authorization bearer token
func WithBearerToken(token string) ClientOption {
	return func(c *Client) {
		c.bearerToken = token
	}
}

// WithHTTPClient sets a custom HTTP client. Upload deadlines come from the
// request context, so the client should not carry a shorter timeout.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the service at endpoint
func New(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient != nil {
		c.http = resty.NewWithClient(c.httpClient)
	} else {
		c.http = resty.New()
	}
	c.http.SetBaseURL(c.endpoint)
	if c.apiKey != "" {
		c.http.SetHeader("apikey", c.apiKey)
	}
	if c.bearerToken != "" {
		c.http.SetAuthToken(c.bearerToken)
	}
	return c
}

// errorResponse is the JSON error body returned by the service
type errorResponse struct {
	Error string `json:"error"`
}

// transportError classifies a failure that produced no usable response
func transportError(ctx context.Context, err error) *failure.Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return failure.Wrap(failure.CodeTimeout, "request timed out", err)
	}
	return failure.Wrap(failure.CodeNetwork, err.Error(), err)
}

// received reports whether resp carries an HTTP response
func received(resp *resty.Response) bool {
	return resp != nil && resp.RawResponse != nil
}

// getJSON calls a JSON endpoint and decodes a 2xx body into out
func (c *Client) getJSON(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	var apiErr errorResponse
	req := c.http.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(out).
		SetError(&apiErr)
	if in != nil {
		req.SetBody(in)
	}

	resp, err := req.Execute(method, path)
	if err != nil && (!received(resp) || ctx.Err() != nil) {
		return transportError(ctx, err)
	}
	if !resp.IsSuccess() {
		return statusError(resp.StatusCode(), resp.Body(), apiErr.Error)
	}
	if err != nil {
		return failure.Wrap(failure.CodeUnexpectedResponse, fmt.Sprintf("unexpected response: %s", preview(resp.Body())), err).WithStatus(resp.StatusCode())
	}
	return nil
}

// AppConfig fetches the public application configuration
func (c *Client) AppConfig(ctx context.Context) (guest.AppConfig, error) {
	var cfg guest.AppConfig
	err := c.getJSON(ctx, http.MethodGet, "/config", nil, &cfg)
	return cfg, err
}

// UploadFolderID implements the scheduler's folder source through GET /config
func (c *Client) UploadFolderID(ctx context.Context) (string, error) {
	cfg, err := c.AppConfig(ctx)
	if err != nil {
		return "", failure.Wrap(failure.CodeConfiguration, "could not load application configuration", err)
	}
	if strings.TrimSpace(cfg.UploadFolderID) == "" {
		return "", failure.New(failure.CodeConfiguration, "upload folder is not configured")
	}
	return cfg.UploadFolderID, nil
}

// GalleryItem is one entry returned by GET /gallery
type GalleryItem struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mimeType"`
	Kind         string    `json:"kind"`
	Size         int64     `json:"size"`
	CreatedTime  time.Time `json:"createdTime"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	ContentURL   string    `json:"contentUrl,omitempty"`
}

// Gallery lists the published media
func (c *Client) Gallery(ctx context.Context) ([]GalleryItem, error) {
	var resp struct {
		Files []GalleryItem `json:"files"`
	}
	if err := c.getJSON(ctx, http.MethodGet, "/gallery", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// SearchGuests looks up guest names matching query
func (c *Client) SearchGuests(ctx context.Context, query string) ([]string, error) {
	var resp struct {
		Guests []string `json:"guests"`
	}
	req := map[string]string{"searchQuery": query}
	if err := c.getJSON(ctx, http.MethodPost, "/guests/search", req, &resp); err != nil {
		return nil, err
	}
	return resp.Guests, nil
}
