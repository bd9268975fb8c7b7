package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/textproto"
	"strings"

	"invite-media/domain/credential"
	"invite-media/domain/failure"
	"invite-media/domain/storage"
	"invite-media/domain/upload"

	"github.com/google/uuid"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// DefaultUploadURL is the Drive multipart upload endpoint
const DefaultUploadURL = "https://www.googleapis.com/upload/drive/v3/files?uploadType=multipart&fields=id,name,mimeType,size&supportsAllDrives=true"

// Uploader creates Drive files with a single multipart/related request
type Uploader struct {
	httpClient *http.Client
	uploadURL  string
	newBound   func() string
}

// UploaderOption is a functional option for configuring Uploader
type UploaderOption func(*Uploader)

// WithUploadHTTPClient sets the client used for uploads
func WithUploadHTTPClient(c *http.Client) UploaderOption {
	return func(u *Uploader) {
		u.httpClient = c
	}
}

// WithUploadURL overrides the upload endpoint
func WithUploadURL(url string) UploaderOption {
	return func(u *Uploader) {
		u.uploadURL = url
	}
}

// NewUploader creates a multipart uploader
func NewUploader(opts ...UploaderOption) *Uploader {
	u := &Uploader{
		httpClient: http.DefaultClient,
		uploadURL:  DefaultUploadURL,
		newBound:   func() string { return "invite_media_" + strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Create implements storage.ObjectWriter
func (u *Uploader) Create(ctx context.Context, token credential.AccessToken, meta storage.ObjectMetadata, payload upload.Payload) (storage.ObjectInfo, error) {
	boundary := u.newBound()
	body, length, err := multipartBody(boundary, meta, payload)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	defer body.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.uploadURL, body)
	if err != nil {
		return storage.ObjectInfo{}, failure.Wrap(failure.CodeStorage, "invalid upload endpoint", err)
	}
	req.ContentLength = length
	req.Header.Set("Content-Type", "multipart/related; boundary="+boundary)
	req.Header.Set("Authorization", token.AuthorizationHeader())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return storage.ObjectInfo{}, failure.Wrap(failure.CodeTimeout, "upload to storage timed out", err)
		}
		return storage.ObjectInfo{}, failure.Wrap(failure.CodeNetwork, "upload to storage failed", err)
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		msg := fmt.Sprintf("storage rejected %q with HTTP %d", meta.Name, resp.StatusCode)
		return storage.ObjectInfo{}, failure.Wrap(failure.CodeStorage, msg, err).WithStatus(resp.StatusCode)
	}

	var created drive.File
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil || created.Id == "" {
		return storage.ObjectInfo{}, failure.Wrap(failure.CodeUnexpectedResponse, "storage returned no file id", err)
	}

	return storage.ObjectInfo{
		ID:       created.Id,
		Name:     created.Name,
		MimeType: created.MimeType,
		Size:     created.Size,
	}, nil
}

// multipartBody streams the metadata part followed by the binary part.
// The returned length is exact so the request is not chunked.
func multipartBody(boundary string, meta storage.ObjectMetadata, payload upload.Payload) (io.ReadCloser, int64, error) {
	file := &drive.File{Name: meta.Name}
	if meta.FolderID != "" {
		file.Parents = []string{meta.FolderID}
	}
	metaJSON, err := json.Marshal(file)
	if err != nil {
		return nil, 0, failure.Wrap(failure.CodeStorage, "unable to encode file metadata", err)
	}

	contentType := payload.MimeType()
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var head bytes.Buffer
	writePartHeader(&head, boundary, textproto.MIMEHeader{"Content-Type": {"application/json; charset=UTF-8"}})
	head.Write(metaJSON)
	head.WriteString("\r\n")
	writePartHeader(&head, boundary, textproto.MIMEHeader{"Content-Type": {contentType}})

	tail := []byte("\r\n--" + boundary + "--\r\n")

	content, err := payload.Open()
	if err != nil {
		return nil, 0, failure.Wrap(failure.CodeStorage, "unable to read upload content", err)
	}

	length := int64(head.Len()) + payload.Size() + int64(len(tail))
	return &multipartReader{
		Reader: io.MultiReader(&head, content, bytes.NewReader(tail)),
		closer: content,
	}, length, nil
}

func writePartHeader(buf *bytes.Buffer, boundary string, h textproto.MIMEHeader) {
	buf.WriteString("--" + boundary + "\r\n")
	for k, vs := range h {
		for _, v := range vs {
			fmt.Fprintf(buf, "%s: %s\r\n", k, v)
		}
	}
	buf.WriteString("\r\n")
}

type multipartReader struct {
	io.Reader
	closer io.Closer
}

func (m *multipartReader) Close() error {
	return m.closer.Close()
}

// Ensure Uploader implements storage.ObjectWriter
var _ storage.ObjectWriter = (*Uploader)(nil)
