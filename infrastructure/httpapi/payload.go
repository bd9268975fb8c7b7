package httpapi

import (
	"fmt"
	"io"
	"mime/multipart"

	"invite-media/domain/upload"

	"github.com/gabriel-vasile/mimetype"
)

// formFile is an upload.Payload backed by a multipart form file
type formFile struct {
	header   *multipart.FileHeader
	mimeType string
}

// newFormFile wraps a form file. A missing or generic part type is replaced
// by the type sniffed from the content.
func newFormFile(fh *multipart.FileHeader) (*formFile, error) {
	f := &formFile{header: fh, mimeType: fh.Header.Get("Content-Type")}
	if !upload.IsGenericMIME(f.mimeType) {
		return f, nil
	}

	rc, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open form file: %w", err)
	}
	defer rc.Close()

	mt, err := mimetype.DetectReader(rc)
	if err != nil {
		return nil, fmt.Errorf("detect content type: %w", err)
	}
	f.mimeType = mt.String()
	return f, nil
}

func (f *formFile) Name() string     { return f.header.Filename }
func (f *formFile) MimeType() string { return f.mimeType }
func (f *formFile) Size() int64      { return f.header.Size }

func (f *formFile) Open() (io.ReadCloser, error) {
	return f.header.Open()
}

var _ upload.Payload = (*formFile)(nil)
