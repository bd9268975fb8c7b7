package upload

import (
	"bytes"
	"io"
)

// Payload is binary content with a declared MIME type and filename.
// Open may be called more than once; each call returns a fresh reader.
type Payload interface {
	Name() string
	MimeType() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// BytesPayload is an in-memory Payload
type BytesPayload struct {
	name     string
	mimeType string
	data     []byte
}

// NewBytesPayload creates an in-memory payload
func NewBytesPayload(name, mimeType string, data []byte) *BytesPayload {
	return &BytesPayload{name: name, mimeType: mimeType, data: data}
}

func (p *BytesPayload) Name() string     { return p.name }
func (p *BytesPayload) MimeType() string { return p.mimeType }
func (p *BytesPayload) Size() int64      { return int64(len(p.data)) }
func (p *BytesPayload) Bytes() []byte    { return p.data }

func (p *BytesPayload) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(p.data)), nil
}

// ReadAll returns the full content of a payload
func ReadAll(p Payload) ([]byte, error) {
	if bp, ok := p.(*BytesPayload); ok {
		return bp.data, nil
	}
	rc, err := p.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
