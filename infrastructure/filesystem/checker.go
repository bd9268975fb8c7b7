package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"invite-media/domain/upload"

	"github.com/gabriel-vasile/mimetype"
)

// FilePayload is an upload.Payload backed by a local file
type FilePayload struct {
	path     string
	name     string
	mimeType string
	size     int64
}

func (p *FilePayload) Name() string     { return p.name }
func (p *FilePayload) MimeType() string { return p.mimeType }
func (p *FilePayload) Size() int64      { return p.size }

// Path returns the file location on disk
func (p *FilePayload) Path() string { return p.path }

func (p *FilePayload) Open() (io.ReadCloser, error) {
	return os.Open(p.path)
}

// Checker resolves local paths into upload payloads using the os package
type Checker struct{}

// NewChecker creates a new filesystem checker
func NewChecker() *Checker {
	return &Checker{}
}

// Exists returns true if the file exists
func (c *Checker) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Payload stats a regular file and detects its content type from its bytes
func (c *Checker) Payload(path string) (*FilePayload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", path)
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to detect type of %s: %w", path, err)
	}

	return &FilePayload{
		path:     path,
		name:     filepath.Base(path),
		mimeType: mt.String(),
		size:     info.Size(),
	}, nil
}

// Expand replaces each directory in paths with the regular files directly
// inside it, sorted by name. Hidden files are skipped.
func (c *Checker) Expand(paths []string) ([]string, error) {
	var result []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("file does not exist: %s", p)
		}
		if !info.IsDir() {
			result = append(result, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory: %w", err)
		}
		var files []string
		for _, e := range entries {
			if e.IsDir() || e.Name()[0] == '.' {
				continue
			}
			files = append(files, filepath.Join(p, e.Name()))
		}
		sort.Strings(files)
		result = append(result, files...)
	}
	return result, nil
}

// Ensure FilePayload implements upload.Payload
var _ upload.Payload = (*FilePayload)(nil)
