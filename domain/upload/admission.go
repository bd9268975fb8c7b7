package upload

import (
	"fmt"
	"path/filepath"
	"strings"

	"invite-media/domain/failure"
)

const (
	// MiB is one mebibyte
	MiB int64 = 1024 * 1024

	// MaxVideoBytes is the size ceiling for videos
	MaxVideoBytes = 500 * MiB

	// MaxImageBytes is the size ceiling for images
	MaxImageBytes = 50 * MiB
)

var allowedMIMETypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/heic":      true,
	"image/heif":      true,
	"video/mp4":       true,
	"video/mpeg":      true,
	"video/quicktime": true,
	"video/x-msvideo": true,
	"video/webm":      true,
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".heic": true,
	".heif": true,
	".mp4":  true,
	".mpeg": true,
	".mpg":  true,
	".mov":  true,
	".avi":  true,
	".webm": true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".webm": true,
}

// normalizeMIME strips parameters and lowercases a MIME type
func normalizeMIME(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}

func extension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// IsGenericMIME reports whether a declared type carries no information
func IsGenericMIME(mimeType string) bool {
	m := normalizeMIME(mimeType)
	return m == "" || m == "application/octet-stream"
}

// IsAllowedType reports whether a file passes the type check, by MIME type
// first and by filename extension when the MIME type is absent or unknown.
func IsAllowedType(name, mimeType string) bool {
	if allowedMIMETypes[normalizeMIME(mimeType)] {
		return true
	}
	return allowedExtensions[extension(name)]
}

// KindOf classifies a file as video or image
func KindOf(name, mimeType string) Kind {
	if strings.HasPrefix(normalizeMIME(mimeType), "video/") || videoExtensions[extension(name)] {
		return KindVideo
	}
	return KindImage
}

// Ceiling returns the size ceiling for a media kind
func Ceiling(kind Kind) int64 {
	if kind == KindVideo {
		return MaxVideoBytes
	}
	return MaxImageBytes
}

// CheckSize rejects files above the ceiling for their kind
func CheckSize(name string, kind Kind, size int64) error {
	limit := Ceiling(kind)
	if size <= limit {
		return nil
	}
	msg := fmt.Sprintf("%q is %s, the limit for %ss is %s", name, FormatSize(size), kind, FormatSize(limit))
	return failure.Wrap(failure.CodeAdmission, msg, ErrTooLarge)
}

// Check runs the type and size checks and returns the media kind of an accepted file.
// The returned error is a *failure.Error naming the file.
func Check(name, mimeType string, size int64) (Kind, error) {
	if !IsAllowedType(name, mimeType) {
		msg := fmt.Sprintf("%q is not a supported photo or video", name)
		return "", failure.Wrap(failure.CodeAdmission, msg, ErrUnsupportedType)
	}
	kind := KindOf(name, mimeType)
	if err := CheckSize(name, kind, size); err != nil {
		return "", err
	}
	return kind, nil
}

// FormatSize renders a byte count in MiB, or KiB for small files
func FormatSize(n int64) string {
	if n < MiB {
		return fmt.Sprintf("%.1f KiB", float64(n)/1024)
	}
	mib := float64(n) / float64(MiB)
	if mib == float64(int64(mib)) {
		return fmt.Sprintf("%d MiB", int64(mib))
	}
	return fmt.Sprintf("%.1f MiB", mib)
}
