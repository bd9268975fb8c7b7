package upload

import "errors"

var (
	// ErrUnsupportedType is returned when neither the MIME type nor the extension is allowed
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrTooLarge is returned when a file exceeds the ceiling for its media kind
	ErrTooLarge = errors.New("file too large")

	// ErrItemNotFound is returned when an item id is not in the batch
	ErrItemNotFound = errors.New("upload item not found")

	// ErrInvalidTransition is returned when a status change would move backwards
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrItemInFlight is returned when removing an item that is uploading
	ErrItemInFlight = errors.New("upload item is in flight")

	// ErrVideoNotCompressible is returned when a replacement payload is set on a video
	ErrVideoNotCompressible = errors.New("video payloads are transmitted unmodified")

	// ErrUnsupportedFormat is returned by encoders that cannot re-encode a format
	ErrUnsupportedFormat = errors.New("unsupported image format")
)
