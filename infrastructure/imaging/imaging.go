// Package imaging re-encodes photos for the upload compressor. The default
// build is pure Go; building with -tags=opencv switches to OpenCV.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"invite-media/domain/upload"

	"github.com/rwcarlsen/goexif/exif"
)

// MaxPixels is the largest image, by pixel count, that is decoded for
// re-encoding. Larger images are sent as they are.
const MaxPixels = 50_000_000

type format int

const (
	formatUnknown format = iota
	formatJPEG
	formatPNG
)

func formatOf(mimeType string) format {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/jpeg", "image/jpg", "image/pjpeg":
		return formatJPEG
	case "image/png":
		return formatPNG
	}
	return formatUnknown
}

// fit returns the dimensions of a w x h image scaled so that neither side
// exceeds limit. Images already within bounds keep their size.
func fit(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		return limit, scaleSide(h, limit, w)
	}
	return scaleSide(w, limit, h), limit
}

func scaleSide(side, target, long int) int {
	s := (side*target + long/2) / long
	return max(s, 1)
}

// jpegQuality maps a 0..1 quality to the 1..100 encoder scale
func jpegQuality(q float64) int {
	return min(max(int(q*100+0.5), 1), 100)
}

func unsupported(mimeType string) error {
	return fmt.Errorf("%w: %s", upload.ErrUnsupportedFormat, mimeType)
}

// inspect reads the image header without decoding pixels and refuses
// images above MaxPixels.
func inspect(data []byte) (image.Config, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return cfg, fmt.Errorf("decode image header: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return cfg, fmt.Errorf("%w: %dx%d is over %d pixels", upload.ErrUnsupportedFormat, cfg.Width, cfg.Height, MaxPixels)
	}
	return cfg, nil
}

// orientation returns the EXIF orientation of a JPEG, 1 when it has none
func orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil || o < 1 || o > 8 {
		return 1
	}
	return o
}
