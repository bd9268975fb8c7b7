//go:build !opencv

package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"invite-media/domain/upload"

	"golang.org/x/image/draw"
)

// Encoder implements upload.Encoder with the standard image codecs and a
// Catmull-Rom resampler.
type Encoder struct{}

// NewEncoder creates the pure Go encoder
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode implements upload.Encoder
func (e *Encoder) Encode(data []byte, mimeType string, opts upload.EncodeOptions) ([]byte, error) {
	f := formatOf(mimeType)
	if f == formatUnknown {
		return nil, unsupported(mimeType)
	}

	if _, err := inspect(data); err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	// the re-encoded file carries no EXIF, so the rotation goes into the pixels
	if f == formatJPEG {
		src = orient(src, orientation(data))
	}

	b := src.Bounds()
	w, h := fit(b.Dx(), b.Dy(), opts.MaxDimension)
	img := src
	if w != b.Dx() || h != b.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	switch f {
	case formatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality(opts.Quality)})
	case formatPNG:
		err = (&png.Encoder{CompressionLevel: png.BestCompression}).Encode(&buf, img)
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// orient applies an EXIF orientation (2 to 8) to img
func orient(img image.Image, o int) image.Image {
	if o <= 1 || o > 8 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dw, dh := w, h
	if o >= 5 {
		dw, dh = h, w
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			var sx, sy int
			switch o {
			case 2:
				sx, sy = w-1-x, y
			case 3:
				sx, sy = w-1-x, h-1-y
			case 4:
				sx, sy = x, h-1-y
			case 5:
				sx, sy = y, x
			case 6:
				sx, sy = y, h-1-x
			case 7:
				sx, sy = w-1-y, h-1-x
			case 8:
				sx, sy = w-1-y, x
			}
			dst.Set(x, y, img.At(b.Min.X+sx, b.Min.Y+sy))
		}
	}
	return dst
}

var _ upload.Encoder = (*Encoder)(nil)
