//go:build opencv

package imaging

import (
	"fmt"
	"image"

	"invite-media/domain/upload"

	"gocv.io/x/gocv"
)

// Encoder implements upload.Encoder with OpenCV
type Encoder struct{}

// NewEncoder creates the OpenCV encoder (requires building with -tags=opencv)
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode implements upload.Encoder
func (e *Encoder) Encode(data []byte, mimeType string, opts upload.EncodeOptions) ([]byte, error) {
	var (
		ext    gocv.FileExt
		params []int
	)
	switch formatOf(mimeType) {
	case formatJPEG:
		ext = gocv.JPEGFileExt
		params = []int{gocv.IMWriteJpegQuality, jpegQuality(opts.Quality)}
	case formatPNG:
		ext = gocv.PNGFileExt
		params = []int{gocv.IMWritePngCompression, 9}
	default:
		return nil, unsupported(mimeType)
	}

	if _, err := inspect(data); err != nil {
		return nil, err
	}
	if o := orientation(data); o != 1 {
		return nil, fmt.Errorf("%w: exif orientation %d", upload.ErrUnsupportedFormat, o)
	}

	src, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	defer src.Close()
	if src.Empty() {
		return nil, fmt.Errorf("decode image: no pixel data")
	}

	img := src
	w, h := fit(src.Cols(), src.Rows(), opts.MaxDimension)
	if w != src.Cols() || h != src.Rows() {
		dst := gocv.NewMat()
		defer dst.Close()
		gocv.Resize(src, &dst, image.Pt(w, h), 0, 0, gocv.InterpolationArea)
		img = dst
	}

	out, err := gocv.IMEncodeWithParams(ext, img, params)
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return out, nil
}

var _ upload.Encoder = (*Encoder)(nil)
