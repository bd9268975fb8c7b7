//go:build !opencv

package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"invite-media/domain/upload"
)

func noisyImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	rng := rand.New(rand.NewSource(7))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(rng.Intn(256)), G: uint8(x), B: uint8(y), A: 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestEncoder_JPEGResize(t *testing.T) {
	original := encodeJPEG(t, noisyImage(640, 320))

	out, err := NewEncoder().Encode(original, "image/jpeg", upload.EncodeOptions{MaxDimension: 160, Quality: 0.6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not an image: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected jpeg output, got %s", format)
	}
	if cfg.Width != 160 || cfg.Height != 80 {
		t.Errorf("expected 160x80, got %dx%d", cfg.Width, cfg.Height)
	}
	if len(out) >= len(original) {
		t.Errorf("expected smaller output, got %d >= %d", len(out), len(original))
	}
}

func TestEncoder_PNGKeepsFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, noisyImage(300, 100)); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	out, err := NewEncoder().Encode(buf.Bytes(), "image/png", upload.EncodeOptions{MaxDimension: 4000, Quality: 0.92})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not an image: %v", err)
	}
	if format != "png" || cfg.Width != 300 {
		t.Errorf("expected 300px png, got %dpx %s", cfg.Width, format)
	}
}

func TestEncoder_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		mimeType string
		wantErr  error
	}{
		{name: "gif is not re-encoded", data: []byte("GIF89a"), mimeType: "image/gif", wantErr: upload.ErrUnsupportedFormat},
		{name: "heic is not re-encoded", data: []byte("...."), mimeType: "image/heic", wantErr: upload.ErrUnsupportedFormat},
		{name: "corrupt jpeg", data: []byte("not a jpeg"), mimeType: "image/jpeg"},
		{name: "png over the pixel budget", data: pngHeader(16000, 16000), mimeType: "image/png", wantErr: upload.ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEncoder().Encode(tt.data, tt.mimeType, upload.EncodeOptions{MaxDimension: 1600, Quality: 0.88})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// withOrientation inserts an Exif APP1 segment carrying orientation o after
// the SOI marker of a JPEG
func withOrientation(jpg []byte, o uint16) []byte {
	tiff := []byte{
		'M', 'M', 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08,
		0x00, 0x01,
		0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, byte(o >> 8), byte(o), 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}
	payload := append([]byte("Exif\x00\x00"), tiff...)
	size := len(payload) + 2

	var out bytes.Buffer
	out.Write(jpg[:2])
	out.Write([]byte{0xFF, 0xE1, byte(size >> 8), byte(size)})
	out.Write(payload)
	out.Write(jpg[2:])
	return out.Bytes()
}

func TestEncoder_AppliesOrientation(t *testing.T) {
	// left half red, right half blue
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 400; x++ {
			c := color.RGBA{R: 255, A: 255}
			if x >= 200 {
				c = color.RGBA{B: 255, A: 255}
			}
			src.Set(x, y, c)
		}
	}
	rotated := withOrientation(encodeJPEG(t, src), 6)
	if got := orientation(rotated); got != 6 {
		t.Fatalf("expected fixture orientation 6, got %d", got)
	}

	out, err := NewEncoder().Encode(rotated, "image/jpeg", upload.EncodeOptions{MaxDimension: 4000, Quality: 0.9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a jpeg: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 400 {
		t.Fatalf("expected 200x400 after rotation, got %dx%d", b.Dx(), b.Dy())
	}

	top := color.RGBAModel.Convert(img.At(100, 50)).(color.RGBA)
	bottom := color.RGBAModel.Convert(img.At(100, 350)).(color.RGBA)
	if top.R < 200 || top.B > 60 {
		t.Errorf("expected red on top, got %+v", top)
	}
	if bottom.B < 200 || bottom.R > 60 {
		t.Errorf("expected blue at the bottom, got %+v", bottom)
	}
}

func TestOrient(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	marker := color.RGBA{R: 255, A: 255}
	src.Set(0, 0, marker)

	tests := []struct {
		o      int
		w, h   int
		wantAt image.Point
	}{
		{o: 1, w: 3, h: 2, wantAt: image.Pt(0, 0)},
		{o: 2, w: 3, h: 2, wantAt: image.Pt(2, 0)},
		{o: 3, w: 3, h: 2, wantAt: image.Pt(2, 1)},
		{o: 4, w: 3, h: 2, wantAt: image.Pt(0, 1)},
		{o: 5, w: 2, h: 3, wantAt: image.Pt(0, 0)},
		{o: 6, w: 2, h: 3, wantAt: image.Pt(1, 0)},
		{o: 7, w: 2, h: 3, wantAt: image.Pt(1, 2)},
		{o: 8, w: 2, h: 3, wantAt: image.Pt(0, 2)},
	}

	for _, tt := range tests {
		got := orient(src, tt.o)
		if b := got.Bounds(); b.Dx() != tt.w || b.Dy() != tt.h {
			t.Errorf("orientation %d: expected %dx%d, got %dx%d", tt.o, tt.w, tt.h, b.Dx(), b.Dy())
			continue
		}
		if c := color.RGBAModel.Convert(got.At(tt.wantAt.X, tt.wantAt.Y)).(color.RGBA); c != marker {
			t.Errorf("orientation %d: expected marker at %v", tt.o, tt.wantAt)
		}
	}
}
