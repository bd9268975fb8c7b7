package upload

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"invite-media/domain/upload"

	"github.com/rs/zerolog"
)

// minQuality is the lowest quality tried while chasing a tier's target size
const minQuality = 0.6

// qualityStep is how much quality drops between attempts
const qualityStep = 0.1

// Compressor chooses which payload bytes proceed to upload for images.
// It never rejects a file: any failure falls back to the original payload.
type Compressor struct {
	encoder upload.Encoder
	log     zerolog.Logger
	slots   chan struct{}
}

// CompressorOption is a functional option for configuring Compressor
type CompressorOption func(*Compressor)

// WithLogger sets the logger used for recovered failures
func WithLogger(log zerolog.Logger) CompressorOption {
	return func(c *Compressor) {
		c.log = log
	}
}

// WithWorkers bounds how many encodes run at the same time
func WithWorkers(n int) CompressorOption {
	return func(c *Compressor) {
		if n > 0 {
			c.slots = make(chan struct{}, n)
		}
	}
}

// NewCompressor creates a compressor around an image encoder
func NewCompressor(encoder upload.Encoder, opts ...CompressorOption) *Compressor {
	c := &Compressor{
		encoder: encoder,
		log:     zerolog.Nop(),
		slots:   make(chan struct{}, runtime.NumCPU()),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("component", "compressor").Logger()
	return c
}

type encodeResult struct {
	data []byte
	err  error
}

// Compress returns the payload to transmit for an item of the given kind.
// Encoding runs on a background goroutine; ctx cancellation abandons it and
// keeps the original.
func (c *Compressor) Compress(ctx context.Context, kind upload.Kind, p upload.Payload) upload.Payload {
	if !upload.ShouldCompress(kind, p.Size()) {
		return p
	}

	tier := upload.SelectTier(p.Size())
	done := make(chan encodeResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- encodeResult{err: fmt.Errorf("encoder panic: %v", r)}
			}
		}()

		select {
		case c.slots <- struct{}{}:
			defer func() { <-c.slots }()
		case <-ctx.Done():
			done <- encodeResult{err: ctx.Err()}
			return
		}

		data, err := upload.ReadAll(p)
		if err != nil {
			done <- encodeResult{err: fmt.Errorf("read original: %w", err)}
			return
		}
		out, err := c.encodeToTarget(data, p.MimeType(), tier)
		done <- encodeResult{data: out, err: err}
	}()

	var res encodeResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = encodeResult{err: ctx.Err()}
	}

	if res.err != nil {
		c.log.Warn().Err(res.err).Str("file", p.Name()).Msg("compression failed, using original")
		return p
	}

	compressed := int64(len(res.data))
	if !upload.AcceptCompressed(p.Size(), compressed) {
		c.log.Debug().
			Str("file", p.Name()).
			Int64("original_bytes", p.Size()).
			Int64("compressed_bytes", compressed).
			Msg("compression saved less than 10%, using original")
		return p
	}

	c.log.Debug().
		Str("file", p.Name()).
		Int64("original_bytes", p.Size()).
		Int64("compressed_bytes", compressed).
		Int("max_dimension", tier.MaxDimension).
		Msg("image compressed")
	return upload.NewBytesPayload(p.Name(), p.MimeType(), res.data)
}

// encodeToTarget re-encodes at the tier quality and, for lossy formats,
// steps quality down until the tier's target size is met.
func (c *Compressor) encodeToTarget(data []byte, mimeType string, tier upload.Tier) ([]byte, error) {
	opts := upload.EncodeOptions{MaxDimension: tier.MaxDimension, Quality: tier.Quality}
	lossy := strings.Contains(strings.ToLower(mimeType), "jpeg")

	for {
		out, err := c.encoder.Encode(data, mimeType, opts)
		if err != nil {
			return nil, err
		}
		if !lossy || int64(len(out)) <= tier.TargetSize || opts.Quality-qualityStep < minQuality {
			return out, nil
		}
		opts.Quality -= qualityStep
	}
}
