package upload

// CompressionThreshold is the size at or below which images are sent as-is
const CompressionThreshold int64 = 50 * 1024

// MinSavingsRatio is the largest compressed/original ratio that is accepted
const MinSavingsRatio = 0.9

// Tier is a resolution/quality target chosen from the original size
type Tier struct {
	MaxDimension int
	Quality      float64
	TargetSize   int64
}

var (
	tierSmall  = Tier{MaxDimension: 4000, Quality: 0.92, TargetSize: 5 * MiB}
	tierMedium = Tier{MaxDimension: 1920, Quality: 0.90, TargetSize: 3 * MiB}
	tierLarge  = Tier{MaxDimension: 1600, Quality: 0.88, TargetSize: 2 * MiB}
)

// SelectTier picks the compression tier for an image of the given size
func SelectTier(size int64) Tier {
	switch {
	case size < MiB:
		return tierSmall
	case size <= 5*MiB:
		return tierMedium
	default:
		return tierLarge
	}
}

// ShouldCompress reports whether an item is eligible for compression
func ShouldCompress(kind Kind, size int64) bool {
	return kind == KindImage && size > CompressionThreshold
}

// AcceptCompressed reports whether a compressed result saves at least 10%
func AcceptCompressed(originalSize, compressedSize int64) bool {
	return float64(compressedSize) < float64(originalSize)*MinSavingsRatio
}

// EncodeOptions controls a single re-encode
type EncodeOptions struct {
	MaxDimension int
	Quality      float64
}

// Encoder re-encodes image bytes, keeping the input format
type Encoder interface {
	Encode(data []byte, mimeType string, opts EncodeOptions) ([]byte, error)
}
