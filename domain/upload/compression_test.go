package upload

import "testing"

func TestSelectTier(t *testing.T) {
	tests := []struct {
		name string
		size int64
		want Tier
	}{
		{name: "just above threshold", size: 60 * 1024, want: Tier{4000, 0.92, 5 * MiB}},
		{name: "just below 1 MiB", size: MiB - 1, want: Tier{4000, 0.92, 5 * MiB}},
		{name: "exactly 1 MiB", size: MiB, want: Tier{1920, 0.90, 3 * MiB}},
		{name: "2 MiB", size: 2 * MiB, want: Tier{1920, 0.90, 3 * MiB}},
		{name: "exactly 5 MiB", size: 5 * MiB, want: Tier{1920, 0.90, 3 * MiB}},
		{name: "above 5 MiB", size: 5*MiB + 1, want: Tier{1600, 0.88, 2 * MiB}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectTier(tt.size); got != tt.want {
				t.Errorf("SelectTier(%d) = %+v, want %+v", tt.size, got, tt.want)
			}
		})
	}
}

func TestShouldCompress(t *testing.T) {
	if ShouldCompress(KindImage, CompressionThreshold) {
		t.Error("images at the threshold should pass through")
	}
	if !ShouldCompress(KindImage, CompressionThreshold+1) {
		t.Error("images above the threshold should be compressed")
	}
	if ShouldCompress(KindVideo, 100*MiB) {
		t.Error("videos are never compressed")
	}
}

func TestAcceptCompressed(t *testing.T) {
	tests := []struct {
		original   int64
		compressed int64
		want       bool
	}{
		{1000, 899, true},
		{1000, 900, false},
		{1000, 950, false},
		{1000, 1200, false},
	}
	for _, tt := range tests {
		if got := AcceptCompressed(tt.original, tt.compressed); got != tt.want {
			t.Errorf("AcceptCompressed(%d, %d) = %v, want %v", tt.original, tt.compressed, got, tt.want)
		}
	}
}
