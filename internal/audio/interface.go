package audio

import (
	"context"
	"time"

	"github.com/phamtrung99/notecast/internal/domain"
)

// Processor defines the interface for ffmpeg-backed audio operations
type Processor interface {
	// Probe inspects a media file and returns its audio properties.
	Probe(ctx context.Context, path string) (domain.Recording, error)
	// Normalize extracts the audio track to a loudness-normalized 16-bit
	// mono WAV at dst. On failure it falls back to the original file and
	// returns src, so the pipeline keeps going with unnormalized audio.
	Normalize(ctx context.Context, src, dst string) (string, error)
	// Cut writes the [start, start+length) slice of src to dst as WAV.
	Cut(ctx context.Context, src, dst string, start, length time.Duration) error
}
