// Package domain holds the core model of the note-taking pipeline: the
// recording being processed, the chunks it splits into, and the persistent
// per-chunk status that makes runs resumable.
package domain

import (
	"fmt"
	"time"
)

// Recording describes a source audio file as probed from disk.
type Recording struct {
	Path       string
	Duration   time.Duration
	SampleRate int
	Channels   int
	SizeBytes  int64
}

// Matches reports whether other looks like the same recording. Duration and
// size are enough to catch a file that was replaced between runs.
func (r Recording) Matches(other Recording) bool {
	return r.Duration == other.Duration && r.SizeBytes == other.SizeBytes
}

// Chunk is one contiguous slice of the recording. End is exclusive, so
// chunk i+1 starts exactly where chunk i ends.
type Chunk struct {
	Index int
	Start time.Duration
	End   time.Duration
}

// Length returns the chunk duration.
func (c Chunk) Length() time.Duration {
	return c.End - c.Start
}

// PlanChunks splits a recording of the given total duration into contiguous
// chunks of at most chunkDuration each. Every chunk except possibly the last
// has exactly chunkDuration; the last carries the remainder. The plan covers
// the full recording with no gaps and no overlap.
func PlanChunks(total, chunkDuration time.Duration) ([]Chunk, error) {
	if chunkDuration <= 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidChunkDuration, chunkDuration)
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: duration %s", ErrEmptyRecording, total)
	}

	n := int((total + chunkDuration - 1) / chunkDuration)
	chunks := make([]Chunk, 0, n)
	for i := 0; i < n; i++ {
		start := time.Duration(i) * chunkDuration
		end := start + chunkDuration
		if end > total {
			end = total
		}
		chunks = append(chunks, Chunk{Index: i, Start: start, End: end})
	}
	return chunks, nil
}
