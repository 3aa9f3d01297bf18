package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChunkStatus is the persistent processing state of a single chunk.
// Transitions only move forward: pending -> transcribed -> summarized.
type ChunkStatus string

const (
	StatusPending     ChunkStatus = "pending"
	StatusTranscribed ChunkStatus = "transcribed"
	StatusSummarized  ChunkStatus = "summarized"
)

// Valid reports whether s is one of the known statuses.
func (s ChunkStatus) Valid() bool {
	switch s {
	case StatusPending, StatusTranscribed, StatusSummarized:
		return true
	}
	return false
}

// ChunkResult is a chunk plus its processing status and the artifact paths
// recorded for it. Paths are relative to the run directory so a run survives
// being moved.
type ChunkResult struct {
	Chunk
	Status         ChunkStatus
	AudioPath      string
	TranscriptPath string
	SummaryPath    string
}

// Remaining reports which stages still have to run for this chunk, given
// which artifacts already exist on disk. A summarized chunk never needs
// work. For anything else the artifacts decide: an existing transcript is
// never re-transcribed, an existing summary is never regenerated.
func (r ChunkResult) Remaining(transcriptExists, summaryExists bool) (needTranscribe, needSummarize bool) {
	if r.Status == StatusSummarized {
		return false, false
	}
	return !transcriptExists, !summaryExists
}

// RunState is the checkpointed state of one pipeline run over one recording.
type RunState struct {
	RunID         string
	Recording     Recording
	ChunkDuration time.Duration
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Chunks        []ChunkResult
}

// NewRunState builds a fresh state for the given recording and chunk plan.
// All chunks start pending with empty artifact paths; the caller fills the
// paths in before the first save.
func NewRunState(rec Recording, chunkDuration time.Duration, chunks []Chunk) *RunState {
	now := time.Now().UTC()
	results := make([]ChunkResult, len(chunks))
	for i, c := range chunks {
		results[i] = ChunkResult{Chunk: c, Status: StatusPending}
	}
	return &RunState{
		RunID:         uuid.New().String(),
		Recording:     rec,
		ChunkDuration: chunkDuration,
		CreatedAt:     now,
		UpdatedAt:     now,
		Chunks:        results,
	}
}

// Result returns the chunk result at index i, or nil if out of range.
func (s *RunState) Result(i int) *ChunkResult {
	if i < 0 || i >= len(s.Chunks) {
		return nil
	}
	return &s.Chunks[i]
}

// MarkTranscribed moves chunk i from pending to transcribed. Marking an
// already transcribed chunk is a no-op; marking a summarized chunk is an
// error because statuses never move backward.
func (s *RunState) MarkTranscribed(i int) error {
	r := s.Result(i)
	if r == nil {
		return fmt.Errorf("chunk %d out of range", i)
	}
	switch r.Status {
	case StatusPending:
		r.Status = StatusTranscribed
		s.touch()
		return nil
	case StatusTranscribed:
		return nil
	default:
		return fmt.Errorf("%w: chunk %d is %s", ErrInvalidTransition, i, r.Status)
	}
}

// MarkSummarized moves chunk i from transcribed to summarized. A pending
// chunk cannot skip straight to summarized.
func (s *RunState) MarkSummarized(i int) error {
	r := s.Result(i)
	if r == nil {
		return fmt.Errorf("chunk %d out of range", i)
	}
	switch r.Status {
	case StatusTranscribed:
		r.Status = StatusSummarized
		s.touch()
		return nil
	case StatusSummarized:
		return nil
	default:
		return fmt.Errorf("%w: chunk %d is %s", ErrInvalidTransition, i, r.Status)
	}
}

// Complete reports whether every chunk reached summarized.
func (s *RunState) Complete() bool {
	for _, r := range s.Chunks {
		if r.Status != StatusSummarized {
			return false
		}
	}
	return len(s.Chunks) > 0
}

// Counts returns how many chunks sit at each status.
func (s *RunState) Counts() (pending, transcribed, summarized int) {
	for _, r := range s.Chunks {
		switch r.Status {
		case StatusTranscribed:
			transcribed++
		case StatusSummarized:
			summarized++
		default:
			pending++
		}
	}
	return
}

func (s *RunState) touch() {
	s.UpdatedAt = time.Now().UTC()
}
