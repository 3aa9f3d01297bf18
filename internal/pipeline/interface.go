package pipeline

import (
	"context"
	"time"

	"github.com/phamtrung99/notecast/internal/domain"
)

// Runner defines the interface for the chunked transcribe-and-summarize
// pipeline over one recording
type Runner interface {
	// Run processes the recording chunk by chunk, resuming from the
	// checkpoint if one exists. Service failures on a chunk are counted
	// and skipped unless stop_on_error is set; checkpoint write failures
	// always abort.
	Run(ctx context.Context, recordingPath string) (*Report, error)
	// Finalize merges the per-chunk transcripts into the run transcript
	// and returns the combined notes text. It refuses to produce anything
	// while a chunk is not summarized.
	Finalize(ctx context.Context, recordingPath string) (string, error)
	// Status loads the checkpointed state of the named run.
	Status(name string) (*domain.RunState, error)
}

// Report summarizes what one Run invocation did.
type Report struct {
	RunID      string
	Recording  domain.Recording
	Chunks     int
	Skipped    int // already summarized before this session
	Summarized int // newly summarized this session
	Failed     int
	Complete   bool
	Elapsed    time.Duration
}
