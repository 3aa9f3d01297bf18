package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/phamtrung99/notecast/internal/checkpoint"
	"github.com/phamtrung99/notecast/internal/domain"
	"github.com/phamtrung99/notecast/internal/workspace"
)

// Finalize assembles the run outputs: the merged transcript written into the
// run directory, and the combined notes text returned to the caller. Nothing
// is written while any chunk is short of summarized.
func (p *implRunner) Finalize(ctx context.Context, recordingPath string) (string, error) {
	run := workspace.ForRecording(p.cfg.Paths.RunsDir(), recordingPath)
	store := checkpoint.NewStore(run.CheckpointPath())
	if !store.Exists() {
		return "", fmt.Errorf("run %s has no checkpoint: %w", run.Name(), domain.ErrIncompleteRun)
	}

	state, err := store.Load()
	if err != nil {
		return "", fmt.Errorf("load checkpoint: %w", err)
	}
	if !state.Complete() {
		pending, transcribed, _ := state.Counts()
		return "", fmt.Errorf("%w: %d chunks remaining", domain.ErrIncompleteRun, pending+transcribed)
	}

	var transcript strings.Builder
	var notes strings.Builder
	fmt.Fprintf(&notes, "# Final Lecture Notes: %s\n\n", run.Name())

	for i := range state.Chunks {
		r := &state.Chunks[i]

		text, err := os.ReadFile(run.Abs(r.TranscriptPath))
		if err != nil {
			return "", fmt.Errorf("read transcript for chunk %d: %w", i, err)
		}
		summary, err := os.ReadFile(run.Abs(r.SummaryPath))
		if err != nil {
			return "", fmt.Errorf("read summary for chunk %d: %w", i, err)
		}

		transcript.WriteString(strings.TrimSpace(string(text)))
		transcript.WriteString("\n\n")

		fmt.Fprintf(&notes, "## Part %d (%s - %s)\n\n%s\n\n",
			i+1, formatTimestamp(r.Start), formatTimestamp(r.End),
			strings.TrimSpace(string(summary)))
	}

	if err := os.WriteFile(run.MergedPath(), []byte(transcript.String()), 0o644); err != nil {
		return "", fmt.Errorf("write merged transcript: %w", err)
	}

	p.logger.Info(ctx, "Finalized run %s: %d chunks", run.Name(), len(state.Chunks))
	return notes.String(), nil
}

// Status loads the checkpointed state of the named run.
func (p *implRunner) Status(name string) (*domain.RunState, error) {
	run := workspace.Named(p.cfg.Paths.RunsDir(), name)
	store := checkpoint.NewStore(run.CheckpointPath())
	if !store.Exists() {
		return nil, fmt.Errorf("no run named %q", name)
	}
	return store.Load()
}

func formatTimestamp(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
