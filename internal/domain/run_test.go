package domain

import (
	"errors"
	"testing"
	"time"
)

func newTestState(t *testing.T, n int) *RunState {
	t.Helper()
	total := time.Duration(n) * 30 * time.Second
	chunks, err := PlanChunks(total, 30*time.Second)
	if err != nil {
		t.Fatalf("PlanChunks() error = %v", err)
	}
	rec := Recording{Path: "lecture.mp4", Duration: total, SizeBytes: 1 << 20}
	return NewRunState(rec, 30*time.Second, chunks)
}

func TestNewRunState(t *testing.T) {
	state := newTestState(t, 3)

	if state.RunID == "" {
		t.Error("expected a run ID")
	}
	if len(state.Chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(state.Chunks))
	}
	for i, r := range state.Chunks {
		if r.Status != StatusPending {
			t.Errorf("chunk %d status = %s, want pending", i, r.Status)
		}
	}
	if state.Complete() {
		t.Error("fresh state should not be complete")
	}
}

func TestMarkTranscribed(t *testing.T) {
	state := newTestState(t, 2)

	if err := state.MarkTranscribed(0); err != nil {
		t.Fatalf("MarkTranscribed() error = %v", err)
	}
	if got := state.Chunks[0].Status; got != StatusTranscribed {
		t.Errorf("status = %s, want transcribed", got)
	}

	// Marking again is a no-op.
	if err := state.MarkTranscribed(0); err != nil {
		t.Errorf("second MarkTranscribed() error = %v", err)
	}

	if err := state.MarkTranscribed(5); err == nil {
		t.Error("expected error for out-of-range chunk")
	}
}

func TestMarkSummarized(t *testing.T) {
	state := newTestState(t, 2)

	// Cannot skip the transcribe stage.
	err := state.MarkSummarized(0)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("MarkSummarized() on pending chunk error = %v, want ErrInvalidTransition", err)
	}

	if err := state.MarkTranscribed(0); err != nil {
		t.Fatalf("MarkTranscribed() error = %v", err)
	}
	if err := state.MarkSummarized(0); err != nil {
		t.Fatalf("MarkSummarized() error = %v", err)
	}
	if got := state.Chunks[0].Status; got != StatusSummarized {
		t.Errorf("status = %s, want summarized", got)
	}

	// Marking again is a no-op.
	if err := state.MarkSummarized(0); err != nil {
		t.Errorf("second MarkSummarized() error = %v", err)
	}

	// Statuses never move backward.
	err = state.MarkTranscribed(0)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("MarkTranscribed() on summarized chunk error = %v, want ErrInvalidTransition", err)
	}
}

func TestCompleteAndCounts(t *testing.T) {
	state := newTestState(t, 3)

	pending, transcribed, summarized := state.Counts()
	if pending != 3 || transcribed != 0 || summarized != 0 {
		t.Errorf("Counts() = (%d, %d, %d), want (3, 0, 0)", pending, transcribed, summarized)
	}

	for i := 0; i < 3; i++ {
		if err := state.MarkTranscribed(i); err != nil {
			t.Fatalf("MarkTranscribed(%d) error = %v", i, err)
		}
	}
	if state.Complete() {
		t.Error("transcribed-only state should not be complete")
	}

	for i := 0; i < 3; i++ {
		if err := state.MarkSummarized(i); err != nil {
			t.Fatalf("MarkSummarized(%d) error = %v", i, err)
		}
	}
	if !state.Complete() {
		t.Error("all-summarized state should be complete")
	}
	pending, transcribed, summarized = state.Counts()
	if pending != 0 || transcribed != 0 || summarized != 3 {
		t.Errorf("Counts() = (%d, %d, %d), want (0, 0, 3)", pending, transcribed, summarized)
	}
}

func TestChunkResultRemaining(t *testing.T) {
	tests := []struct {
		name             string
		status           ChunkStatus
		transcriptExists bool
		summaryExists    bool
		wantTranscribe   bool
		wantSummarize    bool
	}{
		{"fresh pending chunk", StatusPending, false, false, true, true},
		{"pending with transcript on disk", StatusPending, true, false, false, true},
		{"pending with both artifacts", StatusPending, true, true, false, false},
		{"transcribed, transcript present", StatusTranscribed, true, false, false, true},
		{"transcribed, transcript lost", StatusTranscribed, false, false, true, true},
		{"summarized ignores artifacts", StatusSummarized, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ChunkResult{Status: tt.status}
			gotT, gotS := r.Remaining(tt.transcriptExists, tt.summaryExists)
			if gotT != tt.wantTranscribe || gotS != tt.wantSummarize {
				t.Errorf("Remaining() = (%v, %v), want (%v, %v)",
					gotT, gotS, tt.wantTranscribe, tt.wantSummarize)
			}
		})
	}
}

func TestChunkStatusValid(t *testing.T) {
	for _, s := range []ChunkStatus{StatusPending, StatusTranscribed, StatusSummarized} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if ChunkStatus("done").Valid() {
		t.Error("unknown status should not be valid")
	}
}
