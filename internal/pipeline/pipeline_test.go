package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phamtrung99/notecast/internal/checkpoint"
	"github.com/phamtrung99/notecast/internal/config"
	"github.com/phamtrung99/notecast/internal/domain"
	"github.com/phamtrung99/notecast/internal/logger"
	"github.com/phamtrung99/notecast/internal/workspace"
)

// stubAudio fakes probing and cutting without touching ffmpeg.
type stubAudio struct {
	duration       time.Duration
	sizeBytes      int64
	probeErr       error
	cutCalls       int
	cutErr         error
	normalizeCalls int
}

func (s *stubAudio) Probe(_ context.Context, path string) (domain.Recording, error) {
	if s.probeErr != nil {
		return domain.Recording{}, s.probeErr
	}
	return domain.Recording{
		Path:       path,
		Duration:   s.duration,
		SampleRate: 16000,
		Channels:   1,
		SizeBytes:  s.sizeBytes,
	}, nil
}

func (s *stubAudio) Normalize(_ context.Context, _, dst string) (string, error) {
	s.normalizeCalls++
	if err := os.WriteFile(dst, []byte("normalized"), 0o644); err != nil {
		return "", err
	}
	return dst, nil
}

func (s *stubAudio) Cut(_ context.Context, _, dst string, _, _ time.Duration) error {
	s.cutCalls++
	if s.cutErr != nil {
		return s.cutErr
	}
	return os.WriteFile(dst, []byte("chunk audio"), 0o644)
}

// stubTranscriber writes the transcript artifact like the real engine does.
type stubTranscriber struct {
	calls int
	err   error
}

func (s *stubTranscriber) Transcribe(_ context.Context, audioPath, outputPrefix string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	text := fmt.Sprintf("transcript of %s", filepath.Base(audioPath))
	if err := os.WriteFile(outputPrefix+".txt", []byte(text), 0o644); err != nil {
		return "", err
	}
	return text, nil
}

func (s *stubTranscriber) Ping(context.Context) error { return nil }

// stubSummarizer fails on selected call numbers (1-based).
type stubSummarizer struct {
	calls     int
	errOnCall map[int]error
}

func (s *stubSummarizer) Summarize(_ context.Context, transcript string) (string, error) {
	s.calls++
	if err := s.errOnCall[s.calls]; err != nil {
		return "", err
	}
	return "- " + transcript, nil
}

func (s *stubSummarizer) Ping(context.Context) error { return nil }
func (s *stubSummarizer) Name() string               { return "stub" }

type testEnv struct {
	cfg  *config.Config
	aud  *stubAudio
	tr   *stubTranscriber
	sum  *stubSummarizer
	rec  string
	path string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	cfg.Paths.DataDir = t.TempDir()
	cfg.Audio.Normalize = false

	return &testEnv{
		cfg:  cfg,
		aud:  &stubAudio{duration: 90 * time.Second, sizeBytes: 4096},
		tr:   &stubTranscriber{},
		sum:  &stubSummarizer{errOnCall: map[int]error{}},
		rec:  "lecture",
		path: filepath.Join(cfg.Paths.DataDir, "inbox", "lecture.mp4"),
	}
}

func (e *testEnv) runner() Runner {
	return New(e.cfg, e.aud, e.tr, e.sum, logger.NewWithWriter("error", io.Discard))
}

func (e *testEnv) run() workspace.Run {
	return workspace.ForRecording(e.cfg.Paths.RunsDir(), e.path)
}

func (e *testEnv) loadState(t *testing.T) *domain.RunState {
	t.Helper()
	state, err := checkpoint.NewStore(e.run().CheckpointPath()).Load()
	if err != nil {
		t.Fatalf("load checkpoint: %v", err)
	}
	return state
}

func TestRunProcessesAllChunks(t *testing.T) {
	env := newTestEnv(t)
	runner := env.runner()

	report, err := runner.Run(context.Background(), env.path)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Chunks != 3 {
		t.Errorf("Chunks = %d, want 3", report.Chunks)
	}
	if report.Summarized != 3 || report.Failed != 0 || report.Skipped != 0 {
		t.Errorf("report = %+v, want 3 summarized, 0 failed, 0 skipped", report)
	}
	if !report.Complete {
		t.Error("report should be complete")
	}
	if env.tr.calls != 3 || env.sum.calls != 3 {
		t.Errorf("service calls = (%d, %d), want (3, 3)", env.tr.calls, env.sum.calls)
	}

	run := env.run()
	for i := 0; i < 3; i++ {
		if !workspace.HasContent(run.TranscriptPath(i)) {
			t.Errorf("transcript %d missing", i)
		}
		if !workspace.HasContent(run.SummaryPath(i)) {
			t.Errorf("summary %d missing", i)
		}
	}

	state := env.loadState(t)
	if !state.Complete() {
		t.Error("checkpoint should record a complete run")
	}

	// Lock must be released.
	if _, err := os.Stat(run.LockPath()); !os.IsNotExist(err) {
		t.Error("run lock should be released after Run")
	}
}

func TestRunIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	runner := env.runner()

	if _, err := runner.Run(context.Background(), env.path); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	report, err := runner.Run(context.Background(), env.path)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if env.tr.calls != 3 || env.sum.calls != 3 {
		t.Errorf("second run repeated work: calls = (%d, %d), want (3, 3)", env.tr.calls, env.sum.calls)
	}
	if report.Skipped != 3 || report.Summarized != 0 {
		t.Errorf("report = %+v, want 3 skipped, 0 new", report)
	}
	if !report.Complete {
		t.Error("report should be complete")
	}
}

func TestRunContinuesPastFailedChunk(t *testing.T) {
	env := newTestEnv(t)
	// Second summarize call (chunk 1) fails.
	env.sum.errOnCall[2] = domain.ErrServiceUnavailable
	runner := env.runner()

	report, err := runner.Run(context.Background(), env.path)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Failed != 1 || report.Summarized != 2 {
		t.Errorf("report = %+v, want 1 failed, 2 summarized", report)
	}
	if report.Complete {
		t.Error("report should not be complete")
	}

	state := env.loadState(t)
	want := []domain.ChunkStatus{domain.StatusSummarized, domain.StatusTranscribed, domain.StatusSummarized}
	for i, w := range want {
		if state.Chunks[i].Status != w {
			t.Errorf("chunk %d status = %s, want %s", i, state.Chunks[i].Status, w)
		}
	}
}

func TestRunResumesWithoutRepeatingWork(t *testing.T) {
	env := newTestEnv(t)
	env.sum.errOnCall[2] = errors.New("model crashed")
	runner := env.runner()

	if _, err := runner.Run(context.Background(), env.path); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	trCalls, sumCalls := env.tr.calls, env.sum.calls

	// Next session: the failure is gone.
	env.sum.errOnCall = map[int]error{}
	report, err := runner.Run(context.Background(), env.path)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if env.tr.calls != trCalls {
		t.Errorf("resume re-transcribed: %d extra calls", env.tr.calls-trCalls)
	}
	if env.sum.calls != sumCalls+1 {
		t.Errorf("resume should summarize exactly the failed chunk, got %d extra calls", env.sum.calls-sumCalls)
	}
	if !report.Complete || report.Summarized != 1 || report.Skipped != 2 {
		t.Errorf("report = %+v, want complete with 1 new, 2 skipped", report)
	}
}

func TestRunStopOnError(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Pipeline.StopOnError = true
	env.sum.errOnCall[1] = errors.New("backend down")
	runner := env.runner()

	_, err := runner.Run(context.Background(), env.path)
	if err == nil {
		t.Fatal("Run() should fail with stop_on_error set")
	}

	// Only the first chunk was attempted.
	if env.tr.calls != 1 || env.sum.calls != 1 {
		t.Errorf("calls = (%d, %d), want (1, 1)", env.tr.calls, env.sum.calls)
	}

	state := env.loadState(t)
	if state.Chunks[0].Status != domain.StatusTranscribed {
		t.Errorf("chunk 0 status = %s, want transcribed", state.Chunks[0].Status)
	}
	if state.Chunks[1].Status != domain.StatusPending {
		t.Errorf("chunk 1 status = %s, want pending", state.Chunks[1].Status)
	}
}

func TestRunStageAttemptsRetries(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Pipeline.StageAttempts = 2
	// First summarize attempt fails, the in-run retry succeeds.
	env.sum.errOnCall[1] = errors.New("transient")
	runner := env.runner()

	report, err := runner.Run(context.Background(), env.path)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Failed != 0 || !report.Complete {
		t.Errorf("report = %+v, want complete without failures", report)
	}
	// 3 chunks + 1 retry.
	if env.sum.calls != 4 {
		t.Errorf("summarizer calls = %d, want 4", env.sum.calls)
	}
}

func TestRunPromotesStatusFromArtifacts(t *testing.T) {
	env := newTestEnv(t)
	runner := env.runner()

	if _, err := runner.Run(context.Background(), env.path); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Simulate a crash that produced every artifact but lost the status:
	// rewind the checkpoint to all-pending.
	store := checkpoint.NewStore(env.run().CheckpointPath())
	state := env.loadState(t)
	for i := range state.Chunks {
		state.Chunks[i].Status = domain.StatusPending
	}
	if err := store.Save(state); err != nil {
		t.Fatal(err)
	}

	report, err := runner.Run(context.Background(), env.path)
	if err != nil {
		t.Fatalf("Run() after rewind error = %v", err)
	}

	// Artifacts on disk mean no service is called again.
	if env.tr.calls != 3 || env.sum.calls != 3 {
		t.Errorf("promote made service calls: (%d, %d), want (3, 3)", env.tr.calls, env.sum.calls)
	}
	if !report.Complete || report.Summarized != 3 {
		t.Errorf("report = %+v, want complete with 3 promoted", report)
	}
}

func TestRunRejectsChangedRecording(t *testing.T) {
	env := newTestEnv(t)
	runner := env.runner()

	if _, err := runner.Run(context.Background(), env.path); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Same path, different content.
	env.aud.sizeBytes = 9999
	_, err := runner.Run(context.Background(), env.path)
	if !errors.Is(err, domain.ErrRecordingChanged) {
		t.Errorf("Run() error = %v, want ErrRecordingChanged", err)
	}
}

func TestRunRespectsLock(t *testing.T) {
	env := newTestEnv(t)
	run := env.run()
	if err := run.Prepare(); err != nil {
		t.Fatal(err)
	}
	lock, err := workspace.AcquireLock(run.LockPath())
	if err != nil {
		t.Fatal(err)
	}
	defer lock.Release()

	_, err = env.runner().Run(context.Background(), env.path)
	if !errors.Is(err, domain.ErrRunLocked) {
		t.Errorf("Run() error = %v, want ErrRunLocked", err)
	}
}

func TestRunNormalizesOnce(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Audio.Normalize = true
	runner := env.runner()

	if _, err := runner.Run(context.Background(), env.path); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if _, err := runner.Run(context.Background(), env.path); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if env.aud.normalizeCalls != 1 {
		t.Errorf("normalize calls = %d, want 1", env.aud.normalizeCalls)
	}
}

func TestRunCancelledContext(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.runner().Run(ctx, env.path)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if env.sum.calls != 0 {
		t.Errorf("cancelled run made %d summarizer calls", env.sum.calls)
	}
}

func TestRunEmptyRecording(t *testing.T) {
	env := newTestEnv(t)
	env.aud.duration = 0

	_, err := env.runner().Run(context.Background(), env.path)
	if !errors.Is(err, domain.ErrEmptyRecording) {
		t.Errorf("Run() error = %v, want ErrEmptyRecording", err)
	}
}

func TestFinalize(t *testing.T) {
	env := newTestEnv(t)
	runner := env.runner()

	if _, err := runner.Run(context.Background(), env.path); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	notes, err := runner.Finalize(context.Background(), env.path)
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if !strings.HasPrefix(notes, "# Final Lecture Notes: lecture") {
		t.Errorf("notes should open with the title heading, got %q", notes[:40])
	}
	for i := 1; i <= 3; i++ {
		if !strings.Contains(notes, fmt.Sprintf("## Part %d", i)) {
			t.Errorf("notes missing part %d", i)
		}
	}
	if !strings.Contains(notes, "(00:00 - 00:30)") {
		t.Error("notes missing first chunk time range")
	}
	if !strings.Contains(notes, "(01:00 - 01:30)") {
		t.Error("notes missing last chunk time range")
	}

	merged, err := os.ReadFile(env.run().MergedPath())
	if err != nil {
		t.Fatalf("merged transcript missing: %v", err)
	}

	// Transcripts appear in chunk order.
	text := string(merged)
	last := -1
	for i := 0; i < 3; i++ {
		part := fmt.Sprintf("transcript of chunk_%03d.wav", i)
		pos := strings.Index(text, part)
		if pos < 0 {
			t.Fatalf("merged transcript missing chunk %d", i)
		}
		if pos < last {
			t.Errorf("chunk %d out of order", i)
		}
		last = pos
	}
}

func TestFinalizeIncompleteRun(t *testing.T) {
	env := newTestEnv(t)
	env.sum.errOnCall[3] = errors.New("backend down")
	runner := env.runner()

	if _, err := runner.Run(context.Background(), env.path); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	_, err := runner.Finalize(context.Background(), env.path)
	if !errors.Is(err, domain.ErrIncompleteRun) {
		t.Fatalf("Finalize() error = %v, want ErrIncompleteRun", err)
	}

	// Nothing may be produced for an incomplete run.
	if _, err := os.Stat(env.run().MergedPath()); !os.IsNotExist(err) {
		t.Error("merged transcript must not exist for an incomplete run")
	}
}

func TestFinalizeWithoutRun(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.runner().Finalize(context.Background(), env.path)
	if !errors.Is(err, domain.ErrIncompleteRun) {
		t.Errorf("Finalize() error = %v, want ErrIncompleteRun", err)
	}
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t)
	runner := env.runner()

	if _, err := runner.Status("lecture"); err == nil {
		t.Error("Status() should fail before any run")
	}

	if _, err := runner.Run(context.Background(), env.path); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	state, err := runner.Status("lecture")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if !state.Complete() {
		t.Error("Status() should report the completed run")
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{30 * time.Second, "00:30"},
		{90 * time.Second, "01:30"},
		{61 * time.Minute, "1:01:00"},
	}
	for _, tt := range tests {
		if got := formatTimestamp(tt.d); got != tt.want {
			t.Errorf("formatTimestamp(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
