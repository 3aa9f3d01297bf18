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

func (p *implRunner) Run(ctx context.Context, recordingPath string) (*Report, error) {
	started := time.Now()

	run := workspace.ForRecording(p.cfg.Paths.RunsDir(), recordingPath)
	if err := run.Prepare(); err != nil {
		return nil, err
	}

	lock, err := workspace.AcquireLock(run.LockPath())
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	rec, err := p.audio.Probe(ctx, recordingPath)
	if err != nil {
		return nil, fmt.Errorf("probe recording: %w", err)
	}

	store := checkpoint.NewStore(run.CheckpointPath())
	state, fresh, err := p.loadOrCreate(store, run, rec)
	if err != nil {
		return nil, err
	}
	if fresh {
		p.logger.Info(ctx, "Starting run %s: %d chunks of %s", run.Name(), len(state.Chunks), state.ChunkDuration)
		if err := store.Save(state); err != nil {
			return nil, err
		}
	} else {
		pending, transcribed, summarized := state.Counts()
		p.logger.Info(ctx, "Resuming run %s: %d summarized, %d transcribed, %d pending",
			run.Name(), summarized, transcribed, pending)
	}

	src, err := p.prepareSource(ctx, run, rec)
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: state.RunID, Recording: rec, Chunks: len(state.Chunks)}
	_, _, report.Skipped = state.Counts()

	for i := range state.Chunks {
		select {
		case <-ctx.Done():
			report.Elapsed = time.Since(started)
			return report, ctx.Err()
		default:
		}

		chunkErr, fatal := p.processChunk(ctx, run, store, state, src, i)
		if fatal != nil {
			report.Elapsed = time.Since(started)
			return report, fatal
		}
		if chunkErr != nil {
			report.Failed++
			p.logger.Error(ctx, "Chunk %d failed: %v", i, chunkErr)
			if ctx.Err() != nil {
				report.Elapsed = time.Since(started)
				return report, ctx.Err()
			}
			if p.cfg.Pipeline.StopOnError {
				report.Elapsed = time.Since(started)
				return report, chunkErr
			}
		}
	}

	_, _, summarized := state.Counts()
	report.Summarized = summarized - report.Skipped
	report.Complete = state.Complete()
	report.Elapsed = time.Since(started)

	p.logger.Info(ctx, "Run %s: %d/%d chunks summarized (%d new, %d failed) in %s",
		run.Name(), summarized, report.Chunks, report.Summarized, report.Failed,
		report.Elapsed.Round(time.Millisecond))
	return report, nil
}

// loadOrCreate restores the checkpoint or plans a fresh run. A checkpoint
// belonging to a different recording under the same name is an error, not
// something to silently overwrite.
func (p *implRunner) loadOrCreate(store *checkpoint.Store, run workspace.Run, rec domain.Recording) (*domain.RunState, bool, error) {
	chunkDur := time.Duration(p.cfg.Audio.ChunkSeconds) * time.Second

	if store.Exists() {
		state, err := store.Load()
		if err != nil {
			return nil, false, fmt.Errorf("load checkpoint: %w", err)
		}
		if !state.Recording.Matches(rec) {
			return nil, false, fmt.Errorf("%w: %s (delete %s to start over)",
				domain.ErrRecordingChanged, rec.Path, run.Dir())
		}
		return state, false, nil
	}

	chunks, err := domain.PlanChunks(rec.Duration, chunkDur)
	if err != nil {
		return nil, false, err
	}
	state := domain.NewRunState(rec, chunkDur, chunks)
	for i := range state.Chunks {
		state.Chunks[i].AudioPath = run.Rel(run.ChunkAudioPath(i))
		state.Chunks[i].TranscriptPath = run.Rel(run.TranscriptPath(i))
		state.Chunks[i].SummaryPath = run.Rel(run.SummaryPath(i))
	}
	return state, true, nil
}

// prepareSource decides which file chunks are cut from. With normalization
// on, the normalized WAV is produced once per run and reused on resume.
func (p *implRunner) prepareSource(ctx context.Context, run workspace.Run, rec domain.Recording) (string, error) {
	if !p.cfg.Audio.Normalize {
		return rec.Path, nil
	}
	if workspace.HasContent(run.NormalizedPath()) {
		return run.NormalizedPath(), nil
	}
	src, err := p.audio.Normalize(ctx, rec.Path, run.NormalizedPath())
	if err != nil {
		return "", fmt.Errorf("normalize: %w", err)
	}
	return src, nil
}

// processChunk brings one chunk as far forward as it can go. chunkErr is a
// recoverable per-chunk failure (the run continues with the next chunk);
// fatal aborts the whole run, which is reserved for checkpoint writes and
// status-machine violations.
func (p *implRunner) processChunk(ctx context.Context, run workspace.Run, store *checkpoint.Store, state *domain.RunState, src string, i int) (chunkErr, fatal error) {
	r := state.Result(i)

	transcriptPath := run.Abs(r.TranscriptPath)
	summaryPath := run.Abs(r.SummaryPath)
	needTranscribe, needSummarize := r.Remaining(
		workspace.HasContent(transcriptPath),
		workspace.HasContent(summaryPath),
	)

	if r.Status == domain.StatusSummarized {
		p.logger.Debug(ctx, "Chunk %d already summarized, skipping", i)
		return nil, nil
	}

	if needTranscribe {
		audioPath := run.Abs(r.AudioPath)
		if !workspace.HasContent(audioPath) {
			if err := p.audio.Cut(ctx, src, audioPath, r.Start, r.Length()); err != nil {
				return fmt.Errorf("cut chunk %d: %w", i, err), nil
			}
		}
		if _, err := p.withAttempts(ctx, "transcribe", i, func() (string, error) {
			return p.transcriber.Transcribe(ctx, audioPath, run.TranscriptPrefix(i))
		}); err != nil {
			return fmt.Errorf("transcribe chunk %d: %w", i, err), nil
		}
	}

	// The transcript is on disk now, either fresh or from an earlier
	// session the checkpoint never recorded. Persist the stage before
	// spending summarizer calls on it.
	if r.Status == domain.StatusPending {
		if err := state.MarkTranscribed(i); err != nil {
			return nil, err
		}
		if err := store.Save(state); err != nil {
			return nil, fmt.Errorf("save checkpoint: %w", err)
		}
	}

	if needSummarize {
		data, err := os.ReadFile(transcriptPath)
		if err != nil {
			return fmt.Errorf("read transcript for chunk %d: %w", i, err), nil
		}
		summary, err := p.withAttempts(ctx, "summarize", i, func() (string, error) {
			return p.summarizer.Summarize(ctx, strings.TrimSpace(string(data)))
		})
		if err != nil {
			return fmt.Errorf("summarize chunk %d: %w", i, err), nil
		}
		if err := os.WriteFile(summaryPath, []byte(summary+"\n"), 0o644); err != nil {
			return fmt.Errorf("write summary for chunk %d: %w", i, err), nil
		}
	}

	if err := state.MarkSummarized(i); err != nil {
		return nil, err
	}
	if err := store.Save(state); err != nil {
		return nil, fmt.Errorf("save checkpoint: %w", err)
	}

	p.logger.Info(ctx, "Chunk %d/%d summarized", i+1, len(state.Chunks))
	return nil, nil
}

// withAttempts retries a stage up to pipeline.stage_attempts times.
func (p *implRunner) withAttempts(ctx context.Context, stage string, i int, fn func() (string, error)) (string, error) {
	attempts := p.cfg.Pipeline.StageAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for a := 1; a <= attempts; a++ {
		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if a < attempts {
			p.logger.Warn(ctx, "%s chunk %d attempt %d/%d failed: %v", stage, i, a, attempts, err)
		}
	}
	return "", lastErr
}
