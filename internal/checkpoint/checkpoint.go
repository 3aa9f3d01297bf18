// Package checkpoint persists pipeline run state as a JSON file inside the
// run directory. Writes go through a temp file and rename so a crash mid-save
// never leaves a half-written checkpoint behind.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/phamtrung99/notecast/internal/domain"
)

// Filename is the checkpoint file inside a run directory.
const Filename = "checkpoint.json"

// Store reads and writes the checkpoint for one run.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Exists reports whether a checkpoint was saved before.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// Load reads the checkpoint and converts it back into run state. A missing
// file is an error; callers check Exists first and create a fresh state.
func (s *Store) Load() (*domain.RunState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var file runStateFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint %s: %w", s.path, err)
	}
	return file.toDomain()
}

// Save writes the checkpoint atomically. Any error here must abort the run:
// continuing without a durable checkpoint would redo completed work on the
// next resume at best and double-bill the summarizer at worst.
func (s *Store) Save(state *domain.RunState) error {
	file := fromDomain(state)
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace checkpoint: %w", err)
	}
	return nil
}

// On-disk schema. Durations are stored as integer milliseconds so the file
// stays readable and diffs cleanly.
type runStateFile struct {
	RunID     string        `json:"run_id"`
	Recording recordingFile `json:"recording"`
	ChunkMS   int64         `json:"chunk_ms"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Chunks    []chunkFile   `json:"chunks"`
}

type recordingFile struct {
	Path       string `json:"path"`
	DurationMS int64  `json:"duration_ms"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	SizeBytes  int64  `json:"size_bytes"`
}

type chunkFile struct {
	Index      int    `json:"index"`
	StartMS    int64  `json:"start_ms"`
	EndMS      int64  `json:"end_ms"`
	Status     string `json:"status"`
	Audio      string `json:"audio,omitempty"`
	Transcript string `json:"transcript,omitempty"`
	Summary    string `json:"summary,omitempty"`
}

func fromDomain(state *domain.RunState) runStateFile {
	file := runStateFile{
		RunID: state.RunID,
		Recording: recordingFile{
			Path:       state.Recording.Path,
			DurationMS: state.Recording.Duration.Milliseconds(),
			SampleRate: state.Recording.SampleRate,
			Channels:   state.Recording.Channels,
			SizeBytes:  state.Recording.SizeBytes,
		},
		ChunkMS:   state.ChunkDuration.Milliseconds(),
		CreatedAt: state.CreatedAt,
		UpdatedAt: state.UpdatedAt,
		Chunks:    make([]chunkFile, len(state.Chunks)),
	}
	for i, r := range state.Chunks {
		file.Chunks[i] = chunkFile{
			Index:      r.Index,
			StartMS:    r.Start.Milliseconds(),
			EndMS:      r.End.Milliseconds(),
			Status:     string(r.Status),
			Audio:      r.AudioPath,
			Transcript: r.TranscriptPath,
			Summary:    r.SummaryPath,
		}
	}
	return file
}

func (f runStateFile) toDomain() (*domain.RunState, error) {
	state := &domain.RunState{
		RunID: f.RunID,
		Recording: domain.Recording{
			Path:       f.Recording.Path,
			Duration:   time.Duration(f.Recording.DurationMS) * time.Millisecond,
			SampleRate: f.Recording.SampleRate,
			Channels:   f.Recording.Channels,
			SizeBytes:  f.Recording.SizeBytes,
		},
		ChunkDuration: time.Duration(f.ChunkMS) * time.Millisecond,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
		Chunks:        make([]domain.ChunkResult, len(f.Chunks)),
	}
	for i, c := range f.Chunks {
		status := domain.ChunkStatus(c.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("checkpoint chunk %d has unknown status %q", c.Index, c.Status)
		}
		state.Chunks[i] = domain.ChunkResult{
			Chunk: domain.Chunk{
				Index: c.Index,
				Start: time.Duration(c.StartMS) * time.Millisecond,
				End:   time.Duration(c.EndMS) * time.Millisecond,
			},
			Status:         status,
			AudioPath:      c.Audio,
			TranscriptPath: c.Transcript,
			SummaryPath:    c.Summary,
		}
	}
	return state, nil
}
