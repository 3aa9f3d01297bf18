// Package workspace knows the on-disk layout of the data directory: where
// run artifacts, chunk audio, transcripts and summaries live for a given
// recording. Everything the pipeline writes for one recording sits under a
// single run directory so a run can be inspected, resumed or deleted as a
// unit.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/phamtrung99/notecast/internal/checkpoint"
)

const (
	chunksDirName      = "chunks"
	transcriptsDirName = "transcripts"
	summariesDirName   = "summaries"
	lockFilename       = "run.lock"
	normalizedFilename = "normalized.wav"
	mergedFilename     = "transcript.txt"
)

// Run locates the artifacts of one pipeline run.
type Run struct {
	name string
	dir  string
}

// RunName derives the run name from a recording path: the base name without
// its extension. Processing lecture.mp4 twice resumes the same run.
func RunName(recordingPath string) string {
	base := filepath.Base(recordingPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ForRecording returns the run for a recording inside runsDir.
func ForRecording(runsDir, recordingPath string) Run {
	name := RunName(recordingPath)
	return Run{name: name, dir: filepath.Join(runsDir, name)}
}

// Named returns the run with the given name inside runsDir.
func Named(runsDir, name string) Run {
	return Run{name: name, dir: filepath.Join(runsDir, name)}
}

func (r Run) Name() string { return r.name }
func (r Run) Dir() string  { return r.dir }

func (r Run) CheckpointPath() string { return filepath.Join(r.dir, checkpoint.Filename) }
func (r Run) LockPath() string       { return filepath.Join(r.dir, lockFilename) }
func (r Run) NormalizedPath() string { return filepath.Join(r.dir, normalizedFilename) }
func (r Run) MergedPath() string     { return filepath.Join(r.dir, mergedFilename) }

// ChunkAudioPath is where the audio slice for chunk i is cut to.
func (r Run) ChunkAudioPath(i int) string {
	return filepath.Join(r.dir, chunksDirName, fmt.Sprintf("chunk_%03d.wav", i))
}

// TranscriptPrefix is the whisper --output-file prefix for chunk i; the
// engine appends ".txt".
func (r Run) TranscriptPrefix(i int) string {
	return filepath.Join(r.dir, transcriptsDirName, fmt.Sprintf("batch_%03d", i))
}

// TranscriptPath is the transcript artifact for chunk i.
func (r Run) TranscriptPath(i int) string {
	return r.TranscriptPrefix(i) + ".txt"
}

// SummaryPath is the summary artifact for chunk i.
func (r Run) SummaryPath(i int) string {
	return filepath.Join(r.dir, summariesDirName, fmt.Sprintf("summary_%03d.txt", i))
}

// Prepare creates the run directory tree.
func (r Run) Prepare() error {
	for _, dir := range []string{
		r.dir,
		filepath.Join(r.dir, chunksDirName),
		filepath.Join(r.dir, transcriptsDirName),
		filepath.Join(r.dir, summariesDirName),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// Rel converts an absolute artifact path to one relative to the run
// directory, the form stored in the checkpoint.
func (r Run) Rel(path string) string {
	rel, err := filepath.Rel(r.dir, path)
	if err != nil {
		return path
	}
	return rel
}

// Abs resolves a checkpoint-relative artifact path.
func (r Run) Abs(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(r.dir, rel)
}

// HasContent reports whether path exists as a non-empty file. Zero-byte
// artifacts count as absent: a crash between create and write must not make
// resume skip the stage.
func HasContent(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}

// ListRuns returns the run names under runsDir, sorted. A missing runs
// directory means no runs yet.
func ListRuns(runsDir string) ([]string, error) {
	entries, err := os.ReadDir(runsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read runs directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
