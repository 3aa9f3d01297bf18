package domain

import "errors"

// Pipeline errors represent failures of the recording-to-notes flow.
// Adapters and the runner wrap these so callers can match with errors.Is.
var (
	// ErrServiceUnavailable indicates an external engine (whisper binary,
	// Ollama server, Gemini API) could not be reached at all.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrEmptyOutput indicates an external call completed but produced no
	// usable text. The chunk stays at its last successful stage.
	ErrEmptyOutput = errors.New("service returned no usable output")

	// ErrIncompleteRun indicates finalize was called while at least one
	// chunk is not summarized.
	ErrIncompleteRun = errors.New("run is not fully summarized")

	// ErrInvalidChunkDuration indicates a non-positive chunk duration.
	ErrInvalidChunkDuration = errors.New("chunk duration must be positive")

	// ErrEmptyRecording indicates the recording has zero duration.
	ErrEmptyRecording = errors.New("recording has no audio")

	// ErrInvalidTransition indicates a chunk status change that the
	// pending -> transcribed -> summarized machine forbids.
	ErrInvalidTransition = errors.New("invalid chunk status transition")

	// ErrRecordingChanged indicates the recording on disk no longer matches
	// the one the checkpoint was created for.
	ErrRecordingChanged = errors.New("recording does not match checkpoint")

	// ErrRunLocked indicates another live process holds the run lock.
	ErrRunLocked = errors.New("run is locked by another process")

	// ErrRecordingActive indicates a capture session is already running.
	ErrRecordingActive = errors.New("a recording session is already active")

	// ErrNoRecordingSession indicates stop/status was called with no
	// capture session on disk.
	ErrNoRecordingSession = errors.New("no active recording session")
)
