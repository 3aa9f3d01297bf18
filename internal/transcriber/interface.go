package transcriber

import "context"

// Transcriber defines the interface for speech-to-text over audio chunks
type Transcriber interface {
	// Transcribe runs the engine on audioPath and returns the transcript
	// text. The engine also writes the transcript to outputPrefix + ".txt",
	// which doubles as the persistent artifact for resume.
	Transcribe(ctx context.Context, audioPath, outputPrefix string) (string, error)
	// Ping verifies the engine binary and model are present.
	Ping(ctx context.Context) error
}
