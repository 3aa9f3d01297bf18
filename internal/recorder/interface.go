package recorder

import "context"

// Recorder defines the interface for background lecture capture sessions
type Recorder interface {
	// Start spawns a detached ffmpeg capture and records the session so a
	// later invocation can stop it. An empty name gets a timestamp.
	Start(ctx context.Context, name string) (*Session, error)
	// Stop interrupts the capture process, letting ffmpeg finalize the WAV,
	// and clears the session.
	Stop(ctx context.Context) (*Session, error)
	// Status returns the current session.
	Status(ctx context.Context) (*Session, error)
	// Devices returns the platform's audio input listing.
	Devices(ctx context.Context) (string, error)
}
