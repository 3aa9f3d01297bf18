package summarizer

import "context"

// Summarizer defines the interface for turning a transcript chunk into notes
type Summarizer interface {
	// Summarize produces condensed notes for one transcript chunk.
	Summarize(ctx context.Context, transcript string) (string, error)
	// Ping verifies the backend is usable without spending a generation.
	Ping(ctx context.Context) error
	// Name identifies the backend in logs and doctor output.
	Name() string
}
