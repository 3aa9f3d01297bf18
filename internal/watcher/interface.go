package watcher

import "context"

// Watcher defines the interface for monitoring the inbox directory
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is called for each new recording that lands in the inbox
type EventHandler func(ctx context.Context, recordingPath string) error
