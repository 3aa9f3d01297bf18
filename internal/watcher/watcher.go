package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/phamtrung99/notecast/internal/logger"
)

// recordingExts are the containers a lecture typically arrives in: raw
// captures, phone recordings, and screen recordings with an audio track.
var recordingExts = []string{
	".wav", ".mp3", ".m4a", ".aac", ".flac", ".ogg",
	".mp4", ".mov", ".mkv", ".webm",
}

type implWatcher struct {
	inboxDir      string
	handler       EventHandler
	logger        logger.Logger
	watcher       *fsnotify.Watcher
	maxConcurrent int
	semaphore     chan struct{}
	wg            sync.WaitGroup
}

// Start blocks, processing every recording dropped into the inbox until the
// context is cancelled. Shutdown waits for in-flight recordings to finish.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Watching inbox %s (max concurrent: %d)", w.inboxDir, w.maxConcurrent)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for in-flight recordings to finish...")
			w.wg.Wait()
			w.logger.Info(ctx, "Inbox watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !isRecordingFile(event.Name) {
				w.logger.Debug(ctx, "Ignoring %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New recording detected: %s", event.Name)

			// Give the producer a moment to finish writing.
			time.Sleep(500 * time.Millisecond)

			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go func(path string) {
					defer w.wg.Done()
					defer func() { <-w.semaphore }()

					if err := w.handler(ctx, path); err != nil {
						w.logger.Error(ctx, "Failed to process %s: %v", path, err)
					}
				}(event.Name)
			case <-ctx.Done():
				w.wg.Wait()
				return ctx.Err()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the underlying filesystem watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func isRecordingFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range recordingExts {
		if ext == supported {
			return true
		}
	}
	return false
}
