package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phamtrung99/notecast/internal/watcher"
)

// NewWatchCmd creates the watch command
func NewWatchCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the inbox and process recordings as they arrive",
		Long: `Watch monitors the inbox directory and runs the full pipeline on every
recording dropped there. Distinct recordings may be processed
concurrently (performance.max_concurrent); chunks within one recording
always stay in order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := deps.Config
			log := deps.Logger

			if err := os.MkdirAll(cfg.Paths.Inbox, 0o755); err != nil {
				return fmt.Errorf("create inbox: %w", err)
			}

			handler := func(ctx context.Context, recordingPath string) error {
				report, err := deps.Runner.Run(ctx, recordingPath)
				if err != nil {
					return err
				}
				if !report.Complete {
					log.Warn(ctx, "Run for %s incomplete: %d chunks failed; drop the file again to retry", recordingPath, report.Failed)
					return nil
				}

				path, err := writeNotes(ctx, deps, recordingPath)
				if err != nil {
					return err
				}
				log.Info(ctx, "Notes written: %s", path)
				return nil
			}

			w, err := watcher.New(cfg.Paths.Inbox, handler, log, cfg.Performance.MaxConcurrent)
			if err != nil {
				return err
			}
			defer w.Stop()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			done := make(chan error, 1)
			go func() { done <- w.Start(ctx) }()

			cmd.Printf("Watching %s (Ctrl+C to stop)\n", cfg.Paths.Inbox)

			select {
			case sig := <-sigChan:
				log.Info(ctx, "Received signal %v, waiting for in-flight recordings", sig)
				cancel()
				<-done
			case err := <-done:
				if err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
			}
			return nil
		},
	}
}
