package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/phamtrung99/notecast/internal/notes"
	"github.com/phamtrung99/notecast/internal/workspace"
)

// NewProcessCmd creates the process command
func NewProcessCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <recording>",
		Short: "Transcribe and summarize a recording",
		Long: `Process splits the recording into chunks, transcribes each chunk with
whisper.cpp, summarizes the transcripts, and writes the final notes once
every chunk is done.

Progress is checkpointed after every chunk. Running process again on the
same recording resumes from the checkpoint and never redoes finished
work, so an interrupted or partially failed run is retried by simply
re-running the command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Ctrl+C cancels between stages; the checkpoint keeps the
			// finished chunks.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return processRecording(ctx, cmd, deps, args[0])
		},
	}
	return cmd
}

func processRecording(ctx context.Context, cmd *cobra.Command, deps *Dependencies, recording string) error {
	report, err := deps.Runner.Run(ctx, recording)
	if err != nil {
		return err
	}

	cmd.Printf("Run %s: %d chunks, %d summarized, %d resumed, %d failed (%s)\n",
		workspace.RunName(recording), report.Chunks, report.Summarized,
		report.Skipped, report.Failed, report.Elapsed.Round(time.Second))

	if !report.Complete {
		cmd.Printf("Run is incomplete. Re-run to retry:\n  notecast process %s\n", recording)
		return fmt.Errorf("%d of %d chunks failed", report.Failed, report.Chunks)
	}

	path, err := writeNotes(ctx, deps, recording)
	if err != nil {
		return err
	}
	cmd.Printf("Notes written: %s\n", path)
	return nil
}

// writeNotes renders the combined notes for a finished run into the notes
// directory and returns the written path.
func writeNotes(ctx context.Context, deps *Dependencies, recording string) (string, error) {
	content, err := deps.Runner.Finalize(ctx, recording)
	if err != nil {
		return "", err
	}

	path := filepath.Join(deps.Config.Paths.Notes, workspace.RunName(recording)+".txt")
	if err := notes.WriteText(path, content); err != nil {
		return "", err
	}
	return path, nil
}
