package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/phamtrung99/notecast/internal/workspace"
)

// NewStatusCmd creates the status command
func NewStatusCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "status [run]",
		Short: "Show pipeline progress",
		Long: `Status without arguments lists all runs with their progress. With a
run name (or recording path) it shows the per-chunk state.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return showRun(cmd, deps, workspace.RunName(args[0]))
			}
			return listRuns(cmd, deps)
		},
	}
}

func listRuns(cmd *cobra.Command, deps *Dependencies) error {
	runs, err := workspace.ListRuns(deps.Config.Paths.RunsDir())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		cmd.Println("No runs yet")
		return nil
	}

	for _, name := range runs {
		state, err := deps.Runner.Status(name)
		if err != nil {
			cmd.Printf("%-32s (unreadable checkpoint: %v)\n", name, err)
			continue
		}

		_, _, summarized := state.Counts()
		marker := ""
		if state.Complete() {
			marker = "  complete"
		}
		cmd.Printf("%-32s %d/%d summarized%s\n", name, summarized, len(state.Chunks), marker)
	}
	return nil
}

func showRun(cmd *cobra.Command, deps *Dependencies, name string) error {
	state, err := deps.Runner.Status(name)
	if err != nil {
		return err
	}

	cmd.Printf("Run %s (%s)\n", name, state.RunID)
	cmd.Printf("  recording: %s (%s)\n", state.Recording.Path, state.Recording.Duration.Round(time.Second))
	cmd.Printf("  updated:   %s\n", state.UpdatedAt.Format(time.RFC3339))
	cmd.Println()

	for i := range state.Chunks {
		r := &state.Chunks[i]
		cmd.Printf("  %3d  %7s - %-7s  %s\n",
			r.Index, r.Start.Round(time.Second), r.End.Round(time.Second), r.Status)
	}

	pending, transcribed, summarized := state.Counts()
	cmd.Printf("\n  %d summarized, %d transcribed, %d pending\n", summarized, transcribed, pending)
	return nil
}
