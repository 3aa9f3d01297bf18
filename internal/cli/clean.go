package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phamtrung99/notecast/internal/workspace"
)

// NewCleanCmd creates the clean command
func NewCleanCmd(deps *Dependencies) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clean <run>",
		Short: "Remove run artifacts",
		Long: `Clean removes the chunk WAVs and normalized audio of a run; both are
re-created on demand when processing resumes. With --all the entire run
directory goes, checkpoint included. That is the way out when the source
recording changed and the checkpoint no longer matches it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := workspace.RunName(args[0])
			run := workspace.Named(deps.Config.Paths.RunsDir(), name)

			if _, err := os.Stat(run.Dir()); err != nil {
				return fmt.Errorf("no run named %q", name)
			}

			// Refuse to pull files out from under an active run.
			lock, err := workspace.AcquireLock(run.LockPath())
			if err != nil {
				return err
			}
			defer lock.Release()

			if all {
				if err := os.RemoveAll(run.Dir()); err != nil {
					return err
				}
				cmd.Printf("Removed run %s\n", name)
				return nil
			}

			chunksDir := filepath.Dir(run.ChunkAudioPath(0))
			if err := os.RemoveAll(chunksDir); err != nil {
				return err
			}
			if err := os.Remove(run.NormalizedPath()); err != nil && !os.IsNotExist(err) {
				return err
			}
			cmd.Printf("Removed chunk audio for %s\n", name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "remove the whole run directory including the checkpoint")

	return cmd
}
