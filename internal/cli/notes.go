package cli

import (
	"github.com/spf13/cobra"
)

// NewNotesCmd creates the notes command
func NewNotesCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "notes <run>",
		Short: "Print the notes for a completed run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := deps.Runner.Finalize(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmd.Print(content)
			return nil
		},
	}
}
