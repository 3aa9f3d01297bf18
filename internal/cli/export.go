package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phamtrung99/notecast/internal/notes"
	"github.com/phamtrung99/notecast/internal/workspace"
)

// NewExportCmd creates the export command
func NewExportCmd(deps *Dependencies) *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export <run>",
		Short: "Export the notes of a completed run",
		Long: `Export renders the notes of a completed run into the notes directory,
as plain text or as a Word document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := deps.Runner.Finalize(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			name := workspace.RunName(args[0])
			path := output

			switch format {
			case "txt":
				if path == "" {
					path = filepath.Join(deps.Config.Paths.Notes, name+".txt")
				}
				err = notes.WriteText(path, content)
			case "docx":
				if path == "" {
					path = filepath.Join(deps.Config.Paths.Notes, name+".docx")
				}
				err = notes.WriteDocx(path, content)
			default:
				return fmt.Errorf("unknown format %q (want txt or docx)", format)
			}
			if err != nil {
				return err
			}

			cmd.Printf("Notes written: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "txt", "output format: txt or docx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: notes dir)")

	return cmd
}
