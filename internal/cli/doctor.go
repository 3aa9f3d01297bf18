package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

// NewDoctorCmd creates the doctor command
func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the external tools are in place",
		Long: `Doctor verifies every external dependency the pipeline needs: ffmpeg and
ffprobe on PATH, the whisper.cpp binary and model, and the configured
summarizer backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			allOK := true

			check := func(name string, err error, okMsg string) {
				if err != nil {
					allOK = false
					cmd.Printf("[!!] %-12s %v\n", name, err)
					return
				}
				cmd.Printf("[ok] %-12s %s\n", name, okMsg)
			}

			ffmpegPath, err := exec.LookPath("ffmpeg")
			check("ffmpeg", err, ffmpegPath)

			ffprobePath, err := exec.LookPath("ffprobe")
			check("ffprobe", err, ffprobePath)

			err = deps.Transcriber.Ping(ctx)
			check("whisper", err, fmt.Sprintf("%s, model %s", deps.Config.Whisper.BinaryPath, deps.Config.Whisper.ModelPath))

			err = deps.Summarizer.Ping(ctx)
			check(deps.Summarizer.Name(), err, "reachable")

			err = os.MkdirAll(deps.Config.Paths.DataDir, 0o755)
			check("data dir", err, deps.Config.Paths.DataDir)

			if !allOK {
				cmd.Println("\nSome checks failed; fix them before recording or processing.")
			}
			return nil
		},
	}
}
