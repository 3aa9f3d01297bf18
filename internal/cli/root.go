package cli

import (
	"github.com/spf13/cobra"

	"github.com/phamtrung99/notecast/internal/config"
	"github.com/phamtrung99/notecast/internal/logger"
	"github.com/phamtrung99/notecast/internal/pipeline"
	"github.com/phamtrung99/notecast/internal/recorder"
	"github.com/phamtrung99/notecast/internal/summarizer"
	"github.com/phamtrung99/notecast/internal/transcriber"
	"github.com/phamtrung99/notecast/internal/version"
)

// Dependencies holds the wired services shared by all commands. It is
// populated once per invocation, after the persistent flags are parsed.
type Dependencies struct {
	Config      *config.Config
	Logger      logger.Logger
	Runner      pipeline.Runner
	Recorder    recorder.Recorder
	Transcriber transcriber.Transcriber
	Summarizer  summarizer.Summarizer
}

// NewRootCmd creates the root command for the notecast CLI
func NewRootCmd() *cobra.Command {
	deps := &Dependencies{}
	var configPath string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "notecast",
		Short: "Record lectures and turn them into notes, fully offline",
		Long: `Notecast records lectures from a microphone, splits the audio into
chunks, transcribes each chunk with whisper.cpp, and condenses the
transcripts into final notes with a local Ollama model or Gemini.

Processing is checkpointed per chunk: a crashed or interrupted run
picks up where it left off when started again.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return deps.init(configPath, verbose)
		},
	}
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default "+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		NewRecordCmd(deps),
		NewProcessCmd(deps),
		NewStatusCmd(deps),
		NewNotesCmd(deps),
		NewExportCmd(deps),
		NewWatchCmd(deps),
		NewCleanCmd(deps),
		NewDoctorCmd(deps),
	)

	return rootCmd
}
