package cli

import (
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/phamtrung99/notecast/internal/domain"
)

// NewRecordCmd creates the record command group
func NewRecordCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Manage the microphone capture session",
	}

	cmd.AddCommand(
		newRecordStartCmd(deps),
		newRecordStopCmd(deps),
		newRecordStatusCmd(deps),
		newRecordDevicesCmd(deps),
	)

	return cmd
}

func newRecordStartCmd(deps *Dependencies) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start recording in the background",
		Long: `Start spawns a detached ffmpeg capture and returns immediately.
The recording keeps running until 'notecast record stop'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := deps.Recorder.Start(cmd.Context(), name)
			if err != nil {
				return err
			}

			cmd.Printf("Recording %s (pid %d)\n", session.Name, session.PID)
			cmd.Printf("  output: %s\n", session.AudioPath)
			cmd.Printf("Stop with: notecast record stop\n")
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "recording name (default: timestamp)")

	return cmd
}

func newRecordStopCmd(deps *Dependencies) *cobra.Command {
	var process bool

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the current recording",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := deps.Recorder.Stop(cmd.Context())
			if err != nil {
				return err
			}

			cmd.Printf("Stopped %s after %s\n", session.Name, session.Elapsed().Round(time.Second))
			cmd.Printf("  output: %s\n", session.AudioPath)

			if !process {
				cmd.Printf("Process with: notecast process %s\n", session.AudioPath)
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return processRecording(ctx, cmd, deps, session.AudioPath)
		},
	}

	cmd.Flags().BoolVarP(&process, "process", "p", false, "run the pipeline on the recording right away")

	return cmd
}

func newRecordStatusCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current recording session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := deps.Recorder.Status(cmd.Context())
			if errors.Is(err, domain.ErrNoRecordingSession) {
				cmd.Println("No recording in progress")
				return nil
			}
			if err != nil {
				return err
			}

			cmd.Printf("Recording %s (pid %d, %s elapsed)\n",
				session.Name, session.PID, session.Elapsed().Round(time.Second))
			cmd.Printf("  output: %s\n", session.AudioPath)
			if !session.Alive() {
				cmd.Println("  warning: capture process is gone; run 'notecast record stop' to clean up")
			}
			return nil
		},
	}
}

func newRecordDevicesCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio input devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := deps.Recorder.Devices(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Print(out)
			return nil
		},
	}
}
