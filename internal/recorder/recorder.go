package recorder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/phamtrung99/notecast/internal/domain"
)

const ffmpegBin = "ffmpeg"

// Start spawns ffmpeg detached from this process. The session file carries
// the pid so `record stop` can find it from a fresh invocation.
func (r *implRecorder) Start(ctx context.Context, name string) (*Session, error) {
	if existing, err := r.readSession(); err == nil {
		if existing.Alive() {
			return nil, fmt.Errorf("%w: %q since %s (pid %d)",
				domain.ErrRecordingActive, existing.Name,
				existing.StartedAt.Format(time.Kitchen), existing.PID)
		}
		r.logger.Warn(ctx, "Removing stale session %q (pid %d not running)", existing.Name, existing.PID)
		r.clearSession()
	} else if !errors.Is(err, domain.ErrNoRecordingSession) {
		return nil, err
	}

	if _, err := exec.LookPath(ffmpegBin); err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", domain.ErrServiceUnavailable)
	}

	if err := os.MkdirAll(r.recordingsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create recordings directory: %w", err)
	}

	now := time.Now()
	if name == "" {
		name = now.Format("2006-01-02_15-04-05")
	}
	audioPath := filepath.Join(r.recordingsDir, name+".wav")

	driver := captureDriver(r.cfg.Driver, runtime.GOOS)
	args := buildCaptureArgs(driver, r.cfg.Device, r.cfg.SampleRate, audioPath)

	cmd := exec.Command(ffmpegBin, args...)
	// ffmpeg chatters on stderr; keep it next to the recording for later
	// diagnosis.
	if logFile, err := os.Create(audioPath + ".ffmpeg.log"); err == nil {
		cmd.Stderr = logFile
		defer logFile.Close()
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg capture: %w", err)
	}

	session := &Session{
		Name:      name,
		PID:       cmd.Process.Pid,
		StartedAt: now,
		AudioPath: audioPath,
		Driver:    driver,
	}
	if err := r.writeSession(session); err != nil {
		cmd.Process.Kill()
		return nil, err
	}

	// Let it run on after we exit.
	cmd.Process.Release()

	r.logger.Info(ctx, "Recording started: %s (pid %d, %s)", audioPath, session.PID, driver)
	return session, nil
}

// Stop sends SIGINT so ffmpeg finalizes the WAV header, escalating to kill
// if it hangs around.
func (r *implRecorder) Stop(ctx context.Context) (*Session, error) {
	session, err := r.readSession()
	if err != nil {
		return nil, err
	}

	if session.Alive() {
		proc, err := os.FindProcess(session.PID)
		if err == nil {
			if err := proc.Signal(os.Interrupt); err != nil {
				r.logger.Warn(ctx, "Could not interrupt recorder: %v", err)
			}
			if !waitForExit(session.PID, 5*time.Second) {
				r.logger.Warn(ctx, "Recorder did not stop in time, killing pid %d", session.PID)
				proc.Kill()
			}
		}
	} else {
		r.logger.Warn(ctx, "Recorder process %d already gone", session.PID)
	}

	r.clearSession()
	r.logger.Info(ctx, "Recording stopped: %s", session.AudioPath)
	return session, nil
}

func (r *implRecorder) Status(_ context.Context) (*Session, error) {
	return r.readSession()
}

// Devices lists capture inputs. ffmpeg prints the listing to stderr and
// exits non-zero on some platforms, so the output matters more than the
// exit code here.
func (r *implRecorder) Devices(ctx context.Context) (string, error) {
	driver := captureDriver(r.cfg.Driver, runtime.GOOS)
	out, _ := exec.CommandContext(ctx, ffmpegBin, buildDeviceArgs(driver)...).CombinedOutput()
	if len(out) == 0 {
		return "", fmt.Errorf("no device listing from ffmpeg (%s)", driver)
	}
	return string(out), nil
}

// captureDriver resolves "auto" to the platform's capture backend.
func captureDriver(driver, goos string) string {
	if driver != "" && driver != "auto" {
		return driver
	}
	switch goos {
	case "darwin":
		return "avfoundation"
	case "windows":
		return "dshow"
	default:
		return "alsa"
	}
}

// captureInput formats the -i argument the way each backend expects.
func captureInput(driver, device string) string {
	switch driver {
	case "avfoundation":
		// Audio-only input: ":default" or ":<index>".
		return ":" + device
	case "dshow":
		return "audio=" + device
	default:
		return device
	}
}

func buildCaptureArgs(driver, device string, sampleRate int, outputPath string) []string {
	return []string{
		"-f", driver,
		"-i", captureInput(driver, device),
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-y",
		outputPath,
	}
}

func buildDeviceArgs(driver string) []string {
	switch driver {
	case "avfoundation", "dshow":
		return []string{"-hide_banner", "-f", driver, "-list_devices", "true", "-i", ""}
	default:
		return []string{"-hide_banner", "-sources", driver}
	}
}

func waitForExit(pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !pidAlive(pid) {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return !pidAlive(pid)
}
