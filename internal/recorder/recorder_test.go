package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phamtrung99/notecast/internal/config"
	"github.com/phamtrung99/notecast/internal/domain"
	"github.com/phamtrung99/notecast/internal/logger"
)

func testRecorder(t *testing.T) (*implRecorder, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.RecorderConfig{Driver: "auto", Device: "default", SampleRate: 16000}
	r := New(cfg, dir, logger.NewWithWriter("error", io.Discard)).(*implRecorder)
	return r, dir
}

func TestCaptureDriver(t *testing.T) {
	tests := []struct {
		driver string
		goos   string
		want   string
	}{
		{"auto", "darwin", "avfoundation"},
		{"auto", "linux", "alsa"},
		{"auto", "windows", "dshow"},
		{"", "linux", "alsa"},
		{"pulse", "linux", "pulse"},
		{"avfoundation", "darwin", "avfoundation"},
	}
	for _, tt := range tests {
		if got := captureDriver(tt.driver, tt.goos); got != tt.want {
			t.Errorf("captureDriver(%q, %q) = %q, want %q", tt.driver, tt.goos, got, tt.want)
		}
	}
}

func TestBuildCaptureArgs(t *testing.T) {
	tests := []struct {
		name      string
		driver    string
		device    string
		wantInput string
	}{
		{"avfoundation prefixes colon", "avfoundation", "default", ":default"},
		{"dshow prefixes audio=", "dshow", "Microphone", "audio=Microphone"},
		{"alsa passes device through", "alsa", "hw:1,0", "hw:1,0"},
		{"pulse passes device through", "pulse", "default", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := buildCaptureArgs(tt.driver, tt.device, 16000, "out.wav")

			pairs := map[string]string{}
			for i := 0; i+1 < len(args); i++ {
				pairs[args[i]] = args[i+1]
			}
			if pairs["-f"] != tt.driver {
				t.Errorf("-f = %q, want %q", pairs["-f"], tt.driver)
			}
			if pairs["-i"] != tt.wantInput {
				t.Errorf("-i = %q, want %q", pairs["-i"], tt.wantInput)
			}
			if pairs["-ar"] != "16000" || pairs["-ac"] != "1" {
				t.Errorf("sample args wrong: %v", args)
			}
			if args[len(args)-1] != "out.wav" {
				t.Errorf("last arg = %q, want output path", args[len(args)-1])
			}
		})
	}
}

func TestBuildDeviceArgs(t *testing.T) {
	args := buildDeviceArgs("avfoundation")
	found := false
	for _, a := range args {
		if a == "-list_devices" {
			found = true
		}
	}
	if !found {
		t.Errorf("avfoundation listing should use -list_devices, got %v", args)
	}

	args = buildDeviceArgs("alsa")
	if len(args) < 2 || args[len(args)-2] != "-sources" || args[len(args)-1] != "alsa" {
		t.Errorf("alsa listing should use -sources alsa, got %v", args)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	r, dir := testRecorder(t)

	session := &Session{
		Name:      "calculus-2",
		PID:       os.Getpid(),
		StartedAt: time.Now().UTC(),
		AudioPath: filepath.Join(dir, "calculus-2.wav"),
		Driver:    "alsa",
	}
	if err := r.writeSession(session); err != nil {
		t.Fatalf("writeSession() error = %v", err)
	}

	got, err := r.readSession()
	if err != nil {
		t.Fatalf("readSession() error = %v", err)
	}
	if got.Name != session.Name || got.PID != session.PID || got.AudioPath != session.AudioPath {
		t.Errorf("readSession() = %+v, want %+v", got, session)
	}
	if !got.Alive() {
		t.Error("session with our own pid should be alive")
	}

	r.clearSession()
	if _, err := r.readSession(); !errors.Is(err, domain.ErrNoRecordingSession) {
		t.Errorf("readSession() after clear error = %v, want ErrNoRecordingSession", err)
	}
}

func TestStatusWithoutSession(t *testing.T) {
	r, _ := testRecorder(t)
	if _, err := r.Status(context.Background()); !errors.Is(err, domain.ErrNoRecordingSession) {
		t.Errorf("Status() error = %v, want ErrNoRecordingSession", err)
	}
}

func TestStartRefusesWhileActive(t *testing.T) {
	r, dir := testRecorder(t)

	// A live session: our own pid.
	session := &Session{Name: "live", PID: os.Getpid(), StartedAt: time.Now(), AudioPath: filepath.Join(dir, "live.wav")}
	if err := r.writeSession(session); err != nil {
		t.Fatal(err)
	}

	_, err := r.Start(context.Background(), "another")
	if !errors.Is(err, domain.ErrRecordingActive) {
		t.Errorf("Start() error = %v, want ErrRecordingActive", err)
	}
}

func TestStopClearsDeadSession(t *testing.T) {
	r, dir := testRecorder(t)

	// A session whose process is long gone.
	session := &Session{Name: "stale", PID: 1 << 30, StartedAt: time.Now().Add(-time.Hour), AudioPath: filepath.Join(dir, "stale.wav")}
	if err := r.writeSession(session); err != nil {
		t.Fatal(err)
	}

	got, err := r.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if got.Name != "stale" {
		t.Errorf("Stop() returned session %q, want stale", got.Name)
	}
	if _, err := os.Stat(r.sessionPath()); !os.IsNotExist(err) {
		t.Error("session file should be removed after stop")
	}
}

func TestStopWithoutSession(t *testing.T) {
	r, _ := testRecorder(t)
	if _, err := r.Stop(context.Background()); !errors.Is(err, domain.ErrNoRecordingSession) {
		t.Errorf("Stop() error = %v, want ErrNoRecordingSession", err)
	}
}

func TestSessionFileFormat(t *testing.T) {
	r, _ := testRecorder(t)

	session := &Session{Name: "x", PID: 42, StartedAt: time.Now(), AudioPath: "x.wav", Driver: "pulse"}
	if err := r.writeSession(session); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(r.sessionPath())
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("session file is not valid JSON: %v", err)
	}
	for _, key := range []string{"name", "pid", "started_at", "audio_path", "driver"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("session file missing %q", key)
		}
	}
}

func TestWaitForExitDeadPid(t *testing.T) {
	start := time.Now()
	if !waitForExit(1<<30, time.Second) {
		t.Error("waitForExit() should report a dead pid immediately")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("waitForExit() should not wait for a dead pid")
	}
}
