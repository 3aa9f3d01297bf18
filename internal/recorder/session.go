package recorder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/phamtrung99/notecast/internal/domain"
)

const sessionFilename = ".session.json"

// Session describes one capture: who is recording, where to, since when.
// It is persisted next to the recordings so start and stop can be separate
// process invocations.
type Session struct {
	Name      string    `json:"name"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
	AudioPath string    `json:"audio_path"`
	Driver    string    `json:"driver"`
}

// Alive reports whether the capture process still runs.
func (s *Session) Alive() bool {
	return pidAlive(s.PID)
}

// Elapsed is the recording duration so far.
func (s *Session) Elapsed() time.Duration {
	return time.Since(s.StartedAt).Round(time.Second)
}

func (r *implRecorder) sessionPath() string {
	return filepath.Join(r.recordingsDir, sessionFilename)
}

func (r *implRecorder) readSession() (*Session, error) {
	data, err := os.ReadFile(r.sessionPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNoRecordingSession
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	return &session, nil
}

func (r *implRecorder) writeSession(s *Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(r.sessionPath(), data, 0o644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (r *implRecorder) clearSession() {
	os.Remove(r.sessionPath())
}

func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
