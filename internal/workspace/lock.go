package workspace

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/phamtrung99/notecast/internal/domain"
)

// Lock is an exclusive per-run lock backed by a pid file. It guards against
// two processes working the same run directory; the pipeline itself is
// strictly sequential.
type Lock struct {
	path string
}

// AcquireLock takes the lock at path. A lock left behind by a dead process
// is reclaimed; a lock held by a live process returns ErrRunLocked.
func AcquireLock(path string) (*Lock, error) {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			if err := f.Close(); err != nil {
				os.Remove(path)
				return nil, fmt.Errorf("write lock file: %w", err)
			}
			return &Lock{path: path}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}

		pid, readErr := readLockPid(path)
		if readErr == nil && pidAlive(pid) {
			return nil, fmt.Errorf("%w (pid %d, %s)", domain.ErrRunLocked, pid, path)
		}
		// Stale or unreadable lock: remove and retry once.
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("remove stale lock: %w", err)
		}
	}
	return nil, fmt.Errorf("%w (%s)", domain.ErrRunLocked, path)
}

// Release removes the lock file.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}

func readLockPid(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 probes for existence without delivering anything.
	return proc.Signal(syscall.Signal(0)) == nil
}
