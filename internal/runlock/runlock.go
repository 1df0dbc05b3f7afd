// Package runlock keeps two pattiprep invocations from rewriting the same
// outputs at once. Each job takes an advisory file lock under the cache
// directory for the duration of its run.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrHeld reports that another process holds the job lock.
var ErrHeld = errors.New("another pattiprep run holds the lock")

// Lock is an acquired job lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// Path returns the lock file location for job under dir.
func Path(dir, job string) string {
	return filepath.Join(dir, "locks", job+".lock")
}

// Acquire takes the lock for job without blocking.
func Acquire(dir, job string) (*Lock, error) {
	path := Path(dir, job)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHeld, path)
	}
	return &Lock{path: path, lock: lock}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release unlocks. It is safe to call on a nil lock.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
