// Package runlock prevents concurrent verification runs against the
// same deployment. Two ragcheck processes probing the same server
// would double-spawn subprocesses and skew each other's results.
package runlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/kt2saint-sec/ragcheck/internal/errors"
)

// LockFile is the lock file name inside the data directory.
const LockFile = ".ragcheck.lock"

// RunLock provides cross-process locking via gofrs/flock.
// Works on all platforms (Unix, Linux, macOS, Windows).
type RunLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// New creates a run lock for the given data directory.
func New(dataDir string) *RunLock {
	lockPath := filepath.Join(dataDir, LockFile)
	return &RunLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// Acquire attempts to take the lock without blocking. A held lock is an
// operator error, not a condition to wait out: the running verification
// should finish or be killed first.
func (l *RunLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return errors.New(errors.ErrCodeLockHeld, "create lock directory", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return errors.New(errors.ErrCodeLockHeld, "acquire run lock", err)
	}
	if !acquired {
		return errors.New(errors.ErrCodeLockHeld,
			fmt.Sprintf("another verification is already running (lock: %s)", l.path), nil).
			WithSuggestion("wait for the other run to finish, or remove the lock file if it is stale")
	}

	l.locked = true
	return nil
}

// Release unlocks. Safe to call multiple times or on an unheld lock.
func (l *RunLock) Release() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return errors.New(errors.ErrCodeLockHeld, "release run lock", err)
	}
	return nil
}

// Path returns the lock file location.
func (l *RunLock) Path() string {
	return l.path
}
