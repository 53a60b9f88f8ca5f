package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFilename is created inside the output directory while a batch writes into it
const LockFilename = ".video-translator.lock"

// ErrOutputLocked is returned when another run holds the output directory
var ErrOutputLocked = errors.New("output directory is in use by another run")

// OutputLock guards an output directory against concurrent batch runs
type OutputLock struct {
	lock *flock.Flock
}

// LockOutputDir creates outputDir if needed and takes a non-blocking exclusive lock on it
func LockOutputDir(outputDir string) (*OutputLock, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(outputDir, LockFilename)
	l := flock.New(path)
	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, outputDir)
	}
	return &OutputLock{lock: l}, nil
}

// Path returns the lock file path
func (l *OutputLock) Path() string {
	return l.lock.Path()
}

// Unlock releases the lock and removes the lock file
func (l *OutputLock) Unlock() error {
	if l == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return err
	}
	if err := os.Remove(l.lock.Path()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
