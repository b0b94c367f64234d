package baseline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ErrLocked is returned by TryLock when another process holds the lock.
var ErrLocked = errors.New("baseline is locked by another process")

// Lock takes an exclusive advisory lock on the sidecar file <store>.lock,
// blocking until it is available. Hold it across load, mutate, and save.
// Only cooperating fim processes honour the lock.
func (s *Store) Lock() (unlock func() error, err error) {
	return s.lock(unix.LOCK_EX)
}

// TryLock is like Lock but fails with ErrLocked instead of waiting.
func (s *Store) TryLock() (unlock func() error, err error) {
	return s.lock(unix.LOCK_EX | unix.LOCK_NB)
}

// LockPath returns the sidecar lock file path.
func (s *Store) LockPath() string {
	return s.path + ".lock"
}

func (s *Store) lock(how int) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	f, err := os.OpenFile(s.LockPath(), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), how); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("locking %s: %w", s.LockPath(), err)
	}

	logger.Debug("baseline lock acquired", "path", s.LockPath())

	return func() error {
		unlockErr := unix.Flock(int(f.Fd()), unix.LOCK_UN)
		closeErr := f.Close()
		if unlockErr != nil {
			return fmt.Errorf("unlocking %s: %w", s.LockPath(), unlockErr)
		}
		return closeErr
	}, nil
}
