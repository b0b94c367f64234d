package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// RotationConfig configures log file rotation behavior.
type RotationConfig struct {
	// MaxSize is the maximum size in bytes before rotation.
	// Zero uses the default of 10MB.
	MaxSize int64

	// MaxAge is the number of days a backup is kept. Zero keeps them forever.
	MaxAge int

	// MaxBackups is the number of backups kept. Zero keeps all of them.
	MaxBackups int

	// Daily rotates the log file when the day changes.
	Daily bool
}

// DefaultRotationConfig returns the rotation used when none is configured.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		MaxSize:    10 * 1024 * 1024,
		MaxAge:     30,
		MaxBackups: 5,
		Daily:      true,
	}
}

// dayLayout identifies the calendar day a log file was started on.
const dayLayout = "2006-01-02"

// RotatingWriter appends to a log file and rotates it into numbered
// backups: fim.log.1 is the most recent, fim.log.2 the one before, and so on.
// Each write holds an flock so concurrent fim invocations can share a log.
type RotatingWriter struct {
	path string
	cfg  RotationConfig

	mu   sync.Mutex
	file *os.File
	size int64
	day  string
}

// NewRotatingWriter opens path for appending, creating parent directories,
// and drops backups older than cfg.MaxAge.
func NewRotatingWriter(path string, cfg RotationConfig) (*RotatingWriter, error) {
	if cfg.MaxSize == 0 {
		cfg.MaxSize = DefaultRotationConfig().MaxSize
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	w := &RotatingWriter{path: path, cfg: cfg}
	if err := w.open(); err != nil {
		return nil, err
	}
	w.pruneExpired()
	return w, nil
}

// Write appends p, rotating first when p would overflow MaxSize or the day
// has changed.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}

	if w.due(int64(len(p))) {
		if err := w.rotate(); err != nil {
			return 0, fmt.Errorf("rotating log file: %w", err)
		}
	}

	n, err := w.appendLocked(p)
	w.size += int64(n)
	if err != nil {
		return n, fmt.Errorf("writing to log file: %w", err)
	}
	return n, nil
}

// Close syncs and closes the log file. Further writes fail with os.ErrClosed.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}

	syncErr := w.file.Sync()
	closeErr := w.file.Close()
	w.file = nil
	if syncErr != nil {
		return fmt.Errorf("syncing log file: %w", syncErr)
	}
	return closeErr
}

func (w *RotatingWriter) appendLocked(p []byte) (int, error) {
	fd := int(w.file.Fd())
	if err := unix.Flock(fd, unix.LOCK_EX); err != nil {
		return 0, fmt.Errorf("acquiring file lock: %w", err)
	}
	defer func() { _ = unix.Flock(fd, unix.LOCK_UN) }()

	return w.file.Write(p)
}

func (w *RotatingWriter) open() error {
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("stat log file: %w", err)
	}

	w.file = file
	w.size = info.Size()
	w.day = info.ModTime().Format(dayLayout)
	return nil
}

// due reports whether the next write of n bytes must go to a fresh file.
// An empty file is never rotated.
func (w *RotatingWriter) due(n int64) bool {
	if w.size == 0 {
		return false
	}
	if w.size+n > w.cfg.MaxSize {
		return true
	}
	return w.cfg.Daily && time.Now().Format(dayLayout) != w.day
}

// rotate shifts fim.log.N to fim.log.N+1, newest last so nothing is
// overwritten, moves the live file to fim.log.1 and reopens it.
func (w *RotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("closing current file: %w", err)
	}
	w.file = nil

	backups := w.backups()
	for i := len(backups) - 1; i >= 0; i-- {
		n := backups[i]
		if w.cfg.MaxBackups > 0 && n >= w.cfg.MaxBackups {
			_ = os.Remove(w.backupPath(n))
			continue
		}
		if err := os.Rename(w.backupPath(n), w.backupPath(n+1)); err != nil {
			return fmt.Errorf("shifting log backup: %w", err)
		}
	}

	if err := os.Rename(w.path, w.backupPath(1)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("renaming log file: %w", err)
	}

	if err := w.open(); err != nil {
		return err
	}
	w.day = time.Now().Format(dayLayout)
	w.pruneExpired()
	return nil
}

func (w *RotatingWriter) backupPath(n int) string {
	return w.path + "." + strconv.Itoa(n)
}

// backups returns the numbers of existing backups in ascending order.
func (w *RotatingWriter) backups() []int {
	entries, err := os.ReadDir(filepath.Dir(w.path))
	if err != nil {
		return nil
	}

	prefix := filepath.Base(w.path) + "."
	var nums []int
	for _, entry := range entries {
		suffix, ok := strings.CutPrefix(entry.Name(), prefix)
		if !ok || entry.IsDir() {
			continue
		}
		if n, err := strconv.Atoi(suffix); err == nil && n > 0 {
			nums = append(nums, n)
		}
	}
	sort.Ints(nums)
	return nums
}

// pruneExpired removes backups last written more than MaxAge days ago.
func (w *RotatingWriter) pruneExpired() {
	if w.cfg.MaxAge <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -w.cfg.MaxAge)

	for _, n := range w.backups() {
		path := w.backupPath(n)
		info, err := os.Stat(path)
		if err == nil && info.ModTime().Before(cutoff) {
			_ = os.Remove(path)
		}
	}
}
