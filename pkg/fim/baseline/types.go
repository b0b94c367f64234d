// Package baseline defines the persisted snapshot of tracked files and the
// file-backed store that loads and saves it.
package baseline

import (
	"errors"
	"sort"
	"time"
)

// CurrentVersion is the schema version written by Save.
//
// Schema versions:
// 0 - no version field, zone-less timestamps (legacy baselines)
// 1 - explicit version, RFC 3339 timestamps
const CurrentVersion = 1

var (
	// ErrUninitialized is returned when an operation needs tracked files but
	// the baseline has none.
	ErrUninitialized = errors.New("no baseline exists, run 'init' first")

	// ErrIOFailure wraps any failure to persist the baseline.
	ErrIOFailure = errors.New("baseline could not be written")

	// ErrUnsupportedVersion is returned when the store was written by a newer fim.
	ErrUnsupportedVersion = errors.New("unsupported baseline version")
)

// FileRecord is the recorded state of one tracked file.
type FileRecord struct {
	// Digest is the hex SHA-256 of the file content.
	Digest string `json:"hash"`

	// Size is the byte length when Digest was taken.
	Size int64 `json:"size"`

	// FirstSeen is when the record was created. Update never changes it.
	FirstSeen Stamp `json:"added"`
}

// Baseline is the snapshot of tracked files, keyed by absolute path.
type Baseline struct {
	Version   int                    `json:"version"`
	Files     map[string]*FileRecord `json:"files"`
	CreatedAt *Stamp                 `json:"created"`
	UpdatedAt *Stamp                 `json:"updated"`
}

// New returns an empty baseline at the current schema version.
func New() *Baseline {
	return &Baseline{
		Version: CurrentVersion,
		Files:   make(map[string]*FileRecord),
	}
}

// Empty reports whether no files are tracked. An empty baseline is treated
// as uninitialized regardless of its timestamps.
func (b *Baseline) Empty() bool {
	return b == nil || len(b.Files) == 0
}

// Paths returns the tracked paths in sorted order.
func (b *Baseline) Paths() []string {
	paths := make([]string, 0, len(b.Files))
	for p := range b.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// TotalSize returns the sum of recorded sizes.
func (b *Baseline) TotalSize() int64 {
	var total int64
	for _, r := range b.Files {
		total += r.Size
	}
	return total
}

// Touch sets UpdatedAt to now.
func (b *Baseline) Touch(now time.Time) {
	s := NewStamp(now)
	b.UpdatedAt = &s
}
