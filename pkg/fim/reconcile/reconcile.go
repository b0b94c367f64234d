// Package reconcile compares a baseline against the live filesystem.
package reconcile

import (
	"errors"
	"io/fs"
	"os"
	"sort"

	"github.com/jamesainslie/fim/pkg/fim/baseline"
	"github.com/jamesainslie/fim/pkg/fim/digest"
	"github.com/jamesainslie/fim/pkg/fim/logging"
)

var logger = logging.Get("reconcile")

// Status classifies one tracked path.
type Status string

const (
	StatusOK       Status = "ok"
	StatusModified Status = "modified"
	StatusDeleted  Status = "deleted"
)

// DiffEntry is the outcome for one tracked path. OldPrefix and NewPrefix are
// set only for modified entries and hold the first 16 hex characters of the
// recorded and current digests.
type DiffEntry struct {
	Path      string `json:"path" yaml:"path"`
	Status    Status `json:"status" yaml:"status"`
	OldPrefix string `json:"old_hash,omitempty" yaml:"old_hash,omitempty"`
	NewPrefix string `json:"new_hash,omitempty" yaml:"new_hash,omitempty"`

	// Unreadable marks a modified entry whose file exists but could not be
	// hashed. NewPrefix is empty in that case.
	Unreadable bool `json:"unreadable,omitempty" yaml:"unreadable,omitempty"`
}

// Report is the result of a check.
type Report struct {
	Checked  int         `json:"checked" yaml:"checked"`
	OK       int         `json:"ok" yaml:"ok"`
	Modified []DiffEntry `json:"modified" yaml:"modified"`
	Deleted  []DiffEntry `json:"deleted" yaml:"deleted"`
}

// Clean reports whether every tracked file matched its recorded digest.
func (r *Report) Clean() bool {
	return len(r.Modified) == 0 && len(r.Deleted) == 0
}

// Options configures a check.
type Options struct {
	// Digest computes file digests. Nil uses digest.File.
	Digest digest.Func
}

// Check classifies every tracked path in b as ok, modified, or deleted.
// It reads b and the filesystem and writes neither.
func Check(b *baseline.Baseline, opts Options) (*Report, error) {
	if b.Empty() {
		return nil, baseline.ErrUninitialized
	}

	sum := opts.Digest
	if sum == nil {
		sum = digest.File
	}

	report := &Report{
		Checked:  len(b.Files),
		Modified: []DiffEntry{},
		Deleted:  []DiffEntry{},
	}

	for path, rec := range b.Files {
		entry := classify(path, rec, sum)
		switch entry.Status {
		case StatusOK:
			report.OK++
		case StatusModified:
			report.Modified = append(report.Modified, entry)
		case StatusDeleted:
			report.Deleted = append(report.Deleted, entry)
		}
	}

	sortEntries(report.Modified)
	sortEntries(report.Deleted)

	logger.Info("check complete",
		"checked", report.Checked,
		"ok", report.OK,
		"modified", len(report.Modified),
		"deleted", len(report.Deleted),
	)
	return report, nil
}

// classify applies the per-path rules. A file that exists but cannot be
// hashed is reported as modified with Unreadable set, never as ok.
func classify(path string, rec *baseline.FileRecord, sum digest.Func) DiffEntry {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DiffEntry{Path: path, Status: StatusDeleted}
		}
		logger.Warn("cannot stat tracked file", "path", path, "err", err)
		return unreadable(path, rec)
	}

	current, ok := sum(path)
	if !ok {
		logger.Warn("cannot hash tracked file", "path", path)
		return unreadable(path, rec)
	}

	if current != rec.Digest {
		return DiffEntry{
			Path:      path,
			Status:    StatusModified,
			OldPrefix: digest.Prefix(rec.Digest),
			NewPrefix: digest.Prefix(current),
		}
	}

	return DiffEntry{Path: path, Status: StatusOK}
}

func unreadable(path string, rec *baseline.FileRecord) DiffEntry {
	return DiffEntry{
		Path:       path,
		Status:     StatusModified,
		OldPrefix:  digest.Prefix(rec.Digest),
		Unreadable: true,
	}
}

func sortEntries(entries []DiffEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
}
