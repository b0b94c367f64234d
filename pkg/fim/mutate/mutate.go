// Package mutate implements the operations that change a baseline: Init,
// Add, Remove, and Update.
//
// Mutators work on a Baseline passed in by the caller and never touch the
// store; persisting the result is the caller's job.
package mutate

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/jamesainslie/fim/pkg/fim/baseline"
	"github.com/jamesainslie/fim/pkg/fim/digest"
	"github.com/jamesainslie/fim/pkg/fim/enumerate"
	"github.com/jamesainslie/fim/pkg/fim/logging"
)

// ErrEmptyInput is returned by Init when the inputs resolve to no files.
var ErrEmptyInput = errors.New("no files found")

var logger = logging.Get("mutate")

// Env supplies the collaborators a mutator needs. Zero fields fall back to
// digest.File, a default enumerator, and time.Now.
type Env struct {
	Digest    digest.Func
	Enumerate enumerate.Func
	Now       func() time.Time
}

func (e Env) digest(path string) (string, bool) {
	if e.Digest != nil {
		return e.Digest(path)
	}
	return digest.File(path)
}

func (e Env) enumerate(inputs []string) []string {
	if e.Enumerate != nil {
		return e.Enumerate(inputs...)
	}
	return enumerate.New(enumerate.Options{}).All(inputs...)
}

func (e Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Result lists the paths a mutation touched, in processing order.
type Result struct {
	// Operation names the mutator that produced the result.
	Operation string `json:"operation" yaml:"operation"`

	// Found is the number of files the inputs resolved to (Init and Add).
	Found int `json:"found" yaml:"found"`

	Added   []string `json:"added,omitempty" yaml:"added,omitempty"`
	Removed []string `json:"removed,omitempty" yaml:"removed,omitempty"`
	Updated []string `json:"updated,omitempty" yaml:"updated,omitempty"`

	// Skipped lists files that could not be hashed.
	Skipped []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`

	// Tracked is the number of files in the baseline afterwards.
	Tracked int `json:"tracked" yaml:"tracked"`
}

// Init builds a new baseline from inputs, discarding whatever existed before.
// Files that cannot be hashed are left out. If the inputs resolve to no files
// at all, Init returns ErrEmptyInput and no baseline.
func Init(env Env, inputs []string) (*baseline.Baseline, *Result, error) {
	paths := env.enumerate(inputs)
	if len(paths) == 0 {
		return nil, nil, ErrEmptyInput
	}

	logger.Info("hashing files", "count", len(paths))

	b := baseline.New()
	created := baseline.NewStamp(env.now())
	b.CreatedAt = &created

	res := &Result{Operation: "init", Found: len(paths)}
	for _, path := range paths {
		if rec, ok := record(env, path); ok {
			b.Files[path] = rec
			res.Added = append(res.Added, path)
		} else {
			res.Skipped = append(res.Skipped, path)
		}
	}

	res.Tracked = len(b.Files)
	return b, res, nil
}

// Add hashes and inserts every file under inputs that is not yet tracked.
// Tracked paths keep their record even if the file changed; refreshing them
// is Update's job. UpdatedAt is set even when nothing was added.
func Add(env Env, b *baseline.Baseline, inputs []string) (*Result, error) {
	if b.Empty() {
		return nil, baseline.ErrUninitialized
	}

	paths := env.enumerate(inputs)
	res := &Result{Operation: "add", Found: len(paths)}

	for _, path := range paths {
		if _, tracked := b.Files[path]; tracked {
			continue
		}
		if rec, ok := record(env, path); ok {
			b.Files[path] = rec
			res.Added = append(res.Added, path)
		} else {
			res.Skipped = append(res.Skipped, path)
		}
	}

	b.Touch(env.now())
	res.Tracked = len(b.Files)
	return res, nil
}

// Remove stops tracking each input path. Inputs are made absolute but not
// expanded: removing a directory path only drops a record with exactly that
// key. Untracked paths are ignored.
func Remove(env Env, b *baseline.Baseline, inputs []string) (*Result, error) {
	if b.Empty() {
		return nil, baseline.ErrUninitialized
	}

	res := &Result{Operation: "remove"}
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			logger.Debug("cannot resolve path", "path", in, "err", err)
			continue
		}
		if _, tracked := b.Files[abs]; !tracked {
			continue
		}
		delete(b.Files, abs)
		res.Removed = append(res.Removed, abs)
	}

	b.Touch(env.now())
	res.Tracked = len(b.Files)
	return res, nil
}

// Update refreshes digest and size for tracked files whose content changed.
// FirstSeen is preserved. Files that are gone or unreadable keep their stale
// record; only check reports them.
func Update(env Env, b *baseline.Baseline) (*Result, error) {
	if b.Empty() {
		return nil, baseline.ErrUninitialized
	}

	logger.Info("updating hashes", "count", len(b.Files))

	res := &Result{Operation: "update"}
	for _, path := range b.Paths() {
		rec := b.Files[path]
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		sum, ok := env.digest(path)
		if !ok {
			res.Skipped = append(res.Skipped, path)
			continue
		}
		if sum == rec.Digest {
			continue
		}

		rec.Digest = sum
		rec.Size = info.Size()
		res.Updated = append(res.Updated, path)
	}

	b.Touch(env.now())
	res.Tracked = len(b.Files)
	return res, nil
}

// record hashes path and builds its FileRecord.
func record(env Env, path string) (*baseline.FileRecord, bool) {
	sum, ok := env.digest(path)
	if !ok {
		logger.Debug("skipping unreadable file", "path", path)
		return nil, false
	}

	info, err := os.Stat(path)
	if err != nil {
		logger.Debug("skipping file that vanished after hashing", "path", path, "err", err)
		return nil, false
	}

	return &baseline.FileRecord{
		Digest:    sum,
		Size:      info.Size(),
		FirstSeen: baseline.NewStamp(env.now()),
	}, true
}
