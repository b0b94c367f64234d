// Package enumerate expands user-supplied paths into the absolute paths of
// the regular files they denote.
package enumerate

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/jamesainslie/fim/pkg/fim/logging"
)

var logger = logging.Get("enumerate")

// Options configures enumeration.
type Options struct {
	// Exclude contains paths or glob patterns to skip. A pattern matches a
	// path exactly, any path beneath it, or the basename/full path as a glob.
	Exclude []string

	// Workers is the number of fastwalk workers. Zero uses fastwalk's default.
	Workers int
}

// Func expands inputs into a sorted, de-duplicated list of absolute file paths.
type Func func(inputs ...string) []string

// Enumerator walks inputs according to its Options.
type Enumerator struct {
	opts Options
}

// New returns an Enumerator with the given options.
func New(opts Options) *Enumerator {
	return &Enumerator{opts: opts}
}

// Paths returns every regular file denoted by input.
//
// A regular file yields itself; a directory yields every regular file beneath
// it. Anything else (missing path, device, socket) yields nothing: deciding
// whether an empty result is a problem is left to the caller.
func (e *Enumerator) Paths(input string) []string {
	abs, err := filepath.Abs(input)
	if err != nil {
		logger.Debug("cannot resolve path", "path", input, "err", err)
		return nil
	}

	if e.isExcluded(abs) {
		return nil
	}

	info, err := os.Stat(abs)
	if err != nil {
		logger.Debug("path does not exist", "path", abs, "err", err)
		return nil
	}

	switch {
	case info.Mode().IsRegular():
		return []string{abs}
	case info.IsDir():
		return e.walk(abs)
	default:
		return nil
	}
}

// All unions Paths over every input, dropping duplicates, sorted by path.
func (e *Enumerator) All(inputs ...string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, in := range inputs {
		for _, p := range e.Paths(in) {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// walk collects regular files under root with fastwalk. Symlinked
// directories are not descended; symlinks to regular files are included.
func (e *Enumerator) walk(root string) []string {
	conf := fastwalk.Config{
		Follow:     false,
		NumWorkers: e.opts.Workers,
	}

	var (
		mu    sync.Mutex
		files []string
	)

	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Debug("walk error", "path", path, "err", err)
			return nil
		}

		if e.isExcluded(path) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if d.IsDir() || !e.isRegular(path, d) {
			return nil
		}

		mu.Lock()
		files = append(files, path)
		mu.Unlock()
		return nil
	})
	if err != nil && !errors.Is(err, fastwalk.ErrSkipFiles) {
		logger.Warn("walk aborted", "root", root, "err", err)
	}

	sort.Strings(files)
	return files
}

func (e *Enumerator) isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (e *Enumerator) isExcluded(path string) bool {
	for _, pattern := range e.opts.Exclude {
		if matchesExclusionPattern(path, pattern) {
			return true
		}
	}
	return false
}

// matchesExclusionPattern checks if a path matches a single exclusion pattern.
func matchesExclusionPattern(path, pattern string) bool {
	if pattern == "" {
		return false
	}

	if path == pattern {
		return true
	}
	if len(path) > len(pattern) && path[:len(pattern)+1] == pattern+string(filepath.Separator) {
		return true
	}

	if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
		return true
	}

	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}

	return false
}
