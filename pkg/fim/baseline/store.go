package baseline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jamesainslie/fim/pkg/fim/logging"
)

// DefaultPath is the store file name, relative to the working directory.
const DefaultPath = "baseline.json"

var logger = logging.Get("baseline")

// Store persists a Baseline as a single JSON file.
//
// Every invocation loads and saves the whole baseline; nothing is kept in
// memory between runs.
type Store struct {
	path string
}

// NewStore returns a store backed by the file at path.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the baseline. A missing file yields an empty baseline.
func (s *Store) Load() (*Baseline, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("no baseline file, using empty baseline", "path", s.path)
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading baseline %s: %w", s.path, err)
	}

	b, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding baseline %s: %w", s.path, err)
	}

	logger.Debug("baseline loaded", "path", s.path, "files", len(b.Files), "version", b.Version)
	return b, nil
}

// Save overwrites the store with b. The file is written to a temporary
// sibling and renamed into place, so an interrupted save leaves the previous
// baseline intact. All failures wrap ErrIOFailure.
func (s *Store) Save(b *Baseline) error {
	data, err := Encode(b)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating directory: %w", ErrIOFailure, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", ErrIOFailure, err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("%w: writing temp file: %w", ErrIOFailure, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("%w: setting permissions: %w", ErrIOFailure, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: syncing temp file: %w", ErrIOFailure, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing temp file: %w", ErrIOFailure, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("%w: renaming temp file: %w", ErrIOFailure, err)
	}
	committed = true

	logger.Info("baseline saved", "path", s.path, "files", len(b.Files))
	return nil
}

// Encode serializes b as indented JSON with a trailing newline.
// Map keys are sorted by encoding/json, so encoding is deterministic.
func Encode(b *Baseline) ([]byte, error) {
	out := *b
	out.Version = CurrentVersion
	if out.Files == nil {
		out.Files = make(map[string]*FileRecord)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(&out); err != nil {
		return nil, fmt.Errorf("encoding baseline: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a persisted baseline and migrates it to CurrentVersion.
func Decode(data []byte) (*Baseline, error) {
	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	if err := Migrate(&b); err != nil {
		return nil, err
	}
	return &b, nil
}
