package journal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/jamesainslie/fim/pkg/fim/logging"
)

var (
	// ErrNotFound is returned when no entry matches an id.
	ErrNotFound = errors.New("journal entry not found")

	// ErrAmbiguous is returned when an id prefix matches more than one entry.
	ErrAmbiguous = errors.New("journal entry id is ambiguous")
)

var logger = logging.Get("journal")

// DefaultPath returns the journal directory under the XDG data home.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, "fim", "journal")
}

// Journal wraps Badger for operation history.
type Journal struct {
	db  *badger.DB
	now func() time.Time
}

// Option configures a Journal.
type Option func(*Journal)

// WithClock overrides the clock used to stamp and prune entries.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) { j.now = now }
}

// Open opens or creates a journal at the given directory.
func Open(path string, opts ...Option) (*Journal, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	bopts := badger.DefaultOptions(path)
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	j := &Journal{db: db, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Close closes the journal.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores a new entry and returns it.
func (j *Journal) Record(op Operation, baselinePath string, paths []string, summary Summary) (*Entry, error) {
	id := uuid.New()
	ts := j.now().UTC()

	if paths == nil {
		paths = []string{}
	}
	entry := &Entry{
		ID:        id.String(),
		Timestamp: ts,
		Operation: op,
		Baseline:  baselinePath,
		Paths:     paths,
		Summary:   summary,
	}

	value, err := entry.encode()
	if err != nil {
		return nil, fmt.Errorf("encode journal entry: %w", err)
	}

	hkey := historyKey(ts, id)
	err = j.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(hkey, value); err != nil {
			return err
		}
		return txn.Set(idKey(entry.ID), hkey)
	})
	if err != nil {
		return nil, fmt.Errorf("write journal entry: %w", err)
	}

	logger.Debug("recorded operation", "id", entry.ID, "op", op, "paths", len(paths))
	return entry, nil
}

// List returns entries newest first. If limit is 0 or negative, all entries
// are returned.
func (j *Journal) List(limit int) ([]Entry, error) {
	entries := []Entry{}

	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(prefixHistory)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts at the last key <= seek.
		seek := append([]byte(prefixHistory), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(opts.Prefix); it.Next() {
			if limit > 0 && len(entries) >= limit {
				break
			}

			var entry Entry
			if err := it.Item().Value(entry.decode); err != nil {
				logger.Warn("skipping unreadable journal entry", "err", err)
				continue
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Get retrieves an entry by id. A unique prefix of an id is also accepted.
func (j *Journal) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}

	var entry Entry
	err := j.db.View(func(txn *badger.Txn) error {
		hkey, err := resolve(txn, id)
		if err != nil {
			return err
		}

		item, err := txn.Get(hkey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(entry.decode)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// resolve maps an id or id prefix to its history key.
func resolve(txn *badger.Txn, id string) ([]byte, error) {
	ref, err := txn.Get(idKey(id))
	if err == nil {
		return ref.ValueCopy(nil)
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, err
	}

	opts := badger.DefaultIteratorOptions
	opts.Prefix = idKey(id)
	it := txn.NewIterator(opts)
	defer it.Close()

	var match []byte
	for it.Rewind(); it.Valid(); it.Next() {
		if match != nil {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
		}
		if match, err = it.Item().ValueCopy(nil); err != nil {
			return nil, err
		}
	}
	if match == nil {
		return nil, ErrNotFound
	}
	return match, nil
}

// Prune deletes entries older than retentionDays and returns how many were
// removed. A non-positive retention keeps everything.
func (j *Journal) Prune(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := j.now().AddDate(0, 0, -retentionDays)

	var stale [][]byte
	var ids []string
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixHistory)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			ts, ok := keyTime(item.Key())
			if ok && !ts.Before(cutoff) {
				break
			}

			var entry Entry
			if err := item.Value(entry.decode); err == nil {
				ids = append(ids, entry.ID)
			}
			stale = append(stale, item.KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	wb := j.db.NewWriteBatch()
	defer wb.Cancel()

	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return 0, err
		}
	}
	for _, id := range ids {
		if err := wb.Delete(idKey(id)); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}

	logger.Info("pruned journal", "removed", len(stale), "retention_days", retentionDays)
	return len(stale), nil
}

// Clear deletes every entry.
func (j *Journal) Clear() error {
	return j.db.DropAll()
}
