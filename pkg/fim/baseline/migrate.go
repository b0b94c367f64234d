package baseline

import (
	"fmt"
	"path/filepath"
)

// Migrate upgrades b in place to CurrentVersion.
func Migrate(b *Baseline) error {
	if b.Version > CurrentVersion {
		return fmt.Errorf("%w: %d (this fim supports up to %d)", ErrUnsupportedVersion, b.Version, CurrentVersion)
	}

	if b.Files == nil {
		b.Files = make(map[string]*FileRecord)
	}
	dropNullRecords(b)

	if b.Version == 0 {
		migrateV0(b)
	}
	b.Version = CurrentVersion
	return nil
}

// dropNullRecords removes entries persisted as null. Every reader of a
// Baseline assumes a non-nil FileRecord per key.
func dropNullRecords(b *Baseline) {
	for path, rec := range b.Files {
		if rec == nil {
			logger.Warn("dropping empty baseline record", "path", path)
			delete(b.Files, path)
		}
	}
}

// migrateV0 upgrades legacy baselines. Their keys may not be cleaned;
// entries that collide after cleaning are folded together, keeping the one
// first seen.
func migrateV0(b *Baseline) {
	logger.Info("migrating baseline", "from", 0, "to", CurrentVersion, "files", len(b.Files))

	files := make(map[string]*FileRecord, len(b.Files))
	for path, rec := range b.Files {
		key := filepath.Clean(path)
		if existing, ok := files[key]; ok && existing.FirstSeen.Before(rec.FirstSeen.Time) {
			continue
		}
		files[key] = rec
	}
	b.Files = files
}
