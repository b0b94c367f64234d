package reconcile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/fim/pkg/fim/baseline"
	"github.com/jamesainslie/fim/pkg/fim/digest"
)

// track writes each name/content pair under dir and records it in a baseline.
func track(t *testing.T, dir string, files map[string]string) *baseline.Baseline {
	t.Helper()
	b := baseline.New()
	now := baseline.NewStamp(time.Now())
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		sum, ok := digest.File(path)
		require.True(t, ok)
		b.Files[path] = &baseline.FileRecord{Digest: sum, Size: int64(len(content)), FirstSeen: now}
	}
	return b
}

func TestCheck_EmptyBaseline(t *testing.T) {
	t.Parallel()
	_, err := Check(baseline.New(), Options{})
	require.ErrorIs(t, err, baseline.ErrUninitialized)
}

func TestCheck_UnchangedFilesAreOK(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	b := track(t, dir, map[string]string{"a.txt": "hello", "b.txt": "world"})

	report, err := Check(b, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, 2, report.OK)
	assert.Empty(t, report.Modified)
	assert.Empty(t, report.Deleted)
	assert.True(t, report.Clean())
}

func TestCheck_ModifiedFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	b := track(t, dir, map[string]string{"a.txt": "hello", "b.txt": "world"})
	a := filepath.Join(dir, "a.txt")
	oldDigest := b.Files[a].Digest

	require.NoError(t, os.WriteFile(a, []byte("HELLO"), 0o644))
	newDigest, ok := digest.File(a)
	require.True(t, ok)

	report, err := Check(b, Options{})
	require.NoError(t, err)
	require.Len(t, report.Modified, 1)
	assert.Equal(t, DiffEntry{
		Path:      a,
		Status:    StatusModified,
		OldPrefix: oldDigest[:16],
		NewPrefix: newDigest[:16],
	}, report.Modified[0])
	assert.Equal(t, 1, report.OK)
	assert.Empty(t, report.Deleted)
	assert.False(t, report.Clean())
}

func TestCheck_DeletedFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	b := track(t, dir, map[string]string{"a.txt": "hello", "b.txt": "world"})
	bPath := filepath.Join(dir, "b.txt")
	require.NoError(t, os.Remove(bPath))

	report, err := Check(b, Options{})
	require.NoError(t, err)
	assert.Equal(t, []DiffEntry{{Path: bPath, Status: StatusDeleted}}, report.Deleted)
	assert.Equal(t, 1, report.OK)
	assert.Empty(t, report.Modified)
}

func TestCheck_UnreadableFileIsModified(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	b := track(t, dir, map[string]string{"a.txt": "hello"})
	a := filepath.Join(dir, "a.txt")

	failing := func(path string) (string, bool) { return "", false }

	report, err := Check(b, Options{Digest: failing})
	require.NoError(t, err)
	require.Len(t, report.Modified, 1)
	got := report.Modified[0]
	assert.Equal(t, a, got.Path)
	assert.True(t, got.Unreadable)
	assert.Equal(t, b.Files[a].Digest[:16], got.OldPrefix)
	assert.Empty(t, got.NewPrefix)
	assert.Zero(t, report.OK)
}

func TestCheck_DoesNotMutateAndIsRepeatable(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	b := track(t, dir, map[string]string{"a.txt": "hello", "b.txt": "world", "c.txt": "!"})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("changed"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(dir, "c.txt")))

	before := make(map[string]baseline.FileRecord)
	for p, r := range b.Files {
		before[p] = *r
	}

	first, err := Check(b, Options{})
	require.NoError(t, err)
	second, err := Check(b, Options{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, b.Files, len(before))
	for p, r := range b.Files {
		assert.Equal(t, before[p], *r)
	}
}

func TestCheck_ListsAreSortedByPath(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	b := track(t, dir, map[string]string{"c": "3", "a": "1", "b": "2"})
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, os.Remove(filepath.Join(dir, name)))
	}

	report, err := Check(b, Options{})
	require.NoError(t, err)
	require.Len(t, report.Deleted, 3)
	assert.Equal(t, filepath.Join(dir, "a"), report.Deleted[0].Path)
	assert.Equal(t, filepath.Join(dir, "b"), report.Deleted[1].Path)
	assert.Equal(t, filepath.Join(dir, "c"), report.Deleted[2].Path)
}

func TestCheck_StoreWithNullRecord(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	tracked := track(t, dir, map[string]string{"a.txt": "hello"})

	b := baseline.New()
	for p, rec := range tracked.Files {
		b.Files[p] = rec
	}
	data, err := baseline.Encode(b)
	require.NoError(t, err)

	// Splice a null record into the persisted files map.
	hostname := filepath.Join(dir, "hostname")
	data = []byte(strings.Replace(string(data), `"files": {`, `"files": {`+"\n"+`    "`+hostname+`": null,`, 1))

	path := filepath.Join(dir, "baseline.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := baseline.NewStore(path).Load()
	require.NoError(t, err)

	var report *Report
	require.NotPanics(t, func() {
		report, err = Check(loaded, Options{})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 1, report.OK)
	assert.True(t, report.Clean())
}
