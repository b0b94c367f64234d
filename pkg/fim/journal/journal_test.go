package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppingClock starts at start and advances by step on every call.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	t := start
	return func() time.Time {
		now := t
		t = t.Add(step)
		return now
	}
}

func openTest(t *testing.T, opts ...Option) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestRecordAndGet(t *testing.T) {
	j := openTest(t)

	entry, err := j.Record(OpInit, "baseline.json", []string{"/etc/hosts"}, Summary{Files: 1, Added: 1})
	require.NoError(t, err)

	_, err = uuid.Parse(entry.ID)
	require.NoError(t, err, "id should be a uuid")

	got, err := j.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, OpInit, got.Operation)
	assert.Equal(t, "baseline.json", got.Baseline)
	assert.Equal(t, []string{"/etc/hosts"}, got.Paths)
	assert.Equal(t, Summary{Files: 1, Added: 1}, got.Summary)
	assert.True(t, entry.Timestamp.Equal(got.Timestamp))
}

func TestRecordNilPaths(t *testing.T) {
	j := openTest(t)

	entry, err := j.Record(OpUpdate, "", nil, Summary{})
	require.NoError(t, err)

	got, err := j.Get(entry.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Paths)
	assert.Empty(t, got.Paths)
}

func TestGetNotFound(t *testing.T) {
	j := openTest(t)

	_, err := j.Get(uuid.NewString())
	require.ErrorIs(t, err, ErrNotFound)

	_, err = j.Get("")
	require.Error(t, err)
}

func TestListNewestFirst(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	j := openTest(t, WithClock(steppingClock(start, time.Minute)))

	ops := []Operation{OpInit, OpAdd, OpCheck, OpUpdate}
	for _, op := range ops {
		_, err := j.Record(op, "", nil, Summary{})
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		limit int
		want  []Operation
	}{
		{"all", 0, []Operation{OpUpdate, OpCheck, OpAdd, OpInit}},
		{"negative means all", -1, []Operation{OpUpdate, OpCheck, OpAdd, OpInit}},
		{"limited", 2, []Operation{OpUpdate, OpCheck}},
		{"limit above count", 10, []Operation{OpUpdate, OpCheck, OpAdd, OpInit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := j.List(tt.limit)
			require.NoError(t, err)

			got := make([]Operation, 0, len(entries))
			for _, e := range entries {
				got = append(got, e.Operation)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListEmpty(t *testing.T) {
	j := openTest(t)

	entries, err := j.List(0)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestPrune(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := steppingClock(start, 24*time.Hour)
	j := openTest(t, WithClock(clock))

	var ids []string
	for i := 0; i < 5; i++ {
		e, err := j.Record(OpCheck, "", nil, Summary{})
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}

	// Next clock reading is Jan 6; a 2-day retention keeps Jan 4 and Jan 5.
	removed, err := j.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	entries, err := j.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ids[4], entries[0].ID)
	assert.Equal(t, ids[3], entries[1].ID)

	_, err = j.Get(ids[0])
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPruneNonPositiveKeepsAll(t *testing.T) {
	j := openTest(t)
	_, err := j.Record(OpInit, "", nil, Summary{})
	require.NoError(t, err)

	removed, err := j.Prune(0)
	require.NoError(t, err)
	assert.Zero(t, removed)

	entries, err := j.List(0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestClear(t *testing.T) {
	j := openTest(t)
	e, err := j.Record(OpInit, "", nil, Summary{})
	require.NoError(t, err)

	require.NoError(t, j.Clear())

	entries, err := j.List(0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = j.Get(e.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReopenKeepsHistory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "journal")

	j, err := Open(dir)
	require.NoError(t, err)
	e, err := j.Record(OpAdd, "", []string{"/a"}, Summary{Files: 1, Added: 1})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(dir)
	require.NoError(t, err)
	defer j.Close()

	got, err := j.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a"}, got.Paths)
}

func TestHistoryKeyOrdering(t *testing.T) {
	id := uuid.New()
	early := historyKey(time.Unix(0, 1000), id)
	late := historyKey(time.Unix(0, 2000), id)
	assert.Less(t, string(early), string(late))

	ts, ok := keyTime(late)
	require.True(t, ok)
	assert.Equal(t, int64(2000), ts.UnixNano())

	_, ok = keyTime([]byte("h:"))
	assert.False(t, ok)
}

func TestGetByPrefix(t *testing.T) {
	j := openTest(t)

	e, err := j.Record(OpCheck, "", nil, Summary{OK: 3})
	require.NoError(t, err)

	got, err := j.Get(e.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)

	_, err = j.Get("zzzz")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetAmbiguousPrefix(t *testing.T) {
	j := openTest(t)

	// Two index keys sharing a prefix, written directly.
	err := j.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(idKey("abc-1"), []byte("h:x")); err != nil {
			return err
		}
		return txn.Set(idKey("abc-2"), []byte("h:y"))
	})
	require.NoError(t, err)

	_, err = j.Get("abc")
	require.ErrorIs(t, err, ErrAmbiguous)
}
