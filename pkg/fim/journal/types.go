// Package journal keeps a history of fim operations in a Badger database.
//
// The journal is informational. The baseline file stays the source of truth,
// and callers treat journal failures as warnings.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Operation names the command that produced an entry.
type Operation string

const (
	OpInit   Operation = "init"
	OpAdd    Operation = "add"
	OpRemove Operation = "remove"
	OpUpdate Operation = "update"
	OpCheck  Operation = "check"
)

// Entry is one recorded operation.
type Entry struct {
	ID        string    `json:"id" yaml:"id"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Operation Operation `json:"operation" yaml:"operation"`
	Baseline  string    `json:"baseline,omitempty" yaml:"baseline,omitempty"`
	Paths     []string  `json:"paths" yaml:"paths"`
	Summary   Summary   `json:"summary" yaml:"summary"`
}

// Summary holds the counts reported by the operation. Fields that do not
// apply to an operation stay zero.
type Summary struct {
	Files    int `json:"files" yaml:"files"`
	Added    int `json:"added,omitempty" yaml:"added,omitempty"`
	Removed  int `json:"removed,omitempty" yaml:"removed,omitempty"`
	Updated  int `json:"updated,omitempty" yaml:"updated,omitempty"`
	Skipped  int `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	OK       int `json:"ok,omitempty" yaml:"ok,omitempty"`
	Modified int `json:"modified,omitempty" yaml:"modified,omitempty"`
	Deleted  int `json:"deleted,omitempty" yaml:"deleted,omitempty"`
}

// Key prefixes
const (
	prefixHistory = "h:" // h:<unix nanos, big endian><uuid bytes> -> Entry
	prefixID      = "i:" // i:<uuid string> -> history key
)

// historyKey orders entries chronologically under byte-wise iteration.
func historyKey(ts time.Time, id uuid.UUID) []byte {
	key := make([]byte, 0, len(prefixHistory)+8+len(id))
	key = append(key, prefixHistory...)
	key = binary.BigEndian.AppendUint64(key, uint64(ts.UnixNano()))
	return append(key, id[:]...)
}

// keyTime extracts the timestamp from a history key.
func keyTime(key []byte) (time.Time, bool) {
	if len(key) < len(prefixHistory)+8 {
		return time.Time{}, false
	}
	nanos := binary.BigEndian.Uint64(key[len(prefixHistory):])
	return time.Unix(0, int64(nanos)), true
}

func idKey(id string) []byte {
	return []byte(prefixID + id)
}

func (e *Entry) encode() ([]byte, error) {
	return json.Marshal(e)
}

func (e *Entry) decode(data []byte) error {
	return json.Unmarshal(data, e)
}
