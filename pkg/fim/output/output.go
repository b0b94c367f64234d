// Package output renders check reports, baseline status, and journal history
// in various formats (pretty, plain, json, yaml, markdown, paths).
//
// Formatters are looked up by name in a registry:
//
//	formatter, err := output.Get("plain")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, &output.Result{Report: report}); err != nil {
//	    return err
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/fim/pkg/fim/baseline"
	"github.com/jamesainslie/fim/pkg/fim/journal"
	"github.com/jamesainslie/fim/pkg/fim/reconcile"
)

// StatusPathLimit is how many tracked paths a status listing shows.
const StatusPathLimit = 10

// Status summarizes a baseline without touching the filesystem.
type Status struct {
	Initialized bool       `json:"initialized" yaml:"initialized"`
	CreatedAt   *time.Time `json:"created" yaml:"created"`
	UpdatedAt   *time.Time `json:"updated" yaml:"updated"`
	Files       int        `json:"files" yaml:"files"`
	TotalSize   int64      `json:"total_size" yaml:"total_size"`

	// Paths holds the first StatusPathLimit tracked paths in sorted order.
	Paths []string `json:"paths" yaml:"paths"`

	// More is the number of tracked paths not listed in Paths.
	More int `json:"more,omitempty" yaml:"more,omitempty"`
}

// NewStatus builds a Status view of b.
func NewStatus(b *baseline.Baseline) *Status {
	s := &Status{Paths: []string{}}
	if b.Empty() {
		return s
	}

	s.Initialized = true
	if b.CreatedAt != nil {
		t := b.CreatedAt.Time
		s.CreatedAt = &t
	}
	if b.UpdatedAt != nil {
		t := b.UpdatedAt.Time
		s.UpdatedAt = &t
	}
	s.Files = len(b.Files)
	s.TotalSize = b.TotalSize()

	paths := b.Paths()
	if len(paths) > StatusPathLimit {
		s.More = len(paths) - StatusPathLimit
		paths = paths[:StatusPathLimit]
	}
	s.Paths = paths
	return s
}

// TotalSizeHuman returns the tracked size in IEC units.
func (s *Status) TotalSizeHuman() string {
	return humanize.IBytes(uint64(s.TotalSize))
}

// Result is the data handed to a formatter. Exactly one of Report, Status,
// History, or Entry is normally set.
type Result struct {
	// Source is the baseline file the result was computed from.
	Source string

	Report  *reconcile.Report
	Status  *Status
	History []journal.Entry
	Entry   *journal.Entry
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory, replacing any with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}

// timestamp renders an optional time for text formats.
func timestamp(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format(time.RFC3339)
}

// hashCell renders the new-digest column of a modified entry.
func hashCell(e reconcile.DiffEntry, prefix string) string {
	if e.Unreadable && prefix == "" {
		return "unreadable"
	}
	return prefix + "..."
}
