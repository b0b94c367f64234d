package output

import (
	"bytes"
	"encoding/json"

	"github.com/jamesainslie/fim/pkg/fim/journal"
	"github.com/jamesainslie/fim/pkg/fim/reconcile"
)

// document is the shared structure for machine-readable output.
type document struct {
	Source  string          `json:"baseline,omitempty" yaml:"baseline,omitempty"`
	Check   *checkDocument  `json:"check,omitempty" yaml:"check,omitempty"`
	Status  *Status         `json:"status,omitempty" yaml:"status,omitempty"`
	History []journal.Entry `json:"history,omitempty" yaml:"history,omitempty"`
	Entry   *journal.Entry  `json:"entry,omitempty" yaml:"entry,omitempty"`
}

// checkDocument is a report plus its derived clean flag.
type checkDocument struct {
	Checked  int                   `json:"checked" yaml:"checked"`
	OK       int                   `json:"ok" yaml:"ok"`
	Modified []reconcile.DiffEntry `json:"modified" yaml:"modified"`
	Deleted  []reconcile.DiffEntry `json:"deleted" yaml:"deleted"`
	Clean    bool                  `json:"clean" yaml:"clean"`
}

func buildDocument(r *Result) document {
	doc := document{
		Source: r.Source,
		Status: r.Status,
		Entry:  r.Entry,
	}
	if r.Report != nil {
		doc.Check = &checkDocument{
			Checked:  r.Report.Checked,
			OK:       r.Report.OK,
			Modified: r.Report.Modified,
			Deleted:  r.Report.Deleted,
			Clean:    r.Report.Clean(),
		}
	}
	if r.Report == nil && r.Status == nil && r.Entry == nil {
		doc.History = r.History
	}
	return doc
}

// JSONFormatter formats output as a single indented JSON object.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(buildDocument(r))
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
