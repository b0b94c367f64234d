package output

import (
	"bytes"
)

// PathsFormatter writes one path per line: the changed paths of a check
// report, or the listed paths of a status. Suitable for piping to other tools.
type PathsFormatter struct {
	// Sep terminates each path.
	Sep byte
}

// Format writes the formatted output to the buffer.
func (f *PathsFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, p := range collectPaths(r) {
		w.WriteString(p)
		w.WriteByte(f.Sep)
	}
	return nil
}

func collectPaths(r *Result) []string {
	switch {
	case r.Report != nil:
		paths := make([]string, 0, len(r.Report.Modified)+len(r.Report.Deleted))
		for _, m := range r.Report.Modified {
			paths = append(paths, m.Path)
		}
		for _, d := range r.Report.Deleted {
			paths = append(paths, d.Path)
		}
		return paths
	case r.Status != nil:
		return r.Status.Paths
	case r.Entry != nil:
		return r.Entry.Paths
	}
	return nil
}

func init() {
	Register("paths", func() Formatter {
		return &PathsFormatter{Sep: '\n'}
	})
	// null separates paths with NUL bytes for xargs -0.
	Register("null", func() Formatter {
		return &PathsFormatter{Sep: 0}
	})
}

// Ensure PathsFormatter implements Formatter.
var _ Formatter = (*PathsFormatter)(nil)
