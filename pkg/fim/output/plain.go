package output

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jamesainslie/fim/pkg/fim/journal"
	"github.com/jamesainslie/fim/pkg/fim/reconcile"
)

// PlainFormatter writes unstyled text suitable for logs and pipes. Check
// reports use the classic "[!] MODIFIED FILES:" layout.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	switch {
	case r.Report != nil:
		f.formatReport(w, r.Report)
	case r.Status != nil:
		f.formatStatus(w, r.Status)
	case r.Entry != nil:
		f.formatEntry(w, r.Entry)
	default:
		return f.formatHistory(w, r.History)
	}
	return nil
}

func (f *PlainFormatter) formatReport(w *bytes.Buffer, rep *reconcile.Report) {
	fmt.Fprintf(w, "[*] checking %d files...\n\n", rep.Checked)

	if len(rep.Modified) > 0 {
		w.WriteString("[!] MODIFIED FILES:\n")
		for _, m := range rep.Modified {
			fmt.Fprintf(w, "  %s\n", m.Path)
			fmt.Fprintf(w, "    old: %s\n", hashCell(m, m.OldPrefix))
			fmt.Fprintf(w, "    new: %s\n", hashCell(m, m.NewPrefix))
		}
		w.WriteString("\n")
	}

	if len(rep.Deleted) > 0 {
		w.WriteString("[!] DELETED FILES:\n")
		for _, d := range rep.Deleted {
			fmt.Fprintf(w, "  %s\n", d.Path)
		}
		w.WriteString("\n")
	}

	if rep.Clean() {
		w.WriteString("[ok] all files intact\n")
	}

	w.WriteString("\n--- summary ---\n")
	fmt.Fprintf(w, "ok: %d | modified: %d | deleted: %d\n", rep.OK, len(rep.Modified), len(rep.Deleted))
}

func (f *PlainFormatter) formatStatus(w *bytes.Buffer, s *Status) {
	if !s.Initialized {
		w.WriteString("[!] no baseline exists\n")
		return
	}

	fmt.Fprintf(w, "baseline created: %s\n", timestamp(s.CreatedAt))
	fmt.Fprintf(w, "last updated: %s\n", timestamp(s.UpdatedAt))
	fmt.Fprintf(w, "files monitored: %d\n", s.Files)
	fmt.Fprintf(w, "total size: %s\n", s.TotalSizeHuman())
	w.WriteString("\n")

	for _, p := range s.Paths {
		fmt.Fprintf(w, "  %s\n", p)
	}
	if s.More > 0 {
		fmt.Fprintf(w, "  ... and %d more\n", s.More)
	}
}

func (f *PlainFormatter) formatHistory(w *bytes.Buffer, entries []journal.Entry) error {
	if len(entries) == 0 {
		w.WriteString("no history\n")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tTIME\tOPERATION\tSUMMARY"); err != nil {
		return err
	}
	for _, e := range entries {
		_, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			e.ID, e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Operation, summaryText(e))
		if err != nil {
			return err
		}
	}
	return tw.Flush()
}

func (f *PlainFormatter) formatEntry(w *bytes.Buffer, e *journal.Entry) {
	fmt.Fprintf(w, "id: %s\n", e.ID)
	fmt.Fprintf(w, "time: %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "operation: %s\n", e.Operation)
	if e.Baseline != "" {
		fmt.Fprintf(w, "baseline: %s\n", e.Baseline)
	}
	fmt.Fprintf(w, "summary: %s\n", summaryText(*e))
	if len(e.Paths) > 0 {
		w.WriteString("\n")
		for _, p := range e.Paths {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
}

// summaryText renders the counts relevant to an entry's operation.
func summaryText(e journal.Entry) string {
	s := e.Summary
	var parts []string
	switch e.Operation {
	case journal.OpCheck:
		parts = append(parts,
			fmt.Sprintf("ok: %d", s.OK),
			fmt.Sprintf("modified: %d", s.Modified),
			fmt.Sprintf("deleted: %d", s.Deleted))
	case journal.OpRemove:
		parts = append(parts, fmt.Sprintf("removed: %d", s.Removed))
	case journal.OpUpdate:
		parts = append(parts, fmt.Sprintf("updated: %d", s.Updated))
	default:
		parts = append(parts, fmt.Sprintf("added: %d", s.Added))
	}
	if s.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("skipped: %d", s.Skipped))
	}
	parts = append(parts, fmt.Sprintf("files: %d", s.Files))
	return strings.Join(parts, " | ")
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
