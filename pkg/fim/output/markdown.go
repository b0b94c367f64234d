package output

import (
	"bytes"
	"fmt"
	"strings"
)

// MarkdownFormatter formats output as GitHub-flavored Markdown.
type MarkdownFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *MarkdownFormatter) Format(w *bytes.Buffer, r *Result) error {
	switch {
	case r.Report != nil:
		rep := r.Report
		w.WriteString("## Integrity check\n\n")
		if r.Source != "" {
			fmt.Fprintf(w, "Baseline: `%s`\n\n", r.Source)
		}
		fmt.Fprintf(w, "**ok:** %d | **modified:** %d | **deleted:** %d\n\n",
			rep.OK, len(rep.Modified), len(rep.Deleted))

		if rep.Clean() {
			w.WriteString("All files intact.\n")
			return nil
		}

		w.WriteString("| STATUS | PATH | OLD | NEW |\n")
		w.WriteString("|--------|------|-----|-----|\n")
		for _, m := range rep.Modified {
			status := string(m.Status)
			if m.Unreadable {
				status += " (unreadable)"
			}
			fmt.Fprintf(w, "| %s | %s | `%s` | `%s` |\n",
				status, escapeMarkdownPipe(m.Path), m.OldPrefix, m.NewPrefix)
		}
		for _, d := range rep.Deleted {
			fmt.Fprintf(w, "| %s | %s | | |\n", d.Status, escapeMarkdownPipe(d.Path))
		}

	case r.Status != nil:
		s := r.Status
		w.WriteString("## Baseline status\n\n")
		if !s.Initialized {
			w.WriteString("No baseline exists.\n")
			return nil
		}
		fmt.Fprintf(w, "- **Created:** %s\n", timestamp(s.CreatedAt))
		fmt.Fprintf(w, "- **Updated:** %s\n", timestamp(s.UpdatedAt))
		fmt.Fprintf(w, "- **Files:** %d\n", s.Files)
		fmt.Fprintf(w, "- **Total size:** %s\n\n", s.TotalSizeHuman())
		for _, p := range s.Paths {
			fmt.Fprintf(w, "- `%s`\n", p)
		}
		if s.More > 0 {
			fmt.Fprintf(w, "- ... and %d more\n", s.More)
		}

	case r.Entry != nil:
		e := r.Entry
		fmt.Fprintf(w, "## %s `%s`\n\n", e.Operation, e.ID)
		fmt.Fprintf(w, "- **Time:** %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "- **Summary:** %s\n\n", summaryText(*e))
		for _, p := range e.Paths {
			fmt.Fprintf(w, "- `%s`\n", p)
		}

	default:
		w.WriteString("| ID | TIME | OPERATION | SUMMARY |\n")
		w.WriteString("|----|------|-----------|---------|\n")
		for _, e := range r.History {
			fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
				e.ID, e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Operation, escapeMarkdownPipe(summaryText(e)))
		}
	}
	return nil
}

// escapeMarkdownPipe escapes pipe characters in a string for Markdown tables.
func escapeMarkdownPipe(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func init() {
	Register("markdown", func() Formatter {
		return &MarkdownFormatter{}
	})
}

// Ensure MarkdownFormatter implements Formatter.
var _ Formatter = (*MarkdownFormatter)(nil)
