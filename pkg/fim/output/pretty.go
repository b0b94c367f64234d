package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/fim/pkg/fim/journal"
	"github.com/jamesainslie/fim/pkg/fim/reconcile"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	switch {
	case r.Report != nil:
		f.formatReport(w, r.Source, r.Report)
	case r.Status != nil:
		f.formatStatus(w, r.Source, r.Status)
	case r.Entry != nil:
		f.formatEntry(w, r.Entry)
	default:
		f.formatHistory(w, r.History)
	}
	return nil
}

func (f *PrettyFormatter) formatReport(w *bytes.Buffer, source string, rep *reconcile.Report) {
	w.WriteString(f.header(source, fmt.Sprintf("%s files checked", humanize.Comma(int64(rep.Checked)))))
	w.WriteString("\n")

	if len(rep.Modified) > 0 {
		w.WriteString(ErrorStyle.Bold(true).Render("Modified"))
		w.WriteString("\n")
		for _, m := range rep.Modified {
			fmt.Fprintf(w, "  %s\n", PathStyle.Render(m.Path))
			if m.Unreadable {
				fmt.Fprintf(w, "    %s\n", WarningStyle.Render("unreadable"))
				continue
			}
			fmt.Fprintf(w, "    %s %s %s %s\n",
				LabelStyle.Render("old"), HashStyle.Render(m.OldPrefix),
				LabelStyle.Render("new"), HashStyle.Render(m.NewPrefix))
		}
		w.WriteString("\n")
	}

	if len(rep.Deleted) > 0 {
		w.WriteString(ErrorStyle.Bold(true).Render("Deleted"))
		w.WriteString("\n")
		for _, d := range rep.Deleted {
			fmt.Fprintf(w, "  %s\n", PathStyle.Render(d.Path))
		}
		w.WriteString("\n")
	}

	if rep.Clean() {
		w.WriteString(SuccessStyle.Render("All files intact"))
		w.WriteString("\n")
	}

	box := SummaryBox
	if !rep.Clean() {
		box = box.BorderForeground(ColorDanger)
	}
	summary := strings.Join([]string{
		LabelStyle.Render("ok:") + " " + SuccessStyle.Render(fmt.Sprint(rep.OK)),
		LabelStyle.Render("modified:") + " " + countStyle(len(rep.Modified)).Render(fmt.Sprint(len(rep.Modified))),
		LabelStyle.Render("deleted:") + " " + countStyle(len(rep.Deleted)).Render(fmt.Sprint(len(rep.Deleted))),
	}, "  ")
	w.WriteString(box.Render(summary))
	w.WriteString("\n")
}

func (f *PrettyFormatter) formatStatus(w *bytes.Buffer, source string, s *Status) {
	if !s.Initialized {
		w.WriteString(WarningStyle.Render("No baseline exists. Run 'fim init <path>' to create one."))
		w.WriteString("\n")
		return
	}

	created := "never"
	if s.CreatedAt != nil {
		created = fmt.Sprintf("%s (%s)", timestamp(s.CreatedAt), humanize.Time(*s.CreatedAt))
	}
	updated := "never"
	if s.UpdatedAt != nil {
		updated = fmt.Sprintf("%s (%s)", timestamp(s.UpdatedAt), humanize.Time(*s.UpdatedAt))
	}

	lines := []string{
		LabelStyle.Render("Created:") + " " + ValueStyle.Render(created),
		LabelStyle.Render("Updated:") + " " + ValueStyle.Render(updated),
		LabelStyle.Render("Files:") + " " + ValueStyle.Render(humanize.Comma(int64(s.Files))) +
			"  " + LabelStyle.Render("Total:") + " " + HashStyle.Bold(true).Render(s.TotalSizeHuman()),
	}
	w.WriteString(f.header(source, strings.Join(lines, "\n")))
	w.WriteString("\n")

	for _, p := range s.Paths {
		fmt.Fprintf(w, "  %s\n", PathStyle.Render(p))
	}
	if s.More > 0 {
		fmt.Fprintf(w, "  %s\n", MutedStyle.Render(fmt.Sprintf("... and %d more", s.More)))
	}
}

func (f *PrettyFormatter) formatHistory(w *bytes.Buffer, entries []journal.Entry) {
	if len(entries) == 0 {
		w.WriteString(MutedStyle.Render("  No history recorded"))
		w.WriteString("\n")
		return
	}

	idWidth := 8
	fmt.Fprintf(w, "  %s  %s  %s  %s\n",
		TableHeaderStyle.Render(padRight("ID", idWidth)),
		TableHeaderStyle.Render(padRight("WHEN", 16)),
		TableHeaderStyle.Render(padRight("OPERATION", 9)),
		TableHeaderStyle.Render("SUMMARY"))

	for _, e := range entries {
		fmt.Fprintf(w, "  %s  %s  %s  %s\n",
			HashStyle.Render(padRight(shortID(e.ID, idWidth), idWidth)),
			MutedStyle.Render(padRight(humanize.Time(e.Timestamp), 16)),
			ValueStyle.Render(padRight(string(e.Operation), 9)),
			summaryText(e))
	}
}

func (f *PrettyFormatter) formatEntry(w *bytes.Buffer, e *journal.Entry) {
	lines := []string{
		LabelStyle.Render("ID:") + " " + HashStyle.Render(e.ID),
		LabelStyle.Render("When:") + " " + ValueStyle.Render(timestamp(&e.Timestamp)) +
			" " + MutedStyle.Render("("+humanize.Time(e.Timestamp)+")"),
		LabelStyle.Render("Operation:") + " " + ValueStyle.Render(string(e.Operation)),
		LabelStyle.Render("Summary:") + " " + ValueStyle.Render(summaryText(*e)),
	}
	w.WriteString(f.header(e.Baseline, strings.Join(lines, "\n")))
	w.WriteString("\n")

	for _, p := range e.Paths {
		fmt.Fprintf(w, "  %s\n", PathStyle.Render(p))
	}
}

// header builds the top box. The baseline line is omitted when source is empty.
func (f *PrettyFormatter) header(source, body string) string {
	var lines []string
	if source != "" {
		lines = append(lines, LabelStyle.Render("Baseline:")+" "+ValueStyle.Render(source))
	}
	lines = append(lines, body)
	return HeaderBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func countStyle(n int) lipgloss.Style {
	if n == 0 {
		return SuccessStyle
	}
	return ErrorStyle.Bold(true)
}

// padRight pads s with spaces on the right to width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func shortID(id string, n int) string {
	if len(id) <= n {
		return id
	}
	return id[:n]
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
