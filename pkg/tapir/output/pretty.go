package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")

	w.WriteString(f.formatSection("Modified", r.Diff.Modified, WarningStyle))
	w.WriteString(f.formatSection("Missing", r.Diff.Missing, DangerStyle))
	w.WriteString(f.formatSection("Added", r.Diff.Added, AddedStyle))

	w.WriteString(f.formatSummary(r))

	if len(r.Diff.Errors) > 0 {
		w.WriteString("\n")
		w.WriteString(f.formatErrors(r.Diff.Errors))
		w.WriteString("\n")
	}

	return nil
}

// formatHeader builds the header box with run metadata.
func (f *PrettyFormatter) formatHeader(r *Result) string {
	var lines []string

	manifestLabel := LabelStyle.Render("Manifest:")
	manifestValue := ValueStyle.Render(r.Manifest)
	lines = append(lines, fmt.Sprintf("%s %s", manifestLabel, manifestValue))

	var infoParts []string
	checkedLabel := LabelStyle.Render("Checked:")
	checkedValue := ValueStyle.Render(fmt.Sprintf("%d records in %s",
		r.Stats.RecordsChecked, formatDuration(r.Stats.Duration)))
	infoParts = append(infoParts, fmt.Sprintf("%s %s", checkedLabel, checkedValue))

	if r.ScanRoot != "" {
		rootLabel := LabelStyle.Render("Scan root:")
		rootValue := MutedStyle.Render(r.ScanRoot)
		infoParts = append(infoParts, fmt.Sprintf("%s %s", rootLabel, rootValue))
	}
	lines = append(lines, strings.Join(infoParts, "  "))

	content := strings.Join(lines, "\n")
	return HeaderBox.Render(content)
}

// formatSection renders one drift category as a styled path list.
// Empty categories produce no output.
func (f *PrettyFormatter) formatSection(title string, paths []string, style lipgloss.Style) string {
	if len(paths) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(style.Bold(true).Render(fmt.Sprintf("%s (%d)", title, len(paths))))
	b.WriteString("\n")
	for _, path := range paths {
		b.WriteString("  ")
		b.WriteString(style.Render(path))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// formatSummary renders the counts line and the clean/drift banner.
func (f *PrettyFormatter) formatSummary(r *Result) string {
	counts := fmt.Sprintf("%s  %s  %s  %s",
		SuccessStyle.Render(fmt.Sprintf("%d unchanged", len(r.Diff.Unchanged))),
		WarningStyle.Render(fmt.Sprintf("%d modified", len(r.Diff.Modified))),
		DangerStyle.Render(fmt.Sprintf("%d missing", len(r.Diff.Missing))),
		AddedStyle.Render(fmt.Sprintf("%d added", len(r.Diff.Added))))

	banner := SuccessStyle.Bold(true).Render("All good - no drift detected.")
	if !r.Clean {
		banner = WarningStyle.Bold(true).Render("Drift detected.")
	}

	return counts + "\n" + banner + "\n"
}

// formatErrors renders operational errors in a bordered box.
func (f *PrettyFormatter) formatErrors(errs []string) string {
	var lines []string
	lines = append(lines, DangerStyle.Bold(true).Render(fmt.Sprintf("Errors (%d)", len(errs))))
	for _, e := range errs {
		lines = append(lines, DangerStyle.Render(e))
	}
	return ErrorBox.Render(strings.Join(lines, "\n"))
}

// formatDuration renders a duration with sensible precision for display.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.String()
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
