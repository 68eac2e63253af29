package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
)

// PlainFormatter formats output as a simple tab-separated table.
// It produces plain text output suitable for scripting and piping.
// No colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if _, err := tw.Write([]byte("STATUS\tPATH\n")); err != nil {
		return err
	}

	rows := []struct {
		status string
		paths  []string
	}{
		{"modified", r.Diff.Modified},
		{"missing", r.Diff.Missing},
		{"added", r.Diff.Added},
		{"unchanged", r.Diff.Unchanged},
	}
	for _, row := range rows {
		for _, path := range row.paths {
			if _, err := tw.Write([]byte(row.status + "\t" + path + "\n")); err != nil {
				return err
			}
		}
	}
	for _, e := range r.Diff.Errors {
		if _, err := tw.Write([]byte("error\t" + e + "\n")); err != nil {
			return err
		}
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "%d unchanged, %d modified, %d missing, %d added, %d errors\n",
		len(r.Diff.Unchanged), len(r.Diff.Modified), len(r.Diff.Missing),
		len(r.Diff.Added), len(r.Diff.Errors))
	return nil
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
