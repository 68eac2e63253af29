package output

import (
	"bytes"
	"encoding/json"
)

// jsonOutput represents the full JSON output structure.
type jsonOutput struct {
	Manifest string    `json:"manifest"`
	ScanRoot string    `json:"scan_root,omitempty"`
	Diff     Diff      `json:"diff"`
	Stats    jsonStats `json:"stats"`
	Clean    bool      `json:"clean"`
}

// jsonStats represents run statistics in JSON output.
type jsonStats struct {
	RecordsChecked int    `json:"records_checked"`
	Duration       string `json:"duration"`
}

// JSONFormatter formats output as a single indented JSON object.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	out := jsonOutput{
		Manifest: r.Manifest,
		ScanRoot: r.ScanRoot,
		Diff:     r.Diff,
		Stats: jsonStats{
			RecordsChecked: r.Stats.RecordsChecked,
			Duration:       r.Stats.Duration.String(),
		},
		Clean: r.Clean,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
