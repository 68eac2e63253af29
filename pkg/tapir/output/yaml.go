package output

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// yamlOutput represents the full YAML output structure.
type yamlOutput struct {
	Manifest string    `yaml:"manifest"`
	ScanRoot string    `yaml:"scan_root,omitempty"`
	Diff     Diff      `yaml:"diff"`
	Stats    yamlStats `yaml:"stats"`
	Clean    bool      `yaml:"clean"`
}

// yamlStats represents run statistics in YAML output.
type yamlStats struct {
	RecordsChecked int    `yaml:"records_checked"`
	Duration       string `yaml:"duration"`
}

// YAMLFormatter formats output as YAML.
// It produces the same structure as JSONFormatter but in YAML format.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	out := yamlOutput{
		Manifest: r.Manifest,
		ScanRoot: r.ScanRoot,
		Diff:     r.Diff,
		Stats: yamlStats{
			RecordsChecked: r.Stats.RecordsChecked,
			Duration:       r.Stats.Duration.String(),
		},
		Clean: r.Clean,
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(out); err != nil {
		return err
	}
	return encoder.Close()
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
