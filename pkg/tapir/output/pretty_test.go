package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyFormatter_Format_Drift(t *testing.T) {
	formatter := &PrettyFormatter{}
	var buf bytes.Buffer

	require.NoError(t, formatter.Format(&buf, driftResult()))
	out := buf.String()

	assert.Contains(t, out, "/data/checksums.txt")
	assert.Contains(t, out, "Modified (1)")
	assert.Contains(t, out, "Missing (1)")
	assert.Contains(t, out, "Added (1)")
	assert.Contains(t, out, "Errors (1)")
	assert.Contains(t, out, "Drift detected.")
	assert.NotContains(t, out, "All good")
}

func TestPrettyFormatter_Format_Clean(t *testing.T) {
	formatter := &PrettyFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Manifest: "/data/checksums.txt",
		Diff:     Diff{Unchanged: []string{"/data/a.txt"}},
		Stats:    Stats{RecordsChecked: 1, Duration: 42 * time.Millisecond},
		Clean:    true,
	}
	require.NoError(t, formatter.Format(&buf, result))
	out := buf.String()

	assert.Contains(t, out, "All good - no drift detected.")
	assert.Contains(t, out, "1 unchanged")
	// Empty categories render no section headers.
	assert.NotContains(t, out, "Modified (")
	assert.NotContains(t, out, "Missing (")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{name: "microseconds", d: 500 * time.Microsecond, want: "500µs"},
		{name: "milliseconds", d: 42*time.Millisecond + 300*time.Microsecond, want: "42ms"},
		{name: "seconds", d: 1512 * time.Millisecond, want: "1.51s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.d))
		})
	}
}
