package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainFormatter_Format(t *testing.T) {
	formatter := &PlainFormatter{}
	var buf bytes.Buffer

	require.NoError(t, formatter.Format(&buf, driftResult()))
	out := buf.String()

	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "modified")
	assert.Contains(t, out, "/data/b.txt")
	assert.Contains(t, out, "missing")
	assert.Contains(t, out, "/data/c.txt")
	assert.Contains(t, out, "added")
	assert.Contains(t, out, "error")
	assert.Contains(t, out, "1 unchanged, 1 modified, 1 missing, 1 added, 1 errors")

	// No ANSI escape sequences in plain output.
	assert.NotContains(t, out, "\x1b[")
}

func TestPlainFormatter_Format_Empty(t *testing.T) {
	formatter := &PlainFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Manifest: "m.txt",
		Stats:    Stats{Duration: time.Second},
		Clean:    true,
	}
	require.NoError(t, formatter.Format(&buf, result))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// Header plus the summary line only.
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "0 unchanged, 0 modified, 0 missing, 0 added, 0 errors")
}
