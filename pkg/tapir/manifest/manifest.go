package manifest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// Separator is the field separator between digest and path in the
// serialized form. Two spaces, matching the sha256sum text format.
const Separator = "  "

// ErrCorrupt indicates a manifest that cannot be parsed: a malformed
// line, a bad digest, or a missing separator. It is fatal; no partial
// manifest is returned.
var ErrCorrupt = errors.New("manifest corrupt")

// ErrDuplicatePath indicates two records with the same path. Fatal during
// parse, since verify results would be ambiguous.
var ErrDuplicatePath = errors.New("duplicate path in manifest")

// DuplicatePathError reports the offending path, and the line number when
// raised during decode.
type DuplicatePathError struct {
	Path string
	Line int
}

// Error implements the error interface.
func (e *DuplicatePathError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v: %s", e.Line, ErrDuplicatePath, e.Path)
	}
	return fmt.Sprintf("%v: %s", ErrDuplicatePath, e.Path)
}

// Unwrap lets errors.Is match ErrDuplicatePath.
func (e *DuplicatePathError) Unwrap() error {
	return ErrDuplicatePath
}

// digestPattern matches a 256-bit digest rendered as lowercase hex.
var digestPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// separatorPattern matches the first run of two-or-more spaces on a line.
var separatorPattern = regexp.MustCompile(` {2,}`)

// Encode writes the manifest in its canonical serialized form: one record
// per line, digest then path separated by two spaces, newline terminated.
// No header or trailing metadata is written.
func (m *Manifest) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, rec := range m.records {
		if _, err := bw.WriteString(rec.Digest + Separator + rec.Path + "\n"); err != nil {
			return fmt.Errorf("encoding manifest: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return nil
}

// EncodeString returns the serialized manifest as a string.
func (m *Manifest) EncodeString() string {
	var buf bytes.Buffer
	// bytes.Buffer writes cannot fail.
	_ = m.Encode(&buf)
	return buf.String()
}

// WriteFile writes the manifest to path atomically using a temp file and
// rename, so a crash never leaves a half-written manifest behind.
func (m *Manifest) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming manifest: %w", err)
	}

	return nil
}

// Decode parses a serialized manifest. Each non-blank line is split on the
// first run of two-or-more spaces into (digest, path). A line that does
// not match this shape fails with ErrCorrupt naming the line number, and a
// repeated path fails with ErrDuplicatePath; both are fatal and yield no
// partial manifest.
func Decode(r io.Reader) (*Manifest, error) {
	m := New()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec, err := parseLine(line, lineNo)
		if err != nil {
			return nil, err
		}

		if err := m.Append(rec); err != nil {
			var dup *DuplicatePathError
			if errors.As(err, &dup) {
				dup.Line = lineNo
				return nil, dup
			}
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	return m, nil
}

// parseLine splits one manifest line into a FileRecord.
func parseLine(line string, lineNo int) (FileRecord, error) {
	loc := separatorPattern.FindStringIndex(line)
	if loc == nil {
		return FileRecord{}, fmt.Errorf("line %d: missing two-space separator: %w", lineNo, ErrCorrupt)
	}

	digest := line[:loc[0]]
	path := line[loc[1]:]

	if !digestPattern.MatchString(digest) {
		return FileRecord{}, fmt.Errorf("line %d: malformed digest %q: %w", lineNo, digest, ErrCorrupt)
	}
	if path == "" {
		return FileRecord{}, fmt.Errorf("line %d: empty path: %w", lineNo, ErrCorrupt)
	}

	return FileRecord{Path: path, Digest: digest}, nil
}

// ReadFile reads and decodes the manifest at path.
func ReadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()

	return Decode(f)
}
