package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	digestA = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	digestB = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
)

func TestEncode(t *testing.T) {
	m := New()
	if err := m.Append(FileRecord{Path: "a.txt", Digest: digestA}); err != nil {
		t.Fatal(err)
	}
	if err := m.Append(FileRecord{Path: "dir/b.txt", Digest: digestB}); err != nil {
		t.Fatal(err)
	}

	got := m.EncodeString()
	want := digestA + "  a.txt\n" + digestB + "  dir/b.txt\n"
	if got != want {
		t.Errorf("EncodeString() = %q, want %q", got, want)
	}
}

func TestEncodeEmpty(t *testing.T) {
	if got := New().EncodeString(); got != "" {
		t.Errorf("empty manifest serialized to %q, want empty", got)
	}
}

// TestRoundTrip verifies decode(encode(m)) preserves every (path, digest)
// pair and the record order.
func TestRoundTrip(t *testing.T) {
	m := New()
	records := []FileRecord{
		{Path: "z/last.bin", Digest: digestA},
		{Path: "a space in path.txt", Digest: digestB},
		{Path: "./relative/style.go", Digest: digestA},
	}
	for _, rec := range records {
		if err := m.Append(rec); err != nil {
			t.Fatal(err)
		}
	}

	decoded, err := Decode(strings.NewReader(m.EncodeString()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Len() != len(records) {
		t.Fatalf("Len() = %d, want %d", decoded.Len(), len(records))
	}
	for i, rec := range decoded.Records() {
		if rec.Path != records[i].Path || rec.Digest != records[i].Digest {
			t.Errorf("record %d = %+v, want %+v", i, rec, records[i])
		}
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLen   int
		wantErr   error
		errSubstr string
	}{
		{
			name:    "single record",
			input:   digestA + "  a.txt\n",
			wantLen: 1,
		},
		{
			name:    "no trailing newline",
			input:   digestA + "  a.txt",
			wantLen: 1,
		},
		{
			name:    "blank lines skipped",
			input:   "\n" + digestA + "  a.txt\n\n\n" + digestB + "  b.txt\n",
			wantLen: 2,
		},
		{
			name:    "crlf line endings",
			input:   digestA + "  a.txt\r\n" + digestB + "  b.txt\r\n",
			wantLen: 2,
		},
		{
			name:    "path containing single spaces",
			input:   digestA + "  my file name.txt\n",
			wantLen: 1,
		},
		{
			name:    "separator wider than two spaces",
			input:   digestA + "    indented.txt\n",
			wantLen: 1,
		},
		{
			name:      "single-space separator",
			input:     digestA + " a.txt\n",
			wantErr:   ErrCorrupt,
			errSubstr: "line 1",
		},
		{
			name:      "no separator",
			input:     digestA + "\n",
			wantErr:   ErrCorrupt,
			errSubstr: "line 1",
		},
		{
			name:      "digest too short",
			input:     "abc123  a.txt\n",
			wantErr:   ErrCorrupt,
			errSubstr: "line 1",
		},
		{
			name:      "uppercase digest rejected",
			input:     strings.ToUpper(digestA) + "  a.txt\n",
			wantErr:   ErrCorrupt,
			errSubstr: "line 1",
		},
		{
			name:      "non-hex digest",
			input:     strings.Replace(digestA, "2", "z", 1) + "  a.txt\n",
			wantErr:   ErrCorrupt,
			errSubstr: "line 1",
		},
		{
			name:      "error names the offending line",
			input:     digestA + "  a.txt\n" + "garbage\n",
			wantErr:   ErrCorrupt,
			errSubstr: "line 2",
		},
		{
			name:      "duplicate path",
			input:     digestA + "  same.txt\n" + digestB + "  same.txt\n",
			wantErr:   ErrDuplicatePath,
			errSubstr: "line 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Decode(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decode error = %v, want %v", err, tt.wantErr)
				}
				if tt.errSubstr != "" && !strings.Contains(err.Error(), tt.errSubstr) {
					t.Errorf("error %q missing %q", err, tt.errSubstr)
				}
				if m != nil {
					t.Error("expected nil manifest on parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if m.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", m.Len(), tt.wantLen)
			}
		})
	}
}

func TestDecodeDuplicateDigestsAllowed(t *testing.T) {
	// Two identical files legitimately share a digest.
	input := digestA + "  a.txt\n" + digestA + "  copy-of-a.txt\n"
	m, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestAppendDuplicate(t *testing.T) {
	m := New()
	if err := m.Append(FileRecord{Path: "a.txt", Digest: digestA}); err != nil {
		t.Fatal(err)
	}

	err := m.Append(FileRecord{Path: "a.txt", Digest: digestB})
	if !errors.Is(err, ErrDuplicatePath) {
		t.Fatalf("error = %v, want ErrDuplicatePath", err)
	}

	var dup *DuplicatePathError
	if !errors.As(err, &dup) {
		t.Fatal("expected *DuplicatePathError")
	}
	if dup.Path != "a.txt" {
		t.Errorf("Path = %q, want a.txt", dup.Path)
	}
}

func TestGetExactMatch(t *testing.T) {
	m := New()
	if err := m.Append(FileRecord{Path: "./a.txt", Digest: digestA}); err != nil {
		t.Fatal(err)
	}

	if _, ok := m.Get("./a.txt"); !ok {
		t.Error("exact path not found")
	}
	// Paths are compared as strings; no cleaning of "." segments.
	if _, ok := m.Get("a.txt"); ok {
		t.Error("normalized variant unexpectedly matched")
	}
}

func TestWriteFileReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checksums.txt")

	m := New()
	if err := m.Append(FileRecord{Path: "a.txt", Digest: digestA}); err != nil {
		t.Fatal(err)
	}
	if err := m.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// No temp file left behind.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after rename")
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", got.Len())
	}
	rec, ok := got.Get("a.txt")
	if !ok || rec.Digest != digestA {
		t.Errorf("Get(a.txt) = %+v, %v", rec, ok)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Fatal("expected error for missing manifest")
	}
}
