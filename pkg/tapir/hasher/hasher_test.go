package hasher

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Known digest of the ASCII string "hello".
const helloDigest = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileKnownVector(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hello.txt", []byte("hello"))

	digest, n, err := New(0).File(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if digest != helloDigest {
		t.Errorf("digest = %q, want %q", digest, helloDigest)
	}
	if n != 5 {
		t.Errorf("bytes = %d, want 5", n)
	}
}

// TestFileContentOnly verifies that the digest depends only on content,
// never on the file's name or location.
func TestFileContentOnly(t *testing.T) {
	dir := t.TempDir()
	content := []byte("same bytes everywhere")

	a := writeFile(t, dir, "a.txt", content)
	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	b := writeFile(t, sub, "completely-different-name.bin", content)

	h := New(0)
	da, _, err := h.File(a)
	if err != nil {
		t.Fatal(err)
	}
	db, _, err := h.File(b)
	if err != nil {
		t.Fatal(err)
	}
	if da != db {
		t.Errorf("digests differ for identical content: %q vs %q", da, db)
	}
}

// TestFileChunkSizes verifies the digest is independent of the chunk size
// used to stream the content, including sizes smaller than the file.
func TestFileChunkSizes(t *testing.T) {
	content := bytes.Repeat([]byte("0123456789abcdef"), 1000)
	path := writeFile(t, t.TempDir(), "big.bin", content)
	want := Sum(content)

	for _, chunk := range []int{1, 7, 512, 4096, DefaultChunkSize} {
		digest, n, err := New(chunk).File(path)
		if err != nil {
			t.Fatalf("chunk=%d: %v", chunk, err)
		}
		if digest != want {
			t.Errorf("chunk=%d: digest = %q, want %q", chunk, digest, want)
		}
		if n != uint64(len(content)) {
			t.Errorf("chunk=%d: bytes = %d, want %d", chunk, n, len(content))
		}
	}
}

func TestFileEmpty(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty", nil)

	digest, n, err := New(0).File(path)
	if err != nil {
		t.Fatal(err)
	}
	// SHA-256 of the empty string.
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if digest != want {
		t.Errorf("digest = %q, want %q", digest, want)
	}
	if n != 0 {
		t.Errorf("bytes = %d, want 0", n)
	}
}

func TestFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist")

	digest, _, err := New(0).File(path)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v, want fs.ErrNotExist", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q does not mention the path", err)
	}
	if digest != "" {
		t.Errorf("digest = %q, want empty on error", digest)
	}
}

func TestReader(t *testing.T) {
	digest, n, err := New(0).Reader(strings.NewReader("hello"))
	if err != nil {
		t.Fatal(err)
	}
	if digest != helloDigest {
		t.Errorf("digest = %q, want %q", digest, helloDigest)
	}
	if n != 5 {
		t.Errorf("bytes = %d, want 5", n)
	}
}

func TestSum(t *testing.T) {
	if got := Sum([]byte("hello")); got != helloDigest {
		t.Errorf("Sum = %q, want %q", got, helloDigest)
	}
	if got := len(Sum(nil)); got != DigestLen {
		t.Errorf("digest length = %d, want %d", got, DigestLen)
	}
}
