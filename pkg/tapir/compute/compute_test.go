package compute

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	"github.com/jamesainslie/tapir/pkg/tapir/enumerate"
	"github.com/jamesainslie/tapir/pkg/tapir/hasher"
)

// buildTree writes the given name->content files under a fresh temp dir.
func buildTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestRun(t *testing.T) {
	root := buildTree(t, map[string]string{
		"b.txt":       "bravo",
		"a.txt":       "alpha",
		"sub/c.txt":   "charlie",
		"sub/d/e.txt": "echo",
	})

	res, err := Run(context.Background(), []string{root}, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.FilesHashed != 4 {
		t.Errorf("FilesHashed = %d, want 4", res.FilesHashed)
	}
	if res.Manifest.Len() != 4 {
		t.Fatalf("manifest has %d records, want 4", res.Manifest.Len())
	}

	// Records come out in lexicographic enumeration order.
	wantPaths := []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "b.txt"),
		filepath.Join(root, "sub/c.txt"),
		filepath.Join(root, "sub/d/e.txt"),
	}
	if got := res.Manifest.Paths(); !reflect.DeepEqual(got, wantPaths) {
		t.Errorf("paths = %v, want %v", got, wantPaths)
	}

	rec, ok := res.Manifest.Get(filepath.Join(root, "a.txt"))
	if !ok {
		t.Fatal("a.txt missing from manifest")
	}
	if want := hasher.Sum([]byte("alpha")); rec.Digest != want {
		t.Errorf("digest = %q, want %q", rec.Digest, want)
	}
	if rec.Size != 5 {
		t.Errorf("size = %d, want 5", rec.Size)
	}
}

// TestRunOrderIndependentOfWorkers verifies the serialized manifest is
// byte-identical across worker counts.
func TestRunOrderIndependentOfWorkers(t *testing.T) {
	files := make(map[string]string)
	for _, name := range []string{"q", "a", "m", "z", "b", "x/y", "x/a", "k/deep/file"} {
		files[name] = "content of " + name
	}
	root := buildTree(t, files)

	var baseline string
	for _, workers := range []int{1, 2, 8, runtime.NumCPU() * 2} {
		res, err := Run(context.Background(), []string{root}, Options{Workers: workers})
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		encoded := res.Manifest.EncodeString()
		if baseline == "" {
			baseline = encoded
			continue
		}
		if encoded != baseline {
			t.Errorf("workers=%d produced different manifest:\n%s\nbaseline:\n%s", workers, encoded, baseline)
		}
	}
}

func TestRunMissingInput(t *testing.T) {
	root := buildTree(t, map[string]string{"a.txt": "alpha"})
	missing := filepath.Join(root, "nope")

	_, err := Run(context.Background(), []string{root, missing}, Options{})
	if !errors.Is(err, ErrInputNotFound) {
		t.Fatalf("error = %v, want ErrInputNotFound", err)
	}
	if !errors.Is(err, enumerate.ErrNotFound) {
		t.Errorf("error = %v, want to wrap enumerate.ErrNotFound", err)
	}
}

// TestRunBatchError verifies one unreadable file does not abandon the
// rest of the batch.
func TestRunBatchError(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	root := buildTree(t, map[string]string{
		"good1.txt": "fine",
		"bad.txt":   "unreadable",
		"good2.txt": "also fine",
	})
	badPath := filepath.Join(root, "bad.txt")
	if err := os.Chmod(badPath, 0o000); err != nil {
		t.Fatal(err)
	}

	res, err := Run(context.Background(), []string{root}, Options{})

	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("error = %v, want *BatchError", err)
	}
	if len(batchErr.Errors) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(batchErr.Errors), batchErr.Errors)
	}
	if batchErr.Errors[0].Path != badPath {
		t.Errorf("failed path = %q, want %q", batchErr.Errors[0].Path, badPath)
	}

	// Result still carries the manifest of everything that succeeded.
	if res == nil || res.Manifest.Len() != 2 {
		t.Fatalf("expected partial manifest with 2 records, got %+v", res)
	}
	if res.FilesHashed != 2 {
		t.Errorf("FilesHashed = %d, want 2", res.FilesHashed)
	}
}

func TestRunCancelled(t *testing.T) {
	root := buildTree(t, map[string]string{"a.txt": "alpha"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, []string{root}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestRunEmptyDirectory(t *testing.T) {
	res, err := Run(context.Background(), []string{t.TempDir()}, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Manifest.Len() != 0 {
		t.Errorf("manifest has %d records, want 0", res.Manifest.Len())
	}
	if got := res.Manifest.EncodeString(); got != "" {
		t.Errorf("serialized = %q, want empty", got)
	}
}

func TestRunProgress(t *testing.T) {
	root := buildTree(t, map[string]string{
		"a.txt": "alpha",
		"b.txt": "bravo",
	})

	var final Progress
	_, err := Run(context.Background(), []string{root}, Options{
		Workers: 1,
		OnProgress: func(p Progress) {
			final = p
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	// hashAll always issues a forced final report.
	if final.FilesHashed != 2 {
		t.Errorf("final FilesHashed = %d, want 2", final.FilesHashed)
	}
	if final.BytesHashed != 10 {
		t.Errorf("final BytesHashed = %d, want 10", final.BytesHashed)
	}
}
