// Package verify checks a filesystem state against a previously captured
// manifest and reports drift as a four-way partition of paths: unchanged,
// modified, missing, and added.
package verify

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/jamesainslie/tapir/pkg/tapir/enumerate"
	"github.com/jamesainslie/tapir/pkg/tapir/hasher"
	"github.com/jamesainslie/tapir/pkg/tapir/logging"
	"github.com/jamesainslie/tapir/pkg/tapir/manifest"
	"github.com/jamesainslie/tapir/pkg/tapir/types"
)

// logger is the package-level logger for verify operations.
var logger = logging.Get("verify")

// Report is the result of verifying a manifest against the filesystem.
// The four path lists are disjoint and sorted lexicographically. Drift
// (modified or missing entries) is a data result, not a pipeline failure.
type Report struct {
	// Unchanged lists paths present on disk whose digest matches.
	Unchanged []string `json:"unchanged" yaml:"unchanged"`

	// Modified lists paths present on disk whose digest differs.
	Modified []string `json:"modified" yaml:"modified"`

	// Missing lists paths recorded in the manifest but absent on disk.
	Missing []string `json:"missing" yaml:"missing"`

	// Added lists paths found on disk but absent from the manifest.
	// Populated only when a scan root is configured; otherwise empty.
	Added []string `json:"added" yaml:"added"`

	// Errors lists operational failures per path (permission denied and
	// the like), distinct from content drift.
	Errors []*types.PathError `json:"errors,omitempty" yaml:"errors,omitempty"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Clean reports whether the filesystem matches the manifest exactly:
// no modified, missing, or added paths.
func (r *Report) Clean() bool {
	return len(r.Modified) == 0 && len(r.Missing) == 0 && len(r.Added) == 0
}

// Options configures a verify run.
type Options struct {
	// Workers bounds the hashing worker pool. <= 0 uses the CPU count.
	Workers int

	// ChunkSize is the hasher read buffer size. <= 0 uses the default.
	ChunkSize int

	// ScanRoot, when non-empty, is re-enumerated to detect files present
	// on disk but absent from the manifest. When empty the manifest's
	// path list is trusted exclusively and Added stays empty.
	ScanRoot string
}

// outcome classifies one manifest record after re-hashing.
type outcome int

const (
	outcomeUnchanged outcome = iota
	outcomeModified
	outcomeMissing
	outcomeError
)

// Run re-hashes every record in the manifest and builds the diff report.
// Paths are matched by exact string comparison; no normalization is
// applied between compute and verify. Per-path read errors are collected
// without aborting the remaining records. Only structural failures (a
// missing or unreadable scan root, cancellation) return an error.
func Run(ctx context.Context, m *manifest.Manifest, opts Options) (*Report, error) {
	start := time.Now()

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	records := m.Records()
	outcomes := make([]outcome, len(records))
	opErrs := make([]*types.PathError, len(records))

	h := hasher.New(opts.ChunkSize)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}
				outcomes[i], opErrs[i] = check(h, records[i])
			}
		}()
	}

	for i := range records {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{}
	for i, rec := range records {
		switch outcomes[i] {
		case outcomeUnchanged:
			report.Unchanged = append(report.Unchanged, rec.Path)
		case outcomeModified:
			report.Modified = append(report.Modified, rec.Path)
		case outcomeMissing:
			report.Missing = append(report.Missing, rec.Path)
		case outcomeError:
			report.Errors = append(report.Errors, opErrs[i])
		}
	}

	if opts.ScanRoot != "" {
		if err := detectAdded(ctx, m, opts.ScanRoot, report); err != nil {
			return nil, err
		}
	}

	sort.Strings(report.Unchanged)
	sort.Strings(report.Modified)
	sort.Strings(report.Missing)
	sort.Strings(report.Added)
	report.Elapsed = time.Since(start)

	logger.Debug("verify complete",
		"unchanged", len(report.Unchanged),
		"modified", len(report.Modified),
		"missing", len(report.Missing),
		"added", len(report.Added),
		"errors", len(report.Errors),
		"elapsed", report.Elapsed)

	return report, nil
}

// RunFile decodes the manifest at path and verifies it. A manifest that
// cannot be read or parsed is fatal; no partial verification is attempted.
func RunFile(ctx context.Context, path string, opts Options) (*Report, error) {
	m, err := manifest.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Run(ctx, m, opts)
}

// check re-hashes a single record. Three data outcomes are possible:
// missing, unchanged, and modified. Any read failure other than not-found
// is an operational error for that path only.
func check(h *hasher.Hasher, rec manifest.FileRecord) (outcome, *types.PathError) {
	if _, err := os.Stat(rec.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return outcomeMissing, nil
		}
		return outcomeError, &types.PathError{Path: rec.Path, Err: err}
	}

	digest, _, err := h.File(rec.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return outcomeMissing, nil
		}
		return outcomeError, &types.PathError{Path: rec.Path, Err: err}
	}

	if digest == rec.Digest {
		return outcomeUnchanged, nil
	}
	return outcomeModified, nil
}

// detectAdded enumerates the scan root and records every file absent from
// the manifest. Matching is exact-string, the same policy as the rest of
// the pipeline.
func detectAdded(ctx context.Context, m *manifest.Manifest, root string, report *Report) error {
	enum := enumerate.New(enumerate.Options{})
	enumRes, err := enum.Enumerate(ctx, []string{root})
	if err != nil {
		return err
	}
	if len(enumRes.Missing) > 0 {
		return fmt.Errorf("scan root %s: %w", root, enumerate.ErrNotFound)
	}

	report.Errors = append(report.Errors, enumRes.Errors...)

	for _, path := range enumRes.Files {
		if _, ok := m.Get(path); !ok {
			report.Added = append(report.Added, path)
		}
	}
	return nil
}
