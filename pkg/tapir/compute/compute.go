// Package compute orchestrates the checksum pipeline: enumerate inputs,
// hash each file across a bounded worker pool, and assemble the manifest
// in the enumerator's deterministic order regardless of hash completion
// order.
package compute

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jamesainslie/tapir/pkg/tapir/enumerate"
	"github.com/jamesainslie/tapir/pkg/tapir/hasher"
	"github.com/jamesainslie/tapir/pkg/tapir/logging"
	"github.com/jamesainslie/tapir/pkg/tapir/manifest"
	"github.com/jamesainslie/tapir/pkg/tapir/types"
)

// logger is the package-level logger for compute operations.
var logger = logging.Get("compute")

// ErrInputNotFound indicates a top-level input path that does not exist.
// Compute never silently skips a missing input. It wraps
// enumerate.ErrNotFound, so callers can match either sentinel.
var ErrInputNotFound = fmt.Errorf("input %w", enumerate.ErrNotFound)

// ErrVanished indicates a file that disappeared between enumeration and
// hashing. Reported per path; the rest of the batch still completes.
var ErrVanished = errors.New("file vanished before hashing")

// BatchError aggregates every per-file failure in a compute run. It is
// returned only after all remaining files have been hashed, so a single
// unreadable file never abandons the rest of the batch.
type BatchError struct {
	Errors []*types.PathError
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	paths := make([]string, len(e.Errors))
	for i, pe := range e.Errors {
		paths[i] = pe.Path
	}
	return fmt.Sprintf("%d file(s) failed: %s", len(e.Errors), strings.Join(paths, ", "))
}

// Progress is a snapshot of compute progress for callback reporting.
type Progress struct {
	FilesHashed int64
	BytesHashed int64
	FilesFailed int64
}

// Options configures a compute run.
type Options struct {
	// Workers bounds the hashing worker pool. <= 0 uses the CPU count.
	Workers int

	// ChunkSize is the hasher read buffer size. <= 0 uses the default.
	ChunkSize int

	// Predicate filters enumerated files. Nil accepts all regular files.
	Predicate enumerate.Predicate

	// OnProgress, if set, is called periodically while hashing.
	// It must be safe to call from multiple goroutines.
	OnProgress func(Progress)
}

// Result holds the outcome of a compute run.
type Result struct {
	// Manifest contains one record per successfully hashed file, in
	// enumeration order.
	Manifest *manifest.Manifest

	// FilesHashed and BytesHashed count successful work.
	FilesHashed int64
	BytesHashed int64

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration

	// Errors lists per-file failures (vanished files, read errors).
	Errors []*types.PathError

	// WalkErrors lists non-fatal enumeration errors.
	WalkErrors []*types.PathError
}

// Run enumerates inputs and hashes every file. A missing top-level input
// is fatal with ErrInputNotFound. Per-file failures are collected and
// returned as a *BatchError after the whole batch finishes; the returned
// Result still carries the manifest of everything that succeeded.
// Cancellation is cooperative: it is checked before each per-file task but
// does not interrupt a hash already in progress.
func Run(ctx context.Context, inputs []string, opts Options) (*Result, error) {
	start := time.Now()

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	enum := enumerate.New(enumerate.Options{Predicate: opts.Predicate})
	enumRes, err := enum.Enumerate(ctx, inputs)
	if err != nil {
		return nil, err
	}
	if len(enumRes.Missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, strings.Join(enumRes.Missing, ", "))
	}

	logger.Debug("enumeration complete", "files", len(enumRes.Files), "workers", workers)

	files := enumRes.Files
	records, hashErrs, err := hashAll(ctx, files, workers, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Manifest:   manifest.New(),
		Elapsed:    time.Since(start),
		WalkErrors: enumRes.Errors,
	}

	// Assemble in enumeration order; concurrency never leaks into the
	// record order.
	for i := range files {
		if hashErrs[i] != nil {
			res.Errors = append(res.Errors, hashErrs[i])
			continue
		}
		if err := res.Manifest.Append(records[i]); err != nil {
			return nil, err
		}
		res.FilesHashed++
		res.BytesHashed += int64(records[i].Size)
	}

	logger.Debug("compute complete",
		"hashed", res.FilesHashed,
		"bytes", res.BytesHashed,
		"failed", len(res.Errors),
		"elapsed", res.Elapsed)

	if len(res.Errors) > 0 {
		return res, &BatchError{Errors: res.Errors}
	}
	return res, nil
}

// hashAll fans the file list out over the worker pool. Each worker writes
// into its own slot keyed by the file's index in the enumeration order, so
// no lock is needed on the result collections.
func hashAll(ctx context.Context, files []string, workers int, opts Options) ([]manifest.FileRecord, []*types.PathError, error) {
	records := make([]manifest.FileRecord, len(files))
	hashErrs := make([]*types.PathError, len(files))

	h := hasher.New(opts.ChunkSize)

	var (
		filesHashed atomic.Int64
		bytesHashed atomic.Int64
		filesFailed atomic.Int64
		lastReport  atomic.Int64
	)

	report := func(force bool) {
		if opts.OnProgress == nil {
			return
		}
		// Throttle to every 50ms unless forced.
		now := time.Now().UnixMilli()
		last := lastReport.Load()
		if !force {
			if now-last < 50 || !lastReport.CompareAndSwap(last, now) {
				return
			}
		} else {
			lastReport.Store(now)
		}
		opts.OnProgress(Progress{
			FilesHashed: filesHashed.Load(),
			BytesHashed: bytesHashed.Load(),
			FilesFailed: filesFailed.Load(),
		})
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				// Cooperative cancellation between files.
				if ctx.Err() != nil {
					return
				}
				path := files[i]
				digest, size, err := h.File(path)
				if err != nil {
					hashErrs[i] = classify(path, err)
					filesFailed.Add(1)
					report(false)
					continue
				}
				records[i] = manifest.FileRecord{Path: path, Digest: digest, Size: size}
				filesHashed.Add(1)
				bytesHashed.Add(int64(size))
				report(false)
			}
		}()
	}

	for i := range files {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, nil, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	report(true)
	return records, hashErrs, nil
}

// classify tags a hash failure: a file that existed at enumeration time
// but is gone now vanished mid-run; anything else is a plain read error.
func classify(path string, err error) *types.PathError {
	if errors.Is(err, fs.ErrNotExist) {
		return &types.PathError{Path: path, Err: fmt.Errorf("%w: %v", ErrVanished, err)}
	}
	return &types.PathError{Path: path, Err: err}
}
