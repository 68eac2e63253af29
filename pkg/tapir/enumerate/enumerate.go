// Package enumerate expands input paths into the deterministic set of
// regular files to hash. Directories are walked in parallel with fastwalk,
// then sorted lexicographically so two enumerations of an unchanged tree
// always produce the same ordered sequence.
package enumerate

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/tapir/pkg/tapir/types"
)

// ErrNotFound indicates that a requested path does not exist. Enumerate
// itself records absent inputs in Result.Missing and keeps going; callers
// that treat an absent path as fatal wrap this sentinel (compute for
// missing top-level inputs, verify for a missing scan root).
var ErrNotFound = errors.New("path not found")

// Options configures the enumerator behavior.
type Options struct {
	// Predicate filters enumerated files. Nil accepts every regular file.
	Predicate Predicate

	// Workers is the number of concurrent walk workers.
	// Zero lets fastwalk choose based on the number of CPUs.
	Workers int
}

// Result holds the outcome of an enumeration.
type Result struct {
	// Files is the deduplicated, lexicographically ordered sequence of
	// regular file paths.
	Files []string

	// Missing lists input paths that did not exist. The caller decides
	// whether this is fatal; compute treats any missing input as fatal.
	Missing []string

	// Errors collects non-fatal walk errors (unreadable directories and
	// the like) without aborting enumeration.
	Errors []*types.PathError
}

// Enumerator expands paths into regular files.
type Enumerator struct {
	opts Options
}

// New creates an Enumerator with the given options.
func New(opts Options) *Enumerator {
	return &Enumerator{opts: opts}
}

// Enumerate expands the ordered input paths into regular files. Each input
// is either a regular file or a directory to recurse; inputs that do not
// exist are recorded in Result.Missing and do not abort the remaining
// inputs. Symlinked files are followed at most once: files are
// deduplicated by canonicalized path, so link cycles and repeated links
// cannot produce duplicates or infinite recursion. Special files (sockets,
// devices, fifos) are excluded.
func (e *Enumerator) Enumerate(ctx context.Context, inputs []string) (*Result, error) {
	res := &Result{}
	seen := make(map[string]bool)

	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(input)
		if err != nil {
			if os.IsNotExist(err) {
				res.Missing = append(res.Missing, input)
				continue
			}
			res.Errors = append(res.Errors, &types.PathError{Path: input, Err: err})
			continue
		}

		if info.IsDir() {
			files, err := e.walkDir(ctx, input, res)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				e.add(res, seen, f, nil)
			}
			continue
		}

		if info.Mode().IsRegular() {
			e.add(res, seen, input, info)
		}
	}

	return res, nil
}

// walkDir recurses one directory and returns its regular files in
// lexicographic order. fastwalk visits entries concurrently in an
// unspecified order; sorting afterwards restores determinism.
func (e *Enumerator) walkDir(ctx context.Context, root string, res *Result) ([]string, error) {
	conf := fastwalk.Config{
		// Follow symlinked directories; fastwalk skips ones it has
		// already visited, which breaks link cycles.
		Follow:     true,
		NumWorkers: e.opts.Workers,
	}

	var (
		mu    sync.Mutex
		files []string
	)

	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			mu.Lock()
			res.Errors = append(res.Errors, &types.PathError{Path: path, Err: err})
			mu.Unlock()
			return nil
		}

		typ := d.Type()
		if typ&fs.ModeSymlink != 0 {
			// A link to a regular file counts as that file. Broken links
			// are skipped; the canonical dedup in add keeps repeated links
			// from producing duplicate records.
			info, serr := os.Stat(path)
			if serr != nil || !info.Mode().IsRegular() {
				return nil
			}
		} else if !typ.IsRegular() {
			return nil
		}

		mu.Lock()
		files = append(files, path)
		mu.Unlock()
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &types.PathError{Path: root, Err: err}
	}

	sort.Strings(files)
	return files, nil
}

// add appends path to the result unless it was already enumerated or the
// predicate rejects it. info may be nil and is looked up lazily.
func (e *Enumerator) add(res *Result, seen map[string]bool, path string, info fs.FileInfo) {
	key := canonical(path)
	if seen[key] {
		return
	}
	seen[key] = true

	if e.opts.Predicate != nil {
		if info == nil {
			var err error
			info, err = os.Stat(path)
			if err != nil {
				res.Errors = append(res.Errors, &types.PathError{Path: path, Err: err})
				return
			}
		}
		if !e.opts.Predicate(path, info) {
			return
		}
	}

	res.Files = append(res.Files, path)
}

// canonical resolves symlinks so the same real file is never enumerated
// twice. Falls back to the lexically cleaned path if resolution fails.
func canonical(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return resolved
}
