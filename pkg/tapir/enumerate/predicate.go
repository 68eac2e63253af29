package enumerate

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"time"

	"github.com/gobwas/glob"
)

// Predicate decides whether an enumerated file is included. Predicates
// compose by logical AND via And. A nil Predicate accepts everything.
type Predicate func(path string, info fs.FileInfo) bool

// And combines predicates; the result accepts a file only if every
// predicate does. Nil entries are skipped.
func And(preds ...Predicate) Predicate {
	return func(path string, info fs.FileInfo) bool {
		for _, p := range preds {
			if p != nil && !p(path, info) {
				return false
			}
		}
		return true
	}
}

// MatchName accepts files whose base name equals name exactly.
func MatchName(name string) Predicate {
	return func(path string, _ fs.FileInfo) bool {
		return filepath.Base(path) == name
	}
}

// MatchGlob accepts files whose base name matches the glob pattern.
func MatchGlob(pattern string) (Predicate, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
	}
	return func(path string, _ fs.FileInfo) bool {
		return g.Match(filepath.Base(path))
	}, nil
}

// MatchRegexp accepts files whose base name matches the regular expression.
func MatchRegexp(expr string) (Predicate, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid regexp %q: %w", expr, err)
	}
	return func(path string, _ fs.FileInfo) bool {
		return re.MatchString(filepath.Base(path))
	}, nil
}

// ExcludeGlobs rejects files whose full path matches any of the patterns,
// with '/' as the glob separator.
func ExcludeGlobs(patterns ...string) (Predicate, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return func(path string, _ fs.FileInfo) bool {
		for _, g := range globs {
			if g.Match(path) || g.Match(filepath.Base(path)) {
				return false
			}
		}
		return true
	}, nil
}

// MinSize accepts files of at least n bytes.
func MinSize(n int64) Predicate {
	return func(_ string, info fs.FileInfo) bool {
		return info.Size() >= n
	}
}

// MaxSize accepts files of at most n bytes.
func MaxSize(n int64) Predicate {
	return func(_ string, info fs.FileInfo) bool {
		return info.Size() <= n
	}
}

// ChangedWithin accepts files modified within the last d.
func ChangedWithin(d time.Duration) Predicate {
	cutoff := time.Now().Add(-d)
	return func(_ string, info fs.FileInfo) bool {
		return info.ModTime().After(cutoff)
	}
}
