// Package output provides formatters for displaying tapir verify reports
// and compute summaries in various output formats (pretty, plain, json,
// yaml).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Diff holds the four-way path partition of a verify run plus any
// operational errors, pre-rendered as strings for display.
type Diff struct {
	// Unchanged lists paths whose digest matched.
	Unchanged []string `json:"unchanged" yaml:"unchanged"`

	// Modified lists paths whose digest differed.
	Modified []string `json:"modified" yaml:"modified"`

	// Missing lists manifest paths absent on disk.
	Missing []string `json:"missing" yaml:"missing"`

	// Added lists on-disk paths absent from the manifest.
	Added []string `json:"added" yaml:"added"`

	// Errors lists per-path operational failures as "path: error".
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Stats contains statistics about a verify operation.
type Stats struct {
	// RecordsChecked is the number of manifest records re-hashed.
	RecordsChecked int `json:"records_checked" yaml:"records_checked"`

	// Duration is the total time taken to complete the run.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Result contains the complete output data for formatting a verify run.
type Result struct {
	// Manifest is the manifest file path that was verified.
	Manifest string `json:"manifest" yaml:"manifest"`

	// ScanRoot is the root re-scanned for added files, if any.
	ScanRoot string `json:"scan_root,omitempty" yaml:"scan_root,omitempty"`

	// Diff is the drift report.
	Diff Diff `json:"diff" yaml:"diff"`

	// Stats contains run statistics.
	Stats Stats `json:"stats" yaml:"stats"`

	// Clean indicates the filesystem matched the manifest exactly.
	Clean bool `json:"clean" yaml:"clean"`
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
