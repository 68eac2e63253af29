// Package manifest defines the durable checksum manifest format: an
// ordered set of file records serialized one per line as
// "<64-hex-digest>  <path>", compatible with conventional checksum-file
// tooling such as sha256sum.
package manifest

// FileRecord is a single manifest entry mapping a path to the digest of
// its content. Path is the identity key and must be unique within a
// manifest. Records are immutable once created.
type FileRecord struct {
	// Path is the file path exactly as given at compute time. No
	// normalization of "." or ".." segments is applied; verify matches
	// paths by exact string comparison.
	Path string `json:"path" yaml:"path"`

	// Digest is the 64-character lowercase hex SHA-256 of the file content.
	Digest string `json:"digest" yaml:"digest"`

	// Size is the file size in bytes at compute time. It is informational
	// only and is not part of the serialized format.
	Size uint64 `json:"size,omitempty" yaml:"size,omitempty"`
}

// Manifest is an ordered sequence of FileRecords with unique paths.
// The compute pipeline creates manifests; the verify pipeline consumes
// them without mutation.
type Manifest struct {
	records []FileRecord
	index   map[string]int
}

// New creates an empty Manifest.
func New() *Manifest {
	return &Manifest{index: make(map[string]int)}
}

// Append adds a record to the manifest, preserving insertion order.
// It returns ErrDuplicatePath if a record with the same path exists.
func (m *Manifest) Append(rec FileRecord) error {
	if _, ok := m.index[rec.Path]; ok {
		return &DuplicatePathError{Path: rec.Path}
	}
	m.index[rec.Path] = len(m.records)
	m.records = append(m.records, rec)
	return nil
}

// Len returns the number of records.
func (m *Manifest) Len() int {
	return len(m.records)
}

// Records returns the records in insertion order. The returned slice is
// shared; callers must not modify it.
func (m *Manifest) Records() []FileRecord {
	return m.records
}

// Get returns the record for the given path, matched as an exact string.
func (m *Manifest) Get(path string) (FileRecord, bool) {
	i, ok := m.index[path]
	if !ok {
		return FileRecord{}, false
	}
	return m.records[i], true
}

// Paths returns all record paths in insertion order.
func (m *Manifest) Paths() []string {
	paths := make([]string, len(m.records))
	for i, rec := range m.records {
		paths[i] = rec.Path
	}
	return paths
}
