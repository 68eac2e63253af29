// Package config provides configuration management for the tapir checksum
// tool.
package config

// Default configuration values for tapir.
const (
	// DefaultWorkers is the hashing worker pool size. 0 means one worker
	// per CPU core.
	DefaultWorkers = 0

	// DefaultChunkSize is the hasher read buffer size.
	DefaultChunkSize = "1MiB"

	// DefaultOutputFormat is the verify report format when none is given.
	DefaultOutputFormat = "pretty"

	// DefaultLogLevel is the logging level when none is configured.
	DefaultLogLevel = "info"
)

// DefaultExclusions contains glob patterns excluded from enumeration by
// default. Empty: a checksum tool should hash exactly what it is pointed
// at unless told otherwise.
var DefaultExclusions = []string{}
