// Package hasher computes streaming SHA-256 digests of file contents.
// Digests depend only on the byte stream, never on the file's name, path,
// or metadata, so identical content always yields identical digests.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// DefaultChunkSize is the read buffer size used when none is configured.
// Content is streamed through the hash in chunks of this size, so memory
// use is bounded regardless of file size.
const DefaultChunkSize = 1024 * 1024

// DigestLen is the length of a rendered digest in hex characters.
const DigestLen = sha256.Size * 2

// Hasher computes hex-encoded SHA-256 digests with a fixed chunk size.
// The zero value is not usable; construct with New.
type Hasher struct {
	chunkSize int
}

// New creates a Hasher with the given chunk size.
// A chunk size <= 0 falls back to DefaultChunkSize.
func New(chunkSize int) *Hasher {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Hasher{chunkSize: chunkSize}
}

// File hashes the file at path and returns the 64-character lowercase hex
// digest along with the number of bytes read. Any open or read failure
// aborts the hash and is returned wrapped with the file's path; a partial
// read never produces a digest.
func (h *Hasher) File(path string) (string, uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	digest, n, err := h.Reader(f)
	if err != nil {
		return "", 0, fmt.Errorf("hash %s: %w", path, err)
	}
	return digest, n, nil
}

// Reader hashes everything readable from r and returns the hex digest and
// the byte count consumed.
func (h *Hasher) Reader(r io.Reader) (string, uint64, error) {
	hash := sha256.New()
	buf := make([]byte, h.chunkSize)
	n, err := io.CopyBuffer(hash, r, buf)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(hash.Sum(nil)), uint64(n), nil
}

// Sum hashes an in-memory byte slice. Convenience for callers that already
// hold the content, such as tests and manifest self-checks.
func Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
