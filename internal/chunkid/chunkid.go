// Package chunkid computes the deterministic chunk identifier described
// in the data model: the same (file path, line start, content type)
// always maps to the same id, which is the system's sole
// duplicate-prevention mechanism across re-indexing passes.
package chunkid

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// maxID is 2^63 - 1, the modulus that keeps ids within a signed 63-bit
// range so they fit losslessly in every downstream JSON/vector-store
// integer representation.
const maxID = (uint64(1) << 63) - 1

// New derives a chunk id from its normalized file path and starting
// line. contentType participates in the hash so that a doc chunk and a
// code chunk starting on the same line in the same file (the documented
// edge case for polyglot files) never collide.
func New(filePath string, lineStart int, contentType string) uint64 {
	key := normalize(filePath) + "\x00" + strconv.Itoa(lineStart) + "\x00" + contentType
	h := xxhash.Sum64String(key)
	return h % maxID
}

// normalize puts filePath into the canonical form the id is derived
// from: forward slashes, no leading "./", cleaned of ".." and repeated
// separators. Two different spellings of the same path (e.g.
// "./pkg/foo.go" and "pkg/foo.go") must hash identically.
func normalize(filePath string) string {
	cleaned := filepath.ToSlash(filepath.Clean(filePath))
	cleaned = strings.TrimPrefix(cleaned, "./")
	return cleaned
}
