// Package chunk implements the document and code chunkers (C1, C2) and
// defines the Chunk type that flows through embedding, storage, and
// retrieval.
package chunk

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/open-rag/reporag/internal/chunkid"
)

// ContentType enumerates the shapes of content a chunk can hold.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentList  ContentType = "list"
	ContentTable ContentType = "table"
	ContentCode  ContentType = "code"
)

// DocType enumerates the documentation categories derived from a file's
// top-level directory segment.
type DocType string

const (
	DocFlow           DocType = "flow"
	DocSDLC           DocType = "sdlc"
	DocPolicy         DocType = "policy"
	DocInfrastructure DocType = "infrastructure"
	DocOther          DocType = "other"
)

// CodeType enumerates the code declaration shapes a code chunk covers.
type CodeType string

const (
	CodeFunction CodeType = "function"
	CodeMethod   CodeType = "method"
	CodeClass    CodeType = "class"
	CodeModule   CodeType = "module"
)

// Chunk is the atomic indexed unit described in the data model: a span of
// text plus enough payload metadata to filter, cite, and incrementally
// reconcile it against a source file.
type Chunk struct {
	ID      uint64
	Vector  []float32
	Content string

	FilePath    string
	LineStart   int
	LineEnd     int
	ContentType ContentType
	Language    string
	Section     string
	DocType     DocType
	CodeType    CodeType
	Name        string
	ClassName   string
	Imports     []string
	ListLength  int
	IsComplete  bool
	IsDeleted   bool
	ContentHash string
}

// AssignID derives and sets c.ID from its (file path, line start,
// content type) key, the system's sole duplicate-prevention mechanism.
func (c *Chunk) AssignID() {
	c.ID = chunkid.New(c.FilePath, c.LineStart, string(c.ContentType))
}

// HashContent computes and sets c.ContentHash from c.Content, used by the
// indexer coordinator to detect unchanged chunks without reading vectors.
func (c *Chunk) HashContent() {
	c.ContentHash = ContentHash(c.Content)
}

// ContentHash digests content for change detection. SHA-256 (not the
// embedding vector itself) so two chunks can be compared for equality
// without ever loading their vectors.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
