// Package store defines the vector store contract of spec §4.4: the
// only polymorphic surface in the system (spec §9 "the vector store
// adapter is the only polymorphic surface"). A concrete backend lives
// in internal/store/chromemstore.
package store

import (
	"context"

	"github.com/open-rag/reporag/internal/chunk"
)

// Filter is an exact-match predicate over the indexed payload keys of
// spec §3 ("file_path, section, language, content_type, is_deleted").
// A key is filtered on only when its ...Set flag is true; the value field
// alone has no effect, so an explicitly empty section is matched with
// Section "" and SectionSet true.
type Filter struct {
	FilePath    string
	FilePathSet bool

	Section    string
	SectionSet bool

	Language    string
	LanguageSet bool

	ContentType    chunk.ContentType
	ContentTypeSet bool

	// IsDeleted, when IsDeletedSet, overrides the default is_deleted=false
	// every search path (VectorSearch, LexicalSearch) applies per
	// invariant I3. Scroll applies no such default.
	IsDeleted    bool
	IsDeletedSet bool

	// IDs restricts the match to an explicit id set, when IDsSet. This is
	// not one of spec §3's indexed payload keys; it exists so the indexer
	// coordinator (C9) can soft-delete or recover the exact orphaned ids
	// its line-start diff identifies within one file, without requiring
	// every backend to support an arbitrary "id in (...)" query shape
	// beyond a plain set-membership check.
	IDs    map[uint64]bool
	IDsSet bool
}

// Match reports whether c satisfies every set predicate in f.
func (f Filter) Match(c *chunk.Chunk) bool {
	if f.IDsSet && !f.IDs[c.ID] {
		return false
	}
	if f.FilePathSet && c.FilePath != f.FilePath {
		return false
	}
	if f.SectionSet && c.Section != f.Section {
		return false
	}
	if f.LanguageSet && c.Language != f.Language {
		return false
	}
	if f.ContentTypeSet && c.ContentType != f.ContentType {
		return false
	}
	if f.IsDeletedSet && c.IsDeleted != f.IsDeleted {
		return false
	}
	return true
}

// ScoredChunk pairs a chunk with a similarity or hybrid score.
type ScoredChunk struct {
	Chunk      chunk.Chunk
	Score      float64
	Collection string // provenance: which logical collection supplied it
}

// ScrollPage is one page of a paginated enumeration (spec §4.4 scroll).
type ScrollPage struct {
	Chunks []chunk.Chunk
	Cursor string // empty when there are no more pages
}

// Stats reports point counts split by is_deleted (spec §4.4 stats).
type Stats struct {
	Active  int
	Deleted int
}

// BatchError reports a failure for a single id within a batch operation,
// per spec §5 ("multi-id operations may partially succeed and must be
// reported with per-id error detail").
type BatchError struct {
	ID      uint64
	Message string
}

// BatchResult is the outcome of a batched write: every id that
// succeeded, and per-id errors for every id that didn't. Per spec §7,
// success is true only when Errors is empty.
type BatchResult struct {
	SucceededIDs []uint64
	Errors       []BatchError
}

// Success reports spec §7's all-or-nothing policy: success=true only
// when every id in the batch succeeded.
func (r BatchResult) Success() bool { return len(r.Errors) == 0 }

// Adapter is the capability set spec §4.4 and §9 describe: "a capability
// set (ensure_collection, upsert, search, scroll, soft_delete, recover,
// stats, get_points), typically implemented once per backend."
type Adapter interface {
	// EnsureCollection creates the collection if absent and every
	// indexed key if absent; idempotent; fails if the collection already
	// exists with a different dimension (DIMENSION_MISMATCH).
	EnsureCollection(ctx context.Context, name string, dimensions int) error

	// Upsert writes points in batches of at most 1000; same id overwrites.
	Upsert(ctx context.Context, points []chunk.Chunk) (BatchResult, error)

	// DeleteByIDs physically removes points; irreversible.
	DeleteByIDs(ctx context.Context, ids []uint64) (BatchResult, error)

	// SoftDelete sets is_deleted=true on every point matching filter.
	SoftDelete(ctx context.Context, filter Filter) (BatchResult, error)

	// Recover clears is_deleted on every point matching filter.
	Recover(ctx context.Context, filter Filter) (BatchResult, error)

	// GetPoints bulk-retrieves points by id. Missing ids are reported as
	// POINT_NOT_FOUND in the returned errors, not as a fatal error.
	GetPoints(ctx context.Context, ids []uint64, withVectors bool) ([]chunk.Chunk, []BatchError, error)

	// Scroll paginates through points matching filter in id-ascending
	// order (the contract's deterministic tie-break), starting after
	// cursor ("" for the first page).
	Scroll(ctx context.Context, filter Filter, cursor string, limit int) (ScrollPage, error)

	// VectorSearch returns the top k points by cosine similarity,
	// excluding is_deleted=true unless filter overrides it.
	VectorSearch(ctx context.Context, queryVector []float32, filter Filter, k int, withVectors bool) ([]ScoredChunk, error)

	// LexicalSearch returns the top k points by BM25 score against query,
	// subject to filter. Returns an empty slice (not an error) if the
	// backend has no lexical leg configured.
	LexicalSearch(ctx context.Context, query string, filter Filter, k int) ([]ScoredChunk, error)

	// Stats reports active/deleted point counts.
	Stats(ctx context.Context) (Stats, error)

	Close() error
}
