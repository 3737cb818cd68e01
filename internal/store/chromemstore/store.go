// Package chromemstore implements the store.Adapter contract (spec
// §4.4) on top of philippgille/chromem-go for the vector leg and
// blevesearch/bleve for the lexical (BM25) leg — the default, in-process
// backend described in SPEC_FULL.md §3. Both libraries are already
// dependencies of the teacher (mvp-joe/project-cortex) and of
// kadirpekel-hector in the retrieval pack.
//
// chromem-go and bleve are secondary indices over content: the map of
// chunks by id, guarded by mu, is authoritative for payload fields and
// the sole source of truth for scroll, soft-delete, and filter
// evaluation, since neither library offers a no-query payload scan with
// the exact-match semantics spec §3 requires across five indexed keys.
package chromemstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog"

	"github.com/open-rag/reporag/internal/apperr"
	"github.com/open-rag/reporag/internal/chunk"
	"github.com/open-rag/reporag/internal/store"
)

const maxBatchSize = 1000

// bleveDoc is the document shape indexed for the lexical leg: content
// only. Payload fields live in the authoritative map, not in bleve.
type bleveDoc struct {
	Content string `json:"content"`
}

// Store is the chromem-go/bleve backed store.Adapter.
type Store struct {
	mu sync.RWMutex

	name       string
	dimensions int

	points map[uint64]*chunk.Chunk

	db         *chromem.DB
	collection *chromem.Collection
	bleveIdx   bleve.Index

	logger zerolog.Logger
}

// New creates an empty Store. Call EnsureCollection before use.
func New(logger zerolog.Logger) *Store {
	return &Store{
		points: make(map[uint64]*chunk.Chunk),
		db:     chromem.NewDB(),
		logger: logger,
	}
}

// identityEmbed satisfies chromem.EmbeddingFunc: every vector stored via
// this adapter is already precomputed by internal/embed, so chromem is
// never asked to embed text itself (mirrors kadirpekel-hector's
// ChromemProvider.identityEmbed).
func identityEmbed(_ context.Context, _ string) ([]float32, error) {
	return nil, fmt.Errorf("chromemstore: embedding function invoked but vectors are precomputed")
}

// EnsureCollection implements store.Adapter. Idempotent; the indexed key
// set (file_path, section, language, content_type, is_deleted) is fixed
// by this package's queries rather than declared up front, since neither
// chromem-go nor bleve requires schema declaration for exact-match
// lookups over known fields.
func (s *Store) EnsureCollection(ctx context.Context, name string, dimensions int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collection != nil {
		if s.dimensions != dimensions {
			return apperr.New(apperr.CodeDimensionMismatch,
				fmt.Sprintf("collection %q has dimension %d, requested %d", s.name, s.dimensions, dimensions)).
				WithDetail("collection", s.name).
				WithDetail("existing_dimensions", s.dimensions).
				WithDetail("requested_dimensions", dimensions)
		}
		return nil
	}

	col, err := s.db.GetOrCreateCollection(name, nil, identityEmbed)
	if err != nil {
		return apperr.Wrap(apperr.CodeVectorStoreUnavailable, "creating collection", err)
	}

	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return apperr.Wrap(apperr.CodeVectorStoreUnavailable, "creating lexical index", err)
	}

	s.name = name
	s.dimensions = dimensions
	s.collection = col
	s.bleveIdx = idx
	return nil
}

// Upsert implements store.Adapter. Same id overwrites (spec §4.4): this
// backend deletes any existing chromem document under the id before
// re-adding it, since chromem-go documents are add-only per id.
func (s *Store) Upsert(ctx context.Context, pts []chunk.Chunk) (store.BatchResult, error) {
	var result store.BatchResult

	for _, batch := range batches(pts, maxBatchSize) {
		s.mu.Lock()
		for i := range batch {
			c := batch[i]
			if err := s.upsertOne(ctx, &c); err != nil {
				result.Errors = append(result.Errors, store.BatchError{ID: c.ID, Message: err.Error()})
				continue
			}
			result.SucceededIDs = append(result.SucceededIDs, c.ID)
		}
		s.mu.Unlock()
	}

	return result, nil
}

// upsertOne must be called with mu held for writing.
func (s *Store) upsertOne(ctx context.Context, c *chunk.Chunk) error {
	idStr := strconv.FormatUint(c.ID, 10)

	if _, exists := s.points[c.ID]; exists {
		_ = s.collection.Delete(ctx, nil, nil, idStr)
	}

	stored := *c
	s.points[c.ID] = &stored

	doc := chromem.Document{
		ID:        idStr,
		Content:   c.Content,
		Embedding: c.Vector,
		Metadata:  metadataOf(c),
	}
	if err := s.collection.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("indexing vector for id %d: %w", c.ID, err)
	}

	if err := s.bleveIdx.Index(idStr, bleveDoc{Content: c.Content}); err != nil {
		return fmt.Errorf("indexing lexical content for id %d: %w", c.ID, err)
	}

	return nil
}

func metadataOf(c *chunk.Chunk) map[string]string {
	return map[string]string{
		"file_path":    c.FilePath,
		"section":      c.Section,
		"language":     c.Language,
		"content_type": string(c.ContentType),
		"is_deleted":   strconv.FormatBool(c.IsDeleted),
	}
}

// DeleteByIDs implements store.Adapter: physical, irreversible removal.
func (s *Store) DeleteByIDs(ctx context.Context, ids []uint64) (store.BatchResult, error) {
	var result store.BatchResult

	for _, batch := range batches(ids, maxBatchSize) {
		s.mu.Lock()
		for _, id := range batch {
			idStr := strconv.FormatUint(id, 10)
			if _, exists := s.points[id]; !exists {
				result.Errors = append(result.Errors, store.BatchError{ID: id, Message: string(apperr.CodePointNotFound)})
				continue
			}
			delete(s.points, id)
			_ = s.collection.Delete(ctx, nil, nil, idStr)
			_ = s.bleveIdx.Delete(idStr)
			result.SucceededIDs = append(result.SucceededIDs, id)
		}
		s.mu.Unlock()
	}

	return result, nil
}

// SoftDelete implements store.Adapter: flips is_deleted in place,
// preserving every other field (invariant I6).
func (s *Store) SoftDelete(ctx context.Context, filter store.Filter) (store.BatchResult, error) {
	return s.setDeleted(ctx, filter, true)
}

// Recover implements store.Adapter: clears is_deleted in place.
func (s *Store) Recover(ctx context.Context, filter store.Filter) (store.BatchResult, error) {
	return s.setDeleted(ctx, filter, false)
}

func (s *Store) setDeleted(ctx context.Context, filter store.Filter, deleted bool) (store.BatchResult, error) {
	var result store.BatchResult

	ids := s.matchingIDs(filter)
	for _, batch := range batches(ids, maxBatchSize) {
		s.mu.Lock()
		for _, id := range batch {
			c, exists := s.points[id]
			if !exists {
				result.Errors = append(result.Errors, store.BatchError{ID: id, Message: string(apperr.CodePointNotFound)})
				continue
			}
			c.IsDeleted = deleted

			idStr := strconv.FormatUint(id, 10)
			_ = s.collection.Delete(ctx, nil, nil, idStr)
			doc := chromem.Document{ID: idStr, Content: c.Content, Embedding: c.Vector, Metadata: metadataOf(c)}
			if err := s.collection.AddDocument(ctx, doc); err != nil {
				result.Errors = append(result.Errors, store.BatchError{ID: id, Message: err.Error()})
				continue
			}
			result.SucceededIDs = append(result.SucceededIDs, id)
		}
		s.mu.Unlock()
	}

	return result, nil
}

// GetPoints implements store.Adapter.
func (s *Store) GetPoints(ctx context.Context, ids []uint64, withVectors bool) ([]chunk.Chunk, []store.BatchError, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []chunk.Chunk
	var errs []store.BatchError
	for _, id := range ids {
		c, exists := s.points[id]
		if !exists {
			errs = append(errs, store.BatchError{ID: id, Message: string(apperr.CodePointNotFound)})
			continue
		}
		cp := *c
		if !withVectors {
			cp.Vector = nil
		}
		out = append(out, cp)
	}
	return out, errs, nil
}

// Scroll implements store.Adapter: deterministic id-ascending pagination.
func (s *Store) Scroll(ctx context.Context, filter store.Filter, cursor string, limit int) (store.ScrollPage, error) {
	if limit <= 0 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var after uint64
	if cursor != "" {
		v, err := strconv.ParseUint(cursor, 10, 64)
		if err != nil {
			return store.ScrollPage{}, apperr.Wrap(apperr.CodeValidation, "invalid scroll cursor", err)
		}
		after = v
	}

	ids := make([]uint64, 0, len(s.points))
	for id, c := range s.points {
		if id <= after {
			continue
		}
		if !filter.Match(c) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	page := store.ScrollPage{}
	for i, id := range ids {
		if i >= limit {
			page.Cursor = strconv.FormatUint(ids[i-1], 10)
			return page, nil
		}
		page.Chunks = append(page.Chunks, *s.points[id])
	}

	return page, nil
}

// VectorSearch implements store.Adapter.
func (s *Store) VectorSearch(ctx context.Context, queryVector []float32, filter store.Filter, k int, withVectors bool) ([]store.ScoredChunk, error) {
	s.mu.RLock()
	collection := s.collection
	s.mu.RUnlock()

	if collection == nil {
		return nil, apperr.New(apperr.CodeVectorStoreUnavailable, "collection not initialized")
	}
	if k <= 0 {
		k = 10
	}

	where := whereOf(effectiveFilter(filter))

	s.mu.RLock()
	n := len(s.points)
	s.mu.RUnlock()
	if n == 0 {
		return nil, nil
	}
	nResults := k * 4
	if nResults > n {
		nResults = n
	}

	docs, err := collection.QueryEmbedding(ctx, queryVector, nResults, where, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeVectorStoreUnavailable, "vector search failed", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.ScoredChunk, 0, len(docs))
	for _, d := range docs {
		id, err := strconv.ParseUint(d.ID, 10, 64)
		if err != nil {
			continue
		}
		c, exists := s.points[id]
		if !exists || !filter.Match(c) {
			continue
		}
		cp := *c
		if !withVectors {
			cp.Vector = nil
		}
		out = append(out, store.ScoredChunk{Chunk: cp, Score: float64(d.Similarity)})
	}

	sortScoredDeterministic(out)
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// LexicalSearch implements store.Adapter's BM25 leg via bleve.
func (s *Store) LexicalSearch(ctx context.Context, query string, filter store.Filter, k int) ([]store.ScoredChunk, error) {
	s.mu.RLock()
	idx := s.bleveIdx
	s.mu.RUnlock()

	if idx == nil || query == "" {
		return nil, nil
	}
	if k <= 0 {
		k = 10
	}

	mq := bleve.NewMatchQuery(query)
	mq.SetField("content")
	req := bleve.NewSearchRequest(mq)
	req.Size = k * 4

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeVectorStoreUnavailable, "lexical search failed", err)
	}

	eff := effectiveFilter(filter)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.ScoredChunk, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		c, exists := s.points[id]
		if !exists || !eff.Match(c) {
			continue
		}
		out = append(out, store.ScoredChunk{Chunk: *c, Score: hit.Score})
	}

	sortScoredDeterministic(out)
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// Stats implements store.Adapter.
func (s *Store) Stats(ctx context.Context) (store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st store.Stats
	for _, c := range s.points {
		if c.IsDeleted {
			st.Deleted++
		} else {
			st.Active++
		}
	}
	return st, nil
}

// Close releases the lexical index; chromem-go's in-memory DB needs no
// explicit teardown.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bleveIdx != nil {
		return s.bleveIdx.Close()
	}
	return nil
}

// matchingIDs must be called without mu held; it takes its own read lock.
func (s *Store) matchingIDs(filter store.Filter) []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]uint64, 0, len(s.points))
	for id, c := range s.points {
		if filter.Match(c) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// effectiveFilter applies invariant I3 (every search path filters
// is_deleted=false unless the caller explicitly opts in) at the point
// VectorSearch/LexicalSearch are called, rather than requiring every
// caller to set it.
func effectiveFilter(f store.Filter) store.Filter {
	if !f.IsDeletedSet {
		f.IsDeletedSet = true
		f.IsDeleted = false
	}
	return f
}

// whereOf builds chromem-go's native string-equality WHERE map from the
// subset of Filter fields chromem can evaluate natively; the full
// predicate (including content_type, which chromem also supports) is
// re-checked in-process against the authoritative map regardless, so a
// narrower native filter only costs extra post-filtering, never
// correctness.
func whereOf(f store.Filter) map[string]string {
	where := map[string]string{"is_deleted": strconv.FormatBool(f.IsDeleted)}
	if f.FilePathSet {
		where["file_path"] = f.FilePath
	}
	if f.SectionSet {
		where["section"] = f.Section
	}
	if f.LanguageSet {
		where["language"] = f.Language
	}
	if f.ContentTypeSet {
		where["content_type"] = string(f.ContentType)
	}
	return where
}

// sortScoredDeterministic orders by score descending, tie-broken by id
// ascending, per spec §4.4's determinism contract.
func sortScoredDeterministic(out []store.ScoredChunk) {
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Chunk.ID < out[j].Chunk.ID
	})
}

// batches splits items into chunks of at most size, the ≤1000-per-call
// cap spec §4.4 and §4.9 require of upserts and soft-deletes.
func batches[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	var out [][]T
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[i:end])
	}
	return out
}
