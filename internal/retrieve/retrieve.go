// Package retrieve implements the hybrid retriever (C6): candidate
// pooling across the vector and lexical legs of one or more
// store.Adapter collections, section-aware neighborhood expansion, and
// cross-collection merge with provenance (spec §4.6).
package retrieve

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/open-rag/reporag/internal/classify"
	"github.com/open-rag/reporag/internal/config"
	"github.com/open-rag/reporag/internal/embed"
	"github.com/open-rag/reporag/internal/store"
)

// maxPoolSize is the candidate pool ceiling C7 requires its input
// bounded to (spec §4.7: "the candidate pool (≤ 100)").
const maxPoolSize = 100

// Collection names one configured store.Adapter and its provenance tag.
// Cloud is queried before local per spec §4.6's cross-collection
// strategy.
type Collection struct {
	Name    string
	Adapter store.Adapter
}

// Retriever runs C6 over a fixed ordered list of collections.
type Retriever struct {
	Collections []Collection
	Embedder    embed.Provider
	Weights     config.HybridWeights
	SearchTopK  int
}

// New builds a Retriever. collections should list cloud before local
// when both are configured, per spec §4.6.
func New(collections []Collection, embedder embed.Provider, weights config.HybridWeights, searchTopK int) *Retriever {
	if searchTopK <= 0 {
		searchTopK = 20
	}
	return &Retriever{Collections: collections, Embedder: embedder, Weights: weights, SearchTopK: searchTopK}
}

// Retrieve runs the full C6 pipeline for one query and returns the
// deduplicated, expanded candidate pool (unranked beyond the combined
// hybrid score), ready for C7.
func (r *Retriever) Retrieve(ctx context.Context, query string, hints classify.Hints, filter store.Filter) ([]store.ScoredChunk, error) {
	if len(r.Collections) == 0 {
		return nil, fmt.Errorf("retrieve: no collections configured")
	}

	vecs, err := r.Embedder.Embed(ctx, []string{query}, embed.ModeQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	queryVector := vecs[0]

	pool := make(map[uint64]store.ScoredChunk)
	for _, col := range r.Collections {
		results, err := r.searchOne(ctx, col, query, queryVector, filter)
		if err != nil {
			return nil, fmt.Errorf("searching collection %q: %w", col.Name, err)
		}
		mergeInto(pool, results)
	}

	if hints.ExpandSections {
		if err := r.expandSections(ctx, pool); err != nil {
			return nil, fmt.Errorf("expanding sections: %w", err)
		}
	}

	return topNByScore(pool, maxPoolSize), nil
}

// searchOne runs the vector and lexical legs against a single collection
// concurrently and combines them per spec §4.6's s = w_vec*v + w_bm25*b.
func (r *Retriever) searchOne(ctx context.Context, col Collection, query string, queryVector []float32, filter store.Filter) ([]store.ScoredChunk, error) {
	var vecResults, lexResults []store.ScoredChunk

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := col.Adapter.VectorSearch(gctx, queryVector, filter, r.SearchTopK, false)
		if err != nil {
			return err
		}
		vecResults = res
		return nil
	})
	g.Go(func() error {
		res, err := col.Adapter.LexicalSearch(gctx, query, filter, r.SearchTopK)
		if err != nil {
			return err
		}
		lexResults = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	vecNorm := normalizeCosine(vecResults)
	lexNorm := minMaxNormalize(lexResults)

	wVec, wBM25 := r.Weights.Vector, r.Weights.BM25
	if len(lexResults) == 0 {
		wVec, wBM25 = 1.0, 0.0
	}

	combined := make(map[uint64]store.ScoredChunk, len(vecResults)+len(lexResults))
	for id, v := range vecNorm {
		c := vecResults[idIndex(vecResults, id)]
		c.Score = wVec * v
		c.Collection = col.Name
		combined[id] = c
	}
	for id, b := range lexNorm {
		if existing, ok := combined[id]; ok {
			existing.Score += wBM25 * b
			combined[id] = existing
			continue
		}
		c := lexResults[idIndex(lexResults, id)]
		c.Score = wBM25 * b
		c.Collection = col.Name
		combined[id] = c
	}

	out := make([]store.ScoredChunk, 0, len(combined))
	for _, c := range combined {
		out = append(out, c)
	}
	return out, nil
}

func idIndex(scs []store.ScoredChunk, id uint64) int {
	for i, c := range scs {
		if c.Chunk.ID == id {
			return i
		}
	}
	return -1
}

// normalizeCosine maps cosine similarity in [-1,1] to [0,1].
func normalizeCosine(results []store.ScoredChunk) map[uint64]float64 {
	out := make(map[uint64]float64, len(results))
	for _, c := range results {
		out[c.Chunk.ID] = (c.Score + 1.0) / 2.0
	}
	return out
}

// minMaxNormalize rescales BM25 scores into [0,1] per query, per spec
// §4.6. A single-result or zero-spread set normalizes to 1.0 for every
// member (nothing to distinguish by).
func minMaxNormalize(results []store.ScoredChunk) map[uint64]float64 {
	out := make(map[uint64]float64, len(results))
	if len(results) == 0 {
		return out
	}
	min, max := results[0].Score, results[0].Score
	for _, c := range results {
		if c.Score < min {
			min = c.Score
		}
		if c.Score > max {
			max = c.Score
		}
	}
	spread := max - min
	for _, c := range results {
		if spread <= 0 {
			out[c.Chunk.ID] = 1.0
			continue
		}
		out[c.Chunk.ID] = (c.Score - min) / spread
	}
	return out
}

// mergeInto dedups by id, keeping the higher combined score on collision
// (spec §4.6: "when the same id appears in both legs, keep the higher
// combined score" — applied here across collections too).
func mergeInto(pool map[uint64]store.ScoredChunk, results []store.ScoredChunk) {
	for _, c := range results {
		if existing, ok := pool[c.Chunk.ID]; !ok || c.Score > existing.Score {
			pool[c.Chunk.ID] = c
		}
	}
}

// expandSections issues a scroll for every candidate's (file_path,
// section) pair and inserts the returned chunks into pool, per spec
// §4.6. Expansion happens against the same collection the candidate was
// found in, since sections are collection-local.
func (r *Retriever) expandSections(ctx context.Context, pool map[uint64]store.ScoredChunk) error {
	adapters := make(map[string]store.Adapter, len(r.Collections))
	for _, col := range r.Collections {
		adapters[col.Name] = col.Adapter
	}

	neutral := medianScore(pool)

	type key struct{ filePath, section, collection string }
	seen := make(map[key]bool)

	var candidates []store.ScoredChunk
	for _, c := range pool {
		if c.Chunk.Section == "" {
			continue
		}
		candidates = append(candidates, c)
	}

	for _, c := range candidates {
		k := key{c.Chunk.FilePath, c.Chunk.Section, c.Collection}
		if seen[k] {
			continue
		}
		seen[k] = true

		adapter, ok := adapters[c.Collection]
		if !ok {
			continue
		}

		filter := store.Filter{
			FilePath:     c.Chunk.FilePath,
			FilePathSet:  true,
			Section:      c.Chunk.Section,
			SectionSet:   true,
			IsDeleted:    false,
			IsDeletedSet: true,
		}

		cursor := ""
		for {
			page, err := adapter.Scroll(ctx, filter, cursor, 200)
			if err != nil {
				return err
			}
			for _, expanded := range page.Chunks {
				if _, exists := pool[expanded.ID]; exists {
					continue
				}
				pool[expanded.ID] = store.ScoredChunk{Chunk: expanded, Score: neutral, Collection: c.Collection}
			}
			if page.Cursor == "" {
				break
			}
			cursor = page.Cursor
		}
	}

	return nil
}

// medianScore computes the median combined score of pool, used as the
// neutral score for section-expanded chunks that have no vector/lexical
// score of their own.
func medianScore(pool map[uint64]store.ScoredChunk) float64 {
	if len(pool) == 0 {
		return 0
	}
	scores := make([]float64, 0, len(pool))
	for _, c := range pool {
		scores = append(scores, c.Score)
	}
	sort.Float64s(scores)
	mid := len(scores) / 2
	if len(scores)%2 == 1 {
		return scores[mid]
	}
	return (scores[mid-1] + scores[mid]) / 2.0
}

// topNByScore returns the n highest-scoring candidates, tie-broken by id
// ascending for determinism.
func topNByScore(pool map[uint64]store.ScoredChunk, n int) []store.ScoredChunk {
	out := make([]store.ScoredChunk, 0, len(pool))
	for _, c := range pool {
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Chunk.ID < out[j].Chunk.ID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
