// Package rerank implements the reranker (C7): a cross-encoder scoring
// pass over the candidate pool that produces a fresh score per (query,
// chunk) and keeps only the top rerank_top_k (spec §4.7).
package rerank

import (
	"context"
	"sort"

	"github.com/open-rag/reporag/internal/store"
)

// Scorer scores a query against a batch of chunk texts, returning one
// score per text in the same order. Implementations may call out to a
// cross-encoder model; MockScorer is provided for tests and for bypass mode.
type Scorer interface {
	Score(ctx context.Context, query string, texts []string) ([]float64, error)
}

// Reranker runs C7 over a candidate pool.
type Reranker struct {
	scorer Scorer
	topK   int
	bypass bool
}

// New builds a Reranker. bypass implements spec §4.7's "must be
// bypassable via configuration for testing": when true, the scorer is not
// called; the pool is sorted by its existing score (the retriever's
// combined hybrid score) descending, id ascending on ties, and truncated
// to topK.
func New(scorer Scorer, topK int, bypass bool) *Reranker {
	if topK <= 0 {
		topK = 10
	}
	return &Reranker{scorer: scorer, topK: topK, bypass: bypass}
}

// Rerank scores pool against query and returns the top rerank_top_k in
// descending rerank score. An empty pool returns an empty (non-nil)
// slice, never an error.
func (r *Reranker) Rerank(ctx context.Context, query string, pool []store.ScoredChunk) ([]store.ScoredChunk, error) {
	if len(pool) == 0 {
		return []store.ScoredChunk{}, nil
	}

	if r.bypass {
		out := append([]store.ScoredChunk(nil), pool...)
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Score != out[j].Score {
				return out[i].Score > out[j].Score
			}
			return out[i].Chunk.ID < out[j].Chunk.ID
		})
		return truncate(out, r.topK), nil
	}

	texts := make([]string, len(pool))
	for i, c := range pool {
		texts[i] = c.Chunk.Content
	}

	scores, err := r.scorer.Score(ctx, query, texts)
	if err != nil {
		return nil, err
	}

	out := make([]store.ScoredChunk, len(pool))
	for i, c := range pool {
		c.Score = scores[i]
		out[i] = c
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Chunk.ID < out[j].Chunk.ID
	})
	return truncate(out, r.topK), nil
}

func truncate(chunks []store.ScoredChunk, n int) []store.ScoredChunk {
	if len(chunks) > n {
		return chunks[:n]
	}
	return chunks
}
