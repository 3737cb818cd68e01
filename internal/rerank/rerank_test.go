package rerank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-rag/reporag/internal/chunk"
	"github.com/open-rag/reporag/internal/store"
)

func TestRerank_EmptyPoolReturnsEmpty(t *testing.T) {
	r := New(MockScorer{}, 10, false)
	out, err := r.Rerank(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotNil(t, out)
}

func TestRerank_OrdersByScoreDescending(t *testing.T) {
	pool := []store.ScoredChunk{
		{Chunk: chunk.Chunk{ID: 1, Content: "nothing relevant here"}},
		{Chunk: chunk.Chunk{ID: 2, Content: "chunk markdown into sections"}},
	}
	r := New(MockScorer{}, 10, false)
	out, err := r.Rerank(context.Background(), "chunk markdown", pool)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, uint64(2), out[0].Chunk.ID)
}

func TestRerank_TruncatesToTopK(t *testing.T) {
	pool := make([]store.ScoredChunk, 5)
	for i := range pool {
		pool[i] = store.ScoredChunk{Chunk: chunk.Chunk{ID: uint64(i + 1)}, Score: float64(i)}
	}
	r := New(MockScorer{}, 2, true)
	out, err := r.Rerank(context.Background(), "q", pool)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, uint64(5), out[0].Chunk.ID)
	assert.Equal(t, uint64(4), out[1].Chunk.ID)
}

func TestRerank_BypassPreservesInputScoreOrder(t *testing.T) {
	pool := []store.ScoredChunk{
		{Chunk: chunk.Chunk{ID: 1}, Score: 0.2},
		{Chunk: chunk.Chunk{ID: 2}, Score: 0.9},
	}
	r := New(MockScorer{}, 10, true)
	out, err := r.Rerank(context.Background(), "q", pool)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, uint64(2), out[0].Chunk.ID)
}
