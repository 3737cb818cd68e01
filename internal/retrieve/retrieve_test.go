package retrieve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-rag/reporag/internal/chunk"
	"github.com/open-rag/reporag/internal/classify"
	"github.com/open-rag/reporag/internal/config"
	"github.com/open-rag/reporag/internal/embed"
	"github.com/open-rag/reporag/internal/store"
)

// fakeAdapter is a minimal store.Adapter stub exercising only the
// methods the retriever calls (VectorSearch, LexicalSearch, Scroll).
type fakeAdapter struct {
	vector  []store.ScoredChunk
	lexical []store.ScoredChunk
	scroll  map[string][]chunk.Chunk // keyed by file_path+"|"+section
}

func (f *fakeAdapter) EnsureCollection(context.Context, string, int) error { return nil }
func (f *fakeAdapter) Upsert(context.Context, []chunk.Chunk) (store.BatchResult, error) {
	return store.BatchResult{}, nil
}
func (f *fakeAdapter) DeleteByIDs(context.Context, []uint64) (store.BatchResult, error) {
	return store.BatchResult{}, nil
}
func (f *fakeAdapter) SoftDelete(context.Context, store.Filter) (store.BatchResult, error) {
	return store.BatchResult{}, nil
}
func (f *fakeAdapter) Recover(context.Context, store.Filter) (store.BatchResult, error) {
	return store.BatchResult{}, nil
}
func (f *fakeAdapter) GetPoints(context.Context, []uint64, bool) ([]chunk.Chunk, []store.BatchError, error) {
	return nil, nil, nil
}
func (f *fakeAdapter) Scroll(ctx context.Context, filter store.Filter, cursor string, limit int) (store.ScrollPage, error) {
	key := filter.FilePath + "|" + filter.Section
	return store.ScrollPage{Chunks: f.scroll[key]}, nil
}
func (f *fakeAdapter) VectorSearch(context.Context, []float32, store.Filter, int, bool) ([]store.ScoredChunk, error) {
	return f.vector, nil
}
func (f *fakeAdapter) LexicalSearch(context.Context, string, store.Filter, int) ([]store.ScoredChunk, error) {
	return f.lexical, nil
}
func (f *fakeAdapter) Stats(context.Context) (store.Stats, error) { return store.Stats{}, nil }
func (f *fakeAdapter) Close() error                               { return nil }

func weights() config.HybridWeights { return config.HybridWeights{Vector: 0.7, BM25: 0.3} }

func TestRetrieve_MergesVectorAndLexicalLegs(t *testing.T) {
	adapter := &fakeAdapter{
		vector: []store.ScoredChunk{
			{Chunk: chunk.Chunk{ID: 1, FilePath: "a.md"}, Score: 0.9},
			{Chunk: chunk.Chunk{ID: 2, FilePath: "b.md"}, Score: 0.1},
		},
		lexical: []store.ScoredChunk{
			{Chunk: chunk.Chunk{ID: 1, FilePath: "a.md"}, Score: 5.0},
			{Chunk: chunk.Chunk{ID: 3, FilePath: "c.md"}, Score: 2.0},
		},
	}
	r := New([]Collection{{Name: "local", Adapter: adapter}}, embed.NewMockProvider(8), weights(), 20)

	results, err := r.Retrieve(context.Background(), "test query", classify.Hints{}, store.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	byID := map[uint64]store.ScoredChunk{}
	for _, c := range results {
		byID[c.Chunk.ID] = c
	}
	assert.Contains(t, byID, uint64(1))
	assert.Contains(t, byID, uint64(2))
	assert.Contains(t, byID, uint64(3))
	// id 1 appears in both legs so its combined score must exceed either leg alone.
	assert.Greater(t, byID[1].Score, byID[2].Score)
}

func TestRetrieve_NoLexicalResultsUsesVectorOnly(t *testing.T) {
	adapter := &fakeAdapter{
		vector: []store.ScoredChunk{{Chunk: chunk.Chunk{ID: 1}, Score: 1.0}},
	}
	r := New([]Collection{{Name: "local", Adapter: adapter}}, embed.NewMockProvider(8), weights(), 20)

	results, err := r.Retrieve(context.Background(), "q", classify.Hints{}, store.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1.0, results[0].Score) // cosine 1.0 normalizes to 1.0, weight 1.0 since no lexical leg
}

func TestRetrieve_SectionExpansionInsertsNeighbors(t *testing.T) {
	adapter := &fakeAdapter{
		vector: []store.ScoredChunk{
			{Chunk: chunk.Chunk{ID: 1, FilePath: "a.md", Section: "Intro"}, Score: 0.8},
		},
		scroll: map[string][]chunk.Chunk{
			"a.md|Intro": {
				{ID: 1, FilePath: "a.md", Section: "Intro"},
				{ID: 2, FilePath: "a.md", Section: "Intro"},
			},
		},
	}
	r := New([]Collection{{Name: "local", Adapter: adapter}}, embed.NewMockProvider(8), weights(), 20)

	results, err := r.Retrieve(context.Background(), "how does this work", classify.Hints{ExpandSections: true}, store.Filter{})
	require.NoError(t, err)

	ids := map[uint64]bool{}
	for _, c := range results {
		ids[c.Chunk.ID] = true
	}
	assert.True(t, ids[1])
	assert.True(t, ids[2])
}

func TestRetrieve_NoCollectionsErrors(t *testing.T) {
	r := New(nil, embed.NewMockProvider(8), weights(), 20)
	_, err := r.Retrieve(context.Background(), "q", classify.Hints{}, store.Filter{})
	assert.Error(t, err)
}
