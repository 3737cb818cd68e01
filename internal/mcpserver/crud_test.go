package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-rag/reporag/internal/chunk"
	"github.com/open-rag/reporag/internal/classify"
	"github.com/open-rag/reporag/internal/config"
	"github.com/open-rag/reporag/internal/embed"
	"github.com/open-rag/reporag/internal/index"
	"github.com/open-rag/reporag/internal/rerank"
	"github.com/open-rag/reporag/internal/retrieve"
	"github.com/open-rag/reporag/internal/store"
)

// fakeAdapter is a minimal store.Adapter stub, in the style of
// internal/retrieve's fakeAdapter and internal/index's memAdapter:
// an in-memory map sufficient to exercise the CRUD handlers without a
// real backend.
type fakeAdapter struct {
	points  map[uint64]*chunk.Chunk
	vector  []store.ScoredChunk
	lexical []store.ScoredChunk
}

func newFakeAdapter() *fakeAdapter { return &fakeAdapter{points: make(map[uint64]*chunk.Chunk)} }

func (a *fakeAdapter) EnsureCollection(context.Context, string, int) error { return nil }

func (a *fakeAdapter) Upsert(_ context.Context, points []chunk.Chunk) (store.BatchResult, error) {
	var result store.BatchResult
	for i := range points {
		cp := points[i]
		a.points[cp.ID] = &cp
		result.SucceededIDs = append(result.SucceededIDs, cp.ID)
	}
	return result, nil
}

func (a *fakeAdapter) DeleteByIDs(_ context.Context, ids []uint64) (store.BatchResult, error) {
	var result store.BatchResult
	for _, id := range ids {
		delete(a.points, id)
		result.SucceededIDs = append(result.SucceededIDs, id)
	}
	return result, nil
}

func (a *fakeAdapter) SoftDelete(_ context.Context, filter store.Filter) (store.BatchResult, error) {
	var result store.BatchResult
	for id, c := range a.points {
		if filter.IDsSet && !filter.IDs[id] {
			continue
		}
		if filter.FilePathSet && c.FilePath != filter.FilePath {
			continue
		}
		c.IsDeleted = true
		result.SucceededIDs = append(result.SucceededIDs, id)
	}
	return result, nil
}

func (a *fakeAdapter) Recover(_ context.Context, filter store.Filter) (store.BatchResult, error) {
	var result store.BatchResult
	for id, c := range a.points {
		if filter.IDsSet && !filter.IDs[id] {
			continue
		}
		c.IsDeleted = false
		result.SucceededIDs = append(result.SucceededIDs, id)
	}
	return result, nil
}

func (a *fakeAdapter) GetPoints(_ context.Context, ids []uint64, _ bool) ([]chunk.Chunk, []store.BatchError, error) {
	var chunks []chunk.Chunk
	var errs []store.BatchError
	for _, id := range ids {
		c, ok := a.points[id]
		if !ok {
			errs = append(errs, store.BatchError{ID: id, Message: "not found"})
			continue
		}
		chunks = append(chunks, *c)
	}
	return chunks, errs, nil
}

func (a *fakeAdapter) Scroll(_ context.Context, filter store.Filter, _ string, _ int) (store.ScrollPage, error) {
	var page store.ScrollPage
	for _, c := range a.points {
		if filter.FilePathSet && c.FilePath != filter.FilePath {
			continue
		}
		if filter.IsDeletedSet && c.IsDeleted != filter.IsDeleted {
			continue
		}
		page.Chunks = append(page.Chunks, *c)
	}
	return page, nil
}

func (a *fakeAdapter) VectorSearch(context.Context, []float32, store.Filter, int, bool) ([]store.ScoredChunk, error) {
	return a.vector, nil
}

func (a *fakeAdapter) LexicalSearch(context.Context, string, store.Filter, int) ([]store.ScoredChunk, error) {
	return a.lexical, nil
}

func (a *fakeAdapter) Stats(context.Context) (store.Stats, error) { return store.Stats{}, nil }
func (a *fakeAdapter) Close() error                               { return nil }

// directEmbedder fulfills index.Embedder by calling straight through to a
// Provider with no caching, the same shortcut internal/index's tests use.
type directEmbedder struct{ provider embed.Provider }

func (d directEmbedder) EmbedWithHashes(ctx context.Context, texts []string, _ []string, mode embed.Mode) ([][]float32, error) {
	return d.provider.Embed(ctx, texts, mode)
}

// newTestServer wires a Server over fake cloud/local adapters and
// coordinators, sufficient to exercise every CRUD and search handler
// without a live vector store or embedding endpoint.
func newTestServer(t *testing.T) (*Server, *fakeAdapter, *fakeAdapter) {
	t.Helper()

	cloud := newFakeAdapter()
	local := newFakeAdapter()
	embedder := embed.NewMockProvider(8)

	cloudCoord := &index.Coordinator{
		Store:     cloud,
		Embedder:  directEmbedder{provider: embedder},
		DocConfig: chunk.DefaultDocChunkConfig(),
		Logger:    zerolog.Nop(),
	}
	localCoord := &index.Coordinator{
		Store:     local,
		Embedder:  directEmbedder{provider: embedder},
		DocConfig: chunk.DefaultDocChunkConfig(),
		Logger:    zerolog.Nop(),
	}

	retriever := retrieve.New([]retrieve.Collection{{Name: "cloud", Adapter: cloud}, {Name: "local", Adapter: local}}, embedder, config.HybridWeights{Vector: 0.7, BM25: 0.3}, 20)
	reranker := rerank.New(rerank.MockScorer{}, 10, false)

	s, err := New(Config{
		Collections:  Collections{Cloud: cloud, Local: local},
		Embedder:     embedder,
		Classifier:   classify.New(),
		Retriever:    retriever,
		Reranker:     reranker,
		Coordinators: Coordinators{Cloud: cloudCoord, Local: localCoord},
		Logger:       zerolog.Nop(),
	})
	require.NoError(t, err)
	return s, cloud, local
}

func callTool(ctx context.Context, t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) Envelope {
	t.Helper()
	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
	result, err := handler(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(text.Text), &env))
	return env
}

func TestUpsertPointsHandler_BatchLimitExceeded(t *testing.T) {
	s, _, _ := newTestServer(t)

	points := make([]any, 1001)
	for i := range points {
		points[i] = map[string]any{"content": "text", "file_path": "a.md"}
	}

	env := callTool(context.Background(), t, s.handleAddPoints, map[string]any{"points": points})
	require.False(t, env.Success)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "BATCH_LIMIT_EXCEEDED", env.Errors[0].Code)
}

func TestUpsertPointsHandler_UpdateRequiresID(t *testing.T) {
	s, _, _ := newTestServer(t)

	env := callTool(context.Background(), t, s.handleUpdatePoints, map[string]any{
		"points": []any{map[string]any{"content": "no id here"}},
	})
	require.False(t, env.Success)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "VALIDATION_ERROR", env.Errors[0].Code)
	assert.Contains(t, env.Errors[0].Message, "requires an id")
}

func TestUpsertPointsHandler_AddAssignsIDWithoutOne(t *testing.T) {
	s, cloud, _ := newTestServer(t)

	env := callTool(context.Background(), t, s.handleAddPoints, map[string]any{
		"points": []any{map[string]any{"content": "fresh content", "file_path": "a.md"}},
	})
	require.True(t, env.Success)
	assert.Len(t, cloud.points, 1)
}

func TestHandleDeletePoints_DryRunWritesNothing(t *testing.T) {
	s, cloud, _ := newTestServer(t)
	cloud.points[1] = &chunk.Chunk{ID: 1, Content: "x"}

	env := callTool(context.Background(), t, s.handleDeletePoints, map[string]any{
		"ids":     []any{float64(1)},
		"dry_run": true,
	})
	require.True(t, env.Success)
	assert.False(t, cloud.points[1].IsDeleted)
}

func TestHandleDeletePoints_SoftDeleteMarksWithoutRemoving(t *testing.T) {
	s, cloud, _ := newTestServer(t)
	cloud.points[1] = &chunk.Chunk{ID: 1, Content: "x"}

	env := callTool(context.Background(), t, s.handleDeletePoints, map[string]any{
		"ids": []any{float64(1)},
	})
	require.True(t, env.Success)
	require.Contains(t, cloud.points, uint64(1))
	assert.True(t, cloud.points[1].IsDeleted)
}

func TestHandleDeletePoints_HardDeleteRemoves(t *testing.T) {
	s, cloud, _ := newTestServer(t)
	cloud.points[1] = &chunk.Chunk{ID: 1, Content: "x"}

	env := callTool(context.Background(), t, s.handleDeletePoints, map[string]any{
		"ids":         []any{float64(1)},
		"soft_delete": false,
	})
	require.True(t, env.Success)
	assert.NotContains(t, cloud.points, uint64(1))
}

func TestHandleDeletePoints_EmptyIDsIsValidationError(t *testing.T) {
	s, _, _ := newTestServer(t)

	env := callTool(context.Background(), t, s.handleDeletePoints, map[string]any{"ids": []any{}})
	require.False(t, env.Success)
	assert.Equal(t, "VALIDATION_ERROR", env.Errors[0].Code)
}

func TestDocumentWriteHandler_RoutesToNamedCollection(t *testing.T) {
	s, cloud, local := newTestServer(t)

	env := callTool(context.Background(), t, s.handleAddDocument, map[string]any{
		"collection": "local",
		"path":       "notes/a.md",
		"content":    "# Title\n\nSome body text.\n",
	})
	require.True(t, env.Success)
	assert.NotEmpty(t, local.points)
	assert.Empty(t, cloud.points)
}

func TestDocumentWriteHandler_DefaultsToPrimaryCollection(t *testing.T) {
	s, cloud, local := newTestServer(t)

	env := callTool(context.Background(), t, s.handleAddDocument, map[string]any{
		"path":    "notes/a.md",
		"content": "# Title\n\nSome body text.\n",
	})
	require.True(t, env.Success)
	assert.NotEmpty(t, cloud.points)
	assert.Empty(t, local.points)
}

func TestDocumentWriteHandler_UnknownCollectionIsValidationError(t *testing.T) {
	s, _, _ := newTestServer(t)

	env := callTool(context.Background(), t, s.handleAddDocument, map[string]any{
		"collection": "bogus",
		"path":       "notes/a.md",
		"content":    "body",
	})
	require.False(t, env.Success)
	assert.Equal(t, "VALIDATION_ERROR", env.Errors[0].Code)
}

func TestHandleDeleteDocument_RoutesToNamedCollection(t *testing.T) {
	s, cloud, local := newTestServer(t)
	local.points[1] = &chunk.Chunk{ID: 1, FilePath: "notes/a.md"}
	cloud.points[2] = &chunk.Chunk{ID: 2, FilePath: "notes/a.md"}

	env := callTool(context.Background(), t, s.handleDeleteDocument, map[string]any{
		"collection": "local",
		"path":       "notes/a.md",
	})
	require.True(t, env.Success)
	assert.True(t, local.points[1].IsDeleted)
	assert.False(t, cloud.points[2].IsDeleted)
}

func TestHandleGetDocument_RoutesToNamedCollection(t *testing.T) {
	s, cloud, local := newTestServer(t)
	local.points[1] = &chunk.Chunk{ID: 1, FilePath: "notes/a.md", LineStart: 1}
	cloud.points[2] = &chunk.Chunk{ID: 2, FilePath: "notes/a.md", LineStart: 1}

	env := callTool(context.Background(), t, s.handleGetDocument, map[string]any{
		"collection": "local",
		"path":       "notes/a.md",
	})
	require.True(t, env.Success)

	data, err := json.Marshal(env.Data)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ID":1`)
	assert.NotContains(t, string(data), `"ID":2`)
}
