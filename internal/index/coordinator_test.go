package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-rag/reporag/internal/chunk"
	"github.com/open-rag/reporag/internal/embed"
	"github.com/open-rag/reporag/internal/store"
)

// memAdapter is an in-memory store.Adapter stub sufficient to exercise
// the coordinator's scroll/upsert/soft-delete/recover calls without a
// real backend.
type memAdapter struct {
	points map[uint64]*chunk.Chunk
}

func newMemAdapter() *memAdapter { return &memAdapter{points: make(map[uint64]*chunk.Chunk)} }

func (a *memAdapter) EnsureCollection(context.Context, string, int) error { return nil }

func (a *memAdapter) Upsert(_ context.Context, points []chunk.Chunk) (store.BatchResult, error) {
	var result store.BatchResult
	for i := range points {
		cp := points[i]
		a.points[cp.ID] = &cp
		result.SucceededIDs = append(result.SucceededIDs, cp.ID)
	}
	return result, nil
}

func (a *memAdapter) DeleteByIDs(_ context.Context, ids []uint64) (store.BatchResult, error) {
	var result store.BatchResult
	for _, id := range ids {
		delete(a.points, id)
		result.SucceededIDs = append(result.SucceededIDs, id)
	}
	return result, nil
}

func (a *memAdapter) SoftDelete(_ context.Context, filter store.Filter) (store.BatchResult, error) {
	var result store.BatchResult
	for id, c := range a.points {
		if filter.IDsSet && !filter.IDs[id] {
			continue
		}
		c.IsDeleted = true
		result.SucceededIDs = append(result.SucceededIDs, id)
	}
	return result, nil
}

func (a *memAdapter) Recover(_ context.Context, filter store.Filter) (store.BatchResult, error) {
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

func (a *memAdapter) GetPoints(context.Context, []uint64, bool) ([]chunk.Chunk, []store.BatchError, error) {
	return nil, nil, nil
}

func (a *memAdapter) Scroll(_ context.Context, filter store.Filter, _ string, _ int) (store.ScrollPage, error) {
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

func (a *memAdapter) VectorSearch(context.Context, []float32, store.Filter, int, bool) ([]store.ScoredChunk, error) {
	return nil, nil
}
func (a *memAdapter) LexicalSearch(context.Context, string, store.Filter, int) ([]store.ScoredChunk, error) {
	return nil, nil
}
func (a *memAdapter) Stats(context.Context) (store.Stats, error) { return store.Stats{}, nil }
func (a *memAdapter) Close() error                               { return nil }

// directEmbedder fulfills the Embedder interface by calling through to a
// Provider with no caching, sufficient for tests.
type directEmbedder struct{ provider embed.Provider }

func (d directEmbedder) EmbedWithHashes(ctx context.Context, texts []string, _ []string, mode embed.Mode) ([][]float32, error) {
	return d.provider.Embed(ctx, texts, mode)
}

func newTestCoordinator(t *testing.T, root string) (*Coordinator, *memAdapter) {
	t.Helper()
	adapter := newMemAdapter()
	coord := &Coordinator{
		Store:       adapter,
		Embedder:    directEmbedder{provider: embed.NewMockProvider(8)},
		DocConfig:   chunk.DefaultDocChunkConfig(),
		ProjectRoot: root,
		Logger:      zerolog.Nop(),
	}
	return coord, adapter
}

func TestIndexFile_InsertsNewChunks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# Heading\n\nSome prose content here.\n"), 0o644))

	coord, adapter := newTestCoordinator(t, dir)
	report, err := coord.IndexFile(context.Background(), path, false)
	require.NoError(t, err)
	assert.Greater(t, report.Upserted, 0)
	assert.NotEmpty(t, adapter.points)
}

func TestIndexFile_SkipsUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# Heading\n\nSome prose content here.\n"), 0o644))

	coord, _ := newTestCoordinator(t, dir)
	ctx := context.Background()

	_, err := coord.IndexFile(ctx, path, false)
	require.NoError(t, err)

	report, err := coord.IndexFile(ctx, path, false)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Upserted)
}

func TestIndexFile_SoftDeletesRemovedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# Heading\n\nFirst paragraph.\n\nSecond paragraph.\n"), 0o644))

	coord, adapter := newTestCoordinator(t, dir)
	ctx := context.Background()
	_, err := coord.IndexFile(ctx, path, false)
	require.NoError(t, err)

	activeBefore := countActive(adapter)
	require.NoError(t, os.WriteFile(path, []byte("# Heading\n\nFirst paragraph.\n"), 0o644))

	report, err := coord.IndexFile(ctx, path, false)
	require.NoError(t, err)
	assert.Greater(t, report.SoftDeleted, 0)
	assert.Less(t, countActive(adapter), activeBefore)
}

func TestIndexFile_RecoversReappearedContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	full := "# Heading\n\nFirst paragraph.\n\nSecond paragraph.\n"
	require.NoError(t, os.WriteFile(path, []byte(full), 0o644))

	coord, _ := newTestCoordinator(t, dir)
	ctx := context.Background()
	_, err := coord.IndexFile(ctx, path, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("# Heading\n\nFirst paragraph.\n"), 0o644))
	_, err = coord.IndexFile(ctx, path, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(full), 0o644))
	report, err := coord.IndexFile(ctx, path, false)
	require.NoError(t, err)
	assert.Greater(t, report.Recovered, 0)
}

func TestIndexFile_PathOutsideRootIsSkipped(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	path := filepath.Join(other, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# Heading\n\ncontent\n"), 0o644))

	coord, _ := newTestCoordinator(t, dir)
	report, err := coord.IndexFile(context.Background(), path, false)
	require.NoError(t, err)
	assert.True(t, report.Skipped)
}

func TestOrphanSweep_DryRunReportsWithoutMutating(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# Heading\n\ncontent\n"), 0o644))

	coord, adapter := newTestCoordinator(t, dir)
	ctx := context.Background()
	_, err := coord.IndexFile(ctx, path, false)
	require.NoError(t, err)

	report, err := coord.OrphanSweep(ctx, nil, false)
	require.NoError(t, err)
	assert.Greater(t, report.TotalOrphaned, 0)
	assert.Equal(t, countActive(adapter), report.TotalOrphaned) // dry run: nothing flipped yet

	report2, err := coord.OrphanSweep(ctx, nil, true)
	require.NoError(t, err)
	assert.Equal(t, report.TotalOrphaned, report2.TotalOrphaned)
	assert.Equal(t, 0, countActive(adapter))
}

func TestOrphanSweep_LiveFileIsNotOrphaned(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# Heading\n\ncontent\n"), 0o644))

	coord, _ := newTestCoordinator(t, dir)
	ctx := context.Background()
	_, err := coord.IndexFile(ctx, path, false)
	require.NoError(t, err)

	report, err := coord.OrphanSweep(ctx, []string{"doc.md"}, true)
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalOrphaned)
}

func countActive(a *memAdapter) int {
	n := 0
	for _, c := range a.points {
		if !c.IsDeleted {
			n++
		}
	}
	return n
}
