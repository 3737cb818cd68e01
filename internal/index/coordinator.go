// Package index implements the indexer coordinator (C9): incremental
// upsert per file, orphan sweep across a collection, path normalization,
// and the file watcher and worker pool that drive both (spec §4.9,
// SPEC_FULL.md §4.6/A6/A8).
package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/open-rag/reporag/internal/apperr"
	"github.com/open-rag/reporag/internal/chunk"
	"github.com/open-rag/reporag/internal/embed"
	"github.com/open-rag/reporag/internal/metrics"
	"github.com/open-rag/reporag/internal/store"
)

// Embedder is the subset of embed.CachedProvider the coordinator needs:
// content-hash-keyed batch embedding so an unchanged chunk never re-pays
// an embedding call.
type Embedder interface {
	EmbedWithHashes(ctx context.Context, texts []string, contentHashes []string, mode embed.Mode) ([][]float32, error)
}

// FileReport summarizes one file's incremental upsert.
type FileReport struct {
	Path        string
	Upserted    int
	Recovered   int
	SoftDeleted int
	Skipped     bool
	SkipReason  string
}

// Coordinator runs C9 against one store.Adapter collection.
type Coordinator struct {
	Store       store.Adapter
	Embedder    Embedder
	DocConfig   chunk.DocChunkConfig
	ProjectRoot string
	Logger      zerolog.Logger
	Metrics     *metrics.Registry
}

type existingRecord struct {
	id        uint64
	hash      string
	isDeleted bool
}

// IndexFile runs spec §4.9's five-step incremental upsert algorithm for
// one file read from disk.
func (c *Coordinator) IndexFile(ctx context.Context, absPath string, isCode bool) (FileReport, error) {
	relPath, ok := Normalize(c.ProjectRoot, absPath)
	if !ok {
		c.Logger.Warn().Str("path", absPath).Msg("path escapes project root, skipping")
		return FileReport{Path: absPath, Skipped: true, SkipReason: "path outside project root"}, nil
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return FileReport{}, fmt.Errorf("reading %s: %w", relPath, err)
	}

	return c.indexContent(ctx, relPath, absPath, content, isCode)
}

// IndexContent runs the same five-step algorithm against content supplied
// directly by a caller (the MCP document CRUD tools), rather than read
// from disk. relPath is already the logical path the chunks are keyed
// under; callers supplying user content are responsible for picking a
// stable one.
func (c *Coordinator) IndexContent(ctx context.Context, relPath string, content []byte, isCode bool) (FileReport, error) {
	return c.indexContent(ctx, relPath, relPath, content, isCode)
}

func (c *Coordinator) indexContent(ctx context.Context, relPath, extPath string, content []byte, isCode bool) (FileReport, error) {
	chunks, err := c.computeChunks(relPath, extPath, content, isCode)
	if err != nil {
		if c.Metrics != nil {
			c.Metrics.ParseFailures.Inc()
		}
		return FileReport{Path: relPath, Skipped: true, SkipReason: err.Error()}, nil
	}

	for i := range chunks {
		chunks[i].FilePath = relPath
		chunks[i].AssignID()
		chunks[i].HashContent()
	}

	existing, err := c.scrollExisting(ctx, relPath)
	if err != nil {
		return FileReport{}, err
	}

	var toUpsert []chunk.Chunk
	var toRecover []uint64
	for i := range chunks {
		nc := &chunks[i]
		rec, found := existing[nc.LineStart]
		switch {
		case !found:
			toUpsert = append(toUpsert, *nc)
		case rec.hash == nc.ContentHash && !rec.isDeleted:
			// up to date; nothing to do.
		case rec.hash == nc.ContentHash && rec.isDeleted:
			toRecover = append(toRecover, rec.id)
		default:
			toUpsert = append(toUpsert, *nc)
		}
		delete(existing, nc.LineStart)
	}

	// Whatever remains in existing was not reproduced by this pass: its
	// line_start disappeared from the file's current chunk set.
	var toSoftDelete []uint64
	for _, rec := range existing {
		if !rec.isDeleted {
			toSoftDelete = append(toSoftDelete, rec.id)
		}
	}

	if err := c.embedChunks(ctx, toUpsert); err != nil {
		return FileReport{}, fmt.Errorf("embedding chunks for %s: %w", relPath, err)
	}

	report := FileReport{Path: relPath}

	if len(toUpsert) > 0 {
		result, err := c.Store.Upsert(ctx, toUpsert)
		if err != nil {
			return FileReport{}, apperr.Wrap(apperr.CodeVectorStoreUnavailable, "upserting chunks", err)
		}
		report.Upserted = len(result.SucceededIDs)
	}
	if len(toRecover) > 0 {
		result, err := c.Store.Recover(ctx, idFilter(toRecover))
		if err != nil {
			return FileReport{}, apperr.Wrap(apperr.CodeVectorStoreUnavailable, "recovering chunks", err)
		}
		report.Recovered = len(result.SucceededIDs)
	}
	if len(toSoftDelete) > 0 {
		result, err := c.Store.SoftDelete(ctx, idFilter(toSoftDelete))
		if err != nil {
			return FileReport{}, apperr.Wrap(apperr.CodeVectorStoreUnavailable, "soft-deleting orphaned chunks", err)
		}
		report.SoftDeleted = len(result.SucceededIDs)
	}

	if c.Metrics != nil {
		c.Metrics.FilesIndexed.Inc()
		for range toUpsert {
			c.Metrics.ChunksUpserted.Inc()
		}
		for range toSoftDelete {
			c.Metrics.ChunksDeleted.Inc()
		}
	}

	return report, nil
}

func (c *Coordinator) computeChunks(relPath, absPath string, content []byte, isCode bool) ([]chunk.Chunk, error) {
	if !isCode {
		return chunk.ChunkMarkdown(relPath, string(content), c.DocConfig), nil
	}
	ext := filepath.Ext(absPath)
	chunks, err := chunk.ChunkCode(relPath, ext, content)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeParseFailed, fmt.Sprintf("parsing %s", relPath), err)
	}
	return chunks, nil
}

func (c *Coordinator) scrollExisting(ctx context.Context, relPath string) (map[int]existingRecord, error) {
	existing := make(map[int]existingRecord)
	filter := store.Filter{FilePath: relPath, FilePathSet: true}
	cursor := ""
	for {
		page, err := c.Store.Scroll(ctx, filter, cursor, 500)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeVectorStoreUnavailable, "scrolling existing chunks", err)
		}
		for _, ch := range page.Chunks {
			existing[ch.LineStart] = existingRecord{id: ch.ID, hash: ch.ContentHash, isDeleted: ch.IsDeleted}
		}
		if page.Cursor == "" {
			break
		}
		cursor = page.Cursor
	}
	return existing, nil
}

// embedChunks fills in c.Vector for every chunk in place, batching the
// embedding call and keying the cache by each chunk's content hash.
func (c *Coordinator) embedChunks(ctx context.Context, chunks []chunk.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	hashes := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
		hashes[i] = ch.ContentHash
	}
	vectors, err := c.Embedder.EmbedWithHashes(ctx, texts, hashes, embed.ModePassage)
	if err != nil {
		return err
	}
	for i := range chunks {
		chunks[i].Vector = vectors[i]
	}
	return nil
}

// GetDocument returns every active chunk indexed under relPath, in
// line-start order, for the MCP get_document tool.
func (c *Coordinator) GetDocument(ctx context.Context, relPath string) ([]chunk.Chunk, error) {
	existing, err := c.scrollExisting(ctx, relPath)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(existing))
	for _, rec := range existing {
		if !rec.isDeleted {
			ids = append(ids, rec.id)
		}
	}
	chunks, _, err := c.Store.GetPoints(ctx, ids, false)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeVectorStoreUnavailable, "fetching document chunks", err)
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].LineStart < chunks[j].LineStart })
	return chunks, nil
}

// DeleteDocument removes every chunk indexed under relPath, soft (the
// default, reversible via recover) or hard per the caller's choice.
func (c *Coordinator) DeleteDocument(ctx context.Context, relPath string, hard bool) (int, error) {
	filter := store.Filter{FilePath: relPath, FilePathSet: true}
	if hard {
		existing, err := c.scrollExisting(ctx, relPath)
		if err != nil {
			return 0, err
		}
		ids := make([]uint64, 0, len(existing))
		for _, rec := range existing {
			ids = append(ids, rec.id)
		}
		result, err := c.Store.DeleteByIDs(ctx, ids)
		if err != nil {
			return 0, apperr.Wrap(apperr.CodeVectorStoreUnavailable, "deleting document chunks", err)
		}
		return len(result.SucceededIDs), nil
	}
	result, err := c.Store.SoftDelete(ctx, filter)
	if err != nil {
		return 0, apperr.Wrap(apperr.CodeVectorStoreUnavailable, "soft-deleting document chunks", err)
	}
	return len(result.SucceededIDs), nil
}

func idFilter(ids []uint64) store.Filter {
	set := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return store.Filter{IDs: set, IDsSet: true}
}

// OrphanReport summarizes an orphan sweep.
type OrphanReport struct {
	OrphanedFiles map[string]int
	TotalOrphaned int
	Pruned        bool
}

// OrphanSweep implements spec §4.9's orphan sweep: every active chunk
// whose file_path is not in liveFiles is reported, and soft-deleted only
// if prune is true (the default is a dry run).
func (c *Coordinator) OrphanSweep(ctx context.Context, liveFiles []string, prune bool) (OrphanReport, error) {
	live := make(map[string]bool, len(liveFiles))
	for _, f := range liveFiles {
		live[f] = true
	}

	report := OrphanReport{OrphanedFiles: make(map[string]int), Pruned: prune}
	var orphanIDs []uint64

	filter := store.Filter{IsDeleted: false, IsDeletedSet: true}
	cursor := ""
	for {
		page, err := c.Store.Scroll(ctx, filter, cursor, 1000)
		if err != nil {
			return OrphanReport{}, apperr.Wrap(apperr.CodeVectorStoreUnavailable, "scrolling for orphan sweep", err)
		}
		for _, ch := range page.Chunks {
			if live[ch.FilePath] {
				continue
			}
			report.OrphanedFiles[ch.FilePath]++
			report.TotalOrphaned++
			orphanIDs = append(orphanIDs, ch.ID)
		}
		if page.Cursor == "" {
			break
		}
		cursor = page.Cursor
	}

	if prune && len(orphanIDs) > 0 {
		if _, err := c.Store.SoftDelete(ctx, idFilter(orphanIDs)); err != nil {
			return OrphanReport{}, apperr.Wrap(apperr.CodeVectorStoreUnavailable, "pruning orphaned chunks", err)
		}
	}

	return report, nil
}

// SortedPaths returns report.OrphanedFiles' keys sorted, for stable CLI
// output.
func (r OrphanReport) SortedPaths() []string {
	paths := make([]string, 0, len(r.OrphanedFiles))
	for p := range r.OrphanedFiles {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
