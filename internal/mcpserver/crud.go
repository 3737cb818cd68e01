package mcpserver

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/open-rag/reporag/internal/apperr"
	"github.com/open-rag/reporag/internal/chunk"
	"github.com/open-rag/reporag/internal/embed"
	"github.com/open-rag/reporag/internal/manifest"
	"github.com/open-rag/reporag/internal/store"
)

// maxCRUDBatch bounds a single add/update/delete/get call, per spec §5's
// CodeBatchLimitExceeded.
const maxCRUDBatch = 1000

func (s *Server) registerCRUDTools() {
	s.mcp.AddTool(mcp.NewTool("add_points",
		mcp.WithDescription("Embed and insert new chunks directly into a collection."),
		mcp.WithString("collection", mcp.Description("Target collection: cloud or local; defaults to the primary collection")),
		mcp.WithArray("points", mcp.Required(), mcp.Description("Array of {content, file_path, line_start, line_end, content_type, language, section}")),
	), s.handleAddPoints)

	s.mcp.AddTool(mcp.NewTool("update_points",
		mcp.WithDescription("Re-embed and overwrite existing chunks by id."),
		mcp.WithString("collection", mcp.Description("Target collection: cloud or local")),
		mcp.WithArray("points", mcp.Required(), mcp.Description("Array of {id, content, file_path, line_start, line_end, content_type, language, section}")),
	), s.handleUpdatePoints)

	s.mcp.AddTool(mcp.NewTool("delete_points",
		mcp.WithDescription("Delete chunks by id, soft by default."),
		mcp.WithString("collection", mcp.Description("Target collection: cloud or local")),
		mcp.WithArray("ids", mcp.Required(), mcp.Description("Chunk ids to delete")),
		mcp.WithBoolean("soft_delete", mcp.Description("true (default) marks is_deleted; false removes permanently")),
		mcp.WithBoolean("dry_run", mcp.Description("true reports what would be deleted without writing")),
	), s.handleDeletePoints)

	s.mcp.AddTool(mcp.NewTool("get_points",
		mcp.WithDescription("Fetch chunks by id."),
		mcp.WithString("collection", mcp.Description("Target collection: cloud or local")),
		mcp.WithArray("ids", mcp.Required(), mcp.Description("Chunk ids to fetch")),
		mcp.WithBoolean("with_vectors", mcp.Description("true includes embedding vectors in the response")),
	), s.handleGetPoints)

	s.mcp.AddTool(mcp.NewTool("query_points",
		mcp.WithDescription("Run a raw vector search against one collection, bypassing hybrid retrieval and reranking."),
		mcp.WithString("collection", mcp.Description("Target collection: cloud or local")),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to embed and search for")),
		mcp.WithString("content_type", mcp.Description("Restrict to one content type")),
		mcp.WithString("language", mcp.Description("Restrict to one language")),
		mcp.WithNumber("top_k", mcp.Description("Maximum number of results")),
	), s.handleQueryPoints)

	s.mcp.AddTool(mcp.NewTool("add_document",
		mcp.WithDescription("Chunk and index a document supplied inline, as if it were a new file."),
		mcp.WithString("collection", mcp.Description("Target collection: cloud or local; defaults to the primary collection")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Logical file path the chunks are keyed under")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full document content")),
		mcp.WithBoolean("is_code", mcp.Description("true chunks as code rather than Markdown")),
	), s.handleAddDocument)

	s.mcp.AddTool(mcp.NewTool("update_document",
		mcp.WithDescription("Re-chunk and incrementally reconcile a document's content, same as a file re-index."),
		mcp.WithString("collection", mcp.Description("Target collection: cloud or local")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Logical file path the chunks are keyed under")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full updated document content")),
		mcp.WithBoolean("is_code", mcp.Description("true chunks as code rather than Markdown")),
	), s.handleUpdateDocument)

	s.mcp.AddTool(mcp.NewTool("delete_document",
		mcp.WithDescription("Delete every chunk indexed under a document path."),
		mcp.WithString("collection", mcp.Description("Target collection: cloud or local")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Logical file path to delete")),
		mcp.WithBoolean("hard", mcp.Description("true deletes permanently instead of soft-deleting")),
	), s.handleDeleteDocument)

	s.mcp.AddTool(mcp.NewTool("get_document",
		mcp.WithDescription("Fetch every active chunk indexed under a document path, in line order."),
		mcp.WithString("collection", mcp.Description("Target collection: cloud or local")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Logical file path to fetch")),
	), s.handleGetDocument)

	s.mcp.AddTool(mcp.NewTool("get_collection_stats",
		mcp.WithDescription("Report active and soft-deleted chunk counts for a collection."),
		mcp.WithString("collection", mcp.Description("Target collection: cloud or local")),
	), s.handleGetCollectionStats)

	registerCRUDManifest(s.manifest)
}

func (s *Server) handleAddPoints(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.upsertPointsHandler(ctx, req, "add_points", false)
}

func (s *Server) handleUpdatePoints(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.upsertPointsHandler(ctx, req, "update_points", true)
}

func (s *Server) upsertPointsHandler(ctx context.Context, req mcp.CallToolRequest, op string, requireID bool) (*mcp.CallToolResult, error) {
	start := time.Now()
	args, ok := argsOf(req.Params.Arguments)
	if !ok {
		s.recordToolCall(op, "error")
		return toolResult(fail(op, apperrValidation("invalid arguments format"), start))
	}
	adapter, err := s.storeNamed(collectionArg(args))
	if err != nil {
		s.recordToolCall(op, "error")
		return toolResult(fail(op, apperr.New(apperr.CodeValidation, err.Error()), start))
	}
	raw, ok := args["points"].([]any)
	if !ok || len(raw) == 0 {
		s.recordToolCall(op, "error")
		return toolResult(fail(op, apperrValidation("points must be a non-empty array"), start))
	}
	if len(raw) > maxCRUDBatch {
		s.recordToolCall(op, "error")
		return toolResult(fail(op, apperr.New(apperr.CodeBatchLimitExceeded, "batch exceeds the maximum of 1000 points"), start))
	}

	chunks := make([]chunk.Chunk, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			s.recordToolCall(op, "error")
			return toolResult(fail(op, apperrValidation("each point must be an object"), start))
		}
		c := chunkFromArgs(m)
		if requireID {
			idVal, ok := m["id"].(float64)
			if !ok {
				s.recordToolCall(op, "error")
				return toolResult(fail(op, apperrValidation("update_points requires an id on every point"), start))
			}
			c.ID = uint64(idVal)
		} else {
			c.AssignID()
		}
		c.HashContent()
		chunks = append(chunks, c)
	}

	texts := make([]string, len(chunks))
	hashes := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
		hashes[i] = c.ContentHash
	}
	vectors, err := s.embedder.Embed(ctx, texts, embed.ModePassage)
	if err != nil {
		s.recordToolCall(op, "error")
		return toolResult(fail(op, apperr.Wrap(apperr.CodeEmbedFailed, "embedding points", err), start))
	}
	for i := range chunks {
		chunks[i].Vector = vectors[i]
	}

	result, err := adapter.Upsert(ctx, chunks)
	if err != nil {
		s.recordToolCall(op, "error")
		return toolResult(fail(op, err, start))
	}

	s.recordToolCall(op, "success")
	return toolResult(ok(op, map[string]any{
		"succeeded_ids": result.SucceededIDs,
		"errors":        result.Errors,
	}, len(result.SucceededIDs), start))
}

func (s *Server) handleDeletePoints(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	args, ok := argsOf(req.Params.Arguments)
	if !ok {
		s.recordToolCall("delete_points", "error")
		return toolResult(fail("delete_points", apperrValidation("invalid arguments format"), start))
	}
	adapter, err := s.storeNamed(collectionArg(args))
	if err != nil {
		s.recordToolCall("delete_points", "error")
		return toolResult(fail("delete_points", apperr.New(apperr.CodeValidation, err.Error()), start))
	}
	ids := idsArg(args, "ids")
	if len(ids) == 0 {
		s.recordToolCall("delete_points", "error")
		return toolResult(fail("delete_points", apperrValidation("ids must be a non-empty array"), start))
	}
	soft := boolArg(args, "soft_delete", true)
	dryRun := boolArg(args, "dry_run", false)

	if dryRun {
		s.recordToolCall("delete_points", "success")
		return toolResult(ok("delete_points", map[string]any{
			"would_delete": ids,
			"soft_delete":  soft,
			"dry_run":      true,
		}, len(ids), start))
	}

	filter := store.Filter{IDs: toIDSet(ids), IDsSet: true}
	var result store.BatchResult
	if soft {
		result, err = adapter.SoftDelete(ctx, filter)
	} else {
		result, err = adapter.DeleteByIDs(ctx, ids)
	}
	if err != nil {
		s.recordToolCall("delete_points", "error")
		return toolResult(fail("delete_points", err, start))
	}

	s.recordToolCall("delete_points", "success")
	return toolResult(ok("delete_points", map[string]any{
		"succeeded_ids": result.SucceededIDs,
		"errors":        result.Errors,
		"soft_delete":   soft,
	}, len(result.SucceededIDs), start))
}

func (s *Server) handleGetPoints(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	args, ok := argsOf(req.Params.Arguments)
	if !ok {
		s.recordToolCall("get_points", "error")
		return toolResult(fail("get_points", apperrValidation("invalid arguments format"), start))
	}
	adapter, err := s.storeNamed(collectionArg(args))
	if err != nil {
		s.recordToolCall("get_points", "error")
		return toolResult(fail("get_points", apperr.New(apperr.CodeValidation, err.Error()), start))
	}
	ids := idsArg(args, "ids")
	if len(ids) == 0 {
		s.recordToolCall("get_points", "error")
		return toolResult(fail("get_points", apperrValidation("ids must be a non-empty array"), start))
	}
	withVectors := boolArg(args, "with_vectors", false)

	chunks, batchErrs, err := adapter.GetPoints(ctx, ids, withVectors)
	if err != nil {
		s.recordToolCall("get_points", "error")
		return toolResult(fail("get_points", err, start))
	}

	s.recordToolCall("get_points", "success")
	return toolResult(ok("get_points", map[string]any{
		"points": chunks,
		"errors": batchErrs,
	}, len(chunks), start))
}

func (s *Server) handleQueryPoints(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	args, ok := argsOf(req.Params.Arguments)
	if !ok {
		s.recordToolCall("query_points", "error")
		return toolResult(fail("query_points", apperrValidation("invalid arguments format"), start))
	}
	adapter, err := s.storeNamed(collectionArg(args))
	if err != nil {
		s.recordToolCall("query_points", "error")
		return toolResult(fail("query_points", apperr.New(apperr.CodeValidation, err.Error()), start))
	}
	query, ok := stringArg(args, "query")
	if !ok || query == "" {
		s.recordToolCall("query_points", "error")
		return toolResult(fail("query_points", apperrValidation("query is required"), start))
	}

	filter := store.Filter{}
	if ct, ok := stringArg(args, "content_type"); ok && ct != "" {
		filter.ContentType = chunk.ContentType(ct)
		filter.ContentTypeSet = true
	}
	if lang, ok := stringArg(args, "language"); ok && lang != "" {
		filter.Language = lang
		filter.LanguageSet = true
	}
	topK := intArg(args, "top_k", 10)

	vectors, err := s.embedder.Embed(ctx, []string{query}, embed.ModeQuery)
	if err != nil {
		s.recordToolCall("query_points", "error")
		return toolResult(fail("query_points", apperr.Wrap(apperr.CodeEmbedFailed, "embedding query", err), start))
	}

	results, err := adapter.VectorSearch(ctx, vectors[0], filter, topK, false)
	if err != nil {
		s.recordToolCall("query_points", "error")
		return toolResult(fail("query_points", err, start))
	}

	s.recordToolCall("query_points", "success")
	return toolResult(ok("query_points", map[string]any{"results": results}, len(results), start))
}

func (s *Server) handleAddDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.documentWriteHandler(ctx, req, "add_document")
}

func (s *Server) handleUpdateDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.documentWriteHandler(ctx, req, "update_document")
}

func (s *Server) documentWriteHandler(ctx context.Context, req mcp.CallToolRequest, op string) (*mcp.CallToolResult, error) {
	start := time.Now()
	args, ok := argsOf(req.Params.Arguments)
	if !ok {
		s.recordToolCall(op, "error")
		return toolResult(fail(op, apperrValidation("invalid arguments format"), start))
	}
	coord, err := s.coordinatorNamed(collectionArg(args))
	if err != nil {
		s.recordToolCall(op, "error")
		return toolResult(fail(op, apperr.New(apperr.CodeValidation, err.Error()), start))
	}
	path, ok := stringArg(args, "path")
	if !ok || path == "" {
		s.recordToolCall(op, "error")
		return toolResult(fail(op, apperrValidation("path is required"), start))
	}
	content, ok := stringArg(args, "content")
	if !ok {
		s.recordToolCall(op, "error")
		return toolResult(fail(op, apperrValidation("content is required"), start))
	}
	isCode := boolArg(args, "is_code", false)

	report, err := coord.IndexContent(ctx, path, []byte(content), isCode)
	if err != nil {
		s.recordToolCall(op, "error")
		return toolResult(fail(op, err, start))
	}
	if report.Skipped {
		s.recordToolCall(op, "error")
		return toolResult(fail(op, apperr.New(apperr.CodeParseFailed, report.SkipReason), start))
	}

	s.recordToolCall(op, "success")
	return toolResult(ok(op, report, report.Upserted+report.Recovered, start))
}

func (s *Server) handleDeleteDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	args, ok := argsOf(req.Params.Arguments)
	if !ok {
		s.recordToolCall("delete_document", "error")
		return toolResult(fail("delete_document", apperrValidation("invalid arguments format"), start))
	}
	coord, err := s.coordinatorNamed(collectionArg(args))
	if err != nil {
		s.recordToolCall("delete_document", "error")
		return toolResult(fail("delete_document", apperr.New(apperr.CodeValidation, err.Error()), start))
	}
	path, ok := stringArg(args, "path")
	if !ok || path == "" {
		s.recordToolCall("delete_document", "error")
		return toolResult(fail("delete_document", apperrValidation("path is required"), start))
	}
	hard := boolArg(args, "hard", false)

	count, err := coord.DeleteDocument(ctx, path, hard)
	if err != nil {
		s.recordToolCall("delete_document", "error")
		return toolResult(fail("delete_document", err, start))
	}

	s.recordToolCall("delete_document", "success")
	return toolResult(ok("delete_document", map[string]any{"deleted": count, "hard": hard}, count, start))
}

func (s *Server) handleGetDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	args, ok := argsOf(req.Params.Arguments)
	if !ok {
		s.recordToolCall("get_document", "error")
		return toolResult(fail("get_document", apperrValidation("invalid arguments format"), start))
	}
	coord, err := s.coordinatorNamed(collectionArg(args))
	if err != nil {
		s.recordToolCall("get_document", "error")
		return toolResult(fail("get_document", apperr.New(apperr.CodeValidation, err.Error()), start))
	}
	path, ok := stringArg(args, "path")
	if !ok || path == "" {
		s.recordToolCall("get_document", "error")
		return toolResult(fail("get_document", apperrValidation("path is required"), start))
	}

	chunks, err := coord.GetDocument(ctx, path)
	if err != nil {
		s.recordToolCall("get_document", "error")
		return toolResult(fail("get_document", err, start))
	}

	s.recordToolCall("get_document", "success")
	return toolResult(ok("get_document", map[string]any{"chunks": chunks}, len(chunks), start))
}

func (s *Server) handleGetCollectionStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	args, _ := argsOf(req.Params.Arguments)
	adapter, err := s.storeNamed(collectionArg(args))
	if err != nil {
		s.recordToolCall("get_collection_stats", "error")
		return toolResult(fail("get_collection_stats", apperr.New(apperr.CodeValidation, err.Error()), start))
	}

	stats, err := adapter.Stats(ctx)
	if err != nil {
		s.recordToolCall("get_collection_stats", "error")
		return toolResult(fail("get_collection_stats", err, start))
	}

	s.recordToolCall("get_collection_stats", "success")
	return toolResult(ok("get_collection_stats", stats, 1, start))
}

func collectionArg(args map[string]any) string {
	if args == nil {
		return ""
	}
	name, _ := stringArg(args, "collection")
	return name
}

func idsArg(args map[string]any, key string) []uint64 {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	ids := make([]uint64, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(float64); ok {
			ids = append(ids, uint64(f))
		}
	}
	return ids
}

func toIDSet(ids []uint64) map[uint64]bool {
	set := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func chunkFromArgs(m map[string]any) chunk.Chunk {
	c := chunk.Chunk{}
	if v, ok := m["content"].(string); ok {
		c.Content = v
	}
	if v, ok := m["file_path"].(string); ok {
		c.FilePath = v
	}
	if v, ok := m["line_start"].(float64); ok {
		c.LineStart = int(v)
	}
	if v, ok := m["line_end"].(float64); ok {
		c.LineEnd = int(v)
	}
	if v, ok := m["content_type"].(string); ok {
		c.ContentType = chunk.ContentType(v)
	} else {
		c.ContentType = chunk.ContentText
	}
	if v, ok := m["language"].(string); ok {
		c.Language = v
	}
	if v, ok := m["section"].(string); ok {
		c.Section = v
	}
	return c
}

func registerCRUDManifest(m *manifest.Manifest) {
	m.Register(manifest.Entry{
		Brief: manifest.Brief{Name: "add_points", Brief: "Embed and insert new chunks.", Category: "crud",
			UseCases: []string{"insert a handful of precomputed chunks", "seed a collection from another source"}},
		Schema: manifest.Schema{Name: "add_points", InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"collection": map[string]any{"type": "string"}, "points": map[string]any{"type": "array"}},
			"required":   []string{"points"},
		}, Examples: []manifest.Example{
			{Description: "add one chunk", Arguments: map[string]any{"points": []any{map[string]any{"content": "text", "file_path": "a.md", "line_start": 1}}}},
			{Description: "add to local collection", Arguments: map[string]any{"collection": "local", "points": []any{}}},
		}},
	})
	m.Register(manifest.Entry{
		Brief: manifest.Brief{Name: "update_points", Brief: "Re-embed and overwrite chunks by id.", Category: "crud",
			UseCases: []string{"correct a chunk's content", "refresh a stale embedding"}},
		Schema: manifest.Schema{Name: "update_points", InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"collection": map[string]any{"type": "string"}, "points": map[string]any{"type": "array"}},
			"required":   []string{"points"},
		}, Examples: []manifest.Example{
			{Description: "update one chunk", Arguments: map[string]any{"points": []any{map[string]any{"id": 1, "content": "new text"}}}},
			{Description: "update two chunks", Arguments: map[string]any{"points": []any{map[string]any{"id": 1}, map[string]any{"id": 2}}}},
		}},
	})
	m.Register(manifest.Entry{
		Brief: manifest.Brief{Name: "delete_points", Brief: "Delete chunks by id, soft by default.", Category: "crud",
			UseCases: []string{"remove obsolete chunks", "preview a deletion before committing"}},
		Schema: manifest.Schema{Name: "delete_points", InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"ids": map[string]any{"type": "array"}, "soft_delete": map[string]any{"type": "boolean"}, "dry_run": map[string]any{"type": "boolean"}},
			"required":   []string{"ids"},
		}, Examples: []manifest.Example{
			{Description: "soft delete", Arguments: map[string]any{"ids": []any{1, 2}}},
			{Description: "dry run hard delete", Arguments: map[string]any{"ids": []any{1}, "soft_delete": false, "dry_run": true}},
		}},
	})
	m.Register(manifest.Entry{
		Brief: manifest.Brief{Name: "get_points", Brief: "Fetch chunks by id.", Category: "crud",
			UseCases: []string{"inspect a chunk's payload", "verify an upsert landed"}},
		Schema: manifest.Schema{Name: "get_points", InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"ids": map[string]any{"type": "array"}, "with_vectors": map[string]any{"type": "boolean"}},
			"required":   []string{"ids"},
		}, Examples: []manifest.Example{
			{Description: "fetch one", Arguments: map[string]any{"ids": []any{1}}},
			{Description: "fetch with vectors", Arguments: map[string]any{"ids": []any{1, 2}, "with_vectors": true}},
		}},
	})
	m.Register(manifest.Entry{
		Brief: manifest.Brief{Name: "query_points", Brief: "Raw vector search, no reranking.", Category: "crud",
			UseCases: []string{"debug the vector leg in isolation", "compare raw vs reranked ordering"}},
		Schema: manifest.Schema{Name: "query_points", InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"query": map[string]any{"type": "string"}, "top_k": map[string]any{"type": "number"}},
			"required":   []string{"query"},
		}, Examples: []manifest.Example{
			{Description: "plain vector query", Arguments: map[string]any{"query": "error taxonomy"}},
			{Description: "limited top_k", Arguments: map[string]any{"query": "worker pool", "top_k": 3}},
		}},
	})
	m.Register(manifest.Entry{
		Brief: manifest.Brief{Name: "add_document", Brief: "Chunk and index inline document content.", Category: "crud",
			UseCases: []string{"index content that did not come from disk", "ingest a generated document"}},
		Schema: manifest.Schema{Name: "add_document", InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"collection": map[string]any{"type": "string"}, "path": map[string]any{"type": "string"}, "content": map[string]any{"type": "string"}, "is_code": map[string]any{"type": "boolean"}},
			"required":   []string{"path", "content"},
		}, Examples: []manifest.Example{
			{Description: "add a markdown doc", Arguments: map[string]any{"path": "notes/generated.md", "content": "# Title\n\nbody"}},
			{Description: "add to local collection", Arguments: map[string]any{"collection": "local", "path": "gen/util.go", "content": "package gen", "is_code": true}},
		}},
	})
	m.Register(manifest.Entry{
		Brief: manifest.Brief{Name: "update_document", Brief: "Incrementally reconcile a document's content.", Category: "crud",
			UseCases: []string{"apply an edited version of a document", "refresh a previously added document"}},
		Schema: manifest.Schema{Name: "update_document", InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"collection": map[string]any{"type": "string"}, "path": map[string]any{"type": "string"}, "content": map[string]any{"type": "string"}, "is_code": map[string]any{"type": "boolean"}},
			"required":   []string{"path", "content"},
		}, Examples: []manifest.Example{
			{Description: "update markdown doc", Arguments: map[string]any{"path": "notes/generated.md", "content": "# Title\n\nnew body"}},
			{Description: "update code file in local collection", Arguments: map[string]any{"collection": "local", "path": "gen/util.go", "content": "package gen\n\n// v2", "is_code": true}},
		}},
	})
	m.Register(manifest.Entry{
		Brief: manifest.Brief{Name: "delete_document", Brief: "Delete every chunk under a document path.", Category: "crud",
			UseCases: []string{"remove a retired document", "permanently purge a document"}},
		Schema: manifest.Schema{Name: "delete_document", InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"collection": map[string]any{"type": "string"}, "path": map[string]any{"type": "string"}, "hard": map[string]any{"type": "boolean"}},
			"required":   []string{"path"},
		}, Examples: []manifest.Example{
			{Description: "soft delete", Arguments: map[string]any{"path": "notes/generated.md"}},
			{Description: "hard delete from local collection", Arguments: map[string]any{"collection": "local", "path": "notes/generated.md", "hard": true}},
		}},
	})
	m.Register(manifest.Entry{
		Brief: manifest.Brief{Name: "get_document", Brief: "Fetch a document's active chunks in order.", Category: "crud",
			UseCases: []string{"review a document's indexed chunks", "verify a reconciliation result"}},
		Schema: manifest.Schema{Name: "get_document", InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"collection": map[string]any{"type": "string"}, "path": map[string]any{"type": "string"}},
			"required":   []string{"path"},
		}, Examples: []manifest.Example{
			{Description: "fetch a document", Arguments: map[string]any{"path": "notes/generated.md"}},
			{Description: "fetch a code file from local collection", Arguments: map[string]any{"collection": "local", "path": "gen/util.go"}},
		}},
	})
	m.Register(manifest.Entry{
		Brief: manifest.Brief{Name: "get_collection_stats", Brief: "Report active and deleted chunk counts.", Category: "crud",
			UseCases: []string{"check collection health", "confirm an orphan sweep's effect"}},
		Schema: manifest.Schema{Name: "get_collection_stats", InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"collection": map[string]any{"type": "string"}},
		}, Examples: []manifest.Example{
			{Description: "default collection", Arguments: map[string]any{}},
			{Description: "named collection", Arguments: map[string]any{"collection": "local"}},
		}},
	})
}
