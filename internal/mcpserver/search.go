package mcpserver

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/open-rag/reporag/internal/apperr"
	"github.com/open-rag/reporag/internal/chunk"
	"github.com/open-rag/reporag/internal/classify"
	"github.com/open-rag/reporag/internal/manifest"
	"github.com/open-rag/reporag/internal/store"
	"github.com/open-rag/reporag/internal/synthesize"
)

func (s *Server) registerSearchTools() {
	s.mcp.AddTool(mcp.NewTool("search",
		mcp.WithDescription("Run hybrid semantic+lexical search over indexed chunks and return raw, reranked results with scores."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural language or keyword search query")),
		mcp.WithString("content_type", mcp.Description("Restrict results to one content type: text, list, table, or code")),
		mcp.WithString("language", mcp.Description("Restrict results to one programming language")),
		mcp.WithNumber("top_k", mcp.Description("Maximum number of results to return")),
	), s.handleSearch)

	s.mcp.AddTool(mcp.NewTool("ask",
		mcp.WithDescription("Answer a question by retrieving and synthesizing relevant chunks, with citations."),
		mcp.WithString("question", mcp.Required(), mcp.Description("The question to answer")),
	), s.handleAsk)

	s.mcp.AddTool(mcp.NewTool("explain",
		mcp.WithDescription("Explain a topic; behaves like ask with the intent forced to explanation."),
		mcp.WithString("topic", mcp.Required(), mcp.Description("The topic to explain")),
	), s.handleExplain)

	s.manifest.Register(manifest.Entry{
		Brief: manifest.Brief{Name: "search", Brief: "Hybrid search returning raw scored chunks.", Category: "retrieval",
			UseCases: []string{"find code or docs by topic", "filter by content type or language"}},
		Schema: manifest.Schema{Name: "search", InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query":        map[string]any{"type": "string"},
				"content_type": map[string]any{"type": "string"},
				"language":     map[string]any{"type": "string"},
				"top_k":        map[string]any{"type": "number"},
			},
			"required": []string{"query"},
		}, Examples: []manifest.Example{
			{Description: "plain search", Arguments: map[string]any{"query": "how does chunking work"}},
			{Description: "code only", Arguments: map[string]any{"query": "parse markdown", "content_type": "code"}},
		}},
	})
	s.manifest.Register(manifest.Entry{
		Brief: manifest.Brief{Name: "ask", Brief: "Answer a question with synthesized text and citations.", Category: "synthesis",
			UseCases: []string{"ask a factual question", "ask how something works"}},
		Schema: manifest.Schema{Name: "ask", InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"question": map[string]any{"type": "string"}},
			"required":   []string{"question"},
		}, Examples: []manifest.Example{
			{Description: "how question", Arguments: map[string]any{"question": "how does the hybrid retriever merge legs"}},
			{Description: "factual question", Arguments: map[string]any{"question": "what is the default search_top_k"}},
		}},
	})
	s.manifest.Register(manifest.Entry{
		Brief: manifest.Brief{Name: "explain", Brief: "Explain a topic; intent forced to explanation.", Category: "synthesis",
			UseCases: []string{"explain a subsystem", "explain a design decision"}},
		Schema: manifest.Schema{Name: "explain", InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"topic": map[string]any{"type": "string"}},
			"required":   []string{"topic"},
		}, Examples: []manifest.Example{
			{Description: "explain retrieval", Arguments: map[string]any{"topic": "the hybrid retriever"}},
			{Description: "explain chunking", Arguments: map[string]any{"topic": "markdown chunking"}},
		}},
	})
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	args, ok := argsOf(req.Params.Arguments)
	if !ok {
		s.recordToolCall("search", "error")
		return toolResult(fail("search", apperrValidation("invalid arguments format"), start))
	}
	query, ok := stringArg(args, "query")
	if !ok || query == "" {
		s.recordToolCall("search", "error")
		return toolResult(fail("search", apperrValidation("query is required"), start))
	}

	result := s.classifier.Classify(query)
	filter := store.Filter{}
	if ct, ok := stringArg(args, "content_type"); ok && ct != "" {
		filter.ContentType = chunk.ContentType(ct)
		filter.ContentTypeSet = true
	} else if ct, has := result.Hints.ContentTypeFilter(); has {
		filter.ContentType = ct
		filter.ContentTypeSet = true
	}
	if lang, ok := stringArg(args, "language"); ok && lang != "" {
		filter.Language = lang
		filter.LanguageSet = true
	}

	candidates, err := s.retriever.Retrieve(ctx, query, result.Hints, filter)
	if err != nil {
		s.recordToolCall("search", "error")
		return toolResult(fail("search", err, start))
	}

	topK := intArg(args, "top_k", 0)
	reranked, err := s.reranker.Rerank(ctx, query, candidates)
	if err != nil {
		s.recordToolCall("search", "error")
		return toolResult(fail("search", err, start))
	}
	if topK > 0 && len(reranked) > topK {
		reranked = reranked[:topK]
	}

	s.recordToolCall("search", "success")
	return toolResult(ok("search", map[string]any{
		"results": reranked,
		"intent":  result.Intent,
	}, len(reranked), start))
}

func (s *Server) handleAsk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	args, ok := argsOf(req.Params.Arguments)
	if !ok {
		s.recordToolCall("ask", "error")
		return toolResult(fail("ask", apperrValidation("invalid arguments format"), start))
	}
	question, ok := stringArg(args, "question")
	if !ok || question == "" {
		s.recordToolCall("ask", "error")
		return toolResult(fail("ask", apperrValidation("question is required"), start))
	}

	result := s.classifier.Classify(question)
	synth, err := s.runSynthesisPipeline(ctx, question, result)
	if err != nil {
		s.recordToolCall("ask", "error")
		return toolResult(fail("ask", err, start))
	}

	s.recordToolCall("ask", "success")
	return toolResult(ok("ask", map[string]any{
		"answer":     synth.Answer,
		"citations":  synth.Citations,
		"intent":     result.Intent,
		"confidence": result.Confidence,
	}, len(synth.Citations), start))
}

func (s *Server) handleExplain(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	args, ok := argsOf(req.Params.Arguments)
	if !ok {
		s.recordToolCall("explain", "error")
		return toolResult(fail("explain", apperrValidation("invalid arguments format"), start))
	}
	topic, ok := stringArg(args, "topic")
	if !ok || topic == "" {
		s.recordToolCall("explain", "error")
		return toolResult(fail("explain", apperrValidation("topic is required"), start))
	}

	result := classify.Result{
		Intent:     classify.IntentExplanation,
		Confidence: 1.0,
		Hints:      classify.Hints{ExpandSections: true, TopK: 20},
	}
	synth, err := s.runSynthesisPipeline(ctx, topic, result)
	if err != nil {
		s.recordToolCall("explain", "error")
		return toolResult(fail("explain", err, start))
	}

	s.recordToolCall("explain", "success")
	return toolResult(ok("explain", map[string]any{
		"answer":    synth.Answer,
		"citations": synth.Citations,
	}, len(synth.Citations), start))
}

// runSynthesisPipeline runs C6->C7->C8 for ask/explain, handling
// comparison's dual-subquery fan-out (spec §4.6/§4.8).
func (s *Server) runSynthesisPipeline(ctx context.Context, query string, result classify.Result) (synthesize.Result, error) {
	if result.Intent == classify.IntentComparison && len(result.Hints.Operands) == 2 {
		groups := make([]synthesize.Group, 0, 2)
		for _, operand := range result.Hints.Operands {
			candidates, err := s.retriever.Retrieve(ctx, operand, result.Hints, store.Filter{})
			if err != nil {
				return synthesize.Result{}, err
			}
			reranked, err := s.reranker.Rerank(ctx, operand, candidates)
			if err != nil {
				return synthesize.Result{}, err
			}
			groups = append(groups, synthesize.Group{Label: operand, Chunks: reranked})
		}
		return synthesize.Synthesize(result.Intent, query, groups)
	}

	candidates, err := s.retriever.Retrieve(ctx, query, result.Hints, store.Filter{})
	if err != nil {
		return synthesize.Result{}, err
	}
	reranked, err := s.reranker.Rerank(ctx, query, candidates)
	if err != nil {
		return synthesize.Result{}, err
	}
	return synthesize.Synthesize(result.Intent, query, []synthesize.Group{{Chunks: reranked}})
}
