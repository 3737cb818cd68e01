package mcpserver

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/open-rag/reporag/internal/manifest"
)

// registerManifestTools wires the C10 progressive-disclosure entry
// points: get_manifest (tier 1, every tool's brief) and get_tool_schema
// (tier 2, one tool's full schema and examples). Tier 3 is simply
// calling the tool itself.
func (s *Server) registerManifestTools() {
	s.mcp.AddTool(mcp.NewTool("get_manifest",
		mcp.WithDescription("List every available tool with a one-line brief, category, and use cases."),
	), s.handleGetManifest)

	s.mcp.AddTool(mcp.NewTool("get_tool_schema",
		mcp.WithDescription("Fetch one tool's full input schema and example invocations."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Tool name, as returned by get_manifest")),
	), s.handleGetToolSchema)

	s.manifest.Register(manifest.Entry{
		Brief: manifest.Brief{Name: "get_manifest", Brief: "List every tool's brief.", Category: "discovery",
			UseCases: []string{"discover what tools exist", "pick a tool before reading its schema"}},
		Schema: manifest.Schema{Name: "get_manifest", InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
			Examples: []manifest.Example{
				{Description: "list all tools", Arguments: map[string]any{}},
			}},
	})
	s.manifest.Register(manifest.Entry{
		Brief: manifest.Brief{Name: "get_tool_schema", Brief: "Fetch one tool's full schema.", Category: "discovery",
			UseCases: []string{"read a tool's argument shape before calling it", "see example invocations"}},
		Schema: manifest.Schema{Name: "get_tool_schema", InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"name": map[string]any{"type": "string"}},
			"required":   []string{"name"},
		}, Examples: []manifest.Example{
			{Description: "schema for search", Arguments: map[string]any{"name": "search"}},
			{Description: "schema for add_points", Arguments: map[string]any{"name": "add_points"}},
		}},
	})
}

func (s *Server) handleGetManifest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	briefs := s.manifest.GetManifest()
	s.recordToolCall("get_manifest", "success")
	return toolResult(ok("get_manifest", map[string]any{"tools": briefs}, len(briefs), start))
}

func (s *Server) handleGetToolSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	args, ok := argsOf(req.Params.Arguments)
	if !ok {
		s.recordToolCall("get_tool_schema", "error")
		return toolResult(fail("get_tool_schema", apperrValidation("invalid arguments format"), start))
	}
	name, ok := stringArg(args, "name")
	if !ok || name == "" {
		s.recordToolCall("get_tool_schema", "error")
		return toolResult(fail("get_tool_schema", apperrValidation("name is required"), start))
	}

	schema, err := s.manifest.GetToolSchema(name)
	if err != nil {
		s.recordToolCall("get_tool_schema", "error")
		return toolResult(fail("get_tool_schema", apperrValidation(err.Error()), start))
	}

	s.recordToolCall("get_tool_schema", "success")
	return toolResult(ok("get_tool_schema", schema, 1, start))
}
