// Package mcpserver implements the tool surface (C11): search/ask/explain,
// vector and document CRUD, and the manifest tools, wired over
// mark3labs/mcp-go's stdio JSON-RPC transport per spec §4.11, grounded on
// the teacher's internal/mcp package (tool registration factories,
// uniform JSON-text results).
package mcpserver

import (
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/open-rag/reporag/internal/apperr"
)

// ErrorDetail is one entry of an envelope's errors array.
type ErrorDetail struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Details     any      `json:"details,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Metadata is the envelope's bookkeeping block.
type Metadata struct {
	Count     int    `json:"count"`
	TimingMs  int64  `json:"timing_ms"`
	Operation string `json:"operation"`
}

// Envelope is the uniform response shape every tool returns (spec §4.11).
type Envelope struct {
	Success  bool          `json:"success"`
	Data     any           `json:"data,omitempty"`
	Metadata Metadata      `json:"metadata"`
	Errors   []ErrorDetail `json:"errors,omitempty"`
}

func ok(operation string, data any, count int, start time.Time) Envelope {
	return Envelope{
		Success:  true,
		Data:     data,
		Metadata: Metadata{Count: count, TimingMs: time.Since(start).Milliseconds(), Operation: operation},
	}
}

func fail(operation string, err error, start time.Time) Envelope {
	detail := ErrorDetail{Code: string(apperr.CodeOf(err)), Message: err.Error()}
	if ae, ok := err.(*apperr.Error); ok {
		detail.Message = ae.Message
		if len(ae.Details) > 0 {
			detail.Details = ae.Details
		}
		detail.Suggestions = ae.Suggestions
	}
	return Envelope{
		Success:  false,
		Metadata: Metadata{TimingMs: time.Since(start).Milliseconds(), Operation: operation},
		Errors:   []ErrorDetail{detail},
	}
}

// toolResult marshals an Envelope to the mcp-go JSON-text convention.
func toolResult(env Envelope) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// argsOf extracts the request's argument map, per the teacher's
// convention that request.Params.Arguments arrives as map[string]any.
func argsOf(raw any) (map[string]any, bool) {
	m, ok := raw.(map[string]any)
	return m, ok
}

func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key].(string)
	return v, ok
}

func intArg(args map[string]any, key string, def int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return def
}

func boolArg(args map[string]any, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

// apperrValidation builds a CodeValidation error for a malformed or
// missing tool argument.
func apperrValidation(message string) error {
	return apperr.New(apperr.CodeValidation, message)
}

func stringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
