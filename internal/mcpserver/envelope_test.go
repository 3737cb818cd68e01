package mcpserver

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-rag/reporag/internal/apperr"
)

func TestOk_PopulatesMetadataAndData(t *testing.T) {
	start := time.Now().Add(-5 * time.Millisecond)
	env := ok("search", []string{"a", "b"}, 2, start)

	assert.True(t, env.Success)
	assert.Equal(t, "search", env.Metadata.Operation)
	assert.Equal(t, 2, env.Metadata.Count)
	assert.GreaterOrEqual(t, env.Metadata.TimingMs, int64(0))
	assert.Empty(t, env.Errors)
}

func TestFail_CarriesAppErrCodeDetailsAndSuggestions(t *testing.T) {
	start := time.Now()
	err := apperr.New(apperr.CodeValidation, "top_k must be positive").
		WithDetail("top_k", -1).
		WithSuggestion("pass a positive integer")

	env := fail("search", err, start)

	assert.False(t, env.Success)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, string(apperr.CodeValidation), env.Errors[0].Code)
	assert.Equal(t, "top_k must be positive", env.Errors[0].Message)
	assert.Equal(t, []string{"pass a positive integer"}, env.Errors[0].Suggestions)
}

func TestFail_WrapsPlainErrorsWithoutACode(t *testing.T) {
	env := fail("search", assert.AnError, time.Now())

	require.Len(t, env.Errors, 1)
	assert.Empty(t, env.Errors[0].Code)
	assert.Equal(t, assert.AnError.Error(), env.Errors[0].Message)
}

func TestToolResult_MarshalsEnvelopeAsJSONText(t *testing.T) {
	env := ok("search", map[string]int{"x": 1}, 1, time.Now())
	result, err := toolResult(env)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	text, isText := mcp.AsTextContent(result.Content[0])
	require.True(t, isText)

	var decoded Envelope
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	assert.True(t, decoded.Success)
	assert.Equal(t, "search", decoded.Metadata.Operation)
}

func TestArgHelpers(t *testing.T) {
	args := map[string]any{
		"query":   "hello",
		"top_k":   float64(5),
		"dry_run": true,
		"tags":    []any{"a", "b", 3},
	}

	s, ok := stringArg(args, "query")
	assert.True(t, ok)
	assert.Equal(t, "hello", s)

	_, ok = stringArg(args, "missing")
	assert.False(t, ok)

	assert.Equal(t, 5, intArg(args, "top_k", 20))
	assert.Equal(t, 20, intArg(args, "missing", 20))

	assert.True(t, boolArg(args, "dry_run", false))
	assert.False(t, boolArg(args, "missing", false))

	assert.Equal(t, []string{"a", "b"}, stringSliceArg(args, "tags"))
	assert.Nil(t, stringSliceArg(args, "missing"))
}

func TestApperrValidation_BuildsValidationCode(t *testing.T) {
	err := apperrValidation("query is required")
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}
