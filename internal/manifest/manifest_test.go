package manifest

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifest_RegisterAndGetManifest(t *testing.T) {
	m := New()
	m.Register(Entry{
		Brief: Brief{Name: "search", Brief: "Search indexed chunks.", Category: "retrieval", UseCases: []string{"find code", "find docs"}},
		Schema: Schema{Name: "search", InputSchema: map[string]any{"type": "object"}, Examples: []Example{
			{Description: "basic", Arguments: map[string]any{"query": "how does x work"}},
			{Description: "filtered", Arguments: map[string]any{"query": "x", "content_type": "code"}},
		}},
	})

	briefs := m.GetManifest()
	require.Len(t, briefs, 1)
	assert.Equal(t, "search", briefs[0].Name)
}

func TestManifest_GetToolSchema(t *testing.T) {
	m := New()
	m.Register(Entry{
		Brief:  Brief{Name: "ask", Brief: "Ask a question.", UseCases: []string{"a", "b"}},
		Schema: Schema{Name: "ask", Examples: []Example{{}, {}}},
	})

	schema, err := m.GetToolSchema("ask")
	require.NoError(t, err)
	assert.Equal(t, "ask", schema.Name)

	_, err = m.GetToolSchema("missing")
	assert.Error(t, err)
}

func TestManifest_ValidateWarnsWithoutRejecting(t *testing.T) {
	m := New()
	oversized := ""
	for i := 0; i < 400; i++ {
		oversized += "x"
	}
	m.Register(Entry{
		Brief:  Brief{Name: "huge", Brief: oversized, UseCases: []string{"a", "b"}},
		Schema: Schema{Examples: []Example{{}, {}}},
	})

	// Validate must not panic or error even though the brief exceeds budget.
	m.Validate(zerolog.Nop())

	briefs := m.GetManifest()
	require.Len(t, briefs, 1)
	assert.Equal(t, oversized, briefs[0].Brief)
}
