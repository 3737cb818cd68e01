// Package manifest implements the tool manifest (C10): a three-tier
// progressive-disclosure scheme over the tool surface (spec §4.10).
package manifest

import (
	"fmt"

	"github.com/rs/zerolog"
)

// briefTokenBudget is the per-brief token ceiling spec §4.10 names.
const briefTokenBudget = 50

// estimateTokens approximates token count from character length, the
// chars/4 heuristic the retrieval pack's token-budget code
// (kadirpekel-hector's memory/token_window.go) also uses in place of a
// real tokenizer call.
func estimateTokens(s string) int {
	return len(s)/4 + 1
}

// Brief is tier 1: the minimal routing information get_manifest returns
// for every tool.
type Brief struct {
	Name     string   `json:"name"`
	Brief    string   `json:"brief"`
	Category string   `json:"category"`
	UseCases []string `json:"use_cases"`
}

// Example is one example invocation shown at tier 2.
type Example struct {
	Description string         `json:"description"`
	Arguments   map[string]any `json:"arguments"`
}

// Schema is tier 2: the full input schema plus example invocations
// get_tool_schema returns for one named tool.
type Schema struct {
	Name        string         `json:"name"`
	InputSchema map[string]any `json:"input_schema"`
	Examples    []Example      `json:"examples"`
}

// Entry registers one tool's brief and schema tiers. Tier 3 (execution)
// is the tool's handler, registered separately on the MCP server.
type Entry struct {
	Brief  Brief
	Schema Schema
}

// Manifest holds every registered tool's Brief and Schema tiers.
type Manifest struct {
	entries map[string]Entry
	order   []string
}

// New builds an empty Manifest.
func New() *Manifest {
	return &Manifest{entries: make(map[string]Entry)}
}

// Register adds one tool's disclosure tiers. Validate should be called
// once every tool has been registered.
func (m *Manifest) Register(e Entry) {
	if _, exists := m.entries[e.Brief.Name]; !exists {
		m.order = append(m.order, e.Brief.Name)
	}
	m.entries[e.Brief.Name] = e
}

// Validate checks every registered brief against the token budget.
// Per spec §4.10 an oversized brief is a startup warning, never a
// rejection, so Validate never returns an error; it reports via logger.
func (m *Manifest) Validate(logger zerolog.Logger) {
	for _, name := range m.order {
		e := m.entries[name]
		if n := estimateTokens(e.Brief.Brief); n > briefTokenBudget {
			logger.Warn().
				Str("tool", name).
				Int("estimated_tokens", n).
				Int("budget", briefTokenBudget).
				Msg("tool brief exceeds token budget")
		}
		if len(e.Brief.UseCases) < 2 || len(e.Brief.UseCases) > 3 {
			logger.Warn().
				Str("tool", name).
				Int("use_cases", len(e.Brief.UseCases)).
				Msg("tool brief use_cases count outside the expected 2..3 range")
		}
		if len(e.Schema.Examples) < 2 || len(e.Schema.Examples) > 4 {
			logger.Warn().
				Str("tool", name).
				Int("examples", len(e.Schema.Examples)).
				Msg("tool schema example count outside the expected 2..4 range")
		}
	}
}

// GetManifest returns tier 1 for every registered tool, in registration order.
func (m *Manifest) GetManifest() []Brief {
	out := make([]Brief, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.entries[name].Brief)
	}
	return out
}

// GetToolSchema returns tier 2 for one tool.
func (m *Manifest) GetToolSchema(name string) (Schema, error) {
	e, ok := m.entries[name]
	if !ok {
		return Schema{}, fmt.Errorf("manifest: unknown tool %q", name)
	}
	return e.Schema, nil
}
