// Package embed implements C3: mapping chunk or query text to D-dimensional
// L2-normalized vectors. A single model serves both doc and code chunks
// (spec §4.3) — the model runtime itself is an external collaborator
// (spec §1 Non-goals), reached here over HTTP exactly as the teacher's
// internal/embed/client talks to its local embedding server.
package embed

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Mode distinguishes query embeddings from passage (chunk) embeddings,
// since some embedding models use different instruction prefixes for
// each, mirroring the teacher's embed.EmbedMode.
type Mode string

const (
	ModeQuery   Mode = "query"
	ModePassage Mode = "passage"
)

// Provider maps text to dense vectors. Batches preserve input order
// (spec §4.3); implementations are safe for concurrent use — the
// embedding model is a process-wide resource per spec §5.
type Provider interface {
	Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error)
	// Dimensions returns D, the fixed dimension this provider produces.
	Dimensions() int
	Close() error
}

// Normalize applies the light normalization spec §4.3 requires before
// embedding: UTF-8 NFC, trim trailing whitespace. It never alters
// meaningful content, only canonical form, so ContentHash computed
// before and after normalization of already-clean text is unchanged.
func Normalize(text string) string {
	normalized := norm.NFC.String(text)
	return strings.TrimRightFunc(normalized, unicode.IsSpace)
}
