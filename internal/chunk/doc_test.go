package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkMarkdown_EmptyFileYieldsNoChunks(t *testing.T) {
	t.Parallel()

	chunks := ChunkMarkdown("docs/flows/empty.md", "   \n\n  ", DefaultDocChunkConfig())
	assert.Empty(t, chunks)
}

func TestChunkMarkdown_NumberedListBecomesOneCompleteChunk(t *testing.T) {
	t.Parallel()

	content := "## Features\n1. Alpha\n2. Beta\n3. Gamma\n"
	chunks := ChunkMarkdown("docs/flows/a.md", content, DefaultDocChunkConfig())

	require.Len(t, chunks, 1)
	c := chunks[0]
	assert.Equal(t, ContentList, c.ContentType)
	assert.Equal(t, "Features", c.Section)
	assert.Equal(t, 3, c.ListLength)
	assert.True(t, c.IsComplete)
	assert.Equal(t, DocFlow, c.DocType)
}

func TestChunkMarkdown_LargeNumberedListStaysOneChunkRegardlessOfTargetSize(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("## Inventory\n")
	for i := 1; i <= 10000; i++ {
		b.WriteString("1. item\n")
	}

	cfg := DefaultDocChunkConfig()
	cfg.TargetSize = 50 // deliberately tiny; must not fragment the list

	chunks := ChunkMarkdown("docs/sdlc/inventory.md", b.String(), cfg)

	require.Len(t, chunks, 1)
	assert.Equal(t, ContentList, chunks[0].ContentType)
	assert.Equal(t, 10000, chunks[0].ListLength)
	assert.True(t, chunks[0].IsComplete)
}

func TestChunkMarkdown_Level1OnlyHeadingSetsSection(t *testing.T) {
	t.Parallel()

	content := "# Onboarding\n\nWelcome to the team. Read this carefully before your first day.\n"
	chunks := ChunkMarkdown("docs/sdlc/onboarding.md", content, DefaultDocChunkConfig())

	require.Len(t, chunks, 1)
	assert.Equal(t, ContentText, chunks[0].ContentType)
	assert.Equal(t, "Onboarding", chunks[0].Section)
	assert.Equal(t, DocSDLC, chunks[0].DocType)
}

func TestChunkMarkdown_PipeTableDetectedAsSingleChunk(t *testing.T) {
	t.Parallel()

	content := "## Pricing\n| Plan | Price |\n| --- | --- |\n| Free | $0 |\n| Pro | $10 |\n"
	chunks := ChunkMarkdown("docs/policies/pricing.md", content, DefaultDocChunkConfig())

	require.Len(t, chunks, 1)
	assert.Equal(t, ContentTable, chunks[0].ContentType)
	assert.Equal(t, "Pricing", chunks[0].Section)
	assert.Equal(t, DocPolicy, chunks[0].DocType)
	assert.Contains(t, chunks[0].Content, "Free")
}

func TestChunkMarkdown_FencedCodeBlockCapturesLanguageTag(t *testing.T) {
	t.Parallel()

	content := "## Example\n```go\nfunc main() {}\n```\n"
	chunks := ChunkMarkdown("docs/infrastructure/example.md", content, DefaultDocChunkConfig())

	require.Len(t, chunks, 1)
	assert.Equal(t, ContentCode, chunks[0].ContentType)
	assert.Equal(t, "go", chunks[0].Language)
	assert.Equal(t, DocInfrastructure, chunks[0].DocType)
}

func TestChunkMarkdown_ProseIsPackedWithOverlap(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("## Long Section\n")
	for i := 0; i < 40; i++ {
		b.WriteString("This is a line of prose content used to pad out the section body text.\n")
	}

	cfg := DefaultDocChunkConfig()
	cfg.TargetSize = 500
	cfg.Overlap = 80

	chunks := ChunkMarkdown("docs/flows/long.md", b.String(), cfg)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.Equal(t, ContentText, c.ContentType)
		assert.Equal(t, "Long Section", c.Section)
		assert.NotZero(t, c.ID)
		assert.NotEmpty(t, c.ContentHash)
	}

	// Consecutive chunks should overlap: the end of one chunk's line range
	// should be >= the start of the next, not a hard cut.
	for i := 1; i < len(chunks); i++ {
		assert.LessOrEqual(t, chunks[i].LineStart, chunks[i-1].LineEnd)
	}
}

func TestChunkMarkdown_HeadingWithNoBodyStillProducesTextChunk(t *testing.T) {
	t.Parallel()

	// spec.md §8 Scenario S1: exactly two chunks, a text chunk for the
	// empty "Title" section and a list chunk for "Features".
	content := "# Title\n## Features\n1. Alpha\n2. Beta\n3. Gamma\n"
	chunks := ChunkMarkdown("docs/flows/a.md", content, DefaultDocChunkConfig())

	require.Len(t, chunks, 2)

	assert.Equal(t, ContentText, chunks[0].ContentType)
	assert.Equal(t, "Title", chunks[0].Section)
	assert.Equal(t, 1, chunks[0].LineStart)
	assert.Equal(t, 1, chunks[0].LineEnd)

	assert.Equal(t, ContentList, chunks[1].ContentType)
	assert.Equal(t, "Features", chunks[1].Section)
	assert.Equal(t, 3, chunks[1].ListLength)
}

func TestChunkMarkdown_UnmappedDirectoryYieldsDocOther(t *testing.T) {
	t.Parallel()

	content := "## Misc\nSome unrelated note.\n"
	chunks := ChunkMarkdown("notes/misc.md", content, DefaultDocChunkConfig())

	require.Len(t, chunks, 1)
	assert.Equal(t, DocOther, chunks[0].DocType)
}
