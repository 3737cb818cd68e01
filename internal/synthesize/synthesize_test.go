package synthesize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-rag/reporag/internal/chunk"
	"github.com/open-rag/reporag/internal/classify"
	"github.com/open-rag/reporag/internal/store"
)

func sc(id uint64, path string, lineStart, lineEnd int, content string) store.ScoredChunk {
	return store.ScoredChunk{Chunk: chunk.Chunk{
		ID: id, FilePath: path, LineStart: lineStart, LineEnd: lineEnd, Content: content,
	}}
}

func TestSynthesizeEnumeration_Contiguous(t *testing.T) {
	chunks := []store.ScoredChunk{
		sc(1, "a.md", 1, 3, "1. first\n2. second\n"),
		sc(2, "a.md", 4, 5, "3. third\n"),
	}
	res, err := Synthesize(classify.IntentEnumeration, "list all", []Group{{Chunks: chunks}})
	require.NoError(t, err)
	assert.Contains(t, res.Answer, "1. first")
	assert.Contains(t, res.Answer, "2. second")
	assert.Contains(t, res.Answer, "3. third")
	assert.Contains(t, res.Answer, "complete (1..3)")
	assert.Len(t, res.Citations, 2)
}

func TestSynthesizeEnumeration_Incomplete(t *testing.T) {
	chunks := []store.ScoredChunk{
		sc(1, "a.md", 1, 2, "1. first\n3. third\n"),
	}
	res, err := Synthesize(classify.IntentEnumeration, "list all", []Group{{Chunks: chunks}})
	require.NoError(t, err)
	assert.Contains(t, res.Answer, "missing: 2")
}

func TestSynthesizeEnumeration_DedupesByIndex(t *testing.T) {
	chunks := []store.ScoredChunk{
		sc(1, "a.md", 1, 2, "1. first\n1. duplicate\n"),
	}
	res, err := Synthesize(classify.IntentEnumeration, "list all", []Group{{Chunks: chunks}})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(res.Answer, "1. "))
}

func TestSynthesizeExplanation_GroupsByFileAndDropsOverlap(t *testing.T) {
	chunks := []store.ScoredChunk{
		sc(1, "a.md", 1, 10, "short overlapped"),
		sc(2, "a.md", 1, 20, "long overlapping wins"),
		sc(3, "b.md", 1, 5, "separate file"),
	}
	res, err := Synthesize(classify.IntentExplanation, "how does this work", []Group{{Chunks: chunks}})
	require.NoError(t, err)
	assert.Contains(t, res.Answer, "long overlapping wins")
	assert.NotContains(t, res.Answer, "short overlapped")
	assert.Contains(t, res.Answer, "separate file")
	assert.Len(t, res.Citations, 2)
}

func TestSynthesizeCodeSearch_EmitsFencedBlocksWithLocator(t *testing.T) {
	c := sc(1, "pkg/foo.go", 10, 20, "func Foo() {}")
	c.Chunk.Language = "go"
	c.Chunk.Name = "Foo"
	res, err := Synthesize(classify.IntentCodeSearch, "find function Foo", []Group{{Chunks: []store.ScoredChunk{c}}})
	require.NoError(t, err)
	assert.Contains(t, res.Answer, "pkg/foo.go:10-20 Foo")
	assert.Contains(t, res.Answer, "```go")
	assert.Contains(t, res.Answer, "func Foo() {}")
}

func TestSynthesizeFactual_PicksHighestScored(t *testing.T) {
	low := sc(1, "a.md", 1, 2, "low score answer")
	low.Score = 0.1
	high := sc(2, "a.md", 3, 4, "high score answer")
	high.Score = 0.9
	res, err := Synthesize(classify.IntentFactual, "what is the default", []Group{{Chunks: []store.ScoredChunk{low, high}}})
	require.NoError(t, err)
	assert.Equal(t, "high score answer", res.Answer)
	assert.Len(t, res.Citations, 1)
}

func TestSynthesizeComparison_EmitsBothOperandsUnderHeadings(t *testing.T) {
	a := Group{Label: "chromem", Chunks: []store.ScoredChunk{sc(1, "a.md", 1, 2, "chromem is in-process")}}
	b := Group{Label: "qdrant", Chunks: []store.ScoredChunk{sc(2, "b.md", 1, 2, "qdrant is a service")}}
	res, err := Synthesize(classify.IntentComparison, "difference between chromem and qdrant", []Group{a, b})
	require.NoError(t, err)
	assert.Contains(t, res.Answer, "# chromem")
	assert.Contains(t, res.Answer, "# qdrant")
	assert.Contains(t, res.Answer, "chromem is in-process")
	assert.Contains(t, res.Answer, "qdrant is a service")
	assert.Len(t, res.Citations, 2)
}

func TestSynthesize_EmptyPool(t *testing.T) {
	res, err := Synthesize(classify.IntentExplanation, "q", []Group{{Chunks: nil}})
	require.NoError(t, err)
	assert.Equal(t, "No relevant content was found.", res.Answer)
}
