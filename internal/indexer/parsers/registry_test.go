package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForExtension_KnownAndUnknown(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, ForExtension(".py"))
	assert.NotNil(t, ForExtension(".RS"))
	assert.Nil(t, ForExtension(".erl"))
}

func TestParseSource_FallsBackForUnknownLanguage(t *testing.T) {
	t.Parallel()

	source := []byte(`import util

function greet(name) {
  return "hi " + name;
}
`)
	chunks, imports, usedFallback, err := ParseSource("greet.elm", ".elm", source)
	require.NoError(t, err)
	assert.True(t, usedFallback)
	assert.NotEmpty(t, chunks)
	assert.NotEmpty(t, imports)

	var greet *CodeChunk
	for i := range chunks {
		if chunks[i].Name == "greet" {
			greet = &chunks[i]
		}
	}
	require.NotNil(t, greet)
	assert.Equal(t, "function", greet.CodeType)
}

func TestParseSource_UsesGrammarWhenRegistered(t *testing.T) {
	t.Parallel()

	source := []byte("def foo():\n    return 1\n")
	chunks, _, usedFallback, err := ParseSource("foo.py", ".py", source)
	require.NoError(t, err)
	assert.False(t, usedFallback)
	require.Len(t, chunks, 1)
	assert.Equal(t, "foo", chunks[0].Name)
}
