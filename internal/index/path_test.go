package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_RelativeWithinRoot(t *testing.T) {
	rel, ok := Normalize("/repo", "/repo/docs/a.md")
	assert.True(t, ok)
	assert.Equal(t, "docs/a.md", rel)
}

func TestNormalize_EscapesRoot(t *testing.T) {
	_, ok := Normalize("/repo/sub", "/repo/other/a.md")
	assert.False(t, ok)
}

func TestNormalize_LowercasesDriveLetter(t *testing.T) {
	root := filepath.FromSlash("C:/repo")
	target := filepath.FromSlash("C:/repo/a.md")
	rel, ok := Normalize(root, target)
	if filepath.Separator != '\\' {
		t.Skip("drive-letter normalization only meaningful on Windows-style paths")
	}
	assert.True(t, ok)
	assert.Equal(t, "a.md", rel)
}
