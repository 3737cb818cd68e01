package index

import (
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
)

// Discovery finds files matching configured doc/code glob patterns,
// grounded on the teacher's internal/indexer/discovery.go FileDiscovery
// (gobwas/glob compilation, filepath.Walk, relative-path pattern
// matching) generalized to separate doc and code pattern sets, each
// eligible for exclusion.
type Discovery struct {
	root         string
	docGlobs     []glob.Glob
	codeGlobs    []glob.Glob
	excludeGlobs []glob.Glob
}

// NewDiscovery compiles the configured patterns. Returns an error if any
// pattern fails to compile.
func NewDiscovery(root string, docPatterns, codePatterns, excludePatterns []string) (*Discovery, error) {
	d := &Discovery{root: root}
	var err error
	if d.docGlobs, err = compileAll(docPatterns); err != nil {
		return nil, err
	}
	if d.codeGlobs, err = compileAll(codePatterns); err != nil {
		return nil, err
	}
	if d.excludeGlobs, err = compileAll(excludePatterns); err != nil {
		return nil, err
	}
	return d, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// File is one discovered file with its absolute path and whether it was
// matched as doc or code content.
type File struct {
	AbsPath string
	IsCode  bool
}

// Discover walks root and returns every file matching a doc or code
// pattern and no exclude pattern. A file matching both doc and code
// patterns is classified as code (code patterns are more specific).
func (d *Discovery) Discover() ([]File, error) {
	var files []File

	err := filepath.Walk(d.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, ok := Normalize(d.root, path)
		if !ok {
			return nil
		}

		if matchesAny(rel, d.excludeGlobs) {
			return nil
		}
		switch {
		case matchesAny(rel, d.codeGlobs):
			files = append(files, File{AbsPath: path, IsCode: true})
		case matchesAny(rel, d.docGlobs):
			files = append(files, File{AbsPath: path, IsCode: false})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// classifyChanged reports whether a single already-normalized relative
// path should be treated as code content, for the watcher's per-event
// reindex path (which has no directory walk to piggyback classification
// on).
func (d *Discovery) classifyChanged(rel string) bool {
	if matchesAny(rel, d.excludeGlobs) {
		return false
	}
	return matchesAny(rel, d.codeGlobs)
}

// matchesAny reports whether path matches any of globs. A leading "**/"
// in a pattern also matches a path at the root ("**/*.md" matches
// "README.md"), since gobwas/glob's "**" alone would require a "/".
func matchesAny(path string, globs []glob.Glob) bool {
	for _, g := range globs {
		if g.Match(path) || g.Match("/"+path) {
			return true
		}
	}
	return false
}
