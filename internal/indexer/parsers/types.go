// Package parsers contains per-language source parsers used by the code
// chunker (see internal/chunk). Each parser walks a language's AST via
// tree-sitter and yields one CodeChunk per top-level function, method,
// or class, plus the file's import lines. Languages with no registered
// grammar (Go among them) go through the regex fallback instead.
package parsers

// CodeChunk is a single function/method/class extracted from a source file.
// StartLine/EndLine are 1-based and inclusive, covering the declaration
// through the last line of the body.
type CodeChunk struct {
	Name      string // function/method name, empty for class-only chunks
	ClassName string // enclosing class name, empty for free functions
	CodeType  string // "function", "method", "class", or "module"
	StartLine int
	EndLine   int
	Text      string // signature/docstring/body, without imports or class line
}

// Parser extracts one CodeChunk per top-level function/method/class from a
// source file, along with the file's import lines (reproduced verbatim,
// preserving order).
type Parser interface {
	// Parse returns the chunks and import lines found in source.
	// A nil, nil return (no error) means the grammar produced no tree or
	// found no declarations or imports; ParseSource then falls back to the
	// regex extractor.
	Parse(filePath string, source []byte) (chunks []CodeChunk, imports []string, err error)
}
