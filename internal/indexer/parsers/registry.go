package parsers

import "strings"

// ForExtension returns the registered Parser for a file extension
// (including the leading dot, e.g. ".py"), or nil if no grammar is
// registered — callers must fall back to parseWithRegexFallback in that
// case, per the "secondary path is automatic" requirement.
func ForExtension(ext string) Parser {
	switch strings.ToLower(ext) {
	case ".py":
		return NewPythonParser()
	case ".ts", ".tsx":
		return NewTypeScriptParser()
	case ".js", ".jsx", ".mjs", ".cjs":
		return NewJavaScriptParser()
	case ".c", ".h", ".cpp", ".cc", ".hpp":
		return NewCParser()
	case ".java":
		return NewJavaParser()
	case ".php":
		return NewPHPParser()
	case ".rb":
		return NewRubyParser()
	case ".rs":
		return NewRustParser()
	default:
		return nil
	}
}

// ParseSource dispatches to the registered grammar for ext, falling back
// to the regex-based extractor automatically when no grammar exists, so
// indexing never fails silently on an unsupported language.
func ParseSource(filePath, ext string, source []byte) (chunks []CodeChunk, imports []string, usedFallback bool, err error) {
	if p := ForExtension(ext); p != nil {
		chunks, imports, err = p.Parse(filePath, source)
		if err != nil {
			return nil, nil, false, err
		}
		if chunks != nil || imports != nil {
			return chunks, imports, false, nil
		}
		// Grammar returned a nil tree or found nothing; fall through.
	}
	chunks, imports = parseWithRegexFallback(source)
	return chunks, imports, true, nil
}
