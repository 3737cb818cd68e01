package chunk

import (
	"sort"
	"strings"

	"github.com/open-rag/reporag/internal/indexer/parsers"
)

// LanguageForExtension maps a file extension (with leading dot) to the
// language tag recorded on a chunk's payload.
func LanguageForExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".py":
		return "python"
	case ".ts", ".tsx":
		return "typescript"
	case ".js", ".jsx", ".mjs", ".cjs":
		return "javascript"
	case ".c", ".h":
		return "c"
	case ".cpp", ".cc", ".hpp":
		return "cpp"
	case ".java":
		return "java"
	case ".php":
		return "php"
	case ".rb":
		return "ruby"
	case ".rs":
		return "rust"
	default:
		return strings.TrimPrefix(ext, ".")
	}
}

// ChunkCode parses a source file into chunks per spec §4.2: one chunk per
// top-level function, method, or class, each reproducing the file's
// import lines and, for a method, its enclosing class declaration line.
// filePath is used only for the chunk payload; ext selects the grammar.
func ChunkCode(filePath, ext string, source []byte) ([]Chunk, error) {
	raw, imports, _, err := parsers.ParseSource(filePath, ext, source)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	// Determinism: chunk order equals source order regardless of how the
	// underlying parser walked the tree.
	sort.SliceStable(raw, func(i, j int) bool { return raw[i].StartLine < raw[j].StartLine })

	classDecls := classDeclarationLines(raw)
	language := LanguageForExtension(ext)
	importBlock := strings.Join(imports, "\n")

	chunks := make([]Chunk, 0, len(raw))
	for _, rc := range raw {
		if rc.CodeType == "class" && hasMethods(raw, rc.Name) {
			rc = classSummary(rc)
		}

		var parts []string
		if importBlock != "" {
			parts = append(parts, importBlock)
		}
		if rc.CodeType == "method" {
			if decl, ok := classDecls[rc.ClassName]; ok {
				parts = append(parts, decl)
			}
		}
		parts = append(parts, rc.Text)

		codeType := CodeType(rc.CodeType)
		if codeType == "" {
			codeType = CodeModule
		}

		c := Chunk{
			FilePath:    filePath,
			LineStart:   rc.StartLine,
			LineEnd:     rc.EndLine,
			ContentType: ContentCode,
			Language:    language,
			CodeType:    codeType,
			Name:        rc.Name,
			ClassName:   rc.ClassName,
			Imports:     append([]string(nil), imports...),
			Content:     strings.Join(parts, "\n"),
		}
		c.AssignID()
		c.HashContent()
		chunks = append(chunks, c)
	}

	return chunks, nil
}

// hasMethods reports whether any chunk in raw is a method of className.
func hasMethods(raw []parsers.CodeChunk, className string) bool {
	if className == "" {
		return false
	}
	for _, rc := range raw {
		if rc.CodeType == "method" && rc.ClassName == className {
			return true
		}
	}
	return false
}

// classDeclarationLines returns, per class name, the bare declaration
// line (no body) taken from the first line of the class chunk's text —
// what a method chunk reproduces as its "enclosing class declaration".
func classDeclarationLines(raw []parsers.CodeChunk) map[string]string {
	decls := make(map[string]string, len(raw))
	for _, rc := range raw {
		if rc.CodeType != "class" {
			continue
		}
		first, _, _ := strings.Cut(rc.Text, "\n")
		decls[rc.Name] = first
	}
	return decls
}

// classSummary reduces a class chunk that has methods to its declaration
// line, the optional class-level summary described in spec §4.2 (full
// bodies are already covered by the individual method chunks).
func classSummary(rc parsers.CodeChunk) parsers.CodeChunk {
	first, _, found := strings.Cut(rc.Text, "\n")
	if !found {
		return rc
	}
	rc.Text = first
	return rc
}
