package parsers

import (
	"regexp"
	"strings"
)

// regexFallbackPatterns recognizes common def/class/function/method headers
// across languages with no registered tree-sitter grammar. Each pattern's
// first capture group is the symbol name; codeType classifies the match.
var regexFallbackPatterns = []struct {
	re       *regexp.Regexp
	codeType string
}{
	{regexp.MustCompile(`^\s*(?:export\s+)?(?:public\s+|private\s+|protected\s+)?class\s+([A-Za-z_][A-Za-z0-9_]*)`), "class"},
	{regexp.MustCompile(`^\s*(?:export\s+)?(?:async\s+)?(?:public\s+|private\s+|protected\s+|static\s+)*function\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`), "function"},
	{regexp.MustCompile(`^\s*def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`), "function"},
	{regexp.MustCompile(`^\s*(?:public|private|protected)\s+(?:static\s+)?[\w<>\[\]]+\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`), "method"},
	{regexp.MustCompile(`^\s*func\s+(?:\([^)]*\)\s*)?([A-Za-z_][A-Za-z0-9_]*)\s*\(`), "function"},
}

// regexFallbackImportPrefixes lists line prefixes treated as import/include
// statements, reproduced verbatim.
var regexFallbackImportPrefixes = []string{
	"import ", "from ", "#include", "require(", "using ", "use ",
}

// parseWithRegexFallback extracts CodeChunks via line-oriented pattern
// matching, for a file whose language has no registered tree-sitter
// grammar or whose grammar found nothing. It never returns an error: an
// unrecognized file simply yields
// no chunks, matching the "parse failure is never fatal" contract.
func parseWithRegexFallback(source []byte) ([]CodeChunk, []string) {
	lines := strings.Split(string(source), "\n")

	var chunks []CodeChunk
	var imports []string

	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		for _, prefix := range regexFallbackImportPrefixes {
			if strings.HasPrefix(trimmed, prefix) {
				imports = append(imports, strings.TrimSpace(line))
				break
			}
		}

		for _, pat := range regexFallbackPatterns {
			m := pat.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			startLine := i + 1
			endLine := findFallbackBlockEnd(lines, i)
			chunks = append(chunks, CodeChunk{
				Name:      m[1],
				CodeType:  pat.codeType,
				StartLine: startLine,
				EndLine:   endLine,
				Text:      extractLines(lines, startLine, endLine),
			})
			break
		}
	}

	return chunks, imports
}

// findFallbackBlockEnd estimates a block's closing line by brace-balance
// for brace languages, falling back to indentation tracking for
// indentation-delimited languages (Python-style). startIdx is 0-based.
func findFallbackBlockEnd(lines []string, startIdx int) int {
	headerLine := lines[startIdx]

	if strings.Contains(headerLine, "{") || blockOpensOnLaterLine(lines, startIdx) {
		depth := 0
		seenOpen := false
		for i := startIdx; i < len(lines); i++ {
			for _, ch := range lines[i] {
				switch ch {
				case '{':
					depth++
					seenOpen = true
				case '}':
					depth--
				}
			}
			if seenOpen && depth <= 0 {
				return i + 1
			}
		}
		return len(lines)
	}

	if strings.TrimRight(headerLine, " \t") != "" && strings.HasSuffix(strings.TrimRight(headerLine, " \t"), ":") {
		baseIndent := leadingWhitespace(headerLine)
		end := startIdx + 1
		for i := startIdx + 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == "" {
				continue
			}
			if leadingWhitespace(lines[i]) <= baseIndent {
				break
			}
			end = i + 1
		}
		return end
	}

	return startIdx + 1
}

func blockOpensOnLaterLine(lines []string, startIdx int) bool {
	for i := startIdx; i < len(lines) && i < startIdx+5; i++ {
		if strings.Contains(lines[i], "{") {
			return true
		}
		if strings.Contains(lines[i], ";") {
			return false
		}
	}
	return false
}

func leadingWhitespace(s string) int {
	n := 0
	for _, ch := range s {
		if ch == ' ' || ch == '\t' {
			n++
			continue
		}
		break
	}
	return n
}
