package parsers

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// pythonParser parses Python source into one CodeChunk per top-level
// function, method, and class.
type pythonParser struct {
	*treeSitterParser
}

// NewPythonParser creates a new Python parser.
func NewPythonParser() *pythonParser {
	lang := sitter.NewLanguage(python.Language())
	return &pythonParser{treeSitterParser: newTreeSitterParser(lang, "python")}
}

var pythonContainers = map[string]bool{
	"class_definition":    true,
	"function_definition": true,
}

func (p *pythonParser) Parse(filePath string, source []byte) ([]CodeChunk, []string, error) {
	tree, root := p.parseTree(source)
	if tree == nil {
		return nil, nil, nil
	}
	defer tree.Close()

	lines := strings.Split(string(source), "\n")

	var chunks []CodeChunk
	var imports []string

	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_statement", "import_from_statement":
			imports = append(imports, extractNodeText(n, source))
			return false
		case "class_definition":
			chunks = append(chunks, p.extractClass(n, source, lines)...)
			return false
		case "function_definition":
			if isTopLevel(n, pythonContainers) {
				chunks = append(chunks, p.extractFunction(n, source, lines, ""))
			}
		}
		return true
	})

	return chunks, imports, nil
}

func (p *pythonParser) extractClass(node *sitter.Node, source []byte, lines []string) []CodeChunk {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	className := extractNodeText(nameNode, source)
	startLine, endLine := nodeLines(node)

	chunks := []CodeChunk{{
		Name:      className,
		CodeType:  "class",
		StartLine: startLine,
		EndLine:   endLine,
		Text:      extractLines(lines, startLine, endLine),
	}}

	if body := node.ChildByFieldName("body"); body != nil {
		for _, method := range findChildrenByType(body, "function_definition") {
			chunks = append(chunks, p.extractFunction(method, source, lines, className))
		}
	}

	return chunks
}

func (p *pythonParser) extractFunction(node *sitter.Node, source []byte, lines []string, className string) CodeChunk {
	nameNode := node.ChildByFieldName("name")
	var name string
	if nameNode != nil {
		name = extractNodeText(nameNode, source)
	}
	startLine, endLine := nodeLines(node)

	codeType := "function"
	if className != "" {
		codeType = "method"
	}

	return CodeChunk{
		Name:      name,
		ClassName: className,
		CodeType:  codeType,
		StartLine: startLine,
		EndLine:   endLine,
		Text:      extractLines(lines, startLine, endLine),
	}
}
