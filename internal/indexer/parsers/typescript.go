package parsers

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// typeScriptParser parses TypeScript/JavaScript source into one CodeChunk
// per top-level function, method, and class. JSX/TSX share the same
// grammar-handled node shapes as plain TS/JS for the declarations this
// parser cares about.
type typeScriptParser struct {
	*treeSitterParser
}

// NewTypeScriptParser creates a parser for .ts/.tsx files.
func NewTypeScriptParser() *typeScriptParser {
	lang := sitter.NewLanguage(typescript.LanguageTSX())
	return &typeScriptParser{treeSitterParser: newTreeSitterParser(lang, "typescript")}
}

// NewJavaScriptParser creates a parser for .js/.jsx files. JavaScript has
// no distinct grammar in this toolkit; the TSX grammar is a superset that
// parses plain JS/JSX without complaint.
func NewJavaScriptParser() *typeScriptParser {
	lang := sitter.NewLanguage(typescript.LanguageTSX())
	return &typeScriptParser{treeSitterParser: newTreeSitterParser(lang, "javascript")}
}

var tsContainers = map[string]bool{
	"class_declaration":    true,
	"class":                true,
	"function_declaration": true,
	"method_definition":    true,
	"arrow_function":       true,
	"function_expression":  true,
}

func (p *typeScriptParser) Parse(filePath string, source []byte) ([]CodeChunk, []string, error) {
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
		case "import_statement":
			imports = append(imports, extractNodeText(n, source))
			return false
		case "class_declaration", "class":
			chunks = append(chunks, p.extractClass(n, source, lines)...)
			return false
		case "function_declaration":
			if isTopLevel(n, tsContainers) {
				chunks = append(chunks, p.extractFunction(n, source, lines, ""))
			}
		case "lexical_declaration", "variable_declaration":
			if isTopLevel(n, tsContainers) {
				chunks = append(chunks, p.extractFunctionValuedDeclarations(n, source, lines)...)
			}
		}
		return true
	})

	return chunks, imports, nil
}

func (p *typeScriptParser) extractClass(node *sitter.Node, source []byte, lines []string) []CodeChunk {
	nameNode := node.ChildByFieldName("name")
	var className string
	if nameNode != nil {
		className = extractNodeText(nameNode, source)
	}
	startLine, endLine := nodeLines(node)

	chunks := []CodeChunk{{
		Name:      className,
		CodeType:  "class",
		StartLine: startLine,
		EndLine:   endLine,
		Text:      extractLines(lines, startLine, endLine),
	}}

	if body := node.ChildByFieldName("body"); body != nil {
		for _, method := range findChildrenByType(body, "method_definition") {
			chunks = append(chunks, p.extractMethod(method, source, lines, className))
		}
	}

	return chunks
}

func (p *typeScriptParser) extractMethod(node *sitter.Node, source []byte, lines []string, className string) CodeChunk {
	nameNode := node.ChildByFieldName("name")
	var name string
	if nameNode != nil {
		name = extractNodeText(nameNode, source)
	}
	startLine, endLine := nodeLines(node)

	return CodeChunk{
		Name:      name,
		ClassName: className,
		CodeType:  "method",
		StartLine: startLine,
		EndLine:   endLine,
		Text:      extractLines(lines, startLine, endLine),
	}
}

func (p *typeScriptParser) extractFunction(node *sitter.Node, source []byte, lines []string, className string) CodeChunk {
	nameNode := node.ChildByFieldName("name")
	var name string
	if nameNode != nil {
		name = extractNodeText(nameNode, source)
	}
	startLine, endLine := nodeLines(node)

	return CodeChunk{
		Name:      name,
		ClassName: className,
		CodeType:  "function",
		StartLine: startLine,
		EndLine:   endLine,
		Text:      extractLines(lines, startLine, endLine),
	}
}

// extractFunctionValuedDeclarations handles `const foo = () => {...}` and
// `const foo = function() {...}` top-level bindings, which is how most
// modern TS/JS code declares module-level functions.
func (p *typeScriptParser) extractFunctionValuedDeclarations(node *sitter.Node, source []byte, lines []string) []CodeChunk {
	var chunks []CodeChunk
	for _, decl := range findChildrenByType(node, "variable_declarator") {
		valueNode := decl.ChildByFieldName("value")
		if valueNode == nil {
			continue
		}
		if valueNode.Kind() != "arrow_function" && valueNode.Kind() != "function_expression" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		var name string
		if nameNode != nil {
			name = extractNodeText(nameNode, source)
		}
		startLine, endLine := nodeLines(decl)
		chunks = append(chunks, CodeChunk{
			Name:      name,
			CodeType:  "function",
			StartLine: startLine,
			EndLine:   endLine,
			Text:      extractLines(lines, startLine, endLine),
		})
	}
	return chunks
}
