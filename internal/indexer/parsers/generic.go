package parsers

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

// classSpec describes how one class-like node kind exposes its name and
// the methods nested in its body, for languages whose grammars agree
// closely enough on shape to share a walker.
type classSpec struct {
	kind       string
	nameField  string // field holding the identifier node; "" uses nameFn
	nameFn     func(node *sitter.Node, source []byte) string
	bodyField  string
	methodKind string
	// findMethods overrides how method nodes are located inside the body
	// node, for grammars that nest them under an extra wrapper (Ruby
	// wraps a class's statements in a body_statement node).
	findMethods func(body *sitter.Node, methodKind string) []*sitter.Node
}

// genericLangSpec configures the shared tree-sitter walker for one
// "generic" language: enough structural similarity to Python/TypeScript
// that a single table-driven parser covers it without a bespoke file.
type genericLangSpec struct {
	lang          string
	classes       []classSpec
	typeOnlyKinds []string // struct/union/enum-like kinds chunked as "class" with no methods
	functionKind  string
	funcNameFn    func(node *sitter.Node, source []byte) string
	importKinds   []string
	containers    map[string]bool // node kinds that make a descendant non-top-level
}

func defaultMethods(body *sitter.Node, methodKind string) []*sitter.Node {
	return findChildrenByType(body, methodKind)
}

func defaultNameFn(nameField string) func(*sitter.Node, []byte) string {
	return func(node *sitter.Node, source []byte) string {
		nameNode := node.ChildByFieldName(nameField)
		return extractNodeText(nameNode, source)
	}
}

// cFunctionName walks past pointer/function declarators to find a C
// function's identifier, since the name is never a direct field of the
// function_definition node itself.
func cFunctionName(node *sitter.Node, source []byte) string {
	declarator := node.ChildByFieldName("declarator")
	for declarator != nil {
		switch declarator.Kind() {
		case "identifier":
			return extractNodeText(declarator, source)
		case "function_declarator", "pointer_declarator":
			declarator = declarator.ChildByFieldName("declarator")
		default:
			for i := 0; i < int(declarator.ChildCount()); i++ {
				if child := declarator.Child(uint(i)); child.Kind() == "identifier" {
					return extractNodeText(child, source)
				}
			}
			return ""
		}
	}
	return ""
}

// rubyMethods unwraps the body_statement node Ruby's grammar sometimes
// interposes between a class/module node and its method definitions.
func rubyMethods(body *sitter.Node, methodKind string) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(uint(i))
		if child.Kind() == methodKind {
			out = append(out, child)
			continue
		}
		if child.Kind() == "body_statement" {
			out = append(out, findChildrenByType(child, methodKind)...)
		}
	}
	return out
}

// rustImplName resolves the struct/trait an impl_item block is attached
// to, since impl_item carries no "name" field of its own.
func rustImplName(node *sitter.Node, source []byte) string {
	typeNode := node.ChildByFieldName("type")
	return extractNodeText(typeNode, source)
}

var genericSpecs = map[string]*genericLangSpec{
	"c": {
		lang: "c",
		typeOnlyKinds: []string{
			"struct_specifier", "union_specifier", "enum_specifier",
		},
		functionKind: "function_definition",
		funcNameFn:   cFunctionName,
		importKinds:  []string{"preproc_include"},
		containers: map[string]bool{
			"function_definition": true,
			"compound_statement":  true,
		},
	},
	"java": {
		lang: "java",
		classes: []classSpec{
			{kind: "class_declaration", nameField: "name", bodyField: "body", methodKind: "method_declaration"},
			{kind: "interface_declaration", nameField: "name", bodyField: "body", methodKind: "method_declaration"},
			{kind: "enum_declaration", nameField: "name", bodyField: "body", methodKind: "method_declaration"},
		},
		importKinds: []string{"import_declaration"},
		containers: map[string]bool{
			"class_declaration":     true,
			"interface_declaration": true,
			"enum_declaration":      true,
		},
	},
	"php": {
		lang: "php",
		classes: []classSpec{
			{kind: "class_declaration", nameField: "name", bodyField: "body", methodKind: "method_declaration"},
			{kind: "interface_declaration", nameField: "name", bodyField: "body", methodKind: "method_declaration"},
		},
		functionKind: "function_definition",
		importKinds:  []string{"namespace_use_declaration"},
		containers: map[string]bool{
			"class_declaration":     true,
			"interface_declaration": true,
			"function_definition":   true,
			"method_declaration":    true,
		},
	},
	"ruby": {
		lang: "ruby",
		classes: []classSpec{
			{kind: "class", nameField: "name", bodyField: "body", methodKind: "method", findMethods: rubyMethods},
			{kind: "module", nameField: "name", bodyField: "body", methodKind: "method", findMethods: rubyMethods},
		},
		functionKind: "method",
		importKinds:  nil,
		containers: map[string]bool{
			"class":  true,
			"module": true,
			"method": true,
		},
	},
	"rust": {
		lang: "rust",
		classes: []classSpec{
			{kind: "impl_item", nameFn: rustImplName, bodyField: "body", methodKind: "function_item"},
		},
		typeOnlyKinds: []string{"struct_item", "enum_item", "trait_item"},
		functionKind:  "function_item",
		importKinds:   []string{"use_declaration"},
		containers: map[string]bool{
			"impl_item":     true,
			"function_item": true,
		},
	},
}

// genericParser walks a tree-sitter AST according to a genericLangSpec,
// yielding one CodeChunk per class/struct/impl, method, and top-level
// function. It covers languages whose grammar shapes are regular enough
// to describe declaratively rather than needing a bespoke file.
type genericParser struct {
	*treeSitterParser
	spec *genericLangSpec
}

func newGenericParser(language *sitter.Language, spec *genericLangSpec) *genericParser {
	return &genericParser{
		treeSitterParser: newTreeSitterParser(language, spec.lang),
		spec:             spec,
	}
}

// NewCParser creates a parser for C (and, loosely, C++) source.
func NewCParser() *genericParser {
	return newGenericParser(sitter.NewLanguage(c.Language()), genericSpecs["c"])
}

// NewJavaParser creates a parser for Java source.
func NewJavaParser() *genericParser {
	return newGenericParser(sitter.NewLanguage(java.Language()), genericSpecs["java"])
}

// NewPHPParser creates a parser for PHP source.
func NewPHPParser() *genericParser {
	return newGenericParser(sitter.NewLanguage(php.LanguagePHP()), genericSpecs["php"])
}

// NewRubyParser creates a parser for Ruby source.
func NewRubyParser() *genericParser {
	return newGenericParser(sitter.NewLanguage(ruby.Language()), genericSpecs["ruby"])
}

// NewRustParser creates a parser for Rust source.
func NewRustParser() *genericParser {
	return newGenericParser(sitter.NewLanguage(rust.Language()), genericSpecs["rust"])
}

func (p *genericParser) Parse(filePath string, source []byte) ([]CodeChunk, []string, error) {
	tree, root := p.parseTree(source)
	if tree == nil {
		return nil, nil, nil
	}
	defer tree.Close()

	lines := strings.Split(string(source), "\n")
	spec := p.spec

	classKinds := make(map[string]*classSpec, len(spec.classes))
	for i := range spec.classes {
		classKinds[spec.classes[i].kind] = &spec.classes[i]
	}
	typeOnlyKinds := make(map[string]bool, len(spec.typeOnlyKinds))
	for _, k := range spec.typeOnlyKinds {
		typeOnlyKinds[k] = true
	}
	importKinds := make(map[string]bool, len(spec.importKinds))
	for _, k := range spec.importKinds {
		importKinds[k] = true
	}

	var chunks []CodeChunk
	var imports []string

	walkTree(root, func(n *sitter.Node) bool {
		kind := n.Kind()

		if importKinds[kind] {
			imports = append(imports, extractNodeText(n, source))
			return false
		}

		if cs, ok := classKinds[kind]; ok {
			chunks = append(chunks, p.extractClass(cs, n, source, lines)...)
			return false
		}

		if typeOnlyKinds[kind] {
			chunks = append(chunks, p.extractTypeOnly(n, source, lines))
			return false
		}

		if spec.functionKind != "" && kind == spec.functionKind && isTopLevel(n, spec.containers) {
			chunks = append(chunks, p.extractFunction(n, source, lines, ""))
		}

		return true
	})

	return chunks, imports, nil
}

func (p *genericParser) extractClass(cs *classSpec, node *sitter.Node, source []byte, lines []string) []CodeChunk {
	var name string
	if cs.nameFn != nil {
		name = cs.nameFn(node, source)
	} else {
		name = defaultNameFn(cs.nameField)(node, source)
	}

	startLine, endLine := nodeLines(node)
	chunks := []CodeChunk{{
		Name:      name,
		CodeType:  "class",
		StartLine: startLine,
		EndLine:   endLine,
		Text:      extractLines(lines, startLine, endLine),
	}}

	body := node.ChildByFieldName(cs.bodyField)
	if body == nil {
		return chunks
	}

	findMethods := cs.findMethods
	if findMethods == nil {
		findMethods = defaultMethods
	}

	for _, method := range findMethods(body, cs.methodKind) {
		chunks = append(chunks, p.extractFunction(method, source, lines, name))
	}

	return chunks
}

func (p *genericParser) extractTypeOnly(node *sitter.Node, source []byte, lines []string) CodeChunk {
	name := defaultNameFn("name")(node, source)
	startLine, endLine := nodeLines(node)
	return CodeChunk{
		Name:      name,
		CodeType:  "class",
		StartLine: startLine,
		EndLine:   endLine,
		Text:      extractLines(lines, startLine, endLine),
	}
}

func (p *genericParser) extractFunction(node *sitter.Node, source []byte, lines []string, className string) CodeChunk {
	var name string
	if className != "" || p.spec.funcNameFn == nil {
		name = defaultNameFn("name")(node, source)
	}
	if name == "" && p.spec.funcNameFn != nil {
		name = p.spec.funcNameFn(node, source)
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
