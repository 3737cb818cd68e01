package parsers

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// treeSitterParser carries the compiled grammar shared by every parse call
// for one language. A new sitter.Parser is created per call because
// sitter.Parser is not safe for concurrent use.
type treeSitterParser struct {
	language *sitter.Language
	lang     string
}

func newTreeSitterParser(language *sitter.Language, lang string) *treeSitterParser {
	return &treeSitterParser{language: language, lang: lang}
}

// parseTree parses source and returns the tree and its root node. The
// caller owns the tree and must call tree.Close() when done.
func (p *treeSitterParser) parseTree(source []byte) (*sitter.Tree, *sitter.Node) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(p.language)
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, nil
	}
	return tree, tree.RootNode()
}

func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

func nodeLines(node *sitter.Node) (start, end int) {
	return int(node.StartPosition().Row) + 1, int(node.EndPosition().Row) + 1
}

// extractLines returns source lines startLine..endLine inclusive (1-based).
func extractLines(lines []string, startLine, endLine int) string {
	if startLine < 1 || endLine < 1 || startLine > len(lines) {
		return ""
	}
	start := startLine - 1
	end := endLine
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

// walkTree recursively visits node and its descendants. Returning false
// from visitor skips that node's children.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkTree(node.Child(uint(i)), visitor)
	}
}

// findChildrenByType returns all direct children of node matching kind.
func findChildrenByType(node *sitter.Node, kind string) []*sitter.Node {
	var out []*sitter.Node
	if node == nil {
		return out
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(uint(i)); child.Kind() == kind {
			out = append(out, child)
		}
	}
	return out
}

// isTopLevel reports whether node sits directly under the file's root,
// i.e. is not nested inside a function or class body. containerKinds
// lists the node kinds that count as nesting boundaries for the language.
func isTopLevel(node *sitter.Node, containerKinds map[string]bool) bool {
	parent := node.Parent()
	for parent != nil {
		if containerKinds[parent.Kind()] {
			return false
		}
		parent = parent.Parent()
	}
	return true
}
