package codegraph

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// SyntaxTree is the result of one parse. It owns the underlying C tree and
// must be closed.
type SyntaxTree struct {
	Language Language
	Grammar  *Grammar
	Source   []byte

	tree *tree_sitter.Tree
}

// Root returns the root node.
func (t *SyntaxTree) Root() *tree_sitter.Node {
	return t.tree.RootNode()
}

// HasError reports whether the tree contains error or missing nodes.
func (t *SyntaxTree) HasError() bool {
	return t.Root().HasError()
}

// Close releases the tree. The source slice is not touched.
func (t *SyntaxTree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Text returns the source text spanned by n, or "" when the span does not
// fit the source.
func (t *SyntaxTree) Text(n *tree_sitter.Node) string {
	return nodeText(n, t.Source)
}

// Issues returns every error and missing node in pre-order.
func (t *SyntaxTree) Issues() []SyntaxIssue {
	var issues []SyntaxIssue
	root := t.Root()
	if !root.HasError() {
		return nil
	}

	cursor := root.Walk()
	defer cursor.Close()
	t.collectIssues(cursor, &issues)
	return issues
}

func (t *SyntaxTree) collectIssues(cursor *tree_sitter.TreeCursor, issues *[]SyntaxIssue) {
	node := cursor.Node()
	if !node.HasError() && !node.IsMissing() {
		return
	}

	switch {
	case node.IsMissing():
		*issues = append(*issues, t.issue("missing", node))
	case node.IsError():
		*issues = append(*issues, t.issue("error", node))
	}

	if cursor.GotoFirstChild() {
		t.collectIssues(cursor, issues)
		for cursor.GotoNextSibling() {
			t.collectIssues(cursor, issues)
		}
		cursor.GotoParent()
	}
}

func (t *SyntaxTree) issue(kind string, n *tree_sitter.Node) SyntaxIssue {
	start, end := n.StartPosition(), n.EndPosition()
	return SyntaxIssue{
		Kind:      kind,
		NodeType:  n.Kind(),
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column),
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column),
		Text:      truncate(t.Text(n), 80),
	}
}

// nodeText slices src by n's byte span after validating it.
func nodeText(n *tree_sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if start > end || end > uint(len(src)) {
		return ""
	}
	return string(src[start:end])
}

// span returns the 1-based line and 0-based column span of n.
func span(n *tree_sitter.Node) (startLine, endLine, startCol, endCol int) {
	s, e := n.StartPosition(), n.EndPosition()
	return int(s.Row) + 1, int(e.Row) + 1, int(s.Column), int(e.Column)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
