package codegraph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// classifier walks one tree and emits a CodeNode per declaration.
type classifier struct {
	desc        *Descriptor
	lang        Language
	src         []byte
	filePath    string
	packageName string
	ids         *idGenerator
	nodes       []CodeNode
}

// Classify walks tree in pre-order and returns its declarations. The lexical
// parent of each declaration is recorded in metadata and folded into its
// qualified name.
func Classify(tree *SyntaxTree, desc *Descriptor, filePath, packageName string) []CodeNode {
	c := &classifier{
		desc:        desc,
		lang:        tree.Language,
		src:         tree.Source,
		filePath:    filePath,
		packageName: packageName,
		ids:         newIDGenerator(filePath),
	}

	cursor := tree.Root().Walk()
	defer cursor.Close()
	c.walk(cursor, nil)
	return c.nodes
}

func (c *classifier) walk(cursor *tree_sitter.TreeCursor, scope []string) {
	node := cursor.Node()
	childScope := scope

	if kind, ok := c.desc.kindOf(node); ok {
		// Go methods nest under their receiver type rather than the file.
		if recv, ok := c.desc.Receivers[node.Kind()]; ok {
			if name := c.desc.typeNameIn(node, recv, c.src); name != "" {
				scope = appendScope(scope, name)
			}
		}
		cn := c.emit(node, kind, scope)
		childScope = appendScope(scope, cn.Name)
	} else if field, ok := c.desc.Scopes[node.Kind()]; ok {
		if name := c.desc.typeNameIn(node, field, c.src); name != "" {
			childScope = appendScope(scope, name)
		}
	}

	if cursor.GotoFirstChild() {
		c.walk(cursor, childScope)
		for cursor.GotoNextSibling() {
			c.walk(cursor, childScope)
		}
		cursor.GotoParent()
	}
}

func (c *classifier) emit(node *tree_sitter.Node, kind ElementKind, scope []string) CodeNode {
	name := c.desc.declName(node, c.src)
	if kind == KindMethod && c.desc.ctorNames[name] {
		kind = KindConstructor
	}
	switch {
	case kind == KindConstructor:
		name = ConstructorName
	case name == "":
		name = UnknownName
	}

	parent := ""
	if len(scope) > 0 {
		parent = scope[len(scope)-1]
	}
	qualified := qualifiedName(c.packageName, scope, name)

	startLine, endLine, startCol, endCol := span(node)
	cn := CodeNode{
		ID:            c.ids.next(qualified, kind),
		Kind:          kind,
		Name:          name,
		PackageName:   c.packageName,
		FilePath:      c.filePath,
		QualifiedName: qualified,
		StartLine:     startLine,
		EndLine:       endLine,
		StartColumn:   startCol,
		EndColumn:     endCol,
		Content:       nodeText(node, c.src),
		Metadata: map[string]string{
			MetaLanguage: string(c.lang),
			MetaNodeType: node.Kind(),
			MetaParent:   parent,
			MetaSource:   SourceClassifier,
		},
		startByte: node.StartByte(),
		endByte:   node.EndByte(),
	}
	c.nodes = append(c.nodes, cn)
	return cn
}

// qualifiedName joins package, enclosing names and name with dots,
// skipping empty segments.
func qualifiedName(pkg string, scope []string, name string) string {
	parts := make([]string, 0, len(scope)+2)
	if pkg != "" {
		parts = append(parts, pkg)
	}
	for _, s := range scope {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if name != "" {
		parts = append(parts, name)
	}
	return strings.Join(parts, ".")
}

// appendScope returns scope+name without aliasing scope's backing array.
func appendScope(scope []string, name string) []string {
	out := make([]string, len(scope), len(scope)+1)
	copy(out, scope)
	return append(out, name)
}
