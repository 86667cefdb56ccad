package codegraph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// TypeReference is an inheritance reference whose target could not be found
// in the declaring file. The assembler resolves it against the batch.
type TypeReference struct {
	SourceID    string `json:"sourceId"`
	TargetName  string `json:"targetName"`
	Label       string `json:"label"`
	FilePath    string `json:"filePath"`
	PackageName string `json:"packageName"`
}

// FileResult is the per-file output of extraction.
type FileResult struct {
	FilePath      string
	PackageName   string
	Nodes         []CodeNode
	Relationships []CodeRelationship
	References    []TypeReference
}

// inheritance runs the inheritance query and links each declaration to its
// supertypes. Targets declared in the same file are linked directly; the
// rest are returned as references.
func (e *QueryEngine) inheritance(tree *SyntaxTree, d *Descriptor, nodes []CodeNode, filePath, pkg string) ([]CodeRelationship, []TypeReference) {
	if tree.Grammar == nil || len(nodes) == 0 {
		return nil, nil
	}
	matches := e.intentMatches(tree.Grammar, d, IntentInheritance, tree.Root(), tree.Source)
	if len(matches) == 0 {
		return nil, nil
	}

	var (
		rels []CodeRelationship
		refs []TypeReference
		seen = make(map[string]bool)
	)
	for _, m := range matches {
		classCap, ok := m.First(labelClass)
		if !ok {
			continue
		}
		source, ok := declarationFor(classCap.Node, tree, nodes)
		if !ok {
			continue
		}
		for _, c := range m.Captures {
			if c.Label != labelExtends && c.Label != labelImplements && c.Label != labelBase {
				continue
			}
			target := strings.TrimSpace(tree.Text(c.Node))
			if target == "" || target == source.Name {
				continue
			}
			key := source.ID + "\x00" + c.Label + "\x00" + target
			if seen[key] {
				continue
			}
			seen[key] = true

			if t, ok := findTypeByName(nodes, target, source.ID); ok {
				rels = append(rels, CodeRelationship{
					SourceID: source.ID,
					TargetID: t.ID,
					Kind:     relationshipKind(c.Label, source, t),
				})
				continue
			}
			refs = append(refs, TypeReference{
				SourceID:    source.ID,
				TargetName:  target,
				Label:       c.Label,
				FilePath:    filePath,
				PackageName: pkg,
			})
		}
	}
	return rels, refs
}

// declarationFor maps a captured declaration name to the node classified
// for that declaration: first by the span of the name's parent, then by
// name among the file's type-like nodes.
func declarationFor(nameNode *tree_sitter.Node, tree *SyntaxTree, nodes []CodeNode) (CodeNode, bool) {
	if decl := nameNode.Parent(); decl != nil {
		start, end := decl.StartByte(), decl.EndByte()
		for _, n := range nodes {
			if n.startByte == start && n.endByte == end && n.Kind.IsTypeLike() {
				return n, true
			}
		}
	}
	return findTypeByName(nodes, strings.TrimSpace(tree.Text(nameNode)), "")
}

// findTypeByName returns the first type-like node named name, skipping the
// node with id exclude.
func findTypeByName(nodes []CodeNode, name, exclude string) (CodeNode, bool) {
	for _, n := range nodes {
		if n.Name == name && n.ID != exclude && n.Kind.IsTypeLike() {
			return n, true
		}
	}
	return CodeNode{}, false
}

// relationshipKind decides the edge kind for a captured supertype. A "base"
// capture becomes IMPLEMENTS when a non-interface points at an interface.
func relationshipKind(label string, source, target CodeNode) RelationshipKind {
	switch label {
	case labelExtends:
		return RelExtends
	case labelImplements:
		return RelImplements
	}
	if source.Kind != KindInterface && target.Kind == KindInterface {
		return RelImplements
	}
	return RelExtends
}
