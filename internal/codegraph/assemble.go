package codegraph

import (
	"strconv"
)

// Assemble folds per-file results into one graph. Nodes and relationships
// keep file order. Unresolved inheritance references and MADE_OF containment
// are joined by name, preferring candidates in the same file, then the same
// package, then anywhere in the batch. Assemble does no I/O and cannot fail.
func Assemble(results []FileResult, lang Language, fileCount int) *CodeGraph {
	a := &assembler{
		byID:   make(map[string]int),
		byName: make(map[string][]int),
		edges:  make(map[CodeRelationship]bool),
	}
	for _, r := range results {
		for _, n := range r.Nodes {
			a.byID[n.ID] = len(a.nodes)
			a.byName[n.Name] = append(a.byName[n.Name], len(a.nodes))
			a.nodes = append(a.nodes, n)
		}
	}
	for _, r := range results {
		for _, rel := range r.Relationships {
			a.add(rel)
		}
	}
	for _, r := range results {
		for _, ref := range r.References {
			a.resolve(ref)
		}
	}
	a.containment()

	return &CodeGraph{
		Nodes:         a.nodes,
		Relationships: a.rels,
		Metadata: map[string]string{
			MetaLanguage:          string(lang),
			MetaFileCount:         strconv.Itoa(fileCount),
			MetaPlatform:          Platform,
			MetaNodeCount:         strconv.Itoa(len(a.nodes)),
			MetaRelationshipCount: strconv.Itoa(len(a.rels)),
		},
	}
}

type assembler struct {
	nodes  []CodeNode
	rels   []CodeRelationship
	byID   map[string]int
	byName map[string][]int
	edges  map[CodeRelationship]bool
}

func (a *assembler) add(rel CodeRelationship) {
	if rel.SourceID == rel.TargetID || a.edges[rel] {
		return
	}
	a.edges[rel] = true
	a.rels = append(a.rels, rel)
}

// resolve links a cross-file inheritance reference to the first type-like
// node with the target name, same package first.
func (a *assembler) resolve(ref TypeReference) {
	si, ok := a.byID[ref.SourceID]
	if !ok {
		return
	}
	source := a.nodes[si]

	fallback := -1
	for _, i := range a.byName[ref.TargetName] {
		n := a.nodes[i]
		if n.ID == source.ID || !n.Kind.IsTypeLike() {
			continue
		}
		if n.PackageName == ref.PackageName {
			a.link(ref.Label, source, n)
			return
		}
		if fallback < 0 {
			fallback = i
		}
	}
	if fallback >= 0 {
		a.link(ref.Label, source, a.nodes[fallback])
	}
}

func (a *assembler) link(label string, source, target CodeNode) {
	a.add(CodeRelationship{
		SourceID: source.ID,
		TargetID: target.ID,
		Kind:     relationshipKind(label, source, target),
	})
}

// containment emits one MADE_OF edge from each node's container to the
// node.
func (a *assembler) containment() {
	for _, child := range a.nodes {
		parent := child.Parent()
		if parent == "" {
			continue
		}
		if i := a.container(child, parent); i >= 0 {
			a.add(CodeRelationship{
				SourceID: a.nodes[i].ID,
				TargetID: child.ID,
				Kind:     RelMadeOf,
			})
		}
	}
}

// container picks the node named parent that holds child: the innermost
// enclosing node in child's file, else the first in its file, else the
// first in its package, else the first in the batch.
func (a *assembler) container(child CodeNode, parent string) int {
	var (
		enclosing = -1
		sameFile  = -1
		samePkg   = -1
		global    = -1
	)
	for _, i := range a.byName[parent] {
		n := a.nodes[i]
		if n.ID == child.ID {
			continue
		}
		if n.FilePath == child.FilePath {
			if n.encloses(child) {
				if enclosing < 0 || a.nodes[enclosing].encloses(n) {
					enclosing = i
				}
			}
			if sameFile < 0 {
				sameFile = i
			}
		}
		if samePkg < 0 && n.PackageName == child.PackageName {
			samePkg = i
		}
		if global < 0 {
			global = i
		}
	}
	for _, i := range []int{enclosing, sameFile, samePkg, global} {
		if i >= 0 {
			return i
		}
	}
	return -1
}
