package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/codegraph/internal/codegraph"
)

// Mermaid produces a Mermaid classDiagram from a graph. Classes,
// interfaces and enums become classes; their MADE_OF children become
// members, except nested types which are drawn as compositions.
func Mermaid(g *codegraph.CodeGraph) string {
	var sb strings.Builder
	sb.WriteString("classDiagram\n")
	if g == nil {
		return sb.String()
	}

	ids := newIDMap()
	byID := make(map[string]codegraph.CodeNode, len(g.Nodes))
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}

	// Declare classes in graph order.
	for _, n := range g.Nodes {
		if !n.Kind.IsTypeLike() {
			continue
		}
		id := ids.get(n)
		fmt.Fprintf(&sb, "  class %s[\"%s\"]\n", id, escapeLabel(n.Name))
		switch n.Kind {
		case codegraph.KindInterface:
			fmt.Fprintf(&sb, "  <<interface>> %s\n", id)
		case codegraph.KindEnum:
			fmt.Fprintf(&sb, "  <<enumeration>> %s\n", id)
		}
	}

	for _, r := range g.Relationships {
		src, okSrc := byID[r.SourceID]
		dst, okDst := byID[r.TargetID]
		if !okSrc || !okDst || !src.Kind.IsTypeLike() {
			continue
		}
		switch r.Kind {
		case codegraph.RelMadeOf:
			if dst.Kind.IsTypeLike() {
				fmt.Fprintf(&sb, "  %s *-- %s\n", ids.get(src), ids.get(dst))
				continue
			}
			fmt.Fprintf(&sb, "  %s : %s\n", ids.get(src), member(dst))
		case codegraph.RelExtends:
			if dst.Kind.IsTypeLike() {
				fmt.Fprintf(&sb, "  %s <|-- %s\n", ids.get(dst), ids.get(src))
			}
		case codegraph.RelImplements:
			if dst.Kind.IsTypeLike() {
				fmt.Fprintf(&sb, "  %s <|.. %s\n", ids.get(dst), ids.get(src))
			}
		}
	}
	return sb.String()
}

// member renders one class member line.
func member(n codegraph.CodeNode) string {
	name := sanitize(n.Name)
	if n.Name == codegraph.ConstructorName {
		name = "init"
	}
	switch n.Kind {
	case codegraph.KindMethod, codegraph.KindConstructor:
		return "+" + name + "()"
	default:
		return "+" + name
	}
}

// idMap hands out Mermaid-safe identifiers derived from qualified names.
type idMap struct {
	byNode map[string]string
	used   map[string]bool
}

func newIDMap() *idMap {
	return &idMap{byNode: make(map[string]string), used: make(map[string]bool)}
}

func (m *idMap) get(n codegraph.CodeNode) string {
	if id, ok := m.byNode[n.ID]; ok {
		return id
	}
	base := sanitize(n.QualifiedName)
	id := base
	for i := 2; m.used[id]; i++ {
		id = fmt.Sprintf("%s_%d", base, i)
	}
	m.used[id] = true
	m.byNode[n.ID] = id
	return id
}

// sanitize keeps ASCII letters, digits and underscores, replacing anything
// else with "_". Identifiers never start with a digit.
func sanitize(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	out := sb.String()
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		out = "N" + out
	}
	return out
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
