package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codegraph/internal/codegraph"
	"github.com/dusk-indust/codegraph/internal/graphstore"
)

func n(id, qname, name string, kind codegraph.ElementKind) codegraph.CodeNode {
	return codegraph.CodeNode{ID: id, QualifiedName: qname, Name: name, Kind: kind}
}

func sampleGraph() *codegraph.CodeGraph {
	return &codegraph.CodeGraph{
		Nodes: []codegraph.CodeNode{
			n("1", "geo.Shape", "Shape", codegraph.KindInterface),
			n("2", "geo.Circle", "Circle", codegraph.KindClass),
			n("3", "geo.Circle.<init>", codegraph.ConstructorName, codegraph.KindConstructor),
			n("4", "geo.Circle.area", "area", codegraph.KindMethod),
			n("5", "geo.Circle.radius", "radius", codegraph.KindField),
			n("6", "geo.Circle.Unit", "Unit", codegraph.KindEnum),
			n("7", "geo.Base", "Base", codegraph.KindClass),
		},
		Relationships: []codegraph.CodeRelationship{
			{SourceID: "2", TargetID: "3", Kind: codegraph.RelMadeOf},
			{SourceID: "2", TargetID: "4", Kind: codegraph.RelMadeOf},
			{SourceID: "2", TargetID: "5", Kind: codegraph.RelMadeOf},
			{SourceID: "2", TargetID: "6", Kind: codegraph.RelMadeOf},
			{SourceID: "2", TargetID: "7", Kind: codegraph.RelExtends},
			{SourceID: "2", TargetID: "1", Kind: codegraph.RelImplements},
		},
		Metadata: map[string]string{
			codegraph.MetaLanguage:  "java",
			codegraph.MetaFileCount: "2",
		},
	}
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

func TestNewDocument_Merges(t *testing.T) {
	py := &codegraph.CodeGraph{
		Nodes:    []codegraph.CodeNode{n("p", "zoo.Animal", "Animal", codegraph.KindClass)},
		Metadata: map[string]string{codegraph.MetaLanguage: "python", codegraph.MetaFileCount: "1"},
	}
	clusters := []graphstore.Cluster{{Name: "geo", Members: []string{"a", "b"}}}

	doc := NewDocument([]*codegraph.CodeGraph{py, sampleGraph(), nil}, clusters)

	assert.Len(t, doc.Nodes, 8)
	assert.Len(t, doc.Relationships, 6)
	assert.Equal(t, "java,python", doc.Metadata[codegraph.MetaLanguage])
	assert.Equal(t, "3", doc.Metadata[codegraph.MetaFileCount])
	assert.Equal(t, "8", doc.Metadata[codegraph.MetaNodeCount])
	assert.Equal(t, "6", doc.Metadata[codegraph.MetaRelationshipCount])
	assert.Equal(t, codegraph.Platform, doc.Metadata[codegraph.MetaPlatform])
	assert.Equal(t, clusters, doc.Clusters)

	g := doc.Graph()
	assert.Len(t, g.Nodes, 8)
	assert.Len(t, g.Relationships, 6)
	assert.Equal(t, doc.Metadata, g.Metadata)
}

func TestWriteJSON(t *testing.T) {
	doc := NewDocument([]*codegraph.CodeGraph{sampleGraph()}, nil)

	var first, second bytes.Buffer
	require.NoError(t, WriteJSON(&first, doc))
	require.NoError(t, WriteJSON(&second, doc))
	assert.Equal(t, first.String(), second.String(), "output is stable")
	assert.True(t, strings.HasSuffix(first.String(), "}\n"))
	assert.Contains(t, first.String(), "\n  \"metadata\": {")
	assert.NotContains(t, first.String(), "clusters")

	var decoded Document
	require.NoError(t, json.Unmarshal(first.Bytes(), &decoded))
	assert.Equal(t, "geo.Circle", decoded.Nodes[1].QualifiedName)
	assert.Equal(t, codegraph.RelExtends, decoded.Relationships[4].Kind)
}

func TestWriteJSON_EmptyGraphUsesArrays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewDocument(nil, nil)))
	assert.Contains(t, buf.String(), `"nodes": []`)
	assert.Contains(t, buf.String(), `"relationships": []`)
}

// ---------------------------------------------------------------------------
// Mermaid
// ---------------------------------------------------------------------------

func TestMermaid(t *testing.T) {
	out := Mermaid(sampleGraph())
	lines := strings.Split(strings.TrimSpace(out), "\n")

	assert.Equal(t, []string{
		"classDiagram",
		`  class geo_Shape["Shape"]`,
		"  <<interface>> geo_Shape",
		`  class geo_Circle["Circle"]`,
		`  class geo_Circle_Unit["Unit"]`,
		"  <<enumeration>> geo_Circle_Unit",
		`  class geo_Base["Base"]`,
		"  geo_Circle : +init()",
		"  geo_Circle : +area()",
		"  geo_Circle : +radius",
		"  geo_Circle *-- geo_Circle_Unit",
		"  geo_Base <|-- geo_Circle",
		"  geo_Shape <|.. geo_Circle",
	}, lines)
}

func TestMermaid_Empty(t *testing.T) {
	assert.Equal(t, "classDiagram\n", Mermaid(nil))
	assert.Equal(t, "classDiagram\n", Mermaid(&codegraph.CodeGraph{}))
}

func TestMermaid_IDCollisions(t *testing.T) {
	g := &codegraph.CodeGraph{Nodes: []codegraph.CodeNode{
		n("a", "a.b", "b", codegraph.KindClass),
		n("b", "a_b", "b", codegraph.KindClass),
	}}
	out := Mermaid(g)
	assert.Contains(t, out, `class a_b["b"]`)
	assert.Contains(t, out, `class a_b_2["b"]`)
}

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"com.acme.Foo":   "com_acme_Foo",
		"Foo<T>":         "Foo_T_",
		"9lives":         "N9lives",
		"":               "N",
		"Ünicode":        "_nicode",
		"snake_case_ok1": "snake_case_ok1",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitize(in), in)
	}
}
