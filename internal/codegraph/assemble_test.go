package codegraph

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// testNode builds a node the way the classifier would, with a byte span so
// containment can be decided without a tree.
func testNode(file, pkg, name string, kind ElementKind, parent string, start, end uint) CodeNode {
	var scope []string
	if parent != "" {
		scope = []string{parent}
	}
	qname := qualifiedName(pkg, scope, name)
	return CodeNode{
		ID:            NodeID(file, qname, kind, 0),
		Kind:          kind,
		Name:          name,
		PackageName:   pkg,
		FilePath:      file,
		QualifiedName: qname,
		Metadata:      map[string]string{MetaParent: parent},
		startByte:     start,
		endByte:       end,
	}
}

// ---------------------------------------------------------------------------
// Assemble (pure)
// ---------------------------------------------------------------------------

func TestAssemble_Empty(t *testing.T) {
	g := Assemble(nil, LangJava, 3)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Relationships)
	assert.Equal(t, "java", g.Metadata[MetaLanguage])
	assert.Equal(t, "3", g.Metadata[MetaFileCount])
	assert.Equal(t, Platform, g.Metadata[MetaPlatform])
	assert.Equal(t, "0", g.Metadata[MetaNodeCount])
	assert.Equal(t, "0", g.Metadata[MetaRelationshipCount])
}

func TestAssemble_ContainerPrefersEnclosingNode(t *testing.T) {
	// Two classes named Outer in one file; the member sits inside the second.
	first := testNode("a.java", "p", "Outer", KindClass, "", 0, 10)
	second := testNode("a.java", "p", "Outer", KindClass, "", 20, 40)
	second.ID = NodeID("a.java", second.QualifiedName, KindClass, 1)
	member := testNode("a.java", "p", "m", KindMethod, "Outer", 25, 30)

	g := Assemble([]FileResult{{FilePath: "a.java", Nodes: []CodeNode{first, second, member}}}, LangJava, 1)

	require.Len(t, g.Relationships, 1)
	assert.Equal(t, second.ID, g.Relationships[0].SourceID)
	assert.Equal(t, member.ID, g.Relationships[0].TargetID)
}

func TestAssemble_ContainerScopePreference(t *testing.T) {
	child := testNode("b.py", "pkg", "m", KindMethod, "Holder", 0, 5)
	otherPkg := testNode("x.py", "other", "Holder", KindClass, "", 0, 50)
	samePkg := testNode("c.py", "pkg", "Holder", KindClass, "", 0, 50)
	sameFile := testNode("b.py", "pkg", "Holder", KindClass, "", 100, 200)

	tests := []struct {
		name    string
		results []FileResult
		want    string
	}{
		{
			name: "same file beats same package",
			results: []FileResult{
				{FilePath: "x.py", Nodes: []CodeNode{otherPkg}},
				{FilePath: "c.py", Nodes: []CodeNode{samePkg}},
				{FilePath: "b.py", Nodes: []CodeNode{child, sameFile}},
			},
			want: sameFile.ID,
		},
		{
			name: "same package beats global",
			results: []FileResult{
				{FilePath: "x.py", Nodes: []CodeNode{otherPkg}},
				{FilePath: "c.py", Nodes: []CodeNode{samePkg}},
				{FilePath: "b.py", Nodes: []CodeNode{child}},
			},
			want: samePkg.ID,
		},
		{
			name: "global fallback",
			results: []FileResult{
				{FilePath: "x.py", Nodes: []CodeNode{otherPkg}},
				{FilePath: "b.py", Nodes: []CodeNode{child}},
			},
			want: otherPkg.ID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Assemble(tt.results, LangPython, len(tt.results))
			madeOf := g.RelationshipsOf(RelMadeOf)
			require.Len(t, madeOf, 1)
			assert.Equal(t, tt.want, madeOf[0].SourceID)
			assert.Equal(t, child.ID, madeOf[0].TargetID)
		})
	}
}

func TestAssemble_MissingParentHasNoEdge(t *testing.T) {
	orphan := testNode("a.py", "", "m", KindMethod, "Gone", 0, 5)
	g := Assemble([]FileResult{{FilePath: "a.py", Nodes: []CodeNode{orphan}}}, LangPython, 1)
	assert.Empty(t, g.Relationships)
	assert.Len(t, g.Nodes, 1)
}

func TestAssemble_ResolvesReferences(t *testing.T) {
	sub := testNode("sub.java", "p", "Sub", KindClass, "", 0, 10)
	farBase := testNode("far.java", "q", "Base", KindClass, "", 0, 10)
	nearBase := testNode("base.java", "p", "Base", KindClass, "", 0, 10)
	iface := testNode("i.java", "p", "Named", KindInterface, "", 0, 10)
	method := testNode("m.java", "p", "Base", KindMethod, "Other", 0, 10)

	results := []FileResult{
		{FilePath: "m.java", Nodes: []CodeNode{method}},
		{FilePath: "far.java", Nodes: []CodeNode{farBase}},
		{FilePath: "base.java", Nodes: []CodeNode{nearBase}},
		{FilePath: "i.java", Nodes: []CodeNode{iface}},
		{
			FilePath: "sub.java",
			Nodes:    []CodeNode{sub},
			References: []TypeReference{
				{SourceID: sub.ID, TargetName: "Base", Label: labelExtends, FilePath: "sub.java", PackageName: "p"},
				{SourceID: sub.ID, TargetName: "Named", Label: labelBase, FilePath: "sub.java", PackageName: "p"},
				{SourceID: sub.ID, TargetName: "Missing", Label: labelImplements, FilePath: "sub.java", PackageName: "p"},
			},
		},
	}
	g := Assemble(results, LangJava, len(results))

	assert.True(t, hasEdge(g.Relationships, sub.ID, nearBase.ID, RelExtends), "same package wins")
	assert.False(t, hasEdge(g.Relationships, sub.ID, farBase.ID, RelExtends))
	assert.False(t, hasEdge(g.Relationships, sub.ID, method.ID, RelExtends), "only type-like targets")
	assert.True(t, hasEdge(g.Relationships, sub.ID, iface.ID, RelImplements), "base resolves by target kind")
	assert.Len(t, g.Relationships, 2)
}

func TestAssemble_DropsSelfAndDuplicateEdges(t *testing.T) {
	a := testNode("a.java", "", "A", KindClass, "", 0, 10)
	b := testNode("b.java", "", "B", KindClass, "", 0, 10)
	edge := CodeRelationship{SourceID: a.ID, TargetID: b.ID, Kind: RelExtends}

	g := Assemble([]FileResult{
		{FilePath: "a.java", Nodes: []CodeNode{a}, Relationships: []CodeRelationship{
			edge,
			edge,
			{SourceID: a.ID, TargetID: a.ID, Kind: RelExtends},
		}},
		{FilePath: "b.java", Nodes: []CodeNode{b}},
	}, LangJava, 2)

	assert.Equal(t, []CodeRelationship{edge}, g.Relationships)
	assert.Equal(t, "1", g.Metadata[MetaRelationshipCount])
	assert.Equal(t, "2", g.Metadata[MetaNodeCount])
}

// ---------------------------------------------------------------------------
// ParseCodeGraph
// ---------------------------------------------------------------------------

func javaBatch(t *testing.T) []SourceFile {
	t.Helper()
	return []SourceFile{
		fixtureFile(t, "testdata/fixtures/java_project/src/com/acme/shapes/Shape.java"),
		fixtureFile(t, "testdata/fixtures/java_project/src/com/acme/shapes/AbstractShape.java"),
		fixtureFile(t, "testdata/fixtures/java_project/src/com/acme/shapes/Circle.java"),
	}
}

func TestParseCodeGraph_JavaInheritance(t *testing.T) {
	a := newTestAnalyzer(t)
	g, err := a.ParseCodeGraph(context.Background(), javaBatch(t), LangJava)
	require.NoError(t, err)

	shape := findNode(g.Nodes, "Shape", KindInterface)
	abstract := findNode(g.Nodes, "AbstractShape", KindClass)
	circle := findNode(g.Nodes, "Circle", KindClass)
	require.NotNil(t, shape)
	require.NotNil(t, abstract)
	require.NotNil(t, circle)

	assert.True(t, hasEdge(g.Relationships, circle.ID, abstract.ID, RelExtends))
	assert.True(t, hasEdge(g.Relationships, abstract.ID, shape.ID, RelImplements))
	assert.Len(t, g.RelationshipsOf(RelExtends), 1)
	assert.Len(t, g.RelationshipsOf(RelImplements), 1, "Comparable is outside the batch")

	assert.Equal(t, "java", g.Metadata[MetaLanguage])
	assert.Equal(t, "3", g.Metadata[MetaFileCount])
	assert.Equal(t, strconv.Itoa(len(g.Nodes)), g.Metadata[MetaNodeCount])
	assert.Equal(t, strconv.Itoa(len(g.Relationships)), g.Metadata[MetaRelationshipCount])
}

func TestParseCodeGraph_EdgesReferenceNodes(t *testing.T) {
	a := newTestAnalyzer(t)
	g, err := a.ParseCodeGraph(context.Background(), javaBatch(t), LangJava)
	require.NoError(t, err)

	for _, r := range g.Relationships {
		_, ok := g.NodeByID(r.SourceID)
		assert.True(t, ok, "dangling source %s", r.SourceID)
		_, ok = g.NodeByID(r.TargetID)
		assert.True(t, ok, "dangling target %s", r.TargetID)
		assert.NotEqual(t, r.SourceID, r.TargetID)
	}

	// Every node with a recorded parent that exists in the batch is reached
	// by exactly one MADE_OF edge.
	incoming := make(map[string]int)
	for _, r := range g.RelationshipsOf(RelMadeOf) {
		incoming[r.TargetID]++
	}
	for _, n := range g.Nodes {
		if n.Parent() == "" {
			assert.Zero(t, incoming[n.ID], "%s has no parent", n.QualifiedName)
			continue
		}
		assert.Equal(t, 1, incoming[n.ID], "%s", n.QualifiedName)
	}
}

func TestParseCodeGraph_FileOrder(t *testing.T) {
	a := newTestAnalyzer(t)
	files := javaBatch(t)
	g, err := a.ParseCodeGraph(context.Background(), files, LangJava)
	require.NoError(t, err)

	require.NotEmpty(t, g.Nodes)
	assert.Equal(t, "Shape", g.Nodes[0].Name)
	assert.Equal(t, files[0].Path, g.Nodes[0].FilePath)
	assert.Equal(t, files[2].Path, g.Nodes[len(g.Nodes)-1].FilePath)
}

func TestParseCodeGraph_PythonInheritance(t *testing.T) {
	a := newTestAnalyzer(t)
	files := []SourceFile{
		fixtureFile(t, "testdata/fixtures/python_project/zoo/base.py"),
		fixtureFile(t, "testdata/fixtures/python_project/zoo/animals.py"),
	}
	g, err := a.ParseCodeGraph(context.Background(), files, LangPython)
	require.NoError(t, err)

	creature := findNode(g.Nodes, "Creature", KindClass)
	animal := findNode(g.Nodes, "Animal", KindClass)
	dog := findNode(g.Nodes, "Dog", KindClass)
	require.NotNil(t, creature)
	require.NotNil(t, animal)
	require.NotNil(t, dog)

	assert.True(t, hasEdge(g.Relationships, dog.ID, animal.ID, RelExtends))
	assert.True(t, hasEdge(g.Relationships, animal.ID, creature.ID, RelExtends))
}

func TestParseCodeGraph_TypeScriptHeritage(t *testing.T) {
	a := newTestAnalyzer(t)
	f := fixtureFile(t, "testdata/fixtures/ts_project/src/shapes.ts")
	g, err := a.ParseCodeGraph(context.Background(), []SourceFile{f}, LangTypeScript)
	require.NoError(t, err)

	square := findNode(g.Nodes, "Square", KindClass)
	base := findNode(g.Nodes, "Base", KindClass)
	shape := findNode(g.Nodes, "Shape", KindInterface)
	require.NotNil(t, square)
	require.NotNil(t, base)
	require.NotNil(t, shape)

	assert.True(t, hasEdge(g.Relationships, square.ID, base.ID, RelExtends))
	assert.True(t, hasEdge(g.Relationships, square.ID, shape.ID, RelImplements))
}

func TestParseCodeGraph_GoEmbedding(t *testing.T) {
	a := newTestAnalyzer(t)
	files := []SourceFile{
		fixtureFile(t, "testdata/fixtures/go_project/model.go"),
		fixtureFile(t, "testdata/fixtures/go_project/service.go"),
	}
	g, err := a.ParseCodeGraph(context.Background(), files, LangGo)
	require.NoError(t, err)

	admin := findNode(g.Nodes, "AdminUser", KindClass)
	user := findNode(g.Nodes, "User", KindClass)
	require.NotNil(t, admin)
	require.NotNil(t, user)
	assert.True(t, hasEdge(g.Relationships, admin.ID, user.ID, RelExtends))

	// Methods declared in service.go hang off the type declared there.
	svc := findNode(g.Nodes, "UserService", KindClass)
	get := findNode(g.Nodes, "GetUser", KindMethod)
	require.NotNil(t, svc)
	require.NotNil(t, get)
	assert.True(t, hasEdge(g.Relationships, svc.ID, get.ID, RelMadeOf))
}

func TestParseCodeGraph_RustTraitImpl(t *testing.T) {
	a := newTestAnalyzer(t)
	f := fixtureFile(t, "testdata/fixtures/rust_project/src/shapes.rs")
	g, err := a.ParseCodeGraph(context.Background(), []SourceFile{f}, LangRust)
	require.NoError(t, err)

	circle := findNode(g.Nodes, "Circle", KindClass)
	shape := findNode(g.Nodes, "Shape", KindInterface)
	require.NotNil(t, circle)
	require.NotNil(t, shape)
	assert.True(t, hasEdge(g.Relationships, circle.ID, shape.ID, RelImplements))

	ctor := findNodeByQName(g.Nodes, "Circle.new")
	require.NotNil(t, ctor)
	assert.True(t, hasEdge(g.Relationships, circle.ID, ctor.ID, RelMadeOf))
}

func TestParseCodeGraph_CSharpBaseList(t *testing.T) {
	a := newTestAnalyzer(t)
	f := fixtureFile(t, "testdata/fixtures/csharp_project/Shapes.cs")
	g, err := a.ParseCodeGraph(context.Background(), []SourceFile{f}, LangCSharp)
	require.NoError(t, err)

	circle := findNode(g.Nodes, "Circle", KindClass)
	shape := findNode(g.Nodes, "IShape", KindInterface)
	require.NotNil(t, circle)
	require.NotNil(t, shape)
	assert.True(t, hasEdge(g.Relationships, circle.ID, shape.ID, RelImplements))
}

func TestParseCodeGraph_UnsupportedLanguage(t *testing.T) {
	a := newTestAnalyzer(t)
	g, err := a.ParseCodeGraph(context.Background(), []SourceFile{{Path: "a.cbl", Content: []byte("x")}}, Language("cobol"))
	require.NoError(t, err)
	assert.Empty(t, g.Nodes)
	assert.Equal(t, "1", g.Metadata[MetaFileCount])
}

func TestParseCodeGraph_Cancelled(t *testing.T) {
	a := newTestAnalyzer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.ParseCodeGraph(ctx, javaBatch(t), LangJava)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseCodeGraphs_PerLanguage(t *testing.T) {
	a := newTestAnalyzer(t)
	batches := []LanguageBatch{
		{Language: LangJava, Files: javaBatch(t)},
		{Language: Language("cobol"), Files: []SourceFile{{Path: "a.cbl"}}},
		{Language: LangPython, Files: []SourceFile{fixtureFile(t, "testdata/fixtures/python_project/zoo/base.py")}},
	}
	graphs, err := a.ParseCodeGraphs(context.Background(), batches)
	require.NoError(t, err)
	require.Len(t, graphs, 3)

	assert.Equal(t, "java", graphs[0].Metadata[MetaLanguage])
	assert.NotEmpty(t, graphs[0].Nodes)
	assert.Empty(t, graphs[1].Nodes)
	assert.Equal(t, "python", graphs[2].Metadata[MetaLanguage])
	assert.NotNil(t, findNode(graphs[2].Nodes, "Creature", KindClass))
}
