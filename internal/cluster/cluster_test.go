package cluster

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codegraph/internal/codegraph"
	"github.com/dusk-indust/codegraph/internal/graphstore"
)

func imp(from, to string) codegraph.ImportInfo {
	return codegraph.ImportInfo{Path: to, FilePath: from}
}

// ---------------------------------------------------------------------------
// Compute
// ---------------------------------------------------------------------------

func TestCompute_Components(t *testing.T) {
	files := []string{
		"src/api/a.ts", "src/api/b.ts", "src/api/c.ts",
		"src/db/x.ts", "src/db/y.ts",
		"src/lonely.ts",
	}
	imports := []codegraph.ImportInfo{
		imp("src/api/a.ts", "./b"),
		imp("src/api/b.ts", "./c"),
		imp("src/db/x.ts", "./y"),
		imp("src/db/y.ts", "./x"), // same undirected edge
		imp("src/lonely.ts", "lodash"),
	}
	r := NewResolver("", files)

	got := Compute(r, codegraph.LangTypeScript, files, imports, 0)
	require.Len(t, got, 2)

	assert.Equal(t, "src/api", got[0].Name)
	assert.Equal(t, []string{"src/api/a.ts", "src/api/b.ts", "src/api/c.ts"}, got[0].Members)
	assert.InDelta(t, 2.0/3.0, got[0].CohesionScore, 1e-9)
	assert.Equal(t, "typescript", got[0].Language)

	assert.Equal(t, "src/db", got[1].Name)
	assert.Equal(t, []string{"src/db/x.ts", "src/db/y.ts"}, got[1].Members)
	assert.InDelta(t, 1.0, got[1].CohesionScore, 1e-9)
}

func TestCompute_MinSize(t *testing.T) {
	files := []string{"a/x.py", "a/y.py", "b/z.py"}
	imports := []codegraph.ImportInfo{imp("a/x.py", ".y")}
	r := NewResolver("", files)

	got := Compute(r, codegraph.LangPython, files, imports, 1)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "b/z.py", got[1].Name, "a single file names itself")
	assert.Zero(t, got[1].CohesionScore)

	assert.Empty(t, Compute(r, codegraph.LangPython, files, imports, 3))
}

func TestCompute_IgnoresImportsFromOutsideBatch(t *testing.T) {
	files := []string{"a/x.py", "a/y.py"}
	imports := []codegraph.ImportInfo{imp("elsewhere/z.py", "a.x")}
	assert.Empty(t, Compute(NewResolver("", files), codegraph.LangPython, files, imports, 2))
}

func TestCompute_DisambiguatesNames(t *testing.T) {
	files := []string{"lib/a.py", "lib/b.py", "lib/c.py", "lib/d.py"}
	imports := []codegraph.ImportInfo{
		imp("lib/a.py", ".b"),
		imp("lib/c.py", ".d"),
	}
	got := Compute(NewResolver("", files), codegraph.LangPython, files, imports, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "lib", got[0].Name)
	assert.Equal(t, "lib#2", got[1].Name)
	assert.Equal(t, []string{"lib/c.py", "lib/d.py"}, got[1].Members)
}

func TestCompute_RootLevelFiles(t *testing.T) {
	files := []string{"a.js", "b.js"}
	got := Compute(NewResolver("", files), codegraph.LangJavaScript, files, []codegraph.ImportInfo{imp("a.js", "./b")}, 2)
	require.Len(t, got, 1)
	assert.Equal(t, ".", got[0].Name)
}

func TestLongestCommonPrefix(t *testing.T) {
	tests := []struct {
		paths []string
		want  string
	}{
		{nil, ""},
		{[]string{"a/b/c.go", "a/b/d.go"}, "a/b/"},
		{[]string{"a/b/c.go", "a/bc/d.go"}, "a/"},
		{[]string{"x.go", "y.go"}, ""},
		{[]string{"pkg/one/a.go", "pkg/one/sub/b.go"}, "pkg/one/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, longestCommonPrefix(tt.paths), "%v", tt.paths)
	}
}

// ---------------------------------------------------------------------------
// Parsed fixtures
// ---------------------------------------------------------------------------

func fixtureImports(t *testing.T, a *codegraph.Analyzer, root string, lang codegraph.Language, files []string) []codegraph.ImportInfo {
	t.Helper()
	var out []codegraph.ImportInfo
	for _, f := range files {
		src, err := os.ReadFile(filepath.Join(root, f))
		require.NoError(t, err)
		imports, err := a.ParseImports(context.Background(), src, f, lang)
		require.NoError(t, err)
		out = append(out, imports...)
	}
	return out
}

func TestCompute_Fixtures(t *testing.T) {
	a := codegraph.New()
	t.Cleanup(func() { _ = a.Close() })
	require.NoError(t, a.Bootstrap(context.Background()))

	t.Run("python", func(t *testing.T) {
		root := "../../testdata/fixtures/python_project"
		files := []string{"zoo/animals.py", "zoo/base.py"}
		imports := fixtureImports(t, a, root, codegraph.LangPython, files)

		got := Compute(NewResolver(root, files), codegraph.LangPython, files, imports, 2)
		require.Len(t, got, 1)
		assert.Equal(t, "zoo", got[0].Name)
		assert.Equal(t, files, got[0].Members)
		assert.InDelta(t, 1.0, got[0].CohesionScore, 1e-9)
	})

	t.Run("typescript", func(t *testing.T) {
		root := "../../testdata/fixtures/ts_project"
		files := []string{"src/logger.ts", "src/shapes.ts"}
		imports := fixtureImports(t, a, root, codegraph.LangTypeScript, files)

		got := Compute(NewResolver(root, files), codegraph.LangTypeScript, files, imports, 2)
		require.Len(t, got, 1)
		assert.Equal(t, "src", got[0].Name)
	})
}

func TestSave(t *testing.T) {
	ctx := context.Background()
	s := graphstore.NewMemStore()
	clusters := []graphstore.Cluster{
		{Name: "a", Members: []string{"a/x.go", "a/y.go"}, CohesionScore: 1},
		{Name: "b", Members: []string{"b/x.go", "b/y.go"}, CohesionScore: 0.5},
	}
	require.NoError(t, Save(ctx, s, clusters))

	got, err := s.GetClusters(ctx)
	require.NoError(t, err)
	assert.Equal(t, clusters, got)
}
