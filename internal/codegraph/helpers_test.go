package codegraph

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestAnalyzer returns a bootstrapped analyzer with an isolated registry.
func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a := New(WithLogger(discardLogger()))
	require.NoError(t, a.Bootstrap(context.Background()))
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// readFixture reads a test fixture file relative to the project root.
// Tests run from internal/codegraph/, so the relative path is ../../testdata/...
func readFixture(t *testing.T, relPath string) []byte {
	t.Helper()
	data, err := os.ReadFile("../../" + relPath)
	require.NoError(t, err, "reading fixture %s", relPath)
	return data
}

// fixtureFile wraps readFixture as a SourceFile keyed by its relative path.
func fixtureFile(t *testing.T, relPath string) SourceFile {
	t.Helper()
	return SourceFile{Path: relPath, Content: readFixture(t, relPath)}
}

// findNode returns the first node with the given name and kind, or nil.
func findNode(nodes []CodeNode, name string, kind ElementKind) *CodeNode {
	for i := range nodes {
		if nodes[i].Name == name && nodes[i].Kind == kind {
			return &nodes[i]
		}
	}
	return nil
}

// findNodeByQName returns the first node with the given qualified name.
func findNodeByQName(nodes []CodeNode, qname string) *CodeNode {
	for i := range nodes {
		if nodes[i].QualifiedName == qname {
			return &nodes[i]
		}
	}
	return nil
}

// hasEdge reports whether rels contains source -> target of kind.
func hasEdge(rels []CodeRelationship, source, target string, kind RelationshipKind) bool {
	for _, r := range rels {
		if r.SourceID == source && r.TargetID == target && r.Kind == kind {
			return true
		}
	}
	return false
}

// edgesOf returns the relationships of one kind.
func edgesOf(rels []CodeRelationship, kind RelationshipKind) []CodeRelationship {
	var out []CodeRelationship
	for _, r := range rels {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// kindNames projects nodes onto "KIND name", in order.
func kindNames(nodes []CodeNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = string(n.Kind) + " " + n.Name
	}
	return out
}

// nodeNames projects nodes onto their names, in order.
func nodeNames(nodes []CodeNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

// importByPath returns the first import with the given path, or nil.
func importByPath(imports []ImportInfo, path string) *ImportInfo {
	for i := range imports {
		if imports[i].Path == path {
			return &imports[i]
		}
	}
	return nil
}
