//go:build cgo

package graphstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codegraph/internal/codegraph"
)

// newTestKuzuStore creates a fresh in-memory KuzuStore with an initialized
// schema and closes it when the test finishes.
func newTestKuzuStore(t *testing.T) Store {
	t.Helper()
	s, err := NewKuzuStore()
	require.NoError(t, err, "NewKuzuStore should not fail")
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.InitSchema(context.Background()), "InitSchema should not fail")
	return s
}

func TestKuzuStore(t *testing.T) {
	runStoreSuite(t, newTestKuzuStore)
}

func TestKuzuStore_RejectsUnknownRelationship(t *testing.T) {
	s := newTestKuzuStore(t)
	err := s.AddRelationship(context.Background(), codegraph.CodeRelationship{
		SourceID: "a", TargetID: "b", Kind: "CALLS",
	})
	assert.Error(t, err)
}

func TestKuzuStore_FilePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index", "graph.kuzu")
	f := newFixture()

	s, err := Open(KindKuzu, path)
	require.NoError(t, err)
	require.NoError(t, s.InitSchema(ctx))
	require.NoError(t, s.SaveGraph(ctx, f.graph()))
	require.NoError(t, s.Close())

	reopened, err := NewKuzuFileStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	require.NoError(t, reopened.InitSchema(ctx))

	got, err := reopened.GetNode(ctx, f.circle.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "geo.Circle", got.QualifiedName)

	st, err := reopened.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, st.RelationshipCount)
}
