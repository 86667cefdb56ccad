//go:build cgo

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexQueryClusters_SQLite(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "codegraph.yml", "store: sqlite\n")
	writeFile(t, dir, "app/base.py", "class Creature:\n    legs = 4\n")
	writeFile(t, dir, "app/animals.py", "from .base import Creature\n\n\nclass Dog(Creature):\n    def bark(self):\n        pass\n")

	out, err := execute(t, "index", "-q", "--project-root", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite store:")
	_, err = os.Stat(filepath.Join(dir, ".codegraph", "graph.db"))
	require.NoError(t, err)

	out, err = execute(t, "query", "--project-root", dir, "--kind", "class", "dog")
	require.NoError(t, err)
	assert.Contains(t, out, "CLASS")
	assert.Contains(t, out, "Dog")
	assert.NotContains(t, out, "Creature")

	out, err = execute(t, "clusters", "--project-root", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "app (python, cohesion 1.00, 2 files)")
	assert.Contains(t, out, "  app/animals.py\n")

	out, err = execute(t, "context", "--project-root", dir, "Dog")
	require.NoError(t, err)
	assert.Contains(t, out, `## Graph Context for "Dog"`)
	assert.Contains(t, out, "**Cluster:** app")

	// Re-indexing rebuilds rather than appends.
	require.NoError(t, os.Remove(filepath.Join(dir, "app", "animals.py")))
	_, err = execute(t, "index", "-q", "--project-root", dir)
	require.NoError(t, err)
	out, err = execute(t, "query", "--project-root", dir, "Dog")
	require.NoError(t, err)
	assert.Empty(t, out)
}
