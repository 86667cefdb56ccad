// Package graphstore persists code graphs. All backends implement Store:
// MemStore for tests and one-shot runs, KuzuStore and SQLiteStore for
// indexes that outlive the process.
package graphstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dusk-indust/codegraph/internal/codegraph"
)

// Store is the interface for graph persistence backends.
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted. Idempotent.
	InitSchema(ctx context.Context) error

	// Write operations. Adding a node whose id exists replaces it; adding
	// an existing relationship is a no-op.
	SaveGraph(ctx context.Context, g *codegraph.CodeGraph) error
	AddNode(ctx context.Context, n codegraph.CodeNode) error
	AddRelationship(ctx context.Context, r codegraph.CodeRelationship) error
	AddCluster(ctx context.Context, c Cluster) error

	// Read operations. GetNode returns nil, nil for an unknown id.
	GetNode(ctx context.Context, id string) (*codegraph.CodeNode, error)
	QueryNodes(ctx context.Context, query string, kind codegraph.ElementKind, limit int) ([]codegraph.CodeNode, error)

	// Graph traversal over one relationship kind ("" follows every kind).
	Related(ctx context.Context, id string, kind codegraph.RelationshipKind, dir Direction, maxDepth int) ([]Chain, error)
	GetClusters(ctx context.Context) ([]Cluster, error)

	Stats(ctx context.Context) (*Stats, error)
}

// Direction controls traversal direction.
type Direction string

const (
	DirectionDownstream Direction = "downstream" // follow edges source -> target
	DirectionUpstream   Direction = "upstream"   // follow edges target -> source
)

// Kind names a Store backend.
type Kind string

const (
	KindMemory Kind = "memory"
	KindKuzu   Kind = "kuzu"
	KindSQLite Kind = "sqlite"
)

// ErrUnknownKind is returned by Open for an unrecognised backend name.
var ErrUnknownKind = errors.New("graphstore: unknown store kind")

// Cluster is a group of files tightly connected by imports.
type Cluster struct {
	Name          string   `json:"name"`
	Language      string   `json:"language,omitempty"`
	CohesionScore float64  `json:"cohesionScore"`
	Members       []string `json:"members"` // file paths
}

// Chain is an ordered path of node ids reached by a traversal.
type Chain struct {
	Nodes []string `json:"nodes"`
	Depth int      `json:"depth"`
}

// Stats summarizes the contents of a store.
type Stats struct {
	NodeCount         int `json:"nodeCount"`
	RelationshipCount int `json:"relationshipCount"`
	ClusterCount      int `json:"clusterCount"`
	FileCount         int `json:"fileCount"`
}

// Open returns the backend named kind. An empty path keeps kuzu and sqlite
// in memory.
func Open(kind Kind, path string) (Store, error) {
	switch kind {
	case KindMemory, "":
		return NewMemStore(), nil
	case KindKuzu:
		if path == "" {
			return NewKuzuStore()
		}
		return NewKuzuFileStore(path)
	case KindSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// saveGraph writes g through s one element at a time.
func saveGraph(ctx context.Context, s Store, g *codegraph.CodeGraph) error {
	if g == nil {
		return nil
	}
	for _, n := range g.Nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.AddNode(ctx, n); err != nil {
			return fmt.Errorf("add node %s: %w", n.QualifiedName, err)
		}
	}
	for _, r := range g.Relationships {
		if err := s.AddRelationship(ctx, r); err != nil {
			return fmt.Errorf("add relationship %s->%s: %w", r.SourceID, r.TargetID, err)
		}
	}
	return nil
}

// bfs walks outward from start up to maxDepth hops and returns one chain
// per reachable node, nearest first.
func bfs(ctx context.Context, start string, maxDepth int, neighbors func(id string) ([]string, error)) ([]Chain, error) {
	if maxDepth <= 0 {
		return nil, nil
	}

	type entry struct {
		id   string
		path []string
	}

	visited := map[string]bool{start: true}
	queue := []entry{{id: start, path: []string{start}}}
	var chains []Chain

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var next []entry
		for _, e := range queue {
			nbs, err := neighbors(e.id)
			if err != nil {
				return nil, err
			}
			for _, nb := range nbs {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				path := make([]string, len(e.path), len(e.path)+1)
				copy(path, e.path)
				path = append(path, nb)
				chains = append(chains, Chain{Nodes: path, Depth: len(path) - 1})
				next = append(next, entry{id: nb, path: path})
			}
		}
		queue = next
	}
	return chains, nil
}

// relationshipKinds lists every kind a traversal may follow.
var relationshipKinds = []codegraph.RelationshipKind{
	codegraph.RelExtends,
	codegraph.RelImplements,
	codegraph.RelMadeOf,
}

func validRelationship(kind codegraph.RelationshipKind) bool {
	for _, k := range relationshipKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// metadataFrom rebuilds a node's metadata map from its persisted columns,
// leaving out empty values.
func metadataFrom(language, nodeType, parent, source string) map[string]string {
	md := make(map[string]string, 4)
	for k, v := range map[string]string{
		codegraph.MetaLanguage: language,
		codegraph.MetaNodeType: nodeType,
		codegraph.MetaParent:   parent,
		codegraph.MetaSource:   source,
	} {
		if v != "" {
			md[k] = v
		}
	}
	return md
}
