package graphstore

import (
	"context"
	"strings"
	"sync"

	"github.com/dusk-indust/codegraph/internal/codegraph"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
// Nodes keep insertion order so queries are deterministic.
type MemStore struct {
	mu       sync.RWMutex
	nodes    map[string]codegraph.CodeNode
	order    []string
	rels     []codegraph.CodeRelationship
	relSet   map[codegraph.CodeRelationship]bool
	clusters []Cluster
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		nodes:  make(map[string]codegraph.CodeNode),
		relSet: make(map[codegraph.CodeRelationship]bool),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// SaveGraph adds every node and relationship of g.
func (m *MemStore) SaveGraph(ctx context.Context, g *codegraph.CodeGraph) error {
	return saveGraph(ctx, m, g)
}

// AddNode stores n keyed by its id.
func (m *MemStore) AddNode(_ context.Context, n codegraph.CodeNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[n.ID]; !ok {
		m.order = append(m.order, n.ID)
	}
	m.nodes[n.ID] = n
	return nil
}

// AddRelationship appends r unless it is already stored.
func (m *MemStore) AddRelationship(_ context.Context, r codegraph.CodeRelationship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.relSet[r] {
		return nil
	}
	m.relSet[r] = true
	m.rels = append(m.rels, r)
	return nil
}

// AddCluster stores c, replacing a cluster with the same name.
func (m *MemStore) AddCluster(_ context.Context, c Cluster) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.clusters {
		if m.clusters[i].Name == c.Name {
			m.clusters[i] = c
			return nil
		}
	}
	m.clusters = append(m.clusters, c)
	return nil
}

// GetNode returns the node with the given id, or nil if not found.
func (m *MemStore) GetNode(_ context.Context, id string) (*codegraph.CodeNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[id]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

// QueryNodes returns nodes whose name or qualified name contains query
// (case-insensitive), optionally filtered by kind, up to limit results. A
// limit <= 0 returns all matches.
func (m *MemStore) QueryNodes(_ context.Context, query string, kind codegraph.ElementKind, limit int) ([]codegraph.CodeNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := strings.ToLower(query)
	var results []codegraph.CodeNode
	for _, id := range m.order {
		n := m.nodes[id]
		if kind != "" && n.Kind != kind {
			continue
		}
		if !strings.Contains(strings.ToLower(n.Name), q) && !strings.Contains(strings.ToLower(n.QualifiedName), q) {
			continue
		}
		results = append(results, n)
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

// Related performs a BFS over relationships of kind from id.
func (m *MemStore) Related(ctx context.Context, id string, kind codegraph.RelationshipKind, dir Direction, maxDepth int) ([]Chain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return bfs(ctx, id, maxDepth, func(cur string) ([]string, error) {
		return m.neighbors(cur, kind, dir), nil
	})
}

// neighbors returns ids reachable from id in one hop. Callers hold mu.
func (m *MemStore) neighbors(id string, kind codegraph.RelationshipKind, dir Direction) []string {
	var out []string
	for _, r := range m.rels {
		if kind != "" && r.Kind != kind {
			continue
		}
		switch dir {
		case DirectionUpstream:
			if r.TargetID == id {
				out = append(out, r.SourceID)
			}
		default:
			if r.SourceID == id {
				out = append(out, r.TargetID)
			}
		}
	}
	return out
}

// GetClusters returns all stored clusters.
func (m *MemStore) GetClusters(_ context.Context) ([]Cluster, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Cluster, len(m.clusters))
	copy(out, m.clusters)
	return out, nil
}

// Relationships returns a copy of all stored relationships.
func (m *MemStore) Relationships() []codegraph.CodeRelationship {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]codegraph.CodeRelationship, len(m.rels))
	copy(out, m.rels)
	return out
}

// Stats returns counts of nodes, relationships, clusters and distinct files.
func (m *MemStore) Stats(_ context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	files := make(map[string]bool)
	for _, n := range m.nodes {
		files[n.FilePath] = true
	}
	return &Stats{
		NodeCount:         len(m.nodes),
		RelationshipCount: len(m.rels),
		ClusterCount:      len(m.clusters),
		FileCount:         len(files),
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
