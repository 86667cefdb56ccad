package cluster

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/dusk-indust/codegraph/internal/codegraph"
	"github.com/dusk-indust/codegraph/internal/graphstore"
)

// DefaultMinSize is the smallest cluster Compute reports unless told otherwise.
const DefaultMinSize = 2

// Compute finds groups of files connected by resolvable imports.
//
// Algorithm:
//  1. Resolve every import to batch files and build an undirected file graph.
//  2. Find connected components via BFS, starting from files in input order.
//  3. Keep components with at least minSize files, score their cohesion and
//     name them after the longest common directory of their members.
//
// Clusters are sorted by size descending, then name.
func Compute(r *Resolver, lang codegraph.Language, files []string, imports []codegraph.ImportInfo, minSize int) []graphstore.Cluster {
	if minSize <= 0 {
		minSize = DefaultMinSize
	}

	var order []string
	adj := make(map[string]map[string]bool, len(files))
	for _, f := range files {
		f = path.Clean(f)
		if adj[f] == nil {
			adj[f] = make(map[string]bool)
			order = append(order, f)
		}
	}
	for _, imp := range imports {
		src := path.Clean(imp.FilePath)
		if adj[src] == nil {
			continue
		}
		for _, dst := range r.Resolve(imp, lang) {
			if adj[dst] == nil || dst == src {
				continue
			}
			adj[src][dst] = true
			adj[dst][src] = true
		}
	}

	visited := make(map[string]bool, len(order))
	var clusters []graphstore.Cluster
	for _, f := range order {
		if visited[f] {
			continue
		}
		component := bfsComponent(f, adj, visited)
		if len(component) < minSize {
			continue
		}
		sort.Strings(component)
		clusters = append(clusters, graphstore.Cluster{
			Name:          clusterName(component),
			Language:      string(lang),
			CohesionScore: cohesion(component, adj),
			Members:       component,
		})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		if len(clusters[i].Members) != len(clusters[j].Members) {
			return len(clusters[i].Members) > len(clusters[j].Members)
		}
		return clusters[i].Name < clusters[j].Name
	})
	dedupeNames(clusters)
	return clusters
}

// Save stores every cluster in s.
func Save(ctx context.Context, s graphstore.Store, clusters []graphstore.Cluster) error {
	for _, c := range clusters {
		if err := s.AddCluster(ctx, c); err != nil {
			return fmt.Errorf("cluster: save %s: %w", c.Name, err)
		}
	}
	return nil
}

// bfsComponent performs BFS from start and returns all reachable files,
// marking them visited. Neighbors are visited in path order.
func bfsComponent(start string, adj map[string]map[string]bool, visited map[string]bool) []string {
	var component []string
	queue := []string{start}
	visited[start] = true

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		component = append(component, node)

		neighbors := make([]string, 0, len(adj[node]))
		for nb := range adj[node] {
			neighbors = append(neighbors, nb)
		}
		sort.Strings(neighbors)
		for _, nb := range neighbors {
			if !visited[nb] {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}
	return component
}

// cohesion is the edge density of a component: internal edges over the
// number of possible edges between its members.
func cohesion(component []string, adj map[string]map[string]bool) float64 {
	n := len(component)
	if n < 2 {
		return 0
	}
	internal := 0
	for i, a := range component {
		for _, b := range component[i+1:] {
			if adj[a][b] {
				internal++
			}
		}
	}
	return float64(internal) / float64(n*(n-1)/2)
}

// clusterName is the longest common directory of paths, or "." when the
// members share none. A single file names itself.
func clusterName(paths []string) string {
	if len(paths) == 1 {
		return paths[0]
	}
	prefix := longestCommonPrefix(paths)
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return "."
	}
	return prefix
}

// longestCommonPrefix finds the longest common path prefix among a set of
// file paths, ending at a directory boundary.
func longestCommonPrefix(paths []string) string {
	if len(paths) == 0 {
		return ""
	}

	prefix := paths[0]
	for _, p := range paths[1:] {
		for !strings.HasPrefix(p, prefix) {
			trimmed := strings.TrimRight(prefix, "/")
			idx := strings.LastIndex(trimmed, "/")
			if idx < 0 {
				return ""
			}
			prefix = trimmed[:idx+1] // keep the trailing slash
		}
	}

	if !strings.HasSuffix(prefix, "/") {
		idx := strings.LastIndex(prefix, "/")
		if idx < 0 {
			return ""
		}
		prefix = prefix[:idx+1]
	}
	return prefix
}

// dedupeNames suffixes repeated cluster names with "#2", "#3", ...
func dedupeNames(clusters []graphstore.Cluster) {
	seen := make(map[string]int, len(clusters))
	for i := range clusters {
		name := clusters[i].Name
		seen[name]++
		if seen[name] > 1 {
			clusters[i].Name = fmt.Sprintf("%s#%d", name, seen[name])
		}
	}
}
