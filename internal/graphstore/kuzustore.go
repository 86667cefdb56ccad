//go:build cgo

package graphstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/dusk-indust/codegraph/internal/codegraph"
)

// KuzuStore implements Store using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	mu   sync.Mutex
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given path. KuzuDB creates the leaf itself; the parent must be writable.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(dbPath string) (*KuzuStore, error) {
	db, err := kuzu.OpenDatabase(dbPath, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database %s: %w", dbPath, err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS CodeNode(
		id STRING,
		kind STRING,
		name STRING,
		package_name STRING,
		file_path STRING,
		qualified_name STRING,
		start_line INT64,
		end_line INT64,
		start_column INT64,
		end_column INT64,
		content STRING,
		language STRING,
		node_type STRING,
		parent STRING,
		source STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Cluster(
		name STRING,
		language STRING,
		cohesion_score DOUBLE,
		members STRING,
		PRIMARY KEY(name)
	)`,
	`CREATE REL TABLE IF NOT EXISTS EXTENDS(FROM CodeNode TO CodeNode)`,
	`CREATE REL TABLE IF NOT EXISTS IMPLEMENTS(FROM CodeNode TO CodeNode)`,
	`CREATE REL TABLE IF NOT EXISTS MADE_OF(FROM CodeNode TO CodeNode)`,
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// SaveGraph adds every node and relationship of g.
func (s *KuzuStore) SaveGraph(ctx context.Context, g *codegraph.CodeGraph) error {
	return saveGraph(ctx, s, g)
}

// AddNode inserts n, replacing any node with the same id. Replacing a node
// drops its relationships.
func (s *KuzuStore) AddNode(_ context.Context, n codegraph.CodeNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.exec("MATCH (n:CodeNode {id: $id}) DETACH DELETE n", map[string]any{"id": n.ID}); err != nil {
		return err
	}
	return s.exec(
		`CREATE (n:CodeNode {
			id: $id,
			kind: $kind,
			name: $name,
			package_name: $pkg,
			file_path: $fp,
			qualified_name: $qn,
			start_line: $sl,
			end_line: $el,
			start_column: $sc,
			end_column: $ec,
			content: $content,
			language: $lang,
			node_type: $nt,
			parent: $parent,
			source: $source
		})`,
		map[string]any{
			"id":      n.ID,
			"kind":    string(n.Kind),
			"name":    n.Name,
			"pkg":     n.PackageName,
			"fp":      n.FilePath,
			"qn":      n.QualifiedName,
			"sl":      int64(n.StartLine),
			"el":      int64(n.EndLine),
			"sc":      int64(n.StartColumn),
			"ec":      int64(n.EndColumn),
			"content": n.Content,
			"lang":    n.Metadata[codegraph.MetaLanguage],
			"nt":      n.Metadata[codegraph.MetaNodeType],
			"parent":  n.Metadata[codegraph.MetaParent],
			"source":  n.Metadata[codegraph.MetaSource],
		},
	)
}

// AddRelationship inserts r between two existing nodes unless it is
// already stored.
func (s *KuzuStore) AddRelationship(_ context.Context, r codegraph.CodeRelationship) error {
	if !validRelationship(r.Kind) {
		return fmt.Errorf("kuzu: unsupported relationship kind: %s", r.Kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	params := map[string]any{"src": r.SourceID, "dst": r.TargetID}
	// Relationship table names come from the fixed kind list above.
	rows, err := s.query(fmt.Sprintf(
		"MATCH (a:CodeNode {id: $src})-[r:%s]->(b:CodeNode {id: $dst}) RETURN count(r)", r.Kind), params)
	if err != nil {
		return err
	}
	if len(rows) > 0 && toInt(rows[0][0]) > 0 {
		return nil
	}
	return s.exec(fmt.Sprintf(
		`MATCH (a:CodeNode {id: $src}), (b:CodeNode {id: $dst})
		 CREATE (a)-[:%s]->(b)`, r.Kind), params)
}

// AddCluster inserts c, replacing a cluster with the same name.
func (s *KuzuStore) AddCluster(_ context.Context, c Cluster) error {
	members, err := json.Marshal(c.Members)
	if err != nil {
		return fmt.Errorf("kuzu: encode members: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.exec("MATCH (c:Cluster {name: $name}) DELETE c", map[string]any{"name": c.Name}); err != nil {
		return err
	}
	return s.exec(
		"CREATE (c:Cluster {name: $name, language: $lang, cohesion_score: $score, members: $members})",
		map[string]any{
			"name":    c.Name,
			"lang":    c.Language,
			"score":   c.CohesionScore,
			"members": string(members),
		},
	)
}

// ---------- Read operations ----------

// nodeColumns is the RETURN list decoded by rowToNode.
const nodeColumns = `n.id, n.kind, n.name, n.package_name, n.file_path, n.qualified_name,
	n.start_line, n.end_line, n.start_column, n.end_column, n.content,
	n.language, n.node_type, n.parent, n.source`

// GetNode retrieves a single node by id, or returns nil if not found.
func (s *KuzuStore) GetNode(_ context.Context, id string) (*codegraph.CodeNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.query("MATCH (n:CodeNode {id: $id}) RETURN "+nodeColumns, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	n := rowToNode(rows[0])
	return &n, nil
}

// QueryNodes returns nodes whose name or qualified name contains query
// (case-insensitive), optionally filtered by kind.
func (s *KuzuStore) QueryNodes(_ context.Context, query string, kind codegraph.ElementKind, limit int) ([]codegraph.CodeNode, error) {
	cypher := `MATCH (n:CodeNode)
		WHERE (lower(n.name) CONTAINS $q OR lower(n.qualified_name) CONTAINS $q)
		  AND ($kind = '' OR n.kind = $kind)
		RETURN ` + nodeColumns + `
		ORDER BY n.qualified_name, n.id`
	params := map[string]any{
		"q":    strings.ToLower(query),
		"kind": string(kind),
	}
	if limit > 0 {
		cypher += " LIMIT $lim"
		params["lim"] = int64(limit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.query(cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]codegraph.CodeNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToNode(r))
	}
	return out, nil
}

// ---------- Graph traversal ----------

// Related performs a BFS over relationships of kind starting from id.
func (s *KuzuStore) Related(ctx context.Context, id string, kind codegraph.RelationshipKind, dir Direction, maxDepth int) ([]Chain, error) {
	kinds := relationshipKinds
	if kind != "" {
		if !validRelationship(kind) {
			return nil, fmt.Errorf("kuzu: unsupported relationship kind: %s", kind)
		}
		kinds = []codegraph.RelationshipKind{kind}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return bfs(ctx, id, maxDepth, func(cur string) ([]string, error) {
		var out []string
		for _, k := range kinds {
			nbs, err := s.neighbors(cur, k, dir)
			if err != nil {
				return nil, err
			}
			out = append(out, nbs...)
		}
		return out, nil
	})
}

// neighbors returns immediate neighbors along one relationship table.
func (s *KuzuStore) neighbors(id string, kind codegraph.RelationshipKind, dir Direction) ([]string, error) {
	var cypher string
	switch dir {
	case DirectionDownstream, "":
		cypher = fmt.Sprintf("MATCH (a:CodeNode {id: $id})-[:%s]->(b:CodeNode) RETURN b.id ORDER BY b.id", kind)
	case DirectionUpstream:
		cypher = fmt.Sprintf("MATCH (a:CodeNode)-[:%s]->(b:CodeNode {id: $id}) RETURN a.id ORDER BY a.id", kind)
	default:
		return nil, fmt.Errorf("kuzu: unknown direction: %s", dir)
	}
	rows, err := s.query(cypher, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, toString(r[0]))
	}
	return out, nil
}

// GetClusters returns all Cluster nodes ordered by name.
func (s *KuzuStore) GetClusters(_ context.Context) ([]Cluster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.query(
		"MATCH (c:Cluster) RETURN c.name, c.language, c.cohesion_score, c.members ORDER BY c.name",
		nil,
	)
	if err != nil {
		return nil, err
	}
	out := make([]Cluster, 0, len(rows))
	for _, r := range rows {
		c := Cluster{
			Name:          toString(r[0]),
			Language:      toString(r[1]),
			CohesionScore: toFloat64(r[2]),
		}
		if err := json.Unmarshal([]byte(toString(r[3])), &c.Members); err != nil {
			return nil, fmt.Errorf("kuzu: decode members of %s: %w", c.Name, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// ---------- Stats ----------

// Stats returns counts of nodes, relationships, clusters and distinct files.
func (s *KuzuStore) Stats(_ context.Context) (*Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nodes, err := s.count("MATCH (n:CodeNode) RETURN count(n)")
	if err != nil {
		return nil, err
	}
	clusters, err := s.count("MATCH (c:Cluster) RETURN count(c)")
	if err != nil {
		return nil, err
	}
	files, err := s.count("MATCH (n:CodeNode) RETURN count(DISTINCT n.file_path)")
	if err != nil {
		return nil, err
	}
	rels := 0
	for _, k := range relationshipKinds {
		c, err := s.count(fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", k))
		if err != nil {
			return nil, err
		}
		rels += c
	}
	return &Stats{
		NodeCount:         nodes,
		RelationshipCount: rels,
		ClusterCount:      clusters,
		FileCount:         files,
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// count runs a single-value aggregate query.
func (s *KuzuStore) count(cypher string) (int, error) {
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// rowToNode converts a nodeColumns result row into a CodeNode.
func rowToNode(r []any) codegraph.CodeNode {
	n := codegraph.CodeNode{
		ID:            toString(r[0]),
		Kind:          codegraph.ElementKind(toString(r[1])),
		Name:          toString(r[2]),
		PackageName:   toString(r[3]),
		FilePath:      toString(r[4]),
		QualifiedName: toString(r[5]),
		StartLine:     toInt(r[6]),
		EndLine:       toInt(r[7]),
		StartColumn:   toInt(r[8]),
		EndColumn:     toInt(r[9]),
		Content:       toString(r[10]),
	}
	n.Metadata = metadataFrom(toString(r[11]), toString(r[12]), toString(r[13]), toString(r[14]))
	return n
}

// ---------- Type coercion helpers ----------

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int32:
		return int(n)
	case int:
		return n
	case uint64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
