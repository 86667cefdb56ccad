//go:build cgo

package graphstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dusk-indust/codegraph/internal/codegraph"
)

// SQLiteStore implements Store on a relational SQLite file. Traversals run
// as repeated single-hop lookups against the relationships table.
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check that SQLiteStore satisfies Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path. An empty path
// opens a private in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := "file::memory:?cache=private"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create parent directory: %w", err)
		}
		dsn = "file:" + path + "?_journal_mode=WAL"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// A memory database lives per connection.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS nodes (
		id             TEXT PRIMARY KEY,
		kind           TEXT NOT NULL,
		name           TEXT NOT NULL,
		package_name   TEXT NOT NULL,
		file_path      TEXT NOT NULL,
		qualified_name TEXT NOT NULL,
		start_line     INTEGER NOT NULL,
		end_line       INTEGER NOT NULL,
		start_column   INTEGER NOT NULL,
		end_column     INTEGER NOT NULL,
		content        TEXT NOT NULL,
		language       TEXT NOT NULL,
		node_type      TEXT NOT NULL,
		parent         TEXT NOT NULL,
		source         TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS nodes_qualified_name ON nodes(qualified_name)`,
	`CREATE TABLE IF NOT EXISTS relationships (
		source_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		kind      TEXT NOT NULL,
		PRIMARY KEY (source_id, target_id, kind)
	)`,
	`CREATE INDEX IF NOT EXISTS relationships_target ON relationships(target_id, kind)`,
	`CREATE TABLE IF NOT EXISTS clusters (
		name           TEXT PRIMARY KEY,
		language       TEXT NOT NULL,
		cohesion_score REAL NOT NULL,
		members        TEXT NOT NULL
	)`,
}

// InitSchema creates all tables and indexes if they do not exist.
func (s *SQLiteStore) InitSchema(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: init schema: %w", err)
		}
	}
	return nil
}

// SaveGraph writes g in a single transaction.
func (s *SQLiteStore) SaveGraph(ctx context.Context, g *codegraph.CodeGraph) error {
	if g == nil {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, n := range g.Nodes {
		if err := insertNode(ctx, tx, n); err != nil {
			return err
		}
	}
	for _, r := range g.Relationships {
		if err := insertRelationship(ctx, tx, r); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// AddNode inserts n, replacing any node with the same id.
func (s *SQLiteStore) AddNode(ctx context.Context, n codegraph.CodeNode) error {
	return insertNode(ctx, s.db, n)
}

// AddRelationship inserts r unless it is already stored.
func (s *SQLiteStore) AddRelationship(ctx context.Context, r codegraph.CodeRelationship) error {
	return insertRelationship(ctx, s.db, r)
}

// AddCluster inserts c, replacing a cluster with the same name.
func (s *SQLiteStore) AddCluster(ctx context.Context, c Cluster) error {
	members, err := json.Marshal(c.Members)
	if err != nil {
		return fmt.Errorf("sqlite: encode members: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO clusters (name, language, cohesion_score, members) VALUES (?, ?, ?, ?)`,
		c.Name, c.Language, c.CohesionScore, string(members))
	if err != nil {
		return fmt.Errorf("sqlite: add cluster: %w", err)
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertNode(ctx context.Context, db execer, n codegraph.CodeNode) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO nodes (
			id, kind, name, package_name, file_path, qualified_name,
			start_line, end_line, start_column, end_column, content,
			language, node_type, parent, source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, string(n.Kind), n.Name, n.PackageName, n.FilePath, n.QualifiedName,
		n.StartLine, n.EndLine, n.StartColumn, n.EndColumn, n.Content,
		n.Metadata[codegraph.MetaLanguage], n.Metadata[codegraph.MetaNodeType],
		n.Metadata[codegraph.MetaParent], n.Metadata[codegraph.MetaSource],
	)
	if err != nil {
		return fmt.Errorf("sqlite: add node %s: %w", n.ID, err)
	}
	return nil
}

func insertRelationship(ctx context.Context, db execer, r codegraph.CodeRelationship) error {
	if !validRelationship(r.Kind) {
		return fmt.Errorf("sqlite: unsupported relationship kind: %s", r.Kind)
	}
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO relationships (source_id, target_id, kind) VALUES (?, ?, ?)`,
		r.SourceID, r.TargetID, string(r.Kind))
	if err != nil {
		return fmt.Errorf("sqlite: add relationship %s->%s: %w", r.SourceID, r.TargetID, err)
	}
	return nil
}

const sqliteNodeColumns = `id, kind, name, package_name, file_path, qualified_name,
	start_line, end_line, start_column, end_column, content,
	language, node_type, parent, source`

// GetNode retrieves a single node by id, or returns nil if not found.
func (s *SQLiteStore) GetNode(ctx context.Context, id string) (*codegraph.CodeNode, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+sqliteNodeColumns+" FROM nodes WHERE id = ?", id)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get node %s: %w", id, err)
	}
	return &n, nil
}

// QueryNodes returns nodes whose name or qualified name contains query
// (case-insensitive), optionally filtered by kind.
func (s *SQLiteStore) QueryNodes(ctx context.Context, query string, kind codegraph.ElementKind, limit int) ([]codegraph.CodeNode, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteNodeColumns+` FROM nodes
		 WHERE (lower(name) LIKE ? ESCAPE '\' OR lower(qualified_name) LIKE ? ESCAPE '\')
		   AND (? = '' OR kind = ?)
		 ORDER BY qualified_name, id
		 LIMIT ?`,
		pattern, pattern, string(kind), string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query nodes: %w", err)
	}
	defer rows.Close()

	var out []codegraph.CodeNode
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan node: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Related performs a BFS over relationships of kind starting from id.
func (s *SQLiteStore) Related(ctx context.Context, id string, kind codegraph.RelationshipKind, dir Direction, maxDepth int) ([]Chain, error) {
	var q string
	switch dir {
	case DirectionDownstream, "":
		q = `SELECT target_id FROM relationships WHERE source_id = ? AND (? = '' OR kind = ?) ORDER BY target_id`
	case DirectionUpstream:
		q = `SELECT source_id FROM relationships WHERE target_id = ? AND (? = '' OR kind = ?) ORDER BY source_id`
	default:
		return nil, fmt.Errorf("sqlite: unknown direction: %s", dir)
	}
	return bfs(ctx, id, maxDepth, func(cur string) ([]string, error) {
		rows, err := s.db.QueryContext(ctx, q, cur, string(kind), string(kind))
		if err != nil {
			return nil, fmt.Errorf("sqlite: neighbors of %s: %w", cur, err)
		}
		defer rows.Close()
		var out []string
		for rows.Next() {
			var nb string
			if err := rows.Scan(&nb); err != nil {
				return nil, err
			}
			out = append(out, nb)
		}
		return out, rows.Err()
	})
}

// GetClusters returns all clusters ordered by name.
func (s *SQLiteStore) GetClusters(ctx context.Context) ([]Cluster, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, language, cohesion_score, members FROM clusters ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: get clusters: %w", err)
	}
	defer rows.Close()

	var out []Cluster
	for rows.Next() {
		var (
			c       Cluster
			members string
		)
		if err := rows.Scan(&c.Name, &c.Language, &c.CohesionScore, &members); err != nil {
			return nil, fmt.Errorf("sqlite: scan cluster: %w", err)
		}
		if err := json.Unmarshal([]byte(members), &c.Members); err != nil {
			return nil, fmt.Errorf("sqlite: decode members of %s: %w", c.Name, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Stats returns counts of nodes, relationships, clusters and distinct files.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT count(*) FROM nodes),
		(SELECT count(*) FROM relationships),
		(SELECT count(*) FROM clusters),
		(SELECT count(DISTINCT file_path) FROM nodes)`,
	).Scan(&st.NodeCount, &st.RelationshipCount, &st.ClusterCount, &st.FileCount)
	if err != nil {
		return nil, fmt.Errorf("sqlite: stats: %w", err)
	}
	return &st, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanNode(sc scanner) (codegraph.CodeNode, error) {
	var (
		n                                  codegraph.CodeNode
		kind                               string
		language, nodeType, parent, source string
	)
	err := sc.Scan(
		&n.ID, &kind, &n.Name, &n.PackageName, &n.FilePath, &n.QualifiedName,
		&n.StartLine, &n.EndLine, &n.StartColumn, &n.EndColumn, &n.Content,
		&language, &nodeType, &parent, &source,
	)
	if err != nil {
		return codegraph.CodeNode{}, err
	}
	n.Kind = codegraph.ElementKind(kind)
	n.Metadata = metadataFrom(language, nodeType, parent, source)
	return n, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
