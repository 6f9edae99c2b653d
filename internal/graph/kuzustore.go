//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph
// backend. It requires CGO because the go-kuzu driver wraps KuzuDB's C
// library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(":memory:", cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path, for graph indexes that survive across runs. KuzuDB
// creates the leaf directory itself.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(dbPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open file database: %w", err)
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
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema. The node
// table must precede the relationship table.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS TypeNode(
		name STRING,
		kind STRING,
		qualified_name STRING,
		PRIMARY KEY(name)
	)`,
	`CREATE REL TABLE IF NOT EXISTS DEPENDS(
		FROM TypeNode TO TypeNode,
		relation STRING,
		weight DOUBLE
	)`,
}

// InitSchema creates the node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
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

// AddNode inserts a TypeNode row.
func (s *KuzuStore) AddNode(_ context.Context, node Node) error {
	return s.exec(
		"CREATE (n:TypeNode {name: $name, kind: $kind, qualified_name: $qn})",
		map[string]any{
			"name": node.Name,
			"kind": string(node.Kind),
			"qn":   node.QualifiedName,
		},
	)
}

// AddEdge inserts a DEPENDS relationship. When either endpoint is missing
// the MATCH is empty and the statement is a no-op, which keeps dangling
// edges out of the database.
func (s *KuzuStore) AddEdge(_ context.Context, edge Edge) error {
	return s.exec(
		`MATCH (a:TypeNode {name: $src}), (b:TypeNode {name: $dst})
		 CREATE (a)-[:DEPENDS {relation: $rel, weight: $w}]->(b)`,
		map[string]any{
			"src": edge.Source,
			"dst": edge.Target,
			"rel": string(edge.Relation),
			"w":   edge.Weight,
		},
	)
}

// SaveGraph persists all nodes, then the edges whose endpoints both exist.
func (s *KuzuStore) SaveGraph(ctx context.Context, g *DependencyGraph) error {
	for _, n := range g.Nodes() {
		if err := s.AddNode(ctx, *n); err != nil {
			return err
		}
	}
	for _, e := range g.Edges() {
		if g.FindNode(e.Source) == nil || g.FindNode(e.Target) == nil {
			continue
		}
		if err := s.AddEdge(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// ---------- Read operations ----------

// GetNode retrieves a single TypeNode by name, or returns nil if not found.
func (s *KuzuStore) GetNode(_ context.Context, name string) (*Node, error) {
	rows, err := s.query(
		"MATCH (n:TypeNode {name: $name}) RETURN n.name, n.kind, n.qualified_name",
		map[string]any{"name": name},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToNode(rows[0]), nil
}

// QueryNodes returns nodes whose name contains the query string.
func (s *KuzuStore) QueryNodes(_ context.Context, queryStr string, limit int) ([]Node, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.query(
		`MATCH (n:TypeNode) WHERE n.name CONTAINS $q
		 RETURN n.name, n.kind, n.qualified_name
		 LIMIT $lim`,
		map[string]any{
			"q":   queryStr,
			"lim": int64(limit),
		},
	)
	if err != nil {
		return nil, err
	}
	out := make([]Node, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToNode(r))
	}
	return out, nil
}

// GetEdges returns DEPENDS edges touching the named node in the given
// direction.
func (s *KuzuStore) GetEdges(_ context.Context, name string, dir Direction) ([]Edge, error) {
	var cypher string
	switch dir {
	case DirectionDownstream:
		cypher = `MATCH (a:TypeNode {name: $name})-[r:DEPENDS]->(b:TypeNode)
			 RETURN a.name, b.name, r.relation, r.weight`
	case DirectionUpstream:
		cypher = `MATCH (a:TypeNode)-[r:DEPENDS]->(b:TypeNode {name: $name})
			 RETURN a.name, b.name, r.relation, r.weight`
	default:
		return nil, fmt.Errorf("kuzu: unknown direction: %s", dir)
	}
	rows, err := s.query(cypher, map[string]any{"name": name})
	if err != nil {
		return nil, err
	}
	out := make([]Edge, 0, len(rows))
	for _, r := range rows {
		out = append(out, Edge{
			Source:   toString(r[0]),
			Target:   toString(r[1]),
			Relation: Relation(toString(r[2])),
			Weight:   toFloat64(r[3]),
		})
	}
	return out, nil
}

// StrongEdges returns DEPENDS edges at or above the weight threshold.
func (s *KuzuStore) StrongEdges(_ context.Context, threshold float64) ([]Edge, error) {
	if threshold <= 0 {
		threshold = DefaultStrongThreshold
	}
	rows, err := s.query(
		`MATCH (a:TypeNode)-[r:DEPENDS]->(b:TypeNode) WHERE r.weight >= $w
		 RETURN a.name, b.name, r.relation, r.weight`,
		map[string]any{"w": threshold},
	)
	if err != nil {
		return nil, err
	}
	out := make([]Edge, 0, len(rows))
	for _, r := range rows {
		out = append(out, Edge{
			Source:   toString(r[0]),
			Target:   toString(r[1]),
			Relation: Relation(toString(r[2])),
			Weight:   toFloat64(r[3]),
		})
	}
	return out, nil
}

// ---------- Stats ----------

// Stats returns node and edge counts.
func (s *KuzuStore) Stats(_ context.Context) (*StoreStats, error) {
	nodes, err := s.countQuery("MATCH (n:TypeNode) RETURN count(n)")
	if err != nil {
		return nil, err
	}
	edges, err := s.countQuery("MATCH ()-[r:DEPENDS]->() RETURN count(r)")
	if err != nil {
		return nil, err
	}
	return &StoreStats{NodeCount: nodes, EdgeCount: edges}, nil
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

// countQuery runs a single-value count query.
func (s *KuzuStore) countQuery(cypher string) (int, error) {
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// rowToNode converts a 3-column result row into a Node.
// Column order: name, kind, qualified_name.
func rowToNode(r []any) *Node {
	return &Node{
		Name:          toString(r[0]),
		Kind:          NodeKind(toString(r[1])),
		QualifiedName: toString(r[2]),
	}
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).
// These helpers safely coerce any -> concrete type.

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
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
