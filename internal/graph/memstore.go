package graph

import (
	"context"
	"strings"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu      sync.RWMutex
	nodes   map[string]Node
	order   []string
	edges   []Edge
	edgeSet map[edgeKey]bool
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		nodes:   make(map[string]Node),
		edgeSet: make(map[edgeKey]bool),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddNode stores a node keyed by name. Re-adding an existing name keeps the
// first insertion.
func (m *MemStore) AddNode(_ context.Context, node Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[node.Name]; ok {
		return nil
	}
	m.nodes[node.Name] = node
	m.order = append(m.order, node.Name)
	return nil
}

// AddEdge appends an edge, collapsing duplicate (source, target, relation)
// triples.
func (m *MemStore) AddEdge(_ context.Context, edge Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := edgeKey{source: edge.Source, target: edge.Target, relation: edge.Relation}
	if m.edgeSet[key] {
		return nil
	}
	m.edgeSet[key] = true
	m.edges = append(m.edges, edge)
	return nil
}

// SaveGraph persists all nodes, then the edges whose endpoints both exist.
func (m *MemStore) SaveGraph(ctx context.Context, g *DependencyGraph) error {
	for _, n := range g.Nodes() {
		if err := m.AddNode(ctx, *n); err != nil {
			return err
		}
	}
	for _, e := range g.Edges() {
		if g.FindNode(e.Source) == nil || g.FindNode(e.Target) == nil {
			continue
		}
		if err := m.AddEdge(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// GetNode returns the node with the given name, or nil if not found.
func (m *MemStore) GetNode(_ context.Context, name string) (*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[name]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

// QueryNodes returns nodes whose name contains query (case-insensitive), in
// insertion order, up to limit results. A limit <= 0 returns all matches.
func (m *MemStore) QueryNodes(_ context.Context, query string, limit int) ([]Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lowerQuery := strings.ToLower(query)
	var results []Node
	for _, name := range m.order {
		if strings.Contains(strings.ToLower(name), lowerQuery) {
			results = append(results, m.nodes[name])
			if limit > 0 && len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

// GetEdges returns edges touching the named node in the given direction.
func (m *MemStore) GetEdges(_ context.Context, name string, dir Direction) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Edge
	for _, e := range m.edges {
		switch dir {
		case DirectionDownstream:
			if e.Source == name {
				out = append(out, e)
			}
		case DirectionUpstream:
			if e.Target == name {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

// StrongEdges returns persisted edges at or above the weight threshold, in
// insertion order.
func (m *MemStore) StrongEdges(_ context.Context, threshold float64) ([]Edge, error) {
	if threshold <= 0 {
		threshold = DefaultStrongThreshold
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Edge
	for _, e := range m.edges {
		if e.Weight >= threshold {
			out = append(out, e)
		}
	}
	return out, nil
}

// Stats returns node and edge counts.
func (m *MemStore) Stats(_ context.Context) (*StoreStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &StoreStats{
		NodeCount: len(m.nodes),
		EdgeCount: len(m.edges),
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
