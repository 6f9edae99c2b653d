package graph

import (
	"context"
	"io"
)

// Store is the persistence interface for dependency graphs.
// Implementations: KuzuStore (graph database, cgo builds) and MemStore
// (in-memory, tests and cgo-free builds). All graph persistence goes
// through this interface.
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations.
	AddNode(ctx context.Context, node Node) error
	AddEdge(ctx context.Context, edge Edge) error

	// SaveGraph persists a whole graph: nodes first, then edges. Dangling
	// edges, whose endpoints have no node, are not persisted.
	SaveGraph(ctx context.Context, g *DependencyGraph) error

	// Read operations.
	GetNode(ctx context.Context, name string) (*Node, error)
	QueryNodes(ctx context.Context, query string, limit int) ([]Node, error)
	GetEdges(ctx context.Context, name string, dir Direction) ([]Edge, error)

	// StrongEdges returns the persisted edges whose weight is at or above
	// the threshold; zero or below means DefaultStrongThreshold.
	StrongEdges(ctx context.Context, threshold float64) ([]Edge, error)

	// Stats.
	Stats(ctx context.Context) (*StoreStats, error)
}

// Direction controls edge lookup direction.
type Direction string

const (
	DirectionUpstream   Direction = "upstream"   // edges arriving at the node
	DirectionDownstream Direction = "downstream" // edges leaving the node
)

// StoreStats summarizes a persisted graph.
type StoreStats struct {
	NodeCount int `json:"nodeCount"`
	EdgeCount int `json:"edgeCount"`
}
