package graph

// --- Enums ---

// NodeKind classifies nodes in the type dependency graph.
type NodeKind string

const (
	NodeKindClass    NodeKind = "class"
	NodeKindFunction NodeKind = "function"
	NodeKindVariable NodeKind = "variable"
	NodeKindModule   NodeKind = "module"
	NodeKindAlias    NodeKind = "alias"
	NodeKindMethod   NodeKind = "method"
)

// Relation classifies how one declaration depends on another.
type Relation string

const (
	RelationInherits   Relation = "inherits"
	RelationReturns    Relation = "returns"
	RelationCalls      Relation = "calls"
	RelationArgument   Relation = "argument"
	RelationReferences Relation = "references"
	RelationAssignment Relation = "assignment"
	RelationImports    Relation = "imports"
	RelationGeneric    Relation = "generic"
)

// relationWeights assigns the fixed coupling strength of each relation.
// Subtype bonds outrank signature bonds, which outrank mere mentions.
var relationWeights = map[Relation]float64{
	RelationInherits:   0.9,
	RelationReturns:    0.8,
	RelationCalls:      0.7,
	RelationArgument:   0.6,
	RelationReferences: 0.5,
	RelationAssignment: 0.5,
	RelationImports:    0.5,
	RelationGeneric:    0.4,
}

// WeightFor returns the coupling weight of a relation. Unknown relations
// fall back to the references weight.
func WeightFor(r Relation) float64 {
	if w, ok := relationWeights[r]; ok {
		return w
	}
	return relationWeights[RelationReferences]
}

// DefaultStrongThreshold is the weight at or above which an edge counts as a
// strong coupling.
const DefaultStrongThreshold = 0.7

// --- Models ---

// Node is one declaration in the dependency graph. Name is the node's
// identity: adding a node with an existing name reuses the existing node.
type Node struct {
	Name          string            `json:"name"`
	Kind          NodeKind          `json:"kind"`
	QualifiedName string            `json:"qualifiedName,omitempty"`
	Attrs         map[string]string `json:"attrs,omitempty"`
}

// Edge is a weighted, directed dependency between two node names. Endpoints
// may name nodes that are not in the graph; such dangling edges mark
// references to symbols defined elsewhere.
type Edge struct {
	Source   string            `json:"source"`
	Target   string            `json:"target"`
	Relation Relation          `json:"relation"`
	Weight   float64           `json:"weight"`
	Meta     map[string]string `json:"meta,omitempty"`
}

type edgeKey struct {
	source   string
	target   string
	relation Relation
}

// DependencyGraph holds nodes and edges in insertion order. It is not safe
// for concurrent mutation; build per goroutine and merge.
type DependencyGraph struct {
	nodes   []*Node
	byName  map[string]*Node
	edges   []Edge
	edgeSet map[edgeKey]bool

	// Metadata carries free-form graph-level annotations (source root,
	// language, run identity).
	Metadata map[string]string
}

// NewDependencyGraph returns an empty graph ready for use.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		byName:   make(map[string]*Node),
		edgeSet:  make(map[edgeKey]bool),
		Metadata: make(map[string]string),
	}
}

// AddNode inserts a node or returns the existing node with the same name.
// On reuse, attributes missing from the existing node are filled in from the
// new one; kind and qualified name of the first insertion win.
func (g *DependencyGraph) AddNode(n Node) *Node {
	if existing, ok := g.byName[n.Name]; ok {
		for k, v := range n.Attrs {
			if existing.Attrs == nil {
				existing.Attrs = make(map[string]string)
			}
			if _, have := existing.Attrs[k]; !have {
				existing.Attrs[k] = v
			}
		}
		return existing
	}
	node := n
	g.byName[node.Name] = &node
	g.nodes = append(g.nodes, &node)
	return &node
}

// AddEdge inserts a dependency edge with the relation's fixed weight.
// Duplicate (source, target, relation) triples and self-loops collapse
// silently; the return reports whether the edge was new.
func (g *DependencyGraph) AddEdge(source, target string, relation Relation, meta map[string]string) bool {
	if source == "" || target == "" || source == target {
		return false
	}
	key := edgeKey{source: source, target: target, relation: relation}
	if g.edgeSet[key] {
		return false
	}
	g.edgeSet[key] = true
	g.edges = append(g.edges, Edge{
		Source:   source,
		Target:   target,
		Relation: relation,
		Weight:   WeightFor(relation),
		Meta:     meta,
	})
	return true
}

// FindNode returns the node with the given name, or nil.
func (g *DependencyGraph) FindNode(name string) *Node {
	return g.byName[name]
}

// Nodes returns the nodes in insertion order. The slice is shared; callers
// must not mutate it.
func (g *DependencyGraph) Nodes() []*Node {
	return g.nodes
}

// Edges returns the edges in insertion order. The slice is shared; callers
// must not mutate it.
func (g *DependencyGraph) Edges() []Edge {
	return g.edges
}

// Merge appends another graph's nodes and edges into g, preserving g's
// insertion order first. Node and edge identity rules apply as in AddNode
// and AddEdge.
func (g *DependencyGraph) Merge(other *DependencyGraph) {
	if other == nil {
		return
	}
	for _, n := range other.nodes {
		g.AddNode(*n)
	}
	for _, e := range other.edges {
		g.AddEdge(e.Source, e.Target, e.Relation, e.Meta)
	}
	for k, v := range other.Metadata {
		if _, have := g.Metadata[k]; !have {
			g.Metadata[k] = v
		}
	}
}
