package graph

// Processor answers queries over a built dependency graph. It does not
// mutate the graph and may be created cheaply per query batch.
type Processor struct {
	g *DependencyGraph
}

// NewProcessor wraps a graph for querying.
func NewProcessor(g *DependencyGraph) *Processor {
	return &Processor{g: g}
}

// NodeCount returns the number of nodes.
func (p *Processor) NodeCount() int {
	return len(p.g.Nodes())
}

// EdgeCount returns the number of edges.
func (p *Processor) EdgeCount() int {
	return len(p.g.Edges())
}

// FindNode returns the node with the given name, or nil.
func (p *Processor) FindNode(name string) *Node {
	return p.g.FindNode(name)
}

// EdgesFrom returns the edges leaving a node, in insertion order.
func (p *Processor) EdgesFrom(name string) []Edge {
	var out []Edge
	for _, e := range p.g.Edges() {
		if e.Source == name {
			out = append(out, e)
		}
	}
	return out
}

// EdgesTo returns the edges arriving at a node, in insertion order.
func (p *Processor) EdgesTo(name string) []Edge {
	var out []Edge
	for _, e := range p.g.Edges() {
		if e.Target == name {
			out = append(out, e)
		}
	}
	return out
}

// StrongDependencies returns the edges whose weight is at or above the
// threshold. A threshold of zero or below uses DefaultStrongThreshold.
func (p *Processor) StrongDependencies(threshold float64) []Edge {
	if threshold <= 0 {
		threshold = DefaultStrongThreshold
	}
	var out []Edge
	for _, e := range p.g.Edges() {
		if e.Weight >= threshold {
			out = append(out, e)
		}
	}
	return out
}

// DetectCycles returns every simple cycle in the graph. Each cycle is the
// node names in traversal order, starting from the cycle member that was
// inserted earliest, so repeated runs over the same graph return the same
// list. Dangling edges, whose endpoints have no node, cannot form cycles
// and are ignored.
func (p *Processor) DetectCycles() [][]string {
	nodes := p.g.Nodes()
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.Name] = i
	}

	adj := make(map[string][]string)
	for _, e := range p.g.Edges() {
		if _, ok := index[e.Source]; !ok {
			continue
		}
		if _, ok := index[e.Target]; !ok {
			continue
		}
		adj[e.Source] = append(adj[e.Source], e.Target)
	}

	var cycles [][]string
	var path []string
	onPath := make(map[string]bool)

	// For each start node, search only through nodes inserted at or after
	// it. Every simple cycle is then found exactly once, rooted at its
	// earliest-inserted member.
	var dfs func(start, cur string)
	dfs = func(start, cur string) {
		path = append(path, cur)
		onPath[cur] = true
		for _, next := range adj[cur] {
			if next == start {
				cycle := make([]string, len(path))
				copy(cycle, path)
				cycles = append(cycles, cycle)
				continue
			}
			if index[next] < index[start] || onPath[next] {
				continue
			}
			dfs(start, next)
		}
		onPath[cur] = false
		path = path[:len(path)-1]
	}

	for _, n := range nodes {
		dfs(n.Name, n.Name)
	}
	return cycles
}

// Summary aggregates graph-level statistics.
type Summary struct {
	NodeCount      int              `json:"nodeCount"`
	EdgeCount      int              `json:"edgeCount"`
	KindCounts     map[NodeKind]int `json:"kindCounts"`
	RelationCounts map[Relation]int `json:"relationCounts"`
	StrongCount    int              `json:"strongCount"`
	CycleCount     int              `json:"cycleCount"`

	// ExternalCount is the number of distinct edge endpoints that name no
	// node in the graph; ExternalRatio relates them to the total name space.
	ExternalCount int     `json:"externalCount"`
	ExternalRatio float64 `json:"externalRatio"`
}

// Summarize computes the summary of the wrapped graph.
func (p *Processor) Summarize() Summary {
	s := Summary{
		NodeCount:      p.NodeCount(),
		EdgeCount:      p.EdgeCount(),
		KindCounts:     make(map[NodeKind]int),
		RelationCounts: make(map[Relation]int),
	}
	for _, n := range p.g.Nodes() {
		s.KindCounts[n.Kind]++
	}

	external := make(map[string]bool)
	for _, e := range p.g.Edges() {
		s.RelationCounts[e.Relation]++
		if e.Weight >= DefaultStrongThreshold {
			s.StrongCount++
		}
		if p.g.FindNode(e.Source) == nil {
			external[e.Source] = true
		}
		if p.g.FindNode(e.Target) == nil {
			external[e.Target] = true
		}
	}

	s.ExternalCount = len(external)
	if total := s.NodeCount + s.ExternalCount; total > 0 {
		s.ExternalRatio = float64(s.ExternalCount) / float64(total)
	}
	s.CycleCount = len(p.DetectCycles())
	return s
}
