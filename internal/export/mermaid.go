package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/typelens/internal/graph"
)

// GenerateMermaid produces a Mermaid graph TD diagram from a dependency
// graph. Nodes are grouped by kind; edges carry their relation as the arrow
// label, with strong edges drawn thick.
func GenerateMermaid(g *graph.DependencyGraph) string {
	// Build node → ID mapping for Mermaid (alphanumeric only).
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(name string) string {
		if id, ok := nodeIDs[name]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[name] = id
		return id
	}

	// Group nodes by kind, keeping first-seen kind order.
	var kinds []graph.NodeKind
	byKind := make(map[graph.NodeKind][]*graph.Node)
	for _, n := range g.Nodes() {
		if _, ok := byKind[n.Kind]; !ok {
			kinds = append(kinds, n.Kind)
		}
		byKind[n.Kind] = append(byKind[n.Kind], n)
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, kind := range kinds {
		sb.WriteString(fmt.Sprintf("  subgraph %s[\"%s\"]\n", getID("kind_"+string(kind)), kind))
		for _, n := range byKind[kind] {
			sb.WriteString(fmt.Sprintf("    %s[\"%.40s\"]\n", getID(n.Name), n.Name))
		}
		sb.WriteString("  end\n")
	}

	// Dangling endpoints have no subgraph entry; declare them with a label
	// the first time an edge mentions them.
	ensure := func(name string) string {
		if id, ok := nodeIDs[name]; ok {
			return id
		}
		id := getID(name)
		sb.WriteString(fmt.Sprintf("  %s[\"%.40s\"]\n", id, name))
		return id
	}

	for _, e := range g.Edges() {
		srcID := ensure(e.Source)
		tgtID := ensure(e.Target)
		if e.Weight >= graph.DefaultStrongThreshold {
			sb.WriteString(fmt.Sprintf("  %s == %s ==> %s\n", srcID, e.Relation, tgtID))
		} else {
			sb.WriteString(fmt.Sprintf("  %s -- %s --> %s\n", srcID, e.Relation, tgtID))
		}
	}

	return sb.String()
}
