package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/typelens/internal/graph"
)

// shapeFor maps node kinds to Graphviz shapes.
func shapeFor(kind graph.NodeKind) string {
	switch kind {
	case graph.NodeKindClass:
		return "box"
	case graph.NodeKindFunction, graph.NodeKindMethod:
		return "ellipse"
	case graph.NodeKindModule:
		return "folder"
	case graph.NodeKindAlias:
		return "note"
	default:
		return "plaintext"
	}
}

// GenerateDOT produces a Graphviz digraph from a dependency graph. Edge pen
// width scales with the relation weight so strong dependencies stand out.
func GenerateDOT(g *graph.DependencyGraph) string {
	var sb strings.Builder
	sb.WriteString("digraph typedeps {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [fontname=\"Helvetica\"];\n")

	for _, n := range g.Nodes() {
		sb.WriteString(fmt.Sprintf("  %q [shape=%s];\n", n.Name, shapeFor(n.Kind)))
	}

	for _, e := range g.Edges() {
		penwidth := 1.0 + 2.0*e.Weight
		attrs := fmt.Sprintf("label=%q, weight=%d, penwidth=%.1f",
			string(e.Relation), int(e.Weight*10), penwidth)
		if e.Weight >= graph.DefaultStrongThreshold {
			attrs += ", color=\"#1f4e79\""
		} else {
			attrs += ", color=\"#999999\""
		}
		sb.WriteString(fmt.Sprintf("  %q -> %q [%s];\n", e.Source, e.Target, attrs))
	}

	sb.WriteString("}\n")
	return sb.String()
}
