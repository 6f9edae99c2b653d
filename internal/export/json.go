// Package export renders analysis results as JSON, Mermaid, and DOT.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dusk-indust/typelens/internal/classify"
	"github.com/dusk-indust/typelens/internal/diag"
	"github.com/dusk-indust/typelens/internal/graph"
	"github.com/dusk-indust/typelens/internal/report"
	"github.com/dusk-indust/typelens/internal/scan"
)

// AnalysisExport is the top-level JSON export structure.
type AnalysisExport struct {
	Root         string                 `json:"root"`
	ExportedAt   string                 `json:"exportedAt"`
	Declarations []classify.Declaration `json:"declarations"`
	Nodes        []NodeExport           `json:"nodes"`
	Edges        []EdgeExport           `json:"edges"`
	Summary      *graph.Summary         `json:"summary,omitempty"`
	Report       *report.Report         `json:"report,omitempty"`
	Diagnostics  []diag.Diagnostic      `json:"diagnostics,omitempty"`
}

// NodeExport describes one graph node.
type NodeExport struct {
	Name          string `json:"name"`
	Kind          string `json:"kind"`
	QualifiedName string `json:"qualifiedName,omitempty"`
}

// EdgeExport describes one dependency edge.
type EdgeExport struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Relation string  `json:"relation"`
	Weight   float64 `json:"weight"`
}

// BuildAnalysis assembles the export document from a scan result. The graph
// is flattened into node and edge lists because insertion order is the
// contract; rep and summary may be nil.
func BuildAnalysis(root string, res *scan.Result, summary *graph.Summary, rep *report.Report) *AnalysisExport {
	out := &AnalysisExport{
		Root:         root,
		ExportedAt:   time.Now().UTC().Format(time.RFC3339),
		Declarations: res.Declarations,
		Summary:      summary,
		Report:       rep,
		Diagnostics:  res.Diagnostics,
	}
	if res.Graph != nil {
		for _, n := range res.Graph.Nodes() {
			out.Nodes = append(out.Nodes, NodeExport{
				Name:          n.Name,
				Kind:          string(n.Kind),
				QualifiedName: n.QualifiedName,
			})
		}
		for _, e := range res.Graph.Edges() {
			out.Edges = append(out.Edges, EdgeExport{
				Source:   e.Source,
				Target:   e.Target,
				Relation: string(e.Relation),
				Weight:   e.Weight,
			})
		}
	}
	return out
}

// WriteJSON writes the export document with two-space indentation.
func WriteJSON(w io.Writer, export *AnalysisExport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("encode analysis export: %w", err)
	}
	return nil
}
