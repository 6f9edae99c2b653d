package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/typelens/internal/classify"
	"github.com/dusk-indust/typelens/internal/graph"
	"github.com/dusk-indust/typelens/internal/scan"
)

func sampleGraph(t *testing.T) *graph.DependencyGraph {
	t.Helper()
	g := graph.NewDependencyGraph()
	g.AddNode(graph.Node{Name: "User", Kind: graph.NodeKindClass})
	g.AddNode(graph.Node{Name: "UserId", Kind: graph.NodeKindAlias})
	g.AddNode(graph.Node{Name: "load_user", Kind: graph.NodeKindFunction})
	require.True(t, g.AddEdge("User", "UserId", graph.RelationReferences, nil))
	require.True(t, g.AddEdge("load_user", "User", graph.RelationReturns, nil))
	require.True(t, g.AddEdge("User", "Ghost", graph.RelationCalls, nil))
	return g
}

func TestBuildAnalysisAndWriteJSON(t *testing.T) {
	res := &scan.Result{
		Declarations: []classify.Declaration{
			{Name: "UserId", Tier: classify.Tier2, Category: classify.CategoryWrapperWithFactory, File: "ids.py", Line: 3},
		},
		Graph: sampleGraph(t),
	}

	export := BuildAnalysis("src", res, nil, nil)
	assert.Equal(t, "src", export.Root)
	assert.NotEmpty(t, export.ExportedAt)
	assert.Len(t, export.Nodes, 3)
	assert.Len(t, export.Edges, 3)
	assert.Equal(t, "User", export.Edges[0].Source)
	assert.InDelta(t, 0.5, export.Edges[0].Weight, 1e-9)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, export))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "src", decoded["root"])
	decls, ok := decoded["declarations"].([]any)
	require.True(t, ok)
	require.Len(t, decls, 1)
}

func TestGenerateMermaid(t *testing.T) {
	out := GenerateMermaid(sampleGraph(t))

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, `["class"]`)
	assert.Contains(t, out, `["alias"]`)
	assert.Contains(t, out, `["User"]`)
	// returns is strong, references is not.
	assert.Contains(t, out, "== returns ==>")
	assert.Contains(t, out, "-- references -->")
	// Dangling endpoint still gets a labelled node.
	assert.Contains(t, out, `["Ghost"]`)
}

func TestGenerateMermaid_Empty(t *testing.T) {
	out := GenerateMermaid(graph.NewDependencyGraph())
	assert.Equal(t, "graph TD\n", out)
}

func TestGenerateDOT(t *testing.T) {
	out := GenerateDOT(sampleGraph(t))

	assert.True(t, strings.HasPrefix(out, "digraph typedeps {"))
	assert.Contains(t, out, `"User" [shape=box];`)
	assert.Contains(t, out, `"UserId" [shape=note];`)
	assert.Contains(t, out, `"load_user" [shape=ellipse];`)
	assert.Contains(t, out, `"User" -> "UserId" [label="references"`)
	assert.Contains(t, out, `penwidth=2.6`)
	assert.Contains(t, out, `"load_user" -> "User" [label="returns"`)
	assert.Contains(t, out, "#1f4e79")
	assert.True(t, strings.HasSuffix(out, "}\n"))
}
