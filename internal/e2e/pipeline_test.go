//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/typelens/internal/classify"
	"github.com/dusk-indust/typelens/internal/config"
	"github.com/dusk-indust/typelens/internal/export"
	"github.com/dusk-indust/typelens/internal/graph"
	"github.com/dusk-indust/typelens/internal/report"
	"github.com/dusk-indust/typelens/internal/scan"
)

// TestAnalysisPipeline_E2E runs the whole pipeline over the mixed-language
// fixture tree: load units, scan, classify, build the graph, report, and
// export, then round-trips the graph through a store.
func TestAnalysisPipeline_E2E(t *testing.T) {
	root, err := filepath.Abs("../../testdata/fixtures")
	require.NoError(t, err)

	units, err := scan.LoadUnits(root, nil)
	require.NoError(t, err)
	require.NotEmpty(t, units)

	ctx := context.Background()
	res, err := scan.NewScanner(4).Run(ctx, units)
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)

	// Classification covers the Python units.
	byName := make(map[string]classify.Declaration)
	for _, d := range res.Declarations {
		byName[d.Name] = d
	}
	assert.Equal(t, classify.Tier2, byName["UserId"].Tier)
	assert.Equal(t, classify.Tier3, byName["Customer"].Tier)
	assert.Equal(t, classify.Tier3, byName["Order"].Tier)

	// Graph extraction covers the Go units too.
	require.NotNil(t, res.Graph.FindNode("UserService"))
	require.NotNil(t, res.Graph.FindNode("Repository"))

	proc := graph.NewProcessor(res.Graph)
	cycles := proc.DetectCycles()
	assert.Contains(t, cycles, []string{"Customer", "Order"})

	rep := report.Build(res.Declarations, config.Defaults().TargetRatios)
	assert.GreaterOrEqual(t, rep.Total, 4)

	// JSON export round-trips.
	summary := proc.Summarize()
	var buf bytes.Buffer
	require.NoError(t, export.WriteJSON(&buf, export.BuildAnalysis(root, res, &summary, rep)))

	var decoded export.AnalysisExport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, len(res.Declarations), len(decoded.Declarations))
	assert.Equal(t, summary.NodeCount, decoded.Summary.NodeCount)

	// Store round-trip.
	store := graph.NewMemStore()
	require.NoError(t, store.InitSchema(ctx))
	require.NoError(t, store.SaveGraph(ctx, res.Graph))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, summary.NodeCount, stats.NodeCount)

	node, err := store.GetNode(ctx, "Customer")
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, graph.NodeKindClass, node.Kind)
}
