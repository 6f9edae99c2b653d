package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/typelens/internal/classify"
	"github.com/dusk-indust/typelens/internal/config"
)

func decl(name string, tier classify.Tier) classify.Declaration {
	return classify.Declaration{Name: name, Tier: tier, File: "types.py"}
}

func TestBuild_Counts(t *testing.T) {
	decls := []classify.Declaration{
		decl("A", classify.Tier1),
		decl("B", classify.Tier1),
		decl("C", classify.Tier2),
		decl("D", classify.Tier3),
	}
	decls[3].HasDocstring = true
	decls[3].DocstringLines = 2

	r := Build(decls, config.Defaults().TargetRatios)

	assert.Equal(t, 4, r.Total)
	assert.Equal(t, 2, r.TierCounts[classify.Tier1])
	assert.Equal(t, 1, r.TierCounts[classify.Tier2])
	assert.Equal(t, 1, r.TierCounts[classify.Tier3])
	assert.InDelta(t, 0.5, r.TierRatios[classify.Tier1], 1e-9)
	assert.InDelta(t, 0.25, r.DocCoverage, 1e-9)
	assert.InDelta(t, 2.0, r.AvgDocstringLines, 1e-9)
	assert.Equal(t, 1, r.DocumentedByTier[classify.Tier3])
	assert.InDelta(t, 0.5-0.55, r.Deviations[classify.Tier1], 1e-9)
}

func TestBuild_Recommendations(t *testing.T) {
	// All tier1, nothing documented: over-represented tier1 plus missing
	// tier2/tier3 plus doc coverage should all trigger.
	decls := []classify.Declaration{
		decl("A", classify.Tier1),
		decl("B", classify.Tier1),
		decl("C", classify.Tier1),
		decl("D", classify.Tier1),
	}
	r := Build(decls, config.Defaults().TargetRatios)

	require.NotEmpty(t, r.Recommendations)
	assert.Len(t, r.Recommendations, 4)
	assert.Contains(t, r.Recommendations[0], "tier1")
	assert.Contains(t, r.Recommendations[1], "tier2")
	assert.Contains(t, r.Recommendations[2], "tier3")
	assert.Contains(t, r.Recommendations[3], "docstrings")
}

func TestBuild_UpgradeCandidatesAndPins(t *testing.T) {
	up := decl("UserId", classify.Tier1)
	up.TargetTier = classify.Tier2

	down := decl("Legacy", classify.Tier3)
	down.TargetTier = classify.Tier1 // downgrade intents are not candidates

	pinned := decl("RawPayload", classify.Tier1)
	pinned.KeepAsIs = true

	r := Build([]classify.Declaration{up, down, pinned}, config.Defaults().TargetRatios)

	require.Len(t, r.UpgradeCandidates, 1)
	assert.Equal(t, "UserId (types.py, tier1 -> tier2)", r.UpgradeCandidates[0])
	assert.Equal(t, 1, r.PinnedCount)
	assert.Contains(t, r.Recommendations[len(r.Recommendations)-1], "explicit target level")
}

func TestBuild_Empty(t *testing.T) {
	r := Build(nil, config.Defaults().TargetRatios)
	assert.Equal(t, 0, r.Total)
	assert.Zero(t, r.DocCoverage)
	assert.Empty(t, r.Recommendations)
}
