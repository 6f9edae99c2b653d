// Package report aggregates classification results into tier distribution
// statistics and improvement recommendations.
package report

import (
	"fmt"
	"math"

	"github.com/dusk-indust/typelens/internal/classify"
	"github.com/dusk-indust/typelens/internal/config"
)

// Report summarizes the rigor of a codebase's type declarations against the
// configured target distribution.
type Report struct {
	Total int `json:"total"`

	TierCounts map[classify.Tier]int     `json:"tierCounts"`
	TierRatios map[classify.Tier]float64 `json:"tierRatios"`

	// Deviations holds actual minus target ratio per tier; positive means
	// the tier is over-represented.
	Deviations map[classify.Tier]float64 `json:"deviations"`

	DocumentedCount int     `json:"documentedCount"`
	DocCoverage     float64 `json:"docCoverage"`

	// AvgDocstringLines averages docstring length over the documented
	// declarations only.
	AvgDocstringLines float64               `json:"avgDocstringLines"`
	DocumentedByTier  map[classify.Tier]int `json:"documentedByTier"`

	// PinnedCount is the number of declarations marked to keep their tier.
	PinnedCount int `json:"pinnedCount"`

	// UpgradeCandidates lists declarations whose docstring names a target
	// tier above their current one, in source order.
	UpgradeCandidates []string `json:"upgradeCandidates,omitempty"`

	Recommendations []string `json:"recommendations,omitempty"`
}

// tierRank orders tiers for upgrade comparisons; "other" has no rank.
func tierRank(t classify.Tier) int {
	switch t {
	case classify.Tier1:
		return 1
	case classify.Tier2:
		return 2
	case classify.Tier3:
		return 3
	default:
		return 0
	}
}

// deviationTolerance is how far a tier's share may drift from its target
// before the report recommends action.
const deviationTolerance = 0.10

// Build computes the report for a set of declarations.
func Build(decls []classify.Declaration, targets config.TargetRatios) *Report {
	r := &Report{
		Total:            len(decls),
		TierCounts:       make(map[classify.Tier]int),
		TierRatios:       make(map[classify.Tier]float64),
		Deviations:       make(map[classify.Tier]float64),
		DocumentedByTier: make(map[classify.Tier]int),
	}

	docLines := 0
	for _, d := range decls {
		r.TierCounts[d.Tier]++
		if d.HasDocstring {
			r.DocumentedCount++
			r.DocumentedByTier[d.Tier]++
			docLines += d.DocstringLines
		}
		if d.KeepAsIs {
			r.PinnedCount++
		}
		if d.TargetTier != "" && tierRank(d.TargetTier) > tierRank(d.Tier) {
			r.UpgradeCandidates = append(r.UpgradeCandidates,
				fmt.Sprintf("%s (%s, %s -> %s)", d.Name, d.File, d.Tier, d.TargetTier))
		}
	}

	if r.Total > 0 {
		for tier, count := range r.TierCounts {
			r.TierRatios[tier] = float64(count) / float64(r.Total)
		}
		r.DocCoverage = float64(r.DocumentedCount) / float64(r.Total)
	}
	if r.DocumentedCount > 0 {
		r.AvgDocstringLines = float64(docLines) / float64(r.DocumentedCount)
	}

	targetByTier := map[classify.Tier]float64{
		classify.Tier1: targets.Tier1,
		classify.Tier2: targets.Tier2,
		classify.Tier3: targets.Tier3,
	}
	for tier, target := range targetByTier {
		r.Deviations[tier] = r.TierRatios[tier] - target
	}

	r.Recommendations = recommendations(r)
	return r
}

func recommendations(r *Report) []string {
	if r.Total == 0 {
		return nil
	}
	var recs []string

	if dev := r.Deviations[classify.Tier1]; dev > deviationTolerance {
		recs = append(recs, fmt.Sprintf(
			"tier1 share %.0f%% is %.0f points over target: add factories or constraints to plain aliases and wrappers",
			r.TierRatios[classify.Tier1]*100, math.Abs(dev)*100))
	}
	if dev := r.Deviations[classify.Tier2]; dev < -deviationTolerance {
		recs = append(recs, fmt.Sprintf(
			"tier2 share %.0f%% is %.0f points under target: promote unvalidated wrappers with validating factories",
			r.TierRatios[classify.Tier2]*100, math.Abs(dev)*100))
	}
	if dev := r.Deviations[classify.Tier3]; dev < -deviationTolerance {
		recs = append(recs, fmt.Sprintf(
			"tier3 share %.0f%% is %.0f points under target: model core domain data as validated records",
			r.TierRatios[classify.Tier3]*100, math.Abs(dev)*100))
	}
	if r.DocCoverage < 0.5 {
		recs = append(recs, fmt.Sprintf(
			"%d of %d declarations lack docstrings: document the public type surface",
			r.Total-r.DocumentedCount, r.Total))
	}
	if n := len(r.UpgradeCandidates); n > 0 {
		recs = append(recs, fmt.Sprintf("%d declarations carry an explicit target level: start with those", n))
	}
	return recs
}
