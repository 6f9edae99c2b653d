package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dusk-indust/typelens/internal/classify"
	"github.com/dusk-indust/typelens/internal/config"
	"github.com/dusk-indust/typelens/internal/export"
	"github.com/dusk-indust/typelens/internal/graph"
	"github.com/dusk-indust/typelens/internal/report"
	"github.com/dusk-indust/typelens/internal/scan"
)

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	root := fs.String("root", "", "directory to analyze (default: config root)")
	format := fs.String("format", "text", "output format: text or json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	if *root == "" {
		*root = cfg.Root
	}

	res, err := scanRoot(context.Background(), cfg, *root)
	if err != nil {
		return err
	}

	rep := report.Build(res.Declarations, cfg.TargetRatios)
	summary := graph.NewProcessor(res.Graph).Summarize()

	switch *format {
	case "json":
		return export.WriteJSON(os.Stdout, export.BuildAnalysis(*root, res, &summary, rep))
	case "text":
		printAnalysis(res, rep)
		return nil
	default:
		return fmt.Errorf("unknown format %q: want text or json", *format)
	}
}

// scanRoot loads and scans every supported source file under root.
func scanRoot(ctx context.Context, cfg *config.ProjectConfig, root string) (*scan.Result, error) {
	units, err := scan.LoadUnits(root, cfg.Exclude)
	if err != nil {
		return nil, fmt.Errorf("load units: %w", err)
	}
	return scan.NewScanner(cfg.Workers).Run(ctx, units)
}

func printAnalysis(res *scan.Result, rep *report.Report) {
	for _, d := range res.Declarations {
		fmt.Printf("%-7s %-22s %-28s %s:%d\n", d.Tier, d.Category, d.Name, d.File, d.Line)
	}

	fmt.Printf("\n%d declarations, %.0f%% documented\n", rep.Total, rep.DocCoverage*100)
	for _, tier := range []classify.Tier{classify.Tier1, classify.Tier2, classify.Tier3, classify.TierOther} {
		fmt.Printf("  %-7s %3d (%.0f%%)\n", tier, rep.TierCounts[tier], rep.TierRatios[tier]*100)
	}
	if len(rep.Recommendations) > 0 {
		fmt.Println("\nrecommendations:")
		for _, r := range rep.Recommendations {
			fmt.Printf("  - %s\n", r)
		}
	}
	for _, d := range res.Diagnostics {
		fmt.Fprintf(os.Stderr, "warning: %s: %s: %s\n", d.File, d.Reason, d.Detail)
	}
}
