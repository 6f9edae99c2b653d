package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dusk-indust/typelens/internal/config"
	"github.com/dusk-indust/typelens/internal/export"
	"github.com/dusk-indust/typelens/internal/graph"
)

func runGraph(args []string) error {
	fs := flag.NewFlagSet("graph", flag.ContinueOnError)
	root := fs.String("root", "", "directory to analyze (default: config root)")
	format := fs.String("format", "mermaid", "output format: mermaid, dot, or json")
	db := fs.String("db", "", "persist the graph to a database at this path (default: config graphDb)")
	cycles := fs.Bool("cycles", false, "print dependency cycles instead of the diagram")
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
	if *db == "" {
		*db = cfg.GraphDB
	}

	ctx := context.Background()
	res, err := scanRoot(ctx, cfg, *root)
	if err != nil {
		return err
	}

	if *db != "" {
		if err := persistGraph(ctx, *db, res.Graph); err != nil {
			return err
		}
	}

	if *cycles {
		found := graph.NewProcessor(res.Graph).DetectCycles()
		if len(found) == 0 {
			fmt.Println("no cycles")
			return nil
		}
		for _, cycle := range found {
			for i, name := range cycle {
				if i > 0 {
					fmt.Print(" -> ")
				}
				fmt.Print(name)
			}
			fmt.Printf(" -> %s\n", cycle[0])
		}
		return nil
	}

	switch *format {
	case "mermaid":
		fmt.Print(export.GenerateMermaid(res.Graph))
	case "dot":
		fmt.Print(export.GenerateDOT(res.Graph))
	case "json":
		summary := graph.NewProcessor(res.Graph).Summarize()
		return export.WriteJSON(os.Stdout, export.BuildAnalysis(*root, res, &summary, nil))
	default:
		return fmt.Errorf("unknown format %q: want mermaid, dot, or json", *format)
	}
	return nil
}

// persistGraph saves the graph to a database directory at path.
func persistGraph(ctx context.Context, path string, g *graph.DependencyGraph) error {
	store, err := openGraphDB(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	if err := store.SaveGraph(ctx, g); err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	return nil
}
