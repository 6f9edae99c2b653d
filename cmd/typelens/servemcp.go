package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/dusk-indust/typelens/internal/config"
	"github.com/dusk-indust/typelens/internal/graph"
	"github.com/dusk-indust/typelens/internal/mcptools"
)

func runServeMCP(args []string) error {
	fs := flag.NewFlagSet("serve-mcp", flag.ContinueOnError)
	httpAddr := fs.String("http", "", "serve over HTTP on this address instead of stdio")
	db := fs.String("db", "", "persist built graphs to a database at this path (default: config graphDb)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	if *db == "" {
		*db = cfg.GraphDB
	}

	var store graph.Store
	if *db != "" {
		store, err = openGraphDB(*db)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	svc := mcptools.NewTypeLensService(cfg, store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *httpAddr != "" {
		return mcptools.RunMCPServerHTTP(ctx, svc, *httpAddr)
	}
	return mcptools.RunMCPServerStdio(ctx, mcptools.NewTypeLensMCPServer(svc))
}
