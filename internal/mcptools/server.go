package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewTypeLensMCPServer creates an MCP server with all 5 type analysis tools
// registered.
func NewTypeLensMCPServer(svc *TypeLensService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "typelens",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_types",
		Description: "Classify every type-like declaration in a repository into rigor tiers (tier1 plain alias/wrapper, tier2 validated, tier3 composite record, other). Returns declarations with file, line, and docstring metadata.",
	}, svc.AnalyzeTypes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_graph",
		Description: "Scan a repository and build its weighted type dependency graph using tree-sitter. Persists the graph to the configured store and returns a summary.",
	}, svc.BuildGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "detect_cycles",
		Description: "Find every dependency cycle in the type graph. Each cycle is listed as the member names in traversal order.",
	}, svc.DetectCycles)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "strong_dependencies",
		Description: "List dependency edges at or above a weight threshold. Strong edges (inherits, returns, calls) indicate coupling that refactors must account for.",
	}, svc.StrongDependencies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "type_statistics",
		Description: "Compute the tier distribution report (counts, ratios vs targets, doc coverage, recommendations) and graph summary for a repository.",
	}, svc.TypeStatistics)

	return server
}

// RunMCPServerStdio runs the MCP server on stdio transport, blocking until
// stdin is closed or the context is cancelled.
func RunMCPServerStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunMCPServerHTTP starts an HTTP server exposing the type analysis MCP
// tools.
func RunMCPServerHTTP(ctx context.Context, svc *TypeLensService, addr string) error {
	server := NewTypeLensMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
