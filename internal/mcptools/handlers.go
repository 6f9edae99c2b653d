package mcptools

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/typelens/internal/config"
	"github.com/dusk-indust/typelens/internal/graph"
	"github.com/dusk-indust/typelens/internal/report"
	"github.com/dusk-indust/typelens/internal/scan"
)

// TypeLensService holds the scanner configuration and an optional graph
// store used by MCP tool handlers. The dependency graph of the most recent
// scan is kept so graph queries do not force a re-scan.
type TypeLensService struct {
	cfg   *config.ProjectConfig
	store graph.Store

	mu      sync.Mutex
	current *graph.DependencyGraph
}

// NewTypeLensService creates a TypeLensService. store may be nil, which
// disables persistence.
func NewTypeLensService(cfg *config.ProjectConfig, store graph.Store) *TypeLensService {
	if cfg == nil {
		cfg = config.Defaults()
	}
	return &TypeLensService{cfg: cfg, store: store}
}

// analyze scans the repository and caches the resulting graph.
func (s *TypeLensService) analyze(ctx context.Context, repoPath string, exclude []string) (*scan.Result, error) {
	info, err := os.Stat(repoPath)
	if err != nil {
		return nil, fmt.Errorf("cannot access repoPath: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repoPath is not a directory: %s", repoPath)
	}

	if len(exclude) == 0 {
		exclude = s.cfg.Exclude
	}
	units, err := scan.LoadUnits(repoPath, exclude)
	if err != nil {
		return nil, fmt.Errorf("load units: %w", err)
	}

	res, err := scan.NewScanner(s.cfg.Workers).Run(ctx, units)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = res.Graph
	s.mu.Unlock()
	return res, nil
}

// currentGraph returns the cached graph, optionally refreshing it by
// scanning repoPath first.
func (s *TypeLensService) currentGraph(ctx context.Context, repoPath string) (*graph.DependencyGraph, error) {
	if repoPath != "" {
		if _, err := s.analyze(ctx, repoPath, nil); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	g := s.current
	s.mu.Unlock()
	if g == nil {
		return nil, fmt.Errorf("no graph built yet: pass repoPath or call build_graph first")
	}
	return g, nil
}

// AnalyzeTypes classifies every type-like declaration in a repository.
func (s *TypeLensService) AnalyzeTypes(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeTypesInput,
) (*mcp.CallToolResult, AnalyzeTypesOutput, error) {
	if input.RepoPath == "" {
		return nil, AnalyzeTypesOutput{}, fmt.Errorf("repoPath is required")
	}

	res, err := s.analyze(ctx, input.RepoPath, input.ExcludeDirs)
	if err != nil {
		return nil, AnalyzeTypesOutput{}, err
	}

	return nil, AnalyzeTypesOutput{
		Declarations: res.Declarations,
		Total:        len(res.Declarations),
		Diagnostics:  res.Diagnostics,
	}, nil
}

// BuildGraph scans a repository, builds its dependency graph, and persists
// it to the configured store.
func (s *TypeLensService) BuildGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BuildGraphInput,
) (*mcp.CallToolResult, BuildGraphOutput, error) {
	if input.RepoPath == "" {
		return nil, BuildGraphOutput{}, fmt.Errorf("repoPath is required")
	}

	res, err := s.analyze(ctx, input.RepoPath, input.ExcludeDirs)
	if err != nil {
		return nil, BuildGraphOutput{}, err
	}

	out := BuildGraphOutput{Summary: graph.NewProcessor(res.Graph).Summarize()}

	if s.store != nil {
		if err := s.store.InitSchema(ctx); err != nil {
			return nil, BuildGraphOutput{}, fmt.Errorf("init schema: %w", err)
		}
		if err := s.store.SaveGraph(ctx, res.Graph); err != nil {
			return nil, BuildGraphOutput{}, fmt.Errorf("save graph: %w", err)
		}
		stats, err := s.store.Stats(ctx)
		if err != nil {
			return nil, BuildGraphOutput{}, fmt.Errorf("stats: %w", err)
		}
		out.Stats = stats
	}

	return nil, out, nil
}

// DetectCycles reports every dependency cycle in the graph.
func (s *TypeLensService) DetectCycles(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DetectCyclesInput,
) (*mcp.CallToolResult, DetectCyclesOutput, error) {
	g, err := s.currentGraph(ctx, input.RepoPath)
	if err != nil {
		return nil, DetectCyclesOutput{}, err
	}

	cycles := graph.NewProcessor(g).DetectCycles()
	return nil, DetectCyclesOutput{Cycles: cycles, Total: len(cycles)}, nil
}

// StrongDependencies reports the edges at or above the weight threshold.
func (s *TypeLensService) StrongDependencies(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StrongDependenciesInput,
) (*mcp.CallToolResult, StrongDependenciesOutput, error) {
	g, err := s.currentGraph(ctx, input.RepoPath)
	if err != nil {
		return nil, StrongDependenciesOutput{}, err
	}

	threshold := input.Threshold
	if threshold <= 0 {
		threshold = s.cfg.StrongThreshold
	}
	edges := graph.NewProcessor(g).StrongDependencies(threshold)
	return nil, StrongDependenciesOutput{Edges: edges, Total: len(edges)}, nil
}

// TypeStatistics computes the tier distribution report and graph summary
// for a repository.
func (s *TypeLensService) TypeStatistics(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TypeStatisticsInput,
) (*mcp.CallToolResult, TypeStatisticsOutput, error) {
	if input.RepoPath == "" {
		return nil, TypeStatisticsOutput{}, fmt.Errorf("repoPath is required")
	}

	res, err := s.analyze(ctx, input.RepoPath, input.ExcludeDirs)
	if err != nil {
		return nil, TypeStatisticsOutput{}, err
	}

	return nil, TypeStatisticsOutput{
		Report:  report.Build(res.Declarations, s.cfg.TargetRatios),
		Summary: graph.NewProcessor(res.Graph).Summarize(),
	}, nil
}
