package mcptools

import (
	"github.com/dusk-indust/typelens/internal/classify"
	"github.com/dusk-indust/typelens/internal/diag"
	"github.com/dusk-indust/typelens/internal/graph"
	"github.com/dusk-indust/typelens/internal/report"
)

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// AnalyzeTypesInput is the input for the analyze_types MCP tool.
type AnalyzeTypesInput struct {
	RepoPath    string   `json:"repoPath" jsonschema:"the absolute path to the repository to analyze"`
	ExcludeDirs []string `json:"excludeDirs,omitempty" jsonschema:"glob patterns for paths to exclude (e.g. vendor, node_modules)"`
}

// AnalyzeTypesOutput is the result of the analyze_types MCP tool.
type AnalyzeTypesOutput struct {
	Declarations []classify.Declaration `json:"declarations"`
	Total        int                    `json:"total"`
	Diagnostics  []diag.Diagnostic      `json:"diagnostics,omitempty"`
}

// BuildGraphInput is the input for the build_graph MCP tool.
type BuildGraphInput struct {
	RepoPath    string   `json:"repoPath" jsonschema:"the absolute path to the repository to index"`
	ExcludeDirs []string `json:"excludeDirs,omitempty" jsonschema:"glob patterns for paths to exclude (e.g. vendor, node_modules)"`
}

// BuildGraphOutput is the result of the build_graph MCP tool.
type BuildGraphOutput struct {
	Summary graph.Summary     `json:"summary"`
	Stats   *graph.StoreStats `json:"stats,omitempty"`
}

// DetectCyclesInput is the input for the detect_cycles MCP tool.
type DetectCyclesInput struct {
	RepoPath string `json:"repoPath,omitempty" jsonschema:"repository to analyze; omit to query the last built graph"`
}

// DetectCyclesOutput is the result of the detect_cycles MCP tool.
type DetectCyclesOutput struct {
	Cycles [][]string `json:"cycles"`
	Total  int        `json:"total"`
}

// StrongDependenciesInput is the input for the strong_dependencies MCP tool.
type StrongDependenciesInput struct {
	RepoPath  string  `json:"repoPath,omitempty" jsonschema:"repository to analyze; omit to query the last built graph"`
	Threshold float64 `json:"threshold,omitempty" jsonschema:"minimum edge weight to report (default: 0.7)"`
}

// StrongDependenciesOutput is the result of the strong_dependencies MCP tool.
type StrongDependenciesOutput struct {
	Edges []graph.Edge `json:"edges"`
	Total int          `json:"total"`
}

// TypeStatisticsInput is the input for the type_statistics MCP tool.
type TypeStatisticsInput struct {
	RepoPath    string   `json:"repoPath" jsonschema:"the absolute path to the repository to analyze"`
	ExcludeDirs []string `json:"excludeDirs,omitempty" jsonschema:"glob patterns for paths to exclude"`
}

// TypeStatisticsOutput is the result of the type_statistics MCP tool.
type TypeStatisticsOutput struct {
	Report  *report.Report `json:"report"`
	Summary graph.Summary  `json:"summary"`
}
