// Package scan runs classification and graph extraction over batches of
// source units.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/typelens/internal/classify"
	"github.com/dusk-indust/typelens/internal/diag"
	"github.com/dusk-indust/typelens/internal/graph"
)

// Unit is one source unit to analyze.
type Unit struct {
	Path     string
	Source   []byte
	Language graph.Language
}

// Result is the outcome of a batch run: all declarations in deterministic
// order, the merged dependency graph, and every diagnostic the run
// accumulated. A run never fails as a whole; broken units surface as
// diagnostics next to the results of the healthy ones.
type Result struct {
	Declarations []classify.Declaration `json:"declarations"`
	Graph        *graph.DependencyGraph `json:"-"`
	Diagnostics  []diag.Diagnostic      `json:"diagnostics,omitempty"`
}

// Scanner fans a batch of units out to workers and merges their results in
// input order, so the same batch always yields the same output regardless
// of scheduling.
type Scanner struct {
	classifier *classify.Classifier
	extractor  *graph.Extractor
	workers    int
}

// NewScanner creates a Scanner. workers caps the number of concurrently
// analyzed units; zero or below means one worker per CPU.
func NewScanner(workers int) *Scanner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Scanner{
		classifier: classify.NewClassifier(),
		extractor:  graph.NewExtractor(),
		workers:    workers,
	}
}

// unitResult is the per-unit outcome slot, indexed by unit position.
type unitResult struct {
	decls []classify.Declaration
	graph *graph.DependencyGraph
	diags []diag.Diagnostic
	done  bool
}

// Run analyzes all units. On cancellation it returns the context error
// together with the partial result: units completed so far plus a
// diagnostic for every unit that was not.
func (s *Scanner) Run(ctx context.Context, units []Unit) (*Result, error) {
	slots := make([]unitResult, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, u := range units {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			default:
			}
			slots[i] = s.runUnit(gctx, u)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures are diagnostics

	out := &Result{Graph: graph.NewDependencyGraph()}
	for i, slot := range slots {
		if !slot.done {
			out.Diagnostics = append(out.Diagnostics, diag.Diagnostic{
				File:   units[i].Path,
				Reason: diag.ReasonUnitNotCompleted,
				Detail: "run cancelled before this unit was analyzed",
			})
			continue
		}
		out.Declarations = append(out.Declarations, slot.decls...)
		out.Graph.Merge(slot.graph)
		out.Diagnostics = append(out.Diagnostics, slot.diags...)
	}
	return out, ctx.Err()
}

// runUnit analyzes one unit in isolation: classification for Python units,
// graph extraction for every supported language.
func (s *Scanner) runUnit(ctx context.Context, u Unit) unitResult {
	var res unitResult

	if u.Language == graph.LangPython {
		res.decls, res.diags = s.classifier.Classify(u.Path, u.Source)
	}

	ug, err := s.extractor.Extract(ctx, u.Path, u.Source, u.Language)
	if err != nil {
		res.diags = append(res.diags, diag.Diagnostic{
			File:   u.Path,
			Reason: diag.ReasonSyntaxParse,
			Detail: fmt.Sprintf("graph extraction: %v", err),
		})
		ug = graph.NewDependencyGraph()
	}
	res.graph = ug
	res.done = true
	return res
}

// LoadUnits reads all supported source files under root into units, walking
// in lexical order. exclude holds glob patterns matched against the
// root-relative path.
func LoadUnits(root string, exclude []string) ([]Unit, error) {
	var units []Unit
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if d.IsDir() {
			if excluded(rel, exclude) {
				return filepath.SkipDir
			}
			return nil
		}
		lang, ok := graph.DetectLanguage(path)
		if !ok || excluded(rel, exclude) {
			return nil
		}
		source, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("read %s: %w", path, readErr)
		}
		units = append(units, Unit{Path: rel, Source: source, Language: lang})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return units, nil
}

func excluded(rel string, patterns []string) bool {
	rel = filepath.ToSlash(rel)
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(p, filepath.Base(rel)); ok {
			return true
		}
	}
	return false
}
