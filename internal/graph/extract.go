package graph

import (
	"context"
	"fmt"
	"time"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// typeRef is one outgoing reference discovered inside a declaration, in the
// order it appears in source.
type typeRef struct {
	target   string
	relation Relation
}

// declInfo is a top-level declaration collected during the walk, before
// resolution populates the graph.
type declInfo struct {
	name          string
	kind          NodeKind
	qualifiedName string
	attrs         map[string]string
	refs          []typeRef
}

func (d *declInfo) addRef(target string, relation Relation) {
	if target == "" || target == d.name {
		return
	}
	d.refs = append(d.refs, typeRef{target: target, relation: relation})
}

// walker collects the ordered top-level declarations of one parsed unit.
type walker interface {
	collect(root *tree_sitter.Node, source []byte, unit string) []declInfo
}

// Extractor builds weighted dependency graphs from source units. Grammars
// for Python, Go, TypeScript and Rust are registered; Python carries the
// full reference analysis, the others a structural subset. A new tree-sitter
// parser is created per Extract call, so individual calls are independent
// and an Extractor may be shared.
type Extractor struct {
	languages map[Language]*tree_sitter.Language
	walkers   map[Language]walker
}

// NewExtractor creates an Extractor with all supported grammars registered.
func NewExtractor() *Extractor {
	return &Extractor{
		languages: map[Language]*tree_sitter.Language{
			LangPython:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
			LangGo:         tree_sitter.NewLanguage(tree_sitter_go.Language()),
			LangTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			LangRust:       tree_sitter.NewLanguage(tree_sitter_rust.Language()),
		},
		walkers: map[Language]walker{
			LangPython:     &pyWalker{},
			LangGo:         &goWalker{},
			LangTypeScript: &tsWalker{},
			LangRust:       &rsWalker{},
		},
	}
}

// Extract parses one unit and returns its dependency graph.
func (e *Extractor) Extract(ctx context.Context, unit string, source []byte, lang Language) (*DependencyGraph, error) {
	g := NewDependencyGraph()
	if err := e.ExtractInto(ctx, g, unit, source, lang); err != nil {
		return nil, err
	}
	return g, nil
}

// ExtractInto parses one unit and adds its declarations and edges to an
// existing graph, preserving the graph's prior insertion order.
func (e *Extractor) ExtractInto(ctx context.Context, g *DependencyGraph, unit string, source []byte, lang Language) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tsLang, ok := e.languages[lang]
	if !ok {
		return fmt.Errorf("unsupported language: %s", lang)
	}
	w := e.walkers[lang]

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tsLang); err != nil {
		return fmt.Errorf("set language %s: %w", lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return fmt.Errorf("parse %s: no tree", unit)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return fmt.Errorf("parse %s: syntax errors in tree", unit)
	}

	g.Metadata["method"] = "tree-sitter"
	if _, ok := g.Metadata["generatedAt"]; !ok {
		g.Metadata["generatedAt"] = time.Now().UTC().Format(time.RFC3339)
	}
	if _, ok := g.Metadata["unit"]; !ok {
		g.Metadata["unit"] = unit
	}

	decls := w.collect(root, source, unit)

	st := &extractState{
		g:       g,
		decls:   make(map[string]*declInfo, len(decls)),
		visited: make(map[string]bool, len(decls)),
		inStack: make(map[string]bool),
	}
	for i := range decls {
		d := &decls[i]
		if existing, dup := st.decls[d.name]; dup {
			// Redeclarations merge their references into the first one.
			existing.refs = append(existing.refs, d.refs...)
			continue
		}
		st.decls[d.name] = d
		st.order = append(st.order, d.name)
	}
	st.resolveAll()
	return nil
}

// extractState resolves collected declarations into graph nodes and edges.
// Resolution walks declarations in source order, descending into referenced
// declarations depth-first. A processing stack guards against cycles: a
// back-reference to a declaration currently being resolved still emits its
// edge but is not re-entered.
type extractState struct {
	g       *DependencyGraph
	decls   map[string]*declInfo
	order   []string
	visited map[string]bool
	inStack map[string]bool
}

func (s *extractState) resolveAll() {
	for _, name := range s.order {
		s.resolve(name)
	}
}

func (s *extractState) resolve(name string) {
	if s.visited[name] || s.inStack[name] {
		return
	}
	d := s.decls[name]
	if d == nil {
		return
	}
	s.inStack[name] = true

	s.g.AddNode(Node{
		Name:          d.name,
		Kind:          d.kind,
		QualifiedName: d.qualifiedName,
		Attrs:         d.attrs,
	})
	for _, ref := range d.refs {
		s.g.AddEdge(d.name, ref.target, ref.relation, nil)
		if _, known := s.decls[ref.target]; known {
			s.resolve(ref.target)
		}
	}

	delete(s.inStack, name)
	s.visited[name] = true
}
