package classify

import (
	"sort"

	"github.com/dusk-indust/typelens/internal/diag"
)

// Classifier classifies the top-level type-like declarations of a source
// unit into rigor tiers. Two passes run over every unit: a structural pass
// on the parse tree and a textual pass with an ordered matcher list. Their
// results are merged with the structural pass taking precedence, so a
// degraded parse costs detail rather than the whole unit.
//
// A Classifier holds no per-unit state and is safe for concurrent use.
type Classifier struct {
	matchers []LineMatcher
}

// NewClassifier returns a Classifier with the given matcher list, or the
// default list when none is supplied.
func NewClassifier(matchers ...LineMatcher) *Classifier {
	if len(matchers) == 0 {
		matchers = DefaultMatchers()
	}
	return &Classifier{matchers: matchers}
}

// Classify analyzes one source unit in isolation. Declarations come back in
// source order; recoverable failures come back as diagnostics, never as an
// error.
func (c *Classifier) Classify(file string, source []byte) ([]Declaration, []diag.Diagnostic) {
	decls, wrappers, diags := structuralPass(file, source)

	textDecls, textWrappers, factories := c.textualPass(file, source)

	// Structural results win on collision; textual results fill whatever the
	// tree missed.
	seen := make(map[declKey]bool, len(decls))
	for i := range decls {
		seen[decls[i].key()] = true
	}
	for i := range textDecls {
		if !seen[textDecls[i].key()] {
			seen[textDecls[i].key()] = true
			decls = append(decls, textDecls[i])
		}
	}

	wrappers = mergeWrappers(wrappers, textWrappers)
	decls = append(decls, resolvePairs(file, wrappers, factories, &diags)...)

	sort.SliceStable(decls, func(i, j int) bool {
		if decls[i].Line != decls[j].Line {
			return decls[i].Line < decls[j].Line
		}
		return decls[i].Name < decls[j].Name
	})

	return decls, diags
}

// textualPass runs the matcher list over every top-level line. Matchers are
// tried in order; the first match consumes its lines and the scan resumes
// after them.
func (c *Classifier) textualPass(file string, source []byte) ([]Declaration, []wrapperCandidate, []factoryCandidate) {
	var (
		decls     []Declaration
		wrappers  []wrapperCandidate
		factories []factoryCandidate
	)

	unit := newTextUnit(file, source)
	for i := 0; i < len(unit.lines); {
		advance := 1
		for _, m := range c.matchers {
			match := m.TryMatch(unit, i)
			if match == nil {
				continue
			}
			switch {
			case match.decl != nil:
				decls = append(decls, *match.decl)
			case match.wrapper != nil:
				wrappers = append(wrappers, *match.wrapper)
			case match.factory != nil:
				factories = append(factories, *match.factory)
			}
			if match.consumed > advance {
				advance = match.consumed
			}
			break
		}
		i += advance
	}

	return decls, wrappers, factories
}

// mergeWrappers dedups pairing candidates from the two passes by name and
// line, structural first.
func mergeWrappers(structural, textual []wrapperCandidate) []wrapperCandidate {
	type wkey struct {
		name string
		line int
	}
	seen := make(map[wkey]bool, len(structural))
	merged := make([]wrapperCandidate, 0, len(structural)+len(textual))
	for _, w := range structural {
		seen[wkey{w.name, w.line}] = true
		merged = append(merged, w)
	}
	for _, w := range textual {
		if !seen[wkey{w.name, w.line}] {
			seen[wkey{w.name, w.line}] = true
			merged = append(merged, w)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].line < merged[j].line })
	return merged
}
