package classify

import (
	"regexp"
	"strings"
)

// Tier is the rigor classification of a type-like declaration, from
// unconstrained alias (tier1) through validated nominal wrapper (tier2) to
// full composite domain record (tier3). "other" covers structured
// declarations without validation semantics.
type Tier string

const (
	Tier1     Tier = "tier1"
	Tier2     Tier = "tier2"
	Tier3     Tier = "tier3"
	TierOther Tier = "other"
)

// Category is the fine-grained shape tag of a declaration.
type Category string

const (
	CategoryAlias              Category = "alias"
	CategoryWrapperPlain       Category = "wrapper-plain"
	CategoryWrapperWithFactory Category = "wrapper-with-factory"
	CategoryConstrainedAlias   Category = "constrained-alias"
	CategoryCompositeRecord    Category = "composite-record"
	CategoryStructuredRecord   Category = "structured-record"
	CategoryClosedChoiceRecord Category = "closed-choice-record"
	CategoryOtherRecord        Category = "other-record"
)

// Declaration is one classified type-like declaration from a single source
// unit. Declarations are value objects: created fresh per classification run,
// never mutated afterwards.
type Declaration struct {
	Name     string   `json:"name"`
	Tier     Tier     `json:"tier"`
	Category Category `json:"category"`
	File     string   `json:"file"`
	Line     int      `json:"line"` // 1-based
	RawText  string   `json:"rawText"`

	Docstring      string `json:"docstring,omitempty"`
	HasDocstring   bool   `json:"hasDocstring"`
	DocstringLines int    `json:"docstringLines"`

	// KeepAsIs is set when the docstring carries a @keep-as-is directive,
	// pinning the declaration at its computed tier.
	KeepAsIs bool `json:"keepAsIs,omitempty"`

	// TargetTier is the tier named by a @target-level directive in the
	// docstring, empty when absent. Directives never change the computed
	// Tier, only record intent.
	TargetTier Tier `json:"targetTier,omitempty"`
}

var (
	keepAsIsRe    = regexp.MustCompile(`(?m)^\s*@keep-as-is\s*$`)
	targetLevelRe = regexp.MustCompile(`(?m)^\s*@target-level:\s*(tier1|tier2|tier3)\s*$`)
)

// applyDocstring attaches docstring text and any embedded directives to d.
func (d *Declaration) applyDocstring(doc string) {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return
	}
	d.Docstring = doc
	d.HasDocstring = true
	d.DocstringLines = strings.Count(doc, "\n") + 1
	if keepAsIsRe.MatchString(doc) {
		d.KeepAsIs = true
	}
	if m := targetLevelRe.FindStringSubmatch(doc); m != nil {
		d.TargetTier = Tier(m[1])
	}
}

// declKey identifies a declaration for dedup and cross-pass merging.
type declKey struct {
	name string
	file string
	line int
}

func (d *Declaration) key() declKey {
	return declKey{name: d.Name, file: d.File, line: d.Line}
}
