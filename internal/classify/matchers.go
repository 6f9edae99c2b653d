package classify

import (
	"regexp"
	"strings"
)

// textualMatch is the result of one LineMatcher firing: exactly one of the
// decl/wrapper/factory fields is set. consumed is how many lines the shape
// spans from its start; the scan resumes after them.
type textualMatch struct {
	decl     *Declaration
	wrapper  *wrapperCandidate
	factory  *factoryCandidate
	consumed int
}

// LineMatcher recognizes one declaration shape starting at a given line of a
// source unit. Matchers are evaluated in a fixed order; the first match on a
// line wins. The list is supplied to the Classifier at construction, not
// through a global registry.
type LineMatcher interface {
	TryMatch(u *textUnit, idx int) *textualMatch
}

// textUnit is one source unit split into lines for the textual pass.
// inString flags lines that sit inside a triple-quoted literal; matchers
// never see those, so declaration-shaped text embedded in a string does not
// produce declarations.
type textUnit struct {
	file     string
	lines    []string
	inString []bool
}

func newTextUnit(file string, source []byte) *textUnit {
	lines := strings.Split(string(source), "\n")
	return &textUnit{
		file:     file,
		lines:    lines,
		inString: markStringLines(lines),
	}
}

// line returns the idx-th line with any trailing comment removed, or ""
// when idx is out of range or inside a multi-line string. Only top-level
// lines (no leading indent) are candidates; indented lines belong to a
// surrounding body.
func (u *textUnit) line(idx int) string {
	if idx < 0 || idx >= len(u.lines) || u.inString[idx] {
		return ""
	}
	return stripTrailingComment(u.lines[idx])
}

// markStringLines flags every line that continues a triple-quoted string
// opened on an earlier line. The opening line itself stays visible: the
// assignment or docstring header on it is still legitimate source text.
func markStringLines(lines []string) []bool {
	flags := make([]bool, len(lines))
	open := ""
	for i, line := range lines {
		if open != "" {
			flags[i] = true
			if j := strings.Index(line, open); j >= 0 {
				open = openTripleQuote(line[j+3:])
			}
			continue
		}
		open = openTripleQuote(line)
	}
	return flags
}

// openTripleQuote reports the triple-quote delimiter left unclosed at the end
// of line, or "" when every triple-quoted segment on the line is balanced.
func openTripleQuote(line string) string {
	open := ""
	for i := 0; i < len(line); {
		if open == "" {
			switch {
			case strings.HasPrefix(line[i:], `"""`):
				open = `"""`
				i += 3
			case strings.HasPrefix(line[i:], "'''"):
				open = "'''"
				i += 3
			default:
				i++
			}
			continue
		}
		j := strings.Index(line[i:], open)
		if j < 0 {
			return open
		}
		i += j + 3
		open = ""
	}
	return open
}

// DefaultMatchers returns the standard ordered matcher list: alias, nominal
// wrapper, validated factory, plain factory.
func DefaultMatchers() []LineMatcher {
	return []LineMatcher{
		&aliasMatcher{},
		&wrapperMatcher{},
		&validatedFactoryMatcher{},
		&plainFactoryMatcher{},
	}
}

// --- alias ---

var aliasRe = regexp.MustCompile(`^type\s+([A-Za-z_]\w*)\s*=\s*(.+?)\s*$`)

// constraintMarkers are the validator/constraint callables whose presence in
// an Annotated alias upgrades it to a constrained alias.
var constraintMarkers = []string{
	"Field(", "AfterValidator(", "BeforeValidator(", "PlainValidator(", "StringConstraints(",
}

// aliasMatcher detects `type Name = ...` alias statements. This is the
// regex fallback for units whose tree parse degraded; on well-formed units
// the structural pass produces the same declaration and takes precedence.
type aliasMatcher struct{}

func (m *aliasMatcher) TryMatch(u *textUnit, idx int) *textualMatch {
	line := u.line(idx)
	mm := aliasRe.FindStringSubmatch(line)
	if mm == nil {
		return nil
	}
	d := &Declaration{
		Name:    mm[1],
		File:    u.file,
		Line:    idx + 1,
		RawText: strings.TrimSpace(line),
	}
	classifyAliasValue(d, mm[2])
	return &textualMatch{decl: d, consumed: 1}
}

// classifyAliasValue assigns tier and category from an alias right-hand side.
// A bare alias is tier1; an Annotated alias carrying a constraint marker is a
// tier2 constrained alias.
func classifyAliasValue(d *Declaration, value string) {
	d.Tier = Tier1
	d.Category = CategoryAlias
	if !strings.Contains(value, "Annotated[") {
		return
	}
	for _, marker := range constraintMarkers {
		if strings.Contains(value, marker) {
			d.Tier = Tier2
			d.Category = CategoryConstrainedAlias
			return
		}
	}
}

// --- nominal wrapper ---

var wrapperRe = regexp.MustCompile(`^([A-Za-z_]\w*)\s*=\s*NewType\(\s*['"]([A-Za-z_]\w*)['"]\s*,\s*([A-Za-z_][\w.]*)\s*\)\s*$`)

// wrapperMatcher detects `Name = NewType('Name', Base)`. Only the
// conventional shape is collected: when the assigned variable differs from
// the produced name the statement is not a wrapper declaration for pairing
// purposes. Tiering is deferred to the pairing resolver.
type wrapperMatcher struct{}

func (m *wrapperMatcher) TryMatch(u *textUnit, idx int) *textualMatch {
	line := u.line(idx)
	mm := wrapperRe.FindStringSubmatch(line)
	if mm == nil {
		return nil
	}
	if mm[1] != mm[2] {
		return nil
	}
	return &textualMatch{consumed: 1, wrapper: &wrapperCandidate{
		name:     mm[2],
		baseType: mm[3],
		line:     idx + 1,
		rawText:  strings.TrimSpace(line),
	}}
}

// --- factories ---

var (
	validateCallRe = regexp.MustCompile(`^@validate_call\s*$`)
	defOpenRe      = regexp.MustCompile(`^def\s+([A-Za-z_]\w*)\s*\(`)
	createOpenRe   = regexp.MustCompile(`^def\s+create_([a-z0-9_]+)\s*\(`)
	returnTypeRe   = regexp.MustCompile(`->\s*([A-Za-z_]\w*)\s*:\s*$`)
)

// sigLookahead bounds how many lines a multi-line signature may span.
const sigLookahead = 50

// signatureReturnType joins a (possibly multi-line) def signature starting at
// idx and extracts the annotated return type. Trailing comments on any line
// (including `# type: ignore[...]`) are stripped before matching.
func signatureReturnType(u *textUnit, idx int) (string, bool) {
	for i := idx; i < len(u.lines) && i < idx+sigLookahead; i++ {
		line := u.line(i)
		if mm := returnTypeRe.FindStringSubmatch(line); mm != nil {
			return mm[1], true
		}
	}
	return "", false
}

// plainFactoryMatcher detects `def create_<snake>(...) -> Name:` factory
// functions. The pairing key is the snake suffix transformed to PascalCase.
type plainFactoryMatcher struct{}

func (m *plainFactoryMatcher) TryMatch(u *textUnit, idx int) *textualMatch {
	line := u.line(idx)
	mm := createOpenRe.FindStringSubmatch(line)
	if mm == nil {
		return nil
	}
	ret, ok := signatureReturnType(u, idx)
	if !ok {
		return nil
	}
	return &textualMatch{consumed: 1, factory: &factoryCandidate{
		funcName:   "create_" + mm[1],
		returnType: ret,
		pairKey:    snakeToPascal(mm[1]),
		line:       idx + 1,
	}}
}

// validatedFactoryMatcher detects the decorator-marked factory shape: a
// `@validate_call` line immediately followed, after a line break, by a
// function definition whose name and return type match the wrapper. A
// decorator and def crammed onto one logical line is deliberately not
// detected.
type validatedFactoryMatcher struct{}

func (m *validatedFactoryMatcher) TryMatch(u *textUnit, idx int) *textualMatch {
	if !validateCallRe.MatchString(u.line(idx)) {
		return nil
	}
	defLine := u.line(idx + 1)
	mm := defOpenRe.FindStringSubmatch(defLine)
	if mm == nil {
		return nil
	}
	ret, ok := signatureReturnType(u, idx+1)
	if !ok || ret != mm[1] {
		return nil
	}
	// Decorator plus def span two lines; consume both so the def line is
	// not re-scanned as a plain factory.
	return &textualMatch{consumed: 2, factory: &factoryCandidate{
		funcName:   mm[1],
		returnType: ret,
		pairKey:    mm[1], // already matching case, compared directly
		line:       idx + 2,
	}}
}

// stripTrailingComment removes a trailing `# ...` comment, honoring string
// quoting so that `#` inside a literal survives.
func stripTrailingComment(line string) string {
	var inSingle, inDouble bool
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case '#':
			if !inSingle && !inDouble {
				return strings.TrimRight(line[:i], " \t")
			}
		}
	}
	return strings.TrimRight(line, " \t\r")
}
