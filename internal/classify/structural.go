package classify

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/dusk-indust/typelens/internal/diag"
)

// structuralPass parses a source unit with the Python grammar and classifies
// its top-level type-like declarations. A failed or degraded parse records a
// syntax diagnostic; whatever the tree still yields is returned so the
// textual pass can fill the gaps. A new tree-sitter parser is created per
// call, so concurrent units never share parser state.
func structuralPass(file string, source []byte) ([]Declaration, []wrapperCandidate, []diag.Diagnostic) {
	var (
		decls    []Declaration
		wrappers []wrapperCandidate
		diags    []diag.Diagnostic
	)

	parser := tree_sitter.NewParser()
	defer parser.Close()

	lang := tree_sitter.NewLanguage(tree_sitter_python.Language())
	if err := parser.SetLanguage(lang); err != nil {
		diags = append(diags, diag.Diagnostic{
			File:   file,
			Reason: diag.ReasonSyntaxParse,
			Detail: fmt.Sprintf("set language: %v", err),
		})
		return nil, nil, diags
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		diags = append(diags, diag.Diagnostic{
			File:   file,
			Reason: diag.ReasonSyntaxParse,
			Detail: "parser returned no tree",
		})
		return nil, nil, diags
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		diags = append(diags, diag.Diagnostic{
			File:   file,
			Reason: diag.ReasonSyntaxParse,
			Detail: "source contains syntax errors; structural results are partial",
		})
	}

	// Only direct children of the module node are considered: nested
	// declarations are out of scope for tiering.
	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "type_alias_statement":
			if d := extractAlias(child, source, file); d != nil {
				decls = append(decls, *d)
			}
		case "class_definition":
			if d := extractClassDecl(child, source, file, nil); d != nil {
				decls = append(decls, *d)
			}
		case "decorated_definition":
			def := child.ChildByFieldName("definition")
			if def != nil && def.Kind() == "class_definition" {
				if d := extractClassDecl(def, source, file, decoratorNames(child, source)); d != nil {
					decls = append(decls, *d)
				}
			}
		case "expression_statement":
			if w := extractWrapperAssignment(child, source); w != nil {
				wrappers = append(wrappers, *w)
			}
		}
	}

	return decls, wrappers, diags
}

// extractAlias handles `type Name = Value` statements. The right-hand side
// decides between a plain alias and a constrained alias.
func extractAlias(node *tree_sitter.Node, source []byte, file string) *Declaration {
	left := node.NamedChild(0)
	right := node.NamedChild(1)
	if left == nil || right == nil {
		return nil
	}
	name := left.Utf8Text(source)
	if name == "" {
		return nil
	}
	d := &Declaration{
		Name:    name,
		File:    file,
		Line:    int(node.StartPosition().Row) + 1,
		RawText: firstLine(node.Utf8Text(source)),
	}
	classifyAliasValue(d, right.Utf8Text(source))
	return d
}

// Base names that mark a class as a closed set of named alternatives.
var enumBases = map[string]bool{
	"Enum":    true,
	"IntEnum": true,
	"StrEnum": true,
	"Flag":    true,
	"IntFlag": true,
}

// Base names that mark a shaped but unvalidated record.
var structuredBases = map[string]bool{
	"TypedDict":  true,
	"NamedTuple": true,
	"Protocol":   true,
}

// extractClassDecl classifies a top-level class by its base list and
// decorators and captures its docstring.
func extractClassDecl(node *tree_sitter.Node, source []byte, file string, decorators []string) *Declaration {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	d := &Declaration{
		Name:    nameNode.Utf8Text(source),
		File:    file,
		Line:    int(node.StartPosition().Row) + 1,
		RawText: firstLine(node.Utf8Text(source)),
	}

	bases := classBases(node, source)
	switch {
	case hasBase(bases, "BaseModel"):
		d.Tier = Tier3
		d.Category = CategoryCompositeRecord
	case hasAnyBase(bases, enumBases):
		d.Tier = TierOther
		d.Category = CategoryClosedChoiceRecord
	case hasAnyBase(bases, structuredBases), hasDecorator(decorators, "dataclass"):
		d.Tier = TierOther
		d.Category = CategoryStructuredRecord
	default:
		d.Tier = TierOther
		d.Category = CategoryOtherRecord
	}

	d.applyDocstring(classDocstring(node, source))
	return d
}

// classBases returns the base names of a class, dotted prefixes and type
// arguments stripped, so `pydantic.BaseModel` and `Protocol[T]` compare as
// `BaseModel` and `Protocol`.
func classBases(node *tree_sitter.Node, source []byte) []string {
	supers := node.ChildByFieldName("superclasses")
	if supers == nil {
		return nil
	}
	var bases []string
	for i := uint(0); i < supers.NamedChildCount(); i++ {
		arg := supers.NamedChild(i)
		if arg == nil || arg.Kind() == "keyword_argument" {
			continue
		}
		text := arg.Utf8Text(source)
		if j := strings.IndexByte(text, '['); j >= 0 {
			text = text[:j]
		}
		if j := strings.LastIndexByte(text, '.'); j >= 0 {
			text = text[j+1:]
		}
		if text != "" {
			bases = append(bases, text)
		}
	}
	return bases
}

func hasBase(bases []string, want string) bool {
	for _, b := range bases {
		if b == want {
			return true
		}
	}
	return false
}

func hasAnyBase(bases []string, set map[string]bool) bool {
	for _, b := range bases {
		if set[b] {
			return true
		}
	}
	return false
}

// decoratorNames lists the decorators of a decorated_definition, stripped of
// the leading @ and any call arguments.
func decoratorNames(node *tree_sitter.Node, source []byte) []string {
	var names []string
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "decorator" {
			continue
		}
		text := strings.TrimPrefix(strings.TrimSpace(child.Utf8Text(source)), "@")
		if j := strings.IndexByte(text, '('); j >= 0 {
			text = text[:j]
		}
		if j := strings.LastIndexByte(text, '.'); j >= 0 {
			text = text[j+1:]
		}
		if text != "" {
			names = append(names, text)
		}
	}
	return names
}

func hasDecorator(decorators []string, want string) bool {
	for _, d := range decorators {
		if d == want {
			return true
		}
	}
	return false
}

// classDocstring returns the docstring of a class body: the string content
// of the first statement when that statement is a bare string expression.
func classDocstring(node *tree_sitter.Node, source []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil {
		return ""
	}
	first := body.NamedChild(0)
	if first == nil || first.Kind() != "expression_statement" {
		return ""
	}
	str := first.NamedChild(0)
	if str == nil || str.Kind() != "string" {
		return ""
	}
	return stripPyString(str.Utf8Text(source))
}

// extractWrapperAssignment recognizes a top-level `Name = NewType('Name', B)`
// expression statement via the tree, producing a pairing candidate. The
// assigned variable must equal the quoted produced name or the statement is
// ignored.
func extractWrapperAssignment(node *tree_sitter.Node, source []byte) *wrapperCandidate {
	assign := node.NamedChild(0)
	if assign == nil || assign.Kind() != "assignment" {
		return nil
	}
	left := assign.ChildByFieldName("left")
	right := assign.ChildByFieldName("right")
	if left == nil || right == nil || left.Kind() != "identifier" || right.Kind() != "call" {
		return nil
	}
	fn := right.ChildByFieldName("function")
	if fn == nil || fn.Utf8Text(source) != "NewType" {
		return nil
	}

	args := right.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() < 2 {
		return nil
	}
	nameArg := args.NamedChild(0)
	baseArg := args.NamedChild(1)
	if nameArg == nil || baseArg == nil || nameArg.Kind() != "string" {
		return nil
	}
	if baseArg.Kind() != "identifier" && baseArg.Kind() != "attribute" {
		return nil
	}

	produced := stripPyString(nameArg.Utf8Text(source))
	if produced == "" || left.Utf8Text(source) != produced {
		return nil
	}

	return &wrapperCandidate{
		name:     produced,
		baseType: baseArg.Utf8Text(source),
		line:     int(node.StartPosition().Row) + 1,
		rawText:  firstLine(strings.TrimSpace(node.Utf8Text(source))),
	}
}

// stripPyString removes surrounding quotes and string prefixes from a Python
// string literal's text.
func stripPyString(text string) string {
	text = strings.TrimLeft(text, "rRbBuUfF")
	for _, q := range []string{`"""`, "'''", `"`, `'`} {
		if strings.HasPrefix(text, q) && strings.HasSuffix(text, q) && len(text) >= 2*len(q) {
			return text[len(q) : len(text)-len(q)]
		}
	}
	return text
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimRight(s[:i], " \t\r")
	}
	return s
}
