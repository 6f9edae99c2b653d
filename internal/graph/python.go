package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// pyWalker collects top-level declarations from Python units: classes with
// their bases and attribute types, functions with signature types and call
// sites, aliases, nominal wrappers, and module imports.
type pyWalker struct{}

// pyBuiltins are primitive and typing names that never become edge targets.
var pyBuiltins = map[string]bool{
	"str": true, "int": true, "float": true, "bool": true, "bytes": true,
	"list": true, "dict": true, "set": true, "tuple": true, "frozenset": true,
	"type": true, "object": true, "None": true, "NoneType": true,
	"Any": true, "Optional": true, "Union": true, "Callable": true,
	"Iterator": true, "Iterable": true, "Sequence": true, "Mapping": true,
	"NewType": true, "TypeVar": true, "Annotated": true, "Literal": true,
	"ClassVar": true, "Final": true, "Self": true,
	"len": true, "print": true, "range": true, "isinstance": true,
	"issubclass": true, "super": true, "getattr": true, "setattr": true,
	"hasattr": true, "repr": true, "id": true, "hash": true, "iter": true,
	"next": true, "enumerate": true, "zip": true, "map": true, "filter": true,
	"sorted": true, "reversed": true, "min": true, "max": true, "sum": true,
	"abs": true, "round": true, "open": true, "ValueError": true,
	"TypeError": true, "KeyError": true, "RuntimeError": true,
	"Exception": true, "staticmethod": true, "classmethod": true,
	"property": true, "dataclass": true, "field": true,
}

func pyBuiltin(name string) bool {
	return pyBuiltins[name]
}

func (w *pyWalker) collect(root *tree_sitter.Node, source []byte, unit string) []declInfo {
	var decls []declInfo

	// The unit itself is a module node anchoring its import edges.
	mod := declInfo{
		name:          ModuleName(unit),
		kind:          NodeKindModule,
		qualifiedName: unit,
		attrs:         map[string]string{"path": unit},
	}

	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "import_statement", "import_from_statement":
			for _, m := range w.importedModules(child, source) {
				mod.addRef(m, RelationImports)
			}
		case "class_definition":
			decls = append(decls, w.collectClass(child, source, unit)...)
		case "decorated_definition":
			def := child.ChildByFieldName("definition")
			if def == nil {
				continue
			}
			switch def.Kind() {
			case "class_definition":
				decls = append(decls, w.collectClass(def, source, unit)...)
			case "function_definition":
				if d := w.collectFunction(def, source, unit, ""); d != nil {
					decls = append(decls, *d)
				}
			}
		case "function_definition":
			if d := w.collectFunction(child, source, unit, ""); d != nil {
				decls = append(decls, *d)
			}
		case "type_alias_statement":
			if d := w.collectAlias(child, source, unit); d != nil {
				decls = append(decls, *d)
			}
		case "expression_statement":
			if d := w.collectAssignment(child, source, unit); d != nil {
				decls = append(decls, *d)
			}
		}
	}

	return append([]declInfo{mod}, decls...)
}

// importedModules returns the module names named by an import statement.
func (w *pyWalker) importedModules(node *tree_sitter.Node, source []byte) []string {
	if node.Kind() == "import_from_statement" {
		if m := node.ChildByFieldName("module_name"); m != nil {
			return []string{m.Utf8Text(source)}
		}
	}
	var mods []string
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			mods = append(mods, child.Utf8Text(source))
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				mods = append(mods, name.Utf8Text(source))
			}
		}
		// from X import ...: only the module itself is an edge target.
		if node.Kind() == "import_from_statement" && len(mods) > 0 {
			break
		}
	}
	return mods
}

// collectClass produces the class declaration plus one declaration per
// method, named Class.method.
func (w *pyWalker) collectClass(node *tree_sitter.Node, source []byte, unit string) []declInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	className := nameNode.Utf8Text(source)

	cls := declInfo{
		name:          className,
		kind:          NodeKindClass,
		qualifiedName: unit + ":" + className,
	}

	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for i := uint(0); i < supers.NamedChildCount(); i++ {
			arg := supers.NamedChild(i)
			if arg == nil || arg.Kind() == "keyword_argument" {
				continue
			}
			w.typeRefs(&cls, arg, source, RelationInherits, 0)
		}
	}

	decls := []declInfo{cls}
	body := node.ChildByFieldName("body")
	if body == nil {
		return decls
	}

	for i := uint(0); i < body.NamedChildCount(); i++ {
		stmt := body.NamedChild(i)
		if stmt == nil {
			continue
		}
		switch stmt.Kind() {
		case "expression_statement":
			// Attribute annotations couple the class to the field types.
			if assign := stmt.NamedChild(0); assign != nil && assign.Kind() == "assignment" {
				if t := assign.ChildByFieldName("type"); t != nil {
					w.typeRefs(&decls[0], t, source, RelationReferences, 0)
				}
			}
		case "function_definition":
			if d := w.collectFunction(stmt, source, unit, className); d != nil {
				decls = append(decls, *d)
			}
		case "decorated_definition":
			if def := stmt.ChildByFieldName("definition"); def != nil && def.Kind() == "function_definition" {
				if d := w.collectFunction(def, source, unit, className); d != nil {
					decls = append(decls, *d)
				}
			}
		}
	}
	return decls
}

// collectFunction handles both free functions and methods; owner is the
// enclosing class name, empty for free functions.
func (w *pyWalker) collectFunction(node *tree_sitter.Node, source []byte, unit, owner string) *declInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(source)
	kind := NodeKindFunction
	if owner != "" {
		name = owner + "." + name
		kind = NodeKindMethod
	}

	d := declInfo{
		name:          name,
		kind:          kind,
		qualifiedName: unit + ":" + name,
	}

	if ret := node.ChildByFieldName("return_type"); ret != nil {
		w.typeRefs(&d, ret, source, RelationReturns, 0)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := uint(0); i < params.NamedChildCount(); i++ {
			p := params.NamedChild(i)
			if p == nil {
				continue
			}
			if t := p.ChildByFieldName("type"); t != nil {
				w.typeRefs(&d, t, source, RelationArgument, 0)
			}
		}
	}
	if body := node.ChildByFieldName("body"); body != nil {
		w.collectCalls(&d, body, source)
	}
	return &d
}

// collectCalls finds call sites inside a body and records calls edges to
// non-builtin callees.
func (w *pyWalker) collectCalls(d *declInfo, node *tree_sitter.Node, source []byte) {
	if node.Kind() == "call" {
		if fn := node.ChildByFieldName("function"); fn != nil {
			var callee string
			switch fn.Kind() {
			case "identifier":
				callee = fn.Utf8Text(source)
			case "attribute":
				callee = fn.Utf8Text(source)
			}
			if callee != "" && !pyBuiltin(callee) {
				d.addRef(callee, RelationCalls)
			}
		}
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child != nil {
			w.collectCalls(d, child, source)
		}
	}
}

// collectAlias handles `type Name = Value` statements.
func (w *pyWalker) collectAlias(node *tree_sitter.Node, source []byte, unit string) *declInfo {
	left := node.NamedChild(0)
	right := node.NamedChild(1)
	if left == nil || right == nil {
		return nil
	}
	d := declInfo{
		name:          left.Utf8Text(source),
		kind:          NodeKindAlias,
		qualifiedName: unit + ":" + left.Utf8Text(source),
	}
	w.typeRefs(&d, right, source, RelationReferences, 0)
	return &d
}

// collectAssignment handles top-level assignments: nominal wrappers become
// alias nodes referencing their base type, other call or name assignments
// become variable nodes with an assignment edge.
func (w *pyWalker) collectAssignment(node *tree_sitter.Node, source []byte, unit string) *declInfo {
	assign := node.NamedChild(0)
	if assign == nil || assign.Kind() != "assignment" {
		return nil
	}
	left := assign.ChildByFieldName("left")
	if left == nil || left.Kind() != "identifier" {
		return nil
	}
	name := left.Utf8Text(source)

	d := declInfo{
		name:          name,
		kind:          NodeKindVariable,
		qualifiedName: unit + ":" + name,
	}

	if t := assign.ChildByFieldName("type"); t != nil {
		w.typeRefs(&d, t, source, RelationReferences, 0)
	}

	right := assign.ChildByFieldName("right")
	if right == nil {
		if len(d.refs) == 0 {
			return nil
		}
		return &d
	}

	switch right.Kind() {
	case "call":
		fn := right.ChildByFieldName("function")
		if fn == nil {
			return nil
		}
		callee := fn.Utf8Text(source)
		if callee == "NewType" {
			d.kind = NodeKindAlias
			if args := right.ChildByFieldName("arguments"); args != nil && args.NamedChildCount() >= 2 {
				w.typeRefs(&d, args.NamedChild(1), source, RelationReferences, 0)
			}
			return &d
		}
		if !pyBuiltin(callee) {
			d.addRef(callee, RelationAssignment)
		}
	case "identifier":
		rhs := right.Utf8Text(source)
		if !pyBuiltin(rhs) {
			d.addRef(rhs, RelationAssignment)
		}
	default:
		// Literal assignments carry no dependency.
		if len(d.refs) == 0 {
			return nil
		}
	}

	if len(d.refs) == 0 {
		return nil
	}
	return &d
}

// typeRefs walks a type expression and records references. The head of the
// expression keeps the caller's relation; type arguments inside subscripts
// are generic. depth guards degenerate nesting.
func (w *pyWalker) typeRefs(d *declInfo, node *tree_sitter.Node, source []byte, rel Relation, depth int) {
	if node == nil || depth > 16 {
		return
	}
	switch node.Kind() {
	case "identifier":
		name := node.Utf8Text(source)
		if !pyBuiltin(name) {
			d.addRef(name, rel)
		}
	case "attribute":
		d.addRef(node.Utf8Text(source), rel)
	case "string":
		// Forward reference: 'User'.
		if ref := strings.Trim(node.Utf8Text(source), `"'`); ref != "" && !pyBuiltin(ref) {
			d.addRef(ref, rel)
		}
	case "subscript", "generic_type":
		// Head type keeps the caller's relation, arguments are generic.
		w.typeRefs(d, node.NamedChild(0), source, rel, depth+1)
		for i := uint(1); i < node.NamedChildCount(); i++ {
			w.typeRefs(d, node.NamedChild(i), source, RelationGeneric, depth+1)
		}
	case "binary_operator":
		// X | Y union keeps the caller's relation on both arms.
		w.typeRefs(d, node.ChildByFieldName("left"), source, rel, depth+1)
		w.typeRefs(d, node.ChildByFieldName("right"), source, rel, depth+1)
	default:
		for i := uint(0); i < node.NamedChildCount(); i++ {
			w.typeRefs(d, node.NamedChild(i), source, rel, depth+1)
		}
	}
}
