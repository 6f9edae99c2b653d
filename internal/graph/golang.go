package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// goWalker collects declarations from Go units: types with field and
// embedding references, functions and methods with signature types and call
// sites, and package imports.
type goWalker struct{}

var goBuiltins = map[string]bool{
	"string": true, "bool": true, "byte": true, "rune": true, "error": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"uintptr": true, "float32": true, "float64": true,
	"complex64": true, "complex128": true, "any": true,
	"len": true, "cap": true, "make": true, "new": true, "append": true,
	"copy": true, "delete": true, "panic": true, "recover": true,
	"print": true, "println": true, "close": true, "min": true, "max": true,
	"clear": true, "nil": true, "true": true, "false": true,
}

func (w *goWalker) collect(root *tree_sitter.Node, source []byte, unit string) []declInfo {
	var decls []declInfo

	mod := declInfo{
		name:          ModuleName(unit),
		kind:          NodeKindModule,
		qualifiedName: unit,
		attrs:         map[string]string{"path": unit},
	}
	w.collectImports(&mod, root, source)

	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "type_declaration":
			decls = append(decls, w.collectTypeDecl(child, source, unit)...)
		case "function_declaration":
			if d := w.collectFunc(child, source, unit, ""); d != nil {
				decls = append(decls, *d)
			}
		case "method_declaration":
			if d := w.collectMethod(child, source, unit); d != nil {
				decls = append(decls, *d)
			}
		}
	}

	return append([]declInfo{mod}, decls...)
}

func (w *goWalker) collectImports(mod *declInfo, node *tree_sitter.Node, source []byte) {
	if node.Kind() == "import_spec" {
		if path := node.ChildByFieldName("path"); path != nil {
			if p := strings.Trim(path.Utf8Text(source), `"`); p != "" {
				mod.addRef(p, RelationImports)
			}
		}
		return
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child != nil {
			w.collectImports(mod, child, source)
		}
	}
}

func (w *goWalker) collectTypeDecl(node *tree_sitter.Node, source []byte, unit string) []declInfo {
	var decls []declInfo
	for i := uint(0); i < node.ChildCount(); i++ {
		spec := node.Child(i)
		if spec == nil || spec.Kind() != "type_spec" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		typeNode := spec.ChildByFieldName("type")
		if nameNode == nil || typeNode == nil {
			continue
		}
		name := nameNode.Utf8Text(source)
		d := declInfo{
			name:          name,
			qualifiedName: unit + ":" + name,
		}
		switch typeNode.Kind() {
		case "struct_type":
			d.kind = NodeKindClass
			w.structRefs(&d, typeNode, source)
		case "interface_type":
			d.kind = NodeKindClass
			w.interfaceRefs(&d, typeNode, source)
		default:
			d.kind = NodeKindAlias
			w.typeRefs(&d, typeNode, source, RelationReferences, 0)
		}
		decls = append(decls, d)
	}
	return decls
}

// structRefs records field type references; embedded fields are inheritance.
func (w *goWalker) structRefs(d *declInfo, structType *tree_sitter.Node, source []byte) {
	body := structType.NamedChild(0) // field_declaration_list
	if body == nil {
		return
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		field := body.NamedChild(i)
		if field == nil || field.Kind() != "field_declaration" {
			continue
		}
		t := field.ChildByFieldName("type")
		if t == nil {
			continue
		}
		rel := RelationReferences
		if field.ChildByFieldName("name") == nil {
			rel = RelationInherits // embedded
		}
		w.typeRefs(d, t, source, rel, 0)
	}
}

// interfaceRefs records embedded interfaces as inheritance and method
// signature types as references.
func (w *goWalker) interfaceRefs(d *declInfo, ifaceType *tree_sitter.Node, source []byte) {
	for i := uint(0); i < ifaceType.NamedChildCount(); i++ {
		child := ifaceType.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "type_identifier", "qualified_type":
			w.typeRefs(d, child, source, RelationInherits, 0)
		case "method_elem":
			if params := child.ChildByFieldName("parameters"); params != nil {
				w.typeRefs(d, params, source, RelationReferences, 0)
			}
			if result := child.ChildByFieldName("result"); result != nil {
				w.typeRefs(d, result, source, RelationReferences, 0)
			}
		}
	}
}

func (w *goWalker) collectFunc(node *tree_sitter.Node, source []byte, unit, owner string) *declInfo {
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
	if result := node.ChildByFieldName("result"); result != nil {
		w.typeRefs(&d, result, source, RelationReturns, 0)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		w.typeRefs(&d, params, source, RelationArgument, 0)
	}
	if body := node.ChildByFieldName("body"); body != nil {
		w.collectCalls(&d, body, source)
	}
	return &d
}

func (w *goWalker) collectMethod(node *tree_sitter.Node, source []byte, unit string) *declInfo {
	owner := ""
	if recv := node.ChildByFieldName("receiver"); recv != nil {
		owner = receiverTypeName(recv, source)
	}
	if owner == "" {
		return nil
	}
	d := w.collectFunc(node, source, unit, owner)
	if d != nil {
		// A method is coupled to its receiver type.
		d.refs = append([]typeRef{{target: owner, relation: RelationReferences}}, d.refs...)
	}
	return d
}

// receiverTypeName digs the bare type name out of a receiver parameter list.
func receiverTypeName(recv *tree_sitter.Node, source []byte) string {
	for i := uint(0); i < recv.NamedChildCount(); i++ {
		param := recv.NamedChild(i)
		if param == nil {
			continue
		}
		t := param.ChildByFieldName("type")
		if t == nil {
			continue
		}
		text := t.Utf8Text(source)
		text = strings.TrimLeft(text, "*")
		if j := strings.IndexByte(text, '['); j >= 0 {
			text = text[:j]
		}
		return text
	}
	return ""
}

func (w *goWalker) collectCalls(d *declInfo, node *tree_sitter.Node, source []byte) {
	if node.Kind() == "call_expression" {
		if fn := node.ChildByFieldName("function"); fn != nil {
			switch fn.Kind() {
			case "identifier", "selector_expression":
				callee := fn.Utf8Text(source)
				if callee != "" && !goBuiltins[callee] {
					d.addRef(callee, RelationCalls)
				}
			}
		}
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child != nil {
			w.collectCalls(d, child, source)
		}
	}
}

func (w *goWalker) typeRefs(d *declInfo, node *tree_sitter.Node, source []byte, rel Relation, depth int) {
	if node == nil || depth > 16 {
		return
	}
	switch node.Kind() {
	case "type_identifier":
		name := node.Utf8Text(source)
		if !goBuiltins[name] {
			d.addRef(name, rel)
		}
	case "qualified_type":
		d.addRef(node.Utf8Text(source), rel)
	case "generic_type":
		w.typeRefs(d, node.ChildByFieldName("type"), source, rel, depth+1)
		w.typeRefs(d, node.ChildByFieldName("type_arguments"), source, RelationGeneric, depth+1)
	case "slice_type", "array_type", "map_type", "channel_type":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			w.typeRefs(d, node.NamedChild(i), source, RelationGeneric, depth+1)
		}
	default:
		for i := uint(0); i < node.NamedChildCount(); i++ {
			w.typeRefs(d, node.NamedChild(i), source, rel, depth+1)
		}
	}
}
