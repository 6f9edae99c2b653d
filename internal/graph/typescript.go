package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// tsWalker collects declarations from TypeScript units: classes and
// interfaces with heritage, type aliases, enums, functions, and imports.
type tsWalker struct{}

var tsBuiltins = map[string]bool{
	"string": true, "number": true, "boolean": true, "bigint": true,
	"symbol": true, "object": true, "any": true, "unknown": true,
	"never": true, "void": true, "null": true, "undefined": true,
	"Array": true, "Promise": true, "Record": true, "Map": true, "Set": true,
	"Partial": true, "Required": true, "Readonly": true, "Pick": true,
	"Omit": true, "Error": true, "Date": true, "RegExp": true,
	"console": true, "JSON": true, "Object": true, "Math": true,
}

func (w *tsWalker) collect(root *tree_sitter.Node, source []byte, unit string) []declInfo {
	var decls []declInfo

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
		// Exported declarations are wrapped in an export_statement.
		stmt := child
		if stmt.Kind() == "export_statement" {
			if decl := stmt.ChildByFieldName("declaration"); decl != nil {
				stmt = decl
			}
		}
		switch stmt.Kind() {
		case "import_statement":
			if src := stmt.ChildByFieldName("source"); src != nil {
				if p := strings.Trim(src.Utf8Text(source), "\"'`"); p != "" {
					mod.addRef(p, RelationImports)
				}
			}
		case "class_declaration", "abstract_class_declaration":
			if d := w.collectClass(stmt, source, unit); d != nil {
				decls = append(decls, *d)
			}
		case "interface_declaration":
			if d := w.collectInterface(stmt, source, unit); d != nil {
				decls = append(decls, *d)
			}
		case "type_alias_declaration":
			if d := w.collectAlias(stmt, source, unit); d != nil {
				decls = append(decls, *d)
			}
		case "enum_declaration":
			if name := stmt.ChildByFieldName("name"); name != nil {
				decls = append(decls, declInfo{
					name:          name.Utf8Text(source),
					kind:          NodeKindClass,
					qualifiedName: unit + ":" + name.Utf8Text(source),
				})
			}
		case "function_declaration":
			if d := w.collectFunction(stmt, source, unit); d != nil {
				decls = append(decls, *d)
			}
		}
	}

	return append([]declInfo{mod}, decls...)
}

func (w *tsWalker) collectClass(node *tree_sitter.Node, source []byte, unit string) *declInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(source)
	d := declInfo{
		name:          name,
		kind:          NodeKindClass,
		qualifiedName: unit + ":" + name,
	}

	// class_heritage holds extends_clause and implements_clause.
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Kind() != "class_heritage" {
			continue
		}
		for j := uint(0); j < child.NamedChildCount(); j++ {
			clause := child.NamedChild(j)
			if clause == nil {
				continue
			}
			for k := uint(0); k < clause.NamedChildCount(); k++ {
				w.typeRefs(&d, clause.NamedChild(k), source, RelationInherits, 0)
			}
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		for i := uint(0); i < body.NamedChildCount(); i++ {
			member := body.NamedChild(i)
			if member == nil || member.Kind() != "public_field_definition" {
				continue
			}
			if t := member.ChildByFieldName("type"); t != nil {
				w.typeRefs(&d, t, source, RelationReferences, 0)
			}
		}
	}
	return &d
}

func (w *tsWalker) collectInterface(node *tree_sitter.Node, source []byte, unit string) *declInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(source)
	d := declInfo{
		name:          name,
		kind:          NodeKindClass,
		qualifiedName: unit + ":" + name,
	}

	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Kind() != "extends_type_clause" {
			continue
		}
		for j := uint(0); j < child.NamedChildCount(); j++ {
			w.typeRefs(&d, child.NamedChild(j), source, RelationInherits, 0)
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		for i := uint(0); i < body.NamedChildCount(); i++ {
			member := body.NamedChild(i)
			if member == nil || member.Kind() != "property_signature" {
				continue
			}
			if t := member.ChildByFieldName("type"); t != nil {
				w.typeRefs(&d, t, source, RelationReferences, 0)
			}
		}
	}
	return &d
}

func (w *tsWalker) collectAlias(node *tree_sitter.Node, source []byte, unit string) *declInfo {
	nameNode := node.ChildByFieldName("name")
	valueNode := node.ChildByFieldName("value")
	if nameNode == nil || valueNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(source)
	d := declInfo{
		name:          name,
		kind:          NodeKindAlias,
		qualifiedName: unit + ":" + name,
	}
	w.typeRefs(&d, valueNode, source, RelationReferences, 0)
	return &d
}

func (w *tsWalker) collectFunction(node *tree_sitter.Node, source []byte, unit string) *declInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(source)
	d := declInfo{
		name:          name,
		kind:          NodeKindFunction,
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

func (w *tsWalker) collectCalls(d *declInfo, node *tree_sitter.Node, source []byte) {
	if node.Kind() == "call_expression" {
		if fn := node.ChildByFieldName("function"); fn != nil {
			switch fn.Kind() {
			case "identifier", "member_expression":
				callee := fn.Utf8Text(source)
				if callee != "" && !tsBuiltins[callee] && !strings.HasPrefix(callee, "console.") {
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

func (w *tsWalker) typeRefs(d *declInfo, node *tree_sitter.Node, source []byte, rel Relation, depth int) {
	if node == nil || depth > 16 {
		return
	}
	switch node.Kind() {
	case "type_identifier", "identifier":
		name := node.Utf8Text(source)
		if !tsBuiltins[name] {
			d.addRef(name, rel)
		}
	case "nested_type_identifier":
		d.addRef(node.Utf8Text(source), rel)
	case "predefined_type":
		// string, number, etc.
	case "generic_type":
		w.typeRefs(d, node.ChildByFieldName("name"), source, rel, depth+1)
		w.typeRefs(d, node.ChildByFieldName("type_arguments"), source, RelationGeneric, depth+1)
	case "array_type":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			w.typeRefs(d, node.NamedChild(i), source, RelationGeneric, depth+1)
		}
	default:
		for i := uint(0); i < node.NamedChildCount(); i++ {
			w.typeRefs(d, node.NamedChild(i), source, rel, depth+1)
		}
	}
}
