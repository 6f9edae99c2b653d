package graph

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// rsWalker collects declarations from Rust units: structs and enums with
// field references, traits, trait impls as inheritance, impl methods,
// functions, and use declarations.
type rsWalker struct{}

var rsBuiltins = map[string]bool{
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true,
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true,
	"usize": true, "isize": true, "f32": true, "f64": true,
	"bool": true, "char": true, "str": true, "String": true,
	"Vec": true, "Option": true, "Result": true, "Box": true,
	"Rc": true, "Arc": true, "HashMap": true, "HashSet": true,
	"BTreeMap": true, "Cow": true, "Self": true,
}

func (w *rsWalker) collect(root *tree_sitter.Node, source []byte, unit string) []declInfo {
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
		switch child.Kind() {
		case "use_declaration":
			if arg := child.ChildByFieldName("argument"); arg != nil {
				mod.addRef(arg.Utf8Text(source), RelationImports)
			}
		case "struct_item":
			if d := w.collectStruct(child, source, unit); d != nil {
				decls = append(decls, *d)
			}
		case "enum_item":
			if d := w.collectEnum(child, source, unit); d != nil {
				decls = append(decls, *d)
			}
		case "trait_item":
			if name := child.ChildByFieldName("name"); name != nil {
				decls = append(decls, declInfo{
					name:          name.Utf8Text(source),
					kind:          NodeKindClass,
					qualifiedName: unit + ":" + name.Utf8Text(source),
				})
			}
		case "type_item":
			if d := w.collectTypeItem(child, source, unit); d != nil {
				decls = append(decls, *d)
			}
		case "impl_item":
			decls = append(decls, w.collectImpl(child, source, unit)...)
		case "function_item":
			if d := w.collectFunction(child, source, unit, ""); d != nil {
				decls = append(decls, *d)
			}
		}
	}

	return append([]declInfo{mod}, decls...)
}

func (w *rsWalker) collectStruct(node *tree_sitter.Node, source []byte, unit string) *declInfo {
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
	if body := node.ChildByFieldName("body"); body != nil {
		for i := uint(0); i < body.NamedChildCount(); i++ {
			field := body.NamedChild(i)
			if field == nil || field.Kind() != "field_declaration" {
				continue
			}
			if t := field.ChildByFieldName("type"); t != nil {
				w.typeRefs(&d, t, source, RelationReferences, 0)
			}
		}
	}
	return &d
}

func (w *rsWalker) collectEnum(node *tree_sitter.Node, source []byte, unit string) *declInfo {
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
	// Variant payload types couple the enum to what it carries.
	if body := node.ChildByFieldName("body"); body != nil {
		w.typeRefs(&d, body, source, RelationReferences, 0)
	}
	return &d
}

func (w *rsWalker) collectTypeItem(node *tree_sitter.Node, source []byte, unit string) *declInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(source)
	d := declInfo{
		name:          name,
		kind:          NodeKindAlias,
		qualifiedName: unit + ":" + name,
	}
	if t := node.ChildByFieldName("type"); t != nil {
		w.typeRefs(&d, t, source, RelationReferences, 0)
	}
	return &d
}

// collectImpl handles `impl Type` and `impl Trait for Type`: a trait impl
// adds an inherits reference on the type, and every method becomes a
// Type.method declaration.
func (w *rsWalker) collectImpl(node *tree_sitter.Node, source []byte, unit string) []declInfo {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return nil
	}
	typeName := typeNode.Utf8Text(source)

	var decls []declInfo
	if traitNode := node.ChildByFieldName("trait"); traitNode != nil {
		d := declInfo{
			name:          typeName,
			kind:          NodeKindClass,
			qualifiedName: unit + ":" + typeName,
		}
		d.addRef(traitNode.Utf8Text(source), RelationInherits)
		decls = append(decls, d)
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return decls
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		child := body.NamedChild(i)
		if child == nil || child.Kind() != "function_item" {
			continue
		}
		if d := w.collectFunction(child, source, unit, typeName); d != nil {
			decls = append(decls, *d)
		}
	}
	return decls
}

func (w *rsWalker) collectFunction(node *tree_sitter.Node, source []byte, unit, owner string) *declInfo {
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
			if p == nil || p.Kind() != "parameter" {
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

func (w *rsWalker) collectCalls(d *declInfo, node *tree_sitter.Node, source []byte) {
	if node.Kind() == "call_expression" {
		if fn := node.ChildByFieldName("function"); fn != nil {
			switch fn.Kind() {
			case "identifier", "scoped_identifier", "field_expression":
				callee := fn.Utf8Text(source)
				if callee != "" && !rsBuiltins[callee] {
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

func (w *rsWalker) typeRefs(d *declInfo, node *tree_sitter.Node, source []byte, rel Relation, depth int) {
	if node == nil || depth > 16 {
		return
	}
	switch node.Kind() {
	case "type_identifier":
		name := node.Utf8Text(source)
		if !rsBuiltins[name] {
			d.addRef(name, rel)
		}
	case "scoped_type_identifier":
		d.addRef(node.Utf8Text(source), rel)
	case "primitive_type":
		// u32, bool, etc.
	case "generic_type":
		w.typeRefs(d, node.ChildByFieldName("type"), source, rel, depth+1)
		w.typeRefs(d, node.ChildByFieldName("type_arguments"), source, RelationGeneric, depth+1)
	default:
		for i := uint(0); i < node.NamedChildCount(); i++ {
			w.typeRefs(d, node.NamedChild(i), source, rel, depth+1)
		}
	}
}
