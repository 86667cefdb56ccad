package codegraph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

var rustDescriptor = (&Descriptor{
	Language: LangRust,
	Kinds: map[string]ElementKind{
		"struct_item":             KindClass,
		"union_item":              KindClass,
		"enum_item":               KindEnum,
		"trait_item":              KindInterface,
		"function_item":           KindMethod,
		"function_signature_item": KindMethod,
		"field_declaration":       KindField,
		"enum_variant":            KindField,
	},
	NameTypes: []string{"identifier", "type_identifier", "field_identifier"},
	Scopes:    map[string]string{"impl_item": "type"},
	Queries: map[Intent][]string{
		IntentInheritance: {
			`
(impl_item trait: (type_identifier) @implements type: (type_identifier) @class)
(impl_item trait: (type_identifier) @implements type: (generic_type type: (type_identifier) @class))
(trait_item name: (type_identifier) @class bounds: (trait_bounds (type_identifier) @extends))
`,
			`(impl_item trait: (type_identifier) @implements type: (type_identifier) @class)`,
		},
		IntentImports: {
			`(use_declaration) @import`,
		},
		IntentMethods: {
			`(function_item name: (identifier) @name)`,
		},
		IntentClasses: {
			`
(struct_item name: (type_identifier) @name)
(enum_item name: (type_identifier) @name)
(trait_item name: (type_identifier) @name)
`,
		},
		IntentFields: {
			`(field_declaration name: (field_identifier) @name)`,
		},
	},
	buildImports: rustImports,
}).init()

// rustImports handles "use a::b;", "use a::b as c;", "use a::*;" and
// "use a::{b, c};".
func rustImports(stmt *tree_sitter.Node, src []byte) []ImportInfo {
	arg := stmt.ChildByFieldName("argument")
	if arg == nil {
		return nil
	}
	info := ImportInfo{Kind: ImportModule}

	switch arg.Kind() {
	case "use_as_clause":
		info.Path = nodeText(arg.ChildByFieldName("path"), src)
		info.Alias = nodeText(arg.ChildByFieldName("alias"), src)
	case "use_wildcard":
		info.IsWildcard = true
		info.Path = strings.TrimSuffix(strings.TrimSpace(nodeText(arg, src)), "::*")
	case "scoped_use_list":
		info.Path = nodeText(arg.ChildByFieldName("path"), src)
		if list := arg.ChildByFieldName("list"); list != nil {
			info.ImportedNames = rustUseList(list, src)
		}
		if len(info.ImportedNames) > 0 {
			info.Kind = ImportSelective
		}
	case "use_list":
		info.ImportedNames = rustUseList(arg, src)
		info.Kind = ImportSelective
	default:
		info.Path = nodeText(arg, src)
	}

	for _, prefix := range []string{"crate::", "self::", "super::"} {
		if strings.HasPrefix(info.Path, prefix) {
			info.Kind = ImportRelative
			break
		}
	}
	return []ImportInfo{info}
}

func rustUseList(list *tree_sitter.Node, src []byte) []string {
	var names []string
	for i := uint(0); i < list.NamedChildCount(); i++ {
		c := list.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "use_as_clause":
			names = append(names, nodeText(c.ChildByFieldName("path"), src))
		default:
			names = append(names, nodeText(c, src))
		}
	}
	return names
}
