package codegraph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

var goDescriptor = (&Descriptor{
	Language: LangGo,
	Kinds: map[string]ElementKind{
		"type_spec":            KindClass,
		"function_declaration": KindMethod,
		"method_declaration":   KindMethod,
		"method_elem":          KindMethod,
		"method_spec":          KindMethod,
		"field_declaration":    KindField,
	},
	KindByChild: map[string]map[string]ElementKind{
		"type_spec": {
			"interface_type": KindInterface,
		},
	},
	NameTypes:       []string{"identifier", "field_identifier", "type_identifier"},
	Receivers:       map[string]string{"method_declaration": "receiver"},
	PackageTypes:    []string{"package_clause"},
	PackagePrefixes: []string{"package"},
	Queries: map[Intent][]string{
		IntentPackage: {
			`(package_clause (package_identifier) @package)`,
		},
		IntentInheritance: {
			`
(type_spec name: (type_identifier) @class type: (struct_type (field_declaration_list (field_declaration !name type: (type_identifier) @extends))))
(type_spec name: (type_identifier) @class type: (interface_type (type_elem (type_identifier) @extends)))
`,
			`
(type_spec name: (type_identifier) @class type: (struct_type (field_declaration_list (field_declaration !name type: (type_identifier) @extends))))
`,
		},
		IntentImports: {
			`(import_spec) @import`,
		},
		IntentMethods: {
			`
(method_declaration name: (field_identifier) @name)
(function_declaration name: (identifier) @name)
`,
		},
		IntentClasses: {
			`
(type_spec name: (type_identifier) @name type: (struct_type))
(type_spec name: (type_identifier) @name type: (interface_type))
`,
		},
		IntentFields: {
			`(field_declaration name: (field_identifier) @name)`,
		},
	},
	buildImports: goImports,
}).init()

// goImports handles one import spec, with an optional alias, "." or "_".
func goImports(stmt *tree_sitter.Node, src []byte) []ImportInfo {
	pathNode := stmt.ChildByFieldName("path")
	if pathNode == nil {
		pathNode = childOfType(stmt, "interpreted_string_literal", "raw_string_literal")
	}
	if pathNode == nil {
		return nil
	}
	info := ImportInfo{
		Path: strings.Trim(nodeText(pathNode, src), "\"`"),
		Kind: ImportModule,
	}
	if name := stmt.ChildByFieldName("name"); name != nil {
		switch name.Kind() {
		case "dot":
			info.IsWildcard = true
		case "blank_identifier":
			info.Kind = ImportSideEffect
		default:
			info.Alias = nodeText(name, src)
		}
	}
	return []ImportInfo{info}
}
