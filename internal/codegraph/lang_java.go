package codegraph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

var javaDescriptor = (&Descriptor{
	Language: LangJava,
	Kinds: map[string]ElementKind{
		"class_declaration":                   KindClass,
		"record_declaration":                  KindClass,
		"interface_declaration":               KindInterface,
		"annotation_type_declaration":         KindInterface,
		"enum_declaration":                    KindEnum,
		"constructor_declaration":             KindConstructor,
		"compact_constructor_declaration":     KindConstructor,
		"method_declaration":                  KindMethod,
		"annotation_type_element_declaration": KindMethod,
		"field_declaration":                   KindField,
		"constant_declaration":                KindField,
		"enum_constant":                       KindField,
	},
	NameTypes:       []string{"identifier", "type_identifier"},
	NameContainers:  []string{"variable_declarator"},
	PackageTypes:    []string{"package_declaration"},
	PackagePrefixes: []string{"package"},
	PackageSuffixes: []string{";"},
	Queries: map[Intent][]string{
		IntentPackage: {
			`(package_declaration [(identifier) (scoped_identifier)] @package)`,
		},
		IntentInheritance: {
			`
(class_declaration name: (identifier) @class (superclass (type_identifier) @extends))
(class_declaration name: (identifier) @class (superclass (generic_type (type_identifier) @extends)))
(class_declaration name: (identifier) @class (super_interfaces (type_list (type_identifier) @implements)))
(class_declaration name: (identifier) @class (super_interfaces (type_list (generic_type (type_identifier) @implements))))
(interface_declaration name: (identifier) @class (extends_interfaces (type_list (type_identifier) @extends)))
(interface_declaration name: (identifier) @class (extends_interfaces (type_list (generic_type (type_identifier) @extends))))
(enum_declaration name: (identifier) @class (super_interfaces (type_list (type_identifier) @implements)))
(record_declaration name: (identifier) @class (super_interfaces (type_list (type_identifier) @implements)))
`,
			`
(class_declaration name: (identifier) @class (superclass (type_identifier) @extends))
(class_declaration name: (identifier) @class (super_interfaces (type_list (type_identifier) @implements)))
(interface_declaration name: (identifier) @class (extends_interfaces (type_list (type_identifier) @extends)))
`,
		},
		IntentImports: {
			`(import_declaration) @import`,
		},
		IntentMethods: {
			`(method_declaration name: (identifier) @name)`,
		},
		IntentClasses: {
			`
(class_declaration name: (identifier) @name)
(interface_declaration name: (identifier) @name)
(enum_declaration name: (identifier) @name)
(record_declaration name: (identifier) @name)
`,
			`
(class_declaration name: (identifier) @name)
(interface_declaration name: (identifier) @name)
(enum_declaration name: (identifier) @name)
`,
		},
		IntentFields: {
			`(field_declaration declarator: (variable_declarator name: (identifier) @name))`,
			`(field_declaration (variable_declarator (identifier) @name))`,
		},
	},
	buildImports: javaImports,
}).init()

// javaImports handles "import [static] a.b.C[.*];".
func javaImports(stmt *tree_sitter.Node, src []byte) []ImportInfo {
	pathNode := childOfType(stmt, "scoped_identifier", "identifier")
	if pathNode == nil {
		return nil
	}
	raw := strings.TrimSpace(nodeText(stmt, src))
	return []ImportInfo{{
		Path:       strings.TrimSuffix(nodeText(pathNode, src), ".*"),
		Kind:       ImportModule,
		IsStatic:   childOfType(stmt, "static") != nil,
		IsWildcard: childOfType(stmt, "asterisk") != nil || strings.HasSuffix(strings.TrimSuffix(raw, ";"), "*"),
	}}
}
