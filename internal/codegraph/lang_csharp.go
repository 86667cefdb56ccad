package codegraph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

var csharpDescriptor = (&Descriptor{
	Language: LangCSharp,
	Kinds: map[string]ElementKind{
		"class_declaration":       KindClass,
		"struct_declaration":      KindClass,
		"record_declaration":      KindClass,
		"interface_declaration":   KindInterface,
		"enum_declaration":        KindEnum,
		"constructor_declaration": KindConstructor,
		"method_declaration":      KindMethod,
		"field_declaration":       KindField,
		"enum_member_declaration": KindField,
		"property_declaration":    KindProperty,
	},
	NameTypes:       []string{"identifier"},
	NameContainers:  []string{"variable_declaration", "variable_declarator"},
	PackageTypes:    []string{"file_scoped_namespace_declaration", "namespace_declaration"},
	PackagePrefixes: []string{"namespace"},
	PackageSuffixes: []string{";"},
	Queries: map[Intent][]string{
		IntentPackage: {
			`
(file_scoped_namespace_declaration name: _ @package)
(namespace_declaration name: _ @package)
`,
			`(namespace_declaration name: _ @package)`,
		},
		IntentInheritance: {
			`
(class_declaration name: (identifier) @class (base_list (identifier) @base))
(class_declaration name: (identifier) @class (base_list (generic_name (identifier) @base)))
(struct_declaration name: (identifier) @class (base_list (identifier) @base))
(record_declaration name: (identifier) @class (base_list (identifier) @base))
(interface_declaration name: (identifier) @class (base_list (identifier) @extends))
(interface_declaration name: (identifier) @class (base_list (generic_name (identifier) @extends)))
`,
			`
(class_declaration name: (identifier) @class (base_list (identifier) @base))
(interface_declaration name: (identifier) @class (base_list (identifier) @extends))
`,
		},
		IntentImports: {
			`(using_directive) @import`,
		},
		IntentMethods: {
			`(method_declaration name: (identifier) @name)`,
		},
		IntentClasses: {
			`
(class_declaration name: (identifier) @name)
(struct_declaration name: (identifier) @name)
(record_declaration name: (identifier) @name)
(interface_declaration name: (identifier) @name)
(enum_declaration name: (identifier) @name)
`,
			`
(class_declaration name: (identifier) @name)
(interface_declaration name: (identifier) @name)
(enum_declaration name: (identifier) @name)
`,
		},
		IntentFields: {
			`
(field_declaration (variable_declaration (variable_declarator . (identifier) @name)))
(property_declaration name: (identifier) @name)
`,
			`(field_declaration (variable_declaration (variable_declarator . (identifier) @name)))`,
		},
	},
	buildImports: csharpImports,
}).init()

// csharpImports handles "using A.B;", "using static A.B;", "global using A;"
// and "using X = A.B;".
func csharpImports(stmt *tree_sitter.Node, src []byte) []ImportInfo {
	raw := strings.TrimSpace(nodeText(stmt, src))
	body := strings.TrimSuffix(raw, ";")
	body = strings.TrimSpace(strings.TrimPrefix(body, "global"))
	body = strings.TrimSpace(strings.TrimPrefix(body, "using"))

	info := ImportInfo{Kind: ImportModule}
	if strings.HasPrefix(body, "static ") {
		info.IsStatic = true
		body = strings.TrimSpace(strings.TrimPrefix(body, "static"))
	}
	if alias, target, ok := strings.Cut(body, "="); ok {
		info.Alias = strings.TrimSpace(alias)
		body = strings.TrimSpace(target)
	}
	if body == "" {
		return nil
	}
	info.Path = body
	return []ImportInfo{info}
}
