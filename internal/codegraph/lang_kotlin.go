package codegraph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

var kotlinDescriptor = (&Descriptor{
	Language: LangKotlin,
	Kinds: map[string]ElementKind{
		"class_declaration":     KindClass,
		"object_declaration":    KindClass,
		"primary_constructor":   KindConstructor,
		"secondary_constructor": KindConstructor,
		"function_declaration":  KindMethod,
		"property_declaration":  KindProperty,
		"enum_entry":            KindField,
	},
	KindByChild: map[string]map[string]ElementKind{
		"class_declaration": {
			"interface":       KindInterface,
			"enum_class_body": KindEnum,
		},
	},
	NameTypes:       []string{"simple_identifier", "type_identifier", "identifier"},
	NameContainers:  []string{"variable_declaration"},
	PackageTypes:    []string{"package_header"},
	PackagePrefixes: []string{"package"},
	PackageSuffixes: []string{";"},
	Queries: map[Intent][]string{
		IntentPackage: {
			`(package_header (identifier) @package)`,
			`(package_header (qualified_identifier) @package)`,
		},
		IntentInheritance: {
			`
(class_declaration (type_identifier) @class (delegation_specifier (constructor_invocation (user_type (type_identifier) @extends))))
(class_declaration (type_identifier) @class (delegation_specifier (user_type (type_identifier) @base)))
(object_declaration (type_identifier) @class (delegation_specifier (constructor_invocation (user_type (type_identifier) @extends))))
(object_declaration (type_identifier) @class (delegation_specifier (user_type (type_identifier) @base)))
`,
			`
(class_declaration (identifier) @class (delegation_specifiers (delegation_specifier (constructor_invocation (user_type (identifier) @extends)))))
(class_declaration (identifier) @class (delegation_specifiers (delegation_specifier (user_type (identifier) @base))))
`,
		},
		IntentImports: {
			`(import_header) @import`,
			`(import) @import`,
		},
		IntentMethods: {
			`(function_declaration (simple_identifier) @name)`,
			`(function_declaration name: (identifier) @name)`,
		},
		IntentClasses: {
			`
(class_declaration (type_identifier) @name)
(object_declaration (type_identifier) @name)
`,
			`
(class_declaration name: (identifier) @name)
(object_declaration name: (identifier) @name)
`,
		},
		IntentFields: {
			`(property_declaration (variable_declaration (simple_identifier) @name))`,
			`(property_declaration (variable_declaration (identifier) @name))`,
		},
	},
	buildImports: kotlinImports,
}).init()

// kotlinImports handles "import a.b.C", "import a.b.*" and "import a.b.C as D".
func kotlinImports(stmt *tree_sitter.Node, src []byte) []ImportInfo {
	raw := strings.TrimSpace(nodeText(stmt, src))
	body := strings.TrimSpace(strings.TrimPrefix(raw, "import"))
	body = strings.TrimSuffix(body, ";")

	info := ImportInfo{Kind: ImportModule}
	if alias := childOfType(stmt, "import_alias"); alias != nil {
		info.Alias = firstOfType(alias, src, "type_identifier", "simple_identifier", "identifier")
		if i := strings.Index(body, " as "); i >= 0 {
			body = body[:i]
		}
	} else if i := strings.Index(body, " as "); i >= 0 {
		info.Alias = strings.TrimSpace(body[i+4:])
		body = body[:i]
	}

	body = strings.TrimSpace(body)
	if strings.HasSuffix(body, ".*") {
		info.IsWildcard = true
		body = strings.TrimSuffix(body, ".*")
	}
	if body == "" {
		return nil
	}
	info.Path = body
	return []ImportInfo{info}
}
