package codegraph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

var javascriptDescriptor = (&Descriptor{
	Language: LangJavaScript,
	Kinds: map[string]ElementKind{
		"class_declaration":              KindClass,
		"class":                          KindClass,
		"function_declaration":           KindMethod,
		"generator_function_declaration": KindMethod,
		"method_definition":              KindMethod,
		"field_definition":               KindField,
	},
	KindByChild: map[string]map[string]ElementKind{
		"variable_declarator": {
			"arrow_function":      KindMethod,
			"function_expression": KindMethod,
			"function":            KindMethod,
		},
	},
	NameTypes:        []string{"identifier", "property_identifier", "private_property_identifier"},
	ConstructorNames: []string{"constructor"},
	Queries: map[Intent][]string{
		IntentInheritance: {
			`
(class_declaration name: (identifier) @class (class_heritage (identifier) @extends))
(class_declaration name: (identifier) @class (class_heritage (member_expression property: (property_identifier) @extends)))
`,
			`(class_declaration name: (identifier) @class (class_heritage (identifier) @extends))`,
		},
		IntentImports: {
			`
(import_statement) @import
(call_expression function: (identifier) arguments: (arguments (string))) @import
`,
			`(import_statement) @import`,
		},
		IntentMethods: {
			`
(method_definition name: (property_identifier) @name)
(function_declaration name: (identifier) @name)
`,
		},
		IntentClasses: {
			`(class_declaration name: (identifier) @name)`,
		},
		IntentFields: {
			`(field_definition property: (property_identifier) @name)`,
		},
	},
	buildImports: jsImports,
}).init()

var typescriptDescriptor = (&Descriptor{
	Language: LangTypeScript,
	Kinds: map[string]ElementKind{
		"class_declaration":              KindClass,
		"abstract_class_declaration":     KindClass,
		"class":                          KindClass,
		"interface_declaration":          KindInterface,
		"enum_declaration":               KindEnum,
		"function_declaration":           KindMethod,
		"generator_function_declaration": KindMethod,
		"method_definition":              KindMethod,
		"method_signature":               KindMethod,
		"abstract_method_signature":      KindMethod,
		"public_field_definition":        KindField,
		"property_signature":             KindProperty,
	},
	KindByChild: map[string]map[string]ElementKind{
		"variable_declarator": {
			"arrow_function":      KindMethod,
			"function_expression": KindMethod,
		},
	},
	NameTypes:        []string{"identifier", "type_identifier", "property_identifier", "private_property_identifier"},
	ConstructorNames: []string{"constructor"},
	Queries: map[Intent][]string{
		IntentInheritance: {
			`
(class_declaration name: (type_identifier) @class (class_heritage (extends_clause (identifier) @extends)))
(class_declaration name: (type_identifier) @class (class_heritage (implements_clause (type_identifier) @implements)))
(class_declaration name: (type_identifier) @class (class_heritage (implements_clause (generic_type (type_identifier) @implements))))
(abstract_class_declaration name: (type_identifier) @class (class_heritage (extends_clause (identifier) @extends)))
(abstract_class_declaration name: (type_identifier) @class (class_heritage (implements_clause (type_identifier) @implements)))
(interface_declaration name: (type_identifier) @class (extends_type_clause (type_identifier) @extends))
`,
			`
(class_declaration name: (type_identifier) @class (class_heritage (extends_clause (identifier) @extends)))
(class_declaration name: (type_identifier) @class (class_heritage (implements_clause (type_identifier) @implements)))
`,
		},
		IntentImports: {
			`
(import_statement) @import
(call_expression function: (identifier) arguments: (arguments (string))) @import
`,
			`(import_statement) @import`,
		},
		IntentMethods: {
			`
(method_definition name: (property_identifier) @name)
(method_signature name: (property_identifier) @name)
(function_declaration name: (identifier) @name)
`,
			`
(method_definition name: (property_identifier) @name)
(function_declaration name: (identifier) @name)
`,
		},
		IntentClasses: {
			`
(class_declaration name: (type_identifier) @name)
(abstract_class_declaration name: (type_identifier) @name)
(interface_declaration name: (type_identifier) @name)
(enum_declaration name: (identifier) @name)
`,
			`(class_declaration name: (type_identifier) @name)`,
		},
		IntentFields: {
			`(public_field_definition name: (property_identifier) @name)`,
		},
	},
	buildImports: jsImports,
}).init()

// jsImports handles ES module imports and CommonJS require calls.
func jsImports(stmt *tree_sitter.Node, src []byte) []ImportInfo {
	switch stmt.Kind() {
	case "import_statement":
		return jsImportStatement(stmt, src)
	case "call_expression":
		fn := stmt.ChildByFieldName("function")
		if fn == nil || nodeText(fn, src) != "require" {
			return nil
		}
		args := stmt.ChildByFieldName("arguments")
		if args == nil {
			return nil
		}
		str := childOfType(args, "string")
		if str == nil {
			return nil
		}
		path := unquote(nodeText(str, src))
		kind := ImportModule
		if strings.HasPrefix(path, ".") {
			kind = ImportRelative
		}
		return []ImportInfo{{Path: path, Kind: kind}}
	}
	return nil
}

func jsImportStatement(stmt *tree_sitter.Node, src []byte) []ImportInfo {
	source := stmt.ChildByFieldName("source")
	if source == nil {
		source = childOfType(stmt, "string")
	}
	if source == nil {
		// TypeScript "import x = require('y')".
		if req := childOfType(stmt, "import_require_clause"); req != nil {
			source = childOfType(req, "string")
		}
	}
	if source == nil {
		return nil
	}

	info := ImportInfo{Path: unquote(nodeText(source, src))}
	clause := childOfType(stmt, "import_clause")
	if clause != nil {
		for i := uint(0); i < clause.NamedChildCount(); i++ {
			c := clause.NamedChild(i)
			if c == nil {
				continue
			}
			switch c.Kind() {
			case "identifier":
				info.Alias = nodeText(c, src)
			case "namespace_import":
				info.IsWildcard = true
				info.Alias = firstOfType(c, src, "identifier")
			case "named_imports":
				info.ImportedNames = append(info.ImportedNames, jsNamedImports(c, src)...)
			}
		}
	}

	switch {
	case clause == nil && childOfType(stmt, "import_require_clause") == nil:
		info.Kind = ImportSideEffect
	case strings.HasPrefix(info.Path, "."):
		info.Kind = ImportRelative
	case len(info.ImportedNames) > 0:
		info.Kind = ImportSelective
	default:
		info.Kind = ImportModule
	}
	return []ImportInfo{info}
}

func jsNamedImports(named *tree_sitter.Node, src []byte) []string {
	var names []string
	for i := uint(0); i < named.NamedChildCount(); i++ {
		spec := named.NamedChild(i)
		if spec == nil || spec.Kind() != "import_specifier" {
			continue
		}
		if name := spec.ChildByFieldName("name"); name != nil {
			names = append(names, nodeText(name, src))
			continue
		}
		if s := firstOfType(spec, src, "identifier"); s != "" {
			names = append(names, s)
		}
	}
	return names
}

func unquote(s string) string {
	return strings.Trim(s, "\"'`")
}
