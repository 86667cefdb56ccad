package codegraph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

var pythonDescriptor = (&Descriptor{
	Language: LangPython,
	Kinds: map[string]ElementKind{
		"class_definition":    KindClass,
		"function_definition": KindMethod,
	},
	NameTypes:        []string{"identifier"},
	ConstructorNames: []string{"__init__"},
	Queries: map[Intent][]string{
		IntentInheritance: {
			`
(class_definition name: (identifier) @class superclasses: (argument_list (identifier) @base))
(class_definition name: (identifier) @class superclasses: (argument_list (attribute attribute: (identifier) @base)))
`,
		},
		IntentImports: {
			`
(import_statement) @import
(import_from_statement) @import
`,
		},
		IntentMethods: {
			`(function_definition name: (identifier) @name)`,
		},
		IntentClasses: {
			`(class_definition name: (identifier) @name)`,
		},
		IntentFields: {
			`(class_definition body: (block (expression_statement (assignment left: (identifier) @name))))`,
		},
	},
	buildImports: pythonImports,
}).init()

// pythonImports handles "import a.b [as c], d" and
// "from [.]a import x [as y], *".
func pythonImports(stmt *tree_sitter.Node, src []byte) []ImportInfo {
	switch stmt.Kind() {
	case "import_statement":
		var out []ImportInfo
		for i := uint(0); i < stmt.NamedChildCount(); i++ {
			c := stmt.NamedChild(i)
			if c == nil {
				continue
			}
			switch c.Kind() {
			case "dotted_name":
				out = append(out, ImportInfo{Path: nodeText(c, src), Kind: ImportModule})
			case "aliased_import":
				path := c.ChildByFieldName("name")
				if path == nil {
					continue
				}
				out = append(out, ImportInfo{
					Path:  nodeText(path, src),
					Kind:  ImportModule,
					Alias: nodeText(c.ChildByFieldName("alias"), src),
				})
			}
		}
		return out

	case "import_from_statement":
		module := stmt.ChildByFieldName("module_name")
		info := ImportInfo{Kind: ImportSelective}
		if module != nil {
			info.Path = nodeText(module, src)
			if module.Kind() == "relative_import" || strings.HasPrefix(info.Path, ".") {
				info.Kind = ImportRelative
			}
		}
		for i := uint(0); i < stmt.NamedChildCount(); i++ {
			c := stmt.NamedChild(i)
			if c == nil || (module != nil && c.StartByte() == module.StartByte()) {
				continue
			}
			switch c.Kind() {
			case "wildcard_import":
				info.IsWildcard = true
			case "dotted_name", "identifier":
				info.ImportedNames = append(info.ImportedNames, nodeText(c, src))
			case "aliased_import":
				if name := c.ChildByFieldName("name"); name != nil {
					info.ImportedNames = append(info.ImportedNames, nodeText(name, src))
				}
			}
		}
		return []ImportInfo{info}
	}
	return nil
}
