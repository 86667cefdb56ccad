package codegraph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Intent names one family of query patterns.
type Intent string

const (
	IntentPackage     Intent = "package"
	IntentInheritance Intent = "inheritance"
	IntentImports     Intent = "imports"
	IntentMethods     Intent = "methods"
	IntentClasses     Intent = "classes"
	IntentFields      Intent = "fields"
)

// Capture labels understood by the extractors.
const (
	labelPackage    = "package"
	labelClass      = "class"
	labelExtends    = "extends"
	labelImplements = "implements"
	labelBase       = "base" // EXTENDS or IMPLEMENTS, decided by the resolved target
	labelImport     = "import"
	labelName       = "name"
)

// importBuilder turns one captured import statement into ImportInfo values.
// FilePath, line span and RawText are filled in by the caller.
type importBuilder func(stmt *tree_sitter.Node, src []byte) []ImportInfo

// Descriptor is the declarative description of one language: how grammar
// node types map to element kinds, where names live, and which query
// patterns serve each intent.
type Descriptor struct {
	Language Language

	// Kinds maps classifiable grammar node types to element kinds.
	Kinds map[string]ElementKind
	// KindByChild refines a node type's kind from the type of one of its
	// children. A node type listed here but absent from Kinds is only
	// classifiable when a refinement matches.
	KindByChild map[string]map[string]ElementKind
	// NameTypes are the grammar types accepted as a declaration name.
	NameTypes []string
	// NameContainers are wrapper types searched for a name when the
	// declaration has no direct name child (Java variable_declarator).
	NameContainers []string
	// ConstructorNames turn a METHOD with one of these names into a
	// CONSTRUCTOR.
	ConstructorNames []string
	// Scopes are unclassified node types that still open a naming scope;
	// the value is the field holding the scope's type name (Rust impl).
	Scopes map[string]string
	// Receivers are node types whose parent comes from a field instead of
	// lexical nesting (Go methods).
	Receivers map[string]string

	// PackageTypes are root-level node types holding the package or
	// namespace declaration, used when the package query yields nothing.
	PackageTypes    []string
	PackagePrefixes []string
	PackageSuffixes []string

	// Queries lists pattern variants per intent. The first variant that
	// compiles against the loaded grammar is used.
	Queries map[Intent][]string

	buildImports importBuilder

	nameTypes      map[string]bool
	nameContainers map[string]bool
	ctorNames      map[string]bool
}

func (d *Descriptor) init() *Descriptor {
	d.nameTypes = toSet(d.NameTypes)
	d.nameContainers = toSet(d.NameContainers)
	d.ctorNames = toSet(d.ConstructorNames)
	return d
}

// kindOf returns the element kind for n, or false when n is not a
// declaration. Anonymous tokens such as the class keyword never are.
func (d *Descriptor) kindOf(n *tree_sitter.Node) (ElementKind, bool) {
	if !n.IsNamed() {
		return "", false
	}
	typ := n.Kind()
	if refine, ok := d.KindByChild[typ]; ok {
		for i := uint(0); i < n.ChildCount(); i++ {
			c := n.Child(i)
			if c == nil {
				continue
			}
			if k, ok := refine[c.Kind()]; ok {
				return k, true
			}
		}
	}
	k, ok := d.Kinds[typ]
	return k, ok
}

// declName finds the simple name of a declaration node.
func (d *Descriptor) declName(n *tree_sitter.Node, src []byte) string {
	return d.findName(n, src, 0)
}

func (d *Descriptor) findName(n *tree_sitter.Node, src []byte, depth int) string {
	if c := n.ChildByFieldName("name"); c != nil && d.nameTypes[c.Kind()] {
		return nodeText(c, src)
	}
	if depth < 3 {
		for i := uint(0); i < n.NamedChildCount(); i++ {
			c := n.NamedChild(i)
			if c == nil || !d.nameContainers[c.Kind()] {
				continue
			}
			if name := d.findName(c, src, depth+1); name != "" {
				return name
			}
		}
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && d.nameTypes[c.Kind()] {
			return nodeText(c, src)
		}
	}
	return ""
}

// typeNameIn returns the first type name found in the subtree under the
// given field of n (Rust "impl Foo<T>" yields "Foo").
func (d *Descriptor) typeNameIn(n *tree_sitter.Node, field string, src []byte) string {
	target := n.ChildByFieldName(field)
	if target == nil {
		return ""
	}
	if name := firstOfType(target, src, "type_identifier"); name != "" {
		return name
	}
	return firstOfType(target, src, "identifier")
}

// stripPackage removes the descriptor's package tokens from a raw package
// declaration.
func (d *Descriptor) stripPackage(text string) string {
	if i := strings.IndexByte(text, '{'); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSpace(text)
	for _, p := range d.PackagePrefixes {
		if strings.HasPrefix(text, p) {
			text = strings.TrimSpace(strings.TrimPrefix(text, p))
			break
		}
	}
	for _, s := range d.PackageSuffixes {
		text = strings.TrimSuffix(text, s)
	}
	return strings.TrimSpace(text)
}

// firstOfType returns the text of the first node in pre-order whose type is
// one of types.
func firstOfType(n *tree_sitter.Node, src []byte, types ...string) string {
	for _, t := range types {
		if n.Kind() == t {
			return nodeText(n, src)
		}
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		if s := firstOfType(c, src, types...); s != "" {
			return s
		}
	}
	return ""
}

// childOfType returns the first direct child of n with one of types.
func childOfType(n *tree_sitter.Node, types ...string) *tree_sitter.Node {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		for _, t := range types {
			if c.Kind() == t {
				return c
			}
		}
	}
	return nil
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

// descriptors holds one immutable descriptor per language. Dialects reuse
// their base language's descriptor.
var descriptors = map[Language]*Descriptor{
	LangJava:       javaDescriptor,
	LangKotlin:     kotlinDescriptor,
	LangCSharp:     csharpDescriptor,
	LangPython:     pythonDescriptor,
	LangJavaScript: javascriptDescriptor,
	LangJSX:        javascriptDescriptor,
	LangTypeScript: typescriptDescriptor,
	LangTSX:        typescriptDescriptor,
	LangGo:         goDescriptor,
	LangRust:       rustDescriptor,
}

// DescriptorFor returns the descriptor for lang.
func DescriptorFor(lang Language) (*Descriptor, bool) {
	d, ok := descriptors[lang]
	return d, ok
}
