package codegraph

// --- Enums ---

// ElementKind classifies a declaration found in source.
type ElementKind string

const (
	KindClass       ElementKind = "CLASS"
	KindInterface   ElementKind = "INTERFACE"
	KindEnum        ElementKind = "ENUM"
	KindConstructor ElementKind = "CONSTRUCTOR"
	KindMethod      ElementKind = "METHOD"
	KindField       ElementKind = "FIELD"
	KindProperty    ElementKind = "PROPERTY"
	KindVariable    ElementKind = "VARIABLE"
	KindUnknown     ElementKind = "UNKNOWN"
)

// IsTypeLike reports whether nodes of this kind can be the target of an
// inheritance edge or the container of other declarations.
func (k ElementKind) IsTypeLike() bool {
	return k == KindClass || k == KindInterface || k == KindEnum
}

// RelationshipKind classifies a directed edge between two code nodes.
type RelationshipKind string

const (
	RelExtends    RelationshipKind = "EXTENDS"
	RelImplements RelationshipKind = "IMPLEMENTS"
	RelMadeOf     RelationshipKind = "MADE_OF"
)

// ImportKind classifies the shape of an import statement.
type ImportKind string

const (
	ImportModule     ImportKind = "MODULE"
	ImportSelective  ImportKind = "SELECTIVE"
	ImportRelative   ImportKind = "RELATIVE"
	ImportSideEffect ImportKind = "SIDE_EFFECT"
)

// Metadata keys recorded on every CodeNode.
const (
	MetaLanguage = "language"
	MetaNodeType = "nodeType"
	MetaParent   = "parent"
	MetaSource   = "source"
)

// Metadata keys recorded on every CodeGraph.
const (
	MetaFileCount         = "fileCount"
	MetaPlatform          = "platform"
	MetaNodeCount         = "nodeCount"
	MetaRelationshipCount = "relationshipCount"
)

const (
	// ConstructorName is the synthetic name given to constructor-like nodes.
	ConstructorName = "<init>"
	// UnknownName is used when a declaration has no recognizable name child.
	UnknownName = "unknown"
	// SourceClassifier tags nodes produced by the tree walker.
	SourceClassifier = "classifier"
	// Platform tags graphs produced by this package.
	Platform = "go-tree-sitter"
)

// --- Models ---

// CodeNode is one structural declaration found in source.
type CodeNode struct {
	ID            string            `json:"id"`
	Kind          ElementKind       `json:"kind"`
	Name          string            `json:"name"`
	PackageName   string            `json:"packageName"`
	FilePath      string            `json:"filePath"`
	QualifiedName string            `json:"qualifiedName"`
	StartLine     int               `json:"startLine"`   // 1-based
	EndLine       int               `json:"endLine"`     // 1-based, inclusive
	StartColumn   int               `json:"startColumn"` // 0-based
	EndColumn     int               `json:"endColumn"`   // 0-based
	Content       string            `json:"content"`
	Metadata      map[string]string `json:"metadata"`

	startByte uint
	endByte   uint
}

// Parent returns the recorded lexical parent name, or "".
func (n CodeNode) Parent() string {
	return n.Metadata[MetaParent]
}

// Language returns the language the node was extracted from.
func (n CodeNode) Language() string {
	return n.Metadata[MetaLanguage]
}

// encloses reports whether n's byte span strictly contains other's.
func (n CodeNode) encloses(other CodeNode) bool {
	if n.FilePath != other.FilePath || n.ID == other.ID {
		return false
	}
	if n.endByte == 0 && n.startByte == 0 {
		return n.StartLine <= other.StartLine && other.EndLine <= n.EndLine
	}
	return n.startByte <= other.startByte && other.endByte <= n.endByte
}

// CodeRelationship is a directed typed edge between two nodes.
type CodeRelationship struct {
	SourceID string           `json:"sourceId"`
	TargetID string           `json:"targetId"`
	Kind     RelationshipKind `json:"kind"`
}

// ImportInfo describes one import/use statement.
type ImportInfo struct {
	Path          string     `json:"path"`
	Kind          ImportKind `json:"kind"`
	FilePath      string     `json:"filePath"`
	StartLine     int        `json:"startLine"`
	EndLine       int        `json:"endLine"`
	IsStatic      bool       `json:"isStatic"`
	IsWildcard    bool       `json:"isWildcard"`
	Alias         string     `json:"alias,omitempty"`
	ImportedNames []string   `json:"importedNames,omitempty"`
	RawText       string     `json:"rawText"`
}

// CodeGraph aggregates the nodes and relationships of one extraction batch.
// It is built once and not mutated afterwards.
type CodeGraph struct {
	Nodes         []CodeNode         `json:"nodes"`
	Relationships []CodeRelationship `json:"relationships"`
	Metadata      map[string]string  `json:"metadata"`
}

// NodeByID returns the node with the given id.
func (g *CodeGraph) NodeByID(id string) (CodeNode, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return CodeNode{}, false
}

// RelationshipsOf returns all relationships of the given kind, in graph order.
func (g *CodeGraph) RelationshipsOf(kind RelationshipKind) []CodeRelationship {
	var out []CodeRelationship
	for _, r := range g.Relationships {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// SourceFile is one input file of a batch.
type SourceFile struct {
	Path    string `json:"path"`
	Content []byte `json:"-"`
}

// LanguageBatch groups the files of one language.
type LanguageBatch struct {
	Language Language
	Files    []SourceFile
}

// SyntaxIssue locates one error or missing node in a parsed tree.
type SyntaxIssue struct {
	Kind      string `json:"kind"` // "error" or "missing"
	NodeType  string `json:"nodeType"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startColumn"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endColumn"`
	Text      string `json:"text"`
}
