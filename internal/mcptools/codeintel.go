package mcptools

import (
	"github.com/dusk-indust/codegraph/internal/codegraph"
	"github.com/dusk-indust/codegraph/internal/graphstore"
	"github.com/dusk-indust/codegraph/internal/indexer"
)

// --- MCP Tool Input Types ---
// The MCP Go SDK derives each tool's JSON schema from these struct tags.

// IndexProjectInput is the input for the index_project MCP tool.
type IndexProjectInput struct {
	Path        string   `json:"path,omitempty" jsonschema:"directory to index, absolute or relative to the project root (default: the project root)"`
	Languages   []string `json:"languages,omitempty" jsonschema:"languages to index (default: all). Values: java, kotlin, csharp, python, javascript, jsx, typescript, tsx, go, rust"`
	ExcludeDirs []string `json:"excludeDirs,omitempty" jsonschema:"extra directory names or relative paths to skip"`
}

// IndexProjectOutput is the result of the index_project MCP tool.
type IndexProjectOutput struct {
	Languages []indexer.LanguageSummary `json:"languages"`
	Clusters  []graphstore.Cluster      `json:"clusters"`
	Stats     graphstore.Stats          `json:"stats"`
}

// FileInput names one source file. Language overrides extension detection.
type FileInput struct {
	Path     string `json:"path" jsonschema:"source file, absolute or relative to the project root"`
	Language string `json:"language,omitempty" jsonschema:"language override, e.g. java or typescript"`
}

// ParseFileOutput is the result of the parse_file MCP tool.
type ParseFileOutput struct {
	Nodes         []codegraph.CodeNode         `json:"nodes"`
	Relationships []codegraph.CodeRelationship `json:"relationships"`
}

// ParseImportsOutput is the result of the parse_imports MCP tool.
type ParseImportsOutput struct {
	Imports []codegraph.ImportInfo `json:"imports"`
}

// ExtractNamesInput is the input for the extract_names MCP tool.
type ExtractNamesInput struct {
	Path     string `json:"path" jsonschema:"source file, absolute or relative to the project root"`
	Language string `json:"language,omitempty" jsonschema:"language override, e.g. java or typescript"`
	Kind     string `json:"kind" jsonschema:"which names to extract: methods, classes or fields"`
}

// ExtractNamesOutput is the result of the extract_names MCP tool.
type ExtractNamesOutput struct {
	Names []string `json:"names"`
}

// CheckSyntaxOutput is the result of the check_syntax MCP tool.
type CheckSyntaxOutput struct {
	HasErrors bool                    `json:"hasErrors"`
	Issues    []codegraph.SyntaxIssue `json:"issues"`
}

// QueryNodesInput is the input for the query_nodes MCP tool.
type QueryNodesInput struct {
	Query string `json:"query" jsonschema:"substring matched against node names and qualified names"`
	Kind  string `json:"kind,omitempty" jsonschema:"filter by node kind: class, interface, enum, constructor, method, field, property, variable"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 20)"`
}

// QueryNodesOutput is the result of the query_nodes MCP tool.
type QueryNodesOutput struct {
	Nodes []codegraph.CodeNode `json:"nodes"`
	Total int                  `json:"total"`
}

// GetRelatedInput is the input for the get_related MCP tool.
type GetRelatedInput struct {
	NodeID       string `json:"nodeId" jsonschema:"id of the node to start from"`
	Relationship string `json:"relationship,omitempty" jsonschema:"EXTENDS, IMPLEMENTS or MADE_OF (default: all)"`
	Direction    string `json:"direction,omitempty" jsonschema:"downstream follows edges from the node, upstream follows them into it. Default: downstream"`
	MaxDepth     int    `json:"maxDepth,omitempty" jsonschema:"maximum traversal depth (default: 5)"`
}

// GetRelatedOutput is the result of the get_related MCP tool.
type GetRelatedOutput struct {
	Chains []graphstore.Chain `json:"chains"`
}

// GetClustersInput is the input for the get_clusters MCP tool.
type GetClustersInput struct{}

// GetClustersOutput is the result of the get_clusters MCP tool.
type GetClustersOutput struct {
	Clusters []graphstore.Cluster `json:"clusters"`
}
