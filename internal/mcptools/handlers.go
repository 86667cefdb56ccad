package mcptools

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/codegraph/internal/codegraph"
	"github.com/dusk-indust/codegraph/internal/discover"
	"github.com/dusk-indust/codegraph/internal/graphstore"
	"github.com/dusk-indust/codegraph/internal/indexer"
)

const (
	defaultQueryLimit = 20
	defaultMaxDepth   = 5
)

// Service holds the analyzer and graph store used by MCP tool handlers.
type Service struct {
	analyzer       *codegraph.Analyzer
	store          graphstore.Store
	projectRoot    string
	excludeDirs    []string
	languages      []codegraph.Language
	minClusterSize int
	logger         *slog.Logger

	indexMu sync.Mutex // one index run at a time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithExcludeDirs sets directories every index run skips.
func WithExcludeDirs(dirs []string) ServiceOption {
	return func(s *Service) { s.excludeDirs = dirs }
}

// WithLanguages sets the default languages of an index run.
func WithLanguages(langs []codegraph.Language) ServiceOption {
	return func(s *Service) { s.languages = langs }
}

// WithMinClusterSize sets the smallest cluster an index run reports.
func WithMinClusterSize(n int) ServiceOption {
	return func(s *Service) { s.minClusterSize = n }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// NewService creates a Service rooted at projectRoot. A nil store is
// replaced with an in-memory one.
func NewService(a *codegraph.Analyzer, store graphstore.Store, projectRoot string, opts ...ServiceOption) *Service {
	if store == nil {
		store = graphstore.NewMemStore()
	}
	s := &Service{
		analyzer:    a,
		store:       store,
		projectRoot: projectRoot,
		logger:      slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// IndexProject discovers and parses every source file under a directory,
// saves the graphs and clusters into the store and returns its statistics.
func (s *Service) IndexProject(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IndexProjectInput,
) (*mcp.CallToolResult, IndexProjectOutput, error) {
	root := s.projectRoot
	if input.Path != "" {
		root = s.resolve(input.Path)
	}
	if root == "" {
		return nil, IndexProjectOutput{}, fmt.Errorf("path is required when no project root is set")
	}

	langs := s.languages
	if len(input.Languages) > 0 {
		var err error
		if langs, err = parseLanguages(input.Languages); err != nil {
			return nil, IndexProjectOutput{}, err
		}
	}

	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	res, err := indexer.Run(ctx, s.analyzer, s.store, indexer.Options{
		Root:           root,
		Languages:      langs,
		ExcludeDirs:    append(append([]string(nil), s.excludeDirs...), input.ExcludeDirs...),
		MinClusterSize: s.minClusterSize,
		Logger:         s.logger,
	})
	if err != nil {
		return nil, IndexProjectOutput{}, fmt.Errorf("index %s: %w", root, err)
	}

	out := IndexProjectOutput{
		Languages: res.Summaries,
		Clusters:  res.Clusters,
	}
	if out.Languages == nil {
		out.Languages = []indexer.LanguageSummary{}
	}
	if res.Stats != nil {
		out.Stats = *res.Stats
	}
	return nil, out, nil
}

// ParseFile returns the nodes and relationships of a single file.
func (s *Service) ParseFile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FileInput,
) (*mcp.CallToolResult, ParseFileOutput, error) {
	src, rel, lang, err := s.readSource(input.Path, input.Language)
	if err != nil {
		return nil, ParseFileOutput{}, err
	}
	nodes, rels, err := s.analyzer.ParseNodesAndRelationships(ctx, src, rel, lang)
	if err != nil {
		return nil, ParseFileOutput{}, fmt.Errorf("parse %s: %w", rel, err)
	}
	if nodes == nil {
		nodes = []codegraph.CodeNode{}
	}
	if rels == nil {
		rels = []codegraph.CodeRelationship{}
	}
	return nil, ParseFileOutput{Nodes: nodes, Relationships: rels}, nil
}

// ParseImports lists the import statements of a single file.
func (s *Service) ParseImports(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FileInput,
) (*mcp.CallToolResult, ParseImportsOutput, error) {
	src, rel, lang, err := s.readSource(input.Path, input.Language)
	if err != nil {
		return nil, ParseImportsOutput{}, err
	}
	imports, err := s.analyzer.ParseImports(ctx, src, rel, lang)
	if err != nil {
		return nil, ParseImportsOutput{}, fmt.Errorf("parse imports %s: %w", rel, err)
	}
	if imports == nil {
		imports = []codegraph.ImportInfo{}
	}
	return nil, ParseImportsOutput{Imports: imports}, nil
}

// ExtractNames lists the method, class or field names of a single file.
func (s *Service) ExtractNames(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractNamesInput,
) (*mcp.CallToolResult, ExtractNamesOutput, error) {
	var extract func(context.Context, []byte, codegraph.Language) ([]string, error)
	switch strings.ToLower(input.Kind) {
	case "methods", "method":
		extract = s.analyzer.ExtractMethodNames
	case "classes", "class":
		extract = s.analyzer.ExtractClassNames
	case "fields", "field":
		extract = s.analyzer.ExtractFieldNames
	default:
		return nil, ExtractNamesOutput{}, fmt.Errorf("kind must be methods, classes or fields, got %q", input.Kind)
	}

	src, rel, lang, err := s.readSource(input.Path, input.Language)
	if err != nil {
		return nil, ExtractNamesOutput{}, err
	}
	names, err := extract(ctx, src, lang)
	if err != nil {
		return nil, ExtractNamesOutput{}, fmt.Errorf("extract %s from %s: %w", input.Kind, rel, err)
	}
	if names == nil {
		names = []string{}
	}
	return nil, ExtractNamesOutput{Names: names}, nil
}

// CheckSyntax reports whether a single file parses cleanly and where it
// does not.
func (s *Service) CheckSyntax(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FileInput,
) (*mcp.CallToolResult, CheckSyntaxOutput, error) {
	src, rel, lang, err := s.readSource(input.Path, input.Language)
	if err != nil {
		return nil, CheckSyntaxOutput{}, err
	}
	bad, err := s.analyzer.HasSyntaxErrors(ctx, src, lang)
	if err != nil {
		return nil, CheckSyntaxOutput{}, fmt.Errorf("check syntax %s: %w", rel, err)
	}
	out := CheckSyntaxOutput{HasErrors: bad, Issues: []codegraph.SyntaxIssue{}}
	if bad {
		issues, err := s.analyzer.SyntaxIssues(ctx, src, lang)
		if err != nil {
			return nil, CheckSyntaxOutput{}, fmt.Errorf("syntax issues %s: %w", rel, err)
		}
		out.Issues = append(out.Issues, issues...)
	}
	return nil, out, nil
}

// QueryNodes searches stored nodes by name substring.
func (s *Service) QueryNodes(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryNodesInput,
) (*mcp.CallToolResult, QueryNodesOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	kind := codegraph.ElementKind(strings.ToUpper(input.Kind))

	nodes, err := s.store.QueryNodes(ctx, input.Query, kind, limit)
	if err != nil {
		return nil, QueryNodesOutput{}, fmt.Errorf("query nodes: %w", err)
	}
	if nodes == nil {
		nodes = []codegraph.CodeNode{}
	}
	return nil, QueryNodesOutput{Nodes: nodes, Total: len(nodes)}, nil
}

// GetRelated walks relationships from a stored node.
func (s *Service) GetRelated(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetRelatedInput,
) (*mcp.CallToolResult, GetRelatedOutput, error) {
	if input.NodeID == "" {
		return nil, GetRelatedOutput{}, fmt.Errorf("nodeId is required")
	}

	var kind codegraph.RelationshipKind
	switch k := codegraph.RelationshipKind(strings.ToUpper(input.Relationship)); k {
	case "", codegraph.RelExtends, codegraph.RelImplements, codegraph.RelMadeOf:
		kind = k
	default:
		return nil, GetRelatedOutput{}, fmt.Errorf("unknown relationship %q", input.Relationship)
	}

	direction := graphstore.DirectionDownstream
	if strings.EqualFold(input.Direction, string(graphstore.DirectionUpstream)) {
		direction = graphstore.DirectionUpstream
	}

	maxDepth := input.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	chains, err := s.store.Related(ctx, input.NodeID, kind, direction, maxDepth)
	if err != nil {
		return nil, GetRelatedOutput{}, fmt.Errorf("get related: %w", err)
	}
	if chains == nil {
		chains = []graphstore.Chain{}
	}
	return nil, GetRelatedOutput{Chains: chains}, nil
}

// GetClusters returns every stored file cluster.
func (s *Service) GetClusters(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ GetClustersInput,
) (*mcp.CallToolResult, GetClustersOutput, error) {
	clusters, err := s.store.GetClusters(ctx)
	if err != nil {
		return nil, GetClustersOutput{}, fmt.Errorf("get clusters: %w", err)
	}
	if clusters == nil {
		clusters = []graphstore.Cluster{}
	}
	return nil, GetClustersOutput{Clusters: clusters}, nil
}

// resolve makes p absolute against the project root.
func (s *Service) resolve(p string) string {
	if filepath.IsAbs(p) || s.projectRoot == "" {
		return p
	}
	return filepath.Join(s.projectRoot, filepath.FromSlash(p))
}

// readSource loads a file named absolute or relative to the project root.
func (s *Service) readSource(p, language string) ([]byte, string, codegraph.Language, error) {
	f, lang, err := discover.ReadFile(s.projectRoot, p, language)
	if err != nil {
		return nil, "", "", err
	}
	return f.Content, f.Path, lang, nil
}

func parseLanguages(names []string) ([]codegraph.Language, error) {
	out := make([]codegraph.Language, 0, len(names))
	for _, n := range names {
		l, ok := codegraph.ParseLanguage(n)
		if !ok {
			return nil, fmt.Errorf("unknown language %q", n)
		}
		out = append(out, l)
	}
	return out, nil
}
