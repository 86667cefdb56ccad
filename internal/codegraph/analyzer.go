// Package codegraph extracts a code graph (declarations and their
// containment and inheritance relationships) from source files using
// tree-sitter grammars.
package codegraph

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Option configures an Analyzer.
type Option func(*options)

type options struct {
	logger         *slog.Logger
	registry       *Registry
	queryCacheSize int
}

// WithLogger sets the logger used by the analyzer and its components.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRegistry replaces the default grammar registry.
func WithRegistry(r *Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithQueryCacheSize bounds the compiled query cache.
func WithQueryCacheSize(n int) Option {
	return func(o *options) { o.queryCacheSize = n }
}

// Analyzer is the entry point for extraction. It owns a parser pool and a
// query engine; both are safe for concurrent use.
type Analyzer struct {
	registry *Registry
	pool     *ParserPool
	queries  *QueryEngine
	logger   *slog.Logger
}

// New returns an analyzer. Call Bootstrap before any parse.
func New(opts ...Option) *Analyzer {
	o := options{queryCacheSize: DefaultQueryCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.registry == nil {
		o.registry = NewDefaultRegistry(o.logger)
	}
	return &Analyzer{
		registry: o.registry,
		pool:     NewParserPool(o.registry, o.logger),
		queries:  NewQueryEngine(o.queryCacheSize, o.logger),
		logger:   o.logger,
	}
}

// Bootstrap readies the parser runtime and warms the given languages.
func (a *Analyzer) Bootstrap(ctx context.Context, preload ...Language) error {
	return a.pool.Bootstrap(ctx, preload...)
}

// Close releases all parsers and compiled queries.
func (a *Analyzer) Close() error {
	a.queries.Purge()
	return a.pool.Close()
}

// SupportedLanguages returns the languages with both a grammar and a
// descriptor, sorted.
func (a *Analyzer) SupportedLanguages() []Language {
	var out []Language
	for _, l := range a.registry.Languages() {
		if _, ok := DescriptorFor(l); ok {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseNodes returns the declarations of one file in pre-order.
func (a *Analyzer) ParseNodes(ctx context.Context, source []byte, filePath string, lang Language) ([]CodeNode, error) {
	r, err := a.parseFile(ctx, source, filePath, lang)
	if err != nil {
		return nil, err
	}
	return r.Nodes, nil
}

// ParseNodesAndRelationships returns the declarations of one file together
// with the containment and inheritance edges that resolve within it.
func (a *Analyzer) ParseNodesAndRelationships(ctx context.Context, source []byte, filePath string, lang Language) ([]CodeNode, []CodeRelationship, error) {
	r, err := a.parseFile(ctx, source, filePath, lang)
	if err != nil {
		return nil, nil, err
	}
	g := Assemble([]FileResult{r}, lang, 1)
	return g.Nodes, g.Relationships, nil
}

// ParseCodeGraph extracts every file of one language and assembles them into
// a graph. Files are parsed one at a time in input order.
func (a *Analyzer) ParseCodeGraph(ctx context.Context, files []SourceFile, lang Language) (*CodeGraph, error) {
	if !a.pool.Bootstrapped() {
		return nil, ErrNotBootstrapped
	}
	if _, ok := DescriptorFor(lang); !ok {
		a.skip(lang, "parse code graph", ErrUnsupportedLanguage)
		return Assemble(nil, lang, len(files)), nil
	}

	results := make([]FileResult, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := a.parseFile(ctx, f.Content, f.Path, lang)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return Assemble(results, lang, len(files)), nil
}

// ParseCodeGraphs runs ParseCodeGraph for each batch, one goroutine per
// batch. Graphs are returned in batch order. A failing language yields an
// empty graph; only fatal errors abort the call.
func (a *Analyzer) ParseCodeGraphs(ctx context.Context, batches []LanguageBatch) ([]*CodeGraph, error) {
	graphs := make([]*CodeGraph, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	for i, b := range batches {
		g.Go(func() error {
			graph, err := a.ParseCodeGraph(gctx, b.Files, b.Language)
			if err != nil {
				return err
			}
			graphs[i] = graph
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return graphs, nil
}

// ParseImports returns the imports of one file, deduplicated by path and
// raw text.
func (a *Analyzer) ParseImports(ctx context.Context, source []byte, filePath string, lang Language) ([]ImportInfo, error) {
	var out []ImportInfo
	err := a.withTree(ctx, source, lang, "parse imports", func(tree *SyntaxTree, d *Descriptor) {
		out = a.queries.imports(tree, d, filePath)
	})
	return out, err
}

// ExtractMethodNames returns the distinct method and function names in
// source, in first-seen order.
func (a *Analyzer) ExtractMethodNames(ctx context.Context, source []byte, lang Language) ([]string, error) {
	return a.extractNames(ctx, source, lang, IntentMethods)
}

// ExtractClassNames returns the distinct class-like type names in source.
func (a *Analyzer) ExtractClassNames(ctx context.Context, source []byte, lang Language) ([]string, error) {
	return a.extractNames(ctx, source, lang, IntentClasses)
}

// ExtractFieldNames returns the distinct field names in source.
func (a *Analyzer) ExtractFieldNames(ctx context.Context, source []byte, lang Language) ([]string, error) {
	return a.extractNames(ctx, source, lang, IntentFields)
}

func (a *Analyzer) extractNames(ctx context.Context, source []byte, lang Language, intent Intent) ([]string, error) {
	var out []string
	err := a.withTree(ctx, source, lang, "extract "+string(intent), func(tree *SyntaxTree, d *Descriptor) {
		out = a.queries.names(tree, d, intent)
	})
	return out, err
}

// HasSyntaxErrors reports whether source contains syntax errors. Languages
// that cannot be parsed report false.
func (a *Analyzer) HasSyntaxErrors(ctx context.Context, source []byte, lang Language) (bool, error) {
	var bad bool
	err := a.withTree(ctx, source, lang, "check syntax", func(tree *SyntaxTree, _ *Descriptor) {
		bad = tree.HasError()
	})
	return bad, err
}

// SyntaxIssues locates every error and missing node in source.
func (a *Analyzer) SyntaxIssues(ctx context.Context, source []byte, lang Language) ([]SyntaxIssue, error) {
	var issues []SyntaxIssue
	err := a.withTree(ctx, source, lang, "syntax issues", func(tree *SyntaxTree, _ *Descriptor) {
		issues = tree.Issues()
	})
	return issues, err
}

// parseFile classifies one file and links the supertypes it can resolve
// locally. Per-language failures yield an empty result.
func (a *Analyzer) parseFile(ctx context.Context, source []byte, filePath string, lang Language) (FileResult, error) {
	result := FileResult{FilePath: filePath}
	err := a.withTree(ctx, source, lang, "parse nodes", func(tree *SyntaxTree, d *Descriptor) {
		result.PackageName = a.queries.packageName(tree, d)
		result.Nodes = Classify(tree, d, filePath, result.PackageName)
		result.Relationships, result.References = a.queries.inheritance(tree, d, result.Nodes, filePath, result.PackageName)
	})
	return result, err
}

// withTree parses source and hands the tree to fn. Fatal errors are
// returned; per-language failures are logged and fn is not called.
func (a *Analyzer) withTree(ctx context.Context, source []byte, lang Language, op string, fn func(*SyntaxTree, *Descriptor)) error {
	if !a.pool.Bootstrapped() {
		return ErrNotBootstrapped
	}
	d, ok := DescriptorFor(lang)
	if !ok {
		a.skip(lang, op, ErrUnsupportedLanguage)
		return nil
	}
	tree, err := a.pool.Parse(ctx, source, lang)
	if err != nil {
		if isRecoverable(err) {
			a.skip(lang, op, err)
			return nil
		}
		return err
	}
	defer tree.Close()
	fn(tree, d)
	return nil
}

func (a *Analyzer) skip(lang Language, op string, err error) {
	a.logger.Warn("codegraph: language skipped",
		slog.String("language", string(lang)),
		slog.String("operation", op),
		slog.String("error", err.Error()))
}
