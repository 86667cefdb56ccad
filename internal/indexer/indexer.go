// Package indexer runs the full extraction pipeline over a project tree:
// discovery, per-language graph assembly, persistence and clustering.
package indexer

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/codegraph/internal/cluster"
	"github.com/dusk-indust/codegraph/internal/codegraph"
	"github.com/dusk-indust/codegraph/internal/discover"
	"github.com/dusk-indust/codegraph/internal/graphstore"
)

// Options configures a Run.
type Options struct {
	Root           string
	Languages      []codegraph.Language // empty means all
	ExcludeDirs    []string
	MinClusterSize int
	Logger         *slog.Logger
	// OnProgress is called synchronously from worker goroutines; it may be nil.
	OnProgress func(ProgressEvent)
}

// LanguageSummary counts what one language batch produced.
type LanguageSummary struct {
	Language      codegraph.Language `json:"language"`
	Files         int                `json:"files"`
	Nodes         int                `json:"nodes"`
	Relationships int                `json:"relationships"`
	Imports       int                `json:"imports"`
	Clusters      int                `json:"clusters"`
}

// Result is the outcome of a Run. Graphs, Summaries and Clusters follow
// language name order.
type Result struct {
	Graphs    []*codegraph.CodeGraph `json:"-"`
	Summaries []LanguageSummary      `json:"languages"`
	Clusters  []graphstore.Cluster   `json:"clusters"`
	Stats     *graphstore.Stats      `json:"stats,omitempty"`
}

type batchResult struct {
	graph    *codegraph.CodeGraph
	imports  int
	clusters []graphstore.Cluster
}

// Run indexes opts.Root with a. When store is not nil every graph and
// cluster is saved into it and Result.Stats reports its contents. The first
// failing language cancels the others.
func Run(ctx context.Context, a *codegraph.Analyzer, store graphstore.Store, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	files, err := discover.Files(ctx, opts.Root, discover.Options{
		Languages:   opts.Languages,
		ExcludeDirs: opts.ExcludeDirs,
	})
	if err != nil {
		return nil, err
	}
	groups := discover.ByLanguage(files)
	logger.Debug("indexer: discovered files", slog.Int("files", len(files)), slog.Int("languages", len(groups)))

	results := make([]batchResult, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	for i, grp := range groups {
		emit(opts, ProgressEvent{Language: grp.Language, Status: ProgressPending, Files: len(grp.Paths)})

		g.Go(func() error {
			emit(opts, ProgressEvent{Language: grp.Language, Status: ProgressWorking, Files: len(grp.Paths)})
			res, err := indexBatch(gctx, a, grp, opts)
			if err != nil {
				emit(opts, ProgressEvent{Language: grp.Language, Status: ProgressFailed, Message: err.Error()})
				return fmt.Errorf("index %s: %w", grp.Language, err)
			}
			results[i] = res
			emit(opts, ProgressEvent{
				Language: grp.Language,
				Status:   ProgressComplete,
				Files:    len(grp.Paths),
				Message: fmt.Sprintf("%d nodes, %d relationships, %d clusters",
					len(res.graph.Nodes), len(res.graph.Relationships), len(res.clusters)),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Result{Clusters: []graphstore.Cluster{}}
	for i, grp := range groups {
		res := results[i]
		out.Graphs = append(out.Graphs, res.graph)
		out.Clusters = append(out.Clusters, res.clusters...)
		out.Summaries = append(out.Summaries, LanguageSummary{
			Language:      grp.Language,
			Files:         len(grp.Paths),
			Nodes:         len(res.graph.Nodes),
			Relationships: len(res.graph.Relationships),
			Imports:       res.imports,
			Clusters:      len(res.clusters),
		})
	}

	if store != nil {
		if err := save(ctx, store, out); err != nil {
			return nil, err
		}
		if out.Stats, err = store.Stats(ctx); err != nil {
			return nil, fmt.Errorf("indexer: stats: %w", err)
		}
	}
	logger.Info("indexer: run complete",
		slog.String("root", opts.Root),
		slog.Int("files", len(files)),
		slog.Int("clusters", len(out.Clusters)))
	return out, nil
}

// indexBatch assembles the graph of one language and clusters its files by
// import.
func indexBatch(ctx context.Context, a *codegraph.Analyzer, grp discover.Group, opts Options) (batchResult, error) {
	batch, err := grp.Load(opts.Root)
	if err != nil {
		return batchResult{}, err
	}
	graph, err := a.ParseCodeGraph(ctx, batch.Files, batch.Language)
	if err != nil {
		return batchResult{}, err
	}

	var imports []codegraph.ImportInfo
	for _, f := range batch.Files {
		imps, err := a.ParseImports(ctx, f.Content, f.Path, batch.Language)
		if err != nil {
			return batchResult{}, err
		}
		imports = append(imports, imps...)
	}
	resolver := cluster.NewResolver(opts.Root, grp.Paths)
	clusters := cluster.Compute(resolver, batch.Language, grp.Paths, imports, opts.MinClusterSize)

	return batchResult{graph: graph, imports: len(imports), clusters: clusters}, nil
}

func save(ctx context.Context, store graphstore.Store, res *Result) error {
	if err := store.InitSchema(ctx); err != nil {
		return fmt.Errorf("indexer: init schema: %w", err)
	}
	for _, g := range res.Graphs {
		if err := store.SaveGraph(ctx, g); err != nil {
			return fmt.Errorf("indexer: save graph: %w", err)
		}
	}
	return cluster.Save(ctx, store, res.Clusters)
}

func emit(opts Options, ev ProgressEvent) {
	if opts.OnProgress != nil {
		opts.OnProgress(ev)
	}
}
