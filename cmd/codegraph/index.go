package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/codegraph/internal/codegraph"
	"github.com/dusk-indust/codegraph/internal/export"
	"github.com/dusk-indust/codegraph/internal/graphstore"
	"github.com/dusk-indust/codegraph/internal/indexer"
)

// languages returns the --lang values, or the configured languages when the
// flag is empty.
func (a *app) languages(flag []string) ([]codegraph.Language, error) {
	if len(flag) == 0 {
		return a.cfg.LanguageList()
	}
	out := make([]codegraph.Language, 0, len(flag))
	for _, s := range flag {
		l, ok := codegraph.ParseLanguage(s)
		if !ok {
			return nil, fmt.Errorf("unknown language %q", s)
		}
		out = append(out, l)
	}
	return out, nil
}

func (a *app) indexOptions(langs []codegraph.Language) indexer.Options {
	return indexer.Options{
		Root:           a.projectRoot,
		Languages:      langs,
		ExcludeDirs:    a.cfg.ExcludeDirs,
		MinClusterSize: a.cfg.MinClusterSize,
		Logger:         a.logger,
	}
}

func newIndexCmd(a *app) *cobra.Command {
	var (
		langs  []string
		keep   bool
		asJSON bool
		quiet  bool
	)
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index the project into the configured graph store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ls, err := a.languages(langs)
			if err != nil {
				return err
			}

			if path := a.cfg.ResolvedStorePath(a.projectRoot); path != "" && !keep {
				// Stale nodes from deleted files would otherwise survive.
				for _, p := range []string{path, path + "-wal", path + "-shm"} {
					if err := os.RemoveAll(p); err != nil {
						return fmt.Errorf("reset store: %w", err)
					}
				}
			}
			store, err := a.openStore(false)
			if err != nil {
				return err
			}
			defer store.Close()

			an, err := a.analyzer(ctx)
			if err != nil {
				return err
			}
			defer an.Close()

			opts := a.indexOptions(ls)
			if !quiet {
				errOut := cmd.ErrOrStderr()
				opts.OnProgress = func(ev indexer.ProgressEvent) {
					fmt.Fprintln(errOut, indexer.FormatProgress(ev))
				}
			}
			res, err := indexer.Run(ctx, an, store, opts)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			printSummary(cmd.OutOrStdout(), res, a.cfg.StoreKind())
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&langs, "lang", nil, "languages to index (default: codegraph.yml or all)")
	cmd.Flags().BoolVar(&keep, "keep", false, "add to an existing persistent store instead of rebuilding it")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
	return cmd
}

func printSummary(w io.Writer, res *indexer.Result, kind graphstore.Kind) {
	for _, s := range res.Summaries {
		fmt.Fprintf(w, "%-16s %4d files %6d nodes %6d relationships %5d imports %3d clusters\n",
			s.Language, s.Files, s.Nodes, s.Relationships, s.Imports, s.Clusters)
	}
	if res.Stats != nil {
		fmt.Fprintf(w, "\n%s store: %d nodes, %d relationships, %d clusters across %d files\n",
			kind, res.Stats.NodeCount, res.Stats.RelationshipCount, res.Stats.ClusterCount, res.Stats.FileCount)
	}
}

func newExportCmd(a *app) *cobra.Command {
	var (
		langs  []string
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Parse the project and write its code graph as JSON or a Mermaid class diagram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if format != "json" && format != "mermaid" {
				return fmt.Errorf("--format must be json or mermaid, got %q", format)
			}
			ls, err := a.languages(langs)
			if err != nil {
				return err
			}

			an, err := a.analyzer(ctx)
			if err != nil {
				return err
			}
			defer an.Close()

			res, err := indexer.Run(ctx, an, nil, a.indexOptions(ls))
			if err != nil {
				return err
			}
			doc := export.NewDocument(res.Graphs, res.Clusters)

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			if format == "mermaid" {
				_, err = io.WriteString(w, export.Mermaid(doc.Graph()))
				return err
			}
			return export.WriteJSON(w, doc)
		},
	}
	cmd.Flags().StringSliceVar(&langs, "lang", nil, "languages to export (default: codegraph.yml or all)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json or mermaid")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}
