package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/codegraph/internal/codegraph"
	"github.com/dusk-indust/codegraph/internal/graphstore"
)

func newQueryCmd(a *app) *cobra.Command {
	var (
		kind  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Search the persisted index for nodes whose name contains text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(true)
			if err != nil {
				return err
			}
			defer store.Close()

			nodes, err := store.QueryNodes(cmd.Context(), args[0], codegraph.ElementKind(strings.ToUpper(kind)), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, n := range nodes {
				fmt.Fprintf(out, "%-12s %s  %s:%d  %s\n", n.Kind, n.QualifiedName, n.FilePath, n.StartLine, n.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "filter by node kind, e.g. class or method")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of results (0 for all)")
	return cmd
}

func newClustersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clusters",
		Short: "List the file clusters in the persisted index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore(true)
			if err != nil {
				return err
			}
			defer store.Close()

			clusters, err := store.GetClusters(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range clusters {
				fmt.Fprintf(out, "%s (%s, cohesion %.2f, %d files)\n", c.Name, c.Language, c.CohesionScore, len(c.Members))
				for _, m := range c.Members {
					fmt.Fprintf(out, "  %s\n", m)
				}
			}
			return nil
		},
	}
}

// newContextCmd prints markdown context about the nodes matching a pattern.
// It is meant for editor and agent hooks, so a missing index or an empty
// match prints nothing and succeeds.
func newContextCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "context <pattern>",
		Short: "Print graph context for a symbol pattern as markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := args[0]
			path := a.cfg.ResolvedStorePath(a.projectRoot)
			if pattern == "" || path == "" {
				return nil
			}
			if _, err := os.Stat(path); err != nil {
				return nil // no index yet
			}
			store, err := a.openStore(true)
			if err != nil {
				a.logger.Debug("context: open store", "err", err)
				return nil
			}
			defer store.Close()

			text, err := graphContext(cmd, store, pattern)
			if err != nil {
				a.logger.Debug("context: query", "err", err)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

const maxContextChains = 8

func graphContext(cmd *cobra.Command, store graphstore.Store, pattern string) (string, error) {
	ctx := cmd.Context()

	nodes, err := store.QueryNodes(ctx, pattern, "", 10)
	if err != nil || len(nodes) == 0 {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Graph Context for %q\n\n", pattern)

	sb.WriteString("**Nodes found:**\n")
	for _, n := range nodes {
		fmt.Fprintf(&sb, "- `%s %s` in `%s:%d`\n", n.Kind, n.QualifiedName, n.FilePath, n.StartLine)
	}

	primary := nodes[0]
	names := map[string]string{}
	label := func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		name := id
		if n, err := store.GetNode(ctx, id); err == nil && n != nil {
			name = n.QualifiedName
		}
		names[id] = name
		return name
	}

	sections := []struct {
		title string
		kinds []codegraph.RelationshipKind
		dir   graphstore.Direction
	}{
		{"Supertypes", []codegraph.RelationshipKind{codegraph.RelExtends, codegraph.RelImplements}, graphstore.DirectionDownstream},
		{"Subtypes", []codegraph.RelationshipKind{codegraph.RelExtends, codegraph.RelImplements}, graphstore.DirectionUpstream},
		{"Members", []codegraph.RelationshipKind{codegraph.RelMadeOf}, graphstore.DirectionDownstream},
	}
	for _, sec := range sections {
		var chains []graphstore.Chain
		for _, k := range sec.kinds {
			c, err := store.Related(ctx, primary.ID, k, sec.dir, 2)
			if err != nil {
				return "", err
			}
			chains = append(chains, c...)
		}
		if len(chains) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n**%s of `%s`:**\n", sec.title, primary.QualifiedName)
		for i, c := range chains {
			if i == maxContextChains {
				fmt.Fprintf(&sb, "- ... (%d more)\n", len(chains)-maxContextChains)
				break
			}
			fmt.Fprintf(&sb, "- `%s`\n", label(c.Nodes[len(c.Nodes)-1]))
		}
	}

	clusters, err := store.GetClusters(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range clusters {
		for _, m := range c.Members {
			if m == primary.FilePath {
				fmt.Fprintf(&sb, "\n**Cluster:** %s (cohesion: %.2f), %d files\n", c.Name, c.CohesionScore, len(c.Members))
				break
			}
		}
	}
	return sb.String(), nil
}
