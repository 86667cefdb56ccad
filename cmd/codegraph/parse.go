package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/codegraph/internal/codegraph"
	"github.com/dusk-indust/codegraph/internal/discover"
)

var errSyntax = errors.New("syntax errors found")

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newParseCmd(a *app) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Print the nodes and relationships of one source file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, l, err := discover.ReadFile(a.projectRoot, args[0], lang)
			if err != nil {
				return err
			}
			an, err := a.analyzer(ctx)
			if err != nil {
				return err
			}
			defer an.Close()

			nodes, rels, err := an.ParseNodesAndRelationships(ctx, f.Content, f.Path, l)
			if err != nil {
				return err
			}
			if nodes == nil {
				nodes = []codegraph.CodeNode{}
			}
			if rels == nil {
				rels = []codegraph.CodeRelationship{}
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				Nodes         []codegraph.CodeNode         `json:"nodes"`
				Relationships []codegraph.CodeRelationship `json:"relationships"`
			}{nodes, rels})
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "language override (default: detect from extension)")
	return cmd
}

func newImportsCmd(a *app) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "imports <file>",
		Short: "Print the imports of one source file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, l, err := discover.ReadFile(a.projectRoot, args[0], lang)
			if err != nil {
				return err
			}
			an, err := a.analyzer(ctx)
			if err != nil {
				return err
			}
			defer an.Close()

			imports, err := an.ParseImports(ctx, f.Content, f.Path, l)
			if err != nil {
				return err
			}
			if imports == nil {
				imports = []codegraph.ImportInfo{}
			}
			return writeJSON(cmd.OutOrStdout(), imports)
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "language override (default: detect from extension)")
	return cmd
}

func newNamesCmd(a *app) *cobra.Command {
	var lang, kind string
	cmd := &cobra.Command{
		Use:   "names <file>",
		Short: "Print the distinct method, class or field names of one source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, l, err := discover.ReadFile(a.projectRoot, args[0], lang)
			if err != nil {
				return err
			}
			an, err := a.analyzer(ctx)
			if err != nil {
				return err
			}
			defer an.Close()

			var names []string
			switch kind {
			case "methods":
				names, err = an.ExtractMethodNames(ctx, f.Content, l)
			case "classes":
				names, err = an.ExtractClassNames(ctx, f.Content, l)
			case "fields":
				names, err = an.ExtractFieldNames(ctx, f.Content, l)
			default:
				return fmt.Errorf("--kind must be methods, classes or fields, got %q", kind)
			}
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "language override (default: detect from extension)")
	cmd.Flags().StringVar(&kind, "kind", "methods", "methods, classes or fields")
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Report syntax errors in source files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			an, err := a.analyzer(ctx)
			if err != nil {
				return err
			}
			defer an.Close()

			out := cmd.OutOrStdout()
			failed := false
			for _, p := range args {
				f, l, err := discover.ReadFile(a.projectRoot, p, lang)
				if err != nil {
					return err
				}
				bad, err := an.HasSyntaxErrors(ctx, f.Content, l)
				if err != nil {
					return err
				}
				if !bad {
					fmt.Fprintf(out, "%s: ok\n", f.Path)
					continue
				}
				failed = true
				issues, err := an.SyntaxIssues(ctx, f.Content, l)
				if err != nil {
					return err
				}
				for _, is := range issues {
					fmt.Fprintf(out, "%s:%d:%d: %s %s %q\n", f.Path, is.StartLine, is.StartCol+1, is.Kind, is.NodeType, is.Text)
				}
			}
			if failed {
				return errSyntax
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "language override (default: detect from extension)")
	return cmd
}
