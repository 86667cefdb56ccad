package main

import (
	"github.com/spf13/cobra"

	"github.com/dusk-indust/codegraph/internal/mcptools"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio, or over HTTP with --http",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

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

			langs, err := a.cfg.LanguageList()
			if err != nil {
				return err
			}
			svc := mcptools.NewService(an, store, a.projectRoot,
				mcptools.WithExcludeDirs(a.cfg.ExcludeDirs),
				mcptools.WithLanguages(langs),
				mcptools.WithMinClusterSize(a.cfg.MinClusterSize),
				mcptools.WithLogger(a.logger),
			)

			if addr != "" {
				a.logger.Info("serve: listening", "addr", addr)
				return mcptools.RunHTTP(ctx, svc, addr)
			}
			return mcptools.RunStdio(ctx, svc)
		},
	}
	cmd.Flags().StringVar(&addr, "http", "", "serve streamable HTTP on this address instead of stdio")
	return cmd
}
