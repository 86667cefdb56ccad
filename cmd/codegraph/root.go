package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/codegraph/internal/codegraph"
	"github.com/dusk-indust/codegraph/internal/config"
	"github.com/dusk-indust/codegraph/internal/graphstore"
)

// app is the state shared by every subcommand. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	projectRoot string
	configPath  string
	verbose     bool

	cfg    *config.ProjectConfig
	logger *slog.Logger
}

// NewRootCmd wires the cobra tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "codegraph",
		Short:         "Extract code graphs from source trees with tree-sitter",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.projectRoot, "project-root", ".", "path to the target project")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to codegraph.yml (default: <project-root>/codegraph.yml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newParseCmd(a),
		newImportsCmd(a),
		newNamesCmd(a),
		newCheckCmd(a),
		newIndexCmd(a),
		newExportCmd(a),
		newQueryCmd(a),
		newClustersCmd(a),
		newContextCmd(a),
		newServeCmd(a),
		newInitCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	abs, err := filepath.Abs(a.projectRoot)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}
	a.projectRoot = abs

	if a.configPath == "" {
		a.cfg, err = config.Load(abs)
	} else {
		a.cfg, err = config.LoadFile(a.configPath, abs)
	}
	if err != nil {
		return err
	}

	level := a.cfg.Level()
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// analyzer returns a bootstrapped Analyzer configured from codegraph.yml.
// The caller closes it.
func (a *app) analyzer(ctx context.Context) (*codegraph.Analyzer, error) {
	an := codegraph.New(
		codegraph.WithLogger(a.logger),
		codegraph.WithQueryCacheSize(a.cfg.CacheSize()),
	)

	var preload []codegraph.Language
	if a.cfg.Preload {
		langs, err := a.cfg.LanguageList()
		if err != nil {
			return nil, err
		}
		if len(langs) == 0 {
			langs = codegraph.AllLanguages
		}
		preload = langs
	}
	if err := an.Bootstrap(ctx, preload...); err != nil {
		_ = an.Close()
		return nil, err
	}
	return an, nil
}

// errNoIndex is returned by commands that read a persisted index when the
// configuration keeps the graph in memory.
var errNoIndex = errors.New("no persistent store configured; set store: kuzu or sqlite in codegraph.yml")

// openStore opens the configured backend. Persistent commands pass
// requirePersistent so an in-memory store is rejected.
func (a *app) openStore(requirePersistent bool) (graphstore.Store, error) {
	kind := a.cfg.StoreKind()
	if requirePersistent && kind == graphstore.KindMemory {
		return nil, errNoIndex
	}
	store, err := graphstore.Open(kind, a.cfg.ResolvedStorePath(a.projectRoot))
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", kind, err)
	}
	return store, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
