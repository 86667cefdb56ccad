package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/codegraph/internal/config"
)

// mcpConfig represents the structure of a .mcp.json file.
type mcpConfig struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// codegraphMCPEntry is the MCP server configuration for the codegraph binary.
var codegraphMCPEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "codegraph",
  "args": ["serve"]
}`)

func newInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter codegraph.yml and register the MCP server in .mcp.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.OutOrStdout(), a.projectRoot, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files and entries")
	return cmd
}

// runInit writes codegraph.yml and merges the codegraph entry into .mcp.json
// under projectRoot.
func runInit(w io.Writer, projectRoot string, force bool) error {
	cfgPath := filepath.Join(projectRoot, config.FileNames[0])
	if err := writeStarterConfig(w, cfgPath, force); err != nil {
		return err
	}
	if err := mergeMCPConfig(w, filepath.Join(projectRoot, ".mcp.json"), force); err != nil {
		return err
	}
	fmt.Fprintln(w, "\nSetup complete. Run 'codegraph index' to build the graph.")
	return nil
}

func writeStarterConfig(w io.Writer, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(w, "  skipped %s (exists, use --force to overwrite)\n", filepath.Base(path))
			return nil
		}
	}

	starter := config.ProjectConfig{
		Store:          "kuzu",
		ExcludeDirs:    []string{"testdata"},
		MinClusterSize: 2,
	}
	data, err := yaml.Marshal(&starter)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(w, "  created %s\n", filepath.Base(path))
	return nil
}

// mergeMCPConfig creates or merges the codegraph entry into .mcp.json.
func mergeMCPConfig(w io.Writer, mcpPath string, force bool) error {
	var cfg mcpConfig

	data, err := os.ReadFile(mcpPath)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", mcpPath, err)
		}
	}

	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]json.RawMessage)
	}

	if _, exists := cfg.MCPServers["codegraph"]; exists && !force {
		fmt.Fprintln(w, "  skipped .mcp.json codegraph entry (exists, use --force to overwrite)")
		return nil
	}

	cfg.MCPServers["codegraph"] = codegraphMCPEntry

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}

	if err := os.WriteFile(mcpPath, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mcpPath, err)
	}

	action := "created"
	if data != nil {
		action = "updated"
	}
	fmt.Fprintf(w, "  %s .mcp.json with codegraph MCP server\n", action)
	return nil
}
