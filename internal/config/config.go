package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/codegraph/internal/codegraph"
	"github.com/dusk-indust/codegraph/internal/graphstore"
)

// Environment variables that override file settings.
const (
	EnvStore     = "CODEGRAPH_STORE"
	EnvStorePath = "CODEGRAPH_STORE_PATH"
	EnvLogLevel  = "CODEGRAPH_LOG_LEVEL"
)

// FileNames are the config files Load looks for, in order.
var FileNames = []string{"codegraph.yml", "codegraph.yaml"}

// ProjectConfig holds project-level settings loaded from codegraph.yml.
type ProjectConfig struct {
	Languages      []string `yaml:"languages,omitempty"`
	ExcludeDirs    []string `yaml:"excludeDirs,omitempty"`
	Store          string   `yaml:"store,omitempty"`
	StorePath      string   `yaml:"storePath,omitempty"`
	LogLevel       string   `yaml:"logLevel,omitempty"`
	QueryCacheSize int      `yaml:"queryCacheSize,omitempty"`
	Preload        bool     `yaml:"preload,omitempty"`
	MinClusterSize int      `yaml:"minClusterSize,omitempty"`
}

// Load reads codegraph.yml or codegraph.yaml from dir, then applies
// environment overrides from the process and from dir/.env. A missing
// config file yields defaults, not an error.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range FileNames {
		cfg, err := LoadFile(filepath.Join(dir, name), dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return cfg, err
	}
	cfg := &ProjectConfig{}
	if err := cfg.finish(dir); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the config file at path. Environment overrides are read
// from envDir/.env when envDir is not empty.
func LoadFile(path, envDir string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.finish(envDir); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// finish applies environment overrides and validates the result.
func (c *ProjectConfig) finish(envDir string) error {
	dotenv := map[string]string{}
	if envDir != "" {
		m, err := godotenv.Read(filepath.Join(envDir, ".env"))
		switch {
		case err == nil:
			dotenv = m
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("config: read .env: %w", err)
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if v, ok := lookup(EnvStore); ok {
		c.Store = v
	}
	if v, ok := lookup(EnvStorePath); ok {
		c.StorePath = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}
	return c.Validate()
}

// Validate reports the first invalid setting.
func (c *ProjectConfig) Validate() error {
	switch graphstore.Kind(c.Store) {
	case "", graphstore.KindMemory, graphstore.KindKuzu, graphstore.KindSQLite:
	default:
		return fmt.Errorf("config: unknown store %q", c.Store)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := c.LanguageList(); err != nil {
		return err
	}
	if c.QueryCacheSize < 0 {
		return fmt.Errorf("config: queryCacheSize must not be negative")
	}
	if c.MinClusterSize < 0 {
		return fmt.Errorf("config: minClusterSize must not be negative")
	}
	return nil
}

// StoreKind returns the configured backend, defaulting to memory.
func (c *ProjectConfig) StoreKind() graphstore.Kind {
	if c.Store == "" {
		return graphstore.KindMemory
	}
	return graphstore.Kind(c.Store)
}

// ResolvedStorePath returns StorePath relative to root, or a default under
// root/.codegraph for persistent backends.
func (c *ProjectConfig) ResolvedStorePath(root string) string {
	p := c.StorePath
	if p == "" {
		switch c.StoreKind() {
		case graphstore.KindKuzu:
			p = filepath.Join(".codegraph", "graph.kuzu")
		case graphstore.KindSQLite:
			p = filepath.Join(".codegraph", "graph.db")
		default:
			return ""
		}
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// Level returns the configured slog level, defaulting to info.
func (c *ProjectConfig) Level() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

// LanguageList returns the configured languages. An empty list means all.
func (c *ProjectConfig) LanguageList() ([]codegraph.Language, error) {
	out := make([]codegraph.Language, 0, len(c.Languages))
	for _, s := range c.Languages {
		l, ok := codegraph.ParseLanguage(s)
		if !ok {
			return nil, fmt.Errorf("config: unknown language %q", s)
		}
		out = append(out, l)
	}
	return out, nil
}

// CacheSize returns the query cache size, defaulting when unset.
func (c *ProjectConfig) CacheSize() int {
	if c.QueryCacheSize == 0 {
		return codegraph.DefaultQueryCacheSize
	}
	return c.QueryCacheSize
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", s)
	}
}
