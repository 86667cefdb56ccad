// Package discover finds parseable source files under a project root.
package discover

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/dusk-indust/codegraph/internal/codegraph"
)

// File is one discovered source file.
type File struct {
	Path     string             // slash-separated, relative to the root
	Language codegraph.Language // detected from the extension
}

// Options narrows a walk.
type Options struct {
	// Languages restricts results; empty means every supported language.
	Languages []codegraph.Language
	// ExcludeDirs are directory names or root-relative paths to skip.
	ExcludeDirs []string
}

var skipDirs = map[string]struct{}{
	".git":          {},
	".hg":           {},
	".svn":          {},
	".codegraph":    {},
	".gradle":       {},
	".idea":         {},
	".venv":         {},
	".tox":          {},
	".mypy_cache":   {},
	".pytest_cache": {},
	"__pycache__":   {},
	"node_modules":  {},
	"vendor":        {},
	"venv":          {},
	"target":        {},
	"build":         {},
	"dist":          {},
	"bin":           {},
	"obj":           {},
}

// Files walks root and returns source files sorted by path. Hidden files,
// symlinks, well-known dependency and build directories, and paths matched
// by the root .gitignore are skipped.
func Files(ctx context.Context, root string, opts Options) ([]File, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("discover: %s is not a directory", root)
	}

	langSet := make(map[codegraph.Language]bool, len(opts.Languages))
	for _, l := range opts.Languages {
		langSet[l] = true
	}
	exclude := make(map[string]bool, len(opts.ExcludeDirs))
	for _, d := range opts.ExcludeDirs {
		exclude[strings.Trim(filepath.ToSlash(d), "/")] = true
	}
	gi := loadGitignore(root)

	var results []File
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		name := d.Name()

		if d.IsDir() {
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if exclude[name] || exclude[rel] {
				return filepath.SkipDir
			}
			if gi != nil && (gi.MatchesPath(rel) || gi.MatchesPath(rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		lang, ok := codegraph.LanguageForPath(name)
		if !ok {
			return nil
		}
		if len(langSet) > 0 && !langSet[lang] {
			return nil
		}
		results = append(results, File{Path: rel, Language: lang})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})
	return results, nil
}

// ByLanguage splits files into one group per language, ordered by language
// name. File order within a group follows the input.
func ByLanguage(files []File) []Group {
	idx := make(map[codegraph.Language]int)
	var groups []Group
	for _, f := range files {
		i, ok := idx[f.Language]
		if !ok {
			i = len(groups)
			idx[f.Language] = i
			groups = append(groups, Group{Language: f.Language})
		}
		groups[i].Paths = append(groups[i].Paths, f.Path)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Language < groups[j].Language
	})
	return groups
}

// Group lists the files of one language.
type Group struct {
	Language codegraph.Language
	Paths    []string
}

// Load reads the contents of each path of g, relative to root, into a
// batch ready for the Analyzer.
func (g Group) Load(root string) (codegraph.LanguageBatch, error) {
	batch := codegraph.LanguageBatch{Language: g.Language}
	for _, p := range g.Paths {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(p)))
		if err != nil {
			return batch, fmt.Errorf("discover: read %s: %w", p, err)
		}
		batch.Files = append(batch.Files, codegraph.SourceFile{Path: p, Content: data})
	}
	return batch, nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

// ReadFile loads one source file named absolute or relative to root. A
// non-empty language overrides extension detection. The returned path is
// slash-separated and relative to root when the file lives under it.
func ReadFile(root, p, language string) (codegraph.SourceFile, codegraph.Language, error) {
	if p == "" {
		return codegraph.SourceFile{}, "", fmt.Errorf("discover: path is required")
	}
	abs := p
	if !filepath.IsAbs(p) && root != "" {
		abs = filepath.Join(root, filepath.FromSlash(p))
	}

	var (
		lang codegraph.Language
		ok   bool
	)
	if language != "" {
		if lang, ok = codegraph.ParseLanguage(language); !ok {
			return codegraph.SourceFile{}, "", fmt.Errorf("discover: unknown language %q", language)
		}
	} else if lang, ok = codegraph.LanguageForPath(abs); !ok {
		return codegraph.SourceFile{}, "", fmt.Errorf("discover: cannot detect language of %s", p)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return codegraph.SourceFile{}, "", fmt.Errorf("discover: read %s: %w", p, err)
	}

	rel := filepath.ToSlash(p)
	if root != "" {
		if r, err := filepath.Rel(root, abs); err == nil && r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			rel = filepath.ToSlash(r)
		}
	}
	return codegraph.SourceFile{Path: rel, Content: data}, lang, nil
}
