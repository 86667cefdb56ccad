// Package cluster groups the files of a batch into clusters of mutually
// importing files.
package cluster

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dusk-indust/codegraph/internal/codegraph"
)

// Resolver rewrites import paths into batch-relative file paths. It is built
// once per batch from the known file paths; the only filesystem access is a
// read of go.mod under the project root.
type Resolver struct {
	fileSet   map[string]bool
	dirIndex  map[string][]string
	goModPath string
}

// NewResolver builds a Resolver over files, which must use forward slashes
// and be relative to root.
func NewResolver(root string, files []string) *Resolver {
	r := &Resolver{
		fileSet:  make(map[string]bool, len(files)),
		dirIndex: make(map[string][]string),
	}
	for _, f := range files {
		f = path.Clean(f)
		r.fileSet[f] = true
		dir := path.Dir(f)
		r.dirIndex[dir] = append(r.dirIndex[dir], f)
	}
	for dir := range r.dirIndex {
		sort.Strings(r.dirIndex[dir])
	}
	if root != "" {
		r.goModPath = readModulePath(filepath.Join(root, "go.mod"))
	}
	return r
}

// Resolve returns the batch files imp refers to. Imports of packages outside
// the batch resolve to nothing.
func (r *Resolver) Resolve(imp codegraph.ImportInfo, lang codegraph.Language) []string {
	var out []string
	switch lang {
	case codegraph.LangTypeScript, codegraph.LangTSX, codegraph.LangJavaScript, codegraph.LangJSX:
		out = r.resolveScript(imp)
	case codegraph.LangPython:
		out = r.resolvePython(imp)
	case codegraph.LangGo:
		out = r.resolveGo(imp)
	case codegraph.LangRust:
		out = r.resolveRust(imp)
	case codegraph.LangJava, codegraph.LangKotlin, codegraph.LangCSharp:
		out = r.resolveDotted(imp, lang)
	}
	// An import never links a file to itself.
	src := path.Clean(imp.FilePath)
	filtered := out[:0]
	for _, f := range out {
		if f != src {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// --- JavaScript / TypeScript ---

var scriptExtensions = []string{
	".ts", ".tsx", ".d.ts", ".js", ".jsx", ".mjs", ".cjs",
	"/index.ts", "/index.tsx", "/index.js", "/index.jsx",
}

func (r *Resolver) resolveScript(imp codegraph.ImportInfo) []string {
	if !strings.HasPrefix(imp.Path, "./") && !strings.HasPrefix(imp.Path, "../") {
		return nil // package import
	}
	base := path.Join(path.Dir(imp.FilePath), imp.Path)
	return r.probe(base, scriptExtensions)
}

// --- Python ---

func (r *Resolver) resolvePython(imp codegraph.ImportInfo) []string {
	dots := len(imp.Path) - len(strings.TrimLeft(imp.Path, "."))
	module := imp.Path[dots:]

	var bases []string
	if dots > 0 {
		// One dot is the current package, each further dot a parent.
		dir := path.Dir(imp.FilePath)
		for i := 1; i < dots; i++ {
			dir = path.Dir(dir)
		}
		bases = []string{dir}
	} else {
		bases = ancestors(path.Dir(imp.FilePath))
	}

	exts := []string{".py", ".pyi", "/__init__.py"}
	for _, dir := range bases {
		if module == "" {
			// from . import a, b: each name may be a submodule.
			var out []string
			for _, name := range imp.ImportedNames {
				out = append(out, r.probe(path.Join(dir, name), exts)...)
			}
			if len(out) == 0 {
				out = r.probe(path.Join(dir, "__init__"), []string{".py"})
			}
			if len(out) > 0 {
				return out
			}
			continue
		}
		if out := r.probe(path.Join(dir, strings.ReplaceAll(module, ".", "/")), exts); len(out) > 0 {
			return out
		}
	}
	return nil
}

// --- Go ---

func (r *Resolver) resolveGo(imp codegraph.ImportInfo) []string {
	rel := ""
	switch {
	case r.goModPath != "" && imp.Path == r.goModPath:
		rel = "."
	case r.goModPath != "" && strings.HasPrefix(imp.Path, r.goModPath+"/"):
		rel = strings.TrimPrefix(imp.Path, r.goModPath+"/")
	default:
		return nil // stdlib or external module
	}
	var out []string
	for _, f := range r.dirIndex[rel] {
		if strings.HasSuffix(f, ".go") && !strings.HasSuffix(f, "_test.go") {
			out = append(out, f)
		}
	}
	return out
}

// --- Rust ---

func (r *Resolver) resolveRust(imp codegraph.ImportInfo) []string {
	p := imp.Path
	if idx := strings.Index(p, "::{"); idx != -1 {
		p = p[:idx]
	}
	segs := strings.Split(p, "::")
	if len(segs) < 2 {
		return nil
	}

	var roots []string
	switch segs[0] {
	case "crate":
		if src := crateRoot(imp.FilePath); src != "" {
			roots = append(roots, src)
		}
		roots = append(roots, "src", ".")
	case "self":
		roots = []string{path.Dir(imp.FilePath)}
	case "super":
		roots = []string{path.Dir(path.Dir(imp.FilePath))}
	default:
		return nil // external crate
	}

	// Trailing segments may name items rather than modules; drop them
	// one at a time until a module file matches.
	for n := len(segs) - 1; n >= 1; n-- {
		rel := strings.Join(segs[1:n+1], "/")
		for _, root := range roots {
			if out := r.probe(path.Join(root, rel), []string{".rs", "/mod.rs"}); len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

// crateRoot walks up from a file path to the nearest "src" directory.
func crateRoot(file string) string {
	dir := path.Dir(file)
	for dir != "." && dir != "/" && dir != "" {
		if path.Base(dir) == "src" {
			return dir
		}
		dir = path.Dir(dir)
	}
	return ""
}

// --- Java / Kotlin / C# ---

func (r *Resolver) resolveDotted(imp codegraph.ImportInfo, lang codegraph.Language) []string {
	exts := codegraph.Extensions(lang)
	segs := strings.Split(strings.TrimSuffix(imp.Path, ".*"), ".")

	if imp.IsWildcard {
		return r.dirSuffix(strings.Join(segs, "/"), exts)
	}
	// Static imports name a member; C# usings name a namespace.
	least := 1
	if len(segs) > 1 {
		least = 2
	}
	for n := len(segs); n >= least; n-- {
		rel := strings.Join(segs[:n], "/")
		if out := r.fileSuffix(rel, exts); len(out) > 0 {
			return out
		}
		if lang == codegraph.LangCSharp {
			if out := r.dirSuffix(rel, exts); len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

// fileSuffix returns files whose path without extension ends in rel.
func (r *Resolver) fileSuffix(rel string, exts []string) []string {
	var out []string
	for f := range r.fileSet {
		for _, ext := range exts {
			if !strings.HasSuffix(f, ext) {
				continue
			}
			stem := strings.TrimSuffix(f, ext)
			if stem == rel || strings.HasSuffix(stem, "/"+rel) {
				out = append(out, f)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// dirSuffix returns the files directly inside directories ending in rel.
func (r *Resolver) dirSuffix(rel string, exts []string) []string {
	var out []string
	for dir, files := range r.dirIndex {
		if dir != rel && !strings.HasSuffix(dir, "/"+rel) {
			continue
		}
		for _, f := range files {
			if hasAnySuffix(f, exts) {
				out = append(out, f)
			}
		}
	}
	sort.Strings(out)
	return out
}

// --- Shared helpers ---

// probe checks whether base, or base with one of exts appended, is a known
// file. No filesystem I/O.
func (r *Resolver) probe(base string, exts []string) []string {
	base = path.Clean(base)
	if r.fileSet[base] {
		return []string{base}
	}
	for _, ext := range exts {
		if c := base + ext; r.fileSet[c] {
			return []string{c}
		}
	}
	return nil
}

// ancestors returns dir and each of its parents up to ".".
func ancestors(dir string) []string {
	out := []string{dir}
	for dir != "." && dir != "/" && dir != "" {
		dir = path.Dir(dir)
		out = append(out, dir)
	}
	return out
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

// readModulePath returns the module directive of a go.mod file, or "".
func readModulePath(goMod string) string {
	f, err := os.Open(goMod)
	if err != nil {
		return ""
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if rest, ok := strings.CutPrefix(line, "module"); ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t') {
			return strings.Trim(strings.TrimSpace(rest), `"`)
		}
	}
	return ""
}
