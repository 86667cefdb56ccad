package codegraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	"golang.org/x/sync/singleflight"
)

// Location names a compiled grammar: the Go module that embeds it and the
// exported symbol returning the language pointer.
type Location struct {
	Module string
	Symbol string
}

func (l Location) String() string {
	return l.Module + "#" + l.Symbol
}

// Valid reports whether the location names both a module and a symbol.
func (l Location) Valid() bool {
	return l.Module != "" && l.Symbol != ""
}

// LoaderFunc returns the raw grammar pointer exported by a binding package.
type LoaderFunc func() unsafe.Pointer

// Grammar is a loaded grammar handle. Handles are shared and never freed.
type Grammar struct {
	Location Location
	lang     *tree_sitter.Language
}

// Language returns the underlying tree-sitter language.
func (g *Grammar) Language() *tree_sitter.Language {
	return g.lang
}

var errUnknownLocation = errors.New("no loader registered")

// Registry maps languages to grammar locations and loads grammars on demand.
// Loaded grammars are cached for the lifetime of the registry and concurrent
// loads of one location are coalesced.
type Registry struct {
	mu        sync.RWMutex
	locations map[Language]Location
	loaders   map[Location]LoaderFunc
	cache     map[Location]*Grammar
	group     singleflight.Group
	logger    *slog.Logger
}

// NewRegistry returns an empty registry. Use NewDefaultRegistry for one that
// knows the built-in grammars.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		locations: make(map[Language]Location),
		loaders:   make(map[Location]LoaderFunc),
		cache:     make(map[Location]*Grammar),
		logger:    logger,
	}
}

// NewDefaultRegistry returns a registry with every built-in grammar
// registered.
func NewDefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	for _, b := range builtinGrammars {
		r.Register(b.lang, b.loc, b.load)
	}
	for lang, target := range grammarAliases {
		r.Alias(lang, target)
	}
	return r
}

// Register binds lang to loc and installs the loader for loc. Registering a
// location that is already cached keeps the cached handle.
func (r *Registry) Register(lang Language, loc Location, load LoaderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations[lang] = loc
	if load != nil {
		r.loaders[loc] = load
	}
}

// Alias makes lang resolve to the grammar location of target.
func (r *Registry) Alias(lang, target Language) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if loc, ok := r.locations[target]; ok {
		r.locations[lang] = loc
	}
}

// ResolveLocation returns the grammar location for lang.
func (r *Registry) ResolveLocation(lang Language) (Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	loc, ok := r.locations[lang]
	if !ok {
		return Location{}, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
	return loc, nil
}

// Languages returns the registered languages in sorted order.
func (r *Registry) Languages() []Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Language, 0, len(r.locations))
	for l := range r.locations {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Load returns the grammar at loc, loading it on first use.
func (r *Registry) Load(ctx context.Context, loc Location) (*Grammar, error) {
	if !loc.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrMalformedLocation, loc.String())
	}

	r.mu.RLock()
	g, ok := r.cache[loc]
	r.mu.RUnlock()
	if ok {
		return g, nil
	}

	ch := r.group.DoChan(loc.String(), func() (any, error) {
		return r.load(loc)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Grammar), nil
	}
}

// LoadLanguage resolves and loads the grammar for lang.
func (r *Registry) LoadLanguage(ctx context.Context, lang Language) (*Grammar, error) {
	loc, err := r.ResolveLocation(lang)
	if err != nil {
		return nil, err
	}
	return r.Load(ctx, loc)
}

func (r *Registry) load(loc Location) (g *Grammar, err error) {
	r.mu.RLock()
	if cached, ok := r.cache[loc]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	load, ok := r.loaders[loc]
	r.mu.RUnlock()
	if !ok {
		return nil, &GrammarLoadError{Location: loc, Err: errUnknownLocation}
	}

	defer func() {
		if p := recover(); p != nil {
			g, err = nil, &GrammarLoadError{Location: loc, Err: fmt.Errorf("loader panicked: %v", p)}
		}
	}()

	ptr := load()
	if ptr == nil {
		return nil, &GrammarLoadError{Location: loc, Err: errors.New("loader returned nil grammar")}
	}
	g = &Grammar{Location: loc, lang: tree_sitter.NewLanguage(ptr)}

	r.mu.Lock()
	r.cache[loc] = g
	r.mu.Unlock()

	r.logger.Debug("codegraph: grammar loaded", slog.String("location", loc.String()))
	return g, nil
}
