package codegraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// engine is one parser bound to one grammar. A tree-sitter parser keeps
// state across a parse call, so every use holds mu.
type engine struct {
	mu      sync.Mutex
	parser  *tree_sitter.Parser
	grammar *Grammar
}

// ParserPool owns one engine per language. Parses of the same language are
// serialized on that engine; different languages parse in parallel.
type ParserPool struct {
	registry     *Registry
	logger       *slog.Logger
	bootstrapped atomic.Bool
	once         sync.Once

	mu      sync.Mutex
	engines map[Language]*engine
	closed  bool
}

// NewParserPool returns a pool that loads grammars from registry.
func NewParserPool(registry *Registry, logger *slog.Logger) *ParserPool {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParserPool{
		registry: registry,
		logger:   logger,
		engines:  make(map[Language]*engine),
	}
}

// Bootstrap marks the pool ready and warms the engines for preload. It is
// idempotent; only the first call preloads. Preload failures are logged and
// do not fail the bootstrap.
func (p *ParserPool) Bootstrap(ctx context.Context, preload ...Language) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.once.Do(func() {
		p.bootstrapped.Store(true)
		for _, lang := range preload {
			if _, err := p.engine(ctx, lang); err != nil {
				p.logger.Warn("codegraph: preload failed",
					slog.String("language", string(lang)),
					slog.String("error", err.Error()))
			}
		}
	})
	return nil
}

// Bootstrapped reports whether Bootstrap has been called.
func (p *ParserPool) Bootstrapped() bool {
	return p.bootstrapped.Load()
}

// Parse runs a full parse of source. Syntax errors never fail the parse;
// they show up as error nodes in the returned tree.
func (p *ParserPool) Parse(ctx context.Context, source []byte, lang Language) (*SyntaxTree, error) {
	if !p.bootstrapped.Load() {
		return nil, ErrNotBootstrapped
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e, err := p.engine(ctx, lang)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.parser == nil {
		return nil, fmt.Errorf("codegraph: parser pool closed")
	}
	tree := e.parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("codegraph: tree-sitter returned nil tree for %s", lang)
	}
	return &SyntaxTree{Language: lang, Grammar: e.grammar, Source: source, tree: tree}, nil
}

// Grammar returns the grammar bound to lang's engine, creating the engine
// if needed.
func (p *ParserPool) Grammar(ctx context.Context, lang Language) (*Grammar, error) {
	if !p.bootstrapped.Load() {
		return nil, ErrNotBootstrapped
	}
	e, err := p.engine(ctx, lang)
	if err != nil {
		return nil, err
	}
	return e.grammar, nil
}

// engine returns lang's engine, loading and binding its grammar on first
// use. Failed creations are not cached so a later call can retry.
func (p *ParserPool) engine(ctx context.Context, lang Language) (*engine, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, fmt.Errorf("codegraph: parser pool closed")
	}
	if e, ok := p.engines[lang]; ok {
		p.mu.Unlock()
		return e, nil
	}
	p.mu.Unlock()

	g, err := p.registry.LoadLanguage(ctx, lang)
	if err != nil {
		return nil, err
	}

	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(g.Language()); err != nil {
		parser.Close()
		return nil, &LanguageBindError{Language: lang, Err: err}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		parser.Close()
		return nil, fmt.Errorf("codegraph: parser pool closed")
	}
	// Another caller may have won the race while the grammar was loading.
	if e, ok := p.engines[lang]; ok {
		parser.Close()
		return e, nil
	}
	e := &engine{parser: parser, grammar: g}
	p.engines[lang] = e
	p.logger.Debug("codegraph: engine created", slog.String("language", string(lang)))
	return e, nil
}

// Close releases every engine. Parses in flight finish first.
func (p *ParserPool) Close() error {
	p.mu.Lock()
	engines := p.engines
	p.engines = make(map[Language]*engine)
	p.closed = true
	p.mu.Unlock()

	for _, e := range engines {
		e.mu.Lock()
		if e.parser != nil {
			e.parser.Close()
			e.parser = nil
		}
		e.mu.Unlock()
	}
	return nil
}

// isRecoverable reports whether err only affects one language.
func isRecoverable(err error) bool {
	var (
		loadErr *GrammarLoadError
		bindErr *LanguageBindError
	)
	return errors.Is(err, ErrUnsupportedLanguage) || errors.As(err, &loadErr) || errors.As(err, &bindErr)
}
