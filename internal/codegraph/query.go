package codegraph

import (
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// DefaultQueryCacheSize bounds the number of compiled queries kept alive.
const DefaultQueryCacheSize = 256

// Capture is one labelled node produced by a query.
type Capture struct {
	Label string
	Node  *tree_sitter.Node
}

// Match groups the captures of one pattern match.
type Match struct {
	Pattern  uint
	Captures []Capture
}

// First returns the first capture with label.
func (m Match) First(label string) (Capture, bool) {
	for _, c := range m.Captures {
		if c.Label == label {
			return c, true
		}
	}
	return Capture{}, false
}

type queryKey struct {
	loc     Location
	pattern string
}

// compiledQuery is a cache entry. A failed compile is cached too, with a nil
// query, so a broken pattern is reported once.
type compiledQuery struct {
	mu     sync.RWMutex
	query  *tree_sitter.Query
	names  []string
	err    *QueryError
	closed bool
}

func (c *compiledQuery) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.query != nil && !c.closed {
		c.query.Close()
	}
	c.closed = true
}

// QueryEngine compiles and runs tree-sitter queries. Compiled queries are
// kept in a bounded LRU cache keyed by grammar location and pattern; evicted
// queries are closed once no run is using them.
type QueryEngine struct {
	cache  *lru.Cache[queryKey, *compiledQuery]
	logger *slog.Logger
}

// NewQueryEngine returns an engine caching up to size compiled queries.
func NewQueryEngine(size int, logger *slog.Logger) *QueryEngine {
	if size <= 0 {
		size = DefaultQueryCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.NewWithEvict[queryKey, *compiledQuery](size, func(_ queryKey, q *compiledQuery) {
		q.close()
	})
	if err != nil {
		// Only returned for a non-positive size, which is ruled out above.
		panic(err)
	}
	return &QueryEngine{cache: cache, logger: logger}
}

// Len returns the number of cached queries.
func (e *QueryEngine) Len() int {
	return e.cache.Len()
}

// Purge closes and drops every cached query.
func (e *QueryEngine) Purge() {
	e.cache.Purge()
}

// acquire returns the compiled query for (g, pattern) with its read lock
// held. The caller must call release.
func (e *QueryEngine) acquire(g *Grammar, pattern string) (*compiledQuery, error) {
	key := queryKey{loc: g.Location, pattern: pattern}
	for {
		cq, ok := e.cache.Get(key)
		if !ok {
			cq = compile(g, pattern)
			if prev, loaded, _ := e.cache.PeekOrAdd(key, cq); loaded {
				cq.close()
				cq = prev
			}
		}
		cq.mu.RLock()
		if cq.closed {
			// Evicted between lookup and lock; compile a fresh one.
			cq.mu.RUnlock()
			e.cache.Remove(key)
			continue
		}
		if cq.err != nil {
			cq.mu.RUnlock()
			return nil, cq.err
		}
		return cq, nil
	}
}

func compile(g *Grammar, pattern string) *compiledQuery {
	q, qErr := tree_sitter.NewQuery(g.Language(), pattern)
	if qErr != nil {
		return &compiledQuery{err: &QueryError{Location: g.Location, Pattern: pattern, Message: qErr.Error()}}
	}
	return &compiledQuery{query: q, names: q.CaptureNames()}
}

// RunQuery runs pattern over node and returns its captures in the textual
// order they appear in the subtree. Captures of different patterns in one
// query string come back interleaved; callers filter by label.
func (e *QueryEngine) RunQuery(g *Grammar, pattern string, node *tree_sitter.Node, src []byte) ([]Capture, error) {
	cq, err := e.acquire(g, pattern)
	if err != nil {
		return nil, err
	}
	defer cq.mu.RUnlock()

	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	var out []Capture
	captures := cursor.Captures(cq.query, node, src)
	for m, idx := captures.Next(); m != nil; m, idx = captures.Next() {
		c := m.Captures[idx]
		n := c.Node
		out = append(out, Capture{Label: cq.names[c.Index], Node: &n})
	}
	return out, nil
}

// RunMatches runs pattern over node and returns its matches in the order
// the query cursor yields them.
func (e *QueryEngine) RunMatches(g *Grammar, pattern string, node *tree_sitter.Node, src []byte) ([]Match, error) {
	cq, err := e.acquire(g, pattern)
	if err != nil {
		return nil, err
	}
	defer cq.mu.RUnlock()

	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	var out []Match
	matches := cursor.Matches(cq.query, node, src)
	for m := matches.Next(); m != nil; m = matches.Next() {
		match := Match{Pattern: m.PatternIndex, Captures: make([]Capture, 0, len(m.Captures))}
		for _, c := range m.Captures {
			n := c.Node
			match.Captures = append(match.Captures, Capture{Label: cq.names[c.Index], Node: &n})
		}
		out = append(out, match)
	}
	return out, nil
}

// intentMatches runs the first variant of d's patterns for intent that
// compiles against g. Compile failures are logged and yield no matches.
func (e *QueryEngine) intentMatches(g *Grammar, d *Descriptor, intent Intent, node *tree_sitter.Node, src []byte) []Match {
	variants := d.Queries[intent]
	if len(variants) == 0 {
		return nil
	}
	var lastErr error
	for _, pattern := range variants {
		matches, err := e.RunMatches(g, pattern, node, src)
		if err == nil {
			return matches
		}
		lastErr = err
	}
	e.logger.Warn("codegraph: query unavailable",
		slog.String("language", string(d.Language)),
		slog.String("intent", string(intent)),
		slog.String("error", lastErr.Error()))
	return nil
}

// intentCaptures is intentMatches flattened to captures in textual order.
func (e *QueryEngine) intentCaptures(g *Grammar, d *Descriptor, intent Intent, node *tree_sitter.Node, src []byte) []Capture {
	variants := d.Queries[intent]
	if len(variants) == 0 {
		return nil
	}
	var lastErr error
	for _, pattern := range variants {
		captures, err := e.RunQuery(g, pattern, node, src)
		if err == nil {
			return captures
		}
		lastErr = err
	}
	e.logger.Warn("codegraph: query unavailable",
		slog.String("language", string(d.Language)),
		slog.String("intent", string(intent)),
		slog.String("error", lastErr.Error()))
	return nil
}
