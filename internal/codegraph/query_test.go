package codegraph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseForQuery(t *testing.T, src string, lang Language) *SyntaxTree {
	t.Helper()
	p := NewParserPool(NewDefaultRegistry(discardLogger()), discardLogger())
	t.Cleanup(func() { _ = p.Close() })
	require.NoError(t, p.Bootstrap(context.Background()))

	tree, err := p.Parse(context.Background(), []byte(src), lang)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

func TestRunQuery_TextualOrder(t *testing.T) {
	tree := parseForQuery(t, "class A { int x; void m() {} int y; }", LangJava)
	e := NewQueryEngine(8, discardLogger())
	defer e.Purge()

	pattern := `
(method_declaration name: (identifier) @name)
(field_declaration declarator: (variable_declarator name: (identifier) @name))
`
	caps, err := e.RunQuery(tree.Grammar, pattern, tree.Root(), tree.Source)
	require.NoError(t, err)

	var got []string
	for _, c := range caps {
		assert.Equal(t, "name", c.Label)
		got = append(got, tree.Text(c.Node))
	}
	assert.Equal(t, []string{"x", "m", "y"}, got)
}

func TestRunMatches_GroupsCaptures(t *testing.T) {
	tree := parseForQuery(t, "class A extends B {} class C extends D {}", LangJava)
	e := NewQueryEngine(8, discardLogger())
	defer e.Purge()

	pattern := `(class_declaration name: (identifier) @class (superclass (type_identifier) @extends))`
	matches, err := e.RunMatches(tree.Grammar, pattern, tree.Root(), tree.Source)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	cls, ok := matches[0].First("class")
	require.True(t, ok)
	sup, ok := matches[0].First("extends")
	require.True(t, ok)
	assert.Equal(t, "A", tree.Text(cls.Node))
	assert.Equal(t, "B", tree.Text(sup.Node))

	_, ok = matches[1].First("implements")
	assert.False(t, ok)
}

func TestRunQuery_MalformedPattern(t *testing.T) {
	tree := parseForQuery(t, "class A {}", LangJava)
	e := NewQueryEngine(8, discardLogger())
	defer e.Purge()

	_, err := e.RunQuery(tree.Grammar, `(class_declaration name: (identifier) @n`, tree.Root(), tree.Source)
	require.Error(t, err)

	var qErr *QueryError
	require.True(t, errors.As(err, &qErr))
	assert.Equal(t, tree.Grammar.Location, qErr.Location)
	assert.False(t, IsFatal(err))

	// The failure is cached and reported again without recompiling.
	_, err = e.RunQuery(tree.Grammar, `(class_declaration name: (identifier) @n`, tree.Root(), tree.Source)
	assert.True(t, errors.As(err, &qErr))
	assert.Equal(t, 1, e.Len())
}

func TestRunQuery_UnknownNodeType(t *testing.T) {
	tree := parseForQuery(t, "class A {}", LangJava)
	e := NewQueryEngine(8, discardLogger())
	defer e.Purge()

	_, err := e.RunQuery(tree.Grammar, `(no_such_node) @x`, tree.Root(), tree.Source)
	var qErr *QueryError
	assert.True(t, errors.As(err, &qErr))
}

func TestQueryEngine_CacheIsBounded(t *testing.T) {
	tree := parseForQuery(t, "class A { void m() {} }", LangJava)
	e := NewQueryEngine(1, discardLogger())
	defer e.Purge()

	classes := `(class_declaration name: (identifier) @name)`
	methods := `(method_declaration name: (identifier) @name)`

	for i := 0; i < 3; i++ {
		caps, err := e.RunQuery(tree.Grammar, classes, tree.Root(), tree.Source)
		require.NoError(t, err)
		require.Len(t, caps, 1)
		assert.Equal(t, "A", tree.Text(caps[0].Node))

		caps, err = e.RunQuery(tree.Grammar, methods, tree.Root(), tree.Source)
		require.NoError(t, err)
		require.Len(t, caps, 1)
		assert.Equal(t, "m", tree.Text(caps[0].Node))

		assert.Equal(t, 1, e.Len())
	}

	e.Purge()
	assert.Equal(t, 0, e.Len())
}

func TestIntentCaptures_FallsBackToLaterVariant(t *testing.T) {
	tree := parseForQuery(t, "class A { void m() {} }", LangJava)
	e := NewQueryEngine(8, discardLogger())
	defer e.Purge()

	d := (&Descriptor{
		Language: LangJava,
		Queries: map[Intent][]string{
			IntentMethods: {
				`(method_declaration nonexistent_field: (identifier) @name)`,
				`(method_declaration name: (identifier) @name)`,
			},
		},
	}).init()

	caps := e.intentCaptures(tree.Grammar, d, IntentMethods, tree.Root(), tree.Source)
	require.Len(t, caps, 1)
	assert.Equal(t, "m", tree.Text(caps[0].Node))

	assert.Empty(t, e.intentCaptures(tree.Grammar, d, IntentFields, tree.Root(), tree.Source))
}

func TestDescriptorQueries_Compile(t *testing.T) {
	// Every language has at least one compiling variant for each intent it
	// declares.
	p := NewParserPool(NewDefaultRegistry(discardLogger()), discardLogger())
	defer p.Close()
	require.NoError(t, p.Bootstrap(context.Background()))
	e := NewQueryEngine(DefaultQueryCacheSize, discardLogger())
	defer e.Purge()

	for _, lang := range AllLanguages {
		d, ok := DescriptorFor(lang)
		require.True(t, ok, "%s has a descriptor", lang)

		g, err := p.Grammar(context.Background(), lang)
		require.NoError(t, err, "%s grammar", lang)

		for intent, variants := range d.Queries {
			var compiled bool
			for _, pattern := range variants {
				if cq, err := e.acquire(g, pattern); err == nil {
					cq.mu.RUnlock()
					compiled = true
					break
				}
			}
			assert.True(t, compiled, "%s %s", lang, intent)
		}
	}
}
