package codegraph

import (
	"errors"
	"fmt"
)

var (
	// ErrNotBootstrapped is returned when a parse is attempted before the
	// pool has been bootstrapped.
	ErrNotBootstrapped = errors.New("codegraph: parser runtime not bootstrapped")

	// ErrMalformedLocation is returned for a grammar location that does not
	// name a module and a symbol.
	ErrMalformedLocation = errors.New("codegraph: malformed grammar location")

	// ErrUnsupportedLanguage is returned when no grammar is registered for a
	// language.
	ErrUnsupportedLanguage = errors.New("codegraph: unsupported language")
)

// GrammarLoadError reports a grammar that could not be loaded.
type GrammarLoadError struct {
	Location Location
	Err      error
}

func (e *GrammarLoadError) Error() string {
	return fmt.Sprintf("codegraph: load grammar %s: %v", e.Location, e.Err)
}

func (e *GrammarLoadError) Unwrap() error { return e.Err }

// LanguageBindError reports a grammar that a parser refused to accept,
// usually an ABI version mismatch.
type LanguageBindError struct {
	Language Language
	Err      error
}

func (e *LanguageBindError) Error() string {
	return fmt.Sprintf("codegraph: bind %s grammar: %v", e.Language, e.Err)
}

func (e *LanguageBindError) Unwrap() error { return e.Err }

// QueryError reports a pattern that failed to compile against a grammar.
type QueryError struct {
	Location Location
	Pattern  string
	Message  string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("codegraph: compile query for %s: %s", e.Location, e.Message)
}

// IsFatal reports whether err must abort the current operation rather than
// degrade to empty results.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var (
		loadErr *GrammarLoadError
		bindErr *LanguageBindError
		qErr    *QueryError
	)
	switch {
	case errors.Is(err, ErrUnsupportedLanguage),
		errors.As(err, &loadErr),
		errors.As(err, &bindErr),
		errors.As(err, &qErr):
		return false
	}
	return true
}
