// Package session owns the complete state of one formula editor: the token
// sequence, the suggestion panel and the current result. Operations take a
// Session value and return the next one, so the consistency rules between
// those three pieces live in one place.
package session

import (
	"errors"
	"fmt"

	"formulate/internal/autocomplete"
	"formulate/internal/catalog"
	"formulate/internal/formula"
	"formulate/internal/resolver"

	"github.com/google/uuid"
)

// ErrSuggestionsClosed is returned when a suggestion is committed while the
// panel is not open on a search term.
var ErrSuggestionsClosed = errors.New("session: no active search to commit to")

// Session is the state of one editor. The zero value is not usable; create
// sessions with New.
type Session struct {
	ID      string
	Tokens  formula.Sequence
	Suggest autocomplete.State
	Result  resolver.Result

	catalog  *catalog.Catalog
	resolver *resolver.Resolver
}

// New starts a session with the initial sequence. cat may be nil until the
// catalog has been loaded; r may be nil to use a default resolver.
func New(cat *catalog.Catalog, r *resolver.Resolver) Session {
	if r == nil {
		r = resolver.New()
	}
	s := Session{
		ID:       uuid.NewString(),
		Tokens:   formula.Initial(),
		Result:   resolver.Initial(),
		catalog:  cat,
		resolver: r,
	}
	s.Suggest = s.Suggest.Seed(cat)
	return s
}

// Catalog returns the live catalog, nil before it has loaded.
func (s Session) Catalog() *catalog.Catalog {
	return s.catalog
}

// InputValue is the text of the editable trailing token.
func (s Session) InputValue() string {
	return s.Tokens.TrailingText()
}

// Formula is the concatenated token text including the display prefix.
func (s Session) Formula() string {
	return s.Tokens.String()
}

// Chips returns the positions of the variable references.
func (s Session) Chips() []int {
	return s.Tokens.VariableIndexes()
}

// EditText applies a new value for the trailing text, refreshes the
// suggestions from the word being typed and recomputes the result.
func (s Session) EditText(value string) Session {
	s.Tokens = formula.EditText(s.Tokens, value)
	s.Suggest = s.Suggest.Search(formula.SearchTerm(value), s.catalog)
	return s.recompute()
}

// Commit inserts v in place of the word being typed.
func (s Session) Commit(v catalog.Variable) (Session, error) {
	if !s.Suggest.Open || s.Suggest.Term == "" {
		return s, ErrSuggestionsClosed
	}
	s.Tokens = formula.InsertVariable(s.Tokens, v)
	s.Suggest = s.Suggest.Commit()
	return s.recompute(), nil
}

// Delete removes the variable reference at index.
func (s Session) Delete(index int) (Session, error) {
	tokens, err := formula.DeleteToken(s.Tokens, index)
	if err != nil {
		return s, fmt.Errorf("delete token: %w", err)
	}
	s.Tokens = tokens
	return s.recompute(), nil
}

// Focus handles the input regaining focus.
func (s Session) Focus() Session {
	s.Suggest = s.Suggest.Focus()
	return s
}

// Dismiss handles an interaction outside the editor and the panel.
func (s Session) Dismiss() Session {
	s.Suggest = s.Suggest.Dismiss()
	return s
}

// WithCatalog installs a freshly loaded catalog. The suggestions are seeded
// only when the filtered set is still empty, and the result is recomputed
// so literal names typed before the load resolve.
func (s Session) WithCatalog(cat *catalog.Catalog) Session {
	s.catalog = cat
	s.Suggest = s.Suggest.Seed(cat)
	return s.recompute()
}

func (s Session) recompute() Session {
	s.Result = s.resolver.Resolve(s.Tokens, s.catalog)
	return s
}
