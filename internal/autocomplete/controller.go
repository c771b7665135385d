// Package autocomplete holds the suggestion panel state machine.
//
// Transitions:
//
//	Closed -> Open    non-empty search term typed, or focus with a remembered term
//	Open   -> Closed  empty term, outside interaction, or a committed suggestion
//
// State values are immutable; every transition returns the next State.
package autocomplete

import "formulate/internal/catalog"

// State is the suggestion panel state.
type State struct {
	Open     bool
	Term     string
	Filtered []catalog.Variable
}

// Group is one category section of the panel.
type Group struct {
	Category string
	Options  []catalog.Variable
}

// Search applies a freshly typed term. A non-empty term opens the panel and
// re-filters the catalog; an empty term closes it and forgets the term
// while keeping the previous filtered set.
func (s State) Search(term string, cat *catalog.Catalog) State {
	if term == "" {
		return State{Filtered: s.Filtered}
	}
	filtered := cat.Filter(term)
	if filtered == nil {
		filtered = []catalog.Variable{}
	}
	return State{Open: true, Term: term, Filtered: filtered}
}

// Commit closes the panel after a suggestion was chosen.
func (s State) Commit() State {
	return State{Filtered: s.Filtered}
}

// Dismiss closes the panel after an interaction outside the editor. The
// term is remembered so focus can re-open it.
func (s State) Dismiss() State {
	s.Open = false
	return s
}

// Focus re-opens the panel when a term is remembered. The filtered set is
// reused as is.
func (s State) Focus() State {
	if s.Term != "" {
		s.Open = true
	}
	return s
}

// Seed fills an empty filtered set with the whole catalog. It runs when the
// catalog arrives and leaves a non-empty set alone.
func (s State) Seed(cat *catalog.Catalog) State {
	if len(s.Filtered) > 0 || cat.Len() == 0 {
		return s
	}
	s.Filtered = cat.All()
	return s
}

// Visible reports whether the panel should be drawn.
func (s State) Visible() bool {
	return s.Open && len(s.Filtered) > 0
}

// Groups partitions the filtered options by category. Categories appear in
// first-seen order and options keep catalog order within their category.
func (s State) Groups() []Group {
	return GroupByCategory(s.Filtered)
}

// Flatten returns the options in display order, matching Groups.
func (s State) Flatten() []catalog.Variable {
	var out []catalog.Variable
	for _, g := range s.Groups() {
		out = append(out, g.Options...)
	}
	return out
}

// GroupByCategory partitions vars by category in first-seen order.
func GroupByCategory(vars []catalog.Variable) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, v := range vars {
		cat := v.Group()
		i, ok := index[cat]
		if !ok {
			i = len(groups)
			index[cat] = i
			groups = append(groups, Group{Category: cat})
		}
		groups[i].Options = append(groups[i].Options, v)
	}
	return groups
}
