package catalog

import "strings"

// Catalog is an immutable, ordered set of variables. The order is the order
// the service returned them in and is never re-sorted.
// A nil *Catalog behaves as an empty catalog.
type Catalog struct {
	vars   []Variable
	byName map[string]int
}

// New builds a catalog from vars, dropping records without a name.
// When two records share a name, Lookup returns the first; both remain
// visible through All and Filter.
func New(vars []Variable) *Catalog {
	c := &Catalog{
		vars:   make([]Variable, 0, len(vars)),
		byName: make(map[string]int, len(vars)),
	}
	for _, v := range vars {
		if v.Validate() != nil {
			continue
		}
		if _, exists := c.byName[v.Name]; !exists {
			c.byName[v.Name] = len(c.vars)
		}
		c.vars = append(c.vars, v)
	}
	return c
}

// Len returns the number of variables.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.vars)
}

// All returns a copy of the variables in catalog order.
func (c *Catalog) All() []Variable {
	if c == nil {
		return nil
	}
	out := make([]Variable, len(c.vars))
	copy(out, c.vars)
	return out
}

// Lookup finds a variable by exact name.
func (c *Catalog) Lookup(name string) (Variable, bool) {
	if c == nil {
		return Variable{}, false
	}
	i, ok := c.byName[name]
	if !ok {
		return Variable{}, false
	}
	return c.vars[i], true
}

// Filter returns the variables whose name contains term, ignoring case.
// Catalog order is preserved. An empty term matches everything.
func (c *Catalog) Filter(term string) []Variable {
	if c == nil {
		return nil
	}
	needle := strings.ToLower(term)
	out := make([]Variable, 0, len(c.vars))
	for _, v := range c.vars {
		if strings.Contains(strings.ToLower(v.Name), needle) {
			out = append(out, v)
		}
	}
	return out
}
