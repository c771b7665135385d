// Package catalog provides the variable catalog consumed by the formula editor:
// the wire types, an immutable ordered lookup structure, the remote client, a
// SQLite-backed offline copy and a fire-once loader tying them together.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultCategory is the grouping label for variables without a category.
const DefaultCategory = "Uncategorized"

// ErrEmptyName is returned when a variable without a name is validated.
var ErrEmptyName = errors.New("catalog: variable name is empty")

// Variable is a named value that can be referenced from a formula.
// Name is both the unique key and the literal text that stands for the
// variable inside an expression.
type Variable struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Value    Value  `json:"value"`
	Inputs   string `json:"inputs,omitempty"`
}

// Group returns the category used for display grouping.
func (v Variable) Group() string {
	if v.Category == "" {
		return DefaultCategory
	}
	return v.Category
}

// Validate reports whether the variable can take part in substitution.
func (v Variable) Validate() error {
	if v.Name == "" {
		return ErrEmptyName
	}
	return nil
}

// Value is the raw catalog value. The service sends either a JSON number or
// a JSON string; both are kept as text so an empty string stays
// distinguishable from zero.
type Value string

// UnmarshalJSON accepts numbers, strings and null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("catalog: decode value: %w", err)
		}
		*v = Value(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("catalog: decode value: %w", err)
		}
		*v = Value(n.String())
		return nil
	}
}

// IsEmpty reports whether the value is the empty string.
func (v Value) IsEmpty() bool { return v == "" }

// Float converts the value to a number. Empty means zero; text that is not
// a number yields NaN, which later fails resolution as an unknown name.
func (v Value) Float() float64 {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// Literal is the text substituted for the variable inside an expression.
func (v Value) Literal() string {
	return FormatNumber(v.Float())
}

// FormatNumber renders a float the way results and substitutions are shown:
// shortest decimal form, no exponent, and the words NaN, Infinity and
// -Infinity for non-finite values.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
