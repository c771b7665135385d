// Package formula defines the token sequence behind the formula editor and
// the edit operations that move it from one generation to the next.
//
// A Sequence interleaves free text with variable references. Every edit
// returns a new Sequence; tokens are never changed in place, so a previous
// generation stays valid after an edit.
package formula

import (
	"strings"

	"formulate/internal/catalog"
)

// Prefix is the fixed display prefix of every formula. It is not part of the
// evaluated expression.
const Prefix = "= "

// Kind discriminates the two token variants.
type Kind int

const (
	KindText     Kind = iota // literal user-typed text
	KindVariable             // bound variable reference
)

// String returns the display name for each kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// Token is either free text or a variable reference. For a variable
// reference Value is the display name and Variable is the snapshot taken at
// insertion time.
type Token struct {
	Kind     Kind
	Value    string
	Variable catalog.Variable
}

// Text builds a text token.
func Text(value string) Token {
	return Token{Kind: KindText, Value: value}
}

// Ref builds a variable reference token for v.
func Ref(v catalog.Variable) Token {
	return Token{Kind: KindVariable, Value: v.Name, Variable: v}
}

// IsText reports whether the token is free text.
func (t Token) IsText() bool { return t.Kind == KindText }

// IsVariable reports whether the token is a variable reference.
func (t Token) IsVariable() bool { return t.Kind == KindVariable }

// Sequence is an ordered list of tokens. Invariant: no two adjacent tokens
// are both text, and only the last token may be the editable text.
type Sequence []Token

// Initial returns the sequence a new editor starts with.
func Initial() Sequence {
	return Sequence{Text(Prefix)}
}

// Clone returns an independent copy of s.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// Last returns the final token. ok is false for an empty sequence.
func (s Sequence) Last() (tok Token, ok bool) {
	if len(s) == 0 {
		return Token{}, false
	}
	return s[len(s)-1], true
}

// TrailingText returns the value of the trailing text token, or "" when the
// sequence ends with a variable reference.
func (s Sequence) TrailingText() string {
	if last, ok := s.Last(); ok && last.IsText() {
		return last.Value
	}
	return ""
}

// String concatenates every token value.
func (s Sequence) String() string {
	var sb strings.Builder
	for _, tok := range s {
		sb.WriteString(tok.Value)
	}
	return sb.String()
}

// Variables returns the variable reference tokens in order.
func (s Sequence) Variables() []Token {
	var out []Token
	for _, tok := range s {
		if tok.IsVariable() {
			out = append(out, tok)
		}
	}
	return out
}

// VariableIndexes returns the positions of the variable reference tokens.
func (s Sequence) VariableIndexes() []int {
	var out []int
	for i, tok := range s {
		if tok.IsVariable() {
			out = append(out, i)
		}
	}
	return out
}

// Valid reports whether the adjacency invariant holds.
func (s Sequence) Valid() bool {
	for i := 1; i < len(s); i++ {
		if s[i-1].IsText() && s[i].IsText() {
			return false
		}
	}
	return true
}
