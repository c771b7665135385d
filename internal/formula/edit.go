package formula

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"formulate/internal/catalog"
)

var (
	// ErrIndexOutOfRange is returned when a deletion targets a missing token.
	ErrIndexOutOfRange = errors.New("formula: token index out of range")
	// ErrNotVariable is returned when a deletion targets a text token.
	ErrNotVariable = errors.New("formula: token is not a variable reference")
)

// trailingOperator matches an arithmetic operator at the end of a text
// fragment, optionally followed by whitespace.
var trailingOperator = regexp.MustCompile(`[+\-*/^%]\s*$`)

// SearchTerm returns the word being typed at the end of text: the text is
// trimmed, split on single spaces and the last piece is returned.
func SearchTerm(text string) string {
	words := strings.Split(strings.TrimSpace(text), " ")
	return words[len(words)-1]
}

// EditText replaces the trailing text token with value, or appends a new
// text token when the sequence ends with a variable reference.
func EditText(s Sequence, value string) Sequence {
	next := s.Clone()
	if last, ok := next.Last(); ok && last.IsText() {
		next[len(next)-1] = Text(value)
		return next
	}
	return append(next, Text(value))
}

// InsertVariable commits v at the end of the sequence. The partial word in
// the trailing text is dropped (keeping one separating space when words
// remain), then the reference and a single-space text token are appended so
// typing can continue.
func InsertVariable(s Sequence, v catalog.Variable) Sequence {
	next := s.Clone()
	if last, ok := next.Last(); ok && last.IsText() {
		words := strings.Split(strings.TrimSpace(last.Value), " ")
		words = words[:len(words)-1]
		value := strings.Join(words, " ")
		if len(words) > 0 {
			value += " "
		}
		next[len(next)-1] = Text(value)
	}
	return append(next, Ref(v), Text(" "))
}

// DeleteToken removes the variable reference at index. An operator dangling
// at the end of the preceding text is removed with it, and the text tokens
// that become adjacent are merged.
func DeleteToken(s Sequence, index int) (Sequence, error) {
	if index < 0 || index >= len(s) {
		return nil, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(s))
	}
	if !s[index].IsVariable() {
		return nil, fmt.Errorf("%w: %d", ErrNotVariable, index)
	}

	next := s.Clone()
	if index > 0 && next[index-1].IsText() {
		prev := next[index-1].Value
		if trailingOperator.MatchString(prev) {
			next[index-1] = Text(trailingOperator.ReplaceAllString(prev, ""))
		}
	}

	next = append(next[:index], next[index+1:]...)
	return Normalize(next), nil
}

// Normalize merges adjacent text tokens until none remain adjacent. When
// both sides of a seam carry whitespace, the right side's leading
// whitespace is dropped so the merged text keeps a single separator.
func Normalize(s Sequence) Sequence {
	out := make(Sequence, 0, len(s))
	for _, tok := range s {
		if n := len(out); n > 0 && tok.IsText() && out[n-1].IsText() {
			out[n-1] = Text(joinText(out[n-1].Value, tok.Value))
			continue
		}
		out = append(out, tok)
	}
	return out
}

func joinText(left, right string) string {
	if endsWithSpace(left) {
		right = strings.TrimLeftFunc(right, unicode.IsSpace)
	}
	return left + right
}

func endsWithSpace(s string) bool {
	r, size := utf8.DecodeLastRuneInString(s)
	return size > 0 && unicode.IsSpace(r)
}
