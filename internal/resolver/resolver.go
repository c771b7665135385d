// Package resolver turns a token sequence into a displayable result: it
// substitutes variable values into the formula text, classifies incomplete
// or unresolved expressions and evaluates the rest.
package resolver

import (
	"fmt"
	"regexp"
	"strings"

	"formulate/internal/catalog"
	"formulate/internal/formula"
	"formulate/internal/mathexpr"

	"go.uber.org/zap"
)

// Status classifies a resolution outcome.
type Status int

const (
	StatusEmpty      Status = iota // nothing to evaluate yet
	StatusOK                       // evaluated to a number
	StatusIncomplete               // ends with a dangling operator
	StatusUnknown                  // contains names no variable matched
	StatusInvalid                  // the evaluator rejected the expression
)

// Messages shown for the non-numeric states.
const (
	MsgEmpty      = "Enter an expression"
	MsgIncomplete = "Incomplete expression"
	MsgUnknown    = "Unknown variables in expression"
	MsgInvalid    = "Error: Invalid expression"
)

// String returns the display name for each status.
func (s Status) String() string {
	names := []string{"empty", "ok", "incomplete", "unknown", "invalid"}
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown-status"
}

// Result is the outcome of resolving a sequence. Value is meaningful only
// when Status is StatusOK.
type Result struct {
	Status Status
	Value  float64
}

// String renders the result line text.
func (r Result) String() string {
	switch r.Status {
	case StatusOK:
		return catalog.FormatNumber(r.Value)
	case StatusEmpty:
		return MsgEmpty
	case StatusIncomplete:
		return MsgIncomplete
	case StatusUnknown:
		return MsgUnknown
	default:
		return MsgInvalid
	}
}

// Initial is the result shown before any input.
func Initial() Result {
	return Result{Status: StatusEmpty}
}

var (
	endsWithOperator = regexp.MustCompile(`[+\-*/^%]$`)
	unresolvedName   = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9\s]*`)
)

// EvalFunc evaluates a fully numeric expression.
type EvalFunc func(expr string) (float64, error)

// Resolver resolves token sequences against a catalog.
type Resolver struct {
	eval   EvalFunc
	logger *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger receiving evaluation failures.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithEvaluator replaces the numeric evaluator.
func WithEvaluator(fn EvalFunc) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.eval = fn
		}
	}
}

// New creates a resolver backed by mathexpr.Eval.
func New(opts ...Option) *Resolver {
	r := &Resolver{eval: mathexpr.Eval, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Expression returns the evaluable text of s: the concatenated token values
// without the display prefix, trimmed.
func Expression(s formula.Sequence) string {
	text := strings.TrimPrefix(s.String(), formula.Prefix)
	return strings.TrimSpace(text)
}

// Substitute replaces variable names in expr with their values. Every
// variable reference in s is substituted first using its snapshot value,
// then every variable in cat using its current value. Both passes replace
// every occurrence as plain text.
func Substitute(expr string, s formula.Sequence, cat *catalog.Catalog) string {
	working := expr
	for _, tok := range s.Variables() {
		if tok.Value == "" {
			continue
		}
		working = strings.ReplaceAll(working, tok.Value, tok.Variable.Value.Literal())
	}
	for _, v := range cat.All() {
		working = strings.ReplaceAll(working, v.Name, v.Value.Literal())
	}
	return working
}

// Resolve computes the result for s. Failures never escape: they become
// StatusInvalid and the cause is logged.
func (r *Resolver) Resolve(s formula.Sequence, cat *catalog.Catalog) (res Result) {
	var working string
	defer func() {
		if p := recover(); p != nil {
			r.logger.Debug("calculation error",
				zap.String("expression", working),
				zap.Error(fmt.Errorf("panic: %v", p)))
			res = Result{Status: StatusInvalid}
		}
	}()

	expr := Expression(s)
	if expr == "" {
		return Result{Status: StatusEmpty}
	}

	working = Substitute(expr, s, cat)

	if endsWithOperator.MatchString(working) {
		return Result{Status: StatusIncomplete}
	}
	if unresolvedName.MatchString(working) {
		return Result{Status: StatusUnknown}
	}

	val, err := r.eval(working)
	if err != nil {
		r.logger.Debug("calculation error",
			zap.String("expression", working),
			zap.Error(err))
		return Result{Status: StatusInvalid}
	}
	return Result{Status: StatusOK, Value: val}
}
