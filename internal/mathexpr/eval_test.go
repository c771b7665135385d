package mathexpr

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEval(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"2 + 3", 5},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 / 4", 2.5},
		{"10 % 4", 2},
		{"7.5 % 2", 1.5},
		{"2 ^ 10", 1024},
		{"2 ^ 3 ^ 2", 512},
		{"-2 ^ 2", -4},
		{"2 ^ -1", 0.5},
		{"-3 + 5", 2},
		{"--3", 3},
		{"+4", 4},
		{"2 * -3", -6},
		{".5 + .25", 0.75},
		{"3.", 3},
		{"  ( ( 1 ) )  ", 1},
		{"100 - 10 - 5", 85},
		{"64 / 4 / 2", 8},
		{"1\t+\n2", 3},
	}
	for _, tt := range tests {
		got, err := Eval(tt.expr)
		if err != nil {
			t.Errorf("Eval(%q) error: %v", tt.expr, err)
			continue
		}
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Eval(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestEval_DivisionByZero(t *testing.T) {
	got, err := Eval("1 / 0")
	if err != nil {
		t.Fatalf("Eval error: %v", err)
	}
	if !math.IsInf(got, 1) {
		t.Fatalf("Eval(1/0) = %v, want +Inf", got)
	}
}

func TestEval_SyntaxErrors(t *testing.T) {
	inputs := []string{
		"(1 + 2",
		"1 + 2)",
		"1 +",
		"* 2",
		"1 2",
		"()",
		".",
		"1..2",
		"2 ^",
		"abc",
		"1 & 2",
	}
	for _, in := range inputs {
		_, err := Eval(in)
		if err == nil {
			t.Errorf("Eval(%q) expected error", in)
			continue
		}
		var synErr *SyntaxError
		if !errors.As(err, &synErr) {
			t.Errorf("Eval(%q) error %v is not a *SyntaxError", in, err)
		}
	}
}

func TestEval_Empty(t *testing.T) {
	for _, in := range []string{"", "   "} {
		if _, err := Eval(in); !errors.Is(err, ErrEmpty) {
			t.Errorf("Eval(%q) = %v, want ErrEmpty", in, err)
		}
	}
}

func TestSyntaxError_Position(t *testing.T) {
	_, err := Eval("1 + )")
	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("expected *SyntaxError, got %v", err)
	}
	if synErr.Pos != 4 {
		t.Errorf("Pos = %d, want 4", synErr.Pos)
	}
}
