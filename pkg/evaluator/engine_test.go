package evaluator

import (
	"testing"

	"github.com/kajanen/lumilisp/pkg/env"
	"github.com/kajanen/lumilisp/pkg/reader"
	"github.com/kajanen/lumilisp/pkg/values"
)

// evalProgram parses and evaluates every top-level form in src against a
// fresh root scope with builtins installed, returning the last value.
func evalProgram(t *testing.T, src string) values.Value {
	t.Helper()
	forms, err := reader.Read(src)
	if err != nil {
		t.Fatalf("reader.Read(%q): %v", src, err)
	}
	root := env.New()
	InstallBuiltins(root)
	eng := New(nil)
	v, err := eng.EvaluateSeq(forms, root)
	if err != nil {
		t.Fatalf("eval(%q): %v", src, err)
	}
	return v
}

func TestArithmetic(t *testing.T) {
	got := evalProgram(t, "(+ 1 2 3)")
	if got != values.Int(6) {
		t.Fatalf("got %v, want 6", got)
	}
}

func TestLetSequentialBinding(t *testing.T) {
	got := evalProgram(t, "(let (x 2 y 3) (* x y))")
	if got != values.Int(6) {
		t.Fatalf("got %v, want 6", got)
	}
}

func TestDefnRecursiveFactorial(t *testing.T) {
	got := evalProgram(t, `
		(defn fact (n) (if (= n 0) 1 (* n (fact (- n 1)))))
		(fact 5)
	`)
	if got != values.Int(120) {
		t.Fatalf("got %v, want 120", got)
	}
}

func TestDefmacroWhen(t *testing.T) {
	got := evalProgram(t, `
		(defmacro when (c & body) (list 'if c (cons 'do body) nil))
		(when (= 1 1) 7)
	`)
	if got != values.Int(7) {
		t.Fatalf("got %v, want 7", got)
	}
}

func TestQuoteWithUnquoteSplice(t *testing.T) {
	got := evalProgram(t, `(let (x 2) '(1 ~x ~(inc x) 4))`)
	list, ok := got.(*values.List)
	if !ok {
		t.Fatalf("got %T, want *values.List", got)
	}
	want := []int64{1, 2, 3, 4}
	if list.Len() != len(want) {
		t.Fatalf("got %v, want a 4-element list", got)
	}
	for i, w := range want {
		if list.Elements[i] != values.Int(w) {
			t.Fatalf("element %d: got %v, want %d", i, list.Elements[i], w)
		}
	}
}

func TestMatchPicksFirstAcceptingClause(t *testing.T) {
	got := evalProgram(t, `(match (list 1 2 3) ((a) "one") ((a b c) "three") (_ "other"))`)
	if got != values.Str("three") {
		t.Fatalf("got %v, want \"three\"", got)
	}
}

func TestQuoteFixpointWithoutUnquote(t *testing.T) {
	got := evalProgram(t, "'(1 2 (3 4))")
	want, _ := reader.ReadOne("(1 2 (3 4))")
	if !values.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMacroexpandIdempotence(t *testing.T) {
	forms, err := reader.Read(`
		(defmacro double (x) (list '* 2 x))
		(macroexpand '(double 5))
	`)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	root := env.New()
	InstallBuiltins(root)
	eng := New(nil)
	expansion, err := eng.EvaluateSeq(forms, root)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	fromExpansion, err := eng.Evaluate(expansion, root)
	if err != nil {
		t.Fatalf("eval(expansion): %v", err)
	}
	direct, err := eng.Evaluate(values.NewList(values.Symbol("double"), values.Int(5)), root)
	if err != nil {
		t.Fatalf("eval(direct): %v", err)
	}
	if !values.Equal(fromExpansion, direct) {
		t.Fatalf("macroexpand then eval = %v, direct eval = %v", fromExpansion, direct)
	}
}

func TestLexicalCapture(t *testing.T) {
	got := evalProgram(t, "((let (x 1) (# x)))")
	if got != values.Int(1) {
		t.Fatalf("got %v, want 1", got)
	}
}

// TestTailRecursionStackSafety is spec §8 property 5: a self-recursive
// function whose recursive call is in tail position must not grow the Go
// call stack proportional to iteration count.
func TestTailRecursionStackSafety(t *testing.T) {
	got := evalProgram(t, `
		(defn loop (n acc) (if (= n 0) acc (loop (- n 1) (+ acc 1))))
		(loop 50000 0)
	`)
	if got != values.Int(50000) {
		t.Fatalf("got %v, want 50000", got)
	}
}

func TestArgumentOrderLeftToRight(t *testing.T) {
	got := evalProgram(t, `
		(def log (list))
		(defn record (tag) (def log (cons tag log)) tag)
		(+ (record 1) (record 2) (record 3))
		log
	`)
	list, ok := got.(*values.List)
	if !ok || list.Len() != 3 {
		t.Fatalf("got %v, want a 3-element list", got)
	}
	// record prepends, so the log is in reverse call order: 3, 2, 1.
	for i, want := range []int64{3, 2, 1} {
		if list.Elements[i] != values.Int(want) {
			t.Fatalf("element %d: got %v, want %d", i, list.Elements[i], want)
		}
	}
}

func TestMapAndFilter(t *testing.T) {
	got := evalProgram(t, "(map (# (* %0 2)) (list 1 2 3))")
	list, ok := got.(*values.List)
	if !ok || list.Len() != 3 {
		t.Fatalf("got %v", got)
	}
	for i, want := range []int64{2, 4, 6} {
		if list.Elements[i] != values.Int(want) {
			t.Fatalf("element %d: got %v, want %d", i, list.Elements[i], want)
		}
	}

	got = evalProgram(t, "(filter (# (> %0 1)) (list 1 2 3))")
	list, ok = got.(*values.List)
	if !ok || list.Len() != 2 {
		t.Fatalf("got %v", got)
	}
}

func TestNotCallableError(t *testing.T) {
	forms, _ := reader.Read("(1 2 3)")
	root := env.New()
	InstallBuiltins(root)
	eng := New(nil)
	_, err := eng.EvaluateSeq(forms, root)
	if err == nil {
		t.Fatalf("expected an error calling a non-callable value")
	}
	var evalErr *EvalError
	if !asEvalError(err, &evalErr) {
		t.Fatalf("expected *EvalError, got %T", err)
	}
	if _, ok := evalErr.Err.(*NotCallableError); !ok {
		t.Fatalf("expected *NotCallableError, got %T", evalErr.Err)
	}
}

func asEvalError(err error, target **EvalError) bool {
	e, ok := err.(*EvalError)
	if ok {
		*target = e
	}
	return ok
}
