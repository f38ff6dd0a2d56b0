package evaluator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kajanen/lumilisp/pkg/env"
	"github.com/kajanen/lumilisp/pkg/reader"
	"github.com/kajanen/lumilisp/pkg/values"
)

// scenario is one row of spec §8's end-to-end scenarios table.
type scenario struct {
	name string
	src  string
	want values.Value
}

// TestEndToEndScenarios runs spec §8 scenarios 1-4 and 6 as one
// table-driven suite, using testify for the equality assertions; scenario
// 5 is TestQuoteUnquoteSpliceScenario below.
func TestEndToEndScenarios(t *testing.T) {
	cases := []scenario{
		{
			name: "arithmetic",
			src:  "(+ 1 2 3)",
			want: values.Int(6),
		},
		{
			name: "sequential let bindings",
			src:  "(let (x 2 y 3) (* x y))",
			want: values.Int(6),
		},
		{
			name: "recursive factorial",
			src: `(defn fact (n) (if (= n 0) 1 (* n (fact (- n 1)))))
			      (fact 5)`,
			want: values.Int(120),
		},
		{
			name: "when macro expansion",
			src: `(defmacro when (c & body) (list 'if c (cons 'do body) nil))
			      (when (= 1 1) 7)`,
			want: values.Int(7),
		},
		{
			name: "match picks first accepting clause",
			src:  `(match (list 1 2 3) ((a) "one") ((a b c) "three") (_ "other"))`,
			want: values.Str("three"),
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			forms, err := reader.Read(c.src)
			require.NoError(t, err, "reading %q", c.src)

			root := env.New()
			InstallBuiltins(root)
			eng := New(nil)

			got, err := eng.EvaluateSeq(forms, root)
			require.NoError(t, err, "evaluating %q", c.src)
			require.Equal(t, c.want, got)
		})
	}
}

// TestQuoteUnquoteSpliceScenario covers scenario 5 separately since its
// expected value is a list, not a scalar equality check.
func TestQuoteUnquoteSpliceScenario(t *testing.T) {
	forms, err := reader.Read(`(let (x 2) '(1 ~x ~(inc x) 4))`)
	require.NoError(t, err)

	root := env.New()
	InstallBuiltins(root)
	eng := New(nil)

	got, err := eng.EvaluateSeq(forms, root)
	require.NoError(t, err)

	list, ok := got.(*values.List)
	require.True(t, ok, "expected *values.List, got %T", got)
	require.Equal(t, 4, list.Len())
	for i, want := range []int64{1, 2, 3, 4} {
		require.Equal(t, values.Int(want), list.Elements[i])
	}
}

// TestErrorTaxonomy exercises four of the spec §7 failure kinds (NameError,
// NotCallableError, ArityError, MatchError): each surfaces as the expected
// concrete error type, wrapped in *EvalError.
func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want func(err error) bool
	}{
		{
			name: "unbound symbol is a NameError",
			src:  "undefined-symbol",
			want: func(err error) bool { _, ok := err.(*NameError); return ok },
		},
		{
			name: "calling a non-callable value is a NotCallableError",
			src:  "(1 2 3)",
			want: func(err error) bool { _, ok := err.(*NotCallableError); return ok },
		},
		{
			name: "wrong arity is an ArityError",
			src:  "(defn one (x) x) (one 1 2)",
			want: func(err error) bool { _, ok := err.(*ArityError); return ok },
		},
		{
			name: "no matching clause is a MatchError",
			src:  "(match (list 1 2) ((a) a))",
			want: func(err error) bool { _, ok := err.(*MatchError); return ok },
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			forms, err := reader.Read(c.src)
			require.NoError(t, err)

			root := env.New()
			InstallBuiltins(root)
			eng := New(nil)

			_, evalErr := eng.EvaluateSeq(forms, root)
			require.Error(t, evalErr)

			wrapped, ok := evalErr.(*EvalError)
			require.True(t, ok, "expected *EvalError, got %T", evalErr)
			require.True(t, c.want(wrapped.Err), "unexpected error type %T: %v", wrapped.Err, wrapped.Err)
		})
	}
}
