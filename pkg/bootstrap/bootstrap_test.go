package bootstrap

import (
	"testing"

	"github.com/kajanen/lumilisp/pkg/env"
	"github.com/kajanen/lumilisp/pkg/evaluator"
	"github.com/kajanen/lumilisp/pkg/reader"
	"github.com/kajanen/lumilisp/pkg/values"
)

func evalOne(t *testing.T, eng *evaluator.Engine, root *env.Scope, src string) values.Value {
	t.Helper()
	form, err := reader.ReadOne(src)
	if err != nil {
		t.Fatalf("reader.ReadOne(%q): %v", src, err)
	}
	v, err := eng.Evaluate(form, root)
	if err != nil {
		t.Fatalf("eval(%q): %v", src, err)
	}
	return v
}

func TestNewBootstrapsStandardLibrary(t *testing.T) {
	root, eng, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := root.Lookup("reduce"); !ok {
		t.Fatalf("expected root scope to define reduce after bootstrap")
	}

	if got := evalOne(t, eng, root, `(when (= 1 1) "yes")`); got != values.Str("yes") {
		t.Fatalf("when: got %v, want \"yes\"", got)
	}

	got := evalOne(t, eng, root, `(reverse (list 1 2 3))`)
	list, ok := got.(*values.List)
	if !ok || list.Len() != 3 {
		t.Fatalf("reverse: got %v", got)
	}
	for i, want := range []int64{3, 2, 1} {
		if list.Elements[i] != values.Int(want) {
			t.Fatalf("reverse element %d: got %v, want %d", i, list.Elements[i], want)
		}
	}

	if got := evalOne(t, eng, root, `(cond ((= 1 2) "a") ((= 1 1) "b") (_ "c"))`); got != values.Str("b") {
		t.Fatalf("cond: got %v, want \"b\"", got)
	}

	if got := evalOne(t, eng, root, `(nth (take 3 (drop 1 (list 10 20 30 40 50))) 1)`); got != values.Int(30) {
		t.Fatalf("nth/take/drop: got %v, want 30", got)
	}

	if got := evalOne(t, eng, root, `((compose (partial + 1) (# (* %0 2))) 5)`); got != values.Int(11) {
		t.Fatalf("compose/partial: got %v, want 11", got)
	}
}

func TestLoadLayersOntoBootstrappedScope(t *testing.T) {
	root, eng, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := Load(eng, root, `(defn square (x) (* x x))`); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := evalOne(t, eng, root, `(square 6)`); got != values.Int(36) {
		t.Fatalf("got %v, want 36", got)
	}
}
