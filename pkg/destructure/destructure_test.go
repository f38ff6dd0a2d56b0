package destructure

import (
	"testing"

	"github.com/kajanen/lumilisp/pkg/values"
)

func TestBindSymbolBindsWholeValue(t *testing.T) {
	bs, err := Bind(values.Symbol("x"), values.Int(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bs) != 1 || bs[0].Name != "x" || bs[0].Value != values.Int(7) {
		t.Fatalf("unexpected bindings: %+v", bs)
	}
}

func TestBindListPositional(t *testing.T) {
	pattern := values.NewList(values.Symbol("a"), values.Symbol("b"))
	value := values.NewList(values.Int(1), values.Int(2))

	bs, err := Bind(pattern, value)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bs) != 2 || bs[0].Name != "a" || bs[1].Name != "b" {
		t.Fatalf("unexpected bindings: %+v", bs)
	}
}

func TestBindListArityMismatch(t *testing.T) {
	pattern := values.NewList(values.Symbol("a"), values.Symbol("b"))
	value := values.NewList(values.Int(1))

	_, err := Bind(pattern, value)
	if _, ok := err.(*Mismatch); !ok {
		t.Fatalf("expected *Mismatch, got %v (%T)", err, err)
	}
}

func TestBindRestCapturesTail(t *testing.T) {
	pattern := values.NewList(values.Symbol("a"), Rest, values.Symbol("rest"))
	value := values.NewList(values.Int(1), values.Int(2), values.Int(3))

	bs, err := Bind(pattern, value)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bs) != 2 {
		t.Fatalf("expected 2 bindings (a, rest), got %d", len(bs))
	}
	if bs[0].Name != "a" || bs[0].Value != values.Int(1) {
		t.Fatalf("unexpected first binding: %+v", bs[0])
	}
	restList, ok := bs[1].Value.(*values.List)
	if !ok || restList.Len() != 2 {
		t.Fatalf("expected rest to be a 2-element list, got %v", bs[1].Value)
	}
}

func TestBindRestWithNoTailElements(t *testing.T) {
	pattern := values.NewList(values.Symbol("a"), Rest, values.Symbol("rest"))
	value := values.NewList(values.Int(1))

	bs, err := Bind(pattern, value)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	restList := bs[1].Value.(*values.List)
	if !restList.IsEmpty() {
		t.Fatalf("expected empty rest list, got %v", restList)
	}
}

func TestBindNestedListPattern(t *testing.T) {
	pattern := values.NewList(
		values.NewList(values.Symbol("a"), values.Symbol("b")),
		values.Symbol("c"),
	)
	value := values.NewList(
		values.NewList(values.Int(1), values.Int(2)),
		values.Int(3),
	)

	bs, err := Bind(pattern, value)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bs) != 3 {
		t.Fatalf("expected 3 bindings, got %d: %+v", len(bs), bs)
	}
}

func TestBindMismatchNotAList(t *testing.T) {
	pattern := values.NewList(values.Symbol("a"))
	_, err := Bind(pattern, values.Int(5))
	if _, ok := err.(*Mismatch); !ok {
		t.Fatalf("expected *Mismatch, got %v", err)
	}
}
