package hostbridge

import (
	"testing"

	"github.com/kajanen/lumilisp/pkg/values"
)

func TestImportAttrCallRoundTrip(t *testing.T) {
	br := NewReflective()

	obj, err := br.ImportModule("math")
	if err != nil {
		t.Fatalf("import_module failed: %v", err)
	}

	fn, err := br.GetAttr(obj, "sqrt")
	if err != nil {
		t.Fatalf("get_attr failed: %v", err)
	}

	callable, ok := fn.(Callable)
	if !ok {
		t.Fatalf("expected a Callable, got %T", fn)
	}

	result, err := br.Call(callable, []values.Value{values.Float(16)}, nil)
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if result != values.Float(4) {
		t.Fatalf("expected 4, got %v", result)
	}
}

func TestImportUnknownModuleFails(t *testing.T) {
	br := NewReflective()
	if _, err := br.ImportModule("does-not-exist"); err == nil {
		t.Fatalf("expected an error for an unknown module")
	}
}

func TestGetAttrUnknownNameFails(t *testing.T) {
	br := NewReflective()
	obj, _ := br.ImportModule("math")
	if _, err := br.GetAttr(obj, "frobnicate"); err == nil {
		t.Fatalf("expected an error for an unknown attribute")
	}
}
