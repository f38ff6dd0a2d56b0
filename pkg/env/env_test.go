package env

import (
	"testing"

	"github.com/kajanen/lumilisp/pkg/values"
)

func TestLookupWalksParentChain(t *testing.T) {
	root := New()
	root.DefineRoot("x", values.Int(1))

	child := ChildOf(root)
	child.DefineLocal("y", values.Int(2))

	if v, ok := child.Lookup("x"); !ok || v != values.Int(1) {
		t.Fatalf("expected to find x=1 via parent chain, got %v %v", v, ok)
	}
	if v, ok := child.Lookup("y"); !ok || v != values.Int(2) {
		t.Fatalf("expected to find y=2 locally, got %v %v", v, ok)
	}
	if _, ok := root.Lookup("y"); ok {
		t.Fatalf("root scope must not see child-local binding y")
	}
}

func TestInnermostBindingWins(t *testing.T) {
	root := New()
	root.DefineRoot("x", values.Int(1))

	child := ChildOf(root)
	child.DefineLocal("x", values.Int(2))

	if v, _ := child.Lookup("x"); v != values.Int(2) {
		t.Fatalf("expected innermost binding to win, got %v", v)
	}
	if v, _ := root.Lookup("x"); v != values.Int(1) {
		t.Fatalf("expected outer scope unaffected, got %v", v)
	}
}

func TestDefineRootAlwaysTargetsRoot(t *testing.T) {
	root := New()
	child := ChildOf(root)
	grandchild := ChildOf(child)

	grandchild.DefineRoot("z", values.Int(42))

	if grandchild.HasLocal("z") {
		t.Fatalf("DefineRoot must not create a local binding in the writing scope")
	}
	if v, ok := root.Lookup("z"); !ok || v != values.Int(42) {
		t.Fatalf("expected z to land in root scope, got %v %v", v, ok)
	}
}

func TestSecondLocalBindingOverwrites(t *testing.T) {
	s := New()
	s.DefineLocal("x", values.Int(1))
	s.DefineLocal("x", values.Int(2))

	if v, _ := s.Lookup("x"); v != values.Int(2) {
		t.Fatalf("expected second binding to overwrite first, got %v", v)
	}
}
