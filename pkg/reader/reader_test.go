package reader

import (
	"testing"

	"github.com/kajanen/lumilisp/pkg/values"
)

func TestReadAtoms(t *testing.T) {
	cases := map[string]values.Value{
		"42":       values.Int(42),
		"-7":       values.Int(-7),
		"3.14":     values.Float(3.14),
		`"hi"`:     values.Str("hi"),
		"true":     values.Bool(true),
		"false":    values.Bool(false),
		"nil":      values.Nil{},
		"foo":      values.Symbol("foo"),
		"+":        values.Symbol("+"),
	}
	for src, want := range cases {
		got, err := ReadOne(src)
		if err != nil {
			t.Fatalf("ReadOne(%q): %v", src, err)
		}
		if !values.Equal(got, want) {
			t.Fatalf("ReadOne(%q) = %v, want %v", src, got, want)
		}
	}
}

func TestReadList(t *testing.T) {
	got, err := ReadOne("(+ 1 2 3)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, ok := got.(*values.List)
	if !ok || list.Len() != 4 {
		t.Fatalf("expected a 4-element list, got %v", got)
	}
}

func TestReadQuoteAndUnquote(t *testing.T) {
	got, err := ReadOne("'(1 ~x)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q, ok := got.(*values.Quoted)
	if !ok {
		t.Fatalf("expected *values.Quoted, got %T", got)
	}
	list := q.Form.(*values.List)
	if list.Len() != 2 {
		t.Fatalf("expected 2 elements, got %d", list.Len())
	}
	if _, ok := list.Elements[1].(*values.Unquoted); !ok {
		t.Fatalf("expected second element to be Unquoted, got %T", list.Elements[1])
	}
}

func TestReadMultipleTopLevelForms(t *testing.T) {
	forms, err := Read("1 2 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(forms) != 3 {
		t.Fatalf("expected 3 forms, got %d", len(forms))
	}
}

func TestReadLineComments(t *testing.T) {
	forms, err := Read("; a comment\n1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(forms) != 1 || forms[0] != values.Int(1) {
		t.Fatalf("expected [1], got %v", forms)
	}
}

func TestReadUnterminatedListErrors(t *testing.T) {
	if _, err := Read("(+ 1 2"); err == nil {
		t.Fatalf("expected an error for an unterminated list")
	}
}
