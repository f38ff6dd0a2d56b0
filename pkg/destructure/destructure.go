// Package destructure implements the evaluator's pattern binder: it binds
// a parameter/pattern Form against a Value, recursively, producing
// name->value pairs or a mismatch signal. Grounded on the teacher's
// parameter-binding loops in pkg/core/eval_special_forms.go and
// pkg/kernel/eval.go (UserFunction.Call), generalized to nested patterns
// and `&`-rest per spec §4.2.
package destructure

import (
	"fmt"

	"github.com/kajanen/lumilisp/pkg/values"
)

// Rest is the distinguished symbol marking a varargs tail in a list
// pattern: (a b & rest).
const Rest = values.Symbol("&")

// Binding is one name->value pair produced by a successful match.
type Binding struct {
	Name  values.Symbol
	Value values.Value
}

// Mismatch reports that a pattern did not accept a value. It is not a Go
// error in the exceptional sense: `match` uses it to try the next clause,
// while function/macro call sites turn it into a fatal ArityError.
type Mismatch struct {
	Reason string
}

func (m *Mismatch) Error() string { return m.Reason }

// Bind matches pattern against value. On success it returns the bindings
// to install, in left-to-right order. On failure it returns a *Mismatch.
func Bind(pattern, value values.Value) ([]Binding, error) {
	switch p := pattern.(type) {
	case values.Symbol:
		return []Binding{{Name: p, Value: value}}, nil

	case *values.List:
		list, ok := value.(*values.List)
		if !ok {
			return nil, &Mismatch{Reason: fmt.Sprintf("expected a list to destructure, got %T", value)}
		}
		return bindList(p, list)

	default:
		return nil, &Mismatch{Reason: fmt.Sprintf("pattern must be a symbol or list, got %T", pattern)}
	}
}

func bindList(pattern *values.List, value *values.List) ([]Binding, error) {
	elems := pattern.Elements

	restIdx := -1
	for i, e := range elems {
		if sym, ok := e.(values.Symbol); ok && sym == Rest {
			restIdx = i
			break
		}
	}

	if restIdx == -1 {
		if len(elems) != value.Len() {
			return nil, &Mismatch{Reason: fmt.Sprintf("expected %d elements, got %d", len(elems), value.Len())}
		}
		var out []Binding
		for i, sub := range elems {
			bs, err := Bind(sub, value.Elements[i])
			if err != nil {
				return nil, err
			}
			out = append(out, bs...)
		}
		return out, nil
	}

	// (& rest-pattern) must be the final two pattern elements.
	if restIdx != len(elems)-2 {
		return nil, &Mismatch{Reason: "'&' must be followed by exactly one rest pattern as the last element"}
	}
	fixed := elems[:restIdx]
	restPattern := elems[restIdx+1]

	if value.Len() < len(fixed) {
		return nil, &Mismatch{Reason: fmt.Sprintf("expected at least %d elements, got %d", len(fixed), value.Len())}
	}

	var out []Binding
	for i, sub := range fixed {
		bs, err := Bind(sub, value.Elements[i])
		if err != nil {
			return nil, err
		}
		out = append(out, bs...)
	}

	rest := values.NewList(value.Elements[len(fixed):]...)
	bs, err := Bind(restPattern, rest)
	if err != nil {
		return nil, err
	}
	return append(out, bs...), nil
}
