// Package values defines the tagged representation shared by parsed source
// forms and runtime values. The language is homoiconic: a Form produced by
// the reader is already a Value, and quote/macro output round-trips back
// into the evaluator without any conversion step.
package values

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is implemented by every runtime value and every parsed Form.
type Value interface {
	String() string
}

// Nil is the single nil/None value.
type Nil struct{}

func (Nil) String() string { return "nil" }

// Bool is a boolean literal.
type Bool bool

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Int is a signed integer literal.
type Int int64

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// Float is a floating point literal.
type Float float64

func (f Float) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }

// Str is a string literal or runtime string value.
type Str string

func (s Str) String() string { return strconv.Quote(string(s)) }

// Raw returns the string's content without quoting, for builtins that need
// the underlying text rather than its printed representation.
func (s Str) Raw() string { return string(s) }

// Symbol is an identifier. At eval time it is resolved against an
// environment; at runtime it may also be carried as a plain Value (e.g. the
// result of quoting a bare symbol).
type Symbol string

func (s Symbol) String() string { return string(s) }

// List is an ordered sequence of Values, used for both source forms and
// runtime lists/tuples. Lists compare structurally (see Equal).
type List struct {
	Elements []Value
}

// NewList builds a List from the given elements.
func NewList(elements ...Value) *List {
	return &List{Elements: elements}
}

func (l *List) String() string {
	if l == nil || len(l.Elements) == 0 {
		return "()"
	}
	var b strings.Builder
	b.WriteByte('(')
	for i, e := range l.Elements {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(e.String())
	}
	b.WriteByte(')')
	return b.String()
}

// IsEmpty reports whether the list has no elements.
func (l *List) IsEmpty() bool { return l == nil || len(l.Elements) == 0 }

// Len returns the number of elements.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Elements)
}

// First returns the head element, or Nil{} for an empty list.
func (l *List) First() Value {
	if l.IsEmpty() {
		return Nil{}
	}
	return l.Elements[0]
}

// Rest returns a new list of every element but the first.
func (l *List) Rest() *List {
	if l.Len() <= 1 {
		return NewList()
	}
	return NewList(l.Elements[1:]...)
}

// Quoted wraps a Form that a reader-level quote ('x) produced. The
// evaluator's quote handling returns the wrapped Form unevaluated, except
// for any Unquoted child which is spliced in evaluated.
type Quoted struct {
	Form Value
}

func (q *Quoted) String() string { return "'" + q.Form.String() }

// Unquoted marks a ~x escape inside a quoted context.
type Unquoted struct {
	Form Value
}

func (u *Unquoted) String() string { return "~" + u.Form.String() }

// Closure is a user-defined function or macro: captured environment plus
// parameter pattern and body forms. Macro is the same shape flagged
// IsMacro, per spec.
type Closure struct {
	Name    string // empty for anonymous closures
	Params  Value  // a pattern Form: Symbol, *List, or nested
	Body    Value  // a single body Form (multiple bodies are pre-wrapped in `do`)
	Env     any    // always a *env.Scope; typed any to avoid an import cycle
	IsMacro bool
}

func (c *Closure) String() string {
	kind := "fn"
	if c.IsMacro {
		kind = "macro"
	}
	if c.Name != "" {
		return fmt.Sprintf("#<%s:%s>", kind, c.Name)
	}
	return fmt.Sprintf("#<%s>", kind)
}

// Equal reports structural equality for value-typed kinds (Nil, Bool, Int,
// Float, Str, Symbol, List) and identity equality for everything else
// (closures, host handles), per spec §3.2.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Int:
		switch bv := b.(type) {
		case Int:
			return av == bv
		case Float:
			return Float(av) == bv
		}
		return false
	case Float:
		switch bv := b.(type) {
		case Float:
			return av == bv
		case Int:
			return av == Float(bv)
		}
		return false
	case Str:
		bv, ok := b.(Str)
		return ok && av == bv
	case Symbol:
		bv, ok := b.(Symbol)
		return ok && av == bv
	case *List:
		bv, ok := b.(*List)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// IsTruthy implements the spec's truthiness choice: only Nil and Bool(false)
// are falsy. Everything else — including 0, 0.0, the empty list and the
// empty string — is truthy. Host values should be tested through
// hostbridge.Bridge.IsTruthy instead, which may delegate here.
func IsTruthy(v Value) bool {
	switch t := v.(type) {
	case Nil:
		return false
	case Bool:
		return bool(t)
	default:
		return true
	}
}
