// Package env implements the evaluator's lexical environment: a chain of
// Scopes mapping Symbol names to Values, with a shared mutable root scope
// for builtins and top-level defs. Grounded on the teacher's
// pkg/evaluator/environment.go, with bindings stored in a dolthub/swiss
// swiss.Map instead of a plain Go map.
package env

import (
	"fmt"

	"github.com/dolthub/swiss"

	"github.com/kajanen/lumilisp/pkg/values"
)

// Scope is one link in the environment chain. The root Scope (Parent ==
// nil) is the only one def/defn/defmacro ever write to.
type Scope struct {
	bindings *swiss.Map[values.Symbol, values.Value]
	Parent   *Scope
}

// New creates a root scope with no parent.
func New() *Scope {
	return &Scope{bindings: swiss.NewMap[values.Symbol, values.Value](uint32(32))}
}

// ChildOf creates a new scope whose parent is the given scope. This is
// env.child_of from spec §4.1 — used for `let` bodies and function-call
// frames.
func ChildOf(parent *Scope) *Scope {
	return &Scope{bindings: swiss.NewMap[values.Symbol, values.Value](uint32(8)), Parent: parent}
}

func (s *Scope) String() string { return fmt.Sprintf("#<scope %p>", s) }

// Root walks the parent chain to the outermost scope.
func (s *Scope) Root() *Scope {
	cur := s
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// Lookup walks from the innermost scope outward; the first binding found
// wins. The second return value is false when the name is unbound
// anywhere in the chain.
func (s *Scope) Lookup(name values.Symbol) (values.Value, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if v, ok := cur.bindings.Get(name); ok {
			return v, true
		}
	}
	return nil, false
}

// DefineRoot inserts (or overwrites) a binding in the root scope. Used by
// def/defn/defmacro, which always target root regardless of where they are
// lexically written — see spec §3.3 and §9's "def scope" open question.
func (s *Scope) DefineRoot(name values.Symbol, v values.Value) {
	s.Root().bindings.Put(name, v)
}

// DefineLocal inserts (or overwrites) a binding in this exact scope. A
// second binding of the same name in one `let`/call frame silently
// overwrites the first, per spec §4.1.
func (s *Scope) DefineLocal(name values.Symbol, v values.Value) {
	s.bindings.Put(name, v)
}

// HasLocal reports whether name is bound in this exact scope (not parents).
func (s *Scope) HasLocal(name values.Symbol) bool {
	_, ok := s.bindings.Get(name)
	return ok
}
