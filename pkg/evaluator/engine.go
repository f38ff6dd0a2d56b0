// Package evaluator is the heart of the interpreter: the special-form
// dispatcher, the macro expander, the iterative (stack-safe) engine, and
// the call-trace recorder described in spec §4. The engine replaces
// host-language recursion with an explicit frame stack (§4.5): every
// sub-evaluation is either pushed as a child frame (Suspend) or, in tail
// position, swapped in for the current frame (Tail) so that deep user
// recursion grows a heap-allocated Go slice, never the Go call stack.
package evaluator

import (
	"github.com/kajanen/lumilisp/pkg/env"
	"github.com/kajanen/lumilisp/pkg/hostbridge"
	"github.com/kajanen/lumilisp/pkg/values"
)

// outcomeKind is the tag of a frame's step result, per spec §4.5 step 3.
type outcomeKind int

const (
	outcomeDone outcomeKind = iota
	outcomeSuspend
	outcomeTail
	outcomeFail
)

type outcome struct {
	kind  outcomeKind
	value values.Value // outcomeDone
	form  values.Value // outcomeSuspend / outcomeTail
	scope *env.Scope   // outcomeSuspend / outcomeTail
	err   error        // outcomeFail
}

func done(v values.Value) outcome                 { return outcome{kind: outcomeDone, value: v} }
func suspend(f values.Value, s *env.Scope) outcome { return outcome{kind: outcomeSuspend, form: f, scope: s} }
func tail(f values.Value, s *env.Scope) outcome    { return outcome{kind: outcomeTail, form: f, scope: s} }
func fail(err error) outcome                       { return outcome{kind: outcomeFail, err: err} }

// frame is one entry on the evaluator stack (spec §3.4): a Form, the
// Environment to evaluate it in, and enough state to resume after a child
// sub-evaluation completes. step is called with the previously-produced
// result already stored in the engine's result register.
type frame interface {
	step(eng *Engine) outcome
	// describe returns the Form this frame is evaluating, for the call
	// trace, and an optional human-readable note (e.g. a function name).
	describe() (form values.Value, note string)
}

// Engine is one evaluator instance: a stack of frames and a result
// register, run by a single cooperative loop (spec §5 — no background
// tasks, no user-visible concurrency).
type Engine struct {
	stack  []frame
	result values.Value
	Bridge hostbridge.Bridge
}

// New creates an Engine bound to the given HostBridge. A nil Bridge is
// valid as long as the program never reaches `.`, `pyimport`, or
// `pyimport_from`.
func New(bridge hostbridge.Bridge) *Engine {
	return &Engine{Bridge: bridge}
}

// Evaluate runs form to completion in scope and returns the resulting
// Value, or an error carrying the call trace captured at the point of
// failure (spec §4.6, §6.3's `evaluate(form, env) -> Value | Error`).
func (eng *Engine) Evaluate(form values.Value, scope *env.Scope) (values.Value, error) {
	eng.stack = append(eng.stack[:0], start(form, scope))
	eng.result = nil
	return eng.run()
}

// EvaluateSeq evaluates a sequence of top-level forms as if wrapped in
// `(do ...)` (spec §6.1) and returns the last value.
func (eng *Engine) EvaluateSeq(forms []values.Value, scope *env.Scope) (values.Value, error) {
	var result values.Value = values.Nil{}
	for _, f := range forms {
		v, err := eng.Evaluate(f, scope)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

// run is the engine loop of spec §4.5: advance the top frame, act on its
// outcome, repeat until the stack is empty.
func (eng *Engine) run() (values.Value, error) {
	for {
		if len(eng.stack) == 0 {
			return eng.result, nil
		}
		top := eng.stack[len(eng.stack)-1]
		out := top.step(eng)

		switch out.kind {
		case outcomeDone:
			eng.stack = eng.stack[:len(eng.stack)-1]
			eng.result = out.value

		case outcomeSuspend:
			eng.stack = append(eng.stack, start(out.form, out.scope))

		case outcomeTail:
			eng.stack[len(eng.stack)-1] = start(out.form, out.scope)

		case outcomeFail:
			trace := captureTrace(eng.stack)
			if ie, ok := out.err.(*InternalError); ok && ie.Trace == nil {
				ie.Trace = trace.Lines
			}
			return nil, &EvalError{Err: out.err, Trace: trace}
		}
	}
}

// start builds the initial frame for a Form, dispatching on its shape:
// literals are self-evaluating, symbols resolve through the environment,
// lists either name a special form or are a macro/function invocation.
// This is the single entry point spec §4.5 describes per Form variant.
func start(form values.Value, scope *env.Scope) frame {
	switch f := form.(type) {
	case *values.List:
		if f.IsEmpty() {
			return &literalFrame{value: f}
		}
		if sym, ok := f.First().(values.Symbol); ok {
			if builder, ok := specialForms[sym]; ok {
				return builder(f.Rest(), scope)
			}
		}
		return &invokeFrame{headForm: f.First(), argForms: f.Rest().Elements, scope: scope}

	case values.Symbol:
		return &symbolFrame{sym: f, scope: scope}

	case *values.Quoted:
		return &quoteFrame{forms: []values.Value{f.Form}, scope: scope, single: true}

	case *values.Unquoted:
		return &failFrame{err: NewTypeError("unquote (~) used outside of a quoted context")}

	default:
		// Int, Float, Str, Bool, Nil, and any already-evaluated runtime
		// value (closures, host handles, builtins) are self-evaluating.
		return &literalFrame{value: form}
	}
}

// failFrame immediately fails; used for forms that are never valid as a
// standalone evaluation target.
type failFrame struct{ err error }

func (f *failFrame) step(*Engine) outcome                          { return fail(f.err) }
func (f *failFrame) describe() (values.Value, string)              { return values.Nil{}, "" }

// literalFrame produces its value immediately; covers self-evaluating
// literals and the empty list.
type literalFrame struct{ value values.Value }

func (f *literalFrame) step(*Engine) outcome             { return done(f.value) }
func (f *literalFrame) describe() (values.Value, string) { return f.value, "" }

// symbolFrame resolves a Symbol against the environment (spec §4.5).
type symbolFrame struct {
	sym   values.Symbol
	scope *env.Scope
}

func (f *symbolFrame) step(*Engine) outcome {
	v, ok := f.scope.Lookup(f.sym)
	if !ok {
		return fail(&NameError{Name: string(f.sym)})
	}
	return done(v)
}

func (f *symbolFrame) describe() (values.Value, string) { return f.sym, "" }
