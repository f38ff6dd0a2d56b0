package evaluator

import (
	"github.com/kajanen/lumilisp/pkg/destructure"
	"github.com/kajanen/lumilisp/pkg/env"
	"github.com/kajanen/lumilisp/pkg/hostbridge"
	"github.com/kajanen/lumilisp/pkg/values"
)

// quoteFrame implements `quote` and the reader's `'x` sugar (spec §4.3,
// §6.4a): the argument Forms are returned unevaluated, except that any
// Unquoted child anywhere inside them is evaluated in scope and spliced
// into the result. The static tree walk (collectUnquotes/substitute) uses
// plain Go recursion bounded by how deeply the programmer nested the
// quoted literal in source — the same justification as the reader's own
// recursive-descent parse, not the unbounded user-recursion the frame
// stack exists to guard against. Evaluating each Unquoted child, which
// can run arbitrary user code, goes through the engine's Suspend so that
// part stays stack-safe.
type quoteFrame struct {
	forms     []values.Value
	scope     *env.Scope
	single    bool
	collected bool
	unquotes  []*values.Unquoted
	results   []values.Value
	next      int
	awaiting  bool
}

func (f *quoteFrame) step(eng *Engine) outcome {
	if !f.collected {
		for _, form := range f.forms {
			f.unquotes = append(f.unquotes, collectUnquotes(form)...)
		}
		f.results = make([]values.Value, len(f.unquotes))
		f.collected = true
	}
	if f.awaiting {
		f.results[f.next-1] = eng.result
		f.awaiting = false
	}
	if f.next < len(f.unquotes) {
		target := f.unquotes[f.next].Form
		f.next++
		f.awaiting = true
		return suspend(target, f.scope)
	}

	idx := 0
	substituted := make([]values.Value, len(f.forms))
	for i, form := range f.forms {
		substituted[i] = substitute(form, f.results, &idx)
	}
	if f.single {
		return done(substituted[0])
	}
	return done(values.NewList(substituted...))
}

func (f *quoteFrame) describe() (values.Value, string) {
	if f.single {
		return &values.Quoted{Form: f.forms[0]}, ""
	}
	return values.NewList(f.forms...), "quote"
}

func collectUnquotes(form values.Value) []*values.Unquoted {
	switch f := form.(type) {
	case *values.Unquoted:
		return []*values.Unquoted{f}
	case *values.List:
		var out []*values.Unquoted
		for _, e := range f.Elements {
			out = append(out, collectUnquotes(e)...)
		}
		return out
	default:
		return nil
	}
}

func substitute(form values.Value, results []values.Value, idx *int) values.Value {
	switch f := form.(type) {
	case *values.Unquoted:
		v := results[*idx]
		*idx++
		return v
	case *values.List:
		elems := make([]values.Value, len(f.Elements))
		for i, e := range f.Elements {
			elems[i] = substitute(e, results, idx)
		}
		return values.NewList(elems...)
	default:
		return form
	}
}

// invokeFrame is a function or macro call (spec §4.4, §4.5): evaluate the
// head, branch on whether it names a macro, then either evaluate each
// argument (function call) or bind the raw argument Forms (macro call)
// before entering the body/expansion in tail position.
type invokeFrame struct {
	headForm values.Value
	argForms []values.Value
	scope    *env.Scope

	pc       int
	head     values.Value
	args     []values.Value
	awaiting bool // an arg suspend is pending; eng.result is its value
	cont     continuation
}

const (
	invokeHead = iota
	invokeBranch
	invokeArgs
	invokeMacroResult
	invokeContinuation
)

func (f *invokeFrame) step(eng *Engine) outcome {
	switch f.pc {
	case invokeHead:
		f.pc = invokeBranch
		return suspend(f.headForm, f.scope)

	case invokeBranch:
		f.head = eng.result
		if closure, ok := f.head.(*values.Closure); ok && closure.IsMacro {
			bindings, err := destructure.Bind(closure.Params, values.NewList(f.argForms...))
			if err != nil {
				return fail(NewArityError("macro %s: %v", closureLabel(closure), err))
			}
			body := ChildOf(closure)
			for _, b := range bindings {
				body.DefineLocal(b.Name, b.Value)
			}
			f.pc = invokeMacroResult
			return suspend(closure.Body, body)
		}
		f.pc = invokeArgs
		return f.stepArgs(eng)

	case invokeArgs:
		return f.stepArgs(eng)

	case invokeMacroResult:
		return tail(eng.result, f.scope)

	case invokeContinuation:
		out, cont := f.cont(eng.result)
		f.cont = cont
		return out
	}
	return fail(NewInternalError("invokeFrame: unreachable pc %d", f.pc))
}

// stepArgs evaluates argForms left to right, recording each suspended
// result before requesting the next, then applies the call once all
// arguments are in hand.
func (f *invokeFrame) stepArgs(eng *Engine) outcome {
	if f.awaiting {
		f.args = append(f.args, eng.result)
		f.awaiting = false
	}
	if len(f.args) < len(f.argForms) {
		f.awaiting = true
		return suspend(f.argForms[len(f.args)], f.scope)
	}
	return f.apply(eng)
}

func (f *invokeFrame) apply(eng *Engine) outcome {
	switch callee := f.head.(type) {
	case *values.Closure:
		bindings, err := destructure.Bind(callee.Params, values.NewList(f.args...))
		if err != nil {
			return fail(NewArityError("%s: %v", closureLabel(callee), err))
		}
		body := ChildOf(callee)
		for _, b := range bindings {
			body.DefineLocal(b.Name, b.Value)
		}
		return tail(callee.Body, body)

	case *Builtin:
		v, err := callee.Fn(f.args)
		if err != nil {
			return fail(err)
		}
		return done(v)

	case *SpecialBuiltin:
		out, cont := callee.Fn(eng, f.scope, f.args)
		f.cont = cont
		if cont != nil {
			f.pc = invokeContinuation
		}
		return out

	case hostbridge.Callable:
		if eng.Bridge == nil {
			return fail(NewHostError(errNoBridge))
		}
		v, err := eng.Bridge.Call(callee, f.args, nil)
		if err != nil {
			return fail(NewHostError(err))
		}
		return done(v)

	default:
		return fail(&NotCallableError{Got: f.head.String()})
	}
}

func (f *invokeFrame) describe() (values.Value, string) {
	elems := append([]values.Value{f.headForm}, f.argForms...)
	note := ""
	if closure, ok := f.head.(*values.Closure); ok && closure.Name != "" {
		note = closure.Name
	}
	return values.NewList(elems...), note
}

func closureLabel(c *values.Closure) string {
	if c.Name != "" {
		return c.Name
	}
	if c.IsMacro {
		return "<anonymous macro>"
	}
	return "<anonymous fn>"
}

// ChildOf creates a child scope of closure's captured environment, for
// binding its parameters before entering its body.
func ChildOf(closure *values.Closure) *env.Scope {
	parent, _ := closure.Env.(*env.Scope)
	return env.ChildOf(parent)
}
