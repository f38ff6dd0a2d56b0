package evaluator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kajanen/lumilisp/pkg/destructure"
	"github.com/kajanen/lumilisp/pkg/env"
	"github.com/kajanen/lumilisp/pkg/hostbridge"
	"github.com/kajanen/lumilisp/pkg/values"
)

// Builtin is a root-scope function implemented in Go: arithmetic, list
// operations, I/O, conversions (spec §6.4). It sees only its already
// evaluated arguments, never the environment or engine.
type Builtin struct {
	Name string
	Fn   func(args []values.Value) (values.Value, error)
}

func (b *Builtin) String() string { return fmt.Sprintf("#<builtin:%s>", b.Name) }

// continuation resumes a SpecialBuiltin call after it has suspended to
// evaluate something on the engine. It may itself suspend again (and
// return a further continuation), which is how `map`/`filter` step
// through a list one engine-driven call at a time.
type continuation func(result values.Value) (outcome, continuation)

// SpecialBuiltin is a root-scope function that needs engine/environment
// access beyond its arguments: `macroexpand` (spec §4.4), which must look
// up the macro and run its body, and `map`/`filter` (spec §6.4), which
// must invoke a user closure per element through the engine rather than
// a plain Go call, to stay stack-safe. Fn returns the immediate outcome;
// if cont is non-nil, outcome must be outcomeSuspend and cont is invoked
// with the suspended result.
type SpecialBuiltin struct {
	Name string
	Fn   func(eng *Engine, scope *env.Scope, args []values.Value) (outcome, continuation)
}

func (b *SpecialBuiltin) String() string { return fmt.Sprintf("#<builtin:%s>", b.Name) }

// InstallBuiltins binds every builtin from spec §6.4 into root. Called
// once by the bootstrap loader before the standard-library program runs.
func InstallBuiltins(root *env.Scope) {
	for _, b := range arithmeticBuiltins() {
		root.DefineRoot(values.Symbol(b.Name), b)
	}
	for _, b := range listBuiltins() {
		root.DefineRoot(values.Symbol(b.Name), b)
	}
	for _, b := range miscBuiltins() {
		root.DefineRoot(values.Symbol(b.Name), b)
	}
	root.DefineRoot("macroexpand", &SpecialBuiltin{Name: "macroexpand", Fn: macroexpandFn})
	root.DefineRoot("map", &SpecialBuiltin{Name: "map", Fn: mapFn})
	root.DefineRoot("filter", &SpecialBuiltin{Name: "filter", Fn: filterFn})
}

func builtin(name string, fn func([]values.Value) (values.Value, error)) *Builtin {
	return &Builtin{Name: name, Fn: fn}
}

// --- arithmetic (+ - * / = != < > <= >= not and or) -----------------------

func arithmeticBuiltins() []*Builtin {
	return []*Builtin{
		builtin("+", func(a []values.Value) (values.Value, error) { return foldNumeric("+", a, 0) }),
		builtin("-", func(a []values.Value) (values.Value, error) { return foldNumeric("-", a, 0) }),
		builtin("*", func(a []values.Value) (values.Value, error) { return foldNumeric("*", a, 0) }),
		builtin("/", func(a []values.Value) (values.Value, error) { return foldNumeric("/", a, 0) }),
		builtin("=", cmpBuiltin(func(c int) bool { return c == 0 }, true)),
		builtin("!=", cmpBuiltin(func(c int) bool { return c != 0 }, true)),
		builtin("<", cmpBuiltin(func(c int) bool { return c < 0 }, false)),
		builtin(">", cmpBuiltin(func(c int) bool { return c > 0 }, false)),
		builtin("<=", cmpBuiltin(func(c int) bool { return c <= 0 }, false)),
		builtin(">=", cmpBuiltin(func(c int) bool { return c >= 0 }, false)),
		builtin("not", func(a []values.Value) (values.Value, error) {
			if len(a) != 1 {
				return nil, NewArityError("not: expected 1 argument, got %d", len(a))
			}
			return values.Bool(!values.IsTruthy(a[0])), nil
		}),
		builtin("and", func(a []values.Value) (values.Value, error) {
			for _, v := range a {
				if !values.IsTruthy(v) {
					return values.Bool(false), nil
				}
			}
			return values.Bool(true), nil
		}),
		builtin("or", func(a []values.Value) (values.Value, error) {
			for _, v := range a {
				if values.IsTruthy(v) {
					return values.Bool(true), nil
				}
			}
			return values.Bool(false), nil
		}),
		builtin("inc", func(a []values.Value) (values.Value, error) { return numericUnary("inc", a, 1) }),
		builtin("dec", func(a []values.Value) (values.Value, error) { return numericUnary("dec", a, -1) }),
	}
}

func numericUnary(name string, args []values.Value, delta int64) (values.Value, error) {
	if len(args) != 1 {
		return nil, NewArityError("%s: expected 1 argument, got %d", name, len(args))
	}
	switch n := args[0].(type) {
	case values.Int:
		return n + values.Int(delta), nil
	case values.Float:
		return n + values.Float(delta), nil
	default:
		return nil, NewTypeError("%s: expected a number, got %T", name, args[0])
	}
}

// foldNumeric implements +, -, *, / with the teacher's promotion rule:
// integer arithmetic unless any operand is a Float, in which case the
// whole computation promotes to Float. The one exception is the
// one-argument reciprocal `(/ x)`, which always returns a Float.
func foldNumeric(op string, args []values.Value, _ int) (values.Value, error) {
	if len(args) == 0 {
		switch op {
		case "+":
			return values.Int(0), nil
		case "*":
			return values.Int(1), nil
		default:
			return nil, NewArityError("%s: expected at least 1 argument", op)
		}
	}
	anyFloat := false
	for _, a := range args {
		switch a.(type) {
		case values.Int:
		case values.Float:
			anyFloat = true
		default:
			return nil, NewTypeError("%s: expected a number, got %T", op, a)
		}
	}
	if anyFloat {
		acc := asFloat(args[0])
		if len(args) == 1 {
			return unaryFloat(op, acc)
		}
		for _, a := range args[1:] {
			acc = applyFloat(op, acc, asFloat(a))
		}
		return values.Float(acc), nil
	}
	acc := int64(args[0].(values.Int))
	if len(args) == 1 {
		return unaryInt(op, acc)
	}
	for _, a := range args[1:] {
		v, err := applyInt(op, acc, int64(a.(values.Int)))
		if err != nil {
			return nil, err
		}
		acc = v
	}
	return values.Int(acc), nil
}

func unaryFloat(op string, x float64) (values.Value, error) {
	if op == "-" {
		return values.Float(-x), nil
	}
	if op == "/" {
		if x == 0 {
			return nil, NewTypeError("/: division by zero")
		}
		return values.Float(1 / x), nil
	}
	return values.Float(x), nil
}

func unaryInt(op string, x int64) (values.Value, error) {
	if op == "-" {
		return values.Int(-x), nil
	}
	if op == "/" {
		if x == 0 {
			return nil, NewTypeError("/: division by zero")
		}
		return values.Float(1 / float64(x)), nil
	}
	return values.Int(x), nil
}

func applyFloat(op string, a, b float64) float64 {
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		return a / b
	}
	return 0
}

func applyInt(op string, a, b int64) (int64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, NewTypeError("/: division by zero")
		}
		return a / b, nil
	}
	return 0, nil
}

func asFloat(v values.Value) float64 {
	switch n := v.(type) {
	case values.Int:
		return float64(n)
	case values.Float:
		return float64(n)
	}
	return 0
}

// cmpBuiltin builds a comparison builtin out of a predicate over a
// three-way compare result. allowNonNumeric is true for `=`/`!=`, which also
// accept non-numeric Values via values.Equal.
func cmpBuiltin(accept func(int) bool, allowNonNumeric bool) func([]values.Value) (values.Value, error) {
	return func(args []values.Value) (values.Value, error) {
		if len(args) < 2 {
			return nil, NewArityError("comparison: expected at least 2 arguments, got %d", len(args))
		}
		for i := 0; i+1 < len(args); i++ {
			a, b := args[i], args[i+1]
			if allowNonNumeric {
				if !isNumeric(a) || !isNumeric(b) {
					eq := values.Equal(a, b)
					if !accept(boolToCmp(eq)) {
						return values.Bool(false), nil
					}
					continue
				}
			}
			fa, ok1 := a.(values.Int)
			fb, ok2 := b.(values.Int)
			var cmp int
			if ok1 && ok2 {
				cmp = compareInt(int64(fa), int64(fb))
			} else {
				xa, xerr := toNumeric(a)
				xb, berr := toNumeric(b)
				if xerr != nil || berr != nil {
					return nil, NewTypeError("comparison: expected numbers, got %T and %T", a, b)
				}
				cmp = compareFloat(xa, xb)
			}
			if !accept(cmp) {
				return values.Bool(false), nil
			}
		}
		return values.Bool(true), nil
	}
}

func boolToCmp(eq bool) int {
	if eq {
		return 0
	}
	return 1
}

func isNumeric(v values.Value) bool {
	switch v.(type) {
	case values.Int, values.Float:
		return true
	default:
		return false
	}
}

func toNumeric(v values.Value) (float64, error) {
	switch n := v.(type) {
	case values.Int:
		return float64(n), nil
	case values.Float:
		return float64(n), nil
	}
	return 0, NewTypeError("expected a number, got %T", v)
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// --- lists (list first rest cons concat len range map filter zip) --------

func listBuiltins() []*Builtin {
	return []*Builtin{
		builtin("list", func(a []values.Value) (values.Value, error) { return values.NewList(a...), nil }),
		builtin("first", func(a []values.Value) (values.Value, error) {
			l, err := oneList("first", a)
			if err != nil {
				return nil, err
			}
			return l.First(), nil
		}),
		builtin("rest", func(a []values.Value) (values.Value, error) {
			l, err := oneList("rest", a)
			if err != nil {
				return nil, err
			}
			return l.Rest(), nil
		}),
		builtin("cons", func(a []values.Value) (values.Value, error) {
			if len(a) != 2 {
				return nil, NewArityError("cons: expected 2 arguments, got %d", len(a))
			}
			l, ok := a[1].(*values.List)
			if !ok {
				return nil, NewTypeError("cons: second argument must be a list, got %T", a[1])
			}
			return values.NewList(append([]values.Value{a[0]}, l.Elements...)...), nil
		}),
		builtin("concat", func(a []values.Value) (values.Value, error) {
			var out []values.Value
			for _, v := range a {
				l, ok := v.(*values.List)
				if !ok {
					return nil, NewTypeError("concat: expected a list, got %T", v)
				}
				out = append(out, l.Elements...)
			}
			return values.NewList(out...), nil
		}),
		builtin("len", func(a []values.Value) (values.Value, error) {
			if len(a) != 1 {
				return nil, NewArityError("len: expected 1 argument, got %d", len(a))
			}
			switch v := a[0].(type) {
			case *values.List:
				return values.Int(v.Len()), nil
			case values.Str:
				return values.Int(len(v.Raw())), nil
			default:
				return nil, NewTypeError("len: expected a list or string, got %T", a[0])
			}
		}),
		builtin("range", func(a []values.Value) (values.Value, error) { return rangeFn(a) }),
		builtin("zip", func(a []values.Value) (values.Value, error) { return zipFn(a) }),
	}
}

func oneList(name string, args []values.Value) (*values.List, error) {
	if len(args) != 1 {
		return nil, NewArityError("%s: expected 1 argument, got %d", name, len(args))
	}
	l, ok := args[0].(*values.List)
	if !ok {
		return nil, NewTypeError("%s: expected a list, got %T", name, args[0])
	}
	return l, nil
}

func rangeFn(args []values.Value) (values.Value, error) {
	var start, stop, step int64 = 0, 0, 1
	switch len(args) {
	case 1:
		n, ok := args[0].(values.Int)
		if !ok {
			return nil, NewTypeError("range: expected integers")
		}
		stop = int64(n)
	case 2, 3:
		a, ok1 := args[0].(values.Int)
		b, ok2 := args[1].(values.Int)
		if !ok1 || !ok2 {
			return nil, NewTypeError("range: expected integers")
		}
		start, stop = int64(a), int64(b)
		if len(args) == 3 {
			c, ok := args[2].(values.Int)
			if !ok {
				return nil, NewTypeError("range: expected integers")
			}
			step = int64(c)
		}
	default:
		return nil, NewArityError("range: expected 1 to 3 arguments, got %d", len(args))
	}
	if step == 0 {
		return nil, NewTypeError("range: step must not be 0")
	}
	var out []values.Value
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, values.Int(i))
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, values.Int(i))
		}
	}
	return values.NewList(out...), nil
}

func zipFn(args []values.Value) (values.Value, error) {
	lists := make([]*values.List, len(args))
	minLen := -1
	for i, a := range args {
		l, ok := a.(*values.List)
		if !ok {
			return nil, NewTypeError("zip: expected a list, got %T", a)
		}
		lists[i] = l
		if minLen == -1 || l.Len() < minLen {
			minLen = l.Len()
		}
	}
	if minLen < 0 {
		minLen = 0
	}
	out := make([]values.Value, minLen)
	for i := 0; i < minLen; i++ {
		tuple := make([]values.Value, len(lists))
		for j, l := range lists {
			tuple[j] = l.Elements[i]
		}
		out[i] = values.NewList(tuple...)
	}
	return values.NewList(out...), nil
}

// --- misc (print, conversions, map/filter) --------------------------------

func miscBuiltins() []*Builtin {
	return []*Builtin{
		builtin("print", func(a []values.Value) (values.Value, error) {
			parts := make([]string, len(a))
			for i, v := range a {
				parts[i] = printable(v)
			}
			fmt.Println(strings.Join(parts, " "))
			return values.Nil{}, nil
		}),
		builtin("str", func(a []values.Value) (values.Value, error) {
			if len(a) != 1 {
				return nil, NewArityError("str: expected 1 argument, got %d", len(a))
			}
			return values.Str(printable(a[0])), nil
		}),
		builtin("int", func(a []values.Value) (values.Value, error) {
			if len(a) != 1 {
				return nil, NewArityError("int: expected 1 argument, got %d", len(a))
			}
			switch v := a[0].(type) {
			case values.Int:
				return v, nil
			case values.Float:
				return values.Int(int64(v)), nil
			case values.Str:
				n, err := strconv.ParseInt(strings.TrimSpace(v.Raw()), 10, 64)
				if err != nil {
					return nil, NewTypeError("int: cannot convert %q", v.Raw())
				}
				return values.Int(n), nil
			default:
				return nil, NewTypeError("int: cannot convert %T", a[0])
			}
		}),
		builtin("float", func(a []values.Value) (values.Value, error) {
			if len(a) != 1 {
				return nil, NewArityError("float: expected 1 argument, got %d", len(a))
			}
			switch v := a[0].(type) {
			case values.Float:
				return v, nil
			case values.Int:
				return values.Float(v), nil
			case values.Str:
				f, err := strconv.ParseFloat(strings.TrimSpace(v.Raw()), 64)
				if err != nil {
					return nil, NewTypeError("float: cannot convert %q", v.Raw())
				}
				return values.Float(f), nil
			default:
				return nil, NewTypeError("float: cannot convert %T", a[0])
			}
		}),
	}
}

// printable renders a Value the way `print`/`str` want it: strings
// unquoted, everything else via String().
func printable(v values.Value) string {
	if s, ok := v.(values.Str); ok {
		return s.Raw()
	}
	return v.String()
}

// macroexpandFn implements the `macroexpand` builtin (spec §4.4): given an
// already-evaluated call-form List whose head names a macro, bind the
// macro's parameters to the *unevaluated* argument Forms, run the body,
// and return the resulting Form without evaluating it further.
func macroexpandFn(eng *Engine, scope *env.Scope, args []values.Value) (outcome, continuation) {
	if len(args) != 1 {
		return fail(NewArityError("macroexpand: expected exactly 1 argument, got %d", len(args))), nil
	}
	list, ok := args[0].(*values.List)
	if !ok || list.IsEmpty() {
		return fail(NewTypeError("macroexpand: expected a non-empty list form")), nil
	}
	sym, ok := list.First().(values.Symbol)
	if !ok {
		return fail(NewTypeError("macroexpand: call head must be a symbol")), nil
	}
	head, ok := scope.Lookup(sym)
	if !ok {
		return fail(&NameError{Name: string(sym)}), nil
	}
	closure, ok := head.(*values.Closure)
	if !ok || !closure.IsMacro {
		return fail(NewTypeError("macroexpand: %s is not a macro", sym)), nil
	}
	bindings, err := destructure.Bind(closure.Params, list.Rest())
	if err != nil {
		return fail(NewArityError("macroexpand: %v", err)), nil
	}
	body := ChildOf(closure)
	for _, b := range bindings {
		body.DefineLocal(b.Name, b.Value)
	}
	return suspend(closure.Body, body), func(result values.Value) (outcome, continuation) {
		return done(result), nil
	}
}

// applyOneArg invokes callee with a single already-evaluated argument,
// going through the engine (Suspend) for closures so nested calls stay
// stack-safe, and calling straight through for builtins/host callables.
func applyOneArg(eng *Engine, callee values.Value, arg values.Value) outcome {
	switch c := callee.(type) {
	case *values.Closure:
		bindings, err := destructure.Bind(c.Params, values.NewList(arg))
		if err != nil {
			return fail(NewArityError("%s: %v", closureLabel(c), err))
		}
		body := ChildOf(c)
		for _, b := range bindings {
			body.DefineLocal(b.Name, b.Value)
		}
		return suspend(c.Body, body)

	case *Builtin:
		v, err := c.Fn([]values.Value{arg})
		if err != nil {
			return fail(err)
		}
		return done(v)

	case hostbridge.Callable:
		if eng.Bridge == nil {
			return fail(NewHostError(errNoBridge))
		}
		v, err := eng.Bridge.Call(c, []values.Value{arg}, nil)
		if err != nil {
			return fail(NewHostError(err))
		}
		return done(v)

	default:
		return fail(&NotCallableError{Got: callee.String()})
	}
}

// mapFn implements the `map` builtin: apply callee to each element of a
// list, collecting results in order, one engine-driven call at a time.
func mapFn(eng *Engine, scope *env.Scope, args []values.Value) (outcome, continuation) {
	if len(args) != 2 {
		return fail(NewArityError("map: expected 2 arguments (fn, list), got %d", len(args))), nil
	}
	callee := args[0]
	list, ok := args[1].(*values.List)
	if !ok {
		return fail(NewTypeError("map: second argument must be a list, got %T", args[1])), nil
	}
	elems := list.Elements
	results := make([]values.Value, len(elems))

	var step func(i int, pending bool, prevResult values.Value) (outcome, continuation)
	step = func(i int, pending bool, prevResult values.Value) (outcome, continuation) {
		if pending {
			results[i-1] = prevResult
		}
		for i < len(elems) {
			out := applyOneArg(eng, callee, elems[i])
			if out.kind == outcomeFail {
				return out, nil
			}
			if out.kind == outcomeDone {
				results[i] = out.value
				i++
				continue
			}
			next := i + 1
			return out, func(r values.Value) (outcome, continuation) {
				return step(next, true, r)
			}
		}
		return done(values.NewList(results...)), nil
	}
	return step(0, false, nil)
}

// filterFn implements the `filter` builtin: keep elements for which
// calling callee produces a truthy Value.
func filterFn(eng *Engine, scope *env.Scope, args []values.Value) (outcome, continuation) {
	if len(args) != 2 {
		return fail(NewArityError("filter: expected 2 arguments (fn, list), got %d", len(args))), nil
	}
	callee := args[0]
	list, ok := args[1].(*values.List)
	if !ok {
		return fail(NewTypeError("filter: second argument must be a list, got %T", args[1])), nil
	}
	elems := list.Elements
	var kept []values.Value

	var step func(i int, pending bool, prevResult values.Value) (outcome, continuation)
	step = func(i int, pending bool, prevResult values.Value) (outcome, continuation) {
		if pending && values.IsTruthy(prevResult) {
			kept = append(kept, elems[i-1])
		}
		for i < len(elems) {
			out := applyOneArg(eng, callee, elems[i])
			if out.kind == outcomeFail {
				return out, nil
			}
			if out.kind == outcomeDone {
				if values.IsTruthy(out.value) {
					kept = append(kept, elems[i])
				}
				i++
				continue
			}
			next := i + 1
			return out, func(r values.Value) (outcome, continuation) {
				return step(next, true, r)
			}
		}
		return done(values.NewList(kept...)), nil
	}
	return step(0, false, nil)
}
