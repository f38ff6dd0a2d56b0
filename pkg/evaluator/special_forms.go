package evaluator

import (
	"strconv"
	"strings"

	"github.com/kajanen/lumilisp/pkg/destructure"
	"github.com/kajanen/lumilisp/pkg/env"
	"github.com/kajanen/lumilisp/pkg/hostbridge"
	"github.com/kajanen/lumilisp/pkg/values"
)

// specialForms maps the fixed set of reserved head symbols (spec §2
// component 4, §4.3) to frame constructors. Lookup happens before macro
// resolution, so a special form can never be shadowed by a user binding
// of the same name.
var specialForms = map[values.Symbol]func(args *values.List, scope *env.Scope) frame{
	"if":            newIfFrame,
	"let":           newLetFrame,
	"def":           func(a *values.List, s *env.Scope) frame { return newDefFrame(a, s, false) },
	"defl":          func(a *values.List, s *env.Scope) frame { return newDefFrame(a, s, true) },
	"defn":          newDefnFrame,
	"defmacro":      newDefmacroFrame,
	"fn":            newFnFrame,
	"#":             newAnonFrame,
	"do":            newDoFrame,
	"quote":         newQuoteSpecialFrame,
	"comment":       newCommentFrame,
	".":             newDotFrame,
	"$":             newDollarFrame,
	"pyimport":      newPyimportFrame,
	"pyimport_from": newPyimportFromFrame,
	"match":         newMatchFrame,
}

// --- if --------------------------------------------------------------

type ifFrame struct {
	cond, then, els values.Value
	scope           *env.Scope
	pc              int
}

func newIfFrame(args *values.List, scope *env.Scope) frame {
	if args.Len() != 3 {
		return &failFrame{err: NewArityError("if: expected 3 forms (cond then else), got %d", args.Len())}
	}
	return &ifFrame{cond: args.Elements[0], then: args.Elements[1], els: args.Elements[2], scope: scope}
}

func (f *ifFrame) step(eng *Engine) outcome {
	if f.pc == 0 {
		f.pc = 1
		return suspend(f.cond, f.scope)
	}
	if values.IsTruthy(eng.result) {
		return tail(f.then, f.scope)
	}
	return tail(f.els, f.scope)
}

func (f *ifFrame) describe() (values.Value, string) {
	return values.NewList(values.Symbol("if"), f.cond, f.then, f.els), ""
}

// --- let ---------------------------------------------------------------

type letFrame struct {
	pairs    []values.Value // p1 e1 p2 e2 ...
	body     values.Value
	inner    *env.Scope
	i        int // index into pairs, always even
	awaiting bool
}

func newLetFrame(args *values.List, scope *env.Scope) frame {
	if args.Len() < 1 {
		return &failFrame{err: NewArityError("let: missing bindings form")}
	}
	bindings, ok := args.Elements[0].(*values.List)
	if !ok {
		return &failFrame{err: NewTypeError("let: bindings must be a list")}
	}
	if bindings.Len()%2 != 0 {
		return &failFrame{err: NewArityError("let: bindings must come in pattern/expr pairs")}
	}
	body := wrapBody(args.Elements[1:])
	return &letFrame{pairs: bindings.Elements, body: body, inner: env.ChildOf(scope)}
}

func (f *letFrame) step(eng *Engine) outcome {
	if f.awaiting {
		pattern := f.pairs[f.i]
		f.i += 2
		bindings, err := destructure.Bind(pattern, eng.result)
		if err != nil {
			return fail(NewArityError("let: %v", err))
		}
		for _, b := range bindings {
			f.inner.DefineLocal(b.Name, b.Value)
		}
		f.awaiting = false
	}
	if f.i < len(f.pairs) {
		expr := f.pairs[f.i+1]
		f.awaiting = true
		return suspend(expr, f.inner)
	}
	return tail(f.body, f.inner)
}

func (f *letFrame) describe() (values.Value, string) {
	return values.NewList(values.Symbol("let"), values.NewList(f.pairs...), f.body), ""
}

// --- def / defl ----------------------------------------------------------

type defFrame struct {
	pairs []values.Value // n1 e1 n2 e2 ...
	scope *env.Scope
	local bool
	i     int
}

func newDefFrame(args *values.List, scope *env.Scope, local bool) frame {
	if args.Len()%2 != 0 || args.Len() == 0 {
		word := "def"
		if local {
			word = "defl"
		}
		return &failFrame{err: NewArityError("%s: expected name/expr pairs", word)}
	}
	return &defFrame{pairs: args.Elements, scope: scope, local: local}
}

func (f *defFrame) step(eng *Engine) outcome {
	if f.i > 0 {
		name := f.pairs[f.i-2].(values.Symbol)
		if f.local {
			f.scope.DefineLocal(name, eng.result)
		} else {
			f.scope.DefineRoot(name, eng.result)
		}
		if f.i >= len(f.pairs) {
			return done(eng.result)
		}
	}
	if _, ok := f.pairs[f.i].(values.Symbol); !ok {
		return fail(NewTypeError("def: binding name must be a symbol, got %T", f.pairs[f.i]))
	}
	expr := f.pairs[f.i+1]
	f.i += 2
	return suspend(expr, f.scope)
}

func (f *defFrame) describe() (values.Value, string) {
	head := values.Symbol("def")
	if f.local {
		head = "defl"
	}
	return values.NewList(append([]values.Value{head}, f.pairs...)...), ""
}

// --- defn / defmacro (synchronous: build closure, bind in root) ---------

func newDefnFrame(args *values.List, scope *env.Scope) frame {
	return newClosureDefFrame(args, scope, false)
}

func newDefmacroFrame(args *values.List, scope *env.Scope) frame {
	return newClosureDefFrame(args, scope, true)
}

func newClosureDefFrame(args *values.List, scope *env.Scope, macro bool) frame {
	word := "defn"
	if macro {
		word = "defmacro"
	}
	if args.Len() < 2 {
		return &failFrame{err: NewArityError("%s: expected a name, a parameter list, and a body", word)}
	}
	name, ok := args.Elements[0].(values.Symbol)
	if !ok {
		return &failFrame{err: NewTypeError("%s: name must be a symbol", word)}
	}
	closure := &values.Closure{
		Name:    string(name),
		Params:  args.Elements[1],
		Body:    wrapBody(args.Elements[2:]),
		Env:     scope,
		IsMacro: macro,
	}
	scope.DefineRoot(name, closure)
	return &literalFrame{value: closure}
}

// --- fn (explicit params) / # (auto %i params) ---------------------------

func newFnFrame(args *values.List, scope *env.Scope) frame {
	if args.Len() < 1 {
		return &failFrame{err: NewArityError("fn: expected a parameter list and a body")}
	}
	closure := &values.Closure{
		Params: args.Elements[0],
		Body:   wrapBody(args.Elements[1:]),
		Env:    scope,
	}
	return &literalFrame{value: closure}
}

func newAnonFrame(args *values.List, scope *env.Scope) frame {
	maxIdx, found := -1, false
	for _, e := range args.Elements {
		scanPercentParams(e, &maxIdx, &found)
	}
	var params []values.Value
	if found {
		params = make([]values.Value, maxIdx+1)
		for i := range params {
			params[i] = values.Symbol("%" + strconv.Itoa(i))
		}
	}
	closure := &values.Closure{
		Params: values.NewList(params...),
		Body:   wrapBody(args.Elements),
		Env:    scope,
	}
	return &literalFrame{value: closure}
}

// scanPercentParams walks form for symbols named %0, %1, ... tracking the
// largest index found. It descends into nested Lists but not into a
// nested `(# ...)` form, which has its own parameter namespace (spec's
// Design Notes on `#` arity inference).
func scanPercentParams(form values.Value, maxIdx *int, found *bool) {
	switch f := form.(type) {
	case values.Symbol:
		if idx, ok := percentIndex(string(f)); ok {
			if idx > *maxIdx {
				*maxIdx = idx
			}
			*found = true
		}
	case *values.List:
		if !f.IsEmpty() {
			if sym, ok := f.First().(values.Symbol); ok && sym == "#" {
				return
			}
		}
		for _, e := range f.Elements {
			scanPercentParams(e, maxIdx, found)
		}
	}
}

func percentIndex(s string) (int, bool) {
	if len(s) < 2 || s[0] != '%' {
		return 0, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// --- do ------------------------------------------------------------------

type doFrame struct {
	exprs []values.Value
	scope *env.Scope
	i     int
}

func newDoFrame(args *values.List, scope *env.Scope) frame {
	if args.IsEmpty() {
		return &literalFrame{value: values.Nil{}}
	}
	return &doFrame{exprs: args.Elements, scope: scope}
}

func (f *doFrame) step(*Engine) outcome {
	if f.i == len(f.exprs)-1 {
		return tail(f.exprs[f.i], f.scope)
	}
	expr := f.exprs[f.i]
	f.i++
	return suspend(expr, f.scope)
}

func (f *doFrame) describe() (values.Value, string) {
	return values.NewList(append([]values.Value{values.Symbol("do")}, f.exprs...)...), ""
}

// --- quote (the `(quote x1 ... xk)` spelling; `'x` is handled in start) --

func newQuoteSpecialFrame(args *values.List, scope *env.Scope) frame {
	if args.IsEmpty() {
		return &failFrame{err: NewArityError("quote: expected at least one form")}
	}
	return &quoteFrame{forms: args.Elements, scope: scope, single: args.Len() == 1}
}

// --- comment ---------------------------------------------------------------

func newCommentFrame(*values.List, *env.Scope) frame {
	return &literalFrame{value: values.Nil{}}
}

// --- . (host attribute access) -------------------------------------------

type dotFrame struct {
	object values.Value
	name   values.Symbol
	scope  *env.Scope
	pc     int
}

func newDotFrame(args *values.List, scope *env.Scope) frame {
	if args.Len() != 2 {
		return &failFrame{err: NewArityError(". : expected (. object name), got %d forms", args.Len())}
	}
	name, ok := args.Elements[1].(values.Symbol)
	if !ok {
		return &failFrame{err: NewTypeError(". : attribute name must be a bare symbol")}
	}
	return &dotFrame{object: args.Elements[0], name: name, scope: scope}
}

func (f *dotFrame) step(eng *Engine) outcome {
	if f.pc == 0 {
		f.pc = 1
		return suspend(f.object, f.scope)
	}
	obj, ok := eng.result.(hostbridge.Object)
	if !ok {
		return fail(NewTypeError(". : %s is not a host object", eng.result.String()))
	}
	if eng.Bridge == nil {
		return fail(NewHostError(errNoBridge))
	}
	v, err := eng.Bridge.GetAttr(obj, string(f.name))
	if err != nil {
		return fail(NewHostError(err))
	}
	return done(v)
}

func (f *dotFrame) describe() (values.Value, string) {
	return values.NewList(values.Symbol("."), f.object, f.name), ""
}

// --- $ (string -> symbol lookup) -----------------------------------------

type dollarFrame struct {
	expr  values.Value
	scope *env.Scope
	pc    int
}

func newDollarFrame(args *values.List, scope *env.Scope) frame {
	if args.Len() != 1 {
		return &failFrame{err: NewArityError("$: expected exactly one form")}
	}
	return &dollarFrame{expr: args.Elements[0], scope: scope}
}

func (f *dollarFrame) step(eng *Engine) outcome {
	if f.pc == 0 {
		f.pc = 1
		return suspend(f.expr, f.scope)
	}
	s, ok := eng.result.(values.Str)
	if !ok {
		return fail(NewTypeError("$: expected a string, got %T", eng.result))
	}
	v, ok := f.scope.Lookup(values.Symbol(s.Raw()))
	if !ok {
		return fail(&NameError{Name: s.Raw()})
	}
	return done(v)
}

func (f *dollarFrame) describe() (values.Value, string) {
	return values.NewList(values.Symbol("$"), f.expr), ""
}

// --- pyimport / pyimport_from ---------------------------------------------

type pyimportFrame struct {
	names []values.Symbol
	scope *env.Scope
}

func newPyimportFrame(args *values.List, scope *env.Scope) frame {
	names := make([]values.Symbol, 0, args.Len())
	for _, e := range args.Elements {
		sym, ok := e.(values.Symbol)
		if !ok {
			return &failFrame{err: NewTypeError("pyimport: module names must be bare symbols")}
		}
		names = append(names, sym)
	}
	return &pyimportFrame{names: names, scope: scope}
}

func (f *pyimportFrame) step(eng *Engine) outcome {
	if eng.Bridge == nil {
		return fail(NewHostError(errNoBridge))
	}
	for _, name := range f.names {
		obj, err := eng.Bridge.ImportModule(string(name))
		if err != nil {
			return fail(NewHostError(err))
		}
		f.scope.DefineRoot(leafName(name), obj)
	}
	return done(values.Nil{})
}

func (f *pyimportFrame) describe() (values.Value, string) {
	elems := []values.Value{values.Symbol("pyimport")}
	for _, n := range f.names {
		elems = append(elems, n)
	}
	return values.NewList(elems...), ""
}

type pyimportFromFrame struct {
	module values.Symbol
	attr   values.Symbol
	scope  *env.Scope
}

func newPyimportFromFrame(args *values.List, scope *env.Scope) frame {
	if args.Len() != 2 {
		return &failFrame{err: NewArityError("pyimport_from: expected (pyimport_from module name)")}
	}
	mod, ok1 := args.Elements[0].(values.Symbol)
	name, ok2 := args.Elements[1].(values.Symbol)
	if !ok1 || !ok2 {
		return &failFrame{err: NewTypeError("pyimport_from: module and name must be bare symbols")}
	}
	return &pyimportFromFrame{module: mod, attr: name, scope: scope}
}

func (f *pyimportFromFrame) step(eng *Engine) outcome {
	if eng.Bridge == nil {
		return fail(NewHostError(errNoBridge))
	}
	obj, err := eng.Bridge.ImportModule(string(f.module))
	if err != nil {
		return fail(NewHostError(err))
	}
	v, err := eng.Bridge.GetAttr(obj, string(f.attr))
	if err != nil {
		return fail(NewHostError(err))
	}
	f.scope.DefineRoot(f.attr, v)
	return done(v)
}

func (f *pyimportFromFrame) describe() (values.Value, string) {
	return values.NewList(values.Symbol("pyimport_from"), f.module, f.attr), ""
}

func leafName(dotted values.Symbol) values.Symbol {
	s := string(dotted)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return values.Symbol(s[i+1:])
	}
	return dotted
}

// --- match -----------------------------------------------------------------

type matchFrame struct {
	expr    values.Value
	clauses []*values.List // each (pattern result)
	scope   *env.Scope
	pc      int
	value   values.Value
	clauseI int
}

func newMatchFrame(args *values.List, scope *env.Scope) frame {
	if args.Len() < 1 {
		return &failFrame{err: NewArityError("match: expected an expression and at least one clause")}
	}
	clauses := make([]*values.List, 0, args.Len()-1)
	for _, e := range args.Elements[1:] {
		clause, ok := e.(*values.List)
		if !ok || clause.Len() != 2 {
			return &failFrame{err: NewTypeError("match: each clause must be (pattern result)")}
		}
		clauses = append(clauses, clause)
	}
	return &matchFrame{expr: args.Elements[0], clauses: clauses, scope: scope}
}

func (f *matchFrame) step(eng *Engine) outcome {
	if f.pc == 0 {
		f.pc = 1
		return suspend(f.expr, f.scope)
	}
	if f.value == nil {
		f.value = eng.result
	}
	for f.clauseI < len(f.clauses) {
		clause := f.clauses[f.clauseI]
		f.clauseI++
		pattern := clause.Elements[0]
		result := clause.Elements[1]
		if isWildcard(pattern) {
			return tail(result, f.scope)
		}
		bs, err := destructure.Bind(pattern, f.value)
		if err != nil {
			continue
		}
		inner := env.ChildOf(f.scope)
		for _, b := range bs {
			inner.DefineLocal(b.Name, b.Value)
		}
		return tail(result, inner)
	}
	return fail(NewMatchError("match: no clause accepted %s", f.value.String()))
}

func isWildcard(pattern values.Value) bool {
	sym, ok := pattern.(values.Symbol)
	return ok && sym == "_"
}

func (f *matchFrame) describe() (values.Value, string) {
	elems := []values.Value{values.Symbol("match"), f.expr}
	for _, c := range f.clauses {
		elems = append(elems, c)
	}
	return values.NewList(elems...), ""
}

// --- shared helpers --------------------------------------------------------

// wrapBody turns zero-or-more trailing body Forms into the single Form a
// closure's Body field expects, wrapping multiple forms in `(do ...)`.
func wrapBody(forms []values.Value) values.Value {
	switch len(forms) {
	case 0:
		return values.Nil{}
	case 1:
		return forms[0]
	default:
		return values.NewList(append([]values.Value{values.Symbol("do")}, forms...)...)
	}
}
