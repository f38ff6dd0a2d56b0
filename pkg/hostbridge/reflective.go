package hostbridge

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/kajanen/lumilisp/pkg/values"
)

// Reflective is the default Bridge: it keeps a registry of ordinary Go
// values ("modules") and exposes their exported methods through
// reflection. It exists because this Go rewrite has no embedded
// foreign-language runtime to delegate to (unlike the source language's
// Python host) — the shipped modules below are Go ports of the teacher's
// hand-written plugins (pkg/plugins/{math,string,http,json}), generalized
// into one reflective dispatcher instead of one hand-rolled wrapper per
// module. Documented as the stdlib-justified piece in DESIGN.md.
type Reflective struct {
	modules map[string]any
}

// NewReflective creates a Bridge with the default module set registered:
// math, strings, time, json, http.
func NewReflective() *Reflective {
	r := &Reflective{modules: make(map[string]any)}
	r.Register("math", mathModule{})
	r.Register("strings", stringsModule{})
	r.Register("time", timeModule{})
	r.Register("json", jsonModule{})
	r.Register("http", httpModule{})
	return r
}

// Register adds (or replaces) a host module reachable via pyimport under
// the given dotted name.
func (r *Reflective) Register(name string, mod any) {
	r.modules[name] = mod
}

type object struct {
	module string
	val    reflect.Value
}

func (o *object) String() string { return fmt.Sprintf("#<host-object %s>", o.module) }
func (o *object) hostObject()    {}

type callable struct {
	name string
	val  reflect.Value
}

func (c *callable) String() string { return fmt.Sprintf("#<host-callable %s>", c.name) }
func (c *callable) hostCallable()  {}

func (r *Reflective) ImportModule(dottedName string) (Object, error) {
	mod, ok := r.modules[dottedName]
	if !ok {
		return nil, &Error{Op: "import_module", Err: fmt.Errorf("unknown host module %q", dottedName)}
	}
	return &object{module: dottedName, val: reflect.ValueOf(mod)}, nil
}

func methodName(lispName string) string {
	parts := strings.Split(lispName, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}

func (r *Reflective) GetAttr(obj Object, name string) (values.Value, error) {
	o, ok := obj.(*object)
	if !ok {
		return nil, &Error{Op: "get_attr", Err: fmt.Errorf("not a host object: %T", obj)}
	}
	method := o.val.MethodByName(methodName(name))
	if !method.IsValid() {
		return nil, &Error{Op: "get_attr", Err: fmt.Errorf("%s has no attribute %q", o.module, name)}
	}
	return &callable{name: o.module + "." + name, val: method}, nil
}

func (r *Reflective) Call(c Callable, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
	call, ok := c.(*callable)
	if !ok {
		return nil, &Error{Op: "call", Err: fmt.Errorf("not a host callable: %T", c)}
	}
	fnType := call.val.Type()
	if fnType.NumIn() != len(args) && !fnType.IsVariadic() {
		return nil, &Error{Op: "call", Err: fmt.Errorf("%s expects %d arguments, got %d", call.name, fnType.NumIn(), len(args))}
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var want reflect.Type
		if fnType.IsVariadic() && i >= fnType.NumIn()-1 {
			want = fnType.In(fnType.NumIn() - 1).Elem()
		} else {
			want = fnType.In(i)
		}
		rv, err := toReflect(a, want)
		if err != nil {
			return nil, &Error{Op: "call", Err: fmt.Errorf("argument %d to %s: %w", i, call.name, err)}
		}
		in[i] = rv
	}

	out := call.val.Call(in)
	return reflectResultsToValue(out)
}

func (r *Reflective) IsTruthy(v values.Value) bool {
	return values.IsTruthy(v)
}

func toReflect(v values.Value, want reflect.Type) (reflect.Value, error) {
	switch want.Kind() {
	case reflect.String:
		s, ok := v.(values.Str)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected string, got %T", v)
		}
		return reflect.ValueOf(s.Raw()), nil
	case reflect.Float64, reflect.Float32:
		f, err := toFloat(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(f).Convert(want), nil
	case reflect.Int, reflect.Int64, reflect.Int32:
		i, err := toInt(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(i).Convert(want), nil
	case reflect.Bool:
		b, ok := v.(values.Bool)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected bool, got %T", v)
		}
		return reflect.ValueOf(bool(b)), nil
	case reflect.Interface:
		return reflect.ValueOf(v), nil
	default:
		return reflect.Value{}, fmt.Errorf("unsupported host parameter kind %s", want.Kind())
	}
}

func toFloat(v values.Value) (float64, error) {
	switch t := v.(type) {
	case values.Int:
		return float64(t), nil
	case values.Float:
		return float64(t), nil
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

func toInt(v values.Value) (int64, error) {
	switch t := v.(type) {
	case values.Int:
		return int64(t), nil
	case values.Float:
		return int64(t), nil
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

func reflectResultsToValue(out []reflect.Value) (values.Value, error) {
	if len(out) == 0 {
		return values.Nil{}, nil
	}
	// Go idiom (val, error): surface a trailing error return as a HostError.
	last := out[len(out)-1]
	if last.Type().Implements(reflect.TypeOf((*error)(nil)).Elem()) {
		if !last.IsNil() {
			return nil, &Error{Op: "call", Err: last.Interface().(error)}
		}
		if len(out) == 1 {
			return values.Nil{}, nil
		}
		return reflectToValue(out[0])
	}
	return reflectToValue(last)
}

func reflectToValue(rv reflect.Value) (values.Value, error) {
	switch rv.Kind() {
	case reflect.String:
		return values.Str(rv.String()), nil
	case reflect.Float64, reflect.Float32:
		return values.Float(rv.Float()), nil
	case reflect.Int, reflect.Int64, reflect.Int32:
		return values.Int(rv.Int()), nil
	case reflect.Bool:
		return values.Bool(rv.Bool()), nil
	case reflect.Interface:
		if rv.IsNil() {
			return values.Nil{}, nil
		}
		return reflectToValue(rv.Elem())
	case reflect.Invalid:
		return values.Nil{}, nil
	default:
		if vv, ok := rv.Interface().(values.Value); ok {
			return vv, nil
		}
		return nil, fmt.Errorf("cannot convert host value of kind %s to a language value", rv.Kind())
	}
}

// mathModule mirrors the teacher's pkg/plugins/math, exposed through
// reflection instead of a hand-written registry entry per function.
type mathModule struct{}

func (mathModule) Sqrt(x float64) float64  { return math.Sqrt(x) }
func (mathModule) Pow(x, y float64) float64 { return math.Pow(x, y) }
func (mathModule) Abs(x float64) float64   { return math.Abs(x) }
func (mathModule) Floor(x float64) float64 { return math.Floor(x) }
func (mathModule) Ceil(x float64) float64  { return math.Ceil(x) }
func (mathModule) Sin(x float64) float64   { return math.Sin(x) }
func (mathModule) Cos(x float64) float64   { return math.Cos(x) }
func (mathModule) Log(x float64) float64   { return math.Log(x) }
func (mathModule) Pi() float64             { return math.Pi }

// stringsModule mirrors the teacher's pkg/plugins/string.
type stringsModule struct{}

func (stringsModule) Upper(s string) string           { return strings.ToUpper(s) }
func (stringsModule) Lower(s string) string           { return strings.ToLower(s) }
func (stringsModule) Trim(s string) string            { return strings.TrimSpace(s) }
func (stringsModule) Split(s, sep string) []string    { return strings.Split(s, sep) }
func (stringsModule) Join(parts []string, sep string) string { return strings.Join(parts, sep) }
func (stringsModule) Contains(s, substr string) bool   { return strings.Contains(s, substr) }

// timeModule mirrors the teacher's use of time in math's RNG seed, applied
// to a small host module instead.
type timeModule struct{}

func (timeModule) NowUnix() int64 { return time.Now().Unix() }

// jsonModule mirrors the teacher's pkg/plugins/json, which also wraps
// encoding/json.
type jsonModule struct{}

func (jsonModule) Marshal(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// httpModule mirrors the teacher's pkg/plugins/http.
type httpModule struct{}

func (httpModule) Get(url string) (string, error) {
	resp, err := http.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
