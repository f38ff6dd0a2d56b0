// Package hostbridge defines the narrow interface the evaluator requires
// from its embedder for module import, attribute access, and foreign
// calls (spec §6.2), plus a reflective default implementation usable
// without a real embedded host runtime.
package hostbridge

import (
	"fmt"

	"github.com/kajanen/lumilisp/pkg/values"
)

// Bridge is the evaluator's only window into the host runtime.
// ImportModule, GetAttr and Call may fail; failures are surfaced by callers
// as evaluator.HostError. IsTruthy has no error result and cannot report a
// failure.
type Bridge interface {
	ImportModule(dottedName string) (Object, error)
	GetAttr(obj Object, name string) (values.Value, error)
	Call(callable Callable, args []values.Value, kwargs map[string]values.Value) (values.Value, error)
	IsTruthy(v values.Value) bool
}

// Object is an opaque handle to a host-runtime value whose attributes are
// reachable via `.`.
type Object interface {
	values.Value
	hostObject()
}

// Callable is an opaque handle to something the host runtime can invoke.
type Callable interface {
	values.Value
	hostCallable()
}

// Error wraps any failure surfaced by a Bridge method, per spec §7's
// HostError kind: it carries the host's original error for re-raising.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("host error in %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }
