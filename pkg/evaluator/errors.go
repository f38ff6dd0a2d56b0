package evaluator

import (
	"errors"
	"fmt"
)

// errNoBridge is returned when a host call is attempted but the Engine was
// constructed without a HostBridge.
var errNoBridge = errors.New("no HostBridge configured")

// Error kinds, per spec §7. Each is a distinct Go type so callers can
// switch on it; all satisfy error. Grounded on the teacher's
// NewArityError/NewTypeError convention (pkg/core/eval_special_forms.go),
// generalized into the full taxonomy the spec names.

// NameError: a symbol is not bound in any enclosing scope.
type NameError struct{ Name string }

func (e *NameError) Error() string { return fmt.Sprintf("undefined symbol: %s", e.Name) }

// NotCallableError: attempted call on a non-callable Value.
type NotCallableError struct{ Got string }

func (e *NotCallableError) Error() string { return fmt.Sprintf("not callable: %s", e.Got) }

// ArityError: destructurer mismatch for a function/macro call.
type ArityError struct{ Message string }

func (e *ArityError) Error() string { return e.Message }

func NewArityError(format string, args ...any) *ArityError {
	return &ArityError{Message: fmt.Sprintf(format, args...)}
}

// MatchError: no `match` clause pattern accepted the value.
type MatchError struct{ Message string }

func (e *MatchError) Error() string { return e.Message }

func NewMatchError(format string, args ...any) *MatchError {
	return &MatchError{Message: fmt.Sprintf(format, args...)}
}

// TypeError: e.g. `.` on a non-host value, `$` on a non-string.
type TypeError struct{ Message string }

func (e *TypeError) Error() string { return e.Message }

func NewTypeError(format string, args ...any) *TypeError {
	return &TypeError{Message: fmt.Sprintf(format, args...)}
}

// HostError: any failure from the HostBridge; carries the host's error.
type HostError struct {
	Message string
	Cause   error
}

func (e *HostError) Error() string { return e.Message }
func (e *HostError) Unwrap() error { return e.Cause }

func NewHostError(cause error) *HostError {
	return &HostError{Message: fmt.Sprintf("host error: %v", cause), Cause: cause}
}

// InternalError: invariant violation in the evaluator (should never fire).
// It carries a snapshot of the frame stack's trace at the point of the
// violation, which the call-trace recorder would otherwise have to
// reconstruct post-mortem.
type InternalError struct {
	Message string
	Trace   []string
}

func (e *InternalError) Error() string { return fmt.Sprintf("internal error: %s", e.Message) }

func NewInternalError(format string, args ...any) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}
