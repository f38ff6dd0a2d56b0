package evaluator

import (
	"fmt"
	"strings"

	"github.com/kajanen/lumilisp/pkg/values"
)

// Trace is a snapshot of the frame stack at the moment evaluation failed,
// rendered root-to-leaf (spec §4.6). It is grounded on the teacher's
// EvaluationContext.StackTrace (pkg/minimal/errors.go), generalized from a
// flat string slice walked by PushFrame/PopFrame into a structure built
// directly from the engine's own frame stack.
type Trace struct {
	Lines []string
}

// maxTraceDepth bounds how much of a deeply nested Form is rendered per
// trace line; anything nested deeper is elided as "(...)".
const maxTraceDepth = 3

// captureTrace walks the live frame stack root (bottom) to leaf (top) and
// renders one line per frame, marking the top (the frame that failed) as
// the exception site.
func captureTrace(stack []frame) *Trace {
	t := &Trace{Lines: make([]string, 0, len(stack))}
	for i, fr := range stack {
		form, note := fr.describe()
		line := formString(form, maxTraceDepth)
		if note != "" {
			line = fmt.Sprintf("%s  (%s)", line, note)
		}
		if i == len(stack)-1 {
			line = "Exception happened here: " + line
		}
		t.Lines = append(t.Lines, line)
	}
	return t
}

func (t *Trace) String() string {
	if t == nil || len(t.Lines) == 0 {
		return ""
	}
	return strings.Join(t.Lines, "\n")
}

// formString renders form the way a trace line should: full detail near
// the top, "(...)" once depth is exhausted, so a trace line for a deeply
// nested expression stays readable.
func formString(form values.Value, depth int) string {
	list, ok := form.(*values.List)
	if !ok {
		return form.String()
	}
	if depth <= 0 {
		if list.IsEmpty() {
			return "()"
		}
		return "(...)"
	}
	parts := make([]string, list.Len())
	for i, e := range list.Elements {
		parts[i] = formString(e, depth-1)
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// EvalError wraps an evaluation failure with the call trace captured when
// it occurred (spec §4.6, §7).
type EvalError struct {
	Err   error
	Trace *Trace
}

func (e *EvalError) Error() string {
	if e.Trace == nil || len(e.Trace.Lines) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s\n%s", e.Err.Error(), e.Trace.String())
}

func (e *EvalError) Unwrap() error { return e.Err }
