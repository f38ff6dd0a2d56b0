// Package replio drives the interactive REPL and file-execution path on
// top of pkg/bootstrap and pkg/evaluator. Grounded on the teacher's
// pkg/core/repl.go (Interpreter shape: Eval/EvalString/LoadFile) and
// pkg/repl/repl.go (readline + fatih/color driven loop).
package replio

import (
	"fmt"
	"os"

	"github.com/kajanen/lumilisp/pkg/bootstrap"
	"github.com/kajanen/lumilisp/pkg/env"
	"github.com/kajanen/lumilisp/pkg/evaluator"
	"github.com/kajanen/lumilisp/pkg/hostbridge"
	"github.com/kajanen/lumilisp/pkg/reader"
	"github.com/kajanen/lumilisp/pkg/values"
)


// Interpreter bundles a bootstrapped root scope with the engine that
// evaluates against it, so a whole session shares one set of root
// definitions (def at the REPL persists across lines).
type Interpreter struct {
	root *env.Scope
	eng  *evaluator.Engine
}

// New bootstraps a fresh Interpreter with the standard library loaded and
// the default reflective host bridge (math/strings/time/json/http)
// wired in for `.`/`pyimport`.
func New() (*Interpreter, error) {
	root, eng, err := bootstrap.New(hostbridge.NewReflective())
	if err != nil {
		return nil, err
	}
	return &Interpreter{root: root, eng: eng}, nil
}

// NewWithStdlibPath is New, but reads the standard library from path on
// disk instead of evaluating the embedded default — used when
// LUMILISP_STDLIB_PATH is set, to iterate on core.lisp without
// recompiling.
func NewWithStdlibPath(path string) (*Interpreter, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdlib override %s: %w", path, err)
	}
	root, eng, err := bootstrap.NewFromSource(hostbridge.NewReflective(), string(src))
	if err != nil {
		return nil, err
	}
	return &Interpreter{root: root, eng: eng}, nil
}

// Interpret parses input and evaluates every top-level form it contains
// against the session's root scope, returning the value of the last one.
func (in *Interpreter) Interpret(input string) (values.Value, error) {
	forms, err := reader.Read(input)
	if err != nil {
		return nil, err
	}
	return in.eng.EvaluateSeq(forms, in.root)
}

// LoadFile reads, parses and evaluates every top-level form in filename
// against the session's root scope, discarding intermediate results.
func (in *Interpreter) LoadFile(filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	if err := bootstrap.Load(in.eng, in.root, string(content)); err != nil {
		return fmt.Errorf("failed to evaluate %s: %w", filename, err)
	}
	return nil
}

// Scope exposes the root scope for completion providers and diagnostics.
func (in *Interpreter) Scope() *env.Scope { return in.root }
