// Package bootstrap wires a fresh root environment the way spec §6.4
// describes: install the Go builtins, then parse and evaluate the
// self-hosted standard-library program against that same root scope.
// Grounded on the teacher's pkg/core/bootstrap.go (LoadStandardLibrary,
// CreateBootstrappedEnvironment), generalized from filesystem-path
// lookup to a go:embed'd asset so the interpreter has no runtime
// dependency on its own working directory.
package bootstrap

import (
	_ "embed"
	"fmt"

	"github.com/kajanen/lumilisp/pkg/env"
	"github.com/kajanen/lumilisp/pkg/evaluator"
	"github.com/kajanen/lumilisp/pkg/hostbridge"
	"github.com/kajanen/lumilisp/pkg/reader"
)

//go:embed stdlib/core.lisp
var coreLisp string

// New builds a root Scope with builtins installed and the standard
// library evaluated against it, paired with an Engine bound to bridge
// (which may be nil if the program never touches `.`/`pyimport`).
func New(bridge hostbridge.Bridge) (*env.Scope, *evaluator.Engine, error) {
	return NewFromSource(bridge, coreLisp)
}

// NewFromSource is New but evaluates src as the standard library instead
// of the embedded pkg/bootstrap/stdlib/core.lisp, so LUMILISP_STDLIB_PATH
// can redirect bootstrap to a file on disk while iterating.
func NewFromSource(bridge hostbridge.Bridge, src string) (*env.Scope, *evaluator.Engine, error) {
	root := env.New()
	evaluator.InstallBuiltins(root)

	eng := evaluator.New(bridge)
	if err := Load(eng, root, src); err != nil {
		return nil, nil, fmt.Errorf("bootstrap: loading standard library: %w", err)
	}
	return root, eng, nil
}

// Load parses src and evaluates each top-level form against scope using
// eng, in order, discarding intermediate results. Exposed separately from
// New so callers (tests, replio's Interpreter.LoadFile) can layer additional
// library code onto an already-bootstrapped environment.
func Load(eng *evaluator.Engine, scope *env.Scope, src string) error {
	forms, err := reader.Read(src)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	for _, form := range forms {
		if _, err := eng.Evaluate(form, scope); err != nil {
			return err
		}
	}
	return nil
}
