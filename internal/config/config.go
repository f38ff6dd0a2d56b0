// Package config collects the REPL/CLI's environment-variable settings
// into one struct, parsed with caarlos0/env instead of scattered
// os.Getenv calls (SPEC_FULL.md ambient-stack decision; caarlos0/env is
// carried transitively in the pack via mna-nenuphar's go.mod).
package config

import "github.com/caarlos0/env/v6"

// Config holds the LUMILISP_* environment variables recognized by
// cmd/lumilisp and pkg/replio.
type Config struct {
	// NoColor disables fatih/color output in the REPL, for non-TTY or
	// CI use.
	NoColor bool `env:"LUMILISP_NO_COLOR" envDefault:"false"`

	// HistoryFile is where the REPL's readline history is persisted.
	HistoryFile string `env:"LUMILISP_HISTORY_FILE" envDefault:"/tmp/lumilisp_history"`

	// StdlibPath, when set, overrides the embedded standard library
	// with a file loaded from disk — useful for iterating on
	// pkg/bootstrap/stdlib/core.lisp without recompiling.
	StdlibPath string `env:"LUMILISP_STDLIB_PATH"`
}

// Load parses the process environment into a Config, applying defaults
// for anything unset.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
