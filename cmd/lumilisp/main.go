// Command lumilisp is the interpreter's CLI entry point: REPL by default,
// or -e/-f for direct evaluation and file execution. Grounded on the
// teacher's cmd/golisp/main.go (flag shape, -e/-f semantics, legacy
// positional filename).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kajanen/lumilisp/internal/config"
	"github.com/kajanen/lumilisp/pkg/replio"
)

func main() {
	var (
		help = flag.Bool("help", false, "Show help message")
		eval = flag.String("e", "", "Evaluate code directly instead of reading from a file")
		file = flag.String("f", "", "File to execute")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                  # Start interactive REPL\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -f script.lisp   # Execute a file\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -e '(+ 1 2 3)'   # Evaluate code directly\n", os.Args[0])
	}
	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading configuration: %v\n", err)
		os.Exit(1)
	}

	interp, err := newInterpreter(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error bootstrapping interpreter: %v\n", err)
		os.Exit(1)
	}

	if *eval != "" {
		result, err := interp.Interpret(*eval)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error evaluating code: %v\n", err)
			os.Exit(1)
		}
		if result != nil && result.String() != "nil" {
			fmt.Println(result.String())
		}
		return
	}

	if *file != "" {
		if err := interp.LoadFile(*file); err != nil {
			fmt.Fprintf(os.Stderr, "error executing file %s: %v\n", *file, err)
			os.Exit(1)
		}
		return
	}

	if args := flag.Args(); len(args) > 0 {
		if err := interp.LoadFile(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "error executing file %s: %v\n", args[0], err)
			os.Exit(1)
		}
		return
	}

	if err := replio.Run(interp, cfg.HistoryFile, !cfg.NoColor); err != nil {
		fmt.Fprintf(os.Stderr, "REPL error: %v\n", err)
		os.Exit(1)
	}
}

func newInterpreter(cfg config.Config) (*replio.Interpreter, error) {
	if cfg.StdlibPath != "" {
		return replio.NewWithStdlibPath(cfg.StdlibPath)
	}
	return replio.New()
}
