package replio

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
)

// Run starts an interactive Read-Eval-Print loop over in, reading from a
// readline-backed terminal with history and printing colored results and
// errors, until the user quits or sends EOF.
func Run(in *Interpreter, historyFile string, enableColors bool) error {
	if !enableColors {
		color.NoColor = true
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "lumilisp> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	printWelcome()

	for {
		input, err := readCompleteExpression(rl)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				break
			}
			fmt.Printf("input error: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		if trimmed == "quit" || trimmed == "exit" {
			break
		}

		result, err := in.Interpret(input)
		if err != nil {
			color.New(color.FgRed).Printf("error: %v\n", err)
			continue
		}
		if result == nil {
			continue
		}
		color.New(color.FgGreen).Printf("=> %s\n", result.String())
	}

	color.New(color.FgMagenta, color.Bold).Println("Goodbye!")
	return nil
}

// readCompleteExpression reads lines from rl until parentheses balance
// and at least one non-empty, non-comment line has been seen, so a
// multi-line form can be typed across several prompts.
func readCompleteExpression(rl *readline.Instance) (string, error) {
	var lines []string
	depth := 0
	inString := false
	escaped := false
	first := true

	for {
		if first {
			rl.SetPrompt("lumilisp> ")
			first = false
		} else {
			rl.SetPrompt("...       ")
		}

		line, err := rl.Readline()
		if err != nil {
			return strings.Join(lines, "\n"), err
		}
		lines = append(lines, line)

		if len(lines) == 1 {
			if t := strings.TrimSpace(line); t == "quit" || t == "exit" {
				return t, nil
			}
		}

		for _, ch := range line {
			if escaped {
				escaped = false
				continue
			}
			switch ch {
			case '\\':
				if inString {
					escaped = true
				}
			case '"':
				inString = !inString
			case '(':
				if !inString {
					depth++
				}
			case ')':
				if !inString {
					depth--
				}
			case ';':
				if !inString {
					goto doneLine
				}
			}
		}
	doneLine:

		joined := strings.Join(lines, "\n")
		if depth <= 0 && hasExpression(joined) {
			break
		}
	}

	return strings.Join(lines, "\n"), nil
}

// hasExpression reports whether text contains anything besides whitespace
// and `;` line comments.
func hasExpression(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		inString := false
		escaped := false
		cut := len(line)
		for i, ch := range line {
			if escaped {
				escaped = false
				continue
			}
			switch ch {
			case '\\':
				if inString {
					escaped = true
				}
			case '"':
				inString = !inString
			case ';':
				if !inString {
					cut = i
				}
			}
			if cut != len(line) {
				break
			}
		}
		if strings.TrimSpace(line[:cut]) != "" {
			return true
		}
	}
	return false
}

func printWelcome() {
	title := color.New(color.FgCyan, color.Bold)
	instr := color.New(color.FgYellow)

	title.Println("Welcome to lumilisp!")
	instr.Println("Type expressions to evaluate them, or 'quit' to exit.")
	instr.Println("Multi-line expressions are supported; the prompt waits for balanced parens.")
	fmt.Println()
}
