package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"islet/internal/diag"
	"islet/internal/lexer"
	"islet/internal/parser"
	"islet/internal/runtime"

	"github.com/chzyer/readline"
)

// ---- ANSI colors ----

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// cmdRepl runs the interactive loop. Definitions persist across entries
// because the interpreter threads its environment from one Run to the
// next; a multi-line form is accumulated until its parens balance.
func cmdRepl() {
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".islet_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            colorGreen + "islet> " + colorReset,
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline init failed: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "%s%sislet REPL%s %s(type 'exit' or Ctrl+D to quit)%s\n\n",
		colorBold, colorCyan, colorReset, colorGray, colorReset)

	interp := runtime.NewInterpreter(rl.Stdout())
	var accumulated strings.Builder
	parenDepth := 0

	for {
		if parenDepth > 0 {
			rl.SetPrompt(colorGray + "...    " + colorReset)
		} else {
			rl.SetPrompt(colorGreen + "islet> " + colorReset)
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if parenDepth > 0 {
					// Cancel multi-line input.
					accumulated.Reset()
					parenDepth = 0
					continue
				}
				fmt.Fprintf(rl.Stdout(), "\n%s(use 'exit' or Ctrl+D to quit)%s\n", colorGray, colorReset)
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(rl.Stdout())
			}
			break
		}

		if parenDepth == 0 && strings.TrimSpace(line) == "exit" {
			break
		}

		accumulated.WriteString(line)
		accumulated.WriteString("\n")
		parenDepth = openParens(accumulated.String())

		// Keep reading while forms are unbalanced.
		if parenDepth > 0 {
			continue
		}
		parenDepth = 0

		source := accumulated.String()
		accumulated.Reset()

		if strings.TrimSpace(source) == "" {
			continue
		}

		l := lexer.New(source, "<repl>")
		tokens, lexDiags := l.Tokenize()
		if len(lexDiags) > 0 {
			printDiagsColored(rl.Stderr(), lexDiags)
			continue
		}

		p := parser.New(tokens)
		prog, parseDiags := p.ParseProgram()
		if len(parseDiags) > 0 {
			printDiagsColored(rl.Stderr(), parseDiags)
			continue
		}

		if err := interp.Run(prog); err != nil {
			fmt.Fprintf(rl.Stderr(), "%s%s%s\n", colorRed, err, colorReset)
			continue
		}
	}
}

// openParens tokenizes the accumulated input and returns how many forms
// are still open. Counting over tokens rather than raw bytes keeps parens
// inside strings and comments from confusing the prompt.
func openParens(source string) int {
	l := lexer.New(source, "<repl>")
	tokens, _ := l.Tokenize()
	depth := 0
	for _, tok := range tokens {
		switch {
		case tok.Kind.IsOpen():
			depth++
		case tok.Kind.IsClose():
			depth--
		}
	}
	if depth < 0 {
		return 0
	}
	return depth
}

// printDiagsColored prints diagnostics in red for REPL display.
func printDiagsColored(w io.Writer, diags []diag.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s%s%s\n", colorRed, d.String(), colorReset)
	}
}
