package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/genv-lang/genv/internal/ast"
	"github.com/genv-lang/genv/internal/parser"
)

const (
	promptMain  = "genv> "
	promptCont  = "....> "
	historyFile = ".genv_history"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Parse expressions and declarations interactively",
	Long: `Read genv source line by line and print its canonical form.

A line ending in '=>' or an open bracket continues on the next prompt; an
empty line ends a block. Type :quit to leave.`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		src, ok := readEntry(ln)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if trimmed == ":quit" {
			return nil
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		text, err := evalEntry(e, src)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			continue
		}
		fmt.Fprint(out, text)
	}
}

// evalEntry parses src as an expression, or as a module when that fails,
// and returns its canonical form.
func evalEntry(e *env, src string) (string, error) {
	if expr, err := parser.ParseExpression(src, e.cfg); err == nil {
		return ast.PrintExpression(expr) + "\n", nil
	}
	res, err := parser.ParseSource("<repl>", src+"\n", e.cfg)
	if err != nil {
		return "", err
	}
	return ast.Print(res.Module), nil
}

// readEntry reads one entry, continuing while the input is unfinished.
func readEntry(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			if strings.TrimSpace(line) == "" {
				return b.String(), true
			}
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !continues(b.String()) {
			return b.String(), true
		}
	}
}

// continues reports whether src needs more lines: it ends in an arrow, has
// unbalanced brackets, or is inside an indented block.
func continues(src string) bool {
	depth := 0
	inString := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case inString && c == '\\':
			i++
		case c == '"':
			inString = !inString
		case inString:
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		}
	}
	if depth > 0 {
		return true
	}
	lines := strings.Split(src, "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if strings.HasSuffix(last, "=>") {
		return true
	}
	return len(lines) > 1
}
