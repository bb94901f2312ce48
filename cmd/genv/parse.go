package main

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/genv-lang/genv/internal/ast"
	"github.com/genv-lang/genv/internal/parser"
)

var parseFlags struct {
	format string
}

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Parse a genv file and print the result",
	Long: `Parse a genv file, following its mod declarations.

Formats:
  text    a summary line and the diagnostics
  source  the canonical source of the parsed module
  yaml    a structural summary of every top-level item

The default is source when show_ast is set in the configuration and text
otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseFlags.format, "format", "f", "", "output format: text, source, yaml")
}

func runParse(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	e, err := newEnv(out)
	if err != nil {
		return err
	}

	format := parseFlags.format
	if format == "" {
		format = "text"
		if e.cfg.ShowAST {
			format = "source"
		}
	}

	res, err := e.parseFile(args[0])
	if rerr := e.report(cmd.ErrOrStderr(), res); rerr != nil {
		return rerr
	}
	if err != nil {
		return err
	}

	switch format {
	case "text":
		_, err = fmt.Fprintf(out, "%s: %d items, %d files, %d warnings\n",
			args[0], len(res.Module.Items), res.Files.Len(), len(res.Diagnostics.Warnings()))
		return err
	case "source":
		_, err = io.WriteString(out, ast.Print(res.Module))
		return err
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(summarize(args[0], res)); err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

type moduleSummary struct {
	Path      string          `yaml:"path"`
	Files     []string        `yaml:"files"`
	Operators map[string]int  `yaml:"operators,omitempty"`
	Items     []itemSummary   `yaml:"items"`
	Warnings  []string        `yaml:"warnings,omitempty"`
	Modules   []moduleSummary `yaml:"modules,omitempty"`
}

type itemSummary struct {
	Kind   string `yaml:"kind"`
	Line   int    `yaml:"line"`
	Source string `yaml:"source"`
}

func summarize(path string, res *parser.Result) moduleSummary {
	s := summarizeModule(path, res.Module)
	s.Files = res.Files.Paths()
	if len(res.Operators) > 0 {
		s.Operators = make(map[string]int, len(res.Operators))
		for lexeme, op := range res.Operators {
			s.Operators[lexeme] = int(op.Precedence)
		}
	}
	for _, w := range res.Diagnostics.Warnings() {
		s.Warnings = append(s.Warnings, w.String())
	}
	return s
}

func summarizeModule(path string, m *ast.Module) moduleSummary {
	s := moduleSummary{Path: path}
	for _, item := range m.Items {
		s.Items = append(s.Items, itemSummary{
			Kind:   kindName(item),
			Line:   item.GetSpan().Start.Line,
			Source: strings.TrimSuffix(ast.Print(&ast.Module{Items: []ast.TopLevel{item}}), "\n"),
		})
		if decl, ok := item.(*ast.ModuleDecl); ok && decl.Module != nil {
			s.Modules = append(s.Modules, summarizeModule(decl.Path, decl.Module))
		}
	}
	return s
}

// kindName turns *ast.FunctionDecl into "FunctionDecl".
func kindName(n ast.Node) string {
	return reflect.TypeOf(n).Elem().Name()
}
