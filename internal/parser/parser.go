// Package parser turns genv source text into the tree of package ast.
//
// The parser works directly on the source bytes. Alternatives fail softly
// with errNoMatch and the caller tries the next one; once a construct is
// recognized, later failures are committed into a recorded diagnostic and
// returned as a *Failure that stops the parse. Nested modules named with
// `mod` are parsed recursively with a child Context whose results are
// merged into the parent.
package parser

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/genv-lang/genv/internal/ast"
	"github.com/genv-lang/genv/internal/config"
	"github.com/genv-lang/genv/internal/diagnostic"
	"github.com/genv-lang/genv/internal/position"
)

// Result is everything a root parse produces.
type Result struct {
	Module *ast.Module
	// Spans maps every identity carried by the tree to its source span.
	Spans map[ast.NodeID]position.Span
	// Operators holds the user-declared operators of all loaded modules.
	Operators   map[string]Operator
	Diagnostics *diagnostic.List
	Files       *position.SourceMap
}

// ParseFile reads and parses the module at path, following `mod`
// declarations. A nil cfg means config.Default().
//
// On failure the returned error is a *diagnostic.Error holding the first
// error diagnostic, and the Result still carries the diagnostics and the
// files loaded so far.
func ParseFile(path string, cfg *config.Config) (*Result, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	src, err := cfg.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read source file %q: %w", path, err)
		}
		ctx := NewContext(path, cfg)
		f := ctx.pushError(position.Span{}, diagnostic.FileNotFound{Path: path})
		return ctx.result(nil), diagnostic.AsError(f.Diagnostic)
	}
	return ParseSource(path, string(src), cfg)
}

// ParseSource parses src as the module at path. Relative `mod`
// declarations resolve against the directory of path.
func ParseSource(path, src string, cfg *config.Config) (*Result, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	ctx := NewContext(path, cfg)
	mod, err := parseModule(ctx, path, src)
	if err == nil && !ctx.diagnostics.MustStop() {
		return ctx.result(mod), nil
	}

	res := ctx.result(nil)
	if d, ok := ctx.diagnostics.FirstError(); ok {
		return res, diagnostic.AsError(d)
	}
	var f *Failure
	if errors.As(err, &f) {
		return res, diagnostic.AsError(f.Diagnostic)
	}
	return res, err
}

// ParseExpression parses src as a single expression.
func ParseExpression(src string, cfg *config.Config) (ast.Expression, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	const path = "<expression>"
	ctx := NewContext(path, cfg)
	p := newParser(ctx, ctx.files.AddFile(path, src))

	expr, err := p.expression()
	if err == errNoMatch {
		err = p.hard(p.pointSpan(p.skipBlankAhead()), diagnostic.UnexpectedToken{})
	}
	if err == nil && strings.TrimSpace(p.src[p.pos:]) != "" {
		err = p.hard(p.pointSpan(p.skipBlankAhead()), diagnostic.UnexpectedToken{})
	}
	if err != nil {
		var f *Failure
		if errors.As(err, &f) {
			return nil, diagnostic.AsError(f.Diagnostic)
		}
		return nil, err
	}
	return expr, nil
}

func (c *Context) result(mod *ast.Module) *Result {
	ops := make(map[string]Operator, len(c.operators))
	for k, v := range c.operators {
		ops[k] = v
	}
	return &Result{
		Module:      mod,
		Spans:       c.spans,
		Operators:   ops,
		Diagnostics: c.diagnostics,
		Files:       c.files,
	}
}

// parseModule registers src under path in ctx and parses it.
func parseModule(ctx *Context, path, src string) (*ast.Module, error) {
	p := newParser(ctx, ctx.files.AddFile(path, src))
	return p.module()
}

// module parses a whole file: top-level items, one per line.
func (p *parser) module() (*ast.Module, error) {
	var items []ast.TopLevel
	for {
		p.skipEmptyLines()
		if p.eof() {
			break
		}

		item, err := p.topLevel()
		if err == errNoMatch {
			return nil, p.hard(p.pointSpan(p.furthestOffset()), diagnostic.UnexpectedToken{})
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		if !p.lineEnd() {
			return nil, p.hard(p.pointSpan(p.skipBlankAhead()), diagnostic.SyntaxError{Message: "expected end of line"})
		}
	}
	return &ast.Module{Items: items, Span: p.file.SpanOf(0, len(p.src))}, nil
}

// skipEmptyLines moves past lines holding only whitespace and stops in
// front of the next item, after its leading spaces.
func (p *parser) skipEmptyLines() {
	for {
		p.hspace()
		if p.peek() != '\n' {
			return
		}
		p.pos++
	}
}

func (p *parser) furthestOffset() int {
	if off := p.skipBlankAhead(); off > p.furthest {
		return off
	}
	return p.furthest
}
