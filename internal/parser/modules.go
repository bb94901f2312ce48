package parser

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/genv-lang/genv/internal/ast"
	"github.com/genv-lang/genv/internal/diagnostic"
)

// moduleDecl parses `mod name` and loads the named module recursively.
// Modules are not checked for cycles.
func (p *parser) moduleDecl() (ast.TopLevel, error) {
	start := p.mark()
	if err := p.keyword("mod"); err != nil {
		return nil, err
	}
	name, err := p.identifier()
	if err != nil {
		return nil, p.commit(err, "module name")
	}
	span := p.span(start)

	path := p.modulePathFor(name.Name)
	src, err := p.cfg.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, p.hard(span, diagnostic.FileNotFound{Path: path})
		}
		return nil, p.hard(span, diagnostic.SyntaxError{Message: err.Error()})
	}

	p.ctx.logger.Debug("loading module",
		slog.String("module", name.Name),
		slog.String("path", path),
		slog.String("parent", p.ctx.path))

	child := p.ctx.child(path)
	mod, err := parseModule(child, path, string(src))
	if err != nil {
		p.ctx.abandon(child)
		return nil, err
	}
	if err := p.ctx.merge(child); err != nil {
		return nil, err
	}
	return &ast.ModuleDecl{Name: name, Module: mod, Path: path, Span: span}, nil
}

// modulePathFor maps a module name to its file. The standard library name
// maps to the configured std root.
func (p *parser) modulePathFor(name string) string {
	if name == p.cfg.StdName {
		return p.cfg.StdRoot
	}
	return filepath.Join(filepath.Dir(p.ctx.path), name+p.cfg.Extension)
}
