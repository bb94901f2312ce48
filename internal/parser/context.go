package parser

import (
	"log/slog"
	"sort"

	"github.com/genv-lang/genv/internal/ast"
	"github.com/genv-lang/genv/internal/config"
	"github.com/genv-lang/genv/internal/diagnostic"
	"github.com/genv-lang/genv/internal/position"
)

// Operator is a user-declared binary operator.
type Operator struct {
	Precedence uint8
	Span       position.Span
}

// Context is the mutable state threaded through one file parse: node
// identities, the operator table, indentation, diagnostics and the file
// registry. A Context is owned by exactly one parse at a time.
type Context struct {
	path   string
	config *config.Config
	logger *slog.Logger

	spans  map[ast.NodeID]position.Span
	nextID ast.NodeID

	operators map[string]Operator

	// blockIndent is the width required of lines in the current block.
	blockIndent int
	// indentUnit is the file's indentation step; 0 until the first block.
	indentUnit int

	diagnostics *diagnostic.List
	files       *position.SourceMap
}

// NewContext creates the context for a root parse of path.
func NewContext(path string, cfg *config.Config) *Context {
	return &Context{
		path:        path,
		config:      cfg,
		logger:      cfg.Logger(),
		spans:       make(map[ast.NodeID]position.Span),
		operators:   make(map[string]Operator),
		diagnostics: diagnostic.NewList(),
		files:       position.NewSourceMap(),
	}
}

// Path returns the file this context parses.
func (c *Context) Path() string { return c.path }

// NewIdentity allocates the next NodeID and records its span.
func (c *Context) NewIdentity(span position.Span) ast.NodeID {
	id := c.nextID
	c.nextID++
	c.spans[id] = span
	return id
}

// NextID returns the id the next allocation will use.
func (c *Context) NextID() ast.NodeID { return c.nextID }

// Span returns the span recorded for id.
func (c *Context) Span(id ast.NodeID) (position.Span, bool) {
	s, ok := c.spans[id]
	return s, ok
}

// Diagnostics returns the diagnostics collected so far.
func (c *Context) Diagnostics() *diagnostic.List { return c.diagnostics }

// Files returns the registry of loaded files.
func (c *Context) Files() *position.SourceMap { return c.files }

// DeclareOperator registers lexeme with the given precedence. Built-in
// operators count as already declared.
func (c *Context) DeclareOperator(lexeme string, precedence uint8, span position.Span) error {
	if c.isOperator(lexeme) {
		return c.pushError(span, diagnostic.DuplicatedOperator{Lexeme: lexeme})
	}
	c.operators[lexeme] = Operator{Precedence: precedence, Span: span}
	return nil
}

func (c *Context) isOperator(lexeme string) bool {
	if _, ok := builtinOperators[lexeme]; ok {
		return true
	}
	_, ok := c.operators[lexeme]
	return ok
}

// lookupOperator resolves a lexeme against the built-in and declared tables.
func (c *Context) lookupOperator(lexeme string) (ast.BinaryOperator, uint8, bool) {
	if b, ok := builtinOperators[lexeme]; ok {
		return ast.BinaryOperator{Kind: b.kind, Lexeme: lexeme}, b.precedence, true
	}
	if op, ok := c.operators[lexeme]; ok {
		return ast.BinaryOperator{Kind: ast.BinaryCustom, Lexeme: lexeme}, op.Precedence, true
	}
	return ast.BinaryOperator{}, 0, false
}

func (c *Context) pushError(span position.Span, kind diagnostic.Kind) *Failure {
	d := diagnostic.New(span, kind)
	c.diagnostics.PushError(d)
	c.logger.Debug("parse error", slog.String("file", c.path), slog.String("diagnostic", d.String()))
	return &Failure{Diagnostic: d}
}

func (c *Context) pushWarning(span position.Span, kind diagnostic.Kind) {
	d := diagnostic.New(span, kind)
	c.diagnostics.PushWarning(d)
	c.logger.Debug("parse warning", slog.String("file", c.path), slog.String("diagnostic", d.String()))
}

// prune drops span entries allocated since from. The counter is left
// alone so ids stay unique.
func (c *Context) prune(from ast.NodeID) {
	for id := from; id < c.nextID; id++ {
		delete(c.spans, id)
	}
}

// child creates the context of a nested module parse. It continues the id
// sequence and starts everything else fresh.
func (c *Context) child(path string) *Context {
	return &Context{
		path:        path,
		config:      c.config,
		logger:      c.logger,
		spans:       make(map[ast.NodeID]position.Span),
		nextID:      c.nextID,
		operators:   make(map[string]Operator),
		diagnostics: diagnostic.NewList(),
		files:       position.NewSourceMap(),
	}
}

// merge splices a successfully parsed child back into c. A child operator
// that c already knows is reported at the child's declaration.
func (c *Context) merge(child *Context) error {
	c.diagnostics.Append(child.diagnostics)
	c.files.Merge(child.files)
	for id, span := range child.spans {
		c.spans[id] = span
	}
	if child.nextID > c.nextID {
		c.nextID = child.nextID
	}

	lexemes := make([]string, 0, len(child.operators))
	for lexeme := range child.operators {
		lexemes = append(lexemes, lexeme)
	}
	sort.Strings(lexemes)

	for _, lexeme := range lexemes {
		op := child.operators[lexeme]
		if c.isOperator(lexeme) {
			return c.pushError(op.Span, diagnostic.DuplicatedOperator{Lexeme: lexeme})
		}
		c.operators[lexeme] = op
	}
	return nil
}

// abandon records what a failed child parse produced before the failure.
func (c *Context) abandon(child *Context) {
	c.diagnostics.Append(child.diagnostics)
	c.files.Merge(child.files)
}
