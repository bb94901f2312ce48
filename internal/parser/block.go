package parser

import (
	"github.com/genv-lang/genv/internal/ast"
)

// block parses an indentation-delimited statement sequence. The cursor is
// expected at the line break that introduces it.
//
// The first content line fixes the block width: one indentation unit past
// the enclosing block. When the file's unit is still undetermined, that
// line's width defines it. A line of any other width ends the block.
func (p *parser) block() (*ast.Body, error) {
	outer := p.ctx.blockIndent
	defer func(nest int) {
		p.ctx.blockIndent = outer
		p.nest = nest
	}(p.nest)
	p.nest = 0

	var stmts []ast.Statement
	start := -1
	for {
		var stmt ast.Statement
		var stmtStart int
		err := p.attempt(func() error {
			if !p.lineBreaks() {
				return p.fail()
			}
			w := p.indentation()
			if p.ctx.indentUnit == 0 {
				if w <= outer {
					return p.fail()
				}
				p.ctx.indentUnit = w - outer
			}
			if w != outer+p.ctx.indentUnit {
				return p.fail()
			}
			p.ctx.blockIndent = w
			stmtStart = p.pos

			var err error
			stmt, err = p.statement()
			return err
		})
		if err == errNoMatch {
			break
		}
		if err != nil {
			return nil, err
		}
		if start < 0 {
			start = stmtStart
		}
		stmts = append(stmts, stmt)
	}

	if len(stmts) == 0 {
		return nil, p.fail()
	}
	return &ast.Body{Statements: stmts, Span: p.span(start)}, nil
}

// body parses what follows a construct header: an optional `=>`, then a
// block when the line ends there, else a single statement.
func (p *parser) body() (*ast.Body, error) {
	_ = p.sign("=>")
	return p.arrowBody()
}

// arrowBody is body for callers that have already matched `=>`.
func (p *parser) arrowBody() (*ast.Body, error) {
	if p.atLineBreak() {
		return p.block()
	}
	start := p.mark()
	stmt, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ast.Body{Statements: []ast.Statement{stmt}, Span: p.span(start)}, nil
}

// elseKeyword matches `else` on the current line or at the start of a
// following line aligned with the enclosing block.
func (p *parser) elseKeyword() error {
	if p.keyword("else") == nil {
		return nil
	}
	return p.attempt(func() error {
		if !p.lineBreaks() {
			return p.fail()
		}
		if p.indentation() != p.ctx.blockIndent {
			return p.fail()
		}
		return p.keyword("else")
	})
}

// elseBranch parses what follows `else`. A single `if` on the same line
// becomes an else-if branch.
func (p *parser) elseBranch() (ast.ElseBranch, error) {
	_ = p.sign("=>")
	if p.atLineBreak() {
		b, err := p.block()
		if err != nil {
			return nil, p.commit(err, "else body")
		}
		return b, nil
	}
	start := p.mark()
	stmt, err := p.statement()
	if err != nil {
		return nil, p.commit(err, "else body")
	}
	if nested, ok := stmt.(*ast.If); ok {
		return nested, nil
	}
	return &ast.Body{Statements: []ast.Statement{stmt}, Span: p.span(start)}, nil
}

// elseBody parses the else branch of the destructuring conditionals.
func (p *parser) elseBody() (*ast.Body, error) {
	b, err := p.body()
	return b, p.commit(err, "else body")
}
