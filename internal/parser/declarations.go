package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/genv-lang/genv/internal/ast"
	"github.com/genv-lang/genv/internal/diagnostic"
)

// statement parses one block item.
func (p *parser) statement() (ast.Statement, error) {
	return choice(p,
		p.functionStatement,
		p.variableStatement,
		p.whileStatement,
		p.forStatement,
		p.expressionStatement,
	)
}

func (p *parser) functionStatement() (ast.Statement, error) {
	fn, err := p.functionDecl()
	if err != nil {
		return nil, err
	}
	return fn, nil
}

func (p *parser) variableStatement() (ast.Statement, error) {
	v, err := p.variableDecl()
	if err != nil {
		return nil, err
	}
	return v, nil
}

// expressionStatement wraps an expression. A conditional stays an *ast.If
// so it can be used as a statement directly.
func (p *parser) expressionStatement() (ast.Statement, error) {
	start := p.mark()
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if n, ok := expr.(*ast.If); ok {
		return n, nil
	}
	return &ast.ExpressionStmt{Expr: expr, Span: p.span(start)}, nil
}

// functionDecl parses `[foreign ["c"]] name(params) => body`.
func (p *parser) functionDecl() (*ast.FunctionDecl, error) {
	start := p.mark()
	var foreign *ast.ForeignExport
	if p.keyword("foreign") == nil {
		foreign = &ast.ForeignExport{Convention: p.callingConvention()}
	}

	name, err := p.identifier()
	if err != nil {
		return nil, p.softUnless(foreign != nil, err, "function name")
	}
	if p.peek() != '(' {
		return nil, p.softUnless(foreign != nil, p.fail(), "parameter list")
	}
	params, err := p.parameters(foreign != nil)
	if err != nil {
		return nil, p.softUnless(foreign != nil, err, "parameter list")
	}
	if err := p.sign("=>"); err != nil {
		return nil, p.softUnless(foreign != nil, err, "'=>'")
	}
	body, err := p.arrowBody()
	if err != nil {
		return nil, p.commit(err, "function body")
	}

	fn := &ast.FunctionDecl{Name: name, Parameters: params, Body: body, Foreign: foreign, Span: p.span(start)}
	fn.ID = p.ctx.NewIdentity(fn.Span)
	return fn, nil
}

// softUnless commits err when committed is set and passes it through
// otherwise.
func (p *parser) softUnless(committed bool, err error, expected string) error {
	if committed {
		return p.commit(err, expected)
	}
	return err
}

// callingConvention parses an optional `"c"` marker.
func (p *parser) callingConvention() ast.CallingConvention {
	conv := ast.ConventionNative
	_ = p.attempt(func() error {
		s, err := p.rawString()
		if err != nil {
			return err
		}
		if s.Value != "c" {
			return p.fail()
		}
		conv = ast.ConventionC
		return nil
	})
	return conv
}

// parameters parses `(name, name = default, ...)`. Unless committed, a
// missing `)` is a soft failure, so that a call such as `f(1)` can still
// be parsed as an expression.
func (p *parser) parameters(committed bool) ([]*ast.Parameter, error) {
	var params []*ast.Parameter
	err := p.enclosedWith("(", ")", committed, func() error {
		var err error
		params, err = separated(p, ",", 0, p.parameter)
		return err
	})
	return params, err
}

func (p *parser) parameter() (*ast.Parameter, error) {
	start := p.mark()
	name, err := p.identifier()
	if err != nil {
		return nil, err
	}
	param := &ast.Parameter{Name: name}
	if p.sign("=") == nil {
		def, err := p.expression()
		if err != nil {
			return nil, p.commit(err, "default value")
		}
		param.Default = def
	}
	param.Span = p.span(start)
	return param, nil
}

// variableDecl parses `[var|varip|const] [type] name = value`.
func (p *parser) variableDecl() (*ast.VariableDecl, error) {
	start := p.mark()
	mode := p.declarationMode()

	var dt *ast.DataType
	name, err := attemptValue(p, func() (*ast.Identifier, error) {
		t, err := p.dataType()
		if err != nil {
			return nil, err
		}
		id, err := p.identifier()
		if err != nil {
			return nil, err
		}
		if err := p.sign("="); err != nil {
			return nil, err
		}
		dt = t
		return id, nil
	})
	if err == errNoMatch {
		name, err = attemptValue(p, func() (*ast.Identifier, error) {
			id, err := p.identifier()
			if err != nil {
				return nil, err
			}
			return id, p.sign("=")
		})
	}
	if err != nil {
		return nil, p.softUnless(mode != ast.ModeNone, err, "variable declaration")
	}

	value, err := p.expression()
	if err != nil {
		return nil, p.commit(err, "expression")
	}
	return &ast.VariableDecl{Mode: mode, Type: dt, Name: name, Value: value, Span: p.span(start)}, nil
}

func (p *parser) declarationMode() ast.DeclarationMode {
	for _, m := range []ast.DeclarationMode{ast.ModeVarip, ast.ModeVar, ast.ModeConst} {
		if p.keyword(m.String()) == nil {
			return m
		}
	}
	return ast.ModeNone
}

// whileStatement parses `while cond body`.
func (p *parser) whileStatement() (ast.Statement, error) {
	start := p.mark()
	if err := p.keyword("while"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, p.commit(err, "condition")
	}
	body, err := p.body()
	if err != nil {
		return nil, p.commit(err, "loop body")
	}
	return &ast.While{Cond: cond, Body: body, Span: p.span(start)}, nil
}

// forStatement parses `for name in iterable body`.
func (p *parser) forStatement() (ast.Statement, error) {
	start := p.mark()
	if err := p.keyword("for"); err != nil {
		return nil, err
	}
	name, err := p.identifier()
	if err != nil {
		return nil, p.commit(err, "loop variable")
	}
	if err := p.commit(p.keyword("in"), "'in'"); err != nil {
		return nil, err
	}
	iterable, err := p.expression()
	if err != nil {
		return nil, p.commit(err, "iterable")
	}
	body, err := p.body()
	if err != nil {
		return nil, p.commit(err, "loop body")
	}
	return &ast.For{Var: name, Iterable: iterable, Body: body, Span: p.span(start)}, nil
}

// ====== Top-level declarations ======

// topLevel parses one module item.
func (p *parser) topLevel() (ast.TopLevel, error) {
	if p.peek() == '#' {
		return p.comment(), nil
	}
	return choice(p,
		p.moduleDecl,
		p.foreignImport,
		p.importDecl,
		p.infixDecl,
		p.typeDefinition,
		p.topLevelStatement,
	)
}

func (p *parser) topLevelStatement() (ast.TopLevel, error) {
	stmt, err := p.statement()
	if err != nil {
		return nil, err
	}
	item, ok := stmt.(ast.TopLevel)
	if !ok {
		return nil, p.fail()
	}
	return item, nil
}

// comment consumes a full-line comment. `#@version=` pragmas are checked
// against the configured language version.
func (p *parser) comment() ast.TopLevel {
	start := p.pos
	p.skipComment()
	c := &ast.Comment{Text: p.src[start+1 : p.pos], Span: p.span(start)}
	if v, ok := strings.CutPrefix(c.Text, "@version="); ok {
		p.checkVersion(strings.TrimSpace(v), c)
	}
	return c
}

// importDecl parses `import path [as alias] [{names}]`.
func (p *parser) importDecl() (ast.TopLevel, error) {
	start := p.mark()
	if err := p.keyword("import"); err != nil {
		return nil, err
	}
	path, err := p.modulePath()
	if err != nil {
		return nil, p.commit(err, "module path")
	}
	node := &ast.Import{Path: path}
	if p.keyword("as") == nil {
		if node.Alias, err = p.identifier(); err != nil {
			return nil, p.commit(err, "alias")
		}
	}
	if p.peekBlank() == '{' {
		err := p.enclosed("{", "}", func() error {
			var err error
			node.Names, err = separated(p, ",", 1, p.identifier)
			return p.commit(err, "imported name")
		})
		if err != nil {
			return nil, err
		}
	}
	node.Span = p.span(start)
	return node, nil
}

// modulePath parses `pkg::a::b` (external) or `::a::b` (internal).
func (p *parser) modulePath() (*ast.ModulePath, error) {
	p.blank()
	path := &ast.ModulePath{External: !p.hasPrefix(separator)}
	if path.External {
		pkg, err := p.identifier()
		if err != nil {
			return nil, err
		}
		path.Components = append(path.Components, pkg)
	}
	for p.hasPrefix(separator) {
		p.pos += len(separator)
		c, err := p.identifier()
		if err != nil {
			return nil, p.commit(err, "module path component")
		}
		path.Components = append(path.Components, c)
	}
	if len(path.Components) == 0 {
		return nil, p.fail()
	}
	return path, nil
}

// foreignImport parses `import foreign ["c"] name Type`.
func (p *parser) foreignImport() (ast.TopLevel, error) {
	start := p.mark()
	if err := p.keyword("import"); err != nil {
		return nil, err
	}
	if err := p.keyword("foreign"); err != nil {
		return nil, err
	}
	conv := p.callingConvention()
	name, err := p.identifier()
	if err != nil {
		return nil, p.commit(err, "foreign function name")
	}
	t, err := p.typeExpr()
	if err != nil {
		return nil, p.commit(err, "type")
	}
	return &ast.ForeignImport{Convention: conv, Name: name, Type: t, Span: p.span(start)}, nil
}

// typeDefinition parses `type Name = Type` and `type Name {field Type ...}`.
func (p *parser) typeDefinition() (ast.TopLevel, error) {
	start := p.mark()
	if err := p.keyword("type"); err != nil {
		return nil, err
	}
	name, err := p.identifier()
	if err != nil {
		return nil, p.commit(err, "type name")
	}

	if p.sign("=") == nil {
		t, err := p.typeExpr()
		if err != nil {
			return nil, p.commit(err, "type")
		}
		return &ast.TypeAlias{Name: name, Type: t, Span: p.span(start)}, nil
	}

	if p.peekBlank() != '{' {
		return nil, p.commit(errNoMatch, "'=' or '{'")
	}
	node := &ast.RecordDefinition{Name: name}
	err = p.enclosed("{", "}", func() error {
		seen := make(map[string]bool)
		for {
			f, err := attemptValue(p, p.recordFieldDefinition)
			if err == errNoMatch {
				return nil
			}
			if err != nil {
				return err
			}
			if seen[f.Name.Name] {
				return p.hard(f.Span, diagnostic.SyntaxError{Message: fmt.Sprintf("duplicate field %q", f.Name.Name)})
			}
			seen[f.Name.Name] = true
			node.Fields = append(node.Fields, f)
			_ = p.sign(",")
		}
	})
	if err != nil {
		return nil, err
	}
	node.Span = p.span(start)
	return node, nil
}

func (p *parser) recordFieldDefinition() (*ast.RecordFieldDefinition, error) {
	start := p.mark()
	name, err := p.identifier()
	if err != nil {
		return nil, err
	}
	t, err := p.typeExpr()
	if err != nil {
		return nil, p.commit(err, "field type")
	}
	return &ast.RecordFieldDefinition{Name: name, Type: t, Span: p.span(start)}, nil
}

// infixDecl parses `infix <lexeme> <precedence>` and registers the operator.
func (p *parser) infixDecl() (ast.TopLevel, error) {
	start := p.mark()
	if err := p.keyword("infix"); err != nil {
		return nil, err
	}

	p.blank()
	lexeme := p.scan(p.cfg.IsOperatorChar)
	if lexeme == "" {
		return nil, p.commit(errNoMatch, "operator lexeme")
	}

	precStart := p.mark()
	digits := p.scan(isDigit)
	if digits == "" {
		return nil, p.commit(errNoMatch, "precedence")
	}
	got, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		got = math.MaxUint64
	}
	if got > math.MaxUint8 {
		return nil, p.hard(p.span(precStart), diagnostic.OutOfBounds{Got: got, Expected: math.MaxUint8})
	}

	node := &ast.InfixDecl{Lexeme: lexeme, Precedence: uint8(got), Span: p.span(start)}
	if err := p.ctx.DeclareOperator(lexeme, node.Precedence, node.Span); err != nil {
		return nil, err
	}
	return node, nil
}

// checkVersion warns when a `#@version=` pragma names a version outside the
// configured constraint. It never fails the parse.
func (p *parser) checkVersion(v string, c *ast.Comment) {
	cons, err := p.cfg.VersionConstraint()
	if err != nil {
		return
	}
	if !strings.Contains(v, ".") {
		v += ".0.0"
	}
	version, err := semver.NewVersion(v)
	if err != nil {
		p.ctx.pushWarning(c.Span, diagnostic.SyntaxError{Message: fmt.Sprintf("invalid language version %q", v)})
		return
	}
	if !cons.Check(version) {
		p.ctx.pushWarning(c.Span, diagnostic.SyntaxError{
			Message: fmt.Sprintf("language version %s does not satisfy %s", version, cons),
		})
	}
}
