package parser

import (
	"fmt"
	"strings"

	"github.com/genv-lang/genv/internal/ast"
	"github.com/genv-lang/genv/internal/diagnostic"
)

// expression parses a prefix operation or atom followed by any number of
// (binary operator, operand) pairs, then reduces them by precedence.
func (p *parser) expression() (ast.Expression, error) {
	first, err := p.prefixLike()
	if err != nil {
		return nil, err
	}

	var ops []pendingOperation
	for {
		op, prec, err := p.binaryOperator()
		if err != nil {
			break
		}
		rhs, err := p.prefixLike()
		if err != nil {
			return nil, p.commit(err, fmt.Sprintf("operand after '%s'", op.Lexeme))
		}
		ops = append(ops, pendingOperation{op: op, precedence: prec, rhs: rhs})
	}
	return reduceOperations(first, ops), nil
}

// prefixLike parses a prefix operation, whose operand includes its suffixes,
// or a suffixed atom.
func (p *parser) prefixLike() (ast.Expression, error) {
	start := p.mark()
	op, ok := p.prefixOperator()
	if !ok {
		return p.suffixLike()
	}
	operand, err := p.prefixLike()
	if err != nil {
		return nil, p.commit(err, "operand of '"+op.String()+"'")
	}
	return &ast.UnaryOperation{Op: op, Operand: operand, Span: p.span(start)}, nil
}

func (p *parser) prefixOperator() (ast.UnaryOperator, bool) {
	switch {
	case p.sign("!") == nil:
		return ast.UnaryNot, true
	case p.sign("-") == nil:
		return ast.UnaryNegate, true
	}
	return 0, false
}

// suffixLike parses an atom followed by calls, field accesses and `?`.
func (p *parser) suffixLike() (ast.Expression, error) {
	start := p.mark()
	expr, err := p.atom()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.peek() == '(':
			// no space is allowed before a call's parenthesis
			args, err := p.arguments()
			if err != nil {
				return nil, err
			}
			expr = &ast.Call{Callee: expr, Args: args, Span: p.span(start)}
		case p.fieldDot():
			field, err := p.identifier()
			if err != nil {
				return nil, p.commit(err, "field name")
			}
			expr = &ast.FieldAccess{Record: expr, Field: field, Span: p.span(start)}
		case p.tryMark():
			expr = &ast.UnaryOperation{Op: ast.UnaryTry, Operand: expr, Span: p.span(start)}
		default:
			return expr, nil
		}
	}
}

func (p *parser) arguments() ([]ast.Expression, error) {
	var args []ast.Expression
	err := p.enclosed("(", ")", func() error {
		var err error
		args, err = separated(p, ",", 0, p.expression)
		return err
	})
	return args, err
}

// fieldDot matches a single '.', leaving spreads alone.
func (p *parser) fieldDot() bool {
	save := p.pos
	p.blank()
	if p.peek() == '.' && p.peekAt(1) != '.' {
		p.pos++
		return true
	}
	p.pos = save
	return false
}

// tryMark matches a '?' that does not start a longer operator.
func (p *parser) tryMark() bool {
	save := p.pos
	p.blank()
	if p.peek() == '?' && !p.cfg.IsOperatorChar(p.peekAt(1)) {
		p.pos++
		return true
	}
	p.pos = save
	return false
}

// atom tries the atomic expression forms in order.
func (p *parser) atom() (ast.Expression, error) {
	return choice(p,
		p.lambda,
		p.ifBinding,
		p.ifList,
		p.ifExpression,
		p.record,
		p.listLiteral,
		p.mapLiteral,
		p.number,
		p.stringLiteral,
		p.variable,
		p.parenthesized,
	)
}

// lambda parses `\(params) => body`.
func (p *parser) lambda() (ast.Expression, error) {
	start := p.mark()
	if p.peek() != '\\' || p.peekAt(1) != '(' {
		return nil, p.fail()
	}
	p.pos++
	params, err := p.parameters(true)
	if err != nil {
		return nil, p.commit(err, "parameter list")
	}
	if err := p.commit(p.sign("=>"), "'=>'"); err != nil {
		return nil, err
	}
	body, err := p.arrowBody()
	if err != nil {
		return nil, p.commit(err, "lambda body")
	}
	return &ast.Lambda{Params: params, Body: body, Span: p.span(start)}, nil
}

// ifExpression parses `if cond body [else ...]`.
func (p *parser) ifExpression() (ast.Expression, error) {
	n, err := p.ifNode()
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (p *parser) ifNode() (*ast.If, error) {
	start := p.mark()
	if err := p.keyword("if"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, p.commit(err, "condition")
	}
	then, err := p.body()
	if err != nil {
		return nil, p.commit(err, "if body")
	}

	node := &ast.If{Cond: cond, Then: then}
	if p.elseKeyword() == nil {
		if node.Else, err = p.elseBranch(); err != nil {
			return nil, err
		}
	}
	node.Span = p.span(start)
	node.ID = p.ctx.NewIdentity(node.Span)
	return node, nil
}

// ifBinding parses the two conditionals that bind a name:
// `if name = argument as T ...` and `if name = map[key] ...`.
func (p *parser) ifBinding() (ast.Expression, error) {
	start := p.mark()
	if err := p.keyword("if"); err != nil {
		return nil, err
	}
	name, err := p.identifier()
	if err != nil {
		return nil, err
	}
	if err := p.sign("="); err != nil {
		return nil, err
	}
	argument, err := p.expression()
	if err != nil {
		return nil, p.commit(err, "expression")
	}

	if p.keyword("as") == nil {
		return p.ifTypeTail(start, name, argument)
	}
	if p.peekBlank() == '[' {
		return p.ifMapTail(start, name, argument)
	}
	return nil, p.commit(errNoMatch, "'as' or '['")
}

// peekBlank returns the next significant byte.
func (p *parser) peekBlank() byte {
	off := p.skipBlankAhead()
	if off >= len(p.src) {
		return 0
	}
	return p.src[off]
}

func (p *parser) ifTypeTail(start int, name *ast.Identifier, argument ast.Expression) (ast.Expression, error) {
	node := &ast.IfType{Name: name, Argument: argument}
	branch := func() error {
		t, err := p.typeExpr()
		if err != nil {
			return p.commit(err, "type")
		}
		body, err := p.body()
		if err != nil {
			return p.commit(err, "branch body")
		}
		node.Branches = append(node.Branches, &ast.IfTypeBranch{Type: t, Body: body})
		return nil
	}

	if err := branch(); err != nil {
		return nil, err
	}
	for {
		err := p.attempt(func() error {
			if err := p.elseKeyword(); err != nil {
				return err
			}
			return p.keyword("if")
		})
		if err != nil {
			break
		}
		if err := branch(); err != nil {
			return nil, err
		}
	}
	if p.elseKeyword() == nil {
		els, err := p.elseBody()
		if err != nil {
			return nil, err
		}
		node.Else = els
	}
	node.Span = p.span(start)
	return node, nil
}

func (p *parser) ifMapTail(start int, name *ast.Identifier, m ast.Expression) (ast.Expression, error) {
	var key ast.Expression
	err := p.enclosed("[", "]", func() error {
		var err error
		key, err = p.expression()
		return p.commit(err, "key expression")
	})
	if err != nil {
		return nil, err
	}
	then, err := p.body()
	if err != nil {
		return nil, p.commit(err, "if body")
	}
	if err := p.commit(p.elseKeyword(), "'else'"); err != nil {
		return nil, err
	}
	els, err := p.elseBody()
	if err != nil {
		return nil, err
	}
	return &ast.IfMap{Name: name, Map: m, Key: key, Then: then, Else: els, Span: p.span(start)}, nil
}

// ifList parses `if [first, ...rest] = argument body else body`.
func (p *parser) ifList() (ast.Expression, error) {
	start := p.mark()
	if err := p.keyword("if"); err != nil {
		return nil, err
	}
	var first, rest *ast.Identifier
	err := p.enclosed("[", "]", func() error {
		var err error
		if first, err = p.identifier(); err != nil {
			return err
		}
		if err = p.sign(","); err != nil {
			return err
		}
		if err = p.sign("..."); err != nil {
			return err
		}
		rest, err = p.identifier()
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := p.sign("="); err != nil {
		return nil, err
	}

	argument, err := p.expression()
	if err != nil {
		return nil, p.commit(err, "expression")
	}
	then, err := p.body()
	if err != nil {
		return nil, p.commit(err, "if body")
	}
	if err := p.commit(p.elseKeyword(), "'else'"); err != nil {
		return nil, err
	}
	els, err := p.elseBody()
	if err != nil {
		return nil, err
	}
	return &ast.IfList{Argument: argument, First: first, Rest: rest, Then: then, Else: els, Span: p.span(start)}, nil
}

// record parses `Name{[...base,] field: value, ...}`. The brace must
// follow the name directly.
func (p *parser) record() (ast.Expression, error) {
	start := p.mark()
	name, err := p.qualifiedIdentifier()
	if err != nil {
		return nil, err
	}
	if p.peek() != '{' {
		return nil, p.fail()
	}

	node := &ast.Record{Name: name}
	err = p.enclosed("{", "}", func() error {
		if p.sign("...") == nil {
			base, err := p.expression()
			if err != nil {
				return p.commit(err, "record to update")
			}
			node.Base = base
			if p.sign(",") != nil {
				return nil
			}
		}
		fields, err := separated(p, ",", 0, p.recordField)
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(fields))
		for _, f := range fields {
			if seen[f.Name.Name] {
				return p.hard(f.Span, diagnostic.SyntaxError{Message: fmt.Sprintf("duplicate field %q", f.Name.Name)})
			}
			seen[f.Name.Name] = true
		}
		node.Fields = fields
		return nil
	})
	if err != nil {
		return nil, err
	}
	node.Span = p.span(start)
	return node, nil
}

func (p *parser) recordField() (*ast.RecordField, error) {
	start := p.mark()
	name, err := p.identifier()
	if err != nil {
		return nil, err
	}
	if err := p.colon(); err != nil {
		return nil, err
	}
	value, err := p.expression()
	if err != nil {
		return nil, p.commit(err, "field value")
	}
	return &ast.RecordField{Name: name, Value: value, Span: p.span(start)}, nil
}

// listLiteral parses `[Type elements...]` and `[Type element for ...]`.
func (p *parser) listLiteral() (ast.Expression, error) {
	start := p.mark()
	if p.peek() != '[' {
		return nil, p.fail()
	}

	var result ast.Expression
	err := p.enclosed("[", "]", func() error {
		elemType, err := p.typeExpr()
		if err != nil {
			return p.commit(err, "element type")
		}

		comp, err := attemptValue(p, func() (*ast.ListComprehension, error) {
			return p.comprehension(elemType)
		})
		if err == nil {
			result = comp
			return nil
		}
		if err != errNoMatch {
			return err
		}

		elems, err := separated(p, ",", 0, p.listElement)
		if err != nil {
			return err
		}
		result = &ast.List{ElemType: elemType, Elements: elems}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch n := result.(type) {
	case *ast.List:
		n.Span = p.span(start)
	case *ast.ListComprehension:
		n.Span = p.span(start)
	}
	return result, nil
}

func (p *parser) listElement() (*ast.ListElement, error) {
	if p.sign("...") == nil {
		v, err := p.expression()
		if err != nil {
			return nil, p.commit(err, "expression to spread")
		}
		return &ast.ListElement{Spread: true, Value: v}, nil
	}
	v, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &ast.ListElement{Value: v}, nil
}

func (p *parser) comprehension(elemType ast.Type) (*ast.ListComprehension, error) {
	element, err := p.expression()
	if err != nil {
		return nil, err
	}
	var branches []*ast.ComprehensionBranch
	for {
		b, err := attemptValue(p, p.comprehensionBranch)
		if err == errNoMatch {
			break
		}
		if err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	if len(branches) == 0 {
		return nil, p.fail()
	}
	return &ast.ListComprehension{ElemType: elemType, Element: element, Branches: branches}, nil
}

// comprehensionBranch parses `for names in iteratees [if cond]`.
func (p *parser) comprehensionBranch() (*ast.ComprehensionBranch, error) {
	start := p.mark()
	if err := p.keyword("for"); err != nil {
		return nil, err
	}
	names, err := separated(p, ",", 1, p.identifier)
	if err != nil {
		return nil, p.commit(err, "element name")
	}
	if err := p.commit(p.keyword("in"), "'in'"); err != nil {
		return nil, err
	}
	iteratees, err := separated(p, ",", 1, p.expression)
	if err != nil {
		return nil, p.commit(err, "iteratee")
	}
	branch := &ast.ComprehensionBranch{Names: names, Iteratees: iteratees}
	if p.keyword("if") == nil {
		cond, err := p.expression()
		if err != nil {
			return nil, p.commit(err, "condition")
		}
		branch.Cond = cond
	}
	branch.Span = p.span(start)
	return branch, nil
}

// mapLiteral parses `{Key: Value entries...}`.
func (p *parser) mapLiteral() (ast.Expression, error) {
	start := p.mark()
	if p.peek() != '{' {
		return nil, p.fail()
	}
	node := &ast.Map{}
	err := p.enclosed("{", "}", func() error {
		var err error
		if node.KeyType, err = p.typeExpr(); err != nil {
			return p.commit(err, "key type")
		}
		if err := p.commit(p.colon(), "':'"); err != nil {
			return err
		}
		if node.ValueType, err = p.typeExpr(); err != nil {
			return p.commit(err, "value type")
		}
		node.Elements, err = separated(p, ",", 0, p.mapElement)
		return err
	})
	if err != nil {
		return nil, err
	}
	node.Span = p.span(start)
	return node, nil
}

func (p *parser) mapElement() (*ast.MapElement, error) {
	if p.sign("...") == nil {
		v, err := p.expression()
		if err != nil {
			return nil, p.commit(err, "map to spread")
		}
		return &ast.MapElement{Spread: true, Value: v}, nil
	}
	key, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.colon(); err != nil {
		return nil, err
	}
	value, err := p.expression()
	if err != nil {
		return nil, p.commit(err, "map value")
	}
	return &ast.MapElement{Key: key, Value: value}, nil
}

// number parses binary (0b), hexadecimal (0x) and decimal literals.
func (p *parser) number() (ast.Expression, error) {
	start := p.mark()
	switch {
	case p.hasPrefix("0b"):
		p.pos += 2
		digits := p.scan(func(b byte) bool { return b == '0' || b == '1' })
		if digits == "" {
			return nil, p.hard(p.pointSpan(p.pos), diagnostic.SyntaxError{Message: "expected binary digits"})
		}
		return &ast.Number{Repr: ast.NumberBinary, Text: digits, Span: p.span(start)}, nil
	case p.hasPrefix("0x"):
		p.pos += 2
		digits := p.scan(isHexDigit)
		if digits == "" {
			return nil, p.hard(p.pointSpan(p.pos), diagnostic.SyntaxError{Message: "expected hexadecimal digits"})
		}
		return &ast.Number{Repr: ast.NumberHexadecimal, Text: strings.ToLower(digits), Span: p.span(start)}, nil
	}

	if p.scan(isDigit) == "" {
		return nil, p.fail()
	}
	if p.peek() == '.' && isDigit(p.peekAt(1)) {
		p.pos++
		p.scan(isDigit)
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		save := p.pos
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		if p.scan(isDigit) == "" {
			p.pos = save
		}
	}
	return &ast.Number{Repr: ast.NumberDecimal, Text: p.src[start:p.pos], Span: p.span(start)}, nil
}

func (p *parser) scan(accept func(byte) bool) string {
	start := p.pos
	for !p.eof() && accept(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// stringLiteral parses a double-quoted string. Escapes are validated and
// kept as written.
func (p *parser) stringLiteral() (ast.Expression, error) {
	s, err := p.rawString()
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (p *parser) rawString() (*ast.String, error) {
	start := p.mark()
	if p.peek() != '"' {
		return nil, p.fail()
	}
	p.pos++
	for {
		if p.eof() {
			return nil, p.hard(p.span(start), diagnostic.SyntaxError{Message: "unterminated string"})
		}
		switch c := p.src[p.pos]; c {
		case '"':
			p.pos++
			return &ast.String{Value: p.src[start+1 : p.pos-1], Span: p.span(start)}, nil
		case '\\':
			esc := p.pos
			switch p.peekAt(1) {
			case '\\', '"', 'n', 'r', 't':
				p.pos += 2
			case 'x':
				if !isHexDigit(p.peekAt(2)) || !isHexDigit(p.peekAt(3)) {
					return nil, p.hard(p.file.SpanOf(esc, esc+2), diagnostic.SyntaxError{Message: "invalid hexadecimal escape"})
				}
				p.pos += 4
			default:
				return nil, p.hard(p.file.SpanOf(esc, esc+2), diagnostic.SyntaxError{Message: "invalid escape sequence"})
			}
		default:
			p.pos++
		}
	}
}

// variable parses a reference to a possibly qualified name.
func (p *parser) variable() (ast.Expression, error) {
	name, err := p.qualifiedIdentifier()
	if err != nil {
		return nil, err
	}
	return &ast.Variable{Name: name, Span: name.Span}, nil
}

func (p *parser) parenthesized() (ast.Expression, error) {
	if p.peekBlank() != '(' {
		return nil, p.fail()
	}
	var inner ast.Expression
	err := p.enclosed("(", ")", func() error {
		var err error
		inner, err = p.expression()
		return p.commit(err, "expression")
	})
	return inner, err
}
