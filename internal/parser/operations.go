package parser

import (
	"github.com/genv-lang/genv/internal/ast"
)

type builtinOperator struct {
	kind       ast.BinaryKind
	precedence uint8
}

// builtinOperators is the fixed part of the operator table. Higher binds
// tighter.
var builtinOperators = map[string]builtinOperator{
	"|":  {ast.BinaryOr, 20},
	"&":  {ast.BinaryAnd, 30},
	"==": {ast.BinaryEqual, 40},
	"!=": {ast.BinaryNotEqual, 40},
	"<":  {ast.BinaryLess, 40},
	"<=": {ast.BinaryLessEqual, 40},
	">":  {ast.BinaryGreater, 40},
	">=": {ast.BinaryGreaterEqual, 40},
	"+":  {ast.BinaryAdd, 60},
	"-":  {ast.BinarySubtract, 60},
	"*":  {ast.BinaryMultiply, 70},
	"/":  {ast.BinaryDivide, 70},
	"%":  {ast.BinaryModulo, 70},
}

// pendingOperation is one (operator, operand) pair following the first
// operand of an expression.
type pendingOperation struct {
	op         ast.BinaryOperator
	precedence uint8
	rhs        ast.Expression
}

// reduceOperations folds a flat operand/operator sequence into a tree.
// Higher precedence binds first and equal precedence associates left.
func reduceOperations(first ast.Expression, ops []pendingOperation) ast.Expression {
	operands := []ast.Expression{first}
	var stack []pendingOperation

	reduceTop := func() {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		rhs := operands[len(operands)-1]
		lhs := operands[len(operands)-2]
		operands = operands[:len(operands)-2]
		operands = append(operands, &ast.BinaryOperation{
			Op:   top.op,
			Lhs:  lhs,
			Rhs:  rhs,
			Span: lhs.GetSpan().Between(rhs.GetSpan()),
		})
	}

	for _, o := range ops {
		for len(stack) > 0 && stack[len(stack)-1].precedence >= o.precedence {
			reduceTop()
		}
		stack = append(stack, o)
		operands = append(operands, o.rhs)
	}
	for len(stack) > 0 {
		reduceTop()
	}
	return operands[0]
}

// binaryOperator matches the longest known operator at the cursor.
func (p *parser) binaryOperator() (ast.BinaryOperator, uint8, error) {
	save := p.pos
	p.blank()
	run := p.pos
	for run < len(p.src) && p.cfg.IsOperatorChar(p.src[run]) {
		run++
	}
	for end := run; end > p.pos; end-- {
		lexeme := p.src[p.pos:end]
		op, prec, ok := p.ctx.lookupOperator(lexeme)
		if !ok {
			continue
		}
		if end < len(p.src) && p.cfg.IsOperatorModifier(p.src[end]) {
			break
		}
		p.pos = end
		return op, prec, nil
	}
	err := p.fail()
	p.pos = save
	return ast.BinaryOperator{}, 0, err
}
