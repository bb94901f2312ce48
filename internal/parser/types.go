package parser

import (
	"github.com/genv-lang/genv/internal/ast"
)

// typeExpr parses a function type or a union of atomic types.
func (p *parser) typeExpr() (ast.Type, error) {
	return choice(p, p.functionType, p.unionType)
}

// functionType parses `\(T, U) R`.
func (p *parser) functionType() (ast.Type, error) {
	start := p.mark()
	if p.peek() != '\\' || p.peekAt(1) != '(' {
		return nil, p.fail()
	}
	p.pos++

	var params []ast.Type
	err := p.enclosed("(", ")", func() error {
		var err error
		params, err = separated(p, ",", 0, p.typeExpr)
		return err
	})
	if err != nil {
		return nil, p.commit(err, "parameter types")
	}
	result, err := p.typeExpr()
	if err != nil {
		return nil, p.commit(err, "result type")
	}
	return &ast.FunctionType{Params: params, Result: result, Span: p.span(start)}, nil
}

// unionType parses `A | B | C` as ((A | B) | C).
func (p *parser) unionType() (ast.Type, error) {
	t, err := p.atomicType()
	if err != nil {
		return nil, err
	}
	for p.sign("|") == nil {
		rhs, err := p.atomicType()
		if err != nil {
			return nil, p.commit(err, "type after '|'")
		}
		t = &ast.UnionType{Lhs: t, Rhs: rhs, Span: t.GetSpan().Between(rhs.GetSpan())}
	}
	return t, nil
}

func (p *parser) atomicType() (ast.Type, error) {
	return choice(p, p.namedType, p.listType, p.mapType, p.parenthesizedType)
}

func (p *parser) namedType() (ast.Type, error) {
	name, start, err := p.qualifiedName()
	if err != nil {
		return nil, err
	}
	return &ast.NamedType{Name: name, Span: p.span(start)}, nil
}

func (p *parser) listType() (ast.Type, error) {
	start := p.mark()
	if p.peek() != '[' {
		return nil, p.fail()
	}
	var elem ast.Type
	err := p.enclosed("[", "]", func() error {
		var err error
		elem, err = p.typeExpr()
		return p.commit(err, "element type")
	})
	if err != nil {
		return nil, err
	}
	return &ast.ListType{Elem: elem, Span: p.span(start)}, nil
}

func (p *parser) mapType() (ast.Type, error) {
	start := p.mark()
	if p.peek() != '{' {
		return nil, p.fail()
	}
	node := &ast.MapType{}
	err := p.enclosed("{", "}", func() error {
		var err error
		if node.Key, err = p.typeExpr(); err != nil {
			return p.commit(err, "key type")
		}
		if err := p.commit(p.colon(), "':'"); err != nil {
			return err
		}
		node.Value, err = p.typeExpr()
		return p.commit(err, "value type")
	})
	if err != nil {
		return nil, err
	}
	node.Span = p.span(start)
	return node, nil
}

func (p *parser) parenthesizedType() (ast.Type, error) {
	if p.peekBlank() != '(' {
		return nil, p.fail()
	}
	var inner ast.Type
	err := p.enclosed("(", ")", func() error {
		var err error
		inner, err = p.typeExpr()
		return p.commit(err, "type")
	})
	return inner, err
}

var dataTypeKinds = map[string]ast.DataTypeKind{
	"int":      ast.TypeInt,
	"float":    ast.TypeFloat,
	"bool":     ast.TypeBool,
	"color":    ast.TypeColor,
	"string":   ast.TypeString,
	"line":     ast.TypeLine,
	"linefill": ast.TypeLineFill,
	"label":    ast.TypeLabel,
	"box":      ast.TypeBox,
	"table":    ast.TypeTable,
	"UDF":      ast.TypeUDF,
	"array":    ast.TypeArray,
	"matrix":   ast.TypeMatrix,
}

// dataType parses a declaration type such as `int` or `array<float>`.
func (p *parser) dataType() (*ast.DataType, error) {
	save := p.pos
	p.blank()
	kind, ok := dataTypeKinds[p.word()]
	if !ok {
		err := p.fail()
		p.pos = save
		return nil, err
	}
	dt := &ast.DataType{Kind: kind}
	if kind != ast.TypeArray && kind != ast.TypeMatrix {
		return dt, nil
	}

	if err := p.sign("<"); err != nil {
		p.pos = save
		return nil, err
	}
	elem, err := p.dataType()
	if err != nil {
		p.pos = save
		return nil, err
	}
	if err := p.sign(">"); err != nil {
		p.pos = save
		return nil, err
	}
	dt.Elem = elem
	return dt, nil
}
