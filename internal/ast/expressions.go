package ast

import (
	"github.com/genv-lang/genv/internal/position"
)

// NumberRepr is the literal form a number was written in.
type NumberRepr int

const (
	NumberDecimal NumberRepr = iota
	NumberBinary
	NumberHexadecimal
)

// Number is a numeric literal. Text holds the digits without prefix;
// hexadecimal digits are lower-cased.
type Number struct {
	Repr NumberRepr
	Text string
	Span position.Span
}

func (n *Number) GetSpan() position.Span { return n.Span }
func (n *Number) expressionNode()        {}

// String is a string literal. Value keeps escape sequences as written.
type String struct {
	Value string
	Span  position.Span
}

func (s *String) GetSpan() position.Span { return s.Span }
func (s *String) expressionNode()        {}

// List is `[Type elements...]`.
type List struct {
	ElemType Type
	Elements []*ListElement
	Span     position.Span
}

func (l *List) GetSpan() position.Span { return l.Span }
func (l *List) expressionNode()        {}

// ListElement is a single element or a `...spread`.
type ListElement struct {
	Spread bool
	Value  Expression
}

// ListComprehension is `[Type element for names in iteratees if cond]`.
type ListComprehension struct {
	ElemType Type
	Element  Expression
	Branches []*ComprehensionBranch
	Span     position.Span
}

func (l *ListComprehension) GetSpan() position.Span { return l.Span }
func (l *ListComprehension) expressionNode()        {}

// ComprehensionBranch is one `for ... in ... [if ...]` clause.
type ComprehensionBranch struct {
	Names     []*Identifier
	Iteratees []Expression
	Cond      Expression
	Span      position.Span
}

func (c *ComprehensionBranch) GetSpan() position.Span { return c.Span }

// Map is `{Key: Value entries...}`.
type Map struct {
	KeyType   Type
	ValueType Type
	Elements  []*MapElement
	Span      position.Span
}

func (m *Map) GetSpan() position.Span { return m.Span }
func (m *Map) expressionNode()        {}

// MapElement is `key: value` or, when Spread is set, `...value`.
type MapElement struct {
	Key    Expression
	Value  Expression
	Spread bool
}

// Record is `Name{[...base,] field: value, ...}`.
type Record struct {
	Name   *Identifier
	Base   Expression
	Fields []*RecordField
	Span   position.Span
}

func (r *Record) GetSpan() position.Span { return r.Span }
func (r *Record) expressionNode()        {}

// RecordField is one `name: value` of a record literal.
type RecordField struct {
	Name  *Identifier
	Value Expression
	Span  position.Span
}

func (r *RecordField) GetSpan() position.Span { return r.Span }

// Variable references a (possibly qualified) name.
type Variable struct {
	Name *Identifier
	Span position.Span
}

func (v *Variable) GetSpan() position.Span { return v.Span }
func (v *Variable) expressionNode()        {}

// UnaryOperator enumerates prefix and suffix unary operators.
type UnaryOperator int

const (
	UnaryNot UnaryOperator = iota
	UnaryNegate
	UnaryTry
)

func (u UnaryOperator) String() string {
	switch u {
	case UnaryNot:
		return "!"
	case UnaryNegate:
		return "-"
	case UnaryTry:
		return "?"
	default:
		return "?unary"
	}
}

// UnaryOperation applies a unary operator.
type UnaryOperation struct {
	Op      UnaryOperator
	Operand Expression
	Span    position.Span
}

func (u *UnaryOperation) GetSpan() position.Span { return u.Span }
func (u *UnaryOperation) expressionNode()        {}

// BinaryKind enumerates the built-in binary operators. User-declared
// operators are BinaryCustom.
type BinaryKind int

const (
	BinaryAdd BinaryKind = iota
	BinarySubtract
	BinaryMultiply
	BinaryDivide
	BinaryModulo
	BinaryEqual
	BinaryNotEqual
	BinaryLess
	BinaryLessEqual
	BinaryGreater
	BinaryGreaterEqual
	BinaryAnd
	BinaryOr
	BinaryCustom
)

// BinaryOperator is an already-resolved binary operator.
type BinaryOperator struct {
	Kind   BinaryKind
	Lexeme string
}

func (b BinaryOperator) String() string { return b.Lexeme }

// BinaryOperation applies a binary operator.
type BinaryOperation struct {
	Op   BinaryOperator
	Lhs  Expression
	Rhs  Expression
	Span position.Span
}

func (b *BinaryOperation) GetSpan() position.Span { return b.Span }
func (b *BinaryOperation) expressionNode()        {}

// Call is `callee(args...)`.
type Call struct {
	Callee Expression
	Args   []Expression
	Span   position.Span
}

func (c *Call) GetSpan() position.Span { return c.Span }
func (c *Call) expressionNode()        {}

// FieldAccess is `record.field`.
type FieldAccess struct {
	Record Expression
	Field  *Identifier
	Span   position.Span
}

func (f *FieldAccess) GetSpan() position.Span { return f.Span }
func (f *FieldAccess) expressionNode()        {}

// Lambda is `\(params) => body`.
type Lambda struct {
	Params []*Parameter
	Body   *Body
	Span   position.Span
}

func (l *Lambda) GetSpan() position.Span { return l.Span }
func (l *Lambda) expressionNode()        {}

// IfList destructures a list: `if [first, ...rest] = argument`.
type IfList struct {
	Argument Expression
	First    *Identifier
	Rest     *Identifier
	Then     *Body
	Else     *Body
	Span     position.Span
}

func (i *IfList) GetSpan() position.Span { return i.Span }
func (i *IfList) expressionNode()        {}

// IfMap looks a key up: `if name = map[key]`.
type IfMap struct {
	Name *Identifier
	Map  Expression
	Key  Expression
	Then *Body
	Else *Body
	Span position.Span
}

func (i *IfMap) GetSpan() position.Span { return i.Span }
func (i *IfMap) expressionNode()        {}

// IfType switches on the dynamic type: `if name = argument as T ...`.
type IfType struct {
	Name     *Identifier
	Argument Expression
	Branches []*IfTypeBranch
	Else     *Body
	Span     position.Span
}

func (i *IfType) GetSpan() position.Span { return i.Span }
func (i *IfType) expressionNode()        {}

// IfTypeBranch is one `T body` arm of an IfType.
type IfTypeBranch struct {
	Type Type
	Body *Body
}

// ====== Type expressions ======

// NamedType references a type by (possibly qualified) name.
type NamedType struct {
	Name string
	Span position.Span
}

func (n *NamedType) GetSpan() position.Span { return n.Span }
func (n *NamedType) typeNode()              {}

// ListType is `[T]`.
type ListType struct {
	Elem Type
	Span position.Span
}

func (l *ListType) GetSpan() position.Span { return l.Span }
func (l *ListType) typeNode()              {}

// MapType is `{K: V}`.
type MapType struct {
	Key   Type
	Value Type
	Span  position.Span
}

func (m *MapType) GetSpan() position.Span { return m.Span }
func (m *MapType) typeNode()              {}

// FunctionType is `\(T, U) R`.
type FunctionType struct {
	Params []Type
	Result Type
	Span   position.Span
}

func (f *FunctionType) GetSpan() position.Span { return f.Span }
func (f *FunctionType) typeNode()              {}

// UnionType is `A | B`, left-nested for longer chains.
type UnionType struct {
	Lhs  Type
	Rhs  Type
	Span position.Span
}

func (u *UnionType) GetSpan() position.Span { return u.Span }
func (u *UnionType) typeNode()              {}
