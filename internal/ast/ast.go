// Package ast defines the genv abstract syntax tree.
//
// The node set is closed: every variant is declared in this package and
// consumers dispatch over it with type switches (see Inspect). Nodes that
// later phases need a stable handle for carry a NodeID whose span lives in
// the parser's identity table.
package ast

import (
	"github.com/genv-lang/genv/internal/position"
)

// NodeID is a process-local handle, unique across one parse invocation
// including every merged nested module.
type NodeID uint64

// Node represents the base interface for all AST nodes
type Node interface {
	// GetSpan returns the source span for this node
	GetSpan() position.Span
}

// TopLevel represents items allowed directly inside a module
type TopLevel interface {
	Node
	topLevelNode()
}

// Statement represents items allowed inside a block
type Statement interface {
	Node
	statementNode()
}

// Expression represents all expression nodes
type Expression interface {
	Node
	expressionNode()
}

// Type represents type expressions
type Type interface {
	Node
	typeNode()
}

// ElseBranch is either a *Body or an *If (for `else if`)
type ElseBranch interface {
	Node
	elseNode()
}

// Identifier is a (possibly qualified) name with its identity.
type Identifier struct {
	Name string
	ID   NodeID
	Span position.Span
}

func (i *Identifier) GetSpan() position.Span { return i.Span }

// ====== Modules and top-level declarations ======

// Module is an ordered sequence of top-level items.
type Module struct {
	Items []TopLevel
	Span  position.Span
}

func (m *Module) GetSpan() position.Span { return m.Span }

// ModuleDecl is a `mod name` declaration with the module loaded from the
// sibling file spliced in.
type ModuleDecl struct {
	Name   *Identifier
	Module *Module
	Path   string
	Span   position.Span
}

func (m *ModuleDecl) GetSpan() position.Span { return m.Span }
func (m *ModuleDecl) topLevelNode()          {}

// Comment is a full-line `#` comment at module level.
type Comment struct {
	Text string
	Span position.Span
}

func (c *Comment) GetSpan() position.Span { return c.Span }
func (c *Comment) topLevelNode()          {}

// DeclarationMode is the storage qualifier of a variable declaration.
type DeclarationMode int

const (
	ModeNone DeclarationMode = iota
	ModeVar
	ModeVarip
	ModeConst
)

func (m DeclarationMode) String() string {
	switch m {
	case ModeVar:
		return "var"
	case ModeVarip:
		return "varip"
	case ModeConst:
		return "const"
	default:
		return ""
	}
}

// DataTypeKind enumerates the built-in declaration types.
type DataTypeKind int

const (
	TypeInt DataTypeKind = iota
	TypeFloat
	TypeBool
	TypeColor
	TypeString
	TypeLine
	TypeLineFill
	TypeLabel
	TypeBox
	TypeTable
	TypeUDF
	TypeArray
	TypeMatrix
)

var dataTypeNames = map[DataTypeKind]string{
	TypeInt:      "int",
	TypeFloat:    "float",
	TypeBool:     "bool",
	TypeColor:    "color",
	TypeString:   "string",
	TypeLine:     "line",
	TypeLineFill: "linefill",
	TypeLabel:    "label",
	TypeBox:      "box",
	TypeTable:    "table",
	TypeUDF:      "UDF",
	TypeArray:    "array",
	TypeMatrix:   "matrix",
}

func (k DataTypeKind) String() string { return dataTypeNames[k] }

// DataType is the declared type of a variable. Elem is set for array and
// matrix.
type DataType struct {
	Kind DataTypeKind
	Elem *DataType
}

func (d *DataType) String() string {
	if d.Elem != nil {
		return d.Kind.String() + "<" + d.Elem.String() + ">"
	}
	return d.Kind.String()
}

// VariableDecl is `[mode] [type] name = value`.
type VariableDecl struct {
	Mode  DeclarationMode
	Type  *DataType
	Name  *Identifier
	Value Expression
	Span  position.Span
}

func (v *VariableDecl) GetSpan() position.Span { return v.Span }
func (v *VariableDecl) topLevelNode()          {}
func (v *VariableDecl) statementNode()         {}

// CallingConvention of foreign imports and exports.
type CallingConvention int

const (
	ConventionNative CallingConvention = iota
	ConventionC
)

// ForeignExport marks a function exported to foreign code.
type ForeignExport struct {
	Convention CallingConvention
}

// FunctionDecl is `name(params) => body`.
type FunctionDecl struct {
	ID         NodeID
	Name       *Identifier
	Parameters []*Parameter
	Body       *Body
	Foreign    *ForeignExport
	Span       position.Span
}

func (f *FunctionDecl) GetSpan() position.Span { return f.Span }
func (f *FunctionDecl) topLevelNode()          {}
func (f *FunctionDecl) statementNode()         {}

// Parameter is a function or lambda parameter with an optional default.
type Parameter struct {
	Name    *Identifier
	Default Expression
	Span    position.Span
}

func (p *Parameter) GetSpan() position.Span { return p.Span }

// Body is an ordered statement sequence. When the last statement is an
// expression it is the value of the body.
type Body struct {
	Statements []Statement
	Span       position.Span
}

func (b *Body) GetSpan() position.Span { return b.Span }
func (b *Body) elseNode()              {}

// Value returns the trailing expression of the body, or nil.
func (b *Body) Value() Expression {
	if len(b.Statements) == 0 {
		return nil
	}
	switch last := b.Statements[len(b.Statements)-1].(type) {
	case *ExpressionStmt:
		return last.Expr
	case *If:
		return last
	}
	return nil
}

// ExpressionStmt is an expression evaluated for its value or effect.
type ExpressionStmt struct {
	Expr Expression
	Span position.Span
}

func (e *ExpressionStmt) GetSpan() position.Span { return e.Span }
func (e *ExpressionStmt) topLevelNode()          {}
func (e *ExpressionStmt) statementNode()         {}

// If is a conditional. It is usable as a statement and as an expression.
type If struct {
	ID   NodeID
	Cond Expression
	Then *Body
	Else ElseBranch
	Span position.Span
}

func (i *If) GetSpan() position.Span { return i.Span }
func (i *If) topLevelNode()          {}
func (i *If) statementNode()         {}
func (i *If) expressionNode()        {}
func (i *If) elseNode()              {}

// While loops while Cond holds.
type While struct {
	Cond Expression
	Body *Body
	Span position.Span
}

func (w *While) GetSpan() position.Span { return w.Span }
func (w *While) topLevelNode()          {}
func (w *While) statementNode()         {}

// For iterates Var over Iterable.
type For struct {
	Var      *Identifier
	Iterable Expression
	Body     *Body
	Span     position.Span
}

func (f *For) GetSpan() position.Span { return f.Span }
func (f *For) topLevelNode()          {}
func (f *For) statementNode()         {}

// ModulePath is the path of an import. External paths start with a
// package name (`pkg::a`), internal ones with the separator (`::a`).
type ModulePath struct {
	External   bool
	Components []*Identifier
}

// Import is `import path [as alias] [{names}]`.
type Import struct {
	Path  *ModulePath
	Alias *Identifier
	Names []*Identifier
	Span  position.Span
}

func (i *Import) GetSpan() position.Span { return i.Span }
func (i *Import) topLevelNode()          {}

// ForeignImport is `import foreign ["c"] name Type`.
type ForeignImport struct {
	Convention CallingConvention
	Name       *Identifier
	Type       Type
	Span       position.Span
}

func (f *ForeignImport) GetSpan() position.Span { return f.Span }
func (f *ForeignImport) topLevelNode()          {}

// TypeAlias is `type Name = Type`.
type TypeAlias struct {
	Name *Identifier
	Type Type
	Span position.Span
}

func (t *TypeAlias) GetSpan() position.Span { return t.Span }
func (t *TypeAlias) topLevelNode()          {}

// RecordDefinition is `type Name { field Type ... }`.
type RecordDefinition struct {
	Name   *Identifier
	Fields []*RecordFieldDefinition
	Span   position.Span
}

func (r *RecordDefinition) GetSpan() position.Span { return r.Span }
func (r *RecordDefinition) topLevelNode()          {}

// RecordFieldDefinition is one field of a record definition.
type RecordFieldDefinition struct {
	Name *Identifier
	Type Type
	Span position.Span
}

func (r *RecordFieldDefinition) GetSpan() position.Span { return r.Span }

// InfixDecl declares an operator lexeme with its precedence.
type InfixDecl struct {
	Lexeme     string
	Precedence uint8
	Span       position.Span
}

func (i *InfixDecl) GetSpan() position.Span { return i.Span }
func (i *InfixDecl) topLevelNode()          {}
