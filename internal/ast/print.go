package ast

import (
	"fmt"
	"strings"
)

const indentUnit = "    "

// Print renders a module as canonical genv source. Parsing the output again
// yields the same tree modulo NodeIDs and spans.
func Print(m *Module) string {
	var sb strings.Builder
	for i, item := range m.Items {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(printTopLevel(item))
	}
	sb.WriteByte('\n')
	return sb.String()
}

// PrintExpression renders a single expression at indentation level zero.
func PrintExpression(e Expression) string {
	return printExpr(e, 0)
}

func pad(level int) string {
	return strings.Repeat(indentUnit, level)
}

func printTopLevel(item TopLevel) string {
	switch n := item.(type) {
	case *Comment:
		return "#" + n.Text
	case *ModuleDecl:
		return "mod " + n.Name.Name
	case *Import:
		return printImport(n)
	case *ForeignImport:
		conv := ""
		if n.Convention == ConventionC {
			conv = `"c" `
		}
		return "import foreign " + conv + n.Name.Name + " " + printType(n.Type)
	case *TypeAlias:
		return "type " + n.Name.Name + " = " + printType(n.Type)
	case *RecordDefinition:
		fields := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = f.Name.Name + " " + printType(f.Type)
		}
		return "type " + n.Name.Name + " {" + strings.Join(fields, ", ") + "}"
	case *InfixDecl:
		return fmt.Sprintf("infix %s %d", n.Lexeme, n.Precedence)
	case *VariableDecl:
		return printStmt(n, 0)
	case *FunctionDecl:
		return printStmt(n, 0)
	case *ExpressionStmt:
		return printStmt(n, 0)
	case *If:
		return printStmt(n, 0)
	case *While:
		return printStmt(n, 0)
	case *For:
		return printStmt(n, 0)
	default:
		panic(fmt.Sprintf("ast.Print: unexpected top-level item %T", n))
	}
}

func printImport(n *Import) string {
	var sb strings.Builder
	sb.WriteString("import ")
	if n.Path != nil {
		names := make([]string, len(n.Path.Components))
		for i, c := range n.Path.Components {
			names[i] = c.Name
		}
		if !n.Path.External {
			sb.WriteString("::")
		}
		sb.WriteString(strings.Join(names, "::"))
	}
	if n.Alias != nil {
		sb.WriteString(" as " + n.Alias.Name)
	}
	if len(n.Names) > 0 {
		names := make([]string, len(n.Names))
		for i, id := range n.Names {
			names[i] = id.Name
		}
		sb.WriteString(" {" + strings.Join(names, ", ") + "}")
	}
	return sb.String()
}

func printStmt(s Statement, level int) string {
	switch n := s.(type) {
	case *VariableDecl:
		var sb strings.Builder
		if n.Mode != ModeNone {
			sb.WriteString(n.Mode.String() + " ")
		}
		if n.Type != nil {
			sb.WriteString(n.Type.String() + " ")
		}
		sb.WriteString(n.Name.Name + " = " + printExpr(n.Value, level))
		return sb.String()
	case *FunctionDecl:
		var sb strings.Builder
		if n.Foreign != nil {
			sb.WriteString("foreign ")
			if n.Foreign.Convention == ConventionC {
				sb.WriteString(`"c" `)
			}
		}
		sb.WriteString(n.Name.Name + "(" + printParams(n.Parameters, level) + ")")
		sb.WriteString(printArrowBody(n.Body, level))
		return sb.String()
	case *ExpressionStmt:
		return printExpr(n.Expr, level)
	case *If:
		return printIf(n, level)
	case *While:
		return "while " + printExpr(n.Cond, level) + printCondBody(n.Body, level)
	case *For:
		return "for " + n.Var.Name + " in " + printExpr(n.Iterable, level) + printCondBody(n.Body, level)
	default:
		panic(fmt.Sprintf("ast.Print: unexpected statement %T", n))
	}
}

func printParams(params []*Parameter, level int) string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name.Name
		if p.Default != nil {
			out[i] += " = " + printExpr(p.Default, level)
		}
	}
	return strings.Join(out, ", ")
}

// inlineBody reports whether b fits on the line of its header.
func inlineBody(b *Body) bool {
	if b == nil || len(b.Statements) != 1 {
		return false
	}
	switch b.Statements[0].(type) {
	case *ExpressionStmt, *VariableDecl:
	default:
		return false
	}
	simple := true
	Inspect(b.Statements[0], func(n Node) bool {
		switch n.(type) {
		case *If, *IfList, *IfMap, *IfType, *Lambda:
			simple = false
		}
		return simple
	})
	return simple
}

func printBlock(b *Body, level int) string {
	var sb strings.Builder
	for _, s := range b.Statements {
		sb.WriteString("\n" + pad(level+1) + printStmt(s, level+1))
	}
	return sb.String()
}

// printArrowBody renders the `=> body` tail of functions and lambdas.
func printArrowBody(b *Body, level int) string {
	if inlineBody(b) {
		return " => " + printStmt(b.Statements[0], level)
	}
	return " =>" + printBlock(b, level)
}

// printCondBody renders the body after an if, while or for header.
func printCondBody(b *Body, level int) string {
	if inlineBody(b) {
		return " => " + printStmt(b.Statements[0], level)
	}
	return printBlock(b, level)
}

// elseSeparator returns what goes between a body and a following `else`.
func elseSeparator(prev *Body, level int) string {
	if inlineBody(prev) {
		return " "
	}
	return "\n" + pad(level)
}

func printElseBody(b *Body, level int) string {
	if inlineBody(b) {
		return " " + printStmt(b.Statements[0], level)
	}
	return printBlock(b, level)
}

func printIf(n *If, level int) string {
	s := "if " + printExpr(n.Cond, level) + printCondBody(n.Then, level)
	if n.Else == nil {
		return s
	}
	s += elseSeparator(n.Then, level) + "else"
	switch e := n.Else.(type) {
	case *If:
		return s + " " + printIf(e, level)
	case *Body:
		return s + printElseBody(e, level)
	default:
		panic(fmt.Sprintf("ast.Print: unexpected else branch %T", e))
	}
}

// needsParens reports whether e must be parenthesised when used as an
// operand or a suffix target.
func needsParens(e Expression) bool {
	switch e.(type) {
	case *BinaryOperation, *If, *IfList, *IfMap, *IfType, *Lambda:
		return true
	}
	return false
}

func printOperand(e Expression, level int) string {
	if needsParens(e) {
		return "(" + printExpr(e, level) + ")"
	}
	return printExpr(e, level)
}

func printExprs(es []Expression, level int) string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = printExpr(e, level)
	}
	return strings.Join(out, ", ")
}

func printExpr(e Expression, level int) string {
	switch n := e.(type) {
	case *Number:
		switch n.Repr {
		case NumberBinary:
			return "0b" + n.Text
		case NumberHexadecimal:
			return "0x" + n.Text
		default:
			return n.Text
		}
	case *String:
		return `"` + n.Value + `"`
	case *Variable:
		return n.Name.Name
	case *List:
		elems := make([]string, len(n.Elements))
		for i, el := range n.Elements {
			if el.Spread {
				elems[i] = "..." + printExpr(el.Value, level)
			} else {
				elems[i] = printExpr(el.Value, level)
			}
		}
		s := "[" + printType(n.ElemType)
		if len(elems) > 0 {
			s += " " + strings.Join(elems, ", ")
		}
		return s + "]"
	case *ListComprehension:
		var sb strings.Builder
		sb.WriteString("[" + printType(n.ElemType) + " " + printExpr(n.Element, level))
		for _, b := range n.Branches {
			names := make([]string, len(b.Names))
			for i, id := range b.Names {
				names[i] = id.Name
			}
			sb.WriteString(" for " + strings.Join(names, ", ") + " in " + printExprs(b.Iteratees, level))
			if b.Cond != nil {
				sb.WriteString(" if " + printExpr(b.Cond, level))
			}
		}
		sb.WriteString("]")
		return sb.String()
	case *Map:
		elems := make([]string, len(n.Elements))
		for i, el := range n.Elements {
			if el.Spread {
				elems[i] = "..." + printExpr(el.Value, level)
			} else {
				elems[i] = printExpr(el.Key, level) + ": " + printExpr(el.Value, level)
			}
		}
		s := "{" + printType(n.KeyType) + ": " + printType(n.ValueType)
		if len(elems) > 0 {
			s += " " + strings.Join(elems, ", ")
		}
		return s + "}"
	case *Record:
		var parts []string
		if n.Base != nil {
			parts = append(parts, "..."+printExpr(n.Base, level))
		}
		for _, f := range n.Fields {
			parts = append(parts, f.Name.Name+": "+printExpr(f.Value, level))
		}
		return n.Name.Name + "{" + strings.Join(parts, ", ") + "}"
	case *UnaryOperation:
		switch n.Op {
		case UnaryTry:
			if _, ok := n.Operand.(*UnaryOperation); ok {
				return "(" + printExpr(n.Operand, level) + ")?"
			}
			return printOperand(n.Operand, level) + "?"
		default:
			return n.Op.String() + printOperand(n.Operand, level)
		}
	case *BinaryOperation:
		return printOperand(n.Lhs, level) + " " + n.Op.Lexeme + " " + printOperand(n.Rhs, level)
	case *Call:
		return printSuffixTarget(n.Callee, level) + "(" + printExprs(n.Args, level) + ")"
	case *FieldAccess:
		return printSuffixTarget(n.Record, level) + "." + n.Field.Name
	case *Lambda:
		return `\(` + printParams(n.Params, level) + ")" + printArrowBody(n.Body, level)
	case *If:
		return printIf(n, level)
	case *IfList:
		s := "if [" + n.First.Name + ", ..." + n.Rest.Name + "] = " + printExpr(n.Argument, level)
		s += printCondBody(n.Then, level)
		return s + elseSeparator(n.Then, level) + "else" + printElseBody(n.Else, level)
	case *IfMap:
		s := "if " + n.Name.Name + " = " + printExpr(n.Map, level) + "[" + printExpr(n.Key, level) + "]"
		s += printCondBody(n.Then, level)
		return s + elseSeparator(n.Then, level) + "else" + printElseBody(n.Else, level)
	case *IfType:
		var sb strings.Builder
		sb.WriteString("if " + n.Name.Name + " = " + printExpr(n.Argument, level) + " as ")
		prev := (*Body)(nil)
		for i, b := range n.Branches {
			if i > 0 {
				sb.WriteString(elseSeparator(prev, level) + "else if ")
			}
			sb.WriteString(printType(b.Type) + printCondBody(b.Body, level))
			prev = b.Body
		}
		if n.Else != nil {
			sb.WriteString(elseSeparator(prev, level) + "else" + printElseBody(n.Else, level))
		}
		return sb.String()
	default:
		panic(fmt.Sprintf("ast.Print: unexpected expression %T", n))
	}
}

func printSuffixTarget(e Expression, level int) string {
	if u, ok := e.(*UnaryOperation); ok && u.Op != UnaryTry {
		return "(" + printExpr(e, level) + ")"
	}
	return printOperand(e, level)
}

func printType(t Type) string {
	switch n := t.(type) {
	case nil:
		return ""
	case *NamedType:
		return n.Name
	case *ListType:
		return "[" + printType(n.Elem) + "]"
	case *MapType:
		return "{" + printType(n.Key) + ": " + printType(n.Value) + "}"
	case *FunctionType:
		params := make([]string, len(n.Params))
		for i, p := range n.Params {
			params[i] = printType(p)
		}
		return `\(` + strings.Join(params, ", ") + ") " + printType(n.Result)
	case *UnionType:
		return printUnionOperand(n.Lhs, false) + " | " + printUnionOperand(n.Rhs, true)
	default:
		panic(fmt.Sprintf("ast.Print: unexpected type %T", n))
	}
}

func printUnionOperand(t Type, right bool) string {
	switch t.(type) {
	case *FunctionType:
		return "(" + printType(t) + ")"
	case *UnionType:
		if right {
			return "(" + printType(t) + ")"
		}
	}
	return printType(t)
}
