package ast

import "fmt"

// Inspect traverses the tree rooted at node in depth-first order, calling fn
// for every node. When fn returns false the children of that node are
// skipped. Nil nodes are ignored.
func Inspect(node Node, fn func(Node) bool) {
	if isNil(node) || !fn(node) {
		return
	}

	switch n := node.(type) {
	// Structure
	case *Module:
		for _, item := range n.Items {
			Inspect(item, fn)
		}
	case *ModuleDecl:
		Inspect(n.Name, fn)
		if n.Module != nil {
			Inspect(n.Module, fn)
		}
	case *Identifier, *Comment, *InfixDecl:
		// leaves

	// Declarations
	case *VariableDecl:
		Inspect(n.Name, fn)
		Inspect(n.Value, fn)
	case *FunctionDecl:
		Inspect(n.Name, fn)
		for _, p := range n.Parameters {
			Inspect(p, fn)
		}
		Inspect(n.Body, fn)
	case *Parameter:
		Inspect(n.Name, fn)
		Inspect(n.Default, fn)
	case *Import:
		if n.Path != nil {
			for _, c := range n.Path.Components {
				Inspect(c, fn)
			}
		}
		Inspect(n.Alias, fn)
		for _, name := range n.Names {
			Inspect(name, fn)
		}
	case *ForeignImport:
		Inspect(n.Name, fn)
		Inspect(n.Type, fn)
	case *TypeAlias:
		Inspect(n.Name, fn)
		Inspect(n.Type, fn)
	case *RecordDefinition:
		Inspect(n.Name, fn)
		for _, f := range n.Fields {
			Inspect(f, fn)
		}
	case *RecordFieldDefinition:
		Inspect(n.Name, fn)
		Inspect(n.Type, fn)

	// Statements
	case *Body:
		for _, s := range n.Statements {
			Inspect(s, fn)
		}
	case *ExpressionStmt:
		Inspect(n.Expr, fn)
	case *If:
		Inspect(n.Cond, fn)
		Inspect(n.Then, fn)
		Inspect(n.Else, fn)
	case *While:
		Inspect(n.Cond, fn)
		Inspect(n.Body, fn)
	case *For:
		Inspect(n.Var, fn)
		Inspect(n.Iterable, fn)
		Inspect(n.Body, fn)

	// Expressions
	case *Number, *String:
		// leaves
	case *List:
		Inspect(n.ElemType, fn)
		for _, e := range n.Elements {
			Inspect(e.Value, fn)
		}
	case *ListComprehension:
		Inspect(n.ElemType, fn)
		Inspect(n.Element, fn)
		for _, b := range n.Branches {
			Inspect(b, fn)
		}
	case *ComprehensionBranch:
		for _, name := range n.Names {
			Inspect(name, fn)
		}
		for _, it := range n.Iteratees {
			Inspect(it, fn)
		}
		Inspect(n.Cond, fn)
	case *Map:
		Inspect(n.KeyType, fn)
		Inspect(n.ValueType, fn)
		for _, e := range n.Elements {
			Inspect(e.Key, fn)
			Inspect(e.Value, fn)
		}
	case *Record:
		Inspect(n.Name, fn)
		Inspect(n.Base, fn)
		for _, f := range n.Fields {
			Inspect(f, fn)
		}
	case *RecordField:
		Inspect(n.Name, fn)
		Inspect(n.Value, fn)
	case *Variable:
		Inspect(n.Name, fn)
	case *UnaryOperation:
		Inspect(n.Operand, fn)
	case *BinaryOperation:
		Inspect(n.Lhs, fn)
		Inspect(n.Rhs, fn)
	case *Call:
		Inspect(n.Callee, fn)
		for _, a := range n.Args {
			Inspect(a, fn)
		}
	case *FieldAccess:
		Inspect(n.Record, fn)
		Inspect(n.Field, fn)
	case *Lambda:
		for _, p := range n.Params {
			Inspect(p, fn)
		}
		Inspect(n.Body, fn)
	case *IfList:
		Inspect(n.Argument, fn)
		Inspect(n.First, fn)
		Inspect(n.Rest, fn)
		Inspect(n.Then, fn)
		Inspect(n.Else, fn)
	case *IfMap:
		Inspect(n.Name, fn)
		Inspect(n.Map, fn)
		Inspect(n.Key, fn)
		Inspect(n.Then, fn)
		Inspect(n.Else, fn)
	case *IfType:
		Inspect(n.Name, fn)
		Inspect(n.Argument, fn)
		for _, b := range n.Branches {
			Inspect(b.Type, fn)
			Inspect(b.Body, fn)
		}
		Inspect(n.Else, fn)

	// Types
	case *NamedType:
		// leaf
	case *ListType:
		Inspect(n.Elem, fn)
	case *MapType:
		Inspect(n.Key, fn)
		Inspect(n.Value, fn)
	case *FunctionType:
		for _, p := range n.Params {
			Inspect(p, fn)
		}
		Inspect(n.Result, fn)
	case *UnionType:
		Inspect(n.Lhs, fn)
		Inspect(n.Rhs, fn)

	default:
		panic(fmt.Sprintf("ast.Inspect: unexpected node type %T", n))
	}
}

// NodeIDs returns every NodeID reachable from node, in traversal order.
func NodeIDs(node Node) []NodeID {
	var ids []NodeID
	Inspect(node, func(n Node) bool {
		switch n := n.(type) {
		case *Identifier:
			ids = append(ids, n.ID)
		case *FunctionDecl:
			ids = append(ids, n.ID)
		case *If:
			ids = append(ids, n.ID)
		}
		return true
	})
	return ids
}

// isNil reports whether a Node interface holds nothing or a typed nil
// pointer, which optional children such as Parameter.Default produce.
func isNil(node Node) bool {
	if node == nil {
		return true
	}
	switch n := node.(type) {
	case *Identifier:
		return n == nil
	case *Body:
		return n == nil
	case *If:
		return n == nil
	case *Module:
		return n == nil
	}
	return false
}
