package parser

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"testing"

	"github.com/genv-lang/genv/internal/ast"
	"github.com/genv-lang/genv/internal/config"
	"github.com/genv-lang/genv/internal/diagnostic"
)

// memoryConfig returns a configuration that reads sources from files.
func memoryConfig(files map[string]string) *config.Config {
	cfg := config.Default()
	cfg.ReadFile = func(path string) ([]byte, error) {
		src, ok := files[path]
		if !ok {
			return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
		}
		return []byte(src), nil
	}
	return cfg
}

func mustParse(t *testing.T, src string) *Result {
	t.Helper()
	res, err := ParseSource("/src/main.gv", src, memoryConfig(nil))
	if err != nil {
		t.Fatalf("ParseSource(%q) failed: %v", src, err)
	}
	return res
}

// diagnosticKind extracts the kind of the diagnostic carried by err.
func diagnosticKind(t *testing.T, err error) diagnostic.Kind {
	t.Helper()
	var derr *diagnostic.Error
	if !errors.As(err, &derr) {
		t.Fatalf("expected *diagnostic.Error, got %T (%v)", err, err)
	}
	return derr.Diagnostic.Kind
}

// checkSpans verifies that the span table holds exactly the identities of
// the tree.
func checkSpans(t *testing.T, res *Result) {
	t.Helper()
	ids := ast.NodeIDs(res.Module)
	seen := make(map[ast.NodeID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			t.Errorf("NodeID %d appears twice in the tree", id)
		}
		seen[id] = true
		if _, ok := res.Spans[id]; !ok {
			t.Errorf("NodeID %d has no span entry", id)
		}
	}
	for id := range res.Spans {
		if !seen[id] {
			t.Errorf("span entry %d is not reachable from the tree", id)
		}
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	expr, err := ParseExpression("2+3*4", nil)
	if err != nil {
		t.Fatalf("ParseExpression failed: %v", err)
	}
	add, ok := expr.(*ast.BinaryOperation)
	if !ok || add.Op.Kind != ast.BinaryAdd {
		t.Fatalf("expected an addition at the root, got %s", ast.PrintExpression(expr))
	}
	if n, ok := add.Lhs.(*ast.Number); !ok || n.Text != "2" {
		t.Errorf("expected lhs 2, got %s", ast.PrintExpression(add.Lhs))
	}
	mul, ok := add.Rhs.(*ast.BinaryOperation)
	if !ok || mul.Op.Kind != ast.BinaryMultiply {
		t.Fatalf("expected a multiplication on the right, got %s", ast.PrintExpression(add.Rhs))
	}
	if ast.PrintExpression(mul) != "3 * 4" {
		t.Errorf("unexpected rhs %s", ast.PrintExpression(mul))
	}
}

func TestParseExpressionForms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"precedence", "2+3*4", "2 + (3 * 4)"},
		{"parentheses", "(2+3)*4", "(2 + 3) * 4"},
		{"left associative", "1-2-3", "(1 - 2) - 3"},
		{"comparison below arithmetic", "a + 1 < b * 2", "(a + 1) < (b * 2)"},
		{"logic", "!a & b | c", "(!a & b) | c"},
		{"longest operator", "a ==-1", "a == -1"},
		{"suffixes", "f(x, 1).y?", "f(x, 1).y?"},
		{"negated suffixes", "-f(a).b?", "-f(a).b?"},
		{"qualified name", "math::pi * r", "math::pi * r"},
		{"numbers", "0xFF + 0b101 + 1.5e3", "(0xff + 0b101) + 1.5e3"},
		{"string escapes", `"a\n\x41"`, `"a\n\x41"`},
		{"list", "[int 1, 2, ...xs]", "[int 1, 2, ...xs]"},
		{"empty list", "[float]", "[float]"},
		{"comprehension", "[int x * 2 for x in xs if x > 1]", "[int x * 2 for x in xs if x > 1]"},
		{"map", `{string: int "a": 1, ...m}`, `{string: int "a": 1, ...m}`},
		{"record", "Point{x: 1, y: 2}", "Point{x: 1, y: 2}"},
		{"record update", "Point{...p, x: 3}", "Point{...p, x: 3}"},
		{"lambda", `\(x, y = 2) => x + y`, `\(x, y = 2) => x + y`},
		{"if", "if a > b => a else b", "if a > b => a else b"},
		{"else if", "if a => 1 else if b => 2 else 3", "if a => 1 else if b => 2 else 3"},
		{"if type", "if v = x as int => v else if float => 0 else 1", "if v = x as int => v else if float => 0 else 1"},
		{"if list", "if [h, ...t] = xs => h else 0", "if [h, ...t] = xs => h else 0"},
		{"if map", `if k = m["a"] => k else 0`, `if k = m["a"] => k else 0`},
		{"multiline arguments", "f(1,\n  2)", "f(1, 2)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := ParseExpression(tt.in, nil)
			if err != nil {
				t.Fatalf("ParseExpression(%q) failed: %v", tt.in, err)
			}
			if got := ast.PrintExpression(expr); got != tt.want {
				t.Errorf("ParseExpression(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseExpressionErrors(t *testing.T) {
	tests := []string{
		"",
		"1 +",
		"f(1",
		`"unterminated`,
		`"bad \q escape"`,
		"1 2",
	}
	for _, in := range tests {
		if _, err := ParseExpression(in, nil); err == nil {
			t.Errorf("ParseExpression(%q) succeeded, want an error", in)
		}
	}
}

func TestFunctionDeclaration(t *testing.T) {
	res := mustParse(t, "add(x, y) =>\n    a = x + y\n    a\n")
	if len(res.Module.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(res.Module.Items))
	}
	fn, ok := res.Module.Items[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected *ast.FunctionDecl, got %T", res.Module.Items[0])
	}
	if fn.Name.Name != "add" {
		t.Errorf("expected function add, got %s", fn.Name.Name)
	}
	if len(fn.Parameters) != 2 || fn.Parameters[0].Name.Name != "x" || fn.Parameters[1].Name.Name != "y" {
		t.Errorf("unexpected parameters %v", fn.Parameters)
	}
	if len(fn.Body.Statements) != 2 {
		t.Fatalf("expected 2 body statements, got %d", len(fn.Body.Statements))
	}
	if _, ok := fn.Body.Statements[0].(*ast.VariableDecl); !ok {
		t.Errorf("expected a variable declaration first, got %T", fn.Body.Statements[0])
	}
	v, ok := fn.Body.Value().(*ast.Variable)
	if !ok || v.Name.Name != "a" {
		t.Errorf("expected trailing value a, got %v", fn.Body.Value())
	}
	checkSpans(t, res)
}

func TestVariableDeclaration(t *testing.T) {
	res := mustParse(t, "var int a = 3 + 4 * (5 + 6)\n")
	decl, ok := res.Module.Items[0].(*ast.VariableDecl)
	if !ok {
		t.Fatalf("expected *ast.VariableDecl, got %T", res.Module.Items[0])
	}
	if decl.Mode != ast.ModeVar {
		t.Errorf("expected mode var, got %v", decl.Mode)
	}
	if decl.Type == nil || decl.Type.Kind != ast.TypeInt {
		t.Errorf("expected type int, got %v", decl.Type)
	}
	if decl.Name.Name != "a" {
		t.Errorf("expected name a, got %s", decl.Name.Name)
	}

	add, ok := decl.Value.(*ast.BinaryOperation)
	if !ok || add.Op.Kind != ast.BinaryAdd {
		t.Fatalf("expected an addition, got %s", ast.PrintExpression(decl.Value))
	}
	mul, ok := add.Rhs.(*ast.BinaryOperation)
	if !ok || mul.Op.Kind != ast.BinaryMultiply {
		t.Fatalf("expected a multiplication, got %s", ast.PrintExpression(add.Rhs))
	}
	inner, ok := mul.Rhs.(*ast.BinaryOperation)
	if !ok || inner.Op.Kind != ast.BinaryAdd {
		t.Fatalf("expected the parenthesised addition, got %s", ast.PrintExpression(mul.Rhs))
	}
	if got := ast.PrintExpression(decl.Value); got != "3 + (4 * (5 + 6))" {
		t.Errorf("unexpected value %s", got)
	}
}

func TestDeclarationModes(t *testing.T) {
	tests := []struct {
		src  string
		mode ast.DeclarationMode
		typ  string
	}{
		{"x = 1\n", ast.ModeNone, ""},
		{"var x = 1\n", ast.ModeVar, ""},
		{"varip float x = 1.5\n", ast.ModeVarip, "float"},
		{"const array<int> x = xs\n", ast.ModeConst, "array<int>"},
		{"matrix<float> m = ms\n", ast.ModeNone, "matrix<float>"},
	}
	for _, tt := range tests {
		res := mustParse(t, tt.src)
		decl, ok := res.Module.Items[0].(*ast.VariableDecl)
		if !ok {
			t.Errorf("%q: expected *ast.VariableDecl, got %T", tt.src, res.Module.Items[0])
			continue
		}
		if decl.Mode != tt.mode {
			t.Errorf("%q: mode = %v, want %v", tt.src, decl.Mode, tt.mode)
		}
		got := ""
		if decl.Type != nil {
			got = decl.Type.String()
		}
		if got != tt.typ {
			t.Errorf("%q: type = %q, want %q", tt.src, got, tt.typ)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	sources := []string{
		"add(x, y) =>\n    a = x + y\n    a\nvar int b = 3\n",
		"#@version=5\n# plain comment\nx = 1\n",
		"if a > b => a else b\n",
		"if x\n    y = 1\n    y\nelse if z => 2 else 3\n",
		"if x\n    w = 1\n    y\nelse\n    z = 1\n    z\n",
		"while i < 10 => i = i + 1\n",
		"for x in xs\n    print(x)\n    x\n",
		"import ::a::b as c {d, e}\nimport pkg::util\n",
		"import foreign \"c\" sqrt \\(float) float\n",
		"type Point {x int, y int}\ntype Num = int | float\ntype Fn = \\([int], {string: int}) bool\n",
		"infix <> 50\nx = a <> b\n",
		"foreign \"c\" exported(x) => x\n",
		"f = \\(x, y = 2) => x + y\n",
		"g = \\(x) =>\n    y = x * 2\n    y\n",
		"m = {string: int \"a\": 1, ...n}\n",
		"l = [int x * 2 for x in xs if x > 1]\n",
		"p = Point{...q, x: 1}\n",
		"r = if v = x as int => v else if float => 0 else 1\n",
		"s = if [h, ...t] = xs => h else 0\n",
		"v = if k = m[\"a\"] => k else 0\n",
		"x = 0xff + (0b101 * 1.5e3)\n",
		"y = -f(a).b? & !c\n",
		"outer(x) =>\n    inner(y) =>\n        y + 1\n        y\n    inner(x)\n",
		"main() =>\n    print(1)\n    f(g(x))\n    1\n",
		"if a => b(1) else c\n",
	}

	for _, src := range sources {
		res := mustParse(t, src)
		checkSpans(t, res)

		printed := ast.Print(res.Module)
		if printed != src {
			t.Errorf("Print(Parse(%q)) = %q", src, printed)
			continue
		}
		again := mustParse(t, printed)
		if ast.Print(again.Module) != printed {
			t.Errorf("second round trip of %q differs", src)
		}
	}
}

func TestCallStatements(t *testing.T) {
	calls := []string{
		"print(1)",
		`log("done", 2.5)`,
		"f(g(x))",
		"f(a + b, -c)",
		"a.b(1).c?",
		"f(x)(2)",
		"f(x, y)",
	}
	wrappers := []struct {
		name string
		wrap func(call string) string
	}{
		{"block", func(c string) string { return "main() =>\n    " + c + "\n    1\n" }},
		{"function body", func(c string) string { return "main() => " + c + "\n" }},
		{"if body", func(c string) string { return "if a => " + c + " else c\n" }},
		{"else body", func(c string) string { return "if a => c else " + c + "\n" }},
		{"while body", func(c string) string { return "while a => " + c + "\n" }},
		{"for body", func(c string) string { return "for x in xs\n    " + c + "\n    x\n" }},
		{"top level", func(c string) string { return c + "\n" }},
	}
	for _, w := range wrappers {
		t.Run(w.name, func(t *testing.T) {
			for _, call := range calls {
				src := w.wrap(call)
				res, err := ParseSource("/src/main.gv", src, memoryConfig(nil))
				if err != nil {
					t.Errorf("ParseSource(%q) failed: %v", src, err)
					continue
				}
				checkSpans(t, res)
				if printed := ast.Print(res.Module); printed != src {
					t.Errorf("Print(Parse(%q)) = %q", src, printed)
				}
			}
		})
	}

	res := mustParse(t, "main() =>\n    print(1)\n    1\n")
	fn, ok := res.Module.Items[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected *ast.FunctionDecl, got %T", res.Module.Items[0])
	}
	stmt, ok := fn.Body.Statements[0].(*ast.ExpressionStmt)
	if !ok {
		t.Fatalf("expected an expression statement, got %T", fn.Body.Statements[0])
	}
	if _, ok := stmt.Expr.(*ast.Call); !ok {
		t.Errorf("expected a call, got %T", stmt.Expr)
	}
}

func TestIndentationSplitsBlocks(t *testing.T) {
	res := mustParse(t, "f(x) =>\n    y = x\n  z = 1\n")
	if len(res.Module.Items) != 2 {
		t.Fatalf("expected 2 items, got %d: %s", len(res.Module.Items), ast.Print(res.Module))
	}
	fn, ok := res.Module.Items[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected *ast.FunctionDecl, got %T", res.Module.Items[0])
	}
	if len(fn.Body.Statements) != 1 {
		t.Errorf("expected the body to stop at the narrower line, got %d statements", len(fn.Body.Statements))
	}
	if _, ok := res.Module.Items[1].(*ast.VariableDecl); !ok {
		t.Errorf("expected the narrower line to be its own item, got %T", res.Module.Items[1])
	}
}

func TestIndentationUnitFromFirstBlock(t *testing.T) {
	res := mustParse(t, "f(x) =>\n  if x\n    1\n  else\n    2\n")
	fn := res.Module.Items[0].(*ast.FunctionDecl)
	if len(fn.Body.Statements) != 1 {
		t.Fatalf("expected one statement, got %d", len(fn.Body.Statements))
	}
	n, ok := fn.Body.Statements[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", fn.Body.Statements[0])
	}
	if _, ok := n.Else.(*ast.Body); !ok {
		t.Errorf("expected an else body aligned with the if, got %T", n.Else)
	}
}

func TestBlankAndCommentLinesInBlocks(t *testing.T) {
	res := mustParse(t, "f(x) =>\n    a = x\n\n    # note\n    a\n# top\n")
	fn := res.Module.Items[0].(*ast.FunctionDecl)
	if len(fn.Body.Statements) != 2 {
		t.Errorf("expected 2 statements, got %d", len(fn.Body.Statements))
	}
	if len(res.Module.Items) != 2 {
		t.Fatalf("expected the trailing comment as a second item, got %d items", len(res.Module.Items))
	}
	if c, ok := res.Module.Items[1].(*ast.Comment); !ok || c.Text != " top" {
		t.Errorf("unexpected trailing item %#v", res.Module.Items[1])
	}
}

func TestSpansPrunedAfterBacktracking(t *testing.T) {
	// Each of these forces an alternative to allocate identities before
	// failing softly.
	sources := []string{
		"x = if a == 1 => a else b\n",
		"f(a, b)\n",
		"Point\n",
		"float(x)\n",
		"y = [int a for a in xs]\n",
	}
	for _, src := range sources {
		checkSpans(t, mustParse(t, src))
	}
}

func TestContextPrune(t *testing.T) {
	ctx := NewContext("/src/main.gv", config.Default())
	for i := 0; i < 3; i++ {
		ctx.NewIdentity(ctx.files.AddFile("/src/main.gv", "abc").SpanOf(i, i+1))
	}
	ctx.prune(1)
	if _, ok := ctx.Span(0); !ok {
		t.Errorf("span 0 should survive pruning")
	}
	for _, id := range []ast.NodeID{1, 2} {
		if _, ok := ctx.Span(id); ok {
			t.Errorf("span %d should have been pruned", id)
		}
	}
	if ctx.NextID() != 3 {
		t.Errorf("the id counter must not be rewound, got %d", ctx.NextID())
	}
}

func TestCustomOperators(t *testing.T) {
	res := mustParse(t, "infix ** 80\nx = 1 + 2 ** 3\ny = a <= b\n")
	if op, ok := res.Operators["**"]; !ok || op.Precedence != 80 {
		t.Errorf("expected ** with precedence 80, got %+v", res.Operators)
	}
	decl := res.Module.Items[1].(*ast.VariableDecl)
	if got := ast.PrintExpression(decl.Value); got != "1 + (2 ** 3)" {
		t.Errorf("unexpected value %s", got)
	}
	bin := decl.Value.(*ast.BinaryOperation).Rhs.(*ast.BinaryOperation)
	if bin.Op.Kind != ast.BinaryCustom {
		t.Errorf("expected a custom operator, got %v", bin.Op.Kind)
	}
}

func TestInfixErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(t *testing.T, kind diagnostic.Kind)
	}{
		{
			name: "precedence out of bounds",
			src:  "infix ** 300\n",
			check: func(t *testing.T, kind diagnostic.Kind) {
				oob, ok := kind.(diagnostic.OutOfBounds)
				if !ok || oob.Got != 300 || oob.Expected != 255 {
					t.Errorf("expected OutOfBounds(300, 255), got %v", kind)
				}
			},
		},
		{
			name: "built-in operator",
			src:  "infix + 10\n",
			check: func(t *testing.T, kind diagnostic.Kind) {
				if d, ok := kind.(diagnostic.DuplicatedOperator); !ok || d.Lexeme != "+" {
					t.Errorf("expected DuplicatedOperator(+), got %v", kind)
				}
			},
		},
		{
			name: "declared twice",
			src:  "infix ** 10\ninfix ** 20\n",
			check: func(t *testing.T, kind diagnostic.Kind) {
				if _, ok := kind.(diagnostic.DuplicatedOperator); !ok {
					t.Errorf("expected DuplicatedOperator, got %v", kind)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseSource("/src/main.gv", tt.src, memoryConfig(nil))
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !res.Diagnostics.MustStop() {
				t.Errorf("expected MustStop")
			}
			tt.check(t, diagnosticKind(t, err))
		})
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"import without path", "import 1\n", "SYNTAX_ERROR"},
		{"trailing garbage", "x = 1 )\n", "SYNTAX_ERROR"},
		{"unknown token", "@@@\n", "UNEXPECTED_TOKEN"},
		{"duplicate record field", "p = P{x: 1, x: 2}\n", "SYNTAX_ERROR"},
		{"duplicate field definition", "type P {x int, x int}\n", "SYNTAX_ERROR"},
		{"missing function body", "f(x) =>\n", "SYNTAX_ERROR"},
		{"if map without else", "v = if k = m[1] => k\n", "SYNTAX_ERROR"},
		{"type without body", "type T\n", "SYNTAX_ERROR"},
		{"binary digits", "x = 0b2\n", "SYNTAX_ERROR"},
		{"double arrow in function", "f(x) => => x\n", "SYNTAX_ERROR"},
		{"double arrow in lambda", "g = \\(x) => => x\n", "SYNTAX_ERROR"},
		{"foreign parameter list", "foreign f(1) => 1\n", "SYNTAX_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSource("/src/main.gv", tt.src, memoryConfig(nil))
			if err == nil {
				t.Fatalf("ParseSource(%q) succeeded, want %s", tt.src, tt.want)
			}
			if got := diagnosticKind(t, err).Code(); got != tt.want {
				t.Errorf("ParseSource(%q) code = %s, want %s (%v)", tt.src, got, tt.want, err)
			}
		})
	}
}

func TestVersionPragma(t *testing.T) {
	tests := []struct {
		src      string
		warnings int
	}{
		{"#@version=5\n", 0},
		{"#@version=5.2.1\n", 0},
		{"#@version=4\n", 1},
		{"#@version=banana\n", 1},
	}
	for _, tt := range tests {
		res := mustParse(t, tt.src)
		if got := len(res.Diagnostics.Warnings()); got != tt.warnings {
			t.Errorf("%q: got %d warnings, want %d", tt.src, got, tt.warnings)
		}
		if res.Diagnostics.MustStop() {
			t.Errorf("%q: a version warning must not stop the parse", tt.src)
		}
	}
}

func TestModuleLoading(t *testing.T) {
	cfg := memoryConfig(map[string]string{
		"/src/main.gv": "mod util\nx = util::double(2)\n",
		"/src/util.gv": "double(n) => n * 2\n",
	})
	res, err := ParseFile("/src/main.gv", cfg)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	decl, ok := res.Module.Items[0].(*ast.ModuleDecl)
	if !ok {
		t.Fatalf("expected *ast.ModuleDecl, got %T", res.Module.Items[0])
	}
	if decl.Name.Name != "util" || decl.Path != "/src/util.gv" {
		t.Errorf("unexpected module declaration %s at %s", decl.Name.Name, decl.Path)
	}
	if len(decl.Module.Items) != 1 {
		t.Errorf("expected the nested module to hold 1 item, got %d", len(decl.Module.Items))
	}
	if got := res.Files.Paths(); len(got) != 2 || got[0] != "/src/main.gv" || got[1] != "/src/util.gv" {
		t.Errorf("unexpected loaded files %v", got)
	}
	checkSpans(t, res)
}

func TestStdModuleResolvesToRoot(t *testing.T) {
	cfg := memoryConfig(map[string]string{
		"/src/main.gv":    "mod std\n",
		"/std/src/lib.gv": "pi = 3.14\n",
	})
	res, err := ParseFile("/src/main.gv", cfg)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	decl := res.Module.Items[0].(*ast.ModuleDecl)
	if decl.Path != cfg.StdRoot {
		t.Errorf("expected std to resolve to %s, got %s", cfg.StdRoot, decl.Path)
	}
}

func TestMissingModule(t *testing.T) {
	cfg := memoryConfig(map[string]string{"/src/main.gv": "mod foo\n"})
	res, err := ParseFile("/src/main.gv", cfg)
	if err == nil {
		t.Fatal("expected an error for a missing module")
	}
	if !res.Diagnostics.MustStop() {
		t.Errorf("expected MustStop")
	}
	errs := res.Diagnostics.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %d", len(errs))
	}
	nf, ok := errs[0].Kind.(diagnostic.FileNotFound)
	if !ok || nf.Path != "/src/foo.gv" {
		t.Errorf("expected FileNotFound(/src/foo.gv), got %v", errs[0].Kind)
	}
}

func TestMissingRootFile(t *testing.T) {
	res, err := ParseFile("/src/none.gv", memoryConfig(nil))
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := diagnosticKind(t, err).(diagnostic.FileNotFound); !ok {
		t.Errorf("expected FileNotFound, got %v", err)
	}
	if res == nil || !res.Diagnostics.MustStop() {
		t.Errorf("expected a result carrying the diagnostic")
	}
}

func TestNestedModuleFailurePropagates(t *testing.T) {
	cfg := memoryConfig(map[string]string{
		"/src/main.gv": "mod ok\nmod bad\n",
		"/src/ok.gv":   "#@version=4\nx = 1\n",
		"/src/bad.gv":  "y = \n",
	})
	res, err := ParseFile("/src/main.gv", cfg)
	if err == nil {
		t.Fatal("expected the nested failure to propagate")
	}
	if len(res.Diagnostics.Warnings()) != 1 {
		t.Errorf("expected the sibling module's warning to be kept, got %d", len(res.Diagnostics.Warnings()))
	}
	first, ok := res.Diagnostics.FirstError()
	if !ok {
		t.Fatal("expected an error diagnostic")
	}
	if first.Span.Start.Filename != "/src/bad.gv" {
		t.Errorf("expected the error in bad.gv, got %s", first.Span.Start.Filename)
	}
	if res.Files.GetFile("/src/bad.gv") == nil {
		t.Errorf("the failing module should still be registered")
	}
}

func TestDuplicatedOperatorAcrossModules(t *testing.T) {
	cfg := memoryConfig(map[string]string{
		"/src/main.gv": "infix ** 80\nmod foo\n",
		"/src/foo.gv":  "infix ** 70\n",
	})
	res, err := ParseFile("/src/main.gv", cfg)
	if err == nil {
		t.Fatal("expected a duplicated operator error")
	}
	var dups []diagnostic.Diagnostic
	for _, d := range res.Diagnostics.Errors() {
		if _, ok := d.Kind.(diagnostic.DuplicatedOperator); ok {
			dups = append(dups, d)
		}
	}
	if len(dups) != 1 {
		t.Fatalf("expected exactly one DuplicatedOperator, got %d", len(dups))
	}
	span := dups[0].Span
	if span.Start.Filename != "/src/foo.gv" {
		t.Errorf("expected the second declaration's span, got %s", span)
	}
	if text := res.Files.GetSpanText(span); !strings.HasPrefix(text, "infix ** 70") {
		t.Errorf("unexpected span text %q", text)
	}
}

func TestParseFileFromDisk(t *testing.T) {
	dir := t.TempDir()
	main := dir + "/main.gv"
	writeFile(t, main, "mod helper\nx = helper::one()\n")
	writeFile(t, dir+"/helper.gv", "one() => 1\n")

	res, err := ParseFile(main, config.Default())
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if res.Files.Len() != 2 {
		t.Errorf("expected 2 files, got %d", res.Files.Len())
	}
	checkSpans(t, res)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
