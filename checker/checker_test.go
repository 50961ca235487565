package checker

import (
	"strings"
	"testing"

	"github.com/alexchoi0/blueprint-engine-sub002/ast"
)

func sp(line int) ast.Span { return ast.Span{Line: line, Col: 1} }

func ident(line int, name string) *ast.Identifier {
	return &ast.Identifier{Span: sp(line), Name: name}
}

func intLit(v int64) *ast.IntLiteral {
	return &ast.IntLiteral{Span: sp(0), Value: v}
}

func program(stmts ...ast.Statement) *ast.Program {
	return &ast.Program{Statements: stmts}
}

func check(t *testing.T, p *ast.Program, symbols ...string) []Error {
	t.Helper()
	return New(symbols).Check(p)
}

func wantError(t *testing.T, errs []Error, fragment string) {
	t.Helper()
	for _, e := range errs {
		if strings.Contains(e.Message, fragment) {
			return
		}
	}
	t.Errorf("no error containing %q in %v", fragment, errs)
}

func TestCleanProgram(t *testing.T) {
	p := program(
		&ast.VarStatement{Span: sp(1), Name: "x", Value: intLit(1)},
		&ast.AssignStatement{Span: sp(2), Target: ident(2, "x"), Value: intLit(2)},
		&ast.ExpressionStatement{Span: sp(3), Expression: ident(3, "x")},
	)
	if errs := check(t, p); len(errs) != 0 {
		t.Errorf("clean program produced errors: %v", errs)
	}
}

func TestDuplicateDeclaration(t *testing.T) {
	p := program(
		&ast.VarStatement{Span: sp(1), Name: "x", Value: intLit(1)},
		&ast.VarStatement{Span: sp(2), Name: "x", Value: intLit(2)},
	)
	errs := check(t, p)
	if len(errs) != 1 {
		t.Fatalf("errors = %v", errs)
	}
	wantError(t, errs, "already declared")
	if errs[0].Line != 2 {
		t.Errorf("error line = %d, want 2", errs[0].Line)
	}
}

func TestUseBeforeDeclaration(t *testing.T) {
	p := program(
		&ast.ExpressionStatement{Span: sp(1), Expression: ident(1, "x")},
		&ast.VarStatement{Span: sp(2), Name: "x", Value: intLit(1)},
	)
	wantError(t, check(t, p), "unknown identifier 'x'")
}

func TestAssignToUndeclared(t *testing.T) {
	p := program(
		&ast.AssignStatement{Span: sp(1), Target: ident(1, "ghost"), Value: intLit(1)},
	)
	wantError(t, check(t, p), "cannot assign to undeclared variable 'ghost'")
}

func TestSymbolTableNamesResolve(t *testing.T) {
	p := program(
		&ast.ExpressionStatement{Span: sp(1), Expression: &ast.CallExpression{
			Span:     sp(1),
			Function: ident(1, "print"),
			Args:     []ast.Expression{intLit(1)},
		}},
	)
	if errs := check(t, p, "print"); len(errs) != 0 {
		t.Errorf("builtin did not resolve: %v", errs)
	}
	wantError(t, check(t, p), "unknown identifier 'print'")
}

func TestCollectsAllErrorsInOnePass(t *testing.T) {
	p := program(
		&ast.ExpressionStatement{Span: sp(1), Expression: ident(1, "a")},
		&ast.ExpressionStatement{Span: sp(2), Expression: ident(2, "b")},
		&ast.AssignStatement{Span: sp(3), Target: ident(3, "c"), Value: intLit(1)},
	)
	errs := check(t, p)
	if len(errs) != 3 {
		t.Errorf("collected %d errors, want 3: %v", len(errs), errs)
	}
}

func TestRecheckIsDeterministic(t *testing.T) {
	p := program(
		&ast.VarStatement{Span: sp(1), Name: "x", Value: intLit(1)},
	)
	c := New(nil)
	if errs := c.Check(p); len(errs) != 0 {
		t.Fatalf("first check: %v", errs)
	}
	if errs := c.Check(p); len(errs) != 0 {
		t.Errorf("recheck of unchanged program: %v", errs)
	}
}

func TestBlockScopingAllowsShadowing(t *testing.T) {
	p := program(
		&ast.VarStatement{Span: sp(1), Name: "x", Value: intLit(1)},
		&ast.BlockStatement{Span: sp(2), Statements: []ast.Statement{
			&ast.VarStatement{Span: sp(3), Name: "x", Value: intLit(2)},
		}},
	)
	if errs := check(t, p); len(errs) != 0 {
		t.Errorf("shadowing flagged: %v", errs)
	}
}

func TestFunctionParamsAndRecursion(t *testing.T) {
	fn := &ast.FunctionStatement{
		Span: sp(1),
		Name: "fact",
		Parameters: []*ast.Parameter{
			{Name: "n", Type: "int"},
		},
		Body: &ast.BlockStatement{Span: sp(2), Statements: []ast.Statement{
			&ast.ReturnStatement{Span: sp(3), Value: &ast.CallExpression{
				Span:     sp(3),
				Function: ident(3, "fact"),
				Args:     []ast.Expression{ident(3, "n")},
			}},
		}},
	}
	if errs := check(t, program(fn)); len(errs) != 0 {
		t.Errorf("recursive function flagged: %v", errs)
	}
}

func TestUnknownTypeAnnotation(t *testing.T) {
	p := program(
		&ast.FunctionStatement{
			Span: sp(1),
			Name: "f",
			Parameters: []*ast.Parameter{
				{Name: "x", Type: "wibble"},
			},
			Body: &ast.BlockStatement{Span: sp(1)},
		},
	)
	wantError(t, check(t, p), "unknown type annotation 'wibble'")
}

func TestStructAnnotationResolves(t *testing.T) {
	p := program(
		&ast.StructStatement{Span: sp(1), Name: "Point", Fields: []*ast.StructFieldDef{
			{Name: "x", Type: "int"},
		}},
		&ast.FunctionStatement{
			Span: sp(2),
			Name: "f",
			Parameters: []*ast.Parameter{
				{Name: "p", Type: "Point"},
			},
			Body: &ast.BlockStatement{Span: sp(2)},
		},
	)
	if errs := check(t, p); len(errs) != 0 {
		t.Errorf("struct annotation flagged: %v", errs)
	}
}

func TestMalformedStructLiteral(t *testing.T) {
	decl := &ast.StructStatement{Span: sp(1), Name: "Point", Fields: []*ast.StructFieldDef{
		{Name: "x", Type: "int"},
		{Name: "y", Type: "int"},
	}}

	unknown := program(decl,
		&ast.ExpressionStatement{Span: sp(2), Expression: &ast.CallExpression{
			Span:     sp(2),
			Function: ident(2, "Point"),
			Kwargs: []*ast.KeywordArg{
				{Name: "x", Value: intLit(1)},
				{Name: "z", Value: intLit(2)},
			},
		}},
	)
	wantError(t, check(t, unknown), "no field 'z'")

	overflow := program(decl,
		&ast.ExpressionStatement{Span: sp(2), Expression: &ast.CallExpression{
			Span:     sp(2),
			Function: ident(2, "Point"),
			Args:     []ast.Expression{intLit(1), intLit(2), intLit(3)},
		}},
	)
	wantError(t, check(t, overflow), "at most 2 fields")
}

func TestForLoopVariablesScoped(t *testing.T) {
	p := program(
		&ast.VarStatement{Span: sp(1), Name: "items", Value: &ast.ListLiteral{Span: sp(1)}},
		&ast.ForStatement{
			Span:     sp(2),
			Name:     "item",
			Iterable: ident(2, "items"),
			Body: &ast.BlockStatement{Span: sp(2), Statements: []ast.Statement{
				&ast.ExpressionStatement{Span: sp(3), Expression: ident(3, "item")},
			}},
		},
		// the loop variable does not leak out of the loop
		&ast.ExpressionStatement{Span: sp(4), Expression: ident(4, "item")},
	)
	errs := check(t, p)
	if len(errs) != 1 {
		t.Fatalf("errors = %v", errs)
	}
	wantError(t, errs, "unknown identifier 'item'")
}

func TestImportDeclaresNames(t *testing.T) {
	p := program(
		&ast.ImportStatement{Span: sp(1), Module: "time", Names: []*ast.ImportName{
			{Name: "now"},
			{Name: "sleep", Alias: "pause"},
		}},
		&ast.ExpressionStatement{Span: sp(2), Expression: ident(2, "now")},
		&ast.ExpressionStatement{Span: sp(3), Expression: ident(3, "pause")},
	)
	if errs := check(t, p); len(errs) != 0 {
		t.Errorf("imported names did not resolve: %v", errs)
	}
}

func TestLambdaParamsScoped(t *testing.T) {
	p := program(
		&ast.VarStatement{Span: sp(1), Name: "f", Value: &ast.LambdaLiteral{
			Span: sp(1),
			Parameters: []*ast.Parameter{
				{Name: "x"},
			},
			Body: ident(1, "x"),
		}},
	)
	if errs := check(t, p); len(errs) != 0 {
		t.Errorf("lambda param flagged: %v", errs)
	}
}
