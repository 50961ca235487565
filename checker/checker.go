// Package checker validates a program before evaluation. The pass is pure:
// it never evaluates anything and collects every problem it can find in
// one sweep, so a rejected program has had no side effects.
package checker

import (
	"fmt"

	"github.com/alexchoi0/blueprint-engine-sub002/ast"
	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

// Error is one static finding with its source position.
type Error struct {
	Message string
	Line    int
	Col     int
}

func (e Error) String() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Message)
}

type checkScope struct {
	outer   *checkScope
	defined map[string]bool
}

func newCheckScope(outer *checkScope) *checkScope {
	return &checkScope{outer: outer, defined: map[string]bool{}}
}

func (s *checkScope) declare(name string) bool {
	if s.defined[name] {
		return false
	}
	s.defined[name] = true
	return true
}

func (s *checkScope) resolves(name string) bool {
	for cur := s; cur != nil; cur = cur.outer {
		if cur.defined[name] {
			return true
		}
	}
	return false
}

// Checker walks a program against a symbol table of pre-bound names
// (builtins and registered module names).
type Checker struct {
	symbols map[string]bool
	structs map[string]*ast.StructStatement
	errors  []Error
}

func New(symbols []string) *Checker {
	table := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		table[s] = true
	}
	return &Checker{
		symbols: table,
		structs: map[string]*ast.StructStatement{},
	}
}

// Check runs the single pass and returns every finding. An empty result
// means evaluation may start. The pass holds no mutable input state, so
// re-checking an unchanged program yields the same result.
func (c *Checker) Check(program *ast.Program) []Error {
	c.errors = nil
	scope := newCheckScope(nil)
	for _, stmt := range program.Statements {
		c.checkStatement(stmt, scope)
	}
	return c.errors
}

func (c *Checker) errorf(pos ast.Span, format string, a ...interface{}) {
	c.errors = append(c.errors, Error{
		Message: fmt.Sprintf(format, a...),
		Line:    pos.Line,
		Col:     pos.Col,
	})
}

func (c *Checker) declare(scope *checkScope, name string, pos ast.Span) {
	if !scope.declare(name) {
		c.errorf(pos, "'%s' is already declared in this scope", name)
	}
}

func (c *Checker) checkStatement(stmt ast.Statement, scope *checkScope) {
	switch s := stmt.(type) {
	case *ast.VarStatement:
		if s.Value != nil {
			c.checkExpression(s.Value, scope)
		}
		c.checkAnnotation(s.Type, s.Span)
		c.declare(scope, s.Name, s.Span)

	case *ast.AssignStatement:
		c.checkExpression(s.Value, scope)
		switch target := s.Target.(type) {
		case *ast.Identifier:
			if !scope.resolves(target.Name) && !c.symbols[target.Name] {
				c.errorf(target.Span, "cannot assign to undeclared variable '%s'", target.Name)
			}
		default:
			c.checkExpression(s.Target, scope)
		}

	case *ast.ExpressionStatement:
		c.checkExpression(s.Expression, scope)

	case *ast.BlockStatement:
		inner := newCheckScope(scope)
		for _, inner_stmt := range s.Statements {
			c.checkStatement(inner_stmt, inner)
		}

	case *ast.IfStatement:
		c.checkExpression(s.Cond, scope)
		c.checkStatement(s.Then, scope)
		if s.Else != nil {
			c.checkStatement(s.Else, scope)
		}

	case *ast.WhileStatement:
		c.checkExpression(s.Cond, scope)
		c.checkStatement(s.Body, scope)

	case *ast.ForStatement:
		c.checkExpression(s.Iterable, scope)
		inner := newCheckScope(scope)
		c.declare(inner, s.Name, s.Span)
		if s.Value != "" {
			c.declare(inner, s.Value, s.Span)
		}
		for _, bodyStmt := range s.Body.Statements {
			c.checkStatement(bodyStmt, inner)
		}

	case *ast.FunctionStatement:
		c.declare(scope, s.Name, s.Span)
		c.checkFunction(s.Parameters, s.Body, nil, scope, s.Span)

	case *ast.ReturnStatement:
		if s.Value != nil {
			c.checkExpression(s.Value, scope)
		}

	case *ast.BreakStatement, *ast.ContinueStatement:
		// loop placement is the evaluator's concern

	case *ast.YieldStatement:
		if s.Value != nil {
			c.checkExpression(s.Value, scope)
		}

	case *ast.StructStatement:
		c.declare(scope, s.Name, s.Span)
		c.structs[s.Name] = s
		seen := map[string]bool{}
		for _, f := range s.Fields {
			if seen[f.Name] {
				c.errorf(s.Span, "struct %s declares field '%s' twice", s.Name, f.Name)
			}
			seen[f.Name] = true
			c.checkAnnotation(f.Type, s.Span)
			if f.Default != nil {
				c.checkExpression(f.Default, scope)
			}
		}

	case *ast.ImportStatement:
		if len(s.Names) == 0 {
			c.declare(scope, s.Module, s.Span)
			return
		}
		for _, n := range s.Names {
			name := n.Name
			if n.Alias != "" {
				name = n.Alias
			}
			c.declare(scope, name, s.Span)
		}
	}
}

func (c *Checker) checkFunction(params []*ast.Parameter, body *ast.BlockStatement, expr ast.Expression, outer *checkScope, pos ast.Span) {
	inner := newCheckScope(outer)
	for _, p := range params {
		c.checkAnnotation(p.Type, pos)
		if p.Default != nil {
			c.checkExpression(p.Default, outer)
		}
		c.declare(inner, p.Name, pos)
	}
	if body != nil {
		for _, stmt := range body.Statements {
			c.checkStatement(stmt, inner)
		}
	}
	if expr != nil {
		c.checkExpression(expr, inner)
	}
}

func (c *Checker) checkExpression(expr ast.Expression, scope *checkScope) {
	switch e := expr.(type) {
	case *ast.Identifier:
		if !scope.resolves(e.Name) && !c.symbols[e.Name] {
			c.errorf(e.Span, "unknown identifier '%s'", e.Name)
		}

	case *ast.ListLiteral:
		for _, el := range e.Elements {
			c.checkExpression(el, scope)
		}

	case *ast.DictLiteral:
		for i := range e.Keys {
			c.checkExpression(e.Keys[i], scope)
			c.checkExpression(e.Values[i], scope)
		}

	case *ast.SetLiteral:
		for _, el := range e.Elements {
			c.checkExpression(el, scope)
		}

	case *ast.PrefixExpression:
		c.checkExpression(e.Right, scope)

	case *ast.InfixExpression:
		c.checkExpression(e.Left, scope)
		c.checkExpression(e.Right, scope)

	case *ast.ConditionalExpression:
		c.checkExpression(e.Cond, scope)
		c.checkExpression(e.Then, scope)
		c.checkExpression(e.Else, scope)

	case *ast.CallExpression:
		c.checkExpression(e.Function, scope)
		for _, a := range e.Args {
			c.checkExpression(a, scope)
		}
		seen := map[string]bool{}
		for _, kw := range e.Kwargs {
			if seen[kw.Name] {
				c.errorf(e.Span, "duplicate keyword argument '%s'", kw.Name)
			}
			seen[kw.Name] = true
			c.checkExpression(kw.Value, scope)
		}
		c.checkStructLiteral(e)

	case *ast.IndexExpression:
		c.checkExpression(e.Left, scope)
		c.checkExpression(e.Index, scope)

	case *ast.AttrExpression:
		c.checkExpression(e.Left, scope)

	case *ast.LambdaLiteral:
		c.checkFunction(e.Parameters, nil, e.Body, scope, e.Span)
	}
}

// checkStructLiteral validates call sites that instantiate a struct
// declared earlier in the program: field kwargs must name declared fields
// and positional args must fit the field count.
func (c *Checker) checkStructLiteral(call *ast.CallExpression) {
	ident, ok := call.Function.(*ast.Identifier)
	if !ok {
		return
	}
	st, ok := c.structs[ident.Name]
	if !ok {
		return
	}
	if len(call.Args) > len(st.Fields) {
		c.errorf(call.Span, "%s takes at most %d fields (%d given)",
			st.Name, len(st.Fields), len(call.Args))
	}
	fields := map[string]bool{}
	for _, f := range st.Fields {
		fields[f.Name] = true
	}
	for _, kw := range call.Kwargs {
		if !fields[kw.Name] {
			c.errorf(call.Span, "%s has no field '%s'", st.Name, kw.Name)
		}
	}
}

func (c *Checker) checkAnnotation(annotation string, pos ast.Span) {
	if annotation == "" {
		return
	}
	if value.KnownAnnotation(annotation) {
		return
	}
	if _, ok := c.structs[annotation]; ok {
		return
	}
	c.errorf(pos, "unknown type annotation '%s'", annotation)
}
