// Package eval is the tree-walking evaluator. Programs run against a scope
// chain; control flow and runtime errors travel as internal value kinds
// until they reach the matching boundary or the host.
package eval

import (
	"context"
	"log/slog"

	"github.com/alexchoi0/blueprint-engine-sub002/ast"
	"github.com/alexchoi0/blueprint-engine-sub002/modules"
	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

// yieldFn suspends a generator body with a value. Non-nil only while a
// generator body is running.
type yieldFn func(ctx context.Context, v value.Value) error

// Evaluator runs a checked program. It is stateless across runs; one
// Evaluator may serve many programs.
type Evaluator struct {
	Registry *modules.Registry
	File     string

	yield yieldFn
}

func New(registry *modules.Registry, file string) *Evaluator {
	if registry == nil {
		registry = modules.Default()
	}
	return &Evaluator{Registry: registry, File: file}
}

// NewModuleScope builds a top frame with the registry's built-in functions
// bound by name.
func (e *Evaluator) NewModuleScope() *value.Scope {
	scope := value.NewScope(value.ModuleScope)
	if builtins, ok := e.Registry.Module("builtins"); ok {
		for name, fn := range builtins {
			scope.Declare(name, fn)
		}
	}
	return scope
}

// withYield copies the evaluator with a generator suspension hook. The copy
// is scoped to one generator body; nested calls drop it again.
func (e *Evaluator) withYield(y yieldFn) *Evaluator {
	c := *e
	c.yield = y
	return &c
}

func (e *Evaluator) loc(s ast.Span) value.SourceLocation {
	return value.SourceLocation{File: e.File, Line: s.Line, Col: s.Col}
}

func isError(v value.Value) bool {
	if v == nil {
		return true
	}
	return v.Type() == value.ERROR_VALUE
}

// isSignal reports a control-flow outcome that must stop the current
// statement list.
func isSignal(v value.Value) bool {
	switch v.Type() {
	case value.ERROR_VALUE, value.RETURN_VALUE, value.BREAK_VALUE, value.CONTINUE_VALUE:
		return true
	}
	return false
}

func cancelled(ctx context.Context) value.Value {
	select {
	case <-ctx.Done():
		return value.Errorf(value.Cancelled, "execution cancelled")
	default:
		return nil
	}
}

// Eval runs a whole program in the given module scope. Control-flow signals
// escaping the top level are host-script defects.
func (e *Evaluator) Eval(ctx context.Context, program *ast.Program, scope *value.Scope) value.Value {
	var result value.Value = value.NONE

	for _, stmt := range program.Statements {
		if c := cancelled(ctx); c != nil {
			return c
		}
		result = e.evalStatement(ctx, stmt, scope)
		switch result.Type() {
		case value.ERROR_VALUE:
			return result
		case value.RETURN_VALUE:
			return value.Errorf(value.ControlFlowError, "'return' outside function").At(e.loc(stmt.Pos()))
		case value.BREAK_VALUE:
			return value.Errorf(value.ControlFlowError, "'break' outside loop").At(e.loc(stmt.Pos()))
		case value.CONTINUE_VALUE:
			return value.Errorf(value.ControlFlowError, "'continue' outside loop").At(e.loc(stmt.Pos()))
		}
	}
	return result
}

func (e *Evaluator) evalStatement(ctx context.Context, stmt ast.Statement, scope *value.Scope) value.Value {
	switch stmt := stmt.(type) {
	case *ast.VarStatement:
		return e.evalVarStatement(ctx, stmt, scope)
	case *ast.AssignStatement:
		return e.evalAssignStatement(ctx, stmt, scope)
	case *ast.ExpressionStatement:
		return e.evalExpression(ctx, stmt.Expression, scope)
	case *ast.BlockStatement:
		inner := value.NewEnclosedScope(value.BlockScope, scope)
		return e.evalBlock(ctx, stmt.Statements, inner)
	case *ast.IfStatement:
		return e.evalIfStatement(ctx, stmt, scope)
	case *ast.WhileStatement:
		return e.evalWhileStatement(ctx, stmt, scope)
	case *ast.ForStatement:
		return e.evalForStatement(ctx, stmt, scope)
	case *ast.FunctionStatement:
		fn := &value.Function{
			Name:        stmt.Name,
			Parameters:  stmt.Parameters,
			Body:        stmt.Body,
			Closure:     scope,
			IsGenerator: containsYield(stmt.Body),
		}
		if err := scope.Declare(stmt.Name, fn); err != nil {
			return err.At(e.loc(stmt.Span))
		}
		return value.NONE
	case *ast.ReturnStatement:
		val := value.Value(value.NONE)
		if stmt.Value != nil {
			val = e.evalExpression(ctx, stmt.Value, scope)
			if isError(val) {
				return val
			}
		}
		return &value.ReturnValue{Value: val}
	case *ast.BreakStatement:
		return value.BREAK
	case *ast.ContinueStatement:
		return value.CONTINUE
	case *ast.YieldStatement:
		return e.evalYieldStatement(ctx, stmt, scope)
	case *ast.StructStatement:
		return e.evalStructStatement(ctx, stmt, scope)
	case *ast.ImportStatement:
		return e.evalImportStatement(stmt, scope)
	default:
		return value.Errorf(value.TypeError, "unsupported statement").At(e.loc(stmt.Pos()))
	}
}

// evalBlock runs a statement list in the given scope, stopping at the first
// error or control-flow signal.
func (e *Evaluator) evalBlock(ctx context.Context, stmts []ast.Statement, scope *value.Scope) value.Value {
	var result value.Value = value.NONE
	for _, stmt := range stmts {
		if c := cancelled(ctx); c != nil {
			return c
		}
		result = e.evalStatement(ctx, stmt, scope)
		if isSignal(result) {
			return result
		}
	}
	return result
}

func (e *Evaluator) evalVarStatement(ctx context.Context, stmt *ast.VarStatement, scope *value.Scope) value.Value {
	val := value.Value(value.NONE)
	if stmt.Value != nil {
		val = e.evalExpression(ctx, stmt.Value, scope)
		if isError(val) {
			return val
		}
	}
	if !value.MatchesAnnotation(stmt.Type, val) {
		return value.Errorf(value.TypeError,
			"variable '%s' expects %s, got %s", stmt.Name, stmt.Type, value.TypeName(val)).At(e.loc(stmt.Span))
	}
	if err := scope.Declare(stmt.Name, val); err != nil {
		return err.At(e.loc(stmt.Span))
	}
	return value.NONE
}

func (e *Evaluator) evalAssignStatement(ctx context.Context, stmt *ast.AssignStatement, scope *value.Scope) value.Value {
	val := e.evalExpression(ctx, stmt.Value, scope)
	if isError(val) {
		return val
	}

	switch target := stmt.Target.(type) {
	case *ast.Identifier:
		if err := scope.Assign(target.Name, val); err != nil {
			return err.At(e.loc(target.Span))
		}
		return value.NONE
	case *ast.IndexExpression:
		return e.assignIndex(ctx, target, val, scope)
	case *ast.AttrExpression:
		return e.assignAttr(ctx, target, val, scope)
	default:
		return value.Errorf(value.TypeError, "invalid assignment target").At(e.loc(stmt.Span))
	}
}

func (e *Evaluator) assignIndex(ctx context.Context, target *ast.IndexExpression, val value.Value, scope *value.Scope) value.Value {
	container := e.evalExpression(ctx, target.Left, scope)
	if isError(container) {
		return container
	}
	index := e.evalExpression(ctx, target.Index, scope)
	if isError(index) {
		return index
	}

	switch container := container.(type) {
	case *value.List:
		i, ok := index.(*value.Int)
		if !ok {
			return value.Errorf(value.TypeError,
				"list indices must be int, got %s", value.TypeName(index)).At(e.loc(target.Span))
		}
		if !container.Set(int(i.Value), val) {
			return value.Errorf(value.IndexError,
				"list index %d out of range", i.Value).At(e.loc(target.Span))
		}
		return value.NONE
	case *value.Dict:
		key, ok := value.AsHashable(index)
		if !ok {
			return value.Errorf(value.TypeError,
				"unhashable type: '%s'", value.TypeName(index)).At(e.loc(target.Span))
		}
		container.Set(key, val)
		return value.NONE
	default:
		return value.Errorf(value.TypeError,
			"'%s' does not support item assignment", value.TypeName(container)).At(e.loc(target.Span))
	}
}

func (e *Evaluator) assignAttr(ctx context.Context, target *ast.AttrExpression, val value.Value, scope *value.Scope) value.Value {
	left := e.evalExpression(ctx, target.Left, scope)
	if isError(left) {
		return left
	}
	inst, ok := left.(*value.StructInstance)
	if !ok {
		return value.Errorf(value.TypeError,
			"cannot set attribute on %s", value.TypeName(left)).At(e.loc(target.Span))
	}
	if err := inst.SetField(target.Name, val); err != nil {
		return err.At(e.loc(target.Span))
	}
	return value.NONE
}

func (e *Evaluator) evalIfStatement(ctx context.Context, stmt *ast.IfStatement, scope *value.Scope) value.Value {
	cond := e.evalExpression(ctx, stmt.Cond, scope)
	if isError(cond) {
		return cond
	}
	if value.IsTruthy(cond) {
		inner := value.NewEnclosedScope(value.BlockScope, scope)
		return e.evalBlock(ctx, stmt.Then.Statements, inner)
	}
	if stmt.Else != nil {
		return e.evalStatement(ctx, stmt.Else, scope)
	}
	return value.NONE
}

func (e *Evaluator) evalWhileStatement(ctx context.Context, stmt *ast.WhileStatement, scope *value.Scope) value.Value {
	loop := value.NewEnclosedScope(value.LoopScope, scope)
	for {
		if c := cancelled(ctx); c != nil {
			return c
		}
		cond := e.evalExpression(ctx, stmt.Cond, loop)
		if isError(cond) {
			return cond
		}
		if !value.IsTruthy(cond) {
			return value.NONE
		}
		body := value.NewEnclosedScope(value.BlockScope, loop)
		result := e.evalBlock(ctx, stmt.Body.Statements, body)
		switch result.Type() {
		case value.BREAK_VALUE:
			return value.NONE
		case value.CONTINUE_VALUE:
			continue
		case value.ERROR_VALUE, value.RETURN_VALUE:
			return result
		}
	}
}

func (e *Evaluator) evalForStatement(ctx context.Context, stmt *ast.ForStatement, scope *value.Scope) value.Value {
	iterable := e.evalExpression(ctx, stmt.Iterable, scope)
	if isError(iterable) {
		return iterable
	}

	loop := value.NewEnclosedScope(value.LoopScope, scope)
	if err := loop.Declare(stmt.Name, value.NONE); err != nil {
		return err.At(e.loc(stmt.Span))
	}
	if stmt.Value != "" {
		if err := loop.Declare(stmt.Value, value.NONE); err != nil {
			return err.At(e.loc(stmt.Span))
		}
	}

	// step runs one iteration with the loop variables already bound. The
	// bool result is false when the loop must stop.
	step := func(first, second value.Value) (value.Value, bool) {
		if c := cancelled(ctx); c != nil {
			return c, false
		}
		loop.Assign(stmt.Name, first)
		if stmt.Value != "" {
			loop.Assign(stmt.Value, second)
		}
		body := value.NewEnclosedScope(value.BlockScope, loop)
		result := e.evalBlock(ctx, stmt.Body.Statements, body)
		switch result.Type() {
		case value.BREAK_VALUE:
			return value.NONE, false
		case value.ERROR_VALUE, value.RETURN_VALUE:
			return result, false
		}
		return value.NONE, true
	}

	// unpack splits one element for a two-variable loop.
	unpack := func(elem value.Value) (value.Value, value.Value, *value.Error) {
		if stmt.Value == "" {
			return elem, nil, nil
		}
		pair, ok := elem.(*value.List)
		if !ok || pair.Len() != 2 {
			return nil, nil, value.Errorf(value.TypeError,
				"cannot unpack %s into two variables", value.TypeName(elem)).At(e.loc(stmt.Span))
		}
		first, _ := pair.Get(0)
		second, _ := pair.Get(1)
		return first, second, nil
	}

	switch iterable := iterable.(type) {
	case *value.List:
		for _, elem := range iterable.Snapshot() {
			first, second, uerr := unpack(elem)
			if uerr != nil {
				return uerr
			}
			if result, cont := step(first, second); !cont {
				return result
			}
		}
	case *value.Dict:
		for _, pair := range iterable.Pairs() {
			if result, cont := step(pair.Key, pair.Value); !cont {
				return result
			}
		}
	case *value.Set:
		for _, item := range iterable.Items() {
			first, second, uerr := unpack(item)
			if uerr != nil {
				return uerr
			}
			if result, cont := step(first, second); !cont {
				return result
			}
		}
	case *value.String:
		for _, r := range iterable.Value {
			if result, cont := step(&value.String{Value: string(r)}, nil); !cont {
				return result
			}
		}
	case *value.Generator:
		// break or an error leaves the producer suspended; close it so the
		// goroutine does not outlive the loop
		defer iterable.Close()
		for {
			elem, more, err := iterable.Next(ctx)
			if err != nil {
				return value.FromGoError(err, value.ValueError).At(e.loc(stmt.Span))
			}
			if !more {
				break
			}
			first, second, uerr := unpack(elem)
			if uerr != nil {
				return uerr
			}
			if result, cont := step(first, second); !cont {
				return result
			}
		}
	default:
		return value.Errorf(value.TypeError,
			"'%s' is not iterable", value.TypeName(iterable)).At(e.loc(stmt.Span))
	}
	return value.NONE
}

func (e *Evaluator) evalYieldStatement(ctx context.Context, stmt *ast.YieldStatement, scope *value.Scope) value.Value {
	if e.yield == nil {
		return value.Errorf(value.ControlFlowError, "'yield' outside generator").At(e.loc(stmt.Span))
	}
	val := value.Value(value.NONE)
	if stmt.Value != nil {
		val = e.evalExpression(ctx, stmt.Value, scope)
		if isError(val) {
			return val
		}
	}
	if err := e.yield(ctx, val); err != nil {
		return value.FromGoError(err, value.Cancelled)
	}
	return value.NONE
}

func (e *Evaluator) evalStructStatement(ctx context.Context, stmt *ast.StructStatement, scope *value.Scope) value.Value {
	st := &value.StructType{Name: stmt.Name}
	for _, field := range stmt.Fields {
		var def value.Value
		if field.Default != nil {
			def = e.evalExpression(ctx, field.Default, scope)
			if isError(def) {
				return def
			}
			if !value.MatchesAnnotation(field.Type, def) {
				return value.Errorf(value.TypeError,
					"default for field '%s' of %s expects %s, got %s",
					field.Name, stmt.Name, field.Type, value.TypeName(def)).At(e.loc(stmt.Span))
			}
		}
		st.Fields = append(st.Fields, value.StructField{
			Name:    field.Name,
			Type:    field.Type,
			Default: def,
		})
	}
	if err := scope.Declare(stmt.Name, st); err != nil {
		return err.At(e.loc(stmt.Span))
	}
	return value.NONE
}

func (e *Evaluator) evalImportStatement(stmt *ast.ImportStatement, scope *value.Scope) value.Value {
	module, ok := e.Registry.Module(stmt.Module)
	if !ok {
		return value.Errorf(value.NameError, "unknown module '%s'", stmt.Module).At(e.loc(stmt.Span))
	}
	slog.Debug("importing module",
		slog.String("module", stmt.Module), slog.Int("names", len(stmt.Names)))

	if len(stmt.Names) == 0 {
		bound := value.NewDict()
		for _, name := range moduleNames(module) {
			bound.Set(&value.String{Value: name}, module[name])
		}
		if err := scope.Declare(stmt.Module, bound); err != nil {
			return err.At(e.loc(stmt.Span))
		}
		return value.NONE
	}

	for _, imp := range stmt.Names {
		fn, ok := module[imp.Name]
		if !ok {
			return value.Errorf(value.NameError,
				"module '%s' has no function '%s'", stmt.Module, imp.Name).At(e.loc(stmt.Span))
		}
		binding := imp.Name
		if imp.Alias != "" {
			binding = imp.Alias
		}
		if err := scope.Declare(binding, fn); err != nil {
			return err.At(e.loc(stmt.Span))
		}
	}
	return value.NONE
}

// containsYield walks a statement tree for a yield, without descending into
// nested function definitions.
func containsYield(block *ast.BlockStatement) bool {
	if block == nil {
		return false
	}
	for _, stmt := range block.Statements {
		if statementYields(stmt) {
			return true
		}
	}
	return false
}

func statementYields(stmt ast.Statement) bool {
	switch stmt := stmt.(type) {
	case *ast.YieldStatement:
		return true
	case *ast.BlockStatement:
		for _, s := range stmt.Statements {
			if statementYields(s) {
				return true
			}
		}
	case *ast.IfStatement:
		if containsYield(stmt.Then) {
			return true
		}
		if stmt.Else != nil {
			return statementYields(stmt.Else)
		}
	case *ast.WhileStatement:
		return containsYield(stmt.Body)
	case *ast.ForStatement:
		return containsYield(stmt.Body)
	}
	return false
}
