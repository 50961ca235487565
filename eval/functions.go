package eval

import (
	"context"
	"sort"

	"github.com/alexchoi0/blueprint-engine-sub002/ast"
	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

func sortedKeys(m map[string]value.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *Evaluator) evalCall(ctx context.Context, expr *ast.CallExpression, scope *value.Scope) value.Value {
	callee := e.evalExpression(ctx, expr.Function, scope)
	if isError(callee) {
		return callee
	}

	args := make([]value.Value, 0, len(expr.Args))
	for _, arg := range expr.Args {
		v := e.evalExpression(ctx, arg, scope)
		if isError(v) {
			return v
		}
		args = append(args, v)
	}

	var kwargs map[string]value.Value
	if len(expr.Kwargs) > 0 {
		kwargs = make(map[string]value.Value, len(expr.Kwargs))
		for _, kw := range expr.Kwargs {
			if _, dup := kwargs[kw.Name]; dup {
				return value.Errorf(value.ArgumentError,
					"duplicate keyword argument '%s'", kw.Name).At(e.loc(expr.Span))
			}
			v := e.evalExpression(ctx, kw.Value, scope)
			if isError(v) {
				return v
			}
			kwargs[kw.Name] = v
		}
	}

	return e.applyValue(ctx, callee, args, kwargs, e.loc(expr.Span))
}

// applyValue dispatches a call over the callable kinds. callLoc is the call
// site, recorded in the unwinding stack.
func (e *Evaluator) applyValue(ctx context.Context, callee value.Value, args []value.Value, kwargs map[string]value.Value, callLoc value.SourceLocation) value.Value {
	switch callee := callee.(type) {
	case *value.Function:
		if callee.IsGenerator {
			return e.makeGenerator(ctx, callee, args, kwargs, callLoc)
		}
		return e.applyFunction(ctx, callee, args, kwargs, callLoc)
	case *value.NativeFunction:
		result, err := callee.Fn(ctx, args, kwargs)
		if err != nil {
			return value.FromGoError(err, value.IOError).At(callLoc).WithFrame(callee.Name, callLoc)
		}
		if result == nil {
			return value.NONE
		}
		return result
	case *value.StructType:
		inst, err := callee.Instantiate(args, kwargs)
		if err != nil {
			return err.At(callLoc)
		}
		return inst
	default:
		return value.Errorf(value.NotCallable,
			"'%s' is not callable", value.TypeName(callee)).
			At(callLoc)
	}
}

// applyFunction runs a user function or lambda: fresh function frame chained
// onto the closure, arguments bound, ReturnValue unwrapped, implicit None.
func (e *Evaluator) applyFunction(ctx context.Context, fn *value.Function, args []value.Value, kwargs map[string]value.Value, callLoc value.SourceLocation) value.Value {
	closure := fn.Closure
	if closure == nil {
		closure = value.NewScope(value.ModuleScope)
	}
	frame := value.NewEnclosedScope(value.FunctionScope, closure)

	if err := e.bindArguments(ctx, fn, frame, args, kwargs); err != nil {
		return err.At(callLoc)
	}

	// a nested call is not part of the enclosing generator body
	callee := e
	if e.yield != nil {
		callee = e.withYield(nil)
	}

	if fn.Expr != nil {
		result := callee.evalExpression(ctx, fn.Expr, frame)
		if err, ok := value.AsError(result); ok {
			return err.WithFrame(fn.DisplayName(), callLoc)
		}
		return result
	}

	result := callee.evalBlock(ctx, fn.Body.Statements, frame)
	switch result := result.(type) {
	case *value.Error:
		return result.WithFrame(fn.DisplayName(), callLoc)
	case *value.ReturnValue:
		return result.Value
	case *value.Break:
		return value.Errorf(value.ControlFlowError, "'break' outside loop").At(callLoc)
	case *value.Continue:
		return value.Errorf(value.ControlFlowError, "'continue' outside loop").At(callLoc)
	}
	return value.NONE
}

// makeGenerator builds the suspended producer for a generator function.
// Arguments bind eagerly so binding defects surface at the call site, not on
// the first next().
func (e *Evaluator) makeGenerator(ctx context.Context, fn *value.Function, args []value.Value, kwargs map[string]value.Value, callLoc value.SourceLocation) value.Value {
	closure := fn.Closure
	if closure == nil {
		closure = value.NewScope(value.ModuleScope)
	}
	frame := value.NewEnclosedScope(value.FunctionScope, closure)
	if err := e.bindArguments(ctx, fn, frame, args, kwargs); err != nil {
		return err.At(callLoc)
	}

	name := fn.DisplayName()
	return value.NewGenerator(name, func(gctx context.Context, yield func(context.Context, value.Value) error) (value.Value, error) {
		body := e.withYield(yieldFn(yield))
		result := body.evalBlock(gctx, fn.Body.Statements, frame)
		switch result := result.(type) {
		case *value.Error:
			return nil, result.WithFrame(name, callLoc)
		case *value.ReturnValue:
			return result.Value, nil
		}
		return value.NONE, nil
	})
}

// bindArguments fills the call frame: positional arguments in order, then
// keywords, then defaults; a variadic parameter absorbs the positional
// remainder and a kwargs parameter the keyword remainder.
func (e *Evaluator) bindArguments(ctx context.Context, fn *value.Function, frame *value.Scope, args []value.Value, kwargs map[string]value.Value) *value.Error {
	remaining := make(map[string]value.Value, len(kwargs))
	for name, v := range kwargs {
		remaining[name] = v
	}

	argIdx := 0
	for _, param := range fn.Parameters {
		switch param.Kind {
		case ast.PositionalParam:
			var bound value.Value
			switch {
			case argIdx < len(args):
				bound = args[argIdx]
				argIdx++
				if _, dup := remaining[param.Name]; dup {
					return value.Errorf(value.ArgumentError,
						"%s() got multiple values for argument '%s'", fn.DisplayName(), param.Name)
				}
			default:
				if v, ok := remaining[param.Name]; ok {
					bound = v
					delete(remaining, param.Name)
				} else if param.Default != nil {
					bound = e.evalExpression(ctx, param.Default, frame.Outer)
					if err, isErr := value.AsError(bound); isErr {
						return err
					}
				} else {
					return value.Errorf(value.ArgumentError,
						"%s() missing required argument '%s'", fn.DisplayName(), param.Name)
				}
			}
			if !value.MatchesAnnotation(param.Type, bound) {
				return value.Errorf(value.TypeError,
					"argument '%s' of %s() expects %s, got %s",
					param.Name, fn.DisplayName(), param.Type, value.TypeName(bound))
			}
			if err := frame.Declare(param.Name, bound); err != nil {
				return err
			}
		case ast.VariadicParam:
			rest := make([]value.Value, len(args)-argIdx)
			copy(rest, args[argIdx:])
			argIdx = len(args)
			if err := frame.Declare(param.Name, value.NewList(rest)); err != nil {
				return err
			}
		case ast.KwargsParam:
			bag := value.NewDict()
			for _, name := range sortedKeys(remaining) {
				bag.Set(&value.String{Value: name}, remaining[name])
			}
			remaining = map[string]value.Value{}
			if err := frame.Declare(param.Name, bag); err != nil {
				return err
			}
		}
	}

	if argIdx < len(args) {
		return value.Errorf(value.ArgumentError,
			"%s() takes %d arguments (%d given)", fn.DisplayName(), argIdx, len(args))
	}
	if len(remaining) > 0 {
		name := sortedKeys(remaining)[0]
		return value.Errorf(value.ArgumentError,
			"%s() got an unexpected keyword argument '%s'", fn.DisplayName(), name)
	}
	return nil
}

// Apply lets natives call back into script callables through the ambient
// Applier seam.
func (e *Evaluator) Apply(ctx context.Context, fn value.Value, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	result := e.applyValue(ctx, fn, args, kwargs, value.SourceLocation{})
	if err, ok := value.AsError(result); ok {
		return nil, err
	}
	return result, nil
}
