package eval

import (
	"context"
	"sort"

	"github.com/alexchoi0/blueprint-engine-sub002/ast"
	"github.com/alexchoi0/blueprint-engine-sub002/modules"
	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

func (e *Evaluator) evalExpression(ctx context.Context, expr ast.Expression, scope *value.Scope) value.Value {
	switch expr := expr.(type) {
	case *ast.NoneLiteral:
		return value.NONE
	case *ast.BoolLiteral:
		return value.NativeBool(expr.Value)
	case *ast.IntLiteral:
		return &value.Int{Value: expr.Value}
	case *ast.FloatLiteral:
		return &value.Float{Value: expr.Value}
	case *ast.StringLiteral:
		return &value.String{Value: expr.Value}
	case *ast.Identifier:
		v, err := scope.Resolve(expr.Name)
		if err != nil {
			return err.At(e.loc(expr.Span))
		}
		return v
	case *ast.ListLiteral:
		elements := make([]value.Value, 0, len(expr.Elements))
		for _, elem := range expr.Elements {
			v := e.evalExpression(ctx, elem, scope)
			if isError(v) {
				return v
			}
			elements = append(elements, v)
		}
		return value.NewList(elements)
	case *ast.DictLiteral:
		return e.evalDictLiteral(ctx, expr, scope)
	case *ast.SetLiteral:
		return e.evalSetLiteral(ctx, expr, scope)
	case *ast.PrefixExpression:
		right := e.evalExpression(ctx, expr.Right, scope)
		if isError(right) {
			return right
		}
		return e.evalPrefix(expr.Operator, right, expr.Span)
	case *ast.InfixExpression:
		return e.evalInfixExpression(ctx, expr, scope)
	case *ast.ConditionalExpression:
		cond := e.evalExpression(ctx, expr.Cond, scope)
		if isError(cond) {
			return cond
		}
		if value.IsTruthy(cond) {
			return e.evalExpression(ctx, expr.Then, scope)
		}
		return e.evalExpression(ctx, expr.Else, scope)
	case *ast.CallExpression:
		return e.evalCall(ctx, expr, scope)
	case *ast.IndexExpression:
		return e.evalIndex(ctx, expr, scope)
	case *ast.AttrExpression:
		return e.evalAttr(ctx, expr, scope)
	case *ast.LambdaLiteral:
		return &value.Function{
			Parameters: expr.Parameters,
			Expr:       expr.Body,
			Closure:    scope,
		}
	default:
		return value.Errorf(value.TypeError, "unsupported expression").At(e.loc(expr.Pos()))
	}
}

func (e *Evaluator) evalDictLiteral(ctx context.Context, expr *ast.DictLiteral, scope *value.Scope) value.Value {
	dict := value.NewDict()
	for i := range expr.Keys {
		key := e.evalExpression(ctx, expr.Keys[i], scope)
		if isError(key) {
			return key
		}
		hashable, ok := value.AsHashable(key)
		if !ok {
			return value.Errorf(value.TypeError,
				"unhashable type: '%s'", value.TypeName(key)).At(e.loc(expr.Span))
		}
		val := e.evalExpression(ctx, expr.Values[i], scope)
		if isError(val) {
			return val
		}
		dict.Set(hashable, val)
	}
	return dict
}

func (e *Evaluator) evalSetLiteral(ctx context.Context, expr *ast.SetLiteral, scope *value.Scope) value.Value {
	set := value.NewSet()
	for _, elem := range expr.Elements {
		v := e.evalExpression(ctx, elem, scope)
		if isError(v) {
			return v
		}
		hashable, ok := value.AsHashable(v)
		if !ok {
			return value.Errorf(value.TypeError,
				"unhashable type: '%s'", value.TypeName(v)).At(e.loc(expr.Span))
		}
		set.Add(hashable)
	}
	return set
}

func (e *Evaluator) evalIndex(ctx context.Context, expr *ast.IndexExpression, scope *value.Scope) value.Value {
	left := e.evalExpression(ctx, expr.Left, scope)
	if isError(left) {
		return left
	}
	index := e.evalExpression(ctx, expr.Index, scope)
	if isError(index) {
		return index
	}

	switch left := left.(type) {
	case *value.List:
		i, ok := index.(*value.Int)
		if !ok {
			return value.Errorf(value.TypeError,
				"list indices must be int, got %s", value.TypeName(index)).At(e.loc(expr.Span))
		}
		v, found := left.Get(int(i.Value))
		if !found {
			return value.Errorf(value.IndexError,
				"list index %d out of range", i.Value).At(e.loc(expr.Span))
		}
		return v
	case *value.Dict:
		key, ok := value.AsHashable(index)
		if !ok {
			return value.Errorf(value.TypeError,
				"unhashable type: '%s'", value.TypeName(index)).At(e.loc(expr.Span))
		}
		v, found := left.Get(key)
		if !found {
			return value.Errorf(value.KeyError, "key %s not found", index.Inspect()).At(e.loc(expr.Span))
		}
		return v
	case *value.String:
		i, ok := index.(*value.Int)
		if !ok {
			return value.Errorf(value.TypeError,
				"string indices must be int, got %s", value.TypeName(index)).At(e.loc(expr.Span))
		}
		runes := []rune(left.Value)
		idx := int(i.Value)
		if idx < 0 {
			idx += len(runes)
		}
		if idx < 0 || idx >= len(runes) {
			return value.Errorf(value.IndexError,
				"string index %d out of range", i.Value).At(e.loc(expr.Span))
		}
		return &value.String{Value: string(runes[idx])}
	default:
		return value.Errorf(value.TypeError,
			"'%s' is not indexable", value.TypeName(left)).At(e.loc(expr.Span))
	}
}

func (e *Evaluator) evalAttr(ctx context.Context, expr *ast.AttrExpression, scope *value.Scope) value.Value {
	left := e.evalExpression(ctx, expr.Left, scope)
	if isError(left) {
		return left
	}

	switch left := left.(type) {
	case *value.StructInstance:
		if v, ok := left.GetField(expr.Name); ok {
			return v
		}
		return value.Errorf(value.AttributeError,
			"%s has no field '%s'", left.StructType.Name, expr.Name).At(e.loc(expr.Span))
	case *value.HttpResponse:
		if v, ok := left.GetAttr(expr.Name); ok {
			return v
		}
	case *value.ProcessResult:
		if v, ok := left.GetAttr(expr.Name); ok {
			return v
		}
	case *value.StreamIterator:
		switch expr.Name {
		case "content":
			return &value.String{Value: left.Content()}
		case "done":
			return value.NativeBool(left.Done())
		case "result":
			return left.Result()
		}
	case *value.Dict:
		// imported modules are bound as dicts of natives, so key lookup
		// comes before the built-in dict methods
		if v, ok := left.Get(&value.String{Value: expr.Name}); ok {
			return v
		}
	}

	if method, ok := value.LookupMethod(left, expr.Name); ok {
		return method
	}
	return value.Errorf(value.AttributeError,
		"'%s' has no attribute '%s'", value.TypeName(left), expr.Name).At(e.loc(expr.Span))
}

func moduleNames(m modules.Module) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
