package eval

import (
	"context"
	"math"
	"strings"

	"github.com/alexchoi0/blueprint-engine-sub002/ast"
	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

func (e *Evaluator) evalPrefix(operator string, right value.Value, span ast.Span) value.Value {
	switch operator {
	case "-":
		switch right := right.(type) {
		case *value.Int:
			return &value.Int{Value: -right.Value}
		case *value.Float:
			return &value.Float{Value: -right.Value}
		}
		return value.Errorf(value.TypeError,
			"bad operand type for unary -: '%s'", value.TypeName(right)).At(e.loc(span))
	case "not":
		return value.NativeBool(!value.IsTruthy(right))
	default:
		return value.Errorf(value.TypeError, "unknown operator: %s", operator).At(e.loc(span))
	}
}

// evalInfixExpression handles the short-circuiting operators itself and
// defers the rest to evalInfix once both operands are evaluated.
func (e *Evaluator) evalInfixExpression(ctx context.Context, expr *ast.InfixExpression, scope *value.Scope) value.Value {
	left := e.evalExpression(ctx, expr.Left, scope)
	if isError(left) {
		return left
	}

	switch expr.Operator {
	case "and":
		if !value.IsTruthy(left) {
			return left
		}
		return e.evalExpression(ctx, expr.Right, scope)
	case "or":
		if value.IsTruthy(left) {
			return left
		}
		return e.evalExpression(ctx, expr.Right, scope)
	}

	right := e.evalExpression(ctx, expr.Right, scope)
	if isError(right) {
		return right
	}
	return e.evalInfix(expr.Operator, left, right, expr.Span)
}

func (e *Evaluator) evalInfix(operator string, left, right value.Value, span ast.Span) value.Value {
	switch operator {
	case "==":
		return value.NativeBool(value.Equals(left, right))
	case "!=":
		return value.NativeBool(!value.Equals(left, right))
	case "in":
		return e.evalMembership(left, right, span)
	case "not in":
		result := e.evalMembership(left, right, span)
		if b, ok := result.(*value.Bool); ok {
			return value.NativeBool(!b.Value)
		}
		return result
	case "<", "<=", ">", ">=":
		return e.evalComparison(operator, left, right, span)
	case "+":
		return e.evalAdd(left, right, span)
	case "-", "*", "/", "//", "%":
		return e.evalArithmetic(operator, left, right, span)
	case "&", "|", "^", "<<", ">>":
		return e.evalBitwise(operator, left, right, span)
	default:
		return value.Errorf(value.TypeError, "unknown operator: %s", operator).At(e.loc(span))
	}
}

func (e *Evaluator) evalAdd(left, right value.Value, span ast.Span) value.Value {
	if result, ok := addNumbers(left, right); ok {
		return result
	}
	switch left := left.(type) {
	case *value.String:
		if r, ok := right.(*value.String); ok {
			return &value.String{Value: left.Value + r.Value}
		}
	case *value.List:
		if r, ok := right.(*value.List); ok {
			return value.NewList(append(left.Snapshot(), r.Snapshot()...))
		}
	}
	return e.binaryTypeError("+", left, right, span)
}

func (e *Evaluator) evalArithmetic(operator string, left, right value.Value, span ast.Span) value.Value {
	if operator == "*" {
		if result, ok := repeatOp(left, right); ok {
			return result
		}
	}
	if operator == "%" {
		if fmtStr, ok := left.(*value.String); ok {
			return e.formatString(fmtStr.Value, right, span)
		}
	}

	li, lf, lNum := asNumber(left)
	ri, rf, rNum := asNumber(right)
	if !lNum || !rNum {
		return e.binaryTypeError(operator, left, right, span)
	}
	bothInt := left.Type() == value.INT_VALUE && right.Type() == value.INT_VALUE

	switch operator {
	case "-":
		if bothInt {
			return &value.Int{Value: li - ri}
		}
		return &value.Float{Value: lf - rf}
	case "*":
		if bothInt {
			return &value.Int{Value: li * ri}
		}
		return &value.Float{Value: lf * rf}
	case "/":
		if rf == 0 {
			return value.Errorf(value.DivisionByZero, "division by zero").At(e.loc(span))
		}
		return &value.Float{Value: lf / rf}
	case "//":
		if rf == 0 {
			return value.Errorf(value.DivisionByZero, "division by zero").At(e.loc(span))
		}
		if bothInt {
			return &value.Int{Value: euclidDiv(li, ri)}
		}
		return &value.Float{Value: math.Floor(lf / rf)}
	case "%":
		if rf == 0 {
			return value.Errorf(value.DivisionByZero, "modulo by zero").At(e.loc(span))
		}
		if bothInt {
			return &value.Int{Value: euclidMod(li, ri)}
		}
		return &value.Float{Value: euclidModFloat(lf, rf)}
	}
	return e.binaryTypeError(operator, left, right, span)
}

func (e *Evaluator) evalComparison(operator string, left, right value.Value, span ast.Span) value.Value {
	var cmp int

	_, lf, lNum := asNumber(left)
	_, rf, rNum := asNumber(right)
	switch {
	case lNum && rNum:
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		}
	case left.Type() == value.STRING_VALUE && right.Type() == value.STRING_VALUE:
		cmp = strings.Compare(left.(*value.String).Value, right.(*value.String).Value)
	default:
		return value.Errorf(value.TypeError,
			"'%s' not supported between '%s' and '%s'",
			operator, value.TypeName(left), value.TypeName(right)).At(e.loc(span))
	}

	switch operator {
	case "<":
		return value.NativeBool(cmp < 0)
	case "<=":
		return value.NativeBool(cmp <= 0)
	case ">":
		return value.NativeBool(cmp > 0)
	default:
		return value.NativeBool(cmp >= 0)
	}
}

func (e *Evaluator) evalMembership(left, right value.Value, span ast.Span) value.Value {
	switch right := right.(type) {
	case *value.List:
		for _, elem := range right.Snapshot() {
			if value.Equals(left, elem) {
				return value.TRUE
			}
		}
		return value.FALSE
	case *value.Dict:
		key, ok := value.AsHashable(left)
		if !ok {
			return value.Errorf(value.TypeError,
				"unhashable type: '%s'", value.TypeName(left)).At(e.loc(span))
		}
		return value.NativeBool(right.Has(key))
	case *value.Set:
		item, ok := value.AsHashable(left)
		if !ok {
			return value.Errorf(value.TypeError,
				"unhashable type: '%s'", value.TypeName(left)).At(e.loc(span))
		}
		return value.NativeBool(right.Has(item))
	case *value.String:
		needle, ok := left.(*value.String)
		if !ok {
			return value.Errorf(value.TypeError,
				"'in <string>' requires str, got %s", value.TypeName(left)).At(e.loc(span))
		}
		return value.NativeBool(strings.Contains(right.Value, needle.Value))
	default:
		return value.Errorf(value.TypeError,
			"'%s' is not iterable", value.TypeName(right)).At(e.loc(span))
	}
}

func (e *Evaluator) evalBitwise(operator string, left, right value.Value, span ast.Span) value.Value {
	li, lok := left.(*value.Int)
	ri, rok := right.(*value.Int)
	if !lok || !rok {
		return e.binaryTypeError(operator, left, right, span)
	}
	switch operator {
	case "&":
		return &value.Int{Value: li.Value & ri.Value}
	case "|":
		return &value.Int{Value: li.Value | ri.Value}
	case "^":
		return &value.Int{Value: li.Value ^ ri.Value}
	case "<<":
		if ri.Value < 0 {
			return value.Errorf(value.ValueError, "negative shift count").At(e.loc(span))
		}
		return &value.Int{Value: li.Value << uint(ri.Value)}
	default:
		if ri.Value < 0 {
			return value.Errorf(value.ValueError, "negative shift count").At(e.loc(span))
		}
		return &value.Int{Value: li.Value >> uint(ri.Value)}
	}
}

// formatString renders printf-style %s/%d/%f/%r directives. A list supplies
// several arguments; any other value is a single argument.
func (e *Evaluator) formatString(format string, args value.Value, span ast.Span) value.Value {
	var argList []value.Value
	if list, ok := args.(*value.List); ok {
		argList = list.Snapshot()
	} else {
		argList = []value.Value{args}
	}

	var out strings.Builder
	argIdx := 0
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '%' {
			out.WriteRune(c)
			continue
		}
		i++
		for i < len(runes) && strings.ContainsRune("0123456789-+ .", runes[i]) {
			i++
		}
		if i >= len(runes) {
			return value.Errorf(value.ValueError, "incomplete format").At(e.loc(span))
		}
		spec := runes[i]
		if spec == '%' {
			out.WriteRune('%')
			continue
		}
		if argIdx >= len(argList) {
			return value.Errorf(value.ValueError, "not enough arguments for format string").At(e.loc(span))
		}
		arg := argList[argIdx]
		argIdx++

		switch spec {
		case 's':
			out.WriteString(arg.Inspect())
		case 'd', 'i':
			n, ok := arg.(*value.Int)
			if !ok {
				return value.Errorf(value.TypeError,
					"%%d format expects int, got %s", value.TypeName(arg)).At(e.loc(span))
			}
			out.WriteString(n.Inspect())
		case 'f':
			_, f, ok := asNumber(arg)
			if !ok {
				return value.Errorf(value.TypeError,
					"%%f format expects number, got %s", value.TypeName(arg)).At(e.loc(span))
			}
			out.WriteString((&value.Float{Value: f}).Inspect())
		case 'r':
			if s, ok := arg.(*value.String); ok {
				out.WriteString(`"` + s.Value + `"`)
			} else {
				out.WriteString(arg.Inspect())
			}
		default:
			return value.Errorf(value.ValueError,
				"unsupported format character: %c", spec).At(e.loc(span))
		}
	}
	return &value.String{Value: out.String()}
}

func (e *Evaluator) binaryTypeError(operator string, left, right value.Value, span ast.Span) value.Value {
	return value.Errorf(value.TypeError,
		"unsupported operand types for %s: '%s' and '%s'",
		operator, value.TypeName(left), value.TypeName(right)).At(e.loc(span))
}

// addNumbers applies + to two numbers, keeping int when both sides are int.
func addNumbers(left, right value.Value) (value.Value, bool) {
	li, lf, lNum := asNumber(left)
	ri, rf, rNum := asNumber(right)
	if !lNum || !rNum {
		return nil, false
	}
	if left.Type() == value.INT_VALUE && right.Type() == value.INT_VALUE {
		return &value.Int{Value: li + ri}, true
	}
	return &value.Float{Value: lf + rf}, true
}

// repeatOp handles string and list repetition by an int, in either operand
// order. A non-positive count yields the empty value.
func repeatOp(left, right value.Value) (value.Value, bool) {
	s, n, ok := matchRepeat(left, right)
	if ok {
		if n <= 0 {
			return &value.String{Value: ""}, true
		}
		return &value.String{Value: strings.Repeat(s.Value, int(n))}, true
	}
	l, n, ok := matchListRepeat(left, right)
	if ok {
		if n <= 0 {
			return value.NewList(nil), true
		}
		src := l.Snapshot()
		out := make([]value.Value, 0, len(src)*int(n))
		for i := int64(0); i < n; i++ {
			out = append(out, src...)
		}
		return value.NewList(out), true
	}
	return nil, false
}

func matchRepeat(left, right value.Value) (*value.String, int64, bool) {
	if s, ok := left.(*value.String); ok {
		if n, ok := right.(*value.Int); ok {
			return s, n.Value, true
		}
	}
	if s, ok := right.(*value.String); ok {
		if n, ok := left.(*value.Int); ok {
			return s, n.Value, true
		}
	}
	return nil, 0, false
}

func matchListRepeat(left, right value.Value) (*value.List, int64, bool) {
	if l, ok := left.(*value.List); ok {
		if n, ok := right.(*value.Int); ok {
			return l, n.Value, true
		}
	}
	if l, ok := right.(*value.List); ok {
		if n, ok := left.(*value.Int); ok {
			return l, n.Value, true
		}
	}
	return nil, 0, false
}

func asNumber(v value.Value) (int64, float64, bool) {
	switch v := v.(type) {
	case *value.Int:
		return v.Value, float64(v.Value), true
	case *value.Float:
		return int64(v.Value), v.Value, true
	}
	return 0, 0, false
}

// euclidDiv floors toward negative infinity for positive divisors and keeps
// the remainder non-negative, matching // on mixed-sign operands.
func euclidDiv(a, b int64) int64 {
	return (a - euclidMod(a, b)) / b
}

func euclidMod(a, b int64) int64 {
	r := a % b
	if r < 0 {
		if b > 0 {
			r += b
		} else {
			r -= b
		}
	}
	return r
}

func euclidModFloat(a, b float64) float64 {
	r := math.Mod(a, b)
	if r < 0 {
		if b > 0 {
			r += b
		} else {
			r -= b
		}
	}
	return r
}
