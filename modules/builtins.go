package modules

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

// Builtins are bound into every program's global scope; they are also
// importable as a module for symmetry.
func Builtins() Module {
	return Module{
		"print":     native("print", builtinPrint),
		"len":       native("len", builtinLen),
		"range":     native("range", builtinRange),
		"str":       native("str", builtinStr),
		"int":       native("int", builtinInt),
		"float":     native("float", builtinFloat),
		"bool":      native("bool", builtinBool),
		"type":      native("type", builtinType),
		"sleep":     native("sleep", builtinSleep),
		"assert":    native("assert", builtinAssert),
		"min":       native("min", builtinMin),
		"max":       native("max", builtinMax),
		"sum":       native("sum", builtinSum),
		"abs":       native("abs", builtinAbs),
		"sorted":    native("sorted", builtinSorted),
		"enumerate": native("enumerate", builtinEnumerate),
	}
}

// BuiltinNames feeds the checker's symbol table.
func BuiltinNames() []string {
	names := []string{}
	for name := range Builtins() {
		names = append(names, name)
	}
	return names
}

func builtinPrint(_ context.Context, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := noKwargs("print", kwargs); err != nil {
		return nil, err
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Inspect()
	}
	fmt.Fprintln(os.Stdout, strings.Join(parts, " "))
	return value.NONE, nil
}

func builtinLen(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("len", args, 1, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case *value.String:
		return &value.Int{Value: int64(len([]rune(v.Value)))}, nil
	case *value.List:
		return &value.Int{Value: int64(v.Len())}, nil
	case *value.Dict:
		return &value.Int{Value: int64(v.Len())}, nil
	case *value.Set:
		return &value.Int{Value: int64(v.Len())}, nil
	}
	return nil, value.Errorf(value.TypeError, "len() does not support %s", value.TypeName(args[0]))
}

func builtinRange(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("range", args, 1, 3); err != nil {
		return nil, err
	}
	var start, stop, step int64 = 0, 0, 1
	var err *value.Error
	switch len(args) {
	case 1:
		stop, err = unpackInt("range", "stop", args[0])
	case 2:
		if start, err = unpackInt("range", "start", args[0]); err == nil {
			stop, err = unpackInt("range", "stop", args[1])
		}
	case 3:
		if start, err = unpackInt("range", "start", args[0]); err == nil {
			if stop, err = unpackInt("range", "stop", args[1]); err == nil {
				step, err = unpackInt("range", "step", args[2])
			}
		}
	}
	if err != nil {
		return nil, err
	}
	if step == 0 {
		return nil, value.Errorf(value.ValueError, "range() step must not be zero")
	}

	return value.NewGenerator("range", func(ctx context.Context, yield func(context.Context, value.Value) error) (value.Value, error) {
		if step > 0 {
			for i := start; i < stop; i += step {
				if yerr := yield(ctx, &value.Int{Value: i}); yerr != nil {
					return nil, yerr
				}
			}
		} else {
			for i := start; i > stop; i += step {
				if yerr := yield(ctx, &value.Int{Value: i}); yerr != nil {
					return nil, yerr
				}
			}
		}
		return value.NONE, nil
	}), nil
}

func builtinStr(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("str", args, 1, 1); err != nil {
		return nil, err
	}
	return &value.String{Value: args[0].Inspect()}, nil
}

func builtinInt(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("int", args, 1, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case *value.Int:
		return v, nil
	case *value.Float:
		return &value.Int{Value: int64(v.Value)}, nil
	case *value.Bool:
		if v.Value {
			return &value.Int{Value: 1}, nil
		}
		return &value.Int{Value: 0}, nil
	case *value.String:
		n, err := strconv.ParseInt(strings.TrimSpace(v.Value), 10, 64)
		if err != nil {
			return nil, value.Errorf(value.ValueError, "int() cannot parse %q", v.Value)
		}
		return &value.Int{Value: n}, nil
	}
	return nil, value.Errorf(value.TypeError, "int() does not support %s", value.TypeName(args[0]))
}

func builtinFloat(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("float", args, 1, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case *value.Float:
		return v, nil
	case *value.Int:
		return &value.Float{Value: float64(v.Value)}, nil
	case *value.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64)
		if err != nil {
			return nil, value.Errorf(value.ValueError, "float() cannot parse %q", v.Value)
		}
		return &value.Float{Value: f}, nil
	}
	return nil, value.Errorf(value.TypeError, "float() does not support %s", value.TypeName(args[0]))
}

func builtinBool(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("bool", args, 1, 1); err != nil {
		return nil, err
	}
	return value.NativeBool(value.IsTruthy(args[0])), nil
}

func builtinType(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("type", args, 1, 1); err != nil {
		return nil, err
	}
	return &value.String{Value: value.TypeName(args[0])}, nil
}

func builtinSleep(ctx context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("sleep", args, 1, 1); err != nil {
		return nil, err
	}
	seconds, err := unpackNumber("sleep", "seconds", args[0])
	if err != nil {
		return nil, err
	}
	// validated before the timer is armed
	if seconds < 0 {
		return nil, value.Errorf(value.ValueError, "sleep() duration must not be negative")
	}

	timer := time.NewTimer(time.Duration(seconds * float64(time.Second)))
	defer timer.Stop()
	select {
	case <-timer.C:
		return value.NONE, nil
	case <-ctx.Done():
		return nil, value.Errorf(value.Cancelled, "sleep interrupted")
	}
}

func builtinAssert(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("assert", args, 1, 2); err != nil {
		return nil, err
	}
	if value.IsTruthy(args[0]) {
		return value.NONE, nil
	}
	if len(args) == 2 {
		return nil, value.Errorf(value.AssertionError, "%s", args[1].Inspect())
	}
	return nil, value.Errorf(value.AssertionError, "assertion failed")
}

func minMaxCandidates(name string, args []value.Value) ([]value.Value, *value.Error) {
	if len(args) == 0 {
		return nil, value.Errorf(value.ArgumentError, "%s() expects at least one argument", name)
	}
	if len(args) == 1 {
		list, ok := args[0].(*value.List)
		if !ok {
			return nil, value.Errorf(value.TypeError,
				"%s() with one argument expects a list, got %s", name, value.TypeName(args[0]))
		}
		elements := list.Snapshot()
		if len(elements) == 0 {
			return nil, value.Errorf(value.ValueError, "%s() of an empty list", name)
		}
		return elements, nil
	}
	return args, nil
}

func builtinMin(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	candidates, err := minMaxCandidates("min", args)
	if err != nil {
		return nil, err
	}
	sorted, serr := value.SortValues(candidates)
	if serr != nil {
		return nil, serr
	}
	return sorted[0], nil
}

func builtinMax(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	candidates, err := minMaxCandidates("max", args)
	if err != nil {
		return nil, err
	}
	sorted, serr := value.SortValues(candidates)
	if serr != nil {
		return nil, serr
	}
	return sorted[len(sorted)-1], nil
}

func builtinSum(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("sum", args, 1, 1); err != nil {
		return nil, err
	}
	list, err := unpackList("sum", "values", args[0])
	if err != nil {
		return nil, err
	}
	var total float64
	isFloat := false
	for _, e := range list.Snapshot() {
		switch e := e.(type) {
		case *value.Int:
			total += float64(e.Value)
		case *value.Float:
			total += e.Value
			isFloat = true
		default:
			return nil, value.Errorf(value.TypeError, "sum() does not support %s", value.TypeName(e))
		}
	}
	if isFloat {
		return &value.Float{Value: total}, nil
	}
	return &value.Int{Value: int64(total)}, nil
}

func builtinAbs(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("abs", args, 1, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case *value.Int:
		if v.Value < 0 {
			return &value.Int{Value: -v.Value}, nil
		}
		return v, nil
	case *value.Float:
		return &value.Float{Value: math.Abs(v.Value)}, nil
	}
	return nil, value.Errorf(value.TypeError, "abs() does not support %s", value.TypeName(args[0]))
}

func builtinSorted(ctx context.Context, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("sorted", args, 1, 1); err != nil {
		return nil, err
	}
	list, err := unpackList("sorted", "values", args[0])
	if err != nil {
		return nil, err
	}
	elements := list.Snapshot()

	// sorted(values, key=fn) evaluates the key callable through the
	// ambient applier
	if keyFn, ok := optKwarg(kwargs, "key"); ok {
		applier, hasApplier := value.ApplierFrom(ctx)
		if !hasApplier {
			return nil, value.Errorf(value.TypeError, "sorted() key functions are not available here")
		}
		if _, cerr := unpackCallable("sorted", "key", keyFn); cerr != nil {
			return nil, cerr
		}
		keys := make([]value.Value, len(elements))
		for i, e := range elements {
			k, kerr := applier.Apply(ctx, keyFn, []value.Value{e}, nil)
			if kerr != nil {
				return nil, kerr
			}
			keys[i] = k
		}
		sortedKeys, serr := value.SortValues(keys)
		if serr != nil {
			return nil, serr
		}
		out := make([]value.Value, 0, len(elements))
		used := make([]bool, len(elements))
		for _, sk := range sortedKeys {
			for i, k := range keys {
				if !used[i] && value.Equals(k, sk) {
					out = append(out, elements[i])
					used[i] = true
					break
				}
			}
		}
		return value.NewList(out), nil
	}

	sorted, serr := value.SortValues(elements)
	if serr != nil {
		return nil, serr
	}
	return value.NewList(sorted), nil
}

func builtinEnumerate(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("enumerate", args, 1, 1); err != nil {
		return nil, err
	}
	list, err := unpackList("enumerate", "values", args[0])
	if err != nil {
		return nil, err
	}
	elements := list.Snapshot()
	out := make([]value.Value, len(elements))
	for i, e := range elements {
		out[i] = value.NewList([]value.Value{&value.Int{Value: int64(i)}, e})
	}
	return value.NewList(out), nil
}
