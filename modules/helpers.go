package modules

import (
	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

// native wraps a Go function into the value model with its exported name.
func native(name string, fn value.NativeFn) *value.NativeFunction {
	return &value.NativeFunction{Name: name, Fn: fn}
}

func wantArgCount(name string, args []value.Value, min, max int) *value.Error {
	if len(args) < min || len(args) > max {
		if min == max {
			return value.Errorf(value.ArgumentError,
				"%s() takes %d arguments (%d given)", name, min, len(args))
		}
		return value.Errorf(value.ArgumentError,
			"%s() takes %d to %d arguments (%d given)", name, min, max, len(args))
	}
	return nil
}

func noKwargs(name string, kwargs map[string]value.Value) *value.Error {
	if len(kwargs) > 0 {
		for k := range kwargs {
			return value.Errorf(value.ArgumentError,
				"%s() got an unexpected keyword argument '%s'", name, k)
		}
	}
	return nil
}

func unpackString(name, param string, v value.Value) (string, *value.Error) {
	s, ok := v.(*value.String)
	if !ok {
		return "", value.Errorf(value.TypeError,
			"%s() expects %s to be a string, got %s", name, param, value.TypeName(v))
	}
	return s.Value, nil
}

func unpackInt(name, param string, v value.Value) (int64, *value.Error) {
	i, ok := v.(*value.Int)
	if !ok {
		return 0, value.Errorf(value.TypeError,
			"%s() expects %s to be an int, got %s", name, param, value.TypeName(v))
	}
	return i.Value, nil
}

func unpackNumber(name, param string, v value.Value) (float64, *value.Error) {
	switch v := v.(type) {
	case *value.Int:
		return float64(v.Value), nil
	case *value.Float:
		return v.Value, nil
	}
	return 0, value.Errorf(value.TypeError,
		"%s() expects %s to be a number, got %s", name, param, value.TypeName(v))
}

func unpackList(name, param string, v value.Value) (*value.List, *value.Error) {
	l, ok := v.(*value.List)
	if !ok {
		return nil, value.Errorf(value.TypeError,
			"%s() expects %s to be a list, got %s", name, param, value.TypeName(v))
	}
	return l, nil
}

func unpackDict(name, param string, v value.Value) (*value.Dict, *value.Error) {
	d, ok := v.(*value.Dict)
	if !ok {
		return nil, value.Errorf(value.TypeError,
			"%s() expects %s to be a dict, got %s", name, param, value.TypeName(v))
	}
	return d, nil
}

func unpackCallable(name, param string, v value.Value) (value.Value, *value.Error) {
	switch v.(type) {
	case *value.Function, *value.NativeFunction:
		return v, nil
	}
	return nil, value.Errorf(value.TypeError,
		"%s() expects %s to be callable, got %s", name, param, value.TypeName(v))
}

// optKwarg fetches an optional keyword argument.
func optKwarg(kwargs map[string]value.Value, name string) (value.Value, bool) {
	if kwargs == nil {
		return nil, false
	}
	v, ok := kwargs[name]
	return v, ok
}

func stringDict(pairs map[string]string) *value.Dict {
	d := value.NewDict()
	for k, v := range pairs {
		d.Set(&value.String{Value: k}, &value.String{Value: v})
	}
	return d
}
