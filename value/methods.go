package value

import (
	"context"
	"sort"
	"strings"
)

// methodFn is a built-in method body bound to a receiver at lookup time.
type methodFn func(ctx context.Context, recv Value, args []Value, kwargs map[string]Value) (Value, error)

// LookupMethod resolves a built-in method on the receiver's kind and binds
// it. The table is closed; misses fall through to an AttributeError at the
// call site.
func LookupMethod(recv Value, name string) (*NativeFunction, bool) {
	kinds, ok := methodTable[recv.Type()]
	if !ok {
		return nil, false
	}
	fn, ok := kinds[name]
	if !ok {
		return nil, false
	}
	bound := recv
	return &NativeFunction{
		Name: string(recv.Type()) + "." + name,
		Fn: func(ctx context.Context, args []Value, kwargs map[string]Value) (Value, error) {
			return fn(ctx, bound, args, kwargs)
		},
	}, true
}

var methodTable = map[ValueType]map[string]methodFn{
	STRING_VALUE: {
		"upper":       stringUpper,
		"lower":       stringLower,
		"strip":       stringStrip,
		"split":       stringSplit,
		"join":        stringJoin,
		"replace":     stringReplace,
		"starts_with": stringStartsWith,
		"ends_with":   stringEndsWith,
		"contains":    stringContains,
		"find":        stringFind,
	},
	LIST_VALUE: {
		"append":   listAppend,
		"pop":      listPop,
		"insert":   listInsert,
		"remove":   listRemove,
		"index":    listIndex,
		"contains": listContains,
		"reverse":  listReverse,
		"sort":     listSort,
		"extend":   listExtend,
		"clear":    listClear,
	},
	DICT_VALUE: {
		"get":      dictGet,
		"keys":     dictKeys,
		"values":   dictValues,
		"items":    dictItems,
		"pop":      dictPop,
		"update":   dictUpdate,
		"contains": dictContains,
		"clear":    dictClear,
	},
	SET_VALUE: {
		"add":          setAdd,
		"remove":       setRemove,
		"contains":     setContains,
		"union":        setUnion,
		"intersection": setIntersection,
		"difference":   setDifference,
	},
}

func wantArgs(method string, args []Value, min, max int) *Error {
	if len(args) < min || len(args) > max {
		if min == max {
			return Errorf(ArgumentError, "%s() takes %d arguments (%d given)", method, min, len(args))
		}
		return Errorf(ArgumentError, "%s() takes %d to %d arguments (%d given)", method, min, max, len(args))
	}
	return nil
}

func wantString(method string, v Value) (*String, *Error) {
	s, ok := v.(*String)
	if !ok {
		return nil, Errorf(TypeError, "%s() expects a string, got %s", method, TypeName(v))
	}
	return s, nil
}

// string methods

func stringUpper(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("upper", args, 0, 0); err != nil {
		return nil, err
	}
	return &String{Value: strings.ToUpper(recv.(*String).Value)}, nil
}

func stringLower(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("lower", args, 0, 0); err != nil {
		return nil, err
	}
	return &String{Value: strings.ToLower(recv.(*String).Value)}, nil
}

func stringStrip(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("strip", args, 0, 1); err != nil {
		return nil, err
	}
	s := recv.(*String).Value
	if len(args) == 1 {
		cut, err := wantString("strip", args[0])
		if err != nil {
			return nil, err
		}
		return &String{Value: strings.Trim(s, cut.Value)}, nil
	}
	return &String{Value: strings.TrimSpace(s)}, nil
}

func stringSplit(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("split", args, 0, 1); err != nil {
		return nil, err
	}
	s := recv.(*String).Value
	var parts []string
	if len(args) == 1 {
		sep, err := wantString("split", args[0])
		if err != nil {
			return nil, err
		}
		parts = strings.Split(s, sep.Value)
	} else {
		parts = strings.Fields(s)
	}
	elements := make([]Value, len(parts))
	for i, p := range parts {
		elements[i] = &String{Value: p}
	}
	return NewList(elements), nil
}

func stringJoin(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("join", args, 1, 1); err != nil {
		return nil, err
	}
	list, ok := args[0].(*List)
	if !ok {
		return nil, Errorf(TypeError, "join() expects a list, got %s", TypeName(args[0]))
	}
	sep := recv.(*String).Value
	parts := []string{}
	for _, e := range list.Snapshot() {
		s, ok := e.(*String)
		if !ok {
			return nil, Errorf(TypeError, "join() expects a list of strings, found %s", TypeName(e))
		}
		parts = append(parts, s.Value)
	}
	return &String{Value: strings.Join(parts, sep)}, nil
}

func stringReplace(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("replace", args, 2, 2); err != nil {
		return nil, err
	}
	old, err := wantString("replace", args[0])
	if err != nil {
		return nil, err
	}
	new_, err := wantString("replace", args[1])
	if err != nil {
		return nil, err
	}
	return &String{Value: strings.ReplaceAll(recv.(*String).Value, old.Value, new_.Value)}, nil
}

func stringStartsWith(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("starts_with", args, 1, 1); err != nil {
		return nil, err
	}
	prefix, err := wantString("starts_with", args[0])
	if err != nil {
		return nil, err
	}
	return NativeBool(strings.HasPrefix(recv.(*String).Value, prefix.Value)), nil
}

func stringEndsWith(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("ends_with", args, 1, 1); err != nil {
		return nil, err
	}
	suffix, err := wantString("ends_with", args[0])
	if err != nil {
		return nil, err
	}
	return NativeBool(strings.HasSuffix(recv.(*String).Value, suffix.Value)), nil
}

func stringContains(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("contains", args, 1, 1); err != nil {
		return nil, err
	}
	sub, err := wantString("contains", args[0])
	if err != nil {
		return nil, err
	}
	return NativeBool(strings.Contains(recv.(*String).Value, sub.Value)), nil
}

func stringFind(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("find", args, 1, 1); err != nil {
		return nil, err
	}
	sub, err := wantString("find", args[0])
	if err != nil {
		return nil, err
	}
	// byte index, -1 on miss
	return &Int{Value: int64(strings.Index(recv.(*String).Value, sub.Value))}, nil
}

// list methods

func listAppend(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("append", args, 1, 1); err != nil {
		return nil, err
	}
	recv.(*List).Append(args[0])
	return NONE, nil
}

func listPop(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("pop", args, 0, 0); err != nil {
		return nil, err
	}
	v, ok := recv.(*List).Pop()
	if !ok {
		return nil, Errorf(IndexError, "pop from empty list")
	}
	return v, nil
}

func listInsert(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("insert", args, 2, 2); err != nil {
		return nil, err
	}
	idx, ok := args[0].(*Int)
	if !ok {
		return nil, Errorf(TypeError, "insert() index must be an int, got %s", TypeName(args[0]))
	}
	if !recv.(*List).Insert(int(idx.Value), args[1]) {
		return nil, Errorf(IndexError, "insert index %d out of range", idx.Value)
	}
	return NONE, nil
}

func listRemove(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("remove", args, 1, 1); err != nil {
		return nil, err
	}
	list := recv.(*List)
	for i, e := range list.Snapshot() {
		if Equals(e, args[0]) {
			list.RemoveAt(i)
			return NONE, nil
		}
	}
	return nil, Errorf(ValueError, "remove(): value not in list")
}

func listIndex(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("index", args, 1, 1); err != nil {
		return nil, err
	}
	for i, e := range recv.(*List).Snapshot() {
		if Equals(e, args[0]) {
			return &Int{Value: int64(i)}, nil
		}
	}
	return nil, Errorf(ValueError, "index(): value not in list")
}

func listContains(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("contains", args, 1, 1); err != nil {
		return nil, err
	}
	for _, e := range recv.(*List).Snapshot() {
		if Equals(e, args[0]) {
			return TRUE, nil
		}
	}
	return FALSE, nil
}

func listReverse(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("reverse", args, 0, 0); err != nil {
		return nil, err
	}
	list := recv.(*List)
	elements := list.Snapshot()
	for i, j := 0, len(elements)-1; i < j; i, j = i+1, j-1 {
		elements[i], elements[j] = elements[j], elements[i]
	}
	list.Replace(elements)
	return NONE, nil
}

func listSort(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("sort", args, 0, 0); err != nil {
		return nil, err
	}
	list := recv.(*List)
	elements := list.Snapshot()
	sorted, serr := SortValues(elements)
	if serr != nil {
		return nil, serr
	}
	list.Replace(sorted)
	return NONE, nil
}

func listExtend(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("extend", args, 1, 1); err != nil {
		return nil, err
	}
	other, ok := args[0].(*List)
	if !ok {
		return nil, Errorf(TypeError, "extend() expects a list, got %s", TypeName(args[0]))
	}
	list := recv.(*List)
	for _, e := range other.Snapshot() {
		list.Append(e)
	}
	return NONE, nil
}

func listClear(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("clear", args, 0, 0); err != nil {
		return nil, err
	}
	recv.(*List).Replace(nil)
	return NONE, nil
}

// SortValues orders a homogeneous slice of ints/floats or strings. Mixed
// int/float is allowed; anything else is a TypeError.
func SortValues(elements []Value) ([]Value, *Error) {
	numeric, text := true, true
	for _, e := range elements {
		switch e.Type() {
		case INT_VALUE, FLOAT_VALUE:
			text = false
		case STRING_VALUE:
			numeric = false
		default:
			return nil, Errorf(TypeError, "cannot sort %s values", TypeName(e))
		}
	}
	if !numeric && !text {
		return nil, Errorf(TypeError, "cannot sort mixed value kinds")
	}
	out := make([]Value, len(elements))
	copy(out, elements)
	if numeric {
		sort.SliceStable(out, func(i, j int) bool {
			return numericOf(out[i]) < numericOf(out[j])
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].(*String).Value < out[j].(*String).Value
		})
	}
	return out, nil
}

func numericOf(v Value) float64 {
	switch v := v.(type) {
	case *Int:
		return float64(v.Value)
	case *Float:
		return v.Value
	}
	return 0
}

// dict methods

func wantKey(method string, v Value) (Hashable, *Error) {
	h, ok := AsHashable(v)
	if !ok {
		return nil, Errorf(TypeError, "%s() key must be hashable, got %s", method, TypeName(v))
	}
	return h, nil
}

func dictGet(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("get", args, 1, 2); err != nil {
		return nil, err
	}
	key, kerr := wantKey("get", args[0])
	if kerr != nil {
		return nil, kerr
	}
	if v, ok := recv.(*Dict).Get(key); ok {
		return v, nil
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return NONE, nil
}

func dictKeys(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("keys", args, 0, 0); err != nil {
		return nil, err
	}
	return NewList(recv.(*Dict).Keys()), nil
}

func dictValues(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("values", args, 0, 0); err != nil {
		return nil, err
	}
	return NewList(recv.(*Dict).Values()), nil
}

func dictItems(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("items", args, 0, 0); err != nil {
		return nil, err
	}
	pairs := recv.(*Dict).Pairs()
	items := make([]Value, len(pairs))
	for i, p := range pairs {
		items[i] = NewList([]Value{p.Key, p.Value})
	}
	return NewList(items), nil
}

func dictPop(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("pop", args, 1, 2); err != nil {
		return nil, err
	}
	key, kerr := wantKey("pop", args[0])
	if kerr != nil {
		return nil, kerr
	}
	d := recv.(*Dict)
	if v, ok := d.Get(key); ok {
		d.Delete(key)
		return v, nil
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return nil, Errorf(KeyError, "key not found: %s", args[0].Inspect())
}

func dictUpdate(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("update", args, 1, 1); err != nil {
		return nil, err
	}
	other, ok := args[0].(*Dict)
	if !ok {
		return nil, Errorf(TypeError, "update() expects a dict, got %s", TypeName(args[0]))
	}
	d := recv.(*Dict)
	for _, pair := range other.Pairs() {
		key, kerr := wantKey("update", pair.Key)
		if kerr != nil {
			return nil, kerr
		}
		d.Set(key, pair.Value)
	}
	return NONE, nil
}

func dictContains(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("contains", args, 1, 1); err != nil {
		return nil, err
	}
	key, kerr := wantKey("contains", args[0])
	if kerr != nil {
		return nil, kerr
	}
	return NativeBool(recv.(*Dict).Has(key)), nil
}

func dictClear(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("clear", args, 0, 0); err != nil {
		return nil, err
	}
	d := recv.(*Dict)
	for _, pair := range d.Pairs() {
		if key, ok := AsHashable(pair.Key); ok {
			d.Delete(key)
		}
	}
	return NONE, nil
}

// set methods

func setAdd(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("add", args, 1, 1); err != nil {
		return nil, err
	}
	item, kerr := wantKey("add", args[0])
	if kerr != nil {
		return nil, kerr
	}
	recv.(*Set).Add(item)
	return NONE, nil
}

func setRemove(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("remove", args, 1, 1); err != nil {
		return nil, err
	}
	item, kerr := wantKey("remove", args[0])
	if kerr != nil {
		return nil, kerr
	}
	if !recv.(*Set).Remove(item) {
		return nil, Errorf(KeyError, "value not in set: %s", args[0].Inspect())
	}
	return NONE, nil
}

func setContains(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	if err := wantArgs("contains", args, 1, 1); err != nil {
		return nil, err
	}
	item, kerr := wantKey("contains", args[0])
	if kerr != nil {
		return nil, kerr
	}
	return NativeBool(recv.(*Set).Has(item)), nil
}

func setBinary(method string, recv Value, args []Value) (*Set, *Set, *Error) {
	if err := wantArgs(method, args, 1, 1); err != nil {
		return nil, nil, err
	}
	other, ok := args[0].(*Set)
	if !ok {
		return nil, nil, Errorf(TypeError, "%s() expects a set, got %s", method, TypeName(args[0]))
	}
	return recv.(*Set), other, nil
}

func setUnion(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	a, b, err := setBinary("union", recv, args)
	if err != nil {
		return nil, err
	}
	out := NewSet()
	for _, item := range a.Items() {
		out.Add(item.(Hashable))
	}
	for _, item := range b.Items() {
		out.Add(item.(Hashable))
	}
	return out, nil
}

func setIntersection(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	a, b, err := setBinary("intersection", recv, args)
	if err != nil {
		return nil, err
	}
	out := NewSet()
	for _, item := range a.Items() {
		h := item.(Hashable)
		if b.Has(h) {
			out.Add(h)
		}
	}
	return out, nil
}

func setDifference(_ context.Context, recv Value, args []Value, _ map[string]Value) (Value, error) {
	a, b, err := setBinary("difference", recv, args)
	if err != nil {
		return nil, err
	}
	out := NewSet()
	for _, item := range a.Items() {
		h := item.(Hashable)
		if !b.Has(h) {
			out.Add(h)
		}
	}
	return out, nil
}
