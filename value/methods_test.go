package value

import (
	"context"
	"testing"
)

func callMethod(t *testing.T, recv Value, name string, args ...Value) (Value, error) {
	t.Helper()
	m, ok := LookupMethod(recv, name)
	if !ok {
		t.Fatalf("no method %s on %s", name, recv.Type())
	}
	return m.Fn(context.Background(), args, nil)
}

func TestStringMethods(t *testing.T) {
	s := &String{Value: "  Hello World  "}

	v, err := callMethod(t, s, "strip")
	if err != nil {
		t.Fatalf("strip: %v", err)
	}
	if v.(*String).Value != "Hello World" {
		t.Errorf("strip = %q", v.(*String).Value)
	}

	v, _ = callMethod(t, &String{Value: "a,b,c"}, "split", &String{Value: ","})
	if v.(*List).Len() != 3 {
		t.Errorf("split len = %d", v.(*List).Len())
	}

	v, _ = callMethod(t, &String{Value: "-"}, "join",
		NewList([]Value{&String{Value: "a"}, &String{Value: "b"}}))
	if v.(*String).Value != "a-b" {
		t.Errorf("join = %q", v.(*String).Value)
	}

	_, err = callMethod(t, &String{Value: "-"}, "join", NewList([]Value{&Int{Value: 1}}))
	if e, ok := err.(*Error); !ok || e.Kind != TypeError {
		t.Errorf("join on non-strings: %v", err)
	}
}

func TestListMethods(t *testing.T) {
	l := NewList([]Value{&Int{Value: 3}, &Int{Value: 1}, &Int{Value: 2}})

	if _, err := callMethod(t, l, "sort"); err != nil {
		t.Fatalf("sort: %v", err)
	}
	first, _ := l.Get(0)
	if first.(*Int).Value != 1 {
		t.Errorf("sorted first = %s", first.Inspect())
	}

	callMethod(t, l, "append", &Int{Value: 9})
	if l.Len() != 4 {
		t.Errorf("len after append = %d", l.Len())
	}

	v, _ := callMethod(t, l, "pop")
	if v.(*Int).Value != 9 {
		t.Errorf("pop = %s", v.Inspect())
	}

	_, err := callMethod(t, NewList(nil), "pop")
	if e, ok := err.(*Error); !ok || e.Kind != IndexError {
		t.Errorf("pop empty: %v", err)
	}

	v, _ = callMethod(t, l, "index", &Int{Value: 2})
	if v.(*Int).Value != 1 {
		t.Errorf("index = %s", v.Inspect())
	}

	_, err = callMethod(t, l, "remove", &Int{Value: 42})
	if e, ok := err.(*Error); !ok || e.Kind != ValueError {
		t.Errorf("remove missing: %v", err)
	}
}

func TestListSortRejectsMixedKinds(t *testing.T) {
	l := NewList([]Value{&Int{Value: 1}, &String{Value: "a"}})
	_, err := callMethod(t, l, "sort")
	if e, ok := err.(*Error); !ok || e.Kind != TypeError {
		t.Errorf("mixed sort: %v", err)
	}
}

func TestDictMethods(t *testing.T) {
	d := NewDict()
	d.Set(&String{Value: "a"}, &Int{Value: 1})

	v, _ := callMethod(t, d, "get", &String{Value: "a"})
	if v.(*Int).Value != 1 {
		t.Errorf("get = %s", v.Inspect())
	}

	v, _ = callMethod(t, d, "get", &String{Value: "missing"}, &Int{Value: 42})
	if v.(*Int).Value != 42 {
		t.Errorf("get default = %s", v.Inspect())
	}

	_, err := callMethod(t, d, "pop", &String{Value: "missing"})
	if e, ok := err.(*Error); !ok || e.Kind != KeyError {
		t.Errorf("pop missing: %v", err)
	}

	other := NewDict()
	other.Set(&String{Value: "b"}, &Int{Value: 2})
	callMethod(t, d, "update", other)
	if d.Len() != 2 {
		t.Errorf("len after update = %d", d.Len())
	}

	v, _ = callMethod(t, d, "items")
	items := v.(*List)
	if items.Len() != 2 {
		t.Fatalf("items len = %d", items.Len())
	}
	firstPair, _ := items.Get(0)
	key, _ := firstPair.(*List).Get(0)
	if key.(*String).Value != "a" {
		t.Errorf("items order: first key = %s", key.Inspect())
	}
}

func TestSetMethods(t *testing.T) {
	a := NewSet()
	a.Add(&Int{Value: 1})
	a.Add(&Int{Value: 2})
	b := NewSet()
	b.Add(&Int{Value: 2})
	b.Add(&Int{Value: 3})

	v, _ := callMethod(t, a, "union", b)
	if v.(*Set).Len() != 3 {
		t.Errorf("union len = %d", v.(*Set).Len())
	}

	v, _ = callMethod(t, a, "intersection", b)
	if v.(*Set).Len() != 1 || !v.(*Set).Has(&Int{Value: 2}) {
		t.Errorf("intersection = %s", v.Inspect())
	}

	v, _ = callMethod(t, a, "difference", b)
	if v.(*Set).Len() != 1 || !v.(*Set).Has(&Int{Value: 1}) {
		t.Errorf("difference = %s", v.Inspect())
	}

	_, err := callMethod(t, a, "remove", &Int{Value: 99})
	if e, ok := err.(*Error); !ok || e.Kind != KeyError {
		t.Errorf("remove missing: %v", err)
	}
}

func TestLookupMethodMiss(t *testing.T) {
	if _, ok := LookupMethod(&Int{Value: 1}, "upper"); ok {
		t.Errorf("int has no methods")
	}
	if _, ok := LookupMethod(&String{Value: "x"}, "nope"); ok {
		t.Errorf("unknown string method resolved")
	}
}
