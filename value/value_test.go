package value

import "testing"

func TestStringHashKey(t *testing.T) {
	hello1 := &String{Value: "Hello World"}
	hello2 := &String{Value: "Hello World"}
	diff1 := &String{Value: "My name is johnny"}

	if hello1.HashKey() != hello2.HashKey() {
		t.Errorf("strings with same content have different hash keys")
	}
	if hello1.HashKey() == diff1.HashKey() {
		t.Errorf("strings with different content have same hash keys")
	}
}

func TestFloatHashKey(t *testing.T) {
	if (&Float{Value: 1.5}).HashKey() != (&Float{Value: 1.5}).HashKey() {
		t.Errorf("equal floats have different hash keys")
	}
	if (&Float{Value: 1.5}).HashKey() == (&Float{Value: 2.5}).HashKey() {
		t.Errorf("different floats have same hash key")
	}
	// an int key never collides with the float of the same magnitude
	if (&Int{Value: 1}).HashKey() == (&Float{Value: 1.0}).HashKey() {
		t.Errorf("int and float hash keys collide")
	}

	d := NewDict()
	d.Set(&Float{Value: 0.5}, &String{Value: "half"})
	v, ok := d.Get(&Float{Value: 0.5})
	if !ok || v.(*String).Value != "half" {
		t.Errorf("float dict key lookup failed")
	}

	s := NewSet()
	s.Add(&Float{Value: 0.5})
	s.Add(&Float{Value: 0.5})
	if s.Len() != 1 || !s.Has(&Float{Value: 0.5}) {
		t.Errorf("float set member: %s", s.Inspect())
	}
}

func TestDictInsertionOrder(t *testing.T) {
	d := NewDict()
	d.Set(&String{Value: "b"}, &Int{Value: 1})
	d.Set(&String{Value: "a"}, &Int{Value: 2})
	d.Set(&String{Value: "c"}, &Int{Value: 3})

	keys := d.Keys()
	want := []string{"b", "a", "c"}
	for i, k := range keys {
		if k.(*String).Value != want[i] {
			t.Fatalf("key order: got %s at %d, want %s", k.Inspect(), i, want[i])
		}
	}

	// overwriting keeps the original position
	d.Set(&String{Value: "b"}, &Int{Value: 9})
	keys = d.Keys()
	if keys[0].(*String).Value != "b" {
		t.Errorf("overwrite moved key to position %d", 0)
	}
	v, _ := d.Get(&String{Value: "b"})
	if v.(*Int).Value != 9 {
		t.Errorf("overwrite did not update value: %s", v.Inspect())
	}
}

func TestDictDelete(t *testing.T) {
	d := NewDict()
	d.Set(&String{Value: "a"}, &Int{Value: 1})
	if !d.Delete(&String{Value: "a"}) {
		t.Fatalf("delete of present key returned false")
	}
	if d.Delete(&String{Value: "a"}) {
		t.Fatalf("delete of absent key returned true")
	}
	if d.Len() != 0 {
		t.Errorf("len after delete = %d", d.Len())
	}
}

func TestSetDeduplicates(t *testing.T) {
	s := NewSet()
	s.Add(&Int{Value: 1})
	s.Add(&Int{Value: 1})
	s.Add(&Int{Value: 2})
	if s.Len() != 2 {
		t.Errorf("set len = %d, want 2", s.Len())
	}
	if !s.Has(&Int{Value: 1}) || !s.Has(&Int{Value: 2}) {
		t.Errorf("set missing members: %s", s.Inspect())
	}
}

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{NONE, false},
		{TRUE, true},
		{FALSE, false},
		{&Int{Value: 0}, false},
		{&Int{Value: -1}, true},
		{&Float{Value: 0}, false},
		{&Float{Value: 0.5}, true},
		{&String{Value: ""}, false},
		{&String{Value: "x"}, true},
		{NewList(nil), false},
		{NewList([]Value{NONE}), true},
		{NewDict(), false},
		{NewSet(), false},
	}
	for _, tt := range tests {
		if got := IsTruthy(tt.v); got != tt.want {
			t.Errorf("IsTruthy(%s) = %t, want %t", tt.v.Inspect(), got, tt.want)
		}
	}
}

func TestEqualsCrossNumeric(t *testing.T) {
	if !Equals(&Int{Value: 2}, &Float{Value: 2.0}) {
		t.Errorf("2 != 2.0")
	}
	if Equals(&Int{Value: 2}, &String{Value: "2"}) {
		t.Errorf("2 == \"2\"")
	}
	a := NewList([]Value{&Int{Value: 1}, &String{Value: "x"}})
	b := NewList([]Value{&Int{Value: 1}, &String{Value: "x"}})
	if !Equals(a, b) {
		t.Errorf("equal lists not equal")
	}
}

func TestInspectContainers(t *testing.T) {
	l := NewList([]Value{&String{Value: "a"}, &Int{Value: 1}})
	if got := l.Inspect(); got != `["a", 1]` {
		t.Errorf("list inspect = %s", got)
	}
	s := NewSet()
	if got := s.Inspect(); got != "set()" {
		t.Errorf("empty set inspect = %s", got)
	}
}
