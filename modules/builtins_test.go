package modules

import (
	"context"
	"testing"
	"time"

	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

func call(t *testing.T, m Module, name string, args ...value.Value) (value.Value, error) {
	t.Helper()
	fn, ok := m[name]
	if !ok {
		t.Fatalf("module has no function %s", name)
	}
	return fn.Fn(context.Background(), args, nil)
}

func wantKind(t *testing.T, err error, kind value.ErrorKind) {
	t.Helper()
	e, ok := err.(*value.Error)
	if !ok || e.Kind != kind {
		t.Errorf("error = %v, want kind %s", err, kind)
	}
}

func TestLen(t *testing.T) {
	b := Builtins()

	v, _ := call(t, b, "len", &value.String{Value: "héllo"})
	if v.(*value.Int).Value != 5 {
		t.Errorf("len of unicode string = %s", v.Inspect())
	}

	v, _ = call(t, b, "len", value.NewList([]value.Value{value.NONE, value.NONE}))
	if v.(*value.Int).Value != 2 {
		t.Errorf("len of list = %s", v.Inspect())
	}

	_, err := call(t, b, "len", &value.Int{Value: 1})
	wantKind(t, err, value.TypeError)
}

func TestRangeIsLazy(t *testing.T) {
	b := Builtins()
	v, err := call(t, b, "range", &value.Int{Value: 3})
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	gen, ok := v.(*value.Generator)
	if !ok {
		t.Fatalf("range returned %s, want generator", v.Type())
	}
	ctx := context.Background()
	for want := int64(0); want < 3; want++ {
		got, more, nerr := gen.Next(ctx)
		if nerr != nil || !more {
			t.Fatalf("next: more=%t err=%v", more, nerr)
		}
		if got.(*value.Int).Value != want {
			t.Errorf("range yielded %s, want %d", got.Inspect(), want)
		}
	}
	if _, more, _ := gen.Next(ctx); more {
		t.Errorf("range did not finish")
	}
}

func TestRangeStepZero(t *testing.T) {
	b := Builtins()
	_, err := call(t, b, "range", &value.Int{Value: 0}, &value.Int{Value: 10}, &value.Int{Value: 0})
	wantKind(t, err, value.ValueError)
}

func TestConversions(t *testing.T) {
	b := Builtins()

	v, _ := call(t, b, "int", &value.String{Value: " 42 "})
	if v.(*value.Int).Value != 42 {
		t.Errorf("int = %s", v.Inspect())
	}
	_, err := call(t, b, "int", &value.String{Value: "nope"})
	wantKind(t, err, value.ValueError)

	v, _ = call(t, b, "float", &value.Int{Value: 2})
	if v.(*value.Float).Value != 2.0 {
		t.Errorf("float = %s", v.Inspect())
	}

	v, _ = call(t, b, "bool", &value.String{Value: ""})
	if v != value.FALSE {
		t.Errorf("bool of empty string = %s", v.Inspect())
	}

	v, _ = call(t, b, "str", &value.Int{Value: 7})
	if v.(*value.String).Value != "7" {
		t.Errorf("str = %s", v.Inspect())
	}

	v, _ = call(t, b, "type", value.NewDict())
	if v.(*value.String).Value != "dict" {
		t.Errorf("type = %s", v.Inspect())
	}
}

func TestSleepNegativeDuration(t *testing.T) {
	b := Builtins()
	start := time.Now()
	_, err := call(t, b, "sleep", &value.Int{Value: -1})
	wantKind(t, err, value.ValueError)
	// the error comes before any timer is armed
	if time.Since(start) > 100*time.Millisecond {
		t.Errorf("negative sleep blocked before failing")
	}
}

func TestSleepCancellation(t *testing.T) {
	b := Builtins()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := b["sleep"].Fn(ctx, []value.Value{&value.Int{Value: 60}}, nil)
	wantKind(t, err, value.Cancelled)
}

func TestAssert(t *testing.T) {
	b := Builtins()
	if _, err := call(t, b, "assert", value.TRUE); err != nil {
		t.Errorf("passing assert errored: %v", err)
	}
	_, err := call(t, b, "assert", value.FALSE, &value.String{Value: "broken"})
	wantKind(t, err, value.AssertionError)
}

func TestAggregates(t *testing.T) {
	b := Builtins()
	nums := value.NewList([]value.Value{
		&value.Int{Value: 3}, &value.Int{Value: 1}, &value.Int{Value: 2},
	})

	v, _ := call(t, b, "min", nums)
	if v.(*value.Int).Value != 1 {
		t.Errorf("min = %s", v.Inspect())
	}
	v, _ = call(t, b, "max", nums)
	if v.(*value.Int).Value != 3 {
		t.Errorf("max = %s", v.Inspect())
	}
	v, _ = call(t, b, "sum", nums)
	if v.(*value.Int).Value != 6 {
		t.Errorf("sum = %s", v.Inspect())
	}

	v, _ = call(t, b, "sorted", nums)
	first, _ := v.(*value.List).Get(0)
	if first.(*value.Int).Value != 1 {
		t.Errorf("sorted first = %s", first.Inspect())
	}
	// sorted() copies; the input list keeps its order
	orig, _ := nums.Get(0)
	if orig.(*value.Int).Value != 3 {
		t.Errorf("sorted mutated its input")
	}

	_, err := call(t, b, "min", value.NewList(nil))
	wantKind(t, err, value.ValueError)
}

func TestEnumerate(t *testing.T) {
	b := Builtins()
	v, err := call(t, b, "enumerate", value.NewList([]value.Value{
		&value.String{Value: "a"}, &value.String{Value: "b"},
	}))
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	pairs := v.(*value.List)
	second, _ := pairs.Get(1)
	idx, _ := second.(*value.List).Get(0)
	item, _ := second.(*value.List).Get(1)
	if idx.(*value.Int).Value != 1 || item.(*value.String).Value != "b" {
		t.Errorf("enumerate pair = %s", second.Inspect())
	}
}
