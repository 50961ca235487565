package modules

import (
	"context"
	"testing"

	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

func TestRegisterOverwrites(t *testing.T) {
	r := NewRegistry()
	r.Register("m", Module{"f": native("f", func(_ context.Context, _ []value.Value, _ map[string]value.Value) (value.Value, error) {
		return &value.Int{Value: 1}, nil
	})})
	r.Register("m", Module{"g": native("g", func(_ context.Context, _ []value.Value, _ map[string]value.Value) (value.Value, error) {
		return &value.Int{Value: 2}, nil
	})})

	if _, ok := r.Function("m", "f"); ok {
		t.Errorf("re-registration did not replace the module")
	}
	if _, ok := r.Function("m", "g"); !ok {
		t.Errorf("re-registered function missing")
	}
}

func TestRegistryLookups(t *testing.T) {
	r := Default()
	if !r.Has("time") {
		t.Errorf("stock registry missing time")
	}
	if _, ok := r.Function("time", "now"); !ok {
		t.Errorf("time.now missing")
	}
	if _, ok := r.Function("time", "nope"); ok {
		t.Errorf("unknown function resolved")
	}
	if _, ok := r.Module("ghost"); ok {
		t.Errorf("unknown module resolved")
	}

	names := r.ModuleNames()
	if len(names) == 0 {
		t.Fatalf("no module names")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("module names not sorted: %v", names)
		}
	}
}

func TestBuiltinNamesCoverEverything(t *testing.T) {
	names := BuiltinNames()
	want := map[string]bool{"print": true, "len": true, "range": true, "sleep": true}
	found := map[string]bool{}
	for _, n := range names {
		found[n] = true
	}
	for n := range want {
		if !found[n] {
			t.Errorf("builtin %s missing from symbol names", n)
		}
	}
}
