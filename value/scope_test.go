package value

import "testing"

func TestScopeDeclareAndResolve(t *testing.T) {
	s := NewScope(ModuleScope)
	if err := s.Declare("x", &Int{Value: 1}); err != nil {
		t.Fatalf("declare failed: %s", err)
	}
	v, err := s.Resolve("x")
	if err != nil {
		t.Fatalf("resolve failed: %s", err)
	}
	if v.(*Int).Value != 1 {
		t.Errorf("resolved %s, want 1", v.Inspect())
	}
}

func TestScopeRedeclarationSameFrame(t *testing.T) {
	s := NewScope(ModuleScope)
	_ = s.Declare("x", &Int{Value: 1})
	err := s.Declare("x", &Int{Value: 2})
	if err == nil {
		t.Fatalf("expected redeclaration error")
	}
	if err.Kind != RedeclarationError {
		t.Errorf("error kind = %s, want RedeclarationError", err.Kind)
	}
}

func TestScopeShadowingInnerFrame(t *testing.T) {
	outer := NewScope(ModuleScope)
	_ = outer.Declare("x", &Int{Value: 1})
	inner := NewEnclosedScope(BlockScope, outer)
	if err := inner.Declare("x", &Int{Value: 2}); err != nil {
		t.Fatalf("shadowing declare failed: %s", err)
	}
	v, _ := inner.Resolve("x")
	if v.(*Int).Value != 2 {
		t.Errorf("inner resolve = %s, want 2", v.Inspect())
	}
	v, _ = outer.Resolve("x")
	if v.(*Int).Value != 1 {
		t.Errorf("outer resolve = %s, want 1", v.Inspect())
	}
}

func TestScopeAssignWalksOuter(t *testing.T) {
	outer := NewScope(ModuleScope)
	_ = outer.Declare("x", &Int{Value: 1})
	inner := NewEnclosedScope(BlockScope, outer)
	if err := inner.Assign("x", &Int{Value: 5}); err != nil {
		t.Fatalf("assign failed: %s", err)
	}
	v, _ := outer.Resolve("x")
	if v.(*Int).Value != 5 {
		t.Errorf("outer binding = %s after inner assign, want 5", v.Inspect())
	}
}

func TestScopeAssignUndeclared(t *testing.T) {
	s := NewScope(ModuleScope)
	err := s.Assign("missing", NONE)
	if err == nil {
		t.Fatalf("expected NameError")
	}
	if err.Kind != NameError {
		t.Errorf("error kind = %s, want NameError", err.Kind)
	}
}

func TestScopeResolveMissing(t *testing.T) {
	inner := NewEnclosedScope(BlockScope, NewScope(ModuleScope))
	_, err := inner.Resolve("ghost")
	if err == nil || err.Kind != NameError {
		t.Fatalf("expected NameError, got %v", err)
	}
}

func TestClosureSharedFrameMutation(t *testing.T) {
	// two chains rooted at the same frame see each other's writes
	shared := NewScope(FunctionScope)
	_ = shared.Declare("count", &Int{Value: 0})

	a := NewEnclosedScope(BlockScope, shared)
	b := NewEnclosedScope(BlockScope, shared)

	_ = a.Assign("count", &Int{Value: 7})
	v, _ := b.Resolve("count")
	if v.(*Int).Value != 7 {
		t.Errorf("sibling frame saw %s, want 7", v.Inspect())
	}
}
