package value

import (
	"sync"
)

// ScopeKind tags a frame so the evaluator can tell function boundaries and
// loop bodies apart when routing control-flow signals.
type ScopeKind int

const (
	ModuleScope ScopeKind = iota
	FunctionScope
	BlockScope
	LoopScope
)

func (k ScopeKind) String() string {
	switch k {
	case ModuleScope:
		return "module"
	case FunctionScope:
		return "function"
	case BlockScope:
		return "block"
	case LoopScope:
		return "loop"
	default:
		return "unknown"
	}
}

// Scope is one frame of the lexical chain. Closures hold the frame chain by
// reference, so sibling closures over the same frame observe each other's
// assignments.
type Scope struct {
	Kind     ScopeKind
	Outer    *Scope
	bindings map[string]Value

	mu sync.RWMutex
}

func NewScope(kind ScopeKind) *Scope {
	return &Scope{
		Kind:     kind,
		bindings: make(map[string]Value),
	}
}

// NewEnclosedScope chains a fresh frame under outer.
func NewEnclosedScope(kind ScopeKind, outer *Scope) *Scope {
	s := NewScope(kind)
	s.Outer = outer
	return s
}

// Declare introduces a new binding in this frame. Redeclaring a name
// already bound in the same frame is an error; shadowing an outer frame is
// not.
func (s *Scope) Declare(name string, v Value) *Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bindings[name]; exists {
		return Errorf(RedeclarationError, "variable '%s' is already declared in this scope", name)
	}
	s.bindings[name] = v
	return nil
}

// Resolve walks the chain inner to outer and returns the first binding.
func (s *Scope) Resolve(name string) (Value, *Error) {
	s.mu.RLock()
	v, ok := s.bindings[name]
	s.mu.RUnlock()

	if ok {
		return v, nil
	}
	if s.Outer != nil {
		return s.Outer.Resolve(name)
	}
	return nil, Errorf(NameError, "undefined variable '%s'", name)
}

// Assign rebinds the nearest existing binding. It never creates one; a miss
// across the whole chain is a NameError.
func (s *Scope) Assign(name string, v Value) *Error {
	s.mu.Lock()
	if _, exists := s.bindings[name]; exists {
		s.bindings[name] = v
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if s.Outer != nil {
		return s.Outer.Assign(name, v)
	}
	return Errorf(NameError, "cannot assign to undeclared variable '%s'", name)
}

// Has reports whether the name is bound in this frame only.
func (s *Scope) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.bindings[name]
	return ok
}

// Names lists the bindings of this frame only.
func (s *Scope) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.bindings))
	for name := range s.bindings {
		names = append(names, name)
	}
	return names
}

// EnclosingFunction finds the nearest function (or module) frame, used when
// deciding whether a return signal has a home.
func (s *Scope) EnclosingFunction() *Scope {
	for cur := s; cur != nil; cur = cur.Outer {
		if cur.Kind == FunctionScope {
			return cur
		}
	}
	return nil
}
