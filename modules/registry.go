// Package modules is the native bridge: Go functions exposed to scripts,
// grouped into named modules behind a registry. Natives that touch the
// outside world run the matching permission check before acting.
package modules

import (
	"sort"
	"sync"

	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

// Module maps function names to their native implementations.
type Module map[string]*value.NativeFunction

// Registry holds the modules a program may import. Registration overwrites,
// so hosts can replace a stock module wholesale.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

func NewRegistry() *Registry {
	return &Registry{modules: map[string]Module{}}
}

// Register binds a module under its name, replacing any previous module of
// that name.
func (r *Registry) Register(name string, funcs Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[name] = funcs
}

func (r *Registry) Module(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	return m, ok
}

func (r *Registry) Function(module, name string) (*value.NativeFunction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[module]
	if !ok {
		return nil, false
	}
	fn, ok := m[name]
	return fn, ok
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.modules[name]
	return ok
}

func (r *Registry) ModuleNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default builds the stock registry with every bundled module.
func Default() *Registry {
	r := NewRegistry()
	r.Register("builtins", Builtins())
	r.Register("time", Time())
	r.Register("console", Console())
	r.Register("json", JSON())
	r.Register("encoding", Encoding())
	r.Register("crypto", Crypto())
	r.Register("random", Random())
	r.Register("uuid", UUID())
	r.Register("regex", Regex())
	r.Register("redact", Redact())
	r.Register("file", File())
	r.Register("env", Env())
	r.Register("http", HTTP())
	r.Register("websocket", WebSocket())
	r.Register("socket", Socket())
	r.Register("process", Process())
	r.Register("db", DB())
	r.Register("jwt", JWT())
	r.Register("parallel", Parallel())
	r.Register("task", Task())
	r.Register("triggers", Triggers())
	r.Register("approval", Approval())
	return r
}
