package value

import (
	"bytes"
	"context"
	"strings"

	"github.com/alexchoi0/blueprint-engine-sub002/ast"
)

// Function is a user-defined function or lambda. Closure holds the frame
// chain it was defined under; calls chain a fresh function frame onto it.
type Function struct {
	Name        string // empty for lambdas
	Parameters  []*ast.Parameter
	Body        *ast.BlockStatement
	Expr        ast.Expression // lambda body; nil for def functions
	Closure     *Scope
	IsGenerator bool
}

func (f *Function) Type() ValueType { return FUNCTION_VALUE }
func (f *Function) Inspect() string {
	var out bytes.Buffer

	params := []string{}
	for _, p := range f.Parameters {
		params = append(params, p.String())
	}

	name := f.Name
	if name == "" {
		name = "<lambda>"
	}
	out.WriteString("<function ")
	out.WriteString(name)
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(")>")
	return out.String()
}

// DisplayName is the name used in stack frames and dispatch errors.
func (f *Function) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return "<lambda>"
}

// NativeFn is the signature every native module function implements. The
// context carries cancellation and the ambient permission state; kwargs is
// nil-safe.
type NativeFn func(ctx context.Context, args []Value, kwargs map[string]Value) (Value, error)

// NativeFunction bridges a Go function into the value model.
type NativeFunction struct {
	Name string
	Fn   NativeFn
}

func (nf *NativeFunction) Type() ValueType { return NATIVE_FUNCTION_VALUE }
func (nf *NativeFunction) Inspect() string { return "<native fn " + nf.Name + ">" }
