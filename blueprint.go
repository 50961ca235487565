// Package blueprint is the embedding surface for the script runtime: it
// checks a program, scopes the permission rules onto the context and runs
// the evaluator, mapping the terminal outcome back to the host.
package blueprint

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alexchoi0/blueprint-engine-sub002/ast"
	"github.com/alexchoi0/blueprint-engine-sub002/checker"
	"github.com/alexchoi0/blueprint-engine-sub002/eval"
	"github.com/alexchoi0/blueprint-engine-sub002/modules"
	"github.com/alexchoi0/blueprint-engine-sub002/perm"
	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

// Options configures one program run. The zero value runs with the stock
// module registry and no permission enforcement.
type Options struct {
	// Permissions is the rule set enforced on sensitive natives. Nil means
	// the host opted out and every check passes.
	Permissions *perm.Permissions

	// Prompt answers ask-rules and approval requests. Ignored when
	// PromptState is set.
	Prompt perm.PromptFunc

	// PromptState carries session grants across several runs. When nil a
	// fresh state wrapping Prompt is used.
	PromptState *perm.PromptState

	// Registry supplies the importable native modules. Nil means the stock
	// registry.
	Registry *modules.Registry

	// File names the source in error locations and stack traces.
	File string
}

// CheckErrors is the bulk result of a rejected program. Evaluation never
// started; no side effect is observable.
type CheckErrors []checker.Error

func (ce CheckErrors) Error() string {
	parts := make([]string, 0, len(ce))
	for _, e := range ce {
		parts = append(parts, e.String())
	}
	return fmt.Sprintf("%d check error(s): %s", len(ce), strings.Join(parts, "; "))
}

// Run checks and evaluates a program. The result is the value of the last
// top-level statement; a *value.Error return keeps its kind, location and
// stack, and cancellation surfaces as a Cancelled error.
func Run(ctx context.Context, program *ast.Program, opts Options) (value.Value, error) {
	registry := opts.Registry
	if registry == nil {
		registry = modules.Default()
	}

	symbols := append(modules.BuiltinNames(), registry.ModuleNames()...)
	if errs := checker.New(symbols).Check(program); len(errs) > 0 {
		return nil, CheckErrors(errs)
	}

	if opts.Permissions != nil {
		ps := opts.PromptState
		if ps == nil {
			ps = perm.NewPromptState(opts.Prompt)
		}
		ctx = perm.WithPermissionsAndPrompt(ctx, opts.Permissions, ps)
	}

	evaluator := eval.New(registry, opts.File)
	ctx = value.WithApplier(ctx, evaluator)

	slog.Debug("starting run", slog.String("file", opts.File),
		slog.Int("statements", len(program.Statements)))

	result := evaluator.Eval(ctx, program, evaluator.NewModuleScope())
	if err, ok := value.AsError(result); ok {
		return nil, err
	}
	return result, nil
}
