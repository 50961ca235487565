package perm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

// Decision is the host's answer to a permission prompt.
type Decision int

const (
	// DecisionDeny declines this request. Nothing is cached; an identical
	// request prompts again.
	DecisionDeny Decision = iota
	// DecisionAllow grants this single request.
	DecisionAllow
	// DecisionAllowSession grants this and every identical request for the
	// rest of the run.
	DecisionAllowSession
)

// PromptFunc is supplied by the embedding host. It may block (interactive
// confirmation, remote approval); the evaluator goroutine waits while other
// runs proceed.
type PromptFunc func(ctx context.Context, operation, resource string) (Decision, error)

// PromptState remembers accept-for-session grants. One-shot accepts and
// declines are deliberately not cached, so every later request is
// re-evaluated against the rules and re-prompted.
type PromptState struct {
	mu             sync.Mutex
	sessionAllowed map[string]struct{}
	prompt         PromptFunc
}

func NewPromptState(prompt PromptFunc) *PromptState {
	return &PromptState{
		sessionAllowed: make(map[string]struct{}),
		prompt:         prompt,
	}
}

func (ps *PromptState) isSessionAllowed(key string) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	_, ok := ps.sessionAllowed[key]
	return ok
}

func (ps *PromptState) grantSession(key string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.sessionAllowed[key] = struct{}{}
}

type permissionsKey struct{}
type promptStateKey struct{}

// WithPermissions scopes a rule set (and a fresh prompt state with no
// prompter) onto the context. Descendant natives observe it without
// explicit threading.
func WithPermissions(ctx context.Context, p *Permissions) context.Context {
	ctx = context.WithValue(ctx, permissionsKey{}, p)
	return context.WithValue(ctx, promptStateKey{}, NewPromptState(nil))
}

// WithPermissionsAndPrompt scopes a rule set together with an existing
// prompt state, letting several runs share session grants.
func WithPermissionsAndPrompt(ctx context.Context, p *Permissions, ps *PromptState) context.Context {
	ctx = context.WithValue(ctx, permissionsKey{}, p)
	return context.WithValue(ctx, promptStateKey{}, ps)
}

// FromContext returns the ambient rule set, if one was scoped.
func FromContext(ctx context.Context) (*Permissions, bool) {
	p, ok := ctx.Value(permissionsKey{}).(*Permissions)
	return p, ok
}

func promptStateFrom(ctx context.Context) (*PromptState, bool) {
	ps, ok := ctx.Value(promptStateKey{}).(*PromptState)
	return ps, ok
}

func deniedError(operation, resource, hint string) *value.Error {
	target := resource
	if target == "" {
		target = "*"
	}
	if hint == "" {
		hint = fmt.Sprintf("Add '%s:%s' to permissions.allow in BP.toml", operation, target)
	}
	if resource != "" {
		return value.Errorf(value.PermissionDenied,
			"operation '%s' on '%s' is not permitted. %s", operation, resource, hint)
	}
	return value.Errorf(value.PermissionDenied,
		"operation '%s' is not permitted. %s", operation, hint)
}

// handleCheck resolves a rule outcome, prompting when the rules say ask.
// The session cache holds accept-for-session grants only.
func handleCheck(ctx context.Context, check Check, operation, resource string) error {
	switch check {
	case CheckAllow:
		return nil
	case CheckDeny:
		return deniedError(operation, resource, "")
	}

	// session grants cover the whole operation: accepting fs.write for one
	// path silences the prompt for every later path in the session
	key := operation

	ps, ok := promptStateFrom(ctx)
	if !ok || ps == nil {
		return deniedError(operation, resource,
			fmt.Sprintf("Add '%s:%s' to permissions.allow in BP.toml (or supply a prompt handler)",
				operation, orStar(resource)))
	}

	if ps.isSessionAllowed(key) {
		slog.Debug("permission granted from session cache", slog.String("key", key))
		return nil
	}

	if ps.prompt == nil {
		return deniedError(operation, resource,
			fmt.Sprintf("Add '%s:%s' to permissions.allow in BP.toml (or supply a prompt handler)",
				operation, orStar(resource)))
	}

	decision, err := ps.prompt(ctx, operation, resource)
	if err != nil {
		return value.FromGoError(err, value.PermissionDenied)
	}
	switch decision {
	case DecisionAllow:
		return nil
	case DecisionAllowSession:
		ps.grantSession(key)
		return nil
	default:
		return deniedError(operation, resource, "Permission denied by user")
	}
}

func orStar(resource string) string {
	if resource == "" {
		return "*"
	}
	return resource
}

// check runs one capability check against the ambient rules. A context
// without scoped permissions passes: the embedding host opted out.
func check(ctx context.Context, operation, resource string, eval func(*Permissions) Check) error {
	p, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	return handleCheck(ctx, eval(p), operation, resource)
}

func CheckFsRead(ctx context.Context, path string) error {
	return check(ctx, "fs.read", path, func(p *Permissions) Check { return p.CheckFsRead(path) })
}

func CheckFsWrite(ctx context.Context, path string) error {
	return check(ctx, "fs.write", path, func(p *Permissions) Check { return p.CheckFsWrite(path) })
}

func CheckFsDelete(ctx context.Context, path string) error {
	return check(ctx, "fs.delete", path, func(p *Permissions) Check { return p.CheckFsDelete(path) })
}

func CheckHTTP(ctx context.Context, url string) error {
	return check(ctx, "net.http", url, func(p *Permissions) Check { return p.CheckHTTP(url) })
}

func CheckWS(ctx context.Context, url string) error {
	return check(ctx, "net.ws", url, func(p *Permissions) Check { return p.CheckWS(url) })
}

func CheckProcessRun(ctx context.Context, binary string) error {
	return check(ctx, "process.run", binary, func(p *Permissions) Check { return p.CheckProcessRun(binary) })
}

func CheckProcessShell(ctx context.Context) error {
	return check(ctx, "process.shell", "", func(p *Permissions) Check { return p.CheckProcessShell() })
}

func CheckEnvRead(ctx context.Context, name string) error {
	return check(ctx, "env.read", name, func(p *Permissions) Check { return p.CheckEnvRead(name) })
}

func CheckEnvWrite(ctx context.Context) error {
	return check(ctx, "env.write", "", func(p *Permissions) Check { return p.CheckEnvWrite() })
}

// RequestApproval routes a free-form confirmation through the ambient
// prompt. It bypasses the rule set and never caches: every request asks.
// Without a prompt handler the answer is no.
func RequestApproval(ctx context.Context, message string) (bool, error) {
	ps, ok := promptStateFrom(ctx)
	if !ok || ps == nil || ps.prompt == nil {
		return false, nil
	}
	decision, err := ps.prompt(ctx, "approval", message)
	if err != nil {
		return false, err
	}
	return decision != DecisionDeny, nil
}
