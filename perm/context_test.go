package perm

import (
	"context"
	"testing"

	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

func TestNoAmbientPermissionsPasses(t *testing.T) {
	ctx := context.Background()
	if err := CheckFsRead(ctx, "/etc/passwd"); err != nil {
		t.Errorf("unscoped context should pass: %v", err)
	}
	if err := CheckProcessShell(ctx); err != nil {
		t.Errorf("unscoped context should pass: %v", err)
	}
}

func TestAmbientDeny(t *testing.T) {
	ctx := WithPermissions(context.Background(), None())
	err := CheckFsRead(ctx, "/etc/passwd")
	if err == nil {
		t.Fatalf("expected denial")
	}
	e, ok := err.(*value.Error)
	if !ok || e.Kind != value.PermissionDenied {
		t.Errorf("error = %v", err)
	}
}

func TestAmbientAllow(t *testing.T) {
	ctx := WithPermissions(context.Background(),
		&Permissions{Policy: PolicyDeny, Allow: []string{"fs.read:/tmp/*"}})
	if err := CheckFsRead(ctx, "/tmp/x"); err != nil {
		t.Errorf("allowed path denied: %v", err)
	}
}

func TestAskWithoutPromptDenies(t *testing.T) {
	ctx := WithPermissions(context.Background(), AskAll())
	if err := CheckFsWrite(ctx, "/tmp/out"); err == nil {
		t.Errorf("ask without a prompt handler must deny")
	}
}

func TestPromptOneShotAllowIsNotCached(t *testing.T) {
	calls := 0
	prompt := func(ctx context.Context, op, resource string) (Decision, error) {
		calls++
		return DecisionAllow, nil
	}
	ps := NewPromptState(prompt)
	ctx := WithPermissionsAndPrompt(context.Background(), AskAll(), ps)

	if err := CheckFsWrite(ctx, "/tmp/out"); err != nil {
		t.Fatalf("first prompt: %v", err)
	}
	if err := CheckFsWrite(ctx, "/tmp/out"); err != nil {
		t.Fatalf("second prompt: %v", err)
	}
	if calls != 2 {
		t.Errorf("one-shot allow was cached: %d prompts", calls)
	}
}

func TestPromptSessionAllowIsCached(t *testing.T) {
	calls := 0
	prompt := func(ctx context.Context, op, resource string) (Decision, error) {
		calls++
		return DecisionAllowSession, nil
	}
	ps := NewPromptState(prompt)
	ctx := WithPermissionsAndPrompt(context.Background(), AskAll(), ps)

	for i := 0; i < 3; i++ {
		if err := CheckFsWrite(ctx, "/tmp/out"); err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
	}
	if calls != 1 {
		t.Errorf("session allow not cached: %d prompts", calls)
	}

	// the grant covers the operation: another path stays silent too
	if err := CheckFsWrite(ctx, "/tmp/other"); err != nil {
		t.Fatalf("other resource: %v", err)
	}
	if calls != 1 {
		t.Errorf("session grant must cover the whole operation: %d prompts", calls)
	}

	// a different operation still prompts
	if err := CheckFsDelete(ctx, "/tmp/out"); err != nil {
		t.Fatalf("other operation: %v", err)
	}
	if calls != 2 {
		t.Errorf("session grant leaked across operations: %d prompts", calls)
	}
}

func TestPromptDenyIsNotCached(t *testing.T) {
	calls := 0
	prompt := func(ctx context.Context, op, resource string) (Decision, error) {
		calls++
		if calls == 1 {
			return DecisionDeny, nil
		}
		return DecisionAllow, nil
	}
	ps := NewPromptState(prompt)
	ctx := WithPermissionsAndPrompt(context.Background(), AskAll(), ps)

	if err := CheckHTTP(ctx, "https://example.com"); err == nil {
		t.Fatalf("first check should be denied")
	}
	// a decline is not remembered; the next request prompts again and can
	// be granted
	if err := CheckHTTP(ctx, "https://example.com"); err != nil {
		t.Fatalf("second check should be granted: %v", err)
	}
	if calls != 2 {
		t.Errorf("deny was cached: %d prompts", calls)
	}
}

func TestSharedPromptStateAcrossRuns(t *testing.T) {
	calls := 0
	prompt := func(ctx context.Context, op, resource string) (Decision, error) {
		calls++
		return DecisionAllowSession, nil
	}
	ps := NewPromptState(prompt)

	ctx1 := WithPermissionsAndPrompt(context.Background(), AskAll(), ps)
	ctx2 := WithPermissionsAndPrompt(context.Background(), AskAll(), ps)

	if err := CheckEnvRead(ctx1, "HOME"); err != nil {
		t.Fatalf("run 1: %v", err)
	}
	if err := CheckEnvRead(ctx2, "HOME"); err != nil {
		t.Fatalf("run 2: %v", err)
	}
	if calls != 1 {
		t.Errorf("shared prompt state not honored: %d prompts", calls)
	}
}

func TestDenyRuleNeverPrompts(t *testing.T) {
	prompt := func(ctx context.Context, op, resource string) (Decision, error) {
		t.Fatalf("prompt invoked for a deny rule")
		return DecisionDeny, nil
	}
	ps := NewPromptState(prompt)
	perms := &Permissions{Policy: PolicyAsk, Deny: []string{"process.shell"}}
	ctx := WithPermissionsAndPrompt(context.Background(), perms, ps)

	if err := CheckProcessShell(ctx); err == nil {
		t.Errorf("deny rule did not deny")
	}
}
