package modules

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/alexchoi0/blueprint-engine-sub002/perm"
	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

func Process() Module {
	return Module{
		"run":   native("run", processRun),
		"shell": native("shell", processShell),
	}
}

// run(binary, args...) executes without a shell; the binary is the checked
// resource.
func processRun(ctx context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) < 1 {
		return nil, value.Errorf(value.ArgumentError, "run() expects at least one argument")
	}
	binary, err := unpackString("run", "binary", args[0])
	if err != nil {
		return nil, err
	}
	argv := make([]string, 0, len(args)-1)
	for _, a := range args[1:] {
		s, serr := unpackString("run", "argument", a)
		if serr != nil {
			return nil, serr
		}
		argv = append(argv, s)
	}

	if perr := perm.CheckProcessRun(ctx, binary); perr != nil {
		return nil, perr
	}
	return execCommand(ctx, exec.CommandContext(ctx, binary, argv...))
}

// shell(command) runs through sh -c; gated on the broader process.shell
// capability because the command line can reach anything.
func processShell(ctx context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("shell", args, 1, 1); err != nil {
		return nil, err
	}
	command, err := unpackString("shell", "command", args[0])
	if err != nil {
		return nil, err
	}
	if perr := perm.CheckProcessShell(ctx); perr != nil {
		return nil, perr
	}
	return execCommand(ctx, exec.CommandContext(ctx, "sh", "-c", command))
}

func execCommand(ctx context.Context, cmd *exec.Cmd) (value.Value, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return nil, value.Errorf(value.Cancelled, "process cancelled")
	}
	code := 0
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return nil, value.Errorf(value.ProcessError, "process failed to start: %s", err)
		}
		code = exitErr.ExitCode()
	}

	return &value.ProcessResult{
		Code:   code,
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}, nil
}
