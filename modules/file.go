package modules

import (
	"context"
	"os"

	"github.com/alexchoi0/blueprint-engine-sub002/perm"
	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

// File wraps filesystem access. Every operation runs its capability check
// first; a denial surfaces unchanged.
func File() Module {
	return Module{
		"read":   native("read", fileRead),
		"write":  native("write", fileWrite),
		"append": native("append", fileAppend),
		"delete": native("delete", fileDelete),
		"exists": native("exists", fileExists),
		"list":   native("list", fileList),
	}
}

func fileRead(ctx context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("read", args, 1, 1); err != nil {
		return nil, err
	}
	path, err := unpackString("read", "path", args[0])
	if err != nil {
		return nil, err
	}
	if perr := perm.CheckFsRead(ctx, path); perr != nil {
		return nil, perr
	}
	data, rerr := os.ReadFile(path)
	if rerr != nil {
		return nil, value.Errorf(value.IOError, "read() failed: %s", rerr)
	}
	return &value.String{Value: string(data)}, nil
}

func fileWrite(ctx context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("write", args, 2, 2); err != nil {
		return nil, err
	}
	path, err := unpackString("write", "path", args[0])
	if err != nil {
		return nil, err
	}
	content, err := unpackString("write", "content", args[1])
	if err != nil {
		return nil, err
	}
	if perr := perm.CheckFsWrite(ctx, path); perr != nil {
		return nil, perr
	}
	if werr := os.WriteFile(path, []byte(content), 0644); werr != nil {
		return nil, value.Errorf(value.IOError, "write() failed: %s", werr)
	}
	return value.NONE, nil
}

func fileAppend(ctx context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("append", args, 2, 2); err != nil {
		return nil, err
	}
	path, err := unpackString("append", "path", args[0])
	if err != nil {
		return nil, err
	}
	content, err := unpackString("append", "content", args[1])
	if err != nil {
		return nil, err
	}
	if perr := perm.CheckFsWrite(ctx, path); perr != nil {
		return nil, perr
	}
	f, oerr := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if oerr != nil {
		return nil, value.Errorf(value.IOError, "append() failed: %s", oerr)
	}
	defer f.Close()
	n, werr := f.WriteString(content)
	if werr != nil {
		return nil, value.Errorf(value.IOError, "append() failed: %s", werr)
	}
	return &value.Int{Value: int64(n)}, nil
}

func fileDelete(ctx context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("delete", args, 1, 1); err != nil {
		return nil, err
	}
	path, err := unpackString("delete", "path", args[0])
	if err != nil {
		return nil, err
	}
	if perr := perm.CheckFsDelete(ctx, path); perr != nil {
		return nil, perr
	}
	if derr := os.Remove(path); derr != nil {
		return nil, value.Errorf(value.IOError, "delete() failed: %s", derr)
	}
	return value.NONE, nil
}

func fileExists(ctx context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("exists", args, 1, 1); err != nil {
		return nil, err
	}
	path, err := unpackString("exists", "path", args[0])
	if err != nil {
		return nil, err
	}
	if perr := perm.CheckFsRead(ctx, path); perr != nil {
		return nil, perr
	}
	if _, serr := os.Stat(path); serr != nil {
		return value.FALSE, nil
	}
	return value.TRUE, nil
}

func fileList(ctx context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("list", args, 1, 1); err != nil {
		return nil, err
	}
	path, err := unpackString("list", "path", args[0])
	if err != nil {
		return nil, err
	}
	if perr := perm.CheckFsRead(ctx, path); perr != nil {
		return nil, perr
	}
	entries, rerr := os.ReadDir(path)
	if rerr != nil {
		return nil, value.Errorf(value.IOError, "list() failed: %s", rerr)
	}
	out := make([]value.Value, len(entries))
	for i, entry := range entries {
		out[i] = &value.String{Value: entry.Name()}
	}
	return value.NewList(out), nil
}
