package modules

import (
	"context"
	"os"

	"github.com/alexchoi0/blueprint-engine-sub002/perm"
	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

func Env() Module {
	return Module{
		"get": native("get", envGet),
		"set": native("set", envSet),
	}
}

func envGet(ctx context.Context, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("get", args, 1, 1); err != nil {
		return nil, err
	}
	name, err := unpackString("get", "name", args[0])
	if err != nil {
		return nil, err
	}
	if perr := perm.CheckEnvRead(ctx, name); perr != nil {
		return nil, perr
	}
	v, ok := os.LookupEnv(name)
	if !ok {
		if fallback, has := optKwarg(kwargs, "default"); has {
			return fallback, nil
		}
		return value.NONE, nil
	}
	return &value.String{Value: v}, nil
}

func envSet(ctx context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("set", args, 2, 2); err != nil {
		return nil, err
	}
	name, err := unpackString("set", "name", args[0])
	if err != nil {
		return nil, err
	}
	val, err := unpackString("set", "value", args[1])
	if err != nil {
		return nil, err
	}
	if perr := perm.CheckEnvWrite(ctx); perr != nil {
		return nil, perr
	}
	if serr := os.Setenv(name, val); serr != nil {
		return nil, value.Errorf(value.IOError, "set() failed: %s", serr)
	}
	return value.NONE, nil
}
