package modules

import (
	"context"
	"time"

	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

func Time() Module {
	return Module{
		"now":    native("now", timeNow),
		"unix":   native("unix", timeUnix),
		"format": native("format", timeFormat),
		"sleep":  native("sleep", builtinSleep),
	}
}

func timeNow(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("now", args, 0, 0); err != nil {
		return nil, err
	}
	return &value.String{Value: time.Now().UTC().Format(time.RFC3339)}, nil
}

func timeUnix(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("unix", args, 0, 0); err != nil {
		return nil, err
	}
	return &value.Int{Value: time.Now().Unix()}, nil
}

// format(timestamp, layout) renders a unix timestamp with a Go layout
// string.
func timeFormat(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("format", args, 2, 2); err != nil {
		return nil, err
	}
	ts, err := unpackInt("format", "timestamp", args[0])
	if err != nil {
		return nil, err
	}
	layout, err := unpackString("format", "layout", args[1])
	if err != nil {
		return nil, err
	}
	return &value.String{Value: time.Unix(ts, 0).UTC().Format(layout)}, nil
}
