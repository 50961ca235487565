package modules

import (
	"context"
	"log/slog"
	"strings"

	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

// Console routes script logging through the host's slog handler so script
// output lands in the same stream as runtime logs.
func Console() Module {
	return Module{
		"log":   native("log", consoleAt(slog.LevelInfo)),
		"info":  native("info", consoleAt(slog.LevelInfo)),
		"warn":  native("warn", consoleAt(slog.LevelWarn)),
		"error": native("error", consoleAt(slog.LevelError)),
		"debug": native("debug", consoleAt(slog.LevelDebug)),
	}
}

func consoleAt(level slog.Level) value.NativeFn {
	return func(ctx context.Context, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
		if err := noKwargs("console", kwargs); err != nil {
			return nil, err
		}
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.Inspect()
		}
		slog.Log(ctx, level, strings.Join(parts, " "), slog.String("source", "script"))
		return value.NONE, nil
	}
}
