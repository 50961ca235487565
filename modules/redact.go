package modules

import (
	"context"
	"regexp"
	"strings"

	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

var (
	emailPattern  = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	secretPattern = regexp.MustCompile(`(?i)(api[_-]?key|secret|token|password|bearer)\s*[:=]\s*\S+`)
)

// Redact masks sensitive substrings before script values leave the runtime
// (logs, outbound payloads).
func Redact() Module {
	return Module{
		"email":  native("email", redactEmail),
		"secret": native("secret", redactSecret),
		"mask":   native("mask", redactMask),
	}
}

func redactEmail(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("email", args, 1, 1); err != nil {
		return nil, err
	}
	text, err := unpackString("email", "text", args[0])
	if err != nil {
		return nil, err
	}
	masked := emailPattern.ReplaceAllStringFunc(text, func(m string) string {
		at := strings.Index(m, "@")
		if at <= 1 {
			return "***" + m[at:]
		}
		return m[:1] + strings.Repeat("*", at-1) + m[at:]
	})
	return &value.String{Value: masked}, nil
}

func redactSecret(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("secret", args, 1, 1); err != nil {
		return nil, err
	}
	text, err := unpackString("secret", "text", args[0])
	if err != nil {
		return nil, err
	}
	masked := secretPattern.ReplaceAllStringFunc(text, func(m string) string {
		sep := strings.IndexAny(m, ":=")
		return m[:sep+1] + " [REDACTED]"
	})
	return &value.String{Value: masked}, nil
}

// mask(text, visible=4) keeps the last visible characters of a credential.
func redactMask(_ context.Context, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("mask", args, 1, 1); err != nil {
		return nil, err
	}
	text, err := unpackString("mask", "text", args[0])
	if err != nil {
		return nil, err
	}
	visible := int64(4)
	if v, ok := optKwarg(kwargs, "visible"); ok {
		visible, err = unpackInt("mask", "visible", v)
		if err != nil {
			return nil, err
		}
		if visible < 0 {
			return nil, value.Errorf(value.ValueError, "mask() visible must not be negative")
		}
	}
	runes := []rune(text)
	if int64(len(runes)) <= visible {
		return &value.String{Value: strings.Repeat("*", len(runes))}, nil
	}
	hidden := len(runes) - int(visible)
	return &value.String{Value: strings.Repeat("*", hidden) + string(runes[hidden:])}, nil
}
