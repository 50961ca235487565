package modules

import (
	"context"
	"regexp"

	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

func Regex() Module {
	return Module{
		"match":    native("match", regexMatch),
		"find_all": native("find_all", regexFindAll),
		"replace":  native("replace", regexReplace),
		"split":    native("split", regexSplit),
	}
}

func compilePattern(name string, v value.Value) (*regexp.Regexp, *value.Error) {
	pattern, err := unpackString(name, "pattern", v)
	if err != nil {
		return nil, err
	}
	re, cerr := regexp.Compile(pattern)
	if cerr != nil {
		return nil, value.Errorf(value.ValueError, "%s() invalid pattern: %s", name, cerr)
	}
	return re, nil
}

func regexMatch(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("match", args, 2, 2); err != nil {
		return nil, err
	}
	re, err := compilePattern("match", args[0])
	if err != nil {
		return nil, err
	}
	text, err := unpackString("match", "text", args[1])
	if err != nil {
		return nil, err
	}
	return value.NativeBool(re.MatchString(text)), nil
}

func regexFindAll(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("find_all", args, 2, 2); err != nil {
		return nil, err
	}
	re, err := compilePattern("find_all", args[0])
	if err != nil {
		return nil, err
	}
	text, err := unpackString("find_all", "text", args[1])
	if err != nil {
		return nil, err
	}
	matches := re.FindAllString(text, -1)
	out := make([]value.Value, len(matches))
	for i, m := range matches {
		out[i] = &value.String{Value: m}
	}
	return value.NewList(out), nil
}

func regexReplace(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("replace", args, 3, 3); err != nil {
		return nil, err
	}
	re, err := compilePattern("replace", args[0])
	if err != nil {
		return nil, err
	}
	text, err := unpackString("replace", "text", args[1])
	if err != nil {
		return nil, err
	}
	replacement, err := unpackString("replace", "replacement", args[2])
	if err != nil {
		return nil, err
	}
	return &value.String{Value: re.ReplaceAllString(text, replacement)}, nil
}

func regexSplit(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("split", args, 2, 2); err != nil {
		return nil, err
	}
	re, err := compilePattern("split", args[0])
	if err != nil {
		return nil, err
	}
	text, err := unpackString("split", "text", args[1])
	if err != nil {
		return nil, err
	}
	parts := re.Split(text, -1)
	out := make([]value.Value, len(parts))
	for i, p := range parts {
		out[i] = &value.String{Value: p}
	}
	return value.NewList(out), nil
}
