package modules

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"net/url"

	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

func Encoding() Module {
	return Module{
		"base64_encode": native("base64_encode", encBase64Encode),
		"base64_decode": native("base64_decode", encBase64Decode),
		"hex_encode":    native("hex_encode", encHexEncode),
		"hex_decode":    native("hex_decode", encHexDecode),
		"url_encode":    native("url_encode", encURLEncode),
		"url_decode":    native("url_decode", encURLDecode),
	}
}

func encBase64Encode(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("base64_encode", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := unpackString("base64_encode", "data", args[0])
	if err != nil {
		return nil, err
	}
	return &value.String{Value: base64.StdEncoding.EncodeToString([]byte(s))}, nil
}

func encBase64Decode(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("base64_decode", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := unpackString("base64_decode", "data", args[0])
	if err != nil {
		return nil, err
	}
	data, derr := base64.StdEncoding.DecodeString(s)
	if derr != nil {
		return nil, value.Errorf(value.ValueError, "base64_decode() failed: %s", derr)
	}
	return &value.String{Value: string(data)}, nil
}

func encHexEncode(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("hex_encode", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := unpackString("hex_encode", "data", args[0])
	if err != nil {
		return nil, err
	}
	return &value.String{Value: hex.EncodeToString([]byte(s))}, nil
}

func encHexDecode(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("hex_decode", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := unpackString("hex_decode", "data", args[0])
	if err != nil {
		return nil, err
	}
	data, derr := hex.DecodeString(s)
	if derr != nil {
		return nil, value.Errorf(value.ValueError, "hex_decode() failed: %s", derr)
	}
	return &value.String{Value: string(data)}, nil
}

func encURLEncode(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("url_encode", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := unpackString("url_encode", "data", args[0])
	if err != nil {
		return nil, err
	}
	return &value.String{Value: url.QueryEscape(s)}, nil
}

func encURLDecode(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("url_decode", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := unpackString("url_decode", "data", args[0])
	if err != nil {
		return nil, err
	}
	decoded, derr := url.QueryUnescape(s)
	if derr != nil {
		return nil, value.Errorf(value.ValueError, "url_decode() failed: %s", derr)
	}
	return &value.String{Value: decoded}, nil
}
