package modules

import (
	"context"
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"

	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

func Crypto() Module {
	return Module{
		"sha256":      native("sha256", cryptoSha256),
		"sha512":      native("sha512", cryptoSha512),
		"md5":         native("md5", cryptoMd5),
		"hmac_sha256": native("hmac_sha256", cryptoHmacSha256),
	}
}

func cryptoSha256(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("sha256", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := unpackString("sha256", "data", args[0])
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256([]byte(s))
	return &value.String{Value: hex.EncodeToString(sum[:])}, nil
}

func cryptoSha512(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("sha512", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := unpackString("sha512", "data", args[0])
	if err != nil {
		return nil, err
	}
	sum := sha512.Sum512([]byte(s))
	return &value.String{Value: hex.EncodeToString(sum[:])}, nil
}

func cryptoMd5(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("md5", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := unpackString("md5", "data", args[0])
	if err != nil {
		return nil, err
	}
	sum := md5.Sum([]byte(s))
	return &value.String{Value: hex.EncodeToString(sum[:])}, nil
}

func cryptoHmacSha256(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("hmac_sha256", args, 2, 2); err != nil {
		return nil, err
	}
	key, err := unpackString("hmac_sha256", "key", args[0])
	if err != nil {
		return nil, err
	}
	data, err := unpackString("hmac_sha256", "data", args[1])
	if err != nil {
		return nil, err
	}
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return &value.String{Value: hex.EncodeToString(mac.Sum(nil))}, nil
}
