package modules

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

func JWT() Module {
	return Module{
		"encode": native("encode", jwtEncode),
		"decode": native("decode", jwtDecode),
	}
}

// encode(claims, secret) signs with HS256.
func jwtEncode(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("encode", args, 2, 2); err != nil {
		return nil, err
	}
	claimsDict, err := unpackDict("encode", "claims", args[0])
	if err != nil {
		return nil, err
	}
	secret, err := unpackString("encode", "secret", args[1])
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{}
	for _, pair := range claimsDict.Pairs() {
		key, ok := pair.Key.(*value.String)
		if !ok {
			return nil, value.Errorf(value.TypeError,
				"encode() requires string claim names, got %s", value.TypeName(pair.Key))
		}
		goVal, gerr := toGo(pair.Value)
		if gerr != nil {
			return nil, gerr
		}
		claims[key.Value] = goVal
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, serr := token.SignedString([]byte(secret))
	if serr != nil {
		return nil, value.Errorf(value.ValueError, "encode() failed: %s", serr)
	}
	return &value.String{Value: signed}, nil
}

// decode(token, secret) verifies the signature and returns the claims.
func jwtDecode(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("decode", args, 2, 2); err != nil {
		return nil, err
	}
	tokenStr, err := unpackString("decode", "token", args[0])
	if err != nil {
		return nil, err
	}
	secret, err := unpackString("decode", "secret", args[1])
	if err != nil {
		return nil, err
	}

	token, perr := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if perr != nil {
		return nil, value.Errorf(value.ValueError, "decode() failed: %s", perr)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, value.Errorf(value.ValueError, "decode() failed: unexpected claims shape")
	}

	out := value.NewDict()
	for k, v := range claims {
		out.Set(&value.String{Value: k}, fromGo(v))
	}
	return out, nil
}
