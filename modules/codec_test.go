package modules

import (
	"strings"
	"testing"

	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

func TestJSONEncodeDecode(t *testing.T) {
	m := JSON()

	d := value.NewDict()
	d.Set(&value.String{Value: "name"}, &value.String{Value: "deploy"})
	d.Set(&value.String{Value: "count"}, &value.Int{Value: 3})
	d.Set(&value.String{Value: "tags"}, value.NewList([]value.Value{
		&value.String{Value: "ci"},
	}))

	encoded, err := call(t, m, "encode", d)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	text := encoded.(*value.String).Value
	if !strings.Contains(text, `"name":"deploy"`) {
		t.Errorf("encoded = %s", text)
	}

	decoded, err := call(t, m, "decode", encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	back := decoded.(*value.Dict)
	count, _ := back.Get(&value.String{Value: "count"})
	if count.(*value.Int).Value != 3 {
		t.Errorf("whole numbers should decode as ints, got %s", count.Type())
	}
}

func TestJSONEncodeRejectsNonStringKeys(t *testing.T) {
	m := JSON()
	d := value.NewDict()
	d.Set(&value.Int{Value: 1}, &value.String{Value: "x"})
	_, err := call(t, m, "encode", d)
	wantKind(t, err, value.TypeError)
}

func TestJSONDecodeInvalid(t *testing.T) {
	m := JSON()
	_, err := call(t, m, "decode", &value.String{Value: "{nope"})
	wantKind(t, err, value.ValueError)
}

func TestEncodingRoundTrips(t *testing.T) {
	m := Encoding()
	input := &value.String{Value: "hello world & more"}

	for _, pair := range [][2]string{
		{"base64_encode", "base64_decode"},
		{"hex_encode", "hex_decode"},
		{"url_encode", "url_decode"},
	} {
		encoded, err := call(t, m, pair[0], input)
		if err != nil {
			t.Fatalf("%s: %v", pair[0], err)
		}
		decoded, err := call(t, m, pair[1], encoded)
		if err != nil {
			t.Fatalf("%s: %v", pair[1], err)
		}
		if decoded.(*value.String).Value != input.Value {
			t.Errorf("%s/%s round trip = %q", pair[0], pair[1], decoded.Inspect())
		}
	}
}

func TestEncodingDecodeInvalid(t *testing.T) {
	m := Encoding()
	_, err := call(t, m, "base64_decode", &value.String{Value: "!!!"})
	wantKind(t, err, value.ValueError)
	_, err = call(t, m, "hex_decode", &value.String{Value: "xyz"})
	wantKind(t, err, value.ValueError)
}

func TestCryptoDigests(t *testing.T) {
	m := Crypto()

	v, _ := call(t, m, "sha256", &value.String{Value: "abc"})
	if v.(*value.String).Value != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Errorf("sha256 = %s", v.Inspect())
	}

	v, _ = call(t, m, "md5", &value.String{Value: "abc"})
	if v.(*value.String).Value != "900150983cd24fb0d6963f7d28e17f72" {
		t.Errorf("md5 = %s", v.Inspect())
	}

	v, _ = call(t, m, "hmac_sha256", &value.String{Value: "key"}, &value.String{Value: "abc"})
	if len(v.(*value.String).Value) != 64 {
		t.Errorf("hmac_sha256 length = %d", len(v.(*value.String).Value))
	}
}

func TestRegexOperations(t *testing.T) {
	m := Regex()

	v, _ := call(t, m, "match", &value.String{Value: `\d+`}, &value.String{Value: "abc123"})
	if v != value.TRUE {
		t.Errorf("match = %s", v.Inspect())
	}

	v, _ = call(t, m, "find_all", &value.String{Value: `\d+`}, &value.String{Value: "a1 b22 c333"})
	if v.(*value.List).Len() != 3 {
		t.Errorf("find_all = %s", v.Inspect())
	}

	v, _ = call(t, m, "replace", &value.String{Value: `\s+`}, &value.String{Value: "a  b\tc"}, &value.String{Value: "-"})
	if v.(*value.String).Value != "a-b-c" {
		t.Errorf("replace = %s", v.Inspect())
	}

	_, err := call(t, m, "match", &value.String{Value: "("}, &value.String{Value: "x"})
	wantKind(t, err, value.ValueError)
}

func TestRedact(t *testing.T) {
	m := Redact()

	v, _ := call(t, m, "email", &value.String{Value: "contact alice@example.com today"})
	got := v.(*value.String).Value
	if strings.Contains(got, "alice@") {
		t.Errorf("email not masked: %s", got)
	}
	if !strings.Contains(got, "@example.com") {
		t.Errorf("domain should survive masking: %s", got)
	}

	v, _ = call(t, m, "secret", &value.String{Value: "api_key=sk_live_abc123 rest"})
	if strings.Contains(v.(*value.String).Value, "sk_live_abc123") {
		t.Errorf("secret not masked: %s", v.Inspect())
	}

	v, _ = call(t, m, "mask", &value.String{Value: "supersecret"})
	if v.(*value.String).Value != "*******cret" {
		t.Errorf("mask = %s", v.Inspect())
	}
}
