package modules

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

func JSON() Module {
	return Module{
		"encode": native("encode", jsonEncode),
		"decode": native("decode", jsonDecode),
	}
}

func jsonEncode(_ context.Context, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("encode", args, 1, 1); err != nil {
		return nil, err
	}
	goVal, err := toGo(args[0])
	if err != nil {
		return nil, err
	}
	var data []byte
	var jerr error
	if indent, ok := optKwarg(kwargs, "indent"); ok && value.IsTruthy(indent) {
		data, jerr = json.MarshalIndent(goVal, "", "  ")
	} else {
		data, jerr = json.Marshal(goVal)
	}
	if jerr != nil {
		return nil, value.Errorf(value.ValueError, "encode() failed: %s", jerr)
	}
	return &value.String{Value: string(data)}, nil
}

func jsonDecode(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("decode", args, 1, 1); err != nil {
		return nil, err
	}
	text, err := unpackString("decode", "text", args[0])
	if err != nil {
		return nil, err
	}
	var goVal interface{}
	if jerr := json.Unmarshal([]byte(text), &goVal); jerr != nil {
		return nil, value.Errorf(value.ValueError, "decode() failed: %s", jerr)
	}
	return fromGo(goVal), nil
}

// toGo lowers a script value into the encoding/json shape. Dict keys must
// be strings; functions and other runtime-only kinds do not encode.
func toGo(v value.Value) (interface{}, *value.Error) {
	switch v := v.(type) {
	case *value.None:
		return nil, nil
	case *value.Bool:
		return v.Value, nil
	case *value.Int:
		return v.Value, nil
	case *value.Float:
		return v.Value, nil
	case *value.String:
		return v.Value, nil
	case *value.List:
		elements := v.Snapshot()
		out := make([]interface{}, len(elements))
		for i, e := range elements {
			g, err := toGo(e)
			if err != nil {
				return nil, err
			}
			out[i] = g
		}
		return out, nil
	case *value.Set:
		items := v.Items()
		out := make([]interface{}, len(items))
		for i, e := range items {
			g, err := toGo(e)
			if err != nil {
				return nil, err
			}
			out[i] = g
		}
		return out, nil
	case *value.Dict:
		out := map[string]interface{}{}
		for _, pair := range v.Pairs() {
			key, ok := pair.Key.(*value.String)
			if !ok {
				return nil, value.Errorf(value.TypeError,
					"encode() requires string dict keys, got %s", value.TypeName(pair.Key))
			}
			g, err := toGo(pair.Value)
			if err != nil {
				return nil, err
			}
			out[key.Value] = g
		}
		return out, nil
	case *value.StructInstance:
		out := map[string]interface{}{}
		for _, f := range v.StructType.Fields {
			fv, _ := v.GetField(f.Name)
			g, err := toGo(fv)
			if err != nil {
				return nil, err
			}
			out[f.Name] = g
		}
		return out, nil
	}
	return nil, value.Errorf(value.TypeError, "encode() does not support %s", value.TypeName(v))
}

// fromGo lifts a decoded JSON shape into the value model. Whole-number
// floats become ints, matching how scripts write them.
func fromGo(v interface{}) value.Value {
	switch v := v.(type) {
	case nil:
		return value.NONE
	case bool:
		return value.NativeBool(v)
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return &value.Int{Value: int64(v)}
		}
		return &value.Float{Value: v}
	case string:
		return &value.String{Value: v}
	case []interface{}:
		elements := make([]value.Value, len(v))
		for i, e := range v {
			elements[i] = fromGo(e)
		}
		return value.NewList(elements)
	case map[string]interface{}:
		d := value.NewDict()
		for k, e := range v {
			d.Set(&value.String{Value: k}, fromGo(e))
		}
		return d
	}
	return &value.String{Value: fmt.Sprintf("%v", v)}
}
