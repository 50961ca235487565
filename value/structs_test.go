package value

import "testing"

func pointType() *StructType {
	return &StructType{
		Name: "Point",
		Fields: []StructField{
			{Name: "x", Type: "int"},
			{Name: "y", Type: "int"},
			{Name: "label", Type: "str", Default: &String{Value: ""}},
		},
	}
}

func TestInstantiatePositionalAndDefaults(t *testing.T) {
	p, err := pointType().Instantiate([]Value{&Int{Value: 1}, &Int{Value: 2}}, nil)
	if err != nil {
		t.Fatalf("instantiate failed: %s", err)
	}
	if v, _ := p.GetField("x"); v.(*Int).Value != 1 {
		t.Errorf("x = %s", v.Inspect())
	}
	if v, _ := p.GetField("label"); v.(*String).Value != "" {
		t.Errorf("label default = %s", v.Inspect())
	}
}

func TestInstantiateKwargs(t *testing.T) {
	p, err := pointType().Instantiate(
		[]Value{&Int{Value: 1}},
		map[string]Value{"y": &Int{Value: 5}, "label": &String{Value: "origin"}})
	if err != nil {
		t.Fatalf("instantiate failed: %s", err)
	}
	if v, _ := p.GetField("y"); v.(*Int).Value != 5 {
		t.Errorf("y = %s", v.Inspect())
	}
}

func TestInstantiateErrors(t *testing.T) {
	st := pointType()

	_, err := st.Instantiate([]Value{&Int{Value: 1}, &Int{Value: 2}, &String{Value: "l"}, NONE}, nil)
	if err == nil || err.Kind != ArgumentError {
		t.Errorf("arity overflow: got %v", err)
	}

	_, err = st.Instantiate(nil, map[string]Value{"z": &Int{Value: 1}})
	if err == nil || err.Kind != ArgumentError {
		t.Errorf("unknown field: got %v", err)
	}

	_, err = st.Instantiate([]Value{&Int{Value: 1}}, map[string]Value{"x": &Int{Value: 2}, "y": &Int{Value: 3}})
	if err == nil || err.Kind != ArgumentError {
		t.Errorf("duplicate field: got %v", err)
	}

	_, err = st.Instantiate([]Value{&Int{Value: 1}}, nil)
	if err == nil || err.Kind != ArgumentError {
		t.Errorf("missing required field: got %v", err)
	}

	_, err = st.Instantiate([]Value{&String{Value: "no"}, &Int{Value: 2}}, nil)
	if err == nil || err.Kind != TypeError {
		t.Errorf("annotation mismatch: got %v", err)
	}
}

func TestSetFieldEnforcesAnnotation(t *testing.T) {
	p, _ := pointType().Instantiate([]Value{&Int{Value: 1}, &Int{Value: 2}}, nil)

	if err := p.SetField("x", &Int{Value: 9}); err != nil {
		t.Fatalf("valid set failed: %s", err)
	}
	if err := p.SetField("x", &String{Value: "bad"}); err == nil || err.Kind != TypeError {
		t.Errorf("annotation violation: got %v", err)
	}
	if err := p.SetField("ghost", NONE); err == nil || err.Kind != AttributeError {
		t.Errorf("unknown field: got %v", err)
	}
}

func TestMatchesAnnotation(t *testing.T) {
	tests := []struct {
		annotation string
		v          Value
		want       bool
	}{
		{"any", &Int{Value: 1}, true},
		{"", &Int{Value: 1}, true},
		{"int", &Int{Value: 1}, true},
		{"int", &String{Value: "x"}, false},
		{"float", &Int{Value: 1}, true}, // ints satisfy float slots
		{"str", NONE, true},             // None matches every annotation
		{"list", NewList(nil), true},
	}
	for _, tt := range tests {
		if got := MatchesAnnotation(tt.annotation, tt.v); got != tt.want {
			t.Errorf("MatchesAnnotation(%q, %s) = %t, want %t",
				tt.annotation, tt.v.Inspect(), got, tt.want)
		}
	}
}
