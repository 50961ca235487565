package value

import (
	"bytes"
	"strings"
	"sync"
)

// MatchesAnnotation checks a value against a type annotation name. An empty
// annotation and "any" match everything; None matches every annotation so
// optional fields stay expressible. Struct names match instances of that
// struct.
func MatchesAnnotation(annotation string, v Value) bool {
	if annotation == "" || annotation == "any" {
		return true
	}
	if _, ok := v.(*None); ok {
		return true
	}
	switch annotation {
	case "int":
		return v.Type() == INT_VALUE
	case "float":
		return v.Type() == FLOAT_VALUE || v.Type() == INT_VALUE
	case "str":
		return v.Type() == STRING_VALUE
	case "bool":
		return v.Type() == BOOL_VALUE
	case "list":
		return v.Type() == LIST_VALUE
	case "dict":
		return v.Type() == DICT_VALUE
	case "set":
		return v.Type() == SET_VALUE
	case "function":
		return v.Type() == FUNCTION_VALUE || v.Type() == NATIVE_FUNCTION_VALUE
	default:
		if si, ok := v.(*StructInstance); ok {
			return si.StructType != nil && si.StructType.Name == annotation
		}
		return false
	}
}

// KnownAnnotation reports whether a type annotation names a built-in kind.
// Struct names are validated separately against the declared structs.
func KnownAnnotation(annotation string) bool {
	switch annotation {
	case "", "any", "int", "float", "str", "bool", "list", "dict", "set", "function":
		return true
	}
	return false
}

// StructField is one declared field of a struct type. Default is already
// evaluated; nil means the field is required.
type StructField struct {
	Name    string
	Type    string
	Default Value
}

// StructType is a declared struct. Field order is declaration order and
// drives positional instantiation and rendering.
type StructType struct {
	Name   string
	Fields []StructField
}

func (st *StructType) Type() ValueType { return STRUCT_TYPE_VALUE }
func (st *StructType) Inspect() string {
	var out bytes.Buffer
	out.WriteString("struct ")
	out.WriteString(st.Name)
	out.WriteString(" {")
	parts := []string{}
	for _, f := range st.Fields {
		var b strings.Builder
		b.WriteString(f.Name)
		if f.Type != "" {
			b.WriteString(": ")
			b.WriteString(f.Type)
		}
		parts = append(parts, b.String())
	}
	out.WriteString(strings.Join(parts, ", "))
	out.WriteString("}")
	return out.String()
}

func (st *StructType) fieldIndex(name string) int {
	for i, f := range st.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Instantiate builds an instance: positional args fill fields in declared
// order, kwargs by name, then defaults. Overflow, unknown names, duplicate
// assignment and missing required fields are ArgumentErrors; an annotation
// mismatch is a TypeError.
func (st *StructType) Instantiate(args []Value, kwargs map[string]Value) (*StructInstance, *Error) {
	if len(args) > len(st.Fields) {
		return nil, Errorf(ArgumentError,
			"%s() takes at most %d arguments (%d given)", st.Name, len(st.Fields), len(args))
	}

	values := make([]Value, len(st.Fields))
	provided := make([]bool, len(st.Fields))

	for i, arg := range args {
		values[i] = arg
		provided[i] = true
	}

	for name, val := range kwargs {
		idx := st.fieldIndex(name)
		if idx < 0 {
			return nil, Errorf(ArgumentError, "%s() has no field '%s'", st.Name, name)
		}
		if provided[idx] {
			return nil, Errorf(ArgumentError, "%s() got multiple values for field '%s'", st.Name, name)
		}
		values[idx] = val
		provided[idx] = true
	}

	for i, f := range st.Fields {
		if provided[i] {
			continue
		}
		if f.Default != nil {
			values[i] = f.Default
			provided[i] = true
			continue
		}
		return nil, Errorf(ArgumentError, "%s() missing required field '%s'", st.Name, f.Name)
	}

	for i, f := range st.Fields {
		if !MatchesAnnotation(f.Type, values[i]) {
			return nil, Errorf(TypeError,
				"field '%s' of %s expects %s, got %s", f.Name, st.Name, f.Type, TypeName(values[i]))
		}
	}

	inst := &StructInstance{StructType: st, fields: make(map[string]Value, len(st.Fields))}
	for i, f := range st.Fields {
		inst.fields[f.Name] = values[i]
	}
	return inst, nil
}

// StructInstance is a mutable record of a struct type. Field writes stay
// within the declared field set and annotations.
type StructInstance struct {
	StructType *StructType

	mu     sync.RWMutex
	fields map[string]Value
}

func (si *StructInstance) Type() ValueType { return STRUCT_INSTANCE_VALUE }
func (si *StructInstance) Inspect() string {
	si.mu.RLock()
	defer si.mu.RUnlock()

	var out bytes.Buffer
	out.WriteString(si.StructType.Name)
	out.WriteString("(")
	parts := []string{}
	for _, f := range si.StructType.Fields {
		parts = append(parts, f.Name+"="+inspectQuoted(si.fields[f.Name]))
	}
	out.WriteString(strings.Join(parts, ", "))
	out.WriteString(")")
	return out.String()
}

func (si *StructInstance) GetField(name string) (Value, bool) {
	si.mu.RLock()
	defer si.mu.RUnlock()
	v, ok := si.fields[name]
	return v, ok
}

// SetField writes a declared field, enforcing its annotation.
func (si *StructInstance) SetField(name string, v Value) *Error {
	idx := si.StructType.fieldIndex(name)
	if idx < 0 {
		return Errorf(AttributeError, "%s has no field '%s'", si.StructType.Name, name)
	}
	f := si.StructType.Fields[idx]
	if !MatchesAnnotation(f.Type, v) {
		return Errorf(TypeError,
			"field '%s' of %s expects %s, got %s", f.Name, si.StructType.Name, f.Type, TypeName(v))
	}
	si.mu.Lock()
	si.fields[name] = v
	si.mu.Unlock()
	return nil
}
