// Package value holds the runtime value model: the closed set of value
// kinds scripts can observe, the shared containers, and the scope chain.
package value

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	NONE_VALUE   = "NONE"
	BOOL_VALUE   = "BOOL"
	INT_VALUE    = "INT"
	FLOAT_VALUE  = "FLOAT"
	STRING_VALUE = "STRING"

	LIST_VALUE = "LIST"
	DICT_VALUE = "DICT"
	SET_VALUE  = "SET"

	STRUCT_TYPE_VALUE     = "STRUCT_TYPE"
	STRUCT_INSTANCE_VALUE = "STRUCT_INSTANCE"

	FUNCTION_VALUE        = "FUNCTION"
	NATIVE_FUNCTION_VALUE = "NATIVE_FUNCTION"
	GENERATOR_VALUE       = "GENERATOR"
	STREAM_VALUE          = "STREAM"

	HTTP_RESPONSE_VALUE  = "HTTP_RESPONSE"
	PROCESS_RESULT_VALUE = "PROCESS_RESULT"

	ERROR_VALUE = "ERROR"

	// Internal control-flow signals. Never surfaced to scripts.
	RETURN_VALUE   = "RETURN_VALUE"
	BREAK_VALUE    = "BREAK"
	CONTINUE_VALUE = "CONTINUE"
)

var (
	NONE  = &None{}
	TRUE  = &Bool{Value: true}
	FALSE = &Bool{Value: false}
)

type ValueType string

type Value interface {
	Type() ValueType
	Inspect() string
}

// Hashable is implemented by the scalar kinds usable as dict keys and set
// members.
type Hashable interface {
	Value
	HashKey() HashKey
}

type HashKey struct {
	Type  ValueType
	Value uint64
}

type None struct{}

func (n *None) Type() ValueType { return NONE_VALUE }
func (n *None) Inspect() string { return "None" }
func (n *None) HashKey() HashKey {
	return HashKey{Type: n.Type(), Value: 0}
}

type Bool struct {
	Value bool
}

func (b *Bool) Type() ValueType { return BOOL_VALUE }
func (b *Bool) Inspect() string {
	if b.Value {
		return "True"
	}
	return "False"
}
func (b *Bool) HashKey() HashKey {
	var v uint64
	if b.Value {
		v = 1
	}
	return HashKey{Type: b.Type(), Value: v}
}

type Int struct {
	Value int64
}

func (i *Int) Type() ValueType { return INT_VALUE }
func (i *Int) Inspect() string { return fmt.Sprintf("%d", i.Value) }
func (i *Int) HashKey() HashKey {
	return HashKey{Type: i.Type(), Value: uint64(i.Value)}
}

type Float struct {
	Value float64
}

func (f *Float) Type() ValueType { return FLOAT_VALUE }
func (f *Float) Inspect() string { return fmt.Sprintf("%g", f.Value) }
func (f *Float) HashKey() HashKey {
	return HashKey{Type: f.Type(), Value: math.Float64bits(f.Value)}
}

type String struct {
	Value string
}

func (s *String) Type() ValueType { return STRING_VALUE }
func (s *String) Inspect() string { return s.Value }
func (s *String) HashKey() HashKey {
	h := fnv.New64a()
	for _, r := range s.Value {
		var buf [4]byte
		n := utf8.EncodeRune(buf[:], r)
		h.Write(buf[:n])
	}
	return HashKey{Type: s.Type(), Value: h.Sum64()}
}

// List is a mutable, shared sequence. All access goes through the methods so
// concurrent holders stay consistent.
type List struct {
	mu       sync.RWMutex
	Elements []Value
}

func NewList(elements []Value) *List {
	return &List{Elements: elements}
}

func (l *List) Type() ValueType { return LIST_VALUE }
func (l *List) Inspect() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	elements := []string{}
	for _, e := range l.Elements {
		elements = append(elements, inspectQuoted(e))
	}

	var out bytes.Buffer
	out.WriteString("[")
	out.WriteString(strings.Join(elements, ", "))
	out.WriteString("]")
	return out.String()
}

func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.Elements)
}

func (l *List) Get(i int) (Value, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 {
		i += len(l.Elements)
	}
	if i < 0 || i >= len(l.Elements) {
		return nil, false
	}
	return l.Elements[i], true
}

func (l *List) Set(i int, v Value) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 {
		i += len(l.Elements)
	}
	if i < 0 || i >= len(l.Elements) {
		return false
	}
	l.Elements[i] = v
	return true
}

func (l *List) Append(v Value) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Elements = append(l.Elements, v)
}

// Snapshot copies the current element slice so callers can iterate without
// holding the lock.
func (l *List) Snapshot() []Value {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Value, len(l.Elements))
	copy(out, l.Elements)
	return out
}

func (l *List) Pop() (Value, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.Elements)
	if n == 0 {
		return nil, false
	}
	v := l.Elements[n-1]
	l.Elements = l.Elements[:n-1]
	return v, true
}

func (l *List) Insert(i int, v Value) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 {
		i += len(l.Elements)
	}
	if i < 0 || i > len(l.Elements) {
		return false
	}
	l.Elements = append(l.Elements, nil)
	copy(l.Elements[i+1:], l.Elements[i:])
	l.Elements[i] = v
	return true
}

func (l *List) RemoveAt(i int) (Value, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 {
		i += len(l.Elements)
	}
	if i < 0 || i >= len(l.Elements) {
		return nil, false
	}
	v := l.Elements[i]
	l.Elements = append(l.Elements[:i], l.Elements[i+1:]...)
	return v, true
}

func (l *List) Replace(elements []Value) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Elements = elements
}

type DictPair struct {
	Key   Value
	Value Value
}

// Dict preserves insertion order: the keys slice is authoritative for
// iteration, the pairs map for lookup.
type Dict struct {
	mu    sync.RWMutex
	keys  []HashKey
	pairs map[HashKey]DictPair
}

func NewDict() *Dict {
	return &Dict{pairs: map[HashKey]DictPair{}}
}

func (d *Dict) Type() ValueType { return DICT_VALUE }
func (d *Dict) Inspect() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	pairs := []string{}
	for _, k := range d.keys {
		pair := d.pairs[k]
		pairs = append(pairs, inspectQuoted(pair.Key)+": "+inspectQuoted(pair.Value))
	}

	var out bytes.Buffer
	out.WriteString("{")
	out.WriteString(strings.Join(pairs, ", "))
	out.WriteString("}")
	return out.String()
}

func (d *Dict) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.keys)
}

func (d *Dict) Get(key Hashable) (Value, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	pair, ok := d.pairs[key.HashKey()]
	if !ok {
		return nil, false
	}
	return pair.Value, true
}

func (d *Dict) Set(key Hashable, v Value) {
	d.mu.Lock()
	defer d.mu.Unlock()
	hk := key.HashKey()
	if _, exists := d.pairs[hk]; !exists {
		d.keys = append(d.keys, hk)
	}
	d.pairs[hk] = DictPair{Key: key, Value: v}
}

func (d *Dict) Delete(key Hashable) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	hk := key.HashKey()
	if _, exists := d.pairs[hk]; !exists {
		return false
	}
	delete(d.pairs, hk)
	for i, k := range d.keys {
		if k == hk {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
	return true
}

func (d *Dict) Has(key Hashable) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.pairs[key.HashKey()]
	return ok
}

// Pairs returns key/value pairs in insertion order.
func (d *Dict) Pairs() []DictPair {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]DictPair, 0, len(d.keys))
	for _, k := range d.keys {
		out = append(out, d.pairs[k])
	}
	return out
}

func (d *Dict) Keys() []Value {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Value, 0, len(d.keys))
	for _, k := range d.keys {
		out = append(out, d.pairs[k].Key)
	}
	return out
}

func (d *Dict) Values() []Value {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Value, 0, len(d.keys))
	for _, k := range d.keys {
		out = append(out, d.pairs[k].Value)
	}
	return out
}

// Set is a mutable, shared collection of hashable values, insertion-ordered
// like Dict for stable iteration and rendering.
type Set struct {
	mu    sync.RWMutex
	keys  []HashKey
	items map[HashKey]Value
}

func NewSet() *Set {
	return &Set{items: map[HashKey]Value{}}
}

func (s *Set) Type() ValueType { return SET_VALUE }
func (s *Set) Inspect() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.keys) == 0 {
		return "set()"
	}
	items := []string{}
	for _, k := range s.keys {
		items = append(items, inspectQuoted(s.items[k]))
	}

	var out bytes.Buffer
	out.WriteString("{")
	out.WriteString(strings.Join(items, ", "))
	out.WriteString("}")
	return out.String()
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

func (s *Set) Add(v Hashable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hk := v.HashKey()
	if _, exists := s.items[hk]; !exists {
		s.keys = append(s.keys, hk)
		s.items[hk] = v
	}
}

func (s *Set) Remove(v Hashable) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	hk := v.HashKey()
	if _, exists := s.items[hk]; !exists {
		return false
	}
	delete(s.items, hk)
	for i, k := range s.keys {
		if k == hk {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
	return true
}

func (s *Set) Has(v Hashable) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[v.HashKey()]
	return ok
}

func (s *Set) Items() []Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Value, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.items[k])
	}
	return out
}

// ReturnValue wraps a function result while it unwinds to the call boundary.
type ReturnValue struct {
	Value Value
}

func (rv *ReturnValue) Type() ValueType { return RETURN_VALUE }
func (rv *ReturnValue) Inspect() string { return rv.Value.Inspect() }

type Break struct{}

func (b *Break) Type() ValueType { return BREAK_VALUE }
func (b *Break) Inspect() string { return "break" }

type Continue struct{}

func (c *Continue) Type() ValueType { return CONTINUE_VALUE }
func (c *Continue) Inspect() string { return "continue" }

var (
	BREAK    = &Break{}
	CONTINUE = &Continue{}
)

// IsTruthy follows the language truth table: None and False are falsy,
// zero numbers and empty strings/containers are falsy, everything else is
// truthy.
func IsTruthy(v Value) bool {
	switch v := v.(type) {
	case *None:
		return false
	case *Bool:
		return v.Value
	case *Int:
		return v.Value != 0
	case *Float:
		return v.Value != 0
	case *String:
		return v.Value != ""
	case *List:
		return v.Len() > 0
	case *Dict:
		return v.Len() > 0
	case *Set:
		return v.Len() > 0
	default:
		return true
	}
}

// TypeName is the user-facing name of a value's kind, as rendered in error
// messages and returned by type().
func TypeName(v Value) string {
	switch v.Type() {
	case NONE_VALUE:
		return "None"
	case BOOL_VALUE:
		return "bool"
	case INT_VALUE:
		return "int"
	case FLOAT_VALUE:
		return "float"
	case STRING_VALUE:
		return "str"
	case LIST_VALUE:
		return "list"
	case DICT_VALUE:
		return "dict"
	case SET_VALUE:
		return "set"
	case STRUCT_TYPE_VALUE:
		return "struct"
	case STRUCT_INSTANCE_VALUE:
		if si, ok := v.(*StructInstance); ok && si.StructType != nil {
			return si.StructType.Name
		}
		return "struct instance"
	case FUNCTION_VALUE, NATIVE_FUNCTION_VALUE:
		return "function"
	case GENERATOR_VALUE:
		return "generator"
	case STREAM_VALUE:
		return "stream"
	case HTTP_RESPONSE_VALUE:
		return "http_response"
	case PROCESS_RESULT_VALUE:
		return "process_result"
	case ERROR_VALUE:
		return "error"
	default:
		return strings.ToLower(string(v.Type()))
	}
}

// NativeBool maps a Go bool onto the shared singletons.
func NativeBool(b bool) *Bool {
	if b {
		return TRUE
	}
	return FALSE
}

// Equals is deep structural equality for the script-visible kinds.
// Int and Float compare across kinds by numeric value.
func Equals(a, b Value) bool {
	switch a := a.(type) {
	case *None:
		_, ok := b.(*None)
		return ok
	case *Bool:
		bb, ok := b.(*Bool)
		return ok && a.Value == bb.Value
	case *Int:
		switch bb := b.(type) {
		case *Int:
			return a.Value == bb.Value
		case *Float:
			return float64(a.Value) == bb.Value
		}
		return false
	case *Float:
		switch bb := b.(type) {
		case *Float:
			return a.Value == bb.Value
		case *Int:
			return a.Value == float64(bb.Value)
		}
		return false
	case *String:
		bb, ok := b.(*String)
		return ok && a.Value == bb.Value
	case *List:
		bb, ok := b.(*List)
		if !ok {
			return false
		}
		as, bs := a.Snapshot(), bb.Snapshot()
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !Equals(as[i], bs[i]) {
				return false
			}
		}
		return true
	case *Dict:
		bb, ok := b.(*Dict)
		if !ok {
			return false
		}
		ap, bp := a.Pairs(), bb.Pairs()
		if len(ap) != len(bp) {
			return false
		}
		for _, pair := range ap {
			key, ok := pair.Key.(Hashable)
			if !ok {
				return false
			}
			other, found := bb.Get(key)
			if !found || !Equals(pair.Value, other) {
				return false
			}
		}
		return true
	case *Set:
		bb, ok := b.(*Set)
		if !ok {
			return false
		}
		if a.Len() != bb.Len() {
			return false
		}
		for _, item := range a.Items() {
			h, ok := item.(Hashable)
			if !ok {
				return false
			}
			if !bb.Has(h) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// AsHashable returns v as a dict/set key, rejecting unhashable kinds.
func AsHashable(v Value) (Hashable, bool) {
	h, ok := v.(Hashable)
	return h, ok
}

// inspectQuoted renders container elements: strings are quoted inside
// containers even though they render bare at top level.
func inspectQuoted(v Value) string {
	if s, ok := v.(*String); ok {
		return fmt.Sprintf("%q", s.Value)
	}
	return v.Inspect()
}
