// Package value implements the structured-value wire format shared by the
// invocation extractor, the toolbox, and the sandbox tool.
package value

import (
	"fmt"
	"sort"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is a recursive tagged union over {null, bool, int, float, string,
// sequence<Value>, mapping<string,Value>}. It is the wire format exchanged
// between the invocation extractor, tools, and the sandbox's scripting
// bridge, so that none of those layers need to agree on a Go struct shape.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	seq  []Value
	m    map[string]Value
	keys []string // preserves mapping insertion order
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps a signed integer.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a floating point number.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Sequence wraps an ordered list of values.
func Sequence(items ...Value) Value { return Value{kind: KindSequence, seq: items} }

// NewMapping builds an empty mapping that preserves insertion order.
func NewMapping() Value {
	return Value{kind: KindMapping, m: map[string]Value{}}
}

// Mapping builds a mapping from the given key/value pairs, in order.
func Mapping(pairs ...Pair) Value {
	v := NewMapping()
	for _, p := range pairs {
		v.Set(p.Key, p.Value)
	}
	return v
}

// Pair is a single mapping entry, used by the Mapping constructor.
type Pair struct {
	Key   string
	Value Value
}

// Set inserts or replaces a key in a mapping Value. Panics if v is not a
// mapping; callers must only call this on values produced by NewMapping.
func (v *Value) Set(key string, val Value) {
	if v.kind != KindMapping {
		panic("value: Set called on non-mapping value")
	}
	if _, exists := v.m[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.m[key] = val
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) Int() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

func (v Value) Float() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

func (v Value) Seq() ([]Value, bool) {
	if v.kind != KindSequence {
		return nil, false
	}
	return v.seq, true
}

// Keys returns the mapping's keys in insertion order. Empty for non-mappings.
func (v Value) Keys() []string {
	if v.kind != KindMapping {
		return nil
	}
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

// Get looks up a key in a mapping Value.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMapping {
		return Value{}, false
	}
	val, ok := v.m[key]
	return val, ok
}

// SortedKeys returns the mapping's keys in lexical order, independent of
// insertion order; used wherever a stable, reproducible rendering is needed
// (e.g. tool descriptions).
func (v Value) SortedKeys() []string {
	keys := v.Keys()
	sort.Strings(keys)
	return keys
}

// ToGo converts a Value into a plain Go value built from
// nil/bool/int64/float64/string/[]any/map[string]any, suitable for
// round-tripping through encoding/json or gopkg.in/yaml.v3.
func (v Value) ToGo() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindSequence:
		out := make([]any, len(v.seq))
		for i, item := range v.seq {
			out[i] = item.ToGo()
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.m))
		for _, k := range v.keys {
			out[k] = v.m[k].ToGo()
		}
		return out
	default:
		return nil
	}
}

// FromGo converts a plain Go value (as produced by encoding/json or
// gopkg.in/yaml.v3 unmarshaling into `any`) into a Value. Unrecognized
// concrete types are coerced to their string form rather than rejected,
// mirroring the printed-form fallback used by the sandbox's mapping-key
// coercion rule.
func FromGo(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint64:
		return Int(int64(t))
	case float64:
		return Float(t)
	case float32:
		return Float(float64(t))
	case string:
		return String(t)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromGo(item)
		}
		return Sequence(items...)
	case map[string]any:
		v := NewMapping()
		for k, val := range t {
			v.Set(k, FromGo(val))
		}
		return v
	case map[any]any:
		v := NewMapping()
		for k, val := range t {
			v.Set(fmt.Sprint(k), FromGo(val))
		}
		return v
	default:
		return String(fmt.Sprint(t))
	}
}
