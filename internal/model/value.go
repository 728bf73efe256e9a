package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Kind discriminates the variants of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

// Value is a tagged union for free-form attribute data:
// string | number | bool | list of Value | string-keyed map of Value | null.
// The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []Value
	obj  map[string]Value
}

// Attributes is a free-form attribute bag keyed by field name.
type Attributes map[string]Value

func String(s string) Value  { return Value{kind: KindString, str: s} }
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Null() Value            { return Value{} }

// List builds a list Value preserving element order.
func List(vs ...Value) Value { return Value{kind: KindList, list: vs} }

// Map builds a map Value from the given entries.
func Map(m map[string]Value) Value { return Value{kind: KindMap, obj: m} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is the null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string payload and whether the value is a string.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the numeric payload and whether the value is a number.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the bool payload and whether the value is a bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsList returns the list payload and whether the value is a list.
func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

// AsMap returns the map payload and whether the value is a map.
func (v Value) AsMap() (map[string]Value, bool) { return v.obj, v.kind == KindMap }

// StringOr reads a string attribute, falling back to def when the key is
// absent or not a string.
func (a Attributes) StringOr(key, def string) string {
	if s, ok := a[key].AsString(); ok {
		return s
	}
	return def
}

// Keys returns the attribute keys sorted ascending, for deterministic
// iteration.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Interface converts the value to the plain-JSON Go shape
// (string, float64, bool, []any, map[string]any, nil).
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.obj))
		for k, e := range v.obj {
			out[k] = e.Interface()
		}
		return out
	default:
		return nil
	}
}

// FromInterface builds a Value from a plain-JSON Go shape. Integer types
// are widened to float64 the way encoding/json decodes them.
func FromInterface(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case []any:
		list := make([]Value, len(t))
		for i, e := range t {
			v, err := FromInterface(e)
			if err != nil {
				return Null(), err
			}
			list[i] = v
		}
		return List(list...), nil
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			v, err := FromInterface(e)
			if err != nil {
				return Null(), err
			}
			m[k] = v
		}
		return Map(m), nil
	default:
		return Null(), fmt.Errorf("unsupported attribute value type %T", x)
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FromInterface(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// EncodeAttributes serializes an attribute bag to its JSON storage form.
// A nil bag encodes as "{}" so the data column never holds NULL.
func EncodeAttributes(a Attributes) (string, error) {
	if a == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeAttributes parses the JSON storage form of an attribute bag.
// Empty input decodes to an empty bag.
func DecodeAttributes(raw string) (Attributes, error) {
	if raw == "" {
		return Attributes{}, nil
	}
	var a Attributes
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, err
	}
	if a == nil {
		a = Attributes{}
	}
	return a, nil
}
