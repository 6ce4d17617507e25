package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind enumerates the primitive kinds a property value can hold.
type Kind uint8

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
)

// Value is a property value: exactly one of string, int, float64 or bool.
// Nested structures are not representable by design; the resolver only ever
// writes primitives back onto entities.
type Value struct {
	kind Kind
	s    string
	i    int
	f    float64
	b    bool
}

func String(s string) Value  { return Value{kind: KindString, s: s} }
func Int(i int) Value        { return Value{kind: KindInt, i: i} }
func Float(f float64) Value  { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsString() string { return v.s }
func (v Value) AsInt() int       { return v.i }
func (v Value) AsFloat() float64 { return v.f }
func (v Value) AsBool() bool     { return v.b }

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool { return v == o }

// String renders the value the way entity descriptions show it to the
// generation backend: booleans as true/false, numbers unquoted.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.Itoa(v.i)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

// MarshalJSON emits the underlying primitive, so snapshots stay plain JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return json.Marshal(v.s)
	}
}

// UnmarshalJSON accepts any JSON primitive. Whole numbers decode as ints,
// matching how map metadata and parsed backend output are coerced.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case string:
		*v = String(t)
	case bool:
		*v = Bool(t)
	case float64:
		if t == float64(int(t)) {
			*v = Int(int(t))
		} else {
			*v = Float(t)
		}
	default:
		return fmt.Errorf("unsupported property value %s", string(data))
	}
	return nil
}
