package types

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind tags the sum of value representations that may cross a pin
// boundary. Anything a node produces or consumes is one of these.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindArray
	KindMap
	KindStruct
)

// String returns the kind name used in error messages and serialized form.
func (k ValueKind) String() string {
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
	case KindBytes:
		return "bytes"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// Value is a tagged value flowing between pins. The raw representation is
// constrained by the kind: bool, int64, float64, string, []byte,
// []Value, map[string]Value or map[string]interface{} for struct blobs.
type Value struct {
	Kind ValueKind
	Raw  interface{}
}

// Null returns the null value.
func Null() Value { return Value{Kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{Kind: KindBool, Raw: b} }

// Int wraps an integer.
func Int(i int64) Value { return Value{Kind: KindInt, Raw: i} }

// Float wraps a float.
func Float(f float64) Value { return Value{Kind: KindFloat, Raw: f} }

// String wraps a string.
func String(s string) Value { return Value{Kind: KindString, Raw: s} }

// Bytes wraps a byte slice.
func Bytes(b []byte) Value { return Value{Kind: KindBytes, Raw: b} }

// Array wraps a list of values.
func Array(items []Value) Value { return Value{Kind: KindArray, Raw: items} }

// Map wraps a string-keyed map of values.
func Map(m map[string]Value) Value { return Value{Kind: KindMap, Raw: m} }

// Struct wraps a decoded struct blob. Struct blobs are schema-validated when
// the owning pin opts in.
func Struct(fields map[string]interface{}) Value {
	return Value{Kind: KindStruct, Raw: fields}
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Truthy reports how an execution token reads this value: false for null,
// false/zero/empty for the scalar kinds, true otherwise.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindBool:
		b, _ := v.Raw.(bool)
		return b
	case KindInt:
		i, _ := v.Raw.(int64)
		return i != 0
	case KindFloat:
		f, _ := v.Raw.(float64)
		return f != 0
	case KindString:
		s, _ := v.Raw.(string)
		return s != ""
	default:
		return v.Raw != nil
	}
}

// AsBool converts the value to a boolean.
func (v Value) AsBool() (bool, error) {
	switch v.Kind {
	case KindBool:
		return v.Raw.(bool), nil
	case KindNull:
		return false, nil
	case KindInt:
		return v.Raw.(int64) != 0, nil
	case KindFloat:
		return v.Raw.(float64) != 0, nil
	case KindString:
		s := v.Raw.(string)
		b, err := strconv.ParseBool(s)
		if err != nil {
			return s != "", nil
		}
		return b, nil
	default:
		return false, fmt.Errorf("cannot convert %s to bool", v.Kind)
	}
}

// AsInt converts the value to an integer.
func (v Value) AsInt() (int64, error) {
	switch v.Kind {
	case KindInt:
		return v.Raw.(int64), nil
	case KindNull:
		return 0, nil
	case KindFloat:
		return int64(v.Raw.(float64)), nil
	case KindBool:
		if v.Raw.(bool) {
			return 1, nil
		}
		return 0, nil
	case KindString:
		s := v.Raw.(string)
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert string %q to int: %w", s, err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("cannot convert %s to int", v.Kind)
	}
}

// AsFloat converts the value to a float.
func (v Value) AsFloat() (float64, error) {
	switch v.Kind {
	case KindFloat:
		return v.Raw.(float64), nil
	case KindNull:
		return 0, nil
	case KindInt:
		return float64(v.Raw.(int64)), nil
	case KindBool:
		if v.Raw.(bool) {
			return 1, nil
		}
		return 0, nil
	case KindString:
		s := v.Raw.(string)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert string %q to float: %w", s, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot convert %s to float", v.Kind)
	}
}

// AsString converts the value to a string.
func (v Value) AsString() (string, error) {
	switch v.Kind {
	case KindString:
		return v.Raw.(string), nil
	case KindNull:
		return "", nil
	case KindBool:
		return strconv.FormatBool(v.Raw.(bool)), nil
	case KindInt:
		return strconv.FormatInt(v.Raw.(int64), 10), nil
	case KindFloat:
		return strconv.FormatFloat(v.Raw.(float64), 'g', -1, 64), nil
	case KindBytes:
		return string(v.Raw.([]byte)), nil
	default:
		return fmt.Sprintf("%v", v.Raw), nil
	}
}

// AsBytes converts the value to a byte slice.
func (v Value) AsBytes() ([]byte, error) {
	switch v.Kind {
	case KindBytes:
		return v.Raw.([]byte), nil
	case KindNull:
		return nil, nil
	case KindString:
		return []byte(v.Raw.(string)), nil
	default:
		return nil, fmt.Errorf("cannot convert %s to bytes", v.Kind)
	}
}

// AsArray converts the value to a list.
func (v Value) AsArray() ([]Value, error) {
	switch v.Kind {
	case KindArray:
		if v.Raw == nil {
			return nil, nil
		}
		return v.Raw.([]Value), nil
	case KindNull:
		return nil, nil
	default:
		return nil, fmt.Errorf("cannot convert %s to array", v.Kind)
	}
}

// AsMap converts the value to a string-keyed map.
func (v Value) AsMap() (map[string]Value, error) {
	switch v.Kind {
	case KindMap:
		if v.Raw == nil {
			return map[string]Value{}, nil
		}
		return v.Raw.(map[string]Value), nil
	case KindNull:
		return map[string]Value{}, nil
	default:
		return nil, fmt.Errorf("cannot convert %s to map", v.Kind)
	}
}

// AsStruct converts the value to a struct blob.
func (v Value) AsStruct() (map[string]interface{}, error) {
	switch v.Kind {
	case KindStruct:
		if v.Raw == nil {
			return map[string]interface{}{}, nil
		}
		return v.Raw.(map[string]interface{}), nil
	case KindNull:
		return map[string]interface{}{}, nil
	default:
		return nil, fmt.Errorf("cannot convert %s to struct", v.Kind)
	}
}

// Interface returns the plain Go representation of the value, suitable for
// JSON encoding and schema validation.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindNull:
		return nil
	case KindArray:
		items, _ := v.Raw.([]Value)
		out := make([]interface{}, len(items))
		for i, item := range items {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		m, _ := v.Raw.(map[string]Value)
		out := make(map[string]interface{}, len(m))
		for k, item := range m {
			out[k] = item.Interface()
		}
		return out
	default:
		return v.Raw
	}
}

// FromInterface builds a tagged value from a plain Go value such as
// Interface returns. Integral float64 values come back as ints and
// string-keyed maps as struct blobs. Unrecognized types become struct
// blobs via a JSON round trip.
func FromInterface(raw interface{}) (Value, error) {
	switch val := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(int64(val)), nil
	case int32:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case float32:
		return Float(float64(val)), nil
	case float64:
		// json.Unmarshal decodes every number as float64; keep integral
		// values as ints so pin defaults survive a round trip.
		if val == float64(int64(val)) {
			return Int(int64(val)), nil
		}
		return Float(val), nil
	case string:
		return String(val), nil
	case []byte:
		return Bytes(val), nil
	case []interface{}:
		items := make([]Value, len(val))
		for i, item := range val {
			conv, err := FromInterface(item)
			if err != nil {
				return Null(), err
			}
			items[i] = conv
		}
		return Array(items), nil
	case map[string]interface{}:
		return Struct(val), nil
	case Value:
		return val, nil
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return Null(), fmt.Errorf("unsupported value type %T: %w", raw, err)
		}
		var fields map[string]interface{}
		if err := json.Unmarshal(data, &fields); err != nil {
			return Null(), fmt.Errorf("unsupported value type %T", raw)
		}
		return Struct(fields), nil
	}
}

// MarshalJSON encodes the plain representation.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes a plain JSON value into its tagged form.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := FromInterface(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// Equal compares two values structurally. Int and float cross comparisons
// are numeric, matching how hand-authored boards mix the two.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		if a.isNumeric() && b.isNumeric() {
			af, _ := a.AsFloat()
			bf, _ := b.AsFloat()
			return af == bf
		}
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindArray:
		as, _ := a.AsArray()
		bs, _ := b.AsArray()
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !Equal(as[i], bs[i]) {
				return false
			}
		}
		return true
	case KindMap:
		am, _ := a.AsMap()
		bm, _ := b.AsMap()
		if len(am) != len(bm) {
			return false
		}
		for k, av := range am {
			bv, ok := bm[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case KindBytes, KindStruct:
		aj, _ := json.Marshal(a)
		bj, _ := json.Marshal(b)
		return string(aj) == string(bj)
	default:
		return a.Raw == b.Raw
	}
}

func (v Value) isNumeric() bool {
	return v.Kind == KindInt || v.Kind == KindFloat || v.Kind == KindBool
}
