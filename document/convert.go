package document

import (
	"fmt"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
)

// FromAny converts Go values produced by generic decoders (map[string]any,
// []any, json.Number, numeric kinds) into a Value. Go maps have no order, so
// their keys are sorted to keep the result deterministic.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case *Map:
		return FromMap(t), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return Number(float64(t)), nil
	case uint8:
		return Number(float64(t)), nil
	case uint16:
		return Number(float64(t)), nil
	case uint32:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case json.Number:
		f, err := strconv.ParseFloat(string(t), 64)
		if err != nil {
			return Value{}, fmt.Errorf("document: number %q: %w", string(t), err)
		}
		return Number(f), nil
	case []any:
		arr := make([]Value, len(t))
		for i, it := range t {
			v, err := FromAny(it)
			if err != nil {
				return Value{}, err
			}
			arr[i] = v
		}
		return Value{kind: KindArray, arr: arr}, nil
	case []Value:
		return Array(t...), nil
	case []string:
		arr := make([]Value, len(t))
		for i, s := range t {
			arr[i] = String(s)
		}
		return Value{kind: KindArray, arr: arr}, nil
	case []map[string]any: // TOML arrays of tables
		arr := make([]Value, len(t))
		for i, m := range t {
			v, err := FromAny(m)
			if err != nil {
				return Value{}, err
			}
			arr[i] = v
		}
		return Value{kind: KindArray, arr: arr}, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b := NewBuilder()
		for _, k := range keys {
			v, err := FromAny(t[k])
			if err != nil {
				return Value{}, err
			}
			b.Set(k, v)
		}
		return b.Value(), nil
	case map[any]any:
		conv := make(map[string]any, len(t))
		for k, v := range t {
			conv[fmt.Sprint(k)] = v
		}
		return FromAny(conv)
	}
	return Value{}, fmt.Errorf("document: unsupported type %T", x)
}

// MustFromAny is FromAny for static fixtures; it panics on error.
func MustFromAny(x any) Value {
	v, err := FromAny(x)
	if err != nil {
		panic(err)
	}
	return v
}

// ToAny converts v into plain Go values. Key order is lost; Absent becomes nil.
func (v Value) ToAny() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i, it := range v.arr {
			out[i] = it.ToAny()
		}
		return out
	case KindMap:
		out := make(map[string]any, v.m.Len())
		for k, it := range v.m.All() {
			out[k] = it.ToAny()
		}
		return out
	}
	return nil
}
