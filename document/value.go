// Package document implements the Document tagged union shared by every
// component: Null, Bool, Number, String, Array and an insertion-ordered Map.
//
// Values are immutable. Builders such as With, SetPath and DeletePath return a
// new Value that shares untouched subtrees with the receiver, so a prior
// version always stays valid (for example as a diff baseline).
//
// The zero Value is Absent: it stands for a missing key or index and is never
// stored inside a Map or Array.
package document

import (
	"math"
	"strconv"

	ncconf "github.com/reoring/ncconf"
)

// Kind enumerates the variants of Value.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	default:
		return "absent"
	}
}

// Value is one node of a Document.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Value
	m    *Map
}

// Null returns the null scalar.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a float64. NaN and ±Inf are representable; the schema rejects them.
func Number(f float64) Value { return Value{kind: KindNumber, n: f} }

// Int wraps an integer as a Number.
func Int(i int64) Value { return Value{kind: KindNumber, n: float64(i)} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array builds a sequence. Absent elements become Null.
func Array(items ...Value) Value {
	arr := make([]Value, len(items))
	for i, it := range items {
		if it.kind == KindAbsent {
			it = Null()
		}
		arr[i] = it
	}
	return Value{kind: KindArray, arr: arr}
}

// FromMap wraps a Map. A nil map yields an empty Map value.
func FromMap(m *Map) Value {
	if m == nil {
		m = emptyMap
	}
	return Value{kind: KindMap, m: m}
}

// EmptyMap returns a Map value without keys.
func EmptyMap() Value { return FromMap(nil) }

// Object builds a Map value from alternating key/value arguments. It panics on
// malformed arguments and is intended for fixtures and static tables.
func Object(kv ...any) Value {
	if len(kv)%2 != 0 {
		panic("document.Object: odd number of arguments")
	}
	b := NewBuilder()
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic("document.Object: key must be a string")
		}
		v, err := FromAny(kv[i+1])
		if err != nil {
			panic("document.Object: " + err.Error())
		}
		b.Set(k, v)
	}
	return b.Value()
}

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v is the zero Value.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// IsNull reports whether v is the null scalar.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsScalar reports whether v is null, bool, number or string.
func (v Value) IsScalar() bool {
	return v.kind >= KindNull && v.kind <= KindString
}

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsNumber returns the numeric payload.
func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }

// AsString returns the string payload.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// Map returns the map payload, or nil when v is not a map.
func (v Value) Map() *Map {
	if v.kind != KindMap {
		return nil
	}
	return v.m
}

// Len returns the element count of arrays and maps, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindMap:
		return v.m.Len()
	}
	return 0
}

// At returns the i-th array element, or Absent when out of range.
func (v Value) At(i int) Value {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Value{}
	}
	return v.arr[i]
}

// Items returns a copy of the array elements.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return append([]Value(nil), v.arr...)
}

// Get returns the value under key, or Absent when v is not a map or lacks key.
func (v Value) Get(key string) Value {
	if v.kind != KindMap {
		return Value{}
	}
	got, _ := v.m.Get(key)
	return got
}

// Has reports whether v is a map containing key.
func (v Value) Has(key string) bool {
	if v.kind != KindMap {
		return false
	}
	_, ok := v.m.Get(key)
	return ok
}

// Lookup walks p through maps (by key) and arrays (by decimal index).
func (v Value) Lookup(p ncconf.Path) Value {
	cur := v
	for _, seg := range p {
		switch cur.kind {
		case KindMap:
			cur = cur.Get(seg)
		case KindArray:
			i, err := strconv.Atoi(seg)
			if err != nil {
				return Value{}
			}
			cur = cur.At(i)
		default:
			return Value{}
		}
		if cur.kind == KindAbsent {
			return cur
		}
	}
	return cur
}

// LookupString is Lookup followed by AsString.
func (v Value) LookupString(p ncconf.Path) (string, bool) { return v.Lookup(p).AsString() }

// IsFinite reports whether v is a finite number.
func (v Value) IsFinite() bool {
	return v.kind == KindNumber && !math.IsNaN(v.n) && !math.IsInf(v.n, 0)
}

// String renders v compactly for logs and messages.
func (v Value) String() string {
	switch v.kind {
	case KindAbsent:
		return "<absent>"
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return FormatNumber(v.n)
	case KindString:
		return strconv.Quote(v.s)
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return "<" + v.kind.String() + ">"
	}
	return string(b)
}

// FormatNumber renders integral values without exponent up to 1e21 and uses
// the shortest representation otherwise.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
