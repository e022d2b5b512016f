package document

import "math"

// Equal reports deep equality. Map comparison ignores key order; NaN equals
// NaN so that a document always equals itself.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindAbsent, KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		if math.IsNaN(a.n) || math.IsNaN(b.n) {
			return math.IsNaN(a.n) && math.IsNaN(b.n)
		}
		return a.n == b.n
	case KindString:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if a.m.Len() != b.m.Len() {
			return false
		}
		for k, av := range a.m.All() {
			bv, ok := b.m.Get(k)
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}

// SameOrder reports whether two equal documents also agree on key order at
// every level.
func SameOrder(a, b Value) bool {
	if !Equal(a, b) {
		return false
	}
	switch a.kind {
	case KindArray:
		for i := range a.arr {
			if !SameOrder(a.arr[i], b.arr[i]) {
				return false
			}
		}
	case KindMap:
		if len(a.m.keys) != len(b.m.keys) {
			return false
		}
		for i, k := range a.m.keys {
			if b.m.keys[i] != k || !SameOrder(a.m.vals[k], b.m.vals[k]) {
				return false
			}
		}
	}
	return true
}
