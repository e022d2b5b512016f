package document

import (
	"strconv"

	ncconf "github.com/reoring/ncconf"
)

// With returns a map value with key set to x. Non-map receivers are replaced
// by a fresh map.
func (v Value) With(key string, x Value) Value {
	return FromMap(v.Map().With(key, x))
}

// Without returns v lacking key. Non-map receivers are returned unchanged.
func (v Value) Without(key string) Value {
	if v.kind != KindMap {
		return v
	}
	return FromMap(v.m.Without(key))
}

// SetPath returns a copy of v with x stored at p. Missing or non-container
// intermediates become maps; array segments must address an existing index.
// Only the containers along p are copied.
func (v Value) SetPath(p ncconf.Path, x Value) Value {
	if len(p) == 0 {
		return x
	}
	head, rest := p[0], p[1:]
	if v.kind == KindArray {
		i, err := strconv.Atoi(head)
		if err == nil && i >= 0 && i < len(v.arr) {
			arr := append([]Value(nil), v.arr...)
			arr[i] = arr[i].SetPath(rest, x)
			if arr[i].kind == KindAbsent {
				arr[i] = Null()
			}
			return Value{kind: KindArray, arr: arr}
		}
	}
	child := v.Get(head)
	return v.With(head, child.SetPath(rest, x))
}

// DeletePath returns a copy of v without the entry at p. Paths that do not
// resolve leave v unchanged.
func (v Value) DeletePath(p ncconf.Path) Value {
	if len(p) == 0 {
		return Value{}
	}
	if len(p) == 1 {
		return v.Without(p[0])
	}
	if v.kind != KindMap || !v.Has(p[0]) {
		return v
	}
	return v.With(p[0], v.Get(p[0]).DeletePath(p[1:]))
}

// MergeConflict describes a leaf of the incoming value that lost against the
// kept value during Merge.
type MergeConflict struct {
	Path    ncconf.Path
	Kept    Value
	Dropped Value
}

// Merge deep-merges incoming into kept at map granularity. Keys only in
// incoming are appended; keys in both are merged recursively when both sides
// are maps, otherwise kept wins and the incoming value is reported as a
// conflict (identical values are not conflicts).
func Merge(kept, incoming Value) (Value, []MergeConflict) {
	var conflicts []MergeConflict
	out := merge(nil, kept, incoming, &conflicts)
	return out, conflicts
}

func merge(at ncconf.Path, kept, incoming Value, conflicts *[]MergeConflict) Value {
	switch {
	case kept.kind == KindAbsent:
		return incoming
	case incoming.kind == KindAbsent:
		return kept
	case kept.kind != KindMap || incoming.kind != KindMap:
		if !Equal(kept, incoming) {
			*conflicts = append(*conflicts, MergeConflict{Path: at, Kept: kept, Dropped: incoming})
		}
		return kept
	}
	b := builderFrom(kept.m)
	for k, iv := range incoming.m.All() {
		kv, _ := kept.m.Get(k)
		b.Set(k, merge(at.Field(k), kv, iv, conflicts))
	}
	return b.Value()
}
