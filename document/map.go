package document

import (
	"iter"
	"slices"
)

// Map is an immutable, insertion-ordered string-keyed map of Values.
type Map struct {
	keys []string
	vals map[string]Value
}

var emptyMap = &Map{vals: map[string]Value{}}

// Len returns the number of keys. A nil Map is empty.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// Get returns the value under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.vals[key]
	return v, ok
}

// All iterates entries in insertion order.
func (m *Map) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.vals[k]) {
				return
			}
		}
	}
}

// With returns a copy with key set to v. An existing key keeps its position;
// a new key is appended. Setting Absent is equivalent to Without.
func (m *Map) With(key string, v Value) *Map {
	if v.kind == KindAbsent {
		return m.Without(key)
	}
	b := builderFrom(m)
	b.Set(key, v)
	return b.Map()
}

// Without returns a copy lacking key. The receiver is returned unchanged when
// key is missing.
func (m *Map) Without(key string) *Map {
	if _, ok := m.Get(key); !ok {
		return m
	}
	out := &Map{keys: make([]string, 0, len(m.keys)-1), vals: make(map[string]Value, len(m.vals)-1)}
	for _, k := range m.keys {
		if k == key {
			continue
		}
		out.keys = append(out.keys, k)
		out.vals[k] = m.vals[k]
	}
	return out
}

// Builder accumulates entries for a new Map. A Builder must not be used after
// Map or Value has been called.
type Builder struct {
	m    *Map
	done bool
}

// NewBuilder starts an empty Map.
func NewBuilder() *Builder {
	return &Builder{m: &Map{vals: map[string]Value{}}}
}

func builderFrom(src *Map) *Builder {
	b := &Builder{m: &Map{
		keys: make([]string, 0, src.Len()+1),
		vals: make(map[string]Value, src.Len()+1),
	}}
	for k, v := range src.All() {
		b.Set(k, v)
	}
	return b
}

// Set assigns key. Re-setting an existing key keeps its original position.
// Absent values delete the key.
func (b *Builder) Set(key string, v Value) *Builder {
	if b.done {
		panic("document.Builder: Set after Map")
	}
	if v.kind == KindAbsent {
		if _, ok := b.m.vals[key]; ok {
			delete(b.m.vals, key)
			b.m.keys = slices.DeleteFunc(b.m.keys, func(k string) bool { return k == key })
		}
		return b
	}
	if _, ok := b.m.vals[key]; !ok {
		b.m.keys = append(b.m.keys, key)
	}
	b.m.vals[key] = v
	return b
}

// Has reports whether key has been set.
func (b *Builder) Has(key string) bool {
	_, ok := b.m.vals[key]
	return ok
}

// Map finalizes the builder.
func (b *Builder) Map() *Map {
	b.done = true
	return b.m
}

// Value finalizes the builder as a Map value.
func (b *Builder) Value() Value { return FromMap(b.Map()) }
