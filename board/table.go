package board

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
)

//go:embed boards.toml
var builtinTOML []byte

// Table is an immutable set of descriptors keyed by id, in load order. It is
// never mutated after construction, so concurrent lookups need no locking.
// Returned descriptors are shared and must be treated as read-only.
type Table struct {
	ids  []string
	byID map[string]*Descriptor
}

// NewTable builds a table. Ids must be non-empty and unique
// (case-insensitive).
func NewTable(ds ...Descriptor) (*Table, error) {
	return (&Table{}).With(ds...)
}

// With returns a new table holding t's descriptors plus ds. A descriptor in ds
// whose id already exists in t replaces it in place; duplicates within ds are
// an error.
func (t *Table) With(ds ...Descriptor) (*Table, error) {
	out := &Table{
		ids:  append([]string(nil), t.ids...),
		byID: make(map[string]*Descriptor, len(t.byID)+len(ds)),
	}
	for k, v := range t.byID {
		out.byID[k] = v
	}
	added := map[string]bool{}
	for i := range ds {
		d := ds[i]
		key := strings.ToLower(strings.TrimSpace(d.ID))
		if key == "" {
			return nil, fmt.Errorf("board: descriptor %d has an empty id", i)
		}
		if added[key] {
			return nil, fmt.Errorf("board: duplicate id %q", d.ID)
		}
		added[key] = true
		if _, exists := out.byID[key]; !exists {
			out.ids = append(out.ids, key)
		}
		out.byID[key] = &d
	}
	return out, nil
}

// Default returns the built-in table, decoded from the embedded boards.toml
// on first use.
var Default = sync.OnceValue(func() *Table {
	ds, err := LoadTOML(builtinTOML)
	if err != nil {
		panic(fmt.Errorf("board: built-in table: %w", err))
	}
	t, err := NewTable(ds...)
	if err != nil {
		panic(fmt.Errorf("board: built-in table: %w", err))
	}
	return t
})

// Get returns the descriptor with the given id (case-insensitive).
func (t *Table) Get(id string) (*Descriptor, bool) {
	d, ok := t.byID[strings.ToLower(strings.TrimSpace(id))]
	return d, ok
}

// FindByName returns the first descriptor whose display name matches
// (case-insensitive).
func (t *Table) FindByName(name string) (*Descriptor, bool) {
	for _, id := range t.ids {
		if d := t.byID[id]; strings.EqualFold(d.Name, strings.TrimSpace(name)) {
			return d, true
		}
	}
	return nil, false
}

// Resolve finds a board by id first, then by display name. Documents carry
// either form in their board field.
func (t *Table) Resolve(ref string) (*Descriptor, bool) {
	if d, ok := t.Get(ref); ok {
		return d, true
	}
	return t.FindByName(ref)
}

// IDs lists the ids in table order.
func (t *Table) IDs() []string { return append([]string(nil), t.ids...) }

// All lists the descriptors in table order.
func (t *Table) All() []*Descriptor {
	out := make([]*Descriptor, len(t.ids))
	for i, id := range t.ids {
		out[i] = t.byID[id]
	}
	return out
}

// Len returns the number of descriptors.
func (t *Table) Len() int { return len(t.ids) }
