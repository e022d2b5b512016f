// Package diff computes structural differences between two documents for
// change review.
package diff

import (
	"strings"

	ncconf "github.com/reoring/ncconf"
	"github.com/reoring/ncconf/document"
)

// Kind classifies a change.
type Kind uint8

const (
	Added Kind = iota + 1
	Removed
	Changed
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Changed:
		return "changed"
	}
	return "unknown"
}

// MarshalText renders the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Change is one difference. Old is Absent for Added, New is Absent for
// Removed.
type Change struct {
	Path ncconf.Path    `json:"path" yaml:"path"`
	Kind Kind           `json:"type" yaml:"type"`
	Old  document.Value `json:"oldValue,omitzero" yaml:"oldValue,omitempty"`
	New  document.Value `json:"newValue,omitzero" yaml:"newValue,omitempty"`
}

// Diff compares before and after. Maps are compared by key regardless of
// order, arrays by position. Null is a value: null to 1 is a change, not an
// addition. Changes come out in depth-first order, keys of before first.
func Diff(before, after document.Value) []Change {
	var out []Change
	compare(&out, nil, before, after)
	return out
}

func compare(out *[]Change, at ncconf.Path, a, b document.Value) {
	switch {
	case a.IsAbsent() && b.IsAbsent():
		return
	case a.IsAbsent():
		*out = append(*out, Change{Path: at, Kind: Added, New: b})
		return
	case b.IsAbsent():
		*out = append(*out, Change{Path: at, Kind: Removed, Old: a})
		return
	case a.Kind() != b.Kind():
		*out = append(*out, Change{Path: at, Kind: Changed, Old: a, New: b})
		return
	}
	switch a.Kind() {
	case document.KindArray:
		n := max(a.Len(), b.Len())
		for i := range n {
			compare(out, at.Index(i), a.At(i), b.At(i))
		}
	case document.KindMap:
		for k, av := range a.Map().All() {
			compare(out, at.Field(k), av, b.Get(k))
		}
		for k, bv := range b.Map().All() {
			if !a.Has(k) {
				compare(out, at.Field(k), document.Value{}, bv)
			}
		}
	default:
		if !document.Equal(a, b) {
			*out = append(*out, Change{Path: at, Kind: Changed, Old: a, New: b})
		}
	}
}

// Invert returns the changes that undo cs: added and removed swap, old and
// new swap.
func Invert(cs []Change) []Change {
	out := make([]Change, len(cs))
	for i, c := range cs {
		inv := Change{Path: c.Path, Kind: c.Kind, Old: c.New, New: c.Old}
		switch c.Kind {
		case Added:
			inv.Kind = Removed
		case Removed:
			inv.Kind = Added
		}
		out[i] = inv
	}
	return out
}

// FormatPath joins segments with dots; the root renders as "(root)".
func FormatPath(p ncconf.Path) string { return p.String() }

// FormatValue renders a value for display: strings quoted, arrays inline,
// maps as indented JSON.
func FormatValue(v document.Value) string {
	switch v.Kind() {
	case document.KindAbsent:
		return "undefined"
	case document.KindString:
		s, _ := v.AsString()
		return `"` + s + `"`
	case document.KindArray:
		parts := make([]string, v.Len())
		for i, it := range v.Items() {
			parts[i] = FormatValue(it)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case document.KindMap:
		b, err := document.MarshalIndentJSON(v, "", "  ")
		if err != nil {
			return v.String()
		}
		return string(b)
	}
	return v.String()
}

// Format renders one change as a review line: "+ path: new", "- path: old"
// or "~ path: old -> new".
func Format(c Change) string {
	p := FormatPath(c.Path)
	switch c.Kind {
	case Added:
		return "+ " + p + ": " + FormatValue(c.New)
	case Removed:
		return "- " + p + ": " + FormatValue(c.Old)
	}
	return "~ " + p + ": " + FormatValue(c.Old) + " -> " + FormatValue(c.New)
}
