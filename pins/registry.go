package pins

import (
	"iter"
	"strings"

	ncconf "github.com/reoring/ncconf"
	"github.com/reoring/ncconf/document"
	"github.com/reoring/ncconf/schema"
)

// sections are walked in this order; within a section fields follow schema
// registration order, while axis ids and uart channels follow the document.
var sections = []string{"io", "axes", "spindle", "control", "uart", "sd"}

// Assignments maps pin keys to the dotted paths of the fields claiming them.
// Pins keep first-seen order.
type Assignments struct {
	pins []string
	by   map[string][]string
}

func newAssignments() *Assignments {
	return &Assignments{by: map[string][]string{}}
}

func (a *Assignments) add(key, field string) {
	if _, ok := a.by[key]; !ok {
		a.pins = append(a.pins, key)
	}
	a.by[key] = append(a.by[key], field)
}

// Len returns the number of distinct pins.
func (a *Assignments) Len() int { return len(a.pins) }

// Pins lists the pin keys in first-seen order.
func (a *Assignments) Pins() []string { return append([]string(nil), a.pins...) }

// UsedBy returns the claimants of pin. The argument is normalized with Key.
func (a *Assignments) UsedBy(pin string) []string {
	return append([]string(nil), a.by[Key(pin)]...)
}

// All iterates pins and their claimants in first-seen order.
func (a *Assignments) All() iter.Seq2[string, []string] {
	return func(yield func(string, []string) bool) {
		for _, p := range a.pins {
			if !yield(p, append([]string(nil), a.by[p]...)) {
				return
			}
		}
	}
}

// Map returns a plain copy of the index.
func (a *Assignments) Map() map[string][]string {
	out := make(map[string][]string, len(a.by))
	for p, fs := range a.by {
		out[p] = append([]string(nil), fs...)
	}
	return out
}

// ExtractAllPinAssignments walks every pin-bearing field of doc and builds the
// reverse index. Recognized pin fields come from the canonical schema; unknown
// keys ending in "_pin" inside recognized blocks are indexed too. Blank values,
// NO_PIN and non-string values are skipped.
func ExtractAllPinAssignments(doc document.Value) *Assignments {
	a := newAssignments()
	for _, sec := range sections {
		s, ok := schema.Lookup(ncconf.Path{sec})
		if !ok {
			continue
		}
		walk(a, s, doc.Get(sec), ncconf.Path{sec})
	}
	return a
}

func walk(a *Assignments, s schema.Schema, v document.Value, at ncconf.Path) {
	if v.Kind() != document.KindMap {
		return
	}
	switch s := s.(type) {
	case *schema.ObjectSchema:
		for _, name := range s.FieldNames() {
			fs, _ := s.FieldSchema(name)
			child := v.Get(name)
			if schema.IsPin(fs) {
				claim(a, child, at.Field(name))
				continue
			}
			walk(a, fs, child, at.Field(name))
		}
		for key, child := range v.Map().All() {
			if _, known := s.FieldSchema(key); !known && strings.HasSuffix(key, "_pin") {
				claim(a, child, at.Field(key))
			}
		}
	case *schema.EntriesSchema:
		for key, child := range v.Map().All() {
			walk(a, s.Elem(), child, at.Field(key))
		}
	}
}

func claim(a *Assignments, v document.Value, at ncconf.Path) {
	s, ok := v.AsString()
	if !ok {
		return
	}
	if key := Key(s); key != "" {
		a.add(key, at.String())
	}
}

// GetPinConflicts returns the pins claimed by two or more fields.
func GetPinConflicts(doc document.Value) *Assignments {
	return conflicts(ExtractAllPinAssignments(doc))
}

func conflicts(all *Assignments) *Assignments {
	out := newAssignments()
	for _, p := range all.pins {
		if fs := all.by[p]; len(fs) > 1 {
			for _, f := range fs {
				out.add(p, f)
			}
		}
	}
	return out
}

// ConflictIssues renders each conflicting pin as one conflict issue, placed at
// the second claimant (the field that introduced the collision).
func ConflictIssues(c *Assignments) ncconf.Issues {
	var out ncconf.Issues
	for pin, fs := range c.All() {
		if len(fs) < 2 {
			continue
		}
		out = append(out, ncconf.ParsePath(fs[1]).IssueAt(ncconf.CodeConflict,
			"Pin conflict: "+pin+" used by "+strings.Join(fs, ", "), "pin", pin, "used_by", fs))
	}
	return out
}

// MarshalJSON renders the index as an object of pin to claimant list, in
// first-seen order.
func (a *Assignments) MarshalJSON() ([]byte, error) {
	b := document.NewBuilder()
	for _, p := range a.pins {
		fs := make([]document.Value, len(a.by[p]))
		for i, f := range a.by[p] {
			fs[i] = document.String(f)
		}
		b.Set(p, document.Array(fs...))
	}
	return b.Value().MarshalJSON()
}
