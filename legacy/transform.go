package legacy

import (
	"fmt"
	"strings"

	ncconf "github.com/reoring/ncconf"
	"github.com/reoring/ncconf/document"
	"github.com/reoring/ncconf/schema"
	"github.com/reoring/ncconf/source"
)

// Result is the outcome of a transform. Document is Absent only when
// ParseAndTransform could not parse its input.
type Result struct {
	Document    document.Value      `json:"-" yaml:"-"`
	Mappings    []Mapping           `json:"mappings" yaml:"mappings"`
	Suggestions []ncconf.Suggestion `json:"suggestions" yaml:"suggestions"`
}

// Parsed reports whether a document was produced.
func (r Result) Parsed() bool { return !r.Document.IsAbsent() }

// Transform rewrites doc with DefaultRules. The input is never modified.
func Transform(doc document.Value) Result { return TransformWith(doc, DefaultRules) }

// TransformWith rewrites doc with a caller-supplied rule table. Steps run in
// a fixed order: flat axes are folded under axes, axis-scope rules run inside
// every axis entry, then root-scope rules run, and finally heuristic
// suggestions are derived from the input document. Transforming the output
// again yields no mappings and an equal document.
func TransformWith(doc document.Value, rs []Rule) Result {
	t := &run{}
	out := doc
	if out.Kind() == document.KindMap {
		out = t.foldAxes(out)
		out = t.relocateAxes(out, rs)
		out = t.relocate(out, nil, "", rs, ScopeRoot)
	}
	t.suggestions = append(t.suggestions, Heuristics(doc)...)
	return Result{Document: out, Mappings: t.mappings, Suggestions: t.suggestions}
}

// ParseAndTransform parses raw with parse and transforms the result. A parse
// failure yields a Result with no Document and a single error suggestion.
func ParseAndTransform(raw []byte, parse source.Parser) Result {
	doc, err := parse(raw)
	if err != nil {
		return ParseFailure(err)
	}
	return Transform(doc)
}

// ParseFailure builds the Result reported for unparseable input.
func ParseFailure(err error) Result {
	return Result{Suggestions: []ncconf.Suggestion{ncconf.Failure(
		"Failed to parse configuration: "+err.Error(),
		"Check for syntax errors such as incorrect indentation, missing colons or unbalanced brackets.",
		nil,
	)}}
}

type run struct {
	mappings    []Mapping
	suggestions []ncconf.Suggestion
}

func (t *run) info(msg, remedy string, p ncconf.Path) {
	t.suggestions = append(t.suggestions, ncconf.Info(msg, remedy, p))
}

func (t *run) warn(msg, remedy string, p ncconf.Path) {
	t.suggestions = append(t.suggestions, ncconf.Warning(msg, remedy, p))
}

// foldAxes moves top-level single-letter axis maps under axes. When
// axes.<id> already exists the two are deep-merged and the nested entry wins
// every leaf conflict.
func (t *run) foldAxes(doc document.Value) document.Value {
	axes := doc.Get("axes")
	var folded []string
	for _, id := range schema.AxisIDs {
		flat := doc.Get(id)
		if flat.Kind() != document.KindMap {
			continue
		}
		if !axes.IsAbsent() && axes.Kind() != document.KindMap {
			t.warn(fmt.Sprintf("Cannot move flat axis %s: axes is not a map", id),
				"Make axes a map keyed by axis letter.", ncconf.Path{id})
			continue
		}
		at := ncconf.Path{"axes", id}
		merged := flat
		if nested := axes.Get(id); !nested.IsAbsent() {
			var conflicts []document.MergeConflict
			merged, conflicts = document.Merge(nested, flat)
			for _, c := range conflicts {
				t.warn(fmt.Sprintf("Flat axis field %s dropped; %s is already set",
					ncconf.Path{id}.Join(c.Path), at.Join(c.Path)),
					"Remove the flat entry once the nested value is confirmed.", at.Join(c.Path))
			}
		}
		axes = axes.With(id, merged)
		doc = doc.Without(id)
		folded = append(folded, id)
		t.mappings = append(t.mappings, Mapping{
			OldPath:     id,
			NewPath:     at.String(),
			Description: fmt.Sprintf("Flat axis %s moved to %s", id, at),
		})
	}
	if len(folded) == 0 {
		return doc
	}
	targets := make([]string, len(folded))
	for i, id := range folded {
		targets[i] = "axes." + id
	}
	t.info("Converted flat axis configuration to nested axes structure",
		fmt.Sprintf("Flat axis fields (%s) have been moved to %s", strings.Join(folded, ", "), strings.Join(targets, ", ")),
		nil)
	return doc.With("axes", axes)
}

func (t *run) relocateAxes(doc document.Value, rs []Rule) document.Value {
	axes := doc.Get("axes")
	if axes.Kind() != document.KindMap {
		return doc
	}
	changed := false
	for id, av := range axes.Map().All() {
		if av.Kind() != document.KindMap {
			continue
		}
		n := len(t.suggestions)
		nv := t.relocate(av, ncconf.Path{"axes", id}, id, rs, ScopeAxis)
		if len(t.suggestions) != n {
			axes = axes.With(id, nv)
			changed = true
		}
	}
	if !changed {
		return doc
	}
	return doc.With("axes", axes)
}

// relocate applies every rule of scope to v, whose position in the document
// is base.
func (t *run) relocate(v document.Value, base ncconf.Path, axis string, rs []Rule, scope Scope) document.Value {
	for _, r := range rs {
		if r.Scope != scope {
			continue
		}
		old := ncconf.ParsePath(r.OldPath)
		val := v.Lookup(old)
		if val.IsAbsent() {
			continue
		}
		target := ncconf.ParsePath(r.NewPath)
		switch {
		case !v.Lookup(target).IsAbsent():
			v = v.DeletePath(old)
			t.warn(fmt.Sprintf("Legacy %s dropped; %s is already set", base.Join(old), base.Join(target)),
				"The canonical value was kept. Move the legacy value by hand if it was the intended one.",
				base.Join(old))
		case !placeable(v, target):
			t.warn(fmt.Sprintf("Cannot move legacy %s: %s is not a map", base.Join(old), base.Join(target[:len(target)-1])),
				"Fix the enclosing section, then import again.", base.Join(old))
		default:
			if r.Convert != nil {
				val = r.Convert(val)
			}
			v = v.DeletePath(old).SetPath(target, val)
			t.mappings = append(t.mappings, Mapping{OldPath: r.OldPath, NewPath: r.NewPath, Description: r.Description, Axis: axis})
			t.info(r.Description, "", base.Join(target))
		}
	}
	return v
}

// placeable reports whether every existing container along p's parent chain
// is a map, so SetPath would not overwrite a scalar or array.
func placeable(v document.Value, p ncconf.Path) bool {
	cur := v
	for _, seg := range p[:len(p)-1] {
		next := cur.Get(seg)
		if next.IsAbsent() {
			return true
		}
		if next.Kind() != document.KindMap {
			return false
		}
		cur = next
	}
	return true
}
