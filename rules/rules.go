// Package rules provides reusable object-level checks over Documents. Every
// constructor returns a Rule that plugs into schema.Object().Refine.
package rules

import (
	"context"

	ncconf "github.com/reoring/ncconf"
	"github.com/reoring/ncconf/document"
)

// Rule checks a Document node. Issue paths are relative to that node.
type Rule = func(context.Context, document.Value) ncconf.Issues

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Conditional composes conditional execution of rules.
type Conditional struct {
	path ncconf.Path
	op   Op
	want document.Value
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If builds a conditional that compares the node at a dotted path with want.
// want is converted with document.FromAny; an unconvertible want never holds.
func If(path string, op Op, want any) Conditional {
	w, err := document.FromAny(want)
	if err != nil {
		w = document.Value{}
	}
	return Conditional{path: ncconf.ParsePath(path), op: op, want: w}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Holds evaluates the condition against v.
func (c Conditional) Holds(v document.Value) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.Holds(v) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.Holds(v) {
				return true
			}
		}
		return false
	}
	cur := v.Lookup(c.path)
	if cur.IsAbsent() || c.want.IsAbsent() {
		return false
	}
	return compare(cur, c.op, c.want)
}

// Then attaches rules to run when the condition is satisfied.
func (c Conditional) Then(rs ...Rule) Rule {
	inner := And(rs...)
	return func(ctx context.Context, v document.Value) ncconf.Issues {
		if !c.Holds(v) {
			return nil
		}
		return inner(ctx, v)
	}
}

// Present requires the node at path to exist.
func Present(path string) Rule {
	p := ncconf.ParsePath(path)
	return func(_ context.Context, v document.Value) ncconf.Issues {
		if v.Lookup(p).IsAbsent() {
			return ncconf.Issues{p.IssueAt(ncconf.CodeRequired, "Required")}
		}
		return nil
	}
}

// AtLeastOne ensures the array at path has at least 1 element. Missing or
// non-array values are left to the field schema.
func AtLeastOne(path string) Rule {
	p := ncconf.ParsePath(path)
	return func(_ context.Context, v document.Value) ncconf.Issues {
		arr := v.Lookup(p)
		if arr.Kind() == document.KindArray && arr.Len() == 0 {
			return ncconf.Issues{p.IssueAt(ncconf.CodeTooSmall, "at least 1 item is required", "min", 1)}
		}
		return nil
	}
}

// UniqueBy ensures elements of the array at collectionPath have distinct
// values at keyPath (dotted, relative to each element). Elements without the
// key are skipped. Keys compare with document.Equal, so 2 and 2.0 collide.
func UniqueBy(collectionPath, keyPath string) Rule {
	cp := ncconf.ParsePath(collectionPath)
	kp := ncconf.ParsePath(keyPath)
	return func(_ context.Context, v document.Value) ncconf.Issues {
		arr := v.Lookup(cp)
		if arr.Kind() != document.KindArray {
			return nil
		}
		var seen []document.Value
		var first []int
		var out ncconf.Issues
		for i, elem := range arr.Items() {
			kv := elem.Lookup(kp)
			if kv.IsAbsent() {
				continue
			}
			dup := -1
			for j, s := range seen {
				if document.Equal(s, kv) {
					dup = first[j]
					break
				}
			}
			if dup >= 0 {
				out = append(out, cp.Index(i).Join(kp).IssueAt(ncconf.CodeConflict,
					"duplicate value "+kv.String(), "first", dup, "dup", i, "key", kv.String()))
				continue
			}
			seen = append(seen, kv)
			first = append(first, i)
		}
		return out
	}
}

// And executes all rules and concatenates Issues, stopping at the first
// failing rule under fail-fast.
func And(rs ...Rule) Rule {
	return func(ctx context.Context, v document.Value) ncconf.Issues {
		var out ncconf.Issues
		for _, r := range rs {
			if r == nil {
				continue
			}
			if iss := r(ctx, v); len(iss) > 0 {
				out = append(out, iss...)
				if ncconf.IsFailFast(ctx) {
					return out
				}
			}
		}
		return out
	}
}

// Or succeeds if any rule returns no Issues. When all fail it returns the
// branch with the fewest issues.
func Or(rs ...Rule) Rule {
	return func(ctx context.Context, v document.Value) ncconf.Issues {
		var best ncconf.Issues
		bestSet := false
		for _, r := range rs {
			if r == nil {
				continue
			}
			iss := r(ctx, v)
			if len(iss) == 0 {
				return nil
			}
			if !bestSet || len(iss) < len(best) {
				best = iss
				bestSet = true
			}
		}
		return best
	}
}

func compare(cur document.Value, op Op, want document.Value) bool {
	switch op {
	case Eq:
		return document.Equal(cur, want)
	case Ne:
		return !document.Equal(cur, want)
	}
	a, okA := cur.AsNumber()
	b, okB := want.AsNumber()
	if !okA || !okB {
		return false
	}
	switch op {
	case Lt:
		return a < b
	case Le:
		return a <= b
	case Gt:
		return a > b
	case Ge:
		return a >= b
	}
	return false
}
