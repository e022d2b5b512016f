package schema

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	ncconf "github.com/reoring/ncconf"
	"github.com/reoring/ncconf/document"
	"github.com/reoring/ncconf/i18n"
)

// Schema checks one Document node. Check never fails on keys it does not
// know; it only reports issues for recognized fields.
type Schema interface {
	Check(ctx context.Context, v document.Value, at ncconf.Path) ncconf.Issues
	// TypeName is the expected kind used in invalid_type messages.
	TypeName() string
}

// received names a value kind the way invalid_type messages expect it.
func received(v document.Value) string {
	switch v.Kind() {
	case document.KindAbsent:
		return "undefined"
	case document.KindMap:
		return "object"
	case document.KindNumber:
		if n, _ := v.AsNumber(); math.IsNaN(n) {
			return "nan"
		}
	}
	return v.Kind().String()
}

func typeIssue(at ncconf.Path, expected string, v document.Value) ncconf.Issue {
	got := received(v)
	return at.IssueAt(ncconf.CodeInvalidType,
		i18n.T(ncconf.CodeInvalidType, map[string]string{"expected": expected, "got": got}),
		"expected", expected, "got", got)
}

// ---- object ----

type objRefine struct {
	name string
	fn   func(context.Context, document.Value) ncconf.Issues
}

type objectBuilder struct {
	order    []string
	fields   map[string]Schema
	required map[string]struct{}
	refines  []objRefine
	err      error
}

type fieldStep struct {
	b    *objectBuilder
	name string
}

// Object creates a new object builder. Objects are open: keys without a
// registered field pass through untouched.
func Object() *objectBuilder {
	return &objectBuilder{fields: map[string]Schema{}, required: map[string]struct{}{}}
}

// Field registers a field with its schema.
func (b *objectBuilder) Field(name string, s Schema) *fieldStep {
	if _, dup := b.fields[name]; dup && b.err == nil {
		b.err = fmt.Errorf("schema: field %q registered twice", name)
	}
	if s == nil && b.err == nil {
		b.err = fmt.Errorf("schema: field %q has nil schema", name)
	}
	if _, dup := b.fields[name]; !dup {
		b.order = append(b.order, name)
	}
	b.fields[name] = s
	return &fieldStep{b: b, name: name}
}

// Required marks the field as required and returns the builder.
func (f *fieldStep) Required() *objectBuilder {
	f.b.required[f.name] = struct{}{}
	return f.b
}

// Optional marks the field as optional (default) and returns the builder.
func (f *fieldStep) Optional() *objectBuilder {
	delete(f.b.required, f.name)
	return f.b
}

func (f *fieldStep) Field(name string, s Schema) *fieldStep { return f.b.Field(name, s) }
func (f *fieldStep) Refine(name string, fn func(context.Context, document.Value) ncconf.Issues) *objectBuilder {
	return f.b.Refine(name, fn)
}
func (f *fieldStep) Build() (*ObjectSchema, error) { return f.b.Build() }
func (f *fieldStep) MustBuild() *ObjectSchema      { return f.b.MustBuild() }

// Refine adds an object-level rule run after the field checks succeed. Issue
// paths returned by fn are relative to the object.
func (b *objectBuilder) Refine(name string, fn func(context.Context, document.Value) ncconf.Issues) *objectBuilder {
	if fn == nil {
		return b
	}
	b.refines = append(b.refines, objRefine{name: name, fn: fn})
	return b
}

// Build finalizes the object schema.
func (b *objectBuilder) Build() (*ObjectSchema, error) {
	if b.err != nil {
		return nil, b.err
	}
	req := make([]string, 0, len(b.required))
	for n := range b.required {
		if _, ok := b.fields[n]; !ok {
			return nil, fmt.Errorf("schema: required field %q is not registered", n)
		}
		req = append(req, n)
	}
	sort.Strings(req)
	return &ObjectSchema{order: b.order, fields: b.fields, required: req, refines: b.refines}, nil
}

// MustBuild is Build for package-level tables; it panics on a malformed
// definition.
func (b *objectBuilder) MustBuild() *ObjectSchema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// ObjectSchema validates a map with a fixed set of recognized fields.
type ObjectSchema struct {
	order    []string
	fields   map[string]Schema
	required []string
	refines  []objRefine
}

func (*ObjectSchema) TypeName() string { return "object" }

// FieldNames lists the recognized fields in registration order.
func (s *ObjectSchema) FieldNames() []string { return append([]string(nil), s.order...) }

// FieldSchema returns the schema registered for name.
func (s *ObjectSchema) FieldSchema(name string) (Schema, bool) {
	f, ok := s.fields[name]
	return f, ok
}

func (s *ObjectSchema) Check(ctx context.Context, v document.Value, at ncconf.Path) ncconf.Issues {
	if v.Kind() != document.KindMap {
		return ncconf.Issues{typeIssue(at, "object", v)}
	}
	var iss ncconf.Issues
	failFast := ncconf.IsFailFast(ctx)
	for _, name := range s.required {
		if !v.Has(name) {
			p := at.Field(name)
			iss = ncconf.AppendIssues(iss, p.IssueAt(ncconf.CodeRequired, i18n.T(ncconf.CodeRequired, nil)))
			if failFast {
				return iss
			}
		}
	}
	// Walk in document order so issue order follows the input.
	for key, child := range v.Map().All() {
		fs, ok := s.fields[key]
		if !ok {
			continue
		}
		if sub := fs.Check(ctx, child, at.Field(key)); len(sub) > 0 {
			iss = ncconf.AppendIssues(iss, sub...)
			if failFast {
				return iss
			}
		}
	}
	if len(iss) > 0 {
		return iss
	}
	for _, r := range s.refines {
		if sub := r.fn(ctx, v); len(sub) > 0 {
			iss = ncconf.AppendIssues(iss, sub.Rebase(at)...)
			if failFast {
				return iss
			}
		}
	}
	return iss
}

// ---- entries (record) ----

// EntriesSchema validates every value of an open-keyed map against one
// element schema.
type EntriesSchema struct {
	elem  Schema
	loose bool
}

// Entries builds a record schema: every value must satisfy elem.
func Entries(elem Schema) *EntriesSchema { return &EntriesSchema{elem: elem} }

// LooseValues makes entries whose value is not a map pass through unchecked.
// The uart section uses this for channel-independent settings.
func (s *EntriesSchema) LooseValues() *EntriesSchema {
	return &EntriesSchema{elem: s.elem, loose: true}
}

// Elem returns the element schema.
func (s *EntriesSchema) Elem() Schema { return s.elem }

func (*EntriesSchema) TypeName() string { return "object" }

func (s *EntriesSchema) Check(ctx context.Context, v document.Value, at ncconf.Path) ncconf.Issues {
	if v.Kind() != document.KindMap {
		return ncconf.Issues{typeIssue(at, "object", v)}
	}
	var iss ncconf.Issues
	for key, child := range v.Map().All() {
		if s.loose && child.Kind() != document.KindMap {
			continue
		}
		if sub := s.elem.Check(ctx, child, at.Field(key)); len(sub) > 0 {
			iss = ncconf.AppendIssues(iss, sub...)
			if ncconf.IsFailFast(ctx) {
				return iss
			}
		}
	}
	return iss
}

// ---- array ----

type ArraySchema struct {
	elem     Schema
	min, max int
}

// Array validates a sequence whose items all satisfy elem.
func Array(elem Schema) *ArraySchema { return &ArraySchema{elem: elem, max: -1} }

// MinItems requires at least n items.
func (s *ArraySchema) MinItems(n int) *ArraySchema { c := *s; c.min = n; return &c }

// MaxItems allows at most n items.
func (s *ArraySchema) MaxItems(n int) *ArraySchema { c := *s; c.max = n; return &c }

func (*ArraySchema) TypeName() string { return "array" }

func (s *ArraySchema) Check(ctx context.Context, v document.Value, at ncconf.Path) ncconf.Issues {
	if v.Kind() != document.KindArray {
		return ncconf.Issues{typeIssue(at, "array", v)}
	}
	n := v.Len()
	if n < s.min {
		return ncconf.Issues{at.IssueAt(ncconf.CodeTooSmall,
			i18n.T(ncconf.CodeTooSmall, map[string]string{"min": fmt.Sprint(s.min), "inclusive": "true"}), "min", s.min, "got", n)}
	}
	if s.max >= 0 && n > s.max {
		return ncconf.Issues{at.IssueAt(ncconf.CodeTooBig,
			i18n.T(ncconf.CodeTooBig, map[string]string{"max": fmt.Sprint(s.max), "inclusive": "true"}), "max", s.max, "got", n)}
	}
	var iss ncconf.Issues
	for i, it := range v.Items() {
		if sub := s.elem.Check(ctx, it, at.Index(i)); len(sub) > 0 {
			iss = ncconf.AppendIssues(iss, sub...)
			if ncconf.IsFailFast(ctx) {
				return iss
			}
		}
	}
	return iss
}

// ---- scalars ----

type stringSchema struct{ role string }

// String accepts any string.
func String() Schema { return stringSchema{} }

// Pin accepts a pin identifier string. The grammar itself (gpio.N, i2so.N,
// attribute suffixes, NO_PIN) is checked by the pins package, which knows the
// target board.
func Pin() Schema { return stringSchema{role: "pin"} }

func (stringSchema) TypeName() string { return "string" }

// IsPin reports whether s was declared with Pin.
func IsPin(s Schema) bool {
	ss, ok := s.(stringSchema)
	return ok && ss.role == "pin"
}

func (stringSchema) Check(_ context.Context, v document.Value, at ncconf.Path) ncconf.Issues {
	if v.Kind() != document.KindString {
		return ncconf.Issues{typeIssue(at, "string", v)}
	}
	return nil
}

type boolSchema struct{}

// Bool accepts true or false.
func Bool() Schema { return boolSchema{} }

func (boolSchema) TypeName() string { return "boolean" }

func (boolSchema) Check(_ context.Context, v document.Value, at ncconf.Path) ncconf.Issues {
	if v.Kind() != document.KindBool {
		return ncconf.Issues{typeIssue(at, "boolean", v)}
	}
	return nil
}

type enumSchema struct{ values []string }

// Enum accepts one of the listed strings (case-sensitive).
func Enum(values ...string) Schema { return enumSchema{values: values} }

func (enumSchema) TypeName() string { return "string" }

func (s enumSchema) Check(_ context.Context, v document.Value, at ncconf.Path) ncconf.Issues {
	str, ok := v.AsString()
	if !ok {
		return ncconf.Issues{typeIssue(at, "string", v)}
	}
	for _, allowed := range s.values {
		if str == allowed {
			return nil
		}
	}
	expected := "'" + strings.Join(s.values, "' | '") + "'"
	return ncconf.Issues{at.IssueAt(ncconf.CodeInvalidEnum,
		i18n.T(ncconf.CodeInvalidEnum, map[string]string{"expected": expected, "got": str}),
		"options", s.values, "got", str)}
}

// NumberSchema checks finite numbers with optional bounds. Builders return
// copies so partially configured schemas can be shared.
type NumberSchema struct {
	min, max         float64
	hasMin, hasMax   bool
	minExcl, maxExcl bool
	integer          bool
	powerOfTwo       bool
}

// Number accepts any finite number.
func Number() *NumberSchema { return &NumberSchema{} }

// Positive requires > 0.
func (s *NumberSchema) Positive() *NumberSchema {
	c := *s
	c.min, c.hasMin, c.minExcl = 0, true, true
	return &c
}

// NonNegative requires >= 0.
func (s *NumberSchema) NonNegative() *NumberSchema { return s.Min(0) }

// Min requires >= n.
func (s *NumberSchema) Min(n float64) *NumberSchema {
	c := *s
	c.min, c.hasMin, c.minExcl = n, true, false
	return &c
}

// Max requires <= n.
func (s *NumberSchema) Max(n float64) *NumberSchema {
	c := *s
	c.max, c.hasMax, c.maxExcl = n, true, false
	return &c
}

// Int requires an integral value.
func (s *NumberSchema) Int() *NumberSchema { c := *s; c.integer = true; return &c }

// PowerOfTwo requires 1, 2, 4, 8, ...
func (s *NumberSchema) PowerOfTwo() *NumberSchema { c := *s; c.powerOfTwo = true; return &c }

func (*NumberSchema) TypeName() string { return "number" }

func (s *NumberSchema) Check(_ context.Context, v document.Value, at ncconf.Path) ncconf.Issues {
	n, ok := v.AsNumber()
	if !ok {
		return ncconf.Issues{typeIssue(at, "number", v)}
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return ncconf.Issues{at.IssueAt(ncconf.CodeNotFinite, i18n.T(ncconf.CodeNotFinite, nil), "got", document.FormatNumber(n))}
	}
	if s.integer && n != math.Trunc(n) {
		return ncconf.Issues{typeIssue(at, "integer", document.Number(n))}
	}
	if s.hasMin && (n < s.min || (s.minExcl && n == s.min)) {
		data := map[string]string{"min": document.FormatNumber(s.min)}
		if !s.minExcl {
			data["inclusive"] = "true"
		}
		return ncconf.Issues{at.IssueAt(ncconf.CodeTooSmall, i18n.T(ncconf.CodeTooSmall, data),
			"min", s.min, "inclusive", !s.minExcl, "got", n)}
	}
	if s.hasMax && (n > s.max || (s.maxExcl && n == s.max)) {
		data := map[string]string{"max": document.FormatNumber(s.max)}
		if !s.maxExcl {
			data["inclusive"] = "true"
		}
		return ncconf.Issues{at.IssueAt(ncconf.CodeTooBig, i18n.T(ncconf.CodeTooBig, data),
			"max", s.max, "inclusive", !s.maxExcl, "got", n)}
	}
	if s.powerOfTwo && !isPowerOfTwo(n) {
		return ncconf.Issues{at.IssueAt(ncconf.CodeNotPowerOfTwo, i18n.T(ncconf.CodeNotPowerOfTwo, nil), "got", n)}
	}
	return nil
}

func isPowerOfTwo(n float64) bool {
	if n < 1 || n != math.Trunc(n) || n > 1<<52 {
		return false
	}
	u := uint64(n)
	return u&(u-1) == 0
}
