package schema

import (
	ncconf "github.com/reoring/ncconf"
	js "github.com/reoring/ncconf/jsonschema"
)

type jsonSchemer interface {
	JSONSchema() (*js.Schema, error)
}

func toJSONSchema(s Schema) (*js.Schema, error) {
	if j, ok := s.(jsonSchemer); ok {
		return j.JSONSchema()
	}
	return &js.Schema{}, nil
}

// JSONSchema projects the object. Unknown keys pass validation, so
// additionalProperties is always true.
func (s *ObjectSchema) JSONSchema() (*js.Schema, error) {
	props := make(map[string]*js.Schema, len(s.fields))
	for _, name := range s.order {
		ps, err := toJSONSchema(s.fields[name])
		if err != nil {
			return nil, err
		}
		props[name] = ps
	}
	return &js.Schema{
		Type:                 "object",
		Properties:           props,
		Required:             append([]string(nil), s.required...),
		AdditionalProperties: true,
	}, nil
}

// JSONSchema projects the map. Loose entries only constrain object values.
func (s *EntriesSchema) JSONSchema() (*js.Schema, error) {
	elem, err := toJSONSchema(s.elem)
	if err != nil {
		return nil, err
	}
	if s.loose {
		elem = &js.Schema{AnyOf: []*js.Schema{elem, {Not: &js.Schema{Type: "object"}}}}
	}
	return &js.Schema{Type: "object", AdditionalProperties: elem}, nil
}

func (s *ArraySchema) JSONSchema() (*js.Schema, error) {
	items, err := toJSONSchema(s.elem)
	if err != nil {
		return nil, err
	}
	out := &js.Schema{Type: "array", Items: items}
	if s.min > 0 {
		out.MinItems = js.Int(s.min)
	}
	if s.max >= 0 {
		out.MaxItems = js.Int(s.max)
	}
	return out, nil
}

func (s stringSchema) JSONSchema() (*js.Schema, error) {
	if s.role == "pin" {
		// Non-standard format; editors treat it as an annotation.
		return &js.Schema{Type: "string", Format: "pin"}, nil
	}
	return &js.Schema{Type: "string"}, nil
}

func (boolSchema) JSONSchema() (*js.Schema, error) { return &js.Schema{Type: "boolean"}, nil }

func (s enumSchema) JSONSchema() (*js.Schema, error) {
	vals := make([]any, len(s.values))
	for i, v := range s.values {
		vals[i] = v
	}
	return &js.Schema{Type: "string", Enum: vals}, nil
}

func (s *NumberSchema) JSONSchema() (*js.Schema, error) {
	out := &js.Schema{Type: "number"}
	if s.integer {
		out.Type = "integer"
	}
	switch {
	case s.hasMin && s.minExcl:
		out.ExclusiveMinimum = js.Float(s.min)
	case s.hasMin:
		out.Minimum = js.Float(s.min)
	}
	switch {
	case s.hasMax && s.maxExcl:
		out.ExclusiveMaximum = js.Float(s.max)
	case s.hasMax:
		out.Maximum = js.Float(s.max)
	}
	return out, nil
}

// Export renders s as a root JSON Schema document. Properties carry the
// CommentFor text of their path as description.
func Export(s Schema, title string) (*js.Schema, error) {
	root, err := toJSONSchema(s)
	if err != nil {
		return nil, err
	}
	describe(root, nil)
	root.SchemaURI = js.Draft
	root.Title = title
	return root, nil
}

// describe fills descriptions top-down. Map values and array items are
// reached through a "*" or "0" segment, which CommentFor resolves by the
// trailing key.
func describe(n *js.Schema, at ncconf.Path) {
	if n == nil {
		return
	}
	if len(at) > 0 && at.Last() != "*" && n.Description == "" {
		n.Description = CommentFor(at)
	}
	for k, p := range n.Properties {
		describe(p, at.Field(k))
	}
	if ap, ok := n.AdditionalProperties.(*js.Schema); ok {
		describe(ap, at.Field("*"))
	}
	describe(n.Items, at.Field("0"))
	for _, a := range n.AnyOf {
		describe(a, at)
	}
}

// CanonicalJSONSchema exports the canonical configuration schema.
func CanonicalJSONSchema() (*js.Schema, error) {
	return Export(Canonical, "FluidNC machine configuration")
}
