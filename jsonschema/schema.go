// Package jsonschema is the JSON Schema (draft 2020-12) subset the
// configuration schema exports to, for editor completion and external
// validators.
package jsonschema

// Draft is the $schema URI set on exported root documents.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	// Root
	SchemaURI   string `json:"$schema,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// Core
	Type   string `json:"type,omitempty"`
	Format string `json:"format,omitempty"`
	Enum   []any  `json:"enum,omitempty"`

	// Number
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	// Composition
	AnyOf []*Schema `json:"anyOf,omitempty"`
	Not   *Schema   `json:"not,omitempty"`
}

// Float returns a pointer to v for the optional numeric keywords.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to n.
func Int(n int) *int { return &n }

