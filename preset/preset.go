// Package preset ships ready-made machine configurations.
package preset

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/reoring/ncconf/document"
	"github.com/reoring/ncconf/rules"
	"github.com/reoring/ncconf/schema"
	"github.com/reoring/ncconf/source"
)

//go:embed presets.yaml
var builtinYAML []byte

// Category groups presets by machine type.
type Category string

const (
	Router Category = "router"
	Laser  Category = "laser"
	Plasma Category = "plasma"
	Mill   Category = "mill"
	Other  Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{Router, Laser, Plasma, Mill, Other}

// Preset is a named machine configuration. Config is an immutable document
// and may be shared freely.
type Preset struct {
	ID          string         `yaml:"id" json:"id"`
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	Category    Category       `yaml:"category" json:"category"`
	Author      string         `yaml:"author,omitempty" json:"author,omitempty"`
	Version     string         `yaml:"version,omitempty" json:"version,omitempty"`
	Tags        []string       `yaml:"tags,omitempty" json:"tags,omitempty"`
	Config      document.Value `yaml:"config" json:"config"`
}

func categoryNames() []string {
	out := make([]string, len(Categories))
	for i, c := range Categories {
		out[i] = string(c)
	}
	return out
}

// Schema validates one preset entry, including its config against the
// canonical configuration schema.
var Schema = schema.Object().
	Field("id", schema.String()).Required().
	Field("name", schema.String()).Required().
	Field("description", schema.String()).
	Field("category", schema.Enum(categoryNames()...)).Required().
	Field("author", schema.String()).
	Field("version", schema.String()).
	Field("tags", schema.Array(schema.String())).
	Field("config", schema.Canonical).Required().
	Refine("tags", rules.AtLeastOne("tags")).
	Refine("unique tags", rules.UniqueBy("tags", "")).
	MustBuild()

// Load decodes a YAML sequence of presets and validates every entry. Issue
// paths start at the entry index.
func Load(data []byte) ([]Preset, error) {
	doc, err := source.YAML(data)
	if err != nil {
		return nil, fmt.Errorf("preset: %w", err)
	}
	if iss := schema.Array(Schema).Check(context.Background(), doc, nil); len(iss) > 0 {
		return nil, iss
	}
	var out []Preset
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("preset: %w", err)
	}
	seen := map[string]bool{}
	for _, p := range out {
		if seen[p.ID] {
			return nil, fmt.Errorf("preset: duplicate id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return out, nil
}

// Catalog returns the built-in presets, decoded on first use.
var Catalog = sync.OnceValue(func() []Preset {
	ps, err := Load(builtinYAML)
	if err != nil {
		panic(fmt.Errorf("preset: built-in catalog: %w", err))
	}
	return ps
})

// All returns the built-in presets in catalog order.
func All() []Preset { return append([]Preset(nil), Catalog()...) }

// Get returns the preset with the given id.
func Get(id string) (Preset, bool) {
	for _, p := range Catalog() {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// ByCategory returns the presets of category c.
func ByCategory(c Category) []Preset {
	var out []Preset
	for _, p := range Catalog() {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}
