package board

import (
	"bytes"
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	json "github.com/goccy/go-json"

	ncconf "github.com/reoring/ncconf"
	"github.com/reoring/ncconf/document"
	"github.com/reoring/ncconf/rules"
	"github.com/reoring/ncconf/schema"
)

var (
	pinCapabilitiesSchema = schema.Object().
		Field("digital", schema.Bool()).
		Field("analog", schema.Bool()).
		Field("pwm", schema.Bool()).
		Field("input", schema.Bool()).
		Field("output", schema.Bool()).
		Field("pullup", schema.Bool()).
		Field("pulldown", schema.Bool()).
		Field("notes", schema.String()).
		MustBuild()

	pinSchema = schema.Object().
		Field("name", schema.String()).Required().
		Field("gpio", schema.Number().Int().NonNegative()).Required().
		Field("capabilities", pinCapabilitiesSchema).
		MustBuild()

	count = schema.Number().Int().NonNegative()

	capabilitiesSchema = schema.Object().
		Field("uart_channels", count).
		Field("spi_channels", count).
		Field("i2c_channels", count).
		Field("adc_channels", count).
		Field("dac_channels", count).
		Field("pwm_channels", count).
		Field("touch_pins", count).
		Field("flash_size", schema.String()).
		Field("ram_size", schema.String()).
		Field("cpu_frequency", schema.String()).
		Field("wifi", schema.Bool()).
		Field("bluetooth", schema.Bool()).
		Field("ethernet", schema.Bool()).
		Field("notes", schema.String()).
		MustBuild()

	// DescriptorSchema validates one descriptor document. Unknown keys pass.
	DescriptorSchema = schema.Object().
		Field("id", schema.String()).Required().
		Field("name", schema.String()).Required().
		Field("description", schema.String()).
		Field("version", schema.String()).
		Field("manufacturer", schema.String()).
		Field("capabilities", capabilitiesSchema).Required().
		Field("pins", schema.Array(pinSchema)).Required().
		Field("notes", schema.String()).
		Refine("id not blank", rules.If("id", rules.Eq, "").Then(blank("id"))).
		Refine("name not blank", rules.If("name", rules.Eq, "").Then(blank("name"))).
		Refine("unique gpio", rules.UniqueBy("pins", "gpio")).
		Refine("unique pin name", rules.UniqueBy("pins", "name")).
		MustBuild()
)

func blank(field string) rules.Rule {
	return func(context.Context, document.Value) ncconf.Issues {
		return ncconf.Issues{ncconf.Path{field}.IssueAt(ncconf.CodeTooSmall, field+" must not be empty", "min", 1)}
	}
}

// Validate checks one descriptor document.
func Validate(ctx context.Context, doc document.Value) error {
	_, err := schema.ValidateWith(ctx, DescriptorSchema, doc)
	return err
}

// LoadTOML decodes a board table file: an array of [[board]] tables. Every
// descriptor is validated; issue paths start at board.<index>.
func LoadTOML(data []byte) ([]Descriptor, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("board: TOML parsing error: %w", err)
	}
	doc, err := document.FromAny(raw)
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	if err := validateList(doc.Get("board"), ncconf.Path{"board"}); err != nil {
		return nil, err
	}
	var file struct {
		Board []Descriptor `toml:"board"`
	}
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	return file.Board, nil
}

// LoadJSON decodes a single descriptor object or an array of them. Duplicate
// keys are rejected.
func LoadJSON(data []byte) ([]Descriptor, error) {
	doc, err := document.DecodeJSON(bytes.NewReader(data))
	if err != nil {
		if iss, ok := ncconf.AsIssues(err); ok {
			return nil, iss
		}
		return nil, fmt.Errorf("board: JSON parsing error: %w", err)
	}
	switch doc.Kind() {
	case document.KindArray:
		if err := validateList(doc, nil); err != nil {
			return nil, err
		}
		var out []Descriptor
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("board: %w", err)
		}
		return out, nil
	default:
		if err := Validate(context.Background(), doc); err != nil {
			return nil, err
		}
		var d Descriptor
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("board: %w", err)
		}
		return []Descriptor{d}, nil
	}
}

func validateList(list document.Value, at ncconf.Path) error {
	if list.IsAbsent() {
		return nil
	}
	iss := schema.Array(DescriptorSchema).Check(context.Background(), list, at)
	if len(iss) > 0 {
		return iss
	}
	return nil
}
