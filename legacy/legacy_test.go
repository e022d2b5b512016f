package legacy_test

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ncconf "github.com/reoring/ncconf"
	"github.com/reoring/ncconf/document"
	"github.com/reoring/ncconf/legacy"
	"github.com/reoring/ncconf/source"
)

func lookup(t *testing.T, v document.Value, p string) document.Value {
	t.Helper()
	return v.Lookup(ncconf.ParsePath(p))
}

func mappingPairs(ms []legacy.Mapping) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.OldPath + "→" + m.NewPath
	}
	return out
}

func TestTransform_LiteralScenario(t *testing.T) {
	in := document.Object(
		"name", "Legacy",
		"x", document.Object(
			"steps_per_mm", 80,
			"step_pin", "gpio.2",
			"direction_pin", "gpio.5",
			"tmc2209", document.Object("current_ma", 800),
		),
		"pwm_pin", "gpio.25",
	)
	res := legacy.Transform(in)
	out := res.Document

	s, _ := lookup(t, out, "axes.x.motor0.step_pin").AsString()
	assert.Equal(t, "gpio.2", s)
	n, _ := lookup(t, out, "axes.x.motor0.tmc_2209.current_ma").AsNumber()
	assert.Equal(t, 800.0, n)
	s, _ = lookup(t, out, "spindle.output_pin").AsString()
	assert.Equal(t, "gpio.25", s)
	assert.False(t, out.Has("x"))
	assert.False(t, out.Has("pwm_pin"))
	assert.True(t, lookup(t, out, "axes.x.tmc2209").IsAbsent())

	pairs := mappingPairs(res.Mappings)
	assert.Contains(t, pairs, "step_pin→motor0.step_pin")
	assert.Contains(t, pairs, "tmc2209→motor0.tmc_2209")
	assert.Contains(t, pairs, "pwm_pin→spindle.output_pin")
	assert.Contains(t, pairs, "x→axes.x")

	// input untouched
	assert.True(t, in.Has("x"))
	assert.True(t, in.Has("pwm_pin"))
}

func TestTransform_SuggestionsForScenario(t *testing.T) {
	in := document.Object("x", document.Object("step_pin", "gpio.2"), "pwm_pin", "gpio.25")
	res := legacy.Transform(in)

	var msgs []string
	for _, s := range res.Suggestions {
		msgs = append(msgs, s.Kind.String()+": "+s.Message)
	}
	assert.Contains(t, msgs, "info: Converted flat axis configuration to nested axes structure")
	assert.Contains(t, msgs, "info: Legacy step_pin moved to motor configuration")
	assert.Contains(t, msgs, "info: Legacy spindle PWM pin moved to spindle.output_pin")
	assert.Contains(t, msgs, "warning: No board type specified")
	assert.Contains(t, msgs, "info: No machine name specified")

	for _, s := range res.Suggestions {
		if s.Message == "Legacy step_pin moved to motor configuration" {
			assert.Equal(t, "axes.x.motor0.step_pin", s.Path.String())
		}
	}
}

func TestTransform_AxisRules(t *testing.T) {
	in := document.Object(
		"board", "ESP32",
		"name", "m",
		"axes", document.Object("z", document.Object(
			"max_rate", 1000,
			"acceleration", 50,
			"homing_cycle", 1,
			"positive_direction", true,
			"stepper_driver", "DRV8825",
			"tmc5160", document.Object("run_amps", 1.5),
		)),
	)
	res := legacy.Transform(in)
	z := lookup(t, res.Document, "axes.z")
	for _, p := range []string{
		"max_rate_mm_per_min", "acceleration_mm_per_sec2", "homing.cycle",
		"homing.positive_direction", "motor0.driver_type", "motor0.tmc_5160.run_amps",
	} {
		assert.False(t, z.Lookup(ncconf.ParsePath(p)).IsAbsent(), p)
	}
	for _, m := range res.Mappings {
		assert.Equal(t, "z", m.Axis)
	}
	require.Len(t, res.Mappings, 6)
	assert.Equal(t, "Detected legacy stepper driver: DRV8825", res.Suggestions[len(res.Suggestions)-1].Message)
}

func TestTransform_FlatNestedCollisionNestedWins(t *testing.T) {
	in := document.Object(
		"axes", document.Object("x", document.Object("steps_per_mm", 100, "max_travel_mm", 300)),
		"x", document.Object("steps_per_mm", 80, "soft_limits", true),
	)
	res := legacy.Transform(in)
	x := lookup(t, res.Document, "axes.x")
	n, _ := x.Get("steps_per_mm").AsNumber()
	assert.Equal(t, 100.0, n, "nested value must win")
	b, _ := x.Get("soft_limits").AsBool()
	assert.True(t, b, "flat-only fields are merged in")
	assert.Equal(t, []string{"steps_per_mm", "max_travel_mm", "soft_limits"}, x.Map().Keys())

	var warned bool
	for _, s := range res.Suggestions {
		if s.Kind == ncconf.SuggestWarning && s.Path.String() == "axes.x.steps_per_mm" {
			warned = true
			assert.Equal(t, "Flat axis field x.steps_per_mm dropped; axes.x.steps_per_mm is already set", s.Message)
		}
	}
	assert.True(t, warned)
}

func TestTransform_RelocationOntoExistingTarget(t *testing.T) {
	in := document.Object(
		"board", "ESP32",
		"name", "m",
		"pwm_pin", "gpio.25",
		"spindle", document.Object("output_pin", "gpio.4"),
		"axes", document.Object("y", document.Object(
			"step_pin", "gpio.9",
			"motor0", document.Object("step_pin", "gpio.2"),
		)),
	)
	res := legacy.Transform(in)
	s, _ := lookup(t, res.Document, "spindle.output_pin").AsString()
	assert.Equal(t, "gpio.4", s)
	s, _ = lookup(t, res.Document, "axes.y.motor0.step_pin").AsString()
	assert.Equal(t, "gpio.2", s)
	assert.False(t, res.Document.Has("pwm_pin"))
	assert.True(t, lookup(t, res.Document, "axes.y.step_pin").IsAbsent())
	assert.Empty(t, res.Mappings)
	assert.Equal(t, 2, ncconf.CountKind(res.Suggestions, ncconf.SuggestWarning))
}

func TestTransform_UnplaceableTargetLeavesLegacyField(t *testing.T) {
	in := document.Object("spindle", "laser", "pwm_pin", "gpio.25", "board", "b", "name", "n")
	res := legacy.Transform(in)
	assert.True(t, document.Equal(in, res.Document))
	assert.Empty(t, res.Mappings)
	require.Equal(t, 1, ncconf.CountKind(res.Suggestions, ncconf.SuggestWarning))
}

func TestTransform_PassThroughUnknownKeys(t *testing.T) {
	in := document.Object(
		"kinematics", document.Object("corexy", document.Object("a", 1)),
		"x", document.Object("step_pin", "gpio.2", "custom_field", "keep", "tmc2209", document.Object("weird", 1)),
	)
	out := legacy.Transform(in).Document
	assert.True(t, document.Equal(lookup(t, in, "kinematics"), lookup(t, out, "kinematics")))
	s, _ := lookup(t, out, "axes.x.custom_field").AsString()
	assert.Equal(t, "keep", s)
	n, _ := lookup(t, out, "axes.x.motor0.tmc_2209.weird").AsNumber()
	assert.Equal(t, 1.0, n)
}

func TestTransform_NonMapRoot(t *testing.T) {
	res := legacy.Transform(document.String("hello"))
	assert.True(t, document.Equal(document.String("hello"), res.Document))
	assert.Empty(t, res.Mappings)
}

func TestTransform_Idempotent(t *testing.T) {
	in := document.Object(
		"x", document.Object("step_pin", "gpio.2", "tmc2130", document.Object("cs_pin", "gpio.17")),
		"axes", document.Object("x", document.Object("direction_pin", "gpio.3")),
		"spindle_dir_pin", "gpio.16",
	)
	first := legacy.Transform(in)
	second := legacy.Transform(first.Document)
	assert.Empty(t, second.Mappings)
	assert.True(t, document.Equal(first.Document, second.Document))
}

var genKeys = []string{
	"x", "y", "z", "a", "axes", "step_pin", "direction_pin", "disable_pin", "tmc2209", "tmc2130",
	"motor0", "homing", "homing_cycle", "positive_direction", "max_rate", "acceleration",
	"pwm_pin", "spindle", "spindle_enable_pin", "stepper_driver", "custom", "board", "name",
}

func genValue(r *rand.Rand, depth int) document.Value {
	switch k := r.IntN(6); {
	case depth > 3 || k == 0:
		return document.String("gpio." + string(rune('0'+r.IntN(10))))
	case k == 1:
		return document.Int(int64(r.IntN(200)))
	case k == 2:
		return document.Bool(r.IntN(2) == 0)
	case k == 3:
		return document.Array(genValue(r, depth+1), genValue(r, depth+1))
	default:
		b := document.NewBuilder()
		for range r.IntN(5) {
			b.Set(genKeys[r.IntN(len(genKeys))], genValue(r, depth+1))
		}
		return b.Value()
	}
}

func TestTransform_IdempotentGenerated(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for i := range 500 {
		b := document.NewBuilder()
		for range 1 + r.IntN(6) {
			b.Set(genKeys[r.IntN(len(genKeys))], genValue(r, 0))
		}
		in := b.Value()
		first := legacy.Transform(in)
		second := legacy.Transform(first.Document)
		require.Empty(t, second.Mappings, "case %d: %s", i, in)
		require.True(t, document.Equal(first.Document, second.Document), "case %d: %s", i, in)
	}
}

func TestParseAndTransform(t *testing.T) {
	res := legacy.ParseAndTransform([]byte("name: Test\naxes: [unclosed\n"), source.YAML)
	assert.False(t, res.Parsed())
	require.Len(t, res.Suggestions, 1)
	s := res.Suggestions[0]
	assert.Equal(t, ncconf.SuggestError, s.Kind)
	assert.True(t, strings.HasPrefix(s.Message, "Failed to parse configuration: "))
	assert.Contains(t, s.Remedy, "Check for syntax errors")

	res = legacy.ParseAndTransform([]byte(`{"x": {"step_pin": "gpio.2"}}`), source.JSON)
	require.True(t, res.Parsed())
	assert.NotEmpty(t, res.Mappings)

	res = legacy.ParseAndTransform(nil, func([]byte) (document.Value, error) { return document.Value{}, errors.New("boom") })
	assert.Equal(t, "Failed to parse configuration: boom", res.Suggestions[0].Message)
}

func TestHumanize(t *testing.T) {
	iss := ncconf.Issues{
		ncconf.ParsePath("axes.x.steps_per_mm").IssueAt(ncconf.CodeInvalidType, "Expected number, received string"),
		ncconf.ParsePath("axes.x.motor0.step_pin").IssueAt(ncconf.CodeInvalidType, "Expected string, received number"),
		ncconf.ParsePath("axes.x.max_rate_mm_per_min").IssueAt(ncconf.CodeInvalidType, "Expected number, received string"),
		ncconf.ParsePath("axes.y.acceleration_mm_per_sec2").IssueAt(ncconf.CodeTooSmall, "Number must be greater than 0"),
		ncconf.ParsePath("name").IssueAt(ncconf.CodeInvalidType, "Expected string, received number"),
	}
	got := legacy.Humanize(iss)
	require.Len(t, got, 5)
	assert.Equal(t, "axes.x.steps_per_mm: Expected number, received string", got[0].Message)
	assert.Equal(t, "steps_per_mm should be a positive number (e.g., 80 for typical setup)", got[0].Remedy)
	assert.Equal(t, `Pin should be a string like "gpio.2" or "NO_PIN" to disable`, got[1].Remedy)
	assert.Equal(t, "Rate values should be positive numbers in mm/min", got[2].Remedy)
	assert.Equal(t, "Value must be positive for motor configuration", got[3].Remedy)
	assert.Empty(t, got[4].Remedy)
	for _, s := range got {
		assert.Equal(t, ncconf.SuggestError, s.Kind)
	}
	assert.Equal(t, "axes.y.acceleration_mm_per_sec2", got[3].Path.String())

	// Annotate does not touch its input
	annotated := legacy.Annotate(iss)
	assert.Empty(t, iss[0].Hint)
	assert.NotEmpty(t, annotated[0].Hint)
}

func TestHeuristics(t *testing.T) {
	got := legacy.Heuristics(document.Object("board", "", "name", "n", "note", "was A4988, now TMC2100"))
	var msgs []string
	for _, s := range got {
		msgs = append(msgs, s.Message)
	}
	assert.Equal(t, []string{
		"Detected legacy stepper driver: A4988",
		"Detected legacy stepper driver: TMC2100",
		"No board type specified",
	}, msgs)
}

func TestCheckRules(t *testing.T) {
	require.NoError(t, legacy.CheckRules(legacy.DefaultRules))
	assert.Error(t, legacy.CheckRules([]legacy.Rule{{OldPath: "a", NewPath: "a.b"}}))
	assert.Error(t, legacy.CheckRules([]legacy.Rule{{OldPath: "a", NewPath: "b"}, {OldPath: "a", NewPath: "c"}}))
	assert.NoError(t, legacy.CheckRules([]legacy.Rule{{OldPath: "a", NewPath: "b"}, {Scope: legacy.ScopeRoot, OldPath: "a", NewPath: "c"}}))
	assert.Error(t, legacy.CheckRules([]legacy.Rule{{OldPath: "a", NewPath: "b..c"}}))
}

func TestTransformWith_Convert(t *testing.T) {
	rs := []legacy.Rule{{
		Scope:       legacy.ScopeRoot,
		OldPath:     "spindle_pwm_freq",
		NewPath:     "spindle.pwm_hz",
		Description: "moved",
		Convert: func(v document.Value) document.Value {
			n, _ := v.AsNumber()
			return document.Number(n * 1000)
		},
	}}
	res := legacy.TransformWith(document.Object("spindle_pwm_freq", 5), rs)
	n, _ := lookup(t, res.Document, "spindle.pwm_hz").AsNumber()
	assert.Equal(t, 5000.0, n)
}
