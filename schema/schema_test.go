package schema_test

import (
	"context"
	"math"
	"strings"
	"testing"

	ncconf "github.com/reoring/ncconf"
	"github.com/reoring/ncconf/document"
	"github.com/reoring/ncconf/schema"
)

func axisDoc(kv ...any) document.Value {
	return document.Object("axes", document.Object("x", document.Object(kv...)))
}

func mustIssues(t *testing.T, err error) ncconf.Issues {
	t.Helper()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	iss, ok := ncconf.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %T: %v", err, err)
	}
	return iss
}

func TestValidate_Minimal(t *testing.T) {
	doc := document.Object(
		"name", "Router",
		"board", "ESP32",
		"axes", document.Object("x", document.Object(
			"steps_per_mm", 80,
			"max_rate_mm_per_min", 5000,
			"motor0", document.Object("step_pin", "gpio.2", "direction_pin", "gpio.5"),
		)),
	)
	out, err := schema.Validate(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if !document.Equal(out, doc) || !document.SameOrder(out, doc) {
		t.Fatalf("validated document must be the input")
	}
}

func TestValidate_EmptyAndUnknownKeysPassThrough(t *testing.T) {
	ctx := context.Background()
	if _, err := schema.Validate(ctx, document.EmptyMap()); err != nil {
		t.Fatalf("empty map should be valid: %v", err)
	}
	doc := document.Object(
		"kinematics", document.Object("corexy", document.Object()),
		"axes", document.Object("x", document.Object("steps_per_mm", 80, "custom", true)),
	)
	out, err := schema.Validate(ctx, doc)
	if err != nil {
		t.Fatalf("unknown keys must not fail: %v", err)
	}
	if !out.Has("kinematics") || !out.Lookup(ncconf.ParsePath("axes.x.custom")).IsScalar() {
		t.Fatalf("unknown keys dropped: %s", out)
	}
}

func TestValidate_RootMustBeMap(t *testing.T) {
	for _, v := range []document.Value{document.Null(), document.String("x"), document.Array(document.Int(1))} {
		iss := mustIssues(t, func() error { _, err := schema.Validate(context.Background(), v); return err }())
		if iss[0].Code != ncconf.CodeInvalidType || len(iss[0].Path) != 0 {
			t.Fatalf("got %+v", iss[0])
		}
	}
}

func TestValidate_StepsPerMMBoundaries(t *testing.T) {
	cases := []struct {
		name string
		v    any
		code string
	}{
		{"zero", 0, ncconf.CodeTooSmall},
		{"negative", -5, ncconf.CodeTooSmall},
		{"string", "80", ncconf.CodeInvalidType},
		{"nan", math.NaN(), ncconf.CodeNotFinite},
		{"inf", math.Inf(1), ncconf.CodeNotFinite},
		{"max_safe_integer", float64(1<<53 - 1), ""},
		{"tiny", 0.0001, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := schema.Validate(context.Background(), axisDoc("steps_per_mm", tc.v))
			if tc.code == "" {
				if err != nil {
					t.Fatalf("unexpected: %v", err)
				}
				return
			}
			iss := mustIssues(t, err)
			if len(iss) != 1 {
				t.Fatalf("want 1 issue, got %v", iss)
			}
			if iss[0].Code != tc.code {
				t.Fatalf("code: %s", iss[0].Code)
			}
			if got := iss[0].Path.String(); got != "axes.x.steps_per_mm" {
				t.Fatalf("path: %s", got)
			}
		})
	}
}

func TestValidate_MessagesAndParams(t *testing.T) {
	iss := mustIssues(t, func() error {
		_, err := schema.Validate(context.Background(), axisDoc("steps_per_mm", -5))
		return err
	}())
	if iss[0].Message != "Number must be greater than 0" {
		t.Fatalf("message: %q", iss[0].Message)
	}
	if iss[0].Params["got"] != -5.0 || iss[0].Params["min"] != 0.0 {
		t.Fatalf("params: %v", iss[0].Params)
	}

	iss = mustIssues(t, func() error {
		_, err := schema.Validate(context.Background(), axisDoc("steps_per_mm", "eighty"))
		return err
	}())
	if iss[0].Message != "Expected number, received string" {
		t.Fatalf("message: %q", iss[0].Message)
	}
	if got := iss[0].Path.Pointer(); got != "/axes/x/steps_per_mm" {
		t.Fatalf("pointer: %s", got)
	}
}

func TestValidate_Microsteps(t *testing.T) {
	motor := func(m any) document.Value {
		return axisDoc("motor0", document.Object("tmc_2209", document.Object("microsteps", m)))
	}
	ctx := context.Background()
	for _, ok := range []any{1, 16, 256} {
		if _, err := schema.Validate(ctx, motor(ok)); err != nil {
			t.Fatalf("%v should pass: %v", ok, err)
		}
	}
	cases := map[float64]string{
		512: ncconf.CodeTooBig,
		12:  ncconf.CodeNotPowerOfTwo,
		0:   ncconf.CodeTooSmall,
		1.5: ncconf.CodeInvalidType,
	}
	for m, code := range cases {
		_, err := schema.Validate(ctx, motor(m))
		iss := mustIssues(t, err)
		if iss[0].Code != code {
			t.Fatalf("microsteps %v: got %s want %s", m, iss[0].Code, code)
		}
		if iss[0].Path.String() != "axes.x.motor0.tmc_2209.microsteps" {
			t.Fatalf("path: %s", iss[0].Path)
		}
	}
}

func TestValidate_Enums(t *testing.T) {
	ctx := context.Background()
	doc := axisDoc("motor0", document.Object("tmc_2130", document.Object("run_mode", "StealthChop")))
	if _, err := schema.Validate(ctx, doc); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	doc = axisDoc("motor0", document.Object("tmc_2130", document.Object("run_mode", "stealthchop")))
	iss := mustIssues(t, func() error { _, err := schema.Validate(ctx, doc); return err }())
	if iss[0].Code != ncconf.CodeInvalidEnum {
		t.Fatalf("code: %s", iss[0].Code)
	}
	if !strings.Contains(iss[0].Message, "'StealthChop' | 'CoolStep' | 'StallGuard'") {
		t.Fatalf("message: %s", iss[0].Message)
	}
}

func TestValidate_UARTLooseValues(t *testing.T) {
	ctx := context.Background()
	doc := document.Object("uart", document.Object(
		"uart1", document.Object("txd_pin", "gpio.17", "baud", 115200),
		"passthrough_baud", 9600,
	))
	if _, err := schema.Validate(ctx, doc); err != nil {
		t.Fatalf("scalar uart entries must pass: %v", err)
	}
	doc = document.Object("uart", document.Object("uart1", document.Object("baud", -1)))
	iss := mustIssues(t, func() error { _, err := schema.Validate(ctx, doc); return err }())
	if iss[0].Path.String() != "uart.uart1.baud" {
		t.Fatalf("path: %s", iss[0].Path)
	}
}

func TestValidate_GlobalHomingCycleArray(t *testing.T) {
	ctx := context.Background()
	doc := document.Object("homing", document.Object("cycle", document.Array(document.Int(1), document.Int(11))))
	iss := mustIssues(t, func() error { _, err := schema.Validate(ctx, doc); return err }())
	if iss[0].Path.String() != "homing.cycle.1" || iss[0].Code != ncconf.CodeTooBig {
		t.Fatalf("got %+v", iss[0])
	}
}

func TestValidate_CollectsInDocumentOrderAndFailFast(t *testing.T) {
	doc := document.Object(
		"axes", document.Object(
			"y", document.Object("steps_per_mm", 0),
			"x", document.Object("max_rate_mm_per_min", -1),
		),
		"spindle", document.Object("output_pin", 4),
	)
	_, err := schema.Validate(context.Background(), doc)
	iss := mustIssues(t, err)
	var paths []string
	for _, it := range iss {
		paths = append(paths, it.Path.String())
	}
	want := "axes.y.steps_per_mm,axes.x.max_rate_mm_per_min,spindle.output_pin"
	if got := strings.Join(paths, ","); got != want {
		t.Fatalf("paths: %s", got)
	}

	ctx := ncconf.WithFailFast(context.Background(), true)
	_, err = schema.Validate(ctx, doc)
	if iss := mustIssues(t, err); len(iss) != 1 || iss[0].Path.String() != "axes.y.steps_per_mm" {
		t.Fatalf("fail-fast: %v", iss)
	}
}

func TestObjectBuilder_RequiredAndRefine(t *testing.T) {
	s := schema.Object().
		Field("id", schema.String()).Required().
		Field("lo", schema.Number()).
		Field("hi", schema.Number()).
		Refine("ordered", func(_ context.Context, v document.Value) ncconf.Issues {
			lo, _ := v.Get("lo").AsNumber()
			hi, _ := v.Get("hi").AsNumber()
			if lo > hi {
				return ncconf.Issues{ncconf.Path{"lo"}.IssueAt(ncconf.CodeDomainRange, "lo above hi")}
			}
			return nil
		}).
		MustBuild()

	ctx := context.Background()
	iss := s.Check(ctx, document.Object("lo", 1), ncconf.Path{"range"})
	if len(iss) != 1 || iss[0].Code != ncconf.CodeRequired || iss[0].Path.String() != "range.id" {
		t.Fatalf("required: %v", iss)
	}
	iss = s.Check(ctx, document.Object("id", "r", "lo", 5, "hi", 1), ncconf.Path{"range"})
	if len(iss) != 1 || iss[0].Path.String() != "range.lo" {
		t.Fatalf("refine: %v", iss)
	}
	if iss := s.Check(ctx, document.Object("id", "r", "lo", 1, "hi", 5), nil); len(iss) != 0 {
		t.Fatalf("unexpected: %v", iss)
	}
}

func TestObjectBuilder_Errors(t *testing.T) {
	if _, err := schema.Object().Field("a", schema.String()).Field("a", schema.Bool()).Build(); err == nil {
		t.Fatalf("duplicate field must fail")
	}
	if _, err := schema.Object().Field("a", nil).Build(); err == nil {
		t.Fatalf("nil schema must fail")
	}
}

func TestLookup(t *testing.T) {
	s, ok := schema.Lookup(ncconf.ParsePath("axes.z.motor1.step_pin"))
	if !ok || !schema.IsPin(s) {
		t.Fatalf("step_pin should resolve to a pin schema")
	}
	if _, ok := schema.Lookup(ncconf.ParsePath("axes.z.unknown")); ok {
		t.Fatalf("unknown field resolved")
	}
	s, ok = schema.Lookup(ncconf.ParsePath("homing.cycle.0"))
	if !ok || s.TypeName() != "number" {
		t.Fatalf("array element lookup failed")
	}
}

func TestCommentFor(t *testing.T) {
	cases := map[string]string{
		"axes.x":                        "X-axis configuration (typically horizontal left-right movement)",
		"axes.x.steps_per_mm":           "Steps per millimeter - depends on motor, driver microsteps, and mechanical setup",
		"axes.y.homing.seek_mm_per_min": "Homing seek rate (mm/min) - faster initial approach",
		"spindle.pwm_hz":                "PWM frequency in Hz",
		"uart.uart1.baud":               "Baud rate (9600, 19200, 38400, 57600, 115200, etc.)",
		"macros.macro2":                 "Macro 2 - user-defined G-code sequence",
		"name":                          "Configuration name - helps identify this setup",
		"io.nothing_here":               "",
	}
	for p, want := range cases {
		if got := schema.CommentFor(ncconf.ParsePath(p)); got != want {
			t.Errorf("%s: got %q want %q", p, got, want)
		}
	}
	if got := schema.CommentFor(nil); got != "" {
		t.Errorf("root: %q", got)
	}
}
