package schema

import (
	"context"
	"fmt"

	ncconf "github.com/reoring/ncconf"
	"github.com/reoring/ncconf/document"
)

// DriverModes are the accepted TMC run_mode/homing_mode values.
var DriverModes = []string{"StealthChop", "CoolStep", "StallGuard"}

// TMCModels lists the driver sub-map keys recognized under a motor.
var TMCModels = []string{"tmc_2130", "tmc_2208", "tmc_2209", "tmc_2660", "tmc_5160"}

// AxisIDs are the single-letter axis identifiers in canonical order.
var AxisIDs = []string{"x", "y", "z", "a", "b", "c"}

var (
	TMC = Object().
		Field("cs_pin", Pin()).
		Field("uart_pin", Pin()).
		Field("addr", Number().Int().Min(0).Max(3)).
		Field("r_sense_ohms", Number().Positive()).
		Field("run_amps", Number().Positive()).
		Field("hold_amps", Number().NonNegative()).
		Field("current_ma", Number().Positive()).
		Field("microsteps", Number().Int().PowerOfTwo().Min(1).Max(256)).
		Field("stallguard", Number().Int()).
		Field("stallguard_debug", Bool()).
		Field("toff_disable", Number().Int().NonNegative()).
		Field("toff_stealthchop", Number().Int().NonNegative()).
		Field("toff_coolstep", Number().Int().NonNegative()).
		Field("run_mode", Enum(DriverModes...)).
		Field("homing_mode", Enum(DriverModes...)).
		Field("use_enable", Bool()).
		MustBuild()

	Motor = motorSchema()

	Homing = Object().
		Field("cycle", Number().Int().Min(0).Max(10)).
		Field("positive_direction", Bool()).
		Field("mpos_mm", Number()).
		Field("feed_mm_per_min", Number().NonNegative()).
		Field("seek_mm_per_min", Number().NonNegative()).
		Field("settle_ms", Number().NonNegative()).
		Field("debounce_ms", Number().NonNegative()).
		Field("seek_scaler", Number().Positive()).
		Field("feed_scaler", Number().Positive()).
		MustBuild()

	Axis = Object().
		Field("steps_per_mm", Number().Positive()).
		Field("max_rate_mm_per_min", Number().Positive()).
		Field("acceleration_mm_per_sec2", Number().Positive()).
		Field("max_travel_mm", Number().Positive()).
		Field("soft_limits", Bool()).
		Field("homing", Homing).
		Field("motor0", Motor).
		Field("motor1", Motor).
		MustBuild()

	GlobalHoming = Object().
		Field("cycle", Array(Number().Int().Min(0).Max(10))).
		Field("allow_single_axis", Bool()).
		Field("must_home_first", Bool()).
		Field("depart_mm", Number().NonNegative()).
		MustBuild()

	Spindle = Object().
		Field("pwm_hz", Number().Positive()).
		Field("output_pin", Pin()).
		Field("enable_pin", Pin()).
		Field("direction_pin", Pin()).
		Field("speed_map", String()).
		Field("spinup_ms", Number().NonNegative()).
		Field("spindown_ms", Number().NonNegative()).
		Field("tool_num", Number().Int().NonNegative()).
		Field("off_on_alarm", Bool()).
		MustBuild()

	IO = pinBlock(
		"probe_pin", "flood_pin", "mist_pin",
		"macro0_pin", "macro1_pin", "macro2_pin", "macro3_pin",
		"user_output_0_pin", "user_output_1_pin", "user_output_2_pin", "user_output_3_pin",
		"user_pwm_0_pin", "user_pwm_1_pin", "user_pwm_2_pin", "user_pwm_3_pin",
	)

	Control = pinBlock(
		"safety_door_pin", "reset_pin", "feed_hold_pin", "cycle_start_pin",
		"fro_pin", "sro_pin", "macro0_pin", "macro1_pin", "macro2_pin", "macro3_pin",
	)

	UARTChannel = Object().
		Field("txd_pin", Pin()).
		Field("rxd_pin", Pin()).
		Field("rts_pin", Pin()).
		Field("baud", Number().Int().Positive()).
		Field("mode", String()).
		MustBuild()

	UART = Entries(UARTChannel).LooseValues()

	Macros = Object().
		Field("macro0", String()).
		Field("macro1", String()).
		Field("macro2", String()).
		Field("macro3", String()).
		Field("startup_line0", String()).
		Field("startup_line1", String()).
		MustBuild()

	SD = Object().
		Field("cs_pin", Pin()).
		Field("card_detect_pin", Pin()).
		Field("miso_pin", Pin()).
		Field("mosi_pin", Pin()).
		Field("sck_pin", Pin()).
		Field("frequency_hz", Number().Positive()).
		MustBuild()

	// Canonical is the top-level configuration schema.
	Canonical = Object().
		Field("name", String()).
		Field("board", String()).
		Field("version", String()).
		Field("axes", Entries(Axis)).
		Field("homing", GlobalHoming).
		Field("spindle", Spindle).
		Field("io", IO).
		Field("uart", UART).
		Field("macros", Macros).
		Field("control", Control).
		Field("sd", SD).
		MustBuild()
)

func motorSchema() *ObjectSchema {
	b := Object().
		Field("step_pin", Pin()).
		Field("direction_pin", Pin()).
		Field("disable_pin", Pin()).
		Field("limit_neg_pin", Pin()).
		Field("limit_pos_pin", Pin()).
		Field("limit_all_pin", Pin()).
		Field("hard_limits", Bool()).
		Field("pulloff_mm", Number().NonNegative()).
		Field("driver_type", String())
	for _, m := range TMCModels {
		b.Field(m, TMC)
	}
	return b.MustBuild()
}

func pinBlock(names ...string) *ObjectSchema {
	b := Object()
	for _, n := range names {
		b.Field(n, Pin())
	}
	return b.MustBuild()
}

// Validate checks doc against the canonical schema. On success the returned
// Document is doc itself, unknown keys included. On failure the error is an
// ncconf.Issues listing every violation in document order (or only the first
// one under ncconf.WithFailFast).
func Validate(ctx context.Context, doc document.Value) (document.Value, error) {
	return ValidateWith(ctx, Canonical, doc)
}

// ValidateWith checks doc against any schema, e.g. Axis or Spindle alone.
func ValidateWith(ctx context.Context, s Schema, doc document.Value) (document.Value, error) {
	if s == nil {
		return document.Value{}, fmt.Errorf("schema: nil schema")
	}
	if iss := s.Check(ctx, doc, nil); len(iss) > 0 {
		return document.Value{}, iss
	}
	return doc, nil
}

// Lookup returns the schema that governs the node at p, if the path runs
// through recognized fields only.
func Lookup(p ncconf.Path) (Schema, bool) {
	var cur Schema = Canonical
	for _, seg := range p {
		switch s := cur.(type) {
		case *ObjectSchema:
			next, ok := s.FieldSchema(seg)
			if !ok {
				return nil, false
			}
			cur = next
		case *EntriesSchema:
			cur = s.Elem()
		case *ArraySchema:
			cur = s.elem
		default:
			return nil, false
		}
	}
	return cur, true
}
