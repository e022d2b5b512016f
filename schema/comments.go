package schema

import (
	"strings"

	ncconf "github.com/reoring/ncconf"
)

// fieldDocs maps dotted paths (exact) or bare key names (fallback) to a short
// description used as a YAML head comment on export.
var fieldDocs = map[string]string{
	"name":    "Configuration name - helps identify this setup",
	"board":   "Target board type (ESP32, ESP32-S2, ESP32-S3, etc.)",
	"version": "FluidNC firmware version this config is designed for",

	"axes":   "Axis configuration - defines motion system behavior",
	"motor0": "Primary motor driver configuration",
	"motor1": "Secondary motor driver configuration (dual motor setup)",

	"steps_per_mm":             "Steps per millimeter - depends on motor, driver microsteps, and mechanical setup",
	"max_rate_mm_per_min":      "Maximum speed in mm/min",
	"acceleration_mm_per_sec2": "Acceleration in mm/sec² - start conservative and increase gradually",
	"max_travel_mm":            "Maximum travel distance in mm",
	"soft_limits":              "Enable software limits (requires homing)",

	"step_pin":      "Step pulse pin (e.g., gpio.2)",
	"direction_pin": "Direction control pin (e.g., gpio.5)",
	"disable_pin":   "Motor enable/disable pin (e.g., gpio.13)",

	"homing":                    "Homing behavior configuration",
	"homing.cycle":              "Homing cycle order (1=first, 2=second, etc.)",
	"homing.positive_direction": "True if homing moves in positive direction",
	"homing.mpos_mm":            "Machine position after homing (mm)",
	"homing.feed_mm_per_min":    "Homing feed rate (mm/min)",
	"homing.seek_mm_per_min":    "Homing seek rate (mm/min) - faster initial approach",

	"tmc_2130":   "TMC2130 stepper driver configuration",
	"tmc_2208":   "TMC2208 stepper driver configuration",
	"tmc_2209":   "TMC2209 stepper driver configuration",
	"tmc_2660":   "TMC2660 stepper driver configuration",
	"tmc_5160":   "TMC5160 stepper driver configuration",
	"current_ma": "Motor current in milliamps",
	"microsteps": "Microstepping setting (1, 2, 4, 8, 16, 32, 64, 128, 256)",
	"stallguard": "StallGuard threshold for sensorless homing",

	"spindle":               "Spindle/laser control configuration",
	"spindle.output_pin":    "PWM output pin for spindle speed control",
	"spindle.enable_pin":    "Spindle enable/disable pin",
	"spindle.direction_pin": "Spindle direction control pin",
	"spindle.pwm_hz":        "PWM frequency in Hz",
	"spindle.off_on_alarm":  "Turn off spindle when alarm is triggered",
	"spindle.tool_num":      "Tool number for this spindle",
	"spindle.speed_map":     `Speed mapping: "rpm1=pwm1% rpm2=pwm2%" format`,

	"control":                 "Control input pins (feed hold, cycle start, etc.)",
	"control.safety_door_pin": "Safety door input pin",
	"control.reset_pin":       "Reset button input pin",
	"control.feed_hold_pin":   "Feed hold button input pin",
	"control.cycle_start_pin": "Cycle start button input pin",

	"uart":        "UART communication configuration",
	"uart.uart0":  "UART channel 0 configuration",
	"uart.uart1":  "UART channel 1 configuration",
	"uart.uart2":  "UART channel 2 configuration",
	"baud":        "Baud rate (9600, 19200, 38400, 57600, 115200, etc.)",
	"rts_pin":     "RTS (Request to Send) pin for hardware flow control",

	"sd":                 "SD card interface configuration",
	"sd.card_detect_pin": "SD card detection pin (optional)",
	"sd.miso_pin":        "SPI MISO pin for SD card",
	"sd.mosi_pin":        "SPI MOSI pin for SD card",
	"sd.sck_pin":         "SPI clock pin for SD card",
	"sd.cs_pin":          "SPI chip select pin for SD card",

	"macros":               "Custom G-code macros",
	"macros.startup_line0": "Startup line 0 - executed on boot",
	"macros.startup_line1": "Startup line 1 - executed on boot",

	"i2so":          "I2S shift register output configuration",
	"i2so.bck_pin":  "I2S bit clock pin",
	"i2so.data_pin": "I2S data pin",
	"i2so.ws_pin":   "I2S word select pin",
}

var axisDocs = map[string]string{
	"x": "X-axis configuration (typically horizontal left-right movement)",
	"y": "Y-axis configuration (typically horizontal front-back movement)",
	"z": "Z-axis configuration (typically vertical up-down movement)",
	"a": "A-axis configuration (rotational axis around X)",
	"b": "B-axis configuration (rotational axis around Y)",
	"c": "C-axis configuration (rotational axis around Z)",
}

// CommentFor returns the documentation line for the field at p, or "". It is
// shaped to plug into source.WithComments.
func CommentFor(p ncconf.Path) string {
	switch {
	case len(p) == 0:
		return ""
	case len(p) == 2 && p[0] == "axes":
		return AxisComment(p[1])
	case len(p) == 2 && p[0] == "macros" && strings.HasPrefix(p[1], "macro") && len(p[1]) == 6:
		return "Macro " + p[1][5:] + " - user-defined G-code sequence"
	}
	if c, ok := fieldDocs[p.String()]; ok {
		return c
	}
	// Axis-scoped homing keys ("axes.x.homing.cycle") share the global docs.
	if len(p) >= 2 && p[len(p)-2] == "homing" {
		if c, ok := fieldDocs["homing."+p.Last()]; ok {
			return c
		}
	}
	return fieldDocs[p.Last()]
}

// AxisComment describes an axis identifier.
func AxisComment(id string) string {
	if c, ok := axisDocs[strings.ToLower(id)]; ok {
		return c
	}
	return strings.ToUpper(id) + "-axis configuration"
}
