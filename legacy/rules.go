// Package legacy rewrites obsolete FluidNC configuration layouts into the
// canonical one. Rewrites are driven by a declarative rule table and
// reported as Mappings plus advisory Suggestions.
package legacy

import (
	"fmt"
	"strings"

	ncconf "github.com/reoring/ncconf"
	"github.com/reoring/ncconf/document"
)

// Scope selects where a rule's OldPath is looked up.
type Scope uint8

const (
	// ScopeAxis rules apply inside every axes.<id> entry.
	ScopeAxis Scope = iota
	// ScopeRoot rules apply to the document root.
	ScopeRoot
)

func (s Scope) String() string {
	if s == ScopeAxis {
		return "axis"
	}
	return "root"
}

// Rule relocates the value at OldPath to NewPath (both dotted, relative to
// the rule's scope). Convert, when set, rewrites the value on the way.
type Rule struct {
	Scope       Scope
	OldPath     string
	NewPath     string
	Description string
	Convert     func(document.Value) document.Value
}

// Mapping records one applied relocation. Axis is set for axis-scope rules.
type Mapping struct {
	OldPath     string `json:"old_path" yaml:"old_path"`
	NewPath     string `json:"new_path" yaml:"new_path"`
	Description string `json:"description" yaml:"description"`
	Axis        string `json:"axis,omitempty" yaml:"axis,omitempty"`
}

// String renders "old→new", prefixed by the axis when set.
func (m Mapping) String() string {
	if m.Axis != "" {
		return fmt.Sprintf("axes.%s: %s→%s", m.Axis, m.OldPath, m.NewPath)
	}
	return m.OldPath + "→" + m.NewPath
}

func tmcRule(model string) Rule {
	return Rule{
		Scope:       ScopeAxis,
		OldPath:     "tmc" + model,
		NewPath:     "motor0.tmc_" + model,
		Description: fmt.Sprintf("TMC%s configuration moved to motor0.tmc_%s", model, model),
	}
}

// DefaultRules is the built-in rule table, applied in order.
var DefaultRules = []Rule{
	{ScopeAxis, "stepper_driver", "motor0.driver_type", "Legacy stepper_driver field moved to motor0.driver_type", nil},
	{ScopeAxis, "step_pin", "motor0.step_pin", "Legacy step_pin moved to motor configuration", nil},
	{ScopeAxis, "direction_pin", "motor0.direction_pin", "Legacy direction_pin moved to motor configuration", nil},
	{ScopeAxis, "disable_pin", "motor0.disable_pin", "Legacy disable_pin moved to motor configuration", nil},
	tmcRule("2130"),
	tmcRule("2208"),
	tmcRule("2209"),
	tmcRule("2660"),
	tmcRule("5160"),
	{ScopeAxis, "homing_cycle", "homing.cycle", "Legacy homing_cycle moved to homing.cycle", nil},
	{ScopeAxis, "positive_direction", "homing.positive_direction", "Legacy positive_direction moved to homing configuration", nil},
	{ScopeAxis, "max_rate", "max_rate_mm_per_min", "Legacy max_rate renamed to max_rate_mm_per_min for clarity", nil},
	{ScopeAxis, "acceleration", "acceleration_mm_per_sec2", "Legacy acceleration renamed to acceleration_mm_per_sec2 for clarity", nil},

	{ScopeRoot, "pwm_pin", "spindle.output_pin", "Legacy spindle PWM pin moved to spindle.output_pin", nil},
	{ScopeRoot, "spindle_enable_pin", "spindle.enable_pin", "Legacy spindle enable pin moved to spindle.enable_pin", nil},
	{ScopeRoot, "spindle_dir_pin", "spindle.direction_pin", "Legacy spindle direction pin moved to spindle.direction_pin", nil},
}

// CheckRules reports malformed rule tables: empty paths, identical old and
// new paths, a NewPath nested under its own OldPath, or a duplicated OldPath
// within one scope.
func CheckRules(rs []Rule) error {
	seen := map[string]bool{}
	for i, r := range rs {
		if r.OldPath == "" || r.NewPath == "" {
			return fmt.Errorf("legacy: rule %d has an empty path", i)
		}
		if r.OldPath == r.NewPath || strings.HasPrefix(r.NewPath, r.OldPath+".") {
			return fmt.Errorf("legacy: rule %d relocates %q into itself", i, r.OldPath)
		}
		for _, seg := range ncconf.ParsePath(r.NewPath) {
			if seg == "" {
				return fmt.Errorf("legacy: rule %d has an empty segment in %q", i, r.NewPath)
			}
		}
		k := r.Scope.String() + ":" + r.OldPath
		if seen[k] {
			return fmt.Errorf("legacy: rule %d duplicates %s", i, k)
		}
		seen[k] = true
	}
	return nil
}

func init() {
	if err := CheckRules(DefaultRules); err != nil {
		panic(err)
	}
}
