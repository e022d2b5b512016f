package pins

import (
	"fmt"
	"slices"
	"strings"

	ncconf "github.com/reoring/ncconf"
	"github.com/reoring/ncconf/board"
	"github.com/reoring/ncconf/document"
)

// Role is what a field needs from the pin it is assigned.
type Role uint8

const (
	RoleAny Role = iota
	RoleInput
	RoleOutput
	RolePWM
)

func (r Role) String() string {
	switch r {
	case RoleInput:
		return "input"
	case RoleOutput:
		return "output"
	case RolePWM:
		return "PWM"
	}
	return "any"
}

// FieldRole classifies a dotted pin field path.
func FieldRole(field string) Role {
	p := ncconf.ParsePath(field)
	name := p.Last()
	parent := ""
	if len(p) > 1 {
		parent = p[len(p)-2]
	}
	switch {
	case name == "uart_pin":
		return RoleAny
	case field == "spindle.output_pin", strings.HasPrefix(name, "user_pwm_"):
		return RolePWM
	case parent == "control",
		parent == "io" && strings.HasPrefix(name, "macro"),
		strings.HasPrefix(name, "limit_"),
		name == "probe_pin", name == "rxd_pin", name == "card_detect_pin", name == "miso_pin":
		return RoleInput
	}
	return RoleOutput
}

// Status describes one pin in the context of a document and optional board.
type Status struct {
	Pin      string
	IsValid  bool
	IsUsed   bool
	UsedBy   []string
	BoardPin *board.Pin
	Errors   []string

	// unusable is set when the pin itself is malformed or missing from the
	// board, as opposed to merely contested.
	unusable bool
}

// GetPinStatus checks the pin format, its presence and capabilities on b (if
// non-nil) for every claimant, and flags a conflict when two or more fields
// claim it.
func GetPinStatus(pin string, doc document.Value, b *board.Descriptor) Status {
	return status(pin, ExtractAllPinAssignments(doc), b)
}

func status(pin string, idx *Assignments, b *board.Descriptor) Status {
	st := Status{Pin: strings.TrimSpace(pin)}
	st.UsedBy = idx.UsedBy(pin)
	st.IsUsed = len(st.UsedBy) > 0

	p, err := ParsePin(pin)
	if err != nil {
		st.Errors = append(st.Errors, err.Error())
		st.unusable = true
		return st
	}
	if b != nil && p.Kind == GPIO {
		bp, ok := b.PinByGPIO(p.Number)
		if !ok {
			st.Errors = append(st.Errors, fmt.Sprintf("GPIO %d is not available on %s", p.Number, b.Name))
			st.unusable = true
			return st
		}
		st.BoardPin = &bp
	}
	for _, f := range st.UsedBy {
		if msg := roleError(p, st.BoardPin, f); msg != "" {
			st.Errors = append(st.Errors, msg)
		}
	}
	if len(st.UsedBy) > 1 {
		st.Errors = append(st.Errors, "Pin conflict: used by "+strings.Join(st.UsedBy, ", "))
	}
	st.IsValid = len(st.Errors) == 0
	return st
}

// roleError reports whether the pin can serve field. Board capabilities are
// only known for GPIO pins; I2S expander pins are one-directional.
func roleError(p Pin, bp *board.Pin, field string) string {
	role := FieldRole(field)
	if role == RoleAny {
		return ""
	}
	switch p.Kind {
	case I2SO:
		if role == RoleInput {
			return fmt.Sprintf("%s is output-only and cannot be used by %s", p, field)
		}
		return ""
	case I2SI:
		if role != RoleInput {
			return fmt.Sprintf("%s is input-only and cannot be used by %s", p, field)
		}
		return ""
	}
	if bp == nil {
		return ""
	}
	c := bp.Capabilities
	ok := true
	switch role {
	case RoleInput:
		ok = c.Input
	case RoleOutput:
		ok = c.Output
	case RolePWM:
		ok = c.Output && c.PWM
	}
	if ok {
		return ""
	}
	return fmt.Sprintf("GPIO %d does not support %s required by %s", bp.GPIO, role, field)
}

// IsValidPinAssignment checks whether field may be set to pin. The field's
// own current claim is not a conflict, so re-assigning a field to the pin it
// already holds passes. An empty pin is always valid.
func IsValidPinAssignment(pin, field string, doc document.Value, b *board.Descriptor) (bool, []string) {
	if Key(pin) == "" {
		return true, nil
	}
	st := GetPinStatus(pin, doc, b)
	if st.unusable {
		return false, st.Errors
	}
	var errs []string
	p, _ := ParsePin(pin)
	if msg := roleError(p, st.BoardPin, field); msg != "" {
		errs = append(errs, msg)
	}
	others := without(st.UsedBy, field)
	for _, f := range others {
		if msg := roleError(p, st.BoardPin, f); msg != "" {
			errs = append(errs, msg)
		}
	}
	if len(others) > 0 {
		errs = append(errs, "Pin conflict: would conflict with "+strings.Join(others, ", "))
	}
	return len(errs) == 0, errs
}

func without(fs []string, field string) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		if f != field {
			out = append(out, f)
		}
	}
	return out
}

// Describe renders a one-line status for a pin as seen from field, e.g.
// "Used by io.probe_pin" or "Available (Digital, PWM) - DAC1".
func Describe(st Status, field string) string {
	if st.Pin == "" {
		return ""
	}
	if st.unusable {
		return st.Errors[0]
	}
	others := without(st.UsedBy, field)
	switch {
	case len(st.UsedBy) > 1 && len(others) > 0:
		return "Conflict: also used by " + strings.Join(others, ", ")
	case len(others) == 1:
		return "Used by " + others[0]
	}
	if st.BoardPin != nil {
		c := st.BoardPin.Capabilities
		s := "Available (" + strings.Join(c.Labels(), ", ") + ")"
		if c.Notes != "" {
			s += " - " + c.Notes
		}
		return s
	}
	return "Available"
}

// AvailablePins lists the board's physical pins; nil board yields nil.
func AvailablePins(b *board.Descriptor) []board.Pin {
	if b == nil {
		return nil
	}
	return slices.Clone(b.Pins)
}

// UnassignedPins lists the board pins no field of doc claims.
func UnassignedPins(doc document.Value, b *board.Descriptor) []board.Pin {
	idx := ExtractAllPinAssignments(doc)
	var out []board.Pin
	for _, p := range AvailablePins(b) {
		if len(idx.by[p.ID()]) == 0 {
			out = append(out, p)
		}
	}
	return out
}

// Check reports every pin problem in doc as issues: malformed pins
// (invalid_format), pins b lacks or cannot use in the claimant's role
// (domain_range), then one conflict issue per contested pin. b may be nil.
func Check(doc document.Value, b *board.Descriptor) ncconf.Issues {
	idx := ExtractAllPinAssignments(doc)
	var out ncconf.Issues
	for key, fields := range idx.All() {
		p, err := ParsePin(key)
		var bp *board.Pin
		missing := false
		if err == nil && b != nil && p.Kind == GPIO {
			if got, ok := b.PinByGPIO(p.Number); ok {
				bp = &got
			} else {
				missing = true
			}
		}
		for _, f := range fields {
			at := ncconf.ParsePath(f)
			switch {
			case err != nil:
				out = append(out, at.IssueAt(ncconf.CodeInvalidFormat, err.Error(), "pin", key))
			case missing:
				out = append(out, at.IssueAt(ncconf.CodeDomainRange,
					fmt.Sprintf("GPIO %d is not available on %s", p.Number, b.Name), "pin", key, "board", b.ID))
			default:
				if msg := roleError(p, bp, f); msg != "" {
					out = append(out, at.IssueAt(ncconf.CodeDomainRange, msg, "pin", key, "role", FieldRole(f).String()))
				}
			}
		}
	}
	return append(out, ConflictIssues(conflicts(idx))...)
}
