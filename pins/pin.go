// Package pins indexes which configuration fields claim which physical pins,
// reports collisions, and checks pins against a board's capability table.
//
// Every query is a pure function of the document (and an optional board), so
// callers rebuild the index whenever the document changes.
package pins

import (
	"errors"
	"strconv"
	"strings"
)

// Kind is the pin namespace.
type Kind string

const (
	GPIO Kind = "gpio" // native GPIO line
	I2SO Kind = "i2so" // I2S shift-register output
	I2SI Kind = "i2si" // I2S shift-register input
)

// NoPin is FluidNC's explicit "unassigned" marker.
const NoPin = "NO_PIN"

// ErrInvalidFormat is returned by ParsePin for strings outside the pin grammar.
var ErrInvalidFormat = errors.New("Invalid pin format. Use gpio.XX, i2so.XX, or i2si.XX")

// Pin is a parsed pin identifier such as "gpio.2:low:pu".
type Pin struct {
	Kind   Kind
	Number int
	// Attrs are the ":"-separated modifiers (low, high, pu, pd), lower-cased.
	Attrs []string
}

var knownAttrs = map[string]bool{"low": true, "high": true, "pu": true, "pd": true}

// ParsePin parses "<kind>.<n>" with an optional attribute suffix. Kind and
// attributes are case-insensitive; surrounding whitespace is ignored.
func ParsePin(s string) (Pin, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), ":")
	kind, num, ok := strings.Cut(parts[0], ".")
	if !ok {
		return Pin{}, ErrInvalidFormat
	}
	var p Pin
	switch Kind(kind) {
	case GPIO, I2SO, I2SI:
		p.Kind = Kind(kind)
	default:
		return Pin{}, ErrInvalidFormat
	}
	if num == "" || strings.TrimLeft(num, "0123456789") != "" {
		return Pin{}, ErrInvalidFormat
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return Pin{}, ErrInvalidFormat
	}
	p.Number = n
	for _, a := range parts[1:] {
		if !knownAttrs[a] {
			return Pin{}, ErrInvalidFormat
		}
		p.Attrs = append(p.Attrs, a)
	}
	return p, nil
}

// IsValidFormat reports whether s follows the pin grammar.
func IsValidFormat(s string) bool {
	_, err := ParsePin(s)
	return err == nil
}

// String renders the pin without attributes, e.g. "gpio.25". This is the
// form used as index key.
func (p Pin) String() string { return string(p.Kind) + "." + strconv.Itoa(p.Number) }

// ExtractGPIONumber returns N for "gpio.N" and false for anything else,
// including i2so/i2si pins.
func ExtractGPIONumber(s string) (int, bool) {
	p, err := ParsePin(s)
	if err != nil || p.Kind != GPIO {
		return 0, false
	}
	return p.Number, true
}

// Key normalizes a pin string for indexing: parsed pins collapse to their
// base form, anything else is trimmed and lower-cased. Blank strings and
// NO_PIN yield "".
func Key(s string) string {
	t := strings.TrimSpace(s)
	if t == "" || strings.EqualFold(t, NoPin) {
		return ""
	}
	if p, err := ParsePin(t); err == nil {
		return p.String()
	}
	return strings.ToLower(t)
}
