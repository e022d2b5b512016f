package legacy

import (
	"strings"

	ncconf "github.com/reoring/ncconf"
)

// Remedy returns a remediation hint for common post-migration validation
// failures, chosen by issue code and path-name heuristics, or "".
func Remedy(it ncconf.Issue) string {
	p := it.Path.String()
	switch it.Code {
	case ncconf.CodeInvalidType:
		switch {
		case strings.Contains(p, "steps_per_mm"):
			return "steps_per_mm should be a positive number (e.g., 80 for typical setup)"
		case strings.Contains(p, "pin"):
			return `Pin should be a string like "gpio.2" or "NO_PIN" to disable`
		case strings.Contains(p, "rate"):
			return "Rate values should be positive numbers in mm/min"
		}
	case ncconf.CodeTooSmall, ncconf.CodeNotFinite:
		if strings.Contains(p, "steps_per_mm") || strings.Contains(p, "rate") || strings.Contains(p, "acceleration") {
			return "Value must be positive for motor configuration"
		}
	case ncconf.CodeNotPowerOfTwo:
		return "Microsteps must be one of 1, 2, 4, 8, 16, 32, 64, 128 or 256"
	}
	return ""
}

// Annotate returns a copy of iss with Hint filled from Remedy where empty.
func Annotate(iss ncconf.Issues) ncconf.Issues {
	if len(iss) == 0 {
		return iss
	}
	out := make(ncconf.Issues, len(iss))
	for i, it := range iss {
		if it.Hint == "" {
			it.Hint = Remedy(it)
		}
		out[i] = it
	}
	return out
}

// Humanize turns validation issues into error suggestions of the form
// "path: message", each carrying its remedy when one is known.
func Humanize(iss ncconf.Issues) []ncconf.Suggestion {
	out := make([]ncconf.Suggestion, 0, len(iss))
	for _, it := range Annotate(iss) {
		out = append(out, ncconf.Failure(it.Path.String()+": "+it.Message, it.Hint, it.Path))
	}
	return out
}
