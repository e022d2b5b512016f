package ncconf

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodeInvalidEnum   = "invalid_enum"
	CodeNotFinite     = "not_finite"
	CodeNotPowerOfTwo = "not_power_of_two"
	CodeInvalidFormat = "invalid_format"
	CodeDuplicateKey  = "duplicate_key"
	CodeParseError    = "parse_error"
	// Advisory passes (cross-field and pin checks)
	CodeDomainRange = "domain_range"
	CodeConflict    = "conflict"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    Path   // Ordered keys/indices from the document root.
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, expected types, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"min":0, "got":-5}) for
	// i18n and humanizers.
	Params map[string]any
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. too_small at /axes/x/steps_per_mm
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path.Pointer())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Rebase returns a copy of the issues with every path prefixed by base.
func (iss Issues) Rebase(base Path) Issues {
	if len(iss) == 0 || len(base) == 0 {
		return iss
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		it.Path = base.Join(it.Path)
		out[i] = it
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
