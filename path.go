package ncconf

import (
	"strconv"
	"strings"
)

// RootLabel is how the empty path renders in dotted form.
const RootLabel = "(root)"

// Path is an ordered sequence of map keys and array indices from the document
// root. Index segments are stored in decimal form. Path values are immutable:
// every builder returns a fresh slice.
type Path []string

// ParsePath splits a dotted path ("axes.x.motor0.step_pin"). Empty input
// yields the root path.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	return Path(strings.Split(s, "."))
}

// Field appends a key segment.
func (p Path) Field(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}

// Index appends an array index segment.
func (p Path) Index(i int) Path { return p.Field(strconv.Itoa(i)) }

// Join appends every segment of q.
func (p Path) Join(q Path) Path {
	out := make(Path, 0, len(p)+len(q))
	out = append(out, p...)
	return append(out, q...)
}

// Last returns the final segment, or "" for the root.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// HasPrefix reports whether q is a leading subsequence of p.
func (p Path) HasPrefix(q Path) bool {
	if len(q) > len(p) {
		return false
	}
	for i := range q {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Equal compares segment-wise.
func (p Path) Equal(q Path) bool { return len(p) == len(q) && p.HasPrefix(q) }

// String renders the dotted form used in pin claimant lists and messages.
func (p Path) String() string {
	if len(p) == 0 {
		return RootLabel
	}
	return strings.Join(p, ".")
}

// Pointer renders an RFC 6901 JSON Pointer.
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, seg := range p {
		b.WriteByte('/')
		// escape '~' -> '~0', '/' -> '~1' per RFC6901
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(seg, "~", "~0"), "/", "~1"))
	}
	return b.String()
}

// IssueAt creates an Issue at the path with the given code, message and
// key/value params.
func (p Path) IssueAt(code, msg string, kv ...any) Issue {
	var m map[string]any
	if len(kv) > 1 {
		m = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			k, _ := kv[i].(string)
			m[k] = kv[i+1]
		}
	}
	return Issue{Path: p, Code: code, Message: msg, Params: m}
}
