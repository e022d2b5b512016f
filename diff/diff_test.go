package diff_test

import (
	"math"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ncconf "github.com/reoring/ncconf"
	"github.com/reoring/ncconf/diff"
	"github.com/reoring/ncconf/document"
)

func TestDiff_Basics(t *testing.T) {
	before := document.Object(
		"name", "Router",
		"axes", document.Object(
			"x", document.Object("steps_per_mm", 80, "soft_limits", true),
		),
		"homing", document.Object("cycle", []any{2, 0, 1}),
		"notes", nil,
	)
	after := document.Object(
		"axes", document.Object(
			"x", document.Object("steps_per_mm", 100, "soft_limits", true),
			"y", document.Object("steps_per_mm", 80),
		),
		"homing", document.Object("cycle", []any{2, 0}),
		"name", "Router",
		"notes", "bench",
	)

	got := diff.Diff(before, after)
	require.Len(t, got, 4)

	assert.Equal(t, "axes.x.steps_per_mm", diff.FormatPath(got[0].Path))
	assert.Equal(t, diff.Changed, got[0].Kind)
	assert.Equal(t, "80", got[0].Old.String())
	assert.Equal(t, "100", got[0].New.String())

	assert.Equal(t, "axes.y", diff.FormatPath(got[1].Path))
	assert.Equal(t, diff.Added, got[1].Kind)
	assert.True(t, got[1].Old.IsAbsent())

	assert.Equal(t, "homing.cycle.2", diff.FormatPath(got[2].Path))
	assert.Equal(t, diff.Removed, got[2].Kind)
	assert.Equal(t, "1", got[2].Old.String())

	assert.Equal(t, "notes", diff.FormatPath(got[3].Path))
	assert.Equal(t, diff.Changed, got[3].Kind, "null is a value")
}

func TestDiff_TypeChangeAndRoot(t *testing.T) {
	got := diff.Diff(document.Object("pwm_hz", "5000"), document.Object("pwm_hz", 5000))
	require.Len(t, got, 1)
	assert.Equal(t, diff.Changed, got[0].Kind)

	got = diff.Diff(document.Int(1), document.String("1"))
	require.Len(t, got, 1)
	assert.Equal(t, "(root)", diff.FormatPath(got[0].Path))

	got = diff.Diff(document.Value{}, document.Object("a", 1))
	require.Len(t, got, 1)
	assert.Equal(t, diff.Added, got[0].Kind)
	assert.Empty(t, diff.Diff(document.Value{}, document.Value{}))

	got = diff.Diff(document.Array(document.Int(1)), document.Object("0", 1))
	require.Len(t, got, 1, "array vs map is one change, not a recursion")
}

func TestDiff_KeyOrderInsensitive(t *testing.T) {
	a := document.Object("a", 1, "b", document.Object("c", 2, "d", 3))
	b := document.Object("b", document.Object("d", 3, "c", 2), "a", 1)
	assert.Empty(t, diff.Diff(a, b))
}

func TestDiff_NaNIsStable(t *testing.T) {
	d := document.Object("x", math.NaN())
	assert.Empty(t, diff.Diff(d, d))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, `"gpio.2"`, diff.FormatValue(document.String("gpio.2")))
	assert.Equal(t, "42", diff.FormatValue(document.Int(42)))
	assert.Equal(t, "0.5", diff.FormatValue(document.Number(0.5)))
	assert.Equal(t, "true", diff.FormatValue(document.Bool(true)))
	assert.Equal(t, "null", diff.FormatValue(document.Null()))
	assert.Equal(t, "undefined", diff.FormatValue(document.Value{}))
	assert.Equal(t, "[1, 2, 3]", diff.FormatValue(document.MustFromAny([]any{1, 2, 3})))
	assert.Equal(t, `["a", "b"]`, diff.FormatValue(document.MustFromAny([]any{"a", "b"})))
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": [\n    true\n  ]\n}",
		diff.FormatValue(document.Object("b", 1, "a", []any{true})))
}

func TestFormat(t *testing.T) {
	cs := diff.Diff(
		document.Object("a", 1, "b", "x"),
		document.Object("a", 2, "c", true),
	)
	lines := make([]string, len(cs))
	for i, c := range cs {
		lines[i] = diff.Format(c)
	}
	assert.Equal(t, []string{"~ a: 1 -> 2", `- b: "x"`, "+ c: true"}, lines)
	assert.Equal(t, "added", diff.Added.String())
}

func TestInvert(t *testing.T) {
	a := document.Object("a", 1, "b", "x")
	b := document.Object("a", 2, "c", true)
	inv := diff.Invert(diff.Diff(a, b))
	back := diff.Diff(b, a)
	assert.ElementsMatch(t, summarize(back), summarize(inv))
}

// Generated documents share a small key pool so that pairs overlap.

func genValue(r *rand.Rand, depth int) document.Value {
	n := r.IntN(7)
	if depth >= 3 && n >= 5 {
		n = r.IntN(5)
	}
	switch n {
	case 0:
		return document.Null()
	case 1:
		return document.Bool(r.IntN(2) == 0)
	case 2:
		return document.Int(int64(r.IntN(4)))
	case 3:
		return document.String([]string{"gpio.2", "gpio.4", "x"}[r.IntN(3)])
	case 4:
		return document.Number(float64(r.IntN(3)) / 2)
	case 5:
		items := make([]document.Value, r.IntN(4))
		for i := range items {
			items[i] = genValue(r, depth+1)
		}
		return document.Array(items...)
	}
	b := document.NewBuilder()
	for range r.IntN(4) {
		b.Set([]string{"a", "b", "c", "motor0", "x"}[r.IntN(5)], genValue(r, depth+1))
	}
	return b.Value()
}

type entry struct {
	path     string
	kind     diff.Kind
	old, new string
}

func summarize(cs []diff.Change) []entry {
	out := make([]entry, len(cs))
	for i, c := range cs {
		out[i] = entry{path: c.Path.String(), kind: c.Kind, old: c.Old.String(), new: c.New.String()}
	}
	return out
}

func paths(cs []diff.Change) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Path.String()
	}
	sort.Strings(out)
	return out
}

func TestDiff_Generated(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	for i := range 500 {
		a := genValue(r, 0)
		b := genValue(r, 0)

		require.Empty(t, diff.Diff(a, a), "case %d: reflexive", i)

		ab := diff.Diff(a, b)
		ba := diff.Diff(b, a)
		require.Equal(t, paths(ab), paths(ba), "case %d: same path set", i)
		require.ElementsMatch(t, summarize(ba), summarize(diff.Invert(ab)), "case %d: symmetric", i)

		if document.Equal(a, b) {
			require.Empty(t, ab, "case %d", i)
		} else {
			require.NotEmpty(t, ab, "case %d", i)
		}
	}
}

func TestChange_PathIsIndependent(t *testing.T) {
	cs := diff.Diff(
		document.Object("a", document.Object("x", 1, "y", 1)),
		document.Object("a", document.Object("x", 2, "y", 2)),
	)
	require.Len(t, cs, 2)
	assert.Equal(t, ncconf.Path{"a", "x"}, cs[0].Path)
	assert.Equal(t, ncconf.Path{"a", "y"}, cs[1].Path)
}
