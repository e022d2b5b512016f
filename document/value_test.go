package document_test

import (
	"math"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	ncconf "github.com/reoring/ncconf"
	"github.com/reoring/ncconf/document"
)

func TestMap_InsertionOrderPreserved(t *testing.T) {
	v := document.Object("z", 1, "a", 2, "m", 3)
	got := strings.Join(v.Map().Keys(), ",")
	if got != "z,a,m" {
		t.Fatalf("keys order: %s", got)
	}
	v2 := v.With("a", document.Int(9))
	if got := strings.Join(v2.Map().Keys(), ","); got != "z,a,m" {
		t.Fatalf("replace must keep position: %s", got)
	}
	if n, _ := v.Get("a").AsNumber(); n != 2 {
		t.Fatalf("original mutated: %v", n)
	}
}

func TestSetPath_CreatesIntermediatesAndSharesNothingMutable(t *testing.T) {
	base := document.Object("axes", document.Object("x", document.Object("steps_per_mm", 80)))
	out := base.SetPath(ncconf.ParsePath("axes.x.motor0.step_pin"), document.String("gpio.2"))
	if s, _ := out.LookupString(ncconf.ParsePath("axes.x.motor0.step_pin")); s != "gpio.2" {
		t.Fatalf("SetPath failed: %s", out)
	}
	if base.Lookup(ncconf.ParsePath("axes.x.motor0")).Kind() != document.KindAbsent {
		t.Fatalf("base was modified: %s", base)
	}
	// non-map intermediates are replaced
	out2 := document.Object("spindle", "x").SetPath(ncconf.ParsePath("spindle.output_pin"), document.String("gpio.4"))
	if s, _ := out2.LookupString(ncconf.ParsePath("spindle.output_pin")); s != "gpio.4" {
		t.Fatalf("got %s", out2)
	}
}

func TestDeletePath(t *testing.T) {
	v := document.Object("a", document.Object("b", 1, "c", 2))
	out := v.DeletePath(ncconf.ParsePath("a.b"))
	if out.Lookup(ncconf.ParsePath("a.b")).Kind() != document.KindAbsent {
		t.Fatalf("a.b still present: %s", out)
	}
	if !out.Lookup(ncconf.ParsePath("a.c")).IsFinite() {
		t.Fatalf("a.c lost: %s", out)
	}
	if !document.Equal(v.DeletePath(ncconf.ParsePath("q.r")), v) {
		t.Fatalf("unresolved delete must be a no-op")
	}
}

func TestMerge_KeptWinsAndReportsConflicts(t *testing.T) {
	kept := document.Object("steps_per_mm", 100, "motor0", document.Object("step_pin", "gpio.2"))
	in := document.Object("steps_per_mm", 80, "max_rate_mm_per_min", 5000, "motor0", document.Object("step_pin", "gpio.2", "direction_pin", "gpio.5"))
	out, conflicts := document.Merge(kept, in)
	if n, _ := out.Get("steps_per_mm").AsNumber(); n != 100 {
		t.Fatalf("kept must win: %v", n)
	}
	if !out.Has("max_rate_mm_per_min") || !out.Get("motor0").Has("direction_pin") {
		t.Fatalf("incoming-only keys must be merged: %s", out)
	}
	if len(conflicts) != 1 || conflicts[0].Path.String() != "steps_per_mm" {
		t.Fatalf("unexpected conflicts: %+v", conflicts)
	}
	if got := strings.Join(out.Map().Keys(), ","); got != "steps_per_mm,motor0,max_rate_mm_per_min" {
		t.Fatalf("order: %s", got)
	}
}

func TestEqual_OrderInsensitiveAndNaN(t *testing.T) {
	a := document.Object("x", 1, "y", 2)
	b := document.Object("y", 2, "x", 1)
	if !document.Equal(a, b) {
		t.Fatalf("maps should be equal regardless of order")
	}
	if document.SameOrder(a, b) {
		t.Fatalf("SameOrder must notice key order")
	}
	nan := document.Number(math.NaN())
	if !document.Equal(nan, nan) {
		t.Fatalf("NaN must equal itself")
	}
	if document.Equal(document.Null(), document.Value{}) {
		t.Fatalf("null and absent differ")
	}
	if document.Equal(document.Int(1), document.String("1")) {
		t.Fatalf("kinds differ")
	}
}

func TestJSON_RoundTripKeepsOrder(t *testing.T) {
	in := `{"name":"Router","board":"ESP32","axes":{"y":{"steps_per_mm":80.5},"x":{"steps_per_mm":80}},"list":[1,"a",null,true]}`
	var v document.Value
	if err := v.UnmarshalJSON([]byte(in)); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != in {
		t.Fatalf("round trip mismatch:\n got %s\nwant %s", out, in)
	}
}

func TestJSON_DuplicateKeyRejected(t *testing.T) {
	_, err := document.DecodeJSON(strings.NewReader(`{"axes":{"x":{},"x":{}}}`))
	iss, ok := ncconf.AsIssues(err)
	if !ok || iss[0].Code != ncconf.CodeDuplicateKey || iss[0].Path.String() != "axes.x" {
		t.Fatalf("want duplicate_key at axes.x, got %v", err)
	}
}

func TestJSON_TrailingDataAndNonFinite(t *testing.T) {
	if _, err := document.DecodeJSON(strings.NewReader(`{} {}`)); err == nil {
		t.Fatalf("trailing value must fail")
	}
	if _, err := document.Number(math.Inf(1)).MarshalJSON(); err == nil {
		t.Fatalf("infinite numbers have no JSON form")
	}
}

func TestYAML_DecodeOrderAndSpecialFloats(t *testing.T) {
	src := "name: Router\naxes:\n  z:\n    steps_per_mm: .nan\n  x:\n    steps_per_mm: .inf\n    max_rate_mm_per_min: 5000\n"
	var v document.Value
	if err := yaml.Unmarshal([]byte(src), &v); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if got := strings.Join(v.Get("axes").Map().Keys(), ","); got != "z,x" {
		t.Fatalf("order: %s", got)
	}
	z, _ := v.Lookup(ncconf.ParsePath("axes.z.steps_per_mm")).AsNumber()
	x, _ := v.Lookup(ncconf.ParsePath("axes.x.steps_per_mm")).AsNumber()
	if !math.IsNaN(z) || !math.IsInf(x, 1) {
		t.Fatalf("special floats: %v %v", z, x)
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), "steps_per_mm: .nan") || strings.Index(string(out), "z:") > strings.Index(string(out), "x:") {
		t.Fatalf("unexpected yaml:\n%s", out)
	}
}

func TestYAML_DuplicateKeyRejected(t *testing.T) {
	var v document.Value
	err := yaml.Unmarshal([]byte("a: 1\na: 2\n"), &v)
	if err == nil {
		t.Fatalf("expected duplicate key error")
	}
}

func TestFromAny_SortsGoMaps(t *testing.T) {
	v := document.MustFromAny(map[string]any{"b": 1, "a": []any{"x", 2.5}})
	if got := strings.Join(v.Map().Keys(), ","); got != "a,b" {
		t.Fatalf("keys: %s", got)
	}
	if _, err := document.FromAny(struct{}{}); err == nil {
		t.Fatalf("unsupported types must fail")
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{
		80:               "80",
		80.5:             "80.5",
		9007199254740991: "9007199254740991",
		math.NaN():       "NaN",
		math.Inf(-1):     "-Infinity",
	}
	for in, want := range cases {
		if got := document.FormatNumber(in); got != want {
			t.Fatalf("FormatNumber(%v)=%s want %s", in, got, want)
		}
	}
}
