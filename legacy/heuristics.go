package legacy

import (
	"fmt"
	"math"
	"strings"

	ncconf "github.com/reoring/ncconf"
	"github.com/reoring/ncconf/document"
)

// ObsoleteDrivers are stepper driver model names that trigger an upgrade hint
// wherever they appear in a document, as a key or a string value.
var ObsoleteDrivers = []string{"A4988", "DRV8825", "LV8729", "TMC2100"}

// Heuristics derives advisory suggestions from doc without rewriting it: one
// info per obsolete driver mentioned anywhere, a warning when no board is
// set, and an info when no name is set. Empty strings, false, 0 and null
// count as unset.
func Heuristics(doc document.Value) []ncconf.Suggestion {
	var out []ncconf.Suggestion
	for _, drv := range ObsoleteDrivers {
		if mentions(doc, drv) {
			out = append(out, ncconf.Info(
				fmt.Sprintf("Detected legacy stepper driver: %s", drv),
				"Consider upgrading to TMC2209 or TMC2130 for better performance and features.",
				nil))
		}
	}
	if !truthy(doc.Get("board")) {
		out = append(out, ncconf.Warning("No board type specified",
			`Add board: "ESP32" or appropriate board type for your hardware.`, ncconf.Path{"board"}))
	}
	if !truthy(doc.Get("name")) {
		out = append(out, ncconf.Info("No machine name specified",
			"Add a descriptive name for your machine configuration.", ncconf.Path{"name"}))
	}
	return out
}

func mentions(v document.Value, needle string) bool {
	switch v.Kind() {
	case document.KindString:
		s, _ := v.AsString()
		return strings.Contains(s, needle)
	case document.KindArray:
		for _, it := range v.Items() {
			if mentions(it, needle) {
				return true
			}
		}
	case document.KindMap:
		for k, child := range v.Map().All() {
			if strings.Contains(k, needle) || mentions(child, needle) {
				return true
			}
		}
	}
	return false
}

func truthy(v document.Value) bool {
	switch v.Kind() {
	case document.KindAbsent, document.KindNull:
		return false
	case document.KindBool:
		b, _ := v.AsBool()
		return b
	case document.KindNumber:
		n, _ := v.AsNumber()
		return n != 0 && !math.IsNaN(n)
	case document.KindString:
		s, _ := v.AsString()
		return s != ""
	}
	return true
}
