package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("invalid_type", map[string]string{"expected": "number", "got": "string"}); msg != "Expected number, received string" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("required", nil); msg == "Required" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_BoundsAndFallback(t *testing.T) {
	if msg := T("too_small", map[string]string{"min": "0"}); msg != "Number must be greater than 0" {
		t.Fatalf("exclusive: %q", msg)
	}
	if msg := T("too_small", map[string]string{"min": "1", "inclusive": "true"}); msg != "Number must be greater than or equal to 1" {
		t.Fatalf("inclusive: %q", msg)
	}
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("unknown codes echo the code, got %q", msg)
	}
	SetLanguage("fr")
	if msg := T("required", nil); msg != "Required" {
		t.Fatalf("unknown languages fall back to en, got %q", msg)
	}
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X-" + code }

func TestSetTranslator(t *testing.T) {
	SetTranslator(upper{})
	if msg := T("required", nil); msg != "X-required" {
		t.Fatalf("custom translator not used: %q", msg)
	}
	SetTranslator(nil)
	if msg := T("required", nil); msg != "Required" {
		t.Fatalf("nil must restore default, got %q", msg)
	}
}
