package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected", "got", "min" or "max").
type Translator interface {
	Message(code string, data map[string]string) string
}

type template func(data map[string]string) string

func text(s string) template {
	return func(data map[string]string) string { return expand(s, data) }
}

// bounded picks between an inclusive and an exclusive wording.
func bounded(inclusive, exclusive string) template {
	return func(data map[string]string) string {
		if data["inclusive"] == "true" {
			return expand(inclusive, data)
		}
		return expand(exclusive, data)
	}
}

// expand substitutes {name} placeholders from data.
func expand(s string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(s, "{") {
		return s
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

var catalogs = map[string]map[string]template{
	"en": {
		"invalid_type":     text("Expected {expected}, received {got}"),
		"required":         text("Required"),
		"too_small":        bounded("Number must be greater than or equal to {min}", "Number must be greater than {min}"),
		"too_big":          bounded("Number must be less than or equal to {max}", "Number must be less than {max}"),
		"invalid_enum":     text("Invalid enum value. Expected {expected}, received '{got}'"),
		"not_finite":       text("Number must be finite"),
		"not_power_of_two": text("Number must be a power of two"),
		"invalid_format":   text("Invalid {expected}: {got}"),
		"duplicate_key":    text("duplicate key"),
		"parse_error":      text("parse error"),
		"domain_range":     text("value outside the typical range"),
		"conflict":         text("Pin {pin} is used by multiple fields: {paths}"),
	},
	"ja": {
		"invalid_type":     text("型が不正です ({expected} が必要ですが {got} でした)"),
		"required":         text("必須プロパティが不足しています"),
		"too_small":        bounded("{min} 以上の値が必要です", "{min} より大きい値が必要です"),
		"too_big":          bounded("{max} 以下の値が必要です", "{max} 未満の値が必要です"),
		"invalid_enum":     text("許可されていない値です ({expected} のいずれか)"),
		"not_finite":       text("有限の数値が必要です"),
		"not_power_of_two": text("2 のべき乗が必要です"),
		"invalid_format":   text("{expected} の形式が不正です: {got}"),
		"duplicate_key":    text("キーが重複しています"),
		"parse_error":      text("解析エラー"),
		"domain_range":     text("一般的な範囲外の値です"),
		"conflict":         text("ピン {pin} が複数のフィールドで使われています: {paths}"),
	},
}

// dictTranslator is the built-in dictionary-based Translator. Codes missing
// from the language fall back to English, then to the code itself.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	if tpl, ok := catalogs[t.lang][code]; ok {
		return tpl(data)
	}
	if tpl, ok := catalogs["en"][code]; ok {
		return tpl(data)
	}
	return code
}

var (
	mu                           = sync.RWMutex{}
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := catalogs[lang]; !ok {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
