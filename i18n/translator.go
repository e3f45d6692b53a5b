// Package i18n provides short localized titles for validation issue codes.
package i18n

import (
	"sync/atomic"

	"golang.org/x/text/language"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "path").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dict = map[string]map[string]string{
	"en": {
		"parse_error":            "document could not be parsed",
		"missing_field":          "required field missing",
		"invalid_type":           "invalid type",
		"invalid_value":          "invalid value",
		"unsupported_version":    "unsupported OpenAPI version",
		"duplicate_operation_id": "duplicate operationId",
		"unresolved_ref":         "unresolved $ref",
		"invalid_parameter":      "invalid parameter",
	},
	"ja": {
		"parse_error":            "解析エラー",
		"missing_field":          "必須フィールドが不足しています",
		"invalid_type":           "型が不正です",
		"invalid_value":          "値が不正です",
		"unsupported_version":    "未対応の OpenAPI バージョンです",
		"duplicate_operation_id": "operationId が重複しています",
		"unresolved_ref":         "$ref を解決できません",
		"invalid_parameter":      "パラメータが不正です",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dict[t.lang][code]
	if !ok {
		return code
	}
	if p := data["path"]; p != "" {
		return msg + ": " + p
	}
	return msg
}

var supported = []language.Tag{language.English, language.Japanese}

var matcher = language.NewMatcher(supported)

// Match picks a supported language for an Accept-Language header value.
// Anything unparseable falls back to "en".
func Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return "en"
	}
	_, idx, _ := matcher.Match(tags...)
	base, _ := supported[idx].Base()
	return base.String()
}

// ForLanguage returns the built-in Translator for lang ("en"/"ja").
func ForLanguage(lang string) Translator {
	if lang != "ja" {
		lang = "en"
	}
	return dictTranslator{lang: lang}
}

type holder struct{ tr Translator }

var current atomic.Pointer[holder]

func init() { current.Store(&holder{tr: ForLanguage("en")}) }

// SetLanguage switches the process-wide Translator language ("en"/"ja").
func SetLanguage(lang string) {
	current.Store(&holder{tr: ForLanguage(lang)})
}

// SetTranslator replaces the process-wide Translator (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = ForLanguage("en")
	}
	current.Store(&holder{tr: tr})
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	return current.Load().tr.Message(code, data)
}
