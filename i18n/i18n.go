// Package i18n holds the message catalog and language helpers.
package i18n

import (
	"context"
	"strings"
)

// Default is the language used when nothing better is known.
const Default = "en"

var messages = map[string]map[string]string{
	"en": {
		"required":               "Required",
		"invalid":                "Invalid value",
		"too_long":               "Too long",
		"not_found":              "Not found",
		"forbidden":              "Forbidden",
		"unauthorized":           "Authentication required",
		"too_short":              "Too short",
		"invalid_credentials":    "Invalid email or password",
		"email_taken":            "Email already registered",
		"reason.phone":           "Phone",
		"reason.email":           "Email",
		"reason.name":            "Name",
		"reason.payment_account": "Account",
	},
	"my": {
		"required":               "ဖြည့်ရန်လိုအပ်သည်",
		"invalid":                "တန်ဖိုးမမှန်ကန်ပါ",
		"too_long":               "ရှည်လွန်းသည်",
		"not_found":              "ရှာမတွေ့ပါ",
		"forbidden":              "ခွင့်မပြုပါ",
		"unauthorized":           "အကောင့်ဝင်ရန်လိုအပ်သည်",
		"too_short":              "တိုလွန်းသည်",
		"invalid_credentials":    "အီးမေးလ် သို့မဟုတ် စကားဝှက် မှားနေသည်",
		"email_taken":            "ဤအီးမေးလ်ကို မှတ်ပုံတင်ပြီးဖြစ်သည်",
		"reason.phone":           "ဖုန်း",
		"reason.email":           "အီးမေးလ်",
		"reason.name":            "အမည်",
		"reason.payment_account": "ငွေလွှဲအကောင့်",
	},
}

// Supported reports whether lang has its own catalog.
func Supported(lang string) bool {
	_, ok := messages[lang]
	return ok
}

// DetectLanguage picks the first supported primary tag from an
// Accept-Language header, falling back to Default.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(part)
		if i := strings.IndexByte(tag, ';'); i >= 0 {
			tag = tag[:i]
		}
		if i := strings.IndexByte(tag, '-'); i >= 0 {
			tag = tag[:i]
		}
		tag = strings.ToLower(strings.TrimSpace(tag))
		if Supported(tag) {
			return tag
		}
	}
	return Default
}

// T translates code into lang. Unknown languages use Default; unknown codes
// are returned unchanged.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if v, ok := m[code]; ok {
			return v
		}
	}
	if v, ok := messages[Default][code]; ok {
		return v
	}
	return code
}

type ctxKey struct{}

// WithLang stores the request language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFrom returns the language stored in ctx, or Default.
func LangFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return Default
}
