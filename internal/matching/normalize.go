// Package matching turns identifier values into comparison keys and finds the
// cases that hold the same key.
package matching

import (
	"strings"
	"unicode"
)

// Kind is the type of fact an identifier records about a case.
type Kind string

const (
	KindName           Kind = "name"
	KindPhone          Kind = "phone"
	KindEmail          Kind = "email"
	KindWebsite        Kind = "website"
	KindPaymentAccount Kind = "payment_account"
)

// Kinds lists every identifier kind in display order.
var Kinds = []Kind{KindName, KindPhone, KindEmail, KindWebsite, KindPaymentAccount}

// LinkingKinds lists the kinds that feed the related-case relation, in the
// order match reasons are reported.
var LinkingKinds = []Kind{KindPhone, KindEmail, KindName, KindPaymentAccount}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Links reports whether identifiers of this kind participate in linkage.
// Websites are recorded and searchable but never link cases.
func (k Kind) Links() bool {
	switch k {
	case KindName, KindPhone, KindEmail, KindPaymentAccount:
		return true
	}
	return false
}

// Normalize returns the comparison key for a raw value.
// ok is false for blank input, which never matches anything.
func Normalize(kind Kind, raw string) (key string, ok bool) {
	var out string
	switch kind {
	case KindPhone, KindEmail, KindPaymentAccount:
		out = stripSpace(raw)
	default:
		out = strings.Join(strings.Fields(raw), " ")
	}
	if out == "" {
		return "", false
	}
	return strings.ToLower(out), true
}

// stripSpace removes every whitespace rune.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
