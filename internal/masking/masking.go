// Package masking renders sensitive identifier values for viewers who may not
// see them. Every function is pure and never consults access state; callers
// decide whether to mask.
package masking

import (
	"strings"

	"github.com/diewo77/scam-catalog/internal/matching"
)

// Redaction is the rune substituted for hidden characters.
const Redaction = '*'

// Phone keeps the first five characters and redacts the rest.
// Values of five characters or fewer are fully redacted.
func Phone(v string) string {
	r := []rune(v)
	if len(r) <= 5 {
		return redact(len(r))
	}
	return string(r[:5]) + redact(len(r)-5)
}

// Email keeps two characters of the local part and two of the domain.
// Anything that is not exactly "local@domain" is fully redacted.
func Email(v string) string {
	parts := strings.Split(v, "@")
	if len(parts) != 2 {
		return redact(runeCount(v))
	}
	return keepPrefix(parts[0], 2) + "@" + keepPrefix(parts[1], 2)
}

// Website keeps the protocol, two characters of the first host label and the
// final label: "https://scam.example.com" becomes "https://sc**.com".
// Middle labels are dropped. Values without "://" are fully redacted, as are
// hosts without a dot.
func Website(v string) string {
	proto, rest, found := strings.Cut(v, "://")
	if !found {
		return redact(runeCount(v))
	}
	labels := strings.Split(rest, ".")
	if len(labels) < 2 {
		return proto + "://" + redact(runeCount(rest))
	}
	return proto + "://" + keepPrefix(labels[0], 2) + "." + labels[len(labels)-1]
}

// PaymentAccount redacts everything but the last four characters.
func PaymentAccount(v string) string {
	r := []rune(v)
	if len(r) <= 4 {
		return redact(len(r))
	}
	return redact(len(r)-4) + string(r[len(r)-4:])
}

// Full redacts every character of v.
func Full(v string) string {
	return redact(runeCount(v))
}

// ForKind dispatches to the masking function of kind. Kinds without a
// format-aware rule, names included, are fully redacted.
func ForKind(kind matching.Kind, v string) string {
	switch kind {
	case matching.KindPhone:
		return Phone(v)
	case matching.KindEmail:
		return Email(v)
	case matching.KindWebsite:
		return Website(v)
	case matching.KindPaymentAccount:
		return PaymentAccount(v)
	}
	return Full(v)
}

// keepPrefix keeps the first n runes and redacts the remainder; parts of n
// runes or fewer are fully redacted.
func keepPrefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return redact(len(r))
	}
	return string(r[:n]) + redact(len(r)-n)
}

func redact(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(string(Redaction), n)
}

func runeCount(s string) int {
	return len([]rune(s))
}
