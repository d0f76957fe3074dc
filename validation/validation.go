package validation

import (
	"strings"
	"unicode/utf8"
)

// Violations maps a field path to an error code translatable through i18n.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// MaxLength flags values longer than max runes.
func MaxLength(field, value string, max int, v Violations) {
	if utf8.RuneCountInString(value) > max {
		v[field] = "too_long"
	}
}

// OneOf flags values outside allowed.
func OneOf(field, value string, allowed []string, v Violations) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v[field] = "invalid"
}
