// Package validator holds the predicates applied to free-text answers.
package validator

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const (
	minNameLen = 2
	maxNameLen = 50
)

// accented lists the non-ASCII letters accepted in names.
const accented = "ÁÉÍÓÚÑÜáéíóúñü"

var shirtSizes = []string{
	"CHICO",
	"MEDIANO",
	"GRANDE",
	"X GRANDE",
	"XX GRANDE",
	"JOVENES CHICO",
	"JOVENES MEDIANO",
	"JOVENES GRANDE",
}

var upper = cases.Upper(language.Spanish)

// IsValidName reports whether text is 2 to 50 characters of letters and spaces.
// Letters are ASCII plus the accented vowels, ñ and ü.
func IsValidName(text string) bool {
	text = norm.NFC.String(text)

	n := utf8.RuneCountInString(text)
	if n < minNameLen || n > maxNameLen {
		return false
	}

	for _, r := range text {
		switch {
		case r == ' ':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case strings.ContainsRune(accented, r):
		default:
			return false
		}
	}
	return true
}

// NormalizeShirtSize trims and upper-cases a size answer.
func NormalizeShirtSize(text string) string {
	return upper.String(strings.TrimSpace(text))
}

// IsValidShirtSize reports whether text names one of the offered sizes, ignoring case
// and surrounding whitespace.
func IsValidShirtSize(text string) bool {
	size := NormalizeShirtSize(text)
	for _, s := range shirtSizes {
		if size == s {
			return true
		}
	}
	return false
}

// ShirtSizes returns the offered sizes in display order.
func ShirtSizes() []string {
	out := make([]string, len(shirtSizes))
	copy(out, shirtSizes)
	return out
}
