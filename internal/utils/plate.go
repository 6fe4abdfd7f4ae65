package utils

import (
	"strings"
	"unicode"
)

// NormalizePlate upper-cases a plate and strips everything but letters and
// digits, so "ka 01-ab 1234" and "KA01AB1234" compare equal.
func NormalizePlate(plate string) string {
	var b strings.Builder
	b.Grow(len(plate))
	for _, r := range strings.ToUpper(plate) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanPlate is the display form stored on tickets: trimmed, upper-cased,
// inner whitespace collapsed.
func CleanPlate(plate string) string {
	return strings.Join(strings.Fields(strings.ToUpper(plate)), " ")
}

// NormalizeLabel folds a free-text label for equality matching.
func NormalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
