// Package phone turns user-typed phone numbers into the canonical key used
// to identify customers.
package phone

import "strings"

const (
	minDigits = 7
	maxDigits = 15
)

// Normalize keeps digits and a single leading '+'. Two inputs that differ
// only by spacing or punctuation normalize to the same key.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValid reports whether raw carries between 7 and 15 digits.
func IsValid(raw string) bool {
	n := digitCount(Normalize(raw))
	return n >= minDigits && n <= maxDigits
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
