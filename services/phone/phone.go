// Package phone canonicalizes phone-number input into the international
// format used as the account lookup key throughout the API.
package phone

import (
	"errors"
	"strings"
	"unicode"
)

var ErrInvalidPhone = errors.New("invalid phone number")

const (
	MinDigits = 9
	MaxDigits = 15
)

// Normalize strips formatting characters (spaces, hyphens, parentheses, a
// leading +) and returns the number as digits prefixed with exactly one "+".
// Empty or digit-free input returns ErrInvalidPhone rather than "+".
func Normalize(input string) (string, error) {
	digits := digitsOnly(input)
	if digits == "" {
		return "", ErrInvalidPhone
	}

	return "+" + digits, nil
}

// ValidateLength checks the digit count of a normalized number against the
// allowed range.
func ValidateLength(normalized string) bool {
	n := len(digitsOnly(normalized))
	return n >= MinDigits && n <= MaxDigits
}

// CleanForDisplay removes everything except digits and "+", keeping whatever
// prefix the caller supplied. Unlike Normalize it never errors.
func CleanForDisplay(input string) string {
	var b strings.Builder
	for _, r := range input {
		if unicode.IsDigit(r) || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
