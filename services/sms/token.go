package sms

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/SteveElouga/waterbill-api/services/verification"
)

var ErrEmptyToken = errors.New("token id is empty after cleaning")

// Token ids arrive from SMS deep-links and survive copy-paste through
// messaging apps, which like to smuggle in invisible code points. CleanToken
// strips zero-width characters, the BOM and ordinary whitespace anywhere in
// the string. An id that is empty afterwards is rejected, not coerced.
func CleanToken(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\u200B', '\u200C', '\u200D', '\u2060', '\uFEFF':
			return -1
		}
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	if cleaned == "" {
		return "", ErrEmptyToken
	}
	return cleaned, nil
}

// RedirectURL builds the deep-link embedded in verification SMS, pointing the
// user at the frontend page for the purpose with the token id attached.
func RedirectURL(baseURL string, purpose verification.Purpose, tokenID string) (string, error) {
	cleaned, err := CleanToken(tokenID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%s?token=%s", strings.TrimRight(baseURL, "/"), purpose.Endpoint(), cleaned), nil
}
