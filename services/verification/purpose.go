package verification

import "fmt"

// Purpose identifies what a verification token authorizes once its code is
// confirmed. The set is closed: ParsePurpose rejects anything else, and the
// switches below are exhaustive so every purpose has copy for every message
// kind.
type Purpose string

const (
	PurposeActivation     Purpose = "activation"
	PurposePasswordReset  Purpose = "password_reset"
	PurposePasswordChange Purpose = "password_change"
	PurposePhoneChange    Purpose = "phone_change"
)

func ParsePurpose(s string) (Purpose, error) {
	switch Purpose(s) {
	case PurposeActivation, PurposePasswordReset, PurposePasswordChange, PurposePhoneChange:
		return Purpose(s), nil
	}
	return "", fmt.Errorf("unknown verification purpose: %q", s)
}

func (p Purpose) Valid() bool {
	_, err := ParsePurpose(string(p))
	return err == nil
}

func (p Purpose) DisplayName() string {
	switch p {
	case PurposeActivation:
		return "account activation"
	case PurposePasswordReset:
		return "password reset"
	case PurposePasswordChange:
		return "password change"
	case PurposePhoneChange:
		return "phone number change"
	}
	return string(p)
}

// Endpoint is the frontend path embedded in verification deep-links.
func (p Purpose) Endpoint() string {
	switch p {
	case PurposePasswordReset:
		return "/reset-password"
	case PurposePasswordChange:
		return "/change-password"
	case PurposePhoneChange:
		return "/change-phone"
	case PurposeActivation:
		return "/verify"
	}
	return "/verify"
}
