// Package sms provides the outbound SMS gateway used by the verification
// flows. Production traffic goes through the carrier HTTP API; development
// uses a gateway that only logs.
package sms

import (
	"fmt"

	"github.com/SteveElouga/waterbill-api/services/verification"
)

// Gateway is the narrow send-and-confirm surface the services depend on.
// Send methods report delivery with their bool and reserve the error for
// hard transport failures; a timeout is reported as a failed send, never
// retried by the gateway itself.
type Gateway interface {
	Available() bool
	SendCode(phone, code string) (bool, error)
	SendVerification(phone, code string, purpose verification.Purpose, redirectURL string) (bool, error)
	SendConfirmation(phone string, purpose verification.Purpose, details string) (bool, error)
}

func codeMessage(appName, code string) string {
	return fmt.Sprintf("Your %s activation code is: %s. It expires in 10 minutes. Do not share this code.", appName, code)
}

func verificationMessage(appName, code string, purpose verification.Purpose, redirectURL string) string {
	var action string
	switch purpose {
	case verification.PurposeActivation:
		action = "activate your account"
	case verification.PurposePasswordReset:
		action = "reset your password"
	case verification.PurposePasswordChange:
		action = "change your password"
	case verification.PurposePhoneChange:
		action = "confirm your new phone number"
	}

	msg := fmt.Sprintf("Your %s code to %s is: %s. It expires in 10 minutes.", appName, action, code)
	if redirectURL != "" {
		msg += " Continue here: " + redirectURL
	}
	return msg
}

func confirmationMessage(appName string, purpose verification.Purpose, details string) string {
	var body string
	switch purpose {
	case verification.PurposeActivation:
		body = "Your account has been activated."
	case verification.PurposePasswordReset:
		body = "Your password has been reset."
	case verification.PurposePasswordChange:
		body = "Your password has been changed."
	case verification.PurposePhoneChange:
		body = "Your phone number has been changed."
	}

	msg := fmt.Sprintf("%s: %s", appName, body)
	if details != "" {
		msg += " " + details
	}
	return msg
}
