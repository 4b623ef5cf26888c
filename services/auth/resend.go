package auth

import (
	"github.com/SteveElouga/waterbill-api/services/verification"
	"go.uber.org/zap"
)

// ResendCode re-dispatches the code for a live deep-link token, subject to
// the same cooldown and daily quota as activation resends. The challenge is
// regenerated, which invalidates the previously sent code.
func (s *Service) ResendCode(rawTokenID string, purpose verification.Purpose) error {
	token, err := s.lookupToken(rawTokenID, purpose)
	if err != nil {
		return err
	}

	if token.Locked {
		return ErrCodeLocked
	}

	ok, err := s.verification.CanResend(token)
	if err != nil {
		return err
	}
	if !ok {
		return ErrResendCooldown
	}

	if !s.gateway.Available() {
		return ErrSmsUnavailable
	}

	recipient := token.Phone
	if recipient == "" {
		user, err := s.users.FindByID(*token.UserID)
		if err != nil {
			return ErrCodeInvalidOrExpired
		}
		recipient = user.Phone
	}

	code, err := s.verification.RecordResend(token)
	if err != nil {
		return err
	}

	sent, err := s.gateway.SendCode(recipient, code)
	if err != nil || !sent {
		s.logger.Warn("code resend failed",
			zap.String("purpose", string(purpose)), zap.Error(err))
		return ErrSmsSendFailed
	}

	s.logger.Info("verification code resent",
		zap.String("purpose", string(purpose)),
		zap.Uint("send_count", token.SendCount))
	return nil
}
