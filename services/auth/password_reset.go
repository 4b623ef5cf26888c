package auth

import (
	"errors"

	"github.com/SteveElouga/waterbill-api/services/sms"
	"github.com/SteveElouga/waterbill-api/services/verification"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RequestPasswordReset starts the SMS-verified reset flow. For a phone with
// no account it reports success without creating or sending anything, so the
// endpoint cannot be used to enumerate registered numbers.
func (s *Service) RequestPasswordReset(phone string) (string, error) {
	user, err := s.users.FindByPhone(phone)
	if err != nil {
		s.logger.Info("password reset requested for unknown phone", zap.String("phone", phone))
		return "", nil
	}

	if !s.gateway.Available() {
		return "", ErrSmsUnavailable
	}

	token, code, err := s.verification.CreateToken(verification.PurposePasswordReset, &user.ID, "")
	if err != nil {
		return "", err
	}

	redirect, err := sms.RedirectURL(s.config.SMS.RedirectURL, token.Purpose, token.Token)
	if err != nil {
		return "", err
	}

	sent, err := s.gateway.SendVerification(user.Phone, code, token.Purpose, redirect)
	if err != nil || !sent {
		s.logger.Warn("password reset SMS not delivered",
			zap.Uint("user_id", user.ID), zap.Error(err))
		return "", ErrSmsSendFailed
	}

	s.logger.Info("password reset code sent", zap.Uint("user_id", user.ID))
	return token.Token, nil
}

// ConfirmPasswordReset finishes the flow. Unknown, used and expired tokens
// all answer with the same generic error.
func (s *Service) ConfirmPasswordReset(rawTokenID, code, newPassword string) error {
	token, err := s.lookupToken(rawTokenID, verification.PurposePasswordReset)
	if err != nil {
		return err
	}

	if err := s.checkCode(token, code); err != nil {
		return err
	}

	user, err := s.users.FindByID(*token.UserID)
	if err != nil {
		return ErrCodeInvalidOrExpired
	}

	passwordHash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.users.UpdatePasswordTx(tx, user, passwordHash); err != nil {
			return err
		}
		return s.verification.MarkUsedTx(tx, token)
	})
	if err != nil {
		if errors.Is(err, verification.ErrTokenUsed) {
			return ErrCodeInvalidOrExpired
		}
		return err
	}

	if sent, err := s.gateway.SendConfirmation(user.Phone, verification.PurposePasswordReset, ""); err != nil || !sent {
		s.logger.Warn("password reset confirmation SMS not delivered",
			zap.Uint("user_id", user.ID), zap.Error(err))
	}

	s.logger.Info("password reset completed", zap.Uint("user_id", user.ID))
	return nil
}

// lookupToken sanitizes a token id coming off a deep link and resolves it.
// Everything that does not resolve to a live token maps to the generic error.
func (s *Service) lookupToken(rawTokenID string, purpose verification.Purpose) (*verification.Token, error) {
	tokenID, err := sms.CleanToken(rawTokenID)
	if err != nil {
		return nil, ErrCodeInvalidOrExpired
	}

	token, err := s.verification.GetToken(tokenID, purpose)
	if err != nil {
		if errors.Is(err, verification.ErrTokenNotFound) {
			return nil, ErrCodeInvalidOrExpired
		}
		return nil, err
	}

	if token.IsExpired() {
		return nil, ErrCodeInvalidOrExpired
	}

	return token, nil
}

// checkCode applies the attempt-counting verification to a live token. A
// wrong code still advances the attempt counter and can lock the token, but
// every failure answers with the same generic error so the caller cannot
// tell a wrong code from a locked or dead token.
func (s *Service) checkCode(token *verification.Token, code string) error {
	if token.Locked {
		return ErrCodeInvalidOrExpired
	}

	ok, err := s.verification.Verify(token, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCodeInvalidOrExpired
	}
	return nil
}
