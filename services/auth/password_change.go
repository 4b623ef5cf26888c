package auth

import (
	"errors"

	"github.com/SteveElouga/waterbill-api/services/sms"
	"github.com/SteveElouga/waterbill-api/services/verification"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RequestPasswordChange starts the SMS-verified change flow for a logged-in
// user. The current password is required up front so a hijacked session
// cannot rotate the credential alone.
func (s *Service) RequestPasswordChange(userID uint, currentPassword string) (string, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return "", err
	}

	if err := s.VerifyPassword(user.Password, currentPassword); err != nil {
		return "", ErrInvalidCredentials
	}

	if !s.gateway.Available() {
		return "", ErrSmsUnavailable
	}

	token, code, err := s.verification.CreateToken(verification.PurposePasswordChange, &user.ID, "")
	if err != nil {
		return "", err
	}

	redirect, err := sms.RedirectURL(s.config.SMS.RedirectURL, token.Purpose, token.Token)
	if err != nil {
		return "", err
	}

	sent, err := s.gateway.SendVerification(user.Phone, code, token.Purpose, redirect)
	if err != nil || !sent {
		s.logger.Warn("password change SMS not delivered",
			zap.Uint("user_id", user.ID), zap.Error(err))
		return "", ErrSmsSendFailed
	}

	s.logger.Info("password change code sent", zap.Uint("user_id", user.ID))
	return token.Token, nil
}

// ConfirmPasswordChange finishes the flow and consumes the token.
func (s *Service) ConfirmPasswordChange(rawTokenID, code, newPassword string) error {
	token, err := s.lookupToken(rawTokenID, verification.PurposePasswordChange)
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

	if sent, err := s.gateway.SendConfirmation(user.Phone, verification.PurposePasswordChange, ""); err != nil || !sent {
		s.logger.Warn("password change confirmation SMS not delivered",
			zap.Uint("user_id", user.ID), zap.Error(err))
	}

	s.logger.Info("password changed", zap.Uint("user_id", user.ID))
	return nil
}
