package auth

import (
	"errors"

	"github.com/SteveElouga/waterbill-api/services/users"
	"github.com/SteveElouga/waterbill-api/services/verification"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ActivateAccount checks the SMS code for a pending account and, on success,
// flips the account active and removes the challenge in one transaction.
func (s *Service) ActivateAccount(phone, code string) (*users.User, error) {
	user, err := s.users.FindByPhone(phone)
	if err != nil {
		return nil, ErrAccountNotFound
	}
	if user.Active {
		return nil, ErrAccountAlreadyActive
	}

	token, err := s.verification.GetActivationToken(user.ID)
	if err != nil {
		if errors.Is(err, verification.ErrTokenNotFound) {
			return nil, ErrNoPendingCode
		}
		return nil, err
	}

	if token.IsExpired() {
		return nil, ErrCodeExpired
	}
	if token.Locked {
		return nil, ErrCodeLocked
	}

	ok, err := s.verification.VerifyActivation(token, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		if token.Locked {
			return nil, ErrCodeLocked
		}
		return nil, ErrCodeIncorrect
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.users.ActivateTx(tx, user); err != nil {
			return err
		}
		return s.verification.DeleteActivationTokenTx(tx, token)
	})
	if err != nil {
		return nil, err
	}

	if sent, err := s.gateway.SendConfirmation(user.Phone, verification.PurposeActivation, ""); err != nil || !sent {
		s.logger.Warn("activation confirmation SMS not delivered",
			zap.Uint("user_id", user.ID), zap.Error(err))
	}

	s.logger.Info("account activated", zap.Uint("user_id", user.ID), zap.String("phone", user.Phone))
	return user, nil
}

// ResendActivationCode sends a fresh code for a pending account, subject to
// the cooldown and the daily quota. The send counter advances before the SMS
// goes out and stays advanced if delivery fails.
func (s *Service) ResendActivationCode(phone string) error {
	user, err := s.users.FindByPhone(phone)
	if err != nil {
		return ErrAccountNotFound
	}
	if user.Active {
		return ErrAccountAlreadyActive
	}

	token, err := s.verification.GetActivationToken(user.ID)
	if err != nil {
		if errors.Is(err, verification.ErrTokenNotFound) {
			return ErrNoPendingCode
		}
		return err
	}

	if token.Locked {
		return ErrVerificationLocked
	}

	ok, err := s.verification.CanResendActivation(token)
	if err != nil {
		return err
	}
	if !ok {
		return ErrResendCooldown
	}

	if !s.gateway.Available() {
		return ErrSmsUnavailable
	}

	code, err := s.verification.RecordActivationResend(token)
	if err != nil {
		return err
	}

	sent, err := s.gateway.SendCode(user.Phone, code)
	if err != nil || !sent {
		s.logger.Warn("activation code resend failed",
			zap.Uint("user_id", user.ID), zap.Error(err))
		return ErrSmsSendFailed
	}

	s.logger.Info("activation code resent",
		zap.Uint("user_id", user.ID), zap.Uint("send_count", token.SendCount))
	return nil
}
