package auth

import (
	"errors"

	"github.com/SteveElouga/waterbill-api/services/phone"
	"github.com/SteveElouga/waterbill-api/services/sms"
	"github.com/SteveElouga/waterbill-api/services/verification"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RequestPhoneChange starts the flow to move an account to a new number.
// The code is sent to the NEW number, proving the user controls it before
// anything changes.
func (s *Service) RequestPhoneChange(userID uint, newPhone string) (string, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return "", err
	}

	normalized, err := phone.Normalize(newPhone)
	if err != nil || !phone.ValidateLength(normalized) {
		return "", phone.ErrInvalidPhone
	}

	inUse, err := s.users.PhoneInUse(normalized, user.ID)
	if err != nil {
		return "", err
	}
	if inUse {
		return "", ErrPhoneTaken
	}

	if !s.gateway.Available() {
		return "", ErrSmsUnavailable
	}

	token, code, err := s.verification.CreateToken(verification.PurposePhoneChange, &user.ID, normalized)
	if err != nil {
		return "", err
	}

	redirect, err := sms.RedirectURL(s.config.SMS.RedirectURL, token.Purpose, token.Token)
	if err != nil {
		return "", err
	}

	sent, err := s.gateway.SendVerification(normalized, code, token.Purpose, redirect)
	if err != nil || !sent {
		s.logger.Warn("phone change SMS not delivered",
			zap.Uint("user_id", user.ID), zap.Error(err))
		return "", ErrSmsSendFailed
	}

	s.logger.Info("phone change code sent",
		zap.Uint("user_id", user.ID), zap.String("new_phone", normalized))
	return token.Token, nil
}

// ConfirmPhoneChange finishes the move. Uniqueness is re-checked at confirm
// time; a number grabbed by someone else during the code window answers with
// its own error rather than the generic one, since the requester is already
// authenticated. Both the old and the new number get a confirmation SMS.
func (s *Service) ConfirmPhoneChange(rawTokenID, code string) error {
	token, err := s.lookupToken(rawTokenID, verification.PurposePhoneChange)
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

	inUse, err := s.users.PhoneInUse(token.Phone, user.ID)
	if err != nil {
		return err
	}
	if inUse {
		return ErrPhoneNowTaken
	}

	oldPhone := user.Phone

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.users.UpdatePhoneTx(tx, user, token.Phone); err != nil {
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

	details := "New number: " + user.Phone
	for _, recipient := range []string{oldPhone, user.Phone} {
		if sent, err := s.gateway.SendConfirmation(recipient, verification.PurposePhoneChange, details); err != nil || !sent {
			s.logger.Warn("phone change confirmation SMS not delivered",
				zap.Uint("user_id", user.ID), zap.String("recipient", recipient), zap.Error(err))
		}
	}

	s.logger.Info("phone number changed",
		zap.Uint("user_id", user.ID),
		zap.String("old_phone", oldPhone),
		zap.String("new_phone", user.Phone))
	return nil
}
