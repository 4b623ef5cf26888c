package verification

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateActivationTokenTx persists the one-per-account activation challenge
// for a code that has already been dispatched. It runs on the caller's
// transaction handle so registration can roll the row back together with the
// account. Any prior token for the user is replaced.
func (s *Service) CreateActivationTokenTx(tx *gorm.DB, userID uint, code string) (*ActivationToken, error) {
	if err := tx.Where("user_id = ?", userID).Delete(&ActivationToken{}).Error; err != nil {
		return nil, fmt.Errorf("failed to replace activation token: %w", err)
	}

	now := time.Now()
	token := &ActivationToken{
		UserID:     userID,
		CodeHash:   HashCode(code),
		ExpiresAt:  now.Add(s.cfg.Verification.CodeTTL),
		SendCount:  1,
		LastSentAt: now,
	}

	if err := tx.Create(token).Error; err != nil {
		return nil, fmt.Errorf("failed to create activation token: %w", err)
	}

	s.logger.Info("activation token created",
		zap.Uint("user_id", userID),
		zap.Time("expires_at", token.ExpiresAt))

	return token, nil
}

func (s *Service) GetActivationToken(userID uint) (*ActivationToken, error) {
	var token ActivationToken
	err := s.db.Where("user_id = ?", userID).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to look up activation token: %w", err)
	}
	return &token, nil
}

// VerifyActivation mirrors Verify for the dedicated activation table.
func (s *Service) VerifyActivation(t *ActivationToken, code string) (bool, error) {
	if t.IsExpired() || t.Locked || t.Attempts >= s.cfg.Verification.MaxAttempts {
		return false, nil
	}

	if HashCode(code) == t.CodeHash {
		return true, nil
	}

	res := s.db.Model(&ActivationToken{}).Where("id = ?", t.ID).Updates(map[string]any{
		"attempts": gorm.Expr("attempts + 1"),
		"locked":   gorm.Expr("attempts + 1 >= ?", s.cfg.Verification.MaxAttempts),
	})
	if res.Error != nil {
		return false, fmt.Errorf("failed to record activation attempt: %w", res.Error)
	}

	if err := s.db.First(t, t.ID).Error; err != nil {
		return false, fmt.Errorf("failed to reload activation token: %w", err)
	}

	if t.Locked {
		s.logger.Warn("activation token locked after repeated failures",
			zap.Uint("user_id", t.UserID))
	}

	return false, nil
}

// DeleteActivationTokenTx removes the activation row once the account has
// been activated; activation has no "used but kept" state.
func (s *Service) DeleteActivationTokenTx(tx *gorm.DB, t *ActivationToken) error {
	if err := tx.Delete(t).Error; err != nil {
		return fmt.Errorf("failed to delete activation token: %w", err)
	}
	return nil
}

func (s *Service) CanResendActivation(t *ActivationToken) (bool, error) {
	ok, reset := s.resendAllowed(t.SendCount, t.LastSentAt)
	if reset {
		t.SendCount = 0
		if err := s.db.Model(&ActivationToken{}).Where("id = ?", t.ID).Update("send_count", 0).Error; err != nil {
			return false, fmt.Errorf("failed to reset send quota: %w", err)
		}
	}
	return ok, nil
}

func (s *Service) RecordActivationResend(t *ActivationToken) (string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}

	t.CodeHash = HashCode(code)
	t.SendCount++
	t.LastSentAt = time.Now()

	err = s.db.Model(&ActivationToken{}).Where("id = ?", t.ID).Updates(map[string]any{
		"code_hash":    t.CodeHash,
		"send_count":   t.SendCount,
		"last_sent_at": t.LastSentAt,
	}).Error
	if err != nil {
		return "", fmt.Errorf("failed to record resend: %w", err)
	}

	return code, nil
}
