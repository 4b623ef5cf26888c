package verification

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/SteveElouga/waterbill-api/config"
	"github.com/SteveElouga/waterbill-api/services/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrTokenNotFound   = errors.New("verification token not found")
	ErrTokenUsed       = errors.New("verification token has already been used")
	ErrSubjectRequired = errors.New("either a user or a phone number is required")
)

// Service owns the one-time-code state machine shared by the four
// verification flows: code generation and hashing, expiry, the attempt
// ceiling, and the resend cooldown/quota counters.
type Service struct {
	db     *gorm.DB
	cfg    *config.Config
	logger *logging.Service
}

func NewService(db *gorm.DB, cfg *config.Config, logger *logging.Service) *Service {
	return &Service{
		db:     db,
		cfg:    cfg,
		logger: logger,
	}
}

// GenerateCode draws a code uniformly from [100000, 999999], so it is always
// six digits with no leading zero.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}

// HashCode hashes a code with SHA-256. Only the hash is ever persisted.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// CreateToken replaces any unused token for the same (purpose, subject) with
// a fresh challenge and returns it together with the plaintext code. The
// delete and insert run in one transaction so concurrent creates cannot leave
// two live tokens behind.
func (s *Service) CreateToken(purpose Purpose, userID *uint, phone string) (*Token, string, error) {
	if userID == nil && phone == "" {
		return nil, "", ErrSubjectRequired
	}

	code, err := GenerateCode()
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	token := &Token{
		Token:      uuid.New().String(),
		Purpose:    purpose,
		UserID:     userID,
		Phone:      phone,
		CodeHash:   HashCode(code),
		ExpiresAt:  now.Add(s.cfg.Verification.CodeTTL),
		SendCount:  1,
		LastSentAt: now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		stale := tx.Where("purpose = ? AND used = ?", purpose, false)
		if userID != nil {
			stale = stale.Where("user_id = ?", *userID)
		} else {
			stale = stale.Where("user_id IS NULL AND phone = ?", phone)
		}
		if err := stale.Delete(&Token{}).Error; err != nil {
			return err
		}

		return tx.Create(token).Error
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create verification token: %w", err)
	}

	s.logger.Info("verification token created",
		zap.String("purpose", string(purpose)),
		zap.String("token", token.Token),
		zap.Time("expires_at", token.ExpiresAt))

	return token, code, nil
}

// GetToken fetches an unused token by its opaque id, filtered to the purpose
// the caller expects. Used or unknown ids both come back as ErrTokenNotFound.
func (s *Service) GetToken(tokenID string, purpose Purpose) (*Token, error) {
	var token Token
	err := s.db.Where("token = ? AND purpose = ? AND used = ?", tokenID, purpose, false).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}
	return &token, nil
}

// Verify checks a code against the token. Expired, locked and used tokens
// fail without an attempt penalty. A wrong code counts an attempt through a
// single guarded UPDATE so concurrent attempts cannot double-count or skip
// the lock, and locks the token once the ceiling is reached. A correct code
// returns true without mutating state; consuming the token is the caller's
// job via MarkUsed.
func (s *Service) Verify(t *Token, code string) (bool, error) {
	if t.IsExpired() || t.Locked || t.Used || t.Attempts >= s.cfg.Verification.MaxAttempts {
		return false, nil
	}

	if HashCode(code) == t.CodeHash {
		return true, nil
	}

	res := s.db.Model(&Token{}).Where("id = ?", t.ID).Updates(map[string]any{
		"attempts": gorm.Expr("attempts + 1"),
		"locked":   gorm.Expr("attempts + 1 >= ?", s.cfg.Verification.MaxAttempts),
	})
	if res.Error != nil {
		return false, fmt.Errorf("failed to record verification attempt: %w", res.Error)
	}

	if err := s.db.First(t, t.ID).Error; err != nil {
		return false, fmt.Errorf("failed to reload verification token: %w", err)
	}

	if t.Locked {
		s.logger.Warn("verification token locked after repeated failures",
			zap.String("purpose", string(t.Purpose)),
			zap.String("token", t.Token))
	}

	return false, nil
}

// MarkUsed consumes the token. The guarded update makes consumption one-shot
// under concurrency: the second caller sees ErrTokenUsed.
func (s *Service) MarkUsed(t *Token) error {
	return s.MarkUsedTx(s.db, t)
}

// MarkUsedTx consumes the token on the caller's transaction handle, so the
// consumption commits or rolls back together with whatever mutation the
// token authorized.
func (s *Service) MarkUsedTx(tx *gorm.DB, t *Token) error {
	res := tx.Model(&Token{}).Where("id = ? AND used = ?", t.ID, false).Update("used", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark verification token used: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTokenUsed
	}

	t.Used = true
	return nil
}

// CanResend reports whether another code may be sent for this token: a 60s
// cooldown since the last send, then a daily quota that resets when the
// calendar date has advanced.
func (s *Service) CanResend(t *Token) (bool, error) {
	ok, reset := s.resendAllowed(t.SendCount, t.LastSentAt)
	if reset {
		t.SendCount = 0
		if err := s.db.Model(&Token{}).Where("id = ?", t.ID).Update("send_count", 0).Error; err != nil {
			return false, fmt.Errorf("failed to reset send quota: %w", err)
		}
	}
	return ok, nil
}

// RecordResend regenerates the code, advances the send counters and persists
// them, returning the new plaintext for dispatch. The counter deliberately
// advances before the SMS goes out; a failed send does not roll it back.
func (s *Service) RecordResend(t *Token) (string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}

	t.CodeHash = HashCode(code)
	t.SendCount++
	t.LastSentAt = time.Now()

	err = s.db.Model(&Token{}).Where("id = ?", t.ID).Updates(map[string]any{
		"code_hash":    t.CodeHash,
		"send_count":   t.SendCount,
		"last_sent_at": t.LastSentAt,
	}).Error
	if err != nil {
		return "", fmt.Errorf("failed to record resend: %w", err)
	}

	return code, nil
}

// CleanupExpired removes expired rows from both token tables. Expiry is
// otherwise detected lazily on verification; this exists for operational use.
func (s *Service) CleanupExpired() error {
	now := time.Now()

	res := s.db.Where("expires_at < ?", now).Delete(&Token{})
	if res.Error != nil {
		return fmt.Errorf("failed to cleanup expired verification tokens: %w", res.Error)
	}
	removed := res.RowsAffected

	res = s.db.Where("expires_at < ?", now).Delete(&ActivationToken{})
	if res.Error != nil {
		return fmt.Errorf("failed to cleanup expired activation tokens: %w", res.Error)
	}

	if removed+res.RowsAffected > 0 {
		s.logger.Info("expired tokens cleaned up",
			zap.Int64("verification_tokens", removed),
			zap.Int64("activation_tokens", res.RowsAffected))
	}
	return nil
}

func (s *Service) resendAllowed(sendCount uint, lastSentAt time.Time) (ok bool, resetQuota bool) {
	now := time.Now()
	if now.Sub(lastSentAt) < s.cfg.Verification.ResendCooldown {
		return false, false
	}

	if sendCount >= s.cfg.Verification.DailySendQuota {
		y1, m1, d1 := now.Date()
		y2, m2, d2 := lastSentAt.Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			return true, true
		}
		return false, false
	}

	return true, false
}
