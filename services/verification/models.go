package verification

import (
	"time"
)

// Token is the shared challenge row for password reset, password change and
// phone change. UserID is nil when the subject is a bare phone number that
// may not belong to any account (password reset for an unknown number never
// creates one, but the shape allows it). For phone_change, Phone holds the
// candidate new number.
type Token struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Token      string    `json:"token" gorm:"uniqueIndex;size:36;not null"`
	Purpose    Purpose   `json:"purpose" gorm:"size:20;not null;index:idx_purpose_user;index:idx_purpose_phone"`
	UserID     *uint     `json:"user_id,omitempty" gorm:"index:idx_purpose_user"`
	Phone      string    `json:"phone,omitempty" gorm:"size:16;index:idx_purpose_phone"`
	CodeHash   string    `json:"-" gorm:"size:64;not null"`
	ExpiresAt  time.Time `json:"expires_at" gorm:"not null;index"`
	Attempts   uint      `json:"attempts" gorm:"default:0"`
	SendCount  uint      `json:"send_count" gorm:"default:1"`
	LastSentAt time.Time `json:"last_sent_at"`
	Locked     bool      `json:"locked" gorm:"default:false"`
	Used       bool      `json:"used" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Token) TableName() string {
	return "verification_tokens"
}

func (t *Token) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// ActivationToken is the dedicated one-per-account activation challenge.
// Activation never has the "subject may not exist" ambiguity of the shared
// table, so it keeps its own 1:1 row and is deleted outright on success.
type ActivationToken struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	CodeHash   string    `json:"-" gorm:"size:64;not null"`
	ExpiresAt  time.Time `json:"expires_at" gorm:"not null"`
	Attempts   uint      `json:"attempts" gorm:"default:0"`
	SendCount  uint      `json:"send_count" gorm:"default:1"`
	LastSentAt time.Time `json:"last_sent_at"`
	Locked     bool      `json:"locked" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (ActivationToken) TableName() string {
	return "activation_tokens"
}

func (t *ActivationToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
