package users

import (
	"strings"
	"time"
)

// User is an account keyed by its normalized international phone number.
// Accounts are created inactive and cannot log in until SMS activation
// flips Active.
type User struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	Phone         string     `json:"phone" gorm:"uniqueIndex;size:16;not null"`
	FirstName     string     `json:"first_name" gorm:"size:150;not null"`
	LastName      string     `json:"last_name" gorm:"size:150;not null"`
	Email         string     `json:"email,omitempty" gorm:"size:254"`
	Address       string     `json:"address,omitempty"`
	ApartmentName string     `json:"apartment_name,omitempty" gorm:"size:3"`
	Password      string     `json:"-" gorm:"size:255;not null"`
	Active        bool       `json:"is_active" gorm:"default:false"`
	Staff         bool       `json:"is_staff" gorm:"default:false"`
	DateJoined    time.Time  `json:"date_joined" gorm:"autoCreateTime"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// PhoneAllowlistEntry is an admin-managed grant to register a number.
// Registration fails closed unless an active entry exists.
type PhoneAllowlistEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Phone     string    `json:"phone" gorm:"uniqueIndex;size:16;not null"`
	Active    bool      `json:"is_active" gorm:"default:true"`
	AddedByID *uint     `json:"added_by_id,omitempty" gorm:"index"`
	Notes     string    `json:"notes,omitempty"`
	AddedAt   time.Time `json:"added_at" gorm:"autoCreateTime"`
}

func (PhoneAllowlistEntry) TableName() string {
	return "phone_allowlist"
}
