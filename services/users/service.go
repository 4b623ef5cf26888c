package users

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SteveElouga/waterbill-api/services/logging"
	"github.com/SteveElouga/waterbill-api/services/phone"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrPhoneTaken    = errors.New("a user with this phone number already exists")
	ErrNameRequired  = errors.New("first name and last name are required")
	ErrInvalidPhone  = errors.New("phone number must contain 9 to 15 digits")
	ErrApartmentName = errors.New("apartment name cannot exceed 3 characters")
)

type Service struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewService(db *gorm.DB, logger *logging.Service) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

type CreateUserInput struct {
	Phone         string
	FirstName     string
	LastName      string
	Email         string
	Address       string
	ApartmentName string
	PasswordHash  string
}

// CreateTx inserts an inactive account on the caller's transaction handle.
// The phone is normalized first; uniqueness is enforced both by the lookup
// here and by the unique index underneath, which is what rejects duplicate
// concurrent registrations racing through the SMS window.
func (s *Service) CreateTx(tx *gorm.DB, input CreateUserInput) (*User, error) {
	normalized, err := phone.Normalize(input.Phone)
	if err != nil || !phone.ValidateLength(normalized) {
		return nil, ErrInvalidPhone
	}

	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, ErrNameRequired
	}

	if len(input.ApartmentName) > 3 {
		return nil, ErrApartmentName
	}

	var count int64
	if err := tx.Model(&User{}).Where("phone = ?", normalized).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check phone uniqueness: %w", err)
	}
	if count > 0 {
		return nil, ErrPhoneTaken
	}

	user := &User{
		Phone:         normalized,
		FirstName:     strings.TrimSpace(input.FirstName),
		LastName:      strings.TrimSpace(input.LastName),
		Email:         input.Email,
		Address:       input.Address,
		ApartmentName: input.ApartmentName,
		Password:      input.PasswordHash,
	}

	if err := tx.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created", zap.String("phone", user.Phone), zap.Uint("user_id", user.ID))
	return user, nil
}

// FindByPhone resolves an account by any phone formatting the caller has.
func (s *Service) FindByPhone(rawPhone string) (*User, error) {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return nil, ErrUserNotFound
	}

	var user User
	if err := s.db.Where("phone = ?", normalized).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

func (s *Service) FindByID(id uint) (*User, error) {
	var user User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

// PhoneInUse reports whether any account owns the number, optionally
// excluding one user id.
func (s *Service) PhoneInUse(rawPhone string, excludeUserID uint) (bool, error) {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return false, ErrInvalidPhone
	}

	q := s.db.Model(&User{}).Where("phone = ?", normalized)
	if excludeUserID != 0 {
		q = q.Where("id <> ?", excludeUserID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check phone: %w", err)
	}
	return count > 0, nil
}

// ActivateTx flips the account active on the caller's transaction handle.
func (s *Service) ActivateTx(tx *gorm.DB, user *User) error {
	if err := tx.Model(user).Update("active", true).Error; err != nil {
		return fmt.Errorf("failed to activate user: %w", err)
	}
	user.Active = true
	return nil
}

// UpdatePasswordTx swaps the password hash on the caller's transaction
// handle, so the write commits together with the token consumption that
// authorized it.
func (s *Service) UpdatePasswordTx(tx *gorm.DB, user *User, passwordHash string) error {
	if err := tx.Model(user).Update("password", passwordHash).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	user.Password = passwordHash
	return nil
}

// UpdatePhoneTx moves the account to a new number on the caller's
// transaction handle.
func (s *Service) UpdatePhoneTx(tx *gorm.DB, user *User, rawPhone string) error {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil || !phone.ValidateLength(normalized) {
		return ErrInvalidPhone
	}

	if err := tx.Model(user).Update("phone", normalized).Error; err != nil {
		return fmt.Errorf("failed to update phone: %w", err)
	}
	user.Phone = normalized
	return nil
}

func (s *Service) RecordLogin(user *User) error {
	now := time.Now()
	if err := s.db.Model(user).Update("last_login", now).Error; err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLogin = &now
	return nil
}

type UpdateProfileInput struct {
	FirstName     *string
	LastName      *string
	Email         *string
	Address       *string
	ApartmentName *string
}

// UpdateProfile applies a partial profile update. Phone and password have
// their own verified flows and are not touchable here.
func (s *Service) UpdateProfile(user *User, input UpdateProfileInput) error {
	updates := map[string]any{}

	if input.FirstName != nil {
		if strings.TrimSpace(*input.FirstName) == "" {
			return ErrNameRequired
		}
		updates["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		if strings.TrimSpace(*input.LastName) == "" {
			return ErrNameRequired
		}
		updates["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.ApartmentName != nil {
		if len(*input.ApartmentName) > 3 {
			return ErrApartmentName
		}
		updates["apartment_name"] = *input.ApartmentName
	}

	if len(updates) == 0 {
		return nil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return s.db.First(user, user.ID).Error
}
