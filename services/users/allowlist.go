package users

import (
	"errors"
	"fmt"
	"os"

	"github.com/SteveElouga/waterbill-api/services/logging"
	"github.com/SteveElouga/waterbill-api/services/phone"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

var (
	ErrAllowlistEntryNotFound = errors.New("allowlist entry not found")
)

// AllowlistService manages the admin-maintained set of phone numbers
// permitted to register. Lookups fail closed: any error reads as not
// authorized.
type AllowlistService struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewAllowlistService(db *gorm.DB, logger *logging.Service) *AllowlistService {
	return &AllowlistService{
		db:     db,
		logger: logger,
	}
}

// IsPhoneAuthorized reports whether an active allowlist entry covers the
// number. Unparseable input and database failures both answer false.
func (s *AllowlistService) IsPhoneAuthorized(rawPhone string) bool {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return false
	}

	var count int64
	if err := s.db.Model(&PhoneAllowlistEntry{}).
		Where("phone = ? AND active = ?", normalized, true).
		Count(&count).Error; err != nil {
		s.logger.Error("allowlist lookup failed", zap.Error(err), zap.String("phone", normalized))
		return false
	}
	return count > 0
}

// Authorize adds a number to the allowlist, reactivating a previously
// deactivated entry instead of failing on the unique index.
func (s *AllowlistService) Authorize(rawPhone string, addedByID *uint, notes string) (*PhoneAllowlistEntry, error) {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil || !phone.ValidateLength(normalized) {
		return nil, ErrInvalidPhone
	}

	var entry PhoneAllowlistEntry
	err = s.db.Where("phone = ?", normalized).First(&entry).Error
	switch {
	case err == nil:
		updates := map[string]any{"active": true}
		if notes != "" {
			updates["notes"] = notes
		}
		if addedByID != nil {
			updates["added_by_id"] = *addedByID
		}
		if err := s.db.Model(&entry).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to reactivate allowlist entry: %w", err)
		}
		return &entry, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry = PhoneAllowlistEntry{
			Phone:     normalized,
			Active:    true,
			AddedByID: addedByID,
			Notes:     notes,
		}
		if err := s.db.Create(&entry).Error; err != nil {
			return nil, fmt.Errorf("failed to create allowlist entry: %w", err)
		}
		s.logger.Info("phone authorized for registration", zap.String("phone", normalized))
		return &entry, nil
	default:
		return nil, fmt.Errorf("failed to look up allowlist entry: %w", err)
	}
}

// Deactivate keeps the row but stops it authorizing registrations.
func (s *AllowlistService) Deactivate(rawPhone string) error {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return ErrAllowlistEntryNotFound
	}

	result := s.db.Model(&PhoneAllowlistEntry{}).
		Where("phone = ?", normalized).
		Update("active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate allowlist entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAllowlistEntryNotFound
	}
	return nil
}

// Remove deletes the row entirely.
func (s *AllowlistService) Remove(rawPhone string) error {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return ErrAllowlistEntryNotFound
	}

	result := s.db.Where("phone = ?", normalized).Delete(&PhoneAllowlistEntry{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove allowlist entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAllowlistEntryNotFound
	}
	return nil
}

func (s *AllowlistService) List() ([]PhoneAllowlistEntry, error) {
	var entries []PhoneAllowlistEntry
	if err := s.db.Order("added_at DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list allowlist entries: %w", err)
	}
	return entries, nil
}

type allowlistSeed struct {
	Phones []struct {
		Phone string `yaml:"phone"`
		Notes string `yaml:"notes"`
	} `yaml:"phones"`
}

// SeedFromFile loads an initial allowlist from a YAML file. Entries that
// already exist are reactivated rather than duplicated. A missing file is
// not an error so deployments without a seed start clean.
func (s *AllowlistService) SeedFromFile(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("allowlist seed file not found, skipping", zap.String("path", path))
			return nil
		}
		return fmt.Errorf("failed to read allowlist seed file: %w", err)
	}

	var seed allowlistSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse allowlist seed file: %w", err)
	}

	for _, p := range seed.Phones {
		if _, err := s.Authorize(p.Phone, nil, p.Notes); err != nil {
			s.logger.Warn("skipping invalid allowlist seed entry",
				zap.String("phone", p.Phone), zap.Error(err))
		}
	}

	s.logger.Info("allowlist seeded", zap.String("path", path), zap.Int("entries", len(seed.Phones)))
	return nil
}
