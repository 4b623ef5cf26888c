package users

import (
	"github.com/SteveElouga/waterbill-api/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func NewUsersService(db *gorm.DB, logger *logging.Service) *Service {
	return NewService(db, logger)
}

func NewPhoneAllowlistService(db *gorm.DB, logger *logging.Service) *AllowlistService {
	return NewAllowlistService(db, logger)
}

var Module = fx.Options(
	fx.Provide(NewUsersService),
	fx.Provide(NewPhoneAllowlistService),
)
