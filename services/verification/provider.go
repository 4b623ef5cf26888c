package verification

import (
	"github.com/SteveElouga/waterbill-api/config"
	"github.com/SteveElouga/waterbill-api/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideVerificationService(db *gorm.DB, cfg *config.Config, logger *logging.Service) *Service {
	return NewService(db, cfg, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideVerificationService),
)
