package jwt

import (
	"github.com/SteveElouga/waterbill-api/config"
	"github.com/SteveElouga/waterbill-api/services/logging"
	"go.uber.org/fx"
)

func NewJWTService(cfg *config.Config, logger *logging.Service) *Service {
	return NewService(cfg, logger)
}

var Module = fx.Options(
	fx.Provide(NewJWTService),
)
