package auth

import (
	"github.com/SteveElouga/waterbill-api/config"
	jwtsvc "github.com/SteveElouga/waterbill-api/services/jwt"
	"github.com/SteveElouga/waterbill-api/services/logging"
	"github.com/SteveElouga/waterbill-api/services/sms"
	"github.com/SteveElouga/waterbill-api/services/users"
	"github.com/SteveElouga/waterbill-api/services/verification"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func NewAuthService(
	cfg *config.Config,
	db *gorm.DB,
	usersService *users.Service,
	allowlist *users.AllowlistService,
	verificationService *verification.Service,
	gateway sms.Gateway,
	jwtService *jwtsvc.Service,
	logger *logging.Service,
) *Service {
	return NewService(cfg, db, usersService, allowlist, verificationService, gateway, jwtService, logger)
}

var Module = fx.Options(
	fx.Provide(NewAuthService),
)
