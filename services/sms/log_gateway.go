package sms

import (
	"github.com/SteveElouga/waterbill-api/services/logging"
	"github.com/SteveElouga/waterbill-api/services/verification"
	"go.uber.org/zap"
)

// LogGateway writes every message to the application log instead of
// dispatching it. It is always available and never fails, which makes local
// registration flows usable without carrier credentials.
type LogGateway struct {
	appName string
	logger  *logging.Service
}

func NewLogGateway(appName string, logger *logging.Service) *LogGateway {
	return &LogGateway{
		appName: appName,
		logger:  logger,
	}
}

func (g *LogGateway) Available() bool {
	return true
}

func (g *LogGateway) SendCode(phone, code string) (bool, error) {
	g.logger.Info("simulated SMS: activation code",
		zap.String("phone", phone),
		zap.String("code", code))
	return true, nil
}

func (g *LogGateway) SendVerification(phone, code string, purpose verification.Purpose, redirectURL string) (bool, error) {
	g.logger.Info("simulated SMS: verification code",
		zap.String("phone", phone),
		zap.String("code", code),
		zap.String("purpose", string(purpose)),
		zap.String("redirect_url", redirectURL))
	return true, nil
}

func (g *LogGateway) SendConfirmation(phone string, purpose verification.Purpose, details string) (bool, error) {
	g.logger.Info("simulated SMS: confirmation",
		zap.String("phone", phone),
		zap.String("purpose", string(purpose)),
		zap.String("details", details))
	return true, nil
}
