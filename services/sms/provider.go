package sms

import (
	"github.com/SteveElouga/waterbill-api/config"
	"github.com/SteveElouga/waterbill-api/services/logging"
	"go.uber.org/fx"
)

// ProvideGateway selects the gateway implementation once at process start.
// Services receive it by injection; there is no runtime lookup.
func ProvideGateway(cfg *config.Config, logger *logging.Service) (Gateway, error) {
	switch cfg.SMS.Mode {
	case "carrier":
		return NewCarrierGateway(&cfg.SMS, cfg.App.Name, logger)
	default:
		return NewLogGateway(cfg.App.Name, logger), nil
	}
}

var Module = fx.Options(
	fx.Provide(ProvideGateway),
)
