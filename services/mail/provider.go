package mail

import (
	"github.com/NehaTanti-afk/Neha-Notes/config"
	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"go.uber.org/fx"
)

// ProvideMailService returns nil when mail is disabled; consumers treat a nil
// service as "do not send".
func ProvideMailService(cfg *config.Config, logger *logging.Service) (*Service, error) {
	if !cfg.Mail.Enabled {
		return nil, nil
	}
	return NewService(&cfg.Mail, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideMailService),
)
