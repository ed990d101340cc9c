package accounts

import (
	"github.com/NehaTanti-afk/Neha-Notes/config"
	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"github.com/NehaTanti-afk/Neha-Notes/services/mail"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type serviceParams struct {
	fx.In
	Config  *config.Config
	DB      *gorm.DB
	Logger  *logging.Service
	Mail    *mail.Service `optional:"true"`
	Devices DeviceRevoker `optional:"true"`
}

func ProvideService(p serviceParams) *Service {
	svc := NewService(p.Config, p.DB, p.Logger)
	if p.Mail != nil {
		svc.SetMailer(p.Mail)
	}
	if p.Devices != nil {
		svc.SetDeviceRevoker(p.Devices)
	}
	return svc
}

var Module = fx.Options(
	fx.Provide(ProvideService),
	fx.Provide(NewStore),
)
