package email

import (
	"github.com/invorahq/invora/internal/config"
	invoicedomain "github.com/invorahq/invora/internal/invoice/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.email",
	fx.Provide(NewFromConfig),
	fx.Provide(func(provider Provider, cfg config.Config) (invoicedomain.Notifier, error) {
		return NewInvoiceNotifier(provider, cfg)
	}),
)

func NewFromConfig(cfg config.Config) Provider {
	if cfg.SMTP.Host == "" {
		return &NoOpProvider{}
	}
	return NewSMTP(Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
}
