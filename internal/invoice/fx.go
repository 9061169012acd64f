package invoice

import (
	"github.com/invorahq/invora/internal/invoice/repository"
	"github.com/invorahq/invora/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
