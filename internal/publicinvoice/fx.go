package publicinvoice

import (
	"github.com/invorahq/invora/internal/publicinvoice/repository"
	"github.com/invorahq/invora/internal/publicinvoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("publicinvoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
